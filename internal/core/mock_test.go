package core

import (
	"context"
	"errors"
	"sync"

	"github.com/AtharvTrivedi21/LegalRAG-KnowledgeGraph/internal/core/model"
)

// MockGraph serves provisions and citations from memory.
type MockGraph struct {
	mu         sync.Mutex
	Provisions []model.Provision
	Citations  map[string][]model.CaseRef
	Err        error
}

func (m *MockGraph) FindProvisionsByNumber(ctx context.Context, kind model.ProvisionKind, numbers []string, statuteID string) ([]model.Provision, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	want := map[string]struct{}{}
	for _, n := range numbers {
		want[n] = struct{}{}
	}
	var out []model.Provision
	for _, p := range m.Provisions {
		if _, ok := want[p.Number]; ok && p.Kind == kind && (statuteID == "" || p.StatuteID == statuteID) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *MockGraph) FindCasesCiting(ctx context.Context, ids []string) ([]model.CaseRef, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	var out []model.CaseRef
	for _, id := range ids {
		out = append(out, m.Citations[id]...)
	}
	return out, nil
}

type MockEmbedder struct {
	Vector []float32
	Err    error
	Texts  []string
}

func (m *MockEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	m.Texts = append(m.Texts, text)
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Vector, nil
}

type MockIndex struct {
	Chunks []model.RetrievedChunk
	Err    error
}

func (m *MockIndex) Search(ctx context.Context, vector []float32, k int) ([]model.RetrievedChunk, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	if len(m.Chunks) > k {
		return m.Chunks[:k], nil
	}
	return m.Chunks, nil
}

// MockLLM answers rephrase calls (no system prompt) and generation calls
// (with one) separately.
type MockLLM struct {
	Rephrased    string
	RephraseErr  error
	Response     string
	GenerateErr  error
	GeneratedFor []string

	// Cancel, when set, runs on the generation call.
	Cancel func()
}

func (m *MockLLM) Generate(ctx context.Context, system, prompt string) (string, error) {
	if system == "" {
		if m.RephraseErr != nil {
			return "", m.RephraseErr
		}
		return m.Rephrased, nil
	}
	m.GeneratedFor = append(m.GeneratedFor, prompt)
	if m.Cancel != nil {
		m.Cancel()
		return "", ctx.Err()
	}
	if m.GenerateErr != nil {
		return "", m.GenerateErr
	}
	return m.Response, nil
}

var errDown = errors.New("connection refused")
