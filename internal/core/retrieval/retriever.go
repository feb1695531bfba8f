// Package retrieval ranks indexed chunks for a query and narrows them to the
// graph's allow-list.
package retrieval

import (
	"context"
	"errors"
	"fmt"

	"github.com/AtharvTrivedi21/LegalRAG-KnowledgeGraph/internal/core/model"
	"github.com/AtharvTrivedi21/LegalRAG-KnowledgeGraph/internal/core/resilience"
)

// Embedder turns query text into the vector space the index was built in.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// VectorSearch returns up to k chunks ranked by descending cosine similarity.
type VectorSearch interface {
	Search(ctx context.Context, vector []float32, k int) ([]model.RetrievedChunk, error)
}

var errNotConfigured = errors.New("embedder or vector index not configured")

type Retriever struct {
	Embedder            Embedder
	Index               VectorSearch
	TopK                int
	OverfetchMultiplier int
	MinSections         int
	MinArticles         int
	Policy              resilience.Policy
}

// Retrieve over-fetches TopK*OverfetchMultiplier candidates and applies
// Select. Embedding or search failures are wrapped in
// model.ErrVectorUnavailable; ctx cancellation is returned as-is.
func (r *Retriever) Retrieve(ctx context.Context, query string, c model.GraphConstraints) (model.RetrievalResult, error) {
	if r.Embedder == nil || r.Index == nil {
		return model.RetrievalResult{}, fmt.Errorf("%w: %v", model.ErrVectorUnavailable, errNotConfigured)
	}

	vec, err := resilience.Do(ctx, r.Policy, func(ctx context.Context) ([]float32, error) {
		return r.Embedder.Embed(ctx, query)
	})
	if err != nil {
		return model.RetrievalResult{}, r.wrap(ctx, "embed", err)
	}

	pool, err := resilience.Do(ctx, r.Policy, func(ctx context.Context) ([]model.RetrievedChunk, error) {
		return r.Index.Search(ctx, vec, r.overfetch())
	})
	if err != nil {
		return model.RetrievalResult{}, r.wrap(ctx, "search", err)
	}

	return Select(pool, c, SelectPolicy{
		TopK:        r.TopK,
		MinSections: r.MinSections,
		MinArticles: r.MinArticles,
	}), nil
}

func (r *Retriever) overfetch() int {
	m := r.OverfetchMultiplier
	if m < 2 {
		m = 2
	}
	return r.TopK * m
}

func (r *Retriever) wrap(ctx context.Context, op string, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	return fmt.Errorf("%w: %s: %v", model.ErrVectorUnavailable, op, err)
}
