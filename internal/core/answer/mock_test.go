package answer

import (
	"context"
	"sync"
)

type MockLLM struct {
	mu       sync.Mutex
	Response string
	Err      error
	Systems  []string
	Prompts  []string
}

func (m *MockLLM) Generate(ctx context.Context, system, prompt string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Systems = append(m.Systems, system)
	m.Prompts = append(m.Prompts, prompt)
	if m.Err != nil {
		return "", m.Err
	}
	return m.Response, nil
}
