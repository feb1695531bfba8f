// Package llm wraps the chat and embedding providers behind two small
// interfaces so the pipeline never sees a vendor SDK.
package llm

import (
	"context"
)

// LLMClient produces one non-streaming completion. system may be empty.
type LLMClient interface {
	Generate(ctx context.Context, system, prompt string) (string, error)
}

type EmbedderClient interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}
