// Package rephrase rewrites an informal question into a formal legal query
// for embedding. It fails open: any error yields the raw query.
package rephrase

import (
	"context"
	"fmt"
	"strings"

	"github.com/AtharvTrivedi21/LegalRAG-KnowledgeGraph/internal/core/resilience"
	"github.com/AtharvTrivedi21/LegalRAG-KnowledgeGraph/internal/llm"
	"github.com/AtharvTrivedi21/LegalRAG-KnowledgeGraph/internal/logx"
)

// DefaultPrompt is used when no prompt is configured. %s receives the query.
const DefaultPrompt = "You are an expert in Indian criminal law, Bharatiya Nyaya Sanhita (BNS), and the Indian Constitution. " +
	"Rewrite the user's informal question or incident description into a concise, formal legal query " +
	"using appropriate legal terminology. Do not answer the question, only rewrite it. " +
	"Keep any explicit references to Article or Section numbers unchanged.\n\n" +
	"User input:\n%s\n\nFormal legal query:"

type Rephraser struct {
	LLM    llm.LLMClient
	Prompt string
	Policy resilience.Policy
}

func NewRephraser(client llm.LLMClient, prompt string, policy resilience.Policy) *Rephraser {
	if !strings.Contains(prompt, "%s") {
		prompt = DefaultPrompt
	}
	return &Rephraser{LLM: client, Prompt: prompt, Policy: policy}
}

// Rephrase returns the rewritten query, or raw when the model errors or
// answers with nothing. The second return reports whether the rewrite was used.
func (r *Rephraser) Rephrase(ctx context.Context, raw string) (string, bool) {
	q := strings.TrimSpace(raw)
	if q == "" || r.LLM == nil {
		return raw, false
	}

	out, err := resilience.Do(ctx, r.Policy, func(ctx context.Context) (string, error) {
		return r.LLM.Generate(ctx, "", fmt.Sprintf(r.Prompt, q))
	})
	if err != nil {
		logx.Warn().Err(err).Msg("rephrase failed, using raw query")
		return raw, false
	}
	out = strings.TrimSpace(strings.Trim(strings.TrimSpace(out), `"`))
	if out == "" {
		return raw, false
	}
	return out, true
}
