// Package answer assembles the final answer from graph metadata and
// retrieved passages, withholding generation when the evidence is too weak.
package answer

import (
	"context"
	"fmt"
	"strings"

	"github.com/AtharvTrivedi21/LegalRAG-KnowledgeGraph/internal/core/model"
	"github.com/AtharvTrivedi21/LegalRAG-KnowledgeGraph/internal/core/resilience"
	"github.com/AtharvTrivedi21/LegalRAG-KnowledgeGraph/internal/llm"
)

const InsufficientContextMessage = "I could not find sufficient relevant statutory context to answer this question reliably. " +
	"No provision or case was resolved from the knowledge graph, and the closest passages in the document index were too weak a match. " +
	"Try naming a specific provision, for example \"Section 302 of BNS\" or \"Article 14 of the Constitution\"."

const GenerationFailedMessage = "The language model is not available or returned an empty response, so no answer could be generated. " +
	"Please ensure the model server is running and try again."

type Config struct {
	SimilarityThreshold float64
	SystemPrompt        string
	Limits
}

type Assembler struct {
	LLM    llm.LLMClient
	Config Config
	Policy resilience.Policy
}

func NewAssembler(client llm.LLMClient, cfg Config, policy resilience.Policy) *Assembler {
	if strings.TrimSpace(cfg.SystemPrompt) == "" {
		cfg.SystemPrompt = DefaultSystemPrompt
	}
	return &Assembler{LLM: client, Config: cfg, Policy: policy}
}

// Guarded reports whether generation must be skipped.
func (a *Assembler) Guarded(md model.GraphMetadata, topSimilarity float64) bool {
	return topSimilarity < a.Config.SimilarityThreshold && md.IsEmpty()
}

// Assemble always returns a well-formed Answer. The error is non-nil only
// for a failed generation (wrapping model.ErrGenerationFailed) or when ctx
// is done; in the first case the Answer carries GenerationFailedMessage.
func (a *Assembler) Assemble(ctx context.Context, md model.GraphMetadata, chunks []model.RetrievedChunk, topSimilarity float64, rawQuery string) (model.Answer, model.AnswerOutcome, error) {
	if a.Guarded(md, topSimilarity) {
		return model.Answer{
			Text:             InsufficientContextMessage,
			NoApplicableLaws: true,
			NoRelevantCases:  true,
		}, model.OutcomeGuarded, nil
	}

	prompt := BuildUserPrompt(rawQuery, BuildContext(md, chunks, a.Config.Limits))
	raw, err := resilience.Do(ctx, a.Policy, func(ctx context.Context) (string, error) {
		if a.LLM == nil {
			return "", fmt.Errorf("no language model configured")
		}
		return a.LLM.Generate(ctx, a.Config.SystemPrompt, prompt)
	})
	if err == nil && strings.TrimSpace(raw) == "" {
		err = fmt.Errorf("empty response")
	}
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return model.Answer{}, "", ctxErr
		}
		return model.Answer{
			Text:             GenerationFailedMessage,
			NoApplicableLaws: len(md.Sections) == 0 && len(md.Articles) == 0,
			NoRelevantCases:  len(md.Cases) == 0,
		}, model.OutcomeGenerationFailed, fmt.Errorf("%w: %v", model.ErrGenerationFailed, err)
	}

	text := Clean(raw)
	noLaws, noCases := NegationFlags(text)
	return model.Answer{
		Text:             text,
		NoApplicableLaws: noLaws,
		NoRelevantCases:  noCases,
	}, model.OutcomeGenerated, nil
}
