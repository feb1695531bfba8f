package core

import (
	"github.com/AtharvTrivedi21/LegalRAG-KnowledgeGraph/internal/config"
	"github.com/AtharvTrivedi21/LegalRAG-KnowledgeGraph/internal/core/answer"
	"github.com/AtharvTrivedi21/LegalRAG-KnowledgeGraph/internal/core/kg"
	"github.com/AtharvTrivedi21/LegalRAG-KnowledgeGraph/internal/core/rephrase"
	"github.com/AtharvTrivedi21/LegalRAG-KnowledgeGraph/internal/core/resilience"
	"github.com/AtharvTrivedi21/LegalRAG-KnowledgeGraph/internal/core/retrieval"
	"github.com/AtharvTrivedi21/LegalRAG-KnowledgeGraph/internal/llm"
)

// Backends are the external capabilities a Pipeline runs against. Embedder
// may be nil for providers without embeddings; retrieval then degrades.
type Backends struct {
	Provisions kg.ProvisionLookup
	Cases      kg.CaseLookup
	Generator  llm.LLMClient
	Embedder   retrieval.Embedder
	Index      retrieval.VectorSearch
}

// New wires the standard stages from cfg. Graph and vector reads retry once;
// model calls never do.
func New(cfg *config.Config, b Backends) *Pipeline {
	graphPolicy := resilience.Policy{Timeout: cfg.Neo4j.Timeout.Std(), Retries: 1}
	vectorPolicy := resilience.Policy{Timeout: cfg.Vector.Timeout.Std(), Retries: 1}
	llmPolicy := resilience.Policy{Timeout: cfg.LLM.Timeout.Std()}

	return NewPipeline(
		kg.NewResolver(b.Provisions, b.Cases, graphPolicy),
		rephrase.NewRephraser(b.Generator, cfg.Prompts.Rephrase, llmPolicy),
		&retrieval.Retriever{
			Embedder:            b.Embedder,
			Index:               b.Index,
			TopK:                cfg.Retrieval.TopK,
			OverfetchMultiplier: cfg.Retrieval.OverfetchMultiplier,
			MinSections:         cfg.Retrieval.MinSections,
			MinArticles:         cfg.Retrieval.MinArticles,
			Policy:              vectorPolicy,
		},
		answer.NewAssembler(b.Generator, answer.Config{
			SimilarityThreshold: cfg.Answer.SimilarityThreshold,
			SystemPrompt:        cfg.Prompts.System,
			Limits: answer.Limits{
				MaxGraphChars:   cfg.Answer.MaxGraphChars,
				MaxSnippetChars: cfg.Answer.MaxSnippetChars,
				MaxSnippets:     cfg.Answer.MaxSnippets,
			},
		}, llmPolicy),
	)
}
