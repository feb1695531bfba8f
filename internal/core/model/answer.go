package model

// Answer is what the presentation layer renders.
type Answer struct {
	Text             string `json:"text"`
	NoApplicableLaws bool   `json:"no_applicable_laws"`
	NoRelevantCases  bool   `json:"no_relevant_cases"`
}

// AnswerOutcome records which branch of the assembler produced the answer.
type AnswerOutcome string

const (
	OutcomeGenerated        AnswerOutcome = "generated"
	OutcomeGuarded          AnswerOutcome = "insufficient_context"
	OutcomeGenerationFailed AnswerOutcome = "generation_failed"
)

// Selection tags the branch the retriever's decision tree took.
type Selection string

const (
	SelectionUnconstrained         Selection = "unconstrained"
	SelectionConstrained           Selection = "constrained"
	SelectionDiversified           Selection = "diversified"
	SelectionFallbackUnconstrained Selection = "fallback_unconstrained"
)

// RetrievalResult is the retriever's output for one query.
type RetrievalResult struct {
	Chunks                    []RetrievedChunk `json:"chunks"`
	Selection                 Selection        `json:"selection"`
	UsedFallbackUnconstrained bool             `json:"used_fallback_unconstrained"`
	TopSimilarity             float64          `json:"top_similarity"`
}
