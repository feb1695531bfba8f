package answer

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/AtharvTrivedi21/LegalRAG-KnowledgeGraph/internal/core/model"
	"github.com/AtharvTrivedi21/LegalRAG-KnowledgeGraph/internal/core/resilience"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testConfig = Config{
	SimilarityThreshold: 0.35,
	Limits:              Limits{MaxGraphChars: 2000, MaxSnippetChars: 600, MaxSnippets: 10},
}

func newAssembler(m *MockLLM) *Assembler {
	return NewAssembler(m, testConfig, resilience.Policy{Timeout: time.Second})
}

func article14() model.GraphMetadata {
	return model.GraphMetadata{
		Articles: []model.Provision{{
			ID:          "Constitution_Art_14",
			Kind:        model.KindArticle,
			Number:      "14",
			StatuteID:   "Constitution",
			StatuteName: "Constitution of India",
			Text:        "The State shall not deny to any person equality before the law or the equal protection of the laws within the territory of India.",
		}},
		Cases:              []model.CaseRef{{ID: "SC_1978_01", Year: 1978}},
		ApplicableStatutes: []model.Statute{{ID: "Constitution", Name: "Constitution of India"}},
	}
}

const article14Answer = `## Summary
Article 14 guarantees equality before the law.

## Applicable laws / provisions
- Constitution_Art_14, Article 14, Constitution of India

## Relevant case law (if any)
- SC_1978_01 applied the reasonable classification test.

## Recommendation / next steps
Consult a constitutional lawyer.`

func TestAssemble_GuardSkipsGeneration(t *testing.T) {
	m := &MockLLM{Response: "should not be used"}
	a := newAssembler(m)

	ans, outcome, err := a.Assemble(context.Background(), model.GraphMetadata{}, nil, 0.12, "Someone stole my bicycle")
	require.NoError(t, err)
	assert.Equal(t, model.OutcomeGuarded, outcome)
	assert.Equal(t, model.Answer{Text: InsufficientContextMessage, NoApplicableLaws: true, NoRelevantCases: true}, ans)
	assert.Empty(t, m.Prompts)

	// deterministic across calls
	again, _, _ := a.Assemble(context.Background(), model.GraphMetadata{}, nil, 0.12, "anything else")
	assert.Equal(t, ans, again)
}

func TestAssemble_GuardNeedsBothConditions(t *testing.T) {
	m := &MockLLM{Response: article14Answer}
	a := newAssembler(m)

	// weak similarity but the graph resolved something
	_, outcome, err := a.Assemble(context.Background(), article14(), nil, 0.0, "Explain Article 14")
	require.NoError(t, err)
	assert.Equal(t, model.OutcomeGenerated, outcome)

	// no metadata but a strong passage
	chunks := []model.RetrievedChunk{{ChunkID: "1", SourceType: model.SourceCase, SourceID: "SC_2019_12", Text: "theft", Score: 0.8}}
	_, outcome, err = a.Assemble(context.Background(), model.GraphMetadata{}, chunks, 0.8, "theft")
	require.NoError(t, err)
	assert.Equal(t, model.OutcomeGenerated, outcome)
	assert.Len(t, m.Prompts, 2)
}

func TestAssemble_Article14Scenario(t *testing.T) {
	m := &MockLLM{Response: article14Answer}
	a := newAssembler(m)
	chunks := []model.RetrievedChunk{
		{ChunkID: "a14-0", SourceType: model.SourceArticle, SourceID: "Constitution_Art_14", Text: "Equality before law.", Score: 0.82},
	}

	ans, outcome, err := a.Assemble(context.Background(), article14(), chunks, 0.82, "Explain Article 14 of the Constitution")
	require.NoError(t, err)
	assert.Equal(t, model.OutcomeGenerated, outcome)
	assert.Contains(t, ans.Text, "Article 14")
	assert.False(t, ans.NoApplicableLaws)
	assert.False(t, ans.NoRelevantCases)

	require.Len(t, m.Prompts, 1)
	assert.Equal(t, DefaultSystemPrompt, m.Systems[0])
	prompt := m.Prompts[0]
	assert.Contains(t, prompt, "User question:\nExplain Article 14 of the Constitution")
	assert.Contains(t, prompt, "[ARTICLE FROM KNOWLEDGE GRAPH] Constitution_Art_14\nApplicable Act: Constitution of India (Constitution)")
	assert.Contains(t, prompt, "[CASES CITING THESE PROVISIONS] SC_1978_01 (1978)")
	assert.Contains(t, prompt, "[ARTICLE] Constitution_Art_14 (max_score=0.820)")
}

func TestAssemble_NegationFlags(t *testing.T) {
	m := &MockLLM{Response: "## Summary\nThe question concerns a contract.\n\n## Applicable laws / provisions\nNo relevant provisions were found in the context.\n\n## Relevant case law (if any)\nThe provided cases do not address contracts.\n\n## Recommendation / next steps\nSeek advice."}
	a := newAssembler(m)
	chunks := []model.RetrievedChunk{{ChunkID: "1", SourceType: model.SourceCase, SourceID: "SC_2019_12", Text: "x", Score: 0.5}}

	ans, _, err := a.Assemble(context.Background(), model.GraphMetadata{}, chunks, 0.5, "contract breach")
	require.NoError(t, err)
	assert.True(t, ans.NoApplicableLaws)
	assert.True(t, ans.NoRelevantCases)
}

func TestAssemble_GenerationFailure(t *testing.T) {
	m := &MockLLM{Err: errors.New("connection refused")}
	a := newAssembler(m)

	ans, outcome, err := a.Assemble(context.Background(), article14(), nil, 0, "Explain Article 14")
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrGenerationFailed)
	assert.Equal(t, model.OutcomeGenerationFailed, outcome)
	assert.Equal(t, GenerationFailedMessage, ans.Text)
	assert.False(t, ans.NoApplicableLaws)
	assert.False(t, ans.NoRelevantCases)
	assert.Len(t, m.Prompts, 1, "generation is never retried")
}

func TestAssemble_EmptyGenerationIsFailure(t *testing.T) {
	a := newAssembler(&MockLLM{Response: " \n "})

	ans, outcome, err := a.Assemble(context.Background(), article14(), nil, 0, "Explain Article 14")
	assert.ErrorIs(t, err, model.ErrGenerationFailed)
	assert.Equal(t, model.OutcomeGenerationFailed, outcome)
	assert.Equal(t, GenerationFailedMessage, ans.Text)
}

func TestAssemble_Cancelled(t *testing.T) {
	a := newAssembler(&MockLLM{Err: errors.New("boom")})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := a.Assemble(ctx, article14(), nil, 0, "q")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewAssembler_CustomSystemPrompt(t *testing.T) {
	cfg := testConfig
	cfg.SystemPrompt = "Be brief."
	a := NewAssembler(&MockLLM{}, cfg, resilience.Policy{})
	assert.Equal(t, "Be brief.", a.Config.SystemPrompt)
}
