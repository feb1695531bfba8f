package kg

import (
	"context"
	"testing"
	"time"

	"github.com/AtharvTrivedi21/LegalRAG-KnowledgeGraph/internal/core/model"
	"github.com/AtharvTrivedi21/LegalRAG-KnowledgeGraph/internal/core/parser"
	"github.com/AtharvTrivedi21/LegalRAG-KnowledgeGraph/internal/core/resilience"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testPolicy = resilience.Policy{Timeout: time.Second, Retries: 1, Interval: time.Millisecond}

func TestResolve_NoRefs(t *testing.T) {
	g := legalGraph()
	r := NewResolver(g, g, testPolicy)

	c, m, err := r.Resolve(context.Background(), parser.Parse("Someone entered my home and stole my property"))
	require.NoError(t, err)
	assert.True(t, c.IsEmpty())
	assert.True(t, m.IsEmpty())
	assert.Zero(t, g.calls)
}

func TestResolve_HintFiltersStatute(t *testing.T) {
	g := legalGraph()
	r := NewResolver(g, g, testPolicy)

	c, m, err := r.Resolve(context.Background(), parser.Parse("What does Section 302 of BNS say?"))
	require.NoError(t, err)
	assert.Equal(t, []string{"BNS_Sec_302"}, c.SectionIDs())
	assert.Empty(t, c.ArticleIDs())
	assert.Equal(t, []string{"SC_2019_12"}, c.CaseIDs())

	require.Len(t, m.Sections, 1)
	assert.Equal(t, "BNS_Sec_302", m.Sections[0].ID)
	assert.Equal(t, []model.Statute{{ID: "BNS", Name: "Bharatiya Nyaya Sanhita"}}, m.ApplicableStatutes)
}

func TestResolve_NoHintUnionsStatutes(t *testing.T) {
	g := legalGraph()
	r := NewResolver(g, g, testPolicy)

	c, m, err := r.Resolve(context.Background(), parser.Parse("What does section 302 say?"))
	require.NoError(t, err)
	assert.Equal(t, []string{"BNSS_Sec_302", "BNS_Sec_302"}, c.SectionIDs())
	assert.ElementsMatch(t, []string{"SC_2019_12", "SC_2021_40"}, c.CaseIDs())
	assert.Len(t, m.ApplicableStatutes, 2)

	// most recent case first
	require.Len(t, m.Cases, 2)
	assert.Equal(t, "SC_2021_40", m.Cases[0].ID)
}

func TestResolve_SubNumberFallsBackToBase(t *testing.T) {
	g := legalGraph()
	r := NewResolver(g, g, testPolicy)

	c, _, err := r.Resolve(context.Background(), parser.Parse("Section 302(1) of BNS"))
	require.NoError(t, err)
	assert.Equal(t, []string{"BNS_Sec_302"}, c.SectionIDs())
}

func TestResolve_Idempotent(t *testing.T) {
	g := legalGraph()
	r := NewResolver(g, g, testPolicy)
	pq := parser.Parse("Section 302 and Article 14")

	c1, m1, err := r.Resolve(context.Background(), pq)
	require.NoError(t, err)
	c2, m2, err := r.Resolve(context.Background(), pq)
	require.NoError(t, err)

	assert.Equal(t, c1, c2)
	assert.Equal(t, m1, m2)
	// the shared case is counted once
	assert.Equal(t, []string{"SC_1978_01", "SC_2019_12", "SC_2021_40"}, c1.CaseIDs())
	assert.Len(t, m1.Cases, 3)
}

func TestResolve_ExplicitIDs(t *testing.T) {
	g := legalGraph()
	r := NewResolver(g, g, testPolicy)

	pq := parser.Parse("Summarise BNSS_Sec_302 and Constitution_Art_14")
	require.False(t, pq.HasExplicitRefs)

	c, m, err := r.Resolve(context.Background(), pq)
	require.NoError(t, err)
	assert.Equal(t, []string{"BNSS_Sec_302"}, c.SectionIDs())
	assert.Equal(t, []string{"Constitution_Art_14"}, c.ArticleIDs())
	assert.Len(t, m.Articles, 1)
}

func TestResolve_UnknownReferenceIsEmpty(t *testing.T) {
	g := legalGraph()
	r := NewResolver(g, g, testPolicy)

	c, m, err := r.Resolve(context.Background(), parser.Parse("Section 9999 of BNS"))
	require.NoError(t, err)
	assert.True(t, c.IsEmpty())
	assert.True(t, m.IsEmpty())
}

func TestResolve_RetriesTransientFailure(t *testing.T) {
	g := legalGraph()
	g.failures = 1
	r := NewResolver(g, g, testPolicy)

	c, _, err := r.Resolve(context.Background(), parser.Parse("Section 302 of BNS"))
	require.NoError(t, err)
	assert.Equal(t, []string{"BNS_Sec_302"}, c.SectionIDs())
}

func TestResolve_GraphUnavailable(t *testing.T) {
	g := legalGraph()
	g.err = errBoom
	r := NewResolver(g, g, testPolicy)

	c, m, err := r.Resolve(context.Background(), parser.Parse("Section 302 of BNS"))
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrGraphUnavailable)
	assert.Contains(t, err.Error(), "connection refused")
	assert.True(t, c.IsEmpty())
	assert.True(t, m.IsEmpty())
}

func TestResolve_CancelledContext(t *testing.T) {
	g := legalGraph()
	g.err = errBoom
	r := NewResolver(g, g, testPolicy)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := r.Resolve(ctx, parser.Parse("Section 302 of BNS"))
	assert.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, model.ErrGraphUnavailable)
}
