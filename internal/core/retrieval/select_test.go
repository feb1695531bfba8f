package retrieval

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/AtharvTrivedi21/LegalRAG-KnowledgeGraph/internal/core/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chunk(id string, st model.SourceType, src string, score float64) model.RetrievedChunk {
	return model.RetrievedChunk{ChunkID: id, SourceType: st, SourceID: src, Text: "text of " + src, Score: score}
}

func ids(chunks []model.RetrievedChunk) []string {
	out := make([]string, 0, len(chunks))
	for _, ch := range chunks {
		out = append(out, ch.ChunkID)
	}
	return out
}

// a case passage dominates the raw ranking; statutory text sits lower down
func casePool() []model.RetrievedChunk {
	return []model.RetrievedChunk{
		chunk("s2", model.SourceSection, "BNS_Sec_302", 0.55),
		chunk("c1", model.SourceCase, "SC_2019_12", 0.90),
		chunk("c2", model.SourceCase, "SC_2019_12", 0.89),
		chunk("x1", model.SourceCase, "SC_2001_77", 0.88),
		chunk("c3", model.SourceCase, "SC_2019_12", 0.87),
		chunk("c4", model.SourceCase, "SC_2019_12", 0.86),
		chunk("c5", model.SourceCase, "SC_2019_12", 0.85),
		chunk("s1", model.SourceSection, "BNS_Sec_302", 0.60),
		chunk("a1", model.SourceArticle, "Constitution_Art_14", 0.50),
		chunk("x2", model.SourceSection, "BNSS_Sec_302", 0.70),
		chunk("a2", model.SourceArticle, "Constitution_Art_14", 0.45),
	}
}

var allowed = model.NewGraphConstraints(
	[]string{"SC_2019_12"},
	[]string{"BNS_Sec_302"},
	[]string{"Constitution_Art_14"},
)

func TestSelect_Unconstrained(t *testing.T) {
	res := Select(casePool(), model.GraphConstraints{}, SelectPolicy{TopK: 3})

	assert.Equal(t, model.SelectionUnconstrained, res.Selection)
	assert.False(t, res.UsedFallbackUnconstrained)
	assert.Equal(t, []string{"c1", "c2", "x1"}, ids(res.Chunks))
	assert.InDelta(t, 0.90, res.TopSimilarity, 1e-9)
}

func TestSelect_UnconstrainedDiversifiesOverWholePool(t *testing.T) {
	res := Select(casePool(), model.GraphConstraints{}, SelectPolicy{TopK: 3, MinSections: 2, MinArticles: 2})

	assert.Equal(t, model.SelectionDiversified, res.Selection)
	assert.False(t, res.UsedFallbackUnconstrained)
	assert.Equal(t, []string{"x2", "s1", "a1"}, ids(res.Chunks))
	assert.InDelta(t, 0.70, res.TopSimilarity, 1e-9)

	res = Select(casePool(), model.GraphConstraints{}, SelectPolicy{TopK: 6, MinSections: 2, MinArticles: 2})
	assert.Equal(t, []string{"c1", "c2", "x2", "s1", "a1", "a2"}, ids(res.Chunks))
}

func TestSelect_UnconstrainedFloorAlreadyMet(t *testing.T) {
	pool := []model.RetrievedChunk{
		chunk("s1", model.SourceSection, "BNS_Sec_302", 0.9),
		chunk("c1", model.SourceCase, "SC_2019_12", 0.8),
		chunk("a1", model.SourceArticle, "Constitution_Art_14", 0.7),
		chunk("c2", model.SourceCase, "SC_2001_77", 0.6),
	}
	// the pool holds one section and one article, so the top three already satisfy the floors
	res := Select(pool, model.GraphConstraints{}, SelectPolicy{TopK: 3, MinSections: 2, MinArticles: 2})

	assert.Equal(t, model.SelectionUnconstrained, res.Selection)
	assert.Equal(t, []string{"s1", "c1", "a1"}, ids(res.Chunks))
}

func TestSelect_ConstrainedFiltersDisallowed(t *testing.T) {
	c := model.NewGraphConstraints([]string{"SC_2019_12"}, nil, nil)
	res := Select(casePool(), c, SelectPolicy{TopK: 3, MinSections: 2, MinArticles: 2})

	assert.Equal(t, model.SelectionConstrained, res.Selection)
	assert.Equal(t, []string{"c1", "c2", "c3"}, ids(res.Chunks))
}

func TestSelect_DiversityFloorPromotesStatutes(t *testing.T) {
	res := Select(casePool(), allowed, SelectPolicy{TopK: 6, MinSections: 2, MinArticles: 2})

	assert.Equal(t, model.SelectionDiversified, res.Selection)
	assert.Equal(t, []string{"c1", "c2", "s1", "s2", "a1", "a2"}, ids(res.Chunks))
	assert.InDelta(t, 0.90, res.TopSimilarity, 1e-9)
}

func TestSelect_DiversityFloorFillsWholeBudget(t *testing.T) {
	res := Select(casePool(), allowed, SelectPolicy{TopK: 4, MinSections: 2, MinArticles: 2})

	assert.Equal(t, model.SelectionDiversified, res.Selection)
	assert.Equal(t, []string{"s1", "s2", "a1", "a2"}, ids(res.Chunks))
	assert.InDelta(t, 0.60, res.TopSimilarity, 1e-9)
}

func TestSelect_FloorAlreadyMet(t *testing.T) {
	pool := []model.RetrievedChunk{
		chunk("s1", model.SourceSection, "BNS_Sec_302", 0.9),
		chunk("a1", model.SourceArticle, "Constitution_Art_14", 0.8),
		chunk("s2", model.SourceSection, "BNS_Sec_302", 0.7),
		chunk("a2", model.SourceArticle, "Constitution_Art_14", 0.6),
		chunk("c1", model.SourceCase, "SC_2019_12", 0.5),
	}
	res := Select(pool, allowed, SelectPolicy{TopK: 4, MinSections: 2, MinArticles: 2})

	assert.Equal(t, model.SelectionConstrained, res.Selection)
	assert.Equal(t, []string{"s1", "a1", "s2", "a2"}, ids(res.Chunks))
}

func TestSelect_FloorBoundedByAvailableCandidates(t *testing.T) {
	pool := []model.RetrievedChunk{
		chunk("c1", model.SourceCase, "SC_2019_12", 0.9),
		chunk("c2", model.SourceCase, "SC_2019_12", 0.8),
		chunk("s1", model.SourceSection, "BNS_Sec_302", 0.4),
	}
	res := Select(pool, allowed, SelectPolicy{TopK: 2, MinSections: 2, MinArticles: 2})

	assert.Equal(t, model.SelectionDiversified, res.Selection)
	assert.Equal(t, []string{"c1", "s1"}, ids(res.Chunks))
}

func TestSelect_FallbackWhenNothingMatches(t *testing.T) {
	c := model.NewGraphConstraints(nil, []string{"BNS_Sec_999"}, nil)
	res := Select(casePool(), c, SelectPolicy{TopK: 2, MinSections: 2, MinArticles: 2})

	assert.Equal(t, model.SelectionFallbackUnconstrained, res.Selection)
	assert.True(t, res.UsedFallbackUnconstrained)
	assert.Equal(t, []string{"c1", "c2"}, ids(res.Chunks))
}

func TestSelect_EmptyPool(t *testing.T) {
	res := Select(nil, allowed, SelectPolicy{TopK: 8})
	assert.True(t, res.UsedFallbackUnconstrained)
	assert.Empty(t, res.Chunks)
	assert.Zero(t, res.TopSimilarity)

	res = Select(nil, model.GraphConstraints{}, SelectPolicy{TopK: 8})
	assert.Equal(t, model.SelectionUnconstrained, res.Selection)
	assert.Empty(t, res.Chunks)
}

func TestSelect_DoesNotMutatePool(t *testing.T) {
	pool := casePool()
	Select(pool, allowed, SelectPolicy{TopK: 4, MinSections: 2, MinArticles: 2})
	assert.Equal(t, casePool(), pool)
}

// Invariants over random pools: constrained results only hold allowed ids,
// fallback is non-empty whenever the pool is, and the floors hold when the
// pool can supply them.
func TestSelect_Invariants(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	types := []model.SourceType{model.SourceCase, model.SourceSection, model.SourceArticle}
	sources := map[model.SourceType][]string{
		model.SourceCase:    {"SC_2019_12", "SC_2001_77"},
		model.SourceSection: {"BNS_Sec_302", "BNSS_Sec_302"},
		model.SourceArticle: {"Constitution_Art_14", "Constitution_Art_21"},
	}
	policy := SelectPolicy{TopK: 8, MinSections: 2, MinArticles: 2}

	for n := 0; n < 300; n++ {
		size := rng.Intn(40)
		pool := make([]model.RetrievedChunk, 0, size)
		for i := 0; i < size; i++ {
			st := types[rng.Intn(len(types))]
			src := sources[st][rng.Intn(2)]
			pool = append(pool, chunk(fmt.Sprintf("ch%d", i), st, src, rng.Float64()*2-1))
		}

		res := Select(pool, allowed, policy)
		require.LessOrEqual(t, len(res.Chunks), policy.TopK)

		if res.UsedFallbackUnconstrained {
			require.Equal(t, size > 0, len(res.Chunks) > 0)
			for _, ch := range pool {
				require.False(t, allowed.Allows(ch.SourceType, ch.SourceID), "fallback taken with a matching chunk")
			}
			continue
		}

		got := countTypes(res.Chunks)
		avail := map[model.SourceType]int{}
		for i, ch := range res.Chunks {
			require.True(t, allowed.Allows(ch.SourceType, ch.SourceID))
			if i > 0 {
				require.GreaterOrEqual(t, res.Chunks[i-1].Score, ch.Score)
			}
		}
		for _, ch := range pool {
			if allowed.Allows(ch.SourceType, ch.SourceID) {
				avail[ch.SourceType]++
			}
		}
		require.GreaterOrEqual(t, got[model.SourceSection], minInt(policy.MinSections, avail[model.SourceSection]))
		require.GreaterOrEqual(t, got[model.SourceArticle], minInt(policy.MinArticles, avail[model.SourceArticle]))
		if len(res.Chunks) > 0 {
			require.Equal(t, res.Chunks[0].Score, res.TopSimilarity)
		}
	}
}

func TestSelect_UnconstrainedInvariants(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	types := []model.SourceType{model.SourceCase, model.SourceCase, model.SourceSection, model.SourceArticle}
	policy := SelectPolicy{TopK: 8, MinSections: 2, MinArticles: 2}

	for n := 0; n < 300; n++ {
		size := rng.Intn(40)
		pool := make([]model.RetrievedChunk, 0, size)
		for i := 0; i < size; i++ {
			st := types[rng.Intn(len(types))]
			pool = append(pool, chunk(fmt.Sprintf("ch%d", i), st, string(st), rng.Float64()*2-1))
		}

		res := Select(pool, model.GraphConstraints{}, policy)
		require.False(t, res.UsedFallbackUnconstrained)
		require.Len(t, res.Chunks, minInt(policy.TopK, size))
		require.Contains(t, []model.Selection{model.SelectionUnconstrained, model.SelectionDiversified}, res.Selection)

		avail := countTypes(pool)
		got := countTypes(res.Chunks)
		require.GreaterOrEqual(t, got[model.SourceSection], minInt(policy.MinSections, avail[model.SourceSection]))
		require.GreaterOrEqual(t, got[model.SourceArticle], minInt(policy.MinArticles, avail[model.SourceArticle]))
		for i := 1; i < len(res.Chunks); i++ {
			require.GreaterOrEqual(t, res.Chunks[i-1].Score, res.Chunks[i].Score)
		}
	}
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
