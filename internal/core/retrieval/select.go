package retrieval

import (
	"sort"

	"github.com/AtharvTrivedi21/LegalRAG-KnowledgeGraph/internal/core/model"
)

// SelectPolicy bounds one selection. Under constraints the floors apply only
// to source types the constraints name; without constraints they apply to
// sections and articles alike.
type SelectPolicy struct {
	TopK        int
	MinSections int
	MinArticles int
}

// Select is the retriever's decision tree over an over-fetched pool:
//
//	none, floor met       -> top-k of the pool           (unconstrained)
//	none, floor unmet     -> floors first, then by score (diversified)
//	matches, floor met    -> top-k of the matches        (constrained)
//	matches, floor unmet  -> floors first, then by score (diversified)
//	no matches            -> top-k of the pool           (fallback_unconstrained)
//
// Every chunk returned outside the fallback branches passes c.Allows.
func Select(pool []model.RetrievedChunk, c model.GraphConstraints, p SelectPolicy) model.RetrievalResult {
	ranked := byScore(pool)

	if c.IsEmpty() {
		floors := map[model.SourceType]int{
			model.SourceSection: p.MinSections,
			model.SourceArticle: p.MinArticles,
		}
		return pick(ranked, floors, p.TopK, model.SelectionUnconstrained)
	}

	matched := make([]model.RetrievedChunk, 0, len(ranked))
	for _, ch := range ranked {
		if c.Allows(ch.SourceType, ch.SourceID) {
			matched = append(matched, ch)
		}
	}
	if len(matched) == 0 {
		res := result(head(ranked, p.TopK), model.SelectionFallbackUnconstrained)
		res.UsedFallbackUnconstrained = true
		return res
	}

	floors := map[model.SourceType]int{}
	if c.AllowsType(model.SourceSection) {
		floors[model.SourceSection] = p.MinSections
	}
	if c.AllowsType(model.SourceArticle) {
		floors[model.SourceArticle] = p.MinArticles
	}
	return pick(matched, floors, p.TopK, model.SelectionConstrained)
}

// pick truncates the ranked candidates, or diversifies them when truncation
// would leave a floor unmet. plain is reported when diversifying changes nothing.
func pick(ranked []model.RetrievedChunk, floors map[model.SourceType]int, topK int, plain model.Selection) model.RetrievalResult {
	top := head(ranked, topK)
	if floorsMet(top, ranked, floors) {
		return result(top, plain)
	}
	diversified := diversify(ranked, floors, topK)
	if sameChunks(top, diversified) {
		return result(top, plain)
	}
	return result(diversified, model.SelectionDiversified)
}

// floorsMet reports whether plain already holds as many chunks of each floored
// type as the matched pool can supply.
func floorsMet(plain, matched []model.RetrievedChunk, floors map[model.SourceType]int) bool {
	have := countTypes(plain)
	avail := countTypes(matched)
	for t, floor := range floors {
		want := floor
		if avail[t] < want {
			want = avail[t]
		}
		if have[t] < want {
			return false
		}
	}
	return true
}

// diversify reserves the best chunks of each floored type (sections before
// articles when slots run short), then fills by score. matched is ranked.
func diversify(matched []model.RetrievedChunk, floors map[model.SourceType]int, topK int) []model.RetrievedChunk {
	if topK <= 0 {
		return nil
	}
	chosen := make(map[int]struct{}, topK)
	for _, t := range []model.SourceType{model.SourceSection, model.SourceArticle} {
		need := floors[t]
		for i, ch := range matched {
			if need == 0 || len(chosen) == topK {
				break
			}
			if ch.SourceType == t {
				chosen[i] = struct{}{}
				need--
			}
		}
	}
	for i := range matched {
		if len(chosen) == topK {
			break
		}
		chosen[i] = struct{}{}
	}

	out := make([]model.RetrievedChunk, 0, len(chosen))
	for i, ch := range matched {
		if _, ok := chosen[i]; ok {
			out = append(out, ch)
		}
	}
	return out
}

func result(chunks []model.RetrievedChunk, sel model.Selection) model.RetrievalResult {
	res := model.RetrievalResult{Chunks: chunks, Selection: sel}
	if len(chunks) > 0 {
		res.TopSimilarity = chunks[0].Score
	}
	return res
}

func byScore(pool []model.RetrievedChunk) []model.RetrievedChunk {
	out := make([]model.RetrievedChunk, len(pool))
	copy(out, pool)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	return out
}

func head(chunks []model.RetrievedChunk, n int) []model.RetrievedChunk {
	if n < 0 {
		n = 0
	}
	if len(chunks) > n {
		return chunks[:n]
	}
	return chunks
}

func sameChunks(a, b []model.RetrievedChunk) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].ChunkID != b[i].ChunkID {
			return false
		}
	}
	return true
}

func countTypes(chunks []model.RetrievedChunk) map[model.SourceType]int {
	n := map[model.SourceType]int{}
	for _, ch := range chunks {
		n[ch.SourceType]++
	}
	return n
}
