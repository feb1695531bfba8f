package model

import "sort"

// ParsedQuery is the immutable output of the query parser. Build it with
// NewParsedQuery so HasExplicitRefs always agrees with the reference sets.
type ParsedQuery struct {
	RawQuery        string   `json:"raw_query"`
	SectionNumbers  []string `json:"section_numbers"`
	ArticleNumbers  []string `json:"article_numbers"`
	ExplicitIDs     []string `json:"explicit_ids"`
	SectionActHint  string   `json:"section_act_hint,omitempty"`
	ArticleActHint  string   `json:"article_act_hint,omitempty"`
	HasExplicitRefs bool     `json:"has_explicit_refs"`
}

// NewParsedQuery dedupes and sorts every reference set. Hints are dropped when
// no reference of their kind exists.
func NewParsedQuery(raw string, sections, articles, explicitIDs []string, sectionHint, articleHint string) ParsedQuery {
	pq := ParsedQuery{
		RawQuery:       raw,
		SectionNumbers: dedupeSorted(sections),
		ArticleNumbers: dedupeSorted(articles),
		ExplicitIDs:    dedupeSorted(explicitIDs),
	}
	if len(pq.SectionNumbers) > 0 {
		pq.SectionActHint = sectionHint
	}
	if len(pq.ArticleNumbers) > 0 {
		pq.ArticleActHint = articleHint
	}
	pq.HasExplicitRefs = len(pq.SectionNumbers) > 0 || len(pq.ArticleNumbers) > 0
	return pq
}

func dedupeSorted(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, v := range in {
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
