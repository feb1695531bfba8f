package model

import (
	"encoding/json"
	"sort"
)

// GraphConstraints is the allow-list derived from graph resolution. All three
// sets empty means "no constraint".
type GraphConstraints struct {
	AllowedCaseIDs    map[string]struct{}
	AllowedSectionIDs map[string]struct{}
	AllowedArticleIDs map[string]struct{}
}

func NewGraphConstraints(caseIDs, sectionIDs, articleIDs []string) GraphConstraints {
	return GraphConstraints{
		AllowedCaseIDs:    toSet(caseIDs),
		AllowedSectionIDs: toSet(sectionIDs),
		AllowedArticleIDs: toSet(articleIDs),
	}
}

func (c GraphConstraints) IsEmpty() bool {
	return len(c.AllowedCaseIDs) == 0 && len(c.AllowedSectionIDs) == 0 && len(c.AllowedArticleIDs) == 0
}

// Allows reports whether a chunk sourced from (sourceType, sourceID) passes.
func (c GraphConstraints) Allows(sourceType SourceType, sourceID string) bool {
	var set map[string]struct{}
	switch sourceType {
	case SourceCase:
		set = c.AllowedCaseIDs
	case SourceSection:
		set = c.AllowedSectionIDs
	case SourceArticle:
		set = c.AllowedArticleIDs
	default:
		return false
	}
	_, ok := set[sourceID]
	return ok
}

// AllowsType reports whether any id of the given source type is allowed.
func (c GraphConstraints) AllowsType(sourceType SourceType) bool {
	switch sourceType {
	case SourceCase:
		return len(c.AllowedCaseIDs) > 0
	case SourceSection:
		return len(c.AllowedSectionIDs) > 0
	case SourceArticle:
		return len(c.AllowedArticleIDs) > 0
	}
	return false
}

func (c GraphConstraints) CaseIDs() []string { return sortedKeys(c.AllowedCaseIDs) }
func (c GraphConstraints) SectionIDs() []string { return sortedKeys(c.AllowedSectionIDs) }
func (c GraphConstraints) ArticleIDs() []string { return sortedKeys(c.AllowedArticleIDs) }

func (c GraphConstraints) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		AllowedCaseIDs    []string `json:"allowed_case_ids"`
		AllowedSectionIDs []string `json:"allowed_section_ids"`
		AllowedArticleIDs []string `json:"allowed_article_ids"`
	}{c.CaseIDs(), c.SectionIDs(), c.ArticleIDs()})
}

// GraphMetadata is descriptive only; it feeds prompt assembly and display.
type GraphMetadata struct {
	Sections           []Provision `json:"sections"`
	Articles           []Provision `json:"articles"`
	Cases              []CaseRef   `json:"cases"`
	ApplicableStatutes []Statute   `json:"applicable_statutes"`
}

func (m GraphMetadata) IsEmpty() bool {
	return len(m.Sections) == 0 && len(m.Articles) == 0 && len(m.Cases) == 0
}

func toSet(ids []string) map[string]struct{} {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if id != "" {
			set[id] = struct{}{}
		}
	}
	return set
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
