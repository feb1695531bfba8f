package kg

import (
	"context"
	"fmt"
	"strings"

	"github.com/AtharvTrivedi21/LegalRAG-KnowledgeGraph/internal/core/model"
	"github.com/AtharvTrivedi21/LegalRAG-KnowledgeGraph/internal/driver"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

const caseSnippetChars = 300

// ProvisionLookup resolves provisions by number. An empty statuteID matches
// every statute.
type ProvisionLookup interface {
	FindProvisionsByNumber(ctx context.Context, kind model.ProvisionKind, numbers []string, statuteID string) ([]model.Provision, error)
}

// CaseLookup follows CITES edges back to the citing cases.
type CaseLookup interface {
	FindCasesCiting(ctx context.Context, ids []string) ([]model.CaseRef, error)
}

// Store implements both lookups over a GraphDriver.
type Store struct {
	Driver driver.GraphDriver
}

func NewStore(d driver.GraphDriver) *Store {
	return &Store{Driver: d}
}

func (s *Store) FindProvisionsByNumber(ctx context.Context, kind model.ProvisionKind, numbers []string, statuteID string) ([]model.Provision, error) {
	if len(numbers) == 0 {
		return nil, nil
	}

	query := driver.SectionsByNumberQuery
	if kind == model.KindArticle {
		query = driver.ArticlesByNumberQuery
	}
	params := map[string]interface{}{
		"nums":   numbers,
		"act_id": nil,
	}
	if statuteID != "" {
		params["act_id"] = statuteID
	}

	res, err := s.Driver.ExecuteQuery(ctx, query, params)
	if err != nil {
		return nil, err
	}

	provisions := make([]model.Provision, 0, len(res.Records))
	for _, rec := range res.Records {
		id := recordString(rec, "id")
		if id == "" {
			continue
		}
		provisions = append(provisions, model.Provision{
			ID:          id,
			Kind:        kind,
			Number:      recordString(rec, "number"),
			StatuteID:   recordString(rec, "act_id"),
			StatuteName: recordString(rec, "act_name"),
			Text:        recordString(rec, "full_text"),
		})
	}
	return provisions, nil
}

func (s *Store) FindCasesCiting(ctx context.Context, ids []string) ([]model.CaseRef, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	res, err := s.Driver.ExecuteQuery(ctx, driver.CasesCitingQuery, map[string]interface{}{"ids": ids})
	if err != nil {
		return nil, err
	}

	cases := make([]model.CaseRef, 0, len(res.Records))
	for _, rec := range res.Records {
		id := recordString(rec, "case_id")
		if id == "" {
			continue
		}
		cases = append(cases, model.CaseRef{ID: id, Year: recordInt(rec, "year")})
	}
	return cases, nil
}

// FindCaseDetails returns case ids with a short judgment snippet for display.
func (s *Store) FindCaseDetails(ctx context.Context, ids []string) ([]model.CaseDetail, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	res, err := s.Driver.ExecuteQuery(ctx, driver.CaseDetailsQuery, map[string]interface{}{"ids": ids})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrGraphUnavailable, err)
	}

	details := make([]model.CaseDetail, 0, len(res.Records))
	for _, rec := range res.Records {
		details = append(details, model.CaseDetail{
			ID:      recordString(rec, "case_id"),
			Year:    recordInt(rec, "year"),
			Snippet: truncate(strings.TrimSpace(recordString(rec, "judgment_text")), caseSnippetChars),
		})
	}
	return details, nil
}

func recordString(rec *neo4j.Record, key string) string {
	v, ok := rec.Get(key)
	if !ok || v == nil {
		return ""
	}
	switch t := v.(type) {
	case string:
		return t
	default:
		return fmt.Sprint(t)
	}
}

// year comes back as int64 or float64 depending on how the CSV was loaded.
func recordInt(rec *neo4j.Record, key string) int {
	v, ok := rec.Get(key)
	if !ok || v == nil {
		return 0
	}
	switch t := v.(type) {
	case int64:
		return int(t)
	case int:
		return t
	case float64:
		return int(t)
	default:
		return 0
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
