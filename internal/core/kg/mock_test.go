package kg

import (
	"context"
	"errors"
	"sync"

	"github.com/AtharvTrivedi21/LegalRAG-KnowledgeGraph/internal/core/model"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

type MockDriver struct {
	QueryExecuted string
	QueryParams   map[string]interface{}
	MockResult    neo4j.EagerResult
	Err           error
}

func (m *MockDriver) ExecuteQuery(ctx context.Context, query string, params map[string]interface{}) (neo4j.EagerResult, error) {
	m.QueryExecuted = query
	m.QueryParams = params
	if m.Err != nil {
		return neo4j.EagerResult{}, m.Err
	}
	return m.MockResult, nil
}

func (m *MockDriver) VerifyConnectivity(ctx context.Context) error { return m.Err }
func (m *MockDriver) BuildIndices(ctx context.Context) error { return nil }
func (m *MockDriver) Close(ctx context.Context) error { return nil }

func record(keys []string, values ...any) *neo4j.Record {
	return &neo4j.Record{Keys: keys, Values: values}
}

// fakeGraph is an in-memory graph keyed by provision id.
type fakeGraph struct {
	mu         sync.Mutex
	provisions []model.Provision
	citations  map[string][]model.CaseRef
	failures   int
	err        error
	calls      int
}

var errBoom = errors.New("connection refused")

func (f *fakeGraph) fail() error {
	f.calls++
	if f.err != nil {
		return f.err
	}
	if f.failures > 0 {
		f.failures--
		return errBoom
	}
	return nil
}

func (f *fakeGraph) FindProvisionsByNumber(ctx context.Context, kind model.ProvisionKind, numbers []string, statuteID string) ([]model.Provision, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail(); err != nil {
		return nil, err
	}
	want := map[string]struct{}{}
	for _, n := range numbers {
		want[n] = struct{}{}
	}
	var out []model.Provision
	for _, p := range f.provisions {
		if p.Kind != kind {
			continue
		}
		if statuteID != "" && p.StatuteID != statuteID {
			continue
		}
		if _, ok := want[p.Number]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeGraph) FindCasesCiting(ctx context.Context, ids []string) ([]model.CaseRef, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail(); err != nil {
		return nil, err
	}
	var out []model.CaseRef
	for _, id := range ids {
		out = append(out, f.citations[id]...)
	}
	return out, nil
}

func legalGraph() *fakeGraph {
	return &fakeGraph{
		provisions: []model.Provision{
			{ID: "BNS_Sec_302", Kind: model.KindSection, Number: "302", StatuteID: "BNS", StatuteName: "Bharatiya Nyaya Sanhita"},
			{ID: "BNSS_Sec_302", Kind: model.KindSection, Number: "302", StatuteID: "BNSS", StatuteName: "Bharatiya Nagarik Suraksha Sanhita"},
			{ID: "BNS_Sec_303", Kind: model.KindSection, Number: "303", StatuteID: "BNS", StatuteName: "Bharatiya Nyaya Sanhita"},
			{ID: "Constitution_Art_14", Kind: model.KindArticle, Number: "14", StatuteID: "Constitution", StatuteName: "Constitution of India"},
		},
		citations: map[string][]model.CaseRef{
			"BNS_Sec_302":         {{ID: "SC_2019_12", Year: 2019}},
			"BNSS_Sec_302":        {{ID: "SC_2021_40", Year: 2021}},
			"Constitution_Art_14": {{ID: "SC_1978_01", Year: 1978}, {ID: "SC_2019_12", Year: 2019}},
		},
	}
}
