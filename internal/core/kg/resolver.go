// Package kg resolves parsed legal references against the knowledge graph.
package kg

import (
	"context"
	"fmt"
	"sort"
	"strconv"

	"github.com/AtharvTrivedi21/LegalRAG-KnowledgeGraph/internal/core/model"
	"github.com/AtharvTrivedi21/LegalRAG-KnowledgeGraph/internal/core/parser"
	"github.com/AtharvTrivedi21/LegalRAG-KnowledgeGraph/internal/core/resilience"
	"golang.org/x/sync/errgroup"
)

// Resolver turns a ParsedQuery into an allow-list plus display metadata.
type Resolver struct {
	Provisions ProvisionLookup
	Cases      CaseLookup
	Policy     resilience.Policy
}

func NewResolver(provisions ProvisionLookup, cases CaseLookup, policy resilience.Policy) *Resolver {
	return &Resolver{Provisions: provisions, Cases: cases, Policy: policy}
}

// Resolve returns empty constraints and metadata without error when pq holds
// no references. Store failures are wrapped in model.ErrGraphUnavailable;
// cancellation of ctx is returned as-is.
func (r *Resolver) Resolve(ctx context.Context, pq model.ParsedQuery) (model.GraphConstraints, model.GraphMetadata, error) {
	if !pq.HasExplicitRefs && len(pq.ExplicitIDs) == 0 {
		return model.GraphConstraints{}, model.GraphMetadata{}, nil
	}

	var sections, articles, explicit []model.Provision
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		sections, err = r.lookup(gctx, model.KindSection, pq.SectionNumbers, pq.SectionActHint)
		return err
	})
	g.Go(func() error {
		var err error
		articles, err = r.lookup(gctx, model.KindArticle, pq.ArticleNumbers, pq.ArticleActHint)
		return err
	})
	g.Go(func() error {
		var err error
		explicit, err = r.lookupExplicit(gctx, pq.ExplicitIDs)
		return err
	})
	if err := g.Wait(); err != nil {
		return r.fail(ctx, err)
	}

	for _, p := range explicit {
		if p.Kind == model.KindArticle {
			articles = append(articles, p)
		} else {
			sections = append(sections, p)
		}
	}
	sections = dedupeProvisions(sections)
	articles = dedupeProvisions(articles)

	provisionIDs := make([]string, 0, len(sections)+len(articles))
	for _, p := range sections {
		provisionIDs = append(provisionIDs, p.ID)
	}
	for _, p := range articles {
		provisionIDs = append(provisionIDs, p.ID)
	}

	var cases []model.CaseRef
	if len(provisionIDs) > 0 {
		var err error
		cases, err = resilience.Do(ctx, r.Policy, func(ctx context.Context) ([]model.CaseRef, error) {
			return r.Cases.FindCasesCiting(ctx, provisionIDs)
		})
		if err != nil {
			return r.fail(ctx, err)
		}
		cases = dedupeCases(cases)
	}

	caseIDs := make([]string, 0, len(cases))
	for _, c := range cases {
		caseIDs = append(caseIDs, c.ID)
	}
	sectionIDs := make([]string, 0, len(sections))
	for _, p := range sections {
		sectionIDs = append(sectionIDs, p.ID)
	}
	articleIDs := make([]string, 0, len(articles))
	for _, p := range articles {
		articleIDs = append(articleIDs, p.ID)
	}

	metadata := model.GraphMetadata{
		Sections:           sections,
		Articles:           articles,
		Cases:              cases,
		ApplicableStatutes: collectStatutes(sections, articles),
	}
	return model.NewGraphConstraints(caseIDs, sectionIDs, articleIDs), metadata, nil
}

func (r *Resolver) fail(ctx context.Context, err error) (model.GraphConstraints, model.GraphMetadata, error) {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return model.GraphConstraints{}, model.GraphMetadata{}, ctxErr
	}
	return model.GraphConstraints{}, model.GraphMetadata{}, fmt.Errorf("%w: %v", model.ErrGraphUnavailable, err)
}

// lookup also queries the base form of sub-numbered references, so
// "302(1)" still finds a node stored as "302".
func (r *Resolver) lookup(ctx context.Context, kind model.ProvisionKind, numbers []string, statuteID string) ([]model.Provision, error) {
	if len(numbers) == 0 {
		return nil, nil
	}
	return resilience.Do(ctx, r.Policy, func(ctx context.Context) ([]model.Provision, error) {
		return r.Provisions.FindProvisionsByNumber(ctx, kind, withBaseNumbers(numbers), statuteID)
	})
}

// lookupExplicit resolves typed ids like BNS_Sec_302 through the number
// lookup scoped to their statute and keeps exact id matches only.
func (r *Resolver) lookupExplicit(ctx context.Context, ids []string) ([]model.Provision, error) {
	type group struct {
		kind    model.ProvisionKind
		statute string
	}
	numbers := map[group][]string{}
	wanted := map[string]struct{}{}
	for _, id := range ids {
		ref, ok := parser.SplitProvisionID(id)
		if !ok {
			continue
		}
		key := group{kind: ref.Kind, statute: ref.StatuteID}
		numbers[key] = append(numbers[key], ref.Number)
		wanted[id] = struct{}{}
	}

	keys := make([]group, 0, len(numbers))
	for k := range numbers {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].kind != keys[j].kind {
			return keys[i].kind < keys[j].kind
		}
		return keys[i].statute < keys[j].statute
	})

	var out []model.Provision
	for _, k := range keys {
		found, err := resilience.Do(ctx, r.Policy, func(ctx context.Context) ([]model.Provision, error) {
			return r.Provisions.FindProvisionsByNumber(ctx, k.kind, numbers[k], k.statute)
		})
		if err != nil {
			return nil, err
		}
		for _, p := range found {
			if _, ok := wanted[p.ID]; ok {
				out = append(out, p)
			}
		}
	}
	return out, nil
}

func withBaseNumbers(numbers []string) []string {
	seen := make(map[string]struct{}, len(numbers))
	out := make([]string, 0, len(numbers))
	for _, n := range numbers {
		for _, v := range []string{n, parser.BaseNumber(n)} {
			if _, ok := seen[v]; ok {
				continue
			}
			seen[v] = struct{}{}
			out = append(out, v)
		}
	}
	return out
}

// dedupeProvisions orders by statute, then numerically by provision number.
func dedupeProvisions(in []model.Provision) []model.Provision {
	seen := make(map[string]struct{}, len(in))
	out := make([]model.Provision, 0, len(in))
	for _, p := range in {
		if _, ok := seen[p.ID]; ok {
			continue
		}
		seen[p.ID] = struct{}{}
		out = append(out, p)
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.StatuteID != b.StatuteID {
			return a.StatuteID < b.StatuteID
		}
		na, nb := numericHead(a.Number), numericHead(b.Number)
		if na != nb {
			return na < nb
		}
		return a.ID < b.ID
	})
	return out
}

// dedupeCases orders the most recent judgments first.
func dedupeCases(in []model.CaseRef) []model.CaseRef {
	seen := make(map[string]struct{}, len(in))
	out := make([]model.CaseRef, 0, len(in))
	for _, c := range in {
		if _, ok := seen[c.ID]; ok {
			continue
		}
		seen[c.ID] = struct{}{}
		out = append(out, c)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Year != out[j].Year {
			return out[i].Year > out[j].Year
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func collectStatutes(groups ...[]model.Provision) []model.Statute {
	seen := map[string]struct{}{}
	var out []model.Statute
	for _, g := range groups {
		for _, p := range g {
			if p.StatuteID == "" {
				continue
			}
			if _, ok := seen[p.StatuteID]; ok {
				continue
			}
			seen[p.StatuteID] = struct{}{}
			name := p.StatuteName
			if name == "" {
				name = p.StatuteID
			}
			out = append(out, model.Statute{ID: p.StatuteID, Name: name})
		}
	}
	return out
}

func numericHead(n string) int {
	i := 0
	for i < len(n) && n[i] >= '0' && n[i] <= '9' {
		i++
	}
	v, err := strconv.Atoi(n[:i])
	if err != nil {
		return 0
	}
	return v
}
