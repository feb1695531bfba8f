// Package core runs the answer workflow: parse, resolve against the graph,
// rephrase, retrieve, then assemble.
package core

import (
	"context"
	"errors"
	"time"

	"github.com/AtharvTrivedi21/LegalRAG-KnowledgeGraph/internal/core/model"
	"github.com/AtharvTrivedi21/LegalRAG-KnowledgeGraph/internal/core/parser"
	"github.com/AtharvTrivedi21/LegalRAG-KnowledgeGraph/internal/logx"
	"github.com/AtharvTrivedi21/LegalRAG-KnowledgeGraph/internal/metrics"
	"github.com/google/uuid"
)

type Resolver interface {
	Resolve(ctx context.Context, pq model.ParsedQuery) (model.GraphConstraints, model.GraphMetadata, error)
}

type Rephraser interface {
	Rephrase(ctx context.Context, raw string) (string, bool)
}

type Retriever interface {
	Retrieve(ctx context.Context, query string, c model.GraphConstraints) (model.RetrievalResult, error)
}

type Assembler interface {
	Assemble(ctx context.Context, md model.GraphMetadata, chunks []model.RetrievedChunk, topSimilarity float64, rawQuery string) (model.Answer, model.AnswerOutcome, error)
}

type Pipeline struct {
	Resolver  Resolver
	Rephraser Rephraser
	Retriever Retriever
	Assembler Assembler

	// NewRunID defaults to uuid.NewString.
	NewRunID func() string
}

func NewPipeline(resolver Resolver, rephraser Rephraser, retriever Retriever, assembler Assembler) *Pipeline {
	return &Pipeline{
		Resolver:  resolver,
		Rephraser: rephraser,
		Retriever: retriever,
		Assembler: assembler,
		NewRunID:  uuid.NewString,
	}
}

// Answer runs one question through every stage. Subsystem failures degrade
// into diagnostics on the returned state; the only error is ctx ending, in
// which case no state is returned.
func (p *Pipeline) Answer(ctx context.Context, rawQuery string) (*model.WorkflowState, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	newID := p.NewRunID
	if newID == nil {
		newID = uuid.NewString
	}
	runID := newID()
	state := model.NewWorkflowState(runID, rawQuery)
	logx.Debug().Str("run_id", runID).Str("query", rawQuery).Msg("workflow started")

	start := time.Now()
	pq := parser.Parse(rawQuery)
	metrics.ObserveStage("parse", start)
	if err := state.SetParsed(pq); err != nil {
		return nil, err
	}
	logx.Debug().Str("run_id", runID).
		Strs("sections", pq.SectionNumbers).
		Strs("articles", pq.ArticleNumbers).
		Strs("explicit_ids", pq.ExplicitIDs).
		Str("section_hint", pq.SectionActHint).
		Str("article_hint", pq.ArticleActHint).
		Msg("query parsed")

	start = time.Now()
	constraints, md, graphErr := p.Resolver.Resolve(ctx, pq)
	metrics.ObserveStage("resolve", start)
	if err := abandoned(ctx, graphErr); err != nil {
		return nil, err
	}
	if graphErr != nil {
		logx.Warn().Err(graphErr).Str("run_id", runID).Msg("graph resolution failed, continuing unconstrained")
		metrics.SubsystemErrors.WithLabelValues("graph").Inc()
		constraints, md = model.GraphConstraints{}, model.GraphMetadata{}
	}
	if err := state.SetGraph(constraints, md, graphErr); err != nil {
		return nil, err
	}
	logx.Debug().Str("run_id", runID).
		Int("sections", len(md.Sections)).
		Int("articles", len(md.Articles)).
		Int("cases", len(md.Cases)).
		Msg("graph resolved")

	start = time.Now()
	legalQuery, rephrased := p.Rephraser.Rephrase(ctx, rawQuery)
	metrics.ObserveStage("rephrase", start)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := state.SetLegalQuery(legalQuery); err != nil {
		return nil, err
	}
	logx.Debug().Str("run_id", runID).Bool("rephrased", rephrased).Str("legal_query", legalQuery).Msg("query rephrased")

	start = time.Now()
	result, vectorErr := p.Retriever.Retrieve(ctx, legalQuery, constraints)
	metrics.ObserveStage("retrieve", start)
	if err := abandoned(ctx, vectorErr); err != nil {
		return nil, err
	}
	if vectorErr != nil {
		logx.Warn().Err(vectorErr).Str("run_id", runID).Msg("vector retrieval failed, answering from graph only")
		metrics.SubsystemErrors.WithLabelValues("vector").Inc()
		result = model.RetrievalResult{}
	} else {
		metrics.RetrievalSelections.WithLabelValues(string(result.Selection)).Inc()
		metrics.TopSimilarity.Observe(result.TopSimilarity)
		if result.UsedFallbackUnconstrained {
			logx.Warn().Str("run_id", runID).Msg("constraints matched no indexed chunk, fell back to unconstrained retrieval")
		}
	}
	if err := state.SetRetrieval(result, vectorErr); err != nil {
		return nil, err
	}
	logx.Debug().Str("run_id", runID).
		Int("chunks", len(result.Chunks)).
		Str("selection", string(result.Selection)).
		Float64("top_similarity", result.TopSimilarity).
		Msg("chunks retrieved")

	start = time.Now()
	ans, outcome, genErr := p.Assembler.Assemble(ctx, md, result.Chunks, result.TopSimilarity, rawQuery)
	metrics.ObserveStage("answer", start)
	if err := abandoned(ctx, genErr); err != nil {
		return nil, err
	}
	switch {
	case genErr != nil:
		logx.Warn().Err(genErr).Str("run_id", runID).Msg("generation failed, returning fallback answer")
		metrics.SubsystemErrors.WithLabelValues("generation").Inc()
	case outcome == model.OutcomeGuarded:
		logx.Warn().Str("run_id", runID).Float64("top_similarity", result.TopSimilarity).Msg("insufficient context, generation skipped")
	}
	if err := state.SetAnswer(ans, outcome); err != nil {
		return nil, err
	}
	metrics.AnswersTotal.WithLabelValues(string(outcome)).Inc()

	logx.Info().Str("run_id", runID).
		Str("outcome", string(outcome)).
		Bool("graph_error", graphErr != nil).
		Bool("vector_error", vectorErr != nil).
		Msg("workflow finished")
	return state, nil
}

// abandoned returns the context error when the run must stop.
func abandoned(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	if errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
