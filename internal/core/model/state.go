package model

import (
	"errors"
	"fmt"
)

// Stage is the position of a run in the strictly linear workflow.
type Stage int

const (
	StageCreated Stage = iota
	StageParsed
	StageConstrained
	StageRephrased
	StageRetrieved
	StageAnswered
)

var stageNames = [...]string{"created", "parsed", "constrained", "rephrased", "retrieved", "answered"}

func (s Stage) String() string {
	if s < 0 || int(s) >= len(stageNames) {
		return fmt.Sprintf("stage(%d)", int(s))
	}
	return stageNames[s]
}

var ErrStageOrder = errors.New("workflow stage written out of order")

// WorkflowState is threaded through one run. Each stage writes its own fields
// exactly once through its setter; setters reject out-of-order writes, so a
// field can never be overwritten after a later stage has read it.
type WorkflowState struct {
	RunID     string
	UserQuery string

	stage       Stage
	parsed      ParsedQuery
	constraints GraphConstraints
	metadata    GraphMetadata
	graphError  string
	legalQuery  string
	retrieval   RetrievalResult
	vectorError string
	answer      Answer
	outcome     AnswerOutcome
}

func NewWorkflowState(runID, userQuery string) *WorkflowState {
	return &WorkflowState{RunID: runID, UserQuery: userQuery}
}

func (s *WorkflowState) Stage() Stage { return s.stage }

func (s *WorkflowState) advance(from Stage) error {
	if s.stage != from {
		return fmt.Errorf("%w: at %s, expected %s", ErrStageOrder, s.stage, from)
	}
	s.stage = from + 1
	return nil
}

func (s *WorkflowState) SetParsed(p ParsedQuery) error {
	if err := s.advance(StageCreated); err != nil {
		return err
	}
	s.parsed = p
	return nil
}

// SetGraph records resolution output. A non-nil graphErr is kept as a
// diagnostic; the constraints and metadata are expected to be empty then.
func (s *WorkflowState) SetGraph(c GraphConstraints, m GraphMetadata, graphErr error) error {
	if err := s.advance(StageParsed); err != nil {
		return err
	}
	s.constraints = c
	s.metadata = m
	if graphErr != nil {
		s.graphError = graphErr.Error()
	}
	return nil
}

func (s *WorkflowState) SetLegalQuery(q string) error {
	if err := s.advance(StageConstrained); err != nil {
		return err
	}
	s.legalQuery = q
	return nil
}

func (s *WorkflowState) SetRetrieval(r RetrievalResult, vectorErr error) error {
	if err := s.advance(StageRephrased); err != nil {
		return err
	}
	s.retrieval = r
	if vectorErr != nil {
		s.vectorError = vectorErr.Error()
	}
	return nil
}

func (s *WorkflowState) SetAnswer(a Answer, outcome AnswerOutcome) error {
	if err := s.advance(StageRetrieved); err != nil {
		return err
	}
	s.answer = a
	s.outcome = outcome
	return nil
}

func (s *WorkflowState) Parsed() ParsedQuery { return s.parsed }
func (s *WorkflowState) Constraints() GraphConstraints { return s.constraints }
func (s *WorkflowState) Metadata() GraphMetadata { return s.metadata }
func (s *WorkflowState) GraphError() string { return s.graphError }
func (s *WorkflowState) LegalQuery() string { return s.legalQuery }
func (s *WorkflowState) Retrieval() RetrievalResult { return s.retrieval }
func (s *WorkflowState) VectorError() string { return s.vectorError }
func (s *WorkflowState) Answer() Answer { return s.answer }
func (s *WorkflowState) Outcome() AnswerOutcome { return s.outcome }

// Diagnostics is the UI-facing view of a finished run.
type Diagnostics struct {
	RunID                     string        `json:"run_id"`
	LegalQuery                string        `json:"legal_query"`
	GraphError                string        `json:"graph_error,omitempty"`
	VectorError               string        `json:"vector_error,omitempty"`
	UsedFallbackUnconstrained bool          `json:"used_fallback_unconstrained"`
	TopSimilarity             float64       `json:"top_similarity"`
	Selection                 Selection     `json:"selection"`
	Outcome                   AnswerOutcome `json:"outcome"`
}

func (s *WorkflowState) Diagnostics() Diagnostics {
	return Diagnostics{
		RunID:                     s.RunID,
		LegalQuery:                s.legalQuery,
		GraphError:                s.graphError,
		VectorError:               s.vectorError,
		UsedFallbackUnconstrained: s.retrieval.UsedFallbackUnconstrained,
		TopSimilarity:             s.retrieval.TopSimilarity,
		Selection:                 s.retrieval.Selection,
		Outcome:                   s.outcome,
	}
}
