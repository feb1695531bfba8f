package server

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/AtharvTrivedi21/LegalRAG-KnowledgeGraph/internal/core/model"
	"github.com/AtharvTrivedi21/LegalRAG-KnowledgeGraph/internal/logx"
	"github.com/AtharvTrivedi21/LegalRAG-KnowledgeGraph/internal/vectorstore"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const maxCaseIDs = 50

type Answerer interface {
	Answer(ctx context.Context, query string) (*model.WorkflowState, error)
}

type CaseDetailer interface {
	FindCaseDetails(ctx context.Context, ids []string) ([]model.CaseDetail, error)
}

type GraphPinger interface {
	VerifyConnectivity(ctx context.Context) error
}

type IndexStater interface {
	Stats(ctx context.Context) (vectorstore.Stats, error)
}

// Server exposes the pipeline over HTTP. Graph and Index are only used by
// /healthz and may be nil.
type Server struct {
	Pipeline Answerer
	Cases    CaseDetailer
	Graph    GraphPinger
	Index    IndexStater
}

func NewServer(pipeline Answerer, cases CaseDetailer, graph GraphPinger, index IndexStater) *Server {
	return &Server{Pipeline: pipeline, Cases: cases, Graph: graph, Index: index}
}

func (s *Server) SetupRouter() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger())

	r.POST("/answer", s.Answer)
	r.POST("/cases", s.CaseDetails)
	r.GET("/healthz", s.Health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logx.Info().
			Str("method", c.Request.Method).
			Str("path", c.FullPath()).
			Int("status", c.Writer.Status()).
			Dur("latency", time.Since(start)).
			Msg("request")
	}
}

type AnswerRequest struct {
	Query string `json:"query"`
}

type AnswerResponse struct {
	Answer      model.Answer           `json:"answer"`
	Constraints model.GraphConstraints `json:"constraints"`
	Metadata    model.GraphMetadata    `json:"metadata"`
	Chunks      []model.RetrievedChunk `json:"chunks"`
	Diagnostics model.Diagnostics      `json:"diagnostics"`
}

func (s *Server) Answer(c *gin.Context) {
	var req AnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "query must not be empty"})
		return
	}

	state, err := s.Pipeline.Answer(c.Request.Context(), req.Query)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "request canceled"})
			return
		}
		logx.Error().Err(err).Msg("Failed to answer query")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to answer query"})
		return
	}

	c.JSON(http.StatusOK, AnswerResponse{
		Answer:      state.Answer(),
		Constraints: state.Constraints(),
		Metadata:    state.Metadata(),
		Chunks:      state.Retrieval().Chunks,
		Diagnostics: state.Diagnostics(),
	})
}

type CasesRequest struct {
	IDs []string `json:"ids"`
}

// CaseDetails backs the "expand case" view in the UI.
func (s *Server) CaseDetails(c *gin.Context) {
	var req CasesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}
	if len(req.IDs) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ids must not be empty"})
		return
	}
	if len(req.IDs) > maxCaseIDs {
		req.IDs = req.IDs[:maxCaseIDs]
	}

	details, err := s.Cases.FindCaseDetails(c.Request.Context(), req.IDs)
	if err != nil {
		logx.Warn().Err(err).Msg("Failed to fetch case details")
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": model.ErrGraphUnavailable.Error()})
		return
	}
	if details == nil {
		details = []model.CaseDetail{}
	}
	c.JSON(http.StatusOK, gin.H{"cases": details})
}

func (s *Server) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	status := http.StatusOK
	body := gin.H{"status": "ok"}

	switch {
	case s.Graph == nil:
		body["graph"] = "not configured"
		status = http.StatusServiceUnavailable
	default:
		if err := s.Graph.VerifyConnectivity(ctx); err != nil {
			body["graph"] = err.Error()
			status = http.StatusServiceUnavailable
		} else {
			body["graph"] = "ok"
		}
	}

	switch {
	case s.Index == nil:
		body["vector"] = "not configured"
		status = http.StatusServiceUnavailable
	default:
		if st, err := s.Index.Stats(ctx); err != nil {
			body["vector"] = err.Error()
			status = http.StatusServiceUnavailable
		} else {
			body["vector"] = st
		}
	}

	if status != http.StatusOK {
		body["status"] = "degraded"
	}
	c.JSON(status, body)
}
