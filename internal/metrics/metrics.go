// Package metrics holds the Prometheus collectors for the answer workflow.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// StageDuration tracks wall time per workflow stage
	StageDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "legalrag_stage_duration_seconds",
			Help:    "Duration of each workflow stage",
			Buckets: prometheus.ExponentialBuckets(0.005, 2, 14),
		},
		[]string{"stage"},
	)

	// AnswersTotal counts finished runs by outcome
	AnswersTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "legalrag_answers_total",
			Help: "Answers produced, by outcome",
		},
		[]string{"outcome"},
	)

	// RetrievalSelections counts which branch the retriever took
	RetrievalSelections = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "legalrag_retrieval_selection_total",
			Help: "Retrieval results, by selection branch",
		},
		[]string{"selection"},
	)

	// SubsystemErrors counts degraded runs by the subsystem that failed
	SubsystemErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "legalrag_subsystem_errors_total",
			Help: "Recovered subsystem failures",
		},
		[]string{"subsystem"},
	)

	// TopSimilarity tracks the best returned chunk score per run
	TopSimilarity = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "legalrag_top_similarity",
			Help:    "Cosine similarity of the best retrieved chunk",
			Buckets: prometheus.LinearBuckets(-0.2, 0.1, 13),
		},
	)
)

func init() {
	prometheus.MustRegister(StageDuration)
	prometheus.MustRegister(AnswersTotal)
	prometheus.MustRegister(RetrievalSelections)
	prometheus.MustRegister(SubsystemErrors)
	prometheus.MustRegister(TopSimilarity)
}

// ObserveStage records the time since start under stage.
func ObserveStage(stage string, start time.Time) {
	StageDuration.WithLabelValues(stage).Observe(time.Since(start).Seconds())
}
