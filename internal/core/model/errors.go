package model

import "errors"

var (
	// ErrGraphUnavailable means the knowledge graph was unreachable or a query failed.
	ErrGraphUnavailable = errors.New("graph_unavailable")

	// ErrVectorUnavailable means embedding or index access failed.
	ErrVectorUnavailable = errors.New("vector_unavailable")

	// ErrGenerationFailed means the language model errored or returned nothing.
	ErrGenerationFailed = errors.New("generation_failed")
)
