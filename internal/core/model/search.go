package model

// SourceType is the kind of node a chunk was cut from.
type SourceType string

const (
	SourceCase    SourceType = "case"
	SourceSection SourceType = "section"
	SourceArticle SourceType = "article"
)

func (s SourceType) Valid() bool {
	switch s {
	case SourceCase, SourceSection, SourceArticle:
		return true
	}
	return false
}

// RetrievedChunk is one passage returned by the vector index. Score is the
// cosine similarity in [-1, 1].
type RetrievedChunk struct {
	ChunkID    string     `json:"chunk_id"`
	SourceType SourceType `json:"source_type"`
	SourceID   string     `json:"source_id"`
	Text       string     `json:"text"`
	Score      float64    `json:"score"`
}
