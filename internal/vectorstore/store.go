// Package vectorstore is the chunk index: passage metadata in SQLite and
// embeddings in a sqlite-vec vec0 table searched by cosine distance.
package vectorstore

import (
	"context"
	"database/sql"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/AtharvTrivedi21/LegalRAG-KnowledgeGraph/internal/core/model"
	sqlite_vec "github.com/asg017/sqlite-vec-go-bindings/cgo"
	_ "github.com/mattn/go-sqlite3"
)

func init() {
	sqlite_vec.Auto()
}

// vec0 rejects larger k in a single KNN query.
const maxK = 4096

var ErrDimensionMismatch = errors.New("embedding dimension mismatch")

// Chunk is one passage with its embedding, as written by Upsert.
type Chunk struct {
	ChunkID    string           `json:"chunk_id"`
	SourceType model.SourceType `json:"source_type"`
	SourceID   string           `json:"source_id"`
	Text       string           `json:"text"`
	Embedding  []float32        `json:"embedding,omitempty"`
}

// Stats summarizes index contents for health reporting.
type Stats struct {
	Chunks   int                      `json:"chunks"`
	BySource map[model.SourceType]int `json:"by_source"`
}

type Store struct {
	db  *sql.DB
	dim int
}

func New(dbPath string, dim int) (*Store, error) {
	if dim < 1 {
		return nil, fmt.Errorf("invalid embedding dimension %d", dim)
	}
	dir := filepath.Dir(dbPath)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("creating db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=30000")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}
	if _, err := db.Exec(schemaSQL(dim)); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(30 * time.Minute)

	return &Store{db: db, dim: dim}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Dimension() int { return s.dim }

// Upsert inserts or replaces chunks by ChunkID in one transaction.
func (s *Store) Upsert(ctx context.Context, chunks ...Chunk) error {
	for _, c := range chunks {
		if c.ChunkID == "" || c.SourceID == "" {
			return fmt.Errorf("chunk %q: chunk_id and source_id are required", c.ChunkID)
		}
		if !c.SourceType.Valid() {
			return fmt.Errorf("chunk %q: unknown source type %q", c.ChunkID, c.SourceType)
		}
		if len(c.Embedding) != s.dim {
			return fmt.Errorf("chunk %q: %w: got %d, want %d", c.ChunkID, ErrDimensionMismatch, len(c.Embedding), s.dim)
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, c := range chunks {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO chunks (chunk_id, source_type, source_id, text) VALUES (?, ?, ?, ?)
			ON CONFLICT(chunk_id) DO UPDATE SET
				source_type = excluded.source_type,
				source_id = excluded.source_id,
				text = excluded.text
		`, c.ChunkID, string(c.SourceType), c.SourceID, c.Text); err != nil {
			return fmt.Errorf("upserting chunk %q: %w", c.ChunkID, err)
		}

		var id int64
		if err := tx.QueryRowContext(ctx, "SELECT id FROM chunks WHERE chunk_id = ?", c.ChunkID).Scan(&id); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM vec_chunks WHERE id = ?", id); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, "INSERT INTO vec_chunks (id, embedding) VALUES (?, ?)", id, serializeFloat32(c.Embedding)); err != nil {
			return fmt.Errorf("inserting embedding for %q: %w", c.ChunkID, err)
		}
	}
	return tx.Commit()
}

// Search returns the k nearest chunks. Score is cosine similarity.
func (s *Store) Search(ctx context.Context, vector []float32, k int) ([]model.RetrievedChunk, error) {
	if len(vector) != s.dim {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrDimensionMismatch, len(vector), s.dim)
	}
	if k <= 0 {
		return nil, nil
	}
	if k > maxK {
		k = maxK
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT c.chunk_id, c.source_type, c.source_id, c.text, v.distance
		FROM vec_chunks v
		JOIN chunks c ON c.id = v.id
		WHERE v.embedding MATCH ? AND k = ?
		ORDER BY v.distance
	`, serializeFloat32(vector), k)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []model.RetrievedChunk
	for rows.Next() {
		var r model.RetrievedChunk
		var sourceType string
		var distance float64
		if err := rows.Scan(&r.ChunkID, &sourceType, &r.SourceID, &r.Text, &distance); err != nil {
			return nil, err
		}
		r.SourceType = model.SourceType(sourceType)
		r.Score = 1.0 - distance
		results = append(results, r)
	}
	return results, rows.Err()
}

func (s *Store) Stats(ctx context.Context) (Stats, error) {
	st := Stats{BySource: map[model.SourceType]int{}}
	rows, err := s.db.QueryContext(ctx, "SELECT source_type, COUNT(*) FROM chunks GROUP BY source_type")
	if err != nil {
		return st, err
	}
	defer rows.Close()
	for rows.Next() {
		var t string
		var n int
		if err := rows.Scan(&t, &n); err != nil {
			return st, err
		}
		st.BySource[model.SourceType(t)] = n
		st.Chunks += n
	}
	return st, rows.Err()
}

// serializeFloat32 converts a float32 slice to little-endian bytes for sqlite-vec.
func serializeFloat32(v []float32) []byte {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}
