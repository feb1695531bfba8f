package vectorstore

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"golang.org/x/sync/errgroup"
)

const (
	defaultBatchSize = 64
	embedWorkers     = 4
	maxLineBytes     = 1 << 20
)

type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

type Writer interface {
	Upsert(ctx context.Context, chunks ...Chunk) error
}

// Load reads one JSON Chunk per line from r and writes them in batches.
// Chunks without an embedding are embedded with emb, which may be nil when
// every line carries its own vector. Blank lines are skipped. It returns the
// number of chunks written.
func Load(ctx context.Context, r io.Reader, emb Embedder, w Writer, batchSize int) (int, error) {
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	var (
		batch   []Chunk
		written int
		line    int
	)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := embedMissing(ctx, emb, batch); err != nil {
			return err
		}
		if err := w.Upsert(ctx, batch...); err != nil {
			return err
		}
		written += len(batch)
		batch = nil
		return nil
	}

	for sc.Scan() {
		line++
		raw := sc.Bytes()
		if len(bytes.TrimSpace(raw)) == 0 {
			continue
		}
		var c Chunk
		if err := json.Unmarshal(raw, &c); err != nil {
			return written, fmt.Errorf("line %d: %w", line, err)
		}
		batch = append(batch, c)
		if len(batch) >= batchSize {
			if err := flush(); err != nil {
				return written, err
			}
		}
	}
	if err := sc.Err(); err != nil {
		return written, err
	}
	if err := flush(); err != nil {
		return written, err
	}
	return written, nil
}

func embedMissing(ctx context.Context, emb Embedder, batch []Chunk) error {
	if emb == nil {
		for _, c := range batch {
			if len(c.Embedding) == 0 {
				return fmt.Errorf("chunk %q has no embedding and no embedder is configured", c.ChunkID)
			}
		}
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(embedWorkers)
	for i := range batch {
		if len(batch[i].Embedding) > 0 {
			continue
		}
		g.Go(func() error {
			vec, err := emb.Embed(gctx, batch[i].Text)
			if err != nil {
				return fmt.Errorf("embedding chunk %q: %w", batch[i].ChunkID, err)
			}
			batch[i].Embedding = vec
			return nil
		})
	}
	return g.Wait()
}
