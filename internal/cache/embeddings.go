package cache

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/AtharvTrivedi21/LegalRAG-KnowledgeGraph/internal/llm"
	"github.com/AtharvTrivedi21/LegalRAG-KnowledgeGraph/internal/logx"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "legalrag:emb:"

// EmbeddingCache wraps an embedder. Redis errors are logged and bypassed so
// the cache can never make embedding fail.
type EmbeddingCache struct {
	Client redis.Cmdable
	Inner  llm.EmbedderClient
	Model  string
	TTL    time.Duration
}

func NewEmbeddingCache(client redis.Cmdable, inner llm.EmbedderClient, model string, ttl time.Duration) *EmbeddingCache {
	return &EmbeddingCache{Client: client, Inner: inner, Model: model, TTL: ttl}
}

func (c *EmbeddingCache) Embed(ctx context.Context, text string) ([]float32, error) {
	key := Key(c.Model, text)

	data, err := c.Client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		if vec, decErr := decode(data); decErr == nil {
			return vec, nil
		}
		logx.Warn().Str("key", key).Msg("discarding corrupt cached embedding")
	case !errors.Is(err, redis.Nil):
		logx.Warn().Err(err).Msg("embedding cache read failed")
	}

	vec, err := c.Inner.Embed(ctx, text)
	if err != nil {
		return nil, err
	}
	if err := c.Client.Set(ctx, key, encode(vec), c.TTL).Err(); err != nil {
		logx.Warn().Err(err).Msg("embedding cache write failed")
	}
	return vec, nil
}

// Key is legalrag:emb:<sha256(model|text)>.
func Key(model, text string) string {
	sum := sha256.Sum256([]byte(model + "|" + text))
	return keyPrefix + hex.EncodeToString(sum[:])
}

func encode(v []float32) []byte {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

func decode(b []byte) ([]float32, error) {
	if len(b) == 0 || len(b)%4 != 0 {
		return nil, fmt.Errorf("invalid embedding payload of %d bytes", len(b))
	}
	v := make([]float32, len(b)/4)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
	}
	return v, nil
}
