// Package app builds a ready-to-use pipeline and its backing stores from a
// Config. Both the HTTP server and the CLI start here.
package app

import (
	"context"
	"io"

	"github.com/AtharvTrivedi21/LegalRAG-KnowledgeGraph/internal/cache"
	"github.com/AtharvTrivedi21/LegalRAG-KnowledgeGraph/internal/config"
	"github.com/AtharvTrivedi21/LegalRAG-KnowledgeGraph/internal/core"
	"github.com/AtharvTrivedi21/LegalRAG-KnowledgeGraph/internal/core/kg"
	"github.com/AtharvTrivedi21/LegalRAG-KnowledgeGraph/internal/driver"
	"github.com/AtharvTrivedi21/LegalRAG-KnowledgeGraph/internal/llm"
	"github.com/AtharvTrivedi21/LegalRAG-KnowledgeGraph/internal/logx"
	"github.com/AtharvTrivedi21/LegalRAG-KnowledgeGraph/internal/vectorstore"
)

// App owns every long-lived connection. Index is nil when the vector store
// could not be opened; the pipeline then degrades.
type App struct {
	Config   *config.Config
	Pipeline *core.Pipeline
	Graph    *driver.Neo4jDriver
	Store    *kg.Store
	Index    *vectorstore.Store
	Embedder llm.EmbedderClient

	closers []func()
}

// New connects to Neo4j, the vector index, the model provider and, when
// configured, Redis. Only a bad model provider setting is fatal: the graph and
// the index are allowed to be down so the API can report degraded answers.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	a := &App{Config: cfg}

	generator, embedder, err := llm.NewClient(ctx, cfg.LLM)
	if err != nil {
		return nil, err
	}
	if c, ok := generator.(io.Closer); ok {
		a.closers = append(a.closers, func() { _ = c.Close() })
	}

	graph, err := driver.OpenNeo4jDriver(cfg.Neo4j.URI, cfg.Neo4j.User, cfg.Neo4j.Password, cfg.Neo4j.Database)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.Graph = graph
	a.Store = kg.NewStore(graph)
	a.closers = append(a.closers, func() { _ = graph.Close(context.Background()) })

	vctx, cancel := context.WithTimeout(ctx, cfg.Neo4j.Timeout.Std())
	if err := graph.VerifyConnectivity(vctx); err != nil {
		logx.Warn().Err(err).Str("uri", cfg.Neo4j.URI).Msg("Neo4j unreachable at startup; graph constraints will be unavailable")
	} else {
		logx.Info().Str("uri", cfg.Neo4j.URI).Msg("Connected to Neo4j")
	}
	cancel()

	index, err := vectorstore.New(cfg.Vector.Path, cfg.Vector.Dimension)
	if err != nil {
		logx.Warn().Err(err).Str("path", cfg.Vector.Path).Msg("Vector index unavailable")
	} else {
		a.Index = index
		a.closers = append(a.closers, func() { _ = index.Close() })
	}

	if embedder != nil && cfg.Redis.URL != "" {
		embedder = a.withCache(ctx, embedder)
	}
	a.Embedder = embedder

	b := core.Backends{
		Provisions: a.Store,
		Cases:      a.Store,
		Generator:  generator,
		Embedder:   embedder,
	}
	// a nil *Store must not become a non-nil interface
	if a.Index != nil {
		b.Index = a.Index
	}
	a.Pipeline = core.New(cfg, b)
	return a, nil
}

func (a *App) withCache(ctx context.Context, embedder llm.EmbedderClient) llm.EmbedderClient {
	client, err := cache.NewRedisClient(ctx, a.Config.Redis.URL)
	if err != nil {
		logx.Warn().Err(err).Msg("Redis unavailable; embedding cache disabled")
		return embedder
	}
	a.closers = append(a.closers, func() { _ = client.Close() })
	logx.Info().Msg("Embedding cache enabled")
	return cache.NewEmbeddingCache(client, embedder, a.Config.LLM.EmbeddingModel, a.Config.Redis.TTL.Std())
}

// Close releases resources in reverse order of acquisition.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
