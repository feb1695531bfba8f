package driver

import (
	"context"
	"fmt"

	"github.com/AtharvTrivedi21/LegalRAG-KnowledgeGraph/internal/logx"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// Neo4jDriver executes read queries against the legal knowledge graph.
type Neo4jDriver struct {
	Driver   neo4j.DriverWithContext
	Database string
}

// NewNeo4jDriver opens a driver and verifies the server is reachable.
func NewNeo4jDriver(ctx context.Context, uri, username, password, database string) (*Neo4jDriver, error) {
	d, err := OpenNeo4jDriver(uri, username, password, database)
	if err != nil {
		return nil, err
	}

	if err := d.VerifyConnectivity(ctx); err != nil {
		_ = d.Close(ctx)
		return nil, err
	}

	logx.Info().Str("uri", uri).Msg("Connected to Neo4j")
	return d, nil
}

// OpenNeo4jDriver only builds the driver. Connections are made lazily, so a
// server that is down at startup can still be used once it comes back.
func OpenNeo4jDriver(uri, username, password, database string) (*Neo4jDriver, error) {
	driver, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(username, password, ""))
	if err != nil {
		return nil, fmt.Errorf("failed to create neo4j driver: %w", err)
	}
	return &Neo4jDriver{Driver: driver, Database: database}, nil
}

func (d *Neo4jDriver) Close(ctx context.Context) error {
	return d.Driver.Close(ctx)
}

func (d *Neo4jDriver) VerifyConnectivity(ctx context.Context) error {
	return d.Driver.VerifyConnectivity(ctx)
}

func (d *Neo4jDriver) ExecuteQuery(ctx context.Context, query string, params map[string]interface{}) (neo4j.EagerResult, error) {
	opts := []neo4j.ExecuteQueryConfigurationOption{neo4j.ExecuteQueryWithReadersRouting()}
	if d.Database != "" {
		opts = append(opts, neo4j.ExecuteQueryWithDatabase(d.Database))
	}
	result, err := neo4j.ExecuteQuery(ctx, d.Driver, query, params, neo4j.EagerResultTransformer, opts...)
	if err != nil {
		return neo4j.EagerResult{}, fmt.Errorf("failed to execute query: %w", err)
	}
	return *result, nil
}

// BuildIndices creates the lookup indexes the resolver relies on. It runs
// with writer routing and is meant for setup tooling, not the request path.
func (d *Neo4jDriver) BuildIndices(ctx context.Context) error {
	for _, q := range IndexQueries {
		opts := []neo4j.ExecuteQueryConfigurationOption{neo4j.ExecuteQueryWithWritersRouting()}
		if d.Database != "" {
			opts = append(opts, neo4j.ExecuteQueryWithDatabase(d.Database))
		}
		if _, err := neo4j.ExecuteQuery(ctx, d.Driver, q, nil, neo4j.EagerResultTransformer, opts...); err != nil {
			// index may already exist under another name
			logx.Warn().Err(err).Str("query", q).Msg("failed to create index")
		}
	}
	return nil
}
