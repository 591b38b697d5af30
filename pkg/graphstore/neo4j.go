package graphstore

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/codelore/backend/pkg/logger"
)

type Neo4jStore struct {
	driver   neo4j.DriverWithContext
	database string
}

type Neo4jParams struct {
	URI      string
	Username string
	Password string
	// Database defaults to the server default when empty.
	Database string
}

// NewNeo4jStore connects to the graph database and verifies connectivity
// before returning, so misconfiguration surfaces at startup.
func NewNeo4jStore(ctx context.Context, params Neo4jParams) (*Neo4jStore, error) {
	driver, err := neo4j.NewDriverWithContext(
		params.URI,
		neo4j.BasicAuth(params.Username, params.Password, ""),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create graph driver: %w", err)
	}

	if err := driver.VerifyConnectivity(ctx); err != nil {
		_ = driver.Close(ctx)
		return nil, fmt.Errorf("graph database unreachable: %w", err)
	}

	logger.Info("[GRAPH] Connected", "uri", params.URI)
	return &Neo4jStore{driver: driver, database: params.Database}, nil
}

func (s *Neo4jStore) Run(ctx context.Context, query string, params map[string]any) ([]Row, error) {
	result, err := neo4j.ExecuteQuery(ctx, s.driver, query, params,
		neo4j.EagerResultTransformer,
		neo4j.ExecuteQueryWithDatabase(s.database),
	)
	if err != nil {
		return nil, err
	}

	rows := make([]Row, 0, len(result.Records))
	for _, record := range result.Records {
		rows = append(rows, record.AsMap())
	}
	return rows, nil
}

func (s *Neo4jStore) Close(ctx context.Context) error {
	return s.driver.Close(ctx)
}
