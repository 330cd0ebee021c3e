package graph

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"
)

// Neo4jDatabase writes the cluster graph to a Neo4j server
type Neo4jDatabase struct {
	driver   neo4j.DriverWithContext
	database string
	logger   *zap.Logger
}

func NewNeo4jDatabase(uri, username, password, database string, logger *zap.Logger) (*Neo4jDatabase, error) {
	driver, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(username, password, ""))
	if err != nil {
		return nil, fmt.Errorf("failed to create Neo4j driver: %w", err)
	}
	return &Neo4jDatabase{
		driver:   driver,
		database: database,
		logger:   logger,
	}, nil
}

func (db *Neo4jDatabase) VerifyConnectivity(ctx context.Context) error {
	if err := db.driver.VerifyConnectivity(ctx); err != nil {
		return fmt.Errorf("failed to verify Neo4j connectivity: %w", err)
	}
	return nil
}

// EnsureSchema creates uniqueness constraints on cluster paths and lexeme forms
func (db *Neo4jDatabase) EnsureSchema(ctx context.Context) error {
	constraints := []string{
		"CREATE CONSTRAINT cluster_path IF NOT EXISTS FOR (c:Cluster) REQUIRE c.path IS UNIQUE",
		"CREATE CONSTRAINT lexeme_orth IF NOT EXISTS FOR (l:Lexeme) REQUIRE l.orth IS UNIQUE",
	}
	for _, constraint := range constraints {
		if err := db.ExecuteWrite(ctx, constraint, nil); err != nil {
			return fmt.Errorf("failed to create constraint: %w", err)
		}
	}
	db.logger.Info("Initialized Neo4j cluster schema", zap.String("database", db.database))
	return nil
}

func (db *Neo4jDatabase) ExecuteWrite(ctx context.Context, query string, params map[string]any) error {
	session := db.driver.NewSession(ctx, neo4j.SessionConfig{
		AccessMode:   neo4j.AccessModeWrite,
		DatabaseName: db.database,
	})
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		result, err := tx.Run(ctx, query, params)
		if err != nil {
			return nil, err
		}
		return result.Consume(ctx)
	})
	if err != nil {
		db.logger.Error("Failed to execute Neo4j query", zap.String("query", query), zap.Error(err))
		return fmt.Errorf("failed to execute query: %w", err)
	}
	return nil
}

func (db *Neo4jDatabase) Close(ctx context.Context) error {
	return db.driver.Close(ctx)
}
