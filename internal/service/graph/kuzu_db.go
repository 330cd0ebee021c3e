package graph

import (
	"context"
	"fmt"

	"github.com/kuzudb/go-kuzu"
	"go.uber.org/zap"
)

// KuzuDatabase writes the cluster graph to an embedded Kuzu database
type KuzuDatabase struct {
	db     *kuzu.Database
	conn   *kuzu.Connection
	logger *zap.Logger
}

// NewKuzuDatabase opens a Kuzu database at databasePath, or in memory for ":memory:" or ""
func NewKuzuDatabase(databasePath string, logger *zap.Logger) (*KuzuDatabase, error) {
	var db *kuzu.Database
	var err error

	if databasePath == ":memory:" || databasePath == "" {
		db, err = kuzu.OpenInMemoryDatabase(kuzu.DefaultSystemConfig())
	} else {
		db, err = kuzu.OpenDatabase(databasePath, kuzu.DefaultSystemConfig())
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create Kuzu database: %w", err)
	}

	conn, err := kuzu.OpenConnection(db)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create Kuzu connection: %w", err)
	}

	return &KuzuDatabase{
		db:     db,
		conn:   conn,
		logger: logger,
	}, nil
}

// VerifyConnectivity checks if the database connection is working
func (db *KuzuDatabase) VerifyConnectivity(ctx context.Context) error {
	result, err := db.conn.Query("RETURN 1")
	if err != nil {
		return fmt.Errorf("failed to verify Kuzu connectivity: %w", err)
	}
	result.Close()
	return nil
}

// EnsureSchema creates the node and relationship tables used by the cluster graph
func (db *KuzuDatabase) EnsureSchema(ctx context.Context) error {
	schemas := []string{
		`CREATE NODE TABLE IF NOT EXISTS Cluster (
			path STRING,
			depth INT64,
			PRIMARY KEY (path))`,
		`CREATE NODE TABLE IF NOT EXISTS Lexeme (
			orth STRING,
			lexId INT64,
			prob DOUBLE,
			cluster INT64,
			PRIMARY KEY (orth))`,
		`CREATE REL TABLE IF NOT EXISTS SUBCLUSTER_OF (FROM Cluster TO Cluster)`,
		`CREATE REL TABLE IF NOT EXISTS IN_CLUSTER (FROM Lexeme TO Cluster)`,
	}

	for _, schema := range schemas {
		result, err := db.conn.Query(schema)
		if err != nil {
			db.logger.Error("Failed to create Kuzu table", zap.String("schema", schema), zap.Error(err))
			return fmt.Errorf("failed to create table: %w", err)
		}
		result.Close()
	}

	db.logger.Info("Initialized Kuzu cluster schema")
	return nil
}

// ExecuteWrite runs a parameterized write query
func (db *KuzuDatabase) ExecuteWrite(ctx context.Context, query string, params map[string]any) error {
	result, err := db.execute(query, params)
	if err != nil {
		return err
	}
	result.Close()
	return nil
}

// ExecuteRead runs a read query and returns its rows as maps
func (db *KuzuDatabase) ExecuteRead(ctx context.Context, query string, params map[string]any) ([]map[string]any, error) {
	result, err := db.execute(query, params)
	if err != nil {
		return nil, err
	}
	defer result.Close()

	var records []map[string]any
	for result.HasNext() {
		tuple, err := result.Next()
		if err != nil {
			return nil, fmt.Errorf("failed to get next result row: %w", err)
		}
		record, err := tuple.GetAsMap()
		if err != nil {
			return nil, fmt.Errorf("failed to convert tuple to map: %w", err)
		}
		records = append(records, record)
	}
	return records, nil
}

func (db *KuzuDatabase) execute(query string, params map[string]any) (*kuzu.QueryResult, error) {
	var result *kuzu.QueryResult
	var err error

	if len(params) > 0 {
		preparedStatement, prepErr := db.conn.Prepare(query)
		if prepErr != nil {
			db.logger.Error("Failed to prepare Kuzu query", zap.String("query", query), zap.Error(prepErr))
			return nil, fmt.Errorf("failed to prepare query: %w", prepErr)
		}
		defer preparedStatement.Close()

		result, err = db.conn.Execute(preparedStatement, params)
	} else {
		result, err = db.conn.Query(query)
	}

	if err != nil {
		db.logger.Error("Failed to execute Kuzu query", zap.String("query", query), zap.Error(err))
		return nil, fmt.Errorf("failed to execute query: %w", err)
	}
	return result, nil
}

// Close closes the database connection
func (db *KuzuDatabase) Close(ctx context.Context) error {
	if db.conn != nil {
		db.conn.Close()
	}
	if db.db != nil {
		db.db.Close()
	}
	return nil
}
