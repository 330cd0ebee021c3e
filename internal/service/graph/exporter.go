package graph

import (
	"context"
	"fmt"

	"vocab-go/internal/service/clusters"
	"vocab-go/internal/service/vocab"

	"go.uber.org/zap"
)

// ExportStats counts what an export wrote
type ExportStats struct {
	Clusters int
	Lexemes  int
}

// ClusterExporter writes the Brown cluster hierarchy of a vocabulary to a graph database.
// Every prefix of a cluster path becomes a Cluster node linked to its parent by SUBCLUSTER_OF;
// each lexeme with a reliable cluster is linked to its leaf by IN_CLUSTER.
type ClusterExporter struct {
	db     GraphDatabase
	logger *zap.Logger
}

func NewClusterExporter(db GraphDatabase, logger *zap.Logger) *ClusterExporter {
	return &ClusterExporter{db: db, logger: logger}
}

// Export writes every word of table that has a lexeme in v
func (e *ClusterExporter) Export(ctx context.Context, table *clusters.Table, v *vocab.Vocab) (*ExportStats, error) {
	if err := e.db.EnsureSchema(ctx); err != nil {
		return nil, err
	}

	stats := &ExportStats{}
	written := make(map[string]bool)

	for _, word := range table.Words() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		path, _ := table.Path(word)
		if path == clusters.Unreliable {
			continue
		}
		lex, ok := v.Get(word)
		if !ok {
			continue
		}

		n, err := e.writeClusterPath(ctx, path, written)
		if err != nil {
			return nil, err
		}
		stats.Clusters += n

		err = e.db.ExecuteWrite(ctx, mergeLexemeQuery, map[string]any{
			"orth":    lex.Orth,
			"lexId":   int64(lex.ID),
			"prob":    lex.Prob,
			"cluster": int64(lex.Cluster),
		})
		if err != nil {
			return nil, fmt.Errorf("failed to write lexeme %q: %w", lex.Orth, err)
		}
		err = e.db.ExecuteWrite(ctx, linkLexemeQuery, map[string]any{
			"orth": lex.Orth,
			"path": path,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to link lexeme %q: %w", lex.Orth, err)
		}
		stats.Lexemes++
	}

	e.logger.Info("Exported cluster graph",
		zap.Int("clusters", stats.Clusters),
		zap.Int("lexemes", stats.Lexemes))
	return stats, nil
}

// writeClusterPath writes the nodes and edges for each prefix of path not yet written
func (e *ClusterExporter) writeClusterPath(ctx context.Context, path string, written map[string]bool) (int, error) {
	n := 0
	for depth := 1; depth <= len(path); depth++ {
		prefix := path[:depth]
		if written[prefix] {
			continue
		}

		err := e.db.ExecuteWrite(ctx, mergeClusterQuery, map[string]any{
			"path":  prefix,
			"depth": int64(depth),
		})
		if err != nil {
			return n, fmt.Errorf("failed to write cluster %q: %w", prefix, err)
		}
		if depth > 1 {
			err = e.db.ExecuteWrite(ctx, linkClusterQuery, map[string]any{
				"child":  prefix,
				"parent": path[:depth-1],
			})
			if err != nil {
				return n, fmt.Errorf("failed to link cluster %q: %w", prefix, err)
			}
		}
		written[prefix] = true
		n++
	}
	return n, nil
}
