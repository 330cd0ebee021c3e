package graph

import "context"

// GraphDatabase is a Cypher-speaking store the cluster hierarchy can be written to
type GraphDatabase interface {
	VerifyConnectivity(ctx context.Context) error
	EnsureSchema(ctx context.Context) error
	ExecuteWrite(ctx context.Context, query string, params map[string]any) error
	Close(ctx context.Context) error
}

const (
	mergeClusterQuery = `MERGE (c:Cluster {path: $path}) SET c.depth = $depth`
	linkClusterQuery  = `MATCH (c:Cluster {path: $child}), (p:Cluster {path: $parent}) MERGE (c)-[:SUBCLUSTER_OF]->(p)`
	mergeLexemeQuery  = `MERGE (l:Lexeme {orth: $orth}) SET l.lexId = $lexId, l.prob = $prob, l.cluster = $cluster`
	linkLexemeQuery   = `MATCH (l:Lexeme {orth: $orth}), (c:Cluster {path: $path}) MERGE (l)-[:IN_CLUSTER]->(c)`
)
