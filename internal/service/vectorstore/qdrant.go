package vectorstore

import (
	"context"
	"fmt"

	"vocab-go/internal/model"

	"github.com/qdrant/go-client/qdrant"
	"go.uber.org/zap"
)

const DefaultBatchSize = 256

// pointWriter is the subset of the Qdrant client used for export
type pointWriter interface {
	CollectionExists(ctx context.Context, collectionName string) (bool, error)
	CreateCollection(ctx context.Context, request *qdrant.CreateCollection) error
	Upsert(ctx context.Context, request *qdrant.UpsertPoints) (*qdrant.UpdateResult, error)
}

// QdrantStore exports lexeme vectors to a Qdrant collection
type QdrantStore struct {
	client    *qdrant.Client
	writer    pointWriter
	batchSize int
	logger    *zap.Logger
}

// NewQdrantStore connects to Qdrant over gRPC
func NewQdrantStore(host string, port int, apiKey string, batchSize int, logger *zap.Logger) (*QdrantStore, error) {
	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   host,
		Port:   port,
		APIKey: apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Qdrant client: %w", err)
	}

	logger.Info("Connected to Qdrant", zap.String("host", host), zap.Int("port", port))
	return newStore(client, client, batchSize, logger), nil
}

func newStore(client *qdrant.Client, writer pointWriter, batchSize int, logger *zap.Logger) *QdrantStore {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &QdrantStore{client: client, writer: writer, batchSize: batchSize, logger: logger}
}

// Health checks that the Qdrant server is reachable
func (q *QdrantStore) Health(ctx context.Context) error {
	if q.client == nil {
		return nil
	}
	if _, err := q.client.HealthCheck(ctx); err != nil {
		return fmt.Errorf("qdrant health check failed: %w", err)
	}
	return nil
}

// EnsureCollection creates the collection with cosine distance if it does not exist
func (q *QdrantStore) EnsureCollection(ctx context.Context, collection string, dim int) error {
	exists, err := q.writer.CollectionExists(ctx, collection)
	if err != nil {
		return fmt.Errorf("failed to check collection %s: %w", collection, err)
	}
	if exists {
		return nil
	}

	err = q.writer.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: collection,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     uint64(dim),
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return fmt.Errorf("failed to create collection %s: %w", collection, err)
	}

	q.logger.Info("Created Qdrant collection", zap.String("collection", collection), zap.Int("dim", dim))
	return nil
}

// Export upserts every lexeme that carries a vector, keyed by lexeme id.
// Returns the number of points written.
func (q *QdrantStore) Export(ctx context.Context, collection string, dim int, lexemes []*model.Lexeme) (int, error) {
	if err := q.EnsureCollection(ctx, collection, dim); err != nil {
		return 0, err
	}

	written := 0
	for _, batch := range Batches(lexemes, q.batchSize) {
		points := make([]*qdrant.PointStruct, 0, len(batch))
		for _, lex := range batch {
			points = append(points, toPoint(lex))
		}

		_, err := q.writer.Upsert(ctx, &qdrant.UpsertPoints{
			CollectionName: collection,
			Wait:           qdrant.PtrOf(true),
			Points:         points,
		})
		if err != nil {
			return written, fmt.Errorf("failed to upsert points: %w", err)
		}
		written += len(points)
	}

	q.logger.Info("Exported vectors to Qdrant",
		zap.String("collection", collection),
		zap.Int("points", written))
	return written, nil
}

func (q *QdrantStore) Close() error {
	if q.client == nil {
		return nil
	}
	return q.client.Close()
}

func toPoint(lex *model.Lexeme) *qdrant.PointStruct {
	return &qdrant.PointStruct{
		Id:      qdrant.NewIDNum(uint64(lex.ID)),
		Vectors: qdrant.NewVectors(lex.Vector...),
		Payload: qdrant.NewValueMap(map[string]any{
			"orth":    lex.Orth,
			"prob":    lex.Prob,
			"cluster": int64(lex.Cluster),
		}),
	}
}

// Batches splits the lexemes with vectors into groups of at most size
func Batches(lexemes []*model.Lexeme, size int) [][]*model.Lexeme {
	if size <= 0 {
		size = DefaultBatchSize
	}

	var batches [][]*model.Lexeme
	var current []*model.Lexeme
	for _, lex := range lexemes {
		if !lex.HasVector() {
			continue
		}
		current = append(current, lex)
		if len(current) == size {
			batches = append(batches, current)
			current = nil
		}
	}
	if len(current) > 0 {
		batches = append(batches, current)
	}
	return batches
}
