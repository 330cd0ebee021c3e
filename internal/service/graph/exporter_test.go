package graph

import (
	"context"
	"errors"
	"testing"

	"vocab-go/internal/service/clusters"
	"vocab-go/internal/service/vocab"

	"go.uber.org/zap"
)

type recordedQuery struct {
	query  string
	params map[string]any
}

type fakeGraph struct {
	schemaCalls int
	queries     []recordedQuery
	failOn      string
}

func (f *fakeGraph) VerifyConnectivity(ctx context.Context) error { return nil }
func (f *fakeGraph) Close(ctx context.Context) error              { return nil }

func (f *fakeGraph) EnsureSchema(ctx context.Context) error {
	f.schemaCalls++
	return nil
}

func (f *fakeGraph) ExecuteWrite(ctx context.Context, query string, params map[string]any) error {
	if f.failOn != "" && query == f.failOn {
		return errors.New("write failed")
	}
	f.queries = append(f.queries, recordedQuery{query: query, params: params})
	return nil
}

func (f *fakeGraph) count(query string) int {
	n := 0
	for _, q := range f.queries {
		if q.query == query {
			n++
		}
	}
	return n
}

func testFixture() (*clusters.Table, *vocab.Vocab) {
	table := clusters.NewTable()
	table.Set("cat", "0011")
	table.Set("dog", "0010")
	table.Set("rare", clusters.Unreliable)
	table.Set("ghost", "1")

	v := vocab.New(0)
	for _, w := range []string{"cat", "dog", "rare"} {
		lex := v.GetOrCreate(w)
		lex.IsOOV = false
	}
	return table, v
}

func TestClusterExporter_Export(t *testing.T) {
	table, v := testFixture()
	db := &fakeGraph{}

	stats, err := NewClusterExporter(db, zap.NewNop()).Export(context.Background(), table, v)
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}

	// Prefixes 0, 00, 001, 0011, 0010; "ghost" has no lexeme and "rare" is unreliable
	if stats.Clusters != 5 || stats.Lexemes != 2 {
		t.Fatalf("Unexpected stats %+v", stats)
	}
	if db.schemaCalls != 1 {
		t.Errorf("Expected schema to be ensured once, got %d", db.schemaCalls)
	}
	if got := db.count(mergeClusterQuery); got != 5 {
		t.Errorf("Expected 5 cluster merges, got %d", got)
	}
	if got := db.count(linkClusterQuery); got != 4 {
		t.Errorf("Expected 4 cluster links, got %d", got)
	}
	if got := db.count(linkLexemeQuery); got != 2 {
		t.Errorf("Expected 2 lexeme links, got %d", got)
	}

	for _, q := range db.queries {
		if q.query == mergeLexemeQuery && q.params["orth"] == "rare" {
			t.Error("Unreliable cluster must not be exported")
		}
	}
}

func TestClusterExporter_PropagatesErrors(t *testing.T) {
	table, v := testFixture()
	db := &fakeGraph{failOn: mergeLexemeQuery}

	if _, err := NewClusterExporter(db, zap.NewNop()).Export(context.Background(), table, v); err == nil {
		t.Fatal("Expected export error")
	}
}

func TestClusterExporter_Cancelled(t *testing.T) {
	table, v := testFixture()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := NewClusterExporter(&fakeGraph{}, zap.NewNop()).Export(ctx, table, v); !errors.Is(err, context.Canceled) {
		t.Fatalf("Expected context.Canceled, got %v", err)
	}
}
