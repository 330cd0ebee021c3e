package mcp

import (
	"context"
	"strings"
	"testing"

	"vocab-go/internal/model"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"
)

type mapLexicon map[string]model.Lexeme

func (m mapLexicon) Lookup(word string) model.Lexeme {
	if lex, ok := m[word]; ok {
		return lex
	}
	return model.Lexeme{Orth: word, Prob: -20, IsOOV: true}
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	if len(res.Content) != 1 {
		t.Fatalf("Expected one content item, got %d", len(res.Content))
	}
	text, ok := res.Content[0].(*mcp.TextContent)
	if !ok {
		t.Fatalf("Expected text content, got %T", res.Content[0])
	}
	return text.Text
}

func TestHandleLookup(t *testing.T) {
	lexicon := mapLexicon{
		"cat": {ID: 2, Orth: "cat", Prob: -3.5, Cluster: 12, Vector: []float32{1, 2}},
	}
	server := NewLexiconServer(lexicon, zap.NewNop())

	res, _, err := server.handleLookup(context.Background(), nil, LookupParams{Words: []string{"cat", "zebra"}})
	if err != nil {
		t.Fatalf("handleLookup failed: %v", err)
	}

	lines := strings.Split(resultText(t, res), "\n")
	if len(lines) != 2 {
		t.Fatalf("Expected 2 lines, got %q", lines)
	}
	if lines[0] != "cat: id=2 prob=-3.5000 cluster=12 vector_dim=2" {
		t.Errorf("Unexpected line for known word: %q", lines[0])
	}
	if lines[1] != "zebra: out of vocabulary, prob=-20.0000" {
		t.Errorf("Unexpected line for unknown word: %q", lines[1])
	}
}

func TestHandleLookup_NoWords(t *testing.T) {
	server := NewLexiconServer(mapLexicon{}, zap.NewNop())

	res, _, err := server.handleLookup(context.Background(), nil, LookupParams{})
	if err != nil {
		t.Fatalf("handleLookup failed: %v", err)
	}
	if !res.IsError {
		t.Error("Expected an error result")
	}
}
