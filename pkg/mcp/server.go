package mcp

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"vocab-go/internal/model"

	"github.com/gin-gonic/gin"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"
)

// Lexicon is the read side of a loaded vocabulary
type Lexicon interface {
	Lookup(word string) model.Lexeme
}

type LexiconServer struct {
	server  *mcp.Server
	lexicon Lexicon
	logger  *zap.Logger
	handler *mcp.StreamableHTTPHandler
}

type LookupParams struct {
	Words []string `json:"words" jsonschema:"the word forms to look up, case sensitive"`
}

func NewLexiconServer(lexicon Lexicon, logger *zap.Logger) *LexiconServer {
	server := &LexiconServer{
		lexicon: lexicon,
		logger:  logger,
	}

	mcpServer := mcp.NewServer(&mcp.Implementation{
		Name:    "Lexicon",
		Version: "1.0.0",
	}, nil)

	mcp.AddTool(mcpServer, &mcp.Tool{
		Name:        "lookupLexeme",
		Description: "Look up words in the vocabulary. Returns each word's id, smoothed log probability, Brown cluster id and whether it is out of vocabulary",
	}, server.handleLookup)

	server.handler = mcp.NewStreamableHTTPHandler(func(req *http.Request) *mcp.Server {
		return mcpServer
	}, nil)

	server.server = mcpServer
	return server
}

func (s *LexiconServer) handleLookup(ctx context.Context, req *mcp.CallToolRequest, args LookupParams) (*mcp.CallToolResult, any, error) {
	s.logger.Info("Handling lookupLexeme request", zap.Int("words", len(args.Words)))

	if len(args.Words) == 0 {
		return &mcp.CallToolResult{
			Content: []mcp.Content{&mcp.TextContent{Text: "No words given."}},
			IsError: true,
		}, nil, nil
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: s.formatLexemes(args.Words)}},
	}, nil, nil
}

func (s *LexiconServer) formatLexemes(words []string) string {
	var result strings.Builder
	for i, word := range words {
		if i > 0 {
			result.WriteString("\n")
		}
		lex := s.lexicon.Lookup(word)
		if lex.IsOOV {
			fmt.Fprintf(&result, "%s: out of vocabulary, prob=%.4f", word, lex.Prob)
			continue
		}
		fmt.Fprintf(&result, "%s: id=%d prob=%.4f cluster=%d", word, lex.ID, lex.Prob, lex.Cluster)
		if lex.HasVector() {
			fmt.Fprintf(&result, " vector_dim=%d", len(lex.Vector))
		}
	}
	return result.String()
}

// SetupHTTPRoutes mounts the streamable HTTP transport on router at path
func (s *LexiconServer) SetupHTTPRoutes(router *gin.Engine, path string) {
	router.Any(path, gin.WrapH(s.handler))
	s.logger.Info("MCP endpoint mounted", zap.String("path", path))
}
