package controller

import (
	"net/http"

	"vocab-go/internal/model"
	"vocab-go/internal/service/vocab"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const maxLookupWords = 1000

type LexiconController struct {
	vocab  *vocab.Vocab
	meta   *model.ModelMeta
	logger *zap.Logger
}

func NewLexiconController(v *vocab.Vocab, meta *model.ModelMeta, logger *zap.Logger) *LexiconController {
	return &LexiconController{
		vocab:  v,
		meta:   meta,
		logger: logger,
	}
}

// LexemeResponse is the JSON form of a lexeme
type LexemeResponse struct {
	ID      uint32    `json:"id"`
	Orth    string    `json:"orth"`
	Prob    float64   `json:"prob"`
	IsOOV   bool      `json:"is_oov"`
	Cluster uint64    `json:"cluster"`
	Vector  []float32 `json:"vector,omitempty"`
}

type LookupRequest struct {
	Words      []string `json:"words" binding:"required"`
	WithVector bool     `json:"with_vector"`
}

type StatsResponse struct {
	Meta    *model.ModelMeta `json:"meta"`
	Lexemes int              `json:"lexemes"`
	OOVProb float64          `json:"oov_prob"`
	Vectors int              `json:"vectors"`
}

func toResponse(lex model.Lexeme, withVector bool) LexemeResponse {
	resp := LexemeResponse{
		ID:      lex.ID,
		Orth:    lex.Orth,
		Prob:    lex.Prob,
		IsOOV:   lex.IsOOV,
		Cluster: lex.Cluster,
	}
	if withVector {
		resp.Vector = lex.Vector
	}
	return resp
}

// GetLexeme returns one word. Unknown words get 404 with the OOV placeholder in the body.
func (lc *LexiconController) GetLexeme(c *gin.Context) {
	orth := c.Param("orth")
	withVector := c.Query("vector") == "true"

	lex := lc.vocab.Lookup(orth)
	if lex.IsOOV {
		c.JSON(http.StatusNotFound, gin.H{
			"error":  "Word not in vocabulary",
			"lexeme": toResponse(lex, false),
		})
		return
	}
	c.JSON(http.StatusOK, toResponse(lex, withVector))
}

func (lc *LexiconController) LookupBatch(c *gin.Context) {
	var request LookupRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		lc.logger.Error("Invalid request payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request payload",
			"details": err.Error(),
		})
		return
	}
	if len(request.Words) > maxLookupWords {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Too many words",
			"limit": maxLookupWords,
		})
		return
	}

	lexemes := make([]LexemeResponse, len(request.Words))
	for i, word := range request.Words {
		lexemes[i] = toResponse(lc.vocab.Lookup(word), request.WithVector)
	}
	c.JSON(http.StatusOK, gin.H{"lexemes": lexemes})
}

func (lc *LexiconController) GetStats(c *gin.Context) {
	c.JSON(http.StatusOK, StatsResponse{
		Meta:    lc.meta,
		Lexemes: lc.vocab.Len(),
		OOVProb: lc.vocab.OOVProb(),
		Vectors: lc.vocab.VectorCount(),
	})
}
