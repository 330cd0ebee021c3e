package vocab

import (
	"errors"
	"fmt"
	"sync"

	"vocab-go/internal/model"

	"github.com/bits-and-blooms/bloom/v3"
)

var (
	ErrUnknownWord = errors.New("word not in vocabulary")
	ErrDimension   = errors.New("vector dimension mismatch")
)

// DefaultOOVProb is used until a smoothed estimate is recorded
const DefaultOOVProb = -20.0

// Vocab stores lexemes keyed by word. Ids are minted sequentially from 1 in creation order.
type Vocab struct {
	lexemes     []*model.Lexeme   // Index i holds id i+1
	index       map[string]uint32 // Word to id
	nextID      uint32
	bloomFilter *bloom.BloomFilter // Fast negative answers for Contains
	oovProb     float64
	vectorDim   int
	vectorCount int
	mu          sync.RWMutex
}

// New creates an empty vocabulary sized for about expectedWords entries
func New(expectedWords uint) *Vocab {
	if expectedWords == 0 {
		expectedWords = 100000
	}
	return &Vocab{
		index:       make(map[string]uint32),
		nextID:      1,
		bloomFilter: bloom.NewWithEstimates(expectedWords, 0.01),
		oovProb:     DefaultOOVProb,
	}
}

// GetOrCreate returns the lexeme for word, creating it with the next id if needed.
// New lexemes start out of vocabulary with the OOV probability.
func (v *Vocab) GetOrCreate(word string) *model.Lexeme {
	v.mu.Lock()
	defer v.mu.Unlock()

	if id, exists := v.index[word]; exists {
		return v.lexemes[id-1]
	}

	lex := &model.Lexeme{
		ID:    v.nextID,
		Orth:  word,
		Prob:  v.oovProb,
		IsOOV: true,
	}
	v.nextID++
	v.index[word] = lex.ID
	v.lexemes = append(v.lexemes, lex)
	v.bloomFilter.AddString(word)
	return lex
}

// Get returns the lexeme for word without creating it
func (v *Vocab) Get(word string) (*model.Lexeme, bool) {
	v.mu.RLock()
	defer v.mu.RUnlock()

	id, ok := v.index[word]
	if !ok {
		return nil, false
	}
	return v.lexemes[id-1], true
}

// Contains reports whether word has a lexeme
func (v *Vocab) Contains(word string) bool {
	v.mu.RLock()
	defer v.mu.RUnlock()

	if !v.bloomFilter.TestString(word) {
		return false
	}
	_, ok := v.index[word]
	return ok
}

// Lookup returns a copy of the lexeme for word, or an out-of-vocabulary placeholder
func (v *Vocab) Lookup(word string) model.Lexeme {
	v.mu.RLock()
	defer v.mu.RUnlock()

	if id, ok := v.index[word]; ok {
		return *v.lexemes[id-1]
	}
	return model.Lexeme{Orth: word, Prob: v.oovProb, IsOOV: true}
}

func (v *Vocab) Len() int {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return len(v.lexemes)
}

// Lexemes returns all lexemes ordered by id
func (v *Vocab) Lexemes() []*model.Lexeme {
	v.mu.RLock()
	defer v.mu.RUnlock()

	out := make([]*model.Lexeme, len(v.lexemes))
	copy(out, v.lexemes)
	return out
}

func (v *Vocab) SetOOVProb(p float64) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.oovProb = p
}

func (v *Vocab) OOVProb() float64 {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.oovProb
}

// ResetVectors drops every stored vector and prepares storage for vectors of size dim
func (v *Vocab) ResetVectors(dim int) error {
	if dim <= 0 {
		return fmt.Errorf("%w: invalid dimension %d", ErrDimension, dim)
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	for _, lex := range v.lexemes {
		lex.Vector = nil
	}
	v.vectorDim = dim
	v.vectorCount = 0
	return nil
}

// SetVector attaches a copy of vec to an existing word
func (v *Vocab) SetVector(word string, vec []float32) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.vectorDim == 0 || len(vec) != v.vectorDim {
		return fmt.Errorf("%w: got %d, storage holds %d", ErrDimension, len(vec), v.vectorDim)
	}
	id, ok := v.index[word]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownWord, word)
	}

	lex := v.lexemes[id-1]
	if !lex.HasVector() {
		v.vectorCount++
	}
	lex.Vector = append([]float32(nil), vec...)
	return nil
}

func (v *Vocab) VectorDim() int {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.vectorDim
}

func (v *Vocab) VectorCount() int {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.vectorCount
}

// Restore rebuilds a vocabulary from lexemes that already carry ids, as read back from disk
func Restore(lexemes []model.Lexeme, oovProb float64, vectorDim int) (*Vocab, error) {
	v := New(uint(len(lexemes)))
	v.oovProb = oovProb
	v.vectorDim = vectorDim

	v.lexemes = make([]*model.Lexeme, len(lexemes))
	for i := range lexemes {
		lex := lexemes[i]
		if lex.ID != uint32(i+1) {
			return nil, fmt.Errorf("lexeme %q has id %d at position %d", lex.Orth, lex.ID, i+1)
		}
		if lex.HasVector() {
			if len(lex.Vector) != vectorDim {
				return nil, fmt.Errorf("%w: lexeme %q", ErrDimension, lex.Orth)
			}
			v.vectorCount++
		}
		v.lexemes[i] = &lex
		v.index[lex.Orth] = lex.ID
		v.bloomFilter.AddString(lex.Orth)
	}
	v.nextID = uint32(len(lexemes) + 1)
	return v, nil
}
