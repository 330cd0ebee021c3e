package vectors

import (
	"fmt"
	"strconv"
	"strings"

	"vocab-go/internal/util"

	"go.uber.org/zap"
)

// ParseError reports a fatal problem in the vectors file
type ParseError struct {
	Path string
	Line int
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s:%d: %v", e.Path, e.Line, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Store is the vector capability of a vocabulary
type Store interface {
	Contains(word string) bool
	ResetVectors(dim int) error
	SetVector(word string, vec []float32) error
}

// Stats summarizes one association run
type Stats struct {
	HeaderCount int // Word count announced by the header
	Dim         int
	Lines       int // Vector lines read
	Assigned    int // Vectors attached to existing words
	Dropped     int // Words absent from the vocabulary
}

// Associator attaches pretrained vectors to words already in a vocabulary
type Associator struct {
	logger *zap.Logger
}

func NewAssociator(logger *zap.Logger) *Associator {
	return &Associator{logger: logger}
}

// ParseHeader reads the "<word_count> <dimension>" first line
func ParseHeader(line string) (count, dim int, err error) {
	fields := strings.Fields(line)
	if len(fields) != 2 {
		return 0, 0, fmt.Errorf("expected \"<count> <dim>\" header, got %q", line)
	}
	if count, err = strconv.Atoi(fields[0]); err != nil || count < 0 {
		return 0, 0, fmt.Errorf("invalid word count %q", fields[0])
	}
	if dim, err = strconv.Atoi(fields[1]); err != nil || dim <= 0 {
		return 0, 0, fmt.Errorf("invalid dimension %q", fields[1])
	}
	return count, dim, nil
}

// ParseLine splits "<word> <f1> ... <fdim>" on single spaces
func ParseLine(line string, dim int) (string, []float32, error) {
	tokens := strings.Split(strings.TrimSpace(line), " ")
	if len(tokens) != dim+1 {
		return "", nil, fmt.Errorf("expected %d values, got %d", dim, len(tokens)-1)
	}

	vec := make([]float32, dim)
	for i, tok := range tokens[1:] {
		f, err := strconv.ParseFloat(tok, 32)
		if err != nil {
			return "", nil, fmt.Errorf("invalid value %q at position %d", tok, i+1)
		}
		vec[i] = float32(f)
	}
	return tokens[0], vec, nil
}

// Associate resets the store's vectors to the file's dimension, then attaches each vector whose
// word is already present. Unknown words are dropped; no entries are created. Any malformed line
// aborts the run.
func (a *Associator) Associate(path string, store Store) (*Stats, error) {
	r, err := util.OpenLines(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	if !r.Next() {
		if err := r.Err(); err != nil {
			return nil, err
		}
		return nil, &ParseError{Path: path, Line: 1, Err: fmt.Errorf("missing header")}
	}
	count, dim, err := ParseHeader(r.Text())
	if err != nil {
		return nil, &ParseError{Path: path, Line: 1, Err: err}
	}
	if err := store.ResetVectors(dim); err != nil {
		return nil, fmt.Errorf("failed to reset vector storage: %w", err)
	}

	stats := &Stats{HeaderCount: count, Dim: dim}
	for r.Next() {
		line := r.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		word, vec, err := ParseLine(line, dim)
		if err != nil {
			return nil, &ParseError{Path: path, Line: r.LineNumber(), Err: err}
		}
		stats.Lines++

		if !store.Contains(word) {
			stats.Dropped++
			continue
		}
		if err := store.SetVector(word, vec); err != nil {
			return nil, &ParseError{Path: path, Line: r.LineNumber(), Err: err}
		}
		stats.Assigned++
	}
	if err := r.Err(); err != nil {
		return nil, err
	}

	if stats.Lines != count {
		a.logger.Warn("Vector count differs from header",
			zap.String("path", path),
			zap.Int("header", count),
			zap.Int("lines", stats.Lines))
	}
	a.logger.Info("Associated word vectors",
		zap.String("path", path),
		zap.Int("dim", dim),
		zap.Int("assigned", stats.Assigned),
		zap.Int("dropped", stats.Dropped))

	return stats, nil
}
