package clusters

import (
	"fmt"
	"strconv"
	"strings"

	"vocab-go/internal/util"

	"go.uber.org/zap"
)

// MinReliableFreq is the number of observations below which a cluster is replaced by Unreliable
const MinReliableFreq = 3

// ParseError reports a fatal problem in the clusters file
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

// Reader loads Brown cluster files of "<bitstring> <word> <freq>" lines
type Reader struct {
	normalizer Normalizer
	logger     *zap.Logger
}

func NewReader(normalizer Normalizer, logger *zap.Logger) *Reader {
	if normalizer == nil {
		normalizer = NFCNormalizer{}
	}
	return &Reader{normalizer: normalizer, logger: logger}
}

// Parse reads the clusters file without expanding case variants.
// Lines that do not hold exactly three fields are skipped.
func (r *Reader) Parse(path string) (*Table, error) {
	table := NewTable()
	skipped := 0

	err := util.ForEachLine(path, func(lineNo int, line string) error {
		fields := strings.Fields(line)
		if len(fields) != 3 {
			skipped++
			r.logger.Debug("Skipping malformed cluster line",
				zap.String("path", path),
				zap.Int("line", lineNo))
			return nil
		}

		cluster, word := fields[0], r.normalizer.Normalize(fields[1])
		freq, err := strconv.ParseInt(fields[2], 10, 64)
		if err != nil {
			return &ParseError{Path: path, Line: lineNo, Err: fmt.Errorf("invalid frequency %q", fields[2])}
		}

		if freq >= MinReliableFreq {
			table.Set(word, cluster)
		} else {
			table.Set(word, Unreliable)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	r.logger.Info("Read clusters",
		zap.String("path", path),
		zap.Int("words", table.Len()),
		zap.Int("skipped", skipped))
	return table, nil
}

// Read parses the clusters file and expands it with case variants
func (r *Reader) Read(path string) (*Table, error) {
	table, err := r.Parse(path)
	if err != nil {
		return nil, err
	}
	added := table.Expand()
	r.logger.Info("Expanded clusters with case variants",
		zap.Int("added", added),
		zap.Int("words", table.Len()))
	return table, nil
}
