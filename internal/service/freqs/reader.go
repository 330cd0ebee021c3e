package freqs

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"vocab-go/internal/model"
	"vocab-go/internal/util"
)

// ParseError reports a fatal problem in the frequency file
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

var errFieldCount = errors.New("expected <freq>\\t<doc_freq>\\t<word>")

// ParseLine splits a "<freq>\t<doc_freq>\t<word>" line. The word field keeps any further tabs.
func ParseLine(line string) (model.FrequencyRecord, error) {
	line = strings.TrimRightFunc(line, unicode.IsSpace)
	fields := strings.SplitN(line, "\t", 3)
	if len(fields) != 3 {
		return model.FrequencyRecord{}, errFieldCount
	}

	freq, err := strconv.ParseInt(strings.TrimSpace(fields[0]), 10, 64)
	if err != nil || freq < 0 {
		return model.FrequencyRecord{}, fmt.Errorf("invalid frequency %q", fields[0])
	}
	docFreq, err := strconv.ParseInt(strings.TrimSpace(fields[1]), 10, 64)
	if err != nil || docFreq < 0 {
		return model.FrequencyRecord{}, fmt.Errorf("invalid document frequency %q", fields[1])
	}

	return model.FrequencyRecord{Freq: freq, DocFreq: docFreq, Word: fields[2]}, nil
}

// ReadRecords makes one full pass over the frequency file, calling fn for each record in file order.
// Blank lines are skipped.
func ReadRecords(path string, fn func(rec model.FrequencyRecord) error) error {
	return util.ForEachLine(path, func(lineNo int, line string) error {
		if strings.TrimSpace(line) == "" {
			return nil
		}
		rec, err := ParseLine(line)
		if err != nil {
			return &ParseError{Path: path, Line: lineNo, Err: err}
		}
		if err := fn(rec); err != nil {
			var parseErr *ParseError
			if errors.As(err, &parseErr) {
				return err
			}
			return &ParseError{Path: path, Line: lineNo, Err: err}
		}
		return nil
	})
}
