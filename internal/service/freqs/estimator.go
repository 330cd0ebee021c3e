package freqs

import (
	"errors"
	"fmt"
	"math"
	"unicode/utf8"

	"vocab-go/internal/model"

	"go.uber.org/zap"
)

// ErrEmptyCounts is returned when the frequency file holds no counts to smooth
var ErrEmptyCounts = errors.New("frequency file has a zero total count")

// EstimateOptions controls which words receive a probability
type EstimateOptions struct {
	MaxLength  int    // Encoded word fields, quotes included, must be shorter than this many runes
	MinDocFreq int64  // Minimum document frequency
	MinFreq    int64  // Minimum raw frequency
	Smoother   string // Counter name, see NewCounter
}

// DefaultEstimateOptions returns the stock thresholds
func DefaultEstimateOptions() EstimateOptions {
	return EstimateOptions{
		MaxLength:  100,
		MinDocFreq: 5,
		MinFreq:    200,
		Smoother:   SmootherGoodTuring,
	}
}

// Probabilities maps words to log-probabilities and remembers the order words were first seen
type Probabilities struct {
	logProbs map[string]float64
	order    []string
}

func NewProbabilities() *Probabilities {
	return &Probabilities{logProbs: make(map[string]float64)}
}

// Set stores a log-probability. A repeated word keeps its first position and takes the new value.
func (p *Probabilities) Set(word string, logProb float64) {
	if _, ok := p.logProbs[word]; !ok {
		p.order = append(p.order, word)
	}
	p.logProbs[word] = logProb
}

func (p *Probabilities) Get(word string) (float64, bool) {
	lp, ok := p.logProbs[word]
	return lp, ok
}

func (p *Probabilities) Len() int {
	return len(p.order)
}

// Words returns the words in first-seen order
func (p *Probabilities) Words() []string {
	return p.order
}

// Estimate is the outcome of smoothing a frequency file
type Estimate struct {
	Probs    *Probabilities
	OOVProb  float64
	Total    int64
	Records  int
	Smoother string
}

// Estimator turns a frequency file into smoothed log-probabilities
type Estimator struct {
	opts   EstimateOptions
	logger *zap.Logger
}

func NewEstimator(opts EstimateOptions, logger *zap.Logger) *Estimator {
	if opts.MaxLength <= 0 {
		opts.MaxLength = DefaultEstimateOptions().MaxLength
	}
	return &Estimator{opts: opts, logger: logger}
}

// Estimate reads the frequency file twice. The first pass fills the counter keyed by 1-based rank,
// the second computes log(smoother(freq)) - log(total) for every word passing the thresholds.
// Only records that pass are decoded.
func (e *Estimator) Estimate(path string) (*Estimate, error) {
	counter, err := NewCounter(e.opts.Smoother)
	if err != nil {
		return nil, err
	}

	rank := uint64(0)
	err = ReadRecords(path, func(rec model.FrequencyRecord) error {
		rank++
		counter.Inc(rank, rec.Freq)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to count frequencies: %w", err)
	}

	total := counter.Total()
	if total <= 0 {
		return nil, fmt.Errorf("%s: %w", path, ErrEmptyCounts)
	}
	counter.Smooth()
	logTotal := math.Log(float64(total))

	e.logger.Info("Counted frequencies",
		zap.String("path", path),
		zap.Uint64("records", rank),
		zap.Int64("total", total),
		zap.String("smoother", counter.Name()))

	probs := NewProbabilities()
	excluded := 0
	err = ReadRecords(path, func(rec model.FrequencyRecord) error {
		if rec.DocFreq < e.opts.MinDocFreq || rec.Freq < e.opts.MinFreq || utf8.RuneCountInString(rec.Word) >= e.opts.MaxLength {
			excluded++
			return nil
		}
		word, err := DecodeWord(rec.Word)
		if err != nil {
			return err
		}
		probs.Set(word, math.Log(counter.Smoother(rec.Freq))-logTotal)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to compute probabilities: %w", err)
	}

	oovProb := math.Log(counter.Smoother(0)) - logTotal

	e.logger.Info("Estimated word probabilities",
		zap.String("path", path),
		zap.Int("words", probs.Len()),
		zap.Int("excluded", excluded),
		zap.Float64("oov_prob", oovProb))

	return &Estimate{
		Probs:    probs,
		OOVProb:  oovProb,
		Total:    total,
		Records:  int(rank),
		Smoother: counter.Name(),
	}, nil
}
