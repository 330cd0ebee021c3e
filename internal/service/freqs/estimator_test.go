package freqs

import (
	"compress/gzip"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"go.uber.org/zap"
)

func writeFreqs(t *testing.T, lines ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "freqs.tsv")
	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0644); err != nil {
		t.Fatalf("Failed to write frequency file: %v", err)
	}
	return path
}

func newTestEstimator(minDocFreq, minFreq int64) *Estimator {
	opts := DefaultEstimateOptions()
	opts.MinDocFreq = minDocFreq
	opts.MinFreq = minFreq
	return NewEstimator(opts, zap.NewNop())
}

func TestEstimate_ThresholdsAndOrdering(t *testing.T) {
	path := writeFreqs(t,
		"100\t10\t'the'",
		"50\t8\t'cat'",
		"1\t1\t'xyzzy'",
	)

	est, err := newTestEstimator(5, 10).Estimate(path)
	if err != nil {
		t.Fatalf("Estimate failed: %v", err)
	}

	if _, ok := est.Probs.Get("xyzzy"); ok {
		t.Error("Expected 'xyzzy' to be excluded")
	}
	the, ok := est.Probs.Get("the")
	if !ok {
		t.Fatal("Expected 'the' to be present")
	}
	cat, ok := est.Probs.Get("cat")
	if !ok {
		t.Fatal("Expected 'cat' to be present")
	}
	if the <= cat {
		t.Errorf("Expected log_prob(the)=%v > log_prob(cat)=%v", the, cat)
	}
	if the > 0 || cat > 0 {
		t.Errorf("Expected non-positive log-probabilities, got %v and %v", the, cat)
	}

	if est.Total != 151 || est.Records != 3 {
		t.Errorf("Expected total 151 over 3 records, got %d over %d", est.Total, est.Records)
	}
	if est.OOVProb >= 0 || math.IsInf(est.OOVProb, 0) || math.IsNaN(est.OOVProb) {
		t.Errorf("Expected finite negative OOV probability, got %v", est.OOVProb)
	}
	if est.OOVProb >= cat {
		t.Errorf("Expected OOV probability %v below retained words", est.OOVProb)
	}
}

func TestEstimate_MonotonicInFrequency(t *testing.T) {
	var lines []string
	for i := 1; i <= 500; i++ {
		lines = append(lines, strings.Join([]string{
			strconv.Itoa(20000 / i), "10", "'w" + strconv.Itoa(i) + "'",
		}, "\t"))
	}
	path := writeFreqs(t, lines...)

	est, err := newTestEstimator(0, 0).Estimate(path)
	if err != nil {
		t.Fatalf("Estimate failed: %v", err)
	}
	if est.Probs.Len() != 500 {
		t.Fatalf("Expected 500 words, got %d", est.Probs.Len())
	}

	// Words are listed by descending frequency, so log-probabilities must not increase
	prev := 0.0
	for i, w := range est.Probs.Words() {
		lp, _ := est.Probs.Get(w)
		if lp > 0 {
			t.Fatalf("log_prob(%s) = %v > 0", w, lp)
		}
		if i > 0 && lp > prev {
			t.Fatalf("log_prob(%s) = %v increased over %v", w, lp, prev)
		}
		prev = lp
	}
}

func TestEstimate_DuplicateWordLastWriteWins(t *testing.T) {
	path := writeFreqs(t,
		"300\t10\t'dup'",
		"100\t10\t'x'",
		"200\t10\t'dup'",
	)

	est, err := newTestEstimator(0, 0).Estimate(path)
	if err != nil {
		t.Fatalf("Estimate failed: %v", err)
	}

	words := est.Probs.Words()
	if len(words) != 2 || words[0] != "dup" || words[1] != "x" {
		t.Fatalf("Expected first-seen order [dup x], got %v", words)
	}

	dup, _ := est.Probs.Get("dup")
	x, _ := est.Probs.Get("x")
	if dup <= x {
		t.Errorf("Expected the freq-200 occurrence of 'dup' (%v) to outrank 'x' (%v)", dup, x)
	}
	want := math.Log(200.0 / 600.0)
	if math.Abs(dup-want) > 0.5 {
		t.Errorf("Expected log_prob(dup) near %v, got %v", want, dup)
	}
}

func TestEstimate_MaxLengthAndTabbedWord(t *testing.T) {
	path := writeFreqs(t,
		"100\t10\t'a\tb'",
		"100\t10\t'"+strings.Repeat("x", 98)+"'",
		"100\t10\t'"+strings.Repeat("y", 97)+"'",
	)

	est, err := newTestEstimator(0, 0).Estimate(path)
	if err != nil {
		t.Fatalf("Estimate failed: %v", err)
	}
	if _, ok := est.Probs.Get("a\tb"); !ok {
		t.Error("Expected word containing a tab to be kept")
	}
	// Length is measured on the encoded field, quotes included
	if _, ok := est.Probs.Get(strings.Repeat("x", 98)); ok {
		t.Error("Expected 100-rune field to be excluded")
	}
	if _, ok := est.Probs.Get(strings.Repeat("y", 97)); !ok {
		t.Error("Expected 99-rune field to be kept")
	}
}

func TestEstimate_FiltersBeforeDecoding(t *testing.T) {
	path := writeFreqs(t,
		"500\t50\t'the'",
		"1\t1\tnot-a-literal",
		"500\t50\t"+strings.Repeat("z", 120),
	)

	est, err := newTestEstimator(5, 5).Estimate(path)
	if err != nil {
		t.Fatalf("Expected filtered records to be skipped undecoded, got %v", err)
	}
	if est.Probs.Len() != 1 {
		t.Errorf("Expected 1 word, got %d", est.Probs.Len())
	}
}

func TestEstimate_OOVBelowRetainedWords(t *testing.T) {
	var lines []string
	for i := 0; i < 20000; i++ {
		lines = append(lines, "1\t1\t'w"+strconv.Itoa(i)+"'")
	}
	for i := 0; i < 10; i++ {
		lines = append(lines, "1000\t100\t'top"+strconv.Itoa(i)+"'")
	}
	path := writeFreqs(t, lines...)

	est, err := newTestEstimator(0, 0).Estimate(path)
	if err != nil {
		t.Fatalf("Estimate failed: %v", err)
	}

	for _, word := range est.Probs.Words() {
		lp, _ := est.Probs.Get(word)
		if est.OOVProb >= lp {
			t.Fatalf("OOV probability %v not below log_prob(%s) = %v", est.OOVProb, word, lp)
		}
	}
	top, _ := est.Probs.Get("top0")
	rare, _ := est.Probs.Get("w0")
	if top <= rare {
		t.Errorf("Expected log_prob(top0)=%v > log_prob(w0)=%v", top, rare)
	}
}

func TestEstimate_Gzip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "freqs.tsv.gz")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("Failed to create file: %v", err)
	}
	zw := gzip.NewWriter(f)
	zw.Write([]byte("100\t10\t'the'\n50\t8\t'cat'\n"))
	zw.Close()
	f.Close()

	est, err := newTestEstimator(5, 10).Estimate(path)
	if err != nil {
		t.Fatalf("Estimate failed: %v", err)
	}
	if est.Probs.Len() != 2 {
		t.Errorf("Expected 2 words, got %d", est.Probs.Len())
	}
}

func TestEstimate_Errors(t *testing.T) {
	t.Run("undecodable word", func(t *testing.T) {
		path := writeFreqs(t, "100\t10\t'the'", "100\t10\tcat")
		_, err := newTestEstimator(0, 0).Estimate(path)
		if !errors.Is(err, ErrBadLiteral) {
			t.Fatalf("Expected ErrBadLiteral, got %v", err)
		}
		var parseErr *ParseError
		if !errors.As(err, &parseErr) || parseErr.Line != 2 || parseErr.Path != path {
			t.Fatalf("Expected ParseError at %s:2, got %v", path, err)
		}
	})

	t.Run("missing fields", func(t *testing.T) {
		path := writeFreqs(t, "100\t'the'")
		_, err := newTestEstimator(0, 0).Estimate(path)
		var parseErr *ParseError
		if !errors.As(err, &parseErr) || parseErr.Line != 1 {
			t.Fatalf("Expected ParseError at line 1, got %v", err)
		}
	})

	t.Run("bad count", func(t *testing.T) {
		path := writeFreqs(t, "many\t10\t'the'")
		if _, err := newTestEstimator(0, 0).Estimate(path); err == nil {
			t.Fatal("Expected error for non-integer frequency")
		}
	})

	t.Run("zero total", func(t *testing.T) {
		path := writeFreqs(t, "0\t0\t'the'")
		if _, err := newTestEstimator(0, 0).Estimate(path); !errors.Is(err, ErrEmptyCounts) {
			t.Fatalf("Expected ErrEmptyCounts, got %v", err)
		}
	})

	t.Run("unknown smoother", func(t *testing.T) {
		path := writeFreqs(t, "1\t1\t'a'")
		opts := DefaultEstimateOptions()
		opts.Smoother = "witten-bell"
		if _, err := NewEstimator(opts, zap.NewNop()).Estimate(path); err == nil {
			t.Fatal("Expected error for unknown smoother")
		}
	})
}

func TestParseLine(t *testing.T) {
	rec, err := ParseLine("42\t7\t'hello'  \n")
	if err != nil {
		t.Fatalf("ParseLine failed: %v", err)
	}
	if rec.Freq != 42 || rec.DocFreq != 7 || rec.Word != "'hello'" {
		t.Errorf("Unexpected record %+v", rec)
	}

	if _, err := ParseLine("-1\t7\t'x'"); err == nil {
		t.Error("Expected error for negative frequency")
	}
}
