package clusters

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Unreliable is stored for words the clusterer saw too rarely
const Unreliable = "0"

// Table maps words to cluster bitstrings, keeping insertion order
type Table struct {
	paths    map[string]string
	order    []string
	variants map[string]bool // Keys added by Expand
}

func NewTable() *Table {
	return &Table{paths: make(map[string]string), variants: make(map[string]bool)}
}

// Set maps word to path. A repeated word keeps its original position.
func (t *Table) Set(word, path string) {
	if _, ok := t.paths[word]; !ok {
		t.order = append(t.order, word)
	}
	t.paths[word] = path
	delete(t.variants, word)
}

// setIfAbsent maps word to path only when word has no mapping yet
func (t *Table) setIfAbsent(word, path string) bool {
	if _, ok := t.paths[word]; ok {
		return false
	}
	t.order = append(t.order, word)
	t.paths[word] = path
	return true
}

// Path returns the cluster bitstring for word
func (t *Table) Path(word string) (string, bool) {
	p, ok := t.paths[word]
	return p, ok
}

func (t *Table) Len() int {
	return len(t.order)
}

// Words returns the keys in insertion order
func (t *Table) Words() []string {
	return t.order
}

// Expand adds the lower, title and upper case variants of every entry set with Set, never
// overwriting an existing key. Entries are visited in insertion order, so the first word to claim a
// variant wins. Variants are not expanded themselves, which keeps a second call a no-op.
// Returns the number of keys added.
func (t *Table) Expand() int {
	lower := cases.Lower(language.Und)
	upper := cases.Upper(language.Und)

	added := 0
	n := len(t.order)
	for i := 0; i < n; i++ {
		word := t.order[i]
		if t.variants[word] {
			continue
		}
		path := t.paths[word]
		for _, variant := range []string{lower.String(word), titleCase(word), upper.String(word)} {
			if t.setIfAbsent(variant, path) {
				t.variants[variant] = true
				added++
			}
		}
	}
	return added
}

// titleCase upper-cases the first cased letter of every run of cased letters and lower-cases the
// rest of the run. Any uncased rune, apostrophes and digits included, ends a run: o'neil -> O'Neil.
func titleCase(word string) string {
	var b strings.Builder
	b.Grow(len(word))
	prevCased := false
	for _, r := range word {
		if prevCased {
			b.WriteRune(unicode.ToLower(r))
		} else {
			b.WriteRune(unicode.ToTitle(r))
		}
		prevCased = unicode.IsUpper(r) || unicode.IsLower(r) || unicode.IsTitle(r)
	}
	return b.String()
}

// ClusterID returns the encoded cluster for word, or 0 when the word has no cluster
func (t *Table) ClusterID(word string) (uint64, error) {
	path, ok := t.paths[word]
	if !ok {
		return 0, nil
	}
	return Encode(path)
}

// Encode reverses a cluster bitstring and reads it as a base-2 integer, so that the lowest bits
// hold the coarsest splits: id & 15 gives the first four levels of the hierarchy.
func Encode(path string) (uint64, error) {
	b := []byte(path)
	for i, j := 0, len(b)-1; i < j; i, j = i+1, j-1 {
		b[i], b[j] = b[j], b[i]
	}
	id, err := strconv.ParseUint(string(b), 2, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid cluster path %q: %w", path, err)
	}
	return id, nil
}
