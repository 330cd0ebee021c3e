package pipeline

import (
	"fmt"
	"sort"

	"vocab-go/internal/service/clusters"
	"vocab-go/internal/service/freqs"
	"vocab-go/internal/service/vocab"
)

// rankedWords orders words by descending probability. Equal probabilities come out in reverse
// first-seen order: a stable ascending sort, reversed.
func rankedWords(probs *freqs.Probabilities) []string {
	words := append([]string(nil), probs.Words()...)
	sort.SliceStable(words, func(i, j int) bool {
		pi, _ := probs.Get(words[i])
		pj, _ := probs.Get(words[j])
		return pi < pj
	})
	for i, j := 0, len(words)-1; i < j; i, j = i+1, j-1 {
		words[i], words[j] = words[j], words[i]
	}
	return words
}

// Populate creates a lexeme for every word in probs, most probable first, and fills in its
// probability and cluster id. Words absent from table get cluster 0.
func Populate(v *vocab.Vocab, probs *freqs.Probabilities, table *clusters.Table, oovProb float64) (int, error) {
	v.SetOOVProb(oovProb)

	words := rankedWords(probs)
	for _, word := range words {
		prob, _ := probs.Get(word)

		cluster := uint64(0)
		if table != nil {
			id, err := table.ClusterID(word)
			if err != nil {
				return 0, fmt.Errorf("bad cluster for %q: %w", word, err)
			}
			cluster = id
		}

		lex := v.GetOrCreate(word)
		lex.Prob = prob
		lex.IsOOV = false
		lex.Cluster = cluster
	}
	return len(words), nil
}
