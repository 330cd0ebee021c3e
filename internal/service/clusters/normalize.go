package clusters

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Normalizer fixes up raw word tokens before they are used as keys
type Normalizer interface {
	Normalize(word string) string
}

// NFCNormalizer composes to NFC and drops control characters
type NFCNormalizer struct{}

func (NFCNormalizer) Normalize(word string) string {
	normed := norm.NFC.String(word)
	return strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, normed)
}
