package freqs

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrBadLiteral is returned when a word field is not a well-formed quoted literal
var ErrBadLiteral = errors.New("malformed word literal")

// DecodeWord decodes a quoted word literal such as 'the', "don't" or u'caf\xe9'.
// Only string literals are accepted; nothing is evaluated.
func DecodeWord(field string) (string, error) {
	s := field
	if len(s) > 0 && strings.ContainsRune("uUbB", rune(s[0])) {
		s = s[1:]
	}
	if len(s) < 2 {
		return "", fmt.Errorf("%w: %q", ErrBadLiteral, field)
	}

	quote := s[0]
	if (quote != '\'' && quote != '"') || s[len(s)-1] != quote {
		return "", fmt.Errorf("%w: %q", ErrBadLiteral, field)
	}
	body := s[1 : len(s)-1]

	// Fast path
	if !strings.ContainsRune(body, '\\') {
		if strings.IndexByte(body, quote) >= 0 {
			return "", fmt.Errorf("%w: unescaped quote in %q", ErrBadLiteral, field)
		}
		return body, nil
	}

	var b strings.Builder
	b.Grow(len(body))
	for len(body) > 0 {
		switch {
		case body[0] == quote:
			return "", fmt.Errorf("%w: unescaped quote in %q", ErrBadLiteral, field)
		case len(body) >= 2 && body[0] == '\\' && (body[1] == '\'' || body[1] == '"'):
			// Both quote escapes are valid inside either quote style
			b.WriteByte(body[1])
			body = body[2:]
			continue
		}

		// \xhh decodes to the code point U+00hh, not a raw byte
		r, _, tail, err := strconv.UnquoteChar(body, quote)
		if err != nil {
			return "", fmt.Errorf("%w: bad escape in %q", ErrBadLiteral, field)
		}
		b.WriteRune(r)
		body = tail
	}
	return b.String(), nil
}
