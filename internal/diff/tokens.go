package diff

import (
	"unicode/utf8"

	"github.com/clipperhouse/uax29/v2/words"
)

// wordTokens splits text on Unicode word boundaries (UAX #29). Words, runs of horizontal whitespace, punctuation, and line breaks each become their own token, and the
// tokens concatenate back to text.
func wordTokens(text string) []string {
	if text == "" {
		return nil
	}
	var tokens []string
	iter := words.FromString(text)
	for iter.Next() {
		tokens = append(tokens, iter.Value())
	}
	return tokens
}

// tokenEncoder assigns each distinct token a rune so token sequences can be diffed with diffmatchpatch's rune-based API. The zero value is ready to use; use the same
// encoder for both sides of a diff.
type tokenEncoder struct {
	ids  map[string]rune
	next int
}

const (
	surrogateMin = 0xD800
	surrogateMax = 0xDFFF
)

// encode returns the rune sequence for tokens. It returns false if there are more distinct tokens than valid runes.
func (e *tokenEncoder) encode(tokens []string) ([]rune, bool) {
	if e.ids == nil {
		e.ids = make(map[string]rune)
	}
	out := make([]rune, 0, len(tokens))
	for _, tok := range tokens {
		r, ok := e.ids[tok]
		if !ok {
			r = indexToRune(e.next)
			if r > utf8.MaxRune {
				return nil, false
			}
			e.next++
			e.ids[tok] = r
		}
		out = append(out, r)
	}
	return out, true
}

// indexToRune maps a token index to a rune, skipping the surrogate range (surrogates do not survive a string round trip).
func indexToRune(idx int) rune {
	if idx >= surrogateMin {
		idx += surrogateMax - surrogateMin + 1
	}
	return rune(idx)
}

// tokenCount returns the number of tokens encoded in s.
func tokenCount(s string) int {
	return utf8.RuneCountInString(s)
}
