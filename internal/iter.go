package internal

import (
	"iter"
	"strings"
	"unicode"
)

// SplitSeq yields every sep-separated token of text, whitespace trimmed,
// along with its index. Empty tokens are yielded too.
func SplitSeq(text string, sep string) iter.Seq2[int, string] {
	return func(yield func(int, string) bool) {
		var n int
		for token := range strings.SplitSeq(text, sep) {
			if !yield(n, strings.TrimSpace(token)) {
				return // Stop if the consumer stops
			}
			n++
		}
	}
}

// FieldsSeq yields the non-empty tokens of text separated by whitespace
// or by any rune in seps.
func FieldsSeq(text string, seps string) iter.Seq[string] {
	return strings.FieldsFuncSeq(text, func(r rune) bool {
		return unicode.IsSpace(r) || strings.ContainsRune(seps, r)
	})
}
