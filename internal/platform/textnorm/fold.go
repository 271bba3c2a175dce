// Package textnorm folds provider spellings of names into comparable keys.
package textnorm

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Fold lowercases, strips diacritics and collapses every run of
// non-alphanumeric characters into a single space.
// "Borussia Mönchengladbach" and "borussia monchengladbach" fold equal.
func Fold(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}

	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	stripped, _, err := transform.String(t, value)
	if err != nil {
		stripped = value
	}

	var builder strings.Builder
	builder.Grow(len(stripped))
	pendingSpace := false
	for _, r := range strings.ToLower(stripped) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if pendingSpace && builder.Len() > 0 {
				builder.WriteByte(' ')
			}
			builder.WriteRune(r)
			pendingSpace = false
			continue
		}
		if r == '\'' || r == '’' {
			continue
		}
		pendingSpace = true
	}
	return builder.String()
}

// Equal reports whether two names fold to the same key.
func Equal(a, b string) bool {
	return Fold(a) == Fold(b)
}

// Contains reports whether either folded name contains the other.
// Names shorter than minLen folded characters never match.
func Contains(a, b string, minLen int) bool {
	fa, fb := Fold(a), Fold(b)
	if fa == "" || fb == "" {
		return false
	}
	if len([]rune(fa)) < minLen || len([]rune(fb)) < minLen {
		return false
	}
	return strings.Contains(fa, fb) || strings.Contains(fb, fa)
}
