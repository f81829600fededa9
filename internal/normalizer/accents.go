package normalizer

import (
	"strings"
	"unicode"

	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// StripDiacritics removes combining marks without breaking other runes
func StripDiacritics(s string) string {
	t := transform.Chain(norm.NFD, transform.RemoveFunc(isMn), norm.NFC)
	out, _, _ := transform.String(t, s)
	return out
}

// isMn reports whether the rune is a combining diacritic mark
func isMn(r rune) bool {
	return unicode.Is(unicode.Mn, r)
}

// Fold removes diacritics, lowercases and trims surrounding space.
// Used wherever two provider strings must compare as the same value.
func Fold(s string) string {
	return strings.ToLower(strings.TrimSpace(StripDiacritics(s)))
}
