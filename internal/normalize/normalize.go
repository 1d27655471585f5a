// Package normalize provides utilities for normalizing user-supplied text.
package normalize

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// Text returns s in Unicode NFC form with null bytes and surrounding
// whitespace removed. Lengths of user text are measured on this form.
func Text(s string) string {
	s = strings.Map(func(r rune) rune {
		if r == 0 {
			return -1
		}
		return r
	}, s)
	return strings.TrimSpace(norm.NFC.String(s))
}

// Length returns the number of characters in s after normalization.
// A character is one Unicode code point in NFC form.
func Length(s string) int {
	return utf8.RuneCountInString(Text(s))
}

// IsBlank reports whether s is empty or contains only whitespace.
func IsBlank(s string) bool {
	return strings.IndexFunc(s, func(r rune) bool { return !unicode.IsSpace(r) && r != 0 }) < 0
}

// Email lowercases and trims an email address for case-insensitive lookups.
func Email(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Key folds s into a comparison key: normalized, case-folded and with
// internal whitespace collapsed. "  Science  Fiction " and "science fiction"
// share a key.
func Key(s string) string {
	s = norm.NFKC.String(Text(s))
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}
