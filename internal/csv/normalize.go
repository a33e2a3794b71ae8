package csv

import (
	"regexp"
	"strings"
	"unicode"
)

var whitespaceRun = regexp.MustCompile(`\s+`)

// isWordChar is the ASCII word class the casing rules operate on:
// accented letters are not word characters, so a boundary falls between
// an accented letter and the ASCII letter that follows it. Kept for
// compatibility with existing exports rather than corrected.
func isWordChar(r rune) bool {
	return r == '_' || r >= '0' && r <= '9' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z'
}

// upperAtBoundaries uppercases every word character that follows a
// non-word character (or starts the string). Only the boundary character
// changes; the rest of each word passes through untouched, so
// "mcDONALD" stays "McDONALD".
func upperAtBoundaries(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	prevWord := false
	for _, r := range s {
		if isWordChar(r) && !prevWord {
			b.WriteRune(unicode.ToUpper(r))
		} else {
			b.WriteRune(r)
		}
		prevWord = isWordChar(r)
	}
	return b.String()
}

// NormalizeName trims, collapses internal whitespace runs to a single
// space and uppercases the first character of each word.
func NormalizeName(value string) string {
	return upperAtBoundaries(whitespaceRun.ReplaceAllString(strings.TrimSpace(value), " "))
}

// NormalizeLocation trims, replaces whitespace runs with a single hyphen,
// lowercases the whole string and then uppercases the character after
// each word boundary. The hyphen substitution runs before lowercasing;
// order matters and is part of the contract.
func NormalizeLocation(value string) string {
	return upperAtBoundaries(strings.ToLower(whitespaceRun.ReplaceAllString(strings.TrimSpace(value), "-")))
}

// NormalizeEmail trims and lowercases.
func NormalizeEmail(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

// NormalizeActive coerces the raw isActive cell: the literal string
// "true" is true, everything else is false.
func NormalizeActive(value string) bool {
	return value == "true"
}
