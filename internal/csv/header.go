package csv

import (
	"strings"
	"unicode"
)

// headerSuffixes maps the last four characters of a normalized header to
// a canonical field name. Only the three headers with variable spellings
// in the wild ("IP Address", "Last Login", "Is Active") get heuristic
// treatment; name, email, location and isblocked normalize to themselves.
//
// The match is purely positional: a header that coincidentally ends in
// one of these suffixes is mis-mapped. Known limitation, kept for
// compatibility with existing exports.
var headerSuffixes = map[string]string{
	"ress": "ipAddress",
	"ogin": "lastLogin",
	"tive": "isActive",
}

// CanonicalizeHeader maps an arbitrary CSV column spelling to a canonical
// field name. Unmapped headers come back trimmed, lowercased and stripped
// of internal whitespace and hyphens; the assembler drops anything that
// does not match a field it knows.
func CanonicalizeHeader(header string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(header)) {
		if unicode.IsSpace(r) || r == '-' {
			continue
		}
		b.WriteRune(r)
	}
	normalized := b.String()

	if len(normalized) >= 4 {
		if canonical, ok := headerSuffixes[normalized[len(normalized)-4:]]; ok {
			return canonical
		}
	}
	return normalized
}
