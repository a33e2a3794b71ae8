package csv

import "regexp"

// Field patterns are fixed, not configurable. They match the constraints
// enforced by the users table and must stay in sync with it:
//   - email: RFC-lite, TLD of two or more letters
//   - name: exactly two words of letters (accented Latin included), each
//     with at most one internal hyphen, separated by a single space
//   - location: letters including German umlauts and hyphens, no spaces
var (
	emailPattern    = regexp.MustCompile(`^[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`)
	namePattern     = regexp.MustCompile(`^[A-Za-zÀ-ÿ]+(?:-[A-Za-zÀ-ÿ]+)?\s[A-Za-zÀ-ÿ]+(?:-[A-Za-zÀ-ÿ]+)?$`)
	locationPattern = regexp.MustCompile(`^[A-Za-zäüöÄÜÖ\-]+$`)
)

// RowError ties an ordered list of violations to a 1-based input row.
type RowError struct {
	Row    int      `json:"row"`
	Errors []string `json:"errors"`
}

// ValidateRow checks a normalized row against the required-field and
// format rules. A missing field reports only "<field> is required"; the
// format check is skipped so a row is never double-reported for the same
// field. index is the row's 0-based position in the batch.
//
// Returns nil when the row is clean.
func ValidateRow(name, email, location string, index int) *RowError {
	var errs []string

	if name == "" {
		errs = append(errs, "name is required")
	} else if !namePattern.MatchString(name) {
		errs = append(errs, "name format is invalid")
	}

	if email == "" {
		errs = append(errs, "email is required")
	} else if !emailPattern.MatchString(email) {
		errs = append(errs, "email format is invalid")
	}

	if location == "" {
		errs = append(errs, "location is required")
	} else if !locationPattern.MatchString(location) {
		errs = append(errs, "location format is invalid")
	}

	if len(errs) == 0 {
		return nil
	}
	return &RowError{Row: index + 1, Errors: errs}
}
