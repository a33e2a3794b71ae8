package repository

import "time"

// DateRange is a concrete inclusive interval over lastLogin. A nil bound
// means unbounded on that side; a zero-value DateRange means the filter
// is omitted entirely.
type DateRange struct {
	From *time.Time
	To   *time.Time
}

// IsZero reports whether no bound is set.
func (r DateRange) IsZero() bool { return r.From == nil && r.To == nil }

// Named range tokens and their fixed look-back durations.
var loginRanges = map[string]time.Duration{
	"24h": 24 * time.Hour,
	"3d":  3 * 24 * time.Hour,
	"1w":  7 * 24 * time.Hour,
	"4w":  28 * 24 * time.Hour,
}

// endOfDayOffset widens a custom "to" date to cover the whole calendar
// day by adding one day in milliseconds. Not DST-safe; kept as literal
// arithmetic for compatibility with existing consumers.
const endOfDayOffset = 86400000 * time.Millisecond

// ResolveLoginRange converts a named token and/or a custom from/to pair
// of calendar dates into a concrete interval around now.
//
// The token contributes only a lower bound (now minus its duration). A
// custom "from" replaces the lower bound at that date's start; a custom
// "to" sets the upper bound at the date plus endOfDayOffset. Assignments
// apply in that order and the last one wins — the bounds are not
// intersected. Unknown tokens and unparseable dates contribute nothing.
func ResolveLoginRange(token, from, to string, now time.Time) DateRange {
	var rng DateRange

	if d, ok := loginRanges[token]; ok {
		lower := now.Add(-d)
		rng.From = &lower
	}
	if t, ok := parseDay(from); ok {
		rng.From = &t
	}
	if t, ok := parseDay(to); ok {
		upper := t.Add(endOfDayOffset)
		rng.To = &upper
	}
	return rng
}

func parseDay(value string) (time.Time, bool) {
	if value == "" {
		return time.Time{}, false
	}
	for _, layout := range []string{"2006-01-02", time.RFC3339} {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// UserFilter is the query surface of the directory list and export
// endpoints. Substring fields match case-insensitively. Login is only
// honored for admin actors; the caller zeroes it for everyone else.
type UserFilter struct {
	Name     string
	Email    string
	Location string

	IsActive  *bool
	IsBlocked *bool

	Login DateRange

	SortBy string
	Order  string
	Page   int
	Limit  int
}

// Normalize applies the listing defaults: sort by name ascending,
// page/limit floored at 1.
func (f *UserFilter) Normalize() {
	if f.SortBy == "" {
		f.SortBy = "name"
	}
	if f.Order == "" {
		f.Order = "asc"
	}
	if f.Order != "asc" {
		f.Order = "desc"
	}
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 {
		f.Limit = 1
	}
}
