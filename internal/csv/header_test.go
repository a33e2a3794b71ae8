package csv

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanonicalizeHeader(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		want string
	}{
		{"name", "name"},
		{"  Name ", "name"},
		{"E-MAIL", "email"},
		{"Location", "location"},
		{"IP Address", "ipAddress"},
		{"ip_address", "ipAddress"}, // underscore survives stripping but the suffix still matches
		{"IP-ADDRESS", "ipAddress"},
		{"Last Login", "lastLogin"},
		{"last-login", "lastLogin"},
		{"LASTLOGIN", "lastLogin"},
		{"Is Active", "isActive"},
		{"isactive", "isActive"},
		{"Is Blocked", "isblocked"},
		{"act", "act"}, // too short for suffix lookup
		{"", ""},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, CanonicalizeHeader(tc.in), "header %q", tc.in)
	}
}

func TestCanonicalizeHeaderSuffixCollision(t *testing.T) {
	t.Parallel()

	// The suffix lookup is purely positional, so an unrelated header
	// ending in a known suffix gets captured. Locked in on purpose.
	assert.Equal(t, "ipAddress", CanonicalizeHeader("Progress"))
	assert.Equal(t, "isActive", CanonicalizeHeader("Incentive"))
}
