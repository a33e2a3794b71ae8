package entity

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitized(t *testing.T) {
	t.Parallel()

	login := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	ip := "203.0.113.7"
	u := User{Name: "John Doe", Email: "john@example.com", LastLogin: &login, IPAddress: &ip}

	admin := u.Sanitized(true)
	assert.Equal(t, &login, admin.LastLogin)
	assert.Equal(t, &ip, admin.IPAddress)

	member := u.Sanitized(false)
	assert.Nil(t, member.LastLogin)
	assert.Nil(t, member.IPAddress)
	assert.Equal(t, u.Name, member.Name)

	// Sanitizing copies; the original keeps its privileged fields.
	assert.NotNil(t, u.LastLogin)
	assert.NotNil(t, u.IPAddress)
}

func TestSanitizedJSONOmitsPrivilegedKeys(t *testing.T) {
	t.Parallel()

	login := time.Now().UTC()
	ip := "203.0.113.7"
	u := User{Name: "John Doe", Email: "john@example.com", LastLogin: &login, IPAddress: &ip}

	b, err := json.Marshal(u.Sanitized(false))
	require.NoError(t, err)
	assert.NotContains(t, string(b), "lastLogin")
	assert.NotContains(t, string(b), "ipAddress")

	b, err = json.Marshal(u.Sanitized(true))
	require.NoError(t, err)
	assert.Contains(t, string(b), "lastLogin")
	assert.Contains(t, string(b), "ipAddress")
}

func TestSanitizeAllPreservesOrder(t *testing.T) {
	t.Parallel()

	ip := "198.51.100.1"
	users := []User{
		{Email: "a@b.com", IPAddress: &ip},
		{Email: "c@d.com", IPAddress: &ip},
	}

	out := SanitizeAll(users, false)
	require.Len(t, out, 2)
	assert.Equal(t, "a@b.com", out[0].Email)
	assert.Equal(t, "c@d.com", out[1].Email)
	assert.Nil(t, out[0].IPAddress)
	assert.Nil(t, out[1].IPAddress)
}
