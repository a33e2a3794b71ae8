package csv

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anbeck/user-directory/internal/domain/entity"
)

func TestUsersToCSVEmpty(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "name,email,location,isActive,isBlocked", UsersToCSV(nil, false))
	assert.Equal(t, "name,email,location,isActive,isBlocked,lastLogin,ipAddress", UsersToCSV(nil, true))
}

func TestUsersToCSVBaseColumns(t *testing.T) {
	t.Parallel()

	users := []entity.User{
		{Name: "John Doe", Email: "john@example.com", Location: "Berlin", IsActive: true},
		{Name: "Jane Smith", Email: "jane@example.com", Location: "New-York", IsBlocked: true},
	}

	got := UsersToCSV(users, false)
	lines := strings.Split(got, "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "name,email,location,isActive,isBlocked", lines[0])
	assert.Equal(t, `"John Doe","john@example.com","Berlin","true","false"`, lines[1])
	assert.Equal(t, `"Jane Smith","jane@example.com","New-York","false","true"`, lines[2])
}

func TestUsersToCSVAdminColumns(t *testing.T) {
	t.Parallel()

	login := time.Date(2025, 3, 14, 9, 26, 53, 589*int(time.Millisecond), time.UTC)
	ip := "203.0.113.7"
	users := []entity.User{
		{Name: "John Doe", Email: "john@example.com", Location: "Berlin", IsActive: true, LastLogin: &login, IPAddress: &ip},
		{Name: "Jane Smith", Email: "jane@example.com", Location: "Ulm", IsActive: true},
	}

	lines := strings.Split(UsersToCSV(users, true), "\n")
	require.Len(t, lines, 3)
	// Timestamps are unquoted ISO-8601 with millisecond precision.
	assert.Equal(t, `"John Doe","john@example.com","Berlin","true","false",2025-03-14T09:26:53.589Z,"203.0.113.7"`, lines[1])
	// Absent privileged values render as empty cells.
	assert.Equal(t, `"Jane Smith","jane@example.com","Ulm","true","false",,`, lines[2])
}

func TestUsersToCSVQuoting(t *testing.T) {
	t.Parallel()

	users := []entity.User{{Name: `Jo "JJ" Doe`, Email: "a@b.com", Location: "Berlin"}}

	lines := strings.Split(UsersToCSV(users, false), "\n")
	assert.Equal(t, `"Jo ""JJ"" Doe","a@b.com","Berlin","false","false"`, lines[1])
}

func TestUsersToCSVTimestampConvertsToUTC(t *testing.T) {
	t.Parallel()

	loc := time.FixedZone("CET", 3600)
	login := time.Date(2025, 1, 1, 1, 0, 0, 0, loc)
	users := []entity.User{{Name: "John Doe", Email: "a@b.com", Location: "Berlin", LastLogin: &login}}

	got := UsersToCSV(users, true)
	assert.Contains(t, got, "2025-01-01T00:00:00.000Z")
}

// An export produced for a non-admin reader survives a round trip back
// through the import pipeline unchanged.
func TestExportImportRoundTrip(t *testing.T) {
	t.Parallel()

	original := []entity.User{
		{Name: "John Doe", Email: "john@example.com", Location: "Berlin", IsActive: true},
		{Name: "Jane Smith", Email: "jane@example.com", Location: "New-York", IsActive: false},
	}

	rows, err := ParseRows(UsersToCSV(original, false))
	require.NoError(t, err)
	outcome := AssembleBatch(rows)
	require.True(t, outcome.Accepted())
	require.Len(t, outcome.Users, len(original))

	for i, u := range outcome.Users {
		assert.Equal(t, original[i].Name, u.Name)
		assert.Equal(t, original[i].Email, u.Email)
		assert.Equal(t, original[i].Location, u.Location)
		assert.Equal(t, original[i].IsActive, u.IsActive)
	}
}
