package csv

import (
	"strconv"
	"strings"
	"time"

	"github.com/anbeck/user-directory/internal/domain/entity"
)

// isoMillis matches the wire format consumers of earlier exports expect:
// UTC with millisecond precision.
const isoMillis = "2006-01-02T15:04:05.000Z"

var baseColumns = []string{"name", "email", "location", "isActive", "isBlocked"}
var adminColumns = []string{"lastLogin", "ipAddress"}

// UsersToCSV projects records into a CSV document. The privileged
// columns are appended only for admins; callers are expected to have
// sanitized the records for the same actor already, so the flag gates
// the column set, not the values.
//
// Cell rules: absent values render as empty cells, timestamps as
// unquoted ISO-8601, everything else quoted with internal quotes
// doubled. Booleans render as the literal strings "true"/"false". The
// header row is never quoted. An empty record set yields just the
// header line.
func UsersToCSV(users []entity.User, admin bool) string {
	columns := baseColumns
	if admin {
		columns = append(append([]string{}, baseColumns...), adminColumns...)
	}

	lines := make([]string, 0, len(users)+1)
	lines = append(lines, strings.Join(columns, ","))

	for _, u := range users {
		cells := make([]string, 0, len(columns))
		for _, col := range columns {
			cells = append(cells, renderCell(u, col))
		}
		lines = append(lines, strings.Join(cells, ","))
	}
	return strings.Join(lines, "\n")
}

func renderCell(u entity.User, column string) string {
	switch column {
	case "name":
		return quote(u.Name)
	case "email":
		return quote(u.Email)
	case "location":
		return quote(u.Location)
	case "isActive":
		return quote(strconv.FormatBool(u.IsActive))
	case "isBlocked":
		return quote(strconv.FormatBool(u.IsBlocked))
	case "lastLogin":
		if u.LastLogin == nil {
			return ""
		}
		return formatTimestamp(*u.LastLogin)
	case "ipAddress":
		if u.IPAddress == nil {
			return ""
		}
		return quote(*u.IPAddress)
	}
	return ""
}

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(isoMillis)
}

func quote(value string) string {
	return `"` + strings.ReplaceAll(value, `"`, `""`) + `"`
}
