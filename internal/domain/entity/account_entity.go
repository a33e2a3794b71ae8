package entity

import "time"

// Account roles. The first registered account becomes an admin.
const (
	RoleAdmin = "ADMIN"
	RoleUser  = "USER"
)

// Account is a login identity. Password holds a bcrypt hash.
// LastLogin and IPAddress are refreshed on every successful login.
type Account struct {
	ID        string
	Email     string
	Password  string
	Role      string
	LastLogin *time.Time
	IPAddress *string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsAdmin reports whether the account carries the admin capability.
func (a Account) IsAdmin() bool { return a.Role == RoleAdmin }
