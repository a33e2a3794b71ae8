package entity

import (
	"time"
)

// User is a directory record, not a login account (see Account).
// Email is the natural key; the import pipeline lowercases it before
// any uniqueness check runs.
//
// LastLogin and IPAddress are privileged fields: non-admin readers must
// never see them. They are pointers so a sanitized copy drops the JSON
// keys entirely instead of rendering null.
type User struct {
	ID        string     `json:"id,omitempty"`
	Name      string     `json:"name"`
	Email     string     `json:"email"`
	Location  string     `json:"location"`
	IsActive  bool       `json:"isActive"`
	IsBlocked bool       `json:"isBlocked"`
	LastLogin *time.Time `json:"lastLogin,omitempty"`
	IPAddress *string    `json:"ipAddress,omitempty"`
	CreatedAt time.Time  `json:"createdAt,omitempty"`
	UpdatedAt time.Time  `json:"updatedAt,omitempty"`
}

// Sanitized returns the record as the given actor may see it. Admins get
// the record unchanged; everyone else gets a copy with the privileged
// fields absent.
func (u User) Sanitized(admin bool) User {
	if admin {
		return u
	}
	u.LastLogin = nil
	u.IPAddress = nil
	return u
}

// SanitizeAll applies Sanitized over a slice, preserving order.
func SanitizeAll(users []User, admin bool) []User {
	out := make([]User, len(users))
	for i, u := range users {
		out[i] = u.Sanitized(admin)
	}
	return out
}
