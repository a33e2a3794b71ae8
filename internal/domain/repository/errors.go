package repository

import "errors"

// Storage errors, declared here so callers do not depend on driver
// error codes.
var (
	ErrNotFound       = errors.New("not found")
	ErrDuplicateEmail = errors.New("email already exists")
)
