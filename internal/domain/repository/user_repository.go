package repository

import "github.com/anbeck/user-directory/internal/domain/entity"

// UserRepository defines directory persistence. BulkInsert must be
// all-or-nothing: it only runs after the import pipeline reports a clean
// batch, and a mid-batch failure must leave nothing behind.
type UserRepository interface {
	Create(u *entity.User) error
	GetByID(id string) (*entity.User, error)
	List(f UserFilter) ([]entity.User, int, error)
	// ListAll ignores paging; the export path uses it so a CSV always
	// covers the full result set.
	ListAll(f UserFilter) ([]entity.User, error)
	Update(id string, p UserPatch) (*entity.User, error)
	Delete(id string) error
	SetBlocked(id string, blocked bool) error
	ExistingEmails(emails []string) ([]string, error)
	BulkInsert(users []entity.User) error
}

// UserPatch carries a partial update; nil fields are left untouched.
type UserPatch struct {
	Name      *string
	Email     *string
	Location  *string
	IsActive  *bool
	IsBlocked *bool
}
