package repository

import (
	"time"

	"github.com/anbeck/user-directory/internal/domain/entity"
)

// AccountRepository defines login-identity persistence.
type AccountRepository interface {
	Create(a *entity.Account) error
	GetByID(id string) (*entity.Account, error)
	GetByEmail(email string) (*entity.Account, error)
	Count() (int, error)
	// RecordLogin stamps lastLogin and the client IP after a successful
	// credential check.
	RecordLogin(id string, at time.Time, ip string) error
}
