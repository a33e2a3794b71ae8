package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/anbeck/user-directory/internal/domain/entity"
	"github.com/anbeck/user-directory/internal/domain/repository"
)

const accountColumns = `id, email, password_hash, role, last_login, ip_address, created_at, updated_at`

type AccountRepository struct {
	pool *pgxpool.Pool
}

func NewAccountRepository(pool *pgxpool.Pool) *AccountRepository {
	return &AccountRepository{pool: pool}
}

func scanAccount(row pgx.Row, a *entity.Account) error {
	return row.Scan(&a.ID, &a.Email, &a.Password, &a.Role, &a.LastLogin, &a.IPAddress,
		&a.CreatedAt, &a.UpdatedAt)
}

func (r *AccountRepository) Create(a *entity.Account) error {
	ctx := context.Background()
	row := r.pool.QueryRow(ctx, `
		INSERT INTO accounts (email, password_hash, role)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at
	`, a.Email, a.Password, a.Role)

	if err := row.Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return mapWriteErr(err)
	}
	return nil
}

func (r *AccountRepository) GetByID(id string) (*entity.Account, error) {
	ctx := context.Background()
	a := &entity.Account{}

	row := r.pool.QueryRow(ctx, `SELECT `+accountColumns+` FROM accounts WHERE id = $1`, id)
	if err := scanAccount(row, a); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return a, nil
}

func (r *AccountRepository) GetByEmail(email string) (*entity.Account, error) {
	ctx := context.Background()
	a := &entity.Account{}

	row := r.pool.QueryRow(ctx, `SELECT `+accountColumns+` FROM accounts WHERE email = $1`, email)
	if err := scanAccount(row, a); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return a, nil
}

func (r *AccountRepository) Count() (int, error) {
	ctx := context.Background()
	var n int
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM accounts`).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func (r *AccountRepository) RecordLogin(id string, at time.Time, ip string) error {
	ctx := context.Background()
	_, err := r.pool.Exec(ctx, `
		UPDATE accounts SET last_login = $1, ip_address = $2, updated_at = now() WHERE id = $3
	`, at, ip, id)
	return err
}

var _ repository.AccountRepository = (*AccountRepository)(nil)
