package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/anbeck/user-directory/internal/domain/entity"
	"github.com/anbeck/user-directory/internal/domain/repository"
)

const uniqueViolation = "23505"

const userColumns = `id, name, email, location, is_active, is_blocked, last_login, ip_address, created_at, updated_at`

type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

func scanUser(row pgx.Row, u *entity.User) error {
	return row.Scan(&u.ID, &u.Name, &u.Email, &u.Location, &u.IsActive, &u.IsBlocked,
		&u.LastLogin, &u.IPAddress, &u.CreatedAt, &u.UpdatedAt)
}

func mapWriteErr(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return repository.ErrDuplicateEmail
	}
	return err
}

func (r *UserRepository) Create(u *entity.User) error {
	ctx := context.Background()
	row := r.pool.QueryRow(ctx, `
		INSERT INTO users (name, email, location, is_active, is_blocked, last_login, ip_address)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`, u.Name, u.Email, u.Location, u.IsActive, u.IsBlocked, u.LastLogin, u.IPAddress)

	if err := row.Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return mapWriteErr(err)
	}
	return nil
}

func (r *UserRepository) GetByID(id string) (*entity.User, error) {
	ctx := context.Background()
	u := &entity.User{}

	row := r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	if err := scanUser(row, u); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return u, nil
}

// sortColumns whitelists sortable fields; anything else falls back to name.
var sortColumns = map[string]string{
	"name":      "name",
	"email":     "email",
	"location":  "location",
	"isActive":  "is_active",
	"isBlocked": "is_blocked",
	"lastLogin": "last_login",
	"createdAt": "created_at",
}

// buildUserWhere translates a UserFilter into a WHERE clause and its
// positional args. Substring fields use ILIKE; the login range is
// inclusive on both bounds.
func buildUserWhere(f repository.UserFilter) (string, []any) {
	var clauses []string
	var args []any

	like := func(column, value string) {
		args = append(args, "%"+value+"%")
		clauses = append(clauses, fmt.Sprintf("%s ILIKE $%d", column, len(args)))
	}

	if f.Name != "" {
		like("name", f.Name)
	}
	if f.Email != "" {
		like("email", f.Email)
	}
	if f.Location != "" {
		like("location", f.Location)
	}
	if f.IsActive != nil {
		args = append(args, *f.IsActive)
		clauses = append(clauses, fmt.Sprintf("is_active = $%d", len(args)))
	}
	if f.IsBlocked != nil {
		args = append(args, *f.IsBlocked)
		clauses = append(clauses, fmt.Sprintf("is_blocked = $%d", len(args)))
	}
	if f.Login.From != nil {
		args = append(args, *f.Login.From)
		clauses = append(clauses, fmt.Sprintf("last_login >= $%d", len(args)))
	}
	if f.Login.To != nil {
		args = append(args, *f.Login.To)
		clauses = append(clauses, fmt.Sprintf("last_login <= $%d", len(args)))
	}

	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

func (r *UserRepository) List(f repository.UserFilter) ([]entity.User, int, error) {
	ctx := context.Background()
	f.Normalize()

	where, args := buildUserWhere(f)

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM users`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	column, ok := sortColumns[f.SortBy]
	if !ok {
		column = "name"
	}
	direction := "ASC"
	if f.Order == "desc" {
		direction = "DESC"
	}

	offset := (f.Page - 1) * f.Limit
	args = append(args, f.Limit, offset)
	query := fmt.Sprintf(`SELECT %s FROM users%s ORDER BY %s %s LIMIT $%d OFFSET $%d`,
		userColumns, where, column, direction, len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var users []entity.User
	for rows.Next() {
		var u entity.User
		if err := scanUser(rows, &u); err != nil {
			return nil, 0, err
		}
		users = append(users, u)
	}
	return users, total, rows.Err()
}

// ListAll fetches every record matching the filter without paging; the
// export path uses it so a CSV always covers the full result set.
func (r *UserRepository) ListAll(f repository.UserFilter) ([]entity.User, error) {
	ctx := context.Background()
	f.Normalize()

	where, args := buildUserWhere(f)
	rows, err := r.pool.Query(ctx, `SELECT `+userColumns+` FROM users`+where+` ORDER BY name ASC`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []entity.User
	for rows.Next() {
		var u entity.User
		if err := scanUser(rows, &u); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (r *UserRepository) Update(id string, p repository.UserPatch) (*entity.User, error) {
	ctx := context.Background()

	var sets []string
	var args []any
	set := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if p.Name != nil {
		set("name", *p.Name)
	}
	if p.Email != nil {
		set("email", *p.Email)
	}
	if p.Location != nil {
		set("location", *p.Location)
	}
	if p.IsActive != nil {
		set("is_active", *p.IsActive)
	}
	if p.IsBlocked != nil {
		set("is_blocked", *p.IsBlocked)
	}
	if len(sets) == 0 {
		return r.GetByID(id)
	}
	sets = append(sets, "updated_at = now()")

	args = append(args, id)
	query := fmt.Sprintf(`UPDATE users SET %s WHERE id = $%d RETURNING `+userColumns,
		strings.Join(sets, ", "), len(args))

	u := &entity.User{}
	if err := scanUser(r.pool.QueryRow(ctx, query, args...), u); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, mapWriteErr(err)
	}
	return u, nil
}

func (r *UserRepository) Delete(id string) error {
	ctx := context.Background()
	res, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *UserRepository) SetBlocked(id string, blocked bool) error {
	ctx := context.Background()
	res, err := r.pool.Exec(ctx, `UPDATE users SET is_blocked = $1, updated_at = now() WHERE id = $2`, blocked, id)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *UserRepository) ExistingEmails(emails []string) ([]string, error) {
	ctx := context.Background()
	rows, err := r.pool.Query(ctx, `SELECT email FROM users WHERE email = ANY($1)`, emails)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var existing []string
	for rows.Next() {
		var email string
		if err := rows.Scan(&email); err != nil {
			return nil, err
		}
		existing = append(existing, email)
	}
	return existing, rows.Err()
}

// BulkInsert writes an accepted batch inside a single transaction so a
// mid-batch failure leaves the directory untouched.
func (r *UserRepository) BulkInsert(users []entity.User) error {
	ctx := context.Background()
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	for i := range users {
		u := &users[i]
		row := tx.QueryRow(ctx, `
			INSERT INTO users (name, email, location, is_active, is_blocked, last_login, ip_address)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			RETURNING id, created_at, updated_at
		`, u.Name, u.Email, u.Location, u.IsActive, u.IsBlocked, u.LastLogin, u.IPAddress)
		if err := row.Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return mapWriteErr(err)
		}
	}
	return tx.Commit(ctx)
}

var _ repository.UserRepository = (*UserRepository)(nil)
