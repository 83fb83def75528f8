package users

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jorge-ld8/budget-tracker/internal/ledger"
)

const uniqueViolation = "23505"

type Repository struct {
	Pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{Pool: pool}
}

const userCols = "id, email, password_hash, full_name, is_admin, created_at, deleted_at"

func scanUser(row pgx.Row) (*User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.FullName, &u.IsAdmin, &u.CreatedAt, &u.DeletedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ledger.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *Repository) Insert(ctx context.Context, u *User) error {
	err := r.Pool.QueryRow(ctx, `
		INSERT INTO users (email, password_hash, full_name)
		VALUES ($1, $2, $3)
		RETURNING id, is_admin, created_at
	`, u.Email, u.PasswordHash, u.FullName).Scan(&u.ID, &u.IsAdmin, &u.CreatedAt)

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return fmt.Errorf("%w: email already registered", ledger.ErrInvalidOperation)
	}
	return err
}

func (r *Repository) GetByEmail(ctx context.Context, email string) (*User, error) {
	row := r.Pool.QueryRow(ctx,
		"SELECT "+userCols+" FROM users WHERE email = $1 AND deleted_at IS NULL", email)
	return scanUser(row)
}

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	row := r.Pool.QueryRow(ctx,
		"SELECT "+userCols+" FROM users WHERE id = $1 AND deleted_at IS NULL", id)
	return scanUser(row)
}

func (r *Repository) ListActive(ctx context.Context) ([]User, error) {
	rows, err := r.Pool.Query(ctx,
		"SELECT "+userCols+" FROM users WHERE deleted_at IS NULL ORDER BY created_at DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *u)
	}
	return out, rows.Err()
}
