package categories

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jorge-ld8/budget-tracker/internal/ledger"
	"github.com/jorge-ld8/budget-tracker/internal/scope"
)

const uniqueViolation = "23505"

type Repository struct {
	Pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{Pool: pool}
}

const categoryCols = "id, user_id, name, kind, created_at, deleted_at"

func scanCategory(row pgx.Row) (*Category, error) {
	var cat Category
	err := row.Scan(&cat.ID, &cat.UserID, &cat.Name, &cat.Kind, &cat.CreatedAt, &cat.DeletedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ledger.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &cat, nil
}

func (r *Repository) Insert(ctx context.Context, cat *Category) error {
	err := r.Pool.QueryRow(ctx, `
		INSERT INTO categories (user_id, name, kind)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`, cat.UserID, cat.Name, cat.Kind).Scan(&cat.ID, &cat.CreatedAt)

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return fmt.Errorf("%w: category already exists", ledger.ErrInvalidOperation)
	}
	return err
}

func (r *Repository) GetByID(ctx context.Context, sc scope.Scope, id uuid.UUID) (*Category, error) {
	cond, args := sc.Conditions("user_id", "deleted_at", 2)
	row := r.Pool.QueryRow(ctx,
		"SELECT "+categoryCols+" FROM categories WHERE id = $1 AND "+cond,
		append([]any{id}, args...)...)
	return scanCategory(row)
}

func (r *Repository) List(ctx context.Context, sc scope.Scope) ([]Category, error) {
	cond, args := sc.Conditions("user_id", "deleted_at", 1)
	rows, err := r.Pool.Query(ctx,
		"SELECT "+categoryCols+" FROM categories WHERE "+cond+" ORDER BY name ASC",
		args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Category, 0)
	for rows.Next() {
		cat, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *cat)
	}
	return out, rows.Err()
}

func (r *Repository) Rename(ctx context.Context, sc scope.Scope, id uuid.UUID, name string) (*Category, error) {
	cond, args := sc.Conditions("user_id", "deleted_at", 3)
	row := r.Pool.QueryRow(ctx,
		"UPDATE categories SET name = $2 WHERE id = $1 AND "+cond+" RETURNING "+categoryCols,
		append([]any{id, name}, args...)...)

	cat, err := scanCategory(row)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return nil, fmt.Errorf("%w: category already exists", ledger.ErrInvalidOperation)
	}
	return cat, err
}

func (r *Repository) SoftDelete(ctx context.Context, sc scope.Scope, id uuid.UUID) error {
	return ledger.SoftDeleteRow(ctx, r.Pool, "categories", sc, id)
}

func (r *Repository) Restore(ctx context.Context, sc scope.Scope, id uuid.UUID) error {
	return ledger.RestoreRow(ctx, r.Pool, "categories", sc, id)
}
