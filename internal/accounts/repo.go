package accounts

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

const accountCols = "id, user_id, name, type, balance, currency, is_active, created_at, updated_at, deleted_at"

func scanAccount(row pgx.Row) (*ledger.Account, error) {
	var a ledger.Account
	err := row.Scan(&a.ID, &a.UserID, &a.Name, &a.Type, &a.Balance, &a.Currency, &a.IsActive, &a.CreatedAt, &a.UpdatedAt, &a.DeletedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ledger.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *Repository) Insert(ctx context.Context, a *ledger.Account) error {
	err := r.Pool.QueryRow(ctx, `
		INSERT INTO accounts (user_id, name, type, balance, currency, is_active)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`, a.UserID, a.Name, a.Type, a.Balance, a.Currency, a.IsActive).
		Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return fmt.Errorf("%w: account name already in use", ledger.ErrInvalidOperation)
	}
	return err
}

func (r *Repository) GetByID(ctx context.Context, sc scope.Scope, id uuid.UUID) (*ledger.Account, error) {
	cond, args := sc.Conditions("user_id", "deleted_at", 2)
	row := r.Pool.QueryRow(ctx,
		"SELECT "+accountCols+" FROM accounts WHERE id = $1 AND "+cond,
		append([]any{id}, args...)...)
	return scanAccount(row)
}

func (r *Repository) List(ctx context.Context, sc scope.Scope) ([]ledger.Account, error) {
	cond, args := sc.Conditions("user_id", "deleted_at", 1)
	rows, err := r.Pool.Query(ctx,
		"SELECT "+accountCols+" FROM accounts WHERE "+cond+" ORDER BY created_at DESC",
		args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]ledger.Account, 0)
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}

type UpdateFields struct {
	Name     *string
	Type     *ledger.AccountType
	IsActive *bool
}

func (r *Repository) Update(ctx context.Context, sc scope.Scope, id uuid.UUID, f UpdateFields) (*ledger.Account, error) {
	cond, args := sc.Conditions("user_id", "deleted_at", 5)
	row := r.Pool.QueryRow(ctx, `
		UPDATE accounts
		SET name = COALESCE($2, name),
		    type = COALESCE($3, type),
		    is_active = COALESCE($4, is_active),
		    updated_at = now()
		WHERE id = $1 AND `+cond+`
		RETURNING `+accountCols,
		append([]any{id, f.Name, f.Type, f.IsActive}, args...)...)

	a, err := scanAccount(row)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return nil, fmt.Errorf("%w: account name already in use", ledger.ErrInvalidOperation)
	}
	return a, err
}

// SoftDelete tombstones an account. Deleting an already-deleted account
// fails with ErrAlreadyDeleted, never silently succeeds.
func (r *Repository) SoftDelete(ctx context.Context, sc scope.Scope, id uuid.UUID) error {
	return ledger.SoftDeleteRow(ctx, r.Pool, "accounts", sc, id)
}

// Restore clears the tombstone; restoring an active account fails with
// ErrNotDeleted.
func (r *Repository) Restore(ctx context.Context, sc scope.Scope, id uuid.UUID) error {
	return ledger.RestoreRow(ctx, r.Pool, "accounts", sc, id)
}
