package ledger

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jorge-ld8/budget-tracker/internal/scope"
)

// SoftDeleteRow and RestoreRow are the single implementation of the
// Active/Deleted state machine for entities without balance coupling
// (accounts, categories, budgets). Transactions never go through here;
// their lifecycle belongs to the Service because it moves money.

// SoftDeleteRow tombstones a row. A tombstoned row fails with
// ErrAlreadyDeleted rather than silently succeeding.
func SoftDeleteRow(ctx context.Context, pool *pgxpool.Pool, table string, sc scope.Scope, id uuid.UUID) error {
	cond, args := sc.Deleted(scope.ActiveOnly).Conditions("user_id", "deleted_at", 2)
	ct, err := pool.Exec(ctx,
		"UPDATE "+table+" SET deleted_at = now() WHERE id = $1 AND "+cond,
		append([]any{id}, args...)...)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return classifyLifecycleMiss(ctx, pool, table, sc, id, ErrAlreadyDeleted)
	}
	return nil
}

// RestoreRow clears a tombstone. An active row fails with ErrNotDeleted.
func RestoreRow(ctx context.Context, pool *pgxpool.Pool, table string, sc scope.Scope, id uuid.UUID) error {
	cond, args := sc.Deleted(scope.DeletedOnly).Conditions("user_id", "deleted_at", 2)
	ct, err := pool.Exec(ctx,
		"UPDATE "+table+" SET deleted_at = NULL WHERE id = $1 AND "+cond,
		append([]any{id}, args...)...)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return classifyLifecycleMiss(ctx, pool, table, sc, id, ErrNotDeleted)
	}
	return nil
}

// classifyLifecycleMiss tells a wrong-state failure apart from a missing
// or foreign record after a zero-row lifecycle update.
func classifyLifecycleMiss(ctx context.Context, pool *pgxpool.Pool, table string, sc scope.Scope, id uuid.UUID, wrongState error) error {
	cond, args := sc.Deleted(scope.WithDeleted).Conditions("user_id", "deleted_at", 2)
	var deletedAt *time.Time
	err := pool.QueryRow(ctx,
		"SELECT deleted_at FROM "+table+" WHERE id = $1 AND "+cond,
		append([]any{id}, args...)...).Scan(&deletedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	return wrongState
}
