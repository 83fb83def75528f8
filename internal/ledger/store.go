package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Store opens reconciliation units. Every balance-affecting operation runs
// inside exactly one Tx so the funds check always observes the balance the
// mutation applies to.
type Store interface {
	Begin(ctx context.Context) (Tx, error)
}

// Tx is a single atomic reconciliation unit. Account rows read through
// AccountForUpdate stay locked until Commit or Rollback.
type Tx interface {
	// AccountForUpdate loads and locks an account row, tombstoned or not.
	// Returns ErrNotFound when the row is absent.
	AccountForUpdate(ctx context.Context, id uuid.UUID) (*Account, error)

	// TransactionByID loads a transaction, tombstoned or not.
	TransactionByID(ctx context.Context, id uuid.UUID) (*Transaction, error)

	// InsertTransaction persists a new transaction and fills its ID and
	// timestamps.
	InsertTransaction(ctx context.Context, t *Transaction) error

	// UpdateTransaction persists the mutable fields of an existing
	// transaction.
	UpdateTransaction(ctx context.Context, t *Transaction) error

	// SetTransactionDeleted writes the tombstone timestamp (nil clears it).
	SetTransactionDeleted(ctx context.Context, id uuid.UUID, deletedAt *time.Time) error

	// AddToBalance applies a signed delta to the account's running balance.
	AddToBalance(ctx context.Context, accountID uuid.UUID, delta int64) error

	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}
