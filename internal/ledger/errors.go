package ledger

import "errors"

var (
	// ErrNotFound covers both absent records and records owned by someone
	// else; the two are indistinguishable to the caller on purpose.
	ErrNotFound = errors.New("not found")

	// ErrInsufficientFunds means an expense would push a non-credit
	// account below zero.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrAlreadyDeleted is returned when soft-deleting a tombstoned record.
	ErrAlreadyDeleted = errors.New("already deleted")

	// ErrNotDeleted is returned when restoring an active record.
	ErrNotDeleted = errors.New("not deleted")

	// ErrInvalidOperation covers malformed amounts, types and the like.
	ErrInvalidOperation = errors.New("invalid operation")
)
