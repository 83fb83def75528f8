package ledger

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Service is the only component that mutates account balances. Each
// operation computes the signed effect of a transaction change and applies
// it to the owning account(s) in one atomic unit.
type Service struct {
	store Store
	log   zerolog.Logger
}

func NewService(store Store, log zerolog.Logger) *Service {
	return &Service{store: store, log: log.With().Str("component", "ledger").Logger()}
}

type CreateParams struct {
	AccountID   uuid.UUID
	CategoryID  uuid.UUID
	Type        TxType
	Amount      int64
	Description string
	OccurredOn  time.Time
	ReceiptURL  *string
}

// Create records a new transaction and applies its effect to the account.
// The funds check runs before anything is written.
func (s *Service) Create(ctx context.Context, caller Caller, p CreateParams) (*Transaction, error) {
	if p.Amount <= 0 {
		return nil, fmt.Errorf("%w: amount must be greater than zero", ErrInvalidOperation)
	}
	if !p.Type.Valid() {
		return nil, fmt.Errorf("%w: type must be income or expense", ErrInvalidOperation)
	}
	if strings.TrimSpace(p.Description) == "" {
		return nil, fmt.Errorf("%w: description required", ErrInvalidOperation)
	}
	if p.OccurredOn.IsZero() {
		p.OccurredOn = time.Now().UTC()
	}

	tx, err := s.store.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	acct, err := s.usableAccount(ctx, tx, caller, p.AccountID)
	if err != nil {
		return nil, err
	}

	if p.Type == Expense {
		if err := checkFunds(acct, p.Amount); err != nil {
			return nil, err
		}
	}

	txn := &Transaction{
		UserID:      acct.UserID,
		AccountID:   acct.ID,
		CategoryID:  p.CategoryID,
		Type:        p.Type,
		Amount:      p.Amount,
		Description: strings.TrimSpace(p.Description),
		OccurredOn:  p.OccurredOn,
		ReceiptURL:  p.ReceiptURL,
	}
	if err := tx.InsertTransaction(ctx, txn); err != nil {
		return nil, err
	}
	if err := tx.AddToBalance(ctx, acct.ID, txn.Effect()); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	s.log.Info().
		Stringer("transaction_id", txn.ID).
		Stringer("account_id", acct.ID).
		Str("type", string(txn.Type)).
		Int64("amount", txn.Amount).
		Msg("transaction created")

	return txn, nil
}

type UpdateParams struct {
	Amount      *int64
	Type        *TxType
	AccountID   *uuid.UUID
	CategoryID  *uuid.UUID
	Description *string
	OccurredOn  *time.Time
	ReceiptURL  *string
}

// Update mutates a transaction. When amount, type or account change, the
// old effect is reverted and the new one applied, so the balance moves by
// the net delta only.
func (s *Service) Update(ctx context.Context, caller Caller, id uuid.UUID, p UpdateParams) (*Transaction, error) {
	if p.Amount != nil && *p.Amount <= 0 {
		return nil, fmt.Errorf("%w: amount must be greater than zero", ErrInvalidOperation)
	}
	if p.Type != nil && !p.Type.Valid() {
		return nil, fmt.Errorf("%w: type must be income or expense", ErrInvalidOperation)
	}
	if p.Description != nil && strings.TrimSpace(*p.Description) == "" {
		return nil, fmt.Errorf("%w: description required", ErrInvalidOperation)
	}

	tx, err := s.store.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	txn, err := s.ownedTransaction(ctx, tx, caller, id)
	if err != nil {
		return nil, err
	}
	if txn.IsDeleted() {
		return nil, ErrNotFound
	}

	newType := txn.Type
	if p.Type != nil {
		newType = *p.Type
	}
	newAmount := txn.Amount
	if p.Amount != nil {
		newAmount = *p.Amount
	}
	newAccountID := txn.AccountID
	if p.AccountID != nil {
		newAccountID = *p.AccountID
	}

	rebalance := newType != txn.Type || newAmount != txn.Amount || newAccountID != txn.AccountID
	if rebalance {
		oldAcct, newAcct, err := s.lockPair(ctx, tx, caller, txn.AccountID, newAccountID)
		if err != nil {
			return nil, err
		}

		revert := -txn.Effect()
		apply := newType.Sign() * newAmount

		if newType == Expense {
			available := newAcct.Balance
			if newAcct.ID == oldAcct.ID {
				available += revert
			}
			if err := checkFundsAgainst(newAcct, available, newAmount); err != nil {
				return nil, err
			}
		}

		if oldAcct.ID == newAcct.ID {
			if err := tx.AddToBalance(ctx, oldAcct.ID, revert+apply); err != nil {
				return nil, err
			}
		} else {
			if err := tx.AddToBalance(ctx, oldAcct.ID, revert); err != nil {
				return nil, err
			}
			if err := tx.AddToBalance(ctx, newAcct.ID, apply); err != nil {
				return nil, err
			}
		}
	}

	txn.Type = newType
	txn.Amount = newAmount
	txn.AccountID = newAccountID
	if p.CategoryID != nil {
		txn.CategoryID = *p.CategoryID
	}
	if p.Description != nil {
		txn.Description = strings.TrimSpace(*p.Description)
	}
	if p.OccurredOn != nil {
		txn.OccurredOn = *p.OccurredOn
	}
	if p.ReceiptURL != nil {
		txn.ReceiptURL = p.ReceiptURL
	}
	if err := tx.UpdateTransaction(ctx, txn); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	s.log.Info().
		Stringer("transaction_id", txn.ID).
		Bool("rebalanced", rebalance).
		Msg("transaction updated")

	return txn, nil
}

// SoftDelete tombstones a transaction and reverts its effect. Reverting
// never needs a funds check: removing an expense only raises the balance,
// and removing income may legitimately take the account negative.
func (s *Service) SoftDelete(ctx context.Context, caller Caller, id uuid.UUID) error {
	tx, err := s.store.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	txn, err := s.ownedTransaction(ctx, tx, caller, id)
	if err != nil {
		return err
	}
	if txn.IsDeleted() {
		return ErrAlreadyDeleted
	}

	if _, err := tx.AccountForUpdate(ctx, txn.AccountID); err != nil {
		return err
	}
	if err := tx.AddToBalance(ctx, txn.AccountID, -txn.Effect()); err != nil {
		return err
	}
	now := time.Now().UTC()
	if err := tx.SetTransactionDeleted(ctx, txn.ID, &now); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}

	s.log.Info().Stringer("transaction_id", txn.ID).Msg("transaction soft-deleted")
	return nil
}

// Restore clears a tombstone and re-applies the effect. Re-applying an
// expense runs the funds check again: restoring must not produce a state
// the forward path would have rejected.
func (s *Service) Restore(ctx context.Context, caller Caller, id uuid.UUID) (*Transaction, error) {
	tx, err := s.store.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	txn, err := s.ownedTransaction(ctx, tx, caller, id)
	if err != nil {
		return nil, err
	}
	if !txn.IsDeleted() {
		return nil, ErrNotDeleted
	}

	acct, err := tx.AccountForUpdate(ctx, txn.AccountID)
	if err != nil {
		return nil, err
	}
	if acct.IsDeleted() {
		return nil, ErrNotFound
	}

	if txn.Type == Expense {
		if err := checkFunds(acct, txn.Amount); err != nil {
			return nil, err
		}
	}

	if err := tx.AddToBalance(ctx, acct.ID, txn.Effect()); err != nil {
		return nil, err
	}
	if err := tx.SetTransactionDeleted(ctx, txn.ID, nil); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	txn.DeletedAt = nil
	s.log.Info().Stringer("transaction_id", txn.ID).Msg("transaction restored")
	return txn, nil
}

// AdjustBalance applies a manual delta outside the transaction path. It is
// the explicit escape hatch from the ledger invariant and carries no floor
// check; callers are expected to audit it separately.
func (s *Service) AdjustBalance(ctx context.Context, caller Caller, accountID uuid.UUID, delta int64) (*Account, error) {
	if delta == 0 {
		return nil, fmt.Errorf("%w: amount must be greater than zero", ErrInvalidOperation)
	}

	tx, err := s.store.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	acct, err := s.usableAccount(ctx, tx, caller, accountID)
	if err != nil {
		return nil, err
	}
	if err := tx.AddToBalance(ctx, acct.ID, delta); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	acct.Balance += delta
	s.log.Info().
		Stringer("account_id", acct.ID).
		Int64("delta", delta).
		Int64("balance", acct.Balance).
		Msg("manual balance adjustment")
	return acct, nil
}

// usableAccount locks an account and verifies the caller may write to it.
func (s *Service) usableAccount(ctx context.Context, tx Tx, caller Caller, id uuid.UUID) (*Account, error) {
	acct, err := tx.AccountForUpdate(ctx, id)
	if err != nil {
		return nil, err
	}
	if !caller.owns(acct.UserID) || acct.IsDeleted() {
		return nil, ErrNotFound
	}
	return acct, nil
}

func (s *Service) ownedTransaction(ctx context.Context, tx Tx, caller Caller, id uuid.UUID) (*Transaction, error) {
	txn, err := tx.TransactionByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !caller.owns(txn.UserID) {
		return nil, ErrNotFound
	}
	return txn, nil
}

// lockPair locks the old and new accounts of an update in ascending id
// order so two movers can never deadlock, and verifies the new account is
// writable.
func (s *Service) lockPair(ctx context.Context, tx Tx, caller Caller, oldID, newID uuid.UUID) (*Account, *Account, error) {
	if oldID == newID {
		acct, err := tx.AccountForUpdate(ctx, oldID)
		if err != nil {
			return nil, nil, err
		}
		if !caller.owns(acct.UserID) {
			return nil, nil, ErrNotFound
		}
		return acct, acct, nil
	}

	first, second := oldID, newID
	if strings.Compare(second.String(), first.String()) < 0 {
		first, second = second, first
	}

	a, err := tx.AccountForUpdate(ctx, first)
	if err != nil {
		return nil, nil, err
	}
	b, err := tx.AccountForUpdate(ctx, second)
	if err != nil {
		return nil, nil, err
	}

	oldAcct, newAcct := a, b
	if a.ID != oldID {
		oldAcct, newAcct = b, a
	}
	if !caller.owns(oldAcct.UserID) {
		return nil, nil, ErrNotFound
	}
	if !caller.owns(newAcct.UserID) || newAcct.IsDeleted() {
		return nil, nil, ErrNotFound
	}
	return oldAcct, newAcct, nil
}

func checkFunds(acct *Account, amount int64) error {
	return checkFundsAgainst(acct, acct.Balance, amount)
}

func checkFundsAgainst(acct *Account, available, amount int64) error {
	floor, bounded := acct.floor()
	if !bounded {
		return nil
	}
	if available-amount < floor {
		return fmt.Errorf("%w: account %s", ErrInsufficientFunds, acct.Name)
	}
	return nil
}
