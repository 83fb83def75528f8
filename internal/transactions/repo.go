package transactions

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jorge-ld8/budget-tracker/internal/ledger"
	"github.com/jorge-ld8/budget-tracker/internal/scope"
)

// Repository is the read side only. All writes go through ledger.Service
// so balances stay reconciled.
type Repository struct {
	Pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{Pool: pool}
}

const txnCols = "id, user_id, account_id, category_id, type, amount, description, occurred_on, receipt_url, created_at, updated_at, deleted_at"

func scanTxn(row pgx.Row) (*ledger.Transaction, error) {
	var t ledger.Transaction
	err := row.Scan(&t.ID, &t.UserID, &t.AccountID, &t.CategoryID, &t.Type, &t.Amount,
		&t.Description, &t.OccurredOn, &t.ReceiptURL, &t.CreatedAt, &t.UpdatedAt, &t.DeletedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ledger.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// Filter narrows a transaction listing. Zero fields do not filter.
type Filter struct {
	AccountID  *uuid.UUID
	CategoryID *uuid.UUID
	Type       *ledger.TxType
	From       *time.Time
	To         *time.Time
	Limit      int
}

const (
	defaultLimit = 50
	maxLimit     = 200
)

func (r *Repository) List(ctx context.Context, sc scope.Scope, f Filter) ([]ledger.Transaction, error) {
	cond, args := sc.Conditions("user_id", "deleted_at", 1)
	preds := []string{cond}
	n := len(args)

	add := func(pred string, val any) {
		n++
		preds = append(preds, fmt.Sprintf(pred, n))
		args = append(args, val)
	}
	if f.AccountID != nil {
		add("account_id = $%d", *f.AccountID)
	}
	if f.CategoryID != nil {
		add("category_id = $%d", *f.CategoryID)
	}
	if f.Type != nil {
		add("type = $%d", *f.Type)
	}
	if f.From != nil {
		add("occurred_on >= $%d", *f.From)
	}
	if f.To != nil {
		add("occurred_on <= $%d", *f.To)
	}

	limit := f.Limit
	if limit <= 0 || limit > maxLimit {
		limit = defaultLimit
	}
	n++
	args = append(args, limit)

	rows, err := r.Pool.Query(ctx,
		"SELECT "+txnCols+" FROM transactions WHERE "+strings.Join(preds, " AND ")+
			fmt.Sprintf(" ORDER BY occurred_on DESC, created_at DESC LIMIT $%d", n),
		args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]ledger.Transaction, 0, limit)
	for rows.Next() {
		t, err := scanTxn(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *t)
	}
	return out, rows.Err()
}

func (r *Repository) GetByID(ctx context.Context, sc scope.Scope, id uuid.UUID) (*ledger.Transaction, error) {
	cond, args := sc.Conditions("user_id", "deleted_at", 2)
	row := r.Pool.QueryRow(ctx,
		"SELECT "+txnCols+" FROM transactions WHERE id = $1 AND "+cond,
		append([]any{id}, args...)...)
	return scanTxn(row)
}
