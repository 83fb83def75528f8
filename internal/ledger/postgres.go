package ledger

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore backs the Service with pgx transactions. Row locks taken
// by AccountForUpdate serialize concurrent writers on the same account.
type PostgresStore struct {
	Pool *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{Pool: pool}
}

func (s *PostgresStore) Begin(ctx context.Context) (Tx, error) {
	tx, err := s.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	return &pgTx{tx: tx}, nil
}

type pgTx struct {
	tx pgx.Tx
}

func (p *pgTx) AccountForUpdate(ctx context.Context, id uuid.UUID) (*Account, error) {
	var a Account
	err := p.tx.QueryRow(ctx, `
		SELECT id, user_id, name, type, balance, currency, is_active, created_at, updated_at, deleted_at
		FROM accounts
		WHERE id = $1
		FOR UPDATE
	`, id).Scan(&a.ID, &a.UserID, &a.Name, &a.Type, &a.Balance, &a.Currency, &a.IsActive, &a.CreatedAt, &a.UpdatedAt, &a.DeletedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (p *pgTx) TransactionByID(ctx context.Context, id uuid.UUID) (*Transaction, error) {
	var t Transaction
	err := p.tx.QueryRow(ctx, `
		SELECT id, user_id, account_id, category_id, type, amount, description, occurred_on, receipt_url, created_at, updated_at, deleted_at
		FROM transactions
		WHERE id = $1
	`, id).Scan(&t.ID, &t.UserID, &t.AccountID, &t.CategoryID, &t.Type, &t.Amount, &t.Description, &t.OccurredOn, &t.ReceiptURL, &t.CreatedAt, &t.UpdatedAt, &t.DeletedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (p *pgTx) InsertTransaction(ctx context.Context, t *Transaction) error {
	return p.tx.QueryRow(ctx, `
		INSERT INTO transactions (user_id, account_id, category_id, type, amount, description, occurred_on, receipt_url)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at
	`, t.UserID, t.AccountID, t.CategoryID, t.Type, t.Amount, t.Description, t.OccurredOn, t.ReceiptURL).
		Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)
}

func (p *pgTx) UpdateTransaction(ctx context.Context, t *Transaction) error {
	ct, err := p.tx.Exec(ctx, `
		UPDATE transactions
		SET account_id = $2, category_id = $3, type = $4, amount = $5,
		    description = $6, occurred_on = $7, receipt_url = $8, updated_at = now()
		WHERE id = $1
	`, t.ID, t.AccountID, t.CategoryID, t.Type, t.Amount, t.Description, t.OccurredOn, t.ReceiptURL)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *pgTx) SetTransactionDeleted(ctx context.Context, id uuid.UUID, deletedAt *time.Time) error {
	ct, err := p.tx.Exec(ctx, `
		UPDATE transactions SET deleted_at = $2, updated_at = now() WHERE id = $1
	`, id, deletedAt)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *pgTx) AddToBalance(ctx context.Context, accountID uuid.UUID, delta int64) error {
	ct, err := p.tx.Exec(ctx, `
		UPDATE accounts SET balance = balance + $2, updated_at = now() WHERE id = $1
	`, accountID, delta)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *pgTx) Commit(ctx context.Context) error {
	return p.tx.Commit(ctx)
}

func (p *pgTx) Rollback(ctx context.Context) error {
	err := p.tx.Rollback(ctx)
	if err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		return err
	}
	return nil
}
