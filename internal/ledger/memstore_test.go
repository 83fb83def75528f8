package ledger

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// memStore is an in-memory Store used by the service tests. A Tx stages
// changes on deep copies and swaps them in on Commit, so a rolled-back
// operation leaves no trace, matching the real store's atomicity.
type memStore struct {
	mu       sync.Mutex
	accounts map[uuid.UUID]*Account
	txns     map[uuid.UUID]*Transaction
}

func newMemStore() *memStore {
	return &memStore{
		accounts: make(map[uuid.UUID]*Account),
		txns:     make(map[uuid.UUID]*Transaction),
	}
}

func (m *memStore) putAccount(a *Account) *Account {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.accounts[a.ID] = cloneAccount(a)
	return a
}

func (m *memStore) account(id uuid.UUID) *Account {
	m.mu.Lock()
	defer m.mu.Unlock()
	return cloneAccount(m.accounts[id])
}

func (m *memStore) txnCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.txns)
}

func (m *memStore) transaction(id uuid.UUID) *Transaction {
	m.mu.Lock()
	defer m.mu.Unlock()
	return cloneTxn(m.txns[id])
}

func (m *memStore) Begin(ctx context.Context) (Tx, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	accounts := make(map[uuid.UUID]*Account, len(m.accounts))
	for id, a := range m.accounts {
		accounts[id] = cloneAccount(a)
	}
	txns := make(map[uuid.UUID]*Transaction, len(m.txns))
	for id, t := range m.txns {
		txns[id] = cloneTxn(t)
	}
	return &memTx{store: m, accounts: accounts, txns: txns}, nil
}

type memTx struct {
	store    *memStore
	accounts map[uuid.UUID]*Account
	txns     map[uuid.UUID]*Transaction
	done     bool
}

func (t *memTx) AccountForUpdate(ctx context.Context, id uuid.UUID) (*Account, error) {
	a, ok := t.accounts[id]
	if !ok {
		return nil, ErrNotFound
	}
	return a, nil
}

func (t *memTx) TransactionByID(ctx context.Context, id uuid.UUID) (*Transaction, error) {
	txn, ok := t.txns[id]
	if !ok {
		return nil, ErrNotFound
	}
	return txn, nil
}

func (t *memTx) InsertTransaction(ctx context.Context, txn *Transaction) error {
	txn.ID = uuid.New()
	txn.CreatedAt = time.Now().UTC()
	txn.UpdatedAt = txn.CreatedAt
	t.txns[txn.ID] = cloneTxn(txn)
	return nil
}

func (t *memTx) UpdateTransaction(ctx context.Context, txn *Transaction) error {
	if _, ok := t.txns[txn.ID]; !ok {
		return ErrNotFound
	}
	txn.UpdatedAt = time.Now().UTC()
	t.txns[txn.ID] = cloneTxn(txn)
	return nil
}

func (t *memTx) SetTransactionDeleted(ctx context.Context, id uuid.UUID, deletedAt *time.Time) error {
	txn, ok := t.txns[id]
	if !ok {
		return ErrNotFound
	}
	txn.DeletedAt = deletedAt
	txn.UpdatedAt = time.Now().UTC()
	return nil
}

func (t *memTx) AddToBalance(ctx context.Context, accountID uuid.UUID, delta int64) error {
	a, ok := t.accounts[accountID]
	if !ok {
		return ErrNotFound
	}
	a.Balance += delta
	a.UpdatedAt = time.Now().UTC()
	return nil
}

func (t *memTx) Commit(ctx context.Context) error {
	if t.done {
		return nil
	}
	t.done = true
	t.store.mu.Lock()
	defer t.store.mu.Unlock()
	t.store.accounts = t.accounts
	t.store.txns = t.txns
	return nil
}

func (t *memTx) Rollback(ctx context.Context) error {
	t.done = true
	return nil
}

func cloneAccount(a *Account) *Account {
	if a == nil {
		return nil
	}
	cp := *a
	if a.DeletedAt != nil {
		ts := *a.DeletedAt
		cp.DeletedAt = &ts
	}
	return &cp
}

func cloneTxn(t *Transaction) *Transaction {
	if t == nil {
		return nil
	}
	cp := *t
	if t.DeletedAt != nil {
		ts := *t.DeletedAt
		cp.DeletedAt = &ts
	}
	if t.ReceiptURL != nil {
		u := *t.ReceiptURL
		cp.ReceiptURL = &u
	}
	return &cp
}
