package transactions

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jorge-ld8/budget-tracker/internal/auth"
	"github.com/jorge-ld8/budget-tracker/internal/ledger"
	"github.com/jorge-ld8/budget-tracker/internal/scope"
)

var testSecret = []byte("test-secret")

type fakeReader struct {
	txns map[uuid.UUID]*ledger.Transaction
}

func (f *fakeReader) List(ctx context.Context, sc scope.Scope, _ Filter) ([]ledger.Transaction, error) {
	var out []ledger.Transaction
	for _, t := range f.txns {
		if visible(sc, t) {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (f *fakeReader) GetByID(ctx context.Context, sc scope.Scope, id uuid.UUID) (*ledger.Transaction, error) {
	t, ok := f.txns[id]
	if !ok || !visible(sc, t) {
		return nil, ledger.ErrNotFound
	}
	return t, nil
}

func visible(sc scope.Scope, t *ledger.Transaction) bool {
	if !sc.Allows(t.UserID) {
		return false
	}
	switch sc.Deletion {
	case scope.ActiveOnly:
		return !t.IsDeleted()
	case scope.DeletedOnly:
		return t.IsDeleted()
	default:
		return true
	}
}

// fakeStore is a minimal ledger.Store for exercising handler responses.
type fakeStore struct {
	accounts map[uuid.UUID]*ledger.Account
	txns     map[uuid.UUID]*ledger.Transaction
}

func (s *fakeStore) Begin(ctx context.Context) (ledger.Tx, error) {
	return &fakeTx{s: s}, nil
}

type fakeTx struct {
	s *fakeStore
}

func (t *fakeTx) AccountForUpdate(ctx context.Context, id uuid.UUID) (*ledger.Account, error) {
	a, ok := t.s.accounts[id]
	if !ok {
		return nil, ledger.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (t *fakeTx) TransactionByID(ctx context.Context, id uuid.UUID) (*ledger.Transaction, error) {
	txn, ok := t.s.txns[id]
	if !ok {
		return nil, ledger.ErrNotFound
	}
	cp := *txn
	return &cp, nil
}

func (t *fakeTx) InsertTransaction(ctx context.Context, txn *ledger.Transaction) error {
	txn.ID = uuid.New()
	cp := *txn
	t.s.txns[txn.ID] = &cp
	return nil
}

func (t *fakeTx) UpdateTransaction(ctx context.Context, txn *ledger.Transaction) error {
	cp := *txn
	t.s.txns[txn.ID] = &cp
	return nil
}

func (t *fakeTx) SetTransactionDeleted(ctx context.Context, id uuid.UUID, deletedAt *time.Time) error {
	txn, ok := t.s.txns[id]
	if !ok {
		return ledger.ErrNotFound
	}
	txn.DeletedAt = deletedAt
	return nil
}

func (t *fakeTx) AddToBalance(ctx context.Context, accountID uuid.UUID, delta int64) error {
	a, ok := t.s.accounts[accountID]
	if !ok {
		return ledger.ErrNotFound
	}
	a.Balance += delta
	return nil
}

func (t *fakeTx) Commit(ctx context.Context) error   { return nil }
func (t *fakeTx) Rollback(ctx context.Context) error { return nil }

func testApp(h *Handler) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			var fiberErr *fiber.Error
			if errors.As(err, &fiberErr) {
				return c.Status(fiberErr.Code).JSON(fiber.Map{"error": fiberErr.Message})
			}
			if errors.Is(err, ledger.ErrNotFound) {
				return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not found"})
			}
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		},
	})
	api := app.Group("/api", auth.Middleware(testSecret))
	api.Get("/transactions/:id", h.Get)
	api.Post("/transactions/:id/restore", h.Restore)
	return app
}

func bearer(t *testing.T, uid uuid.UUID) string {
	t.Helper()
	token, err := auth.GenerateToken(testSecret, uid, false, time.Hour)
	require.NoError(t, err)
	return "Bearer " + token
}

func TestGetHidesDeletedByDefault(t *testing.T) {
	owner := uuid.New()
	now := time.Now().UTC()
	txn := &ledger.Transaction{
		ID:        uuid.New(),
		UserID:    owner,
		Type:      ledger.Expense,
		Amount:    5000,
		DeletedAt: &now,
	}
	h := &Handler{Repo: &fakeReader{txns: map[uuid.UUID]*ledger.Transaction{txn.ID: txn}}}
	app := testApp(h)

	req := httptest.NewRequest("GET", "/api/transactions/"+txn.ID.String(), nil)
	req.Header.Set("Authorization", bearer(t, owner))
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	req = httptest.NewRequest("GET", "/api/transactions/"+txn.ID.String()+"?include_deleted=true", nil)
	req.Header.Set("Authorization", bearer(t, owner))
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var got ledger.Transaction
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	assert.Equal(t, txn.ID, got.ID)
	require.NotNil(t, got.DeletedAt)
}

func TestRestoreWrapsTransaction(t *testing.T) {
	owner := uuid.New()
	now := time.Now().UTC()
	acct := &ledger.Account{ID: uuid.New(), UserID: owner, Type: ledger.AccountBank, Balance: 10000}
	txn := &ledger.Transaction{
		ID:        uuid.New(),
		UserID:    owner,
		AccountID: acct.ID,
		Type:      ledger.Income,
		Amount:    2500,
		DeletedAt: &now,
	}
	store := &fakeStore{
		accounts: map[uuid.UUID]*ledger.Account{acct.ID: acct},
		txns:     map[uuid.UUID]*ledger.Transaction{txn.ID: txn},
	}
	h := &Handler{
		Repo:   &fakeReader{txns: store.txns},
		Ledger: ledger.NewService(store, zerolog.New(io.Discard)),
	}
	app := testApp(h)

	req := httptest.NewRequest("POST", "/api/transactions/"+txn.ID.String()+"/restore", nil)
	req.Header.Set("Authorization", bearer(t, owner))
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body struct {
		Message     string              `json:"message"`
		Transaction *ledger.Transaction `json:"transaction"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "transaction restored", body.Message)
	require.NotNil(t, body.Transaction)
	assert.Equal(t, txn.ID, body.Transaction.ID)
	assert.Nil(t, body.Transaction.DeletedAt)
}
