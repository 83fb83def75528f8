package ledger

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	store   *memStore
	svc     *Service
	owner   Caller
	caller  Caller
	account *Account
}

func newFixture(t *testing.T, accountType AccountType, balance int64) *fixture {
	t.Helper()
	store := newMemStore()
	userID := uuid.New()
	acct := store.putAccount(&Account{
		UserID:   userID,
		Name:     "checking",
		Type:     accountType,
		Balance:  balance,
		Currency: "USD",
		IsActive: true,
	})
	caller := Caller{UserID: userID}
	return &fixture{
		store:   store,
		svc:     NewService(store, zerolog.New(io.Discard)),
		owner:   caller,
		caller:  caller,
		account: acct,
	}
}

func (f *fixture) create(t *testing.T, typ TxType, amount int64) *Transaction {
	t.Helper()
	txn, err := f.svc.Create(context.Background(), f.caller, CreateParams{
		AccountID:   f.account.ID,
		CategoryID:  uuid.New(),
		Type:        typ,
		Amount:      amount,
		Description: "test entry",
		OccurredOn:  time.Date(2023, 1, 15, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	return txn
}

func (f *fixture) balance() int64 {
	return f.store.account(f.account.ID).Balance
}

func TestCreateAppliesSignedEffect(t *testing.T) {
	f := newFixture(t, AccountBank, 10000)

	income := f.create(t, Income, 5000)
	assert.Equal(t, int64(15000), f.balance())
	assert.Equal(t, int64(5000), income.Effect())

	expense := f.create(t, Expense, 2500)
	assert.Equal(t, int64(12500), f.balance())
	assert.Equal(t, int64(-2500), expense.Effect())
}

func TestCreateInsufficientFunds(t *testing.T) {
	f := newFixture(t, AccountBank, 1000)

	_, err := f.svc.Create(context.Background(), f.caller, CreateParams{
		AccountID:   f.account.ID,
		CategoryID:  uuid.New(),
		Type:        Expense,
		Amount:      1001,
		Description: "too big",
	})
	require.ErrorIs(t, err, ErrInsufficientFunds)

	// Neither record was written.
	assert.Equal(t, int64(1000), f.balance())
	assert.Zero(t, f.store.txnCount())
}

func TestCreditAccountMayGoNegative(t *testing.T) {
	f := newFixture(t, AccountCredit, 100)

	f.create(t, Expense, 5000)
	assert.Equal(t, int64(-4900), f.balance())
}

func TestCreateValidation(t *testing.T) {
	f := newFixture(t, AccountBank, 1000)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, f.caller, CreateParams{AccountID: f.account.ID, Type: Income, Amount: 0, Description: "x"})
	assert.ErrorIs(t, err, ErrInvalidOperation)

	_, err = f.svc.Create(ctx, f.caller, CreateParams{AccountID: f.account.ID, Type: "transfer", Amount: 10, Description: "x"})
	assert.ErrorIs(t, err, ErrInvalidOperation)

	_, err = f.svc.Create(ctx, f.caller, CreateParams{AccountID: f.account.ID, Type: Income, Amount: 10, Description: "  "})
	assert.ErrorIs(t, err, ErrInvalidOperation)
}

func TestCreateAgainstForeignAccount(t *testing.T) {
	f := newFixture(t, AccountBank, 1000)
	stranger := Caller{UserID: uuid.New()}

	_, err := f.svc.Create(context.Background(), stranger, CreateParams{
		AccountID:   f.account.ID,
		Type:        Income,
		Amount:      100,
		Description: "not mine",
	})
	assert.ErrorIs(t, err, ErrNotFound)

	admin := Caller{UserID: uuid.New(), Admin: true}
	_, err = f.svc.Create(context.Background(), admin, CreateParams{
		AccountID:   f.account.ID,
		Type:        Income,
		Amount:      100,
		Description: "admin entry",
	})
	assert.NoError(t, err)
}

func TestUpdateAppliesNetDeltaOnly(t *testing.T) {
	f := newFixture(t, AccountBank, 10000)
	txn := f.create(t, Expense, 5000)
	require.Equal(t, int64(5000), f.balance())

	amount := int64(8000)
	updated, err := f.svc.Update(context.Background(), f.caller, txn.ID, UpdateParams{Amount: &amount})
	require.NoError(t, err)

	// 50 -> 80 expense moves the balance by exactly -30.
	assert.Equal(t, int64(2000), f.balance())
	assert.Equal(t, int64(8000), updated.Amount)
}

func TestUpdateTypeFlip(t *testing.T) {
	f := newFixture(t, AccountBank, 10000)
	txn := f.create(t, Expense, 3000)
	require.Equal(t, int64(7000), f.balance())

	typ := Income
	_, err := f.svc.Update(context.Background(), f.caller, txn.ID, UpdateParams{Type: &typ})
	require.NoError(t, err)

	// Revert -3000, apply +3000: net +6000.
	assert.Equal(t, int64(13000), f.balance())
}

func TestUpdateInsufficientFundsLeavesStateUntouched(t *testing.T) {
	f := newFixture(t, AccountBank, 10000)
	txn := f.create(t, Expense, 5000)
	require.Equal(t, int64(5000), f.balance())

	// Post-revert balance is 10000; 10001 is one cent too many.
	amount := int64(10001)
	_, err := f.svc.Update(context.Background(), f.caller, txn.ID, UpdateParams{Amount: &amount})
	require.ErrorIs(t, err, ErrInsufficientFunds)

	assert.Equal(t, int64(5000), f.balance())
	assert.Equal(t, int64(5000), f.store.transaction(txn.ID).Amount)
}

func TestUpdateMovesBetweenAccounts(t *testing.T) {
	f := newFixture(t, AccountBank, 10000)
	other := f.store.putAccount(&Account{
		UserID:   f.owner.UserID,
		Name:     "savings",
		Type:     AccountBank,
		Balance:  20000,
		Currency: "USD",
		IsActive: true,
	})
	txn := f.create(t, Expense, 4000)
	require.Equal(t, int64(6000), f.balance())

	_, err := f.svc.Update(context.Background(), f.caller, txn.ID, UpdateParams{AccountID: &other.ID})
	require.NoError(t, err)

	assert.Equal(t, int64(10000), f.balance())
	assert.Equal(t, int64(16000), f.store.account(other.ID).Balance)
	assert.Equal(t, other.ID, f.store.transaction(txn.ID).AccountID)
}

func TestUpdateMoveRejectedByTargetFunds(t *testing.T) {
	f := newFixture(t, AccountBank, 10000)
	poor := f.store.putAccount(&Account{
		UserID:   f.owner.UserID,
		Name:     "empty",
		Type:     AccountBank,
		Balance:  100,
		Currency: "USD",
		IsActive: true,
	})
	txn := f.create(t, Expense, 4000)

	_, err := f.svc.Update(context.Background(), f.caller, txn.ID, UpdateParams{AccountID: &poor.ID})
	require.ErrorIs(t, err, ErrInsufficientFunds)

	assert.Equal(t, int64(6000), f.balance())
	assert.Equal(t, int64(100), f.store.account(poor.ID).Balance)
	assert.Equal(t, f.account.ID, f.store.transaction(txn.ID).AccountID)
}

func TestDeleteRestoreSymmetry(t *testing.T) {
	f := newFixture(t, AccountBank, 10000)
	txn := f.create(t, Expense, 3000)
	require.Equal(t, int64(7000), f.balance())

	require.NoError(t, f.svc.SoftDelete(context.Background(), f.caller, txn.ID))
	assert.Equal(t, int64(10000), f.balance())
	assert.True(t, f.store.transaction(txn.ID).IsDeleted())

	restored, err := f.svc.Restore(context.Background(), f.caller, txn.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(7000), f.balance())
	assert.False(t, restored.IsDeleted())
}

func TestRestoreFailsWhenFundsWereSpent(t *testing.T) {
	f := newFixture(t, AccountBank, 10000)
	txn := f.create(t, Expense, 6000)
	require.NoError(t, f.svc.SoftDelete(context.Background(), f.caller, txn.ID))
	require.Equal(t, int64(10000), f.balance())

	// Other activity consumed the freed funds.
	f.create(t, Expense, 9000)
	require.Equal(t, int64(1000), f.balance())

	_, err := f.svc.Restore(context.Background(), f.caller, txn.ID)
	require.ErrorIs(t, err, ErrInsufficientFunds)
	assert.Equal(t, int64(1000), f.balance())
	assert.True(t, f.store.transaction(txn.ID).IsDeleted())
}

func TestLifecycleMisuseHasNoSideEffects(t *testing.T) {
	f := newFixture(t, AccountBank, 10000)
	txn := f.create(t, Income, 2000)
	require.Equal(t, int64(12000), f.balance())

	_, err := f.svc.Restore(context.Background(), f.caller, txn.ID)
	assert.ErrorIs(t, err, ErrNotDeleted)
	assert.Equal(t, int64(12000), f.balance())

	require.NoError(t, f.svc.SoftDelete(context.Background(), f.caller, txn.ID))
	require.Equal(t, int64(10000), f.balance())

	err = f.svc.SoftDelete(context.Background(), f.caller, txn.ID)
	assert.ErrorIs(t, err, ErrAlreadyDeleted)
	assert.Equal(t, int64(10000), f.balance())
}

func TestAdjustBalance(t *testing.T) {
	f := newFixture(t, AccountBank, 5000)

	acct, err := f.svc.AdjustBalance(context.Background(), f.caller, f.account.ID, 2500)
	require.NoError(t, err)
	assert.Equal(t, int64(7500), acct.Balance)

	// Manual subtraction has no floor check.
	acct, err = f.svc.AdjustBalance(context.Background(), f.caller, f.account.ID, -10000)
	require.NoError(t, err)
	assert.Equal(t, int64(-2500), acct.Balance)

	_, err = f.svc.AdjustBalance(context.Background(), f.caller, f.account.ID, 0)
	assert.ErrorIs(t, err, ErrInvalidOperation)
}

// TestRunningBalanceInvariant drives an arbitrary sequence of operations
// and checks that the stored balance equals the initial balance plus the
// signed effects of all non-tombstoned transactions plus manual deltas.
func TestRunningBalanceInvariant(t *testing.T) {
	f := newFixture(t, AccountBank, 100000)
	ctx := context.Background()

	t1 := f.create(t, Expense, 12000)
	t2 := f.create(t, Income, 30000)
	t3 := f.create(t, Expense, 7000)

	var manual int64
	if _, err := f.svc.AdjustBalance(ctx, f.caller, f.account.ID, 5000); err == nil {
		manual += 5000
	}

	require.NoError(t, f.svc.SoftDelete(ctx, f.caller, t1.ID))

	amount := int64(9000)
	_, err := f.svc.Update(ctx, f.caller, t3.ID, UpdateParams{Amount: &amount})
	require.NoError(t, err)

	_, err = f.svc.Restore(ctx, f.caller, t1.ID)
	require.NoError(t, err)

	typ := Income
	_, err = f.svc.Update(ctx, f.caller, t2.ID, UpdateParams{Type: &typ})
	require.NoError(t, err)

	var expected int64 = 100000 + manual
	for _, id := range []uuid.UUID{t1.ID, t2.ID, t3.ID} {
		txn := f.store.transaction(id)
		if !txn.IsDeleted() {
			expected += txn.Effect()
		}
	}
	assert.Equal(t, expected, f.balance())
}
