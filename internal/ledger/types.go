package ledger

import (
	"time"

	"github.com/google/uuid"

	"github.com/jorge-ld8/budget-tracker/internal/scope"
)

// TxType is the direction of a transaction. The stored amount is always
// positive; the sign lives here.
type TxType string

const (
	Income  TxType = "income"
	Expense TxType = "expense"
)

// Sign returns +1 for income and -1 for expense.
func (t TxType) Sign() int64 {
	if t == Expense {
		return -1
	}
	return 1
}

func (t TxType) Valid() bool {
	return t == Income || t == Expense
}

type AccountType string

const (
	AccountCash       AccountType = "cash"
	AccountBank       AccountType = "bank"
	AccountCredit     AccountType = "credit"
	AccountInvestment AccountType = "investment"
	AccountOther      AccountType = "other"
)

func (t AccountType) Valid() bool {
	switch t {
	case AccountCash, AccountBank, AccountCredit, AccountInvestment, AccountOther:
		return true
	}
	return false
}

// Account holds a running balance in cents. The balance is a mutable total
// maintained by the Service, not a value recomputed from history.
type Account struct {
	ID        uuid.UUID   `json:"id"`
	UserID    uuid.UUID   `json:"user_id"`
	Name      string      `json:"name"`
	Type      AccountType `json:"type"`
	Balance   int64       `json:"balance"`
	Currency  string      `json:"currency"`
	IsActive  bool        `json:"is_active"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
	DeletedAt *time.Time  `json:"deleted_at,omitempty"`
}

func (a *Account) IsDeleted() bool {
	return a.DeletedAt != nil
}

// floor is the lowest balance the transaction path may leave on the
// account. Credit accounts carry no floor.
func (a *Account) floor() (int64, bool) {
	if a.Type == AccountCredit {
		return 0, false
	}
	return 0, true
}

// Transaction is a single income or expense entry against an account.
type Transaction struct {
	ID          uuid.UUID  `json:"id"`
	UserID      uuid.UUID  `json:"user_id"`
	AccountID   uuid.UUID  `json:"account_id"`
	CategoryID  uuid.UUID  `json:"category_id"`
	Type        TxType     `json:"type"`
	Amount      int64      `json:"amount"`
	Description string     `json:"description"`
	OccurredOn  time.Time  `json:"occurred_on"`
	ReceiptURL  *string    `json:"receipt_url,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	DeletedAt   *time.Time `json:"deleted_at,omitempty"`
}

func (t *Transaction) IsDeleted() bool {
	return t.DeletedAt != nil
}

// Effect is the signed impact of the transaction on its account balance.
func (t *Transaction) Effect() int64 {
	return t.Type.Sign() * t.Amount
}

// Caller is the authenticated identity a request acts as. Admin callers
// may address records across owners.
type Caller struct {
	UserID uuid.UUID
	Admin  bool
}

func (c Caller) owns(owner uuid.UUID) bool {
	return c.Admin || c.UserID == owner
}

// Scope is the read filter this caller is entitled to: admins read across
// owners, everyone else reads their own records.
func (c Caller) Scope() scope.Scope {
	if c.Admin {
		return scope.Unrestricted()
	}
	return scope.Owned(c.UserID)
}
