package categories

import (
	"time"

	"github.com/google/uuid"

	"github.com/jorge-ld8/budget-tracker/internal/ledger"
)

// Category labels transactions. Kind matches the transaction direction it
// applies to, so an expense can only be filed under an expense category.
type Category struct {
	ID        uuid.UUID     `json:"id"`
	UserID    uuid.UUID     `json:"user_id"`
	Name      string        `json:"name"`
	Kind      ledger.TxType `json:"kind"`
	CreatedAt time.Time     `json:"created_at"`
	DeletedAt *time.Time    `json:"deleted_at,omitempty"`
}
