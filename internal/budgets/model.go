package budgets

import (
	"time"

	"github.com/google/uuid"
)

type Period string

const (
	Daily     Period = "daily"
	Weekly    Period = "weekly"
	Monthly   Period = "monthly"
	Quarterly Period = "quarterly"
	Yearly    Period = "yearly"
	Custom    Period = "custom"
)

func (p Period) Valid() bool {
	switch p {
	case Daily, Weekly, Monthly, Quarterly, Yearly, Custom:
		return true
	}
	return false
}

// Budget caps spending over a recurring or custom window. Amount is in
// cents. A nil CategoryID means the budget covers all spending.
type Budget struct {
	ID          uuid.UUID  `json:"id"`
	UserID      uuid.UUID  `json:"user_id"`
	CategoryID  *uuid.UUID `json:"category_id,omitempty"`
	Name        string     `json:"name"`
	Amount      int64      `json:"amount"`
	Period      Period     `json:"period"`
	StartDate   time.Time  `json:"start_date"`
	EndDate     *time.Time `json:"end_date,omitempty"`
	IsRecurring bool       `json:"is_recurring"`
	CreatedAt   time.Time  `json:"created_at"`
	DeletedAt   *time.Time `json:"deleted_at,omitempty"`
}
