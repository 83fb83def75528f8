package reports

import (
	"context"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jorge-ld8/budget-tracker/internal/scope"
)

// Querier fetches the raw rows the aggregator folds. Tombstoned
// transactions never contribute to a report.
type Querier struct {
	Pool *pgxpool.Pool
}

func NewQuerier(pool *pgxpool.Pool) *Querier {
	return &Querier{Pool: pool}
}

func (q *Querier) Rows(ctx context.Context, sc scope.Scope, from, to time.Time) ([]Row, error) {
	cond, args := sc.Conditions("t.user_id", "t.deleted_at", 3)
	rows, err := q.Pool.Query(ctx, `
		SELECT t.category_id, COALESCE(c.name, 'uncategorized'), t.type, t.amount, t.occurred_on
		FROM transactions t
		LEFT JOIN categories c ON c.id = t.category_id
		WHERE t.occurred_on BETWEEN $1 AND $2 AND `+cond,
		append([]any{from, to}, args...)...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Row
	for rows.Next() {
		var r Row
		if err := rows.Scan(&r.CategoryID, &r.Category, &r.Type, &r.Amount, &r.OccurredOn); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// StatementEntry is one printable line of the PDF statement.
type StatementEntry struct {
	ID          uuid.UUID
	Type        string
	Description string
	Account     string
	Amount      int64
	OccurredOn  time.Time
}

const statementMaxRows = 2000

func (q *Querier) StatementEntries(ctx context.Context, sc scope.Scope, from, to time.Time) ([]StatementEntry, error) {
	cond, args := sc.Conditions("t.user_id", "t.deleted_at", 3)
	rows, err := q.Pool.Query(ctx, `
		SELECT t.id, t.type, t.description, a.name, t.amount, t.occurred_on
		FROM transactions t
		JOIN accounts a ON a.id = t.account_id
		WHERE t.occurred_on BETWEEN $1 AND $2 AND `+cond+`
		ORDER BY t.occurred_on DESC, t.created_at DESC
		LIMIT `+strconv.Itoa(statementMaxRows),
		append([]any{from, to}, args...)...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []StatementEntry
	for rows.Next() {
		var e StatementEntry
		if err := rows.Scan(&e.ID, &e.Type, &e.Description, &e.Account, &e.Amount, &e.OccurredOn); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
