package budgets

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jorge-ld8/budget-tracker/internal/ledger"
	"github.com/jorge-ld8/budget-tracker/internal/scope"
)

type Repository struct {
	Pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{Pool: pool}
}

const budgetCols = "id, user_id, category_id, name, amount, period, start_date, end_date, is_recurring, created_at, deleted_at"

func scanBudget(row pgx.Row) (*Budget, error) {
	var b Budget
	err := row.Scan(&b.ID, &b.UserID, &b.CategoryID, &b.Name, &b.Amount, &b.Period,
		&b.StartDate, &b.EndDate, &b.IsRecurring, &b.CreatedAt, &b.DeletedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ledger.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *Repository) Insert(ctx context.Context, b *Budget) error {
	return r.Pool.QueryRow(ctx, `
		INSERT INTO budgets (user_id, category_id, name, amount, period, start_date, end_date, is_recurring)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at
	`, b.UserID, b.CategoryID, b.Name, b.Amount, b.Period, b.StartDate, b.EndDate, b.IsRecurring).
		Scan(&b.ID, &b.CreatedAt)
}

func (r *Repository) GetByID(ctx context.Context, sc scope.Scope, id uuid.UUID) (*Budget, error) {
	cond, args := sc.Conditions("user_id", "deleted_at", 2)
	row := r.Pool.QueryRow(ctx,
		"SELECT "+budgetCols+" FROM budgets WHERE id = $1 AND "+cond,
		append([]any{id}, args...)...)
	return scanBudget(row)
}

func (r *Repository) List(ctx context.Context, sc scope.Scope) ([]Budget, error) {
	cond, args := sc.Conditions("user_id", "deleted_at", 1)
	rows, err := r.Pool.Query(ctx,
		"SELECT "+budgetCols+" FROM budgets WHERE "+cond+" ORDER BY start_date DESC, created_at DESC",
		args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Budget, 0)
	for rows.Next() {
		b, err := scanBudget(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *b)
	}
	return out, rows.Err()
}

type UpdateFields struct {
	Name        *string
	Amount      *int64
	EndDate     *time.Time
	IsRecurring *bool
}

func (r *Repository) Update(ctx context.Context, sc scope.Scope, id uuid.UUID, f UpdateFields) (*Budget, error) {
	cond, args := sc.Conditions("user_id", "deleted_at", 6)
	row := r.Pool.QueryRow(ctx, `
		UPDATE budgets
		SET name = COALESCE($2, name),
		    amount = COALESCE($3, amount),
		    end_date = COALESCE($4, end_date),
		    is_recurring = COALESCE($5, is_recurring)
		WHERE id = $1 AND `+cond+`
		RETURNING `+budgetCols,
		append([]any{id, f.Name, f.Amount, f.EndDate, f.IsRecurring}, args...)...)
	return scanBudget(row)
}

func (r *Repository) SoftDelete(ctx context.Context, sc scope.Scope, id uuid.UUID) error {
	return ledger.SoftDeleteRow(ctx, r.Pool, "budgets", sc, id)
}

func (r *Repository) Restore(ctx context.Context, sc scope.Scope, id uuid.UUID) error {
	return ledger.RestoreRow(ctx, r.Pool, "budgets", sc, id)
}
