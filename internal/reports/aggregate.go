// Package reports is the read-only aggregation side. It never touches
// balances; it folds transaction rows into spending, cash-flow and trend
// views. Grouping happens in Go so the shapes are testable without a
// database.
package reports

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/jorge-ld8/budget-tracker/internal/ledger"
)

// Row is the slice of a transaction the aggregator needs.
type Row struct {
	CategoryID uuid.UUID
	Category   string
	Type       ledger.TxType
	Amount     int64
	OccurredOn time.Time
}

type Granularity string

const (
	ByDay   Granularity = "day"
	ByWeek  Granularity = "week"
	ByMonth Granularity = "month"
	ByYear  Granularity = "year"
)

func ParseGranularity(s string) (Granularity, error) {
	switch Granularity(s) {
	case ByDay, ByWeek, ByMonth, ByYear:
		return Granularity(s), nil
	case "":
		return ByMonth, nil
	}
	return "", fmt.Errorf("%w: granularity must be day, week, month or year", ledger.ErrInvalidOperation)
}

// Key renders the period bucket a timestamp falls into. Week keys follow
// ISO 8601, so late-December days can land in week 1 of the next year.
func (g Granularity) Key(t time.Time) string {
	switch g {
	case ByDay:
		return t.Format("2006-01-02")
	case ByWeek:
		year, week := t.ISOWeek()
		return fmt.Sprintf("%04d-W%02d", year, week)
	case ByYear:
		return t.Format("2006")
	default:
		return t.Format("2006-01")
	}
}

type CategorySpending struct {
	CategoryID uuid.UUID `json:"category_id"`
	Category   string    `json:"category"`
	Total      int64     `json:"total"`
	Count      int64     `json:"count"`
}

type SpendingSummary struct {
	TotalSpending   int64 `json:"total_spending"`
	CategoriesCount int   `json:"categories_count"`
}

type SpendingReport struct {
	Categories []CategorySpending `json:"categories"`
	Summary    SpendingSummary    `json:"summary"`
}

// SpendingByCategory groups expense rows by category, heaviest spender
// first. Income rows are ignored.
func SpendingByCategory(rows []Row) SpendingReport {
	byCat := make(map[uuid.UUID]*CategorySpending)
	for _, r := range rows {
		if r.Type != ledger.Expense {
			continue
		}
		cs, ok := byCat[r.CategoryID]
		if !ok {
			cs = &CategorySpending{CategoryID: r.CategoryID, Category: r.Category}
			byCat[r.CategoryID] = cs
		}
		cs.Total += r.Amount
		cs.Count++
	}

	out := SpendingReport{Categories: make([]CategorySpending, 0, len(byCat))}
	for _, cs := range byCat {
		out.Categories = append(out.Categories, *cs)
		out.Summary.TotalSpending += cs.Total
	}
	sort.Slice(out.Categories, func(i, j int) bool {
		a, b := out.Categories[i], out.Categories[j]
		if a.Total != b.Total {
			return a.Total > b.Total
		}
		return a.Category < b.Category
	})
	out.Summary.CategoriesCount = len(out.Categories)
	return out
}

type PeriodFlow struct {
	Period       string `json:"period"`
	Income       int64  `json:"income"`
	IncomeCount  int64  `json:"income_count"`
	Expense      int64  `json:"expense"`
	ExpenseCount int64  `json:"expense_count"`
	Balance      int64  `json:"balance"`
}

type FlowSummary struct {
	TotalIncome  int64 `json:"total_income"`
	TotalExpense int64 `json:"total_expense"`
	Balance      int64 `json:"balance"`
	PeriodCount  int   `json:"period_count"`
}

type FlowReport struct {
	Periods []PeriodFlow `json:"periods"`
	Summary FlowSummary  `json:"summary"`
}

// IncomeVsExpenses buckets rows into periods and nets income against
// expenses per bucket, carrying sums and transaction counts per side. A
// period showing only one side reports zero amount and zero count for the
// other. Periods come back in ascending order.
func IncomeVsExpenses(rows []Row, g Granularity) FlowReport {
	byPeriod := make(map[string]*PeriodFlow)
	for _, r := range rows {
		key := g.Key(r.OccurredOn)
		pf, ok := byPeriod[key]
		if !ok {
			pf = &PeriodFlow{Period: key}
			byPeriod[key] = pf
		}
		switch r.Type {
		case ledger.Income:
			pf.Income += r.Amount
			pf.IncomeCount++
		case ledger.Expense:
			pf.Expense += r.Amount
			pf.ExpenseCount++
		}
	}

	out := FlowReport{Periods: make([]PeriodFlow, 0, len(byPeriod))}
	for _, pf := range byPeriod {
		pf.Balance = pf.Income - pf.Expense
		out.Periods = append(out.Periods, *pf)
		out.Summary.TotalIncome += pf.Income
		out.Summary.TotalExpense += pf.Expense
	}
	// All period key formats sort correctly as strings.
	sort.Slice(out.Periods, func(i, j int) bool {
		return out.Periods[i].Period < out.Periods[j].Period
	})
	out.Summary.Balance = out.Summary.TotalIncome - out.Summary.TotalExpense
	out.Summary.PeriodCount = len(out.Periods)
	return out
}

type TrendPoint struct {
	Month string `json:"month"`
	Total int64  `json:"total"`
	Count int64  `json:"count"`
}

type TrendSummary struct {
	AverageSpending int64 `json:"average_spending"`
	MonthsCount     int   `json:"months_count"`
}

type TrendReport struct {
	Months  []TrendPoint `json:"months"`
	Summary TrendSummary `json:"summary"`
}

const (
	TrendDefaultMonths = 6
	trendMaxMonths     = 12
)

// ClampMonths bounds the trailing-window size to [1, 12], defaulting when
// the caller passed nothing.
func ClampMonths(months int) int {
	if months == 0 {
		return TrendDefaultMonths
	}
	if months < 1 {
		return 1
	}
	if months > trendMaxMonths {
		return trendMaxMonths
	}
	return months
}

// TrendWindow returns the inclusive date range covering the trailing
// months window that ends with now's month.
func TrendWindow(now time.Time, months int) (time.Time, time.Time) {
	end := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).
		AddDate(0, 1, -1)
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).
		AddDate(0, -(months - 1), 0)
	return start, end
}

// MonthlyTrend sums and counts expenses by month. Only months with
// spending appear; the average is over those months and is zero when
// there are none.
func MonthlyTrend(rows []Row) TrendReport {
	byMonth := make(map[string]*TrendPoint)
	for _, r := range rows {
		if r.Type != ledger.Expense {
			continue
		}
		key := r.OccurredOn.Format("2006-01")
		tp, ok := byMonth[key]
		if !ok {
			tp = &TrendPoint{Month: key}
			byMonth[key] = tp
		}
		tp.Total += r.Amount
		tp.Count++
	}

	out := TrendReport{Months: make([]TrendPoint, 0, len(byMonth))}
	var total int64
	for _, tp := range byMonth {
		out.Months = append(out.Months, *tp)
		total += tp.Total
	}
	sort.Slice(out.Months, func(i, j int) bool {
		return out.Months[i].Month < out.Months[j].Month
	})
	out.Summary.MonthsCount = len(out.Months)
	if out.Summary.MonthsCount > 0 {
		out.Summary.AverageSpending = total / int64(out.Summary.MonthsCount)
	}
	return out
}
