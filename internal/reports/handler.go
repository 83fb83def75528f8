package reports

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jorge-ld8/budget-tracker/internal/auth"
)

const dateLayout = "2006-01-02"

type Handler struct {
	Q *Querier
}

func NewHandler(q *Querier) *Handler {
	return &Handler{Q: q}
}

// dateRange reads start/end query params, defaulting to the trailing
// 30 days.
func dateRange(c *fiber.Ctx) (time.Time, time.Time, error) {
	end := time.Now().UTC().Truncate(24 * time.Hour)
	start := end.AddDate(0, 0, -29)

	if raw := c.Query("start"); raw != "" {
		t, err := time.Parse(dateLayout, raw)
		if err != nil {
			return time.Time{}, time.Time{}, fiber.NewError(fiber.StatusBadRequest, "start must be YYYY-MM-DD")
		}
		start = t
	}
	if raw := c.Query("end"); raw != "" {
		t, err := time.Parse(dateLayout, raw)
		if err != nil {
			return time.Time{}, time.Time{}, fiber.NewError(fiber.StatusBadRequest, "end must be YYYY-MM-DD")
		}
		end = t
	}
	if end.Before(start) {
		return time.Time{}, time.Time{}, fiber.NewError(fiber.StatusBadRequest, "end must not precede start")
	}
	return start, end, nil
}

func (h *Handler) SpendingByCategory(c *fiber.Ctx) error {
	caller, err := auth.CallerFrom(c)
	if err != nil {
		return err
	}
	start, end, err := dateRange(c)
	if err != nil {
		return err
	}

	rows, err := h.Q.Rows(c.Context(), caller.Scope(), start, end)
	if err != nil {
		return err
	}
	return c.JSON(SpendingByCategory(rows))
}

func (h *Handler) IncomeVsExpenses(c *fiber.Ctx) error {
	caller, err := auth.CallerFrom(c)
	if err != nil {
		return err
	}
	start, end, err := dateRange(c)
	if err != nil {
		return err
	}
	granularity, err := ParseGranularity(c.Query("granularity"))
	if err != nil {
		return err
	}

	rows, err := h.Q.Rows(c.Context(), caller.Scope(), start, end)
	if err != nil {
		return err
	}
	return c.JSON(IncomeVsExpenses(rows, granularity))
}

func (h *Handler) MonthlyTrend(c *fiber.Ctx) error {
	caller, err := auth.CallerFrom(c)
	if err != nil {
		return err
	}

	months := ClampMonths(c.QueryInt("months"))
	start, end := TrendWindow(time.Now().UTC(), months)

	rows, err := h.Q.Rows(c.Context(), caller.Scope(), start, end)
	if err != nil {
		return err
	}
	return c.JSON(MonthlyTrend(rows))
}
