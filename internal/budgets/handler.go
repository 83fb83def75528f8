package budgets

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/jorge-ld8/budget-tracker/internal/auth"
	"github.com/jorge-ld8/budget-tracker/internal/scope"
)

const dateLayout = "2006-01-02"

type Handler struct {
	Repo *Repository
}

func NewHandler(repo *Repository) *Handler {
	return &Handler{Repo: repo}
}

type createRequest struct {
	Name        string  `json:"name"`
	Amount      int64   `json:"amount"`
	Period      string  `json:"period"`
	StartDate   string  `json:"start_date"`
	EndDate     *string `json:"end_date"`
	IsRecurring bool    `json:"is_recurring"`
	CategoryID  *string `json:"category_id"`
}

func (h *Handler) Create(c *fiber.Ctx) error {
	caller, err := auth.CallerFrom(c)
	if err != nil {
		return err
	}

	var req createRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid body")
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return fiber.NewError(fiber.StatusBadRequest, "name required")
	}
	if req.Amount <= 0 {
		return fiber.NewError(fiber.StatusBadRequest, "amount must be greater than zero")
	}
	period := Period(req.Period)
	if !period.Valid() {
		return fiber.NewError(fiber.StatusBadRequest, "invalid period")
	}

	startDate, err := time.Parse(dateLayout, req.StartDate)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "start_date must be YYYY-MM-DD")
	}

	var endDate *time.Time
	if req.EndDate != nil {
		t, err := time.Parse(dateLayout, *req.EndDate)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "end_date must be YYYY-MM-DD")
		}
		if !t.After(startDate) {
			return fiber.NewError(fiber.StatusBadRequest, "end_date must be after start_date")
		}
		endDate = &t
	}
	if period == Custom && endDate == nil {
		return fiber.NewError(fiber.StatusBadRequest, "custom period requires end_date")
	}

	var categoryID *uuid.UUID
	if req.CategoryID != nil {
		id, err := uuid.Parse(*req.CategoryID)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid category_id")
		}
		categoryID = &id
	}

	b := &Budget{
		UserID:      caller.UserID,
		CategoryID:  categoryID,
		Name:        req.Name,
		Amount:      req.Amount,
		Period:      period,
		StartDate:   startDate,
		EndDate:     endDate,
		IsRecurring: req.IsRecurring,
	}
	if err := h.Repo.Insert(c.Context(), b); err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(b)
}

func (h *Handler) List(c *fiber.Ctx) error {
	caller, err := auth.CallerFrom(c)
	if err != nil {
		return err
	}
	out, err := h.Repo.List(c.Context(), caller.Scope())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"budgets": out})
}

func (h *Handler) ListDeleted(c *fiber.Ctx) error {
	caller, err := auth.CallerFrom(c)
	if err != nil {
		return err
	}
	out, err := h.Repo.List(c.Context(), caller.Scope().Deleted(scope.DeletedOnly))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"budgets": out})
}

func (h *Handler) Get(c *fiber.Ctx) error {
	caller, err := auth.CallerFrom(c)
	if err != nil {
		return err
	}
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid budget id")
	}
	b, err := h.Repo.GetByID(c.Context(), caller.Scope(), id)
	if err != nil {
		return err
	}
	return c.JSON(b)
}

type updateRequest struct {
	Name        *string `json:"name"`
	Amount      *int64  `json:"amount"`
	EndDate     *string `json:"end_date"`
	IsRecurring *bool   `json:"is_recurring"`
}

func (h *Handler) Update(c *fiber.Ctx) error {
	caller, err := auth.CallerFrom(c)
	if err != nil {
		return err
	}
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid budget id")
	}

	var req updateRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid body")
	}

	var fields UpdateFields
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return fiber.NewError(fiber.StatusBadRequest, "name cannot be blank")
		}
		fields.Name = &name
	}
	if req.Amount != nil {
		if *req.Amount <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "amount must be greater than zero")
		}
		fields.Amount = req.Amount
	}
	if req.EndDate != nil {
		t, err := time.Parse(dateLayout, *req.EndDate)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "end_date must be YYYY-MM-DD")
		}
		fields.EndDate = &t
	}
	fields.IsRecurring = req.IsRecurring

	b, err := h.Repo.Update(c.Context(), caller.Scope(), id, fields)
	if err != nil {
		return err
	}
	return c.JSON(b)
}

func (h *Handler) Delete(c *fiber.Ctx) error {
	caller, err := auth.CallerFrom(c)
	if err != nil {
		return err
	}
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid budget id")
	}
	if err := h.Repo.SoftDelete(c.Context(), caller.Scope(), id); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "budget deleted"})
}

func (h *Handler) Restore(c *fiber.Ctx) error {
	caller, err := auth.CallerFrom(c)
	if err != nil {
		return err
	}
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid budget id")
	}
	if err := h.Repo.Restore(c.Context(), caller.Scope(), id); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "budget restored"})
}
