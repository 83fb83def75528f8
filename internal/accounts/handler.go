package accounts

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/jorge-ld8/budget-tracker/internal/audit"
	"github.com/jorge-ld8/budget-tracker/internal/auth"
	"github.com/jorge-ld8/budget-tracker/internal/ledger"
	"github.com/jorge-ld8/budget-tracker/internal/money"
	"github.com/jorge-ld8/budget-tracker/internal/scope"
)

type Handler struct {
	Repo    *Repository
	Ledger  *ledger.Service
	Auditor *audit.Recorder
}

func NewHandler(repo *Repository, svc *ledger.Service, auditor *audit.Recorder) *Handler {
	return &Handler{Repo: repo, Ledger: svc, Auditor: auditor}
}

type createRequest struct {
	Name           string `json:"name"`
	Type           string `json:"type"`
	Currency       string `json:"currency"`
	InitialBalance int64  `json:"initial_balance"`
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
	accType := ledger.AccountType(req.Type)
	if !accType.Valid() {
		return fiber.NewError(fiber.StatusBadRequest, "invalid account type")
	}
	if req.Currency == "" {
		req.Currency = "USD"
	}

	a := &ledger.Account{
		UserID:   caller.UserID,
		Name:     req.Name,
		Type:     accType,
		Balance:  req.InitialBalance,
		Currency: strings.ToUpper(req.Currency),
		IsActive: true,
	}
	if err := h.Repo.Insert(c.Context(), a); err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(a)
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
	return c.JSON(fiber.Map{"accounts": out})
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
	return c.JSON(fiber.Map{"accounts": out})
}

func (h *Handler) Get(c *fiber.Ctx) error {
	caller, err := auth.CallerFrom(c)
	if err != nil {
		return err
	}
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid account id")
	}
	a, err := h.Repo.GetByID(c.Context(), caller.Scope(), id)
	if err != nil {
		return err
	}
	return c.JSON(a)
}

type updateRequest struct {
	Name     *string `json:"name"`
	Type     *string `json:"type"`
	IsActive *bool   `json:"is_active"`
}

func (h *Handler) Update(c *fiber.Ctx) error {
	caller, err := auth.CallerFrom(c)
	if err != nil {
		return err
	}
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid account id")
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
	if req.Type != nil {
		accType := ledger.AccountType(*req.Type)
		if !accType.Valid() {
			return fiber.NewError(fiber.StatusBadRequest, "invalid account type")
		}
		fields.Type = &accType
	}
	fields.IsActive = req.IsActive

	a, err := h.Repo.Update(c.Context(), caller.Scope(), id, fields)
	if err != nil {
		return err
	}
	return c.JSON(a)
}

func (h *Handler) Delete(c *fiber.Ctx) error {
	caller, err := auth.CallerFrom(c)
	if err != nil {
		return err
	}
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid account id")
	}
	if err := h.Repo.SoftDelete(c.Context(), caller.Scope(), id); err != nil {
		return err
	}
	h.Auditor.Record(c.Context(), audit.Entry{
		UserID:     caller.UserID,
		Action:     audit.ActionSoftDelete,
		EntityType: "account",
		EntityID:   id,
		IP:         c.IP(),
	})
	return c.JSON(fiber.Map{"message": "account deleted"})
}

func (h *Handler) Restore(c *fiber.Ctx) error {
	caller, err := auth.CallerFrom(c)
	if err != nil {
		return err
	}
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid account id")
	}
	if err := h.Repo.Restore(c.Context(), caller.Scope(), id); err != nil {
		return err
	}
	h.Auditor.Record(c.Context(), audit.Entry{
		UserID:     caller.UserID,
		Action:     audit.ActionRestore,
		EntityType: "account",
		EntityID:   id,
		IP:         c.IP(),
	})
	return c.JSON(fiber.Map{"message": "account restored"})
}

type adjustRequest struct {
	Amount    string `json:"amount"`
	Operation string `json:"operation"`
}

// AdjustBalance is the manual escape hatch: it moves the balance without a
// backing transaction, through the ledger service, and always leaves an
// audit trail.
func (h *Handler) AdjustBalance(c *fiber.Ctx) error {
	caller, err := auth.CallerFrom(c)
	if err != nil {
		return err
	}
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid account id")
	}

	var req adjustRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid body")
	}

	cents, err := money.ParseCents(req.Amount)
	if err != nil {
		return err
	}
	if cents <= 0 {
		return fiber.NewError(fiber.StatusBadRequest, "amount must be greater than zero")
	}

	var delta int64
	switch req.Operation {
	case "add":
		delta = cents
	case "subtract":
		delta = -cents
	default:
		return fiber.NewError(fiber.StatusBadRequest, "operation must be add or subtract")
	}

	a, err := h.Ledger.AdjustBalance(c.Context(), caller, id, delta)
	if err != nil {
		return err
	}

	h.Auditor.Record(c.Context(), audit.Entry{
		UserID:     caller.UserID,
		Action:     audit.ActionBalanceAdjust,
		EntityType: "account",
		EntityID:   id,
		IP:         c.IP(),
		Metadata: map[string]any{
			"operation":   req.Operation,
			"delta_cents": delta,
			"new_balance": a.Balance,
		},
	})

	return c.JSON(a)
}
