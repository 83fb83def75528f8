package transactions

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/jorge-ld8/budget-tracker/internal/auth"
	"github.com/jorge-ld8/budget-tracker/internal/ledger"
	"github.com/jorge-ld8/budget-tracker/internal/scope"
)

const dateLayout = "2006-01-02"

// Reader is the transaction read surface the handler needs; satisfied by
// *Repository.
type Reader interface {
	List(ctx context.Context, sc scope.Scope, f Filter) ([]ledger.Transaction, error)
	GetByID(ctx context.Context, sc scope.Scope, id uuid.UUID) (*ledger.Transaction, error)
}

type Handler struct {
	Repo   Reader
	Ledger *ledger.Service
}

func NewHandler(repo Reader, svc *ledger.Service) *Handler {
	return &Handler{Repo: repo, Ledger: svc}
}

type createRequest struct {
	AccountID   string  `json:"account_id"`
	CategoryID  string  `json:"category_id"`
	Type        string  `json:"type"`
	Amount      int64   `json:"amount"`
	Description string  `json:"description"`
	OccurredOn  string  `json:"occurred_on"`
	ReceiptURL  *string `json:"receipt_url"`
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

	accountID, err := uuid.Parse(req.AccountID)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid account_id")
	}
	categoryID, err := uuid.Parse(req.CategoryID)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid category_id")
	}

	var occurredOn time.Time
	if req.OccurredOn != "" {
		occurredOn, err = time.Parse(dateLayout, req.OccurredOn)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "occurred_on must be YYYY-MM-DD")
		}
	}

	txn, err := h.Ledger.Create(c.Context(), caller, ledger.CreateParams{
		AccountID:   accountID,
		CategoryID:  categoryID,
		Type:        ledger.TxType(req.Type),
		Amount:      req.Amount,
		Description: req.Description,
		OccurredOn:  occurredOn,
		ReceiptURL:  req.ReceiptURL,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(txn)
}

func (h *Handler) List(c *fiber.Ctx) error {
	caller, err := auth.CallerFrom(c)
	if err != nil {
		return err
	}
	f, err := filterFromQuery(c)
	if err != nil {
		return err
	}
	sc := caller.Scope()
	if c.QueryBool("include_deleted") {
		sc = sc.Deleted(scope.WithDeleted)
	}
	out, err := h.Repo.List(c.Context(), sc, f)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"transactions": out})
}

func (h *Handler) ListDeleted(c *fiber.Ctx) error {
	caller, err := auth.CallerFrom(c)
	if err != nil {
		return err
	}
	f, err := filterFromQuery(c)
	if err != nil {
		return err
	}
	out, err := h.Repo.List(c.Context(), caller.Scope().Deleted(scope.DeletedOnly), f)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"transactions": out})
}

func filterFromQuery(c *fiber.Ctx) (Filter, error) {
	var f Filter

	if raw := c.Query("account_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return f, fiber.NewError(fiber.StatusBadRequest, "invalid account_id")
		}
		f.AccountID = &id
	}
	if raw := c.Query("category_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return f, fiber.NewError(fiber.StatusBadRequest, "invalid category_id")
		}
		f.CategoryID = &id
	}
	if raw := c.Query("type"); raw != "" {
		typ := ledger.TxType(raw)
		if !typ.Valid() {
			return f, fiber.NewError(fiber.StatusBadRequest, "type must be income or expense")
		}
		f.Type = &typ
	}
	if raw := c.Query("start"); raw != "" {
		t, err := time.Parse(dateLayout, raw)
		if err != nil {
			return f, fiber.NewError(fiber.StatusBadRequest, "start must be YYYY-MM-DD")
		}
		f.From = &t
	}
	if raw := c.Query("end"); raw != "" {
		t, err := time.Parse(dateLayout, raw)
		if err != nil {
			return f, fiber.NewError(fiber.StatusBadRequest, "end must be YYYY-MM-DD")
		}
		f.To = &t
	}
	f.Limit = c.QueryInt("limit")

	return f, nil
}

// Get hides tombstoned transactions by default; ?include_deleted=true
// opts in, same as List.
func (h *Handler) Get(c *fiber.Ctx) error {
	caller, err := auth.CallerFrom(c)
	if err != nil {
		return err
	}
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid transaction id")
	}
	sc := caller.Scope()
	if c.QueryBool("include_deleted") {
		sc = sc.Deleted(scope.WithDeleted)
	}
	txn, err := h.Repo.GetByID(c.Context(), sc, id)
	if err != nil {
		return err
	}
	return c.JSON(txn)
}

type updateRequest struct {
	Amount      *int64  `json:"amount"`
	Type        *string `json:"type"`
	AccountID   *string `json:"account_id"`
	CategoryID  *string `json:"category_id"`
	Description *string `json:"description"`
	OccurredOn  *string `json:"occurred_on"`
	ReceiptURL  *string `json:"receipt_url"`
}

func (h *Handler) Update(c *fiber.Ctx) error {
	caller, err := auth.CallerFrom(c)
	if err != nil {
		return err
	}
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid transaction id")
	}

	var req updateRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid body")
	}

	var p ledger.UpdateParams
	p.Amount = req.Amount
	p.Description = req.Description
	p.ReceiptURL = req.ReceiptURL
	if req.Type != nil {
		typ := ledger.TxType(*req.Type)
		p.Type = &typ
	}
	if req.AccountID != nil {
		accountID, err := uuid.Parse(*req.AccountID)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid account_id")
		}
		p.AccountID = &accountID
	}
	if req.CategoryID != nil {
		categoryID, err := uuid.Parse(*req.CategoryID)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid category_id")
		}
		p.CategoryID = &categoryID
	}
	if req.OccurredOn != nil {
		t, err := time.Parse(dateLayout, *req.OccurredOn)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "occurred_on must be YYYY-MM-DD")
		}
		p.OccurredOn = &t
	}

	txn, err := h.Ledger.Update(c.Context(), caller, id, p)
	if err != nil {
		return err
	}
	return c.JSON(txn)
}

func (h *Handler) Delete(c *fiber.Ctx) error {
	caller, err := auth.CallerFrom(c)
	if err != nil {
		return err
	}
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid transaction id")
	}
	if err := h.Ledger.SoftDelete(c.Context(), caller, id); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "transaction deleted"})
}

func (h *Handler) Restore(c *fiber.Ctx) error {
	caller, err := auth.CallerFrom(c)
	if err != nil {
		return err
	}
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid transaction id")
	}
	txn, err := h.Ledger.Restore(c.Context(), caller, id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "transaction restored", "transaction": txn})
}
