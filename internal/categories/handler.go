package categories

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/jorge-ld8/budget-tracker/internal/auth"
	"github.com/jorge-ld8/budget-tracker/internal/ledger"
	"github.com/jorge-ld8/budget-tracker/internal/scope"
)

type Handler struct {
	Repo *Repository
}

func NewHandler(repo *Repository) *Handler {
	return &Handler{Repo: repo}
}

type createRequest struct {
	Name string `json:"name"`
	Kind string `json:"kind"`
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
	kind := ledger.TxType(req.Kind)
	if !kind.Valid() {
		return fiber.NewError(fiber.StatusBadRequest, "kind must be income or expense")
	}

	cat := &Category{UserID: caller.UserID, Name: req.Name, Kind: kind}
	if err := h.Repo.Insert(c.Context(), cat); err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(cat)
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
	return c.JSON(fiber.Map{"categories": out})
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
	return c.JSON(fiber.Map{"categories": out})
}

func (h *Handler) Get(c *fiber.Ctx) error {
	caller, err := auth.CallerFrom(c)
	if err != nil {
		return err
	}
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid category id")
	}
	cat, err := h.Repo.GetByID(c.Context(), caller.Scope(), id)
	if err != nil {
		return err
	}
	return c.JSON(cat)
}

type updateRequest struct {
	Name string `json:"name"`
}

// Update only renames. Kind is fixed at creation so historical transactions
// keep a coherent category direction.
func (h *Handler) Update(c *fiber.Ctx) error {
	caller, err := auth.CallerFrom(c)
	if err != nil {
		return err
	}
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid category id")
	}

	var req updateRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid body")
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return fiber.NewError(fiber.StatusBadRequest, "name required")
	}

	cat, err := h.Repo.Rename(c.Context(), caller.Scope(), id, req.Name)
	if err != nil {
		return err
	}
	return c.JSON(cat)
}

func (h *Handler) Delete(c *fiber.Ctx) error {
	caller, err := auth.CallerFrom(c)
	if err != nil {
		return err
	}
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid category id")
	}
	if err := h.Repo.SoftDelete(c.Context(), caller.Scope(), id); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "category deleted"})
}

func (h *Handler) Restore(c *fiber.Ctx) error {
	caller, err := auth.CallerFrom(c)
	if err != nil {
		return err
	}
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid category id")
	}
	if err := h.Repo.Restore(c.Context(), caller.Scope(), id); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "category restored"})
}
