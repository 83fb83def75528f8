// Package admin exposes the cross-owner views. Routes here sit behind
// auth.RequireAdmin; the repositories are queried with an unrestricted scope.
package admin

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jorge-ld8/budget-tracker/internal/users"
)

type Handler struct {
	Pool  *pgxpool.Pool
	Users *users.Repository
}

func NewHandler(pool *pgxpool.Pool, usersRepo *users.Repository) *Handler {
	return &Handler{Pool: pool, Users: usersRepo}
}

func (h *Handler) ListUsers(c *fiber.Ctx) error {
	out, err := h.Users.ListActive(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"users": out})
}

type statsResponse struct {
	UsersTotal        int64 `json:"users_total"`
	AccountsTotal     int64 `json:"accounts_total"`
	TransactionsTotal int64 `json:"transactions_total"`
	DeletedTotal      int64 `json:"deleted_transactions_total"`
}

func (h *Handler) Stats(c *fiber.Ctx) error {
	ctx := c.Context()

	var resp statsResponse
	err := h.Pool.QueryRow(ctx, `
		SELECT
			(SELECT COUNT(*) FROM users WHERE deleted_at IS NULL),
			(SELECT COUNT(*) FROM accounts WHERE deleted_at IS NULL),
			(SELECT COUNT(*) FROM transactions WHERE deleted_at IS NULL),
			(SELECT COUNT(*) FROM transactions WHERE deleted_at IS NOT NULL)
	`).Scan(&resp.UsersTotal, &resp.AccountsTotal, &resp.TransactionsTotal, &resp.DeletedTotal)
	if err != nil {
		return err
	}
	return c.JSON(resp)
}
