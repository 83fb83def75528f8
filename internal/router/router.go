package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jorge-ld8/budget-tracker/internal/accounts"
	"github.com/jorge-ld8/budget-tracker/internal/admin"
	"github.com/jorge-ld8/budget-tracker/internal/budgets"
	"github.com/jorge-ld8/budget-tracker/internal/categories"
	"github.com/jorge-ld8/budget-tracker/internal/reports"
	"github.com/jorge-ld8/budget-tracker/internal/transactions"
	"github.com/jorge-ld8/budget-tracker/internal/users"
)

type Router struct {
	Users        *users.Handler
	Accounts     *accounts.Handler
	Categories   *categories.Handler
	Budgets      *budgets.Handler
	Transactions *transactions.Handler
	Reports      *reports.Handler
	Admin        *admin.Handler

	AuthMW  fiber.Handler
	AdminMW fiber.Handler
	WriteMW fiber.Handler
}

func (r *Router) RegisterRoutes(app *fiber.App) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	authLimit := RateLimitAuth()
	app.Post("/api/auth/signup", authLimit, r.Users.Signup)
	app.Post("/api/auth/login", authLimit, r.Users.Login)
	app.Get("/api/me", r.AuthMW, r.Users.Me)

	api := app.Group("/api", r.AuthMW)

	acc := api.Group("/accounts")
	acc.Post("/", r.WriteMW, r.Accounts.Create)
	acc.Get("/", r.Accounts.List)
	acc.Get("/deleted/all", r.Accounts.ListDeleted)
	acc.Get("/:id", r.Accounts.Get)
	acc.Patch("/:id", r.WriteMW, r.Accounts.Update)
	acc.Delete("/:id", r.WriteMW, r.Accounts.Delete)
	acc.Post("/:id/restore", r.WriteMW, r.Accounts.Restore)
	acc.Patch("/:id/balance", r.WriteMW, r.Accounts.AdjustBalance)

	cat := api.Group("/categories")
	cat.Post("/", r.WriteMW, r.Categories.Create)
	cat.Get("/", r.Categories.List)
	cat.Get("/deleted/all", r.Categories.ListDeleted)
	cat.Get("/:id", r.Categories.Get)
	cat.Patch("/:id", r.WriteMW, r.Categories.Update)
	cat.Delete("/:id", r.WriteMW, r.Categories.Delete)
	cat.Post("/:id/restore", r.WriteMW, r.Categories.Restore)

	bud := api.Group("/budgets")
	bud.Post("/", r.WriteMW, r.Budgets.Create)
	bud.Get("/", r.Budgets.List)
	bud.Get("/deleted/all", r.Budgets.ListDeleted)
	bud.Get("/:id", r.Budgets.Get)
	bud.Patch("/:id", r.WriteMW, r.Budgets.Update)
	bud.Delete("/:id", r.WriteMW, r.Budgets.Delete)
	bud.Post("/:id/restore", r.WriteMW, r.Budgets.Restore)

	txn := api.Group("/transactions")
	txn.Post("/", r.WriteMW, r.Transactions.Create)
	txn.Get("/", r.Transactions.List)
	txn.Get("/deleted/all", r.Transactions.ListDeleted)
	txn.Get("/:id", r.Transactions.Get)
	txn.Patch("/:id", r.WriteMW, r.Transactions.Update)
	txn.Delete("/:id", r.WriteMW, r.Transactions.Delete)
	txn.Post("/:id/restore", r.WriteMW, r.Transactions.Restore)

	rep := api.Group("/reports")
	rep.Get("/spending-by-category", r.Reports.SpendingByCategory)
	rep.Get("/income-vs-expenses", r.Reports.IncomeVsExpenses)
	rep.Get("/monthly-trend", r.Reports.MonthlyTrend)
	rep.Get("/statement.pdf", r.Reports.StatementPDF)

	adm := api.Group("/admin", r.AdminMW)
	adm.Get("/users", r.Admin.ListUsers)
	adm.Get("/stats", r.Admin.Stats)
}
