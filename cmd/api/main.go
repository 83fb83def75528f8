package main

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/jorge-ld8/budget-tracker/internal/accounts"
	"github.com/jorge-ld8/budget-tracker/internal/admin"
	"github.com/jorge-ld8/budget-tracker/internal/audit"
	"github.com/jorge-ld8/budget-tracker/internal/auth"
	"github.com/jorge-ld8/budget-tracker/internal/budgets"
	"github.com/jorge-ld8/budget-tracker/internal/categories"
	"github.com/jorge-ld8/budget-tracker/internal/config"
	"github.com/jorge-ld8/budget-tracker/internal/ledger"
	"github.com/jorge-ld8/budget-tracker/internal/logger"
	"github.com/jorge-ld8/budget-tracker/internal/money"
	"github.com/jorge-ld8/budget-tracker/internal/reports"
	"github.com/jorge-ld8/budget-tracker/internal/router"
	"github.com/jorge-ld8/budget-tracker/internal/transactions"
	"github.com/jorge-ld8/budget-tracker/internal/users"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	log := logger.New(cfg.LogLevel, cfg.LogPretty)
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("creating pgx pool")
	}
	defer pool.Close()
	if err := pool.Ping(ctx); err != nil {
		log.Fatal().Err(err).Msg("pinging database")
	}

	secret := []byte(cfg.JWTSecret)

	ledgerStore := &ledger.PostgresStore{Pool: pool}
	ledgerSvc := ledger.NewService(ledgerStore, log)
	auditor := audit.NewRecorder(pool, log)

	usersRepo := users.NewRepository(pool)
	accountsRepo := accounts.NewRepository(pool)
	categoriesRepo := categories.NewRepository(pool)
	budgetsRepo := budgets.NewRepository(pool)
	txnRepo := transactions.NewRepository(pool)
	reportsQ := reports.NewQuerier(pool)

	r := &router.Router{
		Users:        users.NewHandler(usersRepo, secret, cfg.TokenTTL),
		Accounts:     accounts.NewHandler(accountsRepo, ledgerSvc, auditor),
		Categories:   categories.NewHandler(categoriesRepo),
		Budgets:      budgets.NewHandler(budgetsRepo),
		Transactions: transactions.NewHandler(txnRepo, ledgerSvc),
		Reports:      reports.NewHandler(reportsQ),
		Admin:        admin.NewHandler(pool, usersRepo),
		AuthMW:       auth.Middleware(secret),
		AdminMW:      auth.RequireAdmin(),
		WriteMW:      router.RateLimitWrite(cfg.RateLimitMax, cfg.RateLimitWindow),
	}

	app := fiber.New(fiber.Config{
		ErrorHandler: errorHandler(log),
	})
	app.Use(router.CorsMiddleware(cfg.CORSOrigin))
	app.Use(requestLogger(log))

	r.RegisterRoutes(app)

	log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("listening")
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

// errorHandler maps domain sentinels to status codes and keeps internals
// out of responses.
func errorHandler(log zerolog.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return c.Status(fiberErr.Code).JSON(fiber.Map{"error": fiberErr.Message})
		}

		switch {
		case errors.Is(err, ledger.ErrNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not found"})
		case errors.Is(err, ledger.ErrInsufficientFunds),
			errors.Is(err, ledger.ErrAlreadyDeleted),
			errors.Is(err, ledger.ErrNotDeleted),
			errors.Is(err, ledger.ErrInvalidOperation),
			errors.Is(err, money.ErrInvalidAmount):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}

		log.Error().Err(err).
			Str("method", c.Method()).
			Str("path", c.Path()).
			Msg("unhandled error")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
	}
}

func requestLogger(log zerolog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		log.Info().
			Str("method", c.Method()).
			Str("path", c.Path()).
			Int("status", c.Response().StatusCode()).
			Dur("duration", time.Since(start)).
			Str("ip", c.IP()).
			Msg("request")
		return err
	}
}
