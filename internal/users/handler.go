package users

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"

	"github.com/jorge-ld8/budget-tracker/internal/auth"
	"github.com/jorge-ld8/budget-tracker/internal/ledger"
)

type Handler struct {
	Repo      *Repository
	JWTSecret []byte
	TokenTTL  time.Duration
}

func NewHandler(repo *Repository, secret []byte, ttl time.Duration) *Handler {
	return &Handler{Repo: repo, JWTSecret: secret, TokenTTL: ttl}
}

type signupRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}

func (h *Handler) Signup(c *fiber.Ctx) error {
	var req signupRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid body")
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || !strings.Contains(req.Email, "@") {
		return fiber.NewError(fiber.StatusBadRequest, "valid email required")
	}
	if len(req.Password) < 8 {
		return fiber.NewError(fiber.StatusBadRequest, "password must be at least 8 characters")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	u := &User{
		Email:        req.Email,
		PasswordHash: string(hashed),
		FullName:     strings.TrimSpace(req.FullName),
	}
	if err := h.Repo.Insert(c.Context(), u); err != nil {
		return err
	}

	token, err := auth.GenerateToken(h.JWTSecret, u.ID, u.IsAdmin, h.TokenTTL)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(authResponse{Token: token, User: u})
}

func (h *Handler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid body")
	}

	u, err := h.Repo.GetByEmail(c.Context(), strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		// Same answer whether the email is unknown or the password wrong.
		if errors.Is(err, ledger.ErrNotFound) {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid credentials")
		}
		return err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)) != nil {
		return fiber.NewError(fiber.StatusUnauthorized, "invalid credentials")
	}

	token, err := auth.GenerateToken(h.JWTSecret, u.ID, u.IsAdmin, h.TokenTTL)
	if err != nil {
		return err
	}
	return c.JSON(authResponse{Token: token, User: u})
}

func (h *Handler) Me(c *fiber.Ctx) error {
	caller, err := auth.CallerFrom(c)
	if err != nil {
		return err
	}
	u, err := h.Repo.GetByID(c.Context(), caller.UserID)
	if err != nil {
		return err
	}
	return c.JSON(u)
}
