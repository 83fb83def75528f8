package auth

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/jorge-ld8/budget-tracker/internal/ledger"
)

const (
	localUserID  = "user_id"
	localIsAdmin = "is_admin"
)

// GenerateToken signs an HS256 token carrying the user id and admin flag.
func GenerateToken(secret []byte, userID uuid.UUID, isAdmin bool, ttl time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"user_id":  userID.String(),
		"is_admin": isAdmin,
		"exp":      time.Now().Add(ttl).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

// Middleware verifies the Bearer token and stores the caller identity in
// fiber Locals for handlers downstream.
func Middleware(secret []byte) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "missing token")
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid token")
		}

		token, err := jwt.Parse(parts[1], func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, errors.New("invalid signing method")
			}
			return secret, nil
		})
		if err != nil || !token.Valid {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid token")
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid token")
		}

		rawUID, ok := claims["user_id"].(string)
		if !ok {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid token")
		}
		uid, err := uuid.Parse(rawUID)
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid token")
		}

		isAdmin, _ := claims["is_admin"].(bool)

		c.Locals(localUserID, uid)
		c.Locals(localIsAdmin, isAdmin)
		return c.Next()
	}
}

// RequireAdmin gates admin-only routes; it must run after Middleware.
func RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if isAdmin, _ := c.Locals(localIsAdmin).(bool); !isAdmin {
			return fiber.NewError(fiber.StatusForbidden, "admin access required")
		}
		return c.Next()
	}
}

// CallerFrom reads the authenticated identity set by Middleware.
func CallerFrom(c *fiber.Ctx) (ledger.Caller, error) {
	uid, ok := c.Locals(localUserID).(uuid.UUID)
	if !ok || uid == uuid.Nil {
		return ledger.Caller{}, fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}
	isAdmin, _ := c.Locals(localIsAdmin).(bool)
	return ledger.Caller{UserID: uid, Admin: isAdmin}, nil
}
