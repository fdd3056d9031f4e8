package middleware

import (
	"log/slog"
	"strings"

	"github.com/gofiber/fiber/v2"

	"login-backend/internal/dto"
	"login-backend/internal/identity"
	"login-backend/internal/token"
)

const principalKey = "principal"

// Principal is the authenticated-identity marker attached to the request
// context by Authenticate.
type Principal struct {
	UserID   uint
	Email    string
	Name     string
	Provider string
}

// Authenticate is the per-request authentication gate. Every failure
// (missing header, malformed token, unknown subject, stale token)
// degrades to an anonymous request; whether anonymous access is allowed
// is RequireAuth's decision, route by route.
func Authenticate(codec *token.Codec, store identity.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)
		if !strings.HasPrefix(header, "Bearer ") {
			return c.Next()
		}
		raw := strings.TrimPrefix(header, "Bearer ")

		subject, err := codec.Subject(raw)
		if err != nil {
			slog.Debug("bearer token rejected", "path", c.Path(), "error", err)
			return c.Next()
		}

		user, err := store.FindByEmail(c.UserContext(), identity.NormalizeEmail(subject))
		if err != nil {
			slog.Debug("bearer subject unknown", "path", c.Path(), "error", err)
			return c.Next()
		}

		if !user.Enabled || !codec.ValidateFor(raw, user.Email) {
			slog.Warn("bearer token failed validation", "path", c.Path(), "subject", user.Email)
			return c.Next()
		}

		c.Locals(principalKey, &Principal{
			UserID:   user.ID,
			Email:    user.Email,
			Name:     user.Name,
			Provider: user.Provider,
		})
		return c.Next()
	}
}

// RequireAuth rejects anonymous requests with 401.
func RequireAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if PrincipalFrom(c) == nil {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Error: true, Message: "Unauthorized",
			})
		}
		return c.Next()
	}
}

// PrincipalFrom returns the authenticated principal, or nil for an
// anonymous request.
func PrincipalFrom(c *fiber.Ctx) *Principal {
	p, _ := c.Locals(principalKey).(*Principal)
	return p
}
