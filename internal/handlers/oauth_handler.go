package handlers

import (
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"login-backend/internal/dto"
	"login-backend/internal/oauth"
	"login-backend/internal/services"
)

const stateCookie = "oauth_state"

type OAuthHandler struct {
	google      *oauth.Google
	authService *services.AuthService
}

func NewOAuthHandler(google *oauth.Google, authService *services.AuthService) *OAuthHandler {
	return &OAuthHandler{google: google, authService: authService}
}

// Authorize handles GET /api/oauth2/authorize/google: sets the CSRF state
// cookie and redirects to Google's consent screen.
func (h *OAuthHandler) Authorize(c *fiber.Ctx) error {
	state := uuid.NewString()
	c.Cookie(&fiber.Cookie{
		Name:     stateCookie,
		Value:    state,
		Expires:  time.Now().Add(10 * time.Minute),
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	return c.Redirect(h.google.AuthCodeURL(state), fiber.StatusFound)
}

// Callback handles GET /api/oauth2/callback/google. Any failure surfaces
// as the same generic 401; the underlying cause is only logged.
func (h *OAuthHandler) Callback(c *fiber.Ctx) error {
	state := c.Query("state")
	if state == "" || state != c.Cookies(stateCookie) {
		slog.Warn("oauth callback state mismatch")
		return h.deny(c)
	}
	c.ClearCookie(stateCookie)

	code := c.Query("code")
	if code == "" {
		slog.Warn("oauth callback missing code", "error_param", c.Query("error"))
		return h.deny(c)
	}

	info, err := h.google.Exchange(c.UserContext(), code)
	if err != nil {
		slog.Warn("oauth code exchange failed", "error", err)
		return h.deny(c)
	}
	if !info.EmailVerified {
		slog.Warn("oauth sign-in with unverified email", "sub", info.Sub)
		return h.deny(c)
	}

	resp, err := h.authService.CompleteOAuth(c.UserContext(), info.Sub, info.Email, info.Name)
	if err != nil {
		slog.Warn("oauth upsert failed", "error", err)
		return h.deny(c)
	}

	return c.JSON(dto.OAuthCallbackResponse{
		Message: "Login successful",
		Token:   resp.AccessToken,
		Email:   resp.Email,
		Name:    resp.Name,
	})
}

func (h *OAuthHandler) deny(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
		Error: true, Message: "Authentication failed",
	})
}
