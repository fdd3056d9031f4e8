package routes

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"login-backend/internal/handlers"
	"login-backend/internal/middleware"
)

func Setup(
	app *fiber.App,
	authHandler *handlers.AuthHandler,
	oauthHandler *handlers.OAuthHandler,
	healthHandler *handlers.HealthHandler,
) {
	api := app.Group("/api")

	// General API rate limiter: 60 req/min per IP
	api.Use(limiter.New(limiter.Config{
		Max:               60,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))

	api.Get("/health", healthHandler.Check)

	// Auth — public, with a stricter rate limit: 10 req/min per IP
	auth := api.Group("/auth")
	auth.Use(limiter.New(limiter.Config{
		Max:               10,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))
	auth.Post("/", authHandler.Login)
	auth.Post("/users", authHandler.Register)

	// Google OAuth2 code flow
	api.Get("/oauth2/authorize/google", oauthHandler.Authorize)
	api.Get("/oauth2/callback/google", oauthHandler.Callback)

	// Everything below requires an authenticated principal
	api.Get("/me", middleware.RequireAuth(), authHandler.Me)
}
