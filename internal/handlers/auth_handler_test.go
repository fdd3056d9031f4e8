package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"login-backend/internal/dto"
	"login-backend/internal/handlers"
	"login-backend/internal/identity"
	"login-backend/internal/middleware"
	"login-backend/internal/models"
	"login-backend/internal/services"
	"login-backend/internal/token"
)

type memStore struct {
	mu    sync.Mutex
	seq   uint
	users map[uint]*models.User
}

func newMemStore() *memStore {
	return &memStore{users: make(map[uint]*models.User)}
}

func (s *memStore) FindByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			clone := *u
			return &clone, nil
		}
	}
	return nil, identity.ErrNotFound
}

func (s *memStore) FindByOAuthID(_ context.Context, provider, oauthID string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Provider == provider && u.OAuthID != nil && *u.OAuthID == oauthID {
			clone := *u
			return &clone, nil
		}
	}
	return nil, identity.ErrNotFound
}

func (s *memStore) Create(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if strings.EqualFold(u.Email, user.Email) {
			return identity.ErrDuplicate
		}
	}
	s.seq++
	user.ID = s.seq
	clone := *user
	s.users[user.ID] = &clone
	return nil
}

func (s *memStore) Update(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	clone := *user
	s.users[user.ID] = &clone
	return nil
}

func newTestApp(t *testing.T) (*fiber.App, *token.Codec) {
	t.Helper()
	codec, err := token.NewCodec(token.Config{
		Secret: "0123456789abcdef0123456789abcdef",
		Issuer: "login-backend",
		TTL:    time.Hour,
	})
	require.NoError(t, err)

	store := newMemStore()
	resolver := identity.NewResolver(store)
	authService := services.NewAuthService(resolver, codec)
	authHandler := handlers.NewAuthHandler(authService)

	app := fiber.New()
	app.Use(middleware.Authenticate(codec, store))
	app.Post("/api/auth", authHandler.Login)
	app.Post("/api/auth/users", authHandler.Register)
	app.Get("/api/me", middleware.RequireAuth(), authHandler.Me)
	return app, codec
}

func postJSON(t *testing.T, app *fiber.App, path string, payload any) *http.Response {
	t.Helper()
	b, err := json.Marshal(payload)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(b))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func TestRegisterEndpoint(t *testing.T) {
	t.Parallel()
	app, codec := newTestApp(t)

	resp := postJSON(t, app, "/api/auth/users", dto.RegisterRequest{
		Email: "alice@example.com", Password: "pw123456", Name: "Alice",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	body := decode[dto.AuthResponse](t, resp)
	assert.Equal(t, "Bearer", body.TokenType)
	assert.Equal(t, "alice@example.com", body.Email)
	assert.Equal(t, "Alice", body.Name)
	assert.NotZero(t, body.ID)

	sub, err := codec.Subject(body.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", sub)

	t.Run("duplicate email conflicts", func(t *testing.T) {
		resp := postJSON(t, app, "/api/auth/users", dto.RegisterRequest{
			Email: "ALICE@example.com", Password: "pw123456", Name: "Alice",
		})
		assert.Equal(t, http.StatusConflict, resp.StatusCode)
	})

	t.Run("short password is rejected", func(t *testing.T) {
		resp := postJSON(t, app, "/api/auth/users", dto.RegisterRequest{
			Email: "bob@example.com", Password: "short", Name: "Bob",
		})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestLoginEndpoint(t *testing.T) {
	t.Parallel()
	app, codec := newTestApp(t)

	resp := postJSON(t, app, "/api/auth/users", dto.RegisterRequest{
		Email: "alice@example.com", Password: "pw123456", Name: "Alice",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	t.Run("valid credentials", func(t *testing.T) {
		resp := postJSON(t, app, "/api/auth", dto.LoginRequest{
			Email: "alice@example.com", Password: "pw123456",
		})
		require.Equal(t, http.StatusOK, resp.StatusCode)
		body := decode[dto.AuthResponse](t, resp)
		assert.True(t, codec.ValidateFor(body.AccessToken, "alice@example.com"))
	})

	t.Run("wrong password and unknown email share one message", func(t *testing.T) {
		wrongPw := postJSON(t, app, "/api/auth", dto.LoginRequest{
			Email: "alice@example.com", Password: "nope-nope",
		})
		assert.Equal(t, http.StatusUnauthorized, wrongPw.StatusCode)
		wrongPwBody := decode[dto.ErrorResponse](t, wrongPw)

		unknown := postJSON(t, app, "/api/auth", dto.LoginRequest{
			Email: "ghost@example.com", Password: "pw123456",
		})
		assert.Equal(t, http.StatusNotFound, unknown.StatusCode)
		unknownBody := decode[dto.ErrorResponse](t, unknown)

		assert.Equal(t, wrongPwBody.Message, unknownBody.Message,
			"denial must not reveal whether the email exists")
	})
}

func TestMeEndpoint(t *testing.T) {
	t.Parallel()
	app, _ := newTestApp(t)

	reg := postJSON(t, app, "/api/auth/users", dto.RegisterRequest{
		Email: "alice@example.com", Password: "pw123456", Name: "Alice",
	})
	require.Equal(t, http.StatusCreated, reg.StatusCode)
	regBody := decode[dto.AuthResponse](t, reg)

	t.Run("with bearer token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+regBody.AccessToken)
		resp, err := app.Test(req)
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		me := decode[dto.MeResponse](t, resp)
		assert.Equal(t, regBody.ID, me.ID)
		assert.Equal(t, "alice@example.com", me.Email)
		assert.Equal(t, models.ProviderLocal, me.Provider)
	})

	t.Run("anonymous gets 401", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})
}
