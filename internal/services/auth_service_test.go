package services_test

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"login-backend/internal/identity"
	"login-backend/internal/models"
	"login-backend/internal/services"
	"login-backend/internal/token"
)

const testSecret = "0123456789abcdef0123456789abcdef"

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

func newService(t *testing.T) (*services.AuthService, *token.Codec) {
	t.Helper()
	codec, err := token.NewCodec(token.Config{
		Secret: testSecret,
		Issuer: "login-backend",
		TTL:    time.Hour,
	})
	require.NoError(t, err)
	resolver := identity.NewResolver(newMemStore())
	return services.NewAuthService(resolver, codec), codec
}

func TestRegisterAndLogin(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, codec := newService(t)

	reg, err := svc.Register(ctx, "alice@example.com", "pw123456", "Alice")
	require.NoError(t, err)
	assert.Equal(t, "Bearer", reg.TokenType)
	assert.Equal(t, "alice@example.com", reg.Email)
	assert.Equal(t, "Alice", reg.Name)
	assert.NotZero(t, reg.ID)

	sub, err := codec.Subject(reg.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", sub)

	login, err := svc.Login(ctx, "alice@example.com", "pw123456")
	require.NoError(t, err)
	assert.True(t, codec.ValidateFor(login.AccessToken, "alice@example.com"))
	assert.Equal(t, reg.ID, login.ID)

	_, err = svc.Login(ctx, "alice@example.com", "wrong-password")
	require.ErrorIs(t, err, identity.ErrInvalidCredentials)
}

func TestTokenClaims(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, _ := newService(t)

	resp, err := svc.Register(ctx, "alice@example.com", "pw123456", "Alice")
	require.NoError(t, err)

	parsed, err := jwt.Parse(resp.AccessToken, func(*jwt.Token) (any, error) {
		return []byte(testSecret), nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	require.NoError(t, err)

	claims := parsed.Claims.(jwt.MapClaims)
	assert.Equal(t, models.ProviderLocal, claims["provider"])
	assert.EqualValues(t, resp.ID, claims["uid"])
	assert.Equal(t, "login-backend", claims["iss"])
}

func TestCompleteOAuthMintsFirstPartyToken(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, codec := newService(t)

	resp, err := svc.CompleteOAuth(ctx, "g-1", "bob@example.com", "Bob")
	require.NoError(t, err)

	// The session token is ours, not the upstream Google token: it
	// validates against our issuer and key.
	assert.True(t, codec.ValidateFor(resp.AccessToken, "bob@example.com"))

	parsed, err := jwt.Parse(resp.AccessToken, func(*jwt.Token) (any, error) {
		return []byte(testSecret), nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	require.NoError(t, err)
	claims := parsed.Claims.(jwt.MapClaims)
	assert.Equal(t, models.ProviderGoogle, claims["provider"])
}
