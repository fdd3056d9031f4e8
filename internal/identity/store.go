package identity

import (
	"context"
	"errors"
	"strings"

	"login-backend/internal/models"
)

var (
	// ErrNotFound means no user matched the lookup.
	ErrNotFound = errors.New("user not found")
	// ErrDuplicate means a write violated a uniqueness constraint
	// (email or oauth id).
	ErrDuplicate = errors.New("duplicate user")
)

// Store is the identity repository. The resolver is its sole writer;
// concurrent writers racing on the same email or oauth id are serialized
// by the store's uniqueness constraints, surfacing as ErrDuplicate.
type Store interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByOAuthID(ctx context.Context, provider, oauthID string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	Update(ctx context.Context, user *models.User) error
}

// NormalizeEmail lowercases and trims an email address. Every lookup and
// write goes through this so case variants collapse to one identity.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
