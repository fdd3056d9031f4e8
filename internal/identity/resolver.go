package identity

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"login-backend/internal/credentials"
	"login-backend/internal/models"
)

var (
	ErrEmailTaken = errors.New("email already registered")
	// ErrUserNotFound and ErrInvalidCredentials are distinct so callers
	// can map status codes, but both must surface the same generic
	// message to clients; never leak which one happened.
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidAssertion   = errors.New("oauth assertion missing subject or email")
)

// Resolver owns all identity mutation: local registration, local
// credential checks and the create-or-link upsert for OAuth sign-ins.
type Resolver struct {
	store Store
}

func NewResolver(store Store) *Resolver {
	return &Resolver{store: store}
}

// RegisterLocal creates a LOCAL account with a bcrypt password hash.
// Returns ErrEmailTaken when the normalized email is already registered,
// including when a concurrent registration wins the create race.
func (r *Resolver) RegisterLocal(ctx context.Context, email, password, name string) (*models.User, error) {
	norm := NormalizeEmail(email)

	if _, err := r.store.FindByEmail(ctx, norm); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("lookup by email: %w", err)
	}

	hash, err := credentials.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &models.User{
		Email:        norm,
		PasswordHash: hash,
		Name:         name,
		Provider:     models.ProviderLocal,
		Enabled:      true,
	}
	if err := r.store.Create(ctx, user); err != nil {
		if errors.Is(err, ErrDuplicate) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

// AuthenticateLocal verifies an email/password pair. A missing password
// hash (OAuth-only account) fails the same way a wrong password does.
func (r *Resolver) AuthenticateLocal(ctx context.Context, email, password string) (*models.User, error) {
	norm := NormalizeEmail(email)

	user, err := r.store.FindByEmail(ctx, norm)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("lookup by email: %w", err)
	}

	if !credentials.Verify(password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// UpsertFromOAuth resolves a Google identity assertion to a user record:
// lookup by (GOOGLE, oauthID), fall back to email, create when neither
// matches, link in place when the email matches an existing account.
// Idempotent: repeating the call changes no field values.
func (r *Resolver) UpsertFromOAuth(ctx context.Context, oauthID, email, name string) (*models.User, error) {
	if oauthID == "" || email == "" {
		return nil, ErrInvalidAssertion
	}
	norm := NormalizeEmail(email)

	user, err := r.resolveExisting(ctx, oauthID, norm)
	if err != nil {
		return nil, err
	}

	if user == nil {
		user = &models.User{
			Email:    norm,
			Name:     name,
			Provider: models.ProviderGoogle,
			OAuthID:  &oauthID,
			Enabled:  true,
		}
		if err := r.store.Create(ctx, user); err != nil {
			if !errors.Is(err, ErrDuplicate) {
				return nil, fmt.Errorf("create user: %w", err)
			}
			// Lost a create race with a concurrent upsert for the same
			// identity: the row exists now, retry the lookup path once.
			slog.Warn("oauth upsert lost create race, retrying lookup", "email", norm)
			user, err = r.resolveExisting(ctx, oauthID, norm)
			if err != nil {
				return nil, err
			}
			if user == nil {
				return nil, ErrDuplicate
			}
			return r.link(ctx, user, oauthID, name)
		}
		return user, nil
	}

	return r.link(ctx, user, oauthID, name)
}

func (r *Resolver) resolveExisting(ctx context.Context, oauthID, norm string) (*models.User, error) {
	user, err := r.store.FindByOAuthID(ctx, models.ProviderGoogle, oauthID)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("lookup by oauth id: %w", err)
	}

	user, err = r.store.FindByEmail(ctx, norm)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("lookup by email: %w", err)
	}
	return nil, nil
}

// link upgrades an existing account with the Google identity. Writes only
// when something actually changes, so repeat calls are no-ops.
func (r *Resolver) link(ctx context.Context, user *models.User, oauthID, name string) (*models.User, error) {
	changed := false
	if user.Provider != models.ProviderGoogle {
		user.Provider = models.ProviderGoogle
		changed = true
	}
	if user.OAuthID == nil || *user.OAuthID != oauthID {
		user.OAuthID = &oauthID
		changed = true
	}
	if user.Name == "" && name != "" {
		user.Name = name
		changed = true
	}
	if !user.Enabled {
		user.Enabled = true
		changed = true
	}

	if changed {
		if err := r.store.Update(ctx, user); err != nil {
			return nil, fmt.Errorf("link oauth identity: %w", err)
		}
	}
	return user, nil
}
