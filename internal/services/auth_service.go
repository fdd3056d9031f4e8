package services

import (
	"context"
	"fmt"

	"login-backend/internal/dto"
	"login-backend/internal/identity"
	"login-backend/internal/models"
	"login-backend/internal/token"
)

// AuthService ties the resolver and token codec together into the three
// login flows. All flows, OAuth included, mint a first-party token so
// every session carries the same issuer, TTL and claim set.
type AuthService struct {
	resolver *identity.Resolver
	codec    *token.Codec
}

func NewAuthService(resolver *identity.Resolver, codec *token.Codec) *AuthService {
	return &AuthService{resolver: resolver, codec: codec}
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*dto.AuthResponse, error) {
	user, err := s.resolver.AuthenticateLocal(ctx, email, password)
	if err != nil {
		return nil, err
	}
	return s.respond(user)
}

func (s *AuthService) Register(ctx context.Context, email, password, name string) (*dto.AuthResponse, error) {
	user, err := s.resolver.RegisterLocal(ctx, email, password, name)
	if err != nil {
		return nil, err
	}
	return s.respond(user)
}

func (s *AuthService) CompleteOAuth(ctx context.Context, oauthID, email, name string) (*dto.AuthResponse, error) {
	user, err := s.resolver.UpsertFromOAuth(ctx, oauthID, email, name)
	if err != nil {
		return nil, err
	}
	return s.respond(user)
}

func (s *AuthService) respond(user *models.User) (*dto.AuthResponse, error) {
	accessToken, err := s.codec.Issue(user.Email, map[string]any{
		"provider": user.Provider,
		"uid":      user.ID,
	})
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	return &dto.AuthResponse{
		AccessToken: accessToken,
		TokenType:   "Bearer",
		ID:          user.ID,
		Email:       user.Email,
		Name:        user.Name,
	}, nil
}
