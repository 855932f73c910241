package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"budget/internal/auth"
	"budget/internal/core"
	"budget/internal/storage"
)

// AuthService authenticates credentials and issues bearer tokens.
type AuthService struct {
	users    UserStore
	resolver *auth.Resolver
	codec    *auth.TokenCodec
}

func NewAuthService(users UserStore, resolver *auth.Resolver, codec *auth.TokenCodec) *AuthService {
	return &AuthService{
		users:    users,
		resolver: resolver,
		codec:    codec,
	}
}

// Authenticate verifies the credentials and returns a signed token. Unknown
// usernames and wrong passwords both come back as ErrInvalidCredentials.
func (s *AuthService) Authenticate(ctx context.Context, username, password string) (string, *core.User, error) {
	user, err := s.users.GetUserByUsername(ctx, username)
	if errors.Is(err, storage.ErrNotFound) {
		return "", nil, ErrInvalidCredentials
	}
	if err != nil {
		return "", nil, fmt.Errorf("load user: %w", err)
	}

	if !auth.CheckPassword(user.PasswordHash, password) {
		return "", nil, ErrInvalidCredentials
	}
	if !user.Active {
		return "", nil, ErrUserInactive
	}

	role, err := s.resolver.PrimaryRole(ctx, user.RoleIDs)
	if err != nil {
		return "", nil, fmt.Errorf("resolve primary role: %w", err)
	}

	token, err := s.codec.Generate(user.Username, role)
	if err != nil {
		return "", nil, fmt.Errorf("generate token: %w", err)
	}

	slog.InfoContext(ctx, "User authenticated",
		"username", user.Username,
		"role", role)
	return token, user, nil
}

// Identify resolves a bearer token to its account. Inactive accounts are
// rejected even when the token itself is still valid.
func (s *AuthService) Identify(ctx context.Context, token string) (*core.User, error) {
	claims, err := s.codec.Parse(token)
	if err != nil {
		return nil, err
	}

	user, err := s.users.GetUserByUsername(ctx, claims.Subject)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, auth.ErrInvalidToken
	}
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	if !user.Active {
		return nil, auth.ErrInvalidToken
	}
	return user, nil
}

// Authorities derives the caller's effective permission set.
func (s *AuthService) Authorities(ctx context.Context, user *core.User) (auth.Authorities, error) {
	return s.resolver.DeriveAuthorities(ctx, user.RoleIDs)
}
