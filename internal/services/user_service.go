package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"budget/internal/auth"
	"budget/internal/core"
	"budget/internal/storage"
)

// UserService handles registration and account management.
type UserService struct {
	users UserStore
	roles RoleStore
}

func NewUserService(users UserStore, roles RoleStore) *UserService {
	return &UserService{users: users, roles: roles}
}

// RegisterInput carries the public registration fields.
type RegisterInput struct {
	Username  string
	Password  string
	Email     string
	Firstname string
	Lastname  string
}

// Register creates a new active account with the default USER role.
func (s *UserService) Register(ctx context.Context, input RegisterInput) (*core.User, error) {
	if err := core.ValidateUsername(input.Username); err != nil {
		return nil, err
	}
	if err := core.ValidatePassword(input.Password); err != nil {
		return nil, err
	}
	if err := core.ValidateEmail(input.Email); err != nil {
		return nil, err
	}

	_, err := s.users.GetUserByUsername(ctx, input.Username)
	if err == nil {
		return nil, ErrUsernameTaken
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("check username: %w", err)
	}

	hash, err := auth.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	var roleIDs []string
	role, err := s.roles.GetRoleByName(ctx, auth.DefaultRole)
	switch {
	case err == nil:
		roleIDs = []string{role.ID}
	case errors.Is(err, storage.ErrNotFound):
		// Seeding has not run yet. The account still works; authorities
		// resolve to the empty set until a role is assigned.
		slog.WarnContext(ctx, "Default role missing, registering user without roles",
			"username", input.Username)
	default:
		return nil, fmt.Errorf("resolve default role: %w", err)
	}

	now := time.Now().UTC()
	user := core.User{
		ID:           uuid.NewString(),
		Username:     input.Username,
		PasswordHash: hash,
		Email:        input.Email,
		Active:       true,
		Firstname:    input.Firstname,
		Lastname:     input.Lastname,
		RoleIDs:      roleIDs,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.users.CreateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	slog.InfoContext(ctx, "User registered",
		"user_id", user.ID,
		"username", user.Username)
	return &user, nil
}

func (s *UserService) Get(ctx context.Context, id string) (*core.User, error) {
	return s.users.GetUser(ctx, id)
}

func (s *UserService) GetByUsername(ctx context.Context, username string) (*core.User, error) {
	return s.users.GetUserByUsername(ctx, username)
}

func (s *UserService) List(ctx context.Context, page Page) ([]core.User, int64, error) {
	page = page.Clamp()
	users, err := s.users.ListUsers(ctx, page.Limit, page.Offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}
	total, err := s.users.CountUsers(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("count users: %w", err)
	}
	return users, total, nil
}

// UpdateProfileInput carries the fields an account holder may change.
// Nil pointers leave the current value untouched.
type UpdateProfileInput struct {
	Email     *string
	Firstname *string
	Lastname  *string
}

func (s *UserService) UpdateProfile(ctx context.Context, id string, input UpdateProfileInput) (*core.User, error) {
	user, err := s.users.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Email != nil {
		if err := core.ValidateEmail(*input.Email); err != nil {
			return nil, err
		}
		user.Email = *input.Email
	}
	if input.Firstname != nil {
		user.Firstname = *input.Firstname
	}
	if input.Lastname != nil {
		user.Lastname = *input.Lastname
	}
	user.UpdatedAt = time.Now().UTC()

	if err := s.users.UpdateUser(ctx, *user); err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}
	return user, nil
}

// SetActive deactivates or reactivates an account. Deactivated accounts
// keep their data but cannot authenticate.
func (s *UserService) SetActive(ctx context.Context, id string, active bool) (*core.User, error) {
	user, err := s.users.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}

	user.Active = active
	user.UpdatedAt = time.Now().UTC()
	if err := s.users.UpdateUser(ctx, *user); err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}

	slog.InfoContext(ctx, "User active flag changed",
		"user_id", id,
		"active", active)
	return user, nil
}
