package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"budget/internal/auth"
	"budget/internal/core"
)

const testSecret = "test-secret-at-least-32-chars-long-000"

func newAuthFixture(t *testing.T) (*AuthService, *fakeUserStore) {
	t.Helper()

	hash, err := auth.HashPassword("secret1")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	users := newFakeUserStore(core.User{
		ID:           "u1",
		Username:     "alice",
		PasswordHash: hash,
		Active:       true,
		RoleIDs:      []string{"r-user"},
	})
	resolver := auth.NewResolver(newFakeRoleStore(
		core.Role{ID: "r-user", Name: "USER", CapabilityNames: []string{"CREATE_TRANSACTION"}},
	))
	codec := auth.NewTokenCodec(testSecret, "budget-test", 15*time.Minute)
	return NewAuthService(users, resolver, codec), users
}

func TestAuthenticate(t *testing.T) {
	svc, _ := newAuthFixture(t)

	token, user, err := svc.Authenticate(context.Background(), "alice", "secret1")
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if token == "" {
		t.Error("empty token")
	}
	if user.Username != "alice" {
		t.Errorf("user = %q, want alice", user.Username)
	}

	// Token resolves back to the account.
	identified, err := svc.Identify(context.Background(), token)
	if err != nil {
		t.Fatalf("Identify: %v", err)
	}
	if identified.ID != "u1" {
		t.Errorf("identified user = %s, want u1", identified.ID)
	}
}

func TestAuthenticate_Failures(t *testing.T) {
	svc, users := newAuthFixture(t)
	ctx := context.Background()

	// Unknown user and wrong password are indistinguishable.
	if _, _, err := svc.Authenticate(ctx, "mallory", "secret1"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("unknown user error = %v, want ErrInvalidCredentials", err)
	}
	if _, _, err := svc.Authenticate(ctx, "alice", "wrong99"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("wrong password error = %v, want ErrInvalidCredentials", err)
	}

	// Deactivated accounts cannot authenticate.
	u, _ := users.GetUser(ctx, "u1")
	u.Active = false
	users.UpdateUser(ctx, *u)
	if _, _, err := svc.Authenticate(ctx, "alice", "secret1"); !errors.Is(err, ErrUserInactive) {
		t.Errorf("inactive user error = %v, want ErrUserInactive", err)
	}
}

func TestIdentify_RejectsStaleToken(t *testing.T) {
	svc, users := newAuthFixture(t)
	ctx := context.Background()

	token, _, err := svc.Authenticate(ctx, "alice", "secret1")
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}

	// Deactivation invalidates outstanding tokens immediately.
	u, _ := users.GetUser(ctx, "u1")
	u.Active = false
	users.UpdateUser(ctx, *u)

	if _, err := svc.Identify(ctx, token); !errors.Is(err, auth.ErrInvalidToken) {
		t.Errorf("stale token error = %v, want ErrInvalidToken", err)
	}

	if _, err := svc.Identify(ctx, "garbage"); !errors.Is(err, auth.ErrInvalidToken) {
		t.Errorf("garbage token error = %v, want ErrInvalidToken", err)
	}
}
