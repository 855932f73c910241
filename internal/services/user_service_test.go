package services

import (
	"context"
	"errors"
	"testing"

	"budget/internal/auth"
	"budget/internal/core"
)

func seedRoles() *fakeRoleStore {
	return newFakeRoleStore(
		core.Role{ID: "r-user", Name: "USER", CapabilityNames: []string{"CREATE_TRANSACTION", "VIEW_OWN_TRANSACTIONS", "VIEW_CATEGORIES"}},
		core.Role{ID: "r-admin", Name: "ADMIN", CapabilityNames: []string{"MANAGE_USERS"}},
	)
}

func TestRegister(t *testing.T) {
	users := newFakeUserStore()
	svc := NewUserService(users, seedRoles())

	user, err := svc.Register(context.Background(), RegisterInput{
		Username:  "alice",
		Password:  "secret1",
		Email:     "alice@example.com",
		Firstname: "Alice",
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	if user.PasswordHash == "secret1" || user.PasswordHash == "" {
		t.Error("password not hashed")
	}
	if !auth.CheckPassword(user.PasswordHash, "secret1") {
		t.Error("stored hash does not verify")
	}
	if !user.Active {
		t.Error("new account not active")
	}
	if len(user.RoleIDs) != 1 || user.RoleIDs[0] != "r-user" {
		t.Errorf("role IDs = %v, want [r-user]", user.RoleIDs)
	}

	stored, err := users.GetUserByUsername(context.Background(), "alice")
	if err != nil {
		t.Fatalf("user not persisted: %v", err)
	}
	if stored.ID != user.ID {
		t.Errorf("persisted ID %s, want %s", stored.ID, user.ID)
	}
}

func TestRegister_Validation(t *testing.T) {
	svc := NewUserService(newFakeUserStore(), seedRoles())
	ctx := context.Background()

	tests := []struct {
		name    string
		input   RegisterInput
		wantErr error
	}{
		{"short username", RegisterInput{Username: "ab", Password: "secret1", Email: "a@b.co"}, core.ErrInvalidUsername},
		{"weak password", RegisterInput{Username: "alice", Password: "short", Email: "a@b.co"}, core.ErrWeakPassword},
		{"digitless password", RegisterInput{Username: "alice", Password: "longenough", Email: "a@b.co"}, core.ErrWeakPassword},
		{"bad email", RegisterInput{Username: "alice", Password: "secret1", Email: "not-an-email"}, core.ErrInvalidEmail},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.Register(ctx, tt.input); !errors.Is(err, tt.wantErr) {
				t.Errorf("Register() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestRegister_UsernameTaken(t *testing.T) {
	svc := NewUserService(newFakeUserStore(core.User{ID: "u1", Username: "alice"}), seedRoles())

	_, err := svc.Register(context.Background(), RegisterInput{
		Username: "alice",
		Password: "secret1",
		Email:    "alice@example.com",
	})
	if !errors.Is(err, ErrUsernameTaken) {
		t.Errorf("Register() error = %v, want ErrUsernameTaken", err)
	}
}

func TestSetActive(t *testing.T) {
	users := newFakeUserStore(core.User{ID: "u1", Username: "alice", Active: true})
	svc := NewUserService(users, seedRoles())
	ctx := context.Background()

	user, err := svc.SetActive(ctx, "u1", false)
	if err != nil {
		t.Fatalf("SetActive: %v", err)
	}
	if user.Active {
		t.Error("user still active after deactivation")
	}

	user, err = svc.SetActive(ctx, "u1", true)
	if err != nil {
		t.Fatalf("SetActive: %v", err)
	}
	if !user.Active {
		t.Error("user not active after reactivation")
	}
}

func TestUpdateProfile(t *testing.T) {
	users := newFakeUserStore(core.User{ID: "u1", Username: "alice", Email: "old@example.com", Firstname: "A"})
	svc := NewUserService(users, seedRoles())

	email := "new@example.com"
	last := "Smith"
	user, err := svc.UpdateProfile(context.Background(), "u1", UpdateProfileInput{
		Email:    &email,
		Lastname: &last,
	})
	if err != nil {
		t.Fatalf("UpdateProfile: %v", err)
	}
	if user.Email != email || user.Lastname != last {
		t.Errorf("profile = %+v, want new email and lastname", user)
	}
	if user.Firstname != "A" {
		t.Errorf("untouched field changed: firstname = %q", user.Firstname)
	}

	bad := "nope"
	if _, err := svc.UpdateProfile(context.Background(), "u1", UpdateProfileInput{Email: &bad}); !errors.Is(err, core.ErrInvalidEmail) {
		t.Errorf("invalid email error = %v, want ErrInvalidEmail", err)
	}
}
