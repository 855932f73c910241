package core

import (
	"errors"
	"testing"
	"time"
)

func TestTransactionValidate(t *testing.T) {
	valid := Transaction{
		CategoryID: "cat-1",
		Amount:     Money{Cents: -500},
		Date:       NewDate(2024, time.May, 1),
	}

	tests := []struct {
		name    string
		mutate  func(*Transaction)
		wantErr error
	}{
		{"valid", func(*Transaction) {}, nil},
		{"zero amount", func(tx *Transaction) { tx.Amount = Money{} }, ErrZeroAmount},
		{"missing date", func(tx *Transaction) { tx.Date = time.Time{} }, ErrMissingDate},
		{"missing category", func(tx *Transaction) { tx.CategoryID = "  " }, ErrMissingCategory},
		{"long description", func(tx *Transaction) {
			for i := 0; i < 201; i++ {
				tx.Description += "x"
			}
		}, ErrDescriptionSize},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx := valid
			tt.mutate(&tx)
			if err := tx.Validate(); !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestCategoryValidate(t *testing.T) {
	if err := (Category{Name: "Food"}).Validate(); err != nil {
		t.Errorf("valid category rejected: %v", err)
	}
	if err := (Category{Name: "F"}).Validate(); !errors.Is(err, ErrCategoryNameSize) {
		t.Errorf("short name error = %v, want ErrCategoryNameSize", err)
	}
}

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		password string
		ok       bool
	}{
		{"abc123", true},
		{"passw0rd", true},
		{"short", false},
		{"abcdef", false},
		{"123456", false},
		{"", false},
	}
	for _, tt := range tests {
		err := ValidatePassword(tt.password)
		if tt.ok && err != nil {
			t.Errorf("ValidatePassword(%q) = %v, want nil", tt.password, err)
		}
		if !tt.ok && err == nil {
			t.Errorf("ValidatePassword(%q) = nil, want error", tt.password)
		}
	}
}

func TestValidateEmail(t *testing.T) {
	if err := ValidateEmail("user@example.com"); err != nil {
		t.Errorf("valid email rejected: %v", err)
	}
	for _, bad := range []string{"", "user", "user@", "@example.com", "user@host"} {
		if err := ValidateEmail(bad); err == nil {
			t.Errorf("ValidateEmail(%q) = nil, want error", bad)
		}
	}
}

func TestValidateUsername(t *testing.T) {
	if err := ValidateUsername("bob"); err != nil {
		t.Errorf("valid username rejected: %v", err)
	}
	if err := ValidateUsername("ab"); err == nil {
		t.Error("two-character username accepted")
	}
}
