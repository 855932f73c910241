package core

import (
	"errors"
	"regexp"
	"strings"
	"time"
)

var (
	ErrZeroAmount       = errors.New("amount cannot be zero")
	ErrMissingDate      = errors.New("date is required")
	ErrMissingCategory  = errors.New("category is required")
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrInvalidUsername  = errors.New("username must be 3-30 characters")
	ErrInvalidEmail     = errors.New("invalid email address")
	ErrWeakPassword     = errors.New("password must be at least 6 characters with a letter and a digit")
	ErrDescriptionSize  = errors.New("description too long (max 200 characters)")
	ErrCategoryNameSize = errors.New("category name must be 2-50 characters")
)

var emailPattern = regexp.MustCompile(`^[A-Za-z0-9+_.-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`)

type (
	// User is an account record. RoleIDs reference Role records by ID;
	// effective permissions are derived on demand, never stored.
	User struct {
		ID           string
		Username     string
		PasswordHash string
		Email        string
		Active       bool
		Firstname    string
		Lastname     string
		RoleIDs      []string
		CreatedAt    time.Time
		UpdatedAt    time.Time
	}

	// Role is a named bundle of capability tags.
	Role struct {
		ID              string
		Name            string
		Description     string
		CapabilityNames []string
		CreatedAt       time.Time
		UpdatedAt       time.Time
	}

	Category struct {
		ID          string
		Name        string
		Description string
		Color       string
		CreatedAt   time.Time
		UpdatedAt   time.Time
	}

	// Transaction is a single financial movement. Amount is signed: positive
	// is income, negative is expense, zero is invalid. CategoryName and
	// CategoryColor are snapshotted at write time so historical reports
	// survive later category renames.
	Transaction struct {
		ID            string
		UserID        string
		UserUsername  string
		CategoryID    string
		CategoryName  string
		CategoryColor string
		Amount        Money
		Description   string
		Date          time.Time // calendar date, midnight UTC
		CreatedAt     time.Time
		UpdatedAt     time.Time
	}
)

// NewDate builds a calendar date with no time component.
func NewDate(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func (t Transaction) Validate() error {
	if t.Amount.IsZero() {
		return ErrZeroAmount
	}
	if t.Date.IsZero() {
		return ErrMissingDate
	}
	if strings.TrimSpace(t.CategoryID) == "" {
		return ErrMissingCategory
	}
	if len(t.Description) > 200 {
		return ErrDescriptionSize
	}
	return nil
}

func (c Category) Validate() error {
	name := strings.TrimSpace(c.Name)
	if len(name) < 2 || len(name) > 50 {
		return ErrCategoryNameSize
	}
	if len(c.Description) > 200 {
		return ErrDescriptionSize
	}
	return nil
}

// ValidateUsername enforces the 3-30 character account name rule.
func ValidateUsername(username string) error {
	n := len(strings.TrimSpace(username))
	if n < 3 || n > 30 {
		return ErrInvalidUsername
	}
	return nil
}

func ValidateEmail(email string) error {
	if !emailPattern.MatchString(email) {
		return ErrInvalidEmail
	}
	return nil
}

// ValidatePassword checks the plaintext policy before hashing: at least 6
// characters containing at least one letter and one digit.
func ValidatePassword(password string) error {
	if len(password) < 6 {
		return ErrWeakPassword
	}
	var hasLetter, hasDigit bool
	for _, r := range password {
		switch {
		case r >= '0' && r <= '9':
			hasDigit = true
		case (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z'):
			hasLetter = true
		}
	}
	if !hasLetter || !hasDigit {
		return ErrWeakPassword
	}
	return nil
}
