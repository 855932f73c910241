// Package services orchestrates domain operations across storage, AMQP
// and auth.
package services

import (
	"context"
	"errors"

	"budget/internal/core"
	"budget/internal/storage"
)

// Service-level failures the HTTP layer maps to response codes.
var (
	ErrUsernameTaken      = errors.New("username already taken")
	ErrCategoryNameTaken  = errors.New("category name already taken")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserInactive       = errors.New("user inactive")
	ErrForbidden          = errors.New("forbidden")
)

// Storage ports. The SQLite repository satisfies all of them; tests plug
// in fakes.
type (
	UserStore interface {
		CreateUser(ctx context.Context, user core.User) error
		GetUser(ctx context.Context, id string) (*core.User, error)
		GetUserByUsername(ctx context.Context, username string) (*core.User, error)
		ListUsers(ctx context.Context, limit, offset int) ([]core.User, error)
		CountUsers(ctx context.Context) (int64, error)
		UpdateUser(ctx context.Context, user core.User) error
	}

	RoleStore interface {
		GetRoleByName(ctx context.Context, name string) (*core.Role, error)
		FindRolesByIDs(ctx context.Context, ids []string) ([]core.Role, error)
	}

	CategoryStore interface {
		CreateCategory(ctx context.Context, category core.Category) error
		GetCategory(ctx context.Context, id string) (*core.Category, error)
		GetCategoryByName(ctx context.Context, name string) (*core.Category, error)
		ListCategories(ctx context.Context) ([]core.Category, error)
		SearchCategories(ctx context.Context, nameFragment string) ([]core.Category, error)
		UpdateCategory(ctx context.Context, category core.Category) error
		DeleteCategory(ctx context.Context, id string) error
	}

	TransactionStore interface {
		CreateTransaction(ctx context.Context, t core.Transaction) error
		GetTransaction(ctx context.Context, id string) (*core.Transaction, error)
		UpdateTransaction(ctx context.Context, t core.Transaction) error
		DeleteTransaction(ctx context.Context, id string) error
		ListTransactionsByUser(ctx context.Context, userID string, filter storage.TransactionFilter, limit, offset int) ([]core.Transaction, error)
		ListAllTransactions(ctx context.Context, filter storage.TransactionFilter, limit, offset int) ([]core.Transaction, error)
		FindAllTransactionsForUser(ctx context.Context, userID string) ([]core.Transaction, error)
		CountTransactionsByUser(ctx context.Context, userID string) (int64, error)
		RefreshCategoryDenorm(ctx context.Context, category core.Category) error
	}
)

// EventPublisher pushes export triggers to the message broker.
type EventPublisher interface {
	PublishTransactionEvent(ctx context.Context, transactionID string) error
}

// Page bounds a listing request.
type Page struct {
	Limit  int
	Offset int
}

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

// Clamp normalizes a page to sane bounds.
func (p Page) Clamp() Page {
	if p.Limit <= 0 {
		p.Limit = defaultPageLimit
	}
	if p.Limit > maxPageLimit {
		p.Limit = maxPageLimit
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
	return p
}
