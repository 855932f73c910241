package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"budget/internal/core"
	"budget/internal/storage"
)

// TransactionService handles transaction CRUD, the dashboard summary and
// export event publishing.
type TransactionService struct {
	store      TransactionStore
	categories CategoryStore
	users      UserStore
	events     EventPublisher
	now        func() time.Time
}

func NewTransactionService(store TransactionStore, categories CategoryStore, users UserStore, events EventPublisher) *TransactionService {
	return &TransactionService{
		store:      store,
		categories: categories,
		users:      users,
		events:     events,
		now:        time.Now,
	}
}

// TransactionInput carries the writable transaction fields. Amount is in
// cents, signed: positive income, negative expense.
type TransactionInput struct {
	CategoryID  string
	AmountCents int64
	Description string
	Date        time.Time
}

// Create validates and saves a transaction for the given user, denormalizing
// the owner's username and the category's name and color onto the record.
func (s *TransactionService) Create(ctx context.Context, userID string, input TransactionInput) (*core.Transaction, error) {
	user, err := s.users.GetUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load owner: %w", err)
	}

	if input.CategoryID == "" {
		return nil, core.ErrMissingCategory
	}
	category, err := s.categories.GetCategory(ctx, input.CategoryID)
	if err != nil {
		return nil, fmt.Errorf("load category: %w", err)
	}

	now := s.now().UTC()
	transaction := core.Transaction{
		ID:            uuid.NewString(),
		UserID:        user.ID,
		UserUsername:  user.Username,
		CategoryID:    category.ID,
		CategoryName:  category.Name,
		CategoryColor: category.Color,
		Amount:        core.Money{Cents: input.AmountCents},
		Description:   input.Description,
		Date:          input.Date,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := transaction.Validate(); err != nil {
		return nil, err
	}

	if err := s.store.CreateTransaction(ctx, transaction); err != nil {
		return nil, fmt.Errorf("save transaction: %w", err)
	}

	s.publishEvent(ctx, transaction.ID)
	return &transaction, nil
}

// Get loads a transaction. Callers without viewAll see only their own.
func (s *TransactionService) Get(ctx context.Context, userID, id string, viewAll bool) (*core.Transaction, error) {
	transaction, err := s.store.GetTransaction(ctx, id)
	if err != nil {
		return nil, err
	}
	if !viewAll && transaction.UserID != userID {
		return nil, ErrForbidden
	}
	return transaction, nil
}

// Update rewrites a transaction's mutable fields. Only the owner may
// update, regardless of capabilities.
func (s *TransactionService) Update(ctx context.Context, userID, id string, input TransactionInput) (*core.Transaction, error) {
	transaction, err := s.store.GetTransaction(ctx, id)
	if err != nil {
		return nil, err
	}
	if transaction.UserID != userID {
		return nil, ErrForbidden
	}

	if input.CategoryID == "" {
		return nil, core.ErrMissingCategory
	}
	category, err := s.categories.GetCategory(ctx, input.CategoryID)
	if err != nil {
		return nil, fmt.Errorf("load category: %w", err)
	}

	transaction.CategoryID = category.ID
	transaction.CategoryName = category.Name
	transaction.CategoryColor = category.Color
	transaction.Amount = core.Money{Cents: input.AmountCents}
	transaction.Description = input.Description
	transaction.Date = input.Date
	transaction.UpdatedAt = s.now().UTC()
	if err := transaction.Validate(); err != nil {
		return nil, err
	}

	if err := s.store.UpdateTransaction(ctx, *transaction); err != nil {
		return nil, fmt.Errorf("update transaction: %w", err)
	}

	s.publishEvent(ctx, transaction.ID)
	return transaction, nil
}

// Delete removes a transaction. The owner may always delete their own;
// deleteAny extends that to any transaction.
func (s *TransactionService) Delete(ctx context.Context, userID, id string, deleteAny bool) error {
	transaction, err := s.store.GetTransaction(ctx, id)
	if err != nil {
		return err
	}
	if !deleteAny && transaction.UserID != userID {
		return ErrForbidden
	}

	if err := s.store.DeleteTransaction(ctx, id); err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}

	slog.InfoContext(ctx, "Transaction deleted",
		"transaction_id", id,
		"user_id", transaction.UserID)
	return nil
}

// List returns a page of the user's transactions plus their total count.
func (s *TransactionService) List(ctx context.Context, userID string, filter storage.TransactionFilter, page Page) ([]core.Transaction, int64, error) {
	page = page.Clamp()
	transactions, err := s.store.ListTransactionsByUser(ctx, userID, filter, page.Limit, page.Offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list transactions: %w", err)
	}
	total, err := s.store.CountTransactionsByUser(ctx, userID)
	if err != nil {
		return nil, 0, fmt.Errorf("count transactions: %w", err)
	}
	return transactions, total, nil
}

// ListAll returns a page across every user.
func (s *TransactionService) ListAll(ctx context.Context, filter storage.TransactionFilter, page Page) ([]core.Transaction, error) {
	page = page.Clamp()
	transactions, err := s.store.ListAllTransactions(ctx, filter, page.Limit, page.Offset)
	if err != nil {
		return nil, fmt.Errorf("list all transactions: %w", err)
	}
	return transactions, nil
}

// Summary folds the user's complete history into the dashboard summary.
func (s *TransactionService) Summary(ctx context.Context, userID string) (core.Summary, error) {
	transactions, err := s.store.FindAllTransactionsForUser(ctx, userID)
	if err != nil {
		return core.Summary{}, fmt.Errorf("load transactions: %w", err)
	}
	return core.ComputeSummary(transactions, s.now()), nil
}

// publishEvent pushes an export trigger, best effort. A broker outage must
// never fail the write; the worker's backlog sweep picks the record up.
func (s *TransactionService) publishEvent(ctx context.Context, transactionID string) {
	if s.events == nil {
		slog.WarnContext(ctx, "Event publisher not available, skipping export event")
		return
	}
	if err := s.events.PublishTransactionEvent(ctx, transactionID); err != nil {
		slog.ErrorContext(ctx, "Failed to publish transaction event",
			"transaction_id", transactionID, "error", err)
	}
}
