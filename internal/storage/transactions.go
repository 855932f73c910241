package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"budget/internal/core"
)

// TransactionFilter narrows transaction listings. Zero values mean
// no constraint.
type TransactionFilter struct {
	CategoryID string
	From       time.Time
	To         time.Time
}

// PendingExportTransaction carries the minimal data the export worker
// needs to enqueue a backlog entry.
type PendingExportTransaction struct {
	ID        string
	CreatedAt time.Time
}

func (r *SQLiteRepository) CreateTransaction(ctx context.Context, t core.Transaction) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO transactions (id, user_id, user_username, category_id, category_name, category_color,
			amount_cents, description, date, exported, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, 0, ?, ?)`,
		t.ID, t.UserID, t.UserUsername, t.CategoryID, t.CategoryName, t.CategoryColor,
		t.Amount.Cents, t.Description, nullableTime(t.Date), t.CreatedAt, t.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create transaction: %w", err)
	}

	slog.InfoContext(ctx, "Transaction saved",
		"id", t.ID,
		"user_id", t.UserID,
		"amount_cents", t.Amount.Cents,
		"category_name", t.CategoryName)
	return nil
}

func (r *SQLiteRepository) GetTransaction(ctx context.Context, id string) (*core.Transaction, error) {
	row := r.db.QueryRowContext(ctx, transactionSelect+` WHERE id = ?`, id)
	t, err := scanTransaction(row)
	if err != nil {
		return nil, fmt.Errorf("get transaction: %w", err)
	}
	return t, nil
}

func (r *SQLiteRepository) UpdateTransaction(ctx context.Context, t core.Transaction) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE transactions
		SET category_id = ?, category_name = ?, category_color = ?,
			amount_cents = ?, description = ?, date = ?, exported = 0, updated_at = ?
		WHERE id = ?`,
		t.CategoryID, t.CategoryName, t.CategoryColor,
		t.Amount.Cents, t.Description, nullableTime(t.Date), t.UpdatedAt, t.ID)
	if err != nil {
		return fmt.Errorf("update transaction: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update transaction: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *SQLiteRepository) DeleteTransaction(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM transactions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// ListTransactionsByUser returns a page of a user's transactions, newest
// date first.
func (r *SQLiteRepository) ListTransactionsByUser(ctx context.Context, userID string, filter TransactionFilter, limit, offset int) ([]core.Transaction, error) {
	query := transactionSelect + ` WHERE user_id = ?`
	args := []any{userID}
	query, args = applyFilter(query, args, filter)
	query += ` ORDER BY date DESC, created_at DESC LIMIT ? OFFSET ?`
	args = append(args, limit, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list transactions by user: %w", err)
	}
	defer rows.Close()
	return collectTransactions(rows)
}

// ListAllTransactions returns a page across all users, newest date first.
func (r *SQLiteRepository) ListAllTransactions(ctx context.Context, filter TransactionFilter, limit, offset int) ([]core.Transaction, error) {
	query := transactionSelect + ` WHERE 1 = 1`
	args := []any{}
	query, args = applyFilter(query, args, filter)
	query += ` ORDER BY date DESC, created_at DESC LIMIT ? OFFSET ?`
	args = append(args, limit, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list all transactions: %w", err)
	}
	defer rows.Close()
	return collectTransactions(rows)
}

// FindAllTransactionsForUser loads a user's complete history, unpaginated.
// The summary computation folds over every transaction.
func (r *SQLiteRepository) FindAllTransactionsForUser(ctx context.Context, userID string) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, transactionSelect+` WHERE user_id = ?`, userID)
	if err != nil {
		return nil, fmt.Errorf("find all transactions for user: %w", err)
	}
	defer rows.Close()
	return collectTransactions(rows)
}

func (r *SQLiteRepository) CountTransactionsByUser(ctx context.Context, userID string) (int64, error) {
	var count int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM transactions WHERE user_id = ?`, userID).Scan(&count); err != nil {
		return 0, fmt.Errorf("count transactions by user: %w", err)
	}
	return count, nil
}

// GetPendingExportTransactions returns transactions not yet written to the
// external ledger, oldest first.
func (r *SQLiteRepository) GetPendingExportTransactions(ctx context.Context, limit int) ([]PendingExportTransaction, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, created_at FROM transactions
		WHERE exported = 0
		ORDER BY created_at ASC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("get pending export transactions: %w", err)
	}
	defer rows.Close()

	var pending []PendingExportTransaction
	for rows.Next() {
		var p PendingExportTransaction
		if err := rows.Scan(&p.ID, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("get pending export transactions: %w", err)
		}
		pending = append(pending, p)
	}
	return pending, rows.Err()
}

// MarkExported records a successful ledger write.
func (r *SQLiteRepository) MarkExported(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE transactions SET exported = 1 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("mark transaction exported: %w", err)
	}

	slog.InfoContext(ctx, "Transaction marked as exported", "id", id)
	return nil
}

// MarkExportError counts a failed ledger write. The row stays pending so
// the backlog sweep retries it.
func (r *SQLiteRepository) MarkExportError(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE transactions SET export_attempts = export_attempts + 1 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("mark transaction export error: %w", err)
	}

	slog.WarnContext(ctx, "Transaction marked with export error", "id", id)
	return nil
}

// RefreshCategoryDenorm rewrites the denormalized category name and color
// on every transaction referencing the category.
func (r *SQLiteRepository) RefreshCategoryDenorm(ctx context.Context, category core.Category) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE transactions SET category_name = ?, category_color = ?
		WHERE category_id = ?`,
		category.Name, category.Color, category.ID)
	if err != nil {
		return fmt.Errorf("refresh category denorm: %w", err)
	}
	return nil
}

const transactionSelect = `
	SELECT id, user_id, user_username, category_id, category_name, category_color,
		amount_cents, description, date, created_at, updated_at
	FROM transactions`

func scanTransaction(row rowScanner) (*core.Transaction, error) {
	var t core.Transaction
	var date sql.NullTime
	err := row.Scan(&t.ID, &t.UserID, &t.UserUsername, &t.CategoryID,
		&t.CategoryName, &t.CategoryColor, &t.Amount.Cents, &t.Description,
		&date, &t.CreatedAt, &t.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if date.Valid {
		t.Date = date.Time
	}
	return &t, nil
}

func collectTransactions(rows *sql.Rows) ([]core.Transaction, error) {
	var transactions []core.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		transactions = append(transactions, *t)
	}
	return transactions, rows.Err()
}

func applyFilter(query string, args []any, filter TransactionFilter) (string, []any) {
	if filter.CategoryID != "" {
		query += ` AND category_id = ?`
		args = append(args, filter.CategoryID)
	}
	if !filter.From.IsZero() {
		query += ` AND date >= ?`
		args = append(args, filter.From)
	}
	if !filter.To.IsZero() {
		query += ` AND date <= ?`
		args = append(args, filter.To)
	}
	return query, args
}

func nullableTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t
}
