// Package worker exports transactions from SQLite to the external ledger.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"budget/internal/amqp"
	"budget/internal/core"
	"budget/internal/ledger"
	"budget/internal/log"
	"budget/internal/storage"
)

// TransactionStore is the storage surface the worker depends on.
type TransactionStore interface {
	GetTransaction(ctx context.Context, id string) (*core.Transaction, error)
	GetPendingExportTransactions(ctx context.Context, limit int) ([]storage.PendingExportTransaction, error)
	MarkExported(ctx context.Context, id string) error
	MarkExportError(ctx context.Context, id string) error
}

// ExportWorker writes transactions to the external ledger, driven by AMQP
// events with a periodic backlog sweep as backup.
type ExportWorker struct {
	store     TransactionStore
	ledger    ledger.Writer
	batchSize int
}

func NewExportWorker(store TransactionStore, ledger ledger.Writer, batchSize int) *ExportWorker {
	return &ExportWorker{
		store:     store,
		ledger:    ledger,
		batchSize: batchSize,
	}
}

// HandleEventMessage processes a single transaction event from AMQP
func (w *ExportWorker) HandleEventMessage(ctx context.Context, msg *amqp.TransactionEventMessage) error {
	slog.InfoContext(ctx, "Processing transaction event",
		"transaction_id", msg.TransactionID)

	transaction, err := w.store.GetTransaction(ctx, msg.TransactionID)
	if errors.Is(err, storage.ErrNotFound) {
		// Deleted before the event was consumed. Nothing to export.
		slog.WarnContext(ctx, "Transaction no longer exists, skipping export",
			"transaction_id", msg.TransactionID)
		return nil
	}
	if err != nil {
		return fmt.Errorf("get transaction from storage: %w", err)
	}

	if err := w.exportTransaction(ctx, *transaction); err != nil {
		return fmt.Errorf("export transaction: %w", err)
	}
	return nil
}

// ProcessPendingTransactions exports any transactions not yet written to
// the ledger. This is a backup mechanism in case AMQP messages are lost.
func (w *ExportWorker) ProcessPendingTransactions(ctx context.Context) error {
	pending, err := w.store.GetPendingExportTransactions(ctx, w.batchSize)
	if err != nil {
		return fmt.Errorf("get pending transactions: %w", err)
	}

	if len(pending) == 0 {
		return nil
	}

	slog.InfoContext(ctx, "Processing pending transactions", "count", len(pending))

	for _, p := range pending {
		transaction, err := w.store.GetTransaction(ctx, p.ID)
		if err != nil {
			slog.ErrorContext(ctx, "Failed to get transaction", "id", p.ID, "error", err)
			if err := w.store.MarkExportError(ctx, p.ID); err != nil {
				slog.ErrorContext(ctx, "Failed to mark export error", "id", p.ID, "error", err)
			}
			continue
		}

		if err := w.exportTransaction(ctx, *transaction); err != nil {
			slog.ErrorContext(ctx, "Failed to export transaction", "id", p.ID, "error", err)
			continue
		}
	}

	return nil
}

// StartupExportCheck drains the pending backlog at worker startup. This is
// useful to recover from missed AMQP messages or worker downtime.
func (w *ExportWorker) StartupExportCheck(ctx context.Context) error {
	// Get a larger batch for startup check
	pending, err := w.store.GetPendingExportTransactions(ctx, w.batchSize*5)
	if err != nil {
		return fmt.Errorf("get pending transactions for startup check: %w", err)
	}

	if len(pending) == 0 {
		slog.InfoContext(ctx, "No pending transactions found on startup")
		return nil
	}

	slog.InfoContext(ctx, "Found pending transactions on startup, processing...",
		"count", len(pending))

	successCount := 0
	errorCount := 0

	for _, p := range pending {
		transaction, err := w.store.GetTransaction(ctx, p.ID)
		if err != nil {
			slog.ErrorContext(ctx, "Failed to get transaction for startup export",
				"id", p.ID, "error", err)
			if err := w.store.MarkExportError(ctx, p.ID); err != nil {
				slog.ErrorContext(ctx, "Failed to mark export error", "id", p.ID, "error", err)
			}
			errorCount++
			continue
		}

		if err := w.exportTransaction(ctx, *transaction); err != nil {
			slog.ErrorContext(ctx, "Failed to export transaction during startup",
				"id", p.ID, "error", err)
			errorCount++
			continue
		}

		successCount++
	}

	slog.InfoContext(ctx, "Startup export completed",
		"total", len(pending),
		"exported", successCount,
		"errors", errorCount)

	return nil
}

func (w *ExportWorker) exportTransaction(ctx context.Context, t core.Transaction) error {
	ref, err := w.ledger.Append(ctx, t)
	if err != nil {
		if markErr := w.store.MarkExportError(ctx, t.ID); markErr != nil {
			slog.ErrorContext(ctx, "Failed to mark export error", "id", t.ID, "error", markErr)
		}
		return fmt.Errorf("append to ledger: %w", err)
	}

	if err := w.store.MarkExported(ctx, t.ID); err != nil {
		slog.ErrorContext(ctx, "Failed to mark as exported", "id", t.ID, "error", err)
		// Don't return error here - the export actually worked
	}

	fields := log.NewFields().
		WithComponent(log.ComponentWorker).
		WithOperation(log.OpExport).
		WithTransaction(t.ID, t.Amount.Cents, t.CategoryName)
	fields[log.FieldLedgerRef] = ref
	slog.InfoContext(ctx, "Successfully exported transaction", fields.ToSlice()...)

	return nil
}
