// Package worker consumes queue messages and performs the slow external
// work the API process deliberately avoids: Google Sheets export and
// receipt object cleanup.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"fintrack/internal/amqp"
	"fintrack/internal/storage"
)

// TransactionExporter appends one transaction row to the external backup.
type TransactionExporter interface {
	AppendTransaction(ctx context.Context, t storage.TransactionWithCategory) error
}

// ObjectDeleter removes an unreferenced receipt object.
type ObjectDeleter interface {
	Delete(ctx context.Context, key string) error
}

// Store is the storage surface the worker needs.
type Store interface {
	GetTransactionAnyUser(ctx context.Context, id string) (storage.TransactionWithCategory, error)
	GetPendingSyncTransactions(ctx context.Context, limit int) ([]storage.TransactionWithCategory, error)
	MarkTransactionSynced(ctx context.Context, id string) error
	MarkTransactionSyncError(ctx context.Context, id string) error
}

// Worker dispatches queue messages to the exporter and the object store.
type Worker struct {
	store     Store
	exporter  TransactionExporter
	objects   ObjectDeleter
	batchSize int
}

func New(store Store, exporter TransactionExporter, objects ObjectDeleter, batchSize int) *Worker {
	return &Worker{
		store:     store,
		exporter:  exporter,
		objects:   objects,
		batchSize: batchSize,
	}
}

// Handle processes one queue message. Errors cause a nack-with-requeue
// upstream, except for states that redelivery can never fix.
func (w *Worker) Handle(ctx context.Context, msg *amqp.Message) error {
	switch msg.Kind {
	case amqp.KindTransactionSync:
		return w.handleSync(ctx, msg.TransactionID)
	case amqp.KindReceiptCleanup:
		return w.handleCleanup(ctx, msg.ObjectKey)
	default:
		return fmt.Errorf("unknown message kind: %q", msg.Kind)
	}
}

func (w *Worker) handleSync(ctx context.Context, transactionID string) error {
	slog.InfoContext(ctx, "Processing sync message", "transaction_id", transactionID)

	t, err := w.store.GetTransactionAnyUser(ctx, transactionID)
	if errors.Is(err, storage.ErrNotFound) {
		// Deleted between publish and delivery. Requeueing cannot help.
		slog.WarnContext(ctx, "Transaction gone, skipping export", "transaction_id", transactionID)
		return nil
	}
	if err != nil {
		return fmt.Errorf("get transaction: %w", err)
	}

	return w.export(ctx, t)
}

func (w *Worker) handleCleanup(ctx context.Context, objectKey string) error {
	slog.InfoContext(ctx, "Processing receipt cleanup message", "object_key", objectKey)

	if w.objects == nil {
		slog.WarnContext(ctx, "No object store configured, skipping cleanup", "object_key", objectKey)
		return nil
	}
	if err := w.objects.Delete(ctx, objectKey); err != nil {
		return fmt.Errorf("delete receipt object: %w", err)
	}

	slog.InfoContext(ctx, "Deleted receipt object", "object_key", objectKey)
	return nil
}

// StartupSyncCheck exports transactions still marked pending. It recovers
// from missed queue messages or worker downtime.
func (w *Worker) StartupSyncCheck(ctx context.Context) error {
	pending, err := w.store.GetPendingSyncTransactions(ctx, w.batchSize*5)
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
	for _, t := range pending {
		if err := w.export(ctx, t); err != nil {
			slog.ErrorContext(ctx, "Failed to export transaction during startup",
				"transaction_id", t.ID, "error", err)
			errorCount++
			continue
		}
		successCount++
	}

	slog.InfoContext(ctx, "Startup sync completed",
		"total", len(pending),
		"synced", successCount,
		"errors", errorCount)

	return nil
}

func (w *Worker) export(ctx context.Context, t storage.TransactionWithCategory) error {
	if w.exporter == nil {
		slog.WarnContext(ctx, "No exporter configured, skipping sync", "transaction_id", t.ID)
		return nil
	}

	if err := w.exporter.AppendTransaction(ctx, t); err != nil {
		if markErr := w.store.MarkTransactionSyncError(ctx, t.ID); markErr != nil {
			slog.ErrorContext(ctx, "Failed to mark sync error",
				"transaction_id", t.ID, "error", markErr)
		}
		return fmt.Errorf("append to sheets: %w", err)
	}

	if err := w.store.MarkTransactionSynced(ctx, t.ID); err != nil {
		// The export itself worked; the pending row will be retried and
		// show up as a duplicate, which the ID column makes visible.
		slog.ErrorContext(ctx, "Failed to mark as synced",
			"transaction_id", t.ID, "error", err)
	}

	slog.InfoContext(ctx, "Exported transaction",
		"transaction_id", t.ID,
		"description", t.Description,
		"type", t.Type)

	return nil
}
