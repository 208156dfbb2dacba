package services

import "context"

// Events publishes async work for the worker process. Publishing is best
// effort: callers log failures and never fail the user-facing operation,
// since the durable state already lives in SQLite.
type Events interface {
	// TransactionChanged signals that a transaction was created or updated
	// and should be (re-)exported.
	TransactionChanged(ctx context.Context, transactionID string) error

	// ReceiptRemoved signals that an object-store receipt is no longer
	// referenced and can be deleted.
	ReceiptRemoved(ctx context.Context, objectKey string) error
}
