package worker

import (
	"context"
	"errors"
	"testing"

	"fintrack/internal/amqp"
	"fintrack/internal/core"
	"fintrack/internal/storage"
)

type fakeStore struct {
	transactions map[string]storage.TransactionWithCategory
	synced       []string
	syncErrors   []string
}

func newFakeStore(transactions ...storage.TransactionWithCategory) *fakeStore {
	s := &fakeStore{transactions: map[string]storage.TransactionWithCategory{}}
	for _, t := range transactions {
		s.transactions[t.ID] = t
	}
	return s
}

func (s *fakeStore) GetTransactionAnyUser(_ context.Context, id string) (storage.TransactionWithCategory, error) {
	t, ok := s.transactions[id]
	if !ok {
		return storage.TransactionWithCategory{}, storage.ErrNotFound
	}
	return t, nil
}

func (s *fakeStore) GetPendingSyncTransactions(_ context.Context, _ int) ([]storage.TransactionWithCategory, error) {
	out := []storage.TransactionWithCategory{}
	for _, t := range s.transactions {
		out = append(out, t)
	}
	return out, nil
}

func (s *fakeStore) MarkTransactionSynced(_ context.Context, id string) error {
	s.synced = append(s.synced, id)
	return nil
}

func (s *fakeStore) MarkTransactionSyncError(_ context.Context, id string) error {
	s.syncErrors = append(s.syncErrors, id)
	return nil
}

type fakeExporter struct {
	appended []string
	fail     bool
}

func (e *fakeExporter) AppendTransaction(_ context.Context, t storage.TransactionWithCategory) error {
	if e.fail {
		return errors.New("sheets unavailable")
	}
	e.appended = append(e.appended, t.ID)
	return nil
}

type fakeDeleter struct {
	deleted []string
}

func (d *fakeDeleter) Delete(_ context.Context, key string) error {
	d.deleted = append(d.deleted, key)
	return nil
}

func pendingTransaction(id string) storage.TransactionWithCategory {
	return storage.TransactionWithCategory{
		Transaction: core.Transaction{
			ID:          id,
			Description: "coffee",
			Type:        core.TypeExpense,
			UserID:      "user-1",
		},
	}
}

func TestHandleSyncExportsAndMarks(t *testing.T) {
	store := newFakeStore(pendingTransaction("tx-1"))
	exporter := &fakeExporter{}
	w := New(store, exporter, &fakeDeleter{}, 10)

	msg := amqp.NewTransactionSyncMessage("tx-1")
	if err := w.Handle(context.Background(), msg); err != nil {
		t.Fatalf("Handle() error = %v", err)
	}

	if len(exporter.appended) != 1 || exporter.appended[0] != "tx-1" {
		t.Errorf("appended = %v, want [tx-1]", exporter.appended)
	}
	if len(store.synced) != 1 || store.synced[0] != "tx-1" {
		t.Errorf("synced = %v, want [tx-1]", store.synced)
	}
}

func TestHandleSyncExportFailureMarksError(t *testing.T) {
	store := newFakeStore(pendingTransaction("tx-1"))
	w := New(store, &fakeExporter{fail: true}, &fakeDeleter{}, 10)

	err := w.Handle(context.Background(), amqp.NewTransactionSyncMessage("tx-1"))
	if err == nil {
		t.Fatal("expected error so the message is requeued")
	}
	if len(store.syncErrors) != 1 || store.syncErrors[0] != "tx-1" {
		t.Errorf("sync errors = %v, want [tx-1]", store.syncErrors)
	}
}

func TestHandleSyncMissingTransactionIsNotAnError(t *testing.T) {
	store := newFakeStore()
	exporter := &fakeExporter{}
	w := New(store, exporter, &fakeDeleter{}, 10)

	// Requeueing a message for a deleted row would loop forever.
	if err := w.Handle(context.Background(), amqp.NewTransactionSyncMessage("tx-gone")); err != nil {
		t.Fatalf("Handle() error = %v", err)
	}
	if len(exporter.appended) != 0 {
		t.Errorf("unexpected exports: %v", exporter.appended)
	}
}

func TestHandleCleanupDeletesObject(t *testing.T) {
	deleter := &fakeDeleter{}
	w := New(newFakeStore(), &fakeExporter{}, deleter, 10)

	msg := amqp.NewReceiptCleanupMessage("receipts/user-1/tx-1/scan.pdf")
	if err := w.Handle(context.Background(), msg); err != nil {
		t.Fatalf("Handle() error = %v", err)
	}
	if len(deleter.deleted) != 1 || deleter.deleted[0] != "receipts/user-1/tx-1/scan.pdf" {
		t.Errorf("deleted = %v", deleter.deleted)
	}
}

func TestHandleUnknownKind(t *testing.T) {
	w := New(newFakeStore(), &fakeExporter{}, &fakeDeleter{}, 10)

	err := w.Handle(context.Background(), &amqp.Message{Kind: "transaction.compact"})
	if err == nil {
		t.Fatal("expected error for unknown message kind")
	}
}

func TestStartupSyncCheck(t *testing.T) {
	store := newFakeStore(pendingTransaction("tx-1"), pendingTransaction("tx-2"))
	exporter := &fakeExporter{}
	w := New(store, exporter, &fakeDeleter{}, 10)

	if err := w.StartupSyncCheck(context.Background()); err != nil {
		t.Fatalf("StartupSyncCheck() error = %v", err)
	}
	if len(exporter.appended) != 2 {
		t.Errorf("appended = %v, want both pending transactions", exporter.appended)
	}
}
