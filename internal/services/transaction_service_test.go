package services

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"fintrack/internal/core"
	"fintrack/internal/storage"
)

type fakeTransactionStore struct {
	transactions map[string]storage.TransactionWithCategory
	amounts      []storage.AmountByType
	dated        []storage.DatedAmount
}

func newFakeTransactionStore() *fakeTransactionStore {
	return &fakeTransactionStore{transactions: map[string]storage.TransactionWithCategory{}}
}

func (s *fakeTransactionStore) CreateTransaction(_ context.Context, t core.Transaction) error {
	s.transactions[t.ID] = storage.TransactionWithCategory{Transaction: t}
	return nil
}

func (s *fakeTransactionStore) ListTransactions(_ context.Context, userID string, _ storage.TransactionFilter) ([]storage.TransactionWithCategory, error) {
	out := []storage.TransactionWithCategory{}
	for _, t := range s.transactions {
		if t.UserID == userID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (s *fakeTransactionStore) GetTransaction(_ context.Context, id, userID string) (storage.TransactionWithCategory, error) {
	t, ok := s.transactions[id]
	if !ok || t.UserID != userID {
		return storage.TransactionWithCategory{}, storage.ErrNotFound
	}
	return t, nil
}

func (s *fakeTransactionStore) UpdateTransaction(_ context.Context, t core.Transaction) error {
	existing, ok := s.transactions[t.ID]
	if !ok {
		return storage.ErrNotFound
	}
	existing.Transaction = t
	s.transactions[t.ID] = existing
	return nil
}

func (s *fakeTransactionStore) DeleteTransaction(_ context.Context, id, userID string) error {
	t, ok := s.transactions[id]
	if !ok || t.UserID != userID {
		return storage.ErrNotFound
	}
	delete(s.transactions, id)
	return nil
}

func (s *fakeTransactionStore) AmountsByType(_ context.Context, _ string) ([]storage.AmountByType, error) {
	return s.amounts, nil
}

func (s *fakeTransactionStore) DatedAmountsInRange(_ context.Context, _ string, from, to time.Time) ([]storage.DatedAmount, error) {
	out := []storage.DatedAmount{}
	for _, a := range s.dated {
		if !a.Date.Before(from) && a.Date.Before(to) {
			out = append(out, a)
		}
	}
	return out, nil
}

func TestGetSummary(t *testing.T) {
	store := newFakeTransactionStore()
	store.amounts = []storage.AmountByType{
		{Type: core.TypeExpense, Amount: decimal.RequireFromString("10.50")},
		{Type: core.TypeExpense, Amount: decimal.RequireFromString("4.25")},
		{Type: core.TypeIncome, Amount: decimal.RequireFromString("100.00")},
	}
	svc := NewTransactionService(store, nil)

	summary, err := svc.GetSummary(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("GetSummary() error = %v", err)
	}

	if want := decimal.RequireFromString("14.75"); !summary.TotalExpenses.Equal(want) {
		t.Errorf("expenses = %s, want %s", summary.TotalExpenses, want)
	}
	if want := decimal.RequireFromString("100"); !summary.TotalIncome.Equal(want) {
		t.Errorf("income = %s, want %s", summary.TotalIncome, want)
	}
	if want := decimal.RequireFromString("85.25"); !summary.Balance.Equal(want) {
		t.Errorf("balance = %s, want %s", summary.Balance, want)
	}
}

func TestGetSummaryEmptyReportsZero(t *testing.T) {
	svc := NewTransactionService(newFakeTransactionStore(), nil)

	summary, err := svc.GetSummary(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("GetSummary() error = %v", err)
	}
	if !summary.TotalExpenses.IsZero() || !summary.TotalIncome.IsZero() || !summary.Balance.IsZero() {
		t.Errorf("expected all-zero summary, got %+v", summary)
	}
}

func TestMonthlySeriesZeroFillsEmptyMonths(t *testing.T) {
	store := newFakeTransactionStore()
	store.dated = []storage.DatedAmount{
		{Date: time.Date(2026, 6, 10, 0, 0, 0, 0, time.UTC), Type: core.TypeExpense, Amount: decimal.RequireFromString("20")},
		{Date: time.Date(2026, 6, 20, 0, 0, 0, 0, time.UTC), Type: core.TypeExpense, Amount: decimal.RequireFromString("5")},
		{Date: time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC), Type: core.TypeIncome, Amount: decimal.RequireFromString("300")},
	}
	svc := NewTransactionService(store, nil)

	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	series, err := svc.MonthlySeries(context.Background(), "user-1", 4, now)
	if err != nil {
		t.Fatalf("MonthlySeries() error = %v", err)
	}
	if len(series) != 4 {
		t.Fatalf("series length = %d, want 4", len(series))
	}

	// May June July August, contiguous.
	for i, wantMonth := range []time.Month{time.May, time.June, time.July, time.August} {
		if series[i].Month.Month() != wantMonth {
			t.Errorf("series[%d] month = %v, want %v", i, series[i].Month.Month(), wantMonth)
		}
	}

	if !series[0].Expenses.IsZero() || !series[0].Income.IsZero() {
		t.Errorf("empty month should be zero, got %+v", series[0])
	}
	if want := decimal.RequireFromString("25"); !series[1].Expenses.Equal(want) {
		t.Errorf("june expenses = %s, want %s", series[1].Expenses, want)
	}
	if !series[2].Expenses.IsZero() {
		t.Errorf("july expenses = %s, want 0", series[2].Expenses)
	}
	if want := decimal.RequireFromString("300"); !series[3].Income.Equal(want) {
		t.Errorf("august income = %s, want %s", series[3].Income, want)
	}
}

func TestCreatePublishesSyncEvent(t *testing.T) {
	store := newFakeTransactionStore()
	events := &fakeEvents{}
	svc := NewTransactionService(store, events)

	tx, err := svc.Create(context.Background(), core.Transaction{
		Amount:      decimal.RequireFromString("12.00"),
		Description: "groceries",
		Date:        time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC),
		Type:        core.TypeExpense,
		UserID:      "user-1",
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if len(events.changed) != 1 || events.changed[0] != tx.ID {
		t.Errorf("expected sync event for %s, got %v", tx.ID, events.changed)
	}
}

func TestDeleteSchedulesReceiptCleanup(t *testing.T) {
	store := newFakeTransactionStore()
	store.transactions["tx-1"] = storage.TransactionWithCategory{
		Transaction: core.Transaction{
			ID:          "tx-1",
			UserID:      "user-1",
			ReceiptFile: "receipts/user-1/tx-1/scan.pdf",
		},
	}
	events := &fakeEvents{}
	svc := NewTransactionService(store, events)

	if err := svc.Delete(context.Background(), "tx-1", "user-1"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if len(events.removed) != 1 || events.removed[0] != "receipts/user-1/tx-1/scan.pdf" {
		t.Errorf("expected cleanup event for receipt, got %v", events.removed)
	}
	if _, ok := store.transactions["tx-1"]; ok {
		t.Error("transaction should be deleted")
	}
}

func TestDeleteWithoutReceiptPublishesNothing(t *testing.T) {
	store := newFakeTransactionStore()
	store.transactions["tx-1"] = storage.TransactionWithCategory{
		Transaction: core.Transaction{ID: "tx-1", UserID: "user-1"},
	}
	events := &fakeEvents{}
	svc := NewTransactionService(store, events)

	if err := svc.Delete(context.Background(), "tx-1", "user-1"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if len(events.removed) != 0 {
		t.Errorf("unexpected cleanup events: %v", events.removed)
	}
}
