package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"fintrack/internal/apperr"
	"fintrack/internal/core"
	"fintrack/internal/storage"
)

// TransactionStore is the storage surface the transaction service needs.
type TransactionStore interface {
	CreateTransaction(ctx context.Context, t core.Transaction) error
	ListTransactions(ctx context.Context, userID string, f storage.TransactionFilter) ([]storage.TransactionWithCategory, error)
	GetTransaction(ctx context.Context, id, userID string) (storage.TransactionWithCategory, error)
	UpdateTransaction(ctx context.Context, t core.Transaction) error
	DeleteTransaction(ctx context.Context, id, userID string) error
	AmountsByType(ctx context.Context, userID string) ([]storage.AmountByType, error)
	DatedAmountsInRange(ctx context.Context, userID string, from, to time.Time) ([]storage.DatedAmount, error)
}

// TransactionService orchestrates transaction CRUD and aggregation.
type TransactionService struct {
	store  TransactionStore
	events Events
}

func NewTransactionService(store TransactionStore, events Events) *TransactionService {
	return &TransactionService{
		store:  store,
		events: events,
	}
}

// Summary holds decimal-exact totals across all of a user's transactions.
// Types with no transactions report zero.
type Summary struct {
	TotalExpenses decimal.Decimal `json:"totalExpenses"`
	TotalIncome   decimal.Decimal `json:"totalIncome"`
	Balance       decimal.Decimal `json:"balance"`
}

// MonthPoint is one calendar month in a monthly series. Month is the first
// instant of the month in UTC.
type MonthPoint struct {
	Month    time.Time       `json:"month"`
	Income   decimal.Decimal `json:"income"`
	Expenses decimal.Decimal `json:"expenses"`
}

func (s *TransactionService) Create(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	t.ID = uuid.NewString()
	if err := t.Validate(); err != nil {
		return core.Transaction{}, apperr.ValidationFrom(err)
	}
	if err := s.store.CreateTransaction(ctx, t); err != nil {
		return core.Transaction{}, fmt.Errorf("create transaction: %w", err)
	}

	s.notifyChanged(ctx, t.ID)

	slog.InfoContext(ctx, "Transaction created",
		"id", t.ID,
		"description", t.Description,
		"amount", core.FormatAmount(t.Amount),
		"type", t.Type)

	return t, nil
}

func (s *TransactionService) List(ctx context.Context, userID string, f storage.TransactionFilter) ([]storage.TransactionWithCategory, error) {
	return s.store.ListTransactions(ctx, userID, f)
}

func (s *TransactionService) Get(ctx context.Context, id, userID string) (storage.TransactionWithCategory, error) {
	t, err := s.store.GetTransaction(ctx, id, userID)
	if errors.Is(err, storage.ErrNotFound) {
		return storage.TransactionWithCategory{}, apperr.NotFound("transaction not found")
	}
	return t, err
}

func (s *TransactionService) Update(ctx context.Context, t core.Transaction) error {
	if err := t.Validate(); err != nil {
		return apperr.ValidationFrom(err)
	}
	err := s.store.UpdateTransaction(ctx, t)
	if errors.Is(err, storage.ErrNotFound) {
		return apperr.NotFound("transaction not found")
	}
	if err != nil {
		return err
	}

	s.notifyChanged(ctx, t.ID)
	return nil
}

// Delete removes a transaction. When the row carries a receipt, its object
// is scheduled for cleanup after the delete succeeds.
func (s *TransactionService) Delete(ctx context.Context, id, userID string) error {
	t, err := s.Get(ctx, id, userID)
	if err != nil {
		return err
	}

	if err := s.store.DeleteTransaction(ctx, id, userID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return apperr.NotFound("transaction not found")
		}
		return err
	}

	if t.ReceiptFile != "" && s.events != nil {
		if err := s.events.ReceiptRemoved(ctx, t.ReceiptFile); err != nil {
			slog.ErrorContext(ctx, "Failed to publish receipt cleanup message",
				"transaction_id", id, "object_key", t.ReceiptFile, "error", err)
		}
	}

	return nil
}

// GetSummary accumulates totals per type with decimal arithmetic.
func (s *TransactionService) GetSummary(ctx context.Context, userID string) (Summary, error) {
	amounts, err := s.store.AmountsByType(ctx, userID)
	if err != nil {
		return Summary{}, fmt.Errorf("get summary: %w", err)
	}

	summary := Summary{
		TotalExpenses: decimal.Zero,
		TotalIncome:   decimal.Zero,
	}
	for _, a := range amounts {
		switch a.Type {
		case core.TypeExpense:
			summary.TotalExpenses = summary.TotalExpenses.Add(a.Amount)
		case core.TypeIncome:
			summary.TotalIncome = summary.TotalIncome.Add(a.Amount)
		}
	}
	summary.Balance = summary.TotalIncome.Sub(summary.TotalExpenses)
	return summary, nil
}

// MonthlySeries buckets the last months calendar months into income and
// expense totals. Months with no transactions report zero, so the series
// is always contiguous and months long.
func (s *TransactionService) MonthlySeries(ctx context.Context, userID string, months int, now time.Time) ([]MonthPoint, error) {
	if months <= 0 {
		return []MonthPoint{}, nil
	}

	end := firstOfMonth(now).AddDate(0, 1, 0)
	start := end.AddDate(0, -months, 0)

	amounts, err := s.store.DatedAmountsInRange(ctx, userID, start, end)
	if err != nil {
		return nil, fmt.Errorf("monthly series: %w", err)
	}

	series := make([]MonthPoint, months)
	index := map[time.Time]int{}
	for i := range series {
		month := start.AddDate(0, i, 0)
		series[i] = MonthPoint{
			Month:    month,
			Income:   decimal.Zero,
			Expenses: decimal.Zero,
		}
		index[month] = i
	}

	for _, a := range amounts {
		i, ok := index[firstOfMonth(a.Date)]
		if !ok {
			continue
		}
		switch a.Type {
		case core.TypeIncome:
			series[i].Income = series[i].Income.Add(a.Amount)
		case core.TypeExpense:
			series[i].Expenses = series[i].Expenses.Add(a.Amount)
		}
	}

	return series, nil
}

func (s *TransactionService) notifyChanged(ctx context.Context, id string) {
	if s.events == nil {
		return
	}
	if err := s.events.TransactionChanged(ctx, id); err != nil {
		slog.ErrorContext(ctx, "Failed to publish sync message",
			"transaction_id", id, "error", err)
	}
}

func firstOfMonth(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), 1, 0, 0, 0, 0, time.UTC)
}
