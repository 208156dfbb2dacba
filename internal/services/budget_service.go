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

// Rendering fallbacks for budgets whose category row was deleted.
const (
	unknownCategoryName  = "Unknown"
	unknownCategoryColor = "#9ca3af"
)

// BudgetStore is the storage surface the budget service needs.
type BudgetStore interface {
	CreateBudget(ctx context.Context, b core.Budget) error
	ListBudgets(ctx context.Context, userID string) ([]storage.BudgetWithCategory, error)
	GetBudget(ctx context.Context, id, userID string) (storage.BudgetWithCategory, error)
	BudgetExistsForCategory(ctx context.Context, userID, categoryID string) (bool, error)
	UpdateBudgetAmount(ctx context.Context, id, userID string, amount decimal.Decimal) error
	DeleteBudget(ctx context.Context, id, userID string) error
	ExpenseAmountsByCategory(ctx context.Context, userID string, categoryIDs []string, from, to time.Time) ([]storage.CategoryAmount, error)
}

// BudgetService manages per-category monthly budgets and their actuals.
type BudgetService struct {
	store BudgetStore
}

func NewBudgetService(store BudgetStore) *BudgetService {
	return &BudgetService{store: store}
}

// BudgetStatus is a budget joined with the current calendar month's spend.
type BudgetStatus struct {
	ID            string          `json:"id"`
	CategoryID    string          `json:"categoryId"`
	CategoryName  string          `json:"categoryName"`
	CategoryColor string          `json:"categoryColor"`
	Amount        decimal.Decimal `json:"amount"`
	Actual        decimal.Decimal `json:"actual"`
	Remaining     decimal.Decimal `json:"remaining"`
	Percentage    float64         `json:"percentage"`
}

// BudgetSummary aggregates all budgets for the current month.
type BudgetSummary struct {
	TotalBudget decimal.Decimal `json:"totalBudget"`
	TotalSpent  decimal.Decimal `json:"totalSpent"`
	Remaining   decimal.Decimal `json:"remaining"`
	Percentage  float64         `json:"percentage"`
}

// Create adds a budget for a category. One budget per category per user:
// a duplicate is reported as a conflict. The unique index underneath closes
// the pre-check's race window.
func (s *BudgetService) Create(ctx context.Context, b core.Budget) (core.Budget, error) {
	b.ID = uuid.NewString()
	if err := b.Validate(); err != nil {
		return core.Budget{}, apperr.ValidationFrom(err)
	}

	exists, err := s.store.BudgetExistsForCategory(ctx, b.UserID, b.CategoryID)
	if err != nil {
		return core.Budget{}, fmt.Errorf("check existing budget: %w", err)
	}
	if exists {
		return core.Budget{}, apperr.Conflict("budget already exists for this category")
	}

	if err := s.store.CreateBudget(ctx, b); err != nil {
		return core.Budget{}, fmt.Errorf("create budget: %w", err)
	}

	slog.InfoContext(ctx, "Budget created",
		"id", b.ID,
		"category_id", b.CategoryID,
		"amount", core.FormatAmount(b.Amount))

	return b, nil
}

// ListWithActuals joins each budget against the sum of its category's
// expenses dated within the current calendar month.
func (s *BudgetService) ListWithActuals(ctx context.Context, userID string, now time.Time) ([]BudgetStatus, error) {
	budgets, err := s.store.ListBudgets(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}

	from := firstOfMonth(now)
	to := from.AddDate(0, 1, 0)

	categoryIDs := make([]string, 0, len(budgets))
	for _, b := range budgets {
		categoryIDs = append(categoryIDs, b.CategoryID)
	}

	amounts, err := s.store.ExpenseAmountsByCategory(ctx, userID, categoryIDs, from, to)
	if err != nil {
		return nil, fmt.Errorf("load monthly actuals: %w", err)
	}

	actuals := map[string]decimal.Decimal{}
	for _, a := range amounts {
		actuals[a.CategoryID] = actuals[a.CategoryID].Add(a.Amount)
	}

	statuses := make([]BudgetStatus, 0, len(budgets))
	for _, b := range budgets {
		statuses = append(statuses, newBudgetStatus(b, actuals[b.CategoryID]))
	}
	return statuses, nil
}

// GetSummary totals all budgets and their spend for the current month.
func (s *BudgetService) GetSummary(ctx context.Context, userID string, now time.Time) (BudgetSummary, error) {
	statuses, err := s.ListWithActuals(ctx, userID, now)
	if err != nil {
		return BudgetSummary{}, err
	}

	summary := BudgetSummary{
		TotalBudget: decimal.Zero,
		TotalSpent:  decimal.Zero,
	}
	for _, st := range statuses {
		summary.TotalBudget = summary.TotalBudget.Add(st.Amount)
		summary.TotalSpent = summary.TotalSpent.Add(st.Actual)
	}
	summary.Remaining = summary.TotalBudget.Sub(summary.TotalSpent)
	summary.Percentage = percentage(summary.TotalSpent, summary.TotalBudget)
	return summary, nil
}

func (s *BudgetService) UpdateAmount(ctx context.Context, id, userID string, amount decimal.Decimal) error {
	if err := core.ValidateAmount(amount); err != nil {
		return apperr.ValidationFrom(err)
	}
	err := s.store.UpdateBudgetAmount(ctx, id, userID, amount)
	if errors.Is(err, storage.ErrNotFound) {
		return apperr.NotFound("budget not found")
	}
	return err
}

func (s *BudgetService) Delete(ctx context.Context, id, userID string) error {
	err := s.store.DeleteBudget(ctx, id, userID)
	if errors.Is(err, storage.ErrNotFound) {
		return apperr.NotFound("budget not found")
	}
	return err
}

func newBudgetStatus(b storage.BudgetWithCategory, actual decimal.Decimal) BudgetStatus {
	name, color := b.CategoryName, b.CategoryColor
	if name == "" {
		name, color = unknownCategoryName, unknownCategoryColor
	}
	return BudgetStatus{
		ID:            b.ID,
		CategoryID:    b.CategoryID,
		CategoryName:  name,
		CategoryColor: color,
		Amount:        b.Amount,
		Actual:        actual,
		Remaining:     b.Amount.Sub(actual),
		Percentage:    percentage(actual, b.Amount),
	}
}

// percentage guards the zero-amount case so an empty budget never reports
// a non-finite value.
func percentage(spent, total decimal.Decimal) float64 {
	if total.IsZero() {
		return 0
	}
	pct, _ := spent.Div(total).Mul(decimal.NewFromInt(100)).Float64()
	return pct
}
