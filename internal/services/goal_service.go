package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"fintrack/internal/apperr"
	"fintrack/internal/core"
	"fintrack/internal/storage"
)

// Defaults applied when a goal is created without an icon or color.
const (
	defaultGoalIcon  = "Target"
	defaultGoalColor = "#6366f1"
)

// GoalStore is the storage surface the savings goal service needs.
type GoalStore interface {
	CreateGoal(ctx context.Context, g core.SavingsGoal) error
	ListGoals(ctx context.Context, userID string, activeOnly bool) ([]core.SavingsGoal, error)
	GetGoal(ctx context.Context, id, userID string) (core.SavingsGoal, error)
	UpdateGoal(ctx context.Context, g core.SavingsGoal) error
	DeleteGoal(ctx context.Context, id, userID string) error
	AddGoalFunds(ctx context.Context, id, userID string, amount decimal.Decimal) (decimal.Decimal, error)
}

// GoalService manages savings goals and their funding.
type GoalService struct {
	store GoalStore
}

func NewGoalService(store GoalStore) *GoalService {
	return &GoalService{store: store}
}

// FundingResult is returned after a deposit.
type FundingResult struct {
	NewAmount  decimal.Decimal `json:"newAmount"`
	Percentage float64         `json:"percentage"`
	Completed  bool            `json:"completed"`
}

// GoalSummary aggregates a user's goals.
type GoalSummary struct {
	TotalSaved     decimal.Decimal `json:"totalSaved"`
	TotalTarget    decimal.Decimal `json:"totalTarget"`
	ActiveCount    int             `json:"activeCount"`
	CompletedCount int             `json:"completedCount"`
}

func (s *GoalService) Create(ctx context.Context, g core.SavingsGoal) (core.SavingsGoal, error) {
	g.ID = uuid.NewString()
	g.CurrentAmount = decimal.Zero
	g.IsActive = true
	if g.Icon == "" {
		g.Icon = defaultGoalIcon
	}
	if g.Color == "" {
		g.Color = defaultGoalColor
	}
	if err := g.Validate(); err != nil {
		return core.SavingsGoal{}, apperr.ValidationFrom(err)
	}
	if err := s.store.CreateGoal(ctx, g); err != nil {
		return core.SavingsGoal{}, fmt.Errorf("create savings goal: %w", err)
	}

	slog.InfoContext(ctx, "Savings goal created",
		"id", g.ID,
		"name", g.Name,
		"target", core.FormatAmount(g.TargetAmount))

	return g, nil
}

// List returns goals with incomplete ones first, nearest target date first.
func (s *GoalService) List(ctx context.Context, userID string, activeOnly bool) ([]core.SavingsGoal, error) {
	return s.store.ListGoals(ctx, userID, activeOnly)
}

func (s *GoalService) Get(ctx context.Context, id, userID string) (core.SavingsGoal, error) {
	g, err := s.store.GetGoal(ctx, id, userID)
	if errors.Is(err, storage.ErrNotFound) {
		return core.SavingsGoal{}, apperr.NotFound("savings goal not found")
	}
	return g, err
}

func (s *GoalService) Update(ctx context.Context, g core.SavingsGoal) error {
	if err := g.Validate(); err != nil {
		return apperr.ValidationFrom(err)
	}
	err := s.store.UpdateGoal(ctx, g)
	if errors.Is(err, storage.ErrNotFound) {
		return apperr.NotFound("savings goal not found")
	}
	return err
}

func (s *GoalService) Delete(ctx context.Context, id, userID string) error {
	err := s.store.DeleteGoal(ctx, id, userID)
	if errors.Is(err, storage.ErrNotFound) {
		return apperr.NotFound("savings goal not found")
	}
	return err
}

// AddFunds applies a strictly positive deposit and returns the new balance.
// Balances only ever grow through this path; withdrawals are not a thing.
func (s *GoalService) AddFunds(ctx context.Context, id, userID string, amount decimal.Decimal) (FundingResult, error) {
	if err := core.ValidateAmount(amount); err != nil {
		return FundingResult{}, apperr.ValidationFrom(err)
	}

	newAmount, err := s.store.AddGoalFunds(ctx, id, userID, amount)
	if errors.Is(err, storage.ErrNotFound) {
		return FundingResult{}, apperr.NotFound("savings goal not found")
	}
	if err != nil {
		return FundingResult{}, fmt.Errorf("add funds: %w", err)
	}

	g, err := s.Get(ctx, id, userID)
	if err != nil {
		return FundingResult{}, err
	}

	slog.InfoContext(ctx, "Funds added to savings goal",
		"id", id,
		"amount", core.FormatAmount(amount),
		"new_amount", core.FormatAmount(newAmount))

	return FundingResult{
		NewAmount:  newAmount,
		Percentage: g.Percentage(),
		Completed:  g.Completed(),
	}, nil
}

// GetSummary totals saved and target amounts across all goals.
func (s *GoalService) GetSummary(ctx context.Context, userID string) (GoalSummary, error) {
	goals, err := s.store.ListGoals(ctx, userID, false)
	if err != nil {
		return GoalSummary{}, fmt.Errorf("goal summary: %w", err)
	}

	summary := GoalSummary{
		TotalSaved:  decimal.Zero,
		TotalTarget: decimal.Zero,
	}
	for _, g := range goals {
		summary.TotalSaved = summary.TotalSaved.Add(g.CurrentAmount)
		summary.TotalTarget = summary.TotalTarget.Add(g.TargetAmount)
		if g.Completed() {
			summary.CompletedCount++
		}
		if g.IsActive {
			summary.ActiveCount++
		}
	}
	return summary, nil
}
