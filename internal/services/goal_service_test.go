package services

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"fintrack/internal/apperr"
	"fintrack/internal/core"
	"fintrack/internal/storage"
)

type fakeGoalStore struct {
	goals map[string]core.SavingsGoal
}

func newFakeGoalStore(goals ...core.SavingsGoal) *fakeGoalStore {
	s := &fakeGoalStore{goals: map[string]core.SavingsGoal{}}
	for _, g := range goals {
		s.goals[g.ID] = g
	}
	return s
}

func (s *fakeGoalStore) CreateGoal(_ context.Context, g core.SavingsGoal) error {
	s.goals[g.ID] = g
	return nil
}

func (s *fakeGoalStore) ListGoals(_ context.Context, userID string, activeOnly bool) ([]core.SavingsGoal, error) {
	out := []core.SavingsGoal{}
	for _, g := range s.goals {
		if g.UserID != userID {
			continue
		}
		if activeOnly && !g.IsActive {
			continue
		}
		out = append(out, g)
	}
	return out, nil
}

func (s *fakeGoalStore) GetGoal(_ context.Context, id, userID string) (core.SavingsGoal, error) {
	g, ok := s.goals[id]
	if !ok || g.UserID != userID {
		return core.SavingsGoal{}, storage.ErrNotFound
	}
	return g, nil
}

func (s *fakeGoalStore) UpdateGoal(_ context.Context, g core.SavingsGoal) error {
	if _, ok := s.goals[g.ID]; !ok {
		return storage.ErrNotFound
	}
	s.goals[g.ID] = g
	return nil
}

func (s *fakeGoalStore) DeleteGoal(_ context.Context, id, userID string) error {
	g, ok := s.goals[id]
	if !ok || g.UserID != userID {
		return storage.ErrNotFound
	}
	delete(s.goals, id)
	return nil
}

func (s *fakeGoalStore) AddGoalFunds(_ context.Context, id, userID string, amount decimal.Decimal) (decimal.Decimal, error) {
	g, ok := s.goals[id]
	if !ok || g.UserID != userID {
		return decimal.Decimal{}, storage.ErrNotFound
	}
	g.CurrentAmount = g.CurrentAmount.Add(amount)
	s.goals[id] = g
	return g.CurrentAmount, nil
}

func testGoal(id string, target, current string) core.SavingsGoal {
	return core.SavingsGoal{
		ID:            id,
		Name:          "vacation",
		TargetAmount:  decimal.RequireFromString(target),
		CurrentAmount: decimal.RequireFromString(current),
		TargetDate:    time.Date(2027, 6, 1, 0, 0, 0, 0, time.UTC),
		Icon:          "Plane",
		Color:         "#0ea5e9",
		IsActive:      true,
		UserID:        "user-1",
	}
}

func TestGoalCreateAppliesDefaults(t *testing.T) {
	store := newFakeGoalStore()
	svc := NewGoalService(store)

	g, err := svc.Create(context.Background(), core.SavingsGoal{
		Name:         "emergency fund",
		TargetAmount: decimal.RequireFromString("1000"),
		TargetDate:   time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC),
		UserID:       "user-1",
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if g.Icon != "Target" {
		t.Errorf("icon = %q, want Target", g.Icon)
	}
	if g.Color != "#6366f1" {
		t.Errorf("color = %q, want #6366f1", g.Color)
	}
	if !g.CurrentAmount.IsZero() {
		t.Errorf("new goal should start at zero, got %s", g.CurrentAmount)
	}
	if !g.IsActive {
		t.Error("new goal should be active")
	}
}

func TestAddFunds(t *testing.T) {
	store := newFakeGoalStore(testGoal("g-1", "1000", "600"))
	svc := NewGoalService(store)

	result, err := svc.AddFunds(context.Background(), "g-1", "user-1", decimal.RequireFromString("150.50"))
	if err != nil {
		t.Fatalf("AddFunds() error = %v", err)
	}
	if want := decimal.RequireFromString("750.50"); !result.NewAmount.Equal(want) {
		t.Errorf("new amount = %s, want %s", result.NewAmount, want)
	}
	if result.Completed {
		t.Error("goal should not be completed at 750.50/1000")
	}
}

func TestAddFundsRejectsNonPositive(t *testing.T) {
	store := newFakeGoalStore(testGoal("g-1", "1000", "600"))
	svc := NewGoalService(store)

	tests := []struct {
		name   string
		amount decimal.Decimal
	}{
		{name: "zero", amount: decimal.Zero},
		{name: "negative", amount: decimal.RequireFromString("-5")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.AddFunds(context.Background(), "g-1", "user-1", tt.amount)
			if apperr.CodeOf(err) != apperr.CodeValidation {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}

	if got := store.goals["g-1"].CurrentAmount; !got.Equal(decimal.RequireFromString("600")) {
		t.Errorf("balance changed to %s after rejected deposits", got)
	}
}

func TestAddFundsOverfundsPastHundredPercent(t *testing.T) {
	store := newFakeGoalStore(testGoal("g-1", "100", "90"))
	svc := NewGoalService(store)

	result, err := svc.AddFunds(context.Background(), "g-1", "user-1", decimal.RequireFromString("60"))
	if err != nil {
		t.Fatalf("AddFunds() error = %v", err)
	}
	if !result.Completed {
		t.Error("overfunded goal should report completed")
	}
	if result.Percentage <= 100 {
		t.Errorf("percentage = %v, want > 100 when overfunded", result.Percentage)
	}
}

func TestGoalSummary(t *testing.T) {
	done := testGoal("g-2", "500", "500")
	done.IsActive = false
	store := newFakeGoalStore(testGoal("g-1", "1000", "250"), done)
	svc := NewGoalService(store)

	summary, err := svc.GetSummary(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("GetSummary() error = %v", err)
	}
	if want := decimal.RequireFromString("750"); !summary.TotalSaved.Equal(want) {
		t.Errorf("total saved = %s, want %s", summary.TotalSaved, want)
	}
	if want := decimal.RequireFromString("1500"); !summary.TotalTarget.Equal(want) {
		t.Errorf("total target = %s, want %s", summary.TotalTarget, want)
	}
	if summary.ActiveCount != 1 {
		t.Errorf("active count = %d, want 1", summary.ActiveCount)
	}
	if summary.CompletedCount != 1 {
		t.Errorf("completed count = %d, want 1", summary.CompletedCount)
	}
}
