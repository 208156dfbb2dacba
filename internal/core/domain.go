package core

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	TypeExpense TransactionType = "expense"
	TypeIncome  TransactionType = "income"
)

const (
	Daily      Frequency = "daily"
	Every3Days Frequency = "every3days"
	Weekly     Frequency = "weekly"
	Biweekly   Frequency = "biweekly"
	Monthly    Frequency = "monthly"
	Quarterly  Frequency = "quarterly"
	Yearly     Frequency = "yearly"
)

type (
	TransactionType string

	Frequency string

	// Transaction is a single income or expense record. CategoryID and
	// RecurringID are empty when the row has no such reference.
	Transaction struct {
		ID              string
		Amount          decimal.Decimal
		Description     string
		Date            time.Time
		CategoryID      string
		Type            TransactionType
		RecurringID     string
		ReceiptFile     string // object-store key, empty when no receipt
		ReceiptFileName string
		UserID          string
	}

	Category struct {
		ID     string
		Name   string
		Color  string
		UserID string
	}

	// RecurringTemplate periodically materializes new Transactions.
	// NextDueDate always reflects the next occurrence not yet materialized.
	RecurringTemplate struct {
		ID                string
		Amount            decimal.Decimal
		Description       string
		CategoryID        string
		Type              TransactionType
		Frequency         Frequency
		NextDueDate       time.Time
		LastTriggeredDate time.Time // zero when never triggered
		IsActive          bool
		UserID            string
	}

	// Budget is a per-category monthly spending cap.
	Budget struct {
		ID         string
		CategoryID string
		Amount     decimal.Decimal
		UserID     string
	}

	SavingsGoal struct {
		ID            string
		Name          string
		TargetAmount  decimal.Decimal
		CurrentAmount decimal.Decimal
		TargetDate    time.Time
		Icon          string
		Color         string
		IsActive      bool
		UserID        string
	}

	// Session is written by the external auth provider; this service only
	// ever reads it to resolve a bearer token to a user.
	Session struct {
		ID        string
		Token     string
		ExpiresAt time.Time
		UserID    string
	}
)

var (
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrEmptyDescription = errors.New("empty description")
	ErrEmptyName        = errors.New("empty name")
	ErrInvalidType      = errors.New("invalid transaction type")
	ErrInvalidFrequency = errors.New("invalid frequency")
	ErrZeroDate         = errors.New("date cannot be zero")
)

func (t TransactionType) Validate() error {
	switch t {
	case TypeExpense, TypeIncome:
		return nil
	default:
		return ErrInvalidType
	}
}

func (f Frequency) Validate() error {
	switch f {
	case Daily, Every3Days, Weekly, Biweekly, Monthly, Quarterly, Yearly:
		return nil
	default:
		return ErrInvalidFrequency
	}
}

func (t Transaction) Validate() error {
	if err := ValidateAmount(t.Amount); err != nil {
		return err
	}
	if len(strings.TrimSpace(t.Description)) == 0 {
		return ErrEmptyDescription
	}
	if len(t.Description) > 500 {
		return errors.New("description too long (max 500 characters)")
	}
	if t.Date.IsZero() {
		return ErrZeroDate
	}
	return t.Type.Validate()
}

func (c Category) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyName
	}
	if len(c.Name) > 100 {
		return errors.New("name too long (max 100 characters)")
	}
	if strings.TrimSpace(c.Color) == "" {
		return errors.New("empty color")
	}
	return nil
}

func (rt RecurringTemplate) Validate() error {
	if err := ValidateAmount(rt.Amount); err != nil {
		return err
	}
	if len(strings.TrimSpace(rt.Description)) == 0 {
		return ErrEmptyDescription
	}
	if len(rt.Description) > 500 {
		return errors.New("description too long (max 500 characters)")
	}
	if err := rt.Type.Validate(); err != nil {
		return err
	}
	if err := rt.Frequency.Validate(); err != nil {
		return err
	}
	if rt.NextDueDate.IsZero() {
		return ErrZeroDate
	}
	return nil
}

func (b Budget) Validate() error {
	if strings.TrimSpace(b.CategoryID) == "" {
		return errors.New("empty category")
	}
	return ValidateAmount(b.Amount)
}

func (g SavingsGoal) Validate() error {
	if strings.TrimSpace(g.Name) == "" {
		return ErrEmptyName
	}
	if len(g.Name) > 100 {
		return errors.New("name too long (max 100 characters)")
	}
	if err := ValidateAmount(g.TargetAmount); err != nil {
		return err
	}
	if g.TargetDate.IsZero() {
		return ErrZeroDate
	}
	return nil
}

// Completed reports whether the goal has reached its target.
func (g SavingsGoal) Completed() bool {
	return g.CurrentAmount.GreaterThanOrEqual(g.TargetAmount)
}

// Percentage derives funding progress. It is intentionally not capped at
// 100: an overfunded goal reports more than 100 and callers clamp for
// progress-bar rendering only.
func (g SavingsGoal) Percentage() float64 {
	if g.TargetAmount.IsZero() {
		return 0
	}
	pct, _ := g.CurrentAmount.Div(g.TargetAmount).Mul(decimal.NewFromInt(100)).Float64()
	return pct
}
