package http

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"fintrack/internal/apperr"
	"fintrack/internal/core"
	"fintrack/internal/storage"
)

// Wire representations. Dates travel as RFC3339, amounts as decimal strings.

type categoryResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

type transactionResponse struct {
	ID              string          `json:"id"`
	Amount          decimal.Decimal `json:"amount"`
	Description     string          `json:"description"`
	Date            time.Time       `json:"date"`
	CategoryID      string          `json:"categoryId,omitempty"`
	CategoryName    string          `json:"categoryName,omitempty"`
	CategoryColor   string          `json:"categoryColor,omitempty"`
	Type            string          `json:"type"`
	RecurringID     string          `json:"recurringId,omitempty"`
	ReceiptFile     string          `json:"receiptFile,omitempty"`
	ReceiptFileName string          `json:"receiptFileName,omitempty"`
}

type recurringResponse struct {
	ID                string          `json:"id"`
	Amount            decimal.Decimal `json:"amount"`
	Description       string          `json:"description"`
	CategoryID        string          `json:"categoryId,omitempty"`
	Type              string          `json:"type"`
	Frequency         string          `json:"frequency"`
	NextDueDate       time.Time       `json:"nextDueDate"`
	LastTriggeredDate *time.Time      `json:"lastTriggeredDate,omitempty"`
	IsActive          bool            `json:"isActive"`
}

type goalResponse struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	TargetAmount  decimal.Decimal `json:"targetAmount"`
	CurrentAmount decimal.Decimal `json:"currentAmount"`
	Remaining     decimal.Decimal `json:"remaining"`
	Percentage    float64         `json:"percentage"`
	Completed     bool            `json:"completed"`
	TargetDate    time.Time       `json:"targetDate"`
	Icon          string          `json:"icon"`
	Color         string          `json:"color"`
	IsActive      bool            `json:"isActive"`
}

func newCategoryResponse(c core.Category) categoryResponse {
	return categoryResponse{ID: c.ID, Name: c.Name, Color: c.Color}
}

func newTransactionResponse(t storage.TransactionWithCategory) transactionResponse {
	return transactionResponse{
		ID:              t.ID,
		Amount:          t.Amount,
		Description:     t.Description,
		Date:            t.Date,
		CategoryID:      t.CategoryID,
		CategoryName:    t.CategoryName,
		CategoryColor:   t.CategoryColor,
		Type:            string(t.Type),
		RecurringID:     t.RecurringID,
		ReceiptFile:     t.ReceiptFile,
		ReceiptFileName: t.ReceiptFileName,
	}
}

func newRecurringResponse(rt core.RecurringTemplate) recurringResponse {
	resp := recurringResponse{
		ID:          rt.ID,
		Amount:      rt.Amount,
		Description: rt.Description,
		CategoryID:  rt.CategoryID,
		Type:        string(rt.Type),
		Frequency:   string(rt.Frequency),
		NextDueDate: rt.NextDueDate,
		IsActive:    rt.IsActive,
	}
	if !rt.LastTriggeredDate.IsZero() {
		triggered := rt.LastTriggeredDate
		resp.LastTriggeredDate = &triggered
	}
	return resp
}

func newGoalResponse(g core.SavingsGoal) goalResponse {
	return goalResponse{
		ID:            g.ID,
		Name:          g.Name,
		TargetAmount:  g.TargetAmount,
		CurrentAmount: g.CurrentAmount,
		Remaining:     g.TargetAmount.Sub(g.CurrentAmount),
		Percentage:    g.Percentage(),
		Completed:     g.Completed(),
		TargetDate:    g.TargetDate,
		Icon:          g.Icon,
		Color:         g.Color,
		IsActive:      g.IsActive,
	}
}

// parseAmount accepts the wire form of a monetary value.
func parseAmount(s string) (decimal.Decimal, error) {
	d, err := core.ParseAmount(s)
	if err != nil {
		return decimal.Decimal{}, apperr.ValidationFrom(err)
	}
	return d, nil
}

// parseDate accepts RFC3339 timestamps and bare dates.
func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, apperr.Validation("invalid date: expected RFC3339 or YYYY-MM-DD")
	}
	return t, nil
}
