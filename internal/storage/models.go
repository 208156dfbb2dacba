package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"fintrack/internal/core"
)

// ErrNotFound is returned when a row does not exist or belongs to another user.
var ErrNotFound = errors.New("not found")

// Sync states for the transaction export pipeline.
const (
	SyncStatusPending = "pending"
	SyncStatusSynced  = "synced"
	SyncStatusError   = "error"
)

// TransactionWithCategory is a transaction joined with its category, if any.
// CategoryName and CategoryColor are empty when the category was deleted.
type TransactionWithCategory struct {
	core.Transaction
	CategoryName  string
	CategoryColor string
}

// BudgetWithCategory is a budget joined with the category it limits.
type BudgetWithCategory struct {
	core.Budget
	CategoryName  string
	CategoryColor string
}

// TransactionFilter narrows list queries. Zero values mean "no constraint".
type TransactionFilter struct {
	CategoryID string
	Type       core.TransactionType
	From       time.Time
	To         time.Time
	Limit      int
}

// AmountByType is one (type, amount) pair read back for decimal-safe
// accumulation in Go.
type AmountByType struct {
	Type   core.TransactionType
	Amount decimal.Decimal
}

// DatedAmount carries the transaction date alongside the amount so callers
// can bucket rows into calendar months.
type DatedAmount struct {
	Date   time.Time
	Type   core.TransactionType
	Amount decimal.Decimal
}

// CategoryAmount is one expense amount attributed to a category.
type CategoryAmount struct {
	CategoryID string
	Amount     decimal.Decimal
}

// Dates are stored as UTC text with fixed-width fractional seconds so
// lexicographic comparison in SQL matches chronological order. RFC3339Nano
// trims trailing zeros, which would sort "T00:00:00.5Z" after "T00:00:00Z".
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func encodeTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func decodeTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse stored time %q: %w", s, err)
	}
	return t, nil
}

func encodeNullTime(t time.Time) sql.NullString {
	if t.IsZero() {
		return sql.NullString{}
	}
	return sql.NullString{String: encodeTime(t), Valid: true}
}

func decodeNullTime(s sql.NullString) (time.Time, error) {
	if !s.Valid {
		return time.Time{}, nil
	}
	return decodeTime(s.String)
}

func encodeAmount(d decimal.Decimal) string {
	return d.String()
}

func decodeAmount(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("parse stored amount %q: %w", s, err)
	}
	return d, nil
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
