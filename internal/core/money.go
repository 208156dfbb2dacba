// Package core holds the domain model shared by storage, services and the
// HTTP layer.
//
// Monetary amounts are decimal.Decimal end to end. They are persisted as
// exact decimal text and summed with decimal arithmetic; binary floating
// point never touches an amount except for final display percentages.
package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ParseAmount converts a user-supplied amount string to a decimal value.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators and
// rounds to two fractional digits, half up. Only strictly positive amounts
// are accepted.
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	d = d.Round(2)
	if d.Sign() <= 0 {
		return decimal.Zero, ErrInvalidAmount
	}
	return d, nil
}

// ValidateAmount rejects zero and negative amounts.
func ValidateAmount(d decimal.Decimal) error {
	if d.Sign() <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

// SumAmounts accumulates a slice of amounts without precision loss.
func SumAmounts(amounts []decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, a := range amounts {
		total = total.Add(a)
	}
	return total
}

// FormatAmount renders an amount as decimal text with two fractional
// digits, the canonical storage and wire representation.
func FormatAmount(d decimal.Decimal) string {
	return d.StringFixed(2)
}
