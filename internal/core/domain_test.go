package core

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func validTransaction() Transaction {
	return Transaction{
		ID:          "tx-1",
		Amount:      decimal.RequireFromString("25.00"),
		Description: "Groceries",
		Date:        time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC),
		Type:        TypeExpense,
		UserID:      "user-1",
	}
}

func TestTransactionValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Transaction)
		want   error
	}{
		{"valid", func(*Transaction) {}, nil},
		{"zero amount", func(tx *Transaction) { tx.Amount = decimal.Zero }, ErrInvalidAmount},
		{"negative amount", func(tx *Transaction) { tx.Amount = decimal.NewFromInt(-3) }, ErrInvalidAmount},
		{"empty description", func(tx *Transaction) { tx.Description = "   " }, ErrEmptyDescription},
		{"zero date", func(tx *Transaction) { tx.Date = time.Time{} }, ErrZeroDate},
		{"bad type", func(tx *Transaction) { tx.Type = "transfer" }, ErrInvalidType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx := validTransaction()
			tt.mutate(&tx)
			if err := tx.Validate(); err != tt.want {
				t.Errorf("Validate() = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestTransactionValidate_DescriptionTooLong(t *testing.T) {
	tx := validTransaction()
	tx.Description = strings.Repeat("x", 501)
	if err := tx.Validate(); err == nil {
		t.Error("Validate() accepted a 501-char description")
	}
}

func TestFrequencyValidate(t *testing.T) {
	valid := []Frequency{Daily, Every3Days, Weekly, Biweekly, Monthly, Quarterly, Yearly}
	for _, f := range valid {
		if err := f.Validate(); err != nil {
			t.Errorf("Frequency(%q).Validate() = %v", f, err)
		}
	}
	if err := Frequency("fortnightly").Validate(); err != ErrInvalidFrequency {
		t.Errorf("unknown frequency error = %v, want %v", err, ErrInvalidFrequency)
	}
}

func TestRecurringTemplateValidate(t *testing.T) {
	rt := RecurringTemplate{
		Amount:      decimal.RequireFromString("9.99"),
		Description: "Streaming subscription",
		Type:        TypeExpense,
		Frequency:   Monthly,
		NextDueDate: time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC),
	}
	if err := rt.Validate(); err != nil {
		t.Fatalf("Validate() = %v", err)
	}

	rt.Frequency = "sometimes"
	if err := rt.Validate(); err != ErrInvalidFrequency {
		t.Errorf("Validate() = %v, want %v", err, ErrInvalidFrequency)
	}
}

func TestSavingsGoalPercentage(t *testing.T) {
	tests := []struct {
		name    string
		current string
		target  string
		want    float64
	}{
		{"empty goal", "0", "100.00", 0},
		{"half funded", "50.00", "100.00", 50},
		{"complete", "100.00", "100.00", 100},
		{"overfunded stays uncapped", "150.00", "100.00", 150},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := SavingsGoal{
				CurrentAmount: decimal.RequireFromString(tt.current),
				TargetAmount:  decimal.RequireFromString(tt.target),
			}
			if got := g.Percentage(); got != tt.want {
				t.Errorf("Percentage() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSavingsGoalPercentage_ZeroTarget(t *testing.T) {
	g := SavingsGoal{CurrentAmount: decimal.NewFromInt(10), TargetAmount: decimal.Zero}
	if got := g.Percentage(); got != 0 {
		t.Errorf("Percentage() with zero target = %v, want 0", got)
	}
}

func TestSavingsGoalCompleted(t *testing.T) {
	g := SavingsGoal{
		CurrentAmount: decimal.RequireFromString("99.99"),
		TargetAmount:  decimal.RequireFromString("100.00"),
	}
	if g.Completed() {
		t.Error("Completed() = true below target")
	}
	g.CurrentAmount = decimal.RequireFromString("100.00")
	if !g.Completed() {
		t.Error("Completed() = false at target")
	}
}
