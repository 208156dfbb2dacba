package core

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{"dot separator", "12.34", "12.34", false},
		{"comma separator", "12,34", "12.34", false},
		{"integer", "12", "12.00", false},
		{"rounds half up", "12.345", "12.35", false},
		{"rounds down", "12.344", "12.34", false},
		{"leading whitespace", "  9.99", "9.99", false},
		{"empty", "", "", true},
		{"negative", "-5.00", "", true},
		{"zero", "0", "", true},
		{"zero with decimals", "0.00", "", true},
		{"garbage", "abc", "", true},
		{"double separator", "1.2.3", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseAmount(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseAmount(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if !tt.wantErr && got.StringFixed(2) != tt.want {
				t.Errorf("ParseAmount(%q) = %s, want %s", tt.input, got.StringFixed(2), tt.want)
			}
		})
	}
}

func TestSumAmounts(t *testing.T) {
	// 0.1+0.2 style sums must stay exact; this is the reason amounts are
	// decimal rather than float64.
	amounts := []decimal.Decimal{
		decimal.RequireFromString("0.10"),
		decimal.RequireFromString("0.20"),
		decimal.RequireFromString("0.30"),
	}
	if got := SumAmounts(amounts); got.StringFixed(2) != "0.60" {
		t.Errorf("SumAmounts = %s, want 0.60", got.StringFixed(2))
	}

	if got := SumAmounts(nil); !got.IsZero() {
		t.Errorf("SumAmounts(nil) = %s, want 0", got)
	}
}

func TestFormatAmount(t *testing.T) {
	d := decimal.RequireFromString("7.5")
	if got := FormatAmount(d); got != "7.50" {
		t.Errorf("FormatAmount = %q, want %q", got, "7.50")
	}
}
