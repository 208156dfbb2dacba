package services

import (
	"testing"
	"time"

	"fintrack/internal/core"
)

func TestNextOccurrenceFixedDays(t *testing.T) {
	from := time.Date(2026, 1, 15, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		frequency core.Frequency
		want      time.Time
	}{
		{
			name:      "daily advances one day",
			frequency: core.Daily,
			want:      time.Date(2026, 1, 16, 9, 0, 0, 0, time.UTC),
		},
		{
			name:      "every3days advances three days",
			frequency: core.Every3Days,
			want:      time.Date(2026, 1, 18, 9, 0, 0, 0, time.UTC),
		},
		{
			name:      "weekly advances seven days",
			frequency: core.Weekly,
			want:      time.Date(2026, 1, 22, 9, 0, 0, 0, time.UTC),
		},
		{
			name:      "biweekly advances fourteen days",
			frequency: core.Biweekly,
			want:      time.Date(2026, 1, 29, 9, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NextOccurrence(tt.frequency, from)
			if err != nil {
				t.Fatalf("NextOccurrence() error = %v", err)
			}
			if !got.Equal(tt.want) {
				t.Errorf("NextOccurrence() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNextOccurrenceMonthly(t *testing.T) {
	tests := []struct {
		name string
		from time.Time
		want time.Time
	}{
		{
			name: "mid-month keeps the day",
			from: time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC),
			want: time.Date(2026, 2, 15, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "jan 31 clamps to feb 28",
			from: time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC),
			want: time.Date(2026, 2, 28, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "jan 31 clamps to feb 29 in a leap year",
			from: time.Date(2028, 1, 31, 0, 0, 0, 0, time.UTC),
			want: time.Date(2028, 2, 29, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "december rolls into the next year",
			from: time.Date(2026, 12, 10, 0, 0, 0, 0, time.UTC),
			want: time.Date(2027, 1, 10, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NextOccurrence(core.Monthly, tt.from)
			if err != nil {
				t.Fatalf("NextOccurrence() error = %v", err)
			}
			if !got.Equal(tt.want) {
				t.Errorf("NextOccurrence() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNextOccurrenceQuarterly(t *testing.T) {
	tests := []struct {
		name string
		from time.Time
		want time.Time
	}{
		{
			name: "advances three months",
			from: time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC),
			want: time.Date(2026, 4, 15, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "nov 30 clamps to feb 28 across the year boundary",
			from: time.Date(2026, 11, 30, 0, 0, 0, 0, time.UTC),
			want: time.Date(2027, 2, 28, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NextOccurrence(core.Quarterly, tt.from)
			if err != nil {
				t.Fatalf("NextOccurrence() error = %v", err)
			}
			if !got.Equal(tt.want) {
				t.Errorf("NextOccurrence() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNextOccurrenceYearly(t *testing.T) {
	tests := []struct {
		name string
		from time.Time
		want time.Time
	}{
		{
			name: "advances one year",
			from: time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC),
			want: time.Date(2027, 6, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "feb 29 clamps to feb 28 in a non-leap year",
			from: time.Date(2028, 2, 29, 0, 0, 0, 0, time.UTC),
			want: time.Date(2029, 2, 28, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NextOccurrence(core.Yearly, tt.from)
			if err != nil {
				t.Fatalf("NextOccurrence() error = %v", err)
			}
			if !got.Equal(tt.want) {
				t.Errorf("NextOccurrence() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNextOccurrenceUnknownFrequency(t *testing.T) {
	if _, err := NextOccurrence(core.Frequency("fortnightly"), time.Now()); err == nil {
		t.Error("expected error for unknown frequency")
	}
}

func TestNextOccurrencePreservesClock(t *testing.T) {
	from := time.Date(2026, 3, 31, 23, 45, 12, 0, time.UTC)

	got, err := NextOccurrence(core.Monthly, from)
	if err != nil {
		t.Fatalf("NextOccurrence() error = %v", err)
	}
	want := time.Date(2026, 4, 30, 23, 45, 12, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("NextOccurrence() = %v, want %v", got, want)
	}
}
