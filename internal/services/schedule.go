// Package services provides business logic and orchestration services.
//
// This file implements the Strategy Pattern for advancing recurring
// transaction due dates. Each frequency has its own scheduler that
// encapsulates how the next occurrence is computed.

package services

import (
	"fmt"
	"time"

	"fintrack/internal/core"
)

// OccurrenceScheduler is the strategy interface for computing when a
// recurring transaction next occurs after a given due date.
type OccurrenceScheduler interface {
	// Next returns the occurrence that follows from. It always returns a
	// time strictly after from.
	Next(from time.Time) time.Time
}

// DayScheduler advances by a fixed number of days.
type DayScheduler struct {
	Days int
}

func (s DayScheduler) Next(from time.Time) time.Time {
	return from.AddDate(0, 0, s.Days)
}

// MonthScheduler advances by a fixed number of calendar months, clamping to
// the last day of the target month when the source day does not exist there
// (Jan 31 + 1 month is Feb 28, not Mar 3).
type MonthScheduler struct {
	Months int
}

func (s MonthScheduler) Next(from time.Time) time.Time {
	return addMonthsClamped(from, s.Months)
}

// YearScheduler advances by one year, clamping Feb 29 to Feb 28 in
// non-leap years.
type YearScheduler struct{}

func (YearScheduler) Next(from time.Time) time.Time {
	return addMonthsClamped(from, 12)
}

func addMonthsClamped(from time.Time, months int) time.Time {
	year, month, day := from.Date()

	// Normalize the target month first, then clamp the day.
	total := int(month) - 1 + months
	targetYear := year + total/12
	targetMonth := time.Month(total%12 + 1)

	lastDay := time.Date(targetYear, targetMonth+1, 0, 0, 0, 0, 0, from.Location()).Day()
	if day > lastDay {
		day = lastDay
	}

	hour, min, sec := from.Clock()
	return time.Date(targetYear, targetMonth, day, hour, min, sec, from.Nanosecond(), from.Location())
}

// occurrenceSchedulers maps frequencies to their schedulers. The registry
// enables O(1) lookup and easy extension for new frequencies.
var occurrenceSchedulers = map[core.Frequency]OccurrenceScheduler{
	core.Daily:      DayScheduler{Days: 1},
	core.Every3Days: DayScheduler{Days: 3},
	core.Weekly:     DayScheduler{Days: 7},
	core.Biweekly:   DayScheduler{Days: 14},
	core.Monthly:    MonthScheduler{Months: 1},
	core.Quarterly:  MonthScheduler{Months: 3},
	core.Yearly:     YearScheduler{},
}

// NextOccurrence computes the occurrence that follows from for the given
// frequency. Returns an error for unknown frequencies.
func NextOccurrence(frequency core.Frequency, from time.Time) (time.Time, error) {
	scheduler, ok := occurrenceSchedulers[frequency]
	if !ok {
		return time.Time{}, fmt.Errorf("unknown frequency: %s", frequency)
	}
	return scheduler.Next(from), nil
}

// RegisterOccurrenceScheduler allows registering custom schedulers for new
// frequency types.
func RegisterOccurrenceScheduler(frequency core.Frequency, scheduler OccurrenceScheduler) {
	occurrenceSchedulers[frequency] = scheduler
}
