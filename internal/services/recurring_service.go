package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"fintrack/internal/apperr"
	"fintrack/internal/core"
	"fintrack/internal/storage"
)

// RecurringStore is the storage surface the recurring service needs.
type RecurringStore interface {
	CreateRecurring(ctx context.Context, rt core.RecurringTemplate) error
	ListRecurring(ctx context.Context, userID string) ([]core.RecurringTemplate, error)
	GetRecurring(ctx context.Context, id, userID string) (core.RecurringTemplate, error)
	UpdateRecurring(ctx context.Context, rt core.RecurringTemplate) error
	SetRecurringActive(ctx context.Context, id, userID string, active bool) error
	DeleteRecurring(ctx context.Context, id, userID string) error
	ListDueRecurring(ctx context.Context, now time.Time) ([]core.RecurringTemplate, error)
	ListDueRecurringForUser(ctx context.Context, userID string, now time.Time) ([]core.RecurringTemplate, error)
	AdvanceRecurring(ctx context.Context, t core.Transaction, templateID string, nextDue, triggeredAt time.Time) error
}

// RecurringService manages recurring templates and materializes due
// transactions from them.
type RecurringService struct {
	store  RecurringStore
	events Events
}

func NewRecurringService(store RecurringStore, events Events) *RecurringService {
	return &RecurringService{
		store:  store,
		events: events,
	}
}

// ScanResult reports the outcome of one due-scan pass.
type ScanResult struct {
	Created   int      `json:"created"`
	FailedIDs []string `json:"failedIds,omitempty"`
}

func (s *RecurringService) Create(ctx context.Context, rt core.RecurringTemplate) (core.RecurringTemplate, error) {
	rt.ID = uuid.NewString()
	rt.IsActive = true
	rt.LastTriggeredDate = time.Time{}
	if err := rt.Validate(); err != nil {
		return core.RecurringTemplate{}, apperr.ValidationFrom(err)
	}
	if err := s.store.CreateRecurring(ctx, rt); err != nil {
		return core.RecurringTemplate{}, fmt.Errorf("create recurring template: %w", err)
	}

	slog.InfoContext(ctx, "Recurring template created",
		"id", rt.ID,
		"description", rt.Description,
		"frequency", rt.Frequency,
		"next_due", rt.NextDueDate.Format("2006-01-02"))

	return rt, nil
}

func (s *RecurringService) List(ctx context.Context, userID string) ([]core.RecurringTemplate, error) {
	return s.store.ListRecurring(ctx, userID)
}

func (s *RecurringService) Get(ctx context.Context, id, userID string) (core.RecurringTemplate, error) {
	rt, err := s.store.GetRecurring(ctx, id, userID)
	if errors.Is(err, storage.ErrNotFound) {
		return core.RecurringTemplate{}, apperr.NotFound("recurring template not found")
	}
	return rt, err
}

func (s *RecurringService) Update(ctx context.Context, rt core.RecurringTemplate) error {
	if err := rt.Validate(); err != nil {
		return apperr.ValidationFrom(err)
	}
	err := s.store.UpdateRecurring(ctx, rt)
	if errors.Is(err, storage.ErrNotFound) {
		return apperr.NotFound("recurring template not found")
	}
	return err
}

// ToggleActive flips the active flag and returns the new state.
func (s *RecurringService) ToggleActive(ctx context.Context, id, userID string) (bool, error) {
	rt, err := s.Get(ctx, id, userID)
	if err != nil {
		return false, err
	}
	if err := s.store.SetRecurringActive(ctx, id, userID, !rt.IsActive); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return false, apperr.NotFound("recurring template not found")
		}
		return false, err
	}
	return !rt.IsActive, nil
}

func (s *RecurringService) Delete(ctx context.Context, id, userID string) error {
	err := s.store.DeleteRecurring(ctx, id, userID)
	if errors.Is(err, storage.ErrNotFound) {
		return apperr.NotFound("recurring template not found")
	}
	return err
}

// ListDue returns the caller's active templates whose due date has passed.
func (s *RecurringService) ListDue(ctx context.Context, userID string, now time.Time) ([]core.RecurringTemplate, error) {
	return s.store.ListDueRecurringForUser(ctx, userID, now)
}

// CreateNow manually fires a template regardless of its due date. Inactive
// templates are rejected.
func (s *RecurringService) CreateNow(ctx context.Context, id, userID string, now time.Time) (core.Transaction, error) {
	rt, err := s.Get(ctx, id, userID)
	if err != nil {
		return core.Transaction{}, err
	}
	if !rt.IsActive {
		return core.Transaction{}, apperr.InvalidState("recurring template is not active")
	}
	return s.advance(ctx, rt, now)
}

// ProcessDue runs one due-scan pass across all users: every active template
// whose next due date has passed is advanced by exactly one cycle. A
// template overdue by several cycles fires once per pass and is caught
// again on the next one, so missed occurrences are materialized rather
// than skipped. Failures are isolated per template.
func (s *RecurringService) ProcessDue(ctx context.Context, now time.Time) (ScanResult, error) {
	due, err := s.store.ListDueRecurring(ctx, now)
	if err != nil {
		return ScanResult{}, fmt.Errorf("list due templates: %w", err)
	}

	slog.InfoContext(ctx, "Processing due recurring templates",
		"total_due", len(due),
		"scan_time", now.Format(time.RFC3339))

	result := ScanResult{}
	for _, rt := range due {
		if _, err := s.advance(ctx, rt, now); err != nil {
			slog.ErrorContext(ctx, "Failed to advance recurring template",
				"id", rt.ID,
				"description", rt.Description,
				"error", err)
			result.FailedIDs = append(result.FailedIDs, rt.ID)
			continue
		}
		result.Created++
	}

	slog.InfoContext(ctx, "Recurring template processing complete",
		"created", result.Created,
		"failed", len(result.FailedIDs))

	return result, nil
}

// advance materializes one occurrence: it creates the transaction dated at
// the template's next occurrence and moves the due date forward to that
// same occurrence, atomically.
func (s *RecurringService) advance(ctx context.Context, rt core.RecurringTemplate, now time.Time) (core.Transaction, error) {
	next, err := NextOccurrence(rt.Frequency, rt.NextDueDate)
	if err != nil {
		return core.Transaction{}, err
	}

	t := core.Transaction{
		ID:          uuid.NewString(),
		Amount:      rt.Amount,
		Description: rt.Description,
		Date:        next,
		CategoryID:  rt.CategoryID,
		Type:        rt.Type,
		RecurringID: rt.ID,
		UserID:      rt.UserID,
	}

	if err := s.store.AdvanceRecurring(ctx, t, rt.ID, next, now); err != nil {
		return core.Transaction{}, fmt.Errorf("advance template %s: %w", rt.ID, err)
	}

	if s.events != nil {
		if err := s.events.TransactionChanged(ctx, t.ID); err != nil {
			slog.ErrorContext(ctx, "Failed to publish sync message",
				"transaction_id", t.ID, "error", err)
		}
	}

	slog.InfoContext(ctx, "Created transaction from recurring template",
		"template_id", rt.ID,
		"transaction_id", t.ID,
		"description", rt.Description,
		"frequency", rt.Frequency,
		"next_due", next.Format("2006-01-02"))

	return t, nil
}
