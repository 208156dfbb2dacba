package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"fintrack/internal/core"
)

const recurringColumns = `id, amount, description, category_id, type, frequency,
	next_due_date, last_triggered_date, is_active, user_id`

func (r *SQLiteRepository) CreateRecurring(ctx context.Context, rt core.RecurringTemplate) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO recurring_transactions (id, amount, description, category_id, type, frequency, next_due_date, last_triggered_date, is_active, user_id)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rt.ID, encodeAmount(rt.Amount), rt.Description, nullString(rt.CategoryID),
		string(rt.Type), string(rt.Frequency), encodeTime(rt.NextDueDate),
		encodeNullTime(rt.LastTriggeredDate), rt.IsActive, rt.UserID,
	)
	if err != nil {
		return fmt.Errorf("create recurring template: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) ListRecurring(ctx context.Context, userID string) ([]core.RecurringTemplate, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+recurringColumns+` FROM recurring_transactions
		 WHERE user_id = ? ORDER BY next_due_date ASC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list recurring templates: %w", err)
	}
	defer rows.Close()
	return collectRecurring(rows)
}

func (r *SQLiteRepository) GetRecurring(ctx context.Context, id, userID string) (core.RecurringTemplate, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+recurringColumns+` FROM recurring_transactions WHERE id = ? AND user_id = ?`,
		id, userID,
	)
	rt, err := scanRecurring(row)
	if err == sql.ErrNoRows {
		return core.RecurringTemplate{}, ErrNotFound
	}
	if err != nil {
		return core.RecurringTemplate{}, err
	}
	return rt, nil
}

func (r *SQLiteRepository) UpdateRecurring(ctx context.Context, rt core.RecurringTemplate) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE recurring_transactions
		 SET amount = ?, description = ?, category_id = ?, type = ?, frequency = ?, next_due_date = ?, is_active = ?
		 WHERE id = ? AND user_id = ?`,
		encodeAmount(rt.Amount), rt.Description, nullString(rt.CategoryID),
		string(rt.Type), string(rt.Frequency), encodeTime(rt.NextDueDate), rt.IsActive,
		rt.ID, rt.UserID,
	)
	if err != nil {
		return fmt.Errorf("update recurring template: %w", err)
	}
	return requireRow(res)
}

func (r *SQLiteRepository) SetRecurringActive(ctx context.Context, id, userID string, active bool) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE recurring_transactions SET is_active = ? WHERE id = ? AND user_id = ?`,
		active, id, userID,
	)
	if err != nil {
		return fmt.Errorf("set recurring active: %w", err)
	}
	return requireRow(res)
}

func (r *SQLiteRepository) DeleteRecurring(ctx context.Context, id, userID string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM recurring_transactions WHERE id = ? AND user_id = ?`,
		id, userID,
	)
	if err != nil {
		return fmt.Errorf("delete recurring template: %w", err)
	}
	return requireRow(res)
}

// ListDueRecurring returns active templates across all users whose next due
// date is strictly before now, oldest due first. A template due exactly at
// the scan instant waits for the next pass. Used by the scheduled scan.
func (r *SQLiteRepository) ListDueRecurring(ctx context.Context, now time.Time) ([]core.RecurringTemplate, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+recurringColumns+` FROM recurring_transactions
		 WHERE is_active = 1 AND next_due_date < ?
		 ORDER BY next_due_date ASC`,
		encodeTime(now),
	)
	if err != nil {
		return nil, fmt.Errorf("list due recurring templates: %w", err)
	}
	defer rows.Close()
	return collectRecurring(rows)
}

// ListDueRecurringForUser is the per-user variant backing the due listing
// endpoint.
func (r *SQLiteRepository) ListDueRecurringForUser(ctx context.Context, userID string, now time.Time) ([]core.RecurringTemplate, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+recurringColumns+` FROM recurring_transactions
		 WHERE user_id = ? AND is_active = 1 AND next_due_date < ?
		 ORDER BY next_due_date ASC`,
		userID, encodeTime(now),
	)
	if err != nil {
		return nil, fmt.Errorf("list due recurring templates: %w", err)
	}
	defer rows.Close()
	return collectRecurring(rows)
}

// AdvanceRecurring materializes one occurrence of a template: it inserts the
// generated transaction and moves the template forward in a single database
// transaction, so a crash can never produce the transaction without the
// advance or vice versa.
func (r *SQLiteRepository) AdvanceRecurring(ctx context.Context, t core.Transaction, templateID string, nextDue, triggeredAt time.Time) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin advance: %w", err)
	}
	defer tx.Rollback()

	if err := createTransactionTx(ctx, tx, t); err != nil {
		return err
	}

	res, err := tx.ExecContext(ctx,
		`UPDATE recurring_transactions SET next_due_date = ?, last_triggered_date = ? WHERE id = ?`,
		encodeTime(nextDue), encodeTime(triggeredAt), templateID,
	)
	if err != nil {
		return fmt.Errorf("advance recurring template: %w", err)
	}
	if err := requireRow(res); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit advance: %w", err)
	}
	return nil
}

func collectRecurring(rows *sql.Rows) ([]core.RecurringTemplate, error) {
	templates := []core.RecurringTemplate{}
	for rows.Next() {
		rt, err := scanRecurring(rows)
		if err != nil {
			return nil, err
		}
		templates = append(templates, rt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate recurring templates: %w", err)
	}
	return templates, nil
}

func scanRecurring(row rowScanner) (core.RecurringTemplate, error) {
	var (
		rt               core.RecurringTemplate
		amount, nextDue  string
		typ, freq        string
		categoryID, last sql.NullString
	)
	err := row.Scan(&rt.ID, &amount, &rt.Description, &categoryID, &typ, &freq,
		&nextDue, &last, &rt.IsActive, &rt.UserID)
	if err != nil {
		if err == sql.ErrNoRows {
			return core.RecurringTemplate{}, err
		}
		return core.RecurringTemplate{}, fmt.Errorf("scan recurring template: %w", err)
	}
	if rt.Amount, err = decodeAmount(amount); err != nil {
		return core.RecurringTemplate{}, err
	}
	rt.CategoryID = categoryID.String
	rt.Type = core.TransactionType(typ)
	rt.Frequency = core.Frequency(freq)
	if rt.NextDueDate, err = decodeTime(nextDue); err != nil {
		return core.RecurringTemplate{}, err
	}
	if rt.LastTriggeredDate, err = decodeNullTime(last); err != nil {
		return core.RecurringTemplate{}, err
	}
	return rt, nil
}
