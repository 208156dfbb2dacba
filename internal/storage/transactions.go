package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"fintrack/internal/core"
)

const transactionColumns = `t.id, t.amount, t.description, t.date, t.category_id, t.type,
	t.recurring_id, t.receipt_file, t.receipt_file_name, t.user_id`

func (r *SQLiteRepository) CreateTransaction(ctx context.Context, t core.Transaction) error {
	return createTransactionTx(ctx, r.db, t)
}

// createTransactionTx is shared between the direct write path and the
// recurring advance, which inserts inside an explicit DB transaction.
func createTransactionTx(ctx context.Context, ex execer, t core.Transaction) error {
	_, err := ex.ExecContext(ctx,
		`INSERT INTO transactions (id, amount, description, date, category_id, type, recurring_id, receipt_file, receipt_file_name, user_id)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, encodeAmount(t.Amount), t.Description, encodeTime(t.Date),
		nullString(t.CategoryID), string(t.Type), nullString(t.RecurringID),
		nullString(t.ReceiptFile), nullString(t.ReceiptFileName), t.UserID,
	)
	if err != nil {
		return fmt.Errorf("create transaction: %w", err)
	}
	return nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (r *SQLiteRepository) ListTransactions(ctx context.Context, userID string, f TransactionFilter) ([]TransactionWithCategory, error) {
	query := `SELECT ` + transactionColumns + `, c.name, c.color
		FROM transactions t
		LEFT JOIN categories c ON c.id = t.category_id
		WHERE t.user_id = ?`
	args := []any{userID}

	if f.CategoryID != "" {
		query += ` AND t.category_id = ?`
		args = append(args, f.CategoryID)
	}
	if f.Type != "" {
		query += ` AND t.type = ?`
		args = append(args, string(f.Type))
	}
	if !f.From.IsZero() {
		query += ` AND t.date >= ?`
		args = append(args, encodeTime(f.From))
	}
	if !f.To.IsZero() {
		query += ` AND t.date < ?`
		args = append(args, encodeTime(f.To))
	}
	query += ` ORDER BY t.date DESC, t.created_at DESC`
	if f.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, f.Limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	transactions := []TransactionWithCategory{}
	for rows.Next() {
		t, err := scanTransactionWithCategory(rows)
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}
	return transactions, nil
}

func (r *SQLiteRepository) GetTransaction(ctx context.Context, id, userID string) (TransactionWithCategory, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+transactionColumns+`, c.name, c.color
		 FROM transactions t
		 LEFT JOIN categories c ON c.id = t.category_id
		 WHERE t.id = ? AND t.user_id = ?`,
		id, userID,
	)
	t, err := scanTransactionWithCategory(row)
	if err == sql.ErrNoRows {
		return TransactionWithCategory{}, ErrNotFound
	}
	if err != nil {
		return TransactionWithCategory{}, err
	}
	return t, nil
}

// GetTransactionAnyUser fetches by ID alone. Only the worker uses this; the
// request path always scopes by owner.
func (r *SQLiteRepository) GetTransactionAnyUser(ctx context.Context, id string) (TransactionWithCategory, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+transactionColumns+`, c.name, c.color
		 FROM transactions t
		 LEFT JOIN categories c ON c.id = t.category_id
		 WHERE t.id = ?`,
		id,
	)
	t, err := scanTransactionWithCategory(row)
	if err == sql.ErrNoRows {
		return TransactionWithCategory{}, ErrNotFound
	}
	if err != nil {
		return TransactionWithCategory{}, err
	}
	return t, nil
}

// UpdateTransaction rewrites the editable fields and resets the sync state
// so the export pipeline picks the row up again.
func (r *SQLiteRepository) UpdateTransaction(ctx context.Context, t core.Transaction) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE transactions
		 SET amount = ?, description = ?, date = ?, category_id = ?, type = ?, sync_status = ?
		 WHERE id = ? AND user_id = ?`,
		encodeAmount(t.Amount), t.Description, encodeTime(t.Date),
		nullString(t.CategoryID), string(t.Type), SyncStatusPending,
		t.ID, t.UserID,
	)
	if err != nil {
		return fmt.Errorf("update transaction: %w", err)
	}
	return requireRow(res)
}

func (r *SQLiteRepository) DeleteTransaction(ctx context.Context, id, userID string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM transactions WHERE id = ? AND user_id = ?`,
		id, userID,
	)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	return requireRow(res)
}

func (r *SQLiteRepository) SetTransactionReceipt(ctx context.Context, id, userID, objectKey, fileName string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE transactions SET receipt_file = ?, receipt_file_name = ? WHERE id = ? AND user_id = ?`,
		nullString(objectKey), nullString(fileName), id, userID,
	)
	if err != nil {
		return fmt.Errorf("set transaction receipt: %w", err)
	}
	return requireRow(res)
}

// AmountsByType returns every (type, amount) pair for the user so the
// service can accumulate totals with decimal arithmetic.
func (r *SQLiteRepository) AmountsByType(ctx context.Context, userID string) ([]AmountByType, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT type, amount FROM transactions WHERE user_id = ?`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("amounts by type: %w", err)
	}
	defer rows.Close()

	amounts := []AmountByType{}
	for rows.Next() {
		var (
			a   AmountByType
			typ string
			amt string
		)
		if err := rows.Scan(&typ, &amt); err != nil {
			return nil, fmt.Errorf("scan amount: %w", err)
		}
		a.Type = core.TransactionType(typ)
		if a.Amount, err = decodeAmount(amt); err != nil {
			return nil, err
		}
		amounts = append(amounts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate amounts: %w", err)
	}
	return amounts, nil
}

// DatedAmountsInRange returns (date, type, amount) rows within [from, to)
// for bucketing into monthly series.
func (r *SQLiteRepository) DatedAmountsInRange(ctx context.Context, userID string, from, to time.Time) ([]DatedAmount, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT date, type, amount FROM transactions
		 WHERE user_id = ? AND date >= ? AND date < ?`,
		userID, encodeTime(from), encodeTime(to),
	)
	if err != nil {
		return nil, fmt.Errorf("dated amounts: %w", err)
	}
	defer rows.Close()

	amounts := []DatedAmount{}
	for rows.Next() {
		var (
			a             DatedAmount
			date, typ, amt string
		)
		if err := rows.Scan(&date, &typ, &amt); err != nil {
			return nil, fmt.Errorf("scan dated amount: %w", err)
		}
		if a.Date, err = decodeTime(date); err != nil {
			return nil, err
		}
		a.Type = core.TransactionType(typ)
		if a.Amount, err = decodeAmount(amt); err != nil {
			return nil, err
		}
		amounts = append(amounts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate dated amounts: %w", err)
	}
	return amounts, nil
}

// ExpenseAmountsByCategory returns per-category expense amounts within
// [from, to) for the given categories. An empty categoryIDs slice matches
// nothing.
func (r *SQLiteRepository) ExpenseAmountsByCategory(ctx context.Context, userID string, categoryIDs []string, from, to time.Time) ([]CategoryAmount, error) {
	if len(categoryIDs) == 0 {
		return []CategoryAmount{}, nil
	}

	placeholders := strings.Repeat("?,", len(categoryIDs))
	placeholders = placeholders[:len(placeholders)-1]
	args := []any{userID, string(core.TypeExpense), encodeTime(from), encodeTime(to)}
	for _, id := range categoryIDs {
		args = append(args, id)
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT category_id, amount FROM transactions
		 WHERE user_id = ? AND type = ? AND date >= ? AND date < ?
		 AND category_id IN (`+placeholders+`)`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("expense amounts by category: %w", err)
	}
	defer rows.Close()

	amounts := []CategoryAmount{}
	for rows.Next() {
		var (
			a   CategoryAmount
			amt string
		)
		if err := rows.Scan(&a.CategoryID, &amt); err != nil {
			return nil, fmt.Errorf("scan category amount: %w", err)
		}
		if a.Amount, err = decodeAmount(amt); err != nil {
			return nil, err
		}
		amounts = append(amounts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate category amounts: %w", err)
	}
	return amounts, nil
}

// GetPendingSyncTransactions lists rows awaiting export, oldest first.
func (r *SQLiteRepository) GetPendingSyncTransactions(ctx context.Context, limit int) ([]TransactionWithCategory, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+transactionColumns+`, c.name, c.color
		 FROM transactions t
		 LEFT JOIN categories c ON c.id = t.category_id
		 WHERE t.sync_status = ?
		 ORDER BY t.created_at ASC
		 LIMIT ?`,
		SyncStatusPending, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("get pending sync transactions: %w", err)
	}
	defer rows.Close()

	transactions := []TransactionWithCategory{}
	for rows.Next() {
		t, err := scanTransactionWithCategory(rows)
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate pending transactions: %w", err)
	}
	return transactions, nil
}

func (r *SQLiteRepository) MarkTransactionSynced(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE transactions SET sync_status = ? WHERE id = ?`,
		SyncStatusSynced, id,
	)
	if err != nil {
		return fmt.Errorf("mark transaction synced: %w", err)
	}
	return requireRow(res)
}

func (r *SQLiteRepository) MarkTransactionSyncError(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE transactions SET sync_status = ? WHERE id = ?`,
		SyncStatusError, id,
	)
	if err != nil {
		return fmt.Errorf("mark transaction sync error: %w", err)
	}
	return requireRow(res)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransactionWithCategory(row rowScanner) (TransactionWithCategory, error) {
	var (
		t                                          TransactionWithCategory
		amount, date, typ                          string
		categoryID, recurringID, receipt, receiptName sql.NullString
		categoryName, categoryColor                sql.NullString
	)
	err := row.Scan(&t.ID, &amount, &t.Description, &date, &categoryID, &typ,
		&recurringID, &receipt, &receiptName, &t.UserID, &categoryName, &categoryColor)
	if err != nil {
		if err == sql.ErrNoRows {
			return TransactionWithCategory{}, err
		}
		return TransactionWithCategory{}, fmt.Errorf("scan transaction: %w", err)
	}
	if t.Amount, err = decodeAmount(amount); err != nil {
		return TransactionWithCategory{}, err
	}
	if t.Date, err = decodeTime(date); err != nil {
		return TransactionWithCategory{}, err
	}
	t.Type = core.TransactionType(typ)
	t.CategoryID = categoryID.String
	t.RecurringID = recurringID.String
	t.ReceiptFile = receipt.String
	t.ReceiptFileName = receiptName.String
	t.CategoryName = categoryName.String
	t.CategoryColor = categoryColor.String
	return t, nil
}
