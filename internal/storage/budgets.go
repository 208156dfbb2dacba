package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"

	"fintrack/internal/core"
)

func (r *SQLiteRepository) CreateBudget(ctx context.Context, b core.Budget) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO budgets (id, category_id, amount, user_id) VALUES (?, ?, ?, ?)`,
		b.ID, b.CategoryID, encodeAmount(b.Amount), b.UserID,
	)
	if err != nil {
		return fmt.Errorf("create budget: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) ListBudgets(ctx context.Context, userID string) ([]BudgetWithCategory, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT b.id, b.category_id, b.amount, b.user_id, c.name, c.color
		 FROM budgets b
		 LEFT JOIN categories c ON c.id = b.category_id
		 WHERE b.user_id = ?
		 ORDER BY b.created_at ASC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}
	defer rows.Close()

	budgets := []BudgetWithCategory{}
	for rows.Next() {
		b, err := scanBudgetWithCategory(rows)
		if err != nil {
			return nil, err
		}
		budgets = append(budgets, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate budgets: %w", err)
	}
	return budgets, nil
}

func (r *SQLiteRepository) GetBudget(ctx context.Context, id, userID string) (BudgetWithCategory, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT b.id, b.category_id, b.amount, b.user_id, c.name, c.color
		 FROM budgets b
		 LEFT JOIN categories c ON c.id = b.category_id
		 WHERE b.id = ? AND b.user_id = ?`,
		id, userID,
	)
	b, err := scanBudgetWithCategory(row)
	if err == sql.ErrNoRows {
		return BudgetWithCategory{}, ErrNotFound
	}
	if err != nil {
		return BudgetWithCategory{}, err
	}
	return b, nil
}

// BudgetExistsForCategory backs the create pre-check. The unique index on
// (user_id, category_id) closes the race the pre-check leaves open.
func (r *SQLiteRepository) BudgetExistsForCategory(ctx context.Context, userID, categoryID string) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM budgets WHERE user_id = ? AND category_id = ?`,
		userID, categoryID,
	).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("check budget exists: %w", err)
	}
	return n > 0, nil
}

func (r *SQLiteRepository) UpdateBudgetAmount(ctx context.Context, id, userID string, amount decimal.Decimal) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE budgets SET amount = ? WHERE id = ? AND user_id = ?`,
		encodeAmount(amount), id, userID,
	)
	if err != nil {
		return fmt.Errorf("update budget amount: %w", err)
	}
	return requireRow(res)
}

func (r *SQLiteRepository) DeleteBudget(ctx context.Context, id, userID string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM budgets WHERE id = ? AND user_id = ?`,
		id, userID,
	)
	if err != nil {
		return fmt.Errorf("delete budget: %w", err)
	}
	return requireRow(res)
}

func scanBudgetWithCategory(row rowScanner) (BudgetWithCategory, error) {
	var (
		b                           BudgetWithCategory
		amount                      string
		categoryName, categoryColor sql.NullString
	)
	err := row.Scan(&b.ID, &b.CategoryID, &amount, &b.UserID, &categoryName, &categoryColor)
	if err != nil {
		if err == sql.ErrNoRows {
			return BudgetWithCategory{}, err
		}
		return BudgetWithCategory{}, fmt.Errorf("scan budget: %w", err)
	}
	if b.Amount, err = decodeAmount(amount); err != nil {
		return BudgetWithCategory{}, err
	}
	b.CategoryName = categoryName.String
	b.CategoryColor = categoryColor.String
	return b, nil
}
