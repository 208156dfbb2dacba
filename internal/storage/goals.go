package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"

	"fintrack/internal/core"
)

const goalColumns = `id, name, target_amount, current_amount, target_date, icon, color, is_active, user_id`

func (r *SQLiteRepository) CreateGoal(ctx context.Context, g core.SavingsGoal) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO savings_goals (id, name, target_amount, current_amount, target_date, icon, color, is_active, user_id)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		g.ID, g.Name, encodeAmount(g.TargetAmount), encodeAmount(g.CurrentAmount),
		encodeTime(g.TargetDate), g.Icon, g.Color, g.IsActive, g.UserID,
	)
	if err != nil {
		return fmt.Errorf("create savings goal: %w", err)
	}
	return nil
}

// ListGoals returns goals with incomplete ones first, nearest target date
// first within each group. The completed flag is derived with a REAL cast,
// which is safe for ordering even though sums never go through floats.
func (r *SQLiteRepository) ListGoals(ctx context.Context, userID string, activeOnly bool) ([]core.SavingsGoal, error) {
	query := `SELECT ` + goalColumns + ` FROM savings_goals WHERE user_id = ?`
	args := []any{userID}
	if activeOnly {
		query += ` AND is_active = 1`
	}
	query += ` ORDER BY (CAST(current_amount AS REAL) >= CAST(target_amount AS REAL)) ASC, target_date ASC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list savings goals: %w", err)
	}
	defer rows.Close()

	goals := []core.SavingsGoal{}
	for rows.Next() {
		g, err := scanGoal(rows)
		if err != nil {
			return nil, err
		}
		goals = append(goals, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate savings goals: %w", err)
	}
	return goals, nil
}

func (r *SQLiteRepository) GetGoal(ctx context.Context, id, userID string) (core.SavingsGoal, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+goalColumns+` FROM savings_goals WHERE id = ? AND user_id = ?`,
		id, userID,
	)
	g, err := scanGoal(row)
	if err == sql.ErrNoRows {
		return core.SavingsGoal{}, ErrNotFound
	}
	if err != nil {
		return core.SavingsGoal{}, err
	}
	return g, nil
}

func (r *SQLiteRepository) UpdateGoal(ctx context.Context, g core.SavingsGoal) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE savings_goals
		 SET name = ?, target_amount = ?, current_amount = ?, target_date = ?, icon = ?, color = ?, is_active = ?
		 WHERE id = ? AND user_id = ?`,
		g.Name, encodeAmount(g.TargetAmount), encodeAmount(g.CurrentAmount),
		encodeTime(g.TargetDate), g.Icon, g.Color, g.IsActive,
		g.ID, g.UserID,
	)
	if err != nil {
		return fmt.Errorf("update savings goal: %w", err)
	}
	return requireRow(res)
}

func (r *SQLiteRepository) DeleteGoal(ctx context.Context, id, userID string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM savings_goals WHERE id = ? AND user_id = ?`,
		id, userID,
	)
	if err != nil {
		return fmt.Errorf("delete savings goal: %w", err)
	}
	return requireRow(res)
}

// AddGoalFunds adds amount to the goal's current balance inside a database
// transaction so concurrent contributions cannot lose an update. It returns
// the new balance.
func (r *SQLiteRepository) AddGoalFunds(ctx context.Context, id, userID string, amount decimal.Decimal) (decimal.Decimal, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("begin add funds: %w", err)
	}
	defer tx.Rollback()

	var current string
	err = tx.QueryRowContext(ctx,
		`SELECT current_amount FROM savings_goals WHERE id = ? AND user_id = ?`,
		id, userID,
	).Scan(&current)
	if err == sql.ErrNoRows {
		return decimal.Decimal{}, ErrNotFound
	}
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("read current amount: %w", err)
	}

	balance, err := decodeAmount(current)
	if err != nil {
		return decimal.Decimal{}, err
	}
	newBalance := balance.Add(amount)

	if _, err := tx.ExecContext(ctx,
		`UPDATE savings_goals SET current_amount = ? WHERE id = ?`,
		encodeAmount(newBalance), id,
	); err != nil {
		return decimal.Decimal{}, fmt.Errorf("update current amount: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return decimal.Decimal{}, fmt.Errorf("commit add funds: %w", err)
	}
	return newBalance, nil
}

func scanGoal(row rowScanner) (core.SavingsGoal, error) {
	var (
		g                            core.SavingsGoal
		target, current, targetDate string
	)
	err := row.Scan(&g.ID, &g.Name, &target, &current, &targetDate, &g.Icon, &g.Color, &g.IsActive, &g.UserID)
	if err != nil {
		if err == sql.ErrNoRows {
			return core.SavingsGoal{}, err
		}
		return core.SavingsGoal{}, fmt.Errorf("scan savings goal: %w", err)
	}
	if g.TargetAmount, err = decodeAmount(target); err != nil {
		return core.SavingsGoal{}, err
	}
	if g.CurrentAmount, err = decodeAmount(current); err != nil {
		return core.SavingsGoal{}, err
	}
	if g.TargetDate, err = decodeTime(targetDate); err != nil {
		return core.SavingsGoal{}, err
	}
	return g, nil
}
