package storage

import (
	"context"
	"fmt"
)

// Summary holds per-owner aggregate totals.
type Summary struct {
	IncomeTotal  float64
	ExpenseTotal float64
}

// GetSummary computes the owner's income and expense totals.
func (r *Repository) GetSummary(ctx context.Context, ownerID int64) (Summary, error) {
	var s Summary

	err := r.db.QueryRowContext(ctx,
		"SELECT COALESCE(SUM(value), 0) FROM incomes WHERE owner_id = ?",
		ownerID,
	).Scan(&s.IncomeTotal)
	if err != nil {
		return Summary{}, fmt.Errorf("sum incomes: %w", err)
	}

	err = r.db.QueryRowContext(ctx,
		"SELECT COALESCE(SUM(value), 0) FROM expenses WHERE owner_id = ?",
		ownerID,
	).Scan(&s.ExpenseTotal)
	if err != nil {
		return Summary{}, fmt.Errorf("sum expenses: %w", err)
	}

	return s, nil
}
