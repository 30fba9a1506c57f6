package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"fintrack/internal/core"
)

// CreateExpense inserts an expense for the given owner and returns it with
// the generated id and owner reference set.
func (r *Repository) CreateExpense(ctx context.Context, ownerID int64, e core.Expense) (core.Expense, error) {
	result, err := r.db.ExecContext(ctx,
		`INSERT INTO expenses
			(date, value, type, is_installment, installment_count, installment_value,
			 is_recurring, recurring_start_date, notes, owner_id)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.Date, e.Value, e.Type, e.IsInstallment, nullInt(e.InstallmentCount),
		nullFloat(e.InstallmentValue), e.IsRecurring, nullDate(e.RecurringStartDate),
		nullString(e.Notes), ownerID,
	)
	if err != nil {
		return core.Expense{}, fmt.Errorf("insert expense: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return core.Expense{}, fmt.Errorf("expense id: %w", err)
	}

	e.ID = id
	e.OwnerID = ownerID
	return e, nil
}

// GetExpense fetches a single expense by id and owner in one predicate.
func (r *Repository) GetExpense(ctx context.Context, id, ownerID int64) (core.Expense, error) {
	row := r.db.QueryRowContext(ctx,
		expenseColumns+" WHERE id = ? AND owner_id = ?",
		id, ownerID,
	)
	return scanExpense(row)
}

// ListExpenses returns the owner's expenses ordered by id, windowed by
// skip/limit.
func (r *Repository) ListExpenses(ctx context.Context, ownerID int64, skip, limit int) ([]core.Expense, error) {
	rows, err := r.db.QueryContext(ctx,
		expenseColumns+" WHERE owner_id = ? ORDER BY id LIMIT ? OFFSET ?",
		ownerID, limit, skip,
	)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	defer rows.Close()

	expenses := []core.Expense{}
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, err
		}
		expenses = append(expenses, e)
	}
	return expenses, rows.Err()
}

// UpdateExpense replaces every field except id and owner. Absent or foreign
// rows map to ErrNotFound.
func (r *Repository) UpdateExpense(ctx context.Context, id, ownerID int64, e core.Expense) (core.Expense, error) {
	result, err := r.db.ExecContext(ctx,
		`UPDATE expenses SET
			date = ?, value = ?, type = ?, is_installment = ?, installment_count = ?,
			installment_value = ?, is_recurring = ?, recurring_start_date = ?, notes = ?
		 WHERE id = ? AND owner_id = ?`,
		e.Date, e.Value, e.Type, e.IsInstallment, nullInt(e.InstallmentCount),
		nullFloat(e.InstallmentValue), e.IsRecurring, nullDate(e.RecurringStartDate),
		nullString(e.Notes), id, ownerID,
	)
	if err != nil {
		return core.Expense{}, fmt.Errorf("update expense: %w", err)
	}
	if err := requireRow(result); err != nil {
		return core.Expense{}, err
	}

	e.ID = id
	e.OwnerID = ownerID
	return e, nil
}

// DeleteExpense removes the owner's expense by id.
func (r *Repository) DeleteExpense(ctx context.Context, id, ownerID int64) error {
	result, err := r.db.ExecContext(ctx,
		"DELETE FROM expenses WHERE id = ? AND owner_id = ?",
		id, ownerID,
	)
	if err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}
	return requireRow(result)
}

const expenseColumns = `SELECT id, date, value, type, is_installment, installment_count,
	installment_value, is_recurring, recurring_start_date, notes, owner_id FROM expenses`

func scanExpense(row rowScanner) (core.Expense, error) {
	var e core.Expense
	var count sql.NullInt64
	var value sql.NullFloat64
	var startDate core.Date
	var hasStartDate bool
	var rawStart sql.NullString
	var notes sql.NullString

	err := row.Scan(&e.ID, &e.Date, &e.Value, &e.Type, &e.IsInstallment, &count,
		&value, &e.IsRecurring, &rawStart, &notes, &e.OwnerID)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Expense{}, ErrNotFound
	}
	if err != nil {
		return core.Expense{}, fmt.Errorf("scan expense: %w", err)
	}

	if count.Valid {
		e.InstallmentCount = &count.Int64
	}
	if value.Valid {
		e.InstallmentValue = &value.Float64
	}
	if rawStart.Valid {
		if err := startDate.Scan(rawStart.String); err != nil {
			return core.Expense{}, err
		}
		hasStartDate = true
	}
	if hasStartDate {
		e.RecurringStartDate = &startDate
	}
	if notes.Valid {
		e.Notes = &notes.String
	}
	return e, nil
}

func nullInt(v *int64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *v, Valid: true}
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

func nullDate(d *core.Date) any {
	if d == nil {
		return nil
	}
	return *d
}
