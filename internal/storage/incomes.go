package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"fintrack/internal/core"
)

// CreateIncome inserts an income for the given owner and returns it with
// the generated id and owner reference set.
func (r *Repository) CreateIncome(ctx context.Context, ownerID int64, in core.Income) (core.Income, error) {
	result, err := r.db.ExecContext(ctx,
		"INSERT INTO incomes (date, type, value, notes, owner_id) VALUES (?, ?, ?, ?, ?)",
		in.Date, in.Type, in.Value, nullString(in.Notes), ownerID,
	)
	if err != nil {
		return core.Income{}, fmt.Errorf("insert income: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return core.Income{}, fmt.Errorf("income id: %w", err)
	}

	in.ID = id
	in.OwnerID = ownerID
	return in, nil
}

// GetIncome fetches a single income by id and owner in one predicate.
func (r *Repository) GetIncome(ctx context.Context, id, ownerID int64) (core.Income, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT id, date, type, value, notes, owner_id FROM incomes WHERE id = ? AND owner_id = ?",
		id, ownerID,
	)
	return scanIncome(row)
}

// ListIncomes returns the owner's incomes ordered by id, windowed by
// skip/limit.
func (r *Repository) ListIncomes(ctx context.Context, ownerID int64, skip, limit int) ([]core.Income, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, date, type, value, notes, owner_id FROM incomes WHERE owner_id = ? ORDER BY id LIMIT ? OFFSET ?",
		ownerID, limit, skip,
	)
	if err != nil {
		return nil, fmt.Errorf("list incomes: %w", err)
	}
	defer rows.Close()

	incomes := []core.Income{}
	for rows.Next() {
		in, err := scanIncome(rows)
		if err != nil {
			return nil, err
		}
		incomes = append(incomes, in)
	}
	return incomes, rows.Err()
}

// UpdateIncome replaces every field except id and owner. Absent or foreign
// rows map to ErrNotFound.
func (r *Repository) UpdateIncome(ctx context.Context, id, ownerID int64, in core.Income) (core.Income, error) {
	result, err := r.db.ExecContext(ctx,
		"UPDATE incomes SET date = ?, type = ?, value = ?, notes = ? WHERE id = ? AND owner_id = ?",
		in.Date, in.Type, in.Value, nullString(in.Notes), id, ownerID,
	)
	if err != nil {
		return core.Income{}, fmt.Errorf("update income: %w", err)
	}
	if err := requireRow(result); err != nil {
		return core.Income{}, err
	}

	in.ID = id
	in.OwnerID = ownerID
	return in, nil
}

// DeleteIncome removes the owner's income by id.
func (r *Repository) DeleteIncome(ctx context.Context, id, ownerID int64) error {
	result, err := r.db.ExecContext(ctx,
		"DELETE FROM incomes WHERE id = ? AND owner_id = ?",
		id, ownerID,
	)
	if err != nil {
		return fmt.Errorf("delete income: %w", err)
	}
	return requireRow(result)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanIncome(row rowScanner) (core.Income, error) {
	var in core.Income
	var notes sql.NullString
	err := row.Scan(&in.ID, &in.Date, &in.Type, &in.Value, &notes, &in.OwnerID)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Income{}, ErrNotFound
	}
	if err != nil {
		return core.Income{}, fmt.Errorf("scan income: %w", err)
	}
	if notes.Valid {
		in.Notes = &notes.String
	}
	return in, nil
}

// requireRow maps zero affected rows to ErrNotFound.
func requireRow(result sql.Result) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}
