package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"fintrack/internal/core"
)

// CreateUser inserts a new user and returns it with the generated id.
// A duplicate email maps to ErrEmailTaken.
func (r *Repository) CreateUser(ctx context.Context, email, hashedPassword string) (core.User, error) {
	result, err := r.db.ExecContext(ctx,
		"INSERT INTO users (email, hashed_password) VALUES (?, ?)",
		email, hashedPassword,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return core.User{}, ErrEmailTaken
		}
		return core.User{}, fmt.Errorf("insert user: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return core.User{}, fmt.Errorf("user id: %w", err)
	}

	return core.User{ID: id, Email: email, HashedPassword: hashedPassword}, nil
}

// GetUserByEmail looks a user up by its exact (case-sensitive) email.
func (r *Repository) GetUserByEmail(ctx context.Context, email string) (core.User, error) {
	var u core.User
	err := r.db.QueryRowContext(ctx,
		"SELECT id, email, hashed_password FROM users WHERE email = ?",
		email,
	).Scan(&u.ID, &u.Email, &u.HashedPassword)
	if errors.Is(err, sql.ErrNoRows) {
		return core.User{}, ErrNotFound
	}
	if err != nil {
		return core.User{}, fmt.Errorf("select user by email: %w", err)
	}
	return u, nil
}

// isUniqueViolation detects SQLite UNIQUE constraint failures without
// depending on driver-specific error types.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
