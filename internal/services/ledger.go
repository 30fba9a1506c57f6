// Package services wires the record store and the optional event publisher
// behind a single application-facing API.
package services

import (
	"context"
	"log/slog"

	"fintrack/internal/core"
	"fintrack/internal/events"
	"fintrack/internal/storage"
)

// EventPublisher publishes record-change notifications. A nil publisher
// disables events entirely.
type EventPublisher interface {
	PublishRecordEvent(ctx context.Context, ev *events.RecordEvent) error
}

// Ledger orchestrates record persistence and event publishing.
type Ledger struct {
	repo      *storage.Repository
	publisher EventPublisher
}

func NewLedger(repo *storage.Repository, publisher EventPublisher) *Ledger {
	return &Ledger{repo: repo, publisher: publisher}
}

// --- Users ---

func (l *Ledger) CreateUser(ctx context.Context, email, hashedPassword string) (core.User, error) {
	return l.repo.CreateUser(ctx, email, hashedPassword)
}

func (l *Ledger) GetUserByEmail(ctx context.Context, email string) (core.User, error) {
	return l.repo.GetUserByEmail(ctx, email)
}

// --- Incomes ---

func (l *Ledger) CreateIncome(ctx context.Context, ownerID int64, in core.Income) (core.Income, error) {
	created, err := l.repo.CreateIncome(ctx, ownerID, in)
	if err != nil {
		return core.Income{}, err
	}
	l.publish(ctx, events.EntityIncome, events.ActionCreated, created.ID, ownerID)
	return created, nil
}

func (l *Ledger) GetIncome(ctx context.Context, id, ownerID int64) (core.Income, error) {
	return l.repo.GetIncome(ctx, id, ownerID)
}

func (l *Ledger) ListIncomes(ctx context.Context, ownerID int64, skip, limit int) ([]core.Income, error) {
	return l.repo.ListIncomes(ctx, ownerID, skip, limit)
}

func (l *Ledger) UpdateIncome(ctx context.Context, id, ownerID int64, in core.Income) (core.Income, error) {
	updated, err := l.repo.UpdateIncome(ctx, id, ownerID, in)
	if err != nil {
		return core.Income{}, err
	}
	l.publish(ctx, events.EntityIncome, events.ActionUpdated, id, ownerID)
	return updated, nil
}

func (l *Ledger) DeleteIncome(ctx context.Context, id, ownerID int64) error {
	if err := l.repo.DeleteIncome(ctx, id, ownerID); err != nil {
		return err
	}
	l.publish(ctx, events.EntityIncome, events.ActionDeleted, id, ownerID)
	return nil
}

// --- Expenses ---

func (l *Ledger) CreateExpense(ctx context.Context, ownerID int64, e core.Expense) (core.Expense, error) {
	created, err := l.repo.CreateExpense(ctx, ownerID, e)
	if err != nil {
		return core.Expense{}, err
	}
	l.publish(ctx, events.EntityExpense, events.ActionCreated, created.ID, ownerID)
	return created, nil
}

func (l *Ledger) GetExpense(ctx context.Context, id, ownerID int64) (core.Expense, error) {
	return l.repo.GetExpense(ctx, id, ownerID)
}

func (l *Ledger) ListExpenses(ctx context.Context, ownerID int64, skip, limit int) ([]core.Expense, error) {
	return l.repo.ListExpenses(ctx, ownerID, skip, limit)
}

func (l *Ledger) UpdateExpense(ctx context.Context, id, ownerID int64, e core.Expense) (core.Expense, error) {
	updated, err := l.repo.UpdateExpense(ctx, id, ownerID, e)
	if err != nil {
		return core.Expense{}, err
	}
	l.publish(ctx, events.EntityExpense, events.ActionUpdated, id, ownerID)
	return updated, nil
}

func (l *Ledger) DeleteExpense(ctx context.Context, id, ownerID int64) error {
	if err := l.repo.DeleteExpense(ctx, id, ownerID); err != nil {
		return err
	}
	l.publish(ctx, events.EntityExpense, events.ActionDeleted, id, ownerID)
	return nil
}

// --- Summary ---

func (l *Ledger) GetSummary(ctx context.Context, ownerID int64) (storage.Summary, error) {
	return l.repo.GetSummary(ctx, ownerID)
}

// publish sends a record event without failing the request. The write
// already succeeded; a broker outage only costs the notification.
func (l *Ledger) publish(ctx context.Context, entity, action string, id, ownerID int64) {
	if l.publisher == nil {
		return
	}
	ev := events.NewRecordEvent(entity, action, id, ownerID)
	if err := l.publisher.PublishRecordEvent(ctx, ev); err != nil {
		slog.ErrorContext(ctx, "Failed to publish record event",
			"error", err,
			"entity", entity,
			"action", action,
			"id", id)
	}
}
