package services

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"fintrack/internal/core"
	"fintrack/internal/events"
	"fintrack/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingPublisher struct {
	published []*events.RecordEvent
	fail      bool
}

func (p *recordingPublisher) PublishRecordEvent(_ context.Context, ev *events.RecordEvent) error {
	if p.fail {
		return errors.New("broker unavailable")
	}
	p.published = append(p.published, ev)
	return nil
}

func newTestLedger(t *testing.T, pub EventPublisher) (*Ledger, core.User) {
	t.Helper()
	repo, err := storage.New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })

	ledger := NewLedger(repo, pub)
	user, err := ledger.CreateUser(context.Background(), "alice@example.com", "hash")
	require.NoError(t, err)
	return ledger, user
}

func TestCreateIncomePublishesEvent(t *testing.T) {
	pub := &recordingPublisher{}
	ledger, user := newTestLedger(t, pub)

	created, err := ledger.CreateIncome(context.Background(), user.ID, core.Income{
		Date: core.NewDate(2024, 1, 1), Type: "Salário", Value: 1000,
	})
	require.NoError(t, err)

	require.Len(t, pub.published, 1)
	ev := pub.published[0]
	assert.Equal(t, events.EntityIncome, ev.Entity)
	assert.Equal(t, events.ActionCreated, ev.Action)
	assert.Equal(t, created.ID, ev.ID)
	assert.Equal(t, user.ID, ev.OwnerID)
}

func TestDeleteExpensePublishesEvent(t *testing.T) {
	pub := &recordingPublisher{}
	ledger, user := newTestLedger(t, pub)

	created, err := ledger.CreateExpense(context.Background(), user.ID, core.Expense{
		Date: core.NewDate(2024, 2, 2), Value: 60, Type: "Transporte",
	})
	require.NoError(t, err)

	require.NoError(t, ledger.DeleteExpense(context.Background(), created.ID, user.ID))

	require.Len(t, pub.published, 2)
	assert.Equal(t, events.ActionDeleted, pub.published[1].Action)
}

func TestPublishFailureDoesNotFailRequest(t *testing.T) {
	ledger, user := newTestLedger(t, &recordingPublisher{fail: true})

	created, err := ledger.CreateIncome(context.Background(), user.ID, core.Income{
		Date: core.NewDate(2024, 1, 1), Type: "Salário", Value: 1000,
	})
	require.NoError(t, err, "a broker outage must not fail the write")
	assert.Positive(t, created.ID)
}

func TestNilPublisherTolerated(t *testing.T) {
	ledger, user := newTestLedger(t, nil)

	_, err := ledger.CreateIncome(context.Background(), user.ID, core.Income{
		Date: core.NewDate(2024, 1, 1), Type: "Salário", Value: 1000,
	})
	require.NoError(t, err)
}

func TestFailedWritePublishesNothing(t *testing.T) {
	pub := &recordingPublisher{}
	ledger, user := newTestLedger(t, pub)

	err := ledger.DeleteIncome(context.Background(), 999, user.ID)
	assert.ErrorIs(t, err, storage.ErrNotFound)
	assert.Empty(t, pub.published)
}
