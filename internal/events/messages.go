package events

import (
	"encoding/json"
	"time"
)

const (
	EntityIncome  = "income"
	EntityExpense = "expense"

	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionDeleted = "deleted"
)

// RecordEvent is the message published when a record changes. It carries
// identifiers only; consumers fetch the full record themselves.
type RecordEvent struct {
	Entity    string    `json:"entity"`
	Action    string    `json:"action"`
	ID        int64     `json:"id"`
	OwnerID   int64     `json:"owner_id"`
	Timestamp time.Time `json:"timestamp"`
}

// NewRecordEvent creates an event stamped with the current time.
func NewRecordEvent(entity, action string, id, ownerID int64) *RecordEvent {
	return &RecordEvent{
		Entity:    entity,
		Action:    action,
		ID:        id,
		OwnerID:   ownerID,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the event to JSON bytes.
func (e *RecordEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}
