package audit

import (
	"encoding/json"
	"time"
)

// Operations recorded on the audit stream.
const (
	OpCreate = "create"
	OpUpdate = "update"
	OpDelete = "delete"
)

// Entities mutated through the dashboard.
const (
	EntityUser        = "user"
	EntityApartment   = "apartment"
	EntityCategory    = "category"
	EntityTransaction = "transaction"
)

// Event describes one successful admin mutation. Consumers (the report
// worker) fetch fresh data themselves; the event only says what changed.
type Event struct {
	Entity    string    `json:"entity"`
	Op        string    `json:"op"`
	EntityID  string    `json:"entityId"`
	Actor     string    `json:"actor,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

func NewEvent(entity, op, entityID string) *Event {
	return &Event{
		Entity:    entity,
		Op:        op,
		EntityID:  entityID,
		Timestamp: time.Now(),
	}
}

func (e *Event) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

func EventFromJSON(data []byte) (*Event, error) {
	var e Event
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, err
	}
	return &e, nil
}
