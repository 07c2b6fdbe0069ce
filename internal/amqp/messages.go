package amqp

import (
	"encoding/json"
	"time"
)

// Event actions carried by expense event messages.
const (
	ActionCreated   = "created"
	ActionDeleted   = "deleted"
	ActionGenerated = "generated" // materialized by the recurrence engine
)

// ExpenseEventMessage is a lightweight notification that an expense changed.
// It carries only the ID and action; consumers fetch the full record from
// the store when they need it.
type ExpenseEventMessage struct {
	ID        int64     `json:"id"`
	Action    string    `json:"action"`
	Timestamp time.Time `json:"timestamp"`
}

func NewExpenseEventMessage(id int64, action string) *ExpenseEventMessage {
	return &ExpenseEventMessage{
		ID:        id,
		Action:    action,
		Timestamp: time.Now(),
	}
}

func (m *ExpenseEventMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func ExpenseEventMessageFromJSON(data []byte) (*ExpenseEventMessage, error) {
	var msg ExpenseEventMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
