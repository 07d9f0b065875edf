// Package events publishes ledger changes to a message broker so other
// services can react to new expenses and payments.
package events

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Type names an event; it doubles as the AMQP routing key.
type Type string

const (
	TypeExpenseRecorded Type = "expense.recorded"
	TypePaymentRecorded Type = "payment.recorded"
)

// ShareLine is one participant's part of a recorded entry
type ShareLine struct {
	Member      string `json:"member"`
	AmountCents int64  `json:"amount_cents"`
}

// Event is the message body published for every ledger append
type Event struct {
	ID          string      `json:"id"`
	Type        Type        `json:"type"`
	GroupID     int64       `json:"group_id"`
	ExpenseID   int64       `json:"expense_id"`
	Sequence    int64       `json:"sequence"`
	Payer       string      `json:"payer"`
	AmountCents int64       `json:"amount_cents"`
	Currency    string      `json:"currency"`
	Description string      `json:"description,omitempty"`
	SplitType   string      `json:"split_type"`
	Shares      []ShareLine `json:"shares"`
	OccurredAt  time.Time   `json:"occurred_at"`
}

// New stamps a fresh event id and time onto an event of the given type
func New(t Type) *Event {
	return &Event{
		ID:         uuid.NewString(),
		Type:       t,
		OccurredAt: time.Now().UTC(),
	}
}

// ToJSON converts the event to JSON bytes
func (e *Event) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// FromJSON decodes an event published by ToJSON
func FromJSON(data []byte) (*Event, error) {
	var e Event
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, err
	}
	return &e, nil
}
