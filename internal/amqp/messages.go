package amqp

import (
	"encoding/json"
	"fmt"
	"time"
)

// EventKind names the ledger write a message announces.
type EventKind string

const (
	EventSaleRecorded    EventKind = "sale_recorded"
	EventExpenseRecorded EventKind = "expense_recorded"
)

// LedgerEvent is a lightweight notification that the ledger changed.
// It carries only the record kind and ID; consumers read the ledger itself.
type LedgerEvent struct {
	Kind      EventKind `json:"kind"`
	ID        int64     `json:"id"`
	Timestamp time.Time `json:"timestamp"`
}

// NewLedgerEvent creates an event stamped with the current time
func NewLedgerEvent(kind EventKind, id int64) *LedgerEvent {
	return &LedgerEvent{
		Kind:      kind,
		ID:        id,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *LedgerEvent) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// LedgerEventFromJSON decodes an event and rejects unknown kinds.
func LedgerEventFromJSON(data []byte) (*LedgerEvent, error) {
	var msg LedgerEvent
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	switch msg.Kind {
	case EventSaleRecorded, EventExpenseRecorded:
	default:
		return nil, fmt.Errorf("unknown ledger event kind %q", msg.Kind)
	}
	return &msg, nil
}
