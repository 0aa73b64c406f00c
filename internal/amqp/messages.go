package amqp

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// EventType doubles as the routing key on the topic exchange.
type EventType string

const (
	EventSavingsDeposit  EventType = "savings.deposit"
	EventSavingsWithdraw EventType = "savings.withdraw"
	EventExpenseCreated  EventType = "expense.created"
	EventNoteSaved       EventType = "note.saved"
	EventNoteDeleted     EventType = "note.deleted"
)

// LedgerEvent announces a committed change to the ledger.
// Note content is never included, only the title.
type LedgerEvent struct {
	Type      EventType `json:"type"`
	ID        int64     `json:"id,omitempty"`
	Amount    string    `json:"amount,omitempty"`
	Balance   string    `json:"balance,omitempty"`
	Title     string    `json:"title,omitempty"`
	Created   bool      `json:"created,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// NewSavingsEvent creates a deposit or withdraw event carrying the resulting balance.
func NewSavingsEvent(t EventType, amount, balance decimal.Decimal) *LedgerEvent {
	return &LedgerEvent{
		Type:      t,
		Amount:    amount.String(),
		Balance:   balance.String(),
		Timestamp: time.Now(),
	}
}

func NewExpenseEvent(id int64, amount decimal.Decimal) *LedgerEvent {
	return &LedgerEvent{
		Type:      EventExpenseCreated,
		ID:        id,
		Amount:    amount.String(),
		Timestamp: time.Now(),
	}
}

func NewNoteEvent(t EventType, title string, created bool) *LedgerEvent {
	return &LedgerEvent{
		Type:      t,
		Title:     title,
		Created:   created,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the event to JSON bytes
func (e *LedgerEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// LedgerEventFromJSON decodes an event published by Client.Publish.
func LedgerEventFromJSON(data []byte) (*LedgerEvent, error) {
	var e LedgerEvent
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, err
	}
	return &e, nil
}
