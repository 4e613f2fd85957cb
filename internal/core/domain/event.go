package domain

import (
	"time"

	"github.com/google/uuid"
)

// Tables that emit change events.
const (
	TableCashMovements = "movimenti_contanti"
	TableDailyRecords  = "fondo_cassa"
	TableCardPayments  = "pagamenti_pos"
	TableInvoices      = "fatture"
)

// ChangeAction is the kind of row change.
type ChangeAction string

const (
	ActionInsert ChangeAction = "INSERT"
	ActionUpdate ChangeAction = "UPDATE"
	ActionDelete ChangeAction = "DELETE"
)

// ChangeEvent signals that a row changed so that derived views can refresh.
type ChangeEvent struct {
	EventID    string       `json:"eventID"`
	Table      string       `json:"table"`
	Action     ChangeAction `json:"action"`
	Key        string       `json:"key"`
	Date       string       `json:"date,omitempty"`
	OccurredAt time.Time    `json:"occurredAt"`
	Payload    any          `json:"payload,omitempty"`
}

// RoutingKey is the topic used when the event leaves the process.
func (e ChangeEvent) RoutingKey() string {
	return e.Table + "." + string(e.Action)
}

// NewChangeEvent stamps a change event with a fresh id and the current time.
func NewChangeEvent(table string, action ChangeAction, key, date string, payload any) ChangeEvent {
	return ChangeEvent{
		EventID:    uuid.NewString(),
		Table:      table,
		Action:     action,
		Key:        key,
		Date:       date,
		OccurredAt: time.Now().UTC(),
		Payload:    payload,
	}
}
