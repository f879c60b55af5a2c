package models

import (
	"encoding/json"
	"time"
)

// AccountingEvent represents a row in the accounting_events table.
// idempotency_key carries a unique constraint scoped to organization_id.
type AccountingEvent struct {
	EventID         string          `db:"event_id"`
	OrganizationID  string          `db:"organization_id"`
	SourceSystem    string          `db:"source_system"`
	EventType       string          `db:"event_type"`
	TransactionDate time.Time       `db:"transaction_date"`
	Payload         json.RawMessage `db:"payload"`
	IdempotencyKey  string          `db:"idempotency_key"`
	Status          string          `db:"status"`
	JournalID       *string         `db:"journal_id"` // Nullable until effects are posted
	ReceivedAt      time.Time       `db:"received_at"`
	CreatedBy       string          `db:"created_by"`
}
