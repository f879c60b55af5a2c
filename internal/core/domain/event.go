package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"
)

// EventStatus tracks the disposition of an ingested cross-domain event.
type EventStatus string

const (
	EventReceived  EventStatus = "RECEIVED"
	EventProcessed EventStatus = "PROCESSED"
	EventRejected  EventStatus = "REJECTED"
)

// AccountingEvent is a cross-domain business event (e.g., from billing)
// recorded before translation into ledger effects. IdempotencyKey is unique;
// a duplicate submission is rejected without re-applying effects.
type AccountingEvent struct {
	EventID         string          `json:"eventID"` // Primary Key (e.g., UUID)
	OrganizationID  string          `json:"organizationID"`
	SourceSystem    string          `json:"sourceSystem"`
	EventType       string          `json:"eventType"`
	TransactionDate time.Time       `json:"transactionDate"`
	Payload         json.RawMessage `json:"payload"`
	IdempotencyKey  string          `json:"idempotencyKey"`
	Status          EventStatus     `json:"status"`
	JournalID       *string         `json:"journalID,omitempty"` // Set once the event posts a journal entry
	ReceivedAt      time.Time       `json:"receivedAt"`
	CreatedBy       string          `json:"createdBy"`
}

// DeriveIdempotencyKey builds a deterministic key from the event coordinates
// and the payload's identity. Callers that retry the same logical event
// always land on the same key, regardless of delivery count.
func DeriveIdempotencyKey(organizationID, sourceSystem, eventType string, payload json.RawMessage) string {
	h := sha256.New()
	h.Write([]byte(organizationID))
	h.Write([]byte{'|'})
	h.Write([]byte(sourceSystem))
	h.Write([]byte{'|'})
	h.Write([]byte(eventType))
	h.Write([]byte{'|'})
	h.Write(payload)
	return hex.EncodeToString(h.Sum(nil))
}
