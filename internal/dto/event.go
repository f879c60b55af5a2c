package dto

import (
	"encoding/json"
	"time"

	"github.com/ledgercore/subledger_app/internal/core/domain"
)

// SubmitEventRequest defines the data needed to submit a cross-domain
// accounting event. IdempotencyKey is optional; when absent, a deterministic
// key is derived from the event coordinates and payload.
type SubmitEventRequest struct {
	SourceSystem    string          `json:"sourceSystem" binding:"required"`
	EventType       string          `json:"eventType" binding:"required"`
	TransactionDate time.Time       `json:"transactionDate" binding:"required"`
	Payload         json.RawMessage `json:"payload" binding:"required"`
	IdempotencyKey  *string         `json:"idempotencyKey"`
}

// EventPayload is the portion of the payload the subledger understands:
// amounts keyed by external codes that GL mapping resolution can translate.
type EventPayload struct {
	Description string            `json:"description"`
	Lines       []EventLine       `json:"lines"`
	Attributes  map[string]string `json:"attributes,omitempty"`
}

// EventLine is one leg of the business event in source-system vocabulary.
type EventLine struct {
	ExternalCode string `json:"externalCode" binding:"required"`
	Amount       string `json:"amount" binding:"required"` // Decimal string
	Side         string `json:"side" binding:"required"`   // DEBIT or CREDIT
}

// EventResponse defines the data returned for an ingested event.
type EventResponse struct {
	EventID        string             `json:"eventID"`
	SourceSystem   string             `json:"sourceSystem"`
	EventType      string             `json:"eventType"`
	IdempotencyKey string             `json:"idempotencyKey"`
	Status         domain.EventStatus `json:"status"`
	JournalID      *string            `json:"journalID,omitempty"`
	ReceivedAt     time.Time          `json:"receivedAt"`
}

// ToEventResponse converts a domain.AccountingEvent to DTO.
func ToEventResponse(e *domain.AccountingEvent) EventResponse {
	return EventResponse{
		EventID:        e.EventID,
		SourceSystem:   e.SourceSystem,
		EventType:      e.EventType,
		IdempotencyKey: e.IdempotencyKey,
		Status:         e.Status,
		JournalID:      e.JournalID,
		ReceivedAt:     e.ReceivedAt,
	}
}

// ToEventResponses converts a slice of domain.AccountingEvent to DTOs.
func ToEventResponses(events []domain.AccountingEvent) []EventResponse {
	res := make([]EventResponse, len(events))
	for i, e := range events {
		res[i] = ToEventResponse(&e)
	}
	return res
}
