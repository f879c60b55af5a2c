package services

import (
	"context"

	"github.com/ledgercore/subledger_app/internal/core/domain"
	"github.com/ledgercore/subledger_app/internal/dto"
)

// EventSvcFacade defines operations for idempotent cross-domain event ingestion.
type EventSvcFacade interface {
	// SubmitAccountingEvent records an inbound business event exactly once
	// per idempotency key and translates it into ledger effects. A duplicate
	// key fails with apperrors.ErrDuplicateEvent and applies nothing.
	SubmitAccountingEvent(ctx context.Context, organizationID string, req dto.SubmitEventRequest, userID string) (*domain.AccountingEvent, error)

	// GetEventByID retrieves a previously ingested event.
	GetEventByID(ctx context.Context, organizationID string, eventID string, userID string) (*domain.AccountingEvent, error)

	// ListEvents retrieves ingested events for an organization, newest first.
	ListEvents(ctx context.Context, organizationID string, userID string, limit int, offset int) ([]domain.AccountingEvent, error)
}
