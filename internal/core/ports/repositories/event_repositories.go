package repositories

import (
	"context"

	"github.com/ledgercore/subledger_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// EventReader defines read operations for ingested accounting events
type EventReader interface {
	// FindEventByID retrieves a specific event.
	FindEventByID(ctx context.Context, eventID string) (*domain.AccountingEvent, error)

	// FindEventByIdempotencyKey retrieves the event an organization recorded
	// for a key, if any. Keys are only unique per organization.
	FindEventByIdempotencyKey(ctx context.Context, organizationID string, idempotencyKey string) (*domain.AccountingEvent, error)

	// ListEventsByOrganization retrieves events for an organization, newest first.
	ListEventsByOrganization(ctx context.Context, organizationID string, limit int, offset int) ([]domain.AccountingEvent, error)
}

// EventWriter defines write operations for ingested accounting events
type EventWriter interface {
	// SaveEventWithEffects records the event and its ledger effects in one
	// database transaction. The event insert is conflict-guarded on the
	// idempotency key: a duplicate key reports apperrors.ErrDuplicateEvent
	// and applies nothing, so the check-and-insert cannot race. When journal
	// is non-nil its lines and balance changes commit atomically with the
	// event row.
	SaveEventWithEffects(ctx context.Context, event domain.AccountingEvent, journal *domain.Journal, transactions []domain.Transaction, balanceChanges map[string]decimal.Decimal) error
}

// EventRepositoryFacade combines all event-related repository interfaces
type EventRepositoryFacade interface {
	EventReader
	EventWriter
}

// EventRepositoryWithTx extends EventRepositoryFacade with transaction capabilities
type EventRepositoryWithTx interface {
	EventRepositoryFacade
	TransactionManager
}
