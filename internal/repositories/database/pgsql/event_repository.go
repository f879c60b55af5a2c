package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/ledgercore/subledger_app/internal/apperrors"
	"github.com/ledgercore/subledger_app/internal/core/domain"
	portsrepo "github.com/ledgercore/subledger_app/internal/core/ports/repositories"
	"github.com/ledgercore/subledger_app/internal/models"
	"github.com/ledgercore/subledger_app/internal/utils/mapping"
	"github.com/shopspring/decimal"
)

const eventColumns = `event_id, organization_id, source_system, event_type, transaction_date, payload, idempotency_key, status, journal_id, received_at, created_by`

type PgxEventRepository struct {
	BaseRepository
	accountRepo portsrepo.GLAccountRepositoryFacade
}

// newPgxEventRepository creates a new repository for ingested accounting events.
func newPgxEventRepository(pool *pgxpool.Pool, accountRepo portsrepo.GLAccountRepositoryFacade) portsrepo.EventRepositoryWithTx {
	return &PgxEventRepository{
		BaseRepository: BaseRepository{Pool: pool},
		accountRepo:    accountRepo,
	}
}

// Ensure PgxEventRepository implements portsrepo.EventRepositoryWithTx
var _ portsrepo.EventRepositoryWithTx = (*PgxEventRepository)(nil)

func scanEvent(row pgx.Row) (*models.AccountingEvent, error) {
	var m models.AccountingEvent
	err := row.Scan(
		&m.EventID,
		&m.OrganizationID,
		&m.SourceSystem,
		&m.EventType,
		&m.TransactionDate,
		&m.Payload,
		&m.IdempotencyKey,
		&m.Status,
		&m.JournalID,
		&m.ReceivedAt,
		&m.CreatedBy,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// SaveEventWithEffects records the event and its ledger effects in one
// database transaction. The event insert uses ON CONFLICT DO NOTHING on the
// idempotency key, so claiming the key and writing the effects is a single
// atomic step: a concurrent duplicate observes zero rows affected and reports
// ErrDuplicateEvent without touching the ledger.
func (r *PgxEventRepository) SaveEventWithEffects(ctx context.Context, event domain.AccountingEvent, journal *domain.Journal, transactions []domain.Transaction, balanceChanges map[string]decimal.Decimal) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	m := mapping.ToModelAccountingEvent(event)
	query := `
		INSERT INTO accounting_events (` + eventColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (organization_id, idempotency_key) DO NOTHING;
	`
	tag, err := tx.Exec(ctx, query,
		m.EventID,
		m.OrganizationID,
		m.SourceSystem,
		m.EventType,
		m.TransactionDate,
		m.Payload,
		m.IdempotencyKey,
		m.Status,
		m.JournalID,
		m.ReceivedAt,
		m.CreatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to save event %s: %w", m.EventID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("idempotency key %s already processed: %w", m.IdempotencyKey, apperrors.ErrDuplicateEvent)
	}

	if journal != nil {
		if err := insertJournalTx(ctx, tx, *journal); err != nil {
			return err
		}

		accountIDs := make([]string, 0, len(balanceChanges))
		for accID := range balanceChanges {
			accountIDs = append(accountIDs, accID)
		}
		lockedAccounts, err := r.accountRepo.FindAccountsByIDsForUpdate(ctx, tx, accountIDs)
		if err != nil {
			return fmt.Errorf("failed to lock accounts for event %s: %w", m.EventID, err)
		}
		if err := r.accountRepo.UpdateAccountBalancesInTx(ctx, tx, balanceChanges, event.CreatedBy, event.ReceivedAt); err != nil {
			return fmt.Errorf("failed to update account balances for event %s: %w", m.EventID, err)
		}
		if err := insertTransactionsTx(ctx, tx, transactions, lockedAccounts); err != nil {
			return err
		}
	}

	return r.Commit(ctx, tx)
}

// FindEventByID retrieves an event by its ID.
func (r *PgxEventRepository) FindEventByID(ctx context.Context, eventID string) (*domain.AccountingEvent, error) {
	query := `SELECT ` + eventColumns + ` FROM accounting_events WHERE event_id = $1;`

	m, err := scanEvent(r.Pool.QueryRow(ctx, query, eventID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find event by ID %s: %w", eventID, err)
	}

	d := mapping.ToDomainAccountingEvent(*m)
	return &d, nil
}

// FindEventByIdempotencyKey retrieves the event an organization recorded for
// a key, if any. The key is only unique within one organization, so the query
// must scope on both.
func (r *PgxEventRepository) FindEventByIdempotencyKey(ctx context.Context, organizationID string, idempotencyKey string) (*domain.AccountingEvent, error) {
	query := `SELECT ` + eventColumns + ` FROM accounting_events WHERE organization_id = $1 AND idempotency_key = $2;`

	m, err := scanEvent(r.Pool.QueryRow(ctx, query, organizationID, idempotencyKey))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find event by idempotency key: %w", err)
	}

	d := mapping.ToDomainAccountingEvent(*m)
	return &d, nil
}

// ListEventsByOrganization retrieves events for an organization, newest first.
func (r *PgxEventRepository) ListEventsByOrganization(ctx context.Context, organizationID string, limit int, offset int) ([]domain.AccountingEvent, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	query := `
		SELECT ` + eventColumns + `
		FROM accounting_events
		WHERE organization_id = $1
		ORDER BY received_at DESC
		LIMIT $2 OFFSET $3;
	`

	rows, err := r.Pool.Query(ctx, query, organizationID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query events for organization %s: %w", organizationID, err)
	}
	defer rows.Close()

	events := []models.AccountingEvent{}
	for rows.Next() {
		m, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan event row for organization %s: %w", organizationID, err)
		}
		events = append(events, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating event rows for organization %s: %w", organizationID, err)
	}

	return mapping.ToDomainAccountingEventSlice(events), nil
}
