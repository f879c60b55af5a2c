package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/ledgercore/subledger_app/internal/apperrors"
	"github.com/ledgercore/subledger_app/internal/core/domain"
	portsrepo "github.com/ledgercore/subledger_app/internal/core/ports/repositories"
	portssvc "github.com/ledgercore/subledger_app/internal/core/ports/services"
	"github.com/ledgercore/subledger_app/internal/dto"
	"github.com/ledgercore/subledger_app/internal/utils/accounting"
	"github.com/shopspring/decimal"
)

// eventService implements the EventSvcFacade interface
type eventService struct {
	BaseService
	eventRepo   portsrepo.EventRepositoryFacade
	ruleSetRepo portsrepo.RuleSetRepositoryFacade
	accountRepo portsrepo.GLAccountRepositoryFacade
}

// EventServiceOption is a functional option for configuring the event service
type EventServiceOption func(*eventService)

// WithEventAuthorizer adds the organization authorizer dependency
func WithEventAuthorizer(authorizer portssvc.OrganizationAuthorizerSvc) EventServiceOption {
	return func(s *eventService) {
		s.OrganizationAuthorizer = authorizer
	}
}

// NewEventService creates a new event service with the provided options
func NewEventService(eventRepo portsrepo.EventRepositoryFacade, ruleSetRepo portsrepo.RuleSetRepositoryFacade, accountRepo portsrepo.GLAccountRepositoryFacade, options ...EventServiceOption) portssvc.EventSvcFacade {
	svc := &eventService{
		eventRepo:   eventRepo,
		ruleSetRepo: ruleSetRepo,
		accountRepo: accountRepo,
	}
	for _, option := range options {
		option(svc)
	}
	return svc
}

// Ensure eventService implements the EventSvcFacade interface
var _ portssvc.EventSvcFacade = (*eventService)(nil)

// translatePayload resolves each payload line's external code into a GL
// account through mapping resolution at the event's transaction date and
// builds the resulting journal lines.
func (s *eventService) translatePayload(ctx context.Context, organizationID string, event domain.AccountingEvent, journalID string, userID string, now time.Time) ([]domain.Transaction, error) {
	var payload dto.EventPayload
	if err := json.Unmarshal(event.Payload, &payload); err != nil {
		return nil, fmt.Errorf("malformed event payload: %s: %w", err.Error(), apperrors.ErrValidation)
	}
	if len(payload.Lines) < 2 {
		return nil, fmt.Errorf("event payload must carry at least two lines: %w", apperrors.ErrValidation)
	}

	transactions := make([]domain.Transaction, len(payload.Lines))
	for i, line := range payload.Lines {
		amount, err := decimal.NewFromString(line.Amount)
		if err != nil {
			return nil, fmt.Errorf("invalid amount %q on line %d: %w", line.Amount, i, apperrors.ErrValidation)
		}
		if amount.LessThanOrEqual(decimal.Zero) {
			return nil, fmt.Errorf("amount must be positive on line %d: %w", i, apperrors.ErrValidation)
		}

		var side domain.TransactionType
		switch line.Side {
		case string(domain.Debit):
			side = domain.Debit
		case string(domain.Credit):
			side = domain.Credit
		default:
			return nil, fmt.Errorf("invalid side %q on line %d: %w", line.Side, i, apperrors.ErrValidation)
		}

		mapping, err := s.ruleSetRepo.ResolveGLMapping(ctx, organizationID, event.SourceSystem, line.ExternalCode, event.TransactionDate)
		if err != nil {
			return nil, fmt.Errorf("no GL mapping for code %q: %w", line.ExternalCode, err)
		}

		transactions[i] = domain.Transaction{
			TransactionID:   uuid.NewString(),
			JournalID:       journalID,
			AccountID:       mapping.GLAccountID,
			Amount:          amount,
			TransactionType: side,
			Notes:           payload.Description,
			TransactionDate: event.TransactionDate,
			AuditFields: domain.AuditFields{
				CreatedAt:     now,
				CreatedBy:     userID,
				LastUpdatedAt: now,
				LastUpdatedBy: userID,
			},
		}
	}
	return transactions, nil
}

// originalForKey fetches the event that first claimed an idempotency key so a
// replayed submission can report the original outcome. Best effort only. The
// lookup is scoped to the submitting organization; an event from another
// organization that happens to share a key is never surfaced.
func (s *eventService) originalForKey(ctx context.Context, organizationID string, idempotencyKey string) *domain.AccountingEvent {
	original, err := s.eventRepo.FindEventByIdempotencyKey(ctx, organizationID, idempotencyKey)
	if err != nil {
		return nil
	}
	if original.OrganizationID != organizationID {
		return nil
	}
	return original
}

func (s *eventService) SubmitAccountingEvent(ctx context.Context, organizationID string, req dto.SubmitEventRequest, userID string) (*domain.AccountingEvent, error) {
	if err := s.AuthorizeUser(ctx, userID, organizationID, domain.RoleMember); err != nil {
		s.LogError(ctx, err, "User not authorized to submit accounting event",
			slog.String("user_id", userID),
			slog.String("organization_id", organizationID))
		return nil, err
	}

	idempotencyKey := ""
	if req.IdempotencyKey != nil && *req.IdempotencyKey != "" {
		idempotencyKey = *req.IdempotencyKey
	} else {
		idempotencyKey = domain.DeriveIdempotencyKey(organizationID, req.SourceSystem, req.EventType, req.Payload)
	}

	now := time.Now()
	event := domain.AccountingEvent{
		EventID:         uuid.NewString(),
		OrganizationID:  organizationID,
		SourceSystem:    req.SourceSystem,
		EventType:       req.EventType,
		TransactionDate: req.TransactionDate,
		Payload:         req.Payload,
		IdempotencyKey:  idempotencyKey,
		Status:          domain.EventReceived,
		ReceivedAt:      now,
		CreatedBy:       userID,
	}

	journalID := uuid.NewString()
	transactions, translateErr := s.translatePayload(ctx, organizationID, event, journalID, userID, now)

	var journal *domain.Journal
	var balanceChanges map[string]decimal.Decimal

	if translateErr == nil {
		totalDebit, totalCredit := accounting.ComputeTotals(transactions)
		if !totalDebit.Equal(totalCredit) {
			translateErr = fmt.Errorf("event effects do not balance: debits %s, credits %s: %w",
				totalDebit.String(), totalCredit.String(), apperrors.ErrUnbalanced)
		} else {
			accountIDs := make([]string, 0, len(transactions))
			seen := make(map[string]struct{}, len(transactions))
			for _, txn := range transactions {
				if _, ok := seen[txn.AccountID]; !ok {
					seen[txn.AccountID] = struct{}{}
					accountIDs = append(accountIDs, txn.AccountID)
				}
			}
			accounts, err := s.accountRepo.FindAccountsByIDs(ctx, accountIDs)
			if err != nil {
				translateErr = fmt.Errorf("failed to fetch accounts for event: %w", err)
			} else {
				balanceChanges, translateErr = accounting.CalculateBalanceChanges(transactions, accounts)
				if translateErr == nil {
					currency := ""
					for _, id := range accountIDs {
						currency = accounts[id].CurrencyCode
						break
					}
					for i := range transactions {
						transactions[i].CurrencyCode = currency
					}
					journal = &domain.Journal{
						JournalID:      journalID,
						OrganizationID: organizationID,
						JournalDate:    req.TransactionDate,
						Description:    fmt.Sprintf("%s event from %s", req.EventType, req.SourceSystem),
						CurrencyCode:   currency,
						Status:         domain.JournalPosted,
						TotalDebit:     totalDebit,
						TotalCredit:    totalCredit,
						PostingDate:    &now,
						AuditFields: domain.AuditFields{
							CreatedAt:     now,
							CreatedBy:     userID,
							LastUpdatedAt: now,
							LastUpdatedBy: userID,
						},
					}
				}
			}
		}
	}

	if translateErr != nil {
		// The event is still recorded, as REJECTED, so the idempotency key
		// is claimed and retries of a bad event stay visible.
		event.Status = domain.EventRejected
		if err := s.eventRepo.SaveEventWithEffects(ctx, event, nil, nil, nil); err != nil {
			if errors.Is(err, apperrors.ErrDuplicateEvent) {
				s.LogInfo(ctx, "Duplicate accounting event rejected",
					slog.String("idempotency_key", idempotencyKey))
				return s.originalForKey(ctx, organizationID, idempotencyKey), err
			}
			s.LogError(ctx, err, "Failed to record rejected event",
				slog.String("event_id", event.EventID))
			return nil, err
		}
		s.LogError(ctx, translateErr, "Accounting event rejected",
			slog.String("event_id", event.EventID),
			slog.String("idempotency_key", idempotencyKey))
		return nil, translateErr
	}

	event.Status = domain.EventProcessed
	event.JournalID = &journalID

	if err := s.eventRepo.SaveEventWithEffects(ctx, event, journal, transactions, balanceChanges); err != nil {
		if errors.Is(err, apperrors.ErrDuplicateEvent) {
			s.LogInfo(ctx, "Duplicate accounting event rejected",
				slog.String("idempotency_key", idempotencyKey),
				slog.String("source_system", req.SourceSystem))
			return s.originalForKey(ctx, organizationID, idempotencyKey), err
		}
		s.LogError(ctx, err, "Failed to save accounting event",
			slog.String("event_id", event.EventID))
		return nil, err
	}

	s.LogInfo(ctx, "Accounting event processed",
		slog.String("event_id", event.EventID),
		slog.String("journal_id", journalID),
		slog.String("idempotency_key", idempotencyKey))
	return &event, nil
}

func (s *eventService) GetEventByID(ctx context.Context, organizationID string, eventID string, userID string) (*domain.AccountingEvent, error) {
	if err := s.AuthorizeUser(ctx, userID, organizationID, domain.RoleReadOnly); err != nil {
		return nil, err
	}

	event, err := s.eventRepo.FindEventByID(ctx, eventID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find accounting event",
				slog.String("event_id", eventID))
		}
		return nil, err
	}
	if event.OrganizationID != organizationID {
		s.LogDebug(ctx, "Event belongs to different organization",
			slog.String("event_id", eventID))
		return nil, apperrors.ErrNotFound
	}
	return event, nil
}

func (s *eventService) ListEvents(ctx context.Context, organizationID string, userID string, limit int, offset int) ([]domain.AccountingEvent, error) {
	if err := s.AuthorizeUser(ctx, userID, organizationID, domain.RoleReadOnly); err != nil {
		return nil, err
	}

	if limit <= 0 {
		limit = 20
	}

	events, err := s.eventRepo.ListEventsByOrganization(ctx, organizationID, limit, offset)
	if err != nil {
		s.LogError(ctx, err, "Failed to list accounting events",
			slog.String("organization_id", organizationID))
		return nil, err
	}
	if events == nil {
		return []domain.AccountingEvent{}, nil
	}
	return events, nil
}
