package services_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/ledgercore/subledger_app/internal/apperrors"
	"github.com/ledgercore/subledger_app/internal/core/domain"
	portsrepo "github.com/ledgercore/subledger_app/internal/core/ports/repositories"
	portssvc "github.com/ledgercore/subledger_app/internal/core/ports/services"
	"github.com/ledgercore/subledger_app/internal/core/services"
	"github.com/ledgercore/subledger_app/internal/dto"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

// --- Mock EventRepository ---
type MockEventRepository struct {
	mock.Mock
}

// Ensure MockEventRepository implements the full interface
var _ portsrepo.EventRepositoryFacade = (*MockEventRepository)(nil)

func (m *MockEventRepository) FindEventByID(ctx context.Context, eventID string) (*domain.AccountingEvent, error) {
	args := m.Called(ctx, eventID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AccountingEvent), args.Error(1)
}

func (m *MockEventRepository) FindEventByIdempotencyKey(ctx context.Context, organizationID string, idempotencyKey string) (*domain.AccountingEvent, error) {
	args := m.Called(ctx, organizationID, idempotencyKey)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AccountingEvent), args.Error(1)
}

func (m *MockEventRepository) ListEventsByOrganization(ctx context.Context, organizationID string, limit int, offset int) ([]domain.AccountingEvent, error) {
	args := m.Called(ctx, organizationID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.AccountingEvent), args.Error(1)
}

func (m *MockEventRepository) SaveEventWithEffects(ctx context.Context, event domain.AccountingEvent, journal *domain.Journal, transactions []domain.Transaction, balanceChanges map[string]decimal.Decimal) error {
	args := m.Called(ctx, event, journal, transactions, balanceChanges)
	return args.Error(0)
}

// --- Test Suite Setup ---
type EventServiceTestSuite struct {
	suite.Suite
	mockEventRepo   *MockEventRepository
	mockRuleSetRepo *MockRuleSetRepository
	mockAccountRepo *MockGLAccountRepository
	service         portssvc.EventSvcFacade
	assetAccount    domain.GLAccount
	revenueAccount  domain.GLAccount
	organizationID  string
	userID          string
	txnDate         time.Time
}

func (suite *EventServiceTestSuite) SetupTest() {
	suite.mockEventRepo = new(MockEventRepository)
	suite.mockRuleSetRepo = new(MockRuleSetRepository)
	suite.mockAccountRepo = new(MockGLAccountRepository)
	suite.service = services.NewEventService(suite.mockEventRepo, suite.mockRuleSetRepo, suite.mockAccountRepo)

	suite.organizationID = uuid.NewString()
	suite.userID = uuid.NewString()
	suite.txnDate = time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)

	suite.assetAccount = domain.GLAccount{
		AccountID:      uuid.NewString(),
		OrganizationID: suite.organizationID,
		AccountNumber:  "1200",
		AccountType:    domain.Asset,
		CurrencyCode:   "USD",
		Status:         domain.GLAccountActive,
	}
	suite.revenueAccount = domain.GLAccount{
		AccountID:      uuid.NewString(),
		OrganizationID: suite.organizationID,
		AccountNumber:  "4000",
		AccountType:    domain.Revenue,
		CurrencyCode:   "USD",
		Status:         domain.GLAccountActive,
	}
}

func (suite *EventServiceTestSuite) mappingFor(externalCode, accountID string) *domain.GLMapping {
	return &domain.GLMapping{
		MappingID:          uuid.NewString(),
		OrganizationID:     suite.organizationID,
		SourceSystem:       "billing",
		ExternalCode:       externalCode,
		GLAccountID:        accountID,
		EffectiveStartDate: suite.txnDate.AddDate(-1, 0, 0),
		Priority:           10,
	}
}

func (suite *EventServiceTestSuite) invoicePayload(debit, credit string) json.RawMessage {
	payload := dto.EventPayload{
		Description: "Invoice issued",
		Lines: []dto.EventLine{
			{ExternalCode: "AR", Amount: debit, Side: "DEBIT"},
			{ExternalCode: "REV", Amount: credit, Side: "CREDIT"},
		},
	}
	raw, err := json.Marshal(payload)
	suite.Require().NoError(err)
	return raw
}

// --- Test Cases ---

func (suite *EventServiceTestSuite) TestSubmitAccountingEvent_Success() {
	ctx := context.Background()
	req := dto.SubmitEventRequest{
		SourceSystem:    "billing",
		EventType:       "invoice.issued",
		TransactionDate: suite.txnDate,
		Payload:         suite.invoicePayload("100", "100"),
	}

	suite.mockRuleSetRepo.On("ResolveGLMapping", ctx, suite.organizationID, "billing", "AR", suite.txnDate).
		Return(suite.mappingFor("AR", suite.assetAccount.AccountID), nil).Once()
	suite.mockRuleSetRepo.On("ResolveGLMapping", ctx, suite.organizationID, "billing", "REV", suite.txnDate).
		Return(suite.mappingFor("REV", suite.revenueAccount.AccountID), nil).Once()
	suite.mockAccountRepo.On("FindAccountsByIDs", ctx, mock.Anything).
		Return(map[string]domain.GLAccount{
			suite.assetAccount.AccountID:   suite.assetAccount,
			suite.revenueAccount.AccountID: suite.revenueAccount,
		}, nil).Once()
	suite.mockEventRepo.On("SaveEventWithEffects", ctx, mock.AnythingOfType("domain.AccountingEvent"), mock.AnythingOfType("*domain.Journal"), mock.AnythingOfType("[]domain.Transaction"), mock.Anything).
		Run(func(args mock.Arguments) {
			event := args.Get(1).(domain.AccountingEvent)
			journal := args.Get(2).(*domain.Journal)
			transactions := args.Get(3).([]domain.Transaction)

			suite.Equal(domain.EventProcessed, event.Status)
			suite.Require().NotNil(event.JournalID)
			suite.Require().NotNil(journal)
			suite.Equal(*event.JournalID, journal.JournalID)
			suite.Equal(domain.JournalPosted, journal.Status)
			suite.Equal("USD", journal.CurrencyCode)
			suite.Require().Len(transactions, 2)
			suite.Equal(suite.assetAccount.AccountID, transactions[0].AccountID)
			suite.Equal(suite.revenueAccount.AccountID, transactions[1].AccountID)
		}).
		Return(nil).Once()

	event, err := suite.service.SubmitAccountingEvent(ctx, suite.organizationID, req, suite.userID)

	suite.Require().NoError(err)
	suite.Require().NotNil(event)
	suite.Equal(domain.EventProcessed, event.Status)
	suite.NotNil(event.JournalID)
	suite.NotEmpty(event.IdempotencyKey)
	suite.mockEventRepo.AssertExpectations(suite.T())
}

func (suite *EventServiceTestSuite) TestSubmitAccountingEvent_DerivedKeyIsDeterministic() {
	ctx := context.Background()
	payload := suite.invoicePayload("100", "100")
	req := dto.SubmitEventRequest{
		SourceSystem:    "billing",
		EventType:       "invoice.issued",
		TransactionDate: suite.txnDate,
		Payload:         payload,
	}
	wantKey := domain.DeriveIdempotencyKey(suite.organizationID, "billing", "invoice.issued", payload)

	suite.mockRuleSetRepo.On("ResolveGLMapping", ctx, suite.organizationID, "billing", "AR", suite.txnDate).
		Return(suite.mappingFor("AR", suite.assetAccount.AccountID), nil).Once()
	suite.mockRuleSetRepo.On("ResolveGLMapping", ctx, suite.organizationID, "billing", "REV", suite.txnDate).
		Return(suite.mappingFor("REV", suite.revenueAccount.AccountID), nil).Once()
	suite.mockAccountRepo.On("FindAccountsByIDs", ctx, mock.Anything).
		Return(map[string]domain.GLAccount{
			suite.assetAccount.AccountID:   suite.assetAccount,
			suite.revenueAccount.AccountID: suite.revenueAccount,
		}, nil).Once()
	suite.mockEventRepo.On("SaveEventWithEffects", ctx, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil).Once()

	event, err := suite.service.SubmitAccountingEvent(ctx, suite.organizationID, req, suite.userID)

	suite.Require().NoError(err)
	suite.Equal(wantKey, event.IdempotencyKey)
}

func (suite *EventServiceTestSuite) TestSubmitAccountingEvent_ExplicitKeyWins() {
	ctx := context.Background()
	key := "billing-evt-42"
	req := dto.SubmitEventRequest{
		SourceSystem:    "billing",
		EventType:       "invoice.issued",
		TransactionDate: suite.txnDate,
		Payload:         suite.invoicePayload("100", "100"),
		IdempotencyKey:  &key,
	}

	suite.mockRuleSetRepo.On("ResolveGLMapping", ctx, suite.organizationID, "billing", "AR", suite.txnDate).
		Return(suite.mappingFor("AR", suite.assetAccount.AccountID), nil).Once()
	suite.mockRuleSetRepo.On("ResolveGLMapping", ctx, suite.organizationID, "billing", "REV", suite.txnDate).
		Return(suite.mappingFor("REV", suite.revenueAccount.AccountID), nil).Once()
	suite.mockAccountRepo.On("FindAccountsByIDs", ctx, mock.Anything).
		Return(map[string]domain.GLAccount{
			suite.assetAccount.AccountID:   suite.assetAccount,
			suite.revenueAccount.AccountID: suite.revenueAccount,
		}, nil).Once()
	suite.mockEventRepo.On("SaveEventWithEffects", ctx, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil).Once()

	event, err := suite.service.SubmitAccountingEvent(ctx, suite.organizationID, req, suite.userID)

	suite.Require().NoError(err)
	suite.Equal(key, event.IdempotencyKey)
}

func (suite *EventServiceTestSuite) TestSubmitAccountingEvent_DuplicateKey() {
	ctx := context.Background()
	req := dto.SubmitEventRequest{
		SourceSystem:    "billing",
		EventType:       "invoice.issued",
		TransactionDate: suite.txnDate,
		Payload:         suite.invoicePayload("100", "100"),
	}

	suite.mockRuleSetRepo.On("ResolveGLMapping", ctx, suite.organizationID, "billing", "AR", suite.txnDate).
		Return(suite.mappingFor("AR", suite.assetAccount.AccountID), nil).Once()
	suite.mockRuleSetRepo.On("ResolveGLMapping", ctx, suite.organizationID, "billing", "REV", suite.txnDate).
		Return(suite.mappingFor("REV", suite.revenueAccount.AccountID), nil).Once()
	suite.mockAccountRepo.On("FindAccountsByIDs", ctx, mock.Anything).
		Return(map[string]domain.GLAccount{
			suite.assetAccount.AccountID:   suite.assetAccount,
			suite.revenueAccount.AccountID: suite.revenueAccount,
		}, nil).Once()
	suite.mockEventRepo.On("SaveEventWithEffects", ctx, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(apperrors.ErrDuplicateEvent).Once()
	original := &domain.AccountingEvent{
		EventID:        "evt-original",
		OrganizationID: suite.organizationID,
		Status:         domain.EventProcessed,
	}
	suite.mockEventRepo.On("FindEventByIdempotencyKey", ctx, suite.organizationID, mock.Anything).
		Return(original, nil).Once()

	event, err := suite.service.SubmitAccountingEvent(ctx, suite.organizationID, req, suite.userID)

	suite.Require().Error(err)
	suite.True(errors.Is(err, apperrors.ErrDuplicateEvent))
	// The original outcome is returned alongside the error.
	suite.Require().NotNil(event)
	suite.Equal("evt-original", event.EventID)
	// Effects are only ever attempted through the single atomic call.
	suite.mockEventRepo.AssertNumberOfCalls(suite.T(), "SaveEventWithEffects", 1)
}

func (suite *EventServiceTestSuite) TestSubmitAccountingEvent_DuplicateKeyNeverLeaksForeignEvent() {
	ctx := context.Background()
	key := "shared-key-7"
	req := dto.SubmitEventRequest{
		SourceSystem:    "billing",
		EventType:       "invoice.issued",
		TransactionDate: suite.txnDate,
		Payload:         suite.invoicePayload("100", "100"),
		IdempotencyKey:  &key,
	}

	suite.mockRuleSetRepo.On("ResolveGLMapping", ctx, suite.organizationID, "billing", "AR", suite.txnDate).
		Return(suite.mappingFor("AR", suite.assetAccount.AccountID), nil).Once()
	suite.mockRuleSetRepo.On("ResolveGLMapping", ctx, suite.organizationID, "billing", "REV", suite.txnDate).
		Return(suite.mappingFor("REV", suite.revenueAccount.AccountID), nil).Once()
	suite.mockAccountRepo.On("FindAccountsByIDs", ctx, mock.Anything).
		Return(map[string]domain.GLAccount{
			suite.assetAccount.AccountID:   suite.assetAccount,
			suite.revenueAccount.AccountID: suite.revenueAccount,
		}, nil).Once()
	suite.mockEventRepo.On("SaveEventWithEffects", ctx, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(apperrors.ErrDuplicateEvent).Once()

	// Keys are only unique per organization. Even if the lookup returns
	// another organization's event for the same key, the caller must not
	// see it.
	foreignJournalID := uuid.NewString()
	foreign := &domain.AccountingEvent{
		EventID:        "evt-of-other-org",
		OrganizationID: uuid.NewString(),
		JournalID:      &foreignJournalID,
		Status:         domain.EventProcessed,
	}
	suite.mockEventRepo.On("FindEventByIdempotencyKey", ctx, suite.organizationID, key).
		Return(foreign, nil).Once()

	event, err := suite.service.SubmitAccountingEvent(ctx, suite.organizationID, req, suite.userID)

	suite.Require().Error(err)
	suite.True(errors.Is(err, apperrors.ErrDuplicateEvent))
	suite.Nil(event)
	suite.mockEventRepo.AssertExpectations(suite.T())
}

func (suite *EventServiceTestSuite) TestSubmitAccountingEvent_UnresolvableCodeRecordsRejected() {
	ctx := context.Background()
	req := dto.SubmitEventRequest{
		SourceSystem:    "billing",
		EventType:       "invoice.issued",
		TransactionDate: suite.txnDate,
		Payload:         suite.invoicePayload("100", "100"),
	}

	suite.mockRuleSetRepo.On("ResolveGLMapping", ctx, suite.organizationID, "billing", "AR", suite.txnDate).
		Return(nil, apperrors.ErrNoMappingFound).Once()
	suite.mockEventRepo.On("SaveEventWithEffects", ctx, mock.AnythingOfType("domain.AccountingEvent"), (*domain.Journal)(nil), ([]domain.Transaction)(nil), (map[string]decimal.Decimal)(nil)).
		Run(func(args mock.Arguments) {
			event := args.Get(1).(domain.AccountingEvent)
			suite.Equal(domain.EventRejected, event.Status)
			suite.Nil(event.JournalID)
		}).
		Return(nil).Once()

	event, err := suite.service.SubmitAccountingEvent(ctx, suite.organizationID, req, suite.userID)

	suite.Require().Error(err)
	suite.Nil(event)
	suite.True(errors.Is(err, apperrors.ErrNoMappingFound))
	suite.mockEventRepo.AssertExpectations(suite.T())
}

func (suite *EventServiceTestSuite) TestSubmitAccountingEvent_UnbalancedPayloadRejected() {
	ctx := context.Background()
	req := dto.SubmitEventRequest{
		SourceSystem:    "billing",
		EventType:       "invoice.issued",
		TransactionDate: suite.txnDate,
		Payload:         suite.invoicePayload("100", "60"),
	}

	suite.mockRuleSetRepo.On("ResolveGLMapping", ctx, suite.organizationID, "billing", "AR", suite.txnDate).
		Return(suite.mappingFor("AR", suite.assetAccount.AccountID), nil).Once()
	suite.mockRuleSetRepo.On("ResolveGLMapping", ctx, suite.organizationID, "billing", "REV", suite.txnDate).
		Return(suite.mappingFor("REV", suite.revenueAccount.AccountID), nil).Once()
	suite.mockEventRepo.On("SaveEventWithEffects", ctx, mock.AnythingOfType("domain.AccountingEvent"), (*domain.Journal)(nil), ([]domain.Transaction)(nil), (map[string]decimal.Decimal)(nil)).
		Run(func(args mock.Arguments) {
			event := args.Get(1).(domain.AccountingEvent)
			suite.Equal(domain.EventRejected, event.Status)
		}).
		Return(nil).Once()

	event, err := suite.service.SubmitAccountingEvent(ctx, suite.organizationID, req, suite.userID)

	suite.Require().Error(err)
	suite.Nil(event)
	suite.True(errors.Is(err, apperrors.ErrUnbalanced))
	suite.mockEventRepo.AssertExpectations(suite.T())
}

func (suite *EventServiceTestSuite) TestGetEventByID_WrongOrganization() {
	ctx := context.Background()
	eventID := uuid.NewString()
	foreign := &domain.AccountingEvent{
		EventID:        eventID,
		OrganizationID: uuid.NewString(),
		Status:         domain.EventProcessed,
	}

	suite.mockEventRepo.On("FindEventByID", ctx, eventID).Return(foreign, nil).Once()

	event, err := suite.service.GetEventByID(ctx, suite.organizationID, eventID, suite.userID)

	suite.Require().Error(err)
	suite.Nil(event)
	suite.True(errors.Is(err, apperrors.ErrNotFound))
}

func TestEventServiceTestSuite(t *testing.T) {
	suite.Run(t, new(EventServiceTestSuite))
}
