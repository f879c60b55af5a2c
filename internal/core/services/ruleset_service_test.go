package services_test

import (
	"context"
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
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

// --- Mock RuleSetRepository ---
type MockRuleSetRepository struct {
	mock.Mock
}

// Ensure MockRuleSetRepository implements the full interface
var _ portsrepo.RuleSetRepositoryFacade = (*MockRuleSetRepository)(nil)

func (m *MockRuleSetRepository) FindRuleSetByID(ctx context.Context, ruleSetID string) (*domain.PostingRuleSet, error) {
	args := m.Called(ctx, ruleSetID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PostingRuleSet), args.Error(1)
}

func (m *MockRuleSetRepository) ListRuleSetsByOrganization(ctx context.Context, organizationID string) ([]domain.PostingRuleSet, error) {
	args := m.Called(ctx, organizationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.PostingRuleSet), args.Error(1)
}

func (m *MockRuleSetRepository) FindMaxVersion(ctx context.Context, organizationID string, name string) (int, error) {
	args := m.Called(ctx, organizationID, name)
	return args.Int(0), args.Error(1)
}

func (m *MockRuleSetRepository) SaveRuleSet(ctx context.Context, ruleSet domain.PostingRuleSet) error {
	args := m.Called(ctx, ruleSet)
	return args.Error(0)
}

func (m *MockRuleSetRepository) UpdateRuleSet(ctx context.Context, ruleSet domain.PostingRuleSet) error {
	args := m.Called(ctx, ruleSet)
	return args.Error(0)
}

func (m *MockRuleSetRepository) UpdateRuleSetStatus(ctx context.Context, ruleSetID string, expected domain.RuleSetStatus, target domain.RuleSetStatus, publishedDate *time.Time, userID string, now time.Time) error {
	args := m.Called(ctx, ruleSetID, expected, target, publishedDate, userID, now)
	return args.Error(0)
}

func (m *MockRuleSetRepository) ResolveGLMapping(ctx context.Context, organizationID, sourceSystem, externalCode string, date time.Time) (*domain.GLMapping, error) {
	args := m.Called(ctx, organizationID, sourceSystem, externalCode, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.GLMapping), args.Error(1)
}

func (m *MockRuleSetRepository) ListGLMappings(ctx context.Context, organizationID, sourceSystem string) ([]domain.GLMapping, error) {
	args := m.Called(ctx, organizationID, sourceSystem)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.GLMapping), args.Error(1)
}

func (m *MockRuleSetRepository) SaveGLMapping(ctx context.Context, mapping domain.GLMapping) error {
	args := m.Called(ctx, mapping)
	return args.Error(0)
}

// --- Test Suite Setup ---
type RuleSetServiceTestSuite struct {
	suite.Suite
	mockRuleSetRepo *MockRuleSetRepository
	mockAccountRepo *MockGLAccountRepository
	service         portssvc.RuleSetSvcFacade
	revenueAccount  domain.GLAccount
	organizationID  string
	userID          string
}

func (suite *RuleSetServiceTestSuite) SetupTest() {
	suite.mockRuleSetRepo = new(MockRuleSetRepository)
	suite.mockAccountRepo = new(MockGLAccountRepository)
	suite.service = services.NewRuleSetService(suite.mockRuleSetRepo, suite.mockAccountRepo)

	suite.organizationID = uuid.NewString()
	suite.userID = uuid.NewString()

	suite.revenueAccount = domain.GLAccount{
		AccountID:      uuid.NewString(),
		OrganizationID: suite.organizationID,
		AccountNumber:  "4000",
		AccountType:    domain.Revenue,
		CurrencyCode:   "USD",
		Status:         domain.GLAccountActive,
	}
}

func (suite *RuleSetServiceTestSuite) ruleSetInStatus(status domain.RuleSetStatus) *domain.PostingRuleSet {
	ruleSetID := uuid.NewString()
	return &domain.PostingRuleSet{
		RuleSetID:      ruleSetID,
		OrganizationID: suite.organizationID,
		Name:           "billing-rules",
		Version:        1,
		Status:         status,
		Rules: []domain.PostingRule{
			{RuleID: uuid.NewString(), RuleSetID: ruleSetID, GLAccountID: suite.revenueAccount.AccountID, Dimension: "product:shipping", Priority: 10},
		},
	}
}

// --- Test Cases ---

func (suite *RuleSetServiceTestSuite) TestCreateRuleSet_StartsAsDraftVersionOne() {
	ctx := context.Background()
	req := dto.CreateRuleSetRequest{
		Name: "billing-rules",
		Rules: []dto.PostingRuleRequest{
			{GLAccountID: suite.revenueAccount.AccountID, Dimension: "product:shipping", Priority: 10},
		},
	}

	suite.mockAccountRepo.On("FindAccountsByIDs", ctx, []string{suite.revenueAccount.AccountID}).
		Return(map[string]domain.GLAccount{suite.revenueAccount.AccountID: suite.revenueAccount}, nil).Once()
	suite.mockRuleSetRepo.On("SaveRuleSet", ctx, mock.AnythingOfType("domain.PostingRuleSet")).Return(nil).Once()

	created, err := suite.service.CreateRuleSet(ctx, suite.organizationID, req, suite.userID)

	suite.Require().NoError(err)
	suite.Require().NotNil(created)
	suite.Equal(1, created.Version)
	suite.Equal(domain.RuleSetDraft, created.Status)
	suite.Len(created.Rules, 1)
	suite.mockRuleSetRepo.AssertExpectations(suite.T())
}

func (suite *RuleSetServiceTestSuite) TestUpdateRuleSet_PublishedIsImmutable() {
	ctx := context.Background()
	published := suite.ruleSetInStatus(domain.RuleSetPublished)
	newName := "renamed"

	suite.mockRuleSetRepo.On("FindRuleSetByID", ctx, published.RuleSetID).Return(published, nil).Once()

	updated, err := suite.service.UpdateRuleSet(ctx, suite.organizationID, published.RuleSetID, dto.UpdateRuleSetRequest{Name: &newName}, suite.userID)

	suite.Require().Error(err)
	suite.Nil(updated)
	suite.True(errors.Is(err, apperrors.ErrRuleSetImmutable))
	suite.mockRuleSetRepo.AssertNotCalled(suite.T(), "UpdateRuleSet", mock.Anything, mock.Anything)
}

func (suite *RuleSetServiceTestSuite) TestUpdateRuleSet_DraftSucceeds() {
	ctx := context.Background()
	draft := suite.ruleSetInStatus(domain.RuleSetDraft)
	newName := "billing-rules-v2"

	suite.mockRuleSetRepo.On("FindRuleSetByID", ctx, draft.RuleSetID).Return(draft, nil).Once()
	suite.mockRuleSetRepo.On("UpdateRuleSet", ctx, mock.AnythingOfType("domain.PostingRuleSet")).
		Run(func(args mock.Arguments) {
			updated := args.Get(1).(domain.PostingRuleSet)
			suite.Equal(newName, updated.Name)
		}).
		Return(nil).Once()

	updated, err := suite.service.UpdateRuleSet(ctx, suite.organizationID, draft.RuleSetID, dto.UpdateRuleSetRequest{Name: &newName}, suite.userID)

	suite.Require().NoError(err)
	suite.Require().NotNil(updated)
	suite.Equal(newName, updated.Name)
	suite.mockRuleSetRepo.AssertExpectations(suite.T())
}

func (suite *RuleSetServiceTestSuite) TestPublishRuleSet_Success() {
	ctx := context.Background()
	draft := suite.ruleSetInStatus(domain.RuleSetDraft)

	suite.mockRuleSetRepo.On("FindRuleSetByID", ctx, draft.RuleSetID).Return(draft, nil).Once()
	suite.mockRuleSetRepo.On("UpdateRuleSetStatus", ctx, draft.RuleSetID, domain.RuleSetDraft, domain.RuleSetPublished, mock.AnythingOfType("*time.Time"), suite.userID, mock.AnythingOfType("time.Time")).
		Return(nil).Once()

	published, err := suite.service.PublishRuleSet(ctx, suite.organizationID, draft.RuleSetID, suite.userID)

	suite.Require().NoError(err)
	suite.Require().NotNil(published)
	suite.Equal(domain.RuleSetPublished, published.Status)
	suite.NotNil(published.PublishedDate)
	suite.mockRuleSetRepo.AssertExpectations(suite.T())
}

func (suite *RuleSetServiceTestSuite) TestPublishRuleSet_EmptyRulesRejected() {
	ctx := context.Background()
	draft := suite.ruleSetInStatus(domain.RuleSetDraft)
	draft.Rules = nil

	suite.mockRuleSetRepo.On("FindRuleSetByID", ctx, draft.RuleSetID).Return(draft, nil).Once()

	published, err := suite.service.PublishRuleSet(ctx, suite.organizationID, draft.RuleSetID, suite.userID)

	suite.Require().Error(err)
	suite.Nil(published)
	suite.True(errors.Is(err, apperrors.ErrValidation))
	suite.mockRuleSetRepo.AssertNotCalled(suite.T(), "UpdateRuleSetStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *RuleSetServiceTestSuite) TestPublishRuleSet_ArchivedRejected() {
	ctx := context.Background()
	archived := suite.ruleSetInStatus(domain.RuleSetArchived)

	suite.mockRuleSetRepo.On("FindRuleSetByID", ctx, archived.RuleSetID).Return(archived, nil).Once()

	published, err := suite.service.PublishRuleSet(ctx, suite.organizationID, archived.RuleSetID, suite.userID)

	suite.Require().Error(err)
	suite.Nil(published)
	suite.True(errors.Is(err, apperrors.ErrInvalidTransition))
}

func (suite *RuleSetServiceTestSuite) TestArchiveRuleSet_DraftRejected() {
	ctx := context.Background()
	draft := suite.ruleSetInStatus(domain.RuleSetDraft)

	suite.mockRuleSetRepo.On("FindRuleSetByID", ctx, draft.RuleSetID).Return(draft, nil).Once()

	archived, err := suite.service.ArchiveRuleSet(ctx, suite.organizationID, draft.RuleSetID, suite.userID)

	suite.Require().Error(err)
	suite.Nil(archived)
	suite.True(errors.Is(err, apperrors.ErrInvalidTransition))
}

func (suite *RuleSetServiceTestSuite) TestCreateNewVersion_ClonesRulesWithNextVersion() {
	ctx := context.Background()
	published := suite.ruleSetInStatus(domain.RuleSetPublished)

	suite.mockRuleSetRepo.On("FindRuleSetByID", ctx, published.RuleSetID).Return(published, nil).Once()
	suite.mockRuleSetRepo.On("FindMaxVersion", ctx, suite.organizationID, published.Name).Return(3, nil).Once()
	suite.mockRuleSetRepo.On("SaveRuleSet", ctx, mock.AnythingOfType("domain.PostingRuleSet")).Return(nil).Once()

	clone, err := suite.service.CreateNewVersion(ctx, suite.organizationID, published.RuleSetID, suite.userID)

	suite.Require().NoError(err)
	suite.Require().NotNil(clone)
	suite.Equal(4, clone.Version)
	suite.Equal(domain.RuleSetDraft, clone.Status)
	suite.NotEqual(published.RuleSetID, clone.RuleSetID)
	suite.Require().Len(clone.Rules, 1)
	suite.NotEqual(published.Rules[0].RuleID, clone.Rules[0].RuleID)
	suite.Equal(published.Rules[0].Dimension, clone.Rules[0].Dimension)
	suite.mockRuleSetRepo.AssertExpectations(suite.T())
}

func (suite *RuleSetServiceTestSuite) TestCreateNewVersion_DraftSourceRejected() {
	ctx := context.Background()
	draft := suite.ruleSetInStatus(domain.RuleSetDraft)

	suite.mockRuleSetRepo.On("FindRuleSetByID", ctx, draft.RuleSetID).Return(draft, nil).Once()

	clone, err := suite.service.CreateNewVersion(ctx, suite.organizationID, draft.RuleSetID, suite.userID)

	suite.Require().Error(err)
	suite.Nil(clone)
	suite.True(errors.Is(err, apperrors.ErrValidation))
	suite.mockRuleSetRepo.AssertNotCalled(suite.T(), "SaveRuleSet", mock.Anything, mock.Anything)
}

func (suite *RuleSetServiceTestSuite) TestCreateGLMapping_EndBeforeStartRejected() {
	ctx := context.Background()
	start := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, -1, 0)
	req := dto.CreateGLMappingRequest{
		SourceSystem:       "billing",
		ExternalCode:       "SHIP",
		GLAccountID:        suite.revenueAccount.AccountID,
		EffectiveStartDate: start,
		EffectiveEndDate:   &end,
	}

	mapping, err := suite.service.CreateGLMapping(ctx, suite.organizationID, req, suite.userID)

	suite.Require().Error(err)
	suite.Nil(mapping)
	suite.True(errors.Is(err, apperrors.ErrValidation))
	suite.mockRuleSetRepo.AssertNotCalled(suite.T(), "SaveGLMapping", mock.Anything, mock.Anything)
}

func (suite *RuleSetServiceTestSuite) TestResolveGLMapping_NoMatch() {
	ctx := context.Background()
	date := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	suite.mockRuleSetRepo.On("ResolveGLMapping", ctx, suite.organizationID, "billing", "UNKNOWN", date).
		Return(nil, apperrors.ErrNoMappingFound).Once()

	mapping, err := suite.service.ResolveGLMapping(ctx, suite.organizationID, "billing", "UNKNOWN", date, suite.userID)

	suite.Require().Error(err)
	suite.Nil(mapping)
	suite.True(errors.Is(err, apperrors.ErrNoMappingFound))
}

func TestRuleSetServiceTestSuite(t *testing.T) {
	suite.Run(t, new(RuleSetServiceTestSuite))
}
