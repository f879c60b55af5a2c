package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/ledgercore/subledger_app/internal/apperrors"
	"github.com/ledgercore/subledger_app/internal/core/domain"
	portssvc "github.com/ledgercore/subledger_app/internal/core/ports/services"
	"github.com/ledgercore/subledger_app/internal/core/services"
	"github.com/ledgercore/subledger_app/internal/dto"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

// --- Test Suite Setup ---
type GLAccountServiceTestSuite struct {
	suite.Suite
	mockAccountRepo *MockGLAccountRepository
	service         portssvc.GLAccountSvcFacade
	organizationID  string
	userID          string
}

func (suite *GLAccountServiceTestSuite) SetupTest() {
	suite.mockAccountRepo = new(MockGLAccountRepository)
	suite.service = services.NewGLAccountService(suite.mockAccountRepo)

	suite.organizationID = uuid.NewString()
	suite.userID = uuid.NewString()
}

func (suite *GLAccountServiceTestSuite) accountInStatus(status domain.GLAccountStatus) *domain.GLAccount {
	return &domain.GLAccount{
		AccountID:      uuid.NewString(),
		OrganizationID: suite.organizationID,
		AccountNumber:  "1000",
		Name:           "Cash",
		AccountType:    domain.Asset,
		CurrencyCode:   "USD",
		Status:         status,
		Balance:        decimal.Zero,
	}
}

// --- Test Cases ---

func (suite *GLAccountServiceTestSuite) TestCreateAccount_StartsAsDraft() {
	ctx := context.Background()
	req := dto.CreateGLAccountRequest{
		AccountNumber: "1000",
		Name:          "Cash",
		AccountType:   domain.Asset,
		CurrencyCode:  "USD",
	}

	suite.mockAccountRepo.On("FindAccountByNumber", ctx, suite.organizationID, "1000").
		Return(nil, apperrors.ErrNotFound).Once()
	suite.mockAccountRepo.On("SaveAccount", ctx, mock.AnythingOfType("domain.GLAccount")).
		Run(func(args mock.Arguments) {
			saved := args.Get(1).(domain.GLAccount)
			suite.Equal(domain.GLAccountDraft, saved.Status)
			suite.True(saved.Balance.IsZero())
		}).
		Return(nil).Once()

	account, err := suite.service.CreateAccount(ctx, suite.organizationID, req, suite.userID)

	suite.Require().NoError(err)
	suite.Require().NotNil(account)
	suite.Equal(domain.GLAccountDraft, account.Status)
	suite.Equal(suite.userID, account.CreatedBy)
	suite.mockAccountRepo.AssertExpectations(suite.T())
}

func (suite *GLAccountServiceTestSuite) TestCreateAccount_DuplicateNumber() {
	ctx := context.Background()
	existing := suite.accountInStatus(domain.GLAccountActive)
	req := dto.CreateGLAccountRequest{
		AccountNumber: "1000",
		Name:          "Cash again",
		AccountType:   domain.Asset,
		CurrencyCode:  "USD",
	}

	suite.mockAccountRepo.On("FindAccountByNumber", ctx, suite.organizationID, "1000").
		Return(existing, nil).Once()

	account, err := suite.service.CreateAccount(ctx, suite.organizationID, req, suite.userID)

	suite.Require().Error(err)
	suite.Nil(account)
	suite.True(errors.Is(err, apperrors.ErrDuplicate))
	suite.mockAccountRepo.AssertNotCalled(suite.T(), "SaveAccount", mock.Anything, mock.Anything)
}

func (suite *GLAccountServiceTestSuite) TestCreateAccount_InvalidType() {
	ctx := context.Background()
	req := dto.CreateGLAccountRequest{
		AccountNumber: "9000",
		Name:          "Mystery",
		AccountType:   domain.AccountType("SUSPENSE"),
		CurrencyCode:  "USD",
	}

	account, err := suite.service.CreateAccount(ctx, suite.organizationID, req, suite.userID)

	suite.Require().Error(err)
	suite.Nil(account)
	suite.True(errors.Is(err, apperrors.ErrValidation))
}

func (suite *GLAccountServiceTestSuite) TestTransitionAccount_DraftToActive() {
	ctx := context.Background()
	draft := suite.accountInStatus(domain.GLAccountDraft)

	suite.mockAccountRepo.On("FindAccountByID", ctx, draft.AccountID).Return(draft, nil).Once()
	suite.mockAccountRepo.On("UpdateAccountStatus", ctx, draft.AccountID, domain.GLAccountDraft, domain.GLAccountActive, suite.userID, mock.AnythingOfType("time.Time")).
		Return(nil).Once()

	account, err := suite.service.TransitionAccount(ctx, suite.organizationID, draft.AccountID, domain.GLAccountActive, suite.userID)

	suite.Require().NoError(err)
	suite.Require().NotNil(account)
	suite.Equal(domain.GLAccountActive, account.Status)
	suite.mockAccountRepo.AssertExpectations(suite.T())
}

func (suite *GLAccountServiceTestSuite) TestTransitionAccount_InactiveReactivation() {
	ctx := context.Background()
	inactive := suite.accountInStatus(domain.GLAccountInactive)

	suite.mockAccountRepo.On("FindAccountByID", ctx, inactive.AccountID).Return(inactive, nil).Once()
	suite.mockAccountRepo.On("UpdateAccountStatus", ctx, inactive.AccountID, domain.GLAccountInactive, domain.GLAccountActive, suite.userID, mock.AnythingOfType("time.Time")).
		Return(nil).Once()

	account, err := suite.service.TransitionAccount(ctx, suite.organizationID, inactive.AccountID, domain.GLAccountActive, suite.userID)

	suite.Require().NoError(err)
	suite.Equal(domain.GLAccountActive, account.Status)
}

func (suite *GLAccountServiceTestSuite) TestTransitionAccount_DraftToArchivedRejected() {
	ctx := context.Background()
	draft := suite.accountInStatus(domain.GLAccountDraft)

	suite.mockAccountRepo.On("FindAccountByID", ctx, draft.AccountID).Return(draft, nil).Once()

	account, err := suite.service.TransitionAccount(ctx, suite.organizationID, draft.AccountID, domain.GLAccountArchived, suite.userID)

	suite.Require().Error(err)
	suite.Nil(account)
	suite.True(errors.Is(err, apperrors.ErrInvalidTransition))
	suite.mockAccountRepo.AssertNotCalled(suite.T(), "UpdateAccountStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *GLAccountServiceTestSuite) TestTransitionAccount_OutOfArchivedRejected() {
	ctx := context.Background()
	archived := suite.accountInStatus(domain.GLAccountArchived)

	suite.mockAccountRepo.On("FindAccountByID", ctx, archived.AccountID).Return(archived, nil).Once()

	account, err := suite.service.TransitionAccount(ctx, suite.organizationID, archived.AccountID, domain.GLAccountActive, suite.userID)

	suite.Require().Error(err)
	suite.Nil(account)
	suite.True(errors.Is(err, apperrors.ErrInvalidTransition))
}

func (suite *GLAccountServiceTestSuite) TestUpdateAccount_ArchivedFrozen() {
	ctx := context.Background()
	archived := suite.accountInStatus(domain.GLAccountArchived)
	newName := "Renamed"

	suite.mockAccountRepo.On("FindAccountByID", ctx, archived.AccountID).Return(archived, nil).Once()

	account, err := suite.service.UpdateAccount(ctx, suite.organizationID, archived.AccountID, dto.UpdateGLAccountRequest{Name: &newName}, suite.userID)

	suite.Require().Error(err)
	suite.Nil(account)
	suite.True(errors.Is(err, apperrors.ErrValidation))
	suite.mockAccountRepo.AssertNotCalled(suite.T(), "UpdateAccount", mock.Anything, mock.Anything)
}

func (suite *GLAccountServiceTestSuite) TestGetAccountByID_WrongOrganization() {
	ctx := context.Background()
	foreign := suite.accountInStatus(domain.GLAccountActive)
	foreign.OrganizationID = uuid.NewString()

	suite.mockAccountRepo.On("FindAccountByID", ctx, foreign.AccountID).Return(foreign, nil).Once()

	account, err := suite.service.GetAccountByID(ctx, suite.organizationID, foreign.AccountID, suite.userID)

	suite.Require().Error(err)
	suite.Nil(account)
	suite.True(errors.Is(err, apperrors.ErrNotFound))
}

func TestGLAccountServiceTestSuite(t *testing.T) {
	suite.Run(t, new(GLAccountServiceTestSuite))
}
