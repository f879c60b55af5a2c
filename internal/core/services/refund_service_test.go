package services_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
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

// --- Mock RefundRepository ---
type MockRefundRepository struct {
	mock.Mock
}

// Ensure MockRefundRepository implements the full interface
var _ portsrepo.RefundRepositoryWithTx = (*MockRefundRepository)(nil)

func (m *MockRefundRepository) FindRefundPaymentByID(ctx context.Context, refundPaymentID string) (*domain.RefundPayment, error) {
	args := m.Called(ctx, refundPaymentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RefundPayment), args.Error(1)
}

func (m *MockRefundRepository) FindRefundPayments(ctx context.Context, organizationID string, filter portsrepo.RefundPaymentFilter) ([]domain.RefundPayment, error) {
	args := m.Called(ctx, organizationID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.RefundPayment), args.Error(1)
}

func (m *MockRefundRepository) SaveRefundPayment(ctx context.Context, refund domain.RefundPayment) error {
	args := m.Called(ctx, refund)
	return args.Error(0)
}

func (m *MockRefundRepository) UpdateRefundPayment(ctx context.Context, refund domain.RefundPayment, expected domain.RefundPaymentStatus) error {
	args := m.Called(ctx, refund, expected)
	return args.Error(0)
}

func (m *MockRefundRepository) CompleteRefundPayment(ctx context.Context, refund domain.RefundPayment, arTxn domain.ArTransaction) error {
	args := m.Called(ctx, refund, arTxn)
	return args.Error(0)
}

func (m *MockRefundRepository) FindArTransactionsByCustomer(ctx context.Context, organizationID, customerID string) ([]domain.ArTransaction, error) {
	args := m.Called(ctx, organizationID, customerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ArTransaction), args.Error(1)
}

func (m *MockRefundRepository) SaveArTransaction(ctx context.Context, arTxn domain.ArTransaction) error {
	args := m.Called(ctx, arTxn)
	return args.Error(0)
}

func (m *MockRefundRepository) Begin(ctx context.Context) (pgx.Tx, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(pgx.Tx), args.Error(1)
}

func (m *MockRefundRepository) Commit(ctx context.Context, tx pgx.Tx) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

func (m *MockRefundRepository) Rollback(ctx context.Context, tx pgx.Tx) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

// --- Test Suite Setup ---
type RefundServiceTestSuite struct {
	suite.Suite
	mockRefundRepo *MockRefundRepository
	service        portssvc.RefundSvcFacade
	organizationID string
	customerID     string
	userID         string
}

func (suite *RefundServiceTestSuite) SetupTest() {
	suite.mockRefundRepo = new(MockRefundRepository)
	suite.service = services.NewRefundService(suite.mockRefundRepo)

	suite.organizationID = uuid.NewString()
	suite.customerID = uuid.NewString()
	suite.userID = uuid.NewString()
}

func (suite *RefundServiceTestSuite) refundInStatus(status domain.RefundPaymentStatus) *domain.RefundPayment {
	return &domain.RefundPayment{
		RefundPaymentID: uuid.NewString(),
		OrganizationID:  suite.organizationID,
		CustomerID:      suite.customerID,
		RefundAmount:    decimal.NewFromInt(150),
		RefundMethod:    domain.RefundMethodACH,
		Reason:          "Overpayment",
		Status:          status,
	}
}

// --- Test Cases ---

func (suite *RefundServiceTestSuite) TestInitiateRefundPayment_Success() {
	ctx := context.Background()
	req := dto.InitiateRefundRequest{
		CustomerID:   suite.customerID,
		RefundAmount: decimal.NewFromInt(150),
		RefundMethod: domain.RefundMethodCheck,
		Reason:       "Duplicate charge",
	}

	suite.mockRefundRepo.On("SaveRefundPayment", ctx, mock.AnythingOfType("domain.RefundPayment")).
		Run(func(args mock.Arguments) {
			saved := args.Get(1).(domain.RefundPayment)
			suite.Equal(domain.RefundInitiated, saved.Status)
			suite.Contains(saved.Notes, "Refund initiated")
		}).
		Return(nil).Once()

	refund, err := suite.service.InitiateRefundPayment(ctx, suite.organizationID, req, suite.userID)

	suite.Require().NoError(err)
	suite.Require().NotNil(refund)
	suite.Equal(domain.RefundInitiated, refund.Status)
	suite.Equal(suite.userID, refund.CreatedBy)
	suite.mockRefundRepo.AssertExpectations(suite.T())
}

func (suite *RefundServiceTestSuite) TestInitiateRefundPayment_NonPositiveAmount() {
	ctx := context.Background()
	req := dto.InitiateRefundRequest{
		CustomerID:   suite.customerID,
		RefundAmount: decimal.NewFromInt(-5),
		RefundMethod: domain.RefundMethodCheck,
		Reason:       "Bad amount",
	}

	refund, err := suite.service.InitiateRefundPayment(ctx, suite.organizationID, req, suite.userID)

	suite.Require().Error(err)
	suite.Nil(refund)
	suite.True(errors.Is(err, apperrors.ErrValidation))
	suite.mockRefundRepo.AssertNotCalled(suite.T(), "SaveRefundPayment", mock.Anything, mock.Anything)
}

func (suite *RefundServiceTestSuite) TestApproveRefundPayment_Success() {
	ctx := context.Background()
	refund := suite.refundInStatus(domain.RefundInitiated)

	suite.mockRefundRepo.On("FindRefundPaymentByID", ctx, refund.RefundPaymentID).Return(refund, nil).Once()
	suite.mockRefundRepo.On("UpdateRefundPayment", ctx, mock.AnythingOfType("domain.RefundPayment"), domain.RefundInitiated).
		Run(func(args mock.Arguments) {
			updated := args.Get(1).(domain.RefundPayment)
			suite.Equal(domain.RefundApproved, updated.Status)
			suite.Require().NotNil(updated.ApprovedBy)
			suite.Equal(suite.userID, *updated.ApprovedBy)
			suite.NotNil(updated.ApprovalDate)
		}).
		Return(nil).Once()

	approved, err := suite.service.ApproveRefundPayment(ctx, suite.organizationID, refund.RefundPaymentID, suite.userID)

	suite.Require().NoError(err)
	suite.Require().NotNil(approved)
	suite.Equal(domain.RefundApproved, approved.Status)
	suite.mockRefundRepo.AssertExpectations(suite.T())
}

func (suite *RefundServiceTestSuite) TestCompleteRefundPayment_PostsNegatedArRow() {
	ctx := context.Background()
	refund := suite.refundInStatus(domain.RefundProcessing)

	suite.mockRefundRepo.On("FindRefundPaymentByID", ctx, refund.RefundPaymentID).Return(refund, nil).Once()
	suite.mockRefundRepo.On("CompleteRefundPayment", ctx, mock.AnythingOfType("domain.RefundPayment"), mock.AnythingOfType("domain.ArTransaction")).
		Run(func(args mock.Arguments) {
			completed := args.Get(1).(domain.RefundPayment)
			arTxn := args.Get(2).(domain.ArTransaction)

			suite.Equal(domain.RefundCompleted, completed.Status)
			suite.NotNil(completed.CompletedDate)

			suite.Equal(domain.ArRefund, arTxn.TransactionType)
			suite.Equal(suite.customerID, arTxn.CustomerID)
			suite.True(arTxn.Amount.Equal(decimal.NewFromInt(-150)))
			suite.Equal(domain.ArPosted, arTxn.Status)
		}).
		Return(nil).Once()

	completed, err := suite.service.CompleteRefundPayment(ctx, suite.organizationID, refund.RefundPaymentID, suite.userID)

	suite.Require().NoError(err)
	suite.Require().NotNil(completed)
	suite.Equal(domain.RefundCompleted, completed.Status)
	// The AR row only ever lands through the atomic completion call.
	suite.mockRefundRepo.AssertNotCalled(suite.T(), "SaveArTransaction", mock.Anything, mock.Anything)
	suite.mockRefundRepo.AssertNumberOfCalls(suite.T(), "CompleteRefundPayment", 1)
	suite.mockRefundRepo.AssertExpectations(suite.T())
}

func (suite *RefundServiceTestSuite) TestCancelRefundPayment_FromProcessingRejected() {
	ctx := context.Background()
	refund := suite.refundInStatus(domain.RefundProcessing)

	suite.mockRefundRepo.On("FindRefundPaymentByID", ctx, refund.RefundPaymentID).Return(refund, nil).Once()

	cancelled, err := suite.service.CancelRefundPayment(ctx, suite.organizationID, refund.RefundPaymentID, "changed my mind", suite.userID)

	suite.Require().Error(err)
	suite.Nil(cancelled)
	suite.True(errors.Is(err, apperrors.ErrInvalidTransition))
	suite.mockRefundRepo.AssertNotCalled(suite.T(), "UpdateRefundPayment", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *RefundServiceTestSuite) TestCancelRefundPayment_FromInitiatedAppendsReason() {
	ctx := context.Background()
	refund := suite.refundInStatus(domain.RefundInitiated)
	refund.Notes = "existing note"

	suite.mockRefundRepo.On("FindRefundPaymentByID", ctx, refund.RefundPaymentID).Return(refund, nil).Once()
	suite.mockRefundRepo.On("UpdateRefundPayment", ctx, mock.AnythingOfType("domain.RefundPayment"), domain.RefundInitiated).
		Run(func(args mock.Arguments) {
			updated := args.Get(1).(domain.RefundPayment)
			suite.Equal(domain.RefundCancelled, updated.Status)
			// The cancellation reason lands as a new note; prior notes survive.
			suite.True(strings.HasPrefix(updated.Notes, "existing note\n"))
			suite.Contains(updated.Notes, "Refund cancelled: customer withdrew request")
			suite.Contains(updated.Notes, suite.userID)
		}).
		Return(nil).Once()

	cancelled, err := suite.service.CancelRefundPayment(ctx, suite.organizationID, refund.RefundPaymentID, "customer withdrew request", suite.userID)

	suite.Require().NoError(err)
	suite.Require().NotNil(cancelled)
	suite.Equal(domain.RefundCancelled, cancelled.Status)
	suite.mockRefundRepo.AssertExpectations(suite.T())
}

func (suite *RefundServiceTestSuite) TestCancelRefundPayment_FromApprovedSucceeds() {
	ctx := context.Background()
	refund := suite.refundInStatus(domain.RefundApproved)

	suite.mockRefundRepo.On("FindRefundPaymentByID", ctx, refund.RefundPaymentID).Return(refund, nil).Once()
	suite.mockRefundRepo.On("UpdateRefundPayment", ctx, mock.AnythingOfType("domain.RefundPayment"), domain.RefundApproved).
		Return(nil).Once()

	cancelled, err := suite.service.CancelRefundPayment(ctx, suite.organizationID, refund.RefundPaymentID, "duplicate request", suite.userID)

	suite.Require().NoError(err)
	suite.Equal(domain.RefundCancelled, cancelled.Status)
	suite.mockRefundRepo.AssertExpectations(suite.T())
}

func (suite *RefundServiceTestSuite) TestApproveRefundPayment_FromCompletedRejected() {
	ctx := context.Background()
	refund := suite.refundInStatus(domain.RefundCompleted)

	suite.mockRefundRepo.On("FindRefundPaymentByID", ctx, refund.RefundPaymentID).Return(refund, nil).Once()

	approved, err := suite.service.ApproveRefundPayment(ctx, suite.organizationID, refund.RefundPaymentID, suite.userID)

	suite.Require().Error(err)
	suite.Nil(approved)
	suite.True(errors.Is(err, apperrors.ErrInvalidTransition))
}

func (suite *RefundServiceTestSuite) TestFailRefundPayment_StampsReason() {
	ctx := context.Background()
	refund := suite.refundInStatus(domain.RefundProcessing)

	suite.mockRefundRepo.On("FindRefundPaymentByID", ctx, refund.RefundPaymentID).Return(refund, nil).Once()
	suite.mockRefundRepo.On("UpdateRefundPayment", ctx, mock.AnythingOfType("domain.RefundPayment"), domain.RefundProcessing).
		Run(func(args mock.Arguments) {
			failed := args.Get(1).(domain.RefundPayment)
			suite.Equal(domain.RefundFailed, failed.Status)
			suite.Require().NotNil(failed.FailureReason)
			suite.Equal("gateway declined", *failed.FailureReason)
		}).
		Return(nil).Once()

	failed, err := suite.service.FailRefundPayment(ctx, suite.organizationID, refund.RefundPaymentID, "gateway declined", suite.userID)

	suite.Require().NoError(err)
	suite.Require().NotNil(failed)
	suite.Equal(domain.RefundFailed, failed.Status)
	suite.mockRefundRepo.AssertExpectations(suite.T())
}

func (suite *RefundServiceTestSuite) TestGetRefundPaymentByID_WrongOrganization() {
	ctx := context.Background()
	foreign := suite.refundInStatus(domain.RefundInitiated)
	foreign.OrganizationID = uuid.NewString()

	suite.mockRefundRepo.On("FindRefundPaymentByID", ctx, foreign.RefundPaymentID).Return(foreign, nil).Once()

	got, err := suite.service.GetRefundPaymentByID(ctx, suite.organizationID, foreign.RefundPaymentID, suite.userID)

	suite.Require().Error(err)
	suite.Nil(got)
	suite.True(errors.Is(err, apperrors.ErrNotFound))
}

func (suite *RefundServiceTestSuite) TestGetRefundSummary_Aggregates() {
	ctx := context.Background()
	refunds := []domain.RefundPayment{
		{RefundPaymentID: uuid.NewString(), OrganizationID: suite.organizationID, RefundAmount: decimal.NewFromInt(100), Status: domain.RefundCompleted},
		{RefundPaymentID: uuid.NewString(), OrganizationID: suite.organizationID, RefundAmount: decimal.NewFromInt(200), Status: domain.RefundInitiated},
	}

	suite.mockRefundRepo.On("FindRefundPayments", ctx, suite.organizationID, portsrepo.RefundPaymentFilter{}).
		Return(refunds, nil).Once()

	summary, err := suite.service.GetRefundSummary(ctx, suite.organizationID, nil, suite.userID)

	suite.Require().NoError(err)
	suite.Require().NotNil(summary)
	suite.Equal(2, summary.Count)
	suite.True(summary.TotalRefunded.Equal(decimal.NewFromInt(300)))
	suite.True(summary.AverageRefund.Equal(decimal.NewFromInt(150)))
	suite.Equal(1, summary.StatusSummary[string(domain.RefundCompleted)])
	suite.Equal(1, summary.StatusSummary[string(domain.RefundInitiated)])
}

func (suite *RefundServiceTestSuite) TestRecordArTransaction_RefundTypeRejected() {
	ctx := context.Background()
	req := dto.RecordArTransactionRequest{
		CustomerID:      suite.customerID,
		TransactionType: domain.ArRefund,
		Amount:          decimal.NewFromInt(-50),
	}

	arTxn, err := suite.service.RecordArTransaction(ctx, suite.organizationID, req, suite.userID)

	suite.Require().Error(err)
	suite.Nil(arTxn)
	suite.True(errors.Is(err, apperrors.ErrValidation))
	suite.mockRefundRepo.AssertNotCalled(suite.T(), "SaveArTransaction", mock.Anything, mock.Anything)
}

func (suite *RefundServiceTestSuite) TestRecordArTransaction_InvoiceOpensWithFullBalance() {
	ctx := context.Background()
	req := dto.RecordArTransactionRequest{
		CustomerID:      suite.customerID,
		TransactionType: domain.ArInvoice,
		Amount:          decimal.NewFromInt(500),
	}

	suite.mockRefundRepo.On("SaveArTransaction", ctx, mock.AnythingOfType("domain.ArTransaction")).
		Run(func(args mock.Arguments) {
			saved := args.Get(1).(domain.ArTransaction)
			suite.True(saved.BalanceAmount.Equal(decimal.NewFromInt(500)))
			suite.Equal(domain.ArPosted, saved.Status)
		}).
		Return(nil).Once()

	arTxn, err := suite.service.RecordArTransaction(ctx, suite.organizationID, req, suite.userID)

	suite.Require().NoError(err)
	suite.Require().NotNil(arTxn)
	suite.True(arTxn.Amount.Equal(decimal.NewFromInt(500)))
	suite.mockRefundRepo.AssertExpectations(suite.T())
}

func TestRefundServiceTestSuite(t *testing.T) {
	suite.Run(t, new(RefundServiceTestSuite))
}
