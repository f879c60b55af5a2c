package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ledgercore/subledger_app/internal/apperrors"
	"github.com/ledgercore/subledger_app/internal/core/domain"
	portssvc "github.com/ledgercore/subledger_app/internal/core/ports/services"
	"github.com/ledgercore/subledger_app/internal/core/statemachine"
	"github.com/ledgercore/subledger_app/internal/dto"
	"github.com/ledgercore/subledger_app/internal/middleware"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

// --- Mock RefundService ---
type MockRefundService struct {
	mock.Mock
}

func (m *MockRefundService) InitiateRefundPayment(ctx context.Context, organizationID string, req dto.InitiateRefundRequest, userID string) (*domain.RefundPayment, error) {
	args := m.Called(ctx, organizationID, req, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RefundPayment), args.Error(1)
}

func (m *MockRefundService) ApproveRefundPayment(ctx context.Context, organizationID string, refundPaymentID string, userID string) (*domain.RefundPayment, error) {
	args := m.Called(ctx, organizationID, refundPaymentID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RefundPayment), args.Error(1)
}

func (m *MockRefundService) ProcessRefundPayment(ctx context.Context, organizationID string, refundPaymentID string, referenceNumber string, userID string) (*domain.RefundPayment, error) {
	args := m.Called(ctx, organizationID, refundPaymentID, referenceNumber, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RefundPayment), args.Error(1)
}

func (m *MockRefundService) CompleteRefundPayment(ctx context.Context, organizationID string, refundPaymentID string, userID string) (*domain.RefundPayment, error) {
	args := m.Called(ctx, organizationID, refundPaymentID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RefundPayment), args.Error(1)
}

func (m *MockRefundService) FailRefundPayment(ctx context.Context, organizationID string, refundPaymentID string, failureReason string, userID string) (*domain.RefundPayment, error) {
	args := m.Called(ctx, organizationID, refundPaymentID, failureReason, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RefundPayment), args.Error(1)
}

func (m *MockRefundService) CancelRefundPayment(ctx context.Context, organizationID string, refundPaymentID string, cancellationReason string, userID string) (*domain.RefundPayment, error) {
	args := m.Called(ctx, organizationID, refundPaymentID, cancellationReason, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RefundPayment), args.Error(1)
}

func (m *MockRefundService) GetRefundPaymentByID(ctx context.Context, organizationID string, refundPaymentID string, userID string) (*domain.RefundPayment, error) {
	args := m.Called(ctx, organizationID, refundPaymentID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RefundPayment), args.Error(1)
}

func (m *MockRefundService) FindRefundPayments(ctx context.Context, organizationID string, req dto.FindRefundPaymentsParams, userID string) ([]domain.RefundPayment, error) {
	args := m.Called(ctx, organizationID, req, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.RefundPayment), args.Error(1)
}

func (m *MockRefundService) GetRefundSummary(ctx context.Context, organizationID string, customerID *string, userID string) (*dto.RefundSummaryResponse, error) {
	args := m.Called(ctx, organizationID, customerID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.RefundSummaryResponse), args.Error(1)
}

func (m *MockRefundService) RecordArTransaction(ctx context.Context, organizationID string, req dto.RecordArTransactionRequest, userID string) (*domain.ArTransaction, error) {
	args := m.Called(ctx, organizationID, req, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ArTransaction), args.Error(1)
}

func (m *MockRefundService) ListArTransactions(ctx context.Context, organizationID string, customerID string, userID string) ([]domain.ArTransaction, error) {
	args := m.Called(ctx, organizationID, customerID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ArTransaction), args.Error(1)
}

// Ensure mock implements the interface
var _ portssvc.RefundSvcFacade = (*MockRefundService)(nil)

// --- Test Suite ---
type RefundHandlerTestSuite struct {
	suite.Suite
	router            *gin.Engine
	mockRefundService *MockRefundService
	jwtSecret         string
}

func (suite *RefundHandlerTestSuite) generateTestToken(userID string) string {
	claims := jwt.RegisteredClaims{
		Issuer:    "subledger-test",
		Subject:   userID,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(1 * time.Hour)),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(suite.jwtSecret))
	if err != nil {
		suite.FailNow("Failed to sign test token", err.Error())
	}
	return signed
}

func (suite *RefundHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	suite.router = gin.New()
	suite.jwtSecret = "test-secret-key-that-is-long-enough"

	suite.router.Use(middleware.AuthMiddleware(suite.jwtSecret))

	suite.mockRefundService = new(MockRefundService)

	v1 := suite.router.Group("/api/v1/organizations/:organization_id")
	registerRefundRoutes(v1, suite.mockRefundService)
}

func (suite *RefundHandlerTestSuite) doRequest(method, url, userID string, body any) *httptest.ResponseRecorder {
	var reqBody *bytes.Buffer
	if body != nil {
		raw, err := json.Marshal(body)
		suite.Require().NoError(err)
		reqBody = bytes.NewBuffer(raw)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req, _ := http.NewRequest(method, url, reqBody)
	req.Header.Set("Authorization", "Bearer "+suite.generateTestToken(userID))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	return w
}

// --- Test Cases ---

func (suite *RefundHandlerTestSuite) TestInitiateRefund_Success() {
	organizationID := uuid.NewString()
	userID := uuid.NewString()
	customerID := uuid.NewString()

	req := dto.InitiateRefundRequest{
		CustomerID:   customerID,
		RefundAmount: decimal.NewFromFloat(45.50),
		RefundMethod: domain.RefundMethodACH,
		Reason:       "Order cancelled before shipment",
	}

	expected := &domain.RefundPayment{
		RefundPaymentID: uuid.NewString(),
		OrganizationID:  organizationID,
		CustomerID:      customerID,
		RefundAmount:    req.RefundAmount,
		RefundMethod:    domain.RefundMethodACH,
		Status:          domain.RefundInitiated,
	}

	suite.mockRefundService.On("InitiateRefundPayment",
		mock.Anything, organizationID, mock.AnythingOfType("dto.InitiateRefundRequest"), userID).
		Return(expected, nil).Once()

	w := suite.doRequest(http.MethodPost, fmt.Sprintf("/api/v1/organizations/%s/refunds", organizationID), userID, req)

	suite.Equal(http.StatusCreated, w.Code)

	var resp dto.RefundPaymentResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal(expected.RefundPaymentID, resp.RefundPaymentID)
	suite.Equal(domain.RefundInitiated, resp.Status)
	suite.mockRefundService.AssertExpectations(suite.T())
}

func (suite *RefundHandlerTestSuite) TestApproveRefund_IllegalTransition() {
	organizationID := uuid.NewString()
	refundID := uuid.NewString()
	userID := uuid.NewString()

	transitionErr := &statemachine.TransitionError{
		From: string(domain.RefundCompleted),
		To:   string(domain.RefundApproved),
	}
	suite.mockRefundService.On("ApproveRefundPayment", mock.Anything, organizationID, refundID, userID).
		Return(nil, transitionErr).Once()

	w := suite.doRequest(http.MethodPost,
		fmt.Sprintf("/api/v1/organizations/%s/refunds/%s/approve", organizationID, refundID), userID, nil)

	suite.Equal(http.StatusConflict, w.Code)
	suite.mockRefundService.AssertExpectations(suite.T())
}

func (suite *RefundHandlerTestSuite) TestProcessRefund_RequiresReference() {
	organizationID := uuid.NewString()
	refundID := uuid.NewString()
	userID := uuid.NewString()

	w := suite.doRequest(http.MethodPost,
		fmt.Sprintf("/api/v1/organizations/%s/refunds/%s/process", organizationID, refundID),
		userID, map[string]string{})

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.mockRefundService.AssertNotCalled(suite.T(), "ProcessRefundPayment")
}

func (suite *RefundHandlerTestSuite) TestCompleteRefund_Success() {
	organizationID := uuid.NewString()
	refundID := uuid.NewString()
	userID := uuid.NewString()
	now := time.Now()

	completed := &domain.RefundPayment{
		RefundPaymentID: refundID,
		OrganizationID:  organizationID,
		Status:          domain.RefundCompleted,
		CompletedDate:   &now,
	}
	suite.mockRefundService.On("CompleteRefundPayment", mock.Anything, organizationID, refundID, userID).
		Return(completed, nil).Once()

	w := suite.doRequest(http.MethodPost,
		fmt.Sprintf("/api/v1/organizations/%s/refunds/%s/complete", organizationID, refundID), userID, nil)

	suite.Equal(http.StatusOK, w.Code)

	var resp dto.RefundPaymentResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal(domain.RefundCompleted, resp.Status)
	suite.mockRefundService.AssertExpectations(suite.T())
}

func (suite *RefundHandlerTestSuite) TestGetRefund_NotFound() {
	organizationID := uuid.NewString()
	refundID := uuid.NewString()
	userID := uuid.NewString()

	suite.mockRefundService.On("GetRefundPaymentByID", mock.Anything, organizationID, refundID, userID).
		Return(nil, apperrors.ErrNotFound).Once()

	w := suite.doRequest(http.MethodGet,
		fmt.Sprintf("/api/v1/organizations/%s/refunds/%s", organizationID, refundID), userID, nil)

	suite.Equal(http.StatusNotFound, w.Code)
	suite.mockRefundService.AssertExpectations(suite.T())
}

func (suite *RefundHandlerTestSuite) TestListArTransactions_RequiresCustomerID() {
	organizationID := uuid.NewString()
	userID := uuid.NewString()

	w := suite.doRequest(http.MethodGet,
		fmt.Sprintf("/api/v1/organizations/%s/ar-transactions", organizationID), userID, nil)

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.mockRefundService.AssertNotCalled(suite.T(), "ListArTransactions")
}

// --- Run Test Suite ---
func TestRefundHandler(t *testing.T) {
	suite.Run(t, new(RefundHandlerTestSuite))
}
