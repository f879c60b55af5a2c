package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/ledgercore/subledger_app/internal/apperrors"
	"github.com/ledgercore/subledger_app/internal/core/domain"
	portsrepo "github.com/ledgercore/subledger_app/internal/core/ports/repositories"
	portssvc "github.com/ledgercore/subledger_app/internal/core/ports/services"
	"github.com/ledgercore/subledger_app/internal/core/statemachine"
	"github.com/ledgercore/subledger_app/internal/dto"
	"github.com/shopspring/decimal"
)

// refundService implements the RefundSvcFacade interface
type refundService struct {
	BaseService
	refundRepo portsrepo.RefundRepositoryWithTx
}

// RefundServiceOption is a functional option for configuring the refund service
type RefundServiceOption func(*refundService)

// WithRefundAuthorizer adds the organization authorizer dependency
func WithRefundAuthorizer(authorizer portssvc.OrganizationAuthorizerSvc) RefundServiceOption {
	return func(s *refundService) {
		s.OrganizationAuthorizer = authorizer
	}
}

// NewRefundService creates a new refund service with the provided options
func NewRefundService(repo portsrepo.RefundRepositoryWithTx, options ...RefundServiceOption) portssvc.RefundSvcFacade {
	svc := &refundService{
		refundRepo: repo,
	}
	for _, option := range options {
		option(svc)
	}
	return svc
}

// Ensure refundService implements the RefundSvcFacade interface
var _ portssvc.RefundSvcFacade = (*refundService)(nil)

// appendNote appends a timestamped line to the refund's append-only notes log.
func appendNote(notes string, stamp time.Time, userID string, line string) string {
	entry := fmt.Sprintf("[%s %s] %s", stamp.Format(time.RFC3339), userID, line)
	if notes == "" {
		return entry
	}
	return notes + "\n" + entry
}

// getRefundForTransition fetches a refund, scopes it to the organization and
// validates the requested transition against the legal-transition table.
func (s *refundService) getRefundForTransition(ctx context.Context, organizationID, refundPaymentID string, target domain.RefundPaymentStatus) (*domain.RefundPayment, error) {
	refund, err := s.refundRepo.FindRefundPaymentByID(ctx, refundPaymentID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find refund payment",
				slog.String("refund_payment_id", refundPaymentID))
		}
		return nil, err
	}
	if refund.OrganizationID != organizationID {
		s.LogDebug(ctx, "Refund belongs to different organization",
			slog.String("refund_payment_id", refundPaymentID))
		return nil, apperrors.ErrNotFound
	}
	if !refund.Status.CanTransitionTo(target) {
		err := &statemachine.TransitionError{From: string(refund.Status), To: string(target)}
		s.LogError(ctx, err, "Illegal refund transition",
			slog.String("refund_payment_id", refundPaymentID),
			slog.String("from", string(refund.Status)),
			slog.String("to", string(target)))
		return nil, err
	}
	return refund, nil
}

func (s *refundService) InitiateRefundPayment(ctx context.Context, organizationID string, req dto.InitiateRefundRequest, userID string) (*domain.RefundPayment, error) {
	if err := s.AuthorizeUser(ctx, userID, organizationID, domain.RoleMember); err != nil {
		s.LogError(ctx, err, "User not authorized to initiate refund",
			slog.String("user_id", userID),
			slog.String("organization_id", organizationID))
		return nil, err
	}

	if req.RefundAmount.LessThanOrEqual(decimal.Zero) {
		err := fmt.Errorf("refund amount must be positive: %w", apperrors.ErrValidation)
		s.LogError(ctx, err, "Non-positive refund amount",
			slog.String("refund_amount", req.RefundAmount.String()))
		return nil, err
	}
	if !req.RefundMethod.IsValid() {
		err := fmt.Errorf("invalid refund method %q: %w", req.RefundMethod, apperrors.ErrValidation)
		s.LogError(ctx, err, "Invalid refund method",
			slog.String("refund_method", string(req.RefundMethod)))
		return nil, err
	}

	now := time.Now()
	refund := domain.RefundPayment{
		RefundPaymentID:   uuid.NewString(),
		OrganizationID:    organizationID,
		CustomerID:        req.CustomerID,
		OriginalPaymentID: req.OriginalPaymentID,
		InvoiceID:         req.InvoiceID,
		RefundAmount:      req.RefundAmount,
		RefundMethod:      req.RefundMethod,
		Reason:            req.Reason,
		GLAccountID:       req.GLAccountID,
		Status:            domain.RefundInitiated,
		Notes:             appendNote(req.Notes, now, userID, "Refund initiated"),
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}

	if err := s.refundRepo.SaveRefundPayment(ctx, refund); err != nil {
		s.LogError(ctx, err, "Failed to save refund payment",
			slog.String("refund_payment_id", refund.RefundPaymentID))
		return nil, err
	}

	s.LogInfo(ctx, "Refund payment initiated",
		slog.String("refund_payment_id", refund.RefundPaymentID),
		slog.String("customer_id", refund.CustomerID),
		slog.String("refund_amount", refund.RefundAmount.String()))
	return &refund, nil
}

func (s *refundService) ApproveRefundPayment(ctx context.Context, organizationID string, refundPaymentID string, userID string) (*domain.RefundPayment, error) {
	if err := s.AuthorizeUser(ctx, userID, organizationID, domain.RoleAdmin); err != nil {
		return nil, err
	}

	refund, err := s.getRefundForTransition(ctx, organizationID, refundPaymentID, domain.RefundApproved)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	expected := refund.Status
	refund.Status = domain.RefundApproved
	refund.ApprovedBy = &userID
	refund.ApprovalDate = &now
	refund.Notes = appendNote(refund.Notes, now, userID, "Refund approved")
	refund.LastUpdatedAt = now
	refund.LastUpdatedBy = userID

	if err := s.refundRepo.UpdateRefundPayment(ctx, *refund, expected); err != nil {
		s.LogError(ctx, err, "Failed to approve refund",
			slog.String("refund_payment_id", refundPaymentID))
		return nil, err
	}

	s.LogInfo(ctx, "Refund payment approved",
		slog.String("refund_payment_id", refundPaymentID),
		slog.String("approved_by", userID))
	return refund, nil
}

func (s *refundService) ProcessRefundPayment(ctx context.Context, organizationID string, refundPaymentID string, referenceNumber string, userID string) (*domain.RefundPayment, error) {
	if err := s.AuthorizeUser(ctx, userID, organizationID, domain.RoleMember); err != nil {
		return nil, err
	}

	refund, err := s.getRefundForTransition(ctx, organizationID, refundPaymentID, domain.RefundProcessing)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	expected := refund.Status
	refund.Status = domain.RefundProcessing
	refund.ReferenceNumber = &referenceNumber
	refund.ProcessingDate = &now
	refund.Notes = appendNote(refund.Notes, now, userID, fmt.Sprintf("Processing started, reference %s", referenceNumber))
	refund.LastUpdatedAt = now
	refund.LastUpdatedBy = userID

	if err := s.refundRepo.UpdateRefundPayment(ctx, *refund, expected); err != nil {
		s.LogError(ctx, err, "Failed to move refund to processing",
			slog.String("refund_payment_id", refundPaymentID))
		return nil, err
	}

	s.LogInfo(ctx, "Refund payment processing",
		slog.String("refund_payment_id", refundPaymentID),
		slog.String("reference_number", referenceNumber))
	return refund, nil
}

func (s *refundService) CompleteRefundPayment(ctx context.Context, organizationID string, refundPaymentID string, userID string) (*domain.RefundPayment, error) {
	if err := s.AuthorizeUser(ctx, userID, organizationID, domain.RoleMember); err != nil {
		return nil, err
	}

	refund, err := s.getRefundForTransition(ctx, organizationID, refundPaymentID, domain.RefundCompleted)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	refund.Status = domain.RefundCompleted
	refund.CompletedDate = &now
	refund.Notes = appendNote(refund.Notes, now, userID, "Refund completed")
	refund.LastUpdatedAt = now
	refund.LastUpdatedBy = userID

	// The AR row carries the negated amount: a completed refund reduces what
	// the customer has effectively paid.
	arTxn := domain.ArTransaction{
		ArTransactionID: uuid.NewString(),
		OrganizationID:  organizationID,
		CustomerID:      refund.CustomerID,
		InvoiceID:       refund.InvoiceID,
		TransactionType: domain.ArRefund,
		TransactionDate: now,
		Amount:          refund.RefundAmount.Neg(),
		BalanceAmount:   decimal.Zero,
		Status:          domain.ArPosted,
		PostedDate:      now,
		CreatedBy:       userID,
		CreatedAt:       now,
	}

	// Refund row and AR row commit together or not at all.
	if err := s.refundRepo.CompleteRefundPayment(ctx, *refund, arTxn); err != nil {
		s.LogError(ctx, err, "Failed to complete refund",
			slog.String("refund_payment_id", refundPaymentID))
		return nil, err
	}

	s.LogInfo(ctx, "Refund payment completed",
		slog.String("refund_payment_id", refundPaymentID),
		slog.String("ar_transaction_id", arTxn.ArTransactionID),
		slog.String("ar_amount", arTxn.Amount.String()))
	return refund, nil
}

func (s *refundService) FailRefundPayment(ctx context.Context, organizationID string, refundPaymentID string, failureReason string, userID string) (*domain.RefundPayment, error) {
	if err := s.AuthorizeUser(ctx, userID, organizationID, domain.RoleMember); err != nil {
		return nil, err
	}

	refund, err := s.getRefundForTransition(ctx, organizationID, refundPaymentID, domain.RefundFailed)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	expected := refund.Status
	refund.Status = domain.RefundFailed
	refund.FailureReason = &failureReason
	refund.Notes = appendNote(refund.Notes, now, userID, fmt.Sprintf("Refund failed: %s", failureReason))
	refund.LastUpdatedAt = now
	refund.LastUpdatedBy = userID

	if err := s.refundRepo.UpdateRefundPayment(ctx, *refund, expected); err != nil {
		s.LogError(ctx, err, "Failed to mark refund as failed",
			slog.String("refund_payment_id", refundPaymentID))
		return nil, err
	}

	s.LogInfo(ctx, "Refund payment failed",
		slog.String("refund_payment_id", refundPaymentID),
		slog.String("failure_reason", failureReason))
	return refund, nil
}

func (s *refundService) CancelRefundPayment(ctx context.Context, organizationID string, refundPaymentID string, cancellationReason string, userID string) (*domain.RefundPayment, error) {
	if err := s.AuthorizeUser(ctx, userID, organizationID, domain.RoleMember); err != nil {
		return nil, err
	}

	refund, err := s.getRefundForTransition(ctx, organizationID, refundPaymentID, domain.RefundCancelled)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	expected := refund.Status
	refund.Status = domain.RefundCancelled
	refund.Notes = appendNote(refund.Notes, now, userID, fmt.Sprintf("Refund cancelled: %s", cancellationReason))
	refund.LastUpdatedAt = now
	refund.LastUpdatedBy = userID

	if err := s.refundRepo.UpdateRefundPayment(ctx, *refund, expected); err != nil {
		s.LogError(ctx, err, "Failed to cancel refund",
			slog.String("refund_payment_id", refundPaymentID))
		return nil, err
	}

	s.LogInfo(ctx, "Refund payment cancelled",
		slog.String("refund_payment_id", refundPaymentID),
		slog.String("cancellation_reason", cancellationReason))
	return refund, nil
}

func (s *refundService) GetRefundPaymentByID(ctx context.Context, organizationID string, refundPaymentID string, userID string) (*domain.RefundPayment, error) {
	if err := s.AuthorizeUser(ctx, userID, organizationID, domain.RoleReadOnly); err != nil {
		return nil, err
	}

	refund, err := s.refundRepo.FindRefundPaymentByID(ctx, refundPaymentID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find refund payment",
				slog.String("refund_payment_id", refundPaymentID))
		}
		return nil, err
	}
	if refund.OrganizationID != organizationID {
		return nil, apperrors.ErrNotFound
	}
	return refund, nil
}

func (s *refundService) FindRefundPayments(ctx context.Context, organizationID string, req dto.FindRefundPaymentsParams, userID string) ([]domain.RefundPayment, error) {
	if err := s.AuthorizeUser(ctx, userID, organizationID, domain.RoleReadOnly); err != nil {
		return nil, err
	}

	filter := portsrepo.RefundPaymentFilter{
		CustomerID: req.CustomerID,
	}
	if req.Status != nil {
		status := domain.RefundPaymentStatus(*req.Status)
		filter.Status = &status
	}

	refunds, err := s.refundRepo.FindRefundPayments(ctx, organizationID, filter)
	if err != nil {
		s.LogError(ctx, err, "Failed to find refund payments",
			slog.String("organization_id", organizationID))
		return nil, err
	}
	if refunds == nil {
		return []domain.RefundPayment{}, nil
	}
	return refunds, nil
}

func (s *refundService) GetRefundSummary(ctx context.Context, organizationID string, customerID *string, userID string) (*dto.RefundSummaryResponse, error) {
	if err := s.AuthorizeUser(ctx, userID, organizationID, domain.RoleReadOnly); err != nil {
		return nil, err
	}

	refunds, err := s.refundRepo.FindRefundPayments(ctx, organizationID, portsrepo.RefundPaymentFilter{CustomerID: customerID})
	if err != nil {
		s.LogError(ctx, err, "Failed to load refunds for summary",
			slog.String("organization_id", organizationID))
		return nil, err
	}

	summary := &dto.RefundSummaryResponse{
		TotalRefunded: decimal.Zero,
		AverageRefund: decimal.Zero,
		StatusSummary: make(map[string]int),
	}
	for _, refund := range refunds {
		summary.Count++
		summary.TotalRefunded = summary.TotalRefunded.Add(refund.RefundAmount)
		summary.StatusSummary[string(refund.Status)]++
	}
	if summary.Count > 0 {
		summary.AverageRefund = summary.TotalRefunded.Div(decimal.NewFromInt(int64(summary.Count)))
	}
	return summary, nil
}

func (s *refundService) RecordArTransaction(ctx context.Context, organizationID string, req dto.RecordArTransactionRequest, userID string) (*domain.ArTransaction, error) {
	if err := s.AuthorizeUser(ctx, userID, organizationID, domain.RoleMember); err != nil {
		return nil, err
	}

	if !req.TransactionType.IsValid() || req.TransactionType == domain.ArRefund {
		// Refund AR rows are only written by refund completion.
		err := fmt.Errorf("invalid AR transaction type %q: %w", req.TransactionType, apperrors.ErrValidation)
		s.LogError(ctx, err, "Invalid AR transaction type",
			slog.String("transaction_type", string(req.TransactionType)))
		return nil, err
	}
	if req.Amount.IsZero() {
		err := fmt.Errorf("AR transaction amount must be non-zero: %w", apperrors.ErrValidation)
		s.LogError(ctx, err, "Zero AR transaction amount")
		return nil, err
	}

	now := time.Now()
	balance := decimal.Zero
	if req.TransactionType == domain.ArInvoice {
		// Invoices open with their full amount outstanding.
		balance = req.Amount
	}

	arTxn := domain.ArTransaction{
		ArTransactionID: uuid.NewString(),
		OrganizationID:  organizationID,
		CustomerID:      req.CustomerID,
		InvoiceID:       req.InvoiceID,
		TransactionType: req.TransactionType,
		TransactionDate: req.TransactionDate,
		Amount:          req.Amount,
		BalanceAmount:   balance,
		Status:          domain.ArPosted,
		PostedDate:      now,
		CreatedBy:       userID,
		CreatedAt:       now,
	}

	if err := s.refundRepo.SaveArTransaction(ctx, arTxn); err != nil {
		s.LogError(ctx, err, "Failed to save AR transaction",
			slog.String("ar_transaction_id", arTxn.ArTransactionID))
		return nil, err
	}

	s.LogInfo(ctx, "AR transaction recorded",
		slog.String("ar_transaction_id", arTxn.ArTransactionID),
		slog.String("transaction_type", string(arTxn.TransactionType)),
		slog.String("amount", arTxn.Amount.String()))
	return &arTxn, nil
}

func (s *refundService) ListArTransactions(ctx context.Context, organizationID string, customerID string, userID string) ([]domain.ArTransaction, error) {
	if err := s.AuthorizeUser(ctx, userID, organizationID, domain.RoleReadOnly); err != nil {
		return nil, err
	}

	txns, err := s.refundRepo.FindArTransactionsByCustomer(ctx, organizationID, customerID)
	if err != nil {
		s.LogError(ctx, err, "Failed to list AR transactions",
			slog.String("customer_id", customerID))
		return nil, err
	}
	if txns == nil {
		return []domain.ArTransaction{}, nil
	}
	return txns, nil
}
