package services

import (
	"context"

	"github.com/ledgercore/subledger_app/internal/core/domain"
	"github.com/ledgercore/subledger_app/internal/dto"
)

// RefundReaderSvc defines read operations for refund payment data
type RefundReaderSvc interface {
	// GetRefundPaymentByID retrieves a specific refund payment.
	GetRefundPaymentByID(ctx context.Context, organizationID string, refundPaymentID string, userID string) (*domain.RefundPayment, error)

	// FindRefundPayments retrieves refunds matching the ANDed filters.
	FindRefundPayments(ctx context.Context, organizationID string, req dto.FindRefundPaymentsParams, userID string) ([]domain.RefundPayment, error)

	// GetRefundSummary aggregates refunds for an organization, optionally
	// narrowed to one customer.
	GetRefundSummary(ctx context.Context, organizationID string, customerID *string, userID string) (*dto.RefundSummaryResponse, error)
}

// RefundWorkflowSvc defines the refund lifecycle operations. Each operation
// validates the transition against the refund's legal-transition table before
// mutating anything.
type RefundWorkflowSvc interface {
	// InitiateRefundPayment creates a refund in INITIATED status.
	InitiateRefundPayment(ctx context.Context, organizationID string, req dto.InitiateRefundRequest, userID string) (*domain.RefundPayment, error)

	// ApproveRefundPayment moves INITIATED -> APPROVED, stamping approver and approval date.
	ApproveRefundPayment(ctx context.Context, organizationID string, refundPaymentID string, userID string) (*domain.RefundPayment, error)

	// ProcessRefundPayment moves APPROVED -> PROCESSING, stamping the payment reference.
	ProcessRefundPayment(ctx context.Context, organizationID string, refundPaymentID string, referenceNumber string, userID string) (*domain.RefundPayment, error)

	// CompleteRefundPayment moves PROCESSING -> COMPLETED and atomically
	// posts the correlated REFUND AR transaction.
	CompleteRefundPayment(ctx context.Context, organizationID string, refundPaymentID string, userID string) (*domain.RefundPayment, error)

	// FailRefundPayment moves PROCESSING -> FAILED, stamping the failure reason.
	FailRefundPayment(ctx context.Context, organizationID string, refundPaymentID string, failureReason string, userID string) (*domain.RefundPayment, error)

	// CancelRefundPayment moves INITIATED|APPROVED -> CANCELLED, appending
	// the cancellation reason to the notes log.
	CancelRefundPayment(ctx context.Context, organizationID string, refundPaymentID string, cancellationReason string, userID string) (*domain.RefundPayment, error)
}

// ArTransactionSvc defines operations over accounts-receivable rows.
type ArTransactionSvc interface {
	// RecordArTransaction posts an invoice or payment AR row directly.
	RecordArTransaction(ctx context.Context, organizationID string, req dto.RecordArTransactionRequest, userID string) (*domain.ArTransaction, error)

	// ListArTransactions retrieves posted AR rows for a customer.
	ListArTransactions(ctx context.Context, organizationID string, customerID string, userID string) ([]domain.ArTransaction, error)
}

// RefundSvcFacade combines all refund-related service interfaces
type RefundSvcFacade interface {
	RefundReaderSvc
	RefundWorkflowSvc
	ArTransactionSvc
}
