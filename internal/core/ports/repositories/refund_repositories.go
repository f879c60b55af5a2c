package repositories

import (
	"context"

	"github.com/ledgercore/subledger_app/internal/core/domain"
)

// RefundPaymentFilter narrows refund listing; nil fields are ignored and the
// remaining filters are ANDed.
type RefundPaymentFilter struct {
	CustomerID *string
	Status     *domain.RefundPaymentStatus
}

// RefundReader defines read operations for refund payment data
type RefundReader interface {
	// FindRefundPaymentByID retrieves a specific refund payment.
	FindRefundPaymentByID(ctx context.Context, refundPaymentID string) (*domain.RefundPayment, error)

	// FindRefundPayments retrieves refunds for an organization matching the filter.
	FindRefundPayments(ctx context.Context, organizationID string, filter RefundPaymentFilter) ([]domain.RefundPayment, error)
}

// RefundWriter defines write operations for refund payment data
type RefundWriter interface {
	// SaveRefundPayment persists a newly initiated refund payment.
	SaveRefundPayment(ctx context.Context, refund domain.RefundPayment) error

	// UpdateRefundPayment persists a workflow transition. The update is
	// guarded by the expected current status so concurrent transitions for
	// the same refund serialize; a guard miss reports apperrors.ErrConflict.
	UpdateRefundPayment(ctx context.Context, refund domain.RefundPayment, expected domain.RefundPaymentStatus) error

	// CompleteRefundPayment writes the COMPLETED refund and its correlated
	// REFUND AR transaction in one database transaction: both become visible
	// together or neither does.
	CompleteRefundPayment(ctx context.Context, refund domain.RefundPayment, arTxn domain.ArTransaction) error
}

// ArTransactionReader defines read operations for AR transaction data
type ArTransactionReader interface {
	// FindArTransactionsByCustomer retrieves posted AR rows for a customer.
	FindArTransactionsByCustomer(ctx context.Context, organizationID, customerID string) ([]domain.ArTransaction, error)
}

// ArTransactionWriter defines write operations for AR transaction data
type ArTransactionWriter interface {
	// SaveArTransaction persists a posted AR row (invoice or payment entry).
	SaveArTransaction(ctx context.Context, arTxn domain.ArTransaction) error
}

// RefundRepositoryFacade combines all refund-related repository interfaces
type RefundRepositoryFacade interface {
	RefundReader
	RefundWriter
	ArTransactionReader
	ArTransactionWriter
}

// RefundRepositoryWithTx extends RefundRepositoryFacade with transaction capabilities
type RefundRepositoryWithTx interface {
	RefundRepositoryFacade
	TransactionManager
}
