package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// RefundPayment represents a row in the refund_payments table.
type RefundPayment struct {
	RefundPaymentID   string          `db:"refund_payment_id"`
	OrganizationID    string          `db:"organization_id"`
	CustomerID        string          `db:"customer_id"`
	OriginalPaymentID *string         `db:"original_payment_id"`
	InvoiceID         *string         `db:"invoice_id"`
	RefundAmount      decimal.Decimal `db:"refund_amount"`
	RefundMethod      string          `db:"refund_method"`
	Reason            string          `db:"reason"`
	GLAccountID       *string         `db:"gl_account_id"`
	Status            string          `db:"status"`
	ApprovedBy        *string         `db:"approved_by"`
	ApprovalDate      *time.Time      `db:"approval_date"`
	ReferenceNumber   *string         `db:"reference_number"`
	ProcessingDate    *time.Time      `db:"processing_date"`
	CompletedDate     *time.Time      `db:"completed_date"`
	FailureReason     *string         `db:"failure_reason"`
	Notes             string          `db:"notes"`
	AuditFields
}

// ArTransaction represents a row in the ar_transactions table.
type ArTransaction struct {
	ArTransactionID string          `db:"ar_transaction_id"`
	OrganizationID  string          `db:"organization_id"`
	CustomerID      string          `db:"customer_id"`
	InvoiceID       *string         `db:"invoice_id"`
	TransactionType string          `db:"transaction_type"`
	TransactionDate time.Time       `db:"transaction_date"`
	Amount          decimal.Decimal `db:"amount"` // Signed
	BalanceAmount   decimal.Decimal `db:"balance_amount"`
	Status          string          `db:"status"`
	PostedDate      time.Time       `db:"posted_date"`
	CreatedBy       string          `db:"created_by"`
	CreatedAt       time.Time       `db:"created_at"`
}
