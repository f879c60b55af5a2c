package domain

import (
	"time"

	"github.com/ledgercore/subledger_app/internal/core/statemachine"
	"github.com/shopspring/decimal"
)

// RefundPaymentStatus is the lifecycle state of a refund payment.
//
// A refund moves from initiation to a terminal outcome:
// INITIATED -> APPROVED -> PROCESSING -> COMPLETED | FAILED, with
// cancellation possible before processing starts.
type RefundPaymentStatus string

const (
	RefundInitiated  RefundPaymentStatus = "REFUND_INITIATED"
	RefundApproved   RefundPaymentStatus = "REFUND_APPROVED"
	RefundProcessing RefundPaymentStatus = "REFUND_PROCESSING"
	RefundCompleted  RefundPaymentStatus = "REFUND_COMPLETED"
	RefundFailed     RefundPaymentStatus = "REFUND_FAILED"
	RefundCancelled  RefundPaymentStatus = "REFUND_CANCELLED"
)

// RefundPaymentTransitions is the legal-transition table for refund payments.
// COMPLETED, FAILED and CANCELLED are terminal.
var RefundPaymentTransitions = statemachine.Table[RefundPaymentStatus]{
	RefundInitiated:  {RefundApproved, RefundCancelled},
	RefundApproved:   {RefundProcessing, RefundCancelled},
	RefundProcessing: {RefundCompleted, RefundFailed},
}

// CanTransitionTo reports whether the refund status may legally move to target.
func (s RefundPaymentStatus) CanTransitionTo(target RefundPaymentStatus) bool {
	return RefundPaymentTransitions.CanTransition(s, target)
}

// IsTerminal reports whether the status has no legal successors.
func (s RefundPaymentStatus) IsTerminal() bool {
	return RefundPaymentTransitions.IsTerminal(s)
}

// DisplayName returns the user-facing name for the status.
func (s RefundPaymentStatus) DisplayName() string {
	switch s {
	case RefundInitiated:
		return "Initiated"
	case RefundApproved:
		return "Approved"
	case RefundProcessing:
		return "Processing"
	case RefundCompleted:
		return "Completed"
	case RefundFailed:
		return "Failed"
	case RefundCancelled:
		return "Cancelled"
	}
	return string(s)
}

// RefundMethod is the channel through which a refund is paid out.
type RefundMethod string

const (
	RefundMethodCheck        RefundMethod = "CHECK"
	RefundMethodACH          RefundMethod = "ACH"
	RefundMethodStoreCredit  RefundMethod = "STORE_CREDIT"
	RefundMethodCreditCard   RefundMethod = "CREDIT_CARD"
	RefundMethodWireTransfer RefundMethod = "WIRE_TRANSFER"
)

// IsValid reports whether the refund method is one of the known methods.
func (m RefundMethod) IsValid() bool {
	switch m {
	case RefundMethodCheck, RefundMethodACH, RefundMethodStoreCredit,
		RefundMethodCreditCard, RefundMethodWireTransfer:
		return true
	}
	return false
}

// RefundPayment tracks a customer refund through its lifecycle. Rows are
// never deleted; every workflow step stamps its own fields and appends to
// the notes log.
type RefundPayment struct {
	RefundPaymentID   string              `json:"refundPaymentID"` // Primary Key (e.g., UUID)
	OrganizationID    string              `json:"organizationID"`  // FK -> organizations.organization_id (Not Null)
	CustomerID        string              `json:"customerID"`
	OriginalPaymentID *string             `json:"originalPaymentID,omitempty"`
	InvoiceID         *string             `json:"invoiceID,omitempty"`
	RefundAmount      decimal.Decimal     `json:"refundAmount"` // Positive
	RefundMethod      RefundMethod        `json:"refundMethod"`
	Reason            string              `json:"reason"`
	GLAccountID       *string             `json:"glAccountID,omitempty"`
	Status            RefundPaymentStatus `json:"status"`
	ApprovedBy        *string             `json:"approvedBy,omitempty"`
	ApprovalDate      *time.Time          `json:"approvalDate,omitempty"`
	ReferenceNumber   *string             `json:"referenceNumber,omitempty"` // Gateway or check reference
	ProcessingDate    *time.Time          `json:"processingDate,omitempty"`
	CompletedDate     *time.Time          `json:"completedDate,omitempty"`
	FailureReason     *string             `json:"failureReason,omitempty"`
	Notes             string              `json:"notes"` // Append-only log
	AuditFields
}
