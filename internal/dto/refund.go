package dto

import (
	"time"

	"github.com/ledgercore/subledger_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// InitiateRefundRequest defines the data needed to initiate a refund payment.
type InitiateRefundRequest struct {
	CustomerID        string              `json:"customerID" binding:"required"`
	RefundAmount      decimal.Decimal     `json:"refundAmount" binding:"required"`
	RefundMethod      domain.RefundMethod `json:"refundMethod" binding:"required"`
	Reason            string              `json:"reason" binding:"required"`
	OriginalPaymentID *string             `json:"originalPaymentID"`
	InvoiceID         *string             `json:"invoiceID"`
	GLAccountID       *string             `json:"glAccountID"`
	Notes             string              `json:"notes"`
}

// ProcessRefundRequest carries the payment reference stamped when processing starts.
type ProcessRefundRequest struct {
	ReferenceNumber string `json:"referenceNumber" binding:"required"`
}

// FailRefundRequest carries the reason a refund failed during processing.
type FailRefundRequest struct {
	FailureReason string `json:"failureReason" binding:"required"`
}

// CancelRefundRequest carries the reason a refund was cancelled.
type CancelRefundRequest struct {
	CancellationReason string `json:"cancellationReason" binding:"required"`
}

// FindRefundPaymentsParams defines query filters for listing refunds.
// Provided filters are ANDed.
type FindRefundPaymentsParams struct {
	CustomerID *string `form:"customerID"`
	Status     *string `form:"status"`
}

// RefundPaymentResponse defines the data returned for a refund payment.
type RefundPaymentResponse struct {
	RefundPaymentID   string                     `json:"refundPaymentID"`
	CustomerID        string                     `json:"customerID"`
	OriginalPaymentID *string                    `json:"originalPaymentID,omitempty"`
	InvoiceID         *string                    `json:"invoiceID,omitempty"`
	RefundAmount      decimal.Decimal            `json:"refundAmount"`
	RefundMethod      domain.RefundMethod        `json:"refundMethod"`
	Reason            string                     `json:"reason"`
	GLAccountID       *string                    `json:"glAccountID,omitempty"`
	Status            domain.RefundPaymentStatus `json:"status"`
	StatusDisplay     string                     `json:"statusDisplay"`
	ApprovedBy        *string                    `json:"approvedBy,omitempty"`
	ApprovalDate      *time.Time                 `json:"approvalDate,omitempty"`
	ReferenceNumber   *string                    `json:"referenceNumber,omitempty"`
	ProcessingDate    *time.Time                 `json:"processingDate,omitempty"`
	CompletedDate     *time.Time                 `json:"completedDate,omitempty"`
	FailureReason     *string                    `json:"failureReason,omitempty"`
	Notes             string                     `json:"notes,omitempty"`
	CreatedAt         time.Time                  `json:"createdAt"`
	CreatedBy         string                     `json:"createdBy"`
}

// ToRefundPaymentResponse converts a domain.RefundPayment to DTO.
func ToRefundPaymentResponse(r *domain.RefundPayment) RefundPaymentResponse {
	return RefundPaymentResponse{
		RefundPaymentID:   r.RefundPaymentID,
		CustomerID:        r.CustomerID,
		OriginalPaymentID: r.OriginalPaymentID,
		InvoiceID:         r.InvoiceID,
		RefundAmount:      r.RefundAmount,
		RefundMethod:      r.RefundMethod,
		Reason:            r.Reason,
		GLAccountID:       r.GLAccountID,
		Status:            r.Status,
		StatusDisplay:     r.Status.DisplayName(),
		ApprovedBy:        r.ApprovedBy,
		ApprovalDate:      r.ApprovalDate,
		ReferenceNumber:   r.ReferenceNumber,
		ProcessingDate:    r.ProcessingDate,
		CompletedDate:     r.CompletedDate,
		FailureReason:     r.FailureReason,
		Notes:             r.Notes,
		CreatedAt:         r.CreatedAt,
		CreatedBy:         r.CreatedBy,
	}
}

// ToRefundPaymentResponses converts a slice of domain.RefundPayment to DTOs.
func ToRefundPaymentResponses(refunds []domain.RefundPayment) []RefundPaymentResponse {
	res := make([]RefundPaymentResponse, len(refunds))
	for i, r := range refunds {
		res[i] = ToRefundPaymentResponse(&r)
	}
	return res
}

// RefundSummaryResponse aggregates refunds, optionally for one customer.
type RefundSummaryResponse struct {
	Count         int             `json:"count"`
	TotalRefunded decimal.Decimal `json:"totalRefunded"`
	AverageRefund decimal.Decimal `json:"averageRefund"`
	StatusSummary map[string]int  `json:"statusSummary"`
}

// RecordArTransactionRequest defines the data needed to post an AR row directly.
type RecordArTransactionRequest struct {
	CustomerID      string                   `json:"customerID" binding:"required"`
	InvoiceID       *string                  `json:"invoiceID"`
	TransactionType domain.ArTransactionType `json:"transactionType" binding:"required,oneof=INVOICE PAYMENT"`
	TransactionDate time.Time                `json:"transactionDate" binding:"required"`
	Amount          decimal.Decimal          `json:"amount" binding:"required"`
}

// ArTransactionResponse defines the data returned for an AR transaction.
type ArTransactionResponse struct {
	ArTransactionID string                     `json:"arTransactionID"`
	CustomerID      string                     `json:"customerID"`
	InvoiceID       *string                    `json:"invoiceID,omitempty"`
	TransactionType domain.ArTransactionType   `json:"transactionType"`
	TransactionDate time.Time                  `json:"transactionDate"`
	Amount          decimal.Decimal            `json:"amount"`
	BalanceAmount   decimal.Decimal            `json:"balanceAmount"`
	Status          domain.ArTransactionStatus `json:"status"`
	PostedDate      time.Time                  `json:"postedDate"`
	CreatedBy       string                     `json:"createdBy"`
}

// ToArTransactionResponse converts a domain.ArTransaction to DTO.
func ToArTransactionResponse(t *domain.ArTransaction) ArTransactionResponse {
	return ArTransactionResponse{
		ArTransactionID: t.ArTransactionID,
		CustomerID:      t.CustomerID,
		InvoiceID:       t.InvoiceID,
		TransactionType: t.TransactionType,
		TransactionDate: t.TransactionDate,
		Amount:          t.Amount,
		BalanceAmount:   t.BalanceAmount,
		Status:          t.Status,
		PostedDate:      t.PostedDate,
		CreatedBy:       t.CreatedBy,
	}
}

// ToArTransactionResponses converts a slice of domain.ArTransaction to DTOs.
func ToArTransactionResponses(txns []domain.ArTransaction) []ArTransactionResponse {
	res := make([]ArTransactionResponse, len(txns))
	for i, t := range txns {
		res[i] = ToArTransactionResponse(&t)
	}
	return res
}
