package mapping

import (
	"github.com/ledgercore/subledger_app/internal/core/domain"
	"github.com/ledgercore/subledger_app/internal/models"
)

// ToModelRefundPayment converts a domain RefundPayment to a model RefundPayment
func ToModelRefundPayment(d domain.RefundPayment) models.RefundPayment {
	return models.RefundPayment{
		RefundPaymentID:   d.RefundPaymentID,
		OrganizationID:    d.OrganizationID,
		CustomerID:        d.CustomerID,
		OriginalPaymentID: d.OriginalPaymentID,
		InvoiceID:         d.InvoiceID,
		RefundAmount:      d.RefundAmount,
		RefundMethod:      string(d.RefundMethod),
		Reason:            d.Reason,
		GLAccountID:       d.GLAccountID,
		Status:            string(d.Status),
		ApprovedBy:        d.ApprovedBy,
		ApprovalDate:      d.ApprovalDate,
		ReferenceNumber:   d.ReferenceNumber,
		ProcessingDate:    d.ProcessingDate,
		CompletedDate:     d.CompletedDate,
		FailureReason:     d.FailureReason,
		Notes:             d.Notes,
		AuditFields:       ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainRefundPayment converts a model RefundPayment to a domain RefundPayment
func ToDomainRefundPayment(m models.RefundPayment) domain.RefundPayment {
	return domain.RefundPayment{
		RefundPaymentID:   m.RefundPaymentID,
		OrganizationID:    m.OrganizationID,
		CustomerID:        m.CustomerID,
		OriginalPaymentID: m.OriginalPaymentID,
		InvoiceID:         m.InvoiceID,
		RefundAmount:      m.RefundAmount,
		RefundMethod:      domain.RefundMethod(m.RefundMethod),
		Reason:            m.Reason,
		GLAccountID:       m.GLAccountID,
		Status:            domain.RefundPaymentStatus(m.Status),
		ApprovedBy:        m.ApprovedBy,
		ApprovalDate:      m.ApprovalDate,
		ReferenceNumber:   m.ReferenceNumber,
		ProcessingDate:    m.ProcessingDate,
		CompletedDate:     m.CompletedDate,
		FailureReason:     m.FailureReason,
		Notes:             m.Notes,
		AuditFields:       ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainRefundPaymentSlice converts a slice of model RefundPayments to domain RefundPayments
func ToDomainRefundPaymentSlice(ms []models.RefundPayment) []domain.RefundPayment {
	ds := make([]domain.RefundPayment, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainRefundPayment(m)
	}
	return ds
}

// ToModelArTransaction converts a domain ArTransaction to a model ArTransaction
func ToModelArTransaction(d domain.ArTransaction) models.ArTransaction {
	return models.ArTransaction{
		ArTransactionID: d.ArTransactionID,
		OrganizationID:  d.OrganizationID,
		CustomerID:      d.CustomerID,
		InvoiceID:       d.InvoiceID,
		TransactionType: string(d.TransactionType),
		TransactionDate: d.TransactionDate,
		Amount:          d.Amount,
		BalanceAmount:   d.BalanceAmount,
		Status:          string(d.Status),
		PostedDate:      d.PostedDate,
		CreatedBy:       d.CreatedBy,
		CreatedAt:       d.CreatedAt,
	}
}

// ToDomainArTransaction converts a model ArTransaction to a domain ArTransaction
func ToDomainArTransaction(m models.ArTransaction) domain.ArTransaction {
	return domain.ArTransaction{
		ArTransactionID: m.ArTransactionID,
		OrganizationID:  m.OrganizationID,
		CustomerID:      m.CustomerID,
		InvoiceID:       m.InvoiceID,
		TransactionType: domain.ArTransactionType(m.TransactionType),
		TransactionDate: m.TransactionDate,
		Amount:          m.Amount,
		BalanceAmount:   m.BalanceAmount,
		Status:          domain.ArTransactionStatus(m.Status),
		PostedDate:      m.PostedDate,
		CreatedBy:       m.CreatedBy,
		CreatedAt:       m.CreatedAt,
	}
}

// ToDomainArTransactionSlice converts a slice of model ArTransactions to domain ArTransactions
func ToDomainArTransactionSlice(ms []models.ArTransaction) []domain.ArTransaction {
	ds := make([]domain.ArTransaction, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainArTransaction(m)
	}
	return ds
}
