package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ArTransactionType distinguishes accounts-receivable rows.
type ArTransactionType string

const (
	ArInvoice ArTransactionType = "INVOICE"
	ArPayment ArTransactionType = "PAYMENT"
	ArRefund  ArTransactionType = "REFUND"
)

// IsValid reports whether the AR transaction type is known.
func (t ArTransactionType) IsValid() bool {
	switch t {
	case ArInvoice, ArPayment, ArRefund:
		return true
	}
	return false
}

// ArTransactionStatus is the state of an AR transaction. AR rows are written
// directly in POSTED state; once posted, amount and type are immutable.
type ArTransactionStatus string

const (
	ArPosted ArTransactionStatus = "POSTED"
)

// ArTransaction is an accounts-receivable ledger row. Amount is signed:
// negative for refunds and credits, positive for invoices. BalanceAmount is
// the running open balance and is maintained only on invoice-type rows, by
// application of payments against the matching invoice.
type ArTransaction struct {
	ArTransactionID string              `json:"arTransactionID"` // Primary Key (e.g., UUID)
	OrganizationID  string              `json:"organizationID"`  // FK -> organizations.organization_id (Not Null)
	CustomerID      string              `json:"customerID"`
	InvoiceID       *string             `json:"invoiceID,omitempty"`
	TransactionType ArTransactionType   `json:"transactionType"`
	TransactionDate time.Time           `json:"transactionDate"`
	Amount          decimal.Decimal     `json:"amount"`        // Signed
	BalanceAmount   decimal.Decimal     `json:"balanceAmount"` // Invoice rows only
	Status          ArTransactionStatus `json:"status"`
	PostedDate      time.Time           `json:"postedDate"`
	CreatedBy       string              `json:"createdBy"`
	CreatedAt       time.Time           `json:"createdAt"`
}
