package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType indicates whether a journal line is a Debit or a Credit.
type TransactionType string

const (
	Debit  TransactionType = "DEBIT"
	Credit TransactionType = "CREDIT"
)

// Opposite returns the other side of the entry, used when building reversals.
func (t TransactionType) Opposite() TransactionType {
	if t == Debit {
		return Credit
	}
	return Debit
}

// Transaction represents a single line item within a Journal, affecting one
// GL account. Amount is always positive; the side is carried by
// TransactionType, so every line is a debit XOR a credit.
type Transaction struct {
	TransactionID   string          `json:"transactionID"` // Primary Key (e.g., UUID)
	JournalID       string          `json:"journalID"`     // FK -> Journal.journalID (Not Null)
	AccountID       string          `json:"accountID"`     // FK -> GLAccount.accountID (Not Null)
	Amount          decimal.Decimal `json:"amount"`        // Positive value; precise decimal type
	TransactionType TransactionType `json:"transactionType"`
	CurrencyCode    string          `json:"currencyCode"` // Must match Journal currency (Not Null)
	Notes           string          `json:"notes"`        // Nullable line description
	TransactionDate time.Time       `json:"transactionDate"`
	RunningBalance  decimal.Decimal `json:"runningBalance"` // Account balance after this line; set by the repository
	AuditFields
}
