package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// JournalStatus mirrors the status column of journals.
type JournalStatus string

// Journal represents a row in the journals table.
type Journal struct {
	JournalID           string          `db:"journal_id"`
	OrganizationID      string          `db:"organization_id"`
	JournalDate         time.Time       `db:"journal_date"`
	Description         string          `db:"description"`
	CurrencyCode        string          `db:"currency_code"`
	Status              JournalStatus   `db:"status"`
	TotalDebit          decimal.Decimal `db:"total_debit"`
	TotalCredit         decimal.Decimal `db:"total_credit"`
	PostingDate         *time.Time      `db:"posting_date"`          // Nullable until posted
	ReversalOfJournalID *string         `db:"reversal_of_journal_id"` // Nullable back-reference
	AuditFields
}

// Transaction represents a row in the transactions table, one line of a journal.
type Transaction struct {
	TransactionID   string          `db:"transaction_id"`
	JournalID       string          `db:"journal_id"`
	AccountID       string          `db:"account_id"`
	Amount          decimal.Decimal `db:"amount"` // Always positive
	TransactionType string          `db:"transaction_type"`
	CurrencyCode    string          `db:"currency_code"`
	Notes           string          `db:"notes"`
	TransactionDate time.Time       `db:"transaction_date"`
	RunningBalance  decimal.Decimal `db:"running_balance"`
	AuditFields
}
