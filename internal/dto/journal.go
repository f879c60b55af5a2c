package dto

import (
	"time"

	"github.com/ledgercore/subledger_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateTransactionRequest defines a single journal line in a create request.
// Amount is always positive; the side is carried by TransactionType.
type CreateTransactionRequest struct {
	AccountID       string                 `json:"accountID" binding:"required"`
	Amount          decimal.Decimal        `json:"amount" binding:"required"`
	TransactionType domain.TransactionType `json:"transactionType" binding:"required,oneof=DEBIT CREDIT"`
	Notes           string                 `json:"notes"`
	TransactionDate *time.Time             `json:"transactionDate"` // Defaults to journal date
}

// CreateJournalRequest defines the data needed to create a journal entry.
type CreateJournalRequest struct {
	Date         time.Time                  `json:"date" binding:"required"`
	Description  string                     `json:"description" binding:"required"`
	CurrencyCode string                     `json:"currencyCode" binding:"required,iso4217"`
	Transactions []CreateTransactionRequest `json:"transactions" binding:"required,min=2,dive"`
}

// ReverseJournalRequest carries the reason recorded on a reversal entry.
type ReverseJournalRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// TransactionResponse defines the data returned for a journal line.
type TransactionResponse struct {
	TransactionID  string          `json:"transactionID"`
	JournalID      string          `json:"journalID"`
	AccountID      string          `json:"accountID"`
	Amount         decimal.Decimal `json:"amount"`
	Type           string          `json:"type"` // DEBIT or CREDIT
	Notes          string          `json:"notes,omitempty"`
	RunningBalance decimal.Decimal `json:"runningBalance"`
}

// JournalResponse defines the data returned for a journal entry.
type JournalResponse struct {
	JournalID           string                `json:"journalID"`
	Date                time.Time             `json:"date"`
	Description         string                `json:"description"`
	CurrencyCode        string                `json:"currencyCode"`
	Status              domain.JournalStatus  `json:"status"`
	TotalDebit          decimal.Decimal       `json:"totalDebit"`
	TotalCredit         decimal.Decimal       `json:"totalCredit"`
	PostingDate         *time.Time            `json:"postingDate,omitempty"`
	ReversalOfJournalID *string               `json:"reversalOfJournalID,omitempty"`
	Transactions        []TransactionResponse `json:"transactions,omitempty"`
	CreatedAt           time.Time             `json:"createdAt"`
	CreatedBy           string                `json:"createdBy"`
}

// ListJournalsParams defines query parameters for listing journals.
type ListJournalsParams struct {
	Limit               int     `form:"limit,default=20"`
	NextToken           *string `form:"nextToken"`
	IncludeTransactions bool    `form:"includeTransactions,default=false"`
}

// ListJournalsResponse wraps a page of journals with the next page token.
type ListJournalsResponse struct {
	Journals  []JournalResponse `json:"journals"`
	NextToken *string           `json:"nextToken,omitempty"`
}

// ListTransactionsParams defines query parameters for listing account lines.
type ListTransactionsParams struct {
	Limit     int     `form:"limit,default=20"`
	NextToken *string `form:"nextToken"`
}

// ListTransactionsResponse wraps a page of journal lines.
type ListTransactionsResponse struct {
	Transactions []TransactionResponse `json:"transactions"`
	NextToken    *string               `json:"nextToken,omitempty"`
}

// ToTransactionResponse converts a domain.Transaction to TransactionResponse DTO.
func ToTransactionResponse(txn *domain.Transaction) TransactionResponse {
	return TransactionResponse{
		TransactionID:  txn.TransactionID,
		JournalID:      txn.JournalID,
		AccountID:      txn.AccountID,
		Amount:         txn.Amount,
		Type:           string(txn.TransactionType),
		Notes:          txn.Notes,
		RunningBalance: txn.RunningBalance,
	}
}

// ToTransactionResponses converts a slice of domain.Transaction to DTOs.
func ToTransactionResponses(txns []domain.Transaction) []TransactionResponse {
	responses := make([]TransactionResponse, len(txns))
	for i, txn := range txns {
		responses[i] = ToTransactionResponse(&txn)
	}
	return responses
}

// ToJournalResponse converts a domain.Journal to JournalResponse DTO.
func ToJournalResponse(j *domain.Journal) JournalResponse {
	resp := JournalResponse{
		JournalID:           j.JournalID,
		Date:                j.JournalDate,
		Description:         j.Description,
		CurrencyCode:        j.CurrencyCode,
		Status:              j.Status,
		TotalDebit:          j.TotalDebit,
		TotalCredit:         j.TotalCredit,
		PostingDate:         j.PostingDate,
		ReversalOfJournalID: j.ReversalOfJournalID,
		CreatedAt:           j.CreatedAt,
		CreatedBy:           j.CreatedBy,
	}
	if len(j.Transactions) > 0 {
		resp.Transactions = ToTransactionResponses(j.Transactions)
	}
	return resp
}
