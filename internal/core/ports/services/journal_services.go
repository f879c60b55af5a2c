package services

import (
	"context"

	"github.com/ledgercore/subledger_app/internal/core/domain"
	"github.com/ledgercore/subledger_app/internal/dto"
)

// JournalReaderSvc defines read operations for journal data
type JournalReaderSvc interface {
	// GetJournalByID retrieves a specific journal entry with its lines.
	GetJournalByID(ctx context.Context, organizationID string, journalID string, requestingUserID string) (*domain.Journal, error)

	// ListJournals retrieves a paginated list of journals in an organization.
	ListJournals(ctx context.Context, organizationID string, userID string, params dto.ListJournalsParams) (*dto.ListJournalsResponse, error)
}

// JournalWriterSvc defines write operations for journal data
type JournalWriterSvc interface {
	// CreateJournal persists a new balanced journal entry in DRAFT status.
	CreateJournal(ctx context.Context, organizationID string, req dto.CreateJournalRequest, creatorUserID string) (*domain.Journal, error)

	// PostJournal moves a draft journal to POSTED, stamping the posting date.
	PostJournal(ctx context.Context, organizationID string, journalID string, userID string) (*domain.Journal, error)

	// ReverseJournal creates a new, immediately posted journal whose lines
	// swap the debits and credits of a posted source journal.
	ReverseJournal(ctx context.Context, organizationID string, journalID string, reversalReason string, userID string) (*domain.Journal, error)
}

// TransactionReaderSvc defines read operations for journal line data
type TransactionReaderSvc interface {
	// ListTransactionsByAccount retrieves lines for a specific GL account.
	ListTransactionsByAccount(ctx context.Context, organizationID string, accountID string, userID string, params dto.ListTransactionsParams) (*dto.ListTransactionsResponse, error)
}

// JournalSvcFacade combines all journal-related service interfaces
type JournalSvcFacade interface {
	JournalReaderSvc
	JournalWriterSvc
	TransactionReaderSvc
}
