package repositories

import (
	"context"
	"time"

	"github.com/ledgercore/subledger_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// JournalReader defines read operations for journal data
type JournalReader interface {
	// FindJournalByID retrieves a specific journal by its unique identifier.
	FindJournalByID(ctx context.Context, journalID string) (*domain.Journal, error)

	// ListJournalsByOrganization retrieves a paginated list of journals using token-based pagination.
	// It returns the journals, a token for the next page, and an error.
	ListJournalsByOrganization(ctx context.Context, organizationID string, limit int, nextToken *string) ([]domain.Journal, *string, error)
}

// JournalWriter defines write operations for journal data
type JournalWriter interface {
	// SaveJournal persists a journal entry and its transaction lines in one
	// database transaction. For already-posted journals (reversals are
	// written posted), balanceChanges is applied to the affected accounts
	// within the same transaction; for drafts it is nil.
	SaveJournal(ctx context.Context, journal domain.Journal, transactions []domain.Transaction, balanceChanges map[string]decimal.Decimal) error

	// PostJournal moves a draft journal to POSTED and applies balance
	// changes atomically. The journal row is locked for the duration, so
	// concurrent posts of the same journal serialize; posting a journal that
	// is already POSTED reports apperrors.ErrAlreadyPosted and leaves the
	// posting date unchanged.
	PostJournal(ctx context.Context, journalID string, postingDate time.Time, balanceChanges map[string]decimal.Decimal, userID string) error
}

// TransactionReader defines read operations for journal line data
type TransactionReader interface {
	// FindTransactionsByJournalID retrieves all lines associated with a single journal ID.
	FindTransactionsByJournalID(ctx context.Context, journalID string) ([]domain.Transaction, error)

	// FindTransactionsByJournalIDs retrieves lines for multiple journal IDs, grouped by journal ID.
	FindTransactionsByJournalIDs(ctx context.Context, journalIDs []string) (map[string][]domain.Transaction, error)

	// ListTransactionsByAccountID retrieves a paginated list of lines for a specific account.
	ListTransactionsByAccountID(ctx context.Context, organizationID, accountID string, limit int, nextToken *string) ([]domain.Transaction, *string, error)
}

// JournalRepositoryFacade combines all journal-related repository interfaces
type JournalRepositoryFacade interface {
	JournalReader
	JournalWriter
	TransactionReader
}

// JournalRepositoryWithTx extends JournalRepositoryFacade with transaction capabilities
type JournalRepositoryWithTx interface {
	JournalRepositoryFacade
	TransactionManager
}
