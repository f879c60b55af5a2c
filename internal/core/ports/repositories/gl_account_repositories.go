package repositories

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/ledgercore/subledger_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// GLAccountReader defines read operations for GL account data
type GLAccountReader interface {
	// FindAccountByID retrieves a specific GL account by its unique identifier.
	FindAccountByID(ctx context.Context, accountID string) (*domain.GLAccount, error)

	// FindAccountByNumber retrieves a GL account by its account number within an organization.
	FindAccountByNumber(ctx context.Context, organizationID string, accountNumber string) (*domain.GLAccount, error)

	// FindAccountsByIDs retrieves multiple GL accounts by their IDs.
	FindAccountsByIDs(ctx context.Context, accountIDs []string) (map[string]domain.GLAccount, error)

	// ListAccounts retrieves a paginated list of GL accounts for a given organization.
	ListAccounts(ctx context.Context, organizationID string, limit int, offset int) ([]domain.GLAccount, error)
}

// GLAccountWriter defines write operations for GL account data
type GLAccountWriter interface {
	// SaveAccount persists a new GL account.
	SaveAccount(ctx context.Context, account domain.GLAccount) error

	// UpdateAccount updates an existing GL account's details.
	UpdateAccount(ctx context.Context, account domain.GLAccount) error

	// UpdateAccountStatus moves an account to a new lifecycle status. The
	// update is guarded by the expected current status so concurrent
	// transitions for the same account serialize; a guard miss reports
	// apperrors.ErrConflict.
	UpdateAccountStatus(ctx context.Context, accountID string, expected domain.GLAccountStatus, target domain.GLAccountStatus, userID string, now time.Time) error
}

// GLAccountTransactionSupport defines operations used inside posting transactions
type GLAccountTransactionSupport interface {
	// FindAccountsByIDsForUpdate selects accounts and locks them for update within a transaction.
	FindAccountsByIDsForUpdate(ctx context.Context, tx pgx.Tx, accountIDs []string) (map[string]domain.GLAccount, error)

	// UpdateAccountBalancesInTx updates the balance for multiple accounts within a given transaction.
	UpdateAccountBalancesInTx(ctx context.Context, tx pgx.Tx, balanceChanges map[string]decimal.Decimal, userID string, now time.Time) error
}

// GLAccountRepositoryFacade combines all GL-account-related repository interfaces
type GLAccountRepositoryFacade interface {
	GLAccountReader
	GLAccountWriter
	GLAccountTransactionSupport
}

// GLAccountRepositoryWithTx extends GLAccountRepositoryFacade with transaction capabilities
type GLAccountRepositoryWithTx interface {
	GLAccountRepositoryFacade
	TransactionManager
}
