package pgsql

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/ledgercore/subledger_app/internal/apperrors"
	"github.com/ledgercore/subledger_app/internal/core/domain"
	portsrepo "github.com/ledgercore/subledger_app/internal/core/ports/repositories"
	"github.com/ledgercore/subledger_app/internal/models"
	"github.com/ledgercore/subledger_app/internal/utils/mapping"
	"github.com/shopspring/decimal"
)

const glAccountColumns = `account_id, organization_id, account_number, name, account_type, currency_code, description, status, balance, created_at, created_by, last_updated_at, last_updated_by`

type PgxGLAccountRepository struct {
	BaseRepository
}

// newPgxGLAccountRepository creates a new repository for GL account data.
func newPgxGLAccountRepository(pool *pgxpool.Pool) *PgxGLAccountRepository {
	return &PgxGLAccountRepository{BaseRepository: BaseRepository{Pool: pool}}
}

// Ensure PgxGLAccountRepository implements portsrepo.GLAccountRepositoryWithTx
var _ portsrepo.GLAccountRepositoryWithTx = (*PgxGLAccountRepository)(nil)

func scanGLAccount(row pgx.Row) (*models.GLAccount, error) {
	var m models.GLAccount
	err := row.Scan(
		&m.AccountID,
		&m.OrganizationID,
		&m.AccountNumber,
		&m.Name,
		&m.AccountType,
		&m.CurrencyCode,
		&m.Description,
		&m.Status,
		&m.Balance,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// SaveAccount inserts a new GL account.
func (r *PgxGLAccountRepository) SaveAccount(ctx context.Context, account domain.GLAccount) error {
	m := mapping.ToModelGLAccount(account)

	query := `
		INSERT INTO gl_accounts (` + glAccountColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13);
	`
	_, err := r.Pool.Exec(ctx, query,
		m.AccountID,
		m.OrganizationID,
		m.AccountNumber,
		m.Name,
		m.AccountType,
		m.CurrencyCode,
		m.Description,
		m.Status,
		m.Balance,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // Unique violation
			return fmt.Errorf("%w: account number %s already exists in organization %s", apperrors.ErrDuplicate, m.AccountNumber, m.OrganizationID)
		}
		return fmt.Errorf("failed to save GL account %s: %w", m.AccountID, err)
	}
	return nil
}

// FindAccountByID retrieves a GL account by its ID.
func (r *PgxGLAccountRepository) FindAccountByID(ctx context.Context, accountID string) (*domain.GLAccount, error) {
	query := `SELECT ` + glAccountColumns + ` FROM gl_accounts WHERE account_id = $1;`

	m, err := scanGLAccount(r.Pool.QueryRow(ctx, query, accountID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find GL account by ID %s: %w", accountID, err)
	}

	d := mapping.ToDomainGLAccount(*m)
	return &d, nil
}

// FindAccountByNumber retrieves a GL account by its number within an organization.
func (r *PgxGLAccountRepository) FindAccountByNumber(ctx context.Context, organizationID string, accountNumber string) (*domain.GLAccount, error) {
	query := `SELECT ` + glAccountColumns + ` FROM gl_accounts WHERE organization_id = $1 AND account_number = $2;`

	m, err := scanGLAccount(r.Pool.QueryRow(ctx, query, organizationID, accountNumber))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find GL account by number %s: %w", accountNumber, err)
	}

	d := mapping.ToDomainGLAccount(*m)
	return &d, nil
}

// FindAccountsByIDs retrieves multiple GL accounts by their IDs.
func (r *PgxGLAccountRepository) FindAccountsByIDs(ctx context.Context, accountIDs []string) (map[string]domain.GLAccount, error) {
	if len(accountIDs) == 0 {
		return map[string]domain.GLAccount{}, nil
	}

	query := `SELECT ` + glAccountColumns + ` FROM gl_accounts WHERE account_id = ANY($1);`

	rows, err := r.Pool.Query(ctx, query, accountIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to query GL accounts by IDs: %w", err)
	}
	defer rows.Close()

	accountsMap := make(map[string]domain.GLAccount)
	for rows.Next() {
		m, err := scanGLAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan GL account row during batch fetch: %w", err)
		}
		accountsMap[m.AccountID] = mapping.ToDomainGLAccount(*m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating GL account rows during batch fetch: %w", err)
	}

	// Missing IDs are simply absent from the map; the caller decides whether
	// that is an error.
	return accountsMap, nil
}

// ListAccounts retrieves a paginated list of GL accounts for an organization.
func (r *PgxGLAccountRepository) ListAccounts(ctx context.Context, organizationID string, limit int, offset int) ([]domain.GLAccount, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	query := `
		SELECT ` + glAccountColumns + `
		FROM gl_accounts
		WHERE organization_id = $1
		ORDER BY account_number
		LIMIT $2 OFFSET $3;
	`
	rows, err := r.Pool.Query(ctx, query, organizationID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query GL accounts for organization %s: %w", organizationID, err)
	}
	defer rows.Close()

	accounts := []domain.GLAccount{}
	for rows.Next() {
		m, err := scanGLAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan GL account row for organization %s: %w", organizationID, err)
		}
		accounts = append(accounts, mapping.ToDomainGLAccount(*m))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating GL account rows for organization %s: %w", organizationID, err)
	}

	return accounts, nil
}

// UpdateAccount updates the mutable details of an existing GL account.
func (r *PgxGLAccountRepository) UpdateAccount(ctx context.Context, account domain.GLAccount) error {
	m := mapping.ToModelGLAccount(account)

	// Account number, type, currency and balance are not editable here.
	query := `
		UPDATE gl_accounts
		SET name = $2, description = $3, last_updated_at = $4, last_updated_by = $5
		WHERE account_id = $1;
	`
	cmdTag, err := r.Pool.Exec(ctx, query,
		m.AccountID,
		m.Name,
		m.Description,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to update GL account %s: %w", m.AccountID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// UpdateAccountStatus transitions the account lifecycle status. The WHERE
// clause carries the expected current status, so two concurrent transitions
// cannot both win: the loser matches zero rows and reports ErrConflict.
func (r *PgxGLAccountRepository) UpdateAccountStatus(ctx context.Context, accountID string, expected domain.GLAccountStatus, target domain.GLAccountStatus, userID string, now time.Time) error {
	query := `
		UPDATE gl_accounts
		SET status = $3, last_updated_at = $4, last_updated_by = $5
		WHERE account_id = $1 AND status = $2;
	`
	cmdTag, err := r.Pool.Exec(ctx, query, accountID, expected, target, now, userID)
	if err != nil {
		return fmt.Errorf("failed to transition GL account %s: %w", accountID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("%w: account %s is no longer %s", apperrors.ErrConflict, accountID, expected)
	}
	return nil
}

// FindAccountsByIDsForUpdate selects accounts and locks their rows within a transaction.
func (r *PgxGLAccountRepository) FindAccountsByIDsForUpdate(ctx context.Context, tx pgx.Tx, accountIDs []string) (map[string]domain.GLAccount, error) {
	if len(accountIDs) == 0 {
		return map[string]domain.GLAccount{}, nil
	}

	query := `SELECT ` + glAccountColumns + ` FROM gl_accounts WHERE account_id = ANY($1) FOR UPDATE;`

	rows, err := tx.Query(ctx, query, accountIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to query GL accounts for update: %w", err)
	}
	defer rows.Close()

	accountsMap := make(map[string]domain.GLAccount)
	for rows.Next() {
		m, err := scanGLAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan locked GL account row: %w", err)
		}
		accountsMap[m.AccountID] = mapping.ToDomainGLAccount(*m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating locked GL account rows: %w", err)
	}

	if len(accountsMap) != len(accountIDs) {
		missing := []string{}
		for _, id := range accountIDs {
			if _, found := accountsMap[id]; !found {
				missing = append(missing, id)
			}
		}
		slog.WarnContext(ctx, "Some accounts requested for update lock were not found", "missing_accounts", missing)
		return nil, fmt.Errorf("%w: could not find or lock all requested accounts, missing: %v", apperrors.ErrNotFound, missing)
	}

	return accountsMap, nil
}

// UpdateAccountBalancesInTx applies balance deltas to multiple accounts within a transaction.
func (r *PgxGLAccountRepository) UpdateAccountBalancesInTx(ctx context.Context, tx pgx.Tx, balanceChanges map[string]decimal.Decimal, userID string, now time.Time) error {
	if len(balanceChanges) == 0 {
		return nil
	}

	query := `
		UPDATE gl_accounts
		SET balance = COALESCE(balance, 0) + $2, last_updated_at = $3, last_updated_by = $4
		WHERE account_id = $1;
	`

	batch := &pgx.Batch{}
	accountIDs := make([]string, 0, len(balanceChanges))
	for accountID, delta := range balanceChanges {
		if !delta.IsZero() {
			batch.Queue(query, accountID, delta, now, userID)
			accountIDs = append(accountIDs, accountID)
		}
	}
	if batch.Len() == 0 {
		return nil
	}

	br := tx.SendBatch(ctx, batch)
	var batchErr error
	for i := 0; i < batch.Len(); i++ {
		ct, err := br.Exec()
		if err != nil {
			if batchErr == nil {
				batchErr = fmt.Errorf("failed to update balance for account %s: %w", accountIDs[i], err)
			}
		} else if ct.RowsAffected() == 0 {
			if batchErr == nil {
				batchErr = fmt.Errorf("%w: account %s not found during balance update", apperrors.ErrNotFound, accountIDs[i])
			}
		}
	}
	if err := br.Close(); err != nil && batchErr == nil {
		batchErr = fmt.Errorf("failed to close balance update batch: %w", err)
	}
	return batchErr
}
