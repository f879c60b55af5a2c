package pgsql

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/ledgercore/subledger_app/internal/apperrors"
	"github.com/ledgercore/subledger_app/internal/core/domain"
	portsrepo "github.com/ledgercore/subledger_app/internal/core/ports/repositories"
	"github.com/ledgercore/subledger_app/internal/models"
	"github.com/ledgercore/subledger_app/internal/utils/accounting"
	"github.com/ledgercore/subledger_app/internal/utils/mapping"
	"github.com/ledgercore/subledger_app/internal/utils/pagination"
	"github.com/shopspring/decimal"
)

const journalColumns = `journal_id, organization_id, journal_date, description, currency_code, status, total_debit, total_credit, posting_date, reversal_of_journal_id, created_at, created_by, last_updated_at, last_updated_by`

const transactionColumns = `transaction_id, journal_id, account_id, amount, transaction_type, currency_code, notes, transaction_date, running_balance, created_at, created_by, last_updated_at, last_updated_by`

type PgxJournalRepository struct {
	BaseRepository
	accountRepo portsrepo.GLAccountRepositoryFacade
}

// newPgxJournalRepository creates a new repository for journal and transaction data.
func newPgxJournalRepository(pool *pgxpool.Pool, accountRepo portsrepo.GLAccountRepositoryFacade) portsrepo.JournalRepositoryWithTx {
	return &PgxJournalRepository{
		BaseRepository: BaseRepository{Pool: pool},
		accountRepo:    accountRepo,
	}
}

// Ensure PgxJournalRepository implements portsrepo.JournalRepositoryWithTx
var _ portsrepo.JournalRepositoryWithTx = (*PgxJournalRepository)(nil)

func scanJournal(row pgx.Row) (*models.Journal, error) {
	var m models.Journal
	err := row.Scan(
		&m.JournalID,
		&m.OrganizationID,
		&m.JournalDate,
		&m.Description,
		&m.CurrencyCode,
		&m.Status,
		&m.TotalDebit,
		&m.TotalCredit,
		&m.PostingDate,
		&m.ReversalOfJournalID,
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

func scanTransaction(row pgx.Row) (*models.Transaction, error) {
	var m models.Transaction
	err := row.Scan(
		&m.TransactionID,
		&m.JournalID,
		&m.AccountID,
		&m.Amount,
		&m.TransactionType,
		&m.CurrencyCode,
		&m.Notes,
		&m.TransactionDate,
		&m.RunningBalance,
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

// insertJournalTx inserts the journal row within the given transaction.
func insertJournalTx(ctx context.Context, tx pgx.Tx, journal domain.Journal) error {
	m := mapping.ToModelJournal(journal)
	query := `
		INSERT INTO journals (` + journalColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14);
	`
	_, err := tx.Exec(ctx, query,
		m.JournalID,
		m.OrganizationID,
		m.JournalDate,
		m.Description,
		m.CurrencyCode,
		m.Status,
		m.TotalDebit,
		m.TotalCredit,
		m.PostingDate,
		m.ReversalOfJournalID,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to insert journal %s: %w", m.JournalID, err)
	}
	return nil
}

// insertTransactionsTx batch-inserts the journal lines within the given
// transaction. When lockedAccounts is non-nil the lines carry running
// balances computed from the locked pre-update balances; drafts carry zero
// until posting time.
func insertTransactionsTx(ctx context.Context, tx pgx.Tx, transactions []domain.Transaction, lockedAccounts map[string]domain.GLAccount) error {
	query := `
		INSERT INTO transactions (` + transactionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13);
	`

	// Deterministic order so running balances are reproducible.
	sort.Slice(transactions, func(i, j int) bool {
		return transactions[i].TransactionID < transactions[j].TransactionID
	})

	currentRunningBalances := make(map[string]decimal.Decimal, len(lockedAccounts))
	for accID, acc := range lockedAccounts {
		currentRunningBalances[accID] = acc.Balance
	}

	batch := &pgx.Batch{}
	for _, txn := range transactions {
		m := mapping.ToModelTransaction(txn)

		if lockedAccounts != nil {
			account, ok := lockedAccounts[txn.AccountID]
			if !ok {
				return fmt.Errorf("%w: account %s not locked for journal %s", apperrors.ErrNotFound, txn.AccountID, txn.JournalID)
			}
			signedAmount, err := accounting.CalculateSignedAmount(txn, account.AccountType)
			if err != nil {
				return fmt.Errorf("failed to calculate signed amount for transaction %s: %w", txn.TransactionID, err)
			}
			newRunningBalance := currentRunningBalances[txn.AccountID].Add(signedAmount)
			m.RunningBalance = newRunningBalance
			currentRunningBalances[txn.AccountID] = newRunningBalance
		}

		batch.Queue(query,
			m.TransactionID,
			m.JournalID,
			m.AccountID,
			m.Amount,
			m.TransactionType,
			m.CurrencyCode,
			m.Notes,
			m.TransactionDate,
			m.RunningBalance,
			m.CreatedAt,
			m.CreatedBy,
			m.LastUpdatedAt,
			m.LastUpdatedBy,
		)
	}

	br := tx.SendBatch(ctx, batch)
	if err := br.Close(); err != nil {
		return fmt.Errorf("failed to execute transaction insert batch: %w", err)
	}
	return nil
}

// SaveJournal persists a journal and its lines in one database transaction.
// A nil balanceChanges means a draft: lines land without balance effects.
// Non-nil balanceChanges (reversals, event postings) additionally lock the
// affected accounts and apply the deltas before commit.
func (r *PgxJournalRepository) SaveJournal(ctx context.Context, journal domain.Journal, transactions []domain.Transaction, balanceChanges map[string]decimal.Decimal) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	if err := insertJournalTx(ctx, tx, journal); err != nil {
		return err
	}

	var lockedAccounts map[string]domain.GLAccount
	if balanceChanges != nil {
		accountIDs := make([]string, 0, len(balanceChanges))
		for accID := range balanceChanges {
			accountIDs = append(accountIDs, accID)
		}
		lockedAccounts, err = r.accountRepo.FindAccountsByIDsForUpdate(ctx, tx, accountIDs)
		if err != nil {
			return fmt.Errorf("failed to lock accounts for journal %s: %w", journal.JournalID, err)
		}
		if err := r.accountRepo.UpdateAccountBalancesInTx(ctx, tx, balanceChanges, journal.CreatedBy, journal.CreatedAt); err != nil {
			return fmt.Errorf("failed to update account balances for journal %s: %w", journal.JournalID, err)
		}
	}

	if err := insertTransactionsTx(ctx, tx, transactions, lockedAccounts); err != nil {
		return err
	}

	return r.Commit(ctx, tx)
}

// PostJournal moves a draft journal to POSTED and applies balance changes in
// one database transaction. The journal row is locked first, so a concurrent
// post of the same journal waits and then observes POSTED.
func (r *PgxJournalRepository) PostJournal(ctx context.Context, journalID string, postingDate time.Time, balanceChanges map[string]decimal.Decimal, userID string) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	var status models.JournalStatus
	err = tx.QueryRow(ctx, `SELECT status FROM journals WHERE journal_id = $1 FOR UPDATE;`, journalID).Scan(&status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.ErrNotFound
		}
		return fmt.Errorf("failed to lock journal %s for posting: %w", journalID, err)
	}
	if domain.JournalStatus(status) == domain.JournalPosted {
		return fmt.Errorf("journal %s: %w", journalID, apperrors.ErrAlreadyPosted)
	}

	updateQuery := `
		UPDATE journals
		SET status = $2, posting_date = $3, last_updated_at = $3, last_updated_by = $4
		WHERE journal_id = $1;
	`
	if _, err := tx.Exec(ctx, updateQuery, journalID, domain.JournalPosted, postingDate, userID); err != nil {
		return fmt.Errorf("failed to post journal %s: %w", journalID, err)
	}

	accountIDs := make([]string, 0, len(balanceChanges))
	for accID := range balanceChanges {
		accountIDs = append(accountIDs, accID)
	}
	lockedAccounts, err := r.accountRepo.FindAccountsByIDsForUpdate(ctx, tx, accountIDs)
	if err != nil {
		return fmt.Errorf("failed to lock accounts for journal %s: %w", journalID, err)
	}
	if err := r.accountRepo.UpdateAccountBalancesInTx(ctx, tx, balanceChanges, userID, postingDate); err != nil {
		return fmt.Errorf("failed to update account balances for journal %s: %w", journalID, err)
	}

	// Stamp running balances on the lines now that the posting order is fixed.
	lines, err := r.findTransactionsByJournalIDTx(ctx, tx, journalID)
	if err != nil {
		return err
	}
	currentRunningBalances := make(map[string]decimal.Decimal, len(lockedAccounts))
	for accID, acc := range lockedAccounts {
		currentRunningBalances[accID] = acc.Balance
	}
	batch := &pgx.Batch{}
	for _, line := range lines {
		account, ok := lockedAccounts[line.AccountID]
		if !ok {
			return fmt.Errorf("%w: account %s not locked while posting journal %s", apperrors.ErrNotFound, line.AccountID, journalID)
		}
		signedAmount, err := accounting.CalculateSignedAmount(line, account.AccountType)
		if err != nil {
			return fmt.Errorf("failed to calculate signed amount for transaction %s: %w", line.TransactionID, err)
		}
		newRunningBalance := currentRunningBalances[line.AccountID].Add(signedAmount)
		currentRunningBalances[line.AccountID] = newRunningBalance
		batch.Queue(
			`UPDATE transactions SET running_balance = $2, last_updated_at = $3, last_updated_by = $4 WHERE transaction_id = $1;`,
			line.TransactionID, newRunningBalance, postingDate, userID,
		)
	}
	br := tx.SendBatch(ctx, batch)
	if err := br.Close(); err != nil {
		return fmt.Errorf("failed to stamp running balances for journal %s: %w", journalID, err)
	}

	return r.Commit(ctx, tx)
}

// FindJournalByID retrieves a journal by its ID, without lines.
func (r *PgxJournalRepository) FindJournalByID(ctx context.Context, journalID string) (*domain.Journal, error) {
	query := `SELECT ` + journalColumns + ` FROM journals WHERE journal_id = $1;`

	m, err := scanJournal(r.Pool.QueryRow(ctx, query, journalID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find journal by ID %s: %w", journalID, err)
	}

	d := mapping.ToDomainJournal(*m)
	return &d, nil
}

func (r *PgxJournalRepository) findTransactionsByJournalIDTx(ctx context.Context, tx pgx.Tx, journalID string) ([]domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE journal_id = $1 ORDER BY transaction_id;`

	rows, err := tx.Query(ctx, query, journalID)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions for journal %s: %w", journalID, err)
	}
	defer rows.Close()

	return collectTransactions(rows, journalID)
}

func collectTransactions(rows pgx.Rows, journalID string) ([]domain.Transaction, error) {
	transactions := []models.Transaction{}
	for rows.Next() {
		m, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction row for journal %s: %w", journalID, err)
		}
		transactions = append(transactions, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transaction rows for journal %s: %w", journalID, err)
	}
	return mapping.ToDomainTransactionSlice(transactions), nil
}

// FindTransactionsByJournalID retrieves all lines for a journal.
func (r *PgxJournalRepository) FindTransactionsByJournalID(ctx context.Context, journalID string) ([]domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE journal_id = $1 ORDER BY transaction_id;`

	rows, err := r.Pool.Query(ctx, query, journalID)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions for journal %s: %w", journalID, err)
	}
	defer rows.Close()

	return collectTransactions(rows, journalID)
}

// FindTransactionsByJournalIDs retrieves lines for multiple journals, grouped by journal ID.
func (r *PgxJournalRepository) FindTransactionsByJournalIDs(ctx context.Context, journalIDs []string) (map[string][]domain.Transaction, error) {
	if len(journalIDs) == 0 {
		return map[string][]domain.Transaction{}, nil
	}

	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE journal_id = ANY($1) ORDER BY journal_id, transaction_id;`

	rows, err := r.Pool.Query(ctx, query, journalIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions for journals: %w", err)
	}
	defer rows.Close()

	grouped := make(map[string][]domain.Transaction)
	for rows.Next() {
		m, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction row during batch fetch: %w", err)
		}
		grouped[m.JournalID] = append(grouped[m.JournalID], mapping.ToDomainTransaction(*m))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transaction rows during batch fetch: %w", err)
	}
	return grouped, nil
}

// ListJournalsByOrganization retrieves a page of journals using token-based pagination.
func (r *PgxJournalRepository) ListJournalsByOrganization(ctx context.Context, organizationID string, limit int, nextToken *string) ([]domain.Journal, *string, error) {
	if limit <= 0 {
		limit = 20
	}
	// Fetch one extra row to detect whether a next page exists.
	fetchLimit := limit + 1

	baseQuery := `SELECT ` + journalColumns + ` FROM journals WHERE organization_id = $1`
	orderByClause := `ORDER BY journal_date DESC, created_at DESC`

	args := []interface{}{organizationID}
	var query string
	if nextToken != nil && *nextToken != "" {
		lastJournalDate, lastCreatedAt, decodeErr := pagination.DecodeToken(*nextToken)
		if decodeErr != nil {
			return nil, nil, apperrors.NewAppError(400, "invalid nextToken", decodeErr)
		}
		cursorClause := `AND (journal_date, created_at) < ($2, $3)`
		args = append(args, lastJournalDate, lastCreatedAt)
		query = baseQuery + " " + cursorClause + " " + orderByClause + " LIMIT $" + strconv.Itoa(len(args)+1) + ";"
	} else {
		query = baseQuery + " " + orderByClause + " LIMIT $" + strconv.Itoa(len(args)+1) + ";"
	}
	args = append(args, fetchLimit)

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query journals for organization %s: %w", organizationID, err)
	}
	defer rows.Close()

	journals := []models.Journal{}
	for rows.Next() {
		m, err := scanJournal(rows)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to scan journal row for organization %s: %w", organizationID, err)
		}
		journals = append(journals, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("error iterating journal rows for organization %s: %w", organizationID, err)
	}

	var nextTokenVal *string
	if len(journals) > limit {
		last := journals[limit-1]
		token := pagination.EncodeToken(last.JournalDate, last.CreatedAt)
		nextTokenVal = &token
		journals = journals[:limit]
	}

	return mapping.ToDomainJournalSlice(journals), nextTokenVal, nil
}

// ListTransactionsByAccountID retrieves a page of posted lines for an account
// using token-based pagination.
func (r *PgxJournalRepository) ListTransactionsByAccountID(ctx context.Context, organizationID, accountID string, limit int, nextToken *string) ([]domain.Transaction, *string, error) {
	if limit <= 0 {
		limit = 20
	}
	fetchLimit := limit + 1

	baseQuery := `
		SELECT t.transaction_id, t.journal_id, t.account_id, t.amount, t.transaction_type, t.currency_code, t.notes,
		       t.transaction_date, t.running_balance, t.created_at, t.created_by, t.last_updated_at, t.last_updated_by,
		       j.journal_date
		FROM transactions t
		JOIN journals j ON t.journal_id = j.journal_id
		WHERE t.account_id = $1 AND j.organization_id = $2 AND j.status = 'POSTED'
	`
	orderByClause := `ORDER BY j.journal_date DESC, t.created_at DESC`

	args := []interface{}{accountID, organizationID}
	var query string
	if nextToken != nil && *nextToken != "" {
		lastJournalDate, lastCreatedAt, decodeErr := pagination.DecodeToken(*nextToken)
		if decodeErr != nil {
			return nil, nil, apperrors.NewAppError(400, "invalid nextToken", decodeErr)
		}
		cursorClause := `AND (j.journal_date, t.created_at) < ($3, $4)`
		args = append(args, lastJournalDate, lastCreatedAt)
		query = baseQuery + " " + cursorClause + " " + orderByClause + " LIMIT $" + strconv.Itoa(len(args)+1) + ";"
	} else {
		query = baseQuery + " " + orderByClause + " LIMIT $" + strconv.Itoa(len(args)+1) + ";"
	}
	args = append(args, fetchLimit)

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query transactions for account %s: %w", accountID, err)
	}
	defer rows.Close()

	type pageRow struct {
		txn         models.Transaction
		journalDate time.Time
	}
	pageRows := make([]pageRow, 0, fetchLimit)
	for rows.Next() {
		var m models.Transaction
		var journalDate time.Time
		err := rows.Scan(
			&m.TransactionID,
			&m.JournalID,
			&m.AccountID,
			&m.Amount,
			&m.TransactionType,
			&m.CurrencyCode,
			&m.Notes,
			&m.TransactionDate,
			&m.RunningBalance,
			&m.CreatedAt,
			&m.CreatedBy,
			&m.LastUpdatedAt,
			&m.LastUpdatedBy,
			&journalDate,
		)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to scan transaction row for account %s: %w", accountID, err)
		}
		pageRows = append(pageRows, pageRow{txn: m, journalDate: journalDate})
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("error iterating transaction rows for account %s: %w", accountID, err)
	}

	var nextTokenVal *string
	var results []models.Transaction
	if len(pageRows) > limit {
		last := pageRows[limit-1]
		token := pagination.EncodeToken(last.journalDate, last.txn.CreatedAt)
		nextTokenVal = &token
		results = make([]models.Transaction, limit)
		for i := 0; i < limit; i++ {
			results[i] = pageRows[i].txn
		}
	} else {
		results = make([]models.Transaction, len(pageRows))
		for i, pr := range pageRows {
			results[i] = pr.txn
		}
	}

	return mapping.ToDomainTransactionSlice(results), nextTokenVal, nil
}
