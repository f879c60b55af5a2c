package pgsql

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/ledgercore/subledger_app/internal/apperrors"
	"github.com/ledgercore/subledger_app/internal/core/domain"
	portsrepo "github.com/ledgercore/subledger_app/internal/core/ports/repositories"
	"github.com/ledgercore/subledger_app/internal/models"
	"github.com/ledgercore/subledger_app/internal/utils/mapping"
)

const refundPaymentColumns = `refund_payment_id, organization_id, customer_id, original_payment_id, invoice_id, refund_amount, refund_method, reason, gl_account_id, status, approved_by, approval_date, reference_number, processing_date, completed_date, failure_reason, notes, created_at, created_by, last_updated_at, last_updated_by`

const arTransactionColumns = `ar_transaction_id, organization_id, customer_id, invoice_id, transaction_type, transaction_date, amount, balance_amount, status, posted_date, created_by, created_at`

type PgxRefundRepository struct {
	BaseRepository
}

// newPgxRefundRepository creates a new repository for refund payment and AR data.
func newPgxRefundRepository(pool *pgxpool.Pool) portsrepo.RefundRepositoryWithTx {
	return &PgxRefundRepository{BaseRepository: BaseRepository{Pool: pool}}
}

// Ensure PgxRefundRepository implements portsrepo.RefundRepositoryWithTx
var _ portsrepo.RefundRepositoryWithTx = (*PgxRefundRepository)(nil)

func scanRefundPayment(row pgx.Row) (*models.RefundPayment, error) {
	var m models.RefundPayment
	err := row.Scan(
		&m.RefundPaymentID,
		&m.OrganizationID,
		&m.CustomerID,
		&m.OriginalPaymentID,
		&m.InvoiceID,
		&m.RefundAmount,
		&m.RefundMethod,
		&m.Reason,
		&m.GLAccountID,
		&m.Status,
		&m.ApprovedBy,
		&m.ApprovalDate,
		&m.ReferenceNumber,
		&m.ProcessingDate,
		&m.CompletedDate,
		&m.FailureReason,
		&m.Notes,
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

// SaveRefundPayment persists a newly initiated refund payment.
func (r *PgxRefundRepository) SaveRefundPayment(ctx context.Context, refund domain.RefundPayment) error {
	m := mapping.ToModelRefundPayment(refund)
	query := `
		INSERT INTO refund_payments (` + refundPaymentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21);
	`
	_, err := r.Pool.Exec(ctx, query,
		m.RefundPaymentID,
		m.OrganizationID,
		m.CustomerID,
		m.OriginalPaymentID,
		m.InvoiceID,
		m.RefundAmount,
		m.RefundMethod,
		m.Reason,
		m.GLAccountID,
		m.Status,
		m.ApprovedBy,
		m.ApprovalDate,
		m.ReferenceNumber,
		m.ProcessingDate,
		m.CompletedDate,
		m.FailureReason,
		m.Notes,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("refund payment %s already exists: %w", m.RefundPaymentID, apperrors.ErrDuplicate)
		}
		return fmt.Errorf("failed to save refund payment %s: %w", m.RefundPaymentID, err)
	}
	return nil
}

// FindRefundPaymentByID retrieves a refund payment by its ID.
func (r *PgxRefundRepository) FindRefundPaymentByID(ctx context.Context, refundPaymentID string) (*domain.RefundPayment, error) {
	query := `SELECT ` + refundPaymentColumns + ` FROM refund_payments WHERE refund_payment_id = $1;`

	m, err := scanRefundPayment(r.Pool.QueryRow(ctx, query, refundPaymentID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find refund payment by ID %s: %w", refundPaymentID, err)
	}

	d := mapping.ToDomainRefundPayment(*m)
	return &d, nil
}

// FindRefundPayments retrieves refunds for an organization matching the filter,
// newest first.
func (r *PgxRefundRepository) FindRefundPayments(ctx context.Context, organizationID string, filter portsrepo.RefundPaymentFilter) ([]domain.RefundPayment, error) {
	query := `SELECT ` + refundPaymentColumns + ` FROM refund_payments WHERE organization_id = $1`
	args := []interface{}{organizationID}

	if filter.CustomerID != nil {
		args = append(args, *filter.CustomerID)
		query += ` AND customer_id = $` + strconv.Itoa(len(args))
	}
	if filter.Status != nil {
		args = append(args, string(*filter.Status))
		query += ` AND status = $` + strconv.Itoa(len(args))
	}
	query += ` ORDER BY created_at DESC;`

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query refund payments for organization %s: %w", organizationID, err)
	}
	defer rows.Close()

	refunds := []models.RefundPayment{}
	for rows.Next() {
		m, err := scanRefundPayment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan refund payment row for organization %s: %w", organizationID, err)
		}
		refunds = append(refunds, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating refund payment rows for organization %s: %w", organizationID, err)
	}

	return mapping.ToDomainRefundPaymentSlice(refunds), nil
}

const refundUpdateQuery = `
	UPDATE refund_payments
	SET status = $3, approved_by = $4, approval_date = $5, reference_number = $6,
	    processing_date = $7, completed_date = $8, failure_reason = $9, notes = $10,
	    last_updated_at = $11, last_updated_by = $12
	WHERE refund_payment_id = $1 AND status = $2;
`

func refundUpdateArgs(m models.RefundPayment, expected domain.RefundPaymentStatus) []interface{} {
	return []interface{}{
		m.RefundPaymentID,
		string(expected),
		m.Status,
		m.ApprovedBy,
		m.ApprovalDate,
		m.ReferenceNumber,
		m.ProcessingDate,
		m.CompletedDate,
		m.FailureReason,
		m.Notes,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	}
}

// UpdateRefundPayment persists a workflow transition. The WHERE clause carries
// the expected current status, so a lost race surfaces as ErrConflict instead
// of silently overwriting a concurrent transition.
func (r *PgxRefundRepository) UpdateRefundPayment(ctx context.Context, refund domain.RefundPayment, expected domain.RefundPaymentStatus) error {
	m := mapping.ToModelRefundPayment(refund)

	tag, err := r.Pool.Exec(ctx, refundUpdateQuery, refundUpdateArgs(m, expected)...)
	if err != nil {
		return fmt.Errorf("failed to update refund payment %s: %w", m.RefundPaymentID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: refund payment %s is no longer %s", apperrors.ErrConflict, m.RefundPaymentID, expected)
	}
	return nil
}

// CompleteRefundPayment writes the COMPLETED refund and its correlated REFUND
// AR transaction in one database transaction. The refund update keeps the
// status guard, so only one caller can complete a given refund and the AR row
// is written exactly once.
func (r *PgxRefundRepository) CompleteRefundPayment(ctx context.Context, refund domain.RefundPayment, arTxn domain.ArTransaction) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	m := mapping.ToModelRefundPayment(refund)
	tag, err := tx.Exec(ctx, refundUpdateQuery, refundUpdateArgs(m, domain.RefundProcessing)...)
	if err != nil {
		return fmt.Errorf("failed to complete refund payment %s: %w", m.RefundPaymentID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: refund payment %s is no longer %s", apperrors.ErrConflict, m.RefundPaymentID, domain.RefundProcessing)
	}

	if err := insertArTransaction(ctx, tx, arTxn); err != nil {
		return err
	}

	return r.Commit(ctx, tx)
}

type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

func insertArTransaction(ctx context.Context, q execer, arTxn domain.ArTransaction) error {
	m := mapping.ToModelArTransaction(arTxn)
	query := `
		INSERT INTO ar_transactions (` + arTransactionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12);
	`
	_, err := q.Exec(ctx, query,
		m.ArTransactionID,
		m.OrganizationID,
		m.CustomerID,
		m.InvoiceID,
		m.TransactionType,
		m.TransactionDate,
		m.Amount,
		m.BalanceAmount,
		m.Status,
		m.PostedDate,
		m.CreatedBy,
		m.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("AR transaction %s already exists: %w", m.ArTransactionID, apperrors.ErrDuplicate)
		}
		return fmt.Errorf("failed to insert AR transaction %s: %w", m.ArTransactionID, err)
	}
	return nil
}

// SaveArTransaction persists a posted AR row outside the refund workflow.
func (r *PgxRefundRepository) SaveArTransaction(ctx context.Context, arTxn domain.ArTransaction) error {
	return insertArTransaction(ctx, r.Pool, arTxn)
}

// FindArTransactionsByCustomer retrieves AR rows for a customer, oldest first.
func (r *PgxRefundRepository) FindArTransactionsByCustomer(ctx context.Context, organizationID, customerID string) ([]domain.ArTransaction, error) {
	query := `
		SELECT ` + arTransactionColumns + `
		FROM ar_transactions
		WHERE organization_id = $1 AND customer_id = $2
		ORDER BY transaction_date, created_at;
	`

	rows, err := r.Pool.Query(ctx, query, organizationID, customerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query AR transactions for customer %s: %w", customerID, err)
	}
	defer rows.Close()

	arTxns := []models.ArTransaction{}
	for rows.Next() {
		var m models.ArTransaction
		err := rows.Scan(
			&m.ArTransactionID,
			&m.OrganizationID,
			&m.CustomerID,
			&m.InvoiceID,
			&m.TransactionType,
			&m.TransactionDate,
			&m.Amount,
			&m.BalanceAmount,
			&m.Status,
			&m.PostedDate,
			&m.CreatedBy,
			&m.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan AR transaction row for customer %s: %w", customerID, err)
		}
		arTxns = append(arTxns, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating AR transaction rows for customer %s: %w", customerID, err)
	}

	return mapping.ToDomainArTransactionSlice(arTxns), nil
}
