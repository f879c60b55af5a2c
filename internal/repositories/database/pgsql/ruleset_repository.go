package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/ledgercore/subledger_app/internal/apperrors"
	"github.com/ledgercore/subledger_app/internal/core/domain"
	portsrepo "github.com/ledgercore/subledger_app/internal/core/ports/repositories"
	"github.com/ledgercore/subledger_app/internal/models"
	"github.com/ledgercore/subledger_app/internal/utils/mapping"
)

const ruleSetColumns = `rule_set_id, organization_id, name, description, version, status, published_date, created_at, created_by, last_updated_at, last_updated_by`

const postingRuleColumns = `rule_id, rule_set_id, gl_account_id, dimension, priority`

const glMappingColumns = `mapping_id, organization_id, source_system, external_code, gl_account_id, effective_start_date, effective_end_date, priority, created_at, created_by, last_updated_at, last_updated_by`

type PgxRuleSetRepository struct {
	BaseRepository
}

// newPgxRuleSetRepository creates a new repository for posting rule set and GL mapping data.
func newPgxRuleSetRepository(pool *pgxpool.Pool) portsrepo.RuleSetRepositoryWithTx {
	return &PgxRuleSetRepository{BaseRepository: BaseRepository{Pool: pool}}
}

// Ensure PgxRuleSetRepository implements portsrepo.RuleSetRepositoryWithTx
var _ portsrepo.RuleSetRepositoryWithTx = (*PgxRuleSetRepository)(nil)

func scanRuleSet(row pgx.Row) (*models.PostingRuleSet, error) {
	var m models.PostingRuleSet
	err := row.Scan(
		&m.RuleSetID,
		&m.OrganizationID,
		&m.Name,
		&m.Description,
		&m.Version,
		&m.Status,
		&m.PublishedDate,
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

func insertRulesTx(ctx context.Context, tx pgx.Tx, ruleSetID string, rules []domain.PostingRule) error {
	if len(rules) == 0 {
		return nil
	}
	query := `
		INSERT INTO posting_rules (` + postingRuleColumns + `)
		VALUES ($1, $2, $3, $4, $5);
	`
	batch := &pgx.Batch{}
	for _, rule := range rules {
		m := mapping.ToModelPostingRule(rule)
		batch.Queue(query, m.RuleID, ruleSetID, m.GLAccountID, m.Dimension, m.Priority)
	}
	br := tx.SendBatch(ctx, batch)
	if err := br.Close(); err != nil {
		return fmt.Errorf("failed to insert rules for rule set %s: %w", ruleSetID, err)
	}
	return nil
}

// SaveRuleSet persists a rule set and its rules in one database transaction.
func (r *PgxRuleSetRepository) SaveRuleSet(ctx context.Context, ruleSet domain.PostingRuleSet) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	m := mapping.ToModelRuleSet(ruleSet)
	query := `
		INSERT INTO posting_rule_sets (` + ruleSetColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11);
	`
	_, err = tx.Exec(ctx, query,
		m.RuleSetID,
		m.OrganizationID,
		m.Name,
		m.Description,
		m.Version,
		m.Status,
		m.PublishedDate,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("rule set %s version %d already exists: %w", m.Name, m.Version, apperrors.ErrDuplicate)
		}
		return fmt.Errorf("failed to save rule set %s: %w", m.RuleSetID, err)
	}

	if err := insertRulesTx(ctx, tx, m.RuleSetID, ruleSet.Rules); err != nil {
		return err
	}

	return r.Commit(ctx, tx)
}

// UpdateRuleSet replaces a draft rule set's details and rules. The update is
// guarded on DRAFT status, so it cannot race a concurrent publish.
func (r *PgxRuleSetRepository) UpdateRuleSet(ctx context.Context, ruleSet domain.PostingRuleSet) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	m := mapping.ToModelRuleSet(ruleSet)
	query := `
		UPDATE posting_rule_sets
		SET name = $2, description = $3, last_updated_at = $4, last_updated_by = $5
		WHERE rule_set_id = $1 AND status = 'DRAFT';
	`
	tag, err := tx.Exec(ctx, query, m.RuleSetID, m.Name, m.Description, m.LastUpdatedAt, m.LastUpdatedBy)
	if err != nil {
		return fmt.Errorf("failed to update rule set %s: %w", m.RuleSetID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: rule set %s is no longer a draft", apperrors.ErrConflict, m.RuleSetID)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM posting_rules WHERE rule_set_id = $1;`, m.RuleSetID); err != nil {
		return fmt.Errorf("failed to clear rules for rule set %s: %w", m.RuleSetID, err)
	}
	if err := insertRulesTx(ctx, tx, m.RuleSetID, ruleSet.Rules); err != nil {
		return err
	}

	return r.Commit(ctx, tx)
}

// UpdateRuleSetStatus transitions a rule set, guarded by the expected current status.
func (r *PgxRuleSetRepository) UpdateRuleSetStatus(ctx context.Context, ruleSetID string, expected domain.RuleSetStatus, target domain.RuleSetStatus, publishedDate *time.Time, userID string, now time.Time) error {
	query := `
		UPDATE posting_rule_sets
		SET status = $3, published_date = COALESCE($4, published_date), last_updated_at = $5, last_updated_by = $6
		WHERE rule_set_id = $1 AND status = $2;
	`
	tag, err := r.Pool.Exec(ctx, query, ruleSetID, string(expected), string(target), publishedDate, now, userID)
	if err != nil {
		return fmt.Errorf("failed to update status of rule set %s: %w", ruleSetID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: rule set %s is no longer %s", apperrors.ErrConflict, ruleSetID, expected)
	}
	return nil
}

// FindRuleSetByID retrieves a rule set with its rules.
func (r *PgxRuleSetRepository) FindRuleSetByID(ctx context.Context, ruleSetID string) (*domain.PostingRuleSet, error) {
	query := `SELECT ` + ruleSetColumns + ` FROM posting_rule_sets WHERE rule_set_id = $1;`

	m, err := scanRuleSet(r.Pool.QueryRow(ctx, query, ruleSetID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find rule set by ID %s: %w", ruleSetID, err)
	}

	rulesQuery := `SELECT ` + postingRuleColumns + ` FROM posting_rules WHERE rule_set_id = $1 ORDER BY priority DESC, dimension;`
	rows, err := r.Pool.Query(ctx, rulesQuery, ruleSetID)
	if err != nil {
		return nil, fmt.Errorf("failed to query rules for rule set %s: %w", ruleSetID, err)
	}
	defer rows.Close()

	rules := []models.PostingRule{}
	for rows.Next() {
		var rm models.PostingRule
		if err := rows.Scan(&rm.RuleID, &rm.RuleSetID, &rm.GLAccountID, &rm.Dimension, &rm.Priority); err != nil {
			return nil, fmt.Errorf("failed to scan rule row for rule set %s: %w", ruleSetID, err)
		}
		rules = append(rules, rm)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rule rows for rule set %s: %w", ruleSetID, err)
	}

	d := mapping.ToDomainRuleSet(*m)
	d.Rules = mapping.ToDomainPostingRuleSlice(rules)
	return &d, nil
}

// ListRuleSetsByOrganization retrieves all rule sets for an organization,
// without rules, newest version of each name first.
func (r *PgxRuleSetRepository) ListRuleSetsByOrganization(ctx context.Context, organizationID string) ([]domain.PostingRuleSet, error) {
	query := `SELECT ` + ruleSetColumns + ` FROM posting_rule_sets WHERE organization_id = $1 ORDER BY name, version DESC;`

	rows, err := r.Pool.Query(ctx, query, organizationID)
	if err != nil {
		return nil, fmt.Errorf("failed to query rule sets for organization %s: %w", organizationID, err)
	}
	defer rows.Close()

	ruleSets := []models.PostingRuleSet{}
	for rows.Next() {
		m, err := scanRuleSet(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan rule set row for organization %s: %w", organizationID, err)
		}
		ruleSets = append(ruleSets, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rule set rows for organization %s: %w", organizationID, err)
	}

	return mapping.ToDomainRuleSetSlice(ruleSets), nil
}

// FindMaxVersion returns the highest version recorded for a rule set name, or 0.
func (r *PgxRuleSetRepository) FindMaxVersion(ctx context.Context, organizationID string, name string) (int, error) {
	var maxVersion int
	query := `SELECT COALESCE(MAX(version), 0) FROM posting_rule_sets WHERE organization_id = $1 AND name = $2;`
	if err := r.Pool.QueryRow(ctx, query, organizationID, name).Scan(&maxVersion); err != nil {
		return 0, fmt.Errorf("failed to find max version for rule set %s: %w", name, err)
	}
	return maxVersion, nil
}

// SaveGLMapping persists a new GL mapping.
func (r *PgxRuleSetRepository) SaveGLMapping(ctx context.Context, glMapping domain.GLMapping) error {
	m := mapping.ToModelGLMapping(glMapping)
	query := `
		INSERT INTO gl_mappings (` + glMappingColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12);
	`
	_, err := r.Pool.Exec(ctx, query,
		m.MappingID,
		m.OrganizationID,
		m.SourceSystem,
		m.ExternalCode,
		m.GLAccountID,
		m.EffectiveStartDate,
		m.EffectiveEndDate,
		m.Priority,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("GL mapping %s already exists: %w", m.MappingID, apperrors.ErrDuplicate)
		}
		return fmt.Errorf("failed to save GL mapping %s: %w", m.MappingID, err)
	}
	return nil
}

// ResolveGLMapping selects the single mapping for the coordinates whose
// effective window contains the date. The query pushes the containment
// filter down; the winner among the candidates is picked by
// domain.SelectGLMapping (highest priority, then most recent start date).
func (r *PgxRuleSetRepository) ResolveGLMapping(ctx context.Context, organizationID, sourceSystem, externalCode string, date time.Time) (*domain.GLMapping, error) {
	query := `
		SELECT ` + glMappingColumns + `
		FROM gl_mappings
		WHERE organization_id = $1 AND source_system = $2 AND external_code = $3
		  AND effective_start_date <= $4
		  AND (effective_end_date IS NULL OR effective_end_date >= $4);
	`

	rows, err := r.Pool.Query(ctx, query, organizationID, sourceSystem, externalCode, date)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve GL mapping for %s/%s: %w", sourceSystem, externalCode, err)
	}
	defer rows.Close()

	candidateModels := []models.GLMapping{}
	for rows.Next() {
		var m models.GLMapping
		if err := rows.Scan(
			&m.MappingID,
			&m.OrganizationID,
			&m.SourceSystem,
			&m.ExternalCode,
			&m.GLAccountID,
			&m.EffectiveStartDate,
			&m.EffectiveEndDate,
			&m.Priority,
			&m.CreatedAt,
			&m.CreatedBy,
			&m.LastUpdatedAt,
			&m.LastUpdatedBy,
		); err != nil {
			return nil, fmt.Errorf("failed to scan GL mapping row for %s/%s: %w", sourceSystem, externalCode, err)
		}
		candidateModels = append(candidateModels, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating GL mapping rows for %s/%s: %w", sourceSystem, externalCode, err)
	}

	winner := domain.SelectGLMapping(mapping.ToDomainGLMappingSlice(candidateModels), date)
	if winner == nil {
		return nil, fmt.Errorf("no mapping for %s/%s on %s: %w", sourceSystem, externalCode, date.Format("2006-01-02"), apperrors.ErrNoMappingFound)
	}
	return winner, nil
}

// ListGLMappings retrieves all mappings for an organization and source system.
func (r *PgxRuleSetRepository) ListGLMappings(ctx context.Context, organizationID, sourceSystem string) ([]domain.GLMapping, error) {
	query := `
		SELECT ` + glMappingColumns + `
		FROM gl_mappings
		WHERE organization_id = $1 AND source_system = $2
		ORDER BY external_code, priority DESC, effective_start_date DESC;
	`

	rows, err := r.Pool.Query(ctx, query, organizationID, sourceSystem)
	if err != nil {
		return nil, fmt.Errorf("failed to query GL mappings for source system %s: %w", sourceSystem, err)
	}
	defer rows.Close()

	mappings := []models.GLMapping{}
	for rows.Next() {
		var m models.GLMapping
		err := rows.Scan(
			&m.MappingID,
			&m.OrganizationID,
			&m.SourceSystem,
			&m.ExternalCode,
			&m.GLAccountID,
			&m.EffectiveStartDate,
			&m.EffectiveEndDate,
			&m.Priority,
			&m.CreatedAt,
			&m.CreatedBy,
			&m.LastUpdatedAt,
			&m.LastUpdatedBy,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan GL mapping row for source system %s: %w", sourceSystem, err)
		}
		mappings = append(mappings, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating GL mapping rows for source system %s: %w", sourceSystem, err)
	}

	return mapping.ToDomainGLMappingSlice(mappings), nil
}
