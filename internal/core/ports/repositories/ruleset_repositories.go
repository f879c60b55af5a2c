package repositories

import (
	"context"
	"time"

	"github.com/ledgercore/subledger_app/internal/core/domain"
)

// RuleSetReader defines read operations for posting rule set data
type RuleSetReader interface {
	// FindRuleSetByID retrieves a rule set with its rules.
	FindRuleSetByID(ctx context.Context, ruleSetID string) (*domain.PostingRuleSet, error)

	// ListRuleSetsByOrganization retrieves all rule sets for an organization, without rules.
	ListRuleSetsByOrganization(ctx context.Context, organizationID string) ([]domain.PostingRuleSet, error)

	// FindMaxVersion returns the highest version recorded for a rule set name
	// within an organization, or 0 when none exists.
	FindMaxVersion(ctx context.Context, organizationID string, name string) (int, error)
}

// RuleSetWriter defines write operations for posting rule set data
type RuleSetWriter interface {
	// SaveRuleSet persists a rule set and its rules in one database transaction.
	SaveRuleSet(ctx context.Context, ruleSet domain.PostingRuleSet) error

	// UpdateRuleSet replaces a draft rule set's details and rules. The update
	// is guarded on DRAFT status so it cannot race a concurrent publish.
	UpdateRuleSet(ctx context.Context, ruleSet domain.PostingRuleSet) error

	// UpdateRuleSetStatus transitions a rule set, guarded by the expected
	// current status; a guard miss reports apperrors.ErrConflict.
	UpdateRuleSetStatus(ctx context.Context, ruleSetID string, expected domain.RuleSetStatus, target domain.RuleSetStatus, publishedDate *time.Time, userID string, now time.Time) error
}

// GLMappingReader defines read operations for GL mapping data
type GLMappingReader interface {
	// ResolveGLMapping selects the single mapping for the coordinates whose
	// effective window contains the date, preferring highest priority, then
	// most recent effective start date. No match reports apperrors.ErrNoMappingFound.
	ResolveGLMapping(ctx context.Context, organizationID, sourceSystem, externalCode string, date time.Time) (*domain.GLMapping, error)

	// ListGLMappings retrieves all mappings for an organization and source system.
	ListGLMappings(ctx context.Context, organizationID, sourceSystem string) ([]domain.GLMapping, error)
}

// GLMappingWriter defines write operations for GL mapping data
type GLMappingWriter interface {
	// SaveGLMapping persists a new GL mapping.
	SaveGLMapping(ctx context.Context, mapping domain.GLMapping) error
}

// RuleSetRepositoryFacade combines all rule-set-related repository interfaces
type RuleSetRepositoryFacade interface {
	RuleSetReader
	RuleSetWriter
	GLMappingReader
	GLMappingWriter
}

// RuleSetRepositoryWithTx extends RuleSetRepositoryFacade with transaction capabilities
type RuleSetRepositoryWithTx interface {
	RuleSetRepositoryFacade
	TransactionManager
}
