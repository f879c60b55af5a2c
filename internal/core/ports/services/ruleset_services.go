package services

import (
	"context"
	"time"

	"github.com/ledgercore/subledger_app/internal/core/domain"
	"github.com/ledgercore/subledger_app/internal/dto"
)

// RuleSetReaderSvc defines read operations for posting rule set data
type RuleSetReaderSvc interface {
	// GetRuleSetByID retrieves a rule set with its rules.
	GetRuleSetByID(ctx context.Context, organizationID string, ruleSetID string, userID string) (*domain.PostingRuleSet, error)

	// ListRuleSets retrieves all rule sets for an organization.
	ListRuleSets(ctx context.Context, organizationID string, userID string) ([]domain.PostingRuleSet, error)
}

// RuleSetWriterSvc defines lifecycle operations for posting rule sets
type RuleSetWriterSvc interface {
	// CreateRuleSet persists a new rule set in DRAFT status at version 1.
	CreateRuleSet(ctx context.Context, organizationID string, req dto.CreateRuleSetRequest, userID string) (*domain.PostingRuleSet, error)

	// UpdateRuleSet replaces a draft rule set's details and rules. Published
	// and archived sets are immutable.
	UpdateRuleSet(ctx context.Context, organizationID string, ruleSetID string, req dto.UpdateRuleSetRequest, userID string) (*domain.PostingRuleSet, error)

	// PublishRuleSet moves DRAFT -> PUBLISHED, freezing the rule set.
	PublishRuleSet(ctx context.Context, organizationID string, ruleSetID string, userID string) (*domain.PostingRuleSet, error)

	// ArchiveRuleSet moves PUBLISHED -> ARCHIVED.
	ArchiveRuleSet(ctx context.Context, organizationID string, ruleSetID string, userID string) (*domain.PostingRuleSet, error)

	// CreateNewVersion clones a published rule set into a new DRAFT with the
	// next version number.
	CreateNewVersion(ctx context.Context, organizationID string, ruleSetID string, userID string) (*domain.PostingRuleSet, error)
}

// GLMappingSvc defines operations for GL mapping maintenance and resolution
type GLMappingSvc interface {
	// CreateGLMapping persists a new GL mapping.
	CreateGLMapping(ctx context.Context, organizationID string, req dto.CreateGLMappingRequest, userID string) (*domain.GLMapping, error)

	// ResolveGLMapping selects the effective mapping for the coordinates at
	// the given date.
	ResolveGLMapping(ctx context.Context, organizationID string, sourceSystem string, externalCode string, date time.Time, userID string) (*domain.GLMapping, error)

	// ListGLMappings retrieves all mappings for a source system.
	ListGLMappings(ctx context.Context, organizationID string, sourceSystem string, userID string) ([]domain.GLMapping, error)
}

// RuleSetSvcFacade combines all rule-set-related service interfaces
type RuleSetSvcFacade interface {
	RuleSetReaderSvc
	RuleSetWriterSvc
	GLMappingSvc
}
