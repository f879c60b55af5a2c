package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/ledgercore/subledger_app/internal/apperrors"
	"github.com/ledgercore/subledger_app/internal/core/domain"
	portsrepo "github.com/ledgercore/subledger_app/internal/core/ports/repositories"
	portssvc "github.com/ledgercore/subledger_app/internal/core/ports/services"
	"github.com/ledgercore/subledger_app/internal/core/statemachine"
	"github.com/ledgercore/subledger_app/internal/dto"
)

// ruleSetService implements the RuleSetSvcFacade interface
type ruleSetService struct {
	BaseService
	ruleSetRepo portsrepo.RuleSetRepositoryFacade
	accountRepo portsrepo.GLAccountRepositoryFacade
}

// RuleSetServiceOption is a functional option for configuring the rule set service
type RuleSetServiceOption func(*ruleSetService)

// WithRuleSetAuthorizer adds the organization authorizer dependency
func WithRuleSetAuthorizer(authorizer portssvc.OrganizationAuthorizerSvc) RuleSetServiceOption {
	return func(s *ruleSetService) {
		s.OrganizationAuthorizer = authorizer
	}
}

// NewRuleSetService creates a new rule set service with the provided options
func NewRuleSetService(ruleSetRepo portsrepo.RuleSetRepositoryFacade, accountRepo portsrepo.GLAccountRepositoryFacade, options ...RuleSetServiceOption) portssvc.RuleSetSvcFacade {
	svc := &ruleSetService{
		ruleSetRepo: ruleSetRepo,
		accountRepo: accountRepo,
	}
	for _, option := range options {
		option(svc)
	}
	return svc
}

// Ensure ruleSetService implements the RuleSetSvcFacade interface
var _ portssvc.RuleSetSvcFacade = (*ruleSetService)(nil)

// checkRuleAccounts verifies every GL account referenced by the rules exists
// in the organization.
func (s *ruleSetService) checkRuleAccounts(ctx context.Context, organizationID string, rules []dto.PostingRuleRequest) error {
	idSet := make(map[string]struct{}, len(rules))
	ids := make([]string, 0, len(rules))
	for _, rule := range rules {
		if _, seen := idSet[rule.GLAccountID]; !seen {
			idSet[rule.GLAccountID] = struct{}{}
			ids = append(ids, rule.GLAccountID)
		}
	}
	accounts, err := s.accountRepo.FindAccountsByIDs(ctx, ids)
	if err != nil {
		return fmt.Errorf("failed to fetch rule accounts: %w", err)
	}
	for _, id := range ids {
		account, ok := accounts[id]
		if !ok || account.OrganizationID != organizationID {
			return fmt.Errorf("GL account %s: %w", id, apperrors.ErrNotFound)
		}
	}
	return nil
}

func buildRules(ruleSetID string, reqRules []dto.PostingRuleRequest) []domain.PostingRule {
	rules := make([]domain.PostingRule, len(reqRules))
	for i, r := range reqRules {
		rules[i] = domain.PostingRule{
			RuleID:      uuid.NewString(),
			RuleSetID:   ruleSetID,
			GLAccountID: r.GLAccountID,
			Dimension:   r.Dimension,
			Priority:    r.Priority,
		}
	}
	return rules
}

func (s *ruleSetService) CreateRuleSet(ctx context.Context, organizationID string, req dto.CreateRuleSetRequest, userID string) (*domain.PostingRuleSet, error) {
	if err := s.AuthorizeUser(ctx, userID, organizationID, domain.RoleMember); err != nil {
		s.LogError(ctx, err, "User not authorized to create rule set",
			slog.String("user_id", userID),
			slog.String("organization_id", organizationID))
		return nil, err
	}

	if err := s.checkRuleAccounts(ctx, organizationID, req.Rules); err != nil {
		s.LogError(ctx, err, "Rule set references unknown accounts",
			slog.String("organization_id", organizationID))
		return nil, err
	}

	now := time.Now()
	ruleSetID := uuid.NewString()
	ruleSet := domain.PostingRuleSet{
		RuleSetID:      ruleSetID,
		OrganizationID: organizationID,
		Name:           req.Name,
		Description:    req.Description,
		Version:        1,
		Status:         domain.RuleSetDraft,
		Rules:          buildRules(ruleSetID, req.Rules),
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}

	if err := s.ruleSetRepo.SaveRuleSet(ctx, ruleSet); err != nil {
		s.LogError(ctx, err, "Failed to save rule set",
			slog.String("rule_set_id", ruleSetID))
		return nil, err
	}

	s.LogInfo(ctx, "Rule set created",
		slog.String("rule_set_id", ruleSetID),
		slog.String("name", ruleSet.Name),
		slog.Int("rule_count", len(ruleSet.Rules)))
	return &ruleSet, nil
}

func (s *ruleSetService) GetRuleSetByID(ctx context.Context, organizationID string, ruleSetID string, userID string) (*domain.PostingRuleSet, error) {
	if err := s.AuthorizeUser(ctx, userID, organizationID, domain.RoleReadOnly); err != nil {
		return nil, err
	}

	ruleSet, err := s.ruleSetRepo.FindRuleSetByID(ctx, ruleSetID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find rule set",
				slog.String("rule_set_id", ruleSetID))
		}
		return nil, err
	}
	if ruleSet.OrganizationID != organizationID {
		s.LogDebug(ctx, "Rule set belongs to different organization",
			slog.String("rule_set_id", ruleSetID))
		return nil, apperrors.ErrNotFound
	}
	return ruleSet, nil
}

func (s *ruleSetService) ListRuleSets(ctx context.Context, organizationID string, userID string) ([]domain.PostingRuleSet, error) {
	if err := s.AuthorizeUser(ctx, userID, organizationID, domain.RoleReadOnly); err != nil {
		return nil, err
	}

	ruleSets, err := s.ruleSetRepo.ListRuleSetsByOrganization(ctx, organizationID)
	if err != nil {
		s.LogError(ctx, err, "Failed to list rule sets",
			slog.String("organization_id", organizationID))
		return nil, err
	}
	if ruleSets == nil {
		return []domain.PostingRuleSet{}, nil
	}
	return ruleSets, nil
}

func (s *ruleSetService) UpdateRuleSet(ctx context.Context, organizationID string, ruleSetID string, req dto.UpdateRuleSetRequest, userID string) (*domain.PostingRuleSet, error) {
	if err := s.AuthorizeUser(ctx, userID, organizationID, domain.RoleMember); err != nil {
		return nil, err
	}

	ruleSet, err := s.GetRuleSetByID(ctx, organizationID, ruleSetID, userID)
	if err != nil {
		return nil, err
	}

	// Published and archived rule sets never change; new drafts carry edits.
	if ruleSet.Status != domain.RuleSetDraft {
		err := fmt.Errorf("rule set %s is %s: %w", ruleSetID, ruleSet.Status, apperrors.ErrRuleSetImmutable)
		s.LogError(ctx, err, "Attempt to edit immutable rule set",
			slog.String("rule_set_id", ruleSetID),
			slog.String("status", string(ruleSet.Status)))
		return nil, err
	}

	if req.Name != nil {
		ruleSet.Name = *req.Name
	}
	if req.Description != nil {
		ruleSet.Description = *req.Description
	}
	if req.Rules != nil {
		if err := s.checkRuleAccounts(ctx, organizationID, req.Rules); err != nil {
			s.LogError(ctx, err, "Rule set update references unknown accounts",
				slog.String("rule_set_id", ruleSetID))
			return nil, err
		}
		ruleSet.Rules = buildRules(ruleSetID, req.Rules)
	}

	now := time.Now()
	ruleSet.LastUpdatedAt = now
	ruleSet.LastUpdatedBy = userID

	if err := s.ruleSetRepo.UpdateRuleSet(ctx, *ruleSet); err != nil {
		s.LogError(ctx, err, "Failed to update rule set",
			slog.String("rule_set_id", ruleSetID))
		return nil, err
	}

	s.LogInfo(ctx, "Rule set updated", slog.String("rule_set_id", ruleSetID))
	return ruleSet, nil
}

func (s *ruleSetService) PublishRuleSet(ctx context.Context, organizationID string, ruleSetID string, userID string) (*domain.PostingRuleSet, error) {
	if err := s.AuthorizeUser(ctx, userID, organizationID, domain.RoleAdmin); err != nil {
		return nil, err
	}

	ruleSet, err := s.GetRuleSetByID(ctx, organizationID, ruleSetID, userID)
	if err != nil {
		return nil, err
	}

	if !ruleSet.Status.CanTransitionTo(domain.RuleSetPublished) {
		err := &statemachine.TransitionError{From: string(ruleSet.Status), To: string(domain.RuleSetPublished)}
		s.LogError(ctx, err, "Illegal rule set transition",
			slog.String("rule_set_id", ruleSetID),
			slog.String("from", string(ruleSet.Status)))
		return nil, err
	}
	if len(ruleSet.Rules) == 0 {
		err := fmt.Errorf("rule set %s has no rules: %w", ruleSetID, apperrors.ErrValidation)
		s.LogError(ctx, err, "Attempt to publish empty rule set",
			slog.String("rule_set_id", ruleSetID))
		return nil, err
	}

	now := time.Now()
	if err := s.ruleSetRepo.UpdateRuleSetStatus(ctx, ruleSetID, ruleSet.Status, domain.RuleSetPublished, &now, userID, now); err != nil {
		s.LogError(ctx, err, "Failed to publish rule set",
			slog.String("rule_set_id", ruleSetID))
		return nil, err
	}

	ruleSet.Status = domain.RuleSetPublished
	ruleSet.PublishedDate = &now
	ruleSet.LastUpdatedAt = now
	ruleSet.LastUpdatedBy = userID

	s.LogInfo(ctx, "Rule set published",
		slog.String("rule_set_id", ruleSetID),
		slog.Int("version", ruleSet.Version))
	return ruleSet, nil
}

func (s *ruleSetService) ArchiveRuleSet(ctx context.Context, organizationID string, ruleSetID string, userID string) (*domain.PostingRuleSet, error) {
	if err := s.AuthorizeUser(ctx, userID, organizationID, domain.RoleAdmin); err != nil {
		return nil, err
	}

	ruleSet, err := s.GetRuleSetByID(ctx, organizationID, ruleSetID, userID)
	if err != nil {
		return nil, err
	}

	if !ruleSet.Status.CanTransitionTo(domain.RuleSetArchived) {
		err := &statemachine.TransitionError{From: string(ruleSet.Status), To: string(domain.RuleSetArchived)}
		s.LogError(ctx, err, "Illegal rule set transition",
			slog.String("rule_set_id", ruleSetID),
			slog.String("from", string(ruleSet.Status)))
		return nil, err
	}

	now := time.Now()
	if err := s.ruleSetRepo.UpdateRuleSetStatus(ctx, ruleSetID, ruleSet.Status, domain.RuleSetArchived, nil, userID, now); err != nil {
		s.LogError(ctx, err, "Failed to archive rule set",
			slog.String("rule_set_id", ruleSetID))
		return nil, err
	}

	ruleSet.Status = domain.RuleSetArchived
	ruleSet.LastUpdatedAt = now
	ruleSet.LastUpdatedBy = userID

	s.LogInfo(ctx, "Rule set archived", slog.String("rule_set_id", ruleSetID))
	return ruleSet, nil
}

func (s *ruleSetService) CreateNewVersion(ctx context.Context, organizationID string, ruleSetID string, userID string) (*domain.PostingRuleSet, error) {
	if err := s.AuthorizeUser(ctx, userID, organizationID, domain.RoleMember); err != nil {
		return nil, err
	}

	source, err := s.GetRuleSetByID(ctx, organizationID, ruleSetID, userID)
	if err != nil {
		return nil, err
	}

	// Only a published set spawns a successor draft.
	if source.Status != domain.RuleSetPublished {
		err := fmt.Errorf("rule set %s is %s, not published: %w", ruleSetID, source.Status, apperrors.ErrValidation)
		s.LogError(ctx, err, "Attempt to version unpublished rule set",
			slog.String("rule_set_id", ruleSetID),
			slog.String("status", string(source.Status)))
		return nil, err
	}

	maxVersion, err := s.ruleSetRepo.FindMaxVersion(ctx, organizationID, source.Name)
	if err != nil {
		s.LogError(ctx, err, "Failed to find max rule set version",
			slog.String("name", source.Name))
		return nil, err
	}

	now := time.Now()
	newID := uuid.NewString()
	clone := domain.PostingRuleSet{
		RuleSetID:      newID,
		OrganizationID: organizationID,
		Name:           source.Name,
		Description:    source.Description,
		Version:        maxVersion + 1,
		Status:         domain.RuleSetDraft,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}
	for _, rule := range source.Rules {
		clone.Rules = append(clone.Rules, domain.PostingRule{
			RuleID:      uuid.NewString(),
			RuleSetID:   newID,
			GLAccountID: rule.GLAccountID,
			Dimension:   rule.Dimension,
			Priority:    rule.Priority,
		})
	}

	if err := s.ruleSetRepo.SaveRuleSet(ctx, clone); err != nil {
		s.LogError(ctx, err, "Failed to save new rule set version",
			slog.String("rule_set_id", newID))
		return nil, err
	}

	s.LogInfo(ctx, "Rule set version created",
		slog.String("source_rule_set_id", ruleSetID),
		slog.String("rule_set_id", newID),
		slog.Int("version", clone.Version))
	return &clone, nil
}

func (s *ruleSetService) CreateGLMapping(ctx context.Context, organizationID string, req dto.CreateGLMappingRequest, userID string) (*domain.GLMapping, error) {
	if err := s.AuthorizeUser(ctx, userID, organizationID, domain.RoleMember); err != nil {
		return nil, err
	}

	if req.EffectiveEndDate != nil && req.EffectiveEndDate.Before(req.EffectiveStartDate) {
		err := fmt.Errorf("effective end date precedes start date: %w", apperrors.ErrValidation)
		s.LogError(ctx, err, "Invalid GL mapping window",
			slog.Time("start", req.EffectiveStartDate),
			slog.Time("end", *req.EffectiveEndDate))
		return nil, err
	}

	account, err := s.accountRepo.FindAccountByID(ctx, req.GLAccountID)
	if err != nil {
		s.LogError(ctx, err, "GL mapping references unknown account",
			slog.String("gl_account_id", req.GLAccountID))
		return nil, err
	}
	if account.OrganizationID != organizationID {
		return nil, apperrors.ErrNotFound
	}

	now := time.Now()
	mapping := domain.GLMapping{
		MappingID:          uuid.NewString(),
		OrganizationID:     organizationID,
		SourceSystem:       req.SourceSystem,
		ExternalCode:       req.ExternalCode,
		GLAccountID:        req.GLAccountID,
		EffectiveStartDate: req.EffectiveStartDate,
		EffectiveEndDate:   req.EffectiveEndDate,
		Priority:           req.Priority,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}

	if err := s.ruleSetRepo.SaveGLMapping(ctx, mapping); err != nil {
		s.LogError(ctx, err, "Failed to save GL mapping",
			slog.String("mapping_id", mapping.MappingID))
		return nil, err
	}

	s.LogInfo(ctx, "GL mapping created",
		slog.String("mapping_id", mapping.MappingID),
		slog.String("source_system", mapping.SourceSystem),
		slog.String("external_code", mapping.ExternalCode))
	return &mapping, nil
}

func (s *ruleSetService) ResolveGLMapping(ctx context.Context, organizationID string, sourceSystem string, externalCode string, date time.Time, userID string) (*domain.GLMapping, error) {
	if err := s.AuthorizeUser(ctx, userID, organizationID, domain.RoleReadOnly); err != nil {
		return nil, err
	}

	mapping, err := s.ruleSetRepo.ResolveGLMapping(ctx, organizationID, sourceSystem, externalCode, date)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNoMappingFound) {
			s.LogError(ctx, err, "Failed to resolve GL mapping",
				slog.String("source_system", sourceSystem),
				slog.String("external_code", externalCode))
		}
		return nil, err
	}
	return mapping, nil
}

func (s *ruleSetService) ListGLMappings(ctx context.Context, organizationID string, sourceSystem string, userID string) ([]domain.GLMapping, error) {
	if err := s.AuthorizeUser(ctx, userID, organizationID, domain.RoleReadOnly); err != nil {
		return nil, err
	}

	mappings, err := s.ruleSetRepo.ListGLMappings(ctx, organizationID, sourceSystem)
	if err != nil {
		s.LogError(ctx, err, "Failed to list GL mappings",
			slog.String("source_system", sourceSystem))
		return nil, err
	}
	if mappings == nil {
		return []domain.GLMapping{}, nil
	}
	return mappings, nil
}
