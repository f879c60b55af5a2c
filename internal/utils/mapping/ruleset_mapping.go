package mapping

import (
	"github.com/ledgercore/subledger_app/internal/core/domain"
	"github.com/ledgercore/subledger_app/internal/models"
)

// ToModelRuleSet converts a domain PostingRuleSet to a model PostingRuleSet
func ToModelRuleSet(d domain.PostingRuleSet) models.PostingRuleSet {
	return models.PostingRuleSet{
		RuleSetID:      d.RuleSetID,
		OrganizationID: d.OrganizationID,
		Name:           d.Name,
		Description:    d.Description,
		Version:        d.Version,
		Status:         string(d.Status),
		PublishedDate:  d.PublishedDate,
		AuditFields:    ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainRuleSet converts a model PostingRuleSet to a domain PostingRuleSet.
// Rules are loaded separately by the repository.
func ToDomainRuleSet(m models.PostingRuleSet) domain.PostingRuleSet {
	return domain.PostingRuleSet{
		RuleSetID:      m.RuleSetID,
		OrganizationID: m.OrganizationID,
		Name:           m.Name,
		Description:    m.Description,
		Version:        m.Version,
		Status:         domain.RuleSetStatus(m.Status),
		PublishedDate:  m.PublishedDate,
		AuditFields:    ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainRuleSetSlice converts a slice of model PostingRuleSets to domain PostingRuleSets
func ToDomainRuleSetSlice(ms []models.PostingRuleSet) []domain.PostingRuleSet {
	ds := make([]domain.PostingRuleSet, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainRuleSet(m)
	}
	return ds
}

// ToModelPostingRule converts a domain PostingRule to a model PostingRule
func ToModelPostingRule(d domain.PostingRule) models.PostingRule {
	return models.PostingRule{
		RuleID:      d.RuleID,
		RuleSetID:   d.RuleSetID,
		GLAccountID: d.GLAccountID,
		Dimension:   d.Dimension,
		Priority:    d.Priority,
	}
}

// ToDomainPostingRule converts a model PostingRule to a domain PostingRule
func ToDomainPostingRule(m models.PostingRule) domain.PostingRule {
	return domain.PostingRule{
		RuleID:      m.RuleID,
		RuleSetID:   m.RuleSetID,
		GLAccountID: m.GLAccountID,
		Dimension:   m.Dimension,
		Priority:    m.Priority,
	}
}

// ToDomainPostingRuleSlice converts a slice of model PostingRules to domain PostingRules
func ToDomainPostingRuleSlice(ms []models.PostingRule) []domain.PostingRule {
	ds := make([]domain.PostingRule, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainPostingRule(m)
	}
	return ds
}

// ToModelGLMapping converts a domain GLMapping to a model GLMapping
func ToModelGLMapping(d domain.GLMapping) models.GLMapping {
	return models.GLMapping{
		MappingID:          d.MappingID,
		OrganizationID:     d.OrganizationID,
		SourceSystem:       d.SourceSystem,
		ExternalCode:       d.ExternalCode,
		GLAccountID:        d.GLAccountID,
		EffectiveStartDate: d.EffectiveStartDate,
		EffectiveEndDate:   d.EffectiveEndDate,
		Priority:           d.Priority,
		AuditFields:        ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainGLMapping converts a model GLMapping to a domain GLMapping
func ToDomainGLMapping(m models.GLMapping) domain.GLMapping {
	return domain.GLMapping{
		MappingID:          m.MappingID,
		OrganizationID:     m.OrganizationID,
		SourceSystem:       m.SourceSystem,
		ExternalCode:       m.ExternalCode,
		GLAccountID:        m.GLAccountID,
		EffectiveStartDate: m.EffectiveStartDate,
		EffectiveEndDate:   m.EffectiveEndDate,
		Priority:           m.Priority,
		AuditFields:        ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainGLMappingSlice converts a slice of model GLMappings to domain GLMappings
func ToDomainGLMappingSlice(ms []models.GLMapping) []domain.GLMapping {
	ds := make([]domain.GLMapping, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainGLMapping(m)
	}
	return ds
}
