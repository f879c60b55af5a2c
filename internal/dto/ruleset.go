package dto

import (
	"time"

	"github.com/ledgercore/subledger_app/internal/core/domain"
)

// PostingRuleRequest defines a single rule inside a rule set request.
type PostingRuleRequest struct {
	GLAccountID string `json:"glAccountID" binding:"required"`
	Dimension   string `json:"dimension" binding:"required"`
	Priority    int    `json:"priority"`
}

// CreateRuleSetRequest defines the data needed to create a posting rule set.
type CreateRuleSetRequest struct {
	Name        string               `json:"name" binding:"required"`
	Description string               `json:"description"`
	Rules       []PostingRuleRequest `json:"rules" binding:"required,min=1,dive"`
}

// UpdateRuleSetRequest defines the data allowed for updating a DRAFT rule set.
// Use pointers to distinguish omitted fields; nil Rules leaves rules unchanged.
type UpdateRuleSetRequest struct {
	Name        *string              `json:"name"`
	Description *string              `json:"description"`
	Rules       []PostingRuleRequest `json:"rules"`
}

// PostingRuleResponse defines the data returned for a rule.
type PostingRuleResponse struct {
	RuleID      string `json:"ruleID"`
	GLAccountID string `json:"glAccountID"`
	Dimension   string `json:"dimension"`
	Priority    int    `json:"priority"`
}

// RuleSetResponse defines the data returned for a posting rule set.
type RuleSetResponse struct {
	RuleSetID     string                `json:"ruleSetID"`
	Name          string                `json:"name"`
	Description   string                `json:"description"`
	Version       int                   `json:"version"`
	Status        domain.RuleSetStatus  `json:"status"`
	PublishedDate *time.Time            `json:"publishedDate,omitempty"`
	Rules         []PostingRuleResponse `json:"rules,omitempty"`
	CreatedAt     time.Time             `json:"createdAt"`
	CreatedBy     string                `json:"createdBy"`
}

// ToRuleSetResponse converts a domain.PostingRuleSet to DTO.
func ToRuleSetResponse(rs *domain.PostingRuleSet) RuleSetResponse {
	resp := RuleSetResponse{
		RuleSetID:     rs.RuleSetID,
		Name:          rs.Name,
		Description:   rs.Description,
		Version:       rs.Version,
		Status:        rs.Status,
		PublishedDate: rs.PublishedDate,
		CreatedAt:     rs.CreatedAt,
		CreatedBy:     rs.CreatedBy,
	}
	for _, rule := range rs.Rules {
		resp.Rules = append(resp.Rules, PostingRuleResponse{
			RuleID:      rule.RuleID,
			GLAccountID: rule.GLAccountID,
			Dimension:   rule.Dimension,
			Priority:    rule.Priority,
		})
	}
	return resp
}

// ToListRuleSetResponse converts a slice of domain.PostingRuleSet to DTOs.
func ToListRuleSetResponse(ruleSets []domain.PostingRuleSet) []RuleSetResponse {
	res := make([]RuleSetResponse, len(ruleSets))
	for i, rs := range ruleSets {
		res[i] = ToRuleSetResponse(&rs)
	}
	return res
}

// CreateGLMappingRequest defines the data needed to create a GL mapping.
type CreateGLMappingRequest struct {
	SourceSystem       string     `json:"sourceSystem" binding:"required"`
	ExternalCode       string     `json:"externalCode" binding:"required"`
	GLAccountID        string     `json:"glAccountID" binding:"required"`
	EffectiveStartDate time.Time  `json:"effectiveStartDate" binding:"required"`
	EffectiveEndDate   *time.Time `json:"effectiveEndDate"`
	Priority           int        `json:"priority"`
}

// ResolveGLMappingParams defines query parameters for mapping resolution.
type ResolveGLMappingParams struct {
	SourceSystem string    `form:"sourceSystem" binding:"required"`
	ExternalCode string    `form:"externalCode" binding:"required"`
	Date         time.Time `form:"date" time_format:"2006-01-02" binding:"required"`
}

// GLMappingResponse defines the data returned for a GL mapping.
type GLMappingResponse struct {
	MappingID          string     `json:"mappingID"`
	SourceSystem       string     `json:"sourceSystem"`
	ExternalCode       string     `json:"externalCode"`
	GLAccountID        string     `json:"glAccountID"`
	EffectiveStartDate time.Time  `json:"effectiveStartDate"`
	EffectiveEndDate   *time.Time `json:"effectiveEndDate,omitempty"`
	Priority           int        `json:"priority"`
}

// ToGLMappingResponses converts a slice of domain.GLMapping to DTOs.
func ToGLMappingResponses(mappings []domain.GLMapping) []GLMappingResponse {
	res := make([]GLMappingResponse, len(mappings))
	for i, m := range mappings {
		res[i] = ToGLMappingResponse(&m)
	}
	return res
}

// ToGLMappingResponse converts a domain.GLMapping to DTO.
func ToGLMappingResponse(m *domain.GLMapping) GLMappingResponse {
	return GLMappingResponse{
		MappingID:          m.MappingID,
		SourceSystem:       m.SourceSystem,
		ExternalCode:       m.ExternalCode,
		GLAccountID:        m.GLAccountID,
		EffectiveStartDate: m.EffectiveStartDate,
		EffectiveEndDate:   m.EffectiveEndDate,
		Priority:           m.Priority,
	}
}
