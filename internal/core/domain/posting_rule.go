package domain

import (
	"time"

	"github.com/ledgercore/subledger_app/internal/core/statemachine"
)

// RuleSetStatus is the lifecycle state of a posting rule set.
type RuleSetStatus string

const (
	RuleSetDraft     RuleSetStatus = "DRAFT"
	RuleSetPublished RuleSetStatus = "PUBLISHED"
	RuleSetArchived  RuleSetStatus = "ARCHIVED"
)

// RuleSetTransitions is the legal-transition table for posting rule sets.
// ARCHIVED is terminal; a published set can only change by archival, further
// edits require a new version.
var RuleSetTransitions = statemachine.Table[RuleSetStatus]{
	RuleSetDraft:     {RuleSetPublished},
	RuleSetPublished: {RuleSetArchived},
}

// CanTransitionTo reports whether the rule set status may legally move to target.
func (s RuleSetStatus) CanTransitionTo(target RuleSetStatus) bool {
	return RuleSetTransitions.CanTransition(s, target)
}

// IsTerminal reports whether the status has no legal successors.
func (s RuleSetStatus) IsTerminal() bool {
	return RuleSetTransitions.IsTerminal(s)
}

// PostingRule maps a posting dimension to a GL account within a rule set.
type PostingRule struct {
	RuleID      string `json:"ruleID"`    // Primary Key (e.g., UUID)
	RuleSetID   string `json:"ruleSetID"` // FK -> PostingRuleSet.ruleSetID
	GLAccountID string `json:"glAccountID"`
	Dimension   string `json:"dimension"` // e.g., "product:shipping", "region:EU"
	Priority    int    `json:"priority"`  // Higher wins
}

// PostingRuleSet is a versioned collection of posting rules. Name, rules and
// version freeze on publication; a new version carries further changes.
type PostingRuleSet struct {
	RuleSetID      string        `json:"ruleSetID"`      // Primary Key (e.g., UUID)
	OrganizationID string        `json:"organizationID"` // FK -> organizations.organization_id (Not Null)
	Name           string        `json:"name"`
	Description    string        `json:"description"`
	Version        int           `json:"version"` // Monotonic, starts at 1
	Status         RuleSetStatus `json:"status"`
	PublishedDate  *time.Time    `json:"publishedDate,omitempty"`
	Rules          []PostingRule `json:"rules,omitempty"`
	AuditFields
}

// GLMapping translates an external system's code into a GL account for a
// bounded effective period. Resolution picks the mapping whose window
// contains the posting date, highest priority first, most recent start date
// breaking remaining ties.
type GLMapping struct {
	MappingID          string     `json:"mappingID"`      // Primary Key (e.g., UUID)
	OrganizationID     string     `json:"organizationID"` // FK -> organizations.organization_id (Not Null)
	SourceSystem       string     `json:"sourceSystem"`   // e.g., "billing"
	ExternalCode       string     `json:"externalCode"`   // Code in the source system's vocabulary
	GLAccountID        string     `json:"glAccountID"`
	EffectiveStartDate time.Time  `json:"effectiveStartDate"`
	EffectiveEndDate   *time.Time `json:"effectiveEndDate,omitempty"` // Open-ended if absent
	Priority           int        `json:"priority"`
	AuditFields
}

// Contains reports whether the mapping's effective window contains the date.
func (m GLMapping) Contains(date time.Time) bool {
	if date.Before(m.EffectiveStartDate) {
		return false
	}
	if m.EffectiveEndDate != nil && date.After(*m.EffectiveEndDate) {
		return false
	}
	return true
}

// SelectGLMapping picks the winning mapping for a posting date among
// candidates: only mappings whose effective window contains the date are
// considered, the highest priority wins, and the most recent start date
// breaks remaining ties. Returns nil when no candidate qualifies.
func SelectGLMapping(candidates []GLMapping, date time.Time) *GLMapping {
	var best *GLMapping
	for i := range candidates {
		c := &candidates[i]
		if !c.Contains(date) {
			continue
		}
		if best == nil ||
			c.Priority > best.Priority ||
			(c.Priority == best.Priority && c.EffectiveStartDate.After(best.EffectiveStartDate)) {
			best = c
		}
	}
	return best
}
