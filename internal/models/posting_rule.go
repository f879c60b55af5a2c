package models

import "time"

// PostingRuleSet represents a row in the posting_rule_sets table.
type PostingRuleSet struct {
	RuleSetID      string     `db:"rule_set_id"`
	OrganizationID string     `db:"organization_id"`
	Name           string     `db:"name"`
	Description    string     `db:"description"`
	Version        int        `db:"version"`
	Status         string     `db:"status"`
	PublishedDate  *time.Time `db:"published_date"` // Nullable until published
	AuditFields
}

// PostingRule represents a row in the posting_rules table.
type PostingRule struct {
	RuleID      string `db:"rule_id"`
	RuleSetID   string `db:"rule_set_id"`
	GLAccountID string `db:"gl_account_id"`
	Dimension   string `db:"dimension"`
	Priority    int    `db:"priority"`
}

// GLMapping represents a row in the gl_mappings table.
type GLMapping struct {
	MappingID          string     `db:"mapping_id"`
	OrganizationID     string     `db:"organization_id"`
	SourceSystem       string     `db:"source_system"`
	ExternalCode       string     `db:"external_code"`
	GLAccountID        string     `db:"gl_account_id"`
	EffectiveStartDate time.Time  `db:"effective_start_date"`
	EffectiveEndDate   *time.Time `db:"effective_end_date"` // Nullable, open-ended
	Priority           int        `db:"priority"`
	AuditFields
}
