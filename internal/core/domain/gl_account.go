package domain

import (
	"github.com/ledgercore/subledger_app/internal/core/statemachine"
	"github.com/shopspring/decimal"
)

// AccountType defines the fundamental accounting type of a GL account.
type AccountType string

const (
	Asset     AccountType = "ASSET"
	Liability AccountType = "LIABILITY"
	Equity    AccountType = "EQUITY"
	Revenue   AccountType = "REVENUE"
	Expense   AccountType = "EXPENSE"
)

// IsValid reports whether the account type is one of the known types.
func (t AccountType) IsValid() bool {
	switch t {
	case Asset, Liability, Equity, Revenue, Expense:
		return true
	}
	return false
}

// GLAccountStatus is the lifecycle state of a GL account.
type GLAccountStatus string

const (
	GLAccountDraft    GLAccountStatus = "DRAFT"
	GLAccountActive   GLAccountStatus = "ACTIVE"
	GLAccountInactive GLAccountStatus = "INACTIVE"
	GLAccountArchived GLAccountStatus = "ARCHIVED"
)

// GLAccountTransitions is the legal-transition table for GL accounts.
// Reactivation (INACTIVE -> ACTIVE) is modeled explicitly.
var GLAccountTransitions = statemachine.Table[GLAccountStatus]{
	GLAccountDraft:    {GLAccountActive},
	GLAccountActive:   {GLAccountInactive},
	GLAccountInactive: {GLAccountActive, GLAccountArchived},
}

// CanTransitionTo reports whether the account status may legally move to target.
func (s GLAccountStatus) CanTransitionTo(target GLAccountStatus) bool {
	return GLAccountTransitions.CanTransition(s, target)
}

// IsTerminal reports whether the status has no legal successors.
func (s GLAccountStatus) IsTerminal() bool {
	return GLAccountTransitions.IsTerminal(s)
}

// GLAccount represents a general-ledger account, the target of journal entry
// lines and of posting rule / GL mapping resolution.
type GLAccount struct {
	AccountID      string          `json:"accountID"`      // Primary Key (e.g., UUID)
	OrganizationID string          `json:"organizationID"` // FK -> organizations.organization_id (NON-NULL)
	AccountNumber  string          `json:"accountNumber"`  // Unique per organization (e.g., "1000")
	Name           string          `json:"name"`           // User-defined name
	AccountType    AccountType     `json:"accountType"`    // ASSET, LIABILITY, etc.
	CurrencyCode   string          `json:"currencyCode"`   // ISO 4217 code (e.g., "USD")
	Description    string          `json:"description"`    // Nullable user description
	Status         GLAccountStatus `json:"status"`
	Balance        decimal.Decimal `json:"balance"` // Persisted running balance
	AuditFields
}
