package models

import (
	"github.com/shopspring/decimal"
)

// GLAccountStatus mirrors the lifecycle state column of gl_accounts.
type GLAccountStatus string

// GLAccount represents a row in the gl_accounts table.
type GLAccount struct {
	AccountID      string          `db:"account_id"`
	OrganizationID string          `db:"organization_id"`
	AccountNumber  string          `db:"account_number"` // Unique per organization
	Name           string          `db:"name"`
	AccountType    string          `db:"account_type"`
	CurrencyCode   string          `db:"currency_code"`
	Description    string          `db:"description"`
	Status         GLAccountStatus `db:"status"`
	Balance        decimal.Decimal `db:"balance"` // Persisted account balance
	AuditFields
}
