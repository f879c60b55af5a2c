package domain

import (
	"time"

	"github.com/ledgercore/subledger_app/internal/core/statemachine"
	"github.com/shopspring/decimal"
)

// JournalStatus indicates the state of a journal entry.
type JournalStatus string

const (
	JournalDraft  JournalStatus = "DRAFT"
	JournalPosted JournalStatus = "POSTED"
)

// JournalTransitions is the legal-transition table for journal entries.
// POSTED is terminal: amendment happens through a reversal entry, never an
// in-place edit.
var JournalTransitions = statemachine.Table[JournalStatus]{
	JournalDraft: {JournalPosted},
}

// CanTransitionTo reports whether the journal status may legally move to target.
func (s JournalStatus) CanTransitionTo(target JournalStatus) bool {
	return JournalTransitions.CanTransition(s, target)
}

// IsTerminal reports whether the status has no legal successors.
func (s JournalStatus) IsTerminal() bool {
	return JournalTransitions.IsTerminal(s)
}

// Journal represents a single, balanced financial event composed of multiple
// transaction lines. Once posted, lines and totals are immutable.
type Journal struct {
	JournalID           string          `json:"journalID"`      // Primary Key (e.g., UUID)
	OrganizationID      string          `json:"organizationID"` // FK -> organizations.organization_id (Not Null)
	JournalDate         time.Time       `json:"journalDate"`    // Date the event occurred
	Description         string          `json:"description"`
	CurrencyCode        string          `json:"currencyCode"` // Primary currency of the Journal (Not Null)
	Status              JournalStatus   `json:"status"`
	TotalDebit          decimal.Decimal `json:"totalDebit"`  // Sum of all debit lines
	TotalCredit         decimal.Decimal `json:"totalCredit"` // Always equals TotalDebit once valid
	PostingDate         *time.Time      `json:"postingDate,omitempty"`
	ReversalOfJournalID *string         `json:"reversalOfJournalID,omitempty"` // Back-reference to the reversed entry
	Transactions        []Transaction   `json:"transactions,omitempty"`        // Often loaded separately
	AuditFields
}
