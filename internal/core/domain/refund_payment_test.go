package domain_test

import (
	"testing"

	"github.com/ledgercore/subledger_app/internal/core/domain"
	"github.com/stretchr/testify/assert"
)

var allRefundStatuses = []domain.RefundPaymentStatus{
	domain.RefundInitiated,
	domain.RefundApproved,
	domain.RefundProcessing,
	domain.RefundCompleted,
	domain.RefundFailed,
	domain.RefundCancelled,
}

func TestRefundPaymentStatus_CanTransitionTo(t *testing.T) {
	legal := map[domain.RefundPaymentStatus][]domain.RefundPaymentStatus{
		domain.RefundInitiated:  {domain.RefundApproved, domain.RefundCancelled},
		domain.RefundApproved:   {domain.RefundProcessing, domain.RefundCancelled},
		domain.RefundProcessing: {domain.RefundCompleted, domain.RefundFailed},
		domain.RefundCompleted:  {},
		domain.RefundFailed:     {},
		domain.RefundCancelled:  {},
	}

	for from, allowed := range legal {
		allowedSet := make(map[domain.RefundPaymentStatus]bool, len(allowed))
		for _, s := range allowed {
			allowedSet[s] = true
		}
		for _, to := range allRefundStatuses {
			assert.Equalf(t, allowedSet[to], from.CanTransitionTo(to),
				"transition %s -> %s", from, to)
		}
	}
}

func TestRefundPaymentStatus_IsTerminal(t *testing.T) {
	assert.False(t, domain.RefundInitiated.IsTerminal())
	assert.False(t, domain.RefundApproved.IsTerminal())
	assert.False(t, domain.RefundProcessing.IsTerminal())
	assert.True(t, domain.RefundCompleted.IsTerminal())
	assert.True(t, domain.RefundFailed.IsTerminal())
	assert.True(t, domain.RefundCancelled.IsTerminal())
}

func TestRefundMethod_IsValid(t *testing.T) {
	assert.True(t, domain.RefundMethodCheck.IsValid())
	assert.True(t, domain.RefundMethodACH.IsValid())
	assert.True(t, domain.RefundMethodStoreCredit.IsValid())
	assert.False(t, domain.RefundMethod("CARRIER_PIGEON").IsValid())
	assert.False(t, domain.RefundMethod("").IsValid())
}

func TestJournalStatus_Transitions(t *testing.T) {
	assert.True(t, domain.JournalDraft.CanTransitionTo(domain.JournalPosted))
	assert.False(t, domain.JournalPosted.CanTransitionTo(domain.JournalDraft))
	assert.False(t, domain.JournalPosted.CanTransitionTo(domain.JournalPosted))
	assert.True(t, domain.JournalPosted.IsTerminal())
}

func TestRuleSetStatus_Transitions(t *testing.T) {
	assert.True(t, domain.RuleSetDraft.CanTransitionTo(domain.RuleSetPublished))
	assert.True(t, domain.RuleSetPublished.CanTransitionTo(domain.RuleSetArchived))
	assert.False(t, domain.RuleSetDraft.CanTransitionTo(domain.RuleSetArchived))
	assert.False(t, domain.RuleSetArchived.CanTransitionTo(domain.RuleSetDraft))
	assert.True(t, domain.RuleSetArchived.IsTerminal())
}

func TestGLAccountStatus_Transitions(t *testing.T) {
	assert.True(t, domain.GLAccountDraft.CanTransitionTo(domain.GLAccountActive))
	assert.True(t, domain.GLAccountActive.CanTransitionTo(domain.GLAccountInactive))
	assert.True(t, domain.GLAccountInactive.CanTransitionTo(domain.GLAccountActive))
	assert.True(t, domain.GLAccountInactive.CanTransitionTo(domain.GLAccountArchived))
	assert.False(t, domain.GLAccountActive.CanTransitionTo(domain.GLAccountActive))
	assert.True(t, domain.GLAccountArchived.IsTerminal())
}
