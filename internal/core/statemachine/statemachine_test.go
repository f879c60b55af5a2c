package statemachine_test

import (
	"errors"
	"testing"

	"github.com/ledgercore/subledger_app/internal/apperrors"
	"github.com/ledgercore/subledger_app/internal/core/statemachine"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type docStatus string

const (
	draft     docStatus = "DRAFT"
	active    docStatus = "ACTIVE"
	inactive  docStatus = "INACTIVE"
	archived  docStatus = "ARCHIVED"
	unrelated docStatus = "UNRELATED"
)

var docTable = statemachine.Table[docStatus]{
	draft:    {active},
	active:   {inactive},
	inactive: {active, archived},
}

func TestCanTransition(t *testing.T) {
	testCases := []struct {
		name string
		from docStatus
		to   docStatus
		want bool
	}{
		{"legal forward move", draft, active, true},
		{"legal reactivation", inactive, active, true},
		{"skipping a state", draft, inactive, false},
		{"backwards move", active, draft, false},
		{"self transition", active, active, false},
		{"out of terminal state", archived, active, false},
		{"unknown source status", unrelated, active, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, docTable.CanTransition(tc.from, tc.to))
		})
	}
}

func TestIsTerminal(t *testing.T) {
	assert.False(t, docTable.IsTerminal(draft))
	assert.False(t, docTable.IsTerminal(inactive))
	assert.True(t, docTable.IsTerminal(archived))
	// Statuses absent from the table have no successors either.
	assert.True(t, docTable.IsTerminal(unrelated))
}

func TestTransition_Success(t *testing.T) {
	got, err := docTable.Transition(draft, active)
	require.NoError(t, err)
	assert.Equal(t, active, got)
}

func TestTransition_Illegal(t *testing.T) {
	_, err := docTable.Transition(archived, active)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrInvalidTransition)

	var transitionErr *statemachine.TransitionError
	require.True(t, errors.As(err, &transitionErr))
	assert.Equal(t, "ARCHIVED", transitionErr.From)
	assert.Equal(t, "ACTIVE", transitionErr.To)
}
