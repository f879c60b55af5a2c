// Package statemachine provides a generic legal-transition validator for
// entities that carry a status field. Each entity type declares its own
// transition table; the engine only answers whether a move is legal and
// produces a typed error when it is not.
package statemachine

import (
	"fmt"

	"github.com/ledgercore/subledger_app/internal/apperrors"
)

// Status constrains the engine to string-backed status enums.
type Status interface {
	~string
}

// Table maps each status to the statuses it may legally transition to.
// A status with no entry (or an empty entry) is terminal.
type Table[S Status] map[S][]S

// TransitionError reports an attempted illegal transition. It wraps
// apperrors.ErrInvalidTransition so callers can match with errors.Is.
type TransitionError struct {
	From string
	To   string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("cannot transition from %s to %s", e.From, e.To)
}

func (e *TransitionError) Unwrap() error {
	return apperrors.ErrInvalidTransition
}

// CanTransition reports whether moving from one status to another is in the
// table. Self-transitions are never legal unless the table models them
// explicitly as a successor.
func (t Table[S]) CanTransition(from, to S) bool {
	for _, next := range t[from] {
		if next == to {
			return true
		}
	}
	return false
}

// IsTerminal reports whether a status has no legal successors.
func (t Table[S]) IsTerminal(s S) bool {
	return len(t[s]) == 0
}

// Transition validates a status change against the table. It returns the
// target status on success and a *TransitionError otherwise; it never
// silently no-ops.
func (t Table[S]) Transition(from, to S) (S, error) {
	if !t.CanTransition(from, to) {
		var zero S
		return zero, &TransitionError{From: string(from), To: string(to)}
	}
	return to, nil
}
