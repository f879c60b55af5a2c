package apperrors

import (
	"errors"
	"fmt"
)

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrForbidden indicates that the caller lacks the role required for the operation.
var ErrForbidden = errors.New("operation not permitted")

// ErrUnauthorized indicates missing or invalid credentials.
var ErrUnauthorized = errors.New("unauthorized")

// ErrConflict indicates that the resource is in a state that conflicts with the request.
var ErrConflict = errors.New("resource state conflict")

// ErrRefreshTokenExpired indicates that the stored refresh token has expired.
var ErrRefreshTokenExpired = errors.New("refresh token expired")

// ErrInternal indicates an unexpected internal failure.
var ErrInternal = errors.New("internal error")

// ErrInvalidTransition indicates an attempted status change that is not in the
// entity's legal-transition table. The entity is left unchanged.
var ErrInvalidTransition = errors.New("invalid status transition")

// ErrUnbalanced indicates a journal entry whose debit total does not equal its credit total.
var ErrUnbalanced = errors.New("journal entry debits and credits do not balance")

// ErrAlreadyPosted indicates an attempted mutation of a journal entry that has already been posted.
var ErrAlreadyPosted = errors.New("journal entry already posted")

// ErrRuleSetImmutable indicates an attempted update of a posting rule set after publication.
var ErrRuleSetImmutable = errors.New("posting rule set is immutable once published")

// ErrDuplicateEvent indicates an event submission whose idempotency key was already recorded.
var ErrDuplicateEvent = errors.New("event already ingested for idempotency key")

// ErrNoMappingFound indicates that GL mapping resolution matched no effective mapping.
var ErrNoMappingFound = errors.New("no GL mapping found")

// AppError wraps a lower-level error with an HTTP-ish status code and a message.
// Repositories use it so that infrastructure failures carry enough context to
// be mapped at the handler layer without string matching.
type AppError struct {
	Code    int
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates an AppError with the given code, message and cause.
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}
