// Package errs defines the error taxonomy shared by the billing and
// inventory services. Every failure the services return is one of these
// kinds; callers branch with errors.Is against the kind sentinels and read
// details with errors.As.
package errs

import (
	"errors"
	"fmt"
)

// Kind sentinels. Services never return raw database errors to handlers.
var (
	ErrValidation          = errors.New("validation failed")
	ErrInvalidTransition   = errors.New("invalid status transition")
	ErrPreconditionFailed  = errors.New("precondition failed")
	ErrConflict            = errors.New("conflict")
	ErrNotFound            = errors.New("not found")
	ErrConcurrencyConflict = errors.New("concurrent modification")
	ErrGateway             = errors.New("payment gateway error")
)

// Error is a kind sentinel plus a caller-facing reason code and optional
// field details. Reason codes are stable snake_case strings (they end up in
// API responses).
type Error struct {
	Kind    error
	Reason  string
	Details map[string]string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Reason, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Reason)
}

// Is matches the kind sentinel so errors.Is(err, errs.ErrValidation) works.
func (e *Error) Is(target error) bool { return target == e.Kind }

func (e *Error) Unwrap() error { return e.Cause }

// Validation builds a ValidationError with per-field details.
func Validation(reason string, details map[string]string) *Error {
	return &Error{Kind: ErrValidation, Reason: reason, Details: details}
}

// InvalidTransition reports a state-machine rule violation.
func InvalidTransition(from, to string) *Error {
	return &Error{Kind: ErrInvalidTransition, Reason: "invalid_transition", Details: map[string]string{"from": from, "to": to}}
}

// Precondition reports a failed precondition with a distinct reason code
// (e.g. "quote_not_accepted" vs "already_converted").
func Precondition(reason string) *Error {
	return &Error{Kind: ErrPreconditionFailed, Reason: reason}
}

// Conflict reports a deletion or update blocked by existing relationships.
func Conflict(reason string) *Error {
	return &Error{Kind: ErrConflict, Reason: reason}
}

// NotFound reports a missing entity.
func NotFound(entity string) *Error {
	return &Error{Kind: ErrNotFound, Reason: entity + "_not_found"}
}

// Concurrency reports a tripped atomic guard (duplicate reference, double
// conversion). The duplicate caller never sees partial state.
func Concurrency(reason string) *Error {
	return &Error{Kind: ErrConcurrencyConflict, Reason: reason}
}

// Gateway wraps a failure from the external payment collaborator. Invoice and
// payment state are never altered on this path.
func Gateway(reason string, cause error) *Error {
	return &Error{Kind: ErrGateway, Reason: reason, Cause: cause}
}

// Reason extracts the reason code from an error, or "" if it is not an *Error.
func Reason(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Reason
	}
	return ""
}
