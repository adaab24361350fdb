// Package common defines shared constants and sentinel errors used across
// client and server layers of AudioKeeper. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors. Every failure that reaches a caller is one of these kinds.
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")
	ErrorConflict     = errors.New("conflict")
	ErrorValidation   = errors.New("validation error")
)

// ConflictError carries the human-readable reason of a uniqueness or
// constraint violation. It matches ErrorConflict with errors.Is.
type ConflictError struct {
	Reason string
}

func (e *ConflictError) Error() string {
	return e.Reason
}

func (e *ConflictError) Unwrap() error {
	return ErrorConflict
}

// Conflict returns a *ConflictError with the given reason.
func Conflict(reason string) error {
	return &ConflictError{Reason: reason}
}

// ValidationError reports input that was rejected before reaching storage.
// It matches ErrorValidation with errors.Is.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

func (e *ValidationError) Unwrap() error {
	return ErrorValidation
}

// Invalid returns a *ValidationError with the given reason.
func Invalid(reason string) error {
	return &ValidationError{Reason: reason}
}

// UnauthorizedError carries the message shown to a caller whose
// credentials were rejected. It matches ErrorUnauthorized with errors.Is.
type UnauthorizedError struct {
	Reason string
}

func (e *UnauthorizedError) Error() string {
	return e.Reason
}

func (e *UnauthorizedError) Unwrap() error {
	return ErrorUnauthorized
}

// Unauthorized returns an *UnauthorizedError with the given reason.
func Unauthorized(reason string) error {
	return &UnauthorizedError{Reason: reason}
}

// Reason extracts the message that is safe to show to a caller. Conflict,
// validation and unauthorized errors expose their reason; everything else falls back to
// the text of the matching sentinel.
func Reason(err error) string {
	var ce *ConflictError
	if errors.As(err, &ce) {
		return ce.Reason
	}
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Reason
	}
	var ue *UnauthorizedError
	if errors.As(err, &ue) {
		return ue.Reason
	}
	switch {
	case errors.Is(err, ErrorUnauthorized):
		return ErrorUnauthorized.Error()
	case errors.Is(err, ErrorNotFound):
		return ErrorNotFound.Error()
	case errors.Is(err, ErrorConflict):
		return ErrorConflict.Error()
	}
	return ErrorInternal.Error()
}
