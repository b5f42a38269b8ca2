// Package errors defines the error taxonomy shared by the kanban services and handlers.
// Handlers translate these into HTTP status codes; repositories and services only ever
// return one of these (or wrap one of them).
package errors

import (
	"errors"
	"fmt"
)

// Client-facing text for the sentinel errors.
const (
	MsgDuplicateUsername      = "Username already exists. Please choose a different one."
	MsgInvalidCredentials     = "Invalid username or password"
	MsgUnauthorized           = "Unauthorized"
	MsgNotFoundOrUnauthorized = "Card not found or unauthorized"
)

var (
	// ErrDuplicateUsername is returned by registration when the username is taken.
	ErrDuplicateUsername = errors.New("username already exists")

	// ErrInvalidCredentials is returned by login for an unknown username or a wrong password.
	// Both cases share one error so the response does not reveal which usernames exist.
	ErrInvalidCredentials = errors.New("invalid username or password")

	// ErrUnauthorized is returned when a protected operation runs without a session.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrNotFoundOrUnauthorized is returned when a card mutation matched no row in the
	// caller's organization. It covers both "no such card" and "card belongs to
	// another organization".
	ErrNotFoundOrUnauthorized = errors.New("card not found or unauthorized")
)

// Message returns the text shown to clients for err. Sentinels map to their
// Msg constants, validation errors to their message, anything else to err.Error().
func Message(err error) string {
	var ve *ValidationError
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrDuplicateUsername):
		return MsgDuplicateUsername
	case errors.Is(err, ErrInvalidCredentials):
		return MsgInvalidCredentials
	case errors.Is(err, ErrUnauthorized):
		return MsgUnauthorized
	case errors.Is(err, ErrNotFoundOrUnauthorized):
		return MsgNotFoundOrUnauthorized
	case errors.As(err, &ve):
		return ve.Message
	default:
		return err.Error()
	}
}

// ValidationError represents missing or malformed input.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NewValidationError builds a ValidationError for the given field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// StoreError wraps an unexpected persistence failure.
type StoreError struct {
	Op  string // Repository operation, e.g. "cards.list"
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying driver error.
func (e *StoreError) Unwrap() error {
	return e.Err
}

// Store wraps err in a StoreError unless it is nil or already part of the taxonomy.
func Store(op string, err error) error {
	if err == nil {
		return nil
	}
	var se *StoreError
	if errors.As(err, &se) {
		return err
	}
	return &StoreError{Op: op, Err: err}
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsStore reports whether err is (or wraps) a StoreError.
func IsStore(err error) bool {
	var se *StoreError
	return errors.As(err, &se)
}
