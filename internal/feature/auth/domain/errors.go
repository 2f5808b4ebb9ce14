// Package domain defines domain-level errors and input rules for the auth feature.
package domain

import (
	"errors"
	"strings"
)

// Domain errors for authentication operations.
// These errors represent business logic failures and are translated to HTTP statuses by the transport layer.
var (
	// ErrValidation indicates malformed or missing input.
	ErrValidation = errors.New("validation failed")

	// ErrEmailAlreadyExists indicates that a user with the given email already exists.
	ErrEmailAlreadyExists = errors.New("email already registered")

	// ErrUserNotFound indicates that no user was found with the given criteria.
	ErrUserNotFound = errors.New("user not found")

	// ErrInvalidCredentials is returned for both an unknown email and a wrong password,
	// so callers cannot tell the two apart.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrAccountDeactivated is returned when an inactive user presents valid credentials.
	ErrAccountDeactivated = errors.New("your account has been deactivated")

	// ErrSetupTokenNotConfigured is returned by promotion when the server holds no setup secret.
	ErrSetupTokenNotConfigured = errors.New("admin setup token is not configured on the server")

	// ErrInvalidSetupToken is returned by promotion when the presented setup token does not match.
	ErrInvalidSetupToken = errors.New("invalid setup token")
)

// FieldError describes a single invalid input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError carries per-field failures. It matches ErrValidation with errors.Is.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return ErrValidation.Error()
	}
	msgs := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		msgs = append(msgs, f.Field+": "+f.Message)
	}
	return ErrValidation.Error() + ": " + strings.Join(msgs, "; ")
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// NewValidationError builds a ValidationError for a single field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Fields: []FieldError{{Field: field, Message: message}}}
}
