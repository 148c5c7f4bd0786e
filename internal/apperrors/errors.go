package apperrors

import (
	"errors"
	"net/http"
)

// ValidationError covers malformed or inconsistent input: missing signup
// fields, mismatched passwords, duplicate usernames, unknown enum values.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// AuthError covers bad credentials, for login and for the manager-password
// confirmation.
type AuthError struct {
	Message string
}

func (e *AuthError) Error() string { return e.Message }

// AuthorizationError means the current role lacks permission for the
// operation. The original application swallowed these; they are surfaced
// explicitly here.
type AuthorizationError struct {
	Message string
}

func (e *AuthorizationError) Error() string { return e.Message }

// NotFoundError means the operation targeted a task or user that does not
// exist or is outside the caller's group.
type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string { return e.Message }

func NewValidation(message string) error    { return &ValidationError{Message: message} }
func NewAuth(message string) error          { return &AuthError{Message: message} }
func NewAuthorization(message string) error { return &AuthorizationError{Message: message} }
func NewNotFound(message string) error      { return &NotFoundError{Message: message} }

// HTTPStatus maps a taxonomy error to its response status. Anything outside
// the taxonomy is a persistence-layer failure and maps to 500.
func HTTPStatus(err error) int {
	var (
		validation    *ValidationError
		auth          *AuthError
		authorization *AuthorizationError
		notFound      *NotFoundError
	)

	switch {
	case errors.As(err, &validation):
		return http.StatusBadRequest
	case errors.As(err, &auth):
		return http.StatusUnauthorized
	case errors.As(err, &authorization):
		return http.StatusForbidden
	case errors.As(err, &notFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
