package utils

import (
	"errors"
	"net/http"
	"strings"

	"gorm.io/gorm"
)

// Error kinds. Match them with errors.Is.
var (
	ErrValidation            = errors.New("validation error")
	ErrConflict              = errors.New("conflict")
	ErrNotFound              = errors.New("not found")
	ErrUnauthenticated       = errors.New("unauthenticated")
	ErrTokenExpired          = errors.New("token expired")
	ErrForbidden             = errors.New("forbidden")
	ErrRoleViolation         = errors.New("role violation")
	ErrInvalidCredential     = errors.New("invalid credential")
	ErrInvalidOrExpiredToken = errors.New("invalid or expired token")
	ErrUpstream              = errors.New("upstream failure")
	ErrInternal              = errors.New("internal error")
)

// Error carries a client-safe message next to its kind and the underlying cause.
// Only Message and Details are ever rendered to clients.
type Error struct {
	Kind    error
	Message string
	Details map[string]string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() []error {
	if e.Cause != nil {
		return []error{e.Kind, e.Cause}
	}
	return []error{e.Kind}
}

func NewError(kind error, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func WrapError(kind error, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Cause: cause}
}

func Validation(message string) *Error { return NewError(ErrValidation, message) }
func Conflict(message string) *Error { return NewError(ErrConflict, message) }
func NotFoundError(message string) *Error { return NewError(ErrNotFound, message) }
func Unauthenticated(message string) *Error { return NewError(ErrUnauthenticated, message) }
func ForbiddenError(message string) *Error { return NewError(ErrForbidden, message) }
func Upstream(message string, cause error) *Error {
	return WrapError(ErrUpstream, message, cause)
}
func Internal(message string, cause error) *Error {
	return WrapError(ErrInternal, message, cause)
}

// StatusFor maps an error to the HTTP status of its kind.
func StatusFor(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrValidation),
		errors.Is(err, ErrConflict),
		errors.Is(err, ErrInvalidCredential),
		errors.Is(err, ErrInvalidOrExpiredToken):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnauthenticated), errors.Is(err, ErrTokenExpired):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden), errors.Is(err, ErrRoleViolation):
		return http.StatusForbidden
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// PublicMessage returns the message that may be shown to a client.
func PublicMessage(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) && StatusFor(err) < http.StatusInternalServerError {
		return appErr.Message
	}
	if errors.As(err, &appErr) && errors.Is(err, ErrUpstream) {
		return appErr.Message
	}
	return "Internal server error"
}

// IsDuplicateKey reports unique-constraint violations from either supported driver.
func IsDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") || strings.Contains(msg, "duplicate key")
}
