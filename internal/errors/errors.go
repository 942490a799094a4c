package errors

import (
	"errors"
	"net/http"
)

// Kind classifies a failure independently of transport.
type Kind string

const (
	// Identity errors
	KindUnauthenticated   Kind = "UNAUTHENTICATED"
	KindInvalidCredential Kind = "INVALID_CREDENTIAL"
	KindCredentialExpired Kind = "CREDENTIAL_EXPIRED"
	KindUserNotFound      Kind = "USER_NOT_FOUND"

	// Request errors
	KindValidation  Kind = "VALIDATION_ERROR"
	KindNotFound    Kind = "NOT_FOUND"
	KindConflict    Kind = "CONFLICT"
	KindRateLimited Kind = "RATE_LIMITED"

	// Service errors
	KindServiceUnavailable Kind = "SERVICE_UNAVAILABLE"
	KindSystem             Kind = "SYSTEM_ERROR"
)

// Error is a classified failure carrying an optional cause.
type Error struct {
	Kind    Kind
	Message string
	Details map[string]string
	Err     error
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates a new Error
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Validation creates a validation error with per-field details.
func Validation(message string, details map[string]string) *Error {
	return &Error{Kind: KindValidation, Message: message, Details: details}
}

// System wraps an unexpected persistence or runtime failure.
func System(err error) *Error {
	return &Error{Kind: KindSystem, Message: "Internal server error", Err: err}
}

// Predefined errors
var (
	ErrUnauthenticated   = New(KindUnauthenticated, "Authentication required")
	ErrInvalidCredential = New(KindInvalidCredential, "Invalid credential")
	ErrCredentialExpired = New(KindCredentialExpired, "Credential expired")
	ErrUserNotFound      = New(KindUserNotFound, "User no longer exists")
	ErrInvalidLogin      = New(KindInvalidCredential, "Invalid email or password")
	ErrTaskNotFound      = New(KindNotFound, "Task not found")
	ErrUserMissing       = New(KindNotFound, "User not found")
	ErrEmailTaken        = New(KindConflict, "Email already registered")
	ErrRateLimited       = New(KindRateLimited, "Too many requests")
	ErrDraftingDisabled  = New(KindServiceUnavailable, "Task drafting is not configured")
)

// KindOf returns the kind of the first *Error in err's chain, or KindSystem.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindSystem
}

// As extracts the first *Error in err's chain. Unclassified errors become system errors.
func As(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return System(err)
}

// HTTPStatus maps a kind to a response status. Not-found is reported in-band with 200.
func HTTPStatus(kind Kind) int {
	switch kind {
	case KindUnauthenticated, KindInvalidCredential, KindCredentialExpired, KindUserNotFound:
		return http.StatusUnauthorized
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusOK
	case KindConflict:
		return http.StatusConflict
	case KindRateLimited:
		return http.StatusTooManyRequests
	case KindServiceUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// APIError represents a standardized API error payload
type APIError struct {
	Code    Kind              `json:"code"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

// ToAPIError converts err to its wire form. Causes of system errors are never exposed.
func ToAPIError(err error) *APIError {
	e := As(err)
	return &APIError{
		Code:    e.Kind,
		Message: e.Message,
		Details: e.Details,
	}
}
