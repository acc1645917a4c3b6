package utils

import (
	"errors"
	"net/http"
)

// ErrorKind classifies an AppError and decides its HTTP status
type ErrorKind string

const (
	KindValidation ErrorKind = "VALIDATION_ERROR"
	KindAuth       ErrorKind = "AUTH_ERROR"
	KindForbidden  ErrorKind = "FORBIDDEN"
	KindNotFound   ErrorKind = "NOT_FOUND"
	KindConflict   ErrorKind = "CONFLICT"
	KindConfig     ErrorKind = "CONFIG_ERROR"
	KindUpstream   ErrorKind = "UPSTREAM_ERROR"
	KindStore      ErrorKind = "STORE_ERROR"
)

// AppError is the error type shared by services and controllers
type AppError struct {
	Kind    ErrorKind
	Code    string
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Message == "" && e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// StatusCode maps the error kind to an HTTP status
func (e *AppError) StatusCode() int {
	switch e.Kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindAuth:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func newAppError(kind ErrorKind, code, message string, err error) *AppError {
	if code == "" {
		code = string(kind)
	}
	return &AppError{Kind: kind, Code: code, Message: message, Err: err}
}

// NewValidationError reports missing or malformed input
func NewValidationError(code, message string) *AppError {
	return newAppError(KindValidation, code, message, nil)
}

// NewAuthError reports bad credentials, OTPs or tokens
func NewAuthError(code, message string) *AppError {
	return newAppError(KindAuth, code, message, nil)
}

// NewForbiddenError reports an authenticated caller without access
func NewForbiddenError(code, message string) *AppError {
	return newAppError(KindForbidden, code, message, nil)
}

// NewNotFoundError reports a missing record
func NewNotFoundError(code, message string) *AppError {
	return newAppError(KindNotFound, code, message, nil)
}

// NewConflictError reports a uniqueness violation
func NewConflictError(code, message string) *AppError {
	return newAppError(KindConflict, code, message, nil)
}

// NewConfigError reports a required secret or setting that is not configured
func NewConfigError(message string) *AppError {
	return newAppError(KindConfig, "", message, nil)
}

// NewUpstreamError reports a third-party API failure. The message is the
// provider's own and is passed through to the caller.
func NewUpstreamError(message string, err error) *AppError {
	return newAppError(KindUpstream, "", message, err)
}

// NewStoreError wraps an unexpected database failure
func NewStoreError(message string, err error) *AppError {
	return newAppError(KindStore, "", message, err)
}

// AsAppError unwraps err to an *AppError when possible
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// IsKind reports whether err is an AppError of the given kind
func IsKind(err error, kind ErrorKind) bool {
	appErr, ok := AsAppError(err)
	return ok && appErr.Kind == kind
}
