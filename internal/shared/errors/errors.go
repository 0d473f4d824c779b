// Package errors provides application-level error types and utilities.
// Record gateway, stores and the HTTP layer share this taxonomy so a failure
// keeps its meaning from the store that raised it up to the operator.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorType classifies an AppError and decides its HTTP status.
type ErrorType string

const (
	ErrorTypeValidation   ErrorType = "validation_error"
	ErrorTypeNotFound     ErrorType = "not_found"
	ErrorTypeConflict     ErrorType = "conflict"
	ErrorTypeUnauthorized ErrorType = "unauthorized"
	ErrorTypeForbidden    ErrorType = "forbidden"
	ErrorTypeInternal     ErrorType = "internal_error"
	ErrorTypeBadRequest   ErrorType = "bad_request"
	ErrorTypeUnavailable  ErrorType = "unavailable"
)

var statusCodes = map[ErrorType]int{
	ErrorTypeValidation:   http.StatusBadRequest,
	ErrorTypeNotFound:     http.StatusNotFound,
	ErrorTypeConflict:     http.StatusConflict,
	ErrorTypeUnauthorized: http.StatusUnauthorized,
	ErrorTypeForbidden:    http.StatusForbidden,
	ErrorTypeInternal:     http.StatusInternalServerError,
	ErrorTypeBadRequest:   http.StatusBadRequest,
	ErrorTypeUnavailable:  http.StatusServiceUnavailable,

	ErrorTypeTokenExpired:   http.StatusUnauthorized,
	ErrorTypeTokenInvalid:   http.StatusUnauthorized,
	ErrorTypeSessionExpired: http.StatusUnauthorized,
	ErrorTypeOAuthError:     http.StatusBadGateway,
	ErrorTypeSignInAborted:  http.StatusUnauthorized,
}

// Status returns the HTTP status for t. Unknown types map to 500.
func (t ErrorType) Status() int {
	if code, ok := statusCodes[t]; ok {
		return code
	}
	return http.StatusInternalServerError
}

// AppError carries a classified failure with an operator-facing message.
type AppError struct {
	Type    ErrorType `json:"type"`
	Message string    `json:"message"`
	Code    int       `json:"code"`
	Details string    `json:"details,omitempty"`
}

func (e *AppError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Type, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Is reports whether target is an AppError of the same type, so
// errors.Is(err, New(ErrorTypeNotFound, "")) matches any not-found failure.
func (e *AppError) Is(target error) bool {
	var other *AppError
	if !errors.As(target, &other) {
		return false
	}
	return e.Type == other.Type
}

// New builds an AppError of type t. Only the first detail is kept.
func New(t ErrorType, message string, details ...string) *AppError {
	e := &AppError{Type: t, Message: message, Code: t.Status()}
	if len(details) > 0 {
		e.Details = details[0]
	}
	return e
}

func NewValidationError(message string, details ...string) *AppError {
	return New(ErrorTypeValidation, message, details...)
}

func NewNotFoundError(message string, details ...string) *AppError {
	return New(ErrorTypeNotFound, message, details...)
}

func NewConflictError(message string, details ...string) *AppError {
	return New(ErrorTypeConflict, message, details...)
}

func NewUnauthorizedError(message string, details ...string) *AppError {
	return New(ErrorTypeUnauthorized, message, details...)
}

func NewForbiddenError(message string, details ...string) *AppError {
	return New(ErrorTypeForbidden, message, details...)
}

func NewInternalError(message string, details ...string) *AppError {
	return New(ErrorTypeInternal, message, details...)
}

func NewBadRequestError(message string, details ...string) *AppError {
	return New(ErrorTypeBadRequest, message, details...)
}

// NewUnavailableError reports a backend that could not be reached or is not
// configured for the requested operation.
func NewUnavailableError(message string, details ...string) *AppError {
	return New(ErrorTypeUnavailable, message, details...)
}

func IsAppError(err error) bool {
	return GetAppError(err) != nil
}

// GetAppError returns the first AppError in err's chain, or nil.
func GetAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return nil
}

// TypeOf returns the type of the first AppError in err's chain, or the empty
// type when there is none.
func TypeOf(err error) ErrorType {
	if appErr := GetAppError(err); appErr != nil {
		return appErr.Type
	}
	return ""
}

func IsConflictError(err error) bool    { return TypeOf(err) == ErrorTypeConflict }
func IsNotFoundError(err error) bool    { return TypeOf(err) == ErrorTypeNotFound }
func IsValidationError(err error) bool  { return TypeOf(err) == ErrorTypeValidation }
func IsForbiddenError(err error) bool   { return TypeOf(err) == ErrorTypeForbidden }
func IsUnavailableError(err error) bool { return TypeOf(err) == ErrorTypeUnavailable }
