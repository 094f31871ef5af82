// Package errors defines the portal's application-level error type.
// Services return *AppError for conditions the HTTP layer must render specially;
// backend failures stay as *apierror.Error.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorCode represents a category of application error.
type ErrorCode string

const (
	// ErrCodeValidation indicates invalid form input. Fields carries per-field messages.
	ErrCodeValidation ErrorCode = "validation"
	// ErrCodeNotFound indicates a resource was not found.
	ErrCodeNotFound ErrorCode = "not_found"
	// ErrCodeConflict indicates the action clashes with current state, such as a duplicate submission.
	ErrCodeConflict ErrorCode = "conflict"
	// ErrCodeUnauthorized indicates there is no usable session.
	ErrCodeUnauthorized ErrorCode = "unauthorized"
	// ErrCodeForbidden indicates the user's role or plan does not allow the action.
	ErrCodeForbidden ErrorCode = "forbidden"
	// ErrCodeRateLimited indicates the caller should slow down.
	ErrCodeRateLimited ErrorCode = "rate_limited"
	// ErrCodeUnavailable indicates the marketplace API could not be reached.
	ErrCodeUnavailable ErrorCode = "unavailable"
	// ErrCodeInternal indicates an internal server error.
	ErrCodeInternal ErrorCode = "internal"
)

// AppError represents a structured application error with a code, message, and optional cause.
type AppError struct {
	Code    ErrorCode
	Message string
	Cause   error
	// Fields holds per-field messages for validation errors.
	Fields map[string]string
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the underlying cause.
func (e *AppError) Unwrap() error {
	return e.Cause
}

// Validation creates a validation error from a field map.
// The message is the single field's message, or a summary when several fields failed.
func Validation(fields map[string]string) *AppError {
	msg := "Please fix the errors below."
	if len(fields) == 1 {
		for _, m := range fields {
			msg = m
		}
	}
	return &AppError{Code: ErrCodeValidation, Message: msg, Fields: fields}
}

// ValidationField creates a validation error for a single field.
func ValidationField(field, message string) *AppError {
	return Validation(map[string]string{field: message})
}

// NotFound creates a new NotFound error.
func NotFound(message string) *AppError {
	return &AppError{Code: ErrCodeNotFound, Message: message}
}

// NotFoundf creates a new NotFound error with formatted message.
func NotFoundf(format string, args ...any) *AppError {
	return NotFound(fmt.Sprintf(format, args...))
}

// Conflict creates a new Conflict error.
func Conflict(message string, cause error) *AppError {
	return &AppError{Code: ErrCodeConflict, Message: message, Cause: cause}
}

// Unauthorized creates a new Unauthorized error.
func Unauthorized(message string) *AppError {
	return &AppError{Code: ErrCodeUnauthorized, Message: message}
}

// Forbidden creates a new Forbidden error.
func Forbidden(message string, cause error) *AppError {
	return &AppError{Code: ErrCodeForbidden, Message: message, Cause: cause}
}

// RateLimited creates a new RateLimited error.
func RateLimited(message string) *AppError {
	return &AppError{Code: ErrCodeRateLimited, Message: message}
}

// Internal wraps an unexpected failure.
func Internal(message string, cause error) *AppError {
	return &AppError{Code: ErrCodeInternal, Message: message, Cause: cause}
}

// CodeOf returns the code of the first AppError in err's chain, or "".
func CodeOf(err error) ErrorCode {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ""
}

// FieldsOf returns validation fields carried by err, or nil.
func FieldsOf(err error) map[string]string {
	var appErr *AppError
	if errors.As(err, &appErr) && appErr.Code == ErrCodeValidation {
		return appErr.Fields
	}
	return nil
}

// IsValidation reports whether err is a validation error.
func IsValidation(err error) bool { return CodeOf(err) == ErrCodeValidation }

// IsConflict reports whether err is a conflict error.
func IsConflict(err error) bool { return CodeOf(err) == ErrCodeConflict }

// IsForbidden reports whether err is a forbidden error.
func IsForbidden(err error) bool { return CodeOf(err) == ErrCodeForbidden }

// HTTPStatus maps a code to its response status. Unknown codes are 500.
func HTTPStatus(code ErrorCode) int {
	switch code {
	case ErrCodeValidation:
		return http.StatusUnprocessableEntity
	case ErrCodeNotFound:
		return http.StatusNotFound
	case ErrCodeConflict:
		return http.StatusConflict
	case ErrCodeUnauthorized:
		return http.StatusUnauthorized
	case ErrCodeForbidden:
		return http.StatusForbidden
	case ErrCodeRateLimited:
		return http.StatusTooManyRequests
	case ErrCodeUnavailable:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
