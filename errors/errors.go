// Package errors provides the structured error type shared by every stage of
// the transcription pipeline and the HTTP layer in front of it.
package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"
)

// AppError is the unified application error type.
type AppError struct {
	// Code is a machine-readable error code.
	Code ErrorCode `json:"code"`
	// Message is a human-readable error message.
	Message string `json:"message"`
	// Retryable indicates if the operation can be retried.
	Retryable bool `json:"retryable"`
	// HTTPStatus is the recommended HTTP status code for this error.
	HTTPStatus int `json:"-"`
	// Details contains additional context for the error.
	Details map[string]any `json:"details,omitempty"`
	// Cause is the underlying error that caused this error.
	Cause error `json:"-"`
}

// Error returns the string representation of the error.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause of the error.
func (e *AppError) Unwrap() error { return e.Cause }

// WithCause sets the underlying cause of the error and returns the receiver.
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// WithDetail sets a single detail key-value pair and returns the receiver.
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// New creates a new AppError with automatic retryable detection.
func New(code ErrorCode, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Retryable:  IsRetryableCode(code),
	}
}

// --- Constructors ---

// InputError reports a missing or unreadable source file.
func InputError(path string, cause error) *AppError {
	return &AppError{
		Code: ErrCodeInputError, Message: fmt.Sprintf("Source file %s is missing or unreadable.", path),
		HTTPStatus: http.StatusBadRequest, Details: map[string]any{"path": path}, Cause: cause,
	}
}

// InvalidInput creates a new AppError for a parameter outside its valid range.
func InvalidInput(field, reason string) *AppError {
	details := make(map[string]any)
	if field != "" {
		details["field"] = field
	}
	return &AppError{
		Code: ErrCodeInvalidInput, Message: fmt.Sprintf("Invalid input: %s", reason),
		HTTPStatus: http.StatusBadRequest, Details: details,
	}
}

// Validation creates a new AppError for struct validation failures.
func Validation(message string) *AppError {
	return &AppError{
		Code: ErrCodeInvalidInput, Message: message,
		HTTPStatus: http.StatusBadRequest,
	}
}

// MissingField creates a new AppError for a missing required field.
func MissingField(field string) *AppError {
	return &AppError{
		Code: ErrCodeMissingField, Message: fmt.Sprintf("Missing required field: %s", field),
		HTTPStatus: http.StatusBadRequest, Details: map[string]any{"field": field},
	}
}

// UnsupportedFormat rejects an output format the renderer set does not know.
func UnsupportedFormat(format string, supported []string) *AppError {
	return &AppError{
		Code:       ErrCodeUnsupportedFormat,
		Message:    fmt.Sprintf("Unsupported output format %q. Expected one of: %s", format, strings.Join(supported, ", ")),
		HTTPStatus: http.StatusBadRequest,
		Details:    map[string]any{"format": format},
	}
}

// NotFound creates a new AppError for a resource that was not found.
func NotFound(resource, id string) *AppError {
	details := map[string]any{"resource": resource}
	if id != "" {
		details["id"] = id
	}
	return &AppError{
		Code: ErrCodeNotFound, Message: fmt.Sprintf("The requested %s was not found.", resource),
		HTTPStatus: http.StatusNotFound, Details: details,
	}
}

// Conflict creates a new AppError for a state conflict.
func Conflict(reason string) *AppError {
	return &AppError{
		Code: ErrCodeConflict, Message: reason,
		HTTPStatus: http.StatusConflict,
	}
}

// ToolNotFound reports that an external binary is not installed or not on PATH.
func ToolNotFound(tool string, cause error) *AppError {
	return &AppError{
		Code: ErrCodeToolNotFound, Message: fmt.Sprintf("%s not found. Ensure it is installed and on PATH.", tool),
		HTTPStatus: http.StatusInternalServerError,
		Details:    map[string]any{"tool": tool}, Cause: cause,
	}
}

// ToolInvocation reports a non-zero exit of an external binary. The tool's
// diagnostic output is kept in Details["stderr"].
func ToolInvocation(tool string, stderr string, cause error) *AppError {
	return &AppError{
		Code: ErrCodeToolInvocation, Message: fmt.Sprintf("%s failed: %s", tool, strings.TrimSpace(stderr)),
		HTTPStatus: http.StatusInternalServerError,
		Details:    map[string]any{"tool": tool, "stderr": stderr}, Cause: cause,
	}
}

// Unauthorized reports a missing or rejected credential.
func Unauthorized(reason string) *AppError {
	if reason == "" {
		reason = "Authentication required."
	}
	return &AppError{
		Code: ErrCodeUnauthorized, Message: reason,
		HTTPStatus: http.StatusUnauthorized,
	}
}

// ExternalServiceError creates a new AppError for a failing remote collaborator.
func ExternalServiceError(service string, cause error) *AppError {
	return &AppError{
		Code: ErrCodeExternalService, Message: fmt.Sprintf("The %s service encountered an error.", service),
		HTTPStatus: http.StatusBadGateway, Retryable: true,
		Details: map[string]any{"service": service}, Cause: cause,
	}
}

// Timeout creates a new AppError for an operation that ran out of time.
func Timeout(operation string) *AppError {
	return &AppError{
		Code: ErrCodeTimeout, Message: fmt.Sprintf("The %s operation timed out or was canceled.", operation),
		HTTPStatus: http.StatusGatewayTimeout, Retryable: true,
		Details: map[string]any{"operation": operation},
	}
}

// RateLimited reports a 429 from a collaborator.
func RateLimited(service string) *AppError {
	return &AppError{
		Code: ErrCodeRateLimited, Message: fmt.Sprintf("The %s service is rate limiting requests.", service),
		HTTPStatus: http.StatusTooManyRequests, Retryable: true,
		Details: map[string]any{"service": service},
	}
}

// InternalInvariant reports a computed structure that violates its own invariant.
func InternalInvariant(what string) *AppError {
	return &AppError{
		Code: ErrCodeInternalInvariant, Message: fmt.Sprintf("Internal invariant violated: %s", what),
		HTTPStatus: http.StatusInternalServerError,
	}
}

// Internal creates a new AppError for an unexpected internal error.
func Internal(cause error) *AppError {
	return &AppError{
		Code: ErrCodeInternal, Message: "An unexpected error occurred.",
		HTTPStatus: http.StatusInternalServerError, Cause: cause,
	}
}

// ServiceUnavailable reports that new work is refused, e.g. during shutdown.
func ServiceUnavailable(reason string) *AppError {
	return &AppError{
		Code: ErrCodeServiceUnavailable, Message: reason,
		HTTPStatus: http.StatusServiceUnavailable,
	}
}

// IsCode reports whether err (or anything it wraps) is an AppError with the given code.
func IsCode(err error, code ErrorCode) bool {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}
