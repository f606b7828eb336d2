package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Input errors
const (
	// ErrCodeInputError indicates the source file is missing or unreadable.
	ErrCodeInputError ErrorCode = "INPUT_ERROR"
	// ErrCodeInvalidInput indicates a parameter is outside its valid range.
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
	// ErrCodeMissingField indicates a required field is missing.
	ErrCodeMissingField ErrorCode = "MISSING_FIELD"
	// ErrCodeUnsupportedFormat indicates an unknown output format was requested.
	ErrCodeUnsupportedFormat ErrorCode = "UNSUPPORTED_FORMAT"
)

// Resource errors
const (
	// ErrCodeNotFound indicates the requested resource was not found.
	ErrCodeNotFound ErrorCode = "NOT_FOUND"
	// ErrCodeConflict indicates a conflict with the current state of the resource.
	ErrCodeConflict ErrorCode = "CONFLICT"
)

// Tool errors (ffmpeg, ffprobe)
const (
	// ErrCodeToolNotFound indicates an external binary is not installed.
	ErrCodeToolNotFound ErrorCode = "TOOL_NOT_FOUND"
	// ErrCodeToolInvocation indicates an external binary exited unsuccessfully.
	ErrCodeToolInvocation ErrorCode = "TOOL_INVOCATION_FAILED"
)

// Collaborator errors
const (
	// ErrCodeUnauthorized indicates a missing or rejected credential.
	ErrCodeUnauthorized ErrorCode = "UNAUTHORIZED"
	// ErrCodeExternalService indicates an error from a remote collaborator.
	ErrCodeExternalService ErrorCode = "EXTERNAL_SERVICE_ERROR"
	// ErrCodeTimeout indicates the operation timed out or was canceled.
	ErrCodeTimeout ErrorCode = "TIMEOUT"
	// ErrCodeRateLimited indicates the collaborator asked us to slow down.
	ErrCodeRateLimited ErrorCode = "RATE_LIMITED"
)

// Internal errors
const (
	// ErrCodeInternal indicates an unexpected internal error.
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
	// ErrCodeInternalInvariant indicates a computed structure violated its invariant.
	ErrCodeInternalInvariant ErrorCode = "INTERNAL_INVARIANT"
	// ErrCodeServiceUnavailable indicates the service is not accepting work.
	ErrCodeServiceUnavailable ErrorCode = "SERVICE_UNAVAILABLE"
)

var retryableCodes = map[ErrorCode]bool{
	ErrCodeExternalService: true,
	ErrCodeTimeout:         true,
	ErrCodeRateLimited:     true,
}

// IsRetryableCode returns true if the error code indicates a retryable error.
func IsRetryableCode(code ErrorCode) bool {
	return retryableCodes[code]
}
