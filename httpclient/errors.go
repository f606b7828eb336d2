package httpclient

import (
	"fmt"
	"net/http"

	"github.com/kbukum/podscribe/errors"
)

const maxErrorBody = 512

// classifyStatus maps a non-2xx response onto an AppError. It returns nil
// for 2xx.
func classifyStatus(service string, status int, body []byte) *errors.AppError {
	if status >= 200 && status < 300 {
		return nil
	}

	var appErr *errors.AppError
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		appErr = errors.Unauthorized(fmt.Sprintf("The %s service rejected the credential.", service))
	case status == http.StatusTooManyRequests:
		appErr = errors.RateLimited(service)
	case status >= 500:
		appErr = errors.ExternalServiceError(service, fmt.Errorf("HTTP %d", status))
	default:
		appErr = errors.ExternalServiceError(service, fmt.Errorf("HTTP %d", status))
		appErr.Retryable = false
	}
	appErr.WithDetail("status", status)
	if len(body) > 0 {
		appErr.WithDetail("body", truncate(string(body), maxErrorBody))
	}
	return appErr
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
