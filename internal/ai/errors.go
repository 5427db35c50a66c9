package ai

import (
	"fmt"
	"net/http"
	"strings"
)

// QuotaError reports that a provider rejected a request because of quota
// or rate-limit exhaustion. Callers detect it with errors.As and apply
// their own fallback policy instead of failing outright.
type QuotaError struct {
	Provider   string
	StatusCode int
	Body       string
}

func (e *QuotaError) Error() string {
	return fmt.Sprintf("%s: quota or rate limit exhausted (status %d)", e.Provider, e.StatusCode)
}

// quotaExhausted reports whether an HTTP error response signals quota or
// rate-limit exhaustion rather than a genuine failure.
func quotaExhausted(statusCode int, body string) bool {
	if statusCode == http.StatusTooManyRequests {
		return true
	}
	return strings.Contains(body, "insufficient_quota") ||
		strings.Contains(body, "rate_limit_exceeded") ||
		strings.Contains(body, "RESOURCE_EXHAUSTED")
}
