package errors

import (
	stdErrors "errors"
	"fmt"
	"time"
)

// RateLimitError marks a provider 429 so the orchestrator advances the
// fallback chain instead of retrying the same provider within a query.
type RateLimitError struct {
	Message    string
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("%s (retry after %s)", e.Message, e.RetryAfter)
	}
	return e.Message
}

// NewRateLimitError creates a RateLimitError with the given message.
func NewRateLimitError(message string) *RateLimitError {
	return &RateLimitError{Message: message}
}

// NewRateLimitErrorWithRetry creates a RateLimitError carrying the
// provider-suggested retry delay.
func NewRateLimitErrorWithRetry(message string, retryAfter time.Duration) *RateLimitError {
	return &RateLimitError{Message: message, RetryAfter: retryAfter}
}

// IsRateLimitError reports whether err is a RateLimitError (even when wrapped).
func IsRateLimitError(err error) bool {
	var rlErr *RateLimitError
	return stdErrors.As(err, &rlErr)
}

// IsInvalidQueryError reports whether err is an InvalidQueryError (even when wrapped).
func IsInvalidQueryError(err error) bool {
	var qErr *InvalidQueryError
	return stdErrors.As(err, &qErr)
}
