// Package errors defines the small error taxonomy of the aggregation core.
// Only InvalidQueryError crosses the core boundary; provider failures are
// absorbed inside the adapters and resolved via fallback.
package errors

import "fmt"

// InvalidQueryError reports a malformed or missing-required-parameter query.
// It is the only error class the aggregator surfaces to callers.
type InvalidQueryError struct {
	Param  string
	Reason string
}

func (e *InvalidQueryError) Error() string {
	if e.Param != "" {
		return fmt.Sprintf("invalid query: %s: %s", e.Param, e.Reason)
	}
	return fmt.Sprintf("invalid query: %s", e.Reason)
}

// NewInvalidQueryError creates an InvalidQueryError for the given parameter.
func NewInvalidQueryError(param, reason string) *InvalidQueryError {
	return &InvalidQueryError{Param: param, Reason: reason}
}
