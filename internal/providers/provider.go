// Package providers defines the adapter contract every external catalog
// provider is wrapped in. Adapters absorb all provider-specific failure
// modes locally; the fallback orchestrator only ever sees the
// (records, ok) pair.
package providers

import (
	"context"
	"strings"

	"github.com/lepinkainen/libris/internal/bookmeta"
)

// Result-count bounds. MaxResults outside this range is clamped, never
// rejected.
const (
	MinResults     = 1
	MaxResults     = 40
	DefaultResults = 10
)

// Query is the logical query passed to every adapter. Exactly which fields
// an adapter honors depends on the provider's search surface; unused fields
// are ignored.
type Query struct {
	// Text is a free-text search string.
	Text string

	// Title and Author scope the search to specific fields when set.
	Title  string
	Author string

	// Language restricts results to a 2-letter language code when set.
	Language string

	// MaxResults bounds the result count; zero means DefaultResults.
	MaxResults int
}

// Limit returns MaxResults clamped to the safe range.
func (q Query) Limit() int {
	switch {
	case q.MaxResults <= 0:
		return DefaultResults
	case q.MaxResults < MinResults:
		return MinResults
	case q.MaxResults > MaxResults:
		return MaxResults
	default:
		return q.MaxResults
	}
}

// IsEmpty reports whether the query carries no usable search terms.
func (q Query) IsEmpty() bool {
	return strings.TrimSpace(q.Text) == "" &&
		strings.TrimSpace(q.Title) == "" &&
		strings.TrimSpace(q.Author) == ""
}

// Adapter converts a provider-specific response into normalized records.
//
// ok=false signals the provider itself failed (network error, non-2xx,
// malformed body, timeout) and must never be conflated with "zero results
// found" (ok=true, empty slice): the orchestrator treats the two
// identically for fallback purposes but they are distinct outcomes.
// Adapters never return errors or panic; failures are logged and absorbed.
type Adapter interface {
	// Name identifies the provider in logs and record ID prefixes.
	Name() string

	// Fetch runs the query against the provider.
	Fetch(ctx context.Context, query Query) (records []bookmeta.Record, ok bool)

	// Ping probes provider reachability for health checks.
	Ping(ctx context.Context) error
}
