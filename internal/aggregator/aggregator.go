// Package aggregator sequences the provider fallback chain for each
// logical query, consulting and populating the response cache, and running
// deduplication and enrichment over the combined result set.
package aggregator

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/lepinkainen/libris/internal/apicache"
	"github.com/lepinkainen/libris/internal/bookmeta"
	"github.com/lepinkainen/libris/internal/dedup"
	"github.com/lepinkainen/libris/internal/enrich"
	liberrors "github.com/lepinkainen/libris/internal/errors"
	"github.com/lepinkainen/libris/internal/providers"
)

// Service aggregates book metadata from an ordered provider chain. It is
// safe for concurrent use; concurrent callers that miss the cache on the
// same key share a single in-flight fetch.
type Service struct {
	cache    *apicache.Cache
	chain    []providers.Adapter
	enricher *enrich.Enricher
	group    singleflight.Group
}

// New creates a Service. The chain is consulted strictly in order,
// primary first. enricher may be nil to disable the enrichment pass.
func New(cache *apicache.Cache, chain []providers.Adapter, enricher *enrich.Enricher) *Service {
	return &Service{
		cache:    cache,
		chain:    chain,
		enricher: enricher,
	}
}

// RecommendQuery is the multi-parameter recommendation request: combined
// author bibliographies filtered by genre and language.
type RecommendQuery struct {
	Authors    []string
	Genres     []string
	Languages  []string
	MaxResults int
}

// Search aggregates results for a free-text query. An empty result set is
// an ordinary outcome, never an error; only a malformed query fails.
func (s *Service) Search(ctx context.Context, text string, maxResults int) ([]bookmeta.Record, error) {
	if strings.TrimSpace(text) == "" {
		return nil, liberrors.NewInvalidQueryError("text", "must not be empty")
	}

	key := apicache.SearchKey(text)
	query := providers.Query{Text: text, MaxResults: maxResults}
	records, err := s.aggregate(ctx, key, apicache.SearchTTL, func(ctx context.Context) []bookmeta.Record {
		return dedup.Deduplicate(s.walkChain(ctx, query), nil)
	})
	if err != nil {
		return nil, err
	}
	return clampBatch(records, query.Limit()), nil
}

// ByAuthor aggregates an author's book listing.
func (s *Service) ByAuthor(ctx context.Context, author string, maxResults int) ([]bookmeta.Record, error) {
	if strings.TrimSpace(author) == "" {
		return nil, liberrors.NewInvalidQueryError("author", "must not be empty")
	}

	key := apicache.AuthorKey(author)
	query := providers.Query{Author: author, MaxResults: maxResults}
	records, err := s.aggregate(ctx, key, apicache.AuthorTTL, func(ctx context.Context) []bookmeta.Record {
		return dedup.Deduplicate(s.walkChain(ctx, query), nil)
	})
	if err != nil {
		return nil, err
	}
	return clampBatch(records, query.Limit()), nil
}

// Recommend combines the bibliographies of several authors, filtered by
// genre and language. The most expensive query class: one fallback-chain
// walk per author. Every parameter list is treated as a set, matching the
// order-insensitive cache key, so permuted-but-equal queries always
// compute the same batch. The provider-level language restriction is only
// applied when the query names exactly one language; with several, the
// filtering happens locally against the whole set.
func (s *Service) Recommend(ctx context.Context, query RecommendQuery) ([]bookmeta.Record, error) {
	authors := trimNonEmpty(query.Authors)
	if len(authors) == 0 {
		return nil, liberrors.NewInvalidQueryError("authors", "at least one author is required")
	}

	languages := normalizeLanguages(query.Languages)
	providerLanguage := ""
	if len(languages) == 1 {
		providerLanguage = languages[0]
	}

	key := apicache.RecommendationKey(query.Authors, query.Genres, query.Languages)
	limit := providers.Query{MaxResults: query.MaxResults}.Limit()

	records, err := s.aggregate(ctx, key, apicache.RecommendationTTL, func(ctx context.Context) []bookmeta.Record {
		var combined []bookmeta.Record
		for _, author := range authors {
			perAuthor := providers.Query{
				Author:     author,
				Language:   providerLanguage,
				MaxResults: limit,
			}
			combined = append(combined, s.walkChain(ctx, perAuthor)...)
		}

		records := dedup.Deduplicate(combined, languages)
		return filterByGenres(records, query.Genres)
	})
	if err != nil {
		return nil, err
	}
	return clampBatch(records, limit), nil
}

// CheckProviders pings every adapter in the chain and reports reachability
// per provider name.
func (s *Service) CheckProviders(ctx context.Context) map[string]error {
	results := make(map[string]error, len(s.chain))
	for _, adapter := range s.chain {
		results[adapter.Name()] = adapter.Ping(ctx)
	}
	return results
}

// aggregate is the shared cache-then-fetch path. fetch runs at most once
// per key across concurrent callers; everyone gets an owned copy.
func (s *Service) aggregate(ctx context.Context, key string, ttl time.Duration, fetch func(context.Context) []bookmeta.Record) ([]bookmeta.Record, error) {
	result, err, shared := s.group.Do(key, func() (any, error) {
		if cached, ok := s.cache.Get(key); ok {
			return cached, nil
		}

		records := fetch(ctx)
		if s.enricher != nil {
			records = s.enricher.Enrich(ctx, records)
		}
		if records == nil {
			records = []bookmeta.Record{}
		}

		s.cache.Set(key, records, ttl)
		slog.Debug("Aggregated query", "key", key, "records", len(records))
		return records, nil
	})
	if err != nil {
		// The fetch closure never returns an error; keep the contract anyway.
		return nil, err
	}

	records := result.([]bookmeta.Record)
	if shared {
		slog.Debug("Coalesced concurrent fetch", "key", key)
	}
	return bookmeta.CloneBatch(records), nil
}

// walkChain consults providers strictly in priority order, advancing on
// failure (ok=false, including rate limits and timeouts) or on an empty
// result, and short-circuiting on the first success-with-results. No
// provider is ever retried within one query.
func (s *Service) walkChain(ctx context.Context, query providers.Query) []bookmeta.Record {
	for i, adapter := range s.chain {
		records, ok := adapter.Fetch(ctx, query)
		switch {
		case ok && len(records) > 0:
			slog.Debug("Provider returned results", "provider", adapter.Name(), "records", len(records))
			return records
		case ok:
			slog.Debug("Provider returned no results, advancing", "provider", adapter.Name(), "remaining", len(s.chain)-i-1)
		default:
			slog.Debug("Provider failed, advancing", "provider", adapter.Name(), "remaining", len(s.chain)-i-1)
		}
	}
	return nil
}

// filterByGenres keeps records whose categories match at least one of the
// requested genres (case-insensitive substring match on category names).
func filterByGenres(records []bookmeta.Record, genres []string) []bookmeta.Record {
	wanted := trimNonEmpty(genres)
	if len(wanted) == 0 {
		return records
	}
	for i, genre := range wanted {
		wanted[i] = strings.ToLower(genre)
	}

	out := make([]bookmeta.Record, 0, len(records))
	for _, record := range records {
		if matchesAnyGenre(record.Categories, wanted) {
			out = append(out, record)
		}
	}
	return out
}

func matchesAnyGenre(categories, wanted []string) bool {
	for _, category := range categories {
		lower := strings.ToLower(category)
		for _, genre := range wanted {
			if strings.Contains(lower, genre) {
				return true
			}
		}
	}
	return false
}

// clampBatch bounds the batch handed back to the caller. The cache keeps
// the full batch so callers asking for more under the same key are not
// short-changed by an earlier, smaller request.
func clampBatch(records []bookmeta.Record, limit int) []bookmeta.Record {
	if len(records) > limit {
		return records[:limit]
	}
	return records
}

// normalizeLanguages maps the requested language list to normalized
// two-letter codes with duplicates removed.
func normalizeLanguages(values []string) []string {
	out := make([]string, 0, len(values))
	seen := make(map[string]bool, len(values))
	for _, v := range trimNonEmpty(values) {
		lang := bookmeta.NormalizeLanguage(v)
		if !seen[lang] {
			seen[lang] = true
			out = append(out, lang)
		}
	}
	return out
}

func trimNonEmpty(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
