package apicache

import (
	"sort"
	"strings"
)

// Key derivation is a pure function of a query's semantic identity, so two
// requests for the same logical data always collide on one cache entry.

// SearchKey derives the cache key for a free-text search query.
func SearchKey(text string) string {
	return "search:" + strings.ToLower(strings.TrimSpace(text))
}

// AuthorKey derives the cache key for an author bibliography lookup.
func AuthorKey(name string) string {
	return "author:" + strings.ToLower(strings.TrimSpace(name))
}

// RecommendationKey derives the cache key for a multi-parameter
// recommendation query. Each parameter list is normalized and sorted before
// joining so permuted-but-equal inputs produce the same key.
func RecommendationKey(authors, genres, languages []string) string {
	parts := []string{
		"recommend",
		joinSorted(authors),
		joinSorted(genres),
		joinSorted(languages),
	}
	return strings.Join(parts, ":")
}

func joinSorted(values []string) string {
	normalized := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.ToLower(strings.TrimSpace(v))
		if v != "" {
			normalized = append(normalized, v)
		}
	}
	sort.Strings(normalized)
	return strings.Join(normalized, ",")
}
