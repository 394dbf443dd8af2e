// Package dedup collapses records describing the same work across
// providers and pages.
package dedup

import (
	"log/slog"
	"strings"

	"github.com/lepinkainen/libris/internal/bookmeta"
)

// Marketing markers for non-canonical editions. A record carrying one in
// its title or description is dropped outright, never considered as a
// duplicate-resolution candidate.
var marketingMarkers = []string{
	"free preview",
	"sample chapter",
	"sample",
}

// Deduplicate filters and collapses a concatenated multi-provider batch.
// First record observed for a dedup key wins; provider call order is the
// implicit priority for whose fields survive a collision. When
// targetLanguages is non-empty, records outside that set are filtered by
// the same pass; membership is a set check, so the list's order never
// affects the output.
func Deduplicate(records []bookmeta.Record, targetLanguages []string) []bookmeta.Record {
	wanted := make(map[string]bool, len(targetLanguages))
	for _, lang := range targetLanguages {
		if lang = strings.ToLower(strings.TrimSpace(lang)); lang != "" {
			wanted[lang] = true
		}
	}

	seen := make(map[string]bool, len(records))
	out := make([]bookmeta.Record, 0, len(records))
	for _, record := range records {
		if isNonCanonical(record) {
			slog.Debug("Dropping non-canonical edition", "id", record.ID, "title", record.Title)
			continue
		}
		if len(wanted) > 0 && !wanted[record.Language] {
			slog.Debug("Dropping off-language record", "id", record.ID, "language", record.Language)
			continue
		}

		key := bookmeta.DedupKey(record.Title, record.PrimaryAuthor)
		if seen[key] {
			slog.Debug("Dropping duplicate record", "id", record.ID, "key", key)
			continue
		}
		seen[key] = true
		out = append(out, record)
	}
	return out
}

func isNonCanonical(record bookmeta.Record) bool {
	title := strings.ToLower(record.Title)
	description := strings.ToLower(record.Description)
	for _, marker := range marketingMarkers {
		if strings.Contains(title, marker) || strings.Contains(description, marker) {
			return true
		}
	}
	return false
}
