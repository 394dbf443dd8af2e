// Package enrich implements the best-effort pass that fills missing
// description and cover fields from the secondary work and cover services.
package enrich

import (
	"context"
	"log/slog"
	"time"

	"github.com/lepinkainen/libris/internal/bookmeta"
	"github.com/lepinkainen/libris/internal/ratelimit"
)

// Defaults. The batch bound caps secondary traffic per aggregated result;
// the pace keeps sequential calls under provider rate limits.
const (
	DefaultBatchLimit = 12
	DefaultPace       = 150 * time.Millisecond

	// minGoodDescription is the length below which a description is
	// treated as a short placeholder (e.g. a first-sentence stand-in)
	// and therefore still improvable.
	minGoodDescription = 160
)

// DescriptionSource looks up work descriptions, by ISBN first and by
// title+author as a fallback. Empty string means "nothing found".
type DescriptionSource interface {
	DescriptionByISBN(ctx context.Context, isbn string) (string, error)
	DescriptionByTitleAuthor(ctx context.Context, title, author string) (string, error)
}

// CoverSource resolves cover images: direct ISBN lookup and verification
// of pre-derived candidate URLs. Empty string means "no image exists".
type CoverSource interface {
	CoverByISBN(ctx context.Context, isbn string) (string, error)
	ProbeURL(ctx context.Context, coverURL string) (string, error)
}

// Enricher fills description/cover gaps on a batch of records. Failures
// are swallowed per record; enrichment never fails the overall batch.
type Enricher struct {
	descriptions DescriptionSource
	covers       CoverSource
	batchLimit   int
	pace         time.Duration

	// sleep is injectable so tests can observe pacing without waiting.
	sleep func(time.Duration)
}

// New creates an enricher with the default batch bound and pacing.
func New(descriptions DescriptionSource, covers CoverSource) *Enricher {
	return &Enricher{
		descriptions: descriptions,
		covers:       covers,
		batchLimit:   DefaultBatchLimit,
		pace:         DefaultPace,
		sleep:        time.Sleep,
	}
}

// WithBatchLimit overrides how many records one batch may enrich.
func (e *Enricher) WithBatchLimit(limit int) *Enricher {
	if limit > 0 {
		e.batchLimit = limit
	}
	return e
}

// WithPace overrides the inter-call delay.
func (e *Enricher) WithPace(pace time.Duration) *Enricher {
	e.pace = pace
	return e
}

// WithSleep overrides the sleep function (tests only).
func (e *Enricher) WithSleep(sleep func(time.Duration)) *Enricher {
	e.sleep = sleep
	return e
}

// Enrich processes the batch in place and returns it. Only records still
// missing a description or cover are touched, up to the batch limit.
// Between successive network calls a deliberate pacing delay is enforced;
// it is rate-limit avoidance, not a performance knob, and is never elided.
func (e *Enricher) Enrich(ctx context.Context, records []bookmeta.Record) []bookmeta.Record {
	pacer := ratelimit.NewPacerWithSleep(e.pace, e.sleep)

	attempted := 0
	for i := range records {
		if attempted >= e.batchLimit {
			slog.Debug("Enrichment batch limit reached", "limit", e.batchLimit)
			break
		}
		record := &records[i]
		needsDesc := needsDescription(record)
		needsCover := record.CoverURL == ""
		if !needsDesc && !needsCover {
			continue
		}
		attempted++

		if needsDesc {
			e.fillDescription(ctx, pacer, record)
		}
		if needsCover {
			e.fillCover(ctx, pacer, record)
		}
	}
	return records
}

// needsDescription reports whether the description is absent or a short
// placeholder worth trying to improve.
func needsDescription(record *bookmeta.Record) bool {
	return len(record.Description) < minGoodDescription
}

// fillDescription tries ISBN first, then title+author. A fetched value is
// applied only when non-empty and strictly longer than the current one.
func (e *Enricher) fillDescription(ctx context.Context, pacer *ratelimit.Pacer, record *bookmeta.Record) {
	if record.ISBN != "" {
		if err := pacer.Wait(ctx); err != nil {
			return
		}
		desc, err := e.descriptions.DescriptionByISBN(ctx, bookmeta.NormalizeISBN(record.ISBN))
		if err != nil {
			slog.Debug("Description lookup by ISBN failed", "id", record.ID, "error", err)
		} else if applyDescription(record, desc) {
			return
		}
	}

	if record.Title == "" || record.Title == bookmeta.UnknownTitle {
		return
	}
	if err := pacer.Wait(ctx); err != nil {
		return
	}
	desc, err := e.descriptions.DescriptionByTitleAuthor(ctx, record.Title, record.PrimaryAuthor)
	if err != nil {
		slog.Debug("Description lookup by title failed", "id", record.ID, "error", err)
		return
	}
	applyDescription(record, desc)
}

func applyDescription(record *bookmeta.Record, desc string) bool {
	if desc == "" || len(desc) <= len(record.Description) {
		return false
	}
	record.Description = desc
	return true
}

// fillCover tries a direct ISBN cover lookup, then verifies any pre-derived
// fallback URLs in strategy order.
func (e *Enricher) fillCover(ctx context.Context, pacer *ratelimit.Pacer, record *bookmeta.Record) {
	if record.ISBN != "" {
		if err := pacer.Wait(ctx); err != nil {
			return
		}
		coverURL, err := e.covers.CoverByISBN(ctx, bookmeta.NormalizeISBN(record.ISBN))
		if err != nil {
			slog.Debug("Cover lookup by ISBN failed", "id", record.ID, "error", err)
		} else if coverURL != "" {
			record.CoverURL = bookmeta.SecureURL(coverURL)
			return
		}
	}

	for _, strategy := range []string{bookmeta.CoverStrategyISBN, bookmeta.CoverStrategyOLID} {
		candidate, ok := record.CoverFallbacks[strategy]
		if !ok || candidate == "" {
			continue
		}
		if err := pacer.Wait(ctx); err != nil {
			return
		}
		coverURL, err := e.covers.ProbeURL(ctx, candidate)
		if err != nil {
			slog.Debug("Cover fallback probe failed", "id", record.ID, "strategy", strategy, "error", err)
			continue
		}
		if coverURL != "" {
			record.CoverURL = bookmeta.SecureURL(coverURL)
			return
		}
	}
}
