// Package bookmeta defines the canonical book metadata record that every
// provider adapter maps into, plus the normalization helpers shared by the
// adapters and the enrichment pass.
package bookmeta

// Sentinel values used when a provider omits a required field.
// Substituting them keeps downstream dedup keys well-formed.
const (
	UnknownTitle  = "Unknown Title"
	UnknownAuthor = "Unknown Author"
	UnknownDate   = "Unknown Date"
)

// Cover fallback strategy names, keys into Record.CoverFallbacks.
const (
	CoverStrategyISBN = "isbn"
	CoverStrategyOLID = "olid"
)

// Record is the provider-agnostic book metadata shape. It is the only type
// exchanged between adapters, the cache, the deduplicator and the enricher.
type Record struct {
	// ID is stable per source record, prefixed with the provider name
	// ("gb:...", "ol:...") to avoid cross-provider collisions.
	ID string `json:"id"`

	Title         string   `json:"title"`
	PrimaryAuthor string   `json:"primaryAuthor"`
	Authors       []string `json:"authors"`

	// PublishedDate is always either UnknownDate or YYYY-MM-DD.
	PublishedDate string `json:"publishedDate"`

	Description string `json:"description"`

	// CoverURL is https-only when non-empty.
	CoverURL string `json:"coverUrl"`

	// ISBN has hyphens stripped when used as a lookup key; prefer ISBN-13.
	ISBN string `json:"isbn"`

	// Language is a lowercase two-letter code, never empty ("en" default).
	Language string `json:"language"`

	Publisher  string   `json:"publisher"`
	Categories []string `json:"categories"`
	PageCount  int      `json:"pageCount"`

	// CoverFallbacks maps a strategy name to a candidate cover URL, consulted
	// only while CoverURL is empty.
	CoverFallbacks map[string]string `json:"coverFallbackUrls,omitempty"`
}

// Clone returns a deep copy of the record. The cache hands out clones so
// callers can never mutate a stored batch in place.
func (r Record) Clone() Record {
	out := r
	if r.Authors != nil {
		out.Authors = append([]string(nil), r.Authors...)
	}
	if r.Categories != nil {
		out.Categories = append([]string(nil), r.Categories...)
	}
	if r.CoverFallbacks != nil {
		out.CoverFallbacks = make(map[string]string, len(r.CoverFallbacks))
		for k, v := range r.CoverFallbacks {
			out.CoverFallbacks[k] = v
		}
	}
	return out
}

// CloneBatch deep-copies a slice of records.
func CloneBatch(records []Record) []Record {
	if records == nil {
		return nil
	}
	out := make([]Record, len(records))
	for i, r := range records {
		out[i] = r.Clone()
	}
	return out
}

// Finalize applies the sentinel and normalization invariants to a record
// after provider-specific mapping. Adapters call it as their last step so
// every record leaving an adapter satisfies the model contract.
func (r *Record) Finalize() {
	if r.Title == "" {
		r.Title = UnknownTitle
	}
	if r.PrimaryAuthor == "" {
		if len(r.Authors) > 0 && r.Authors[0] != "" {
			r.PrimaryAuthor = r.Authors[0]
		} else {
			r.PrimaryAuthor = UnknownAuthor
		}
	}
	if len(r.Authors) == 0 {
		r.Authors = []string{r.PrimaryAuthor}
	}
	r.PublishedDate = NormalizeDate(r.PublishedDate)
	r.Language = NormalizeLanguage(r.Language)
	r.ISBN = NormalizeISBN(r.ISBN)
	r.CoverURL = SecureURL(r.CoverURL)
	for k, v := range r.CoverFallbacks {
		r.CoverFallbacks[k] = SecureURL(v)
	}
	if r.PageCount < 0 {
		r.PageCount = 0
	}
}
