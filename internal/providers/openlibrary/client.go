// Package openlibrary implements the secondary catalog adapter on top of
// the OpenLibrary search API, plus the work-detail and cover-image services
// the enrichment pass uses.
package openlibrary

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/lepinkainen/libris/internal/bookmeta"
	liberrors "github.com/lepinkainen/libris/internal/errors"
	"github.com/lepinkainen/libris/internal/providers"
	"github.com/lepinkainen/libris/internal/ratelimit"
)

const (
	defaultBaseURL       = "https://openlibrary.org"
	defaultCoversBaseURL = "https://covers.openlibrary.org"
)

// Shared rate limiter for all OpenLibrary traffic (1 req/sec), matching the
// API's fair-use guidance. Search, work and cover lookups all draw from it.
var (
	olRateLimiter   *ratelimit.Limiter
	rateLimiterOnce sync.Once
)

func getRateLimiter() *ratelimit.Limiter {
	rateLimiterOnce.Do(func() {
		olRateLimiter = ratelimit.New("OpenLibrary", 1)
	})
	return olRateLimiter
}

// Client is the OpenLibrary adapter and service client.
type Client struct {
	baseURL       string
	coversBaseURL string
	httpClient    *http.Client
	clientOnce    sync.Once
	httpClientNew func() *http.Client
	limiter       *ratelimit.Limiter
}

// Compile-time check that Client implements providers.Adapter.
var _ providers.Adapter = (*Client)(nil)

// New creates an OpenLibrary client against the public endpoints.
func New() *Client {
	return &Client{
		baseURL:       defaultBaseURL,
		coversBaseURL: defaultCoversBaseURL,
		httpClientNew: func() *http.Client {
			return &http.Client{Timeout: 10 * time.Second}
		},
		limiter: getRateLimiter(),
	}
}

// NewWithBaseURLs creates a client pointed at alternate endpoints.
// Tests use this with httptest servers and an unthrottled limiter.
func NewWithBaseURLs(baseURL, coversBaseURL string, httpClient *http.Client) *Client {
	c := New()
	c.baseURL = baseURL
	c.coversBaseURL = coversBaseURL
	if httpClient != nil {
		c.httpClientNew = func() *http.Client { return httpClient }
	}
	c.limiter = ratelimit.NewWithBurst("OpenLibrary-test", 1000, 1000)
	return c
}

// Name identifies this provider in logs and record ID prefixes.
func (c *Client) Name() string {
	return "openlibrary"
}

// Ping probes the OpenLibrary root.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL, nil)
	if err != nil {
		return fmt.Errorf("creating ping request: %w", err)
	}

	resp, err := c.getHTTPClient().Do(req)
	if err != nil {
		return fmt.Errorf("openlibrary ping failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("openlibrary returned status %d", resp.StatusCode)
	}

	return nil
}

// Fetch runs the query against search.json. Provider failures are absorbed
// and reported as ok=false.
func (c *Client) Fetch(ctx context.Context, query providers.Query) ([]bookmeta.Record, bool) {
	records, err := c.search(ctx, query)
	if err != nil {
		if liberrors.IsRateLimitError(err) {
			slog.Warn("OpenLibrary rate limited, advancing fallback chain", "error", err)
		} else {
			slog.Warn("OpenLibrary fetch failed", "error", err)
		}
		return nil, false
	}
	return records, true
}

func (c *Client) search(ctx context.Context, query providers.Query) ([]bookmeta.Record, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	params := url.Values{}
	switch {
	case strings.TrimSpace(query.Title) != "" || strings.TrimSpace(query.Author) != "":
		if title := strings.TrimSpace(query.Title); title != "" {
			params.Set("title", title)
		}
		if author := strings.TrimSpace(query.Author); author != "" {
			params.Set("author", author)
		}
	case strings.TrimSpace(query.Text) != "":
		params.Set("q", strings.TrimSpace(query.Text))
	default:
		return nil, fmt.Errorf("query has no search terms")
	}
	if query.Language != "" {
		params.Set("language", olSearchLanguage(query.Language))
	}
	params.Set("limit", fmt.Sprintf("%d", query.Limit()))

	reqURL := fmt.Sprintf("%s/search.json?%s", c.baseURL, params.Encode())
	slog.Debug("Fetching from OpenLibrary", "url_path", "/search.json", "limit", query.Limit())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.getHTTPClient().Do(req)
	if err != nil {
		return nil, fmt.Errorf("openlibrary request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, liberrors.NewRateLimitError("openlibrary returned 429")
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("openlibrary returned non-200 status code: %d", resp.StatusCode)
	}

	var result searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode openlibrary response: %w", err)
	}

	if len(result.Docs) == 0 {
		return []bookmeta.Record{}, nil
	}

	records := make([]bookmeta.Record, 0, len(result.Docs))
	for _, doc := range result.Docs {
		records = append(records, c.mapDoc(doc))
	}
	return records, nil
}

// olSearchLanguage converts a 2-letter code to the 3-letter code the
// OpenLibrary search index uses.
func olSearchLanguage(lang string) string {
	codes := map[string]string{
		"en": "eng", "fr": "fre", "de": "ger", "es": "spa", "it": "ita",
		"fi": "fin", "sv": "swe", "ja": "jpn", "ru": "rus", "pt": "por",
		"nl": "dut", "pl": "pol", "zh": "chi",
	}
	if code, ok := codes[strings.ToLower(lang)]; ok {
		return code
	}
	return strings.ToLower(lang)
}

func (c *Client) getHTTPClient() *http.Client {
	c.clientOnce.Do(func() {
		c.httpClient = c.httpClientNew()
	})
	return c.httpClient
}
