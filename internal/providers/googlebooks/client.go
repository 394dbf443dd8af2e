// Package googlebooks implements the primary provider adapter on top of the
// Google Books volumes API.
package googlebooks

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

const defaultBaseURL = "https://www.googleapis.com/books/v1"

// Client is the Google Books adapter. The zero value is not usable; create
// instances with New.
type Client struct {
	baseURL     string
	apiKey      string
	httpClient  *http.Client
	rateLimiter *ratelimit.Limiter
	clientOnce  sync.Once
	limiterOnce sync.Once

	// httpClientNew builds the lazy HTTP client; tests override it.
	httpClientNew func() *http.Client
}

// Compile-time check that Client implements providers.Adapter.
var _ providers.Adapter = (*Client)(nil)

// New creates a Google Books adapter. apiKey may be empty; the volumes API
// serves unauthenticated requests at a lower quota.
func New(apiKey string) *Client {
	return &Client{
		baseURL: defaultBaseURL,
		apiKey:  apiKey,
		httpClientNew: func() *http.Client {
			return &http.Client{Timeout: 10 * time.Second}
		},
	}
}

// NewWithBaseURL creates an adapter pointed at an alternate endpoint.
// Tests use this with httptest servers.
func NewWithBaseURL(apiKey, baseURL string, httpClient *http.Client) *Client {
	c := New(apiKey)
	c.baseURL = baseURL
	if httpClient != nil {
		c.httpClientNew = func() *http.Client { return httpClient }
	}
	return c
}

// Name identifies this provider in logs and record ID prefixes.
func (c *Client) Name() string {
	return "googlebooks"
}

// Ping probes the volumes endpoint with a minimal query.
func (c *Client) Ping(ctx context.Context) error {
	reqURL := fmt.Sprintf("%s/volumes?q=isbn:0140447938&maxResults=1", c.baseURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("creating ping request: %w", err)
	}

	resp, err := c.getHTTPClient().Do(req)
	if err != nil {
		return fmt.Errorf("google books ping failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("google books returned status %d", resp.StatusCode)
	}

	return nil
}

// Fetch runs the query against the volumes API. All provider failures are
// absorbed here and reported as ok=false; an empty result set with ok=true
// means the provider answered but found nothing.
func (c *Client) Fetch(ctx context.Context, query providers.Query) ([]bookmeta.Record, bool) {
	records, err := c.fetch(ctx, query)
	if err != nil {
		if liberrors.IsRateLimitError(err) {
			slog.Warn("Google Books rate limited, advancing fallback chain", "error", err)
		} else {
			slog.Warn("Google Books fetch failed", "error", err)
		}
		return nil, false
	}
	return records, true
}

func (c *Client) fetch(ctx context.Context, query providers.Query) ([]bookmeta.Record, error) {
	if err := c.getRateLimiter().Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	reqURL, err := c.buildURL(query)
	if err != nil {
		return nil, err
	}

	slog.Debug("Fetching from Google Books", "url_path", "/volumes", "limit", query.Limit())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.getHTTPClient().Do(req)
	if err != nil {
		return nil, fmt.Errorf("google books request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, liberrors.NewRateLimitError("google books returned 429")
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("google books returned non-200 status code: %d", resp.StatusCode)
	}

	var result volumesResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode google books response: %w", err)
	}

	if result.TotalItems == 0 || len(result.Items) == 0 {
		return []bookmeta.Record{}, nil
	}

	records := make([]bookmeta.Record, 0, len(result.Items))
	for _, item := range result.Items {
		records = append(records, mapVolume(item))
	}
	return records, nil
}

// buildURL assembles the volumes search URL from the query's field scoping.
func (c *Client) buildURL(query providers.Query) (string, error) {
	var terms []string
	if text := strings.TrimSpace(query.Text); text != "" {
		terms = append(terms, text)
	}
	if title := strings.TrimSpace(query.Title); title != "" {
		terms = append(terms, fmt.Sprintf("intitle:%q", title))
	}
	if author := strings.TrimSpace(query.Author); author != "" {
		terms = append(terms, fmt.Sprintf("inauthor:%q", author))
	}
	if len(terms) == 0 {
		return "", fmt.Errorf("query has no search terms")
	}

	params := url.Values{}
	params.Set("q", strings.Join(terms, " "))
	params.Set("maxResults", fmt.Sprintf("%d", query.Limit()))
	params.Set("printType", "books")
	if query.Language != "" {
		params.Set("langRestrict", query.Language)
	}
	if c.apiKey != "" {
		params.Set("key", c.apiKey)
	}

	return fmt.Sprintf("%s/volumes?%s", c.baseURL, params.Encode()), nil
}

func (c *Client) getHTTPClient() *http.Client {
	c.clientOnce.Do(func() {
		c.httpClient = c.httpClientNew()
	})
	return c.httpClient
}

func (c *Client) getRateLimiter() *ratelimit.Limiter {
	c.limiterOnce.Do(func() {
		c.rateLimiter = ratelimit.New("GoogleBooks", 5)
	})
	return c.rateLimiter
}
