package openlibrary

import (
	"context"
	"fmt"
	"net/http"
)

// Cover-image service lookups. The covers host serves a 404 for missing
// images when asked with default=false, so existence is probed with a
// metadata-only HEAD request before a URL is trusted.

// CoverURLForISBN builds the public cover-service URL for an ISBN. The
// primary adapter derives its cover fallbacks with it so the service URL
// shape lives in one place.
func CoverURLForISBN(isbn string) string {
	return fmt.Sprintf("%s/b/isbn/%s-L.jpg", defaultCoversBaseURL, isbn)
}

// CoverURLByID builds the large-size cover URL for a numeric cover id.
func (c *Client) CoverURLByID(coverID int) string {
	return fmt.Sprintf("%s/b/id/%d-L.jpg", c.coversBaseURL, coverID)
}

// CoverURLByISBN builds the large-size cover URL for an ISBN.
func (c *Client) CoverURLByISBN(isbn string) string {
	return fmt.Sprintf("%s/b/isbn/%s-L.jpg", c.coversBaseURL, isbn)
}

// CoverURLByOLID builds the large-size cover URL for an OpenLibrary
// edition id.
func (c *Client) CoverURLByOLID(olid string) string {
	return fmt.Sprintf("%s/b/olid/%s-L.jpg", c.coversBaseURL, olid)
}

// CoverByISBN probes the cover service for an ISBN-keyed image and returns
// its URL, or an empty string when no cover exists.
func (c *Client) CoverByISBN(ctx context.Context, isbn string) (string, error) {
	return c.ProbeURL(ctx, c.CoverURLByISBN(isbn))
}

// CoverByOLID probes the cover service for an edition-keyed image and
// returns its URL, or an empty string when no cover exists.
func (c *Client) CoverByOLID(ctx context.Context, olid string) (string, error) {
	return c.ProbeURL(ctx, c.CoverURLByOLID(olid))
}

// ProbeURL verifies that a candidate cover URL resolves to an actual image
// and returns it, or an empty string on a miss.
func (c *Client) ProbeURL(ctx context.Context, coverURL string) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limit wait: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, coverURL+"?default=false", nil)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.getHTTPClient().Do(req)
	if err != nil {
		return "", fmt.Errorf("cover probe failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", nil
	}
	return coverURL, nil
}
