package openlibrary

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// Work-detail lookups used by the enrichment pass to fill in missing
// descriptions: ISBN first (edition, then its work), then title+author search.

// DescriptionByISBN resolves an ISBN to its work record and returns the
// work's description, or an empty string when nothing usable exists.
func (c *Client) DescriptionByISBN(ctx context.Context, isbn string) (string, error) {
	edition, err := c.fetchEdition(ctx, isbn)
	if err != nil {
		return "", err
	}

	// Some editions carry a description of their own.
	if desc := extractDescription(edition.Description); desc != "" {
		return desc, nil
	}

	if len(edition.Works) == 0 {
		return "", nil
	}
	return c.descriptionByWorkKey(ctx, edition.Works[0].Key)
}

// DescriptionByTitleAuthor searches for the work by title and author and
// returns its description, or an empty string when the search finds nothing.
func (c *Client) DescriptionByTitleAuthor(ctx context.Context, title, author string) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limit wait: %w", err)
	}

	params := url.Values{}
	params.Set("title", strings.TrimSpace(title))
	params.Set("author", strings.TrimSpace(author))
	params.Set("limit", "1")

	reqURL := fmt.Sprintf("%s/search.json?%s", c.baseURL, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.getHTTPClient().Do(req)
	if err != nil {
		return "", fmt.Errorf("work search failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("work search returned status %d", resp.StatusCode)
	}

	var result searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("failed to decode work search response: %w", err)
	}

	if len(result.Docs) == 0 || result.Docs[0].Key == "" {
		return "", nil
	}
	return c.descriptionByWorkKey(ctx, result.Docs[0].Key)
}

func (c *Client) fetchEdition(ctx context.Context, isbn string) (*editionResponse, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	reqURL := fmt.Sprintf("%s/isbn/%s.json", c.baseURL, isbn)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.getHTTPClient().Do(req)
	if err != nil {
		return nil, fmt.Errorf("edition request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("edition request returned status %d", resp.StatusCode)
	}

	var edition editionResponse
	if err := json.NewDecoder(resp.Body).Decode(&edition); err != nil {
		return nil, fmt.Errorf("failed to decode edition: %w", err)
	}
	return &edition, nil
}

// descriptionByWorkKey fetches /works/{id}.json and extracts the
// description field. key may arrive with or without the "/works/" prefix.
func (c *Client) descriptionByWorkKey(ctx context.Context, key string) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limit wait: %w", err)
	}

	key = strings.TrimPrefix(key, "/works/")
	reqURL := fmt.Sprintf("%s/works/%s.json", c.baseURL, key)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.getHTTPClient().Do(req)
	if err != nil {
		return "", fmt.Errorf("work request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("work request returned status %d", resp.StatusCode)
	}

	var work workResponse
	if err := json.NewDecoder(resp.Body).Decode(&work); err != nil {
		return "", fmt.Errorf("failed to decode work: %w", err)
	}

	return extractDescription(work.Description), nil
}

// extractDescription handles the two forms the description field takes:
// a plain string or a {"value": ...} wrapper.
func extractDescription(desc any) string {
	switch v := desc.(type) {
	case string:
		return strings.TrimSpace(v)
	case map[string]any:
		if value, ok := v["value"].(string); ok {
			return strings.TrimSpace(value)
		}
	}
	return ""
}
