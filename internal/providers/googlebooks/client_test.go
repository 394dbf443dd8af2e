package googlebooks

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lepinkainen/libris/internal/bookmeta"
	"github.com/lepinkainen/libris/internal/providers"
	"github.com/lepinkainen/libris/internal/testutil"
)

const duneVolume = `{
	"totalItems": 1,
	"items": [{
		"id": "B1MsMQAACAAJ",
		"volumeInfo": {
			"title": "Dune",
			"authors": ["Frank Herbert"],
			"publisher": "Chilton Books",
			"publishedDate": "1965",
			"description": "Science fiction's supreme masterpiece.",
			"pageCount": 412,
			"categories": ["Fiction", "Science Fiction"],
			"language": "en",
			"industryIdentifiers": [
				{"type": "ISBN_10", "identifier": "0441172717"},
				{"type": "ISBN_13", "identifier": "9780441172719"}
			],
			"imageLinks": {
				"thumbnail": "http://books.google.com/books/content?id=B1&zoom=1",
				"smallThumbnail": "http://books.google.com/books/content?id=B1&zoom=5"
			}
		}
	}]
}`

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	server := testutil.NewIPv4Server(t, handler)
	return NewWithBaseURL("", server.URL, server.Client())
}

func TestFetchMapsVolume(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/volumes", func(w http.ResponseWriter, r *http.Request) {
		require.Contains(t, r.URL.Query().Get("q"), "dune")
		require.Equal(t, "10", r.URL.Query().Get("maxResults"))
		_, _ = w.Write([]byte(duneVolume))
	})

	client := newTestClient(t, mux)
	records, ok := client.Fetch(context.Background(), providers.Query{Text: "dune"})

	require.True(t, ok)
	require.Len(t, records, 1)

	record := records[0]
	require.Equal(t, "gb:B1MsMQAACAAJ", record.ID)
	require.Equal(t, "Dune", record.Title)
	require.Equal(t, "Frank Herbert", record.PrimaryAuthor)
	require.Equal(t, []string{"Frank Herbert"}, record.Authors)
	require.Equal(t, "1965-01-01", record.PublishedDate)
	require.Equal(t, "9780441172719", record.ISBN, "ISBN-13 preferred over ISBN-10")
	require.Equal(t, "en", record.Language)
	require.Equal(t, "Chilton Books", record.Publisher)
	require.Equal(t, 412, record.PageCount)
	require.Equal(t, "https://books.google.com/books/content?id=B1&zoom=0", record.CoverURL,
		"thumbnail upgraded to https with zoom stripped")
}

func TestFetchFieldScoping(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/volumes", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query().Get("q")
		require.Contains(t, q, `intitle:"Dune"`)
		require.Contains(t, q, `inauthor:"Frank Herbert"`)
		require.Equal(t, "en", r.URL.Query().Get("langRestrict"))
		_, _ = w.Write([]byte(duneVolume))
	})

	client := newTestClient(t, mux)
	_, ok := client.Fetch(context.Background(), providers.Query{
		Title:    "Dune",
		Author:   "Frank Herbert",
		Language: "en",
	})
	require.True(t, ok)
}

func TestFetchClampsMaxResults(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/volumes", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "40", r.URL.Query().Get("maxResults"))
		_, _ = w.Write([]byte(duneVolume))
	})

	client := newTestClient(t, mux)
	_, ok := client.Fetch(context.Background(), providers.Query{Text: "dune", MaxResults: 500})
	require.True(t, ok)
}

func TestFetchEmptyResultsIsOK(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/volumes", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"totalItems": 0, "items": []}`))
	})

	client := newTestClient(t, mux)
	records, ok := client.Fetch(context.Background(), providers.Query{Text: "nothing matches this"})

	require.True(t, ok, "zero results is not a provider failure")
	require.Empty(t, records)
}

func TestFetchServerErrorIsNotOK(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/volumes", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "internal server error", http.StatusInternalServerError)
	})

	client := newTestClient(t, mux)
	records, ok := client.Fetch(context.Background(), providers.Query{Text: "dune"})

	require.False(t, ok)
	require.Nil(t, records)
}

func TestFetchRateLimitIsNotOK(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/volumes", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "too many requests", http.StatusTooManyRequests)
	})

	client := newTestClient(t, mux)
	_, ok := client.Fetch(context.Background(), providers.Query{Text: "dune"})
	require.False(t, ok)
}

func TestFetchMalformedBodyIsNotOK(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/volumes", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{invalid json`))
	})

	client := newTestClient(t, mux)
	_, ok := client.Fetch(context.Background(), providers.Query{Text: "dune"})
	require.False(t, ok)
}

func TestFetchEmptyQueryIsNotOK(t *testing.T) {
	client := NewWithBaseURL("", "http://127.0.0.1:1", nil)
	_, ok := client.Fetch(context.Background(), providers.Query{})
	require.False(t, ok)
}

func TestMapVolumeMissingFields(t *testing.T) {
	record := mapVolume(volume{ID: "abc"})

	require.Equal(t, "gb:abc", record.ID)
	require.Equal(t, bookmeta.UnknownTitle, record.Title)
	require.Equal(t, bookmeta.UnknownAuthor, record.PrimaryAuthor)
	require.Equal(t, []string{bookmeta.UnknownAuthor}, record.Authors)
	require.Equal(t, bookmeta.UnknownDate, record.PublishedDate)
	require.Equal(t, "en", record.Language)
	require.Empty(t, record.CoverURL)
}

func TestMapVolumeCoverFallbackFromISBN(t *testing.T) {
	record := mapVolume(volume{
		ID: "abc",
		VolumeInfo: volumeInfo{
			Title: "Dune",
			IndustryIdentifiers: []industryIdentifier{
				{Type: "ISBN_13", Identifier: "978-0-441-17271-9"},
			},
		},
	})

	require.Empty(t, record.CoverURL)
	require.Equal(t,
		"https://covers.openlibrary.org/b/isbn/9780441172719-L.jpg",
		record.CoverFallbacks[bookmeta.CoverStrategyISBN])
}

func TestPickISBN(t *testing.T) {
	tests := []struct {
		name        string
		identifiers []industryIdentifier
		expected    string
	}{
		{
			name: "isbn13 preferred regardless of order",
			identifiers: []industryIdentifier{
				{Type: "ISBN_10", Identifier: "0441172717"},
				{Type: "ISBN_13", Identifier: "9780441172719"},
			},
			expected: "9780441172719",
		},
		{
			name: "isbn10 when no isbn13",
			identifiers: []industryIdentifier{
				{Type: "OTHER", Identifier: "B00B7NPRY8"},
				{Type: "ISBN_10", Identifier: "0441172717"},
			},
			expected: "0441172717",
		},
		{
			name:        "empty when no usable identifier",
			identifiers: []industryIdentifier{{Type: "OTHER", Identifier: "B00B7NPRY8"}},
			expected:    "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.expected, pickISBN(tt.identifiers))
		})
	}
}

func TestPickCoverURLPrefersLargest(t *testing.T) {
	links := imageLinks{
		Large:     "http://img/large.jpg",
		Thumbnail: "http://img/thumb.jpg?zoom=1",
	}
	require.Equal(t, "http://img/large.jpg", pickCoverURL(links))

	links = imageLinks{Thumbnail: "http://img/thumb.jpg?zoom=1"}
	require.Equal(t, "http://img/thumb.jpg?zoom=0", pickCoverURL(links))

	require.Empty(t, pickCoverURL(imageLinks{}))
}
