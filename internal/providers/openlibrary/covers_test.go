package openlibrary

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lepinkainen/libris/internal/testutil"
)

func TestCoverURLBuilders(t *testing.T) {
	client := New()
	require.Equal(t, "https://covers.openlibrary.org/b/id/11481354-L.jpg", client.CoverURLByID(11481354))
	require.Equal(t, "https://covers.openlibrary.org/b/isbn/9780441172719-L.jpg", client.CoverURLByISBN("9780441172719"))
	require.Equal(t, "https://covers.openlibrary.org/b/olid/OL32076054M-L.jpg", client.CoverURLByOLID("OL32076054M"))
	require.Equal(t, "https://covers.openlibrary.org/b/isbn/9780441172719-L.jpg", CoverURLForISBN("9780441172719"))
}

func TestCoverByISBNProbesWithHead(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/b/isbn/9780441172719-L.jpg", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodHead, r.Method)
		require.Equal(t, "false", r.URL.Query().Get("default"))
		w.WriteHeader(http.StatusOK)
	})

	server := testutil.NewIPv4Server(t, mux)
	client := NewWithBaseURLs(server.URL, server.URL, server.Client())

	coverURL, err := client.CoverByISBN(context.Background(), "9780441172719")
	require.NoError(t, err)
	require.Equal(t, server.URL+"/b/isbn/9780441172719-L.jpg", coverURL)
}

func TestCoverByISBNMissingReturnsEmpty(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})

	server := testutil.NewIPv4Server(t, mux)
	client := NewWithBaseURLs(server.URL, server.URL, server.Client())

	coverURL, err := client.CoverByISBN(context.Background(), "0000000000")
	require.NoError(t, err, "a missing cover is not an error")
	require.Empty(t, coverURL)
}

func TestCoverByOLID(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/b/olid/OL32076054M-L.jpg", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	server := testutil.NewIPv4Server(t, mux)
	client := NewWithBaseURLs(server.URL, server.URL, server.Client())

	coverURL, err := client.CoverByOLID(context.Background(), "OL32076054M")
	require.NoError(t, err)
	require.Equal(t, server.URL+"/b/olid/OL32076054M-L.jpg", coverURL)
}

func TestProbeURLNetworkError(t *testing.T) {
	client := NewWithBaseURLs("http://127.0.0.1:1", "http://127.0.0.1:1", nil)

	_, err := client.ProbeURL(context.Background(), "http://127.0.0.1:1/b/id/1-L.jpg")
	require.Error(t, err)
}
