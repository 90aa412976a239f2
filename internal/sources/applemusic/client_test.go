package applemusic

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

const sampleResponse = `{
	"resultCount": 2,
	"results": [
		{
			"collectionId": 697194953,
			"artistName": "Daft Punk",
			"collectionName": "Discovery",
			"releaseDate": "2001-03-12T08:00:00Z",
			"trackCount": 14,
			"artworkUrl100": "https://is1-ssl.mzstatic.com/image/thumb/Music/v4/cover.jpg/100x100bb.jpg",
			"artistViewUrl": "https://music.apple.com/us/artist/daft-punk/5468295",
			"collectionViewUrl": "https://music.apple.com/us/album/discovery/697194953"
		},
		{
			"collectionId": 12345,
			"artistName": "",
			"collectionName": "",
			"artworkUrl100": "https://is1-ssl.mzstatic.com/image/other/100x100bb.jpg"
		}
	]
}`

func newTestClient(t *testing.T, handler http.HandlerFunc, size int) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	// Give the test server URL a query string so the client's parameter
	// appending matches the real endpoint shape.
	return New(srv.URL+"/search?media=music", "US", size)
}

func TestSearch_RewritesArtworkSize(t *testing.T) {
	var gotQuery string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(sampleResponse))
	}, 1200)

	candidates, err := c.Search(context.Background(), "Daft Punk Discovery")
	if err != nil {
		t.Fatalf("Search() error: %v", err)
	}

	// Both query term and storefront country must be on the wire.
	for _, want := range []string{"term=Daft+Punk+Discovery", "country=US"} {
		if !strings.Contains(gotQuery, want) {
			t.Errorf("request query %q missing %q", gotQuery, want)
		}
	}

	// The empty-metadata entry is filtered out.
	if len(candidates) != 1 {
		t.Fatalf("got %d candidates, want 1", len(candidates))
	}

	c0 := candidates[0]
	if c0.ID != "apple:697194953" {
		t.Errorf("ID = %q", c0.ID)
	}
	if want := "https://is1-ssl.mzstatic.com/image/thumb/Music/v4/cover.jpg/1200x1200bb.jpg"; c0.ArtworkURL != want {
		t.Errorf("ArtworkURL = %q, want %q", c0.ArtworkURL, want)
	}
	if c0.TrackCount != 14 || c0.Artist != "Daft Punk" || c0.Album != "Discovery" {
		t.Errorf("candidate metadata = %+v", c0)
	}
}

func TestSearch_EmptyQueryMakesNoRequest(t *testing.T) {
	called := false
	c := newTestClient(t, func(_ http.ResponseWriter, _ *http.Request) {
		called = true
	}, 1200)

	candidates, err := c.Search(context.Background(), "")
	if err != nil {
		t.Fatalf("Search() error: %v", err)
	}
	if called {
		t.Error("network request issued for empty query")
	}
	if len(candidates) != 0 {
		t.Errorf("got %d candidates, want 0", len(candidates))
	}
}

func TestSearch_ServerError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}, 1200)

	if _, err := c.Search(context.Background(), "query"); err == nil {
		t.Fatal("Search() returned nil error on 500")
	}
}

func TestSearch_MalformedPayload(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("<html>not json</html>"))
	}, 1200)

	if _, err := c.Search(context.Background(), "query"); err == nil {
		t.Fatal("Search() returned nil error on malformed payload")
	}
}
