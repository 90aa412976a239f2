package discogs

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

const sampleResponse = `{
	"data": {
		"search": {
			"results": [
				{
					"discogsId": 249504,
					"title": "Daft Punk - Discovery",
					"siteUrl": "/release/249504-Daft-Punk-Discovery",
					"year": 2001,
					"country": "France",
					"formats": ["CD", "Album"],
					"thumbnail": {"sourceUrl": "https://i.discogs.com/thumb/249504.jpg"}
				},
				{
					"discogsId": 111,
					"title": "Untitled Bootleg",
					"siteUrl": "/release/111",
					"thumbnail": {"sourceUrl": "https://i.discogs.com/thumb/111.jpg"}
				}
			]
		}
	}
}`

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(srv.URL)
}

func TestSearch_ConvertsResults(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if op := r.URL.Query().Get("operationName"); op != "ReleaseSearch" {
			t.Errorf("operationName = %q", op)
		}
		if vars := r.URL.Query().Get("variables"); !strings.Contains(vars, `"daft punk"`) {
			t.Errorf("variables = %q", vars)
		}
		w.Write([]byte(sampleResponse))
	})

	candidates, err := c.Search(context.Background(), "daft punk")
	if err != nil {
		t.Fatalf("Search() error: %v", err)
	}
	if len(candidates) != 2 {
		t.Fatalf("got %d candidates, want 2", len(candidates))
	}

	c0 := candidates[0]
	if c0.ID != "discogs:249504" {
		t.Errorf("ID = %q", c0.ID)
	}
	if c0.Artist != "Daft Punk" || c0.Album != "Discovery" {
		t.Errorf("title split = %q / %q", c0.Artist, c0.Album)
	}
	if c0.ReleaseDate != "2001" {
		t.Errorf("ReleaseDate = %q", c0.ReleaseDate)
	}
	if c0.ExtraInfo != "France · CD, Album" {
		t.Errorf("ExtraInfo = %q", c0.ExtraInfo)
	}
	if c0.AlbumURL != "https://www.discogs.com/release/249504-Daft-Punk-Discovery" {
		t.Errorf("AlbumURL = %q", c0.AlbumURL)
	}

	// A title without the separator is treated as album-only.
	c1 := candidates[1]
	if c1.Artist != "Unknown Artist" || c1.Album != "Untitled Bootleg" {
		t.Errorf("fallback candidate = %+v", c1)
	}
}

func TestReleaseImageURL_ExtractsOgImage(t *testing.T) {
	page := `<!DOCTYPE html><html><head>
		<meta property="og:title" content="Daft Punk - Discovery"/>
		<meta property="og:image" content="https://i.discogs.com/full/249504.jpg"/>
	</head><body></body></html>`

	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(page))
	})

	url, err := c.ReleaseImageURL(context.Background(), c.searchURL+"/release/249504")
	if err != nil {
		t.Fatalf("ReleaseImageURL() error: %v", err)
	}
	if url != "https://i.discogs.com/full/249504.jpg" {
		t.Errorf("url = %q", url)
	}
}

func TestReleaseImageURL_MissingTag(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("<html><head></head></html>"))
	})

	_, err := c.ReleaseImageURL(context.Background(), c.searchURL+"/release/1")
	if !errors.Is(err, ErrNoFullSizeImage) {
		t.Fatalf("err = %v, want ErrNoFullSizeImage", err)
	}
}

func TestSearch_EmptyQueryMakesNoRequest(t *testing.T) {
	called := false
	c := newTestClient(t, func(_ http.ResponseWriter, _ *http.Request) {
		called = true
	})

	if _, err := c.Search(context.Background(), ""); err != nil {
		t.Fatalf("Search() error: %v", err)
	}
	if called {
		t.Error("network request issued for empty query")
	}
}
