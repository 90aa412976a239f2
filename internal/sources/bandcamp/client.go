// Package bandcamp searches the Bandcamp autocomplete API for album
// artwork.
package bandcamp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/corentel/artfix/internal/artwork"
)

const defaultSearchURL = "https://bandcamp.com/api/bcsearch_public_api/1/autocomplete_elastic"

// Client is a Bandcamp search client. Unlike the other providers this is
// a JSON POST endpoint.
type Client struct {
	httpClient *http.Client
	searchURL  string
}

// New creates a client. searchURL may be empty to use the default endpoint.
func New(searchURL string) *Client {
	if searchURL == "" {
		searchURL = defaultSearchURL
	}
	return &Client{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		searchURL:  searchURL,
	}
}

type searchRequest struct {
	SearchText   string `json:"search_text"`
	SearchFilter string `json:"search_filter"` // "a" restricts to albums
	FullPage     bool   `json:"full_page"`
	FanID        *int64 `json:"fan_id"`
}

type searchResponse struct {
	Auto struct {
		Results []itemResult `json:"results"`
	} `json:"auto"`
}

type itemResult struct {
	Type        string `json:"type"`
	ID          int64  `json:"id"`
	Name        string `json:"name"`      // album title
	BandName    string `json:"band_name"` // artist
	ItemURLPath string `json:"item_url_path"`
	ImageURL    string `json:"img"`
	BandURL     string `json:"band_url"`
}

// Search queries Bandcamp for albums matching the free-text query. An
// empty query returns no candidates without a network call.
func (c *Client) Search(ctx context.Context, query string) ([]artwork.Candidate, error) {
	if query == "" {
		return nil, nil
	}

	body, err := json.Marshal(searchRequest{
		SearchText:   query,
		SearchFilter: "a",
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.searchURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API returned status %d", resp.StatusCode)
	}

	var result searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	return convert(result.Auto.Results), nil
}

func convert(results []itemResult) []artwork.Candidate {
	candidates := make([]artwork.Candidate, 0, len(results))
	for _, r := range results {
		// The filter is advisory; the endpoint still mixes in artists
		// and tracks.
		if r.Type != "a" {
			continue
		}

		cand := artwork.Candidate{
			ID:         artwork.CandidateID(artwork.SourceBandcamp, strconv.FormatInt(r.ID, 10)),
			Artist:     artwork.OrUnknownArtist(r.BandName),
			Album:      artwork.OrUnknownAlbum(r.Name),
			ArtworkURL: r.ImageURL,
			ArtistURL:  r.BandURL,
			AlbumURL:   r.ItemURLPath,
			Source:     artwork.SourceBandcamp,
		}
		if !cand.Displayable(true) {
			continue
		}
		candidates = append(candidates, cand)
	}
	return candidates
}
