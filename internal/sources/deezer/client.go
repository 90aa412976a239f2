// Package deezer searches the Deezer public API for album artwork.
package deezer

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/corentel/artfix/internal/artwork"
)

const defaultSearchURL = "https://api.deezer.com/search/album"

// Candidates prefer the XL rendition once the configured target size goes
// beyond what the "big" rendition (500px) covers.
const bigCoverMaxSize = 500

// Client is a Deezer album search client.
type Client struct {
	httpClient  *http.Client
	searchURL   string
	artworkSize int
}

// New creates a client. searchURL may be empty to use the default endpoint.
func New(searchURL string, artworkSize int) *Client {
	if searchURL == "" {
		searchURL = defaultSearchURL
	}
	return &Client{
		httpClient:  &http.Client{Timeout: 15 * time.Second},
		searchURL:   searchURL,
		artworkSize: artworkSize,
	}
}

type searchResponse struct {
	Data []albumResult `json:"data"`
}

type albumResult struct {
	ID         int64  `json:"id"`
	Title      string `json:"title"`
	Link       string `json:"link"`
	CoverBig   string `json:"cover_big"`
	CoverXL    string `json:"cover_xl"`
	RecordType string `json:"record_type"`
	TrackCount int    `json:"nb_tracks"`
	Artist     struct {
		Name string `json:"name"`
		Link string `json:"link"`
	} `json:"artist"`
}

// Search queries Deezer for albums matching the free-text query. An empty
// query returns no candidates without a network call.
func (c *Client) Search(ctx context.Context, query string) ([]artwork.Candidate, error) {
	if query == "" {
		return nil, nil
	}

	params := url.Values{}
	params.Set("q", query)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.searchURL+"?"+params.Encode(), http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
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

	return c.convert(result.Data), nil
}

func (c *Client) convert(results []albumResult) []artwork.Candidate {
	candidates := make([]artwork.Candidate, 0, len(results))
	for _, r := range results {
		cover := r.CoverBig
		if c.artworkSize > bigCoverMaxSize && r.CoverXL != "" {
			cover = r.CoverXL
		}

		cand := artwork.Candidate{
			ID:         artwork.CandidateID(artwork.SourceDeezer, strconv.FormatInt(r.ID, 10)),
			Artist:     artwork.OrUnknownArtist(r.Artist.Name),
			Album:      artwork.OrUnknownAlbum(r.Title),
			TrackCount: r.TrackCount,
			ExtraInfo:  r.RecordType,
			ArtworkURL: cover,
			ArtistURL:  r.Artist.Link,
			AlbumURL:   r.Link,
			Source:     artwork.SourceDeezer,
		}
		if !cand.Displayable(true) {
			continue
		}
		candidates = append(candidates, cand)
	}
	return candidates
}
