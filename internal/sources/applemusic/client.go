// Package applemusic searches the iTunes Search API for album artwork.
package applemusic

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/corentel/artfix/internal/artwork"
)

const defaultSearchURL = "https://itunes.apple.com/search?media=music&entity=album&limit=20"

// The search API always returns 100x100 previews; the size token is
// rewritten to the configured target size.
const previewSizeToken = "100x100bb"

// Client is an iTunes Search API client.
type Client struct {
	httpClient  *http.Client
	searchURL   string
	country     string
	artworkSize int
}

// New creates a client. searchURL may be empty to use the default
// endpoint; country selects the storefront and artworkSize the pixel size
// candidates' artwork URLs are rewritten to.
func New(searchURL, country string, artworkSize int) *Client {
	if searchURL == "" {
		searchURL = defaultSearchURL
	}
	return &Client{
		httpClient:  &http.Client{Timeout: 15 * time.Second},
		searchURL:   searchURL,
		country:     country,
		artworkSize: artworkSize,
	}
}

type searchResponse struct {
	Results []albumResult `json:"results"`
}

type albumResult struct {
	CollectionID  int64  `json:"collectionId"`
	ArtistName    string `json:"artistName"`
	Collection    string `json:"collectionName"`
	ReleaseDate   string `json:"releaseDate"`
	TrackCount    int    `json:"trackCount"`
	ArtworkURL100 string `json:"artworkUrl100"`
	ArtistViewURL string `json:"artistViewUrl"`
	AlbumViewURL  string `json:"collectionViewUrl"`
}

// Search queries the storefront for albums matching the free-text query.
// An empty query returns no candidates without a network call.
func (c *Client) Search(ctx context.Context, query string) ([]artwork.Candidate, error) {
	if query == "" {
		return nil, nil
	}

	reqURL := fmt.Sprintf("%s&country=%s&term=%s",
		c.searchURL, url.QueryEscape(c.country), url.QueryEscape(query))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
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

	return c.convert(result.Results), nil
}

func (c *Client) convert(results []albumResult) []artwork.Candidate {
	targetToken := strconv.Itoa(c.artworkSize) + "x" + strconv.Itoa(c.artworkSize) + "bb"

	candidates := make([]artwork.Candidate, 0, len(results))
	for _, r := range results {
		cand := artwork.Candidate{
			ID:          artwork.CandidateID(artwork.SourceAppleMusic, strconv.FormatInt(r.CollectionID, 10)),
			Artist:      artwork.OrUnknownArtist(r.ArtistName),
			Album:       artwork.OrUnknownAlbum(r.Collection),
			ReleaseDate: r.ReleaseDate,
			TrackCount:  r.TrackCount,
			ArtworkURL:  strings.Replace(r.ArtworkURL100, previewSizeToken, targetToken, 1),
			ArtistURL:   r.ArtistViewURL,
			AlbumURL:    r.AlbumViewURL,
			Source:      artwork.SourceAppleMusic,
		}
		if !cand.Displayable(true) {
			continue
		}
		candidates = append(candidates, cand)
	}
	return candidates
}
