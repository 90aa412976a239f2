// Package discogs searches the Discogs catalog for album artwork.
//
// Search results only carry a low-resolution thumbnail. The full-size
// image is resolved lazily, when a candidate is actually selected, by
// fetching the release page and extracting its og:image meta tag.
package discogs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/corentel/artfix/internal/artwork"
)

const (
	defaultSearchURL = "https://www.discogs.com/graphql"
	siteBaseURL      = "https://www.discogs.com"
	userAgent        = "artfix/1.0 (+https://github.com/corentel/artfix)"

	// Release pages can be large; the og:image tag sits in <head>, so a
	// bounded read is enough.
	maxPageBytes = 512 * 1024
)

// ErrNoFullSizeImage is returned when a release page carries no og:image
// meta tag.
var ErrNoFullSizeImage = errors.New("release page has no full-size image")

var ogImagePattern = regexp.MustCompile(`<meta[^>]+property="og:image"[^>]+content="([^"]+)"`)

// Client is a Discogs search client speaking the site's GraphQL-style
// GET endpoint.
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

type graphResponse struct {
	Data struct {
		Search struct {
			Results []releaseResult `json:"results"`
		} `json:"search"`
	} `json:"data"`
}

type releaseResult struct {
	DiscogsID int64    `json:"discogsId"`
	Title     string   `json:"title"` // "Artist - Album"
	URL       string   `json:"siteUrl"`
	Year      int      `json:"year"`
	Country   string   `json:"country"`
	Formats   []string `json:"formats"`
	Thumbnail struct {
		URL string `json:"sourceUrl"`
	} `json:"thumbnail"`
}

// Search queries Discogs for releases matching the free-text query. An
// empty query returns no candidates without a network call.
func (c *Client) Search(ctx context.Context, query string) ([]artwork.Candidate, error) {
	if query == "" {
		return nil, nil
	}

	variables, err := json.Marshal(map[string]string{"query": query})
	if err != nil {
		return nil, fmt.Errorf("marshal variables: %w", err)
	}

	params := url.Values{}
	params.Set("operationName", "ReleaseSearch")
	params.Set("variables", string(variables))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.searchURL+"?"+params.Encode(), http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API returned status %d", resp.StatusCode)
	}

	var result graphResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	return convert(result.Data.Search.Results), nil
}

// ReleaseImageURL resolves the full-size artwork URL for a release page
// by scraping its og:image meta tag.
func (c *Client) ReleaseImageURL(ctx context.Context, releaseURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, releaseURL, http.NoBody)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch release page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("release page returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return "", fmt.Errorf("read release page: %w", err)
	}

	m := ogImagePattern.FindSubmatch(body)
	if m == nil {
		return "", ErrNoFullSizeImage
	}
	return string(m[1]), nil
}

func convert(results []releaseResult) []artwork.Candidate {
	candidates := make([]artwork.Candidate, 0, len(results))
	for _, r := range results {
		artist, album := splitTitle(r.Title)

		cand := artwork.Candidate{
			ID:         artwork.CandidateID(artwork.SourceDiscogs, strconv.FormatInt(r.DiscogsID, 10)),
			Artist:     artwork.OrUnknownArtist(artist),
			Album:      artwork.OrUnknownAlbum(album),
			ExtraInfo:  extraInfo(r),
			ArtworkURL: r.Thumbnail.URL,
			AlbumURL:   absoluteURL(r.URL),
			Source:     artwork.SourceDiscogs,
		}
		if r.Year > 0 {
			cand.ReleaseDate = strconv.Itoa(r.Year)
		}
		if !cand.Displayable(true) {
			continue
		}
		candidates = append(candidates, cand)
	}
	return candidates
}

// splitTitle separates the combined "Artist - Album" release title.
func splitTitle(title string) (artist, album string) {
	artist, album, found := strings.Cut(title, " - ")
	if !found {
		return "", title
	}
	return strings.TrimSpace(artist), strings.TrimSpace(album)
}

func extraInfo(r releaseResult) string {
	parts := make([]string, 0, 2)
	if r.Country != "" {
		parts = append(parts, r.Country)
	}
	if len(r.Formats) > 0 {
		parts = append(parts, strings.Join(r.Formats, ", "))
	}
	return strings.Join(parts, " · ")
}

func absoluteURL(path string) string {
	if path == "" || strings.HasPrefix(path, "http") {
		return path
	}
	return siteBaseURL + path
}
