package messaging

import "github.com/corentel/artfix/internal/artwork"

// SetBadgeText sets the badge text shown for a tab. Empty text clears it.
type SetBadgeText struct {
	TabID int
	Text  string
}

// SetTitle sets the hover title shown for a tab.
type SetTitle struct {
	TabID int
	Title string
}

// FetchImage asks the relay to retrieve image bytes through the fetch
// proxy.
type FetchImage struct {
	URL string
}

// FetchImageResult carries a validated image back to the requester.
type FetchImageResult struct {
	Bytes       []byte
	ContentType string
}

// SearchSource asks the relay to query one artwork provider. The action
// selects the provider (ActionFetchBandcamp, ActionFetchDeezer,
// ActionFetchDiscogs); Apple Music is reachable from page context and
// never routed through the relay.
type SearchSource struct {
	Query string
}

// SearchSourceResult carries provider results back to the requester.
type SearchSourceResult struct {
	Candidates []artwork.Candidate
}

// FetchDiscogsImageURL asks the relay to resolve a release page into its
// full-size artwork URL.
type FetchDiscogsImageURL struct {
	ReleaseURL string
}

// FetchDiscogsImageURLResult carries the resolved artwork URL.
type FetchDiscogsImageURLResult struct {
	URL string
}

// UpdateMissingArtworkURLs replaces the pending upload URL set recorded
// for a tab.
type UpdateMissingArtworkURLs struct {
	TabID int
	URLs  []string
}

// GetMissingArtworkURLs reads back the pending upload URL set for a tab.
type GetMissingArtworkURLs struct {
	TabID int
}

// GetMissingArtworkURLsResult carries the recorded set; empty when the
// tab has none.
type GetMissingArtworkURLsResult struct {
	URLs []string
}

// OpenAllMissingArtworks opens an upload tab for every URL, staggered.
type OpenAllMissingArtworks struct {
	URLs []string
}
