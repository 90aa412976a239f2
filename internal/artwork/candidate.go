// Package artwork defines the normalized artwork search model and the
// aggregation engine that merges results from multiple providers.
package artwork

import "fmt"

// Fallback display strings for candidates missing source metadata.
const (
	UnknownArtist = "Unknown Artist"
	UnknownAlbum  = "Unknown Album"
)

// Source identifies an artwork search provider. The set is closed: every
// provider ships with its own adapter and descriptor.
type Source int

const (
	SourceAppleMusic Source = iota
	SourceBandcamp
	SourceDeezer
	SourceDiscogs
)

// AllSources returns every provider in enumeration order. The order is
// significant: it is the interleaving order used by the merge policy.
func AllSources() []Source {
	return []Source{SourceAppleMusic, SourceBandcamp, SourceDeezer, SourceDiscogs}
}

// String returns the provider display name.
func (s Source) String() string {
	switch s {
	case SourceAppleMusic:
		return "Apple Music"
	case SourceBandcamp:
		return "Bandcamp"
	case SourceDeezer:
		return "Deezer"
	case SourceDiscogs:
		return "Discogs"
	}
	return fmt.Sprintf("Source(%d)", int(s))
}

// ShortName returns the compact provider label used in candidate IDs and
// status lines.
func (s Source) ShortName() string {
	switch s {
	case SourceAppleMusic:
		return "apple"
	case SourceBandcamp:
		return "bandcamp"
	case SourceDeezer:
		return "deezer"
	case SourceDiscogs:
		return "discogs"
	}
	return "unknown"
}

// RequiresFullSizeFetch reports whether the provider only supplies a
// thumbnail at search time, so selecting one of its candidates needs a
// secondary on-demand fetch of the full-size image.
func (s Source) RequiresFullSizeFetch() bool {
	return s == SourceDiscogs
}

// ParseSource resolves a provider from its display or short name.
func ParseSource(name string) (Source, bool) {
	for _, s := range AllSources() {
		if name == s.String() || name == s.ShortName() {
			return s, true
		}
	}
	return 0, false
}

// Descriptor holds the static per-provider configuration loaded from
// settings: display names, the search endpoint and the provider icon.
type Descriptor struct {
	Name      string
	ShortName string
	SearchURL string
	IconURL   string
}

// Candidate is one normalized search result: a potential replacement
// artwork image plus the metadata shown alongside it.
//
// ID is unique within one result set (provider short name + provider ID);
// it is the sole lookup key when the user selects a candidate. Each new
// search replaces the previous result set, so cross-session collisions do
// not matter.
type Candidate struct {
	ID          string
	Artist      string
	Album       string
	ReleaseDate string // 4-digit year or full parseable date; empty when unknown
	TrackCount  int    // 0 when unknown
	ExtraInfo   string // provider-specific supplement (country, format, ...)
	ArtworkURL  string // preview-resolution image; empty when the provider had none
	ArtistURL   string
	AlbumURL    string
	Source      Source
}

// CandidateID builds a provider-prefixed candidate ID.
func CandidateID(src Source, providerID string) string {
	return src.ShortName() + ":" + providerID
}

// OrUnknownArtist returns s, or the artist fallback when s is empty.
func OrUnknownArtist(s string) string {
	if s == "" {
		return UnknownArtist
	}
	return s
}

// OrUnknownAlbum returns s, or the album fallback when s is empty.
func OrUnknownAlbum(s string) string {
	if s == "" {
		return UnknownAlbum
	}
	return s
}

// Displayable reports whether a candidate carries enough data to render:
// at least one of artist/album resolved from the source, and an image when
// the provider always supplies one (requireImage). Adapters drop anything
// else instead of surfacing malformed entries.
func (c Candidate) Displayable(requireImage bool) bool {
	hasText := (c.Artist != "" && c.Artist != UnknownArtist) ||
		(c.Album != "" && c.Album != UnknownAlbum)
	if !hasText {
		return false
	}
	return !requireImage || c.ArtworkURL != ""
}

// Title returns the "Artist - Album" display string.
func (c Candidate) Title() string {
	return OrUnknownArtist(c.Artist) + " - " + OrUnknownAlbum(c.Album)
}
