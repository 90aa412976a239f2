// Package settings loads the extension configuration: user options merged
// over static defaults, plus the per-provider source descriptors.
package settings

import (
	"os"
	"path/filepath"

	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/corentel/artfix/internal/artwork"
)

// Settings is the flat user configuration. Boolean options use pointers so
// that an absent key falls back to its static default (accessors below)
// while an explicit `false` in the file is preserved.
type Settings struct {
	SelectedSource string `koanf:"selected_source"` // provider name, or "All" for combined search
	Country        string `koanf:"country"`         // storefront country for Apple Music
	ArtworkSize    int    `koanf:"artwork_size"`    // target artwork pixel size

	PopulateTitleField       *bool `koanf:"populate_title_field"`
	PopulateDescriptionField *bool `koanf:"populate_description_field"`

	AutoCloseUploadTab    *bool `koanf:"auto_close_upload_tab"`
	AutoFocusNextArtwork  *bool `koanf:"auto_focus_next_artwork"`
	AutoFocusFirstArtwork *bool `koanf:"auto_focus_first_artwork"`

	HighlightMissingArtworks *bool `koanf:"highlight_missing_artworks"`
	IncludeUnknownAlbums     *bool `koanf:"include_unknown_albums"`

	// PlaceholderImageIDs identifies the host site's "no artwork" images;
	// an <img> whose src contains one of these is a missing-artwork marker.
	PlaceholderImageIDs []string `koanf:"placeholder_image_ids"`

	// AllowedImageHosts is the fetch proxy allow-list (exact or suffix match).
	AllowedImageHosts []string `koanf:"allowed_image_hosts"`

	GoogleImagesSearchURL string `koanf:"google_images_search_url"`

	AppleMusic ProviderConfig `koanf:"apple_music"`
	Bandcamp   ProviderConfig `koanf:"bandcamp"`
	Deezer     ProviderConfig `koanf:"deezer"`
	Discogs    ProviderConfig `koanf:"discogs"`
}

// ProviderConfig overrides parts of a source descriptor.
type ProviderConfig struct {
	SearchURL string `koanf:"search_url"`
	IconURL   string `koanf:"icon_url"`
}

// Static defaults. Placeholder IDs are the host site's known no-artwork
// image resources; the allow-list covers the four providers' image CDNs
// plus the host site's own image CDN.
var defaults = Settings{
	SelectedSource: "Apple Music",
	Country:        "US",
	ArtworkSize:    1200,
	PlaceholderImageIDs: []string{
		"4128a6eb29f94943c9d206c08e625904",
		"c6f59c1e5e7240a4c0d68b96fc284859",
	},
	AllowedImageHosts: []string{
		"mzstatic.com",
		"bcbits.com",
		"dzcdn.net",
		"discogs.com",
		"lastfm.freetls.fastly.net",
	},
	GoogleImagesSearchURL: "https://www.google.com/search?tbm=isch&q=",
	AppleMusic: ProviderConfig{
		SearchURL: "https://itunes.apple.com/search?media=music&entity=album&limit=20",
		IconURL:   "https://music.apple.com/favicon.ico",
	},
	Bandcamp: ProviderConfig{
		SearchURL: "https://bandcamp.com/api/bcsearch_public_api/1/autocomplete_elastic",
		IconURL:   "https://bandcamp.com/favicon.ico",
	},
	Deezer: ProviderConfig{
		SearchURL: "https://api.deezer.com/search/album",
		IconURL:   "https://www.deezer.com/favicon.ico",
	},
	Discogs: ProviderConfig{
		SearchURL: "https://www.discogs.com/graphql",
		IconURL:   "https://www.discogs.com/favicon.ico",
	},
}

// Load reads settings from the config files (last wins) merged over the
// static defaults.
func Load() (*Settings, error) {
	k := koanf.New(".")

	for _, path := range getConfigPaths() {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
				return nil, err
			}
		}
	}

	cfg := defaults
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns the static defaults without touching the filesystem.
func Default() *Settings {
	cfg := defaults
	return &cfg
}

func getConfigPaths() []string {
	paths := []string{}

	// 1. ~/.config/artfix/config.toml
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "artfix", "config.toml"))
	}

	// 2. ./config.toml (pwd, highest priority)
	paths = append(paths, "config.toml")

	return paths
}

// PopulateTitle reports whether the upload form title field should be
// filled from candidate metadata (default: true).
func (s *Settings) PopulateTitle() bool { return boolOr(s.PopulateTitleField, true) }

// PopulateDescription reports whether the description field should be
// filled (default: false).
func (s *Settings) PopulateDescription() bool { return boolOr(s.PopulateDescriptionField, false) }

// AutoClose reports whether a monitored upload tab is closed automatically
// once the artwork is detected as uploaded (default: true).
func (s *Settings) AutoClose() bool { return boolOr(s.AutoCloseUploadTab, true) }

// AutoFocusNext reports whether focus advances to the next pending control
// after a fix (default: false).
func (s *Settings) AutoFocusNext() bool { return boolOr(s.AutoFocusNextArtwork, false) }

// AutoFocusFirst reports whether the first pending control is focused when
// a page scan first finds missing artwork (default: false).
func (s *Settings) AutoFocusFirst() bool { return boolOr(s.AutoFocusFirstArtwork, false) }

// Highlight reports whether the missing-artwork scanner runs at all
// (default: true).
func (s *Settings) Highlight() bool { return boolOr(s.HighlightMissingArtworks, true) }

// UnknownAlbumsIncluded reports whether unknown-album placeholders take
// part in fix and bulk-open actions (default: false; their upload flow
// cannot be monitored to completion).
func (s *Settings) UnknownAlbumsIncluded() bool { return boolOr(s.IncludeUnknownAlbums, false) }

// Descriptor returns the descriptor for one provider, with any file
// overrides applied.
func (s *Settings) Descriptor(src artwork.Source) artwork.Descriptor {
	var pc ProviderConfig
	switch src {
	case artwork.SourceAppleMusic:
		pc = s.AppleMusic
	case artwork.SourceBandcamp:
		pc = s.Bandcamp
	case artwork.SourceDeezer:
		pc = s.Deezer
	case artwork.SourceDiscogs:
		pc = s.Discogs
	}
	return artwork.Descriptor{
		Name:      src.String(),
		ShortName: src.ShortName(),
		SearchURL: pc.SearchURL,
		IconURL:   pc.IconURL,
	}
}

func boolOr(b *bool, def bool) bool {
	if b == nil {
		return def
	}
	return *b
}
