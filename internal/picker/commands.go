package picker

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/corentel/artfix/internal/artwork"
	"github.com/corentel/artfix/internal/settings"
)

// inputSettleDelay is how long typing must pause before a new search
// fires.
const inputSettleDelay = time.Second

// directExtensions maps content types accepted for direct-URL attaches to
// their file extension. Other image types must go through search.
var directExtensions = map[string]string{
	"image/jpeg": "jpg",
	"image/png":  "png",
	"image/gif":  "gif",
}

var errNoArtworkImage = errors.New("this result has no artwork image")

// scheduleDebounce arms the input settle timer for one keystroke
// generation.
func scheduleDebounce(seq int) tea.Cmd {
	return tea.Tick(inputSettleDelay, func(time.Time) tea.Msg {
		return debounceMsg{Seq: seq}
	})
}

// searchCmd runs one engine search.
func searchCmd(engine *artwork.Engine, src artwork.Source, all bool, query string) tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		var result *artwork.Result
		if all {
			result = engine.SearchAll(ctx, query)
		} else {
			result = engine.Search(ctx, src, query)
		}
		return SearchResultMsg{Query: query, Result: result}
	}
}

// fullSizeCmd resolves the full-size artwork URL for providers that only
// return thumbnails at search time.
func fullSizeCmd(resolver ReleaseResolver, c artwork.Candidate) tea.Cmd {
	return func() tea.Msg {
		url, err := resolver.ReleaseImageURL(context.Background(), c.AlbumURL)
		return FullSizeResultMsg{Candidate: c, URL: url, Err: err}
	}
}

// attachCandidateCmd fetches a candidate's image and fills the upload
// form with it plus the configured metadata fields.
func attachCandidateCmd(fetcher ImageFetcher, form UploadForm, cfg *settings.Settings, c artwork.Candidate, imageURL string) tea.Cmd {
	return func() tea.Msg {
		img, err := fetcher.FetchImage(context.Background(), imageURL)
		if err != nil {
			return AttachDoneMsg{CandidateID: c.ID, Err: err}
		}

		ext := img.Ext()
		if ext == "" {
			ext = "jpg"
		}
		if err := form.SetFile("artwork."+ext, img.Bytes); err != nil {
			return AttachDoneMsg{CandidateID: c.ID, Err: err}
		}
		if cfg.PopulateTitle() {
			if err := form.SetTitle(c.Title()); err != nil {
				return AttachDoneMsg{CandidateID: c.ID, Err: err}
			}
		}
		if cfg.PopulateDescription() {
			if err := form.SetDescription(describeCandidate(c)); err != nil {
				return AttachDoneMsg{CandidateID: c.ID, Err: err}
			}
		}
		return AttachDoneMsg{CandidateID: c.ID}
	}
}

// attachDirectCmd fetches an arbitrary image URL and attaches it without
// candidate metadata. Only plain raster types are accepted.
func attachDirectCmd(fetcher ImageFetcher, form UploadForm, rawURL string) tea.Cmd {
	return func() tea.Msg {
		img, err := fetcher.FetchImage(context.Background(), rawURL)
		if err != nil {
			return AttachDoneMsg{Err: err}
		}
		ext, ok := directExtensions[img.ContentType]
		if !ok {
			return AttachDoneMsg{Err: fmt.Errorf("unsupported image type %q", img.ContentType)}
		}
		if err := form.SetFile("artwork."+ext, img.Bytes); err != nil {
			return AttachDoneMsg{Err: err}
		}
		return AttachDoneMsg{}
	}
}

// describeCandidate builds the description field text from candidate
// metadata.
func describeCandidate(c artwork.Candidate) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Artwork for %s by %s",
		artwork.OrUnknownAlbum(c.Album), artwork.OrUnknownArtist(c.Artist))
	if c.ReleaseDate != "" {
		fmt.Fprintf(&b, ", released %s", c.ReleaseDate)
	}
	return b.String()
}
