// Package background is the privileged side of the message bus: it owns
// the browser UI surfaces (badge, title, tabs), the per-tab pending URL
// cache, and the network calls that page context cannot make directly.
package background

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/corentel/artfix/internal/artwork"
	"github.com/corentel/artfix/internal/fetchproxy"
	"github.com/corentel/artfix/internal/messaging"
)

const defaultOpenStagger = 500 * time.Millisecond

// UI is the badge and title surface of the browser toolbar.
type UI interface {
	SetBadgeText(tabID int, text string)
	SetTitle(tabID int, title string)
}

// TabOpener creates new tabs.
type TabOpener interface {
	OpenTab(url string) error
}

// ImageFetcher retrieves and validates image bytes.
type ImageFetcher interface {
	FetchImage(ctx context.Context, rawURL string) (fetchproxy.Image, error)
}

// ReleaseResolver resolves a release page into its full-size artwork URL.
type ReleaseResolver interface {
	ReleaseImageURL(ctx context.Context, releaseURL string) (string, error)
}

// Config wires the relay's collaborators.
type Config struct {
	UI      UI
	Opener  TabOpener
	Proxy   ImageFetcher
	Discogs ReleaseResolver

	// Searchers are the providers the relay queries on behalf of page
	// context. Apple Music is absent: page context reaches it directly.
	Searchers map[artwork.Source]artwork.SearchFunc

	// OpenStagger is the delay between tabs in a bulk open; zero means the
	// default.
	OpenStagger time.Duration

	Logger *log.Logger
}

// Relay serves the message catalog.
type Relay struct {
	ui          UI
	opener      TabOpener
	proxy       ImageFetcher
	discogs     ReleaseResolver
	searchers   map[artwork.Source]artwork.SearchFunc
	openStagger time.Duration
	log         *log.Logger

	mu      sync.Mutex
	pending map[int][]string
}

func New(cfg Config) *Relay {
	logger := cfg.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	stagger := cfg.OpenStagger
	if stagger == 0 {
		stagger = defaultOpenStagger
	}
	return &Relay{
		ui:          cfg.UI,
		opener:      cfg.Opener,
		proxy:       cfg.Proxy,
		discogs:     cfg.Discogs,
		searchers:   cfg.Searchers,
		openStagger: stagger,
		log:         logger,
		pending:     make(map[int][]string),
	}
}

// Register binds every relay action onto the bus.
func (r *Relay) Register(bus *messaging.Bus) {
	bus.Handle(messaging.ActionSetBadgeText, r.handleSetBadgeText)
	bus.Handle(messaging.ActionSetTitle, r.handleSetTitle)
	bus.Handle(messaging.ActionFetchImage, r.handleFetchImage)
	bus.Handle(messaging.ActionFetchBandcamp, r.searchHandler(artwork.SourceBandcamp))
	bus.Handle(messaging.ActionFetchDeezer, r.searchHandler(artwork.SourceDeezer))
	bus.Handle(messaging.ActionFetchDiscogs, r.searchHandler(artwork.SourceDiscogs))
	bus.Handle(messaging.ActionFetchDiscogsImageURL, r.handleDiscogsImageURL)
	bus.Handle(messaging.ActionUpdateMissingArtworkURLs, r.handleUpdatePending)
	bus.Handle(messaging.ActionGetMissingArtworkURLs, r.handleGetPending)
	bus.Handle(messaging.ActionOpenAllMissingArtworks, r.handleOpenAll)
}

func (r *Relay) handleSetBadgeText(_ context.Context, req any) (any, error) {
	set, err := as[messaging.SetBadgeText](req)
	if err != nil {
		return nil, err
	}
	r.ui.SetBadgeText(set.TabID, set.Text)
	return nil, nil
}

func (r *Relay) handleSetTitle(_ context.Context, req any) (any, error) {
	set, err := as[messaging.SetTitle](req)
	if err != nil {
		return nil, err
	}
	r.ui.SetTitle(set.TabID, set.Title)
	return nil, nil
}

func (r *Relay) handleFetchImage(ctx context.Context, req any) (any, error) {
	fetch, err := as[messaging.FetchImage](req)
	if err != nil {
		return nil, err
	}
	img, err := r.proxy.FetchImage(ctx, fetch.URL)
	if err != nil {
		r.log.Warn("image fetch rejected", "url", fetch.URL, "err", err)
		return nil, err
	}
	return messaging.FetchImageResult{Bytes: img.Bytes, ContentType: img.ContentType}, nil
}

func (r *Relay) searchHandler(src artwork.Source) messaging.Handler {
	return func(ctx context.Context, req any) (any, error) {
		search, err := as[messaging.SearchSource](req)
		if err != nil {
			return nil, err
		}
		fn, ok := r.searchers[src]
		if !ok {
			return nil, fmt.Errorf("no searcher configured for %s", src)
		}
		candidates, err := fn(ctx, search.Query)
		if err != nil {
			r.log.Warn("provider search failed", "source", src.String(), "err", err)
			return nil, err
		}
		return messaging.SearchSourceResult{Candidates: candidates}, nil
	}
}

func (r *Relay) handleDiscogsImageURL(ctx context.Context, req any) (any, error) {
	fetch, err := as[messaging.FetchDiscogsImageURL](req)
	if err != nil {
		return nil, err
	}
	url, err := r.discogs.ReleaseImageURL(ctx, fetch.ReleaseURL)
	if err != nil {
		return nil, err
	}
	return messaging.FetchDiscogsImageURLResult{URL: url}, nil
}

func (r *Relay) handleUpdatePending(_ context.Context, req any) (any, error) {
	update, err := as[messaging.UpdateMissingArtworkURLs](req)
	if err != nil {
		return nil, err
	}
	r.mu.Lock()
	r.pending[update.TabID] = append([]string(nil), update.URLs...)
	r.mu.Unlock()
	r.log.Debug("pending urls updated", "tab", update.TabID, "count", len(update.URLs))
	return nil, nil
}

func (r *Relay) handleGetPending(_ context.Context, req any) (any, error) {
	get, err := as[messaging.GetMissingArtworkURLs](req)
	if err != nil {
		return nil, err
	}
	r.mu.Lock()
	urls := append([]string(nil), r.pending[get.TabID]...)
	r.mu.Unlock()
	return messaging.GetMissingArtworkURLsResult{URLs: urls}, nil
}

func (r *Relay) handleOpenAll(_ context.Context, req any) (any, error) {
	open, err := as[messaging.OpenAllMissingArtworks](req)
	if err != nil {
		return nil, err
	}
	urls := append([]string(nil), open.URLs...)
	go r.openAll(urls)
	return nil, nil
}

// openAll opens one tab per URL with a fixed delay between creations, so
// a large pending set does not spawn a wall of tabs at once.
func (r *Relay) openAll(urls []string) {
	for i, url := range urls {
		if i > 0 {
			time.Sleep(r.openStagger)
		}
		if err := r.opener.OpenTab(url); err != nil {
			r.log.Error("open tab failed", "url", url, "err", err)
		}
	}
}

// DropTab discards the pending URL cache for a closed tab.
func (r *Relay) DropTab(tabID int) {
	r.mu.Lock()
	delete(r.pending, tabID)
	r.mu.Unlock()
}

func as[T any](req any) (T, error) {
	v, ok := req.(T)
	if !ok {
		var zero T
		return zero, fmt.Errorf("unexpected request type %T", req)
	}
	return v, nil
}
