// Package scanner watches a catalog page for placeholder artwork images
// and keeps a registry of fix targets. The host page is re-scanned on a
// recurring tick; scans are idempotent via stable element keys, so an
// unchanged page produces no new work.
package scanner

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/corentel/artfix/internal/messaging"
	"github.com/corentel/artfix/internal/page"
	"github.com/corentel/artfix/internal/poll"
	"github.com/corentel/artfix/internal/settings"
)

const (
	defaultInterval = time.Second

	// smallControlWidth marks annotations on images too narrow for the
	// full fix button.
	smallControlWidth = 75

	// settleTimeout bounds the wait for scrolling to settle before the
	// focus lands.
	settleTimeout = 600 * time.Millisecond

	musicPathPrefix = "/music/"
	siteBase        = "https://www.last.fm"
)

// State tracks a fix target through its page lifetime. Items are never
// persisted across page loads.
type State int

const (
	Detected State = iota
	AnnotatedPending
	UploadTabOpen
	Resolved
)

func (s State) String() string {
	switch s {
	case Detected:
		return "detected"
	case AnnotatedPending:
		return "pending"
	case UploadTabOpen:
		return "upload open"
	case Resolved:
		return "resolved"
	default:
		return "unknown"
	}
}

// Annotation is one fix control placed next to a placeholder image.
type Annotation struct {
	Key   string // stable element key of the placeholder
	Small bool   // image too narrow for the full-size control
}

// Item is one fix target. TargetLink is the natural key: several
// placeholder images for the same album share one item.
type Item struct {
	TargetLink  string
	UploadURL   string
	Annotations []Annotation
	State       State

	// FixedImageID is set once the upload resolves; FixedImageURL is the
	// projection used to repaint the annotated controls.
	FixedImageID  string
	FixedImageURL string
}

// SnapshotFunc produces a fresh parse of the host page. Called once per
// tick; the scanner never holds element references across snapshots
// except by key.
type SnapshotFunc func() (*page.Document, error)

// View is the scroll and focus surface of the host page.
type View interface {
	// ScrollTo starts scrolling an element into view. The returned channel
	// is closed when scrolling has settled.
	ScrollTo(key string) <-chan struct{}
	Focus(key string)
}

// Config wires a scanner to its page and bus.
type Config struct {
	Snapshot SnapshotFunc
	Settings *settings.Settings
	Bus      *messaging.Bus
	View     View // optional
	TabID    int
	Interval time.Duration
	Logger   *log.Logger
}

type Scanner struct {
	snapshot SnapshotFunc
	settings *settings.Settings
	bus      *messaging.Bus
	view     View
	tabID    int
	interval time.Duration
	log      *log.Logger

	mu    sync.Mutex
	items map[string]*Item
	order []string        // target links in first-seen order
	seen  map[string]bool // element keys already processed
	task  *poll.Task
}

func New(cfg Config) *Scanner {
	logger := cfg.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	interval := cfg.Interval
	if interval == 0 {
		interval = defaultInterval
	}
	return &Scanner{
		snapshot: cfg.Snapshot,
		settings: cfg.Settings,
		bus:      cfg.Bus,
		view:     cfg.View,
		tabID:    cfg.TabID,
		interval: interval,
		log:      logger,
		items:    make(map[string]*Item),
		seen:     make(map[string]bool),
	}
}

// Start begins the recurring scan. It reports false when the highlight
// setting disables scanning entirely.
func (s *Scanner) Start() bool {
	if !s.settings.Highlight() {
		s.log.Debug("scanning disabled by settings")
		return false
	}
	s.task = poll.Start(s.interval, func() poll.Decision {
		if err := s.ScanOnce(context.Background()); err != nil {
			s.log.Warn("scan tick failed", "err", err)
		}
		return poll.Continue
	})
	return true
}

// Stop tears the scan loop down. Safe to call when never started.
func (s *Scanner) Stop() {
	if s.task != nil {
		s.task.Stop()
	}
}

// ScanOnce performs a single scan pass and publishes the pending set.
func (s *Scanner) ScanOnce(ctx context.Context) error {
	doc, err := s.snapshot()
	if err != nil {
		return fmt.Errorf("snapshot page: %w", err)
	}

	s.mu.Lock()
	for _, id := range s.settings.PlaceholderImageIDs {
		for _, img := range doc.FindAll(page.ImgWithSrc(id)) {
			s.process(doc, img)
		}
	}
	pending := s.pendingLocked()
	s.mu.Unlock()

	s.publish(ctx, pending)
	return nil
}

// process handles one placeholder image. Caller holds the lock.
func (s *Scanner) process(doc *page.Document, img *page.Element) {
	key := img.Key()
	if s.seen[key] {
		return
	}
	s.seen[key] = true

	link, ok := s.resolveLink(doc, img)
	if !ok {
		s.log.Debug("placeholder with no resolvable album link", "key", key)
		return
	}
	if isUnknownAlbum(link) && !s.settings.UnknownAlbumsIncluded() {
		return
	}

	ann := Annotation{
		Key:   key,
		Small: img.IntAttr("width") > 0 && img.IntAttr("width") < smallControlWidth,
	}

	item, exists := s.items[link]
	if !exists {
		item = &Item{TargetLink: link, UploadURL: UploadURL(link), State: Detected}
		s.items[link] = item
		s.order = append(s.order, link)
	}
	item.Annotations = append(item.Annotations, ann)
	if item.State == Detected {
		item.State = AnnotatedPending
	}
}

// resolveLink finds the album link a placeholder belongs to: the closest
// ancestor anchor first, then an anchor among the descendants of up to
// three ancestor levels, then the page's own address when the page is a
// catalog page.
func (s *Scanner) resolveLink(doc *page.Document, img *page.Element) (string, bool) {
	if a := img.Closest(page.AnchorWithHref(musicPathPrefix)); a != nil {
		return normalizeLink(a.Attr("href")), true
	}

	el := img.Parent()
	for depth := 0; depth < 3 && el != nil; depth++ {
		if a := el.FindDescendant(page.AnchorWithHref(musicPathPrefix)); a != nil {
			return normalizeLink(a.Attr("href")), true
		}
		el = el.Parent()
	}

	if link := normalizeLink(doc.URL()); strings.HasPrefix(link, musicPathPrefix) {
		return link, true
	}
	return "", false
}

// pendingLocked returns the upload URLs of unresolved items in first-seen
// order. Caller holds the lock.
func (s *Scanner) pendingLocked() []string {
	var urls []string
	for _, link := range s.order {
		item := s.items[link]
		if item.State == AnnotatedPending || item.State == UploadTabOpen {
			urls = append(urls, item.UploadURL)
		}
	}
	return urls
}

// publish pushes the pending set to the relay. Publishing is best-effort;
// a missing relay only degrades the badge, never the scan.
func (s *Scanner) publish(ctx context.Context, pending []string) {
	if s.bus == nil {
		return
	}
	if err := s.bus.Notify(ctx, messaging.ActionUpdateMissingArtworkURLs,
		messaging.UpdateMissingArtworkURLs{TabID: s.tabID, URLs: pending}); err != nil {
		s.log.Debug("publish pending urls", "err", err)
	}
	title := fmt.Sprintf("%d missing artworks on this page", len(pending))
	if len(pending) == 1 {
		title = "1 missing artwork on this page"
	}
	if err := s.bus.Notify(ctx, messaging.ActionSetTitle,
		messaging.SetTitle{TabID: s.tabID, Title: title}); err != nil {
		s.log.Debug("publish title", "err", err)
	}
}

// Pending returns copies of the unresolved items in first-seen order.
func (s *Scanner) Pending() []Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Item
	for _, link := range s.order {
		item := s.items[link]
		if item.State == AnnotatedPending || item.State == UploadTabOpen {
			out = append(out, *item)
		}
	}
	return out
}

// Items returns copies of every registered item in first-seen order.
func (s *Scanner) Items() []Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Item, 0, len(s.order))
	for _, link := range s.order {
		out = append(out, *s.items[link])
	}
	return out
}

// Lookup returns the item for a target link.
func (s *Scanner) Lookup(targetLink string) (Item, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	item, ok := s.items[normalizeLink(targetLink)]
	if !ok {
		return Item{}, false
	}
	return *item, true
}

// MarkUploadOpen records that an upload tab is in flight for the target.
func (s *Scanner) MarkUploadOpen(targetLink string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if item, ok := s.items[normalizeLink(targetLink)]; ok && item.State == AnnotatedPending {
		item.State = UploadTabOpen
	}
}

// MarkResolved records a successful upload for the target. Every
// annotation for the target is considered fixed at once.
func (s *Scanner) MarkResolved(targetLink, imageID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	item, ok := s.items[normalizeLink(targetLink)]
	if !ok || item.State == Resolved {
		return
	}
	item.State = Resolved
	item.FixedImageID = imageID
	item.FixedImageURL = FixedImageURL(imageID)
}

// MarkAbandoned reverts an in-flight target to pending after its upload
// tab closed without resolving.
func (s *Scanner) MarkAbandoned(targetLink string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if item, ok := s.items[normalizeLink(targetLink)]; ok && item.State == UploadTabOpen {
		item.State = AnnotatedPending
	}
}

// AdvanceFocus scrolls the next pending item after the given target into
// view and focuses its first control once scrolling settles, or after a
// timeout when no settle signal arrives.
func (s *Scanner) AdvanceFocus(afterLink string) {
	if s.view == nil {
		return
	}
	next, ok := s.nextPending(normalizeLink(afterLink))
	if !ok || len(next.Annotations) == 0 {
		return
	}
	key := next.Annotations[0].Key

	settled := s.view.ScrollTo(key)
	go func() {
		select {
		case <-settled:
		case <-time.After(settleTimeout):
		}
		s.view.Focus(key)
	}()
}

// FocusFirst focuses the first pending item, for the on-load focus
// setting.
func (s *Scanner) FocusFirst() {
	s.AdvanceFocus("")
}

func (s *Scanner) nextPending(afterLink string) (Item, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	start := 0
	if afterLink != "" {
		for i, link := range s.order {
			if link == afterLink {
				start = i + 1
				break
			}
		}
	}
	for i := 0; i < len(s.order); i++ {
		link := s.order[(start+i)%len(s.order)]
		item := s.items[link]
		if item.State == AnnotatedPending {
			return *item, true
		}
	}
	return Item{}, false
}

// normalizeLink reduces absolute and relative album links to a common
// path form.
func normalizeLink(link string) string {
	u, err := url.Parse(link)
	if err != nil {
		return link
	}
	p := u.EscapedPath()
	return strings.TrimSuffix(p, "/")
}

// isUnknownAlbum reports whether a link uses the unknown-album path
// convention.
func isUnknownAlbum(link string) bool {
	return strings.Contains(link, "/_/") || strings.HasSuffix(link, "/_")
}

// UploadURL derives the artwork upload address for a target link. The
// unknown-album segment is stripped exactly once, so track links without
// an album land on the artist's upload page.
func UploadURL(targetLink string) string {
	p := normalizeLink(targetLink)
	if i := strings.Index(p, "/_/"); i >= 0 {
		p = p[:i] + p[i+2:]
	} else {
		p = strings.TrimSuffix(p, "/_")
	}
	return siteBase + p + "/+images/upload"
}

// FixedImageURL projects an uploaded image ID back onto a displayable
// artwork address.
func FixedImageURL(imageID string) string {
	return fmt.Sprintf("https://lastfm.freetls.fastly.net/i/u/300x300/%s.jpg", imageID)
}
