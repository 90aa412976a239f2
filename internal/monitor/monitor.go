// Package monitor follows an upload tab until its flow resolves or is
// abandoned. The tab is externally controlled and cross-origin at times,
// so the only reliable signal is its URL, observed by polling.
package monitor

import (
	"context"
	"io"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/corentel/artfix/internal/messaging"
	"github.com/corentel/artfix/internal/poll"
	"github.com/corentel/artfix/internal/scanner"
	"github.com/corentel/artfix/internal/settings"
)

const defaultPollInterval = 2 * time.Second

const (
	imagesSegment = "/+images/"
	uploadSegment = "/+images/upload"
)

// Status classifies one observation of an upload tab's URL.
type Status int

const (
	// Pending: the flow has not completed yet.
	Pending Status = iota
	// Resolved: the tab landed on an uploaded image page.
	Resolved
	// Indeterminate: the URL could not be read (cross-origin navigation
	// mid-flow). Treated as Pending.
	Indeterminate
)

// Outcome is the terminal result of a watch.
type Outcome int

const (
	Fixed Outcome = iota
	Abandoned
)

// Tab is a browser tab under observation.
type Tab interface {
	// URL returns the tab's current address. An error means the address
	// is not readable right now, not that the tab is gone.
	URL() (string, error)
	Closed() bool
	Close() error
}

// Opener creates upload tabs.
type Opener interface {
	Open(url string) (Tab, error)
}

// Registry receives the state transitions the monitor observes. Satisfied
// by *scanner.Scanner.
type Registry interface {
	MarkUploadOpen(targetLink string)
	MarkResolved(targetLink, imageID string)
	MarkAbandoned(targetLink string)
	AdvanceFocus(afterLink string)
}

// Ledger guards the fixed-artworks counter against double counting.
type Ledger interface {
	MarkFixed(imageID string) (bool, error)
	FixedCount() (int64, error)
}

// Config wires a monitor to its collaborators.
type Config struct {
	Opener   Opener
	Registry Registry
	Ledger   Ledger
	Settings *settings.Settings
	Bus      *messaging.Bus // badge updates; optional
	TabID    int            // catalog page tab owning the badge
	Interval time.Duration
	Logger   *log.Logger
}

type Monitor struct {
	opener   Opener
	registry Registry
	ledger   Ledger
	settings *settings.Settings
	bus      *messaging.Bus
	tabID    int
	interval time.Duration
	log      *log.Logger
}

func New(cfg Config) *Monitor {
	logger := cfg.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	interval := cfg.Interval
	if interval == 0 {
		interval = defaultPollInterval
	}
	return &Monitor{
		opener:   cfg.Opener,
		registry: cfg.Registry,
		ledger:   cfg.Ledger,
		settings: cfg.Settings,
		bus:      cfg.Bus,
		tabID:    cfg.TabID,
		interval: interval,
		log:      logger,
	}
}

// Watch is one running upload-flow observation.
type Watch struct {
	task    *poll.Task
	outcome chan Outcome
}

// Done delivers the terminal outcome exactly once.
func (w *Watch) Done() <-chan Outcome { return w.outcome }

// Stop cancels the observation without a terminal outcome.
func (w *Watch) Stop() { w.task.Stop() }

// Fix opens the upload tab for a target link and watches it.
func (m *Monitor) Fix(targetLink string) (*Watch, error) {
	uploadURL := scanner.UploadURL(targetLink)
	tab, err := m.opener.Open(uploadURL)
	if err != nil {
		return nil, err
	}
	m.registry.MarkUploadOpen(targetLink)
	m.log.Debug("upload tab opened", "target", targetLink, "url", uploadURL)
	return m.Watch(tab, targetLink), nil
}

// Watch polls an already-open upload tab until it resolves or closes.
func (m *Monitor) Watch(tab Tab, targetLink string) *Watch {
	w := &Watch{outcome: make(chan Outcome, 1)}
	w.task = poll.Start(m.interval, func() poll.Decision {
		// Closed-first: a closed tab's URL is meaningless.
		if tab.Closed() {
			m.registry.MarkAbandoned(targetLink)
			m.log.Debug("upload abandoned", "target", targetLink)
			w.outcome <- Abandoned
			return poll.Stop
		}

		addr, err := tab.URL()
		if err != nil {
			// Mid-flow the tab can sit on a page we cannot read. Not a
			// failure; keep polling.
			return poll.Continue
		}

		if Classify(addr) != Resolved {
			return poll.Continue
		}

		m.resolved(tab, targetLink, ImageID(addr))
		w.outcome <- Fixed
		return poll.Stop
	})
	return w
}

func (m *Monitor) resolved(tab Tab, targetLink, imageID string) {
	m.registry.MarkResolved(targetLink, imageID)
	m.log.Info("artwork fixed", "target", targetLink, "image", imageID)

	first, err := m.ledger.MarkFixed(imageID)
	if err != nil {
		m.log.Error("record fixed artwork", "image", imageID, "err", err)
	}
	if first {
		m.publishBadge()
	}

	if m.settings.AutoClose() {
		if err := tab.Close(); err != nil {
			m.log.Warn("close upload tab", "err", err)
		}
	}
	if m.settings.AutoFocusNext() {
		m.registry.AdvanceFocus(targetLink)
	}
}

func (m *Monitor) publishBadge() {
	if m.bus == nil {
		return
	}
	count, err := m.ledger.FixedCount()
	if err != nil {
		m.log.Error("read fixed count", "err", err)
		return
	}
	if err := m.bus.Notify(context.Background(), messaging.ActionSetBadgeText,
		messaging.SetBadgeText{TabID: m.tabID, Text: strconv.FormatInt(count, 10)}); err != nil {
		m.log.Debug("publish badge", "err", err)
	}
}

// Classify decides what one URL observation means for the upload flow:
// the flow has resolved once the tab sits on an image page that is not
// the upload form itself.
func Classify(addr string) Status {
	if strings.Contains(addr, imagesSegment) && !strings.Contains(addr, uploadSegment) {
		return Resolved
	}
	return Pending
}

// ImageID extracts the uploaded image's identifier: the final path
// segment of a resolved image page URL.
func ImageID(addr string) string {
	u, err := url.Parse(addr)
	if err != nil {
		return ""
	}
	p := strings.TrimSuffix(u.EscapedPath(), "/")
	if i := strings.LastIndex(p, "/"); i >= 0 {
		return p[i+1:]
	}
	return p
}
