package monitor

import (
	"context"
	"errors"
	"sync"
	"testing"
	"testing/synctest"
	"time"

	"github.com/corentel/artfix/internal/messaging"
	"github.com/corentel/artfix/internal/settings"
)

type fakeTab struct {
	mu     sync.Mutex
	url    string
	urlErr error
	closed bool
}

func (f *fakeTab) set(url string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.url, f.urlErr = url, err
}

func (f *fakeTab) URL() (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.url, f.urlErr
}

func (f *fakeTab) Closed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

func (f *fakeTab) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

type fakeRegistry struct {
	mu        sync.Mutex
	opened    []string
	resolved  map[string]string
	abandoned []string
	focused   []string
}

func newFakeRegistry() *fakeRegistry {
	return &fakeRegistry{resolved: make(map[string]string)}
}

func (r *fakeRegistry) MarkUploadOpen(link string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.opened = append(r.opened, link)
}

func (r *fakeRegistry) MarkResolved(link, imageID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.resolved[link] = imageID
}

func (r *fakeRegistry) MarkAbandoned(link string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.abandoned = append(r.abandoned, link)
}

func (r *fakeRegistry) AdvanceFocus(link string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.focused = append(r.focused, link)
}

type fakeLedger struct {
	mu    sync.Mutex
	seen  map[string]bool
	count int64
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{seen: make(map[string]bool)}
}

func (l *fakeLedger) MarkFixed(imageID string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.seen[imageID] {
		return false, nil
	}
	l.seen[imageID] = true
	l.count++
	return true, nil
}

func (l *fakeLedger) FixedCount() (int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.count, nil
}

type fakeOpener struct {
	tab *fakeTab
	url string
	err error
}

func (o *fakeOpener) Open(url string) (Tab, error) {
	o.url = url
	if o.err != nil {
		return nil, o.err
	}
	return o.tab, nil
}

func badgeCapture(t *testing.T) (*messaging.Bus, *[]string) {
	t.Helper()
	var texts []string
	bus := messaging.NewBus()
	bus.Handle(messaging.ActionSetBadgeText, func(_ context.Context, req any) (any, error) {
		texts = append(texts, req.(messaging.SetBadgeText).Text)
		return nil, nil
	})
	return bus, &texts
}

func TestClassify(t *testing.T) {
	tests := []struct {
		addr string
		want Status
	}{
		{"https://www.last.fm/music/Air/Moon+Safari/+images/upload", Pending},
		{"https://www.last.fm/music/Air/Moon+Safari/+images/abc123", Resolved},
		{"https://www.last.fm/music/Air/Moon+Safari", Pending},
		{"https://www.last.fm/music/Air/Moon+Safari/+images/", Resolved},
	}
	for _, tt := range tests {
		if got := Classify(tt.addr); got != tt.want {
			t.Errorf("Classify(%q) = %v, want %v", tt.addr, got, tt.want)
		}
	}
}

func TestImageID(t *testing.T) {
	tests := []struct {
		addr string
		want string
	}{
		{"https://www.last.fm/music/Air/Moon+Safari/+images/abc123", "abc123"},
		{"https://www.last.fm/music/Air/Moon+Safari/+images/abc123/", "abc123"},
		{"https://www.last.fm/music/Air/Moon+Safari/+images/abc123?foo=1", "abc123"},
	}
	for _, tt := range tests {
		if got := ImageID(tt.addr); got != tt.want {
			t.Errorf("ImageID(%q) = %q, want %q", tt.addr, got, tt.want)
		}
	}
}

func TestFix_ResolvesAndCounts(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		tab := &fakeTab{url: "https://www.last.fm/music/Air/Moon+Safari/+images/upload"}
		opener := &fakeOpener{tab: tab}
		registry := newFakeRegistry()
		ledger := newFakeLedger()
		bus, badges := badgeCapture(t)

		m := New(Config{
			Opener:   opener,
			Registry: registry,
			Ledger:   ledger,
			Settings: settings.Default(),
			Bus:      bus,
			TabID:    1,
		})

		w, err := m.Fix("/music/Air/Moon+Safari")
		if err != nil {
			t.Fatalf("Fix failed: %v", err)
		}
		if opener.url != "https://www.last.fm/music/Air/Moon+Safari/+images/upload" {
			t.Errorf("opened url = %q", opener.url)
		}
		if len(registry.opened) != 1 {
			t.Errorf("MarkUploadOpen calls = %d, want 1", len(registry.opened))
		}

		// Two polls on the form, then the flow resolves.
		time.Sleep(4100 * time.Millisecond)
		tab.set("https://www.last.fm/music/Air/Moon+Safari/+images/abc123", nil)

		outcome := <-w.Done()
		if outcome != Fixed {
			t.Fatalf("outcome = %v, want Fixed", outcome)
		}

		registry.mu.Lock()
		if registry.resolved["/music/Air/Moon+Safari"] != "abc123" {
			t.Errorf("resolved = %v", registry.resolved)
		}
		registry.mu.Unlock()

		if got, _ := ledger.FixedCount(); got != 1 {
			t.Errorf("count = %d, want 1", got)
		}
		if len(*badges) != 1 || (*badges)[0] != "1" {
			t.Errorf("badges = %v, want [1]", *badges)
		}

		// Default settings auto-close the tab and do not advance focus.
		if !tab.Closed() {
			t.Error("tab should be auto-closed")
		}
		if len(registry.focused) != 0 {
			t.Errorf("focused = %v, want none", registry.focused)
		}
	})
}

func TestWatch_URLErrorIsIndeterminate(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		tab := &fakeTab{urlErr: errors.New("cross-origin frame")}
		registry := newFakeRegistry()
		m := New(Config{Registry: registry, Ledger: newFakeLedger(), Settings: settings.Default()})

		w := m.Watch(tab, "/music/Air/Moon+Safari")

		// Unreadable URLs keep the watch alive.
		time.Sleep(10 * time.Second)
		synctest.Wait()
		select {
		case out := <-w.Done():
			t.Fatalf("watch terminated with %v during cross-origin phase", out)
		default:
		}

		tab.set("https://www.last.fm/music/Air/Moon+Safari/+images/xyz", nil)
		if out := <-w.Done(); out != Fixed {
			t.Fatalf("outcome = %v, want Fixed", out)
		}
	})
}

func TestWatch_ClosedTabIsAbandoned(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		tab := &fakeTab{url: "https://www.last.fm/music/Air/Moon+Safari/+images/upload"}
		registry := newFakeRegistry()
		ledger := newFakeLedger()
		m := New(Config{Registry: registry, Ledger: ledger, Settings: settings.Default()})

		w := m.Watch(tab, "/music/Air/Moon+Safari")
		time.Sleep(2100 * time.Millisecond)
		tab.Close()

		if out := <-w.Done(); out != Abandoned {
			t.Fatalf("outcome = %v, want Abandoned", out)
		}
		registry.mu.Lock()
		defer registry.mu.Unlock()
		if len(registry.abandoned) != 1 {
			t.Errorf("abandoned = %v", registry.abandoned)
		}
		if len(registry.resolved) != 0 {
			t.Errorf("resolved = %v, want none", registry.resolved)
		}
		if got, _ := ledger.FixedCount(); got != 0 {
			t.Errorf("count = %d, want 0", got)
		}
	})
}

func TestResolved_CountsOncePerImage(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		registry := newFakeRegistry()
		ledger := newFakeLedger()
		bus, badges := badgeCapture(t)
		m := New(Config{Registry: registry, Ledger: ledger, Settings: settings.Default(), Bus: bus, TabID: 1})

		for i := 0; i < 2; i++ {
			tab := &fakeTab{url: "https://www.last.fm/music/Air/Moon+Safari/+images/same-id"}
			w := m.Watch(tab, "/music/Air/Moon+Safari")
			<-w.Done()
		}

		if got, _ := ledger.FixedCount(); got != 1 {
			t.Errorf("count = %d, want 1", got)
		}
		if len(*badges) != 1 {
			t.Errorf("badge published %d times, want 1", len(*badges))
		}
	})
}

func TestResolved_AutoFocusNextSetting(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		on := true
		off := false
		cfg := settings.Default()
		cfg.AutoFocusNextArtwork = &on
		cfg.AutoCloseUploadTab = &off

		registry := newFakeRegistry()
		m := New(Config{Registry: registry, Ledger: newFakeLedger(), Settings: cfg})

		tab := &fakeTab{url: "https://www.last.fm/music/Air/Moon+Safari/+images/id1"}
		w := m.Watch(tab, "/music/Air/Moon+Safari")
		<-w.Done()

		registry.mu.Lock()
		defer registry.mu.Unlock()
		if len(registry.focused) != 1 || registry.focused[0] != "/music/Air/Moon+Safari" {
			t.Errorf("focused = %v", registry.focused)
		}
		if tab.Closed() {
			t.Error("tab closed despite auto-close off")
		}
	})
}
