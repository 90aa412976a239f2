// Package picker provides the interactive artwork selection view: a
// debounced search box over the aggregation engine, a candidate list, and
// the select/fetch/attach flow that fills an upload form.
package picker

import (
	"context"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/corentel/artfix/internal/artwork"
	"github.com/corentel/artfix/internal/fetchproxy"
	"github.com/corentel/artfix/internal/settings"
)

// ImageFetcher retrieves and validates image bytes.
type ImageFetcher interface {
	FetchImage(ctx context.Context, rawURL string) (fetchproxy.Image, error)
}

// ReleaseResolver resolves a release page into its full-size artwork URL.
type ReleaseResolver interface {
	ReleaseImageURL(ctx context.Context, releaseURL string) (string, error)
}

// Config wires the picker to its collaborators.
type Config struct {
	Engine   *artwork.Engine
	Fetcher  ImageFetcher
	Resolver ReleaseResolver
	Form     UploadForm
	Settings *settings.Settings

	// Query is the initial search, usually DefaultQuery over page text.
	Query string
}

// Model is the Bubble Tea model for the picker view.
type Model struct {
	state State
	input textinput.Model

	engine   *artwork.Engine
	fetcher  ImageFetcher
	resolver ReleaseResolver
	form     UploadForm
	settings *settings.Settings

	// Debounce bookkeeping: seq identifies the newest keystroke
	// generation, lastQuery the last submitted search.
	seq       int
	lastQuery string

	result     *artwork.Result
	cursor     int
	selectedID string
	attached   bool

	statusMsg string
	errorMsg  string

	width, height int
}

// New creates a picker model. The initial query, when present, is
// searched as soon as the program starts.
func New(cfg Config) *Model {
	ti := textinput.New()
	ti.Placeholder = "Search artwork or paste an image URL..."
	ti.Focus()
	ti.CharLimit = 256
	ti.Width = 50
	ti.SetValue(cfg.Query)

	return &Model{
		state:    StateInput,
		input:    ti,
		engine:   cfg.Engine,
		fetcher:  cfg.Fetcher,
		resolver: cfg.Resolver,
		form:     cfg.Form,
		settings: cfg.Settings,
	}
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{textinput.Blink}
	if m.input.Value() != "" {
		cmds = append(cmds, m.submit())
	}
	return tea.Batch(cmds...)
}

// SetSize sets the dimensions of the picker view.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.input.Width = width - 4
}

// State returns the current state.
func (m *Model) State() State {
	return m.state
}

// Attached reports whether an artwork was attached to the form.
func (m *Model) Attached() bool {
	return m.attached
}

// SelectedID returns the ID of the attached candidate; empty for
// direct-URL attaches or when nothing was attached.
func (m *Model) SelectedID() string {
	return m.selectedID
}

// currentCandidate returns the candidate under the cursor.
func (m *Model) currentCandidate() (artwork.Candidate, bool) {
	if m.result == nil || m.cursor >= len(m.result.Candidates) {
		return artwork.Candidate{}, false
	}
	return m.result.Candidates[m.cursor], true
}

// searchMode resolves the configured provider selection: combined search
// when the selected source is "All" or unknown.
func (m *Model) searchMode() (artwork.Source, bool) {
	src, ok := artwork.ParseSource(m.settings.SelectedSource)
	return src, ok
}
