package picker

import (
	"net/url"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/corentel/artfix/internal/artwork"
)

const (
	keyEnter = "enter"
	keyUp    = "up"
	keyDown  = "down"
	keyEsc   = "esc"
)

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.SetSize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		newModel, cmd := m.handleKey(msg)
		if newModel != nil {
			return newModel, cmd
		}
		if cmd != nil {
			cmds = append(cmds, cmd)
		}

	case debounceMsg:
		// Only the newest keystroke generation fires a search.
		if msg.Seq == m.seq {
			return m, m.submit()
		}
		return m, nil

	case SearchResultMsg:
		return m.handleSearchResult(msg)

	case FullSizeResultMsg:
		return m.handleFullSizeResult(msg)

	case AttachDoneMsg:
		return m.handleAttachDone(msg)
	}

	if m.state.AcceptsInput() {
		before := m.input.Value()
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		if cmd != nil {
			cmds = append(cmds, cmd)
		}
		if m.input.Value() != before {
			m.seq++
			cmds = append(cmds, scheduleDebounce(m.seq))
		}
	}

	return m, tea.Batch(cmds...)
}

// handleKey processes keyboard input. A nil model means the key should
// fall through to the text input.
func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case keyEsc, "ctrl+c":
		return m, tea.Quit

	case keyEnter:
		if m.state.IsLoading() {
			return m, nil
		}
		if m.state == StateResults {
			if c, ok := m.currentCandidate(); ok {
				return m, m.selectCandidate(c)
			}
		}
		return m, m.submit()

	case keyUp, "k":
		if m.state.CanNavigate() && m.cursor > 0 {
			m.cursor--
		}
		return m, nil

	case keyDown, "j":
		if m.state.CanNavigate() && m.result != nil && m.cursor < len(m.result.Candidates)-1 {
			m.cursor++
		}
		return m, nil
	}

	return nil, nil
}

// submit classifies the current input: inline data is rejected, a direct
// image URL is attached as-is, anything else is a search query.
func (m *Model) submit() tea.Cmd {
	value := m.input.Value()
	if value == "" || value == m.lastQuery && m.state == StateSearching {
		return nil
	}

	m.errorMsg = ""

	if isDataURL(value) {
		m.errorMsg = "Pasting image data is not supported. Enter an image URL or search terms instead."
		return nil
	}

	if isDirectImageURL(value) {
		m.state = StateAttaching
		m.statusMsg = "Loading image..."
		return attachDirectCmd(m.fetcher, m.form, value)
	}

	m.lastQuery = value
	m.state = StateSearching
	m.statusMsg = "Searching..."
	src, ok := m.searchMode()
	return searchCmd(m.engine, src, !ok, value)
}

// handleSearchResult processes completed searches.
func (m *Model) handleSearchResult(msg SearchResultMsg) (tea.Model, tea.Cmd) {
	// A newer query was submitted while this search ran.
	if msg.Query != m.lastQuery {
		return m, nil
	}

	m.result = msg.Result
	m.cursor = 0
	m.state = StateResults
	m.statusMsg = msg.Result.Status()

	if len(msg.Result.Candidates) == 0 && len(msg.Result.Failed) == 0 {
		m.statusMsg += " Try Google Images: " + m.googleImagesURL(msg.Query)
	}
	return m, nil
}

// selectCandidate starts the fetch-and-attach flow for one candidate.
// Providers that only ship thumbnails resolve the full-size image first.
func (m *Model) selectCandidate(c artwork.Candidate) tea.Cmd {
	m.errorMsg = ""

	if c.Source.RequiresFullSizeFetch() {
		m.state = StateFullSizeLoading
		m.statusMsg = "Resolving full-size artwork..."
		return fullSizeCmd(m.resolver, c)
	}

	if c.ArtworkURL == "" {
		m.errorMsg = errNoArtworkImage.Error()
		return nil
	}

	m.state = StateAttaching
	m.statusMsg = "Loading image..."
	return attachCandidateCmd(m.fetcher, m.form, m.settings, c, c.ArtworkURL)
}

// handleFullSizeResult continues the attach flow once the full-size URL
// is known.
func (m *Model) handleFullSizeResult(msg FullSizeResultMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		m.state = StateResults
		m.statusMsg = ""
		m.errorMsg = "Could not resolve the full-size artwork: " + msg.Err.Error()
		return m, nil
	}

	m.state = StateAttaching
	m.statusMsg = "Loading image..."
	return m, attachCandidateCmd(m.fetcher, m.form, m.settings, msg.Candidate, msg.URL)
}

// handleAttachDone finishes the flow. Loading state is always cleared
// here, whatever the outcome.
func (m *Model) handleAttachDone(msg AttachDoneMsg) (tea.Model, tea.Cmd) {
	m.state = StateResults
	if m.result == nil {
		m.state = StateInput
	}
	m.statusMsg = ""

	if msg.Err != nil {
		m.errorMsg = "Could not attach the image: " + msg.Err.Error()
		return m, nil
	}

	m.attached = true
	m.selectedID = msg.CandidateID
	m.statusMsg = "Artwork attached."
	return m, nil
}

func (m *Model) googleImagesURL(query string) string {
	return m.settings.GoogleImagesSearchURL + url.QueryEscape(query)
}
