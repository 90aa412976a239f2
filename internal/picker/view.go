package picker

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/corentel/artfix/internal/artwork"
)

var (
	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86")).
			Bold(true)

	cursorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("212"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214"))

	sourceStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39"))
)

// View renders the picker view.
func (m *Model) View() string {
	var b strings.Builder

	b.WriteString(m.input.View())
	b.WriteString("\n\n")

	// Status/error messages (reserve 2 lines for consistent layout)
	if m.errorMsg != "" {
		b.WriteString(errorStyle.Render("Error: " + m.errorMsg))
	}
	b.WriteString("\n")
	if m.statusMsg != "" {
		b.WriteString(statusStyle.Render(m.statusMsg))
	}
	b.WriteString("\n")

	if m.result != nil {
		b.WriteString(m.renderCandidates())
	}

	b.WriteString("\n")
	b.WriteString(m.renderHelp())
	return b.String()
}

// renderCandidates renders the result list with the cursor and the
// attached marker.
func (m *Model) renderCandidates() string {
	var b strings.Builder

	visible := m.visibleRows()
	start := 0
	if m.cursor >= visible {
		start = m.cursor - visible + 1
	}

	for i := start; i < len(m.result.Candidates) && i < start+visible; i++ {
		c := m.result.Candidates[i]

		prefix := "  "
		line := m.candidateLine(c)
		if i == m.cursor {
			prefix = cursorStyle.Render("> ")
			line = cursorStyle.Render(line)
		}
		if c.ID == m.selectedID && m.attached {
			line = selectedStyle.Render("✓ " + m.candidateLine(c))
		}

		b.WriteString(prefix)
		b.WriteString(line)
		b.WriteString(" ")
		b.WriteString(sourceStyle.Render("[" + c.Source.ShortName() + "]"))
		b.WriteString("\n")
	}

	if len(m.result.Candidates) > start+visible {
		b.WriteString(dimStyle.Render(fmt.Sprintf("  ... %d more", len(m.result.Candidates)-start-visible)))
		b.WriteString("\n")
	}
	return b.String()
}

// candidateLine renders one candidate's metadata line.
func (m *Model) candidateLine(c artwork.Candidate) string {
	line := c.Title()
	if c.ReleaseDate != "" {
		line += " (" + releaseYear(c.ReleaseDate) + ")"
	}
	if c.TrackCount > 0 {
		line += fmt.Sprintf(" [%d tracks]", c.TrackCount)
	}
	if c.ExtraInfo != "" {
		line += " " + dimStyle.Render(c.ExtraInfo)
	}
	return line
}

func (m *Model) visibleRows() int {
	rows := m.height - 8
	if rows < 5 {
		rows = 5
	}
	return rows
}

// releaseYear reduces a full release date to its year.
func releaseYear(date string) string {
	if len(date) > 4 {
		return date[:4]
	}
	return date
}

// renderHelp renders context-sensitive help.
func (m *Model) renderHelp() string {
	var help string
	switch m.state {
	case StateInput:
		help = "Enter: Search | Esc: Close"
	case StateSearching:
		help = "Searching... | Esc: Close"
	case StateResults:
		help = "↑/↓: Navigate | Enter: Attach | Type to refine search | Esc: Close"
	case StateFullSizeLoading:
		help = "Resolving artwork... | Esc: Close"
	case StateAttaching:
		help = "Attaching... | Esc: Close"
	}
	return dimStyle.Render(help)
}
