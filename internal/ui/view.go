package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"karolbroda.com/lyricbar/internal/lyrics"
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#1DB954")).
			Bold(true)
	menuStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#B3B3B3"))
	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6B6B6B")).
			Faint(true)
	spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}
)

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	b.WriteString(titleStyle.Render(Title(m.state, m.truncation)))
	b.WriteString("\n")

	if label := m.menuLine(); label != "" {
		b.WriteString(menuStyle.Render(label))
		b.WriteString("\n")
	}

	b.WriteString(dimStyle.Render(m.helpLine()))
	b.WriteString("\n")

	return b.String()
}

func (m Model) menuLine() string {
	label := LyricsLabel(m.state)
	if label == "" {
		return ""
	}
	if m.state.Status == lyrics.StatusUnknown {
		return spinnerFrames[m.tickCount%len(spinnerFrames)] + " " + label
	}
	return label
}

func (m Model) helpLine() string {
	visibility := "hide lyrics"
	if !m.state.Visible {
		visibility = "show lyrics"
	}
	return "r refresh lyrics · v " + visibility + " · q quit"
}
