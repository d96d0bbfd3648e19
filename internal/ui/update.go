package ui

import (
	tea "github.com/charmbracelet/bubbletea"

	"karolbroda.com/lyricbar/internal/engine"
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case StateMsg:
		m.state = engine.State(msg)
		return m, m.listenForState()

	case engineClosedMsg:
		m.quitting = true
		return m, tea.Quit

	case TickMsg:
		m.tickCount++
		return m, tickCmd()
	}

	return m, nil
}

func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "esc":
		m.quitting = true
		return m, tea.Quit

	case "r":
		if m.engine != nil {
			m.engine.RefreshLyrics()
		}
		return m, nil

	case "v":
		if m.engine != nil {
			m.engine.ToggleVisibility()
		}
		return m, nil
	}

	return m, nil
}
