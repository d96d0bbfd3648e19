package ui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"karolbroda.com/lyricbar/internal/engine"
)

const spinnerInterval = 120 * time.Millisecond

// Controller is the part of the engine the view drives.
type Controller interface {
	RefreshLyrics()
	ToggleVisibility()
	Subscribe() <-chan engine.State
}

type TickMsg time.Time

type StateMsg engine.State

type engineClosedMsg struct{}

type Model struct {
	engine     Controller
	updates    <-chan engine.State
	truncation int

	state     engine.State
	width     int
	tickCount int
	quitting  bool
}

type ModelConfig struct {
	Engine           Controller
	TruncationLength int
}

func NewModel(cfg ModelConfig) Model {
	m := Model{
		engine:     cfg.Engine,
		truncation: cfg.TruncationLength,
	}
	m.state.ActiveIndex = -1

	if cfg.Engine != nil {
		m.updates = cfg.Engine.Subscribe()
	}

	return m
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(tickCmd(), m.listenForState())
}

func tickCmd() tea.Cmd {
	return tea.Tick(spinnerInterval, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

func (m Model) listenForState() tea.Cmd {
	if m.updates == nil {
		return nil
	}

	return func() tea.Msg {
		s, ok := <-m.updates
		if !ok {
			return engineClosedMsg{}
		}
		return StateMsg(s)
	}
}

func (m Model) State() engine.State { return m.state }
func (m Model) IsQuitting() bool    { return m.quitting }
func (m Model) Width() int          { return m.width }
