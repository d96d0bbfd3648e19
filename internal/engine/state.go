package engine

import (
	"karolbroda.com/lyricbar/internal/lyrics"
	"karolbroda.com/lyricbar/internal/track"
)

// State is the published view of the synchronizer. Readers get copies;
// Lines is never mutated in place once published.
type State struct {
	// Track is nil until the player reports one.
	Track   *track.Info
	Playing bool
	Visible bool
	Lines   lyrics.Sequence
	Status  lyrics.Status
	// ActiveIndex indexes Lines, -1 when no line is selected.
	ActiveIndex int
	// Running reports whether the periodic updater is alive.
	Running bool
}

func (s State) LyricsFound() bool {
	return len(s.Lines) > 0
}

func (s State) ActiveLine() (lyrics.Line, bool) {
	if s.ActiveIndex < 0 || s.ActiveIndex >= len(s.Lines) {
		return lyrics.Line{}, false
	}
	return s.Lines[s.ActiveIndex], true
}

func (s State) shouldRun() bool {
	return s.Playing && s.Visible && len(s.Lines) > 0
}

func (s State) clone() State {
	if s.Track != nil {
		trk := *s.Track
		s.Track = &trk
	}
	return s
}
