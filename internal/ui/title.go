package ui

import (
	"karolbroda.com/lyricbar/internal/engine"
	"karolbroda.com/lyricbar/internal/lyrics"
)

const (
	nothingPlaying = "Nothing Playing on Spotify"
	instrumental   = "♪"
	ellipsis       = "…"
)

// Title is the one-line status text: the active lyric while it is shown,
// otherwise the track name with its playback state.
func Title(s engine.State, maxLen int) string {
	if s.Track == nil {
		return nothingPlaying
	}

	if s.Playing && s.Visible {
		if line, ok := s.ActiveLine(); ok {
			text := line.Text
			if text == "" {
				text = instrumental
			}
			return Truncate(text, maxLen)
		}
	}

	prefix := "Paused"
	if s.Playing {
		prefix = "Now Playing"
	}
	return Truncate(prefix+": "+s.Track.Name, maxLen)
}

func LyricsLabel(s engine.State) string {
	if s.Track == nil {
		return ""
	}
	switch s.Status {
	case lyrics.StatusLoaded:
		return "Lyrics Found"
	case lyrics.StatusEmpty:
		return "No Lyrics Found"
	default:
		return "Checking…"
	}
}

// Truncate keeps the first maxLen runes of s and appends an ellipsis when
// anything was cut. A non-positive maxLen disables truncation.
func Truncate(s string, maxLen int) string {
	if maxLen <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen]) + ellipsis
}
