package player

import (
	"context"
	"time"

	"karolbroda.com/lyricbar/internal/track"
)

const StatePlaying = "Playing"

// Status is a one-off snapshot of the external player.
type Status struct {
	Running bool
	Playing bool
	Track   track.Info
}

// Event is a raw state-change broadcast. State is the reported playback
// state string, empty when the broadcast did not carry one. Track fields
// may be empty when only the playback state changed.
type Event struct {
	State string
	Track track.Info
}

func (e Event) HasState() bool { return e.State != "" }

// Player is the external media player. The core never controls playback.
type Player interface {
	Start() error
	Stop()
	Status(ctx context.Context) (Status, error)
	// Position is the elapsed playback time, always read live.
	Position(ctx context.Context) (time.Duration, error)
	Events() <-chan Event
}
