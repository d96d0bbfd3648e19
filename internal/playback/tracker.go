package playback

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"karolbroda.com/lyricbar/internal/player"
	"karolbroda.com/lyricbar/internal/track"
)

// Sink receives the canonical mutations. The synchronizer engine is the
// production sink.
type Sink interface {
	SetTrack(info track.Info)
	SetPlaying(playing bool)
}

// Tracker turns player polls and broadcasts into Sink calls. Reports with an
// empty track id or name never overwrite the current track.
type Tracker struct {
	player player.Player
	sink   Sink
	log    zerolog.Logger
}

func NewTracker(p player.Player, sink Sink, log zerolog.Logger) *Tracker {
	return &Tracker{
		player: p,
		sink:   sink,
		log:    log.With().Str("component", "tracker").Logger(),
	}
}

// PollOnActivate queries the player once, as when the view first appears.
func (t *Tracker) PollOnActivate(ctx context.Context) {
	status, err := t.player.Status(ctx)
	if err != nil {
		if errors.Is(err, player.ErrNotRunning) {
			t.log.Debug().Msg("player not running")
		} else {
			t.log.Warn().Err(err).Msg("player poll failed")
		}
		return
	}
	if !status.Running {
		t.log.Debug().Msg("player not running")
		return
	}

	t.log.Debug().Bool("playing", status.Playing).Str("track_id", status.Track.ID).Msg("polled player")

	t.sink.SetPlaying(status.Playing)
	if status.Track.IsValid() {
		t.sink.SetTrack(status.Track)
	}
}

// Start seeds the sink from one poll, then forwards broadcasts in the
// background. The poll completes first so it cannot overwrite a newer
// broadcast.
func (t *Tracker) Start(ctx context.Context) {
	t.PollOnActivate(ctx)
	go t.Run(ctx)
}

// Run forwards player broadcasts until ctx ends or the event stream closes.
func (t *Tracker) Run(ctx context.Context) {
	events := t.player.Events()
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			t.handleEvent(ev)
		}
	}
}

func (t *Tracker) handleEvent(ev player.Event) {
	if ev.HasState() {
		t.sink.SetPlaying(ev.State == player.StatePlaying)
	}

	if ev.Track.IsValid() {
		t.sink.SetTrack(ev.Track)
	} else if ev.Track.ID != "" || ev.Track.Name != "" {
		t.log.Debug().Str("track_id", ev.Track.ID).Str("name", ev.Track.Name).Msg("ignoring incomplete track metadata")
	}
}
