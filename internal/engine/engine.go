package engine

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"karolbroda.com/lyricbar/internal/lyrics"
	"karolbroda.com/lyricbar/internal/track"
)

const (
	defaultInterval     = 300 * time.Millisecond
	defaultFetchTimeout = 30 * time.Second
	defaultQueryTimeout = 2 * time.Second
	msgBuffer           = 64
)

var ErrAlreadyRunning = errors.New("engine already running")

// Fetcher is satisfied by *lyrics.Client. It never fails; no lyrics is an
// empty sequence.
type Fetcher interface {
	FetchLyrics(ctx context.Context, trk *track.Info, refresh bool) lyrics.Sequence
}

// PositionSource reports elapsed playback time. The engine owns no clock.
type PositionSource interface {
	Position(ctx context.Context) (time.Duration, error)
}

type Options struct {
	Fetcher  Fetcher
	Player   PositionSource
	Interval time.Duration
	// FetchTimeout bounds one lyrics fetch including every provider.
	FetchTimeout time.Duration
	QueryTimeout time.Duration
	Visible      bool
	// OnVisibilityChange runs on the engine goroutine after a toggle.
	OnVisibilityChange func(visible bool)
	Logger             zerolog.Logger
}

type (
	trackChangedMsg   struct{ track track.Info }
	playingChangedMsg struct{ playing bool }
	visibilityMsg     struct {
		visible bool
		toggle  bool
	}
	refreshMsg       struct{}
	lyricsFetchedMsg struct {
		trackID string
		gen     uint64
		lines   lyrics.Sequence
	}
	tickMsg struct {
		trackID  string
		gen      uint64
		position time.Duration
	}
)

// Engine is the lyric synchronizer. Every state transition runs on the
// goroutine inside Run; the exported mutators only enqueue messages.
type Engine struct {
	fetcher      Fetcher
	player       PositionSource
	interval     time.Duration
	fetchTimeout time.Duration
	queryTimeout time.Duration
	onVisibility func(bool)
	log          zerolog.Logger

	msgs    chan any
	done    chan struct{}
	started atomic.Bool

	// owned by the loop goroutine
	runCtx      context.Context
	state       State
	fetchGen    uint64
	fetchCancel context.CancelFunc
	tickGen     uint64
	tickCancel  context.CancelFunc
	wg          sync.WaitGroup

	mu        sync.RWMutex
	published State
	subs      []chan State
}

func New(opts Options) *Engine {
	if opts.Interval <= 0 {
		opts.Interval = defaultInterval
	}
	if opts.FetchTimeout <= 0 {
		opts.FetchTimeout = defaultFetchTimeout
	}
	if opts.QueryTimeout <= 0 {
		opts.QueryTimeout = defaultQueryTimeout
	}

	e := &Engine{
		fetcher:      opts.Fetcher,
		player:       opts.Player,
		interval:     opts.Interval,
		fetchTimeout: opts.FetchTimeout,
		queryTimeout: opts.QueryTimeout,
		onVisibility: opts.OnVisibilityChange,
		log:          opts.Logger.With().Str("component", "engine").Logger(),
		msgs:         make(chan any, msgBuffer),
		done:         make(chan struct{}),
		runCtx:       context.Background(),
	}
	e.state = State{Visible: opts.Visible, ActiveIndex: -1}
	e.published = e.state.clone()
	return e
}

// Run processes messages until ctx is cancelled. It may be called once.
func (e *Engine) Run(ctx context.Context) error {
	if !e.started.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}

	runCtx, cancel := context.WithCancel(ctx)
	e.runCtx = runCtx
	defer func() {
		cancel()
		e.stopUpdater()
		e.wg.Wait()
		close(e.done)
		e.closeSubscribers()
	}()

	e.publish()

	for {
		select {
		case <-runCtx.Done():
			return nil
		case m := <-e.msgs:
			e.update(m)
		}
	}
}

// Done is closed once Run has returned.
func (e *Engine) Done() <-chan struct{} { return e.done }

func (e *Engine) SetTrack(info track.Info) { e.send(trackChangedMsg{track: info}) }

func (e *Engine) SetPlaying(playing bool) { e.send(playingChangedMsg{playing: playing}) }

func (e *Engine) SetVisible(visible bool) { e.send(visibilityMsg{visible: visible}) }

func (e *Engine) ToggleVisibility() { e.send(visibilityMsg{toggle: true}) }

// RefreshLyrics re-fetches the current track, bypassing the cache.
func (e *Engine) RefreshLyrics() { e.send(refreshMsg{}) }

func (e *Engine) send(m any) {
	select {
	case e.msgs <- m:
	case <-e.done:
	}
}

func (e *Engine) Snapshot() State {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.published.clone()
}

// Subscribe returns a channel carrying the latest state after each change.
// Slow readers only see the newest state. The channel closes when Run
// returns.
func (e *Engine) Subscribe() <-chan State {
	ch := make(chan State, 1)
	e.mu.Lock()
	defer e.mu.Unlock()
	select {
	case <-e.done:
		close(ch)
		return ch
	default:
	}
	ch <- e.published.clone()
	e.subs = append(e.subs, ch)
	return ch
}

func (e *Engine) update(m any) {
	switch msg := m.(type) {
	case trackChangedMsg:
		e.handleTrackChanged(msg.track)
	case playingChangedMsg:
		e.handlePlayingChanged(msg.playing)
	case visibilityMsg:
		e.handleVisibility(msg)
	case refreshMsg:
		e.handleRefresh()
	case lyricsFetchedMsg:
		e.handleLyricsFetched(msg)
	case tickMsg:
		e.handleTick(msg)
	}
}

func (e *Engine) handleTrackChanged(info track.Info) {
	if !info.IsValid() {
		return
	}

	if e.state.Track.IsSameTrack(&info) {
		// same song, maybe with better metadata
		if *e.state.Track != info {
			e.state.Track = &info
			e.publish()
		}
		return
	}

	e.log.Info().Str("track_id", info.ID).Str("name", info.Name).Msg("track changed")

	e.stopUpdater()
	e.state.Track = &info
	e.state.Lines = nil
	e.state.Status = lyrics.StatusUnknown
	e.state.ActiveIndex = -1
	e.publish()

	e.startFetch(false)
}

func (e *Engine) handlePlayingChanged(playing bool) {
	if e.state.Playing == playing {
		return
	}
	e.log.Debug().Bool("playing", playing).Msg("playback state changed")
	e.state.Playing = playing
	e.evaluate()
	e.publish()
}

func (e *Engine) handleVisibility(msg visibilityMsg) {
	visible := msg.visible
	if msg.toggle {
		visible = !e.state.Visible
	}
	if visible == e.state.Visible {
		return
	}

	e.state.Visible = visible
	e.evaluate()
	e.publish()

	if e.onVisibility != nil {
		e.onVisibility(visible)
	}
}

func (e *Engine) handleRefresh() {
	if e.state.Track == nil {
		return
	}
	e.log.Info().Str("track_id", e.state.Track.ID).Msg("manual lyrics refresh")
	e.startFetch(true)
}

func (e *Engine) handleLyricsFetched(msg lyricsFetchedMsg) {
	if msg.gen != e.fetchGen || e.state.Track == nil || msg.trackID != e.state.Track.ID {
		e.log.Debug().Str("track_id", msg.trackID).Msg("stale lyrics fetch discarded")
		return
	}

	e.fetchCancel = nil
	e.state.Lines = msg.lines
	e.state.Status = lyrics.StatusOf(msg.lines)
	e.state.ActiveIndex = -1

	e.log.Debug().Str("track_id", msg.trackID).Int("lines", len(msg.lines)).Msg("lyrics applied")

	e.evaluate()
	e.publish()
}

func (e *Engine) handleTick(msg tickMsg) {
	if msg.gen != e.tickGen || !e.state.Running || e.state.Track == nil || msg.trackID != e.state.Track.ID {
		return
	}

	idx := e.state.Lines.IndexAt(msg.position)
	if idx != e.state.ActiveIndex {
		e.state.ActiveIndex = idx
		e.publish()
	}
}

// evaluate starts or stops the updater so that it runs exactly when playing,
// visible and holding lyrics.
func (e *Engine) evaluate() {
	should := e.state.shouldRun()
	switch {
	case should && !e.state.Running:
		e.startUpdater()
	case !should && e.state.Running:
		e.stopUpdater()
	}
}

func (e *Engine) startFetch(refresh bool) {
	if e.fetchCancel != nil {
		e.fetchCancel()
	}

	e.fetchGen++
	gen := e.fetchGen
	trk := *e.state.Track

	ctx, cancel := context.WithTimeout(e.runCtx, e.fetchTimeout)
	e.fetchCancel = cancel

	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		defer cancel()

		lines := e.fetcher.FetchLyrics(ctx, &trk, refresh)

		select {
		case e.msgs <- lyricsFetchedMsg{trackID: trk.ID, gen: gen, lines: lines}:
		case <-e.runCtx.Done():
		}
	}()
}

// startUpdater cancels any running periodic task before scheduling a new
// one.
func (e *Engine) startUpdater() {
	e.stopUpdater()

	e.tickGen++
	gen := e.tickGen
	trackID := e.state.Track.ID

	ctx, cancel := context.WithCancel(e.runCtx)
	e.tickCancel = cancel
	e.state.Running = true

	e.log.Debug().Str("track_id", trackID).Dur("interval", e.interval).Msg("lyric updater started")

	e.wg.Add(1)
	go e.updaterLoop(ctx, gen, trackID)
}

// stopUpdater is idempotent and leaves ActiveIndex as it was.
func (e *Engine) stopUpdater() {
	if e.tickCancel == nil {
		e.state.Running = false
		return
	}
	e.tickCancel()
	e.tickCancel = nil
	e.state.Running = false
	e.log.Debug().Msg("lyric updater stopped")
}

func (e *Engine) updaterLoop(ctx context.Context, gen uint64, trackID string) {
	defer e.wg.Done()

	ticker := time.NewTicker(e.interval)
	defer ticker.Stop()

	e.pollPosition(ctx, gen, trackID)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			e.pollPosition(ctx, gen, trackID)
		}
	}
}

// pollPosition asks the player for elapsed time. A failed query skips this
// cycle; the updater keeps running.
func (e *Engine) pollPosition(ctx context.Context, gen uint64, trackID string) {
	qctx, cancel := context.WithTimeout(ctx, e.queryTimeout)
	pos, err := e.player.Position(qctx)
	cancel()
	if err != nil {
		if ctx.Err() == nil {
			e.log.Debug().Err(err).Msg("position query failed, skipping cycle")
		}
		return
	}

	select {
	case e.msgs <- tickMsg{trackID: trackID, gen: gen, position: pos}:
	case <-ctx.Done():
	}
}

func (e *Engine) publish() {
	snapshot := e.state.clone()

	e.mu.Lock()
	defer e.mu.Unlock()
	e.published = snapshot
	for _, ch := range e.subs {
		// keep only the newest state for slow readers
		select {
		case <-ch:
		default:
		}
		ch <- snapshot.clone()
	}
}

func (e *Engine) closeSubscribers() {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, ch := range e.subs {
		close(ch)
	}
	e.subs = nil
}
