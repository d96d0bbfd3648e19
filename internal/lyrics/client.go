package lyrics

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"karolbroda.com/lyricbar/internal/cache"
	"karolbroda.com/lyricbar/internal/track"
)

type Provider interface {
	Name() string
	// Supports reports whether the track carries what the provider needs.
	Supports(trk *track.Info) bool
	Fetch(ctx context.Context, trk *track.Info) (Sequence, error)
}

type Cache interface {
	Get(trackID string) (*cache.LyricEntry, error)
	Set(trackID string, entry *cache.LyricEntry) error
}

type Result struct {
	Lines    Sequence
	Provider string
	Cached   bool
}

type Options struct {
	Providers []Provider
	// Cache may be nil.
	Cache   Cache
	Limiter *rate.Limiter
	// NoCacheRead always asks the providers; results are still written.
	NoCacheRead bool
	Logger      zerolog.Logger
}

// Client resolves lyrics for a track from the cache and then each provider
// in order.
type Client struct {
	providers   []Provider
	cache       Cache
	limiter     *rate.Limiter
	noCacheRead bool
	log         zerolog.Logger
}

func NewClient(opts Options) *Client {
	limiter := opts.Limiter
	if limiter == nil {
		limiter = rate.NewLimiter(rate.Inf, 0)
	}
	return &Client{
		providers:   opts.Providers,
		cache:       opts.Cache,
		limiter:     limiter,
		noCacheRead: opts.NoCacheRead,
		log:         opts.Logger.With().Str("component", "lyrics").Logger(),
	}
}

// FetchLyrics is best effort: every failure is logged and yields an empty
// sequence.
func (c *Client) FetchLyrics(ctx context.Context, trk *track.Info, refresh bool) Sequence {
	res, err := c.Fetch(ctx, trk, refresh)
	if err != nil {
		ev := c.log.Warn()
		if errors.Is(err, ErrNoLyrics) || errors.Is(err, context.Canceled) {
			ev = c.log.Debug()
		}
		ev.Err(err).Str("track_id", trackID(trk)).Msg("no lyrics for track")
		return nil
	}
	return res.Lines
}

// Fetch returns errors wrapping ErrAuth, ErrNetwork, ErrParse or
// ErrNoLyrics. refresh skips the cache read.
func (c *Client) Fetch(ctx context.Context, trk *track.Info, refresh bool) (*Result, error) {
	if !trk.IsValid() {
		return nil, fmt.Errorf("%w: track has no id or name", ErrNoLyrics)
	}

	if c.cache != nil && !refresh && !c.noCacheRead {
		if entry, err := c.cache.Get(trk.ID); err == nil && len(entry.Lines) > 0 {
			c.log.Debug().Str("track_id", trk.ID).Msg("lyrics served from cache")
			return &Result{Lines: fromCacheLines(entry.Lines), Provider: entry.Provider, Cached: true}, nil
		}
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNetwork, err)
	}

	var lastErr error = ErrNoLyrics
	for _, p := range c.providers {
		if !p.Supports(trk) {
			continue
		}

		start := time.Now()
		lines, err := p.Fetch(ctx, trk)
		if err == nil && len(lines) == 0 {
			err = ErrNoLyrics
		}
		if err != nil {
			c.log.Debug().Err(err).Str("provider", p.Name()).Str("track_id", trk.ID).Msg("provider returned no lyrics")
			lastErr = err
			if ctx.Err() != nil {
				return nil, fmt.Errorf("%w: %w", ErrNetwork, ctx.Err())
			}
			continue
		}

		c.log.Info().
			Str("provider", p.Name()).
			Str("track_id", trk.ID).
			Int("lines", len(lines)).
			Dur("took", time.Since(start)).
			Msg("lyrics fetched")

		if c.cache != nil {
			entry := &cache.LyricEntry{TrackName: trk.Name, Provider: p.Name(), Lines: toCacheLines(lines)}
			if err := c.cache.Set(trk.ID, entry); err != nil {
				c.log.Warn().Err(err).Str("track_id", trk.ID).Msg("failed to cache lyrics")
			}
		}

		return &Result{Lines: lines, Provider: p.Name()}, nil
	}

	return nil, lastErr
}

func toCacheLines(lines Sequence) []cache.Line {
	out := make([]cache.Line, len(lines))
	for i, l := range lines {
		out[i] = cache.Line{OffsetMs: l.Time.Milliseconds(), Text: l.Text}
	}
	return out
}

func fromCacheLines(lines []cache.Line) Sequence {
	out := make([]Line, len(lines))
	for i, l := range lines {
		out[i] = Line{Time: time.Duration(l.OffsetMs) * time.Millisecond, Text: l.Text}
	}
	return Normalize(out)
}

func trackID(trk *track.Info) string {
	if trk == nil {
		return ""
	}
	return trk.ID
}
