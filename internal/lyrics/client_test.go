package lyrics

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"karolbroda.com/lyricbar/internal/cache"
	"karolbroda.com/lyricbar/internal/track"
)

type stubProvider struct {
	name     string
	lines    Sequence
	err      error
	calls    atomic.Int32
	supports bool
}

func (s *stubProvider) Name() string                  { return s.name }
func (s *stubProvider) Supports(trk *track.Info) bool { return s.supports }
func (s *stubProvider) Fetch(ctx context.Context, trk *track.Info) (Sequence, error) {
	s.calls.Add(1)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.lines, s.err
}

func newTestClient(c Cache, providers ...Provider) *Client {
	return NewClient(Options{Providers: providers, Cache: c, Logger: zerolog.Nop()})
}

func TestFetchUsesFirstProviderWithLyrics(t *testing.T) {
	primary := &stubProvider{name: "spotify", err: ErrAuth, supports: true}
	fallback := &stubProvider{name: "lrclib", lines: sampleSequence(), supports: true}

	res, err := newTestClient(nil, primary, fallback).Fetch(context.Background(), songA, false)
	require.NoError(t, err)

	assert.Equal(t, "lrclib", res.Provider)
	assert.Len(t, res.Lines, 3)
	assert.Equal(t, int32(1), primary.calls.Load())
}

func TestFetchSkipsUnsupportedProviders(t *testing.T) {
	unsupported := &stubProvider{name: "lrclib", lines: sampleSequence()}

	_, err := newTestClient(nil, unsupported).Fetch(context.Background(), songA, false)
	assert.ErrorIs(t, err, ErrNoLyrics)
	assert.Equal(t, int32(0), unsupported.calls.Load())
}

func TestFetchLyricsAbsorbsErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"auth", ErrAuth},
		{"network", ErrNetwork},
		{"parse", ErrParse},
		{"no lyrics", ErrNoLyrics},
		{"other", errors.New("boom")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &stubProvider{name: "spotify", err: tt.err, supports: true}
			lines := newTestClient(nil, p).FetchLyrics(context.Background(), songA, false)
			assert.Empty(t, lines)
		})
	}
}

func TestFetchRejectsInvalidTrack(t *testing.T) {
	p := &stubProvider{name: "spotify", lines: sampleSequence(), supports: true}

	_, err := newTestClient(nil, p).Fetch(context.Background(), &track.Info{ID: "abc123"}, false)
	assert.ErrorIs(t, err, ErrNoLyrics)
	assert.Equal(t, int32(0), p.calls.Load())
}

func TestFetchCachesLoadedLyrics(t *testing.T) {
	c := cache.NewMemoryCache()
	p := &stubProvider{name: "spotify", lines: sampleSequence(), supports: true}
	client := newTestClient(c, p)

	_, err := client.Fetch(context.Background(), songA, false)
	require.NoError(t, err)

	res, err := client.Fetch(context.Background(), songA, false)
	require.NoError(t, err)
	assert.True(t, res.Cached)
	assert.Equal(t, "spotify", res.Provider)
	assert.Equal(t, sampleSequence(), res.Lines)
	assert.Equal(t, int32(1), p.calls.Load())

	// a manual refresh goes back to the provider
	res, err = client.Fetch(context.Background(), songA, true)
	require.NoError(t, err)
	assert.False(t, res.Cached)
	assert.Equal(t, int32(2), p.calls.Load())
}

func TestFetchDoesNotCacheEmptyResults(t *testing.T) {
	c := cache.NewMemoryCache()
	p := &stubProvider{name: "spotify", err: ErrNoLyrics, supports: true}
	client := newTestClient(c, p)

	_, _ = client.Fetch(context.Background(), songA, false)
	_, err := c.Get(songA.ID)
	assert.ErrorIs(t, err, cache.ErrCacheMiss)
}

func TestFetchHonoursCancellation(t *testing.T) {
	p := &stubProvider{name: "spotify", lines: sampleSequence(), supports: true}
	client := NewClient(Options{
		Providers: []Provider{p},
		Limiter:   nil,
		Logger:    zerolog.Nop(),
	})

	ctx, cancel := context.WithTimeout(context.Background(), time.Millisecond)
	defer cancel()
	<-ctx.Done()

	assert.Empty(t, client.FetchLyrics(ctx, songA, false))
}
