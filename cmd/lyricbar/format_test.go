package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"karolbroda.com/lyricbar/internal/cache"
)

func TestFormatTimestamp(t *testing.T) {
	assert.Equal(t, "0:00.00", formatTimestamp(0))
	assert.Equal(t, "0:05.50", formatTimestamp(5500*time.Millisecond))
	assert.Equal(t, "2:03.25", formatTimestamp(2*time.Minute+3250*time.Millisecond))
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "0:00", formatDuration(-time.Second))
	assert.Equal(t, "3:35", formatDuration(215*time.Second))
	assert.Equal(t, "0:09", formatDuration(9900*time.Millisecond))
}

func TestFormatBytes(t *testing.T) {
	assert.Equal(t, "512 B", formatBytes(512))
	assert.Equal(t, "1.5 KB", formatBytes(1536))
	assert.Equal(t, "2.0 MB", formatBytes(2*1024*1024))
}

func TestSortCacheEntries(t *testing.T) {
	entries := []*cache.LyricEntry{
		{TrackID: "a", TrackName: "beta", Provider: "spotify", CreatedAt: 1},
		{TrackID: "b", TrackName: "Alpha", Provider: "lrclib", CreatedAt: 3},
		{TrackID: "c", TrackName: "gamma", Provider: "spotify", CreatedAt: 2},
	}

	ids := func() []string {
		out := make([]string, len(entries))
		for i, e := range entries {
			out[i] = e.TrackID
		}
		return out
	}

	sortCacheEntries(entries, "date")
	assert.Equal(t, []string{"b", "c", "a"}, ids())

	sortCacheEntries(entries, "name")
	assert.Equal(t, []string{"b", "a", "c"}, ids())

	sortCacheEntries(entries, "provider")
	assert.Equal(t, []string{"b", "a", "c"}, ids())
}

func TestYesNo(t *testing.T) {
	assert.Equal(t, "ready", yesNo(true, "ready", "login required"))
	assert.Equal(t, "login required", yesNo(false, "ready", "login required"))
	assert.Equal(t, "memory only", cachePathOrMemory(""))
}
