package logger

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProductionWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, true, "info")

	log.Info().Str("track_id", "abc123").Msg("track changed")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "info", line["level"])
	assert.Equal(t, "abc123", line["track_id"])
	assert.Equal(t, "track changed", line["message"])
}

func TestLevelFiltersDebug(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, true, "warn")

	log.Info().Msg("hidden")
	assert.Empty(t, buf.String())

	log.Warn().Msg("shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestDevelopmentLevelLabels(t *testing.T) {
	var buf bytes.Buffer
	log := NewDevelopment(&buf, true)

	log.Warn().Msg("player query failed")
	assert.Contains(t, buf.String(), "WRN")
	assert.Contains(t, buf.String(), "player query failed")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zerolog.DebugLevel, ParseLevel("DEBUG"))
	assert.Equal(t, zerolog.InfoLevel, ParseLevel("nonsense"))
	assert.Equal(t, zerolog.InfoLevel, ParseLevel(""))
}

func TestOpenFile(t *testing.T) {
	dir := t.TempDir()

	f, err := OpenFile(dir)
	require.NoError(t, err)
	defer f.Close()

	_, err = f.WriteString("hello\n")
	require.NoError(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestDevelopmentOmitsColorOffTerminal(t *testing.T) {
	var buf bytes.Buffer
	bufLog := New(&buf, false, "info")
	bufLog.Warn().Str("track_id", "abc123").Msg("lyrics fetch failed")

	assert.Contains(t, buf.String(), "WRN")
	assert.NotContains(t, buf.String(), "\x1b[")

	dir := t.TempDir()
	f, err := OpenFile(dir)
	require.NoError(t, err)
	fileLog := New(f, false, "info")
	fileLog.Info().Msg("viewer started")
	require.NoError(t, f.Close())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	data, err := os.ReadFile(filepath.Join(dir, entries[0].Name()))
	require.NoError(t, err)
	assert.Contains(t, string(data), "viewer started")
	assert.NotContains(t, string(data), "\x1b[")
}
