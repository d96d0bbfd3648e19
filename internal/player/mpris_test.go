package player

import (
	"testing"

	"github.com/godbus/dbus/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func spotifyMetadata() map[string]dbus.Variant {
	return map[string]dbus.Variant{
		"mpris:trackid": dbus.MakeVariant(dbus.ObjectPath("/com/spotify/track/abc123")),
		"xesam:title":   dbus.MakeVariant("Song A"),
		"xesam:artist":  dbus.MakeVariant([]string{"Band", "Guest"}),
		"xesam:album":   dbus.MakeVariant("Album"),
		"mpris:length":  dbus.MakeVariant(uint64(215_000_000)),
		"mpris:artUrl":  dbus.MakeVariant("https://i.scdn.co/image/xyz"),
	}
}

func propertiesChanged(iface string, changed map[string]dbus.Variant) *dbus.Signal {
	return &dbus.Signal{
		Name: propertiesSignal,
		Path: mprisPath,
		Body: []interface{}{iface, changed, []string{}},
	}
}

func TestTrackFromMetadata(t *testing.T) {
	info := trackFromMetadata(spotifyMetadata())

	assert.Equal(t, "abc123", info.ID)
	assert.Equal(t, "Song A", info.Name)
	assert.Equal(t, "Band, Guest", info.Artist)
	assert.Equal(t, "Album", info.Album)
	assert.Equal(t, int64(215), info.DurationSecs)
	assert.Equal(t, "https://i.scdn.co/image/xyz", info.ArtworkURL)
}

func TestTrackFromMetadataStringTrackID(t *testing.T) {
	meta := map[string]dbus.Variant{
		"mpris:trackid": dbus.MakeVariant("spotify:track:def456"),
		"xesam:title":   dbus.MakeVariant("Song B"),
		"xesam:artist":  dbus.MakeVariant("Solo"),
		"mpris:length":  dbus.MakeVariant(int64(-1)),
	}

	info := trackFromMetadata(meta)
	assert.Equal(t, "def456", info.ID)
	assert.Equal(t, "Solo", info.Artist)
	assert.Equal(t, int64(0), info.DurationSecs)
}

func TestEventFromSignalPlaybackAndMetadata(t *testing.T) {
	sig := propertiesChanged(mprisPlayerIface, map[string]dbus.Variant{
		"PlaybackStatus": dbus.MakeVariant("Playing"),
		"Metadata":       dbus.MakeVariant(spotifyMetadata()),
	})

	ev, ok := eventFromSignal(sig)
	require.True(t, ok)
	assert.Equal(t, StatePlaying, ev.State)
	assert.True(t, ev.HasState())
	assert.Equal(t, "abc123", ev.Track.ID)
}

func TestEventFromSignalStateOnly(t *testing.T) {
	sig := propertiesChanged(mprisPlayerIface, map[string]dbus.Variant{
		"PlaybackStatus": dbus.MakeVariant("Paused"),
	})

	ev, ok := eventFromSignal(sig)
	require.True(t, ok)
	assert.Equal(t, "Paused", ev.State)
	assert.False(t, ev.Track.IsValid())
}

func TestEventFromSignalIgnoresOtherSignals(t *testing.T) {
	tests := []struct {
		name string
		sig  *dbus.Signal
	}{
		{"nil", nil},
		{"other interface", propertiesChanged(mprisRootIface, map[string]dbus.Variant{"Identity": dbus.MakeVariant("Spotify")})},
		{"unrelated property", propertiesChanged(mprisPlayerIface, map[string]dbus.Variant{"Volume": dbus.MakeVariant(0.5)})},
		{"other member", &dbus.Signal{Name: "org.mpris.MediaPlayer2.Player.Seeked", Body: []interface{}{int64(5)}}},
		{"short body", &dbus.Signal{Name: propertiesSignal, Body: []interface{}{mprisPlayerIface}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok := eventFromSignal(tt.sig)
			assert.False(t, ok)
		})
	}
}

func TestNewMPRISValidatesArguments(t *testing.T) {
	_, err := NewMPRIS(nil, "org.mpris.MediaPlayer2.spotify", zerolog.Nop())
	assert.Error(t, err)
}

func TestIsServiceUnknown(t *testing.T) {
	assert.True(t, isServiceUnknown(dbus.Error{Name: "org.freedesktop.DBus.Error.ServiceUnknown"}))
	assert.True(t, isServiceUnknown(&dbus.Error{Name: "org.freedesktop.DBus.Error.ServiceUnknown"}))
	assert.False(t, isServiceUnknown(dbus.Error{Name: "org.freedesktop.DBus.Error.NoReply"}))
}
