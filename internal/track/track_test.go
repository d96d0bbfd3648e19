package track

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsValid(t *testing.T) {
	tests := []struct {
		name string
		info *Info
		want bool
	}{
		{"nil", nil, false},
		{"empty", &Info{}, false},
		{"missing name", &Info{ID: "abc123"}, false},
		{"missing id", &Info{Name: "Song A"}, false},
		{"complete", &Info{ID: "abc123", Name: "Song A"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.info.IsValid())
		})
	}
}

func TestIsSameTrackComparesByID(t *testing.T) {
	a := &Info{ID: "abc123", Name: "Song A"}
	renamed := &Info{ID: "abc123", Name: "Song A (Remastered)"}
	other := &Info{ID: "def456", Name: "Song A"}

	assert.True(t, a.IsSameTrack(renamed))
	assert.False(t, a.IsSameTrack(other))
	assert.False(t, a.IsSameTrack(nil))

	var none *Info
	assert.True(t, none.IsSameTrack(nil))
}

func TestIDFromURI(t *testing.T) {
	assert.Equal(t, "abc123", IDFromURI("spotify:track:abc123"))
	assert.Equal(t, "abc123", IDFromURI("/com/spotify/track/abc123"))
	assert.Equal(t, "abc123", IDFromURI("abc123"))
	assert.Equal(t, "", IDFromURI(""))
	assert.Equal(t, "", IDFromURI("spotify:track:"))
}
