package track

import "strings"

type Info struct {
	ID           string
	Name         string
	Artist       string
	Album        string
	DurationSecs int64
	ArtworkURL   string
}

// IsValid reports whether the info carries enough to be adopted as the
// current track. Reports with an empty id or name are treated as no signal.
func (t *Info) IsValid() bool {
	if t == nil {
		return false
	}
	return t.ID != "" && t.Name != ""
}

func (t *Info) IsSameTrack(other *Info) bool {
	if t == nil || other == nil {
		return t == other
	}
	return t.ID == other.ID
}

// IDFromURI returns the last component of a player track uri, so both
// "spotify:track:abc" and "/com/spotify/track/abc" yield "abc".
func IDFromURI(uri string) string {
	uri = strings.TrimSpace(uri)
	if i := strings.LastIndexAny(uri, ":/"); i >= 0 {
		return uri[i+1:]
	}
	return uri
}
