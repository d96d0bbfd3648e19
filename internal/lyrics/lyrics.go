package lyrics

import (
	"errors"
	"sort"
	"time"

	"karolbroda.com/lyricbar/internal/auth"
)

var (
	// ErrAuth is the credential store's error, re-exported for callers that
	// only import this package.
	ErrAuth = auth.ErrAuth

	ErrNetwork  = errors.New("lyrics provider unreachable")
	ErrParse    = errors.New("malformed lyrics payload")
	ErrNoLyrics = errors.New("no synced lyrics available")
)

type Line struct {
	Time time.Duration
	Text string
}

// Sequence is ordered by non-decreasing Time. An empty sequence means no
// lyrics are available.
type Sequence []Line

// IndexAt returns the greatest index whose line starts at or before t, or
// -1 when t precedes the first line or the sequence is empty.
func (s Sequence) IndexAt(t time.Duration) int {
	return sort.Search(len(s), func(i int) bool {
		return s[i].Time > t
	}) - 1
}

func (s Sequence) IsSorted() bool {
	return sort.SliceIsSorted(s, func(i, j int) bool { return s[i].Time < s[j].Time })
}

// Normalize returns the lines ordered by time. Providers already send them
// in order; out-of-order input is repaired with a stable sort rather than
// rejected, so lines sharing a timestamp keep their relative order.
func Normalize(lines []Line) Sequence {
	seq := Sequence(lines)
	if seq.IsSorted() {
		return seq
	}
	sorted := make(Sequence, len(seq))
	copy(sorted, seq)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Time < sorted[j].Time })
	return sorted
}

// Status distinguishes "still checking" from "confirmed none".
type Status int

const (
	StatusUnknown Status = iota
	StatusEmpty
	StatusLoaded
)

func (s Status) String() string {
	switch s {
	case StatusEmpty:
		return "empty"
	case StatusLoaded:
		return "loaded"
	default:
		return "unknown"
	}
}

func StatusOf(seq Sequence) Status {
	if len(seq) == 0 {
		return StatusEmpty
	}
	return StatusLoaded
}
