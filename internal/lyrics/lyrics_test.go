package lyrics

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func secs(f float64) time.Duration {
	return time.Duration(f * float64(time.Second))
}

func sampleSequence() Sequence {
	return Sequence{
		{Time: secs(0), Text: "la"},
		{Time: secs(5), Text: "la la"},
		{Time: secs(10), Text: "end"},
	}
}

func TestIndexAtScenarios(t *testing.T) {
	s := sampleSequence()

	tests := []struct {
		name string
		at   time.Duration
		want int
	}{
		{"before first line", secs(-1), -1},
		{"exactly first line", secs(0), 0},
		{"between lines", secs(6), 1},
		{"exactly on a line", secs(5), 1},
		{"after last line", secs(300), 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, s.IndexAt(tt.at))
		})
	}
}

func TestIndexAtEmpty(t *testing.T) {
	var s Sequence
	assert.Equal(t, -1, s.IndexAt(secs(3)))
}

func TestIndexAtDuplicateTimestampsPicksLast(t *testing.T) {
	s := Sequence{{Time: secs(1), Text: "a"}, {Time: secs(1), Text: "b"}, {Time: secs(2), Text: "c"}}
	assert.Equal(t, 1, s.IndexAt(secs(1.5)))
}

// IndexAt must agree with a linear scan for the greatest i with S[i] <= t.
func TestIndexAtMatchesLinearScan(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for round := 0; round < 200; round++ {
		n := rng.Intn(20)
		s := make(Sequence, n)
		var at time.Duration
		for i := range s {
			at += time.Duration(rng.Intn(3000)) * time.Millisecond
			s[i] = Line{Time: at, Text: "x"}
		}

		probe := time.Duration(rng.Intn(70000)-5000) * time.Millisecond

		want := -1
		for i, line := range s {
			if line.Time <= probe {
				want = i
			}
		}

		assert.Equal(t, want, s.IndexAt(probe), "round %d probe %s", round, probe)
	}
}

func TestNormalizeRepairsOrder(t *testing.T) {
	in := []Line{
		{Time: secs(5), Text: "second"},
		{Time: secs(0), Text: "first"},
		{Time: secs(5), Text: "third"},
	}

	out := Normalize(in)

	assert.True(t, out.IsSorted())
	assert.Equal(t, []string{"first", "second", "third"}, []string{out[0].Text, out[1].Text, out[2].Text})
	// input untouched
	assert.Equal(t, "second", in[0].Text)
}

func TestNormalizeKeepsSortedInput(t *testing.T) {
	s := sampleSequence()
	assert.Equal(t, s, Normalize(s))
}

func TestStatus(t *testing.T) {
	assert.Equal(t, StatusEmpty, StatusOf(nil))
	assert.Equal(t, StatusLoaded, StatusOf(sampleSequence()))
	assert.Equal(t, "unknown", StatusUnknown.String())
	assert.Equal(t, "empty", StatusEmpty.String())
	assert.Equal(t, "loaded", StatusLoaded.String())
}
