package lyrics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSynced(t *testing.T) {
	raw := "[00:00.00] la\n" +
		"[00:05.50] la la\n" +
		"\n" +
		"[00:07.00]\n" +
		"no timestamp here\n" +
		"[xx:yy] broken\n" +
		"[01:02:03.5] long song\n"

	lines := ParseSynced(raw)
	require.Len(t, lines, 3)

	assert.Equal(t, time.Duration(0), lines[0].Time)
	assert.Equal(t, "la", lines[0].Text)
	assert.Equal(t, 5500*time.Millisecond, lines[1].Time)
	assert.Equal(t, "la la", lines[1].Text)
	assert.Equal(t, time.Hour+2*time.Minute+3500*time.Millisecond, lines[2].Time)
}

func TestParseSyncedEmpty(t *testing.T) {
	assert.Nil(t, ParseSynced(""))
	assert.Empty(t, ParseSynced("plain text\nwithout timing"))
}

func TestParseLrcTimeRejectsNegative(t *testing.T) {
	_, err := parseLrcTime("-01:00.00")
	assert.Error(t, err)
}

func TestParseLrcTimeRejectsOutOfRange(t *testing.T) {
	for _, raw := range []string{"NaN:00", "00:Inf", "+Inf:00.00", "99999999999:00"} {
		_, err := parseLrcTime(raw)
		assert.Error(t, err, raw)
	}

	d, err := parseLrcTime("01:02:03.50")
	require.NoError(t, err)
	assert.Equal(t, time.Hour+2*time.Minute+3500*time.Millisecond, d)
}

func TestParseOffsetMs(t *testing.T) {
	d, err := parseOffsetMs("12340")
	require.NoError(t, err)
	assert.Equal(t, 12340*time.Millisecond, d)

	_, err = parseOffsetMs("abc")
	assert.Error(t, err)

	_, err = parseOffsetMs("-5")
	assert.Error(t, err)

	_, err = parseOffsetMs("9300000000000")
	assert.Error(t, err)

	d, err = parseOffsetMs("9223372036854")
	require.NoError(t, err)
	assert.Positive(t, d)
}
