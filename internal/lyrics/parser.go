package lyrics

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// ParseSynced parses LRC text ("[mm:ss.xx] words"). Lines without a valid
// timestamp or without text are dropped.
func ParseSynced(raw string) []Line {
	if raw == "" {
		return nil
	}

	lines := strings.Split(raw, "\n")
	result := make([]Line, 0, len(lines))

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}

		timePart, text := splitLrcLine(trimmed)
		if timePart == "" || text == "" {
			continue
		}

		offset, err := parseLrcTime(timePart)
		if err != nil {
			continue
		}

		result = append(result, Line{Time: offset, Text: text})
	}

	return result
}

func splitLrcLine(line string) (string, string) {
	if !strings.HasPrefix(line, "[") {
		return "", ""
	}

	endIndex := strings.Index(line, "]")
	if endIndex <= 1 {
		return "", ""
	}

	timePart := line[1:endIndex]
	textPart := strings.TrimSpace(line[endIndex+1:])
	if textPart == "" {
		return "", ""
	}

	return timePart, textPart
}

func parseLrcTime(raw string) (time.Duration, error) {
	if raw == "" {
		return 0, errors.New("empty time value")
	}

	parts := strings.Split(raw, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, fmt.Errorf("invalid time format: %s", raw)
	}

	values := make([]float64, len(parts))
	for i, part := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return 0, fmt.Errorf("failed to parse %q: %w", part, err)
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, fmt.Errorf("non-finite time value %q", part)
		}
		if v < 0 {
			return 0, errors.New("negative time not allowed")
		}
		values[i] = v
	}

	var hours, minutes, seconds float64
	if len(values) == 3 {
		hours, minutes, seconds = values[0], values[1], values[2]
	} else {
		minutes, seconds = values[0], values[1]
	}

	total := hours*3600 + minutes*60 + seconds
	if total >= maxLrcSeconds {
		return 0, fmt.Errorf("time out of range: %s", raw)
	}
	return time.Duration(total * float64(time.Second)).Round(time.Millisecond), nil
}

// Offsets above this would overflow a time.Duration.
const (
	maxOffsetMs   = math.MaxInt64 / int64(time.Millisecond)
	maxLrcSeconds = float64(math.MaxInt64 / int64(time.Second))
)

// parseOffsetMs parses a millisecond offset sent as a decimal string.
func parseOffsetMs(raw string) (time.Duration, error) {
	ms, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid offset %q: %w", raw, err)
	}
	if ms < 0 {
		return 0, fmt.Errorf("negative offset %d", ms)
	}
	if ms > maxOffsetMs {
		return 0, fmt.Errorf("offset out of range %d", ms)
	}
	return time.Duration(ms) * time.Millisecond, nil
}
