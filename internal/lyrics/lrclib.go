package lyrics

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"karolbroda.com/lyricbar/internal/track"
)

type lrclibResponse struct {
	TrackName    string  `json:"trackName"`
	ArtistName   string  `json:"artistName"`
	AlbumName    string  `json:"albumName"`
	Duration     float64 `json:"duration"`
	Instrumental bool    `json:"instrumental"`
	PlainLyrics  string  `json:"plainLyrics"`
	SyncedLyrics string  `json:"syncedLyrics"`
}

var errLrclibNotFound = errors.New("status 404: lyrics not found")

// LrclibProvider searches lrclib.net by name and artist. It is the fallback
// for players that report an artist.
type LrclibProvider struct {
	baseURL       string
	client        *http.Client
	strategyDelay time.Duration
}

func NewLrclibProvider(baseURL string, timeout time.Duration) *LrclibProvider {
	return &LrclibProvider{
		baseURL:       baseURL,
		client:        &http.Client{Timeout: timeout},
		strategyDelay: 100 * time.Millisecond,
	}
}

func (p *LrclibProvider) Name() string { return "lrclib" }

func (p *LrclibProvider) Supports(trk *track.Info) bool {
	return trk != nil && trk.Name != "" && trk.Artist != ""
}

type searchStrategy struct {
	artist   string
	title    string
	album    string
	duration int64
}

// normalizeString collapses runs of whitespace.
func normalizeString(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// stripVersionInfo removes text in parentheses and brackets (remixes, versions, etc)
func stripVersionInfo(s string) string {
	for _, pair := range [][2]string{{"(", ")"}, {"[", "]"}} {
		for {
			start := strings.Index(s, pair[0])
			end := strings.Index(s, pair[1])
			if start < 0 || end <= start {
				break
			}
			s = s[:start] + " " + s[end+1:]
		}
	}
	return normalizeString(s)
}

func buildStrategies(trk *track.Info) []searchStrategy {
	artist := normalizeString(trk.Artist)
	title := normalizeString(trk.Name)

	candidates := []searchStrategy{
		{artist, title, trk.Album, trk.DurationSecs},
		{artist, title, "", trk.DurationSecs},
		{artist, title, "", 0},
		{stripVersionInfo(trk.Artist), stripVersionInfo(trk.Name), "", 0},
	}

	seen := make(map[string]bool)
	var unique []searchStrategy
	for _, s := range candidates {
		if s.artist == "" || s.title == "" {
			continue
		}
		key := fmt.Sprintf("%s|%s|%s|%d", s.artist, s.title, s.album, s.duration)
		if !seen[key] {
			seen[key] = true
			unique = append(unique, s)
		}
	}
	return unique
}

func (p *LrclibProvider) Fetch(ctx context.Context, trk *track.Info) (Sequence, error) {
	parsedURL, err := url.Parse(p.baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid lrclib url %q: %w", p.baseURL, err)
	}

	var lastErr error = ErrNoLyrics
	for i, strategy := range buildStrategies(trk) {
		if i > 0 {
			// small delay between strategies to avoid hammering the server
			select {
			case <-ctx.Done():
				return nil, fmt.Errorf("%w: %w", ErrNetwork, ctx.Err())
			case <-time.After(p.strategyDelay):
			}
		}

		query := url.Values{}
		query.Set("artist_name", strategy.artist)
		query.Set("track_name", strategy.title)
		if strategy.album != "" {
			query.Set("album_name", strategy.album)
		}
		if strategy.duration > 0 {
			query.Set("duration", strconv.FormatInt(strategy.duration, 10))
		}
		parsedURL.RawQuery = query.Encode()

		payload, err := p.doFetchRequest(ctx, parsedURL.String())
		if err != nil {
			if errors.Is(err, errLrclibNotFound) {
				lastErr = ErrNoLyrics
				continue
			}
			// transport failures and timeouts end the search
			return nil, err
		}

		if payload.SyncedLyrics == "" {
			// plain text or instrumental: nothing to sync against
			return nil, fmt.Errorf("%w: lrclib has unsynced lyrics only", ErrNoLyrics)
		}

		lines := ParseSynced(payload.SyncedLyrics)
		if len(lines) == 0 {
			return nil, fmt.Errorf("%w: no parsable lrc lines", ErrParse)
		}
		return Normalize(lines), nil
	}

	return nil, lastErr
}

func (p *LrclibProvider) doFetchRequest(ctx context.Context, requestURL string) (*lrclibResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build http request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNetwork, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, errLrclibNotFound
	}

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("%w: lrclib returned status %d: %s", ErrNetwork, resp.StatusCode, string(body))
	}

	var payload lrclibResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: failed to decode lrclib json: %w", ErrParse, err)
	}

	return &payload, nil
}
