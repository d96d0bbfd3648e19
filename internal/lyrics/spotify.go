package lyrics

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"karolbroda.com/lyricbar/internal/track"
)

const (
	syncTypeLineSynced = "LINE_SYNCED"
	userAgent          = "lyricbar/1.0"
)

// TokenSource is satisfied by *auth.Store.
type TokenSource interface {
	AccessToken(ctx context.Context) (string, error)
	Invalidate()
}

type colorLyricsResponse struct {
	Lyrics struct {
		SyncType string `json:"syncType"`
		Provider string `json:"provider"`
		Language string `json:"language"`
		Lines    []struct {
			StartTimeMs string `json:"startTimeMs"`
			Words       string `json:"words"`
			EndTimeMs   string `json:"endTimeMs"`
		} `json:"lines"`
	} `json:"lyrics"`
}

// SpotifyProvider reads the web player's color-lyrics endpoint, keyed by
// track id.
type SpotifyProvider struct {
	baseURL string
	tokens  TokenSource
	client  *http.Client
}

func NewSpotifyProvider(baseURL string, tokens TokenSource, timeout time.Duration) *SpotifyProvider {
	return &SpotifyProvider{
		baseURL: strings.TrimRight(baseURL, "/"),
		tokens:  tokens,
		client:  &http.Client{Timeout: timeout},
	}
}

func (p *SpotifyProvider) Name() string { return "spotify" }

func (p *SpotifyProvider) Supports(trk *track.Info) bool {
	return trk != nil && trk.ID != ""
}

func (p *SpotifyProvider) Fetch(ctx context.Context, trk *track.Info) (Sequence, error) {
	token, err := p.tokens.AccessToken(ctx)
	if err != nil {
		return nil, err
	}

	u := p.baseURL + "/" + url.PathEscape(trk.ID) + "?format=json&vocalRemoval=false&market=from_token"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build lyrics request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("App-Platform", "WebPlayer")
	req.Header.Set("User-Agent", userAgent)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNetwork, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, ErrNoLyrics
	case http.StatusUnauthorized:
		// the token was revoked early; next fetch exchanges again
		p.tokens.Invalidate()
		return nil, fmt.Errorf("%w: lyrics endpoint returned 401", ErrAuth)
	default:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("%w: status %d: %s", ErrNetwork, resp.StatusCode, string(body))
	}

	var payload colorLyricsResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrParse, err)
	}

	return parseColorLyrics(&payload)
}

func parseColorLyrics(payload *colorLyricsResponse) (Sequence, error) {
	if payload.Lyrics.SyncType != syncTypeLineSynced {
		return nil, fmt.Errorf("%w: sync type %q", ErrNoLyrics, payload.Lyrics.SyncType)
	}
	if len(payload.Lyrics.Lines) == 0 {
		return nil, ErrNoLyrics
	}

	lines := make([]Line, 0, len(payload.Lyrics.Lines))
	for _, raw := range payload.Lyrics.Lines {
		offset, err := parseOffsetMs(raw.StartTimeMs)
		if err != nil {
			continue
		}
		lines = append(lines, Line{Time: offset, Text: strings.TrimSpace(raw.Words)})
	}

	if len(lines) == 0 {
		return nil, fmt.Errorf("%w: no parsable lines", ErrParse)
	}

	return Normalize(lines), nil
}
