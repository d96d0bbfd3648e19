package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

type tokenResponse struct {
	ClientID    string `json:"clientId"`
	AccessToken string `json:"accessToken"`
	ExpiresMs   int64  `json:"accessTokenExpirationTimestampMs"`
	IsAnonymous bool   `json:"isAnonymous"`
}

// HTTPExchanger exchanges an sp_dc cookie for a web player access token.
type HTTPExchanger struct {
	endpoint string
	client   *http.Client
}

func NewHTTPExchanger(endpoint string, timeout time.Duration) *HTTPExchanger {
	return &HTTPExchanger{
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
	}
}

func (e *HTTPExchanger) Exchange(ctx context.Context, credential string) (*Token, error) {
	u, err := url.Parse(e.endpoint)
	if err != nil {
		return nil, fmt.Errorf("invalid auth url %q: %w", e.endpoint, err)
	}
	query := u.Query()
	query.Set("reason", "transport")
	query.Set("productType", "web_player")
	u.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build auth request: %w", err)
	}
	req.Header.Set("Cookie", "sp_dc="+credential)
	req.Header.Set("User-Agent", "lyricbar/1.0")
	req.Header.Set("App-Platform", "WebPlayer")

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make auth request: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, fmt.Errorf("%w: status %d", ErrRejected, resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("auth endpoint returned status %d: %s", resp.StatusCode, string(body))
	}

	var payload tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode auth response: %w", err)
	}

	// an expired cookie still yields a token, but an anonymous one
	if payload.IsAnonymous || payload.AccessToken == "" {
		return nil, ErrRejected
	}

	tok := &Token{Value: payload.AccessToken}
	if payload.ExpiresMs > 0 {
		tok.ExpiresAt = time.UnixMilli(payload.ExpiresMs)
	}
	return tok, nil
}
