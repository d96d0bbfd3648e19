package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

var (
	// ErrAuth marks every failure to produce an access token.
	ErrAuth = errors.New("auth failed")

	ErrMissingCredential   = errors.New("credential not set")
	ErrMalformedCredential = errors.New("credential has unexpected length")
	ErrRejected            = errors.New("credential rejected")
)

// refresh a little before the endpoint's own expiry
const expiryBuffer = 30 * time.Second

type Token struct {
	Value     string
	ExpiresAt time.Time
}

// Expired treats a zero expiry as "valid until invalidated".
func (t *Token) Expired(now time.Time) bool {
	if t == nil || t.Value == "" {
		return true
	}
	if t.ExpiresAt.IsZero() {
		return false
	}
	return !now.Add(expiryBuffer).Before(t.ExpiresAt)
}

// Exchanger trades a long-lived credential for a short-lived access token.
type Exchanger interface {
	Exchange(ctx context.Context, credential string) (*Token, error)
}

type Options struct {
	Exchanger        Exchanger
	CredentialLength int
	Timeout          time.Duration
	Logger           zerolog.Logger
}

// Store holds the session credential and the access token derived from it.
// The token is owned here: it is cleared whenever the credential is set and
// refreshed by at most one exchange at a time.
type Store struct {
	exchanger Exchanger
	length    int
	timeout   time.Duration
	log       zerolog.Logger
	now       func() time.Time

	mu         sync.RWMutex
	credential string
	token      *Token
	epoch      uint64

	group singleflight.Group
}

func NewStore(opts Options) *Store {
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	return &Store{
		exchanger: opts.Exchanger,
		length:    opts.CredentialLength,
		timeout:   opts.Timeout,
		log:       opts.Logger.With().Str("component", "auth").Logger(),
		now:       time.Now,
	}
}

// SetCredential replaces the credential and drops the cached token, even
// when the value is unchanged.
func (s *Store) SetCredential(value string) {
	s.mu.Lock()
	s.credential = value
	s.token = nil
	s.epoch++
	s.mu.Unlock()

	s.log.Debug().Int("length", len(value)).Msg("credential updated, access token cleared")
}

func (s *Store) Credential() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.credential
}

// Valid is a cheap length check. It is not a substitute for the exchange.
func (s *Store) Valid() bool {
	return s.ValidCredential(s.Credential())
}

func (s *Store) ValidCredential(value string) bool {
	return value != "" && len(value) == s.length
}

// HasToken reports whether a token is cached, expired or not.
func (s *Store) HasToken() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token != nil
}

// Invalidate drops the cached token so the next call exchanges again.
func (s *Store) Invalidate() {
	s.mu.Lock()
	s.token = nil
	s.mu.Unlock()
}

// AccessToken returns the cached token or performs an exchange. Callers
// arriving while an exchange is in flight wait for that exchange.
func (s *Store) AccessToken(ctx context.Context) (string, error) {
	s.mu.RLock()
	tok := s.token
	credential := s.credential
	epoch := s.epoch
	s.mu.RUnlock()

	if !tok.Expired(s.now()) {
		return tok.Value, nil
	}

	if credential == "" {
		return "", fmt.Errorf("%w: %w", ErrAuth, ErrMissingCredential)
	}
	if !s.ValidCredential(credential) {
		return "", fmt.Errorf("%w: %w (got %d, want %d)", ErrAuth, ErrMalformedCredential, len(credential), s.length)
	}
	if s.exchanger == nil {
		return "", fmt.Errorf("%w: no exchanger configured", ErrAuth)
	}

	// keyed by epoch so a credential change never joins an older exchange
	ch := s.group.DoChan(strconv.FormatUint(epoch, 10), func() (interface{}, error) {
		return s.exchange(ctx, credential, epoch)
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(*Token).Value, nil
	case <-ctx.Done():
		return "", fmt.Errorf("%w: %w", ErrAuth, ctx.Err())
	}
}

func (s *Store) exchange(parent context.Context, credential string, epoch uint64) (*Token, error) {
	// detached from the first caller so its cancellation does not fail the
	// other waiters
	ctx, cancel := context.WithTimeout(context.WithoutCancel(parent), s.timeout)
	defer cancel()

	s.log.Debug().Msg("exchanging credential for access token")

	tok, err := s.exchanger.Exchange(ctx, credential)
	if err != nil {
		s.log.Warn().Err(err).Msg("access token exchange failed")
		return nil, fmt.Errorf("%w: %w", ErrAuth, err)
	}
	if tok == nil || tok.Value == "" {
		return nil, fmt.Errorf("%w: %w", ErrAuth, ErrRejected)
	}

	s.mu.Lock()
	if s.epoch == epoch {
		s.token = tok
	}
	s.mu.Unlock()

	s.log.Info().Time("expires_at", tok.ExpiresAt).Msg("access token refreshed")

	return tok, nil
}
