package session

import (
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
)

var ErrInvalidCredential = errors.New("credential has unexpected length")

// Preferences is the persisted half of the session.
type Preferences interface {
	Credential() string
	SetCredential(value string) error
	HasOnboarded() bool
	SetHasOnboarded(v bool) error
}

// Credentials is the in-memory credential holder the lyrics client reads.
type Credentials interface {
	SetCredential(value string)
	ValidCredential(value string) bool
}

// Bootstrap decides whether a usable session exists. Without one the
// synchronizer must not run and the user is sent through onboarding.
type Bootstrap struct {
	prefs Preferences
	creds Credentials
	log   zerolog.Logger
}

func New(prefs Preferences, creds Credentials, log zerolog.Logger) *Bootstrap {
	return &Bootstrap{
		prefs: prefs,
		creds: creds,
		log:   log.With().Str("component", "session").Logger(),
	}
}

// Load hands the persisted credential to the credential store.
func (b *Bootstrap) Load() {
	b.creds.SetCredential(b.prefs.Credential())
}

// IsBootstrapped is true only when the stored credential has the expected
// length and onboarding was completed. A credential failing the check
// resets onboarding.
func (b *Bootstrap) IsBootstrapped() bool {
	if !b.creds.ValidCredential(b.prefs.Credential()) {
		if b.prefs.HasOnboarded() {
			b.log.Warn().Msg("stored credential failed validation, onboarding required")
		}
		b.Reset()
		return false
	}
	return b.prefs.HasOnboarded()
}

// Complete stores a credential supplied by onboarding.
func (b *Bootstrap) Complete(credential string) error {
	credential = strings.TrimSpace(credential)
	if !b.creds.ValidCredential(credential) {
		return fmt.Errorf("%w: got %d characters", ErrInvalidCredential, len(credential))
	}

	if err := b.prefs.SetCredential(credential); err != nil {
		return fmt.Errorf("save credential: %w", err)
	}
	b.creds.SetCredential(credential)

	if err := b.prefs.SetHasOnboarded(true); err != nil {
		return fmt.Errorf("save onboarding state: %w", err)
	}

	b.log.Info().Msg("session bootstrapped")
	return nil
}

func (b *Bootstrap) Reset() {
	if err := b.prefs.SetHasOnboarded(false); err != nil {
		b.log.Error().Err(err).Msg("failed to reset onboarding state")
	}
}

// Logout forgets the credential entirely.
func (b *Bootstrap) Logout() error {
	if err := b.prefs.SetCredential(""); err != nil {
		return fmt.Errorf("clear credential: %w", err)
	}
	b.creds.SetCredential("")
	b.Reset()
	return nil
}
