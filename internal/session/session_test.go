package session

import (
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"karolbroda.com/lyricbar/internal/auth"
)

type memPrefs struct {
	credential string
	onboarded  bool
}

func (m *memPrefs) Credential() string               { return m.credential }
func (m *memPrefs) SetCredential(value string) error { m.credential = value; return nil }
func (m *memPrefs) HasOnboarded() bool               { return m.onboarded }
func (m *memPrefs) SetHasOnboarded(v bool) error     { m.onboarded = v; return nil }

const credentialLength = 159

func newBootstrap(prefs *memPrefs) (*Bootstrap, *auth.Store) {
	store := auth.NewStore(auth.Options{CredentialLength: credentialLength, Logger: zerolog.Nop()})
	return New(prefs, store, zerolog.Nop()), store
}

func validCredential() string {
	return strings.Repeat("a", credentialLength)
}

func TestIsBootstrappedRequiresExpectedLength(t *testing.T) {
	prefs := &memPrefs{credential: strings.Repeat("a", credentialLength-1), onboarded: true}
	b, _ := newBootstrap(prefs)

	assert.False(t, b.IsBootstrapped())
	// failed validation resets onboarding
	assert.False(t, prefs.onboarded)
}

func TestIsBootstrappedRequiresOnboarding(t *testing.T) {
	prefs := &memPrefs{credential: validCredential()}
	b, _ := newBootstrap(prefs)

	assert.False(t, b.IsBootstrapped())

	prefs.onboarded = true
	assert.True(t, b.IsBootstrapped())
}

func TestCompleteStoresCredential(t *testing.T) {
	prefs := &memPrefs{}
	b, store := newBootstrap(prefs)

	require.NoError(t, b.Complete("  "+validCredential()+"\n"))

	assert.Equal(t, validCredential(), prefs.credential)
	assert.Equal(t, validCredential(), store.Credential())
	assert.True(t, b.IsBootstrapped())
}

func TestCompleteRejectsWrongLength(t *testing.T) {
	prefs := &memPrefs{}
	b, store := newBootstrap(prefs)

	err := b.Complete("too-short")
	assert.ErrorIs(t, err, ErrInvalidCredential)
	assert.Empty(t, prefs.credential)
	assert.Empty(t, store.Credential())
	assert.False(t, prefs.onboarded)
}

func TestLoadAndLogout(t *testing.T) {
	prefs := &memPrefs{credential: validCredential(), onboarded: true}
	b, store := newBootstrap(prefs)

	b.Load()
	assert.True(t, store.Valid())

	require.NoError(t, b.Logout())
	assert.Empty(t, prefs.credential)
	assert.False(t, store.Valid())
	assert.False(t, b.IsBootstrapped())
}
