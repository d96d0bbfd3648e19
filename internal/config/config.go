package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const (
	AppName             = "lyricbar"
	DefaultMprisService = "org.mpris.MediaPlayer2.spotify"
	DefaultAuthURL      = "https://open.spotify.com/get_access_token"
	DefaultLyricsURL    = "https://spclient.wg.spotify.com/color-lyrics/v2/track"
	DefaultLrclibGetURL = "https://lrclib.net/api/get"

	// CredentialLength is the length of an sp_dc session cookie.
	CredentialLength = 159
	TruncationLength = 50
)

type Config struct {
	Env      string `envconfig:"ENV" default:"development"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	MprisService string `envconfig:"MPRIS_SERVICE" default:"org.mpris.MediaPlayer2.spotify"`
	AuthURL      string `envconfig:"AUTH_URL" default:"https://open.spotify.com/get_access_token"`
	LyricsURL    string `envconfig:"LYRICS_URL" default:"https://spclient.wg.spotify.com/color-lyrics/v2/track"`
	LrclibURL    string `envconfig:"LRCLIB_GET_URL" default:"https://lrclib.net/api/get"`

	HTTPTimeout      time.Duration `envconfig:"HTTP_TIMEOUT" default:"10s"`
	UpdateInterval   time.Duration `envconfig:"UPDATE_INTERVAL" default:"300ms"`
	CredentialLength int           `envconfig:"CREDENTIAL_LENGTH" default:"159"`

	// lyrics requests per second, shared by all providers
	RequestRate  float64 `envconfig:"REQUEST_RATE" default:"1"`
	RequestBurst int     `envconfig:"REQUEST_BURST" default:"3"`

	NoCache bool `envconfig:"NO_CACHE" default:"false"`
}

// Load reads LYRICBAR_* variables, after an optional .env file in the
// working directory.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process(AppName, &cfg); err != nil {
		return nil, fmt.Errorf("process env config: %w", err)
	}

	if cfg.UpdateInterval <= 0 {
		return nil, fmt.Errorf("update interval must be positive, got %s", cfg.UpdateInterval)
	}
	if cfg.CredentialLength <= 0 {
		cfg.CredentialLength = CredentialLength
	}

	return &cfg, nil
}

func (c *Config) IsProduction() bool {
	return c.Env == "production" || c.Env == "prod"
}

// ConfigDir returns $XDG_CONFIG_HOME/lyricbar, falling back to ~/.config.
func ConfigDir() (string, error) {
	xdgConfig := os.Getenv("XDG_CONFIG_HOME")
	if xdgConfig != "" {
		return filepath.Join(xdgConfig, AppName), nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}

	return filepath.Join(homeDir, ".config", AppName), nil
}

// StateDir holds log files.
func StateDir() (string, error) {
	xdgState := os.Getenv("XDG_STATE_HOME")
	if xdgState != "" {
		return filepath.Join(xdgState, AppName), nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}

	return filepath.Join(homeDir, ".local", "state", AppName), nil
}

func SettingsPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "settings.db"), nil
}
