package main

import (
	"fmt"
	"io"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/time/rate"

	"karolbroda.com/lyricbar/internal/auth"
	"karolbroda.com/lyricbar/internal/cache"
	"karolbroda.com/lyricbar/internal/config"
	"karolbroda.com/lyricbar/internal/logger"
	"karolbroda.com/lyricbar/internal/lyrics"
	"karolbroda.com/lyricbar/internal/session"
	"karolbroda.com/lyricbar/internal/settings"
)

// app carries the components every subcommand shares. It is created per
// command invocation and closed when the command returns.
type app struct {
	cfg      *config.Config
	log      zerolog.Logger
	settings *settings.Store
	creds    *auth.Store
	session  *session.Bootstrap
	cache    *cache.DiskCache
	lyrics   *lyrics.Client
}

// loadConfig reads the environment, then applies flag overrides.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	if mprisService != "" {
		cfg.MprisService = mprisService
	}
	if lrclibURL != "" {
		cfg.LrclibURL = lrclibURL
	}
	if cmd.Flags().Changed("no-cache") {
		cfg.NoCache = noCache
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}

	return cfg, nil
}

func newApp(cmd *cobra.Command, logOut io.Writer) (*app, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	log := logger.New(logOut, cfg.IsProduction(), cfg.LogLevel)

	path, err := config.SettingsPath()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve settings path: %w", err)
	}
	store, err := settings.Open(path)
	if err != nil {
		return nil, err
	}

	creds := auth.NewStore(auth.Options{
		Exchanger:        auth.NewHTTPExchanger(cfg.AuthURL, cfg.HTTPTimeout),
		CredentialLength: cfg.CredentialLength,
		Timeout:          cfg.HTTPTimeout,
		Logger:           log,
	})

	sess := session.New(store, creds, log)
	sess.Load()

	diskCache, err := cache.NewDiskCache("")
	if err != nil {
		log.Warn().Err(err).Msg("disk cache unavailable, using memory cache")
		diskCache = cache.NewMemoryCache()
	}

	client := lyrics.NewClient(lyrics.Options{
		Providers: []lyrics.Provider{
			lyrics.NewSpotifyProvider(cfg.LyricsURL, creds, cfg.HTTPTimeout),
			lyrics.NewLrclibProvider(cfg.LrclibURL, cfg.HTTPTimeout),
		},
		Cache:       diskCache,
		Limiter:     rate.NewLimiter(rate.Limit(cfg.RequestRate), cfg.RequestBurst),
		NoCacheRead: cfg.NoCache,
		Logger:      log,
	})

	return &app{
		cfg:      cfg,
		log:      log,
		settings: store,
		creds:    creds,
		session:  sess,
		cache:    diskCache,
		lyrics:   client,
	}, nil
}

func (a *app) Close() {
	if err := a.settings.Close(); err != nil {
		a.log.Error().Err(err).Msg("failed to close settings")
	}
}
