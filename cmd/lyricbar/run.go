package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/godbus/dbus/v5"
	"github.com/spf13/cobra"

	"karolbroda.com/lyricbar/internal/config"
	"karolbroda.com/lyricbar/internal/engine"
	"karolbroda.com/lyricbar/internal/logger"
	"karolbroda.com/lyricbar/internal/playback"
	"karolbroda.com/lyricbar/internal/player"
	"karolbroda.com/lyricbar/internal/ui"
)

var errNotBootstrapped = errors.New(`no usable spotify session

copy the sp_dc cookie from open.spotify.com (browser dev tools, cookies)
and run:

  lyricbar login <sp_dc>`)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "start the status line viewer",
	Long:  `starts the one-line viewer showing the current lyric line of the playing spotify track.`,
	RunE:  runViewer,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runViewer(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(sigChan)

	go func() {
		select {
		case <-sigChan:
			cancel()
		case <-ctx.Done():
		}
	}()

	stateDir, err := config.StateDir()
	if err != nil {
		return fmt.Errorf("failed to resolve state directory: %w", err)
	}
	logFile, err := logger.OpenFile(stateDir)
	if err != nil {
		return err
	}
	defer logFile.Close()

	a, err := newApp(cmd, logFile)
	if err != nil {
		return err
	}
	defer a.Close()

	if !a.session.IsBootstrapped() {
		return errNotBootstrapped
	}

	bus, err := dbus.ConnectSessionBus()
	if err != nil {
		return fmt.Errorf("failed to connect to session bus: %w", err)
	}
	defer bus.Close()

	mpris, err := player.NewMPRIS(bus, a.cfg.MprisService, a.log)
	if err != nil {
		return fmt.Errorf("failed to create player: %w", err)
	}
	if err := mpris.Start(); err != nil {
		a.log.Warn().Err(err).Msg("could not subscribe to player signals")
	}
	defer mpris.Stop()

	eng := engine.New(engine.Options{
		Fetcher:  a.lyrics,
		Player:   mpris,
		Interval: a.cfg.UpdateInterval,
		Visible:  a.settings.ShowLyrics(),
		OnVisibilityChange: func(visible bool) {
			if err := a.settings.SetShowLyrics(visible); err != nil {
				a.log.Error().Err(err).Msg("failed to persist lyrics visibility")
			}
		},
		Logger: a.log,
	})
	tracker := playback.NewTracker(mpris, eng, a.log)

	model := ui.NewModel(ui.ModelConfig{
		Engine:           eng,
		TruncationLength: a.settings.TruncationLength(),
	})

	go func() {
		if err := eng.Run(ctx); err != nil {
			a.log.Error().Err(err).Msg("engine stopped")
		}
	}()
	tracker.Start(ctx)

	a.log.Info().Str("service", a.cfg.MprisService).Msg("viewer started")

	p := tea.NewProgram(model)

	go func() {
		<-ctx.Done()
		p.Quit()
	}()

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running bubble tea: %w", err)
	}

	cancel()
	<-eng.Done()

	return nil
}
