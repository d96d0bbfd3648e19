package main

import (
	"context"
	"fmt"
	"time"

	"github.com/godbus/dbus/v5"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"karolbroda.com/lyricbar/internal/player"
)

const playerQueryTimeout = 3 * time.Second

var playerCmd = &cobra.Command{
	Use:   "player",
	Short: "mpris player utilities",
	Long:  `discover mpris players and inspect what spotify is playing.`,
}

var playerListCmd = &cobra.Command{
	Use:   "list",
	Short: "list available mpris players",
	Long:  `list all mpris-compatible music players currently running on the system.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		bus, err := dbus.ConnectSessionBus()
		if err != nil {
			return fmt.Errorf("failed to connect to session bus: %w", err)
		}
		defer bus.Close()

		ctx, cancel := context.WithTimeout(cmd.Context(), playerQueryTimeout)
		defer cancel()

		services, err := player.ListPlayers(ctx, bus)
		if err != nil {
			return err
		}

		if len(services) == 0 {
			fmt.Println("no mpris players found")
			fmt.Println("\ncheck if spotify is running")
			return nil
		}

		fmt.Printf("found %d mpris player(s):\n\n", len(services))
		for _, service := range services {
			if identity := player.Identity(ctx, bus, service); identity != "" {
				fmt.Printf("  %s (%s)\n", service, identity)
			} else {
				fmt.Printf("  %s\n", service)
			}
		}

		fmt.Println("\nuse --mpris-service flag to specify which player to use")

		return nil
	},
}

var playerCurrentCmd = &cobra.Command{
	Use:   "current",
	Short: "show currently playing track",
	Long:  `display information about the currently playing track.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		bus, err := dbus.ConnectSessionBus()
		if err != nil {
			return fmt.Errorf("failed to connect to session bus: %w", err)
		}
		defer bus.Close()

		mpris, err := player.NewMPRIS(bus, cfg.MprisService, zerolog.Nop())
		if err != nil {
			return fmt.Errorf("failed to connect to player: %w", err)
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), playerQueryTimeout)
		defer cancel()

		status, err := mpris.Status(ctx)
		if err != nil {
			return fmt.Errorf("failed to query player: %w", err)
		}
		if !status.Running {
			fmt.Printf("%s is not running\n", cfg.MprisService)
			return nil
		}
		if !status.Track.IsValid() {
			fmt.Println("no track currently playing")
			return nil
		}

		trk := status.Track
		fmt.Printf("id:       %s\n", trk.ID)
		fmt.Printf("title:    %s\n", trk.Name)
		fmt.Printf("artist:   %s\n", trk.Artist)
		if trk.Album != "" {
			fmt.Printf("album:    %s\n", trk.Album)
		}
		if trk.DurationSecs > 0 {
			fmt.Printf("duration: %s\n", formatDuration(time.Duration(trk.DurationSecs)*time.Second))
		}
		if status.Playing {
			fmt.Printf("state:    playing\n")
		} else {
			fmt.Printf("state:    paused\n")
		}
		if pos, err := mpris.Position(ctx); err == nil {
			fmt.Printf("position: %s\n", formatDuration(pos))
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(playerCmd)

	playerCmd.AddCommand(playerListCmd)
	playerCmd.AddCommand(playerCurrentCmd)
}

func formatDuration(d time.Duration) string {
	if d < 0 {
		return "0:00"
	}
	seconds := int64(d / time.Second)
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}
