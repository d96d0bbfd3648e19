package main

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"karolbroda.com/lyricbar/internal/lyrics"
	"karolbroda.com/lyricbar/internal/track"
)

var (
	// flags for lyrics show
	showArtist  string
	showAlbum   string
	showRefresh bool
)

var lyricsCmd = &cobra.Command{
	Use:   "lyrics",
	Short: "fetch and preview lyrics",
	Long:  `fetch synced lyrics for a spotify track and print them with timestamps.`,
}

var lyricsShowCmd = &cobra.Command{
	Use:   "show <track-id> [name]",
	Short: "print synced lyrics for a track",
	Long: `fetch synced lyrics for a spotify track id (or uri) and print them.
the name and --artist are needed only for the lrclib fallback.
results are cached like in the viewer; --refresh skips the cache read.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, os.Stderr)
		if err != nil {
			return err
		}
		defer a.Close()

		trk := &track.Info{
			ID:     track.IDFromURI(args[0]),
			Artist: showArtist,
			Album:  showAlbum,
		}
		trk.Name = trk.ID
		if len(args) > 1 {
			trk.Name = args[1]
		}

		res, err := a.lyrics.Fetch(cmd.Context(), trk, showRefresh)
		if err != nil {
			if errors.Is(err, lyrics.ErrAuth) {
				return fmt.Errorf("spotify session rejected, run 'lyricbar login': %w", err)
			}
			return fmt.Errorf("lyrics not found: %w", err)
		}

		source := res.Provider
		if res.Cached {
			source += ", from cache"
		}
		fmt.Printf("%s (%s)\n", trk.Name, source)
		fmt.Println(strings.Repeat("─", 60))
		fmt.Printf("\nsynced lyrics (%d lines):\n\n", len(res.Lines))
		for _, line := range res.Lines {
			text := line.Text
			if text == "" {
				text = "♪"
			}
			fmt.Printf("[%s] %s\n", formatTimestamp(line.Time), text)
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(lyricsCmd)

	lyricsCmd.AddCommand(lyricsShowCmd)

	lyricsShowCmd.Flags().StringVar(&showArtist, "artist", "", "artist name for the lrclib fallback")
	lyricsShowCmd.Flags().StringVar(&showAlbum, "album", "", "album name for the lrclib fallback")
	lyricsShowCmd.Flags().BoolVar(&showRefresh, "refresh", false, "skip the cache read")
}

// formatTimestamp renders an offset as m:ss.cc.
func formatTimestamp(d time.Duration) string {
	minutes := int(d / time.Minute)
	secs := (d - time.Duration(minutes)*time.Minute).Seconds()
	return fmt.Sprintf("%d:%05.2f", minutes, secs)
}
