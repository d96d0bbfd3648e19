package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// global flags
	mprisService string
	lrclibURL    string
	noCache      bool
	logLevel     string
)

var rootCmd = &cobra.Command{
	Use:   "lyricbar",
	Short: "spotify synced lyrics in a single status line",
	Long: `lyricbar follows the spotify desktop player over mpris and shows the
current lyric line as a one-line status, the way a menu bar title would.

when run without a subcommand, it starts the status line viewer.
run 'lyricbar login <sp_dc>' once before the first start.`,
	Version: "1.0.0",
	RunE: func(cmd *cobra.Command, args []string) error {
		// default behavior: run the viewer
		return runViewer(cmd, args)
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&mprisService, "mpris-service", "m", "", "mpris service name (e.g., org.mpris.MediaPlayer2.spotify)")
	rootCmd.PersistentFlags().StringVar(&lrclibURL, "lrclib-url", "", "custom lrclib api url for the fallback provider")
	rootCmd.PersistentFlags().BoolVar(&noCache, "no-cache", false, "disable cache reads (always fetch fresh)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: trace, debug, info, warn, error")
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
