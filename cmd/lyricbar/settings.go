package main

import (
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"karolbroda.com/lyricbar/internal/settings"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "show or change preferences",
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "print all preferences",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, os.Stderr)
		if err != nil {
			return err
		}
		defer a.Close()

		all := a.settings.All()
		keys := make([]string, 0, len(all))
		for k := range all {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		for _, k := range keys {
			fmt.Printf("%-18s %s\n", k, all[k])
		}
		return nil
	},
}

var settingsSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "change one preference",
	Long: fmt.Sprintf(`change one preference. editable keys: %s, %s, %s.
the credential is managed with 'lyricbar login' and 'lyricbar logout'.`,
		settings.KeyShowLyrics, settings.KeyLaunchOnLogin, settings.KeyTruncationLength),
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, os.Stderr)
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.settings.Set(args[0], args[1]); err != nil {
			return err
		}

		fmt.Printf("%s = %s\n", args[0], a.settings.All()[args[0]])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(settingsCmd)

	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsSetCmd)
}
