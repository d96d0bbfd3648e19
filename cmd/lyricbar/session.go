package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"karolbroda.com/lyricbar/internal/config"
)

var (
	// flags for login
	loginVerify bool
	// flags for status
	statusCheck bool
)

var loginCmd = &cobra.Command{
	Use:   "login <sp_dc>",
	Short: "store the spotify session cookie",
	Long: `stores the sp_dc cookie used to obtain spotify access tokens.
by default the cookie is exchanged once before it is saved.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, os.Stderr)
		if err != nil {
			return err
		}
		defer a.Close()

		credential := strings.TrimSpace(args[0])
		if !a.creds.ValidCredential(credential) {
			return fmt.Errorf("sp_dc must be %d characters, got %d", a.cfg.CredentialLength, len(credential))
		}

		if loginVerify {
			a.creds.SetCredential(credential)
			ctx, cancel := context.WithTimeout(cmd.Context(), a.cfg.HTTPTimeout)
			defer cancel()
			if _, err := a.creds.AccessToken(ctx); err != nil {
				return fmt.Errorf("spotify did not accept the cookie: %w", err)
			}
		}

		if err := a.session.Complete(credential); err != nil {
			return err
		}

		fmt.Println("logged in")
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "forget the stored session cookie",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, os.Stderr)
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.session.Logout(); err != nil {
			return err
		}

		fmt.Println("logged out")
		return nil
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "show session and storage status",
	Long:  `shows whether a usable session exists and where settings, cache and logs live.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, os.Stderr)
		if err != nil {
			return err
		}
		defer a.Close()

		credential := a.settings.Credential()
		bootstrapped := a.session.IsBootstrapped()

		fmt.Printf("session:     %s\n", yesNo(bootstrapped, "ready", "login required"))
		if credential != "" {
			fmt.Printf("credential:  stored (%d of %d chars)\n", len(credential), a.cfg.CredentialLength)
		} else {
			fmt.Printf("credential:  none\n")
		}
		fmt.Printf("settings:    %s\n", a.settings.Path())
		fmt.Printf("cache:       %s\n", cachePathOrMemory(a.cache.Path()))
		if dir, err := config.StateDir(); err == nil {
			fmt.Printf("logs:        %s\n", dir)
		}
		fmt.Printf("player:      %s\n", a.cfg.MprisService)

		if statusCheck && bootstrapped {
			ctx, cancel := context.WithTimeout(cmd.Context(), a.cfg.HTTPTimeout)
			defer cancel()

			start := time.Now()
			if _, err := a.creds.AccessToken(ctx); err != nil {
				fmt.Printf("token:       failed (%v)\n", err)
			} else {
				fmt.Printf("token:       ok (%s)\n", time.Since(start).Round(time.Millisecond))
			}
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(statusCmd)

	loginCmd.Flags().BoolVar(&loginVerify, "verify", true, "exchange the cookie for a token before saving")
	statusCmd.Flags().BoolVar(&statusCheck, "check", false, "also request an access token")
}

func yesNo(v bool, yes, no string) string {
	if v {
		return yes
	}
	return no
}

func cachePathOrMemory(path string) string {
	if path == "" {
		return "memory only"
	}
	return path
}
