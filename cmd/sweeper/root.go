package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "sweeper",
	Short: "Sweeper - stale app data reclamation for analytics engine servers",
	Long: `Sweeper finds analytical apps whose data has gone stale and reclaims the
storage they hold, without touching their structural definition.

It talks to the engine API over its certificate-authenticated websocket
channel, evaluates every app against a retention policy, and on request
truncates the qualifying apps by reopening them without data and saving
them back in place.`,
	Version: Version,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "config.yaml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
