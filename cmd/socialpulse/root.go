// cmd/socialpulse/root.go

package main

import (
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"socialpulse/internal/config"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var (
	flagEnvFile     string
	flagProfilePath string
	flagTrackPath   string
	flagJSON        bool
)

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "socialpulse",
		Short:         "Profile-driven social content aggregator",
		Long:          "socialpulse collects trends and posts from X and Reddit and ranks them by relevance to a profile.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&flagEnvFile, "env", "", "path to a .env file (default: ./.env when present)")
	rootCmd.PersistentFlags().StringVar(&flagProfilePath, "profile", "", "path to the profile document (JSON or YAML)")
	rootCmd.PersistentFlags().StringVar(&flagTrackPath, "track", "", "path to the tracked accounts document (JSON or YAML)")
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "print JSON instead of formatted output")

	rootCmd.AddCommand(newAggregateCmd())
	rootCmd.AddCommand(newTrendsCmd())
	rootCmd.AddCommand(newRateLimitCmd())
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "socialpulse %s (commit: %s, built: %s)\n", version, commit, date)
		},
	}
}

// loadConfig reads the .env file and the environment, then applies the
// path flags
func loadConfig() (config.Config, error) {
	if flagEnvFile != "" {
		if err := godotenv.Load(flagEnvFile); err != nil {
			return config.Config{}, fmt.Errorf("load %s: %w", flagEnvFile, err)
		}
	} else if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Failed to load .env: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		return cfg, err
	}

	if flagProfilePath != "" {
		cfg.Profile.Path = flagProfilePath
	}
	if flagTrackPath != "" {
		cfg.Profile.TrackPath = flagTrackPath
	}
	return cfg, nil
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
