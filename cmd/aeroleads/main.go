// Package main provides the aeroleads command line: profile collection, call
// dispatch, article generation and the web UI.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/jonathan/aeroleads/internal/config"
)

var (
	configPath string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "aeroleads",
	Short: "Lead generation automation toolkit",
	Long: `aeroleads runs three independent automations: collect public profiles into CSV,
place outbound calls through a telephony provider, and generate markdown articles
with a generative-text model. Credentials are read from the environment or a local .env file.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config.json with per-command defaults (flags override it)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Print detailed debug information")
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// loadFileConfig reads and validates --config, returning an empty config when none is given.
func loadFileConfig() (config.Config, error) {
	if configPath == "" {
		return config.Config{}, nil
	}

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return config.Config{}, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	if verbose || cfg.Verbose {
		_, _ = fmt.Fprintf(os.Stdout, "Loaded config from: %s\n", configPath)
	}
	return *cfg, nil
}

// isVerbose reports whether --verbose was passed or the config file enables it.
func isVerbose(cfg config.Config) bool {
	return verbose || cfg.Verbose
}

// interruptible returns a context cancelled on SIGINT/SIGTERM so an in-flight
// run stops at the next item and releases its resources.
func interruptible() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}
