// Package cli implements the command-line interface for the toio tool.
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/toiolab/toio"
	"github.com/toiolab/toio/internal/config"
	"github.com/toiolab/toio/internal/storage"
)

const version = "0.1.0"

var (
	// Global flags
	configPath string
	dbPath     string
	verbose    bool
)

// rootCmd is the base command.
var rootCmd = &cobra.Command{
	Use:   "toio",
	Short: "toio Core Cube driver",
	Long: `toio - drive and observe toio Core Cube robots over Bluetooth.

Scan for nearby cubes, teleoperate them from the terminal, flash lights,
play sounds, and record event traces for later replay.`,
	Version: version,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file path (default: ~/.config/toio/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Database file path (default: ~/.local/share/toio/toio.db)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
}

// loadConfig loads the config file and applies flag overrides.
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadOrDefault(configPath)
	if err != nil {
		return nil, err
	}
	if dbPath != "" {
		cfg.DBPath = dbPath
	}
	if verbose {
		cfg.LogLevel = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newLogger builds the logger the driver and commands share.
func newLogger(cfg *config.Config) *logrus.Logger {
	log := logrus.New()
	log.SetLevel(config.ParseLogLevel(cfg.LogLevel))
	return log
}

// openDB opens the trace database at the configured path.
func openDB(cfg *config.Config) (*storage.DB, error) {
	if cfg.DBPath == "" {
		return storage.OpenDefault()
	}
	return storage.Open(cfg.DBPath)
}

// driverOptions maps the config onto driver options.
func driverOptions(cfg *config.Config) []toio.Option {
	return []toio.Option{
		toio.WithScanTimeout(cfg.Scan.Timeout),
		toio.WithResponseTimeout(cfg.Drive.ResponseTimeout),
		toio.WithLogger(newLogger(cfg)),
	}
}

// connectNearest scans for the strongest-signal cube and connects to it.
func connectNearest(ctx context.Context, cfg *config.Config) (*toio.Cube, error) {
	fmt.Println("Scanning for toio cubes...")

	cube, err := toio.Nearest(ctx, driverOptions(cfg)...)
	if err != nil {
		return nil, fmt.Errorf("no cube found: %w", err)
	}

	fmt.Printf("Found: %s (%s, %d dBm)\n", cube.Name(), cube.Address(), cube.RSSI())
	if err := cube.Connect(ctx); err != nil {
		return nil, fmt.Errorf("connect failed: %w", err)
	}
	return cube, nil
}
