// Package config loads the toio CLI configuration from YAML.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// Config holds all CLI configuration.
type Config struct {
	Scan     ScanConfig  `yaml:"scan"`
	Drive    DriveConfig `yaml:"drive"`
	DBPath   string      `yaml:"db_path"`
	LogLevel string      `yaml:"log_level"`
}

// ScanConfig holds discovery settings.
type ScanConfig struct {
	Timeout time.Duration `yaml:"timeout"`
}

// DriveConfig holds teleoperation settings.
type DriveConfig struct {
	Speed           int           `yaml:"speed"`
	ResponseTimeout time.Duration `yaml:"response_timeout"`
}

// DefaultConfigDir returns the default config directory path.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "toio")
}

// DefaultConfigPath returns the default config file path.
func DefaultConfigPath() string {
	return filepath.Join(DefaultConfigDir(), "config.yaml")
}

// Default returns a Config with sensible default values.
func Default() *Config {
	home, _ := os.UserHomeDir()
	return &Config{
		Scan: ScanConfig{
			Timeout: 3 * time.Second,
		},
		Drive: DriveConfig{
			Speed:           60,
			ResponseTimeout: 2 * time.Second,
		},
		DBPath:   filepath.Join(home, ".local", "share", "toio", "toio.db"),
		LogLevel: "warn",
	}
}

// Load reads and parses a YAML config file. Missing fields are filled with
// defaults. Tilde (~) in db_path is expanded to the user's home directory.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	cfg.DBPath = expandTilde(cfg.DBPath)

	return cfg, nil
}

// LoadOrDefault loads the config at path if it exists, falling back to
// defaults when the file is absent.
func LoadOrDefault(path string) (*Config, error) {
	if path == "" {
		path = DefaultConfigPath()
	}
	cfg, err := Load(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return nil, err
	}
	return cfg, nil
}

// Validate checks the config for invalid values.
func (c *Config) Validate() error {
	if c.Scan.Timeout <= 0 {
		return fmt.Errorf("scan.timeout must be > 0")
	}

	if c.Drive.Speed <= 0 || c.Drive.Speed > 115 {
		return fmt.Errorf("drive.speed must be in 1..115, got %d", c.Drive.Speed)
	}

	if c.Drive.ResponseTimeout <= 0 {
		return fmt.Errorf("drive.response_timeout must be > 0")
	}

	if c.DBPath == "" {
		return fmt.Errorf("db_path must not be empty")
	}

	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log_level must be debug, info, warn, or error, got %q", c.LogLevel)
	}

	return nil
}

// ParseLogLevel maps a config log level string to a logrus level. Unknown
// values fall back to warn.
func ParseLogLevel(s string) logrus.Level {
	switch s {
	case "debug":
		return logrus.DebugLevel
	case "info":
		return logrus.InfoLevel
	case "error":
		return logrus.ErrorLevel
	default:
		return logrus.WarnLevel
	}
}

// expandTilde replaces a leading ~ with the user's home directory.
func expandTilde(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}
