package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Scan.Timeout != 3*time.Second {
		t.Errorf("Scan.Timeout = %v, want 3s", cfg.Scan.Timeout)
	}
	if cfg.Drive.Speed != 60 {
		t.Errorf("Drive.Speed = %d, want 60", cfg.Drive.Speed)
	}
	if cfg.Drive.ResponseTimeout != 2*time.Second {
		t.Errorf("Drive.ResponseTimeout = %v, want 2s", cfg.Drive.ResponseTimeout)
	}
	if cfg.DBPath == "" {
		t.Error("DBPath should not be empty")
	}
	if cfg.LogLevel != "warn" {
		t.Errorf("LogLevel = %q, want %q", cfg.LogLevel, "warn")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config must validate, got %v", err)
	}
}

func TestLoad(t *testing.T) {
	yamlContent := `
scan:
  timeout: 5s
drive:
  speed: 80
  response_timeout: 1s
db_path: /tmp/toio-test.db
log_level: debug
`
	tmpDir := t.TempDir()
	cfgPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(cfgPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg, err := Load(cfgPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Scan.Timeout != 5*time.Second {
		t.Errorf("Scan.Timeout = %v, want 5s", cfg.Scan.Timeout)
	}
	if cfg.Drive.Speed != 80 {
		t.Errorf("Drive.Speed = %d, want 80", cfg.Drive.Speed)
	}
	if cfg.Drive.ResponseTimeout != time.Second {
		t.Errorf("Drive.ResponseTimeout = %v, want 1s", cfg.Drive.ResponseTimeout)
	}
	if cfg.DBPath != "/tmp/toio-test.db" {
		t.Errorf("DBPath = %q, want /tmp/toio-test.db", cfg.DBPath)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want %q", cfg.LogLevel, "debug")
	}
}

func TestLoadFillsMissingFieldsWithDefaults(t *testing.T) {
	yamlContent := `
drive:
  speed: 40
`
	tmpDir := t.TempDir()
	cfgPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(cfgPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg, err := Load(cfgPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Drive.Speed != 40 {
		t.Errorf("Drive.Speed = %d, want 40", cfg.Drive.Speed)
	}
	if cfg.Scan.Timeout != 3*time.Second {
		t.Errorf("Scan.Timeout = %v, want the 3s default", cfg.Scan.Timeout)
	}
	if cfg.LogLevel != "warn" {
		t.Errorf("LogLevel = %q, want the warn default", cfg.LogLevel)
	}
}

func TestLoadExpandsTilde(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("cannot determine home directory")
	}

	yamlContent := `
db_path: ~/toio/test.db
`
	tmpDir := t.TempDir()
	cfgPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(cfgPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg, err := Load(cfgPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	expected := filepath.Join(home, "toio/test.db")
	if cfg.DBPath != expected {
		t.Errorf("DBPath = %q, want %q", cfg.DBPath, expected)
	}
}

func TestLoadFileNotFound(t *testing.T) {
	_, err := Load("/nonexistent/config.yaml")
	if err == nil {
		t.Error("Load() should return error for nonexistent file")
	}
}

func TestLoadOrDefaultMissingFile(t *testing.T) {
	cfg, err := LoadOrDefault(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("LoadOrDefault() error = %v", err)
	}
	if cfg.Drive.Speed != Default().Drive.Speed {
		t.Errorf("Drive.Speed = %d, want the default", cfg.Drive.Speed)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr bool
	}{
		{
			name:    "valid default config",
			modify:  func(c *Config) {},
			wantErr: false,
		},
		{
			name:    "zero scan timeout",
			modify:  func(c *Config) { c.Scan.Timeout = 0 },
			wantErr: true,
		},
		{
			name:    "zero drive speed",
			modify:  func(c *Config) { c.Drive.Speed = 0 },
			wantErr: true,
		},
		{
			name:    "drive speed beyond motor range",
			modify:  func(c *Config) { c.Drive.Speed = 200 },
			wantErr: true,
		},
		{
			name:    "zero response timeout",
			modify:  func(c *Config) { c.Drive.ResponseTimeout = 0 },
			wantErr: true,
		},
		{
			name:    "empty db path",
			modify:  func(c *Config) { c.DBPath = "" },
			wantErr: true,
		},
		{
			name:    "invalid log level",
			modify:  func(c *Config) { c.LogLevel = "invalid" },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		input string
		want  logrus.Level
	}{
		{"debug", logrus.DebugLevel},
		{"info", logrus.InfoLevel},
		{"warn", logrus.WarnLevel},
		{"error", logrus.ErrorLevel},
		{"unknown", logrus.WarnLevel},
		{"", logrus.WarnLevel},
	}

	for _, tt := range tests {
		if got := ParseLogLevel(tt.input); got != tt.want {
			t.Errorf("ParseLogLevel(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}
