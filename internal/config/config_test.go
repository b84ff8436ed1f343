package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(cfgPath, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return cfgPath
}

func TestLoad_FromFile(t *testing.T) {
	cfgPath := writeConfig(t, `
server:
  host: "127.0.0.1"
  port: 9090

backtest:
  initial_capital: 50000
  start: "2023-01-01"

storage:
  archive:
    enabled: true
    type: localfs
    path: "/tmp/marlin/archive"
`)

	cfg, err := Load(cfgPath)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("expected port 9090, got %d", cfg.Server.Port)
	}
	if cfg.Backtest.InitialCapital != 50000 {
		t.Errorf("expected initial capital 50000, got %f", cfg.Backtest.InitialCapital)
	}
	if want := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC); !cfg.Backtest.Start.Equal(want) {
		t.Errorf("expected start %v, got %v", want, cfg.Backtest.Start)
	}
	if cfg.Storage.Archive.Type != "localfs" {
		t.Errorf("expected localfs, got %s", cfg.Storage.Archive.Type)
	}
	// Unset sections keep their defaults.
	if cfg.Backtest.MaxPositions != 3 {
		t.Errorf("expected default max_positions 3, got %d", cfg.Backtest.MaxPositions)
	}
	if cfg.History.Provider != "yahoo" {
		t.Errorf("expected default provider yahoo, got %s", cfg.History.Provider)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load("/nonexistent/config.yaml"); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestDefaults(t *testing.T) {
	cfg := Defaults()

	if cfg.Server.Port != 8080 {
		t.Errorf("expected default port 8080, got %d", cfg.Server.Port)
	}
	if cfg.Storage.MaxResults != 500 {
		t.Errorf("expected default max_results 500, got %d", cfg.Storage.MaxResults)
	}
	if !cfg.Metrics.Enabled || cfg.Metrics.Path != "/metrics" {
		t.Errorf("expected metrics enabled at /metrics, got %+v", cfg.Metrics)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(c *Config) {}, false},
		{"bad port", func(c *Config) { c.Server.Port = 0 }, true},
		{"bad max jobs", func(c *Config) { c.Server.MaxJobs = 0 }, true},
		{"unknown provider", func(c *Config) { c.History.Provider = "bloomberg" }, true},
		{"bad capital", func(c *Config) { c.Backtest.InitialCapital = -1 }, true},
		{"bad max results", func(c *Config) { c.Storage.MaxResults = 0 }, true},
		{"archive without path", func(c *Config) {
			c.Storage.Archive.Enabled = true
			c.Storage.Archive.Path = ""
		}, true},
		{"s3 without bucket", func(c *Config) {
			c.Storage.Archive.Enabled = true
			c.Storage.Archive.Type = "s3"
		}, true},
		{"s3 with bucket", func(c *Config) {
			c.Storage.Archive.Enabled = true
			c.Storage.Archive.Type = "s3"
			c.Storage.Archive.S3.Bucket = "marlin-archive"
		}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoad_EnvExpansion(t *testing.T) {
	t.Setenv("MARLIN_TEST_API_KEY", "sekrit")
	cfgPath := writeConfig(t, `
server:
  api_key: "${MARLIN_TEST_API_KEY}"
`)

	cfg, err := Load(cfgPath)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	if cfg.Server.APIKey != "sekrit" {
		t.Errorf("expected expanded api key, got %q", cfg.Server.APIKey)
	}
}
