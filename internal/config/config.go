package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/marlinhq/marlin/internal/backtest"
	"github.com/marlinhq/marlin/internal/core"
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig    `mapstructure:"server"`
	History  HistoryConfig   `mapstructure:"history"`
	Backtest backtest.Config `mapstructure:"backtest"`
	Storage  StorageConfig   `mapstructure:"storage"`
	Metrics  MetricsConfig   `mapstructure:"metrics"`
	Log      LogConfig       `mapstructure:"log"`
}

type ServerConfig struct {
	Host        string `mapstructure:"host"`
	Port        int    `mapstructure:"port"`
	APIKey      string `mapstructure:"api_key"`
	JobTTLHours int    `mapstructure:"job_ttl_hours"`
	MaxJobs     int    `mapstructure:"max_jobs"`
}

type HistoryConfig struct {
	// Provider is "yahoo" or "memory"; memory serves fixtures for offline use.
	Provider string `mapstructure:"provider"`
}

type StorageConfig struct {
	// MaxResults bounds the in-memory result store; the oldest runs are
	// evicted first.
	MaxResults int           `mapstructure:"max_results"`
	Archive    ArchiveConfig `mapstructure:"archive"`
}

type ArchiveConfig struct {
	Enabled bool     `mapstructure:"enabled"`
	Type    string   `mapstructure:"type"` // "localfs" or "s3"
	Path    string   `mapstructure:"path"` // For localfs
	S3      S3Config `mapstructure:"s3"`   // For S3
}

type S3Config struct {
	Bucket    string `mapstructure:"bucket"`
	Endpoint  string `mapstructure:"endpoint"`
	Region    string `mapstructure:"region"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Prefix    string `mapstructure:"prefix"`
}

// MetricsConfig holds metrics configuration.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

type LogConfig struct {
	Development bool `mapstructure:"development"`
}

// Load reads configuration from file
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	// Support environment variable overrides
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	// Expand environment variables in string values
	for _, key := range v.AllKeys() {
		val := v.GetString(key)
		if strings.HasPrefix(val, "${") && strings.HasSuffix(val, "}") {
			envKey := strings.TrimSuffix(strings.TrimPrefix(val, "${"), "}")
			v.Set(key, os.Getenv(envKey))
		}
	}

	cfg := Defaults()
	// Date fields accept plain YYYY-MM-DD strings.
	hook := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeHookFunc("2006-01-02"),
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	))
	if err := v.Unmarshal(cfg, hook); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	return cfg, nil
}

// Defaults returns a config with sensible defaults
func Defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Host:        "0.0.0.0",
			Port:        8080,
			JobTTLHours: 1,
			MaxJobs:     100,
		},
		History: HistoryConfig{
			Provider: "yahoo",
		},
		Backtest: backtest.DefaultConfig(),
		Storage: StorageConfig{
			MaxResults: 500,
			Archive: ArchiveConfig{
				Type: "localfs",
				Path: "data/archive",
			},
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Path:    "/metrics",
		},
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("port must be between 1 and 65535, got %d", c.Server.Port))
	}
	if c.Server.MaxJobs < 1 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("max_jobs must be at least 1, got %d", c.Server.MaxJobs))
	}

	switch c.History.Provider {
	case "yahoo", "memory":
	default:
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("unknown history provider %q", c.History.Provider))
	}

	if err := c.Backtest.Validate(); err != nil {
		return err
	}

	if c.Storage.MaxResults < 1 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("max_results must be at least 1, got %d", c.Storage.MaxResults))
	}

	if c.Storage.Archive.Enabled {
		switch c.Storage.Archive.Type {
		case "localfs":
			if c.Storage.Archive.Path == "" {
				return core.WrapError(core.ErrConfigMissing,
					fmt.Errorf("archive path required when type is localfs"))
			}
		case "s3":
			if c.Storage.Archive.S3.Bucket == "" {
				return core.WrapError(core.ErrConfigMissing,
					fmt.Errorf("s3 bucket required when archive type is s3"))
			}
		default:
			return core.WrapError(core.ErrConfigInvalid,
				fmt.Errorf("unknown archive type %q", c.Storage.Archive.Type))
		}
	}

	return nil
}
