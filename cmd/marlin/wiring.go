package main

import (
	"fmt"

	"github.com/marlinhq/marlin/internal/backtest"
	"github.com/marlinhq/marlin/internal/config"
	"github.com/marlinhq/marlin/internal/history"
	"github.com/marlinhq/marlin/internal/storage/archive"
	"github.com/marlinhq/marlin/internal/strategy"
	"github.com/marlinhq/marlin/internal/strategy/emacross"
	"github.com/marlinhq/marlin/internal/strategy/macdmom"
	"github.com/marlinhq/marlin/internal/strategy/rsirev"
	"go.uber.org/zap"
)

// loadConfig reads the config file when one is given and falls back to
// defaults otherwise. The result is always validated.
func loadConfig(log *zap.Logger) (*config.Config, error) {
	var cfg *config.Config
	var err error

	if cfgFile != "" {
		cfg, err = config.Load(cfgFile)
		if err != nil {
			return nil, fmt.Errorf("loading config: %w", err)
		}
	} else {
		cfg = config.Defaults()
		log.Warn("no config file specified, using defaults")
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// newRegistry registers the built-in strategy variants.
func newRegistry(log *zap.Logger) *strategy.Registry {
	registry := strategy.NewRegistry(log)
	registry.Register(emacross.New())
	registry.Register(rsirev.New())
	registry.Register(macdmom.New())
	return registry
}

// newProvider selects the history provider from config.
func newProvider(cfg *config.Config) backtest.HistoryProvider {
	switch cfg.History.Provider {
	case "memory":
		return history.NewMemory()
	default:
		return history.NewYahoo()
	}
}

// newArchiver builds the result archiver, or nil when archiving is off.
func newArchiver(cfg *config.Config) (*archive.Archiver, error) {
	if !cfg.Storage.Archive.Enabled {
		return nil, nil
	}

	var storage archive.Storage
	var err error

	switch cfg.Storage.Archive.Type {
	case "s3":
		storage, err = archive.NewS3(archive.S3Config{
			Bucket:    cfg.Storage.Archive.S3.Bucket,
			Endpoint:  cfg.Storage.Archive.S3.Endpoint,
			Region:    cfg.Storage.Archive.S3.Region,
			AccessKey: cfg.Storage.Archive.S3.AccessKey,
			SecretKey: cfg.Storage.Archive.S3.SecretKey,
			Prefix:    cfg.Storage.Archive.S3.Prefix,
		})
	default:
		storage, err = archive.NewLocalFS(cfg.Storage.Archive.Path)
	}
	if err != nil {
		return nil, fmt.Errorf("creating archive storage: %w", err)
	}
	return archive.NewArchiver(storage), nil
}
