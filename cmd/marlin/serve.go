package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/marlinhq/marlin/internal/api"
	"github.com/marlinhq/marlin/internal/backtest"
	"github.com/marlinhq/marlin/internal/logger"
	"github.com/marlinhq/marlin/internal/metrics"
	"github.com/marlinhq/marlin/internal/storage/results"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the Marlin backtest server",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	log := logger.Must(debug)
	defer log.Sync()

	cfg, err := loadConfig(log)
	if err != nil {
		return err
	}

	registry := newRegistry(log)
	provider := newProvider(cfg)
	runner := backtest.NewRunner(provider, registry, log)
	store := results.NewMemoryStore(cfg.Storage.MaxResults)

	archiver, err := newArchiver(cfg)
	if err != nil {
		return err
	}

	var reg *metrics.Registry
	metricsPath := ""
	if cfg.Metrics.Enabled {
		reg = metrics.NewRegistry()
		metricsPath = cfg.Metrics.Path
	}

	log.Info("starting Marlin server",
		zap.String("host", cfg.Server.Host),
		zap.Int("port", cfg.Server.Port),
		zap.String("provider", cfg.History.Provider),
	)

	server := api.NewServer(api.Config{
		Host:        cfg.Server.Host,
		Port:        cfg.Server.Port,
		APIKey:      cfg.Server.APIKey,
		JobTTL:      time.Duration(cfg.Server.JobTTLHours) * time.Hour,
		MaxJobs:     cfg.Server.MaxJobs,
		MetricsPath: metricsPath,
	}, api.Deps{
		Runner:     runner,
		Strategies: registry,
		Results:    store,
		Archiver:   archiver,
		Metrics:    reg,
	}, log)

	go func() {
		if err := server.Start(); err != nil {
			log.Error("server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down Marlin server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	return server.Shutdown(ctx)
}
