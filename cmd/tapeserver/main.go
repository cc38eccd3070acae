package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/tapelabs/disclosure-tape/internal/api"
	"github.com/tapelabs/disclosure-tape/internal/config"
	"github.com/tapelabs/disclosure-tape/internal/database"
	"github.com/tapelabs/disclosure-tape/internal/price"
	detect "github.com/tapelabs/disclosure-tape/internal/signal"
	"github.com/tapelabs/disclosure-tape/internal/store"
	"github.com/tapelabs/disclosure-tape/internal/transform"
	"github.com/tapelabs/disclosure-tape/internal/version"
)

func main() {
	configPath := flag.String("config", "configs/tapeserver.local.yaml", "path to config file")
	flag.Parse()

	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg, err := config.LoadAndValidate(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := newLogger(cfg.Logging)
	slog.SetDefault(logger)

	logger.Info("starting tapeserver",
		"version", version.Version,
		"commit", version.Commit,
		"config", *configPath,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	logger.Info("connecting to database",
		"host", cfg.Database.Host,
		"port", cfg.Database.Port,
		"database", cfg.Database.Name,
	)
	pool, err := database.Connect(ctx, cfg.Database)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()
	logger.Info("database connected")

	events := store.NewEventStore(pool, logger)
	raw := store.NewRawStore(pool, logger)

	detector := detect.New(events, logger)
	maintenance := transform.NewMaintenance(events, raw, logger)
	quotes := price.NewClient(price.ClientConfig{
		BaseURL:    cfg.Pricing.BaseURL,
		APIKey:     cfg.Pricing.APIKey,
		Timeout:    cfg.Pricing.Timeout,
		CacheTTL:   cfg.Pricing.CacheTTL,
		RatePerSec: cfg.Pricing.RatePerSec,
		Burst:      cfg.Pricing.Burst,
	}, logger)
	if !quotes.Enabled() {
		logger.Info("pricing disabled, listings will omit quote annotations")
	}

	handlers := api.NewHandlers(events, detector, maintenance, quotes, logger)
	server := api.NewServer(cfg.Server, handlers, logger)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			logger.Error("server failed", "error", err)
			os.Exit(1)
		}
		return
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()
	if err := server.Stop(shutdownCtx); err != nil {
		logger.Error("shutdown failed", "error", err)
		os.Exit(1)
	}
}

func newLogger(cfg config.LoggingConfig) *slog.Logger {
	level, err := config.ParseLogLevel(cfg.Level)
	if err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}

	if cfg.Format == "text" {
		return slog.New(slog.NewTextHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, opts))
}
