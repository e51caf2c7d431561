package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/jpalmerr/freeboost/config"
	"github.com/jpalmerr/freeboost/internal/catalog"
	"github.com/jpalmerr/freeboost/internal/output"
	"github.com/jpalmerr/freeboost/internal/remote"
)

// loadSettings reads the settings file, or returns defaults when path is empty.
func loadSettings(path string) (*config.Config, error) {
	if path == "" {
		return config.Default(), nil
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}
	return cfg, nil
}

// openLogger returns a text logger appending to the settings' log file.
// The returned close function closes the file.
func openLogger(cfg *config.Config) (*slog.Logger, func() error, error) {
	f, err := os.OpenFile(cfg.LogFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file: %w", err)
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		level = slog.LevelInfo
	}

	logger := slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: level}))
	return logger, f.Close, nil
}

// newClient creates the session client shared by the config loader and the
// workers.
func newClient(cfg *config.Config) (*remote.Client, error) {
	var headers map[string]string
	if len(cfg.Headers) > 0 {
		headers = cfg.Headers
	}
	return remote.NewClient(cfg.SiteURL, headers)
}

// loadCatalog loads the platform configuration, warning when the cached copy
// had to be used.
func loadCatalog(ctx context.Context, cfg *config.Config, client *remote.Client, logger *slog.Logger, printer *output.Printer) (*catalog.Catalog, error) {
	loader := catalog.NewLoader(client, catalog.LoaderConfig{
		URL:       cfg.ConfigURL,
		CachePath: cfg.CacheFile,
		Retries:   cfg.ConfigRetries,
		Timeout:   cfg.ConfigTimeout.Duration(),
		Logger:    logger,
	})

	doc, source, err := loader.Load(ctx)
	if err != nil {
		return nil, err
	}
	if source == catalog.SourceCache {
		printer.Warning("Config endpoint unreachable, using cached copy from %s", cfg.CacheFile)
	}
	return catalog.NewCatalog(doc), nil
}
