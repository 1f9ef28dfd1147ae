// Package main is the entry point of the citizen complaint portal.
//
// main only assembles the process: it loads .env, reads the configuration,
// sets up logging, picks the service catalog, and hands everything to
// internal/server. All behaviour lives in the internal packages.
package main

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

	"github.com/sakif/ncps/internal/catalog"
	"github.com/sakif/ncps/internal/config"
	"github.com/sakif/ncps/internal/server"
)

func main() {
	// A missing .env is normal in production, where the environment is set
	// by the service manager.
	envErr := godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))
	slog.SetDefault(logger)

	switch {
	case envErr == nil:
		logger.Debug("loaded .env")
	case errors.Is(envErr, fs.ErrNotExist):
		logger.Debug("no .env file, using the process environment")
	default:
		logger.Warn("could not read .env", slog.String("error", envErr.Error()))
	}
	if cfg.SessionSecretGenerated {
		logger.Warn("SESSION_SECRET not set; using a random secret, sessions will not survive a restart")
	}

	if cfg.DBPath != ":memory:" {
		dbDir := filepath.Dir(cfg.DBPath)
		if err := os.MkdirAll(dbDir, 0o755); err != nil {
			logger.Error("failed to create database directory",
				slog.String("dir", dbDir),
				slog.String("error", err.Error()),
			)
			os.Exit(1)
		}
	}

	cat := catalog.Default()
	if cfg.CatalogFile != "" {
		cat, err = catalog.Load(cfg.CatalogFile)
		if err != nil {
			logger.Error("failed to load service catalog",
				slog.String("file", cfg.CatalogFile),
				slog.String("error", err.Error()),
			)
			os.Exit(1)
		}
		logger.Info("service catalog loaded", slog.String("file", cfg.CatalogFile))
	}

	srv, err := server.New(cfg, cat, logger)
	if err != nil {
		logger.Error("failed to create server", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Start blocks until SIGINT or SIGTERM.
	if err := srv.Start(); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
