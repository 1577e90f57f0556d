// Command server compiles the city growth tables at startup and serves them
// over a read-only JSON API.
package main

import (
	"log/slog"
	"os"

	"github.com/andresfortunato/mexico-city-growth-tool/internal/app"
	"github.com/andresfortunato/mexico-city-growth-tool/internal/config"
	"github.com/andresfortunato/mexico-city-growth-tool/internal/infrastructure"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	paths, err := cfg.ResolvePaths()
	if err != nil {
		slog.Error("Failed to resolve paths", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if cfg.Logging.Output != "console" {
		if err := paths.EnsureDirectories(); err != nil {
			slog.Error("Failed to create directories", slog.String("error", err.Error()))
			os.Exit(1)
		}
		cfg.Logging.FilePath = cfg.LogFilePath(paths)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		slog.Error("Failed to initialize logger", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer infrastructure.CloseLogFile()

	application, err := app.NewApplication(cfg, logger)
	if err != nil {
		logger.Error("Failed to initialize application", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if err := application.Run(); err != nil {
		logger.Error("Application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
