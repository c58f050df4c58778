// Package main is the entry point for the task manager server.
//
// MAIN PACKAGE IN GO:
// Every Go program starts execution in the main() function of the "main" package.
// The main package should be kept minimal — its job is to:
// 1. Read configuration (from env vars, flags, or config files)
// 2. Create dependencies (logger, storage, etc.)
// 3. Start the application
//
// All actual logic lives in imported packages (internal/server, internal/handler, etc.).
// This separation makes the app testable and its components reusable.
//
// WHY cmd/server/?
// The cmd/ directory is a Go convention for executable entry points.
// A project might have multiple executables (e.g., cmd/server, cmd/migrate, cmd/cli).
// Each gets its own directory with its own main.go.
package main

import (
	"log/slog"
	"os"

	"github.com/nmelnikov5/task-manager/internal/config"
	"github.com/nmelnikov5/task-manager/internal/server"
)

func main() {
	// === 1. SET UP LOGGING ===
	// slog.New creates a structured logger. slog.NewTextHandler outputs human-readable logs.
	// os.Stdout means logs go to the terminal. slog.LevelDebug enables all log levels.
	//
	// Log levels (from least to most severe): Debug → Info → Warn → Error
	// In production, you'd use LevelInfo or LevelWarn to reduce noise.
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))

	// === 2. READ CONFIGURATION ===
	// config.Load reads everything from the environment (plus an optional .env
	// file). It fails hard when JWT_SECRET is missing: a server that mints
	// tokens with an empty secret is worse than one that refuses to start.
	cfg, err := config.Load()
	if err != nil {
		logger.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// === 3. CREATE AND START THE SERVER ===
	srv, err := server.New(cfg, logger)
	if err != nil {
		logger.Error("failed to create server", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Start() blocks until the server is shut down (via Ctrl+C or SIGTERM)
	if err := srv.Start(); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
