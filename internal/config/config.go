// Package config loads server configuration from the environment.
//
// CONFIGURATION STRATEGY:
// Everything comes from environment variables, with a .env file as a
// convenience for local development (loaded best-effort — a missing .env
// is fine, real deployments set real env vars).
//
// WHY IS JWT_SECRET REQUIRED?
// The original deployment of this service shipped with a hardcoded signing
// secret, which meant every installation could forge every other
// installation's tokens. Here the secret is external configuration and its
// absence is a startup-fatal condition — a server that silently falls back
// to a known default is worse than one that refuses to start.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

// StorageType selects which repository backend the server runs on.
type StorageType string

const (
	// StorageJSON persists each collection as a flat JSON document,
	// rewritten in full on every mutation. This is the default and the
	// format existing deployments already have on disk.
	StorageJSON StorageType = "json"
	// StorageSQLite persists to an embedded SQLite database instead.
	StorageSQLite StorageType = "sqlite"
)

// Config holds all server configuration.
// Using a struct for config (instead of individual parameters) makes it easy to:
// - Add new config options without changing function signatures
// - Pass config around as a single value
// - Load config from files/env vars in one place
type Config struct {
	Port      int
	JWTSecret string

	Storage    StorageType
	DataDir    string // directory holding users.json / todo-items.json
	SQLitePath string // used when Storage == StorageSQLite

	AllowedOrigin string // CORS; empty disables the header entirely

	RateLimitEnabled bool
	RateLimitRPS     float64
	RateLimitBurst   int
}

// Load reads configuration from .env (if present) and the environment.
//
// Defaults match the original deployment: port 3010, JSON documents under
// ./data. Only JWT_SECRET has no default — see the package comment.
func Load() (*Config, error) {
	// Best-effort: .env is a local-dev convenience, not a requirement.
	_ = godotenv.Load()

	cfg := &Config{
		Port:           3010,
		Storage:        StorageJSON,
		DataDir:        "data",
		AllowedOrigin:  os.Getenv("ALLOWED_ORIGIN"),
		RateLimitRPS:   10,
		RateLimitBurst: 20,
	}

	if portStr := os.Getenv("PORT"); portStr != "" {
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return nil, fmt.Errorf("config: invalid PORT %q: %w", portStr, err)
		}
		cfg.Port = port
	}

	cfg.JWTSecret = os.Getenv("JWT_SECRET")
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("config: JWT_SECRET is not set (refusing to start with no signing secret)")
	}

	if dir := os.Getenv("DATA_DIR"); dir != "" {
		cfg.DataDir = dir
	}

	switch st := os.Getenv("STORAGE"); st {
	case "", string(StorageJSON):
		cfg.Storage = StorageJSON
	case string(StorageSQLite):
		cfg.Storage = StorageSQLite
		cfg.SQLitePath = os.Getenv("SQLITE_PATH")
		if cfg.SQLitePath == "" {
			cfg.SQLitePath = filepath.Join(cfg.DataDir, "tasks.db")
		}
	default:
		return nil, fmt.Errorf("config: unsupported STORAGE %q (want %q or %q)", st, StorageJSON, StorageSQLite)
	}

	if v := os.Getenv("RATE_LIMIT_ENABLED"); v != "" {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("config: invalid RATE_LIMIT_ENABLED %q: %w", v, err)
		}
		cfg.RateLimitEnabled = enabled
	}
	if v := os.Getenv("RATE_LIMIT_RPS"); v != "" {
		rps, err := strconv.ParseFloat(v, 64)
		if err != nil || rps <= 0 {
			return nil, fmt.Errorf("config: invalid RATE_LIMIT_RPS %q", v)
		}
		cfg.RateLimitRPS = rps
	}
	if v := os.Getenv("RATE_LIMIT_BURST"); v != "" {
		burst, err := strconv.Atoi(v)
		if err != nil || burst <= 0 {
			return nil, fmt.Errorf("config: invalid RATE_LIMIT_BURST %q", v)
		}
		cfg.RateLimitBurst = burst
	}

	return cfg, nil
}
