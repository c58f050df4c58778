// Package server sets up the HTTP server, router, and all route definitions.
//
// SERVER ARCHITECTURE:
// This package is the "wiring" layer — it connects handlers, middleware, and routes.
// Think of it as the control centre that decides:
// - Which URL patterns map to which handler functions
// - What middleware runs on which routes
// - How the server starts and stops gracefully
//
// WHY SEPARATE FROM main.go?
// Keeping server setup in its own package makes it:
// - Testable (we can create a test server without running main)
// - Reusable (multiple entry points could use the same server config)
// - Clean (main.go stays minimal — just "start the server")
//
// DEPENDENCY INJECTION FLOW:
// main.go creates:
//   config.Config (from env) → passed to Server
//   Server.New() creates: store → AuthService/TodoService → handlers
//
// This is the "composition root" pattern — all dependencies are wired
// in one place (New/setupRoutes), rather than scattered across the codebase.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/nmelnikov5/task-manager/internal/auth"
	"github.com/nmelnikov5/task-manager/internal/config"
	"github.com/nmelnikov5/task-manager/internal/handler"
	"github.com/nmelnikov5/task-manager/internal/middleware"
	"github.com/nmelnikov5/task-manager/internal/repository"
	"github.com/nmelnikov5/task-manager/internal/repository/jsonfile"
	sqliteRepo "github.com/nmelnikov5/task-manager/internal/repository/sqlite"
	"github.com/nmelnikov5/task-manager/internal/service"
)

// Server represents the HTTP server and all its dependencies.
//
// RESOURCE MANAGEMENT:
// Depending on the STORAGE setting the server may own a database connection.
// The JSON file store has nothing to release (every mutation is already
// flushed to disk before the request returns), so closeStore is nil for it.
// When SQLite is selected we must close the connection on shutdown to flush
// the WAL and release the file lock — handled in Start().
type Server struct {
	router     *chi.Mux
	config     *config.Config
	logger     *slog.Logger
	closeStore func() error // nil when the backend has no resources to release
}

// New creates a new Server with the given config.
//
// DEPENDENCY INJECTION & WIRING:
// This is where the entire dependency chain is assembled:
//  1. Create the storage backend (jsonfile.New or sqlite.New, per config)
//  2. Create token + password services from the JWT secret
//  3. Create the service layer (AuthService, TodoService) with the repositories
//  4. Create the handlers with the services
//  5. Wire handlers to routes
//
// Each layer only receives what it needs:
// - Services get repository interfaces (not the concrete store)
// - Handlers get the services (not the repositories or files)
//
// IMPORT ALIAS:
// We import repository/sqlite as `sqliteRepo` to avoid confusion with
// the sqlite driver package. Import aliases are common in Go when
// package names would otherwise collide or be unclear.
func New(cfg *config.Config, logger *slog.Logger) (*Server, error) {
	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
	}

	// === CREATE STORAGE BACKEND ===
	// Both backends satisfy the same repository interfaces, so everything
	// downstream of this switch is identical for either choice.
	var (
		users repository.UserRepository
		todos repository.TodoRepository
	)
	switch cfg.Storage {
	case config.StorageSQLite:
		db, err := sqliteRepo.New(cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("opening database: %w", err)
		}
		users, todos = db, db
		s.closeStore = db.Close
	default:
		store, err := jsonfile.New(cfg.DataDir)
		if err != nil {
			return nil, fmt.Errorf("opening data directory: %w", err)
		}
		users, todos = store, store
	}

	if err := s.setupRoutes(users, todos); err != nil {
		if s.closeStore != nil {
			s.closeStore() // Clean up DB if route setup fails
		}
		return nil, fmt.Errorf("setting up routes: %w", err)
	}

	return s, nil
}

// setupRoutes configures all middleware and route handlers.
//
// ROUTE STRUCTURE:
// POST   /api/register            → Create account (public)
// POST   /api/login               → Exchange credentials for a token (public)
// GET    /api/health              → Liveness probe (public)
// GET    /api/todo-items          → List caller's items        [auth]
// POST   /api/todo-items          → Create item                [auth]
// PUT    /api/todo-items/{id}     → Partially update item      [auth]
// DELETE /api/todo-items/{id}     → Delete item                [auth]
//
// MIDDLEWARE ORDER MATTERS:
// Middleware executes in the order it's added. Our order:
// 1. RequestID — assigns unique ID to each request (for tracing)
// 2. RealIP — extracts real client IP from proxy headers (the rate
//    limiter keys on IP, so this must run before it)
// 3. Recoverer — catches panics and returns 500 instead of crashing
// 4. Logger — logs each request with timing info
// 5. CORS / rate limiting — only when enabled by config
//
// Authentication is NOT global: it wraps only the /api/todo-items group,
// so register and login stay reachable without a token.
func (s *Server) setupRoutes(users repository.UserRepository, todos repository.TodoRepository) error {
	// === Global Middleware ===
	// These run on EVERY request, in order

	// Chi's built-in middleware
	s.router.Use(chimiddleware.RequestID) // Adds X-Request-ID header
	s.router.Use(chimiddleware.RealIP)    // Extracts real IP from X-Forwarded-For
	s.router.Use(chimiddleware.Recoverer) // Recovers from panics, returns 500

	// Our custom logging middleware
	s.router.Use(middleware.Logger(s.logger))

	if s.config.AllowedOrigin != "" {
		s.router.Use(middleware.CORS(s.config.AllowedOrigin))
	}
	if s.config.RateLimitEnabled {
		s.router.Use(middleware.RateLimit(s.config.RateLimitRPS, s.config.RateLimitBurst))
	}

	// === Auth Primitives ===
	tokens, err := auth.NewTokenService(s.config.JWTSecret)
	if err != nil {
		return fmt.Errorf("creating token service: %w", err)
	}
	passwords := auth.NewPasswordService()

	// === API Routes ===
	// DEPENDENCY CHAIN:
	//   store → implements repository.UserRepository / repository.TodoRepository
	//   services receive the repository interfaces
	//   handlers receive the services
	//
	// Notice: the handlers never touch the store directly.
	// The services never touch HTTP. Clean separation!
	authService := service.NewAuthService(users, passwords, tokens, s.logger)
	todoService := service.NewTodoService(todos, s.logger)

	authHandler := handler.NewAuthHandler(authService, s.logger)
	todoHandler := handler.NewTodoHandler(todoService, s.logger)
	healthHandler := handler.NewHealthHandler()

	s.router.Route("/api", func(r chi.Router) {
		// Public routes — no token required
		r.Post("/register", authHandler.HandleRegister)
		r.Post("/login", authHandler.HandleLogin)
		r.Get("/health", healthHandler.HandleHealth)

		// Protected routes — RequireAuth rejects requests without a valid
		// bearer token before the handlers ever run
		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAuth(tokens))
			r.Get("/todo-items", todoHandler.HandleList)
			r.Post("/todo-items", todoHandler.HandleCreate)
			r.Put("/todo-items/{id}", todoHandler.HandleUpdate)
			r.Delete("/todo-items/{id}", todoHandler.HandleDelete)
		})
	})

	return nil
}

// Handler returns the root http.Handler. Exposed so tests can drive the full
// middleware + routing stack through httptest without opening a socket.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start starts the HTTP server and handles graceful shutdown.
//
// GRACEFUL SHUTDOWN:
// 1. Stop accepting new HTTP connections
// 2. Wait for in-flight requests to finish (30s timeout)
// 3. Close the storage backend, if it holds resources (SQLite connection)
//
// If we skip step 3, the database file might be left in an inconsistent state.
// The deferred close ensures this happens even if something panics.
func (s *Server) Start() error {
	if s.closeStore != nil {
		defer s.closeStore()
	}

	// Create the HTTP server with sensible timeouts
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Channel to receive OS signals
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	// Channel to receive server errors
	serverErrors := make(chan error, 1)

	// Start the server in a goroutine (so it doesn't block)
	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("url", fmt.Sprintf("http://localhost:%d", s.config.Port)),
			slog.String("storage", string(s.config.Storage)),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	// Block until we receive a signal or server error
	select {
	case err := <-serverErrors:
		// Server failed to start
		if err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		// Received shutdown signal
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		// Give in-flight requests 30 seconds to complete
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
