// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/starford/dagaz/internal/api"
	"github.com/starford/dagaz/internal/mcpserver"
	"github.com/starford/dagaz/internal/models"
	"github.com/starford/dagaz/internal/seed"
	"github.com/starford/dagaz/internal/sse"
	"github.com/starford/dagaz/internal/storage"
	"github.com/starford/dagaz/internal/taskstore"
)

// openProvider builds the configured persistence backend. The *storage.Dir
// result is non-nil only for the dir backend, where the watcher needs it.
func openProvider(cfg *Config) (storage.Provider, *storage.Dir, error) {
	switch cfg.Storage.Backend {
	case BackendDir:
		if err := os.MkdirAll(cfg.Storage.Path, 0o755); err != nil {
			return nil, nil, fmt.Errorf("create day dir: %w", err)
		}
		dir, err := storage.NewDir(cfg.Storage.Path)
		if err != nil {
			return nil, nil, fmt.Errorf("init dir storage: %w", err)
		}
		return dir, dir, nil
	case BackendSQLite:
		db, err := storage.OpenSQLite(cfg.Storage.Path)
		if err != nil {
			return nil, nil, fmt.Errorf("init sqlite storage: %w", err)
		}
		return db, nil, nil
	default:
		return nil, nil, fmt.Errorf("unknown storage backend: %q", cfg.Storage.Backend)
	}
}

// seedSource builds the configured seed fallback.
func seedSource(cfg *Config) (seed.Source, error) {
	switch cfg.Seed.Mode {
	case SeedBuiltin:
		return seed.Default(time.Now()), nil
	case SeedFile:
		src, err := seed.Load(cfg.Seed.Path, time.Now())
		if err != nil {
			return nil, fmt.Errorf("load seed file: %w", err)
		}
		return src, nil
	case SeedNone:
		return seed.None{}, nil
	default:
		return nil, fmt.Errorf("unknown seed mode: %q", cfg.Seed.Mode)
	}
}

// Run starts the application with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app := &application{}

	for _, opt := range opts {
		opt(app)
	}

	if app.config == nil {
		return fmt.Errorf("config is required")
	}

	cfg := app.config

	// Initialize structured JSON logger.
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("storage_backend", cfg.Storage.Backend),
		slog.String("storage_path", cfg.Storage.Path),
		slog.String("seed_mode", cfg.Seed.Mode),
		slog.String("log_level", cfg.App.LogLevel.String()))

	provider, dir, err := openProvider(cfg)
	if err != nil {
		return err
	}
	defer provider.Close()

	src, err := seedSource(cfg)
	if err != nil {
		return err
	}

	// SSE broker.
	broker := sse.NewBroker(2 * time.Second)
	defer broker.Close()

	// Task store with mutation events wired to the broker.
	store := taskstore.New(provider, src, taskstore.WithEvents(func(kind, date string, task models.Task) {
		broker.PublishTaskEvent(kind, date, task)
	}))

	// Build chi router.
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health check endpoints (unauthenticated).
	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/health/ready", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	// Mount API routes under /api.
	r.Mount("/api", api.NewRouter(store, cfg.Auth.AuthEnabled(), cfg.Auth.Token, broker))

	httpServer := &http.Server{
		Addr:    cfg.App.HTTP.Address(),
		Handler: r,
	}

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

	g, gCtx := errgroup.WithContext(ctx)

	// Watch the day directory for external edits.
	if dir != nil && cfg.Storage.Watch {
		g.Go(func() error {
			err := storage.Watch(gCtx, dir, logger, func(kind, date string) {
				store.Invalidate(date)
				broker.PublishTaskEvent("day.reloaded", date, models.Task{})
			})
			if err != nil {
				logger.Error("watcher failed", slog.String("error", err.Error()))
			}
			return nil
		})
	}

	// Start HTTP server.
	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	// Handle shutdown signals.
	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

		logger.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}

		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

// RunMCP serves the MCP tools over stdio against the configured storage.
// Logs go to stderr so stdout stays clean for the protocol.
func RunMCP(ctx context.Context, opts ...Option) error {
	app := &application{}

	for _, opt := range opts {
		opt(app)
	}

	if app.config == nil {
		return fmt.Errorf("config is required")
	}

	cfg := app.config

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	provider, _, err := openProvider(cfg)
	if err != nil {
		return err
	}
	defer provider.Close()

	src, err := seedSource(cfg)
	if err != nil {
		return err
	}

	store := taskstore.New(provider, src)

	logger.Info("MCP server starting on stdio",
		slog.String("storage_backend", cfg.Storage.Backend),
		slog.String("storage_path", cfg.Storage.Path))

	return mcpserver.New(store).ServeStdio()
}
