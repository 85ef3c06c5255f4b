// Package main is the entrypoint for the PostPilot API server.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/postpilot/postpilot/internal/api"
	"github.com/postpilot/postpilot/internal/api/handler"
	mw "github.com/postpilot/postpilot/internal/api/middleware"
	"github.com/postpilot/postpilot/internal/api/response"
	"github.com/postpilot/postpilot/internal/cache"
	"github.com/postpilot/postpilot/internal/config"
	"github.com/postpilot/postpilot/internal/facebook"
	"github.com/postpilot/postpilot/internal/gen"
	"github.com/postpilot/postpilot/internal/ledger"
	"github.com/postpilot/postpilot/internal/publish"
	"github.com/postpilot/postpilot/internal/store"
)

const shutdownTimeout = 30 * time.Second

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if err := run(); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Load config — .env is optional, invalid config is fatal
	_ = godotenv.Load()
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	slog.Info("config loaded", "gen_provider", cfg.Gen.Provider, "env", cfg.Server.Env)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. Connect to database
	pool, err := store.Connect(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer pool.Close()
	slog.Info("database connected")

	// 3. Run migrations
	if err := store.RunMigrations(cfg.Database.URL, "migrations"); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	slog.Info("database migrations applied")

	// 4. Create Redis cache
	redisCache, err := cache.NewRedisCache(cfg.Redis.URL)
	if err != nil {
		return fmt.Errorf("create redis cache: %w", err)
	}
	defer redisCache.Close()

	if err := redisCache.Ping(ctx); err != nil {
		return fmt.Errorf("ping redis: %w", err)
	}
	slog.Info("redis connected")

	// 5. Create content provider and generation service
	provider, err := gen.NewProvider(cfg.Gen)
	if err != nil {
		return fmt.Errorf("create content provider: %w", err)
	}
	slog.Info("content provider initialized", "provider", provider.Name())

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	genService := gen.NewService(provider, redisCache, cfg.Gen, rng)

	// 6. Create store, ledger, and publish dispatcher
	pgStore := store.NewPostgresStore(pool)
	postLedger := ledger.New(pgStore)

	fbClient := facebook.NewHTTPClient(cfg.Facebook.BaseURL, cfg.Facebook.GraphVersion, cfg.Facebook.Timeout)
	publisher := publish.NewService(fbClient, postLedger, cfg.Facebook.MinScheduleLead)

	// 7. Build router with dependencies
	deps := api.Dependencies{
		RateLimit: mw.NewRateLimit(redisCache, 60),

		HealthHandler:    healthHandler(pgStore, redisCache),
		GenerateHandler:  handler.NewGenerateHandler(genService),
		PostNowHandler:   handler.NewPostNowHandler(publisher),
		ScheduleHandler:  handler.NewSchedulePostHandler(publisher),
		ListPostsHandler: handler.NewListPostsHandler(pgStore),
	}

	router := api.NewRouter(deps)

	// 8. Start HTTP server
	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 90 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in background
	errCh := make(chan error, 1)
	go func() {
		slog.Info("server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	// Wait for shutdown signal or server error
	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		slog.Info("shutdown signal received, draining connections...")
	}

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	slog.Info("server stopped gracefully")
	return nil
}

// healthHandler checks database and cache connectivity.
func healthHandler(s store.Store, c cache.Cache) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		checks := map[string]string{
			"database": "ok",
			"cache":    "ok",
		}

		if err := s.Ping(r.Context()); err != nil {
			checks["database"] = "degraded"
		}
		if err := c.Ping(r.Context()); err != nil {
			checks["cache"] = "degraded"
		}

		degraded := checks["database"] != "ok" || checks["cache"] != "ok"
		if degraded {
			response.Error(w, http.StatusServiceUnavailable, "DEGRADED",
				"One or more services degraded", checks)
			return
		}

		response.JSON(w, map[string]any{
			"status":   "ok",
			"services": checks,
		})
	}
}
