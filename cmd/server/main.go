// Package main is the entrypoint for the AgentList API server.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/kiranshivaraju/agentlist/internal/agent"
	"github.com/kiranshivaraju/agentlist/internal/api"
	"github.com/kiranshivaraju/agentlist/internal/api/handler"
	mw "github.com/kiranshivaraju/agentlist/internal/api/middleware"
	"github.com/kiranshivaraju/agentlist/internal/api/response"
	"github.com/kiranshivaraju/agentlist/internal/apikey"
	"github.com/kiranshivaraju/agentlist/internal/cache"
	"github.com/kiranshivaraju/agentlist/internal/config"
	"github.com/kiranshivaraju/agentlist/internal/distribution"
	"github.com/kiranshivaraju/agentlist/internal/store"
	"golang.org/x/sync/errgroup"
)

const (
	shutdownTimeout = 30 * time.Second
	healthTimeout   = 2 * time.Second
)

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
	// 1. Load config, fail fast on invalid config
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	slog.Info("config loaded", "env", cfg.Server.Env, "fan_out", cfg.Distribution.FanOut)

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
	if err := store.RunMigrations(cfg.Database.URL, cfg.Server.MigrationsDir); err != nil {
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

	// 5. Create store and services
	pgStore := store.NewPostgresStore(pool)

	distributions := distribution.NewService(pgStore, redisCache, distribution.Config{
		FanOut:    cfg.Distribution.FanOut,
		UploadDir: cfg.Upload.Dir,
		MaxBytes:  cfg.Upload.MaxBytes,
		CacheTTL:  cfg.Redis.CacheTTL,
	})
	agents := agent.NewService(pgStore, redisCache)
	keys := apikey.NewService(pgStore)

	// 6. Build router with dependencies
	deps := api.Dependencies{
		Auth:      mw.NewAuth(pgStore),
		RateLimit: mw.NewRateLimit(redisCache, cfg.Server.RateLimitRPM),

		Health: healthHandler(pgStore, redisCache),

		Upload:            handler.NewUploadHandler(distributions, cfg.Upload.MaxBytes),
		ListDistributions: handler.NewListDistributionsHandler(distributions),
		GetDistribution:   handler.NewGetDistributionHandler(distributions),

		ListAgents:       handler.NewListAgentsHandler(agents),
		CreateAgent:      handler.NewCreateAgentHandler(agents),
		GetAgent:         handler.NewGetAgentHandler(agents),
		UpdateAgent:      handler.NewUpdateAgentHandler(agents),
		DeleteAgent:      handler.NewDeleteAgentHandler(agents),
		AgentAssignments: handler.NewAgentAssignmentsHandler(agents),

		CreateKey: handler.NewCreateKeyHandler(keys),
		ListKeys:  handler.NewListKeysHandler(keys),
		RevokeKey: handler.NewRevokeKeyHandler(keys),
	}

	router := api.NewRouter(deps)

	// 7. Start HTTP server
	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
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

type pinger interface {
	Ping(ctx context.Context) error
}

// healthHandler checks database and cache connectivity concurrently.
func healthHandler(db, c pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
		defer cancel()

		var (
			mu     sync.Mutex
			checks = map[string]string{}
			g      errgroup.Group
		)
		probe := func(name string, p pinger) {
			g.Go(func() error {
				status := "ok"
				if err := p.Ping(ctx); err != nil {
					slog.Warn("health check failed", "service", name, "error", err)
					status = "degraded"
				}
				mu.Lock()
				checks[name] = status
				mu.Unlock()
				return nil
			})
		}
		probe("database", db)
		probe("cache", c)
		_ = g.Wait()

		if checks["database"] != "ok" || checks["cache"] != "ok" {
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
