// Command api serves the gold cricket tables over HTTP.
//
// Usage:
//
//	scoracle-api
//	API_PORT=8080 scoracle-api

// @title Scoracle Cricket API
// @version 1.0.0
// @description Read API over the gold cricket tables: match results, innings summaries, player batting and bowling lines, and career leader boards.
// @host localhost:8000
// @BasePath /api/v1
// @schemes http https
// @contact.name Scoracle
// @license.name MIT
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"

	"github.com/albapepper/scoracle-cricket/internal/api"
	"github.com/albapepper/scoracle-cricket/internal/cache"
	"github.com/albapepper/scoracle-cricket/internal/config"
	"github.com/albapepper/scoracle-cricket/internal/db"
	"github.com/albapepper/scoracle-cricket/internal/listener"
	"github.com/albapepper/scoracle-cricket/internal/maintenance"
	"github.com/albapepper/scoracle-cricket/internal/store"

	_ "github.com/albapepper/scoracle-cricket/docs" // swagger docs
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	// Load .env if present
	_ = godotenv.Load(".env")

	cfg, err := config.Load()
	if err != nil {
		logger.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	if cfg.Debug {
		logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
		slog.SetDefault(logger)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	logger.Info("Connecting to database...")
	pool, err := db.NewReadOnly(ctx, cfg)
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()
	logger.Info("Database connected",
		"min_conns", cfg.DBPoolMinConns,
		"max_conns", cfg.DBPoolMaxConns)

	appCache := cache.New(cfg.CacheEnabled, cfg.CacheTTL)
	defer appCache.Close()
	logger.Info("Cache initialized", "enabled", cfg.CacheEnabled, "ttl", cfg.CacheTTL)

	// Purge cached responses whenever the ETL commits a gold run.
	go listener.Start(ctx, cfg.DatabaseURL, appCache, logger)

	// Leader views may also be refreshed here when the ETL runs elsewhere.
	go maintenance.Start(ctx, pool.Pool, cfg.ViewRefreshInterval, logger)

	router := api.NewRouter(store.NewPostgres(pool.Pool), appCache, cfg, logger)

	addr := fmt.Sprintf("%s:%d", cfg.APIHost, cfg.APIPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("Starting Scoracle Cricket API",
			"addr", addr,
			"environment", cfg.Environment,
			"docs", fmt.Sprintf("http://localhost:%d/docs/", cfg.APIPort))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Shutdown error", "error", err)
	}
	logger.Info("Server stopped")
}
