// Command api is the gardenbell notification relay server.
//
// Usage:
//
//	gardenbell-api
//	API_PORT=8080 gardenbell-api
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

	"github.com/mossvale/gardenbell/internal/api"
	"github.com/mossvale/gardenbell/internal/api/handler"
	"github.com/mossvale/gardenbell/internal/assets"
	"github.com/mossvale/gardenbell/internal/config"
	"github.com/mossvale/gardenbell/internal/dedupe"
	"github.com/mossvale/gardenbell/internal/dispatch"
	"github.com/mossvale/gardenbell/internal/engine"
	"github.com/mossvale/gardenbell/internal/registry"
	"github.com/mossvale/gardenbell/internal/snapshot"
	"github.com/mossvale/gardenbell/internal/upstream"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	// Load .env if present
	_ = godotenv.Load(".env")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Context with signal handling
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	// Wire the engine
	client := upstream.NewClient(cfg.UpstreamBaseURL, cfg.UpstreamAPIKey, cfg.UpstreamReqPerMin, logger)
	store := snapshot.New()
	devices := registry.New()
	cache := dedupe.New(cfg.DedupeWindow)

	var gateway dispatch.Gateway = dispatch.NewFCMClient(cfg.FCMEndpoint, cfg.FCMServerKey, logger)
	if cfg.FCMServerKey == "" {
		logger.Info("Push delivery disabled (no FCM_SERVER_KEY)")
	}

	composer := dispatch.NewComposer(assets.New(cfg.IconBaseURL, logger))
	dispatcher := dispatch.New(composer, gateway, cfg.DispatchWorkers, logger)

	eng := engine.New(client, store, devices, cache, dispatcher, logger)
	go eng.Run(ctx, cfg.PollInterval, cfg.EventRefreshInterval)

	// Create router
	h := handler.New(eng, gateway, cfg, logger)
	router := api.NewRouter(h, cfg)

	// Create HTTP server
	addr := fmt.Sprintf("%s:%d", cfg.APIHost, cfg.APIPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in background
	go func() {
		logger.Info("Starting gardenbell relay",
			"addr", addr,
			"environment", cfg.Environment,
			"poll_interval", cfg.PollInterval)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt
	<-ctx.Done()
	logger.Info("Shutting down...")

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Shutdown error", "error", err)
	}
	logger.Info("Server stopped")
}
