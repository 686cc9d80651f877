// Package handler implements the HTTP surface around the relay engine.
// Everything here is thin plumbing: parse, delegate, respond.
package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/mossvale/gardenbell/internal/api/respond"
	"github.com/mossvale/gardenbell/internal/config"
	"github.com/mossvale/gardenbell/internal/dispatch"
	"github.com/mossvale/gardenbell/internal/engine"
)

// Handler carries dependencies for all API handlers.
type Handler struct {
	engine  *engine.Engine
	gateway dispatch.Gateway
	cfg     *config.Config
	logger  *slog.Logger
	started time.Time
}

// New creates the handler set.
func New(eng *engine.Engine, gateway dispatch.Gateway, cfg *config.Config, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		engine:  eng,
		gateway: gateway,
		cfg:     cfg,
		logger:  logger,
		started: time.Now(),
	}
}

// Root serves the API index.
func (h *Handler) Root(w http.ResponseWriter, r *http.Request) {
	respond.WriteJSON(w, http.StatusOK, map[string]any{
		"service":     "gardenbell",
		"description": "Shop restock, weather, and event notification relay",
		"environment": h.cfg.Environment,
	})
}

// HealthCheck reports process liveness and basic engine state.
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	snap, fetchedAt := h.engine.Store().Catalog()
	respond.WriteJSON(w, http.StatusOK, map[string]any{
		"status":          "ok",
		"uptime_seconds":  int(time.Since(h.started).Seconds()),
		"devices":         h.engine.Registry().Len(),
		"catalog_items":   len(snap),
		"catalog_fetched": fetchedAt,
	})
}
