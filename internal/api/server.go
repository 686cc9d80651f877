// Package api assembles the relay's HTTP surface: device registration,
// read-only state views, countdown math, and debug endpoints. All real
// decisions live in the engine; this layer parses and responds.
package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	corslib "github.com/rs/cors"

	"github.com/mossvale/gardenbell/internal/api/handler"
	"github.com/mossvale/gardenbell/internal/config"
)

// NewRouter creates and configures the Chi router with all middleware and routes.
func NewRouter(h *handler.Handler, cfg *config.Config) *chi.Mux {
	r := chi.NewRouter()

	// --- Middleware stack ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(TimingMiddleware)
	r.Use(middleware.Compress(5)) // gzip

	// CORS
	c := corslib.New(corslib.Options{
		AllowedOrigins:   cfg.CORSAllowOrigins,
		AllowedMethods:   []string{"GET", "HEAD", "PUT", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Accept-Encoding", "Content-Type"},
		ExposedHeaders:   []string{"X-Process-Time"},
		AllowCredentials: false,
	})
	r.Use(c.Handler)

	// Rate limiting
	if cfg.RateLimitEnabled {
		r.Use(RateLimitMiddleware(cfg.RateLimitRequests, cfg.RateLimitWindow))
	}

	// --- Routes ---

	// Root + health + metrics
	r.Get("/", h.Root)
	r.Get("/health", h.HealthCheck)
	r.Handle("/metrics", promhttp.Handler())

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		// Device registration
		r.Put("/devices/{token}", h.RegisterDevice)
		r.Get("/devices/{token}", h.GetDevice)

		// Game state views
		r.Get("/stock", h.GetStock)
		r.Get("/weather", h.GetWeather)
		r.Get("/countdown", h.GetCountdown)

		// Debug
		r.Post("/devices/{token}/test", h.TestNotification)
		r.Post("/debug/recheck", h.RecheckAvailability)
	})

	return r
}
