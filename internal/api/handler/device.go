package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mossvale/gardenbell/internal/api/respond"
	"github.com/mossvale/gardenbell/internal/catalog"
	"github.com/mossvale/gardenbell/internal/dispatch"
	"github.com/mossvale/gardenbell/internal/metrics"
	"github.com/mossvale/gardenbell/internal/registry"
)

// registrationRequest is the wire shape for device registration.
type registrationRequest struct {
	FavoriteItems   []string                      `json:"favoriteItems"`
	FavoriteWeather []string                      `json:"favoriteWeather"`
	Notifications   registry.NotificationSettings `json:"notifications"`
	Weather         registry.WeatherSettings      `json:"weather"`
	Events          registry.EventSettings        `json:"events"`
}

// RegisterDevice stores a device registration, replacing any existing
// record for the token (idempotent upsert, not a merge).
func (h *Handler) RegisterDevice(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")
	if token == "" {
		respond.WriteError(w, http.StatusBadRequest, "missing_token", "device token is required")
		return
	}

	var req registrationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteError(w, http.StatusBadRequest, "invalid_body", "malformed registration payload")
		return
	}

	reg := registry.Registration{
		FavoriteItems:   toKeySet(req.FavoriteItems),
		FavoriteWeather: toSet(req.FavoriteWeather),
		Notifications:   req.Notifications,
		Weather:         req.Weather,
		Events:          req.Events,
	}
	if err := registry.ValidateRegistration(reg); err != nil {
		respond.WriteError(w, http.StatusUnprocessableEntity, "invalid_settings", err.Error())
		return
	}

	h.engine.Registry().Upsert(token, reg)
	metrics.RegisteredDevices.Set(float64(h.engine.Registry().Len()))
	h.logger.Info("Device registered",
		"device", registry.RedactToken(token),
		"favorites", len(reg.FavoriteItems))

	respond.WriteJSON(w, http.StatusOK, map[string]any{"registered": true})
}

// GetDevice returns the stored registration for a token.
func (h *Handler) GetDevice(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")
	reg, ok := h.engine.Registry().Get(token)
	if !ok {
		respond.WriteError(w, http.StatusNotFound, "not_registered", "unknown device token")
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]any{
		"favoriteItems":   setToList(reg.FavoriteItems),
		"favoriteWeather": setToList(reg.FavoriteWeather),
		"notifications":   reg.Notifications,
		"weather":         reg.Weather,
		"events":          reg.Events,
	})
}

// TestNotification sends a canned push straight to one device, bypassing
// policy and dedup. Debug endpoint.
func (h *Handler) TestNotification(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")
	if _, ok := h.engine.Registry().Get(token); !ok {
		respond.WriteError(w, http.StatusNotFound, "not_registered", "unknown device token")
		return
	}

	payload := dispatchTestPayload()
	res, err := h.gateway.Send(r.Context(), payload, token)
	if err != nil {
		h.logger.Warn("test push failed",
			"device", registry.RedactToken(token), "error", err)
		respond.WriteError(w, http.StatusBadGateway, "gateway_error", "push gateway rejected the send")
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]any{
		"sent":   res.Sent,
		"failed": res.Failed,
	})
}

// RecheckAvailability runs the on-demand availability detection mode
// against the current snapshot. Debug endpoint.
func (h *Handler) RecheckAvailability(w http.ResponseWriter, r *http.Request) {
	res := h.engine.CheckAvailability(r.Context())
	respond.WriteJSON(w, http.StatusOK, map[string]any{
		"deltas":     res.ItemDeltas,
		"planned":    res.Planned,
		"suppressed": res.Suppressed,
		"sent":       res.Sent,
		"failed":     res.Failed,
	})
}

func dispatchTestPayload() dispatch.Payload {
	return dispatch.Payload{
		Title:    "Gardenbell test",
		Body:     "Push delivery is working.",
		Sound:    dispatch.DefaultSound,
		Badge:    1,
		ThreadID: "debug",
	}
}

// --------------------------------------------------------------------------
// Helpers
// --------------------------------------------------------------------------

func toKeySet(keys []string) map[string]struct{} {
	out := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		if n := catalog.NormalizeKey(k); n != "" {
			out[n] = struct{}{}
		}
	}
	return out
}

func toSet(vals []string) map[string]struct{} {
	out := make(map[string]struct{}, len(vals))
	for _, v := range vals {
		if v != "" {
			out[v] = struct{}{}
		}
	}
	return out
}

func setToList(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for v := range set {
		out = append(out, v)
	}
	return out
}
