package handler

import (
	"net/http"
	"sort"
	"time"

	"github.com/mossvale/gardenbell/internal/api/respond"
	"github.com/mossvale/gardenbell/internal/catalog"
)

// restockPeriods is the upstream shop restock cadence per category,
// used only for the countdown endpoints.
var restockPeriods = map[catalog.Category]time.Duration{
	catalog.CategorySeeds:    5 * time.Minute,
	catalog.CategoryGear:     5 * time.Minute,
	catalog.CategoryEggs:     30 * time.Minute,
	catalog.CategoryCosmetic: 4 * time.Hour,
}

type stockEntry struct {
	Key         string `json:"key"`
	DisplayName string `json:"displayName"`
	Category    string `json:"category"`
	Quantity    int    `json:"quantity"`
	Rarity      string `json:"rarity"`
}

// GetStock returns the current catalog snapshot.
func (h *Handler) GetStock(w http.ResponseWriter, r *http.Request) {
	snap, fetchedAt := h.engine.Store().Catalog()

	entries := make([]stockEntry, 0, len(snap))
	for _, item := range snap {
		entries = append(entries, stockEntry{
			Key:         item.Key,
			DisplayName: item.DisplayName,
			Category:    string(item.Category),
			Quantity:    item.Quantity,
			Rarity:      item.Rarity.String(),
		})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Key < entries[j].Key })

	respond.WriteJSON(w, http.StatusOK, map[string]any{
		"items":      entries,
		"fetched_at": fetchedAt,
	})
}

// GetWeather returns the current weather snapshot.
func (h *Handler) GetWeather(w http.ResponseWriter, r *http.Request) {
	weather := h.engine.Store().Weather()

	type weatherEntry struct {
		ID              string `json:"id"`
		Name            string `json:"name"`
		Active          bool   `json:"active"`
		DurationSeconds int    `json:"duration_seconds"`
	}
	entries := make([]weatherEntry, 0, len(weather))
	for id, c := range weather {
		entries = append(entries, weatherEntry{
			ID:              id,
			Name:            c.Name,
			Active:          c.Active,
			DurationSeconds: int(c.Duration.Seconds()),
		})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].ID < entries[j].ID })

	respond.WriteJSON(w, http.StatusOK, map[string]any{"weather": entries})
}

// GetCountdown returns seconds until the next restock per category, plus
// the next timed-event trigger when one is active. Pure clock math; the
// client uses it to render countdown timers.
func (h *Handler) GetCountdown(w http.ResponseWriter, r *http.Request) {
	now := time.Now()

	countdowns := make(map[string]int, len(restockPeriods))
	for cat, period := range restockPeriods {
		elapsed := time.Duration(now.UnixNano()) % period
		countdowns[string(cat)] = int((period - elapsed).Seconds())
	}

	resp := map[string]any{"restock_seconds": countdowns}
	if ev := h.engine.Store().Event(); ev != nil {
		resp["event"] = map[string]any{
			"name":           ev.Name,
			"trigger_minute": ev.TriggerMinute,
			"seconds_until":  secondsUntilMinute(now, ev.TriggerMinute),
		}
	}
	respond.WriteJSON(w, http.StatusOK, resp)
}

// secondsUntilMinute computes seconds from now until the next occurrence
// of the given minute-of-hour.
func secondsUntilMinute(now time.Time, minute int) int {
	next := time.Date(now.Year(), now.Month(), now.Day(), now.Hour(), minute, 0, 0, now.Location())
	if !next.After(now) {
		next = next.Add(time.Hour)
	}
	return int(next.Sub(now).Seconds())
}
