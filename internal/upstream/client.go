// Package upstream is the HTTP client for the third-party game-state API.
// It normalizes the upstream JSON into catalog types and resolves item
// rarity on the way in, so the rest of the relay never sees wire shapes.
//
// Requests are rate limited with a token bucket; the API bans aggressive
// pollers.
package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/mossvale/gardenbell/internal/catalog"
)

// Client is the shared HTTP client for all game API endpoints.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	limiter    *rate.Limiter
	logger     *slog.Logger
}

// NewClient creates a rate-limited game API client.
func NewClient(baseURL, apiKey string, requestsPerMinute int, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	rps := float64(requestsPerMinute) / 60.0
	return &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    baseURL,
		apiKey:     apiKey,
		limiter:    rate.NewLimiter(rate.Limit(rps), 1),
		logger:     logger,
	}
}

// get performs a rate-limited GET and decodes the JSON body into out.
func (c *Client) get(ctx context.Context, path string, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("http request %s: %w", path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("game api %s returned %d", path, resp.StatusCode)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}

// --------------------------------------------------------------------------
// Wire shapes
// --------------------------------------------------------------------------

type stockItem struct {
	Name     string `json:"name"`
	ItemID   string `json:"item_id"`
	Quantity int    `json:"quantity"`
	Rarity   string `json:"rarity"`
}

type stockResponse struct {
	Seeds     []stockItem `json:"seeds"`
	Gear      []stockItem `json:"gear"`
	Eggs      []stockItem `json:"eggs"`
	Cosmetics []stockItem `json:"cosmetics"`
}

type weatherEntry struct {
	ID       string `json:"weather_id"`
	Name     string `json:"weather_name"`
	Active   bool   `json:"active"`
	Duration int    `json:"duration"` // seconds
}

type eventResponse struct {
	Current *struct {
		Name          string `json:"name"`
		TriggerMinute int    `json:"corrected_trigger_minute"`
	} `json:"current"`
}

// --------------------------------------------------------------------------
// Fetchers
// --------------------------------------------------------------------------

// FetchCatalog returns the full shop catalog as a normalized snapshot.
// On error the caller keeps its last-known-good snapshot.
func (c *Client) FetchCatalog(ctx context.Context) (catalog.Snapshot, error) {
	var resp stockResponse
	if err := c.get(ctx, "/api/stock", &resp); err != nil {
		return nil, fmt.Errorf("fetch catalog: %w", err)
	}

	snap := catalog.Snapshot{}
	add := func(items []stockItem, cat catalog.Category) {
		for _, it := range items {
			key := catalog.NormalizeKey(it.Name)
			if key == "" {
				continue
			}
			upstream := catalog.ParseRarity(it.Rarity)
			if !catalog.Classified(key, it.ItemID, upstream) {
				c.logger.Warn("unclassified item, defaulting rarity",
					"item", key, "item_id", it.ItemID, "default", catalog.DefaultRarity)
			}
			qty := it.Quantity
			if qty < 0 {
				qty = 0
			}
			snap[key] = catalog.Item{
				Key:         key,
				DisplayName: it.Name,
				ItemID:      it.ItemID,
				Category:    cat,
				Quantity:    qty,
				Rarity:      catalog.ResolveRarity(key, it.ItemID, upstream),
			}
		}
	}
	add(resp.Seeds, catalog.CategorySeeds)
	add(resp.Gear, catalog.CategoryGear)
	add(resp.Eggs, catalog.CategoryEggs)
	add(resp.Cosmetics, catalog.CategoryCosmetic)
	return snap, nil
}

// FetchWeather returns the current weather snapshot. Errors degrade to
// "no weather data this cycle" at the caller, not a crash.
func (c *Client) FetchWeather(ctx context.Context) (catalog.WeatherSnapshot, error) {
	var entries []weatherEntry
	if err := c.get(ctx, "/api/weather", &entries); err != nil {
		return nil, fmt.Errorf("fetch weather: %w", err)
	}

	snap := catalog.WeatherSnapshot{}
	for _, e := range entries {
		if e.ID == "" {
			continue
		}
		snap[e.ID] = catalog.Condition{
			Name:     e.Name,
			Active:   e.Active,
			Duration: time.Duration(e.Duration) * time.Second,
		}
	}
	return snap, nil
}

// FetchEvent returns the active timed event, or nil when none is running.
func (c *Client) FetchEvent(ctx context.Context) (*catalog.Event, error) {
	var resp eventResponse
	if err := c.get(ctx, "/api/event", &resp); err != nil {
		return nil, fmt.Errorf("fetch event: %w", err)
	}
	if resp.Current == nil || resp.Current.Name == "" {
		return nil, nil
	}
	minute := resp.Current.TriggerMinute
	if minute < 0 || minute > 59 {
		return nil, fmt.Errorf("event trigger minute %d out of range", minute)
	}
	return &catalog.Event{Name: resp.Current.Name, TriggerMinute: minute}, nil
}
