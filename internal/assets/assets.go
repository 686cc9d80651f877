// Package assets resolves item icon URLs for rich notifications and
// remembers which ones are actually alive. Lookups are served from an
// expirable LRU so the composer never blocks a dispatch batch on repeat
// HEAD requests for the same icon.
package assets

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/mossvale/gardenbell/internal/catalog"
)

const (
	cacheSize    = 512
	cacheTTL     = 6 * time.Hour
	checkTimeout = 5 * time.Second
)

type entry struct {
	url   string
	alive bool
}

// Cache checks and caches icon URL liveness per item key.
type Cache struct {
	baseURL    string // e.g. https://assets.example.com/icons
	httpClient *http.Client
	lru        *expirable.LRU[string, entry]
	logger     *slog.Logger
}

// New creates an icon cache. baseURL may be empty, in which case every
// lookup misses and notifications stay text-only.
func New(baseURL string, logger *slog.Logger) *Cache {
	if logger == nil {
		logger = slog.Default()
	}
	return &Cache{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: checkTimeout},
		lru:        expirable.NewLRU[string, entry](cacheSize, nil, cacheTTL),
		logger:     logger,
	}
}

// IconURL returns a live icon URL for the item, or ok=false when none is
// configured or the URL fails its liveness check. Failures degrade the
// notification to text-only, never abort it.
func (c *Cache) IconURL(ctx context.Context, itemKey string) (string, bool) {
	if c.baseURL == "" {
		return "", false
	}
	key := catalog.NormalizeKey(itemKey)
	if e, ok := c.lru.Get(key); ok {
		return e.url, e.alive
	}

	url := fmt.Sprintf("%s/%s.png", c.baseURL, key)
	alive := c.checkLiveness(ctx, url)
	c.lru.Add(key, entry{url: url, alive: alive})
	if !alive {
		c.logger.Debug("icon not available", "item", key)
	}
	return url, alive
}

func (c *Cache) checkLiveness(ctx context.Context, url string) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		return false
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}
