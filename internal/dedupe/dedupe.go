// Package dedupe suppresses repeat notifications per device inside a
// sliding window, keyed by a canonical signature of the notification's
// content. The structure is bounded per device: every write purges that
// device's entries older than twice the window, so no single device's key
// set grows without limit.
package dedupe

import (
	"sort"
	"strings"
	"sync"
	"time"
)

// DefaultWindow is the suppression window used when none is configured.
const DefaultWindow = 5 * time.Minute

// sigDelimiter joins the parts of a signature. Item keys never contain it
// (NormalizeKey lowercases and underscores them).
const sigDelimiter = "|"

type deviceEntries struct {
	mu   sync.Mutex
	seen map[string]time.Time // signature -> last sent
}

// Cache is the per-device sliding-window suppression cache.
// Locking is per device: concurrent dispatch to different devices never
// contends on a shared lock.
type Cache struct {
	window time.Duration

	mu      sync.Mutex // guards the devices map only
	devices map[string]*deviceEntries
}

// New creates a cache with the given suppression window.
// A non-positive window falls back to DefaultWindow.
func New(window time.Duration) *Cache {
	if window <= 0 {
		window = DefaultWindow
	}
	return &Cache{
		window:  window,
		devices: make(map[string]*deviceEntries),
	}
}

// Window returns the configured suppression window.
func (c *Cache) Window() time.Duration { return c.window }

func (c *Cache) device(token string) *deviceEntries {
	c.mu.Lock()
	defer c.mu.Unlock()
	d, ok := c.devices[token]
	if !ok {
		d = &deviceEntries{seen: make(map[string]time.Time)}
		c.devices[token] = d
	}
	return d
}

// ShouldSend reports whether a notification with this signature may go to
// the device now. False iff the same signature was recorded for the
// device less than one window ago.
func (c *Cache) ShouldSend(token, signature string, now time.Time) bool {
	d := c.device(token)
	d.mu.Lock()
	defer d.mu.Unlock()
	sent, ok := d.seen[signature]
	if !ok {
		return true
	}
	return now.Sub(sent) >= c.window
}

// Record marks the signature as sent to the device at now, and purges the
// device's entries older than twice the window.
func (c *Cache) Record(token, signature string, now time.Time) {
	d := c.device(token)
	d.mu.Lock()
	defer d.mu.Unlock()
	d.seen[signature] = now

	horizon := now.Add(-2 * c.window)
	for sig, sent := range d.seen {
		if sent.Before(horizon) {
			delete(d.seen, sig)
		}
	}
}

// --------------------------------------------------------------------------
// Signatures
// --------------------------------------------------------------------------

// ItemSignature builds the canonical signature for an item notification:
// category prefix plus sorted item keys. Upstream response order never
// changes the result.
func ItemSignature(category string, itemKeys []string) string {
	keys := append([]string(nil), itemKeys...)
	sort.Strings(keys)
	return "items" + sigDelimiter + category + sigDelimiter + strings.Join(keys, sigDelimiter)
}

// WeatherSignature identifies one weather transition.
func WeatherSignature(weatherID string, active bool) string {
	state := "ended"
	if active {
		state = "started"
	}
	return "weather" + sigDelimiter + weatherID + sigDelimiter + state
}

// EventSignature identifies one event occurrence for a device. It carries
// the occurrence hour, not the lead tier, so a device whose lead setting
// changes mid-countdown still fires at most once per occurrence.
func EventSignature(name string, occurrence time.Time) string {
	return "event" + sigDelimiter + name + sigDelimiter + occurrence.UTC().Format("2006-01-02T15")
}
