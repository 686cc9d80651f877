// Package snapshot owns the previous/current pairs of catalog and weather
// state that the change detector diffs each poll cycle.
//
// Swap discipline: current is replaced wholesale, the old current becomes
// previous, and neither is ever mutated in place. On a failed catalog
// fetch the store keeps the last-known-good current rather than advancing
// to an empty or partial one.
package snapshot

import (
	"sync"
	"time"

	"github.com/mossvale/gardenbell/internal/catalog"
)

// Store holds the engine's snapshot state. Safe for concurrent use; the
// engine is the only writer but HTTP handlers read it for stock views.
type Store struct {
	mu sync.RWMutex

	prevCatalog catalog.Snapshot
	curCatalog  catalog.Snapshot

	prevWeather catalog.WeatherSnapshot
	curWeather  catalog.WeatherSnapshot

	event     *catalog.Event
	eventAt   time.Time
	catalogAt time.Time
}

// New returns an empty store. Both catalog generations start empty so the
// first poll cycle diffs against nothing and seeds state.
func New() *Store {
	return &Store{
		prevCatalog: catalog.Snapshot{},
		curCatalog:  catalog.Snapshot{},
		prevWeather: catalog.WeatherSnapshot{},
		curWeather:  catalog.WeatherSnapshot{},
	}
}

// SwapCatalog installs a new current catalog snapshot, rotating the old
// current into previous. Returns the pair the detector should diff.
func (s *Store) SwapCatalog(next catalog.Snapshot, now time.Time) (prev, cur catalog.Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prevCatalog = s.curCatalog
	s.curCatalog = next.Clone()
	s.catalogAt = now
	return s.prevCatalog, s.curCatalog
}

// SwapWeather installs a new current weather snapshot, same rotation as
// SwapCatalog. A nil next (failed fetch) degrades to an empty snapshot.
func (s *Store) SwapWeather(next catalog.WeatherSnapshot) (prev, cur catalog.WeatherSnapshot) {
	if next == nil {
		next = catalog.WeatherSnapshot{}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prevWeather = s.curWeather
	s.curWeather = next.Clone()
	return s.prevWeather, s.curWeather
}

// Catalog returns the current catalog snapshot and when it was installed.
func (s *Store) Catalog() (catalog.Snapshot, time.Time) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.curCatalog, s.catalogAt
}

// Weather returns the current weather snapshot.
func (s *Store) Weather() catalog.WeatherSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.curWeather
}

// SetEvent records the active timed event, replacing any prior one.
// A nil event clears the slot (no event this hour).
func (s *Store) SetEvent(e *catalog.Event, now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.event = e
	s.eventAt = now
}

// Event returns the active timed event, or nil when none is known.
func (s *Store) Event() *catalog.Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.event
}
