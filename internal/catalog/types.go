// Package catalog defines the in-memory game-state model shared by the
// whole relay: shop items, weather conditions, timed events, and the
// rarity classification used to decide notification eligibility.
package catalog

import "time"

// --------------------------------------------------------------------------
// Categories
// --------------------------------------------------------------------------

// Category is the shop section an item belongs to.
type Category string

const (
	CategorySeeds    Category = "seeds"
	CategoryGear     Category = "gear"
	CategoryEggs     Category = "eggs"
	CategoryCosmetic Category = "cosmetic"
)

// Categories lists all known categories in display order.
var Categories = []Category{CategorySeeds, CategoryGear, CategoryEggs, CategoryCosmetic}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	switch c {
	case CategorySeeds, CategoryGear, CategoryEggs, CategoryCosmetic:
		return true
	}
	return false
}

// --------------------------------------------------------------------------
// Items and snapshots
// --------------------------------------------------------------------------

// Item is one shop entry in a catalog snapshot.
type Item struct {
	Key         string   // canonical lookup key, e.g. "tomato"
	DisplayName string   // human-readable name for notification copy
	ItemID      string   // upstream identifier, empty when not provided
	Category    Category
	Quantity    int    // current stock, never negative
	Rarity      Rarity // resolved tier, RarityUnknown until resolved
}

// Snapshot is an immutable-once-built view of the shop catalog.
// Builders populate the map and then stop writing; readers never mutate.
type Snapshot map[string]Item

// Clone returns a shallow copy safe to hand to a new owner.
func (s Snapshot) Clone() Snapshot {
	out := make(Snapshot, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// --------------------------------------------------------------------------
// Weather
// --------------------------------------------------------------------------

// Condition is one weather state in a weather snapshot.
type Condition struct {
	Name     string
	Active   bool
	Duration time.Duration
}

// WeatherSnapshot maps weather id -> condition, same swap discipline as
// the item catalog.
type WeatherSnapshot map[string]Condition

// Clone returns a shallow copy safe to hand to a new owner.
func (w WeatherSnapshot) Clone() WeatherSnapshot {
	out := make(WeatherSnapshot, len(w))
	for k, v := range w {
		out[k] = v
	}
	return out
}

// --------------------------------------------------------------------------
// Timed events
// --------------------------------------------------------------------------

// Event is the single active timed event, refreshed hourly.
// TriggerMinute is the corrected minute-of-hour (0-59) the event fires at.
type Event struct {
	Name          string
	TriggerMinute int
}
