// Package detect turns two successive snapshots into per-entity deltas.
//
// Detection is deliberately permissive for items: the upstream restock
// cadence is shorter than a buy-then-restock round trip, so an item that
// sells out and restocks at the same quantity inside one poll interval
// must still produce a delta. Eligibility filtering is the policy
// engine's job, not this package's.
package detect

import (
	"sort"
	"time"

	"github.com/mossvale/gardenbell/internal/catalog"
)

// --------------------------------------------------------------------------
// Item deltas
// --------------------------------------------------------------------------

// ItemDelta is one catalog change worth considering for notification.
type ItemDelta struct {
	Key         string
	DisplayName string
	PreviousQty int
	CurrentQty  int
	Category    catalog.Category
	Rarity      catalog.Rarity
}

// Restock emits a delta for every item in cur with stock, regardless of
// whether the quantity differs from prev. Output is sorted by key so a
// reordered upstream response produces identical plans and signatures.
func Restock(prev, cur catalog.Snapshot) []ItemDelta {
	var deltas []ItemDelta
	for key, item := range cur {
		if item.Quantity <= 0 {
			continue
		}
		prevQty := 0
		if p, ok := prev[key]; ok {
			prevQty = p.Quantity
		}
		deltas = append(deltas, ItemDelta{
			Key:         key,
			DisplayName: item.DisplayName,
			PreviousQty: prevQty,
			CurrentQty:  item.Quantity,
			Category:    item.Category,
			Rarity:      item.Rarity,
		})
	}
	sort.Slice(deltas, func(i, j int) bool { return deltas[i].Key < deltas[j].Key })
	return deltas
}

// Availability is the on-demand variant of Restock: same in-stock
// predicate, no previous snapshot involved. Used by manual re-checks.
func Availability(cur catalog.Snapshot) []ItemDelta {
	return Restock(nil, cur)
}

// --------------------------------------------------------------------------
// Weather deltas
// --------------------------------------------------------------------------

// WeatherDelta is one weather transition between two snapshots.
type WeatherDelta struct {
	ID       string
	Name     string
	Active   bool // state after the transition
	Duration time.Duration
}

// WeatherChanges flags every weather id whose active flag differs between
// snapshots, plus ids active in prev but missing from cur (implicit
// "ended"). Started transitions come before ended ones so good news wins
// when a device receives both in one cycle.
func WeatherChanges(prev, cur catalog.WeatherSnapshot) []WeatherDelta {
	var started, ended []WeatherDelta

	for id, c := range cur {
		p, known := prev[id]
		if known && p.Active == c.Active {
			continue
		}
		if !known && !c.Active {
			continue // first sighting of an inactive condition is not a transition
		}
		d := WeatherDelta{ID: id, Name: c.Name, Active: c.Active, Duration: c.Duration}
		if c.Active {
			started = append(started, d)
		} else {
			ended = append(ended, d)
		}
	}

	// Active in prev, gone from cur: treat as ended.
	for id, p := range prev {
		if !p.Active {
			continue
		}
		if _, still := cur[id]; still {
			continue
		}
		ended = append(ended, WeatherDelta{ID: id, Name: p.Name, Active: false})
	}

	sort.Slice(started, func(i, j int) bool { return started[i].ID < started[j].ID })
	sort.Slice(ended, func(i, j int) bool { return ended[i].ID < ended[j].ID })
	return append(started, ended...)
}
