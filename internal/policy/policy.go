// Package policy decides who gets notified about what. It consumes the
// detector's deltas and the device registry and yields concrete
// (device, intent) pairs; it performs no I/O and no deduplication, which
// keeps the whole decision surface testable without a push gateway.
package policy

import (
	"sort"

	"github.com/mossvale/gardenbell/internal/catalog"
	"github.com/mossvale/gardenbell/internal/dedupe"
	"github.com/mossvale/gardenbell/internal/detect"
	"github.com/mossvale/gardenbell/internal/registry"
)

// IndividualAlertTier is the rarity that earns one intent per item
// instead of being grouped into a per-category intent.
const IndividualAlertTier = catalog.RarityPrismatic

// MinNotifyRarity gates item eligibility: only tiers strictly above this
// ever notify. Common staples are always in stock and never alert.
const MinNotifyRarity = catalog.RarityCommon

// --------------------------------------------------------------------------
// Intents
// --------------------------------------------------------------------------

// Kind distinguishes what an intent is about.
type Kind string

const (
	KindItems   Kind = "items"
	KindWeather Kind = "weather"
	KindEvent   Kind = "event"
)

// Intent is an approved, not-yet-composed decision to notify one device
// about one change. Signature is the canonical dedup key for its content.
type Intent struct {
	Token     string
	Kind      Kind
	Signature string

	// KindItems
	Category catalog.Category
	Items    []detect.ItemDelta

	// KindWeather
	Weather *detect.WeatherDelta

	// KindEvent
	Event *detect.EventLead

	// Sound resolution inputs carried for the composer.
	Settings registry.Registration
}

// --------------------------------------------------------------------------
// Planning
// --------------------------------------------------------------------------

// Plan applies per-device preferences to the cycle's deltas.
//
// Item deltas: rarity gate first, then intersection with the device's
// favorites; IndividualAlertTier items get one intent each, the rest are
// grouped per category. Weather deltas: all of them in mode "all", the
// favorite-weather intersection in "favoritesOnly". Event leads: only
// devices whose configured lead exactly matches the computed one, which
// makes each device single-fire per occurrence.
func Plan(
	items []detect.ItemDelta,
	weather []detect.WeatherDelta,
	event *detect.EventLead,
	reg *registry.Store,
) []Intent {
	eligible := make([]detect.ItemDelta, 0, len(items))
	for _, d := range items {
		if d.Rarity > MinNotifyRarity {
			eligible = append(eligible, d)
		}
	}

	var intents []Intent
	tokens := reg.Tokens()
	sort.Strings(tokens) // deterministic plan order

	for _, token := range tokens {
		r, ok := reg.Get(token)
		if !ok {
			continue
		}
		intents = append(intents, planItems(token, r, eligible)...)
		intents = append(intents, planWeather(token, r, weather)...)
		if event != nil {
			intents = append(intents, planEvent(token, r, *event)...)
		}
	}
	return intents
}

func planItems(token string, r registry.Registration, eligible []detect.ItemDelta) []Intent {
	if !r.Notifications.Enabled || len(r.FavoriteItems) == 0 {
		return nil
	}

	grouped := make(map[catalog.Category][]detect.ItemDelta)
	var intents []Intent

	for _, d := range eligible {
		if _, fav := r.FavoriteItems[d.Key]; !fav {
			continue
		}
		if d.Rarity == IndividualAlertTier {
			intents = append(intents, Intent{
				Token:     token,
				Kind:      KindItems,
				Category:  d.Category,
				Items:     []detect.ItemDelta{d},
				Signature: dedupe.ItemSignature(string(d.Category), []string{d.Key}),
				Settings:  r,
			})
			continue
		}
		grouped[d.Category] = append(grouped[d.Category], d)
	}

	for _, cat := range catalog.Categories {
		batch := grouped[cat]
		if len(batch) == 0 {
			continue
		}
		keys := make([]string, len(batch))
		for i, d := range batch {
			keys[i] = d.Key
		}
		intents = append(intents, Intent{
			Token:     token,
			Kind:      KindItems,
			Category:  cat,
			Items:     batch,
			Signature: dedupe.ItemSignature(string(cat), keys),
			Settings:  r,
		})
	}
	return intents
}

func planWeather(token string, r registry.Registration, deltas []detect.WeatherDelta) []Intent {
	if !r.Weather.Enabled {
		return nil
	}
	var intents []Intent
	for i := range deltas {
		d := deltas[i]
		if r.Weather.Mode == registry.WeatherModeFavoritesOnly {
			if _, fav := r.FavoriteWeather[d.ID]; !fav {
				continue
			}
		}
		intents = append(intents, Intent{
			Token:     token,
			Kind:      KindWeather,
			Weather:   &d,
			Signature: dedupe.WeatherSignature(d.ID, d.Active),
			Settings:  r,
		})
	}
	return intents
}

func planEvent(token string, r registry.Registration, lead detect.EventLead) []Intent {
	if !r.Events.Enabled || r.Events.LeadMinutes != lead.LeadMinutes {
		return nil
	}
	return []Intent{{
		Token:     token,
		Kind:      KindEvent,
		Event:     &lead,
		Signature: dedupe.EventSignature(lead.Name, lead.Occurrence),
		Settings:  r,
	}}
}
