// Package dispatch turns approved notification intents into gateway-ready
// payloads and delivers them. By the time an intent reaches this package
// every eligibility and suppression decision has already been made.
package dispatch

import (
	"context"
	"fmt"
	"strings"

	"github.com/mossvale/gardenbell/internal/assets"
	"github.com/mossvale/gardenbell/internal/catalog"
	"github.com/mossvale/gardenbell/internal/policy"
)

// DefaultSound is used when a device has sound on but no per-category
// preference recorded.
const DefaultSound = "default"

var categoryEmoji = map[catalog.Category]string{
	catalog.CategorySeeds:    "\U0001F331", // seedling
	catalog.CategoryGear:     "\U0001F6E0", // hammer and wrench
	catalog.CategoryEggs:     "\U0001F95A", // egg
	catalog.CategoryCosmetic: "\U0001F3A8", // palette
}

var categoryLabel = map[catalog.Category]string{
	catalog.CategorySeeds:    "seed",
	catalog.CategoryGear:     "gear item",
	catalog.CategoryEggs:     "egg",
	catalog.CategoryCosmetic: "cosmetic",
}

// Payload is the gateway-ready notification.
type Payload struct {
	Title    string            `json:"title"`
	Body     string            `json:"body"`
	Sound    string            `json:"sound,omitempty"` // empty means silent
	Badge    int               `json:"badge"`
	ThreadID string            `json:"thread_id"`
	ImageURL string            `json:"image_url,omitempty"`
	Data     map[string]string `json:"data,omitempty"`
}

// Composer builds payloads from intents.
type Composer struct {
	icons *assets.Cache // nil disables rich attachments
}

// NewComposer creates a composer. icons may be nil.
func NewComposer(icons *assets.Cache) *Composer {
	return &Composer{icons: icons}
}

// Compose builds the payload for one intent. An error aborts only this
// intent; the caller continues with the rest of the batch.
func (c *Composer) Compose(ctx context.Context, in policy.Intent) (Payload, error) {
	switch in.Kind {
	case policy.KindItems:
		return c.composeItems(ctx, in)
	case policy.KindWeather:
		return composeWeather(in)
	case policy.KindEvent:
		return composeEvent(in)
	}
	return Payload{}, fmt.Errorf("unknown intent kind %q", in.Kind)
}

func (c *Composer) composeItems(ctx context.Context, in policy.Intent) (Payload, error) {
	if len(in.Items) == 0 {
		return Payload{}, fmt.Errorf("items intent with no items")
	}

	emoji := categoryEmoji[in.Category]
	p := Payload{
		Badge:    len(in.Items),
		ThreadID: "items-" + string(in.Category),
		Sound:    itemSound(in),
		Data: map[string]string{
			"kind":     string(policy.KindItems),
			"category": string(in.Category),
			"items":    joinKeys(in),
		},
	}

	if len(in.Items) == 1 {
		item := in.Items[0]
		p.Title = fmt.Sprintf("%s %s in stock!", emoji, item.DisplayName)
		p.Body = fmt.Sprintf("%s x%d just restocked.", item.DisplayName, item.CurrentQty)
		if item.Rarity == policy.IndividualAlertTier {
			p.Title = fmt.Sprintf("%s %s: %s in stock!", emoji, item.Rarity, item.DisplayName)
		}
		if c.icons != nil {
			if url, ok := c.icons.IconURL(ctx, item.Key); ok {
				p.ImageURL = url
			}
		}
		return p, nil
	}

	parts := make([]string, len(in.Items))
	for i, item := range in.Items {
		parts[i] = fmt.Sprintf("%s x%d", item.DisplayName, item.CurrentQty)
	}
	p.Title = fmt.Sprintf("%s %d %ss restocked!", emoji, len(in.Items), categoryLabel[in.Category])
	p.Body = strings.Join(parts, ", ")
	return p, nil
}

func composeWeather(in policy.Intent) (Payload, error) {
	if in.Weather == nil {
		return Payload{}, fmt.Errorf("weather intent with no delta")
	}
	d := in.Weather
	p := Payload{
		Badge:    1,
		ThreadID: "weather",
		Sound:    weatherSound(in),
		Data: map[string]string{
			"kind":    string(policy.KindWeather),
			"weather": d.ID,
		},
	}
	if d.Active {
		p.Title = fmt.Sprintf("⛈ %s has started!", d.Name)
		if d.Duration > 0 {
			p.Body = fmt.Sprintf("%s is active for about %d minutes.", d.Name, int(d.Duration.Minutes()))
		} else {
			p.Body = fmt.Sprintf("%s is active now.", d.Name)
		}
	} else {
		p.Title = fmt.Sprintf("%s has ended", d.Name)
		p.Body = fmt.Sprintf("%s is no longer active.", d.Name)
	}
	return p, nil
}

func composeEvent(in policy.Intent) (Payload, error) {
	if in.Event == nil {
		return Payload{}, fmt.Errorf("event intent with no lead")
	}
	e := in.Event
	p := Payload{
		Badge:    1,
		ThreadID: "event",
		Sound:    eventSound(in),
		Data: map[string]string{
			"kind":  string(policy.KindEvent),
			"event": e.Name,
		},
	}
	switch e.LeadMinutes {
	case 0:
		p.Title = fmt.Sprintf("⏰ %s is starting!", e.Name)
		p.Body = fmt.Sprintf("%s is live right now.", e.Name)
	case 1:
		p.Title = fmt.Sprintf("⏰ %s in 1 minute", e.Name)
		p.Body = fmt.Sprintf("%s starts in 1 minute.", e.Name)
	default:
		p.Title = fmt.Sprintf("⏰ %s in %d minutes", e.Name, e.LeadMinutes)
		p.Body = fmt.Sprintf("%s starts in %d minutes.", e.Name, e.LeadMinutes)
	}
	return p, nil
}

// --------------------------------------------------------------------------
// Sound selection
// --------------------------------------------------------------------------

func itemSound(in policy.Intent) string {
	if !in.Settings.Notifications.SoundEnabled {
		return ""
	}
	if s, ok := in.Settings.Notifications.CategorySounds[in.Category]; ok && s != "" {
		return s
	}
	return DefaultSound
}

func weatherSound(in policy.Intent) string {
	if !in.Settings.Notifications.SoundEnabled {
		return ""
	}
	return DefaultSound
}

func eventSound(in policy.Intent) string {
	if !in.Settings.Notifications.SoundEnabled {
		return ""
	}
	if in.Settings.Events.Sound != "" {
		return in.Settings.Events.Sound
	}
	return DefaultSound
}

func joinKeys(in policy.Intent) string {
	keys := make([]string, len(in.Items))
	for i, item := range in.Items {
		keys[i] = item.Key
	}
	return strings.Join(keys, ",")
}
