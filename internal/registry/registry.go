// Package registry holds device registrations for the process lifetime.
//
// Registration is a wholesale upsert: each call replaces the stored record
// entirely, with defaults resolved at write time so readers never re-derive
// them. Devices are never deleted; the registry only empties on restart,
// which is an accepted limitation of the single-instance design.
package registry

import (
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/mossvale/gardenbell/internal/catalog"
)

// --------------------------------------------------------------------------
// Registration model
// --------------------------------------------------------------------------

// WeatherMode selects which weather transitions a device hears about.
type WeatherMode string

const (
	WeatherModeAll           WeatherMode = "all"
	WeatherModeFavoritesOnly WeatherMode = "favoritesOnly"
)

// NotificationSettings controls item restock alerts for a device.
type NotificationSettings struct {
	Enabled        bool                        `json:"enabled"`
	SoundEnabled   bool                        `json:"soundEnabled"`
	CategorySounds map[catalog.Category]string `json:"categorySounds,omitempty"`
}

// WeatherSettings controls weather transition alerts for a device.
type WeatherSettings struct {
	Enabled bool        `json:"enabled"`
	Mode    WeatherMode `json:"mode" validate:"omitempty,oneof=all favoritesOnly"`
}

// EventSettings controls timed-event alerts for a device.
type EventSettings struct {
	Enabled     bool   `json:"enabled"`
	LeadMinutes int    `json:"leadMinutes" validate:"oneof=0 1 2 5 10 15"`
	Sound       string `json:"sound,omitempty"`
}

// Registration is everything the relay knows about one device.
type Registration struct {
	FavoriteItems   map[string]struct{}
	FavoriteWeather map[string]struct{}
	Notifications   NotificationSettings
	Weather         WeatherSettings
	Events          EventSettings
}

// --------------------------------------------------------------------------
// Store
// --------------------------------------------------------------------------

// Store is the in-memory device registry. The HTTP layer writes, the
// engine reads.
type Store struct {
	mu      sync.RWMutex
	devices map[string]Registration
}

// New returns an empty registry.
func New() *Store {
	return &Store{devices: make(map[string]Registration)}
}

// Upsert stores a registration for token, replacing any existing record.
// Defaults are resolved here, once: an unset weather mode becomes "all"
// and nil favorite sets become empty.
func (s *Store) Upsert(token string, reg Registration) {
	if reg.Weather.Mode == "" {
		reg.Weather.Mode = WeatherModeAll
	}
	if reg.FavoriteItems == nil {
		reg.FavoriteItems = map[string]struct{}{}
	}
	if reg.FavoriteWeather == nil {
		reg.FavoriteWeather = map[string]struct{}{}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.devices[token] = reg
}

// Get returns the registration for token.
func (s *Store) Get(token string) (Registration, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	reg, ok := s.devices[token]
	return reg, ok
}

// Tokens returns all registered device tokens. Order is unspecified.
func (s *Store) Tokens() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.devices))
	for t := range s.devices {
		out = append(out, t)
	}
	return out
}

// Len returns the number of registered devices.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.devices)
}

// --------------------------------------------------------------------------
// Token redaction + validation
// --------------------------------------------------------------------------

// RedactToken shortens a device token for logging. Tokens are unguessable
// credentials and must never appear in full in logs.
func RedactToken(token string) string {
	if len(token) <= 8 {
		return "****"
	}
	return token[:8] + "..."
}

var validate = validator.New()

// ValidateRegistration checks the settings constraints (weather mode enum,
// lead-minute tiers) on a registration before it is stored.
func ValidateRegistration(reg Registration) error {
	if err := validate.Struct(reg.Weather); err != nil {
		return err
	}
	return validate.Struct(reg.Events)
}
