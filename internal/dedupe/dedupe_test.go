package dedupe_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/mossvale/gardenbell/internal/dedupe"
)

var base = time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)

func TestShouldSend_Window(t *testing.T) {
	c := dedupe.New(5 * time.Minute)
	const token = "device-a"
	sig := dedupe.ItemSignature("seeds", []string{"tomato"})

	assert.True(t, c.ShouldSend(token, sig, base))
	c.Record(token, sig, base)

	// Inside the window: suppressed.
	assert.False(t, c.ShouldSend(token, sig, base.Add(4*time.Minute+59*time.Second)))
	// At the window boundary and beyond: allowed again.
	assert.True(t, c.ShouldSend(token, sig, base.Add(5*time.Minute)))
	assert.True(t, c.ShouldSend(token, sig, base.Add(10*time.Minute)))
}

func TestShouldSend_PerDeviceIsolation(t *testing.T) {
	c := dedupe.New(5 * time.Minute)
	sig := dedupe.ItemSignature("seeds", []string{"tomato"})

	c.Record("device-a", sig, base)
	assert.False(t, c.ShouldSend("device-a", sig, base.Add(time.Minute)))
	assert.True(t, c.ShouldSend("device-b", sig, base.Add(time.Minute)))
}

func TestRecord_PurgesOldEntries(t *testing.T) {
	c := dedupe.New(5 * time.Minute)
	const token = "device-a"
	old := dedupe.ItemSignature("seeds", []string{"carrot"})
	fresh := dedupe.ItemSignature("seeds", []string{"tomato"})

	c.Record(token, old, base)
	// A write more than 2x window later garbage-collects the old entry,
	// so it behaves as never-seen afterwards.
	c.Record(token, fresh, base.Add(11*time.Minute))
	assert.True(t, c.ShouldSend(token, old, base.Add(11*time.Minute)))
	assert.False(t, c.ShouldSend(token, fresh, base.Add(12*time.Minute)))
}

func TestItemSignature_Canonical(t *testing.T) {
	a := dedupe.ItemSignature("seeds", []string{"tomato", "corn", "apple"})
	b := dedupe.ItemSignature("seeds", []string{"apple", "tomato", "corn"})
	assert.Equal(t, a, b)

	// Category is part of the identity.
	assert.NotEqual(t, a, dedupe.ItemSignature("gear", []string{"tomato", "corn", "apple"}))
}

func TestWeatherSignature_TransitionIdentity(t *testing.T) {
	assert.NotEqual(t,
		dedupe.WeatherSignature("rain", true),
		dedupe.WeatherSignature("rain", false))
}

func TestEventSignature_OccurrenceIdentity(t *testing.T) {
	occ := time.Date(2026, 8, 31, 14, 0, 0, 0, time.UTC)

	// Same occurrence always yields the same signature regardless of lead.
	assert.Equal(t,
		dedupe.EventSignature("Harvest Rush", occ),
		dedupe.EventSignature("Harvest Rush", occ))

	// Different hours are different occurrences.
	assert.NotEqual(t,
		dedupe.EventSignature("Harvest Rush", occ),
		dedupe.EventSignature("Harvest Rush", occ.Add(time.Hour)))
}

func TestNew_DefaultWindow(t *testing.T) {
	c := dedupe.New(0)
	assert.Equal(t, dedupe.DefaultWindow, c.Window())
}
