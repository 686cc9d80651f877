package detect_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mossvale/gardenbell/internal/catalog"
	"github.com/mossvale/gardenbell/internal/detect"
)

func at(minute, second int) time.Time {
	return time.Date(2026, 8, 31, 14, minute, second, 0, time.UTC)
}

func TestNextEventLead_Matches(t *testing.T) {
	event := &catalog.Event{Name: "Harvest Rush", TriggerMinute: 30}

	tests := []struct {
		name     string
		now      time.Time
		wantLead int
		wantOK   bool
	}{
		{"at trigger minute", at(30, 5), 0, true},
		{"one minute before", at(29, 0), 1, true},
		{"five minutes before", at(25, 12), 5, true},
		{"fifteen minutes before", at(15, 29), 15, true},
		{"non-matching minute", at(27, 0), 0, false},
		{"outside tolerance window", at(25, 30), 0, false},
		{"late in trigger minute", at(30, 45), 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lead, ok := detect.NextEventLead(tt.now, event)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.wantLead, lead.LeadMinutes)
				assert.Equal(t, "Harvest Rush", lead.Name)
			}
		})
	}
}

func TestNextEventLead_NilEvent(t *testing.T) {
	_, ok := detect.NextEventLead(at(30, 0), nil)
	assert.False(t, ok)
}

func TestNextEventLead_LeadWrapsIntoPreviousHour(t *testing.T) {
	// Trigger at :02, lead 5 fires at :57 and belongs to the next hour's
	// occurrence.
	event := &catalog.Event{Name: "Night Bloom", TriggerMinute: 2}

	lead, ok := detect.NextEventLead(at(57, 10), event)
	require.True(t, ok)
	assert.Equal(t, 5, lead.LeadMinutes)
	assert.Equal(t, 15, lead.Occurrence.Hour())

	lead, ok = detect.NextEventLead(at(2, 0), event)
	require.True(t, ok)
	assert.Equal(t, 0, lead.LeadMinutes)
	assert.Equal(t, 14, lead.Occurrence.Hour())
}

func TestNextEventLead_SameOccurrenceAcrossLeads(t *testing.T) {
	// Every lead for one trigger resolves to the same occurrence, which
	// is what makes the dedup signature single-fire per device.
	event := &catalog.Event{Name: "Harvest Rush", TriggerMinute: 30}

	l5, ok := detect.NextEventLead(at(25, 0), event)
	require.True(t, ok)
	l0, ok := detect.NextEventLead(at(30, 0), event)
	require.True(t, ok)
	assert.Equal(t, l5.Occurrence, l0.Occurrence)
}
