package detect

import (
	"time"

	"github.com/mossvale/gardenbell/internal/catalog"
)

// LeadOffsets are the advance-warning tiers devices can subscribe to,
// in minutes before the event trigger. 0 means "at trigger time".
var LeadOffsets = []int{0, 1, 2, 5, 10, 15}

// inMinuteTolerance bounds how far into the matching minute a check may
// land and still fire. Poll jitter inside one minute must not double-fire.
const inMinuteTolerance = 30 * time.Second

// EventLead is a detected event timing match.
type EventLead struct {
	Name        string
	LeadMinutes int       // minutes before the trigger, one of LeadOffsets
	Occurrence  time.Time // top of the hour the occurrence belongs to
}

// NextEventLead reports whether now lands on the event's trigger minute
// or one of its fixed lead offsets, within the first inMinuteTolerance
// seconds of that minute. Strictly wall-clock based, never snapshot-diffed.
func NextEventLead(now time.Time, event *catalog.Event) (EventLead, bool) {
	if event == nil {
		return EventLead{}, false
	}
	if time.Duration(now.Second())*time.Second >= inMinuteTolerance {
		return EventLead{}, false
	}

	minute := now.Minute()
	for _, lead := range LeadOffsets {
		fireMinute := event.TriggerMinute - lead
		occurrence := now.Truncate(time.Hour)
		if fireMinute < 0 {
			// Lead spills into the previous hour; the occurrence it
			// announces is the next hour's trigger.
			fireMinute += 60
			occurrence = occurrence.Add(time.Hour)
		}
		if minute == fireMinute {
			return EventLead{
				Name:        event.Name,
				LeadMinutes: lead,
				Occurrence:  occurrence,
			}, true
		}
	}
	return EventLead{}, false
}
