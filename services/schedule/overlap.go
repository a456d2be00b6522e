package schedule

import (
	"time"

	"slotly/models"
)

// Interval is a half-open [Start, End) span of time.
type Interval struct {
	Start time.Time
	End   time.Time
}

func (i Interval) Valid() bool {
	return i.Start.Before(i.End)
}

// Overlaps reports whether [aStart, aEnd) and [bStart, bEnd) share an instant.
// Touching endpoints do not overlap.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}

func (i Interval) Overlaps(o Interval) bool {
	return Overlaps(i.Start, i.End, o.Start, o.End)
}

// AnyOverlap reports whether candidate intersects any of existing.
func AnyOverlap(candidate Interval, existing []Interval) bool {
	for _, e := range existing {
		if candidate.Overlaps(e) {
			return true
		}
	}
	return false
}

// bookedIntervals collects every committed interval of a schedule: booked normal
// slots on any day plus all special slots.
func bookedIntervals(s *models.Schedule) []Interval {
	var out []Interval
	for _, d := range s.AvailableDates {
		for _, ts := range d.TimeSlots {
			if ts.IsBooked {
				out = append(out, Interval{Start: ts.StartTime, End: ts.EndTime})
			}
		}
	}
	for _, ss := range s.SpecialServiceAvailability.ServiceSlots {
		out = append(out, Interval{Start: ss.StartTime, End: ss.EndTime})
	}
	return out
}
