package models

import "time"

// TimeSlot is a vendor-published window on a calendar date.
type TimeSlot struct {
	ID        string    `bson:"id" json:"id"`
	StartTime time.Time `bson:"startTime" json:"startTime"`
	EndTime   time.Time `bson:"endTime" json:"endTime"`
	IsBooked  bool      `bson:"isBooked" json:"isBooked"`
	BookedBy  string    `bson:"bookedBy,omitempty" json:"bookedBy,omitempty"`
}

// ServiceSlot is an on-demand window created at booking time from a start and a service duration.
type ServiceSlot struct {
	ID        string    `bson:"id" json:"id"`
	Duration  int       `bson:"duration" json:"duration"` // minutes
	StartTime time.Time `bson:"startTime" json:"startTime"`
	EndTime   time.Time `bson:"endTime" json:"endTime"`
	IsBooked  bool      `bson:"isBooked" json:"isBooked"`
	BookedBy  string    `bson:"bookedBy,omitempty" json:"bookedBy,omitempty"`
}

// AvailableDate groups the normal slots of one calendar day. Date is always UTC midnight.
type AvailableDate struct {
	Date      time.Time  `bson:"date" json:"date"`
	TimeSlots []TimeSlot `bson:"timeSlots" json:"timeSlots"`
}

type SpecialServiceAvailability struct {
	IsAvailable  bool          `bson:"isAvailable" json:"isAvailable"`
	ServiceSlots []ServiceSlot `bson:"serviceSlots" json:"serviceSlots"`
}

// Schedule is the single availability document of a vendor.
type Schedule struct {
	ID                         string                     `bson:"id" json:"id"`
	Vendor                     string                     `bson:"vendor" json:"vendor"`
	AvailableDates             []AvailableDate            `bson:"availableDates" json:"availableDates"`
	SpecialServiceAvailability SpecialServiceAvailability `bson:"specialServiceAvailability" json:"specialServiceAvailability"`
	Version                    int                        `bson:"version" json:"version"`
	CreatedAt                  time.Time                  `bson:"createdAt" json:"createdAt"`
	UpdatedAt                  time.Time                  `bson:"updatedAt" json:"updatedAt"`
}

// DateSlots returns the slots published for the given day, or nil when the day is absent.
func (s *Schedule) DateSlots(day time.Time) ([]TimeSlot, bool) {
	for _, d := range s.AvailableDates {
		if d.Date.Equal(day) {
			return d.TimeSlots, true
		}
	}
	return nil, false
}

// Schedule view types accepted by the filter endpoint.
const (
	ScheduleViewNormal  = "normal"
	ScheduleViewSpecial = "special"
)

// ScheduleView is the filtered projection returned by the schedule filter endpoint.
// NormalSlots holds the free slots of the requested day; SpecialSlots holds the occupied
// special intervals a new special request must avoid.
type ScheduleView struct {
	ScheduleID     string        `json:"scheduleId"`
	Vendor         string        `json:"vendor"`
	NormalSlots    []TimeSlot    `json:"normalSlots"`
	SpecialSlots   []ServiceSlot `json:"specialSlots"`
	SpecialEnabled bool          `json:"specialEnabled"`
}
