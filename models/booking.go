package models

import "time"

const (
	BookingStatusScheduled = "Scheduled"
	BookingStatusCompleted = "Completed"
	BookingStatusCancelled = "Cancelled"
)

const (
	PaymentCashOnDelivery = "Cash On Delivery"
	PaymentUPI            = "UPI"
	PaymentOther          = "Other"
)

const (
	PaymentStatusUnpaid   = "Unpaid"
	PaymentStatusPaid     = "Paid"
	PaymentStatusPending  = "Pending"
	PaymentStatusRefunded = "Refunded"
)

// Slot kinds recorded on a booking.
const (
	SlotKindNormal  = "normal"
	SlotKindSpecial = "special"
)

// BookingSlot is a snapshot of the schedule slot a booking holds.
type BookingSlot struct {
	ID        string     `bson:"id" json:"id"`
	Kind      string     `bson:"kind" json:"kind"`
	Date      *time.Time `bson:"date,omitempty" json:"date,omitempty"` // normal slots only
	StartTime time.Time  `bson:"startTime" json:"startTime"`
	EndTime   time.Time  `bson:"endTime" json:"endTime"`
	// BookedBy is the customer holding the slot in the schedule. It does not follow
	// later customer reassignments of the booking.
	BookedBy string `bson:"bookedBy,omitempty" json:"bookedBy,omitempty"`
}

// Booking represents a committed reservation of one schedule slot.
type Booking struct {
	ID            string      `bson:"id" json:"id"`
	Customer      string      `bson:"customer" json:"customer"`
	Services      []string    `bson:"service" json:"service"`
	Vendor        string      `bson:"vendor" json:"vendor"`
	Schedule      string      `bson:"schedule,omitempty" json:"schedule,omitempty"`
	Slot          BookingSlot `bson:"slot" json:"slot"`
	PaymentType   string      `bson:"payment_type" json:"payment_type"`
	PaymentStatus string      `bson:"payment_status" json:"payment_status"`
	Status        string      `bson:"status" json:"status"`
	Tracking      *Tracking   `bson:"tracking,omitempty" json:"tracking,omitempty"`
	CreatedAt     time.Time   `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time   `bson:"updatedAt" json:"updatedAt"`
}

// Active reports whether the booking still holds its slot.
func (b *Booking) Active() bool {
	return b.Status != BookingStatusCancelled
}

// Tracking holds the live locations of both parties and the update trail.
type Tracking struct {
	VendorLocation   *GeoPoint       `bson:"vendorLocation,omitempty" json:"vendorLocation,omitempty"`
	CustomerLocation *GeoPoint       `bson:"customerLocation,omitempty" json:"customerLocation,omitempty"`
	History          []TrackingEntry `bson:"history" json:"history"`
}

type TrackingEntry struct {
	Actor       string    `bson:"actor" json:"actor"` // "vendor" or "customer"
	Coordinates GeoPoint  `bson:"coordinates" json:"coordinates"`
	Timestamp   time.Time `bson:"timestamp" json:"timestamp"`
}

// BookingUpdate is a partial update; nil fields are left untouched.
type BookingUpdate struct {
	Customer      *string
	Services      *[]string
	PaymentType   *string
	PaymentStatus *string
	Status        *string
}

// BookingFilter narrows a booking listing. Zero values are ignored.
// Name filters match case-insensitively on a substring of the joined document's name.
type BookingFilter struct {
	Status        string
	PaymentStatus string
	From          *time.Time
	To            *time.Time
	CustomerID    string
	VendorID      string
	ScheduleID    string
	ServiceID     string
	SlotStart     *time.Time
	CustomerName  string
	VendorName    string
	ServiceName   string
}

// NeedsLookup reports whether any joined-name filter is set.
func (f BookingFilter) NeedsLookup() bool {
	return f.CustomerName != "" || f.VendorName != "" || f.ServiceName != ""
}

// ReminderPayload is the queued body of a booking reminder.
type ReminderPayload struct {
	BookingID string    `json:"bookingId"`
	Customer  string    `json:"customer"`
	Vendor    string    `json:"vendor"`
	StartTime time.Time `json:"startTime"`
}
