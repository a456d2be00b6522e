package models

import (
	"encoding/json"
	"time"
)

// TimeSlotInput is one slot of an availability upsert.
type TimeSlotInput struct {
	StartTime time.Time `json:"startTime" binding:"required"`
	EndTime   time.Time `json:"endTime" binding:"required,gtfield=StartTime"`
}

// AvailableDateInput carries a calendar day as "2006-01-02" or RFC3339.
type AvailableDateInput struct {
	Date      string          `json:"date" binding:"required"`
	TimeSlots []TimeSlotInput `json:"timeSlots" binding:"dive"`
}

type NormalScheduleRequest struct {
	Vendor         string               `json:"vendor" binding:"required,entityid"`
	AvailableDates []AvailableDateInput `json:"availableDates" binding:"required,min=1,dive"`
}

type SpecialAvailabilityRequest struct {
	Vendor      string `json:"vendor" binding:"required,entityid"`
	IsAvailable *bool  `json:"isAvailable" binding:"required"`
}

// NormalSlotRequest books a pre-declared slot by its exact interval.
type NormalSlotRequest struct {
	Customer    string    `json:"customer" binding:"required,entityid"`
	Vendor      string    `json:"vendor" binding:"required,entityid"`
	Date        string    `json:"date" binding:"required"`
	StartTime   time.Time `json:"startTime" binding:"required"`
	EndTime     time.Time `json:"endTime" binding:"required,gtfield=StartTime"`
	Services    []string  `json:"service" binding:"omitempty,dive,entityid"`
	PaymentType string    `json:"payment_type" binding:"omitempty,oneof='Cash On Delivery' UPI Other"`
}

// SpecialSlotRequest books an on-demand slot whose end is derived from the service duration.
type SpecialSlotRequest struct {
	Vendor      string    `json:"vendor" binding:"required,entityid"`
	ServiceID   string    `json:"serviceId" binding:"required,entityid"`
	StartTime   time.Time `json:"startTime" binding:"required"`
	Customer    string    `json:"customer" binding:"required,entityid"`
	PaymentType string    `json:"payment_type" binding:"omitempty,oneof='Cash On Delivery' UPI Other"`
}

// UnmarshalJSON also accepts the customer under "customerId".
func (r *SpecialSlotRequest) UnmarshalJSON(data []byte) error {
	type plain SpecialSlotRequest
	var aux struct {
		plain
		CustomerID string `json:"customerId"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if aux.Customer == "" {
		aux.Customer = aux.CustomerID
	}
	*r = SpecialSlotRequest(aux.plain)
	return nil
}

// BookingUpdateRequest is the body of PUT /api/bookings/:id.
type BookingUpdateRequest struct {
	Customer      *string   `json:"customer" binding:"omitempty,entityid"`
	Services      *[]string `json:"service" binding:"omitempty,dive,entityid"`
	PaymentType   *string   `json:"payment_type" binding:"omitempty,oneof='Cash On Delivery' UPI Other"`
	PaymentStatus *string   `json:"payment_status" binding:"omitempty,oneof=Unpaid Paid Pending Refunded"`
	Status        *string   `json:"status" binding:"omitempty,oneof=Scheduled Completed Cancelled"`
}

// TrackRequest appends a location update to a booking.
type TrackRequest struct {
	Actor       string     `json:"actor" binding:"required,oneof=vendor customer"`
	Coordinates [2]float64 `json:"coordinates" binding:"required"`
}
