package handlers

import "github.com/gin-gonic/gin"

// HandlerBundle groups all endpoint handlers into one struct.
type HandlerBundle struct {
	// Schedule endpoints
	UpsertNormalScheduleHandler gin.HandlerFunc
	SetSpecialServiceHandler    gin.HandlerFunc
	ToggleSpecialServiceHandler gin.HandlerFunc
	RequestNormalSlotHandler    gin.HandlerFunc
	RequestSpecialSlotHandler   gin.HandlerFunc
	GetVendorSlotsHandler       gin.HandlerFunc
	FilterSchedulesHandler      gin.HandlerFunc
	ListSchedulesHandler        gin.HandlerFunc
	GetScheduleHandler          gin.HandlerFunc
	DeleteScheduleHandler       gin.HandlerFunc

	// Booking endpoints
	ListBookingsHandler         gin.HandlerFunc
	GetBookingHandler           gin.HandlerFunc
	UpdateBookingHandler        gin.HandlerFunc
	CancelBookingHandler        gin.HandlerFunc
	DeleteBookingHandler        gin.HandlerFunc
	ListCustomerBookingsHandler gin.HandlerFunc
	ReconcileCustomerHandler    gin.HandlerFunc
	TrackBookingHandler         gin.HandlerFunc

	// Catalog endpoints
	CreateServiceHandler  gin.HandlerFunc
	GetServiceHandler     gin.HandlerFunc
	CreateVendorHandler   gin.HandlerFunc
	GetVendorHandler      gin.HandlerFunc
	NearbyVendorsHandler  gin.HandlerFunc
	CreateCustomerHandler gin.HandlerFunc
	GetCustomerHandler    gin.HandlerFunc

	HealthHandler gin.HandlerFunc
}

// NewHandlerBundle wires the handler structs into a bundle.
func NewHandlerBundle(sh *ScheduleHandler, bh *BookingHandler, ch *CatalogHandler) *HandlerBundle {
	return &HandlerBundle{
		UpsertNormalScheduleHandler: sh.UpsertNormalScheduleHandler,
		SetSpecialServiceHandler:    sh.SetSpecialServiceHandler,
		ToggleSpecialServiceHandler: sh.ToggleSpecialServiceHandler,
		RequestNormalSlotHandler:    sh.RequestNormalSlotHandler,
		RequestSpecialSlotHandler:   sh.RequestSpecialSlotHandler,
		GetVendorSlotsHandler:       sh.GetVendorSlotsHandler,
		FilterSchedulesHandler:      sh.FilterSchedulesHandler,
		ListSchedulesHandler:        sh.ListSchedulesHandler,
		GetScheduleHandler:          sh.GetScheduleHandler,
		DeleteScheduleHandler:       sh.DeleteScheduleHandler,

		ListBookingsHandler:         bh.ListBookingsHandler,
		GetBookingHandler:           bh.GetBookingHandler,
		UpdateBookingHandler:        bh.UpdateBookingHandler,
		CancelBookingHandler:        bh.CancelBookingHandler,
		DeleteBookingHandler:        bh.DeleteBookingHandler,
		ListCustomerBookingsHandler: bh.ListCustomerBookingsHandler,
		ReconcileCustomerHandler:    bh.ReconcileCustomerHandler,
		TrackBookingHandler:         bh.TrackBookingHandler,

		CreateServiceHandler:  ch.CreateServiceHandler,
		GetServiceHandler:     ch.GetServiceHandler,
		CreateVendorHandler:   ch.CreateVendorHandler,
		GetVendorHandler:      ch.GetVendorHandler,
		NearbyVendorsHandler:  ch.NearbyVendorsHandler,
		CreateCustomerHandler: ch.CreateCustomerHandler,
		GetCustomerHandler:    ch.GetCustomerHandler,

		HealthHandler: HealthHandler,
	}
}
