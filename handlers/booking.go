package handlers

import (
	"net/http"
	"time"

	"slotly/models"
	"slotly/services/booking"
	"slotly/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// BookingHandler serves the booking lifecycle endpoints.
type BookingHandler struct {
	Writer booking.BookingWriter
}

func NewBookingHandler(writer booking.BookingWriter) *BookingHandler {
	return &BookingHandler{Writer: writer}
}

// parseBookingFilter reads the listing filters from the query string. "to" names an
// inclusive day when given as a bare date.
func parseBookingFilter(c *gin.Context) (models.BookingFilter, error) {
	filter := models.BookingFilter{
		Status:        c.Query("status"),
		PaymentStatus: c.Query("payment_status"),
		CustomerID:    c.Query("customer"),
		VendorID:      c.Query("vendor"),
		ScheduleID:    c.Query("schedule"),
		ServiceID:     c.Query("service"),
		CustomerName:  c.Query("customerName"),
		VendorName:    c.Query("vendorName"),
		ServiceName:   c.Query("serviceName"),
	}

	if raw := c.Query("from"); raw != "" {
		from, err := utils.ParseDate(raw)
		if err != nil {
			return filter, err
		}
		filter.From = &from
	}
	if raw := c.Query("to"); raw != "" {
		to, err := utils.ParseDate(raw)
		if err != nil {
			return filter, err
		}
		if len(raw) == len("2006-01-02") {
			to = to.AddDate(0, 0, 1)
		}
		filter.To = &to
	}
	if raw := c.Query("slotStart"); raw != "" {
		start, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return filter, utils.Validation("invalid slotStart %q", raw)
		}
		start = utils.NormalizeInstant(start)
		filter.SlotStart = &start
	}
	return filter, nil
}

func (h *BookingHandler) ListBookingsHandler(c *gin.Context) {
	filter, err := parseBookingFilter(c)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	bookings, err := h.Writer.List(c.Request.Context(), filter)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bookings": bookings})
}

func (h *BookingHandler) GetBookingHandler(c *gin.Context) {
	b, err := h.Writer.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"booking": b})
}

func (h *BookingHandler) UpdateBookingHandler(c *gin.Context) {
	var req models.BookingUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	updated, err := h.Writer.Update(c.Request.Context(), c.Param("id"), models.BookingUpdate{
		Customer:      req.Customer,
		Services:      req.Services,
		PaymentType:   req.PaymentType,
		PaymentStatus: req.PaymentStatus,
		Status:        req.Status,
	})
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Booking updated successfully",
		"booking": updated,
	})
}

func (h *BookingHandler) CancelBookingHandler(c *gin.Context) {
	cancelled, err := h.Writer.Cancel(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Booking cancelled successfully",
		"booking": cancelled,
	})
}

func (h *BookingHandler) DeleteBookingHandler(c *gin.Context) {
	id := c.Param("id")
	if err := h.Writer.Delete(c.Request.Context(), id); err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Booking deleted successfully", "id": id})
}

func (h *BookingHandler) ListCustomerBookingsHandler(c *gin.Context) {
	customerID := c.Param("customerId")
	if !IsEntityID(customerID) {
		utils.RespondError(c, utils.Validation("invalid customer id %q", customerID))
		return
	}

	bookings, err := h.Writer.ListByCustomer(c.Request.Context(), customerID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bookings": bookings})
}

// ReconcileCustomerHandler rebuilds a customer's booking_history from the bookings.
func (h *BookingHandler) ReconcileCustomerHandler(c *gin.Context) {
	customerID := c.Param("customerId")
	ids, err := h.Writer.ReconcileHistory(c.Request.Context(), customerID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	getLogger(c).Info("customer history reconciled",
		zap.String("customerID", customerID),
		zap.Int("bookings", len(ids)),
	)
	c.JSON(http.StatusOK, gin.H{
		"customer":        customerID,
		"booking_history": ids,
	})
}

func (h *BookingHandler) TrackBookingHandler(c *gin.Context) {
	var req models.TrackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	updated, err := h.Writer.Track(c.Request.Context(), c.Param("id"), req.Actor, req.Coordinates[0], req.Coordinates[1])
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tracking": updated.Tracking})
}
