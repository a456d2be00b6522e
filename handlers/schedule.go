package handlers

import (
	"net/http"
	"time"

	"slotly/models"
	"slotly/services/schedule"
	"slotly/utils"

	"github.com/gin-gonic/gin"
)

// ScheduleHandler serves vendor availability and slot requests.
type ScheduleHandler struct {
	Store     schedule.SlotStore
	Allocator schedule.SlotAllocator
}

func NewScheduleHandler(store schedule.SlotStore, allocator schedule.SlotAllocator) *ScheduleHandler {
	return &ScheduleHandler{Store: store, Allocator: allocator}
}

// UpsertNormalScheduleHandler publishes normal slots for one or more days.
func (h *ScheduleHandler) UpsertNormalScheduleHandler(c *gin.Context) {
	var req models.NormalScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	saved, err := h.Store.UpsertAvailableDates(c.Request.Context(), req.Vendor, req.AvailableDates)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":  "Normal schedule created/updated successfully",
		"schedule": saved,
	})
}

func (h *ScheduleHandler) setSpecial(c *gin.Context, message func(bool) string) {
	var req models.SpecialAvailabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	saved, err := h.Store.SetSpecialAvailability(c.Request.Context(), req.Vendor, *req.IsAvailable)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":  message(*req.IsAvailable),
		"schedule": saved,
	})
}

// SetSpecialServiceHandler sets special mode on or off.
func (h *ScheduleHandler) SetSpecialServiceHandler(c *gin.Context) {
	h.setSpecial(c, func(bool) string { return "Special service availability updated successfully" })
}

// ToggleSpecialServiceHandler is SetSpecialServiceHandler with a state-specific message.
func (h *ScheduleHandler) ToggleSpecialServiceHandler(c *gin.Context) {
	h.setSpecial(c, func(on bool) string {
		if on {
			return "Special service availability enabled successfully"
		}
		return "Special service availability disabled successfully"
	})
}

// RequestNormalSlotHandler books an exact pre-declared slot.
func (h *ScheduleHandler) RequestNormalSlotHandler(c *gin.Context) {
	var req models.NormalSlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	booking, err := h.Allocator.RequestNormalSlot(c.Request.Context(), req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"message": "Slot booked successfully",
		"booking": booking,
	})
}

// RequestSpecialSlotHandler computes and books an on-demand slot.
func (h *ScheduleHandler) RequestSpecialSlotHandler(c *gin.Context) {
	var req models.SpecialSlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	alloc, err := h.Allocator.RequestSpecialSlot(c.Request.Context(), req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Time slot calculated and saved successfully",
		"timeSlot": gin.H{
			"id":        alloc.TimeSlot.ID,
			"startTime": alloc.TimeSlot.StartTime.Format(time.RFC3339),
			"endTime":   alloc.TimeSlot.EndTime.Format(time.RFC3339),
			"duration":  alloc.TimeSlot.Duration,
		},
		"booking": alloc.Booking,
	})
}

// GetVendorSlotsHandler lists the free slots of a vendor on ?date=. Without a date it
// returns the vendor's whole schedule.
func (h *ScheduleHandler) GetVendorSlotsHandler(c *gin.Context) {
	vendorID := c.Param("vendorId")
	if !IsEntityID(vendorID) {
		utils.RespondError(c, utils.Validation("invalid vendor id %q", vendorID))
		return
	}

	raw, ok := c.GetQuery("date")
	if !ok {
		s, err := h.Store.GetVendorSchedule(c.Request.Context(), vendorID)
		if err != nil {
			utils.RespondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"schedule": s})
		return
	}

	day, err := utils.ParseDate(raw)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	slots, err := h.Store.FreeSlots(c.Request.Context(), vendorID, day)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"vendor": vendorID,
		"date":   utils.FormatDate(day),
		"slots":  slots,
	})
}

// FilterSchedulesHandler returns the normal and/or special view of a vendor's schedule.
func (h *ScheduleHandler) FilterSchedulesHandler(c *gin.Context) {
	vendorID := c.Query("vendorId")
	if !IsEntityID(vendorID) {
		utils.RespondError(c, utils.Validation("invalid vendor id %q", vendorID))
		return
	}

	var day *time.Time
	if raw := c.Query("date"); raw != "" {
		d, err := utils.ParseDate(raw)
		if err != nil {
			utils.RespondError(c, err)
			return
		}
		day = &d
	}

	view, err := h.Store.Filter(c.Request.Context(), vendorID, day, c.Query("type"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":  "Filtered schedules fetched successfully",
		"schedule": view,
	})
}

func (h *ScheduleHandler) ListSchedulesHandler(c *gin.Context) {
	schedules, err := h.Store.ListSchedules(c.Request.Context())
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"schedules": schedules})
}

func (h *ScheduleHandler) GetScheduleHandler(c *gin.Context) {
	s, err := h.Store.GetSchedule(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"schedule": s})
}

// DeleteScheduleHandler removes a schedule and detaches its bookings.
func (h *ScheduleHandler) DeleteScheduleHandler(c *gin.Context) {
	if err := h.Store.DeleteSchedule(c.Request.Context(), c.Param("id")); err != nil {
		utils.RespondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
