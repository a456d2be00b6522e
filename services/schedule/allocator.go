package schedule

import (
	"context"
	"time"

	schedulerRepo "slotly/database/repository/scheduler"
	"slotly/models"
	"slotly/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ServiceLookup resolves the service whose duration sizes a special slot.
type ServiceLookup interface {
	GetByID(ctx context.Context, id string) (*models.Service, error)
}

// BookingCreator persists the booking that records a committed slot.
type BookingCreator interface {
	Create(ctx context.Context, booking *models.Booking) (*models.Booking, error)
}

// SpecialAllocation is the outcome of a special request.
type SpecialAllocation struct {
	TimeSlot models.ServiceSlot `json:"timeSlot"`
	Booking  *models.Booking    `json:"booking"`
}

type SlotAllocator interface {
	RequestNormalSlot(ctx context.Context, req models.NormalSlotRequest) (*models.Booking, error)
	RequestSpecialSlot(ctx context.Context, req models.SpecialSlotRequest) (*SpecialAllocation, error)
}

// DefaultSlotAllocator commits slot requests. Both paths hold the vendor lock from the
// first read until the booking exists, and the slot write itself is a conditional update.
type DefaultSlotAllocator struct {
	Repo     schedulerRepo.SchedulerRepository
	Services ServiceLookup
	Bookings BookingCreator
	Locker   Locker
	Logger   *zap.Logger
}

func (a *DefaultSlotAllocator) logger() *zap.Logger {
	if a.Logger == nil {
		return zap.NewNop()
	}
	return a.Logger
}

func paymentTypeOrDefault(pt string) string {
	if pt == "" {
		return models.PaymentCashOnDelivery
	}
	return pt
}

// findExact returns the slot whose interval equals [start, end) exactly.
func findExact(slots []models.TimeSlot, start, end time.Time) (models.TimeSlot, bool) {
	for _, ts := range slots {
		if ts.StartTime.Equal(start) && ts.EndTime.Equal(end) {
			return ts, true
		}
	}
	return models.TimeSlot{}, false
}

// RequestNormalSlot books the pre-declared slot matching the requested interval exactly.
func (a *DefaultSlotAllocator) RequestNormalSlot(ctx context.Context, req models.NormalSlotRequest) (*models.Booking, error) {
	day, err := utils.ParseDate(req.Date)
	if err != nil {
		return nil, err
	}
	want := Interval{Start: utils.NormalizeInstant(req.StartTime), End: utils.NormalizeInstant(req.EndTime)}
	if !want.Valid() {
		return nil, utils.Validation("startTime must be before endTime")
	}

	unlock, err := a.Locker.Lock(ctx, vendorLockKey(req.Vendor))
	if err != nil {
		return nil, err
	}
	defer unlock()

	schedule, err := a.Repo.GetByVendor(ctx, req.Vendor)
	if err != nil {
		return nil, err
	}
	slots, ok := schedule.DateSlots(day)
	if !ok {
		return nil, utils.NotFound("vendor %s has no slots on %s", req.Vendor, utils.FormatDate(day))
	}

	slot, ok := findExact(slots, want.Start, want.End)
	if !ok || slot.IsBooked || AnyOverlap(want, bookedIntervals(schedule)) {
		return nil, utils.SlotUnavailable("the requested slot is not available")
	}

	if err := a.Repo.BookTimeSlot(ctx, req.Vendor, day, slot, req.Customer); err != nil {
		return nil, err
	}

	bookingSlot := models.BookingSlot{
		ID:        slot.ID,
		Kind:      models.SlotKindNormal,
		Date:      &day,
		StartTime: slot.StartTime,
		EndTime:   slot.EndTime,
		BookedBy:  req.Customer,
	}
	booking, err := a.Bookings.Create(ctx, &models.Booking{
		Customer:      req.Customer,
		Services:      nonNil(req.Services),
		Vendor:        req.Vendor,
		Schedule:      schedule.ID,
		Slot:          bookingSlot,
		PaymentType:   paymentTypeOrDefault(req.PaymentType),
		PaymentStatus: models.PaymentStatusUnpaid,
		Status:        models.BookingStatusScheduled,
	})
	if err != nil {
		a.compensate(ctx, schedule.ID, bookingSlot, func(c context.Context) (bool, error) {
			return a.Repo.ReleaseTimeSlot(c, schedule.ID, bookingSlot)
		})
		return nil, err
	}

	a.logger().Info("normal slot booked",
		zap.String("vendorID", req.Vendor),
		zap.String("customerID", req.Customer),
		zap.String("slotID", slot.ID),
		zap.String("bookingID", booking.ID),
	)
	return booking, nil
}

// RequestSpecialSlot creates and books a slot of the service's duration starting at the
// requested time.
func (a *DefaultSlotAllocator) RequestSpecialSlot(ctx context.Context, req models.SpecialSlotRequest) (*SpecialAllocation, error) {
	start := utils.NormalizeInstant(req.StartTime)

	unlock, err := a.Locker.Lock(ctx, vendorLockKey(req.Vendor))
	if err != nil {
		return nil, err
	}
	defer unlock()

	schedule, err := a.Repo.GetByVendor(ctx, req.Vendor)
	if err != nil {
		return nil, err
	}
	if !schedule.SpecialServiceAvailability.IsAvailable {
		return nil, utils.ServiceUnavailable("special service is not available for this vendor")
	}

	service, err := a.Services.GetByID(ctx, req.ServiceID)
	if err != nil {
		return nil, err
	}
	if service.Duration <= 0 {
		return nil, utils.Validation("service %s has no duration", service.ID)
	}
	if service.Vendor != "" && service.Vendor != req.Vendor {
		return nil, utils.Validation("service %s is not offered by vendor %s", service.ID, req.Vendor)
	}

	want := Interval{Start: start, End: start.Add(time.Duration(service.Duration) * time.Minute)}
	if AnyOverlap(want, bookedIntervals(schedule)) {
		return nil, utils.SlotConflict("this time slot overlaps with an existing booking")
	}

	slot := models.ServiceSlot{
		ID:        uuid.New().String(),
		Duration:  service.Duration,
		StartTime: want.Start,
		EndTime:   want.End,
		IsBooked:  true,
		BookedBy:  req.Customer,
	}
	if err := a.Repo.PushServiceSlot(ctx, req.Vendor, slot); err != nil {
		return nil, err
	}

	bookingSlot := models.BookingSlot{
		ID:        slot.ID,
		Kind:      models.SlotKindSpecial,
		StartTime: slot.StartTime,
		EndTime:   slot.EndTime,
		BookedBy:  req.Customer,
	}
	booking, err := a.Bookings.Create(ctx, &models.Booking{
		Customer:      req.Customer,
		Services:      []string{service.ID},
		Vendor:        req.Vendor,
		Schedule:      schedule.ID,
		Slot:          bookingSlot,
		PaymentType:   paymentTypeOrDefault(req.PaymentType),
		PaymentStatus: models.PaymentStatusUnpaid,
		Status:        models.BookingStatusScheduled,
	})
	if err != nil {
		a.compensate(ctx, schedule.ID, bookingSlot, func(c context.Context) (bool, error) {
			return a.Repo.PullServiceSlot(c, schedule.ID, bookingSlot)
		})
		return nil, err
	}

	a.logger().Info("special slot booked",
		zap.String("vendorID", req.Vendor),
		zap.String("customerID", req.Customer),
		zap.String("serviceID", service.ID),
		zap.Time("start", slot.StartTime),
		zap.Time("end", slot.EndTime),
		zap.String("bookingID", booking.ID),
	)
	return &SpecialAllocation{TimeSlot: slot, Booking: booking}, nil
}

// compensate undoes a slot write whose booking could not be stored. It must run even
// when the request context is already cancelled.
func (a *DefaultSlotAllocator) compensate(ctx context.Context, scheduleID string, slot models.BookingSlot, undo func(context.Context) (bool, error)) {
	cctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()

	if _, err := undo(cctx); err != nil {
		a.logger().Error("failed to release slot after booking insert failed",
			zap.String("scheduleID", scheduleID),
			zap.String("slotID", slot.ID),
			zap.Error(err),
		)
		return
	}
	a.logger().Warn("booking insert failed, slot released",
		zap.String("scheduleID", scheduleID),
		zap.String("slotID", slot.ID),
	)
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
