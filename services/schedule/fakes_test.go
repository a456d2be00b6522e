package schedule

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"slotly/models"
	"slotly/utils"

	"github.com/google/uuid"
)

// memScheduleRepo keeps schedules in memory and applies slot writes with the same
// conditions the Mongo filters enforce.
type memScheduleRepo struct {
	mu        sync.Mutex
	byVendor  map[string]*models.Schedule
	bookCalls int
}

func newMemScheduleRepo() *memScheduleRepo {
	return &memScheduleRepo{byVendor: make(map[string]*models.Schedule)}
}

func cloneSchedule(s *models.Schedule) *models.Schedule {
	out := *s
	out.AvailableDates = make([]models.AvailableDate, len(s.AvailableDates))
	for i, d := range s.AvailableDates {
		out.AvailableDates[i] = models.AvailableDate{
			Date:      d.Date,
			TimeSlots: append([]models.TimeSlot{}, d.TimeSlots...),
		}
	}
	out.SpecialServiceAvailability.ServiceSlots = append([]models.ServiceSlot{}, s.SpecialServiceAvailability.ServiceSlots...)
	return &out
}

func (r *memScheduleRepo) byID(id string) *models.Schedule {
	for _, s := range r.byVendor {
		if s.ID == id {
			return s
		}
	}
	return nil
}

func (r *memScheduleRepo) ensure(vendorID string) *models.Schedule {
	s, ok := r.byVendor[vendorID]
	if !ok {
		s = emptySchedule(vendorID)
		s.ID = uuid.New().String()
		r.byVendor[vendorID] = s
	}
	return s
}

func (r *memScheduleRepo) GetByVendor(_ context.Context, vendorID string) (*models.Schedule, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.byVendor[vendorID]
	if !ok {
		return nil, utils.NotFound("schedule for vendor %s not found", vendorID)
	}
	return cloneSchedule(s), nil
}

func (r *memScheduleRepo) GetByID(_ context.Context, scheduleID string) (*models.Schedule, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s := r.byID(scheduleID)
	if s == nil {
		return nil, utils.NotFound("schedule %s not found", scheduleID)
	}
	return cloneSchedule(s), nil
}

func (r *memScheduleRepo) List(_ context.Context) ([]models.Schedule, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []models.Schedule{}
	for _, s := range r.byVendor {
		out = append(out, *cloneSchedule(s))
	}
	return out, nil
}

func (r *memScheduleRepo) Delete(_ context.Context, scheduleID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s := r.byID(scheduleID)
	if s == nil {
		return utils.NotFound("schedule %s not found", scheduleID)
	}
	delete(r.byVendor, s.Vendor)
	return nil
}

func (r *memScheduleRepo) SaveAvailableDates(_ context.Context, vendorID string, dates []models.AvailableDate, expectedVersion int) (*models.Schedule, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	current, ok := r.byVendor[vendorID]
	if ok && current.Version != expectedVersion {
		return nil, utils.SlotConflict("schedule changed concurrently")
	}
	s := r.ensure(vendorID)
	s.AvailableDates = dates
	s.Version++
	return cloneSchedule(s), nil
}

func (r *memScheduleRepo) SetSpecialAvailability(_ context.Context, vendorID string, isAvailable bool) (*models.Schedule, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s := r.ensure(vendorID)
	s.SpecialServiceAvailability.IsAvailable = isAvailable
	s.Version++
	return cloneSchedule(s), nil
}

func (r *memScheduleRepo) BookTimeSlot(_ context.Context, vendorID string, day time.Time, slot models.TimeSlot, customerID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bookCalls++
	s, ok := r.byVendor[vendorID]
	if !ok {
		return utils.SlotUnavailable("no schedule")
	}
	if AnyOverlap(Interval{Start: slot.StartTime, End: slot.EndTime}, bookedIntervals(s)) {
		return utils.SlotUnavailable("overlaps a booked interval")
	}
	for di := range s.AvailableDates {
		if !s.AvailableDates[di].Date.Equal(day) {
			continue
		}
		for ti := range s.AvailableDates[di].TimeSlots {
			ts := &s.AvailableDates[di].TimeSlots[ti]
			if ts.ID == slot.ID && !ts.IsBooked {
				ts.IsBooked = true
				ts.BookedBy = customerID
				s.Version++
				return nil
			}
		}
	}
	return utils.SlotUnavailable("slot %s is no longer available", slot.ID)
}

func (r *memScheduleRepo) PushServiceSlot(_ context.Context, vendorID string, slot models.ServiceSlot) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.byVendor[vendorID]
	if !ok || !s.SpecialServiceAvailability.IsAvailable {
		return utils.SlotConflict("special mode is off")
	}
	if AnyOverlap(Interval{Start: slot.StartTime, End: slot.EndTime}, bookedIntervals(s)) {
		return utils.SlotConflict("overlaps a booked interval")
	}
	s.SpecialServiceAvailability.ServiceSlots = append(s.SpecialServiceAvailability.ServiceSlots, slot)
	s.Version++
	return nil
}

func (r *memScheduleRepo) ReleaseTimeSlot(_ context.Context, scheduleID string, slot models.BookingSlot) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s := r.byID(scheduleID)
	if s == nil {
		return false, nil
	}
	for di := range s.AvailableDates {
		for ti := range s.AvailableDates[di].TimeSlots {
			ts := &s.AvailableDates[di].TimeSlots[ti]
			if ts.ID == slot.ID && ts.IsBooked && (slot.BookedBy == "" || ts.BookedBy == slot.BookedBy) {
				ts.IsBooked = false
				ts.BookedBy = ""
				s.Version++
				return true, nil
			}
		}
	}
	return false, nil
}

func (r *memScheduleRepo) PullServiceSlot(_ context.Context, scheduleID string, slot models.BookingSlot) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s := r.byID(scheduleID)
	if s == nil {
		return false, nil
	}
	slots := s.SpecialServiceAvailability.ServiceSlots
	for i, ss := range slots {
		if ss.ID == slot.ID && (slot.BookedBy == "" || ss.BookedBy == slot.BookedBy) {
			s.SpecialServiceAvailability.ServiceSlots = append(slots[:i:i], slots[i+1:]...)
			s.Version++
			return true, nil
		}
	}
	return false, nil
}

func (r *memScheduleRepo) EnsureIndexes(context.Context) error { return nil }

type memServices map[string]*models.Service

func (m memServices) GetByID(_ context.Context, id string) (*models.Service, error) {
	s, ok := m[id]
	if !ok {
		return nil, utils.NotFound("service %s not found", id)
	}
	return s, nil
}

// memBookings records created bookings; failNext makes the next Create fail.
type memBookings struct {
	mu       sync.Mutex
	created  []*models.Booking
	failNext bool
}

func (m *memBookings) Create(_ context.Context, b *models.Booking) (*models.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failNext {
		m.failNext = false
		return nil, errors.New("insert failed")
	}
	b.ID = fmt.Sprintf("booking-%d", len(m.created)+1)
	m.created = append(m.created, b)
	return b, nil
}

func (m *memBookings) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.created)
}

type memUnlinker struct {
	unset []string
}

func (m *memUnlinker) UnsetSchedule(_ context.Context, scheduleID string) (int64, error) {
	m.unset = append(m.unset, scheduleID)
	return 1, nil
}
