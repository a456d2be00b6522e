package schedule

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	schedulerRepo "slotly/database/repository/scheduler"
	"slotly/models"
	"slotly/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ScheduleUnlinker clears booking references to a deleted schedule.
type ScheduleUnlinker interface {
	UnsetSchedule(ctx context.Context, scheduleID string) (int64, error)
}

// SlotStore exposes the availability of vendors: publishing normal slots, toggling
// special mode, releasing booked slots and the read views.
type SlotStore interface {
	GetOrCreateSchedule(ctx context.Context, vendorID string) (*models.Schedule, error)
	UpsertAvailableDates(ctx context.Context, vendorID string, dates []models.AvailableDateInput) (*models.Schedule, error)
	SetSpecialAvailability(ctx context.Context, vendorID string, isAvailable bool) (*models.Schedule, error)
	ReleaseSlot(ctx context.Context, vendorID, scheduleID string, slot models.BookingSlot) error
	ListSchedules(ctx context.Context) ([]models.Schedule, error)
	GetSchedule(ctx context.Context, scheduleID string) (*models.Schedule, error)
	GetVendorSchedule(ctx context.Context, vendorID string) (*models.Schedule, error)
	FreeSlots(ctx context.Context, vendorID string, day time.Time) ([]models.TimeSlot, error)
	Filter(ctx context.Context, vendorID string, day *time.Time, view string) (*models.ScheduleView, error)
	DeleteSchedule(ctx context.Context, scheduleID string) error
}

// DefaultSlotStore implements SlotStore. Every write runs under the vendor lock.
type DefaultSlotStore struct {
	Repo     schedulerRepo.SchedulerRepository
	Bookings ScheduleUnlinker
	Locker   Locker
	Logger   *zap.Logger
}

func (s *DefaultSlotStore) logger() *zap.Logger {
	if s.Logger == nil {
		return zap.NewNop()
	}
	return s.Logger
}

func emptySchedule(vendorID string) *models.Schedule {
	return &models.Schedule{
		Vendor:         vendorID,
		AvailableDates: []models.AvailableDate{},
		SpecialServiceAvailability: models.SpecialServiceAvailability{
			ServiceSlots: []models.ServiceSlot{},
		},
	}
}

// GetOrCreateSchedule returns the vendor's schedule, or an empty unsaved one.
func (s *DefaultSlotStore) GetOrCreateSchedule(ctx context.Context, vendorID string) (*models.Schedule, error) {
	schedule, err := s.Repo.GetByVendor(ctx, vendorID)
	if errors.Is(err, utils.ErrNotFound) {
		return emptySchedule(vendorID), nil
	}
	return schedule, err
}

// UpsertAvailableDates replaces the slot list of every incoming day and appends days
// the schedule does not have yet. All incoming slots start free.
func (s *DefaultSlotStore) UpsertAvailableDates(ctx context.Context, vendorID string, inputs []models.AvailableDateInput) (*models.Schedule, error) {
	incoming, err := buildAvailableDates(inputs, func() string { return uuid.New().String() })
	if err != nil {
		return nil, err
	}

	unlock, err := s.Locker.Lock(ctx, vendorLockKey(vendorID))
	if err != nil {
		return nil, err
	}
	defer unlock()

	current, err := s.GetOrCreateSchedule(ctx, vendorID)
	if err != nil {
		return nil, err
	}

	if dropped := bookedSlotsReplaced(current.AvailableDates, incoming); dropped > 0 {
		s.logger().Warn("replacing days that hold booked slots",
			zap.String("vendorID", vendorID),
			zap.Int("bookedSlots", dropped),
		)
	}

	merged := mergeAvailableDates(current.AvailableDates, incoming)
	saved, err := s.Repo.SaveAvailableDates(ctx, vendorID, merged, current.Version)
	if err != nil {
		return nil, err
	}

	s.logger().Info("normal schedule saved",
		zap.String("vendorID", vendorID),
		zap.String("scheduleID", saved.ID),
		zap.Int("days", len(incoming)),
	)
	return saved, nil
}

// buildAvailableDates validates the request and turns it into stored days. A day listed
// twice keeps its last occurrence; identical intervals within a day collapse to one.
func buildAvailableDates(inputs []models.AvailableDateInput, newID func() string) ([]models.AvailableDate, error) {
	var out []models.AvailableDate
	index := make(map[time.Time]int)

	for _, in := range inputs {
		day, err := utils.ParseDate(in.Date)
		if err != nil {
			return nil, err
		}

		seen := make(map[Interval]bool)
		slots := make([]models.TimeSlot, 0, len(in.TimeSlots))
		for _, ts := range in.TimeSlots {
			iv := Interval{
				Start: utils.NormalizeInstant(ts.StartTime),
				End:   utils.NormalizeInstant(ts.EndTime),
			}
			if !iv.Valid() {
				return nil, utils.Validation("slot on %s must start before it ends", utils.FormatDate(day))
			}
			if seen[iv] {
				continue
			}
			seen[iv] = true
			slots = append(slots, models.TimeSlot{
				ID:        newID(),
				StartTime: iv.Start,
				EndTime:   iv.End,
			})
		}
		sort.Slice(slots, func(i, j int) bool { return slots[i].StartTime.Before(slots[j].StartTime) })

		entry := models.AvailableDate{Date: day, TimeSlots: slots}
		if i, ok := index[day]; ok {
			out[i] = entry
			continue
		}
		index[day] = len(out)
		out = append(out, entry)
	}
	return out, nil
}

// mergeAvailableDates overlays incoming days onto existing ones, ordered by day.
func mergeAvailableDates(existing, incoming []models.AvailableDate) []models.AvailableDate {
	merged := make([]models.AvailableDate, 0, len(existing)+len(incoming))
	index := make(map[time.Time]int, len(existing))
	for _, d := range existing {
		index[d.Date] = len(merged)
		merged = append(merged, d)
	}
	for _, d := range incoming {
		if i, ok := index[d.Date]; ok {
			merged[i].TimeSlots = d.TimeSlots
			continue
		}
		index[d.Date] = len(merged)
		merged = append(merged, d)
	}
	sort.SliceStable(merged, func(i, j int) bool { return merged[i].Date.Before(merged[j].Date) })
	return merged
}

func bookedSlotsReplaced(existing, incoming []models.AvailableDate) int {
	replaced := make(map[time.Time]bool, len(incoming))
	for _, d := range incoming {
		replaced[d.Date] = true
	}
	count := 0
	for _, d := range existing {
		if !replaced[d.Date] {
			continue
		}
		for _, ts := range d.TimeSlots {
			if ts.IsBooked {
				count++
			}
		}
	}
	return count
}

func (s *DefaultSlotStore) SetSpecialAvailability(ctx context.Context, vendorID string, isAvailable bool) (*models.Schedule, error) {
	unlock, err := s.Locker.Lock(ctx, vendorLockKey(vendorID))
	if err != nil {
		return nil, err
	}
	defer unlock()

	saved, err := s.Repo.SetSpecialAvailability(ctx, vendorID, isAvailable)
	if err != nil {
		return nil, err
	}
	s.logger().Info("special availability set",
		zap.String("vendorID", vendorID),
		zap.Bool("isAvailable", isAvailable),
	)
	return saved, nil
}

// ReleaseSlot returns a booked interval to the bookable state. Releasing a slot that is
// already free, held by another customer, or whose schedule is gone, is a no-op.
func (s *DefaultSlotStore) ReleaseSlot(ctx context.Context, vendorID, scheduleID string, slot models.BookingSlot) error {
	if scheduleID == "" || slot.ID == "" {
		return nil
	}

	unlock, err := s.Locker.Lock(ctx, vendorLockKey(vendorID))
	if err != nil {
		return err
	}
	defer unlock()

	var released bool
	switch slot.Kind {
	case models.SlotKindSpecial:
		released, err = s.Repo.PullServiceSlot(ctx, scheduleID, slot)
	default:
		released, err = s.Repo.ReleaseTimeSlot(ctx, scheduleID, slot)
	}
	if err != nil {
		return fmt.Errorf("release slot %s: %w", slot.ID, err)
	}

	s.logger().Debug("slot release",
		zap.String("scheduleID", scheduleID),
		zap.String("slotID", slot.ID),
		zap.String("kind", slot.Kind),
		zap.Bool("released", released),
	)
	return nil
}

func (s *DefaultSlotStore) ListSchedules(ctx context.Context) ([]models.Schedule, error) {
	return s.Repo.List(ctx)
}

func (s *DefaultSlotStore) GetSchedule(ctx context.Context, scheduleID string) (*models.Schedule, error) {
	return s.Repo.GetByID(ctx, scheduleID)
}

func (s *DefaultSlotStore) GetVendorSchedule(ctx context.Context, vendorID string) (*models.Schedule, error) {
	return s.Repo.GetByVendor(ctx, vendorID)
}

// FreeSlots lists the slots of day that can still be booked.
func (s *DefaultSlotStore) FreeSlots(ctx context.Context, vendorID string, day time.Time) ([]models.TimeSlot, error) {
	schedule, err := s.Repo.GetByVendor(ctx, vendorID)
	if err != nil {
		return nil, err
	}
	slots, ok := schedule.DateSlots(day)
	if !ok {
		return nil, utils.NotFound("no slots available on %s", utils.FormatDate(day))
	}
	return freeSlots(slots, bookedIntervals(schedule)), nil
}

// freeSlots keeps the unbooked slots that do not collide with a committed interval.
func freeSlots(slots []models.TimeSlot, booked []Interval) []models.TimeSlot {
	free := []models.TimeSlot{}
	for _, ts := range slots {
		if ts.IsBooked || AnyOverlap(Interval{Start: ts.StartTime, End: ts.EndTime}, booked) {
			continue
		}
		free = append(free, ts)
	}
	return free
}

// Filter returns the free normal and/or special slots of a vendor's schedule. An empty
// view selects both. Special slots are listed only while special mode is on.
func (s *DefaultSlotStore) Filter(ctx context.Context, vendorID string, day *time.Time, view string) (*models.ScheduleView, error) {
	if view != "" && view != models.ScheduleViewNormal && view != models.ScheduleViewSpecial {
		return nil, utils.Validation("unknown schedule type %q", view)
	}

	schedule, err := s.Repo.GetByVendor(ctx, vendorID)
	if err != nil {
		return nil, err
	}

	result := &models.ScheduleView{
		ScheduleID:     schedule.ID,
		Vendor:         schedule.Vendor,
		NormalSlots:    []models.TimeSlot{},
		SpecialSlots:   []models.ServiceSlot{},
		SpecialEnabled: schedule.SpecialServiceAvailability.IsAvailable,
	}
	if (view == "" || view == models.ScheduleViewNormal) && day != nil {
		if slots, ok := schedule.DateSlots(*day); ok {
			result.NormalSlots = freeSlots(slots, bookedIntervals(schedule))
		}
	}
	if (view == "" || view == models.ScheduleViewSpecial) && schedule.SpecialServiceAvailability.IsAvailable {
		for _, ss := range schedule.SpecialServiceAvailability.ServiceSlots {
			if !ss.IsBooked {
				result.SpecialSlots = append(result.SpecialSlots, ss)
			}
		}
	}
	return result, nil
}

// DeleteSchedule removes a schedule and detaches the bookings that referenced it.
func (s *DefaultSlotStore) DeleteSchedule(ctx context.Context, scheduleID string) error {
	schedule, err := s.Repo.GetByID(ctx, scheduleID)
	if err != nil {
		return err
	}

	unlock, err := s.Locker.Lock(ctx, vendorLockKey(schedule.Vendor))
	if err != nil {
		return err
	}
	defer unlock()

	if err := s.Repo.Delete(ctx, scheduleID); err != nil {
		return err
	}

	detached, err := s.Bookings.UnsetSchedule(ctx, scheduleID)
	if err != nil {
		return fmt.Errorf("schedule %s deleted but bookings still reference it: %w", scheduleID, err)
	}
	s.logger().Info("schedule deleted",
		zap.String("scheduleID", scheduleID),
		zap.String("vendorID", schedule.Vendor),
		zap.Int64("detachedBookings", detached),
	)
	return nil
}
