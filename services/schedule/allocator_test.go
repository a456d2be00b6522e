package schedule

import (
	"context"
	"sync"
	"testing"
	"time"

	"slotly/models"
	"slotly/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type allocatorFixture struct {
	store     *DefaultSlotStore
	allocator *DefaultSlotAllocator
	repo      *memScheduleRepo
	bookings  *memBookings
}

func newAllocatorFixture(t *testing.T) *allocatorFixture {
	t.Helper()
	store, repo, _ := newTestStore()
	bookings := &memBookings{}
	f := &allocatorFixture{
		store: store,
		allocator: &DefaultSlotAllocator{
			Repo: repo,
			Services: memServices{
				"svc-30":    {ID: "svc-30", Name: "Haircut", Duration: 30, Vendor: "vendor-1"},
				"svc-60":    {ID: "svc-60", Name: "Massage", Duration: 60, Vendor: "vendor-1"},
				"svc-none":  {ID: "svc-none", Name: "Broken", Duration: 0, Vendor: "vendor-1"},
				"svc-other": {ID: "svc-other", Name: "Elsewhere", Duration: 30, Vendor: "vendor-2"},
			},
			Bookings: bookings,
			Locker:   store.Locker,
		},
		repo:     repo,
		bookings: bookings,
	}

	_, err := store.UpsertAvailableDates(context.Background(), "vendor-1", []models.AvailableDateInput{
		dayInput("2024-06-01", [2]string{"09:00", "09:30"}, [2]string{"09:30", "10:00"}, [2]string{"14:00", "15:00"}),
	})
	require.NoError(t, err)
	return f
}

func normalRequest(start, end string) models.NormalSlotRequest {
	return models.NormalSlotRequest{
		Customer:  "customer-1",
		Vendor:    "vendor-1",
		Date:      "2024-06-01",
		StartTime: at(start),
		EndTime:   at(end),
	}
}

func specialRequest(service, start string) models.SpecialSlotRequest {
	return models.SpecialSlotRequest{
		Vendor:    "vendor-1",
		ServiceID: service,
		StartTime: at(start),
		Customer:  "customer-1",
	}
}

func (f *allocatorFixture) slot(t *testing.T, start string) models.TimeSlot {
	t.Helper()
	s, err := f.repo.GetByVendor(context.Background(), "vendor-1")
	require.NoError(t, err)
	for _, ts := range s.AvailableDates[0].TimeSlots {
		if ts.StartTime.Equal(at(start)) {
			return ts
		}
	}
	t.Fatalf("no slot at %s", start)
	return models.TimeSlot{}
}

func TestRequestNormalSlot(t *testing.T) {
	f := newAllocatorFixture(t)
	ctx := context.Background()

	booking, err := f.allocator.RequestNormalSlot(ctx, normalRequest("09:00", "09:30"))
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusScheduled, booking.Status)
	assert.Equal(t, models.PaymentCashOnDelivery, booking.PaymentType)
	assert.Equal(t, models.PaymentStatusUnpaid, booking.PaymentStatus)
	assert.Equal(t, models.SlotKindNormal, booking.Slot.Kind)
	assert.Equal(t, []string{}, booking.Services)
	assert.NotEmpty(t, booking.Schedule)

	slot := f.slot(t, "09:00")
	assert.True(t, slot.IsBooked)
	assert.Equal(t, "customer-1", slot.BookedBy)
	assert.Equal(t, slot.ID, booking.Slot.ID)

	_, err = f.allocator.RequestNormalSlot(ctx, normalRequest("09:00", "09:30"))
	assert.ErrorIs(t, err, utils.ErrSlotUnavailable)
	assert.Equal(t, 1, f.bookings.count())
}

func TestRequestNormalSlotRequiresExactMatch(t *testing.T) {
	f := newAllocatorFixture(t)
	ctx := context.Background()

	_, err := f.allocator.RequestNormalSlot(ctx, normalRequest("09:00", "10:00"))
	assert.ErrorIs(t, err, utils.ErrSlotUnavailable)

	_, err = f.allocator.RequestNormalSlot(ctx, normalRequest("14:00", "14:30"))
	assert.ErrorIs(t, err, utils.ErrSlotUnavailable)

	req := normalRequest("09:00", "09:30")
	req.Date = "2024-06-02"
	_, err = f.allocator.RequestNormalSlot(ctx, req)
	assert.ErrorIs(t, err, utils.ErrNotFound)

	req = normalRequest("09:00", "09:30")
	req.Vendor = "vendor-unknown"
	_, err = f.allocator.RequestNormalSlot(ctx, req)
	assert.ErrorIs(t, err, utils.ErrNotFound)

	assert.Zero(t, f.bookings.count())
}

func TestRequestNormalSlotIgnoresSubMillisecondNoise(t *testing.T) {
	f := newAllocatorFixture(t)
	req := normalRequest("09:30", "10:00")
	req.StartTime = req.StartTime.Add(300 * time.Microsecond)

	_, err := f.allocator.RequestNormalSlot(context.Background(), req)
	require.NoError(t, err)
}

func TestRequestSpecialSlotComputesEnd(t *testing.T) {
	f := newAllocatorFixture(t)
	ctx := context.Background()
	_, err := f.store.SetSpecialAvailability(ctx, "vendor-1", true)
	require.NoError(t, err)

	req := specialRequest("svc-30", "10:00")
	req.PaymentType = models.PaymentUPI
	alloc, err := f.allocator.RequestSpecialSlot(ctx, req)
	require.NoError(t, err)

	assert.Equal(t, time.Date(2024, 6, 1, 10, 30, 0, 0, time.UTC), alloc.TimeSlot.EndTime)
	assert.Equal(t, 30, alloc.TimeSlot.Duration)
	assert.True(t, alloc.TimeSlot.IsBooked)
	assert.Equal(t, models.SlotKindSpecial, alloc.Booking.Slot.Kind)
	assert.Equal(t, []string{"svc-30"}, alloc.Booking.Services)
	assert.Equal(t, models.PaymentUPI, alloc.Booking.PaymentType)
}

func TestRequestSpecialSlotOverlap(t *testing.T) {
	f := newAllocatorFixture(t)
	ctx := context.Background()
	_, err := f.store.SetSpecialAvailability(ctx, "vendor-1", true)
	require.NoError(t, err)

	_, err = f.allocator.RequestSpecialSlot(ctx, specialRequest("svc-60", "11:00"))
	require.NoError(t, err)

	_, err = f.allocator.RequestSpecialSlot(ctx, specialRequest("svc-30", "11:59"))
	assert.ErrorIs(t, err, utils.ErrSlotConflict, "one minute of overlap")

	_, err = f.allocator.RequestSpecialSlot(ctx, specialRequest("svc-30", "10:30"))
	assert.NoError(t, err, "touching at the start")

	_, err = f.allocator.RequestSpecialSlot(ctx, specialRequest("svc-30", "12:00"))
	assert.NoError(t, err, "touching at the end")
}

func TestRequestSpecialSlotRejections(t *testing.T) {
	f := newAllocatorFixture(t)
	ctx := context.Background()

	_, err := f.allocator.RequestSpecialSlot(ctx, specialRequest("svc-30", "11:00"))
	assert.ErrorIs(t, err, utils.ErrServiceUnavailable, "special mode off")

	_, err = f.store.SetSpecialAvailability(ctx, "vendor-1", true)
	require.NoError(t, err)

	_, err = f.allocator.RequestSpecialSlot(ctx, specialRequest("svc-missing", "11:00"))
	assert.ErrorIs(t, err, utils.ErrNotFound)

	_, err = f.allocator.RequestSpecialSlot(ctx, specialRequest("svc-none", "11:00"))
	assert.ErrorIs(t, err, utils.ErrValidation)

	_, err = f.allocator.RequestSpecialSlot(ctx, specialRequest("svc-other", "11:00"))
	assert.ErrorIs(t, err, utils.ErrValidation)

	req := specialRequest("svc-30", "11:00")
	req.Vendor = "vendor-unknown"
	_, err = f.allocator.RequestSpecialSlot(ctx, req)
	assert.ErrorIs(t, err, utils.ErrNotFound)

	assert.Zero(t, f.bookings.count())
}

func TestSlotKindsDoNotOverlap(t *testing.T) {
	f := newAllocatorFixture(t)
	ctx := context.Background()
	_, err := f.store.SetSpecialAvailability(ctx, "vendor-1", true)
	require.NoError(t, err)

	_, err = f.allocator.RequestNormalSlot(ctx, normalRequest("09:00", "09:30"))
	require.NoError(t, err)
	_, err = f.allocator.RequestSpecialSlot(ctx, specialRequest("svc-30", "09:15"))
	assert.ErrorIs(t, err, utils.ErrSlotConflict)

	_, err = f.allocator.RequestSpecialSlot(ctx, specialRequest("svc-60", "14:30"))
	require.NoError(t, err)
	_, err = f.allocator.RequestNormalSlot(ctx, normalRequest("14:00", "15:00"))
	assert.ErrorIs(t, err, utils.ErrSlotUnavailable)
}

func TestReleasedSlotCanBeBookedAgain(t *testing.T) {
	f := newAllocatorFixture(t)
	ctx := context.Background()
	_, err := f.store.SetSpecialAvailability(ctx, "vendor-1", true)
	require.NoError(t, err)

	booking, err := f.allocator.RequestNormalSlot(ctx, normalRequest("09:00", "09:30"))
	require.NoError(t, err)
	require.NoError(t, f.store.ReleaseSlot(ctx, booking.Vendor, booking.Schedule, booking.Slot))
	assert.False(t, f.slot(t, "09:00").IsBooked)

	_, err = f.allocator.RequestNormalSlot(ctx, normalRequest("09:00", "09:30"))
	require.NoError(t, err)

	alloc, err := f.allocator.RequestSpecialSlot(ctx, specialRequest("svc-30", "16:00"))
	require.NoError(t, err)
	require.NoError(t, f.store.ReleaseSlot(ctx, alloc.Booking.Vendor, alloc.Booking.Schedule, alloc.Booking.Slot))

	_, err = f.allocator.RequestSpecialSlot(ctx, specialRequest("svc-30", "16:00"))
	require.NoError(t, err)
}

func TestStaleReleaseKeepsNewHolder(t *testing.T) {
	f := newAllocatorFixture(t)
	ctx := context.Background()
	_, err := f.store.SetSpecialAvailability(ctx, "vendor-1", true)
	require.NoError(t, err)

	first, err := f.allocator.RequestNormalSlot(ctx, normalRequest("09:00", "09:30"))
	require.NoError(t, err)
	assert.Equal(t, "customer-1", first.Slot.BookedBy)
	require.NoError(t, f.store.ReleaseSlot(ctx, first.Vendor, first.Schedule, first.Slot))

	req := normalRequest("09:00", "09:30")
	req.Customer = "customer-2"
	_, err = f.allocator.RequestNormalSlot(ctx, req)
	require.NoError(t, err)

	require.NoError(t, f.store.ReleaseSlot(ctx, first.Vendor, first.Schedule, first.Slot))
	held := f.slot(t, "09:00")
	assert.True(t, held.IsBooked)
	assert.Equal(t, "customer-2", held.BookedBy)

	special, err := f.allocator.RequestSpecialSlot(ctx, specialRequest("svc-30", "16:00"))
	require.NoError(t, err)
	stale := special.Booking.Slot
	stale.BookedBy = "customer-9"
	require.NoError(t, f.store.ReleaseSlot(ctx, special.Booking.Vendor, special.Booking.Schedule, stale))
	s, err := f.repo.GetByVendor(ctx, "vendor-1")
	require.NoError(t, err)
	assert.Len(t, s.SpecialServiceAvailability.ServiceSlots, 1)
}

func TestFailedBookingInsertReleasesSlot(t *testing.T) {
	f := newAllocatorFixture(t)
	ctx := context.Background()
	_, err := f.store.SetSpecialAvailability(ctx, "vendor-1", true)
	require.NoError(t, err)

	f.bookings.failNext = true
	_, err = f.allocator.RequestNormalSlot(ctx, normalRequest("09:00", "09:30"))
	require.Error(t, err)
	assert.False(t, f.slot(t, "09:00").IsBooked)

	f.bookings.failNext = true
	_, err = f.allocator.RequestSpecialSlot(ctx, specialRequest("svc-30", "16:00"))
	require.Error(t, err)
	s, err := f.repo.GetByVendor(ctx, "vendor-1")
	require.NoError(t, err)
	assert.Empty(t, s.SpecialServiceAvailability.ServiceSlots)
}

func TestConcurrentRequestsForOneSlot(t *testing.T) {
	f := newAllocatorFixture(t)
	const n = 25

	var (
		wg          sync.WaitGroup
		mu          sync.Mutex
		successes   int
		unavailable int
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.allocator.RequestNormalSlot(context.Background(), normalRequest("09:30", "10:00"))
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case utils.HTTPStatus(err) == 409:
				unavailable++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, successes)
	assert.Equal(t, n-1, unavailable)
	assert.Equal(t, 1, f.bookings.count())
}

func TestConcurrentSpecialRequestsDoNotOverlap(t *testing.T) {
	f := newAllocatorFixture(t)
	_, err := f.store.SetSpecialAvailability(context.Background(), "vendor-1", true)
	require.NoError(t, err)

	starts := []string{"16:00", "16:10", "16:20", "16:29", "16:30", "16:45"}
	var wg sync.WaitGroup
	for _, s := range starts {
		wg.Add(1)
		go func(start string) {
			defer wg.Done()
			_, _ = f.allocator.RequestSpecialSlot(context.Background(), specialRequest("svc-30", start))
		}(s)
	}
	wg.Wait()

	sched, err := f.repo.GetByVendor(context.Background(), "vendor-1")
	require.NoError(t, err)
	slots := sched.SpecialServiceAvailability.ServiceSlots
	require.NotEmpty(t, slots)
	for i := range slots {
		for j := i + 1; j < len(slots); j++ {
			assert.False(t, Overlaps(slots[i].StartTime, slots[i].EndTime, slots[j].StartTime, slots[j].EndTime),
				"%s and %s overlap", slots[i].StartTime, slots[j].StartTime)
		}
	}
	assert.Equal(t, len(slots), f.bookings.count())
}
