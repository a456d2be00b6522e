package booking

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"slotly/models"
	"slotly/utils"
)

type memBookingRepo struct {
	mu    sync.Mutex
	items map[string]*models.Booking
	order []string
}

func newMemBookingRepo() *memBookingRepo {
	return &memBookingRepo{items: make(map[string]*models.Booking)}
}

func (r *memBookingRepo) Create(_ context.Context, b *models.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if b.ID == "" {
		b.ID = fmt.Sprintf("booking-%d", len(r.order)+1)
	}
	cp := *b
	r.items[b.ID] = &cp
	r.order = append(r.order, b.ID)
	return nil
}

func (r *memBookingRepo) GetByID(_ context.Context, id string) (*models.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.items[id]
	if !ok {
		return nil, utils.NotFound("booking %s not found", id)
	}
	cp := *b
	return &cp, nil
}

func (r *memBookingRepo) Update(_ context.Context, id string, patch models.BookingUpdate) (*models.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.items[id]
	if !ok {
		return nil, utils.NotFound("booking %s not found", id)
	}
	if patch.Customer != nil {
		b.Customer = *patch.Customer
	}
	if patch.Services != nil {
		b.Services = *patch.Services
	}
	if patch.PaymentType != nil {
		b.PaymentType = *patch.PaymentType
	}
	if patch.PaymentStatus != nil {
		b.PaymentStatus = *patch.PaymentStatus
	}
	if patch.Status != nil {
		b.Status = *patch.Status
	}
	cp := *b
	return &cp, nil
}

func (r *memBookingRepo) Cancel(_ context.Context, id string) (*models.Booking, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.items[id]
	if !ok {
		return nil, false, utils.NotFound("booking %s not found", id)
	}
	prev := *b
	if !b.Active() {
		return &prev, false, nil
	}
	b.Status = models.BookingStatusCancelled
	return &prev, true, nil
}

func (r *memBookingRepo) Delete(_ context.Context, id string) (*models.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.items[id]
	if !ok {
		return nil, utils.NotFound("booking %s not found", id)
	}
	delete(r.items, id)
	return b, nil
}

func (r *memBookingRepo) Find(_ context.Context, f models.BookingFilter) ([]models.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []models.Booking{}
	for _, id := range r.order {
		b, ok := r.items[id]
		if !ok {
			continue
		}
		if f.CustomerID != "" && b.Customer != f.CustomerID {
			continue
		}
		if f.Status != "" && b.Status != f.Status {
			continue
		}
		out = append(out, *b)
	}
	return out, nil
}

func (r *memBookingRepo) ListByCustomer(ctx context.Context, customerID string) ([]models.Booking, error) {
	return r.Find(ctx, models.BookingFilter{CustomerID: customerID})
}

func (r *memBookingRepo) ActiveIDsByCustomer(_ context.Context, customerID string) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := []string{}
	for _, id := range r.order {
		if b, ok := r.items[id]; ok && b.Customer == customerID && b.Active() {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (r *memBookingRepo) DistinctCustomers(_ context.Context) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	seen := map[string]bool{}
	for _, b := range r.items {
		seen[b.Customer] = true
	}
	out := make([]string, 0, len(seen))
	for c := range seen {
		out = append(out, c)
	}
	sort.Strings(out)
	return out, nil
}

func (r *memBookingRepo) UnsetSchedule(_ context.Context, scheduleID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, b := range r.items {
		if b.Schedule == scheduleID {
			b.Schedule = ""
			n++
		}
	}
	return n, nil
}

func (r *memBookingRepo) AppendTracking(_ context.Context, id string, entry models.TrackingEntry) (*models.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.items[id]
	if !ok {
		return nil, utils.NotFound("booking %s not found", id)
	}
	if b.Tracking == nil {
		b.Tracking = &models.Tracking{History: []models.TrackingEntry{}}
	}
	loc := entry.Coordinates
	if entry.Actor == "vendor" {
		b.Tracking.VendorLocation = &loc
	} else {
		b.Tracking.CustomerLocation = &loc
	}
	b.Tracking.History = append(b.Tracking.History, entry)
	cp := *b
	return &cp, nil
}

func (r *memBookingRepo) EnsureIndexes(context.Context) error { return nil }

// memHistory tracks booking_history per customer; unknown customers return NotFound.
type memHistory struct {
	mu      sync.Mutex
	history map[string][]string
	failAdd bool
}

func newMemHistory(customers ...string) *memHistory {
	h := &memHistory{history: map[string][]string{}}
	for _, c := range customers {
		h.history[c] = []string{}
	}
	return h
}

func (h *memHistory) AddBookingRef(_ context.Context, customerID, bookingID string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.failAdd {
		return errors.New("customers unavailable")
	}
	refs, ok := h.history[customerID]
	if !ok {
		return utils.NotFound("customer %s not found", customerID)
	}
	for _, id := range refs {
		if id == bookingID {
			return nil
		}
	}
	h.history[customerID] = append(refs, bookingID)
	return nil
}

func (h *memHistory) RemoveBookingRef(_ context.Context, customerID, bookingID string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	refs, ok := h.history[customerID]
	if !ok {
		return utils.NotFound("customer %s not found", customerID)
	}
	out := []string{}
	for _, id := range refs {
		if id != bookingID {
			out = append(out, id)
		}
	}
	h.history[customerID] = out
	return nil
}

func (h *memHistory) SetBookingHistory(_ context.Context, customerID string, bookingIDs []string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.history[customerID]; !ok {
		return utils.NotFound("customer %s not found", customerID)
	}
	h.history[customerID] = append([]string{}, bookingIDs...)
	return nil
}

func (h *memHistory) of(customerID string) []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.history[customerID]
}

type recordingReleaser struct {
	released []models.BookingSlot
	err      error
}

func (r *recordingReleaser) ReleaseSlot(_ context.Context, _, _ string, slot models.BookingSlot) error {
	if r.err != nil {
		return r.err
	}
	r.released = append(r.released, slot)
	return nil
}

type recordingReminders struct {
	queued []string
	err    error
}

func (r *recordingReminders) ScheduleReminder(_ context.Context, b *models.Booking) error {
	if r.err != nil {
		return r.err
	}
	r.queued = append(r.queued, b.ID)
	return nil
}
