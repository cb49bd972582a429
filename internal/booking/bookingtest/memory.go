// Package bookingtest provides an in-memory store for exercising the booking
// service without PostgreSQL.
package bookingtest

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/getfittoday/getfit-backend/internal/booking"
	"github.com/getfittoday/getfit-backend/internal/resource"
)

// Store keeps resources and bookings in memory. Transactions run one at a
// time and are rolled back by restoring a snapshot.
type Store struct {
	txMu sync.Mutex
	mu   sync.Mutex

	resources map[string]resource.Resource
	bookings  map[string]booking.Booking
}

func NewStore() *Store {
	return &Store{
		resources: make(map[string]resource.Resource),
		bookings:  make(map[string]booking.Booking),
	}
}

// Bookings returns a booking.Repository over the store.
func (s *Store) Bookings() booking.Repository { return bookingRepo{s} }

// Resources returns a resource.Repository over the store.
func (s *Store) Resources() resource.Repository { return resourceRepo{s} }

func (s *Store) InTx(ctx context.Context, fn func(tx booking.Tx) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	resources := make(map[string]resource.Resource, len(s.resources))
	for k, v := range s.resources {
		resources[k] = v
	}
	bookings := make(map[string]booking.Booking, len(s.bookings))
	for k, v := range s.bookings {
		bookings[k] = v
	}
	s.mu.Unlock()

	if err := fn(booking.Tx{Bookings: s.Bookings(), Resources: s.Resources()}); err != nil {
		s.mu.Lock()
		s.resources = resources
		s.bookings = bookings
		s.mu.Unlock()
		return err
	}
	return nil
}

// AddResource stores res as is, assigning an id and creation time when missing.
func (s *Store) AddResource(res *resource.Resource) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if res.ID == "" {
		res.ID = uuid.NewString()
	}
	if res.CreatedAt.IsZero() {
		res.CreatedAt = time.Now()
	}
	s.resources[res.ID] = *res
}

// AddBooking stores b without any overlap check.
func (s *Store) AddBooking(b *booking.Booking) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	if b.CreatedAt.IsZero() {
		b.CreatedAt = time.Now()
	}
	s.bookings[b.ID] = *b
}

// ResourceCount returns the number of stored resources.
func (s *Store) ResourceCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.resources)
}

// Booking returns a copy of the stored booking.
func (s *Store) Booking(id string) (booking.Booking, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bookings[id]
	return b, ok
}

type bookingRepo struct{ s *Store }

func (r bookingRepo) Create(_ context.Context, b *booking.Booking) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	res, ok := r.s.resources[b.ResourceID]
	if !ok {
		return resource.ErrNotFound
	}
	// Same rule as the exclusion constraint.
	for _, other := range r.s.bookings {
		if other.ResourceID == b.ResourceID && other.Status.Holds() && other.Slot().Overlaps(b.Slot()) {
			return booking.ErrTimeConflict
		}
	}

	b.ID = uuid.NewString()
	b.CreatedAt = time.Now()
	b.ResourceName = res.DisplayName()
	r.s.bookings[b.ID] = *b
	return nil
}

func (r bookingRepo) GetByID(_ context.Context, id string) (*booking.Booking, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	b, ok := r.s.bookings[id]
	if !ok {
		return nil, booking.ErrNotFound
	}
	if res, ok := r.s.resources[b.ResourceID]; ok {
		b.ResourceName = res.DisplayName()
	}
	return &b, nil
}

func (r bookingRepo) GetByIDForUpdate(ctx context.Context, id string) (*booking.Booking, error) {
	return r.GetByID(ctx, id)
}

func (r bookingRepo) List(_ context.Context, filter booking.Filter) ([]*booking.Booking, int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var all []*booking.Booking
	for _, b := range r.s.bookings {
		if filter.UserID != "" && b.UserID != filter.UserID {
			continue
		}
		if filter.ResourceID != "" && b.ResourceID != filter.ResourceID {
			continue
		}
		if filter.Status != "" && b.Status != filter.Status {
			continue
		}
		if res, ok := r.s.resources[b.ResourceID]; ok {
			b.ResourceName = res.DisplayName()
		}
		all = append(all, &b)
	}

	sort.Slice(all, func(i, j int) bool {
		pi, pj := all[i].Status == booking.StatusPending, all[j].Status == booking.StatusPending
		if pi != pj {
			return pi
		}
		return all[i].StartTime.After(all[j].StartTime)
	})

	page, size := filter.Page, filter.PageSize
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = 20
	}
	from := min((page-1)*size, len(all))
	to := min(from+size, len(all))
	return all[from:to], len(all), nil
}

func (r bookingRepo) UpdateStatus(_ context.Context, id string, status booking.Status) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	b, ok := r.s.bookings[id]
	if !ok {
		return booking.ErrNotFound
	}
	b.Status = status
	r.s.bookings[id] = b
	return nil
}

func (r bookingRepo) ListBusy(_ context.Context, resourceID string, from, to time.Time) ([]booking.TimeSlot, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	window := booking.TimeSlot{StartTime: from, EndTime: to}
	var busy []booking.TimeSlot
	for _, b := range r.s.bookings {
		if b.ResourceID == resourceID && b.Status.Holds() && b.Slot().Overlaps(window) {
			busy = append(busy, b.Slot())
		}
	}
	sort.Slice(busy, func(i, j int) bool { return busy[i].StartTime.Before(busy[j].StartTime) })
	return busy, nil
}

func (r bookingRepo) HasOverlapForUpdate(ctx context.Context, resourceID string, start, end time.Time) (bool, error) {
	busy, err := r.ListBusy(ctx, resourceID, start, end)
	return len(busy) > 0, err
}

type resourceRepo struct{ s *Store }

func (r resourceRepo) Create(_ context.Context, res *resource.Resource) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	res.ID = uuid.NewString()
	res.CreatedAt = time.Now()
	r.s.resources[res.ID] = *res
	return nil
}

func (r resourceRepo) Update(_ context.Context, res *resource.Resource) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.resources[res.ID]; !ok {
		return resource.ErrNotFound
	}
	r.s.resources[res.ID] = *res
	return nil
}

func (r resourceRepo) GetByID(_ context.Context, id string) (*resource.Resource, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	res, ok := r.s.resources[id]
	if !ok {
		return nil, resource.ErrNotFound
	}
	return &res, nil
}

func (r resourceRepo) GetByIDForUpdate(ctx context.Context, id string) (*resource.Resource, error) {
	return r.GetByID(ctx, id)
}

func (r resourceRepo) FindByLabel(_ context.Context, label string) (*resource.Resource, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	key := strings.ToLower(strings.TrimSpace(label))
	var found *resource.Resource
	for _, res := range r.s.resources {
		if !res.IsActive {
			continue
		}
		if strings.ToLower(res.Name) != key && strings.ToLower(res.LocationName) != key {
			continue
		}
		if found == nil || res.CreatedAt.Before(found.CreatedAt) {
			found = &res
		}
	}
	if found == nil {
		return nil, resource.ErrNotFound
	}
	return found, nil
}

// LockLabel is a no-op: transactions already run one at a time.
func (r resourceRepo) LockLabel(context.Context, string) error { return nil }

func (r resourceRepo) List(_ context.Context, filter resource.Filter) ([]*resource.Resource, int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	keyword := strings.ToLower(filter.Keyword)
	var all []*resource.Resource
	for _, res := range r.s.resources {
		if filter.SportType != "" && res.SportType != filter.SportType {
			continue
		}
		if filter.ActiveOnly && !res.IsActive {
			continue
		}
		if keyword != "" &&
			!strings.Contains(strings.ToLower(res.Name), keyword) &&
			!strings.Contains(strings.ToLower(res.LocationName), keyword) {
			continue
		}
		all = append(all, &res)
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].Name != all[j].Name {
			return all[i].Name < all[j].Name
		}
		return all[i].CreatedAt.Before(all[j].CreatedAt)
	})

	page, size := filter.Page, filter.PageSize
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = 20
	}
	from := min((page-1)*size, len(all))
	to := min(from+size, len(all))
	return all[from:to], len(all), nil
}
