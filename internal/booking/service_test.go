package booking_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/getfittoday/getfit-backend/internal/auth"
	"github.com/getfittoday/getfit-backend/internal/booking"
	"github.com/getfittoday/getfit-backend/internal/booking/bookingtest"
	"github.com/getfittoday/getfit-backend/internal/pkg/apperror"
	"github.com/getfittoday/getfit-backend/internal/pkg/logger"
	"github.com/getfittoday/getfit-backend/internal/resource"
)

type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time { return c.now }

var (
	jakarta, _ = time.LoadLocation("Asia/Jakarta")
	now        = time.Date(2030, 1, 14, 9, 0, 0, 0, jakarta)

	alice = auth.Principal{UserID: "11111111-1111-1111-1111-111111111111", Role: auth.RoleUser}
	bob   = auth.Principal{UserID: "22222222-2222-2222-2222-222222222222", Role: auth.RoleUser}
	admin = auth.Principal{UserID: "33333333-3333-3333-3333-333333333333", Role: auth.RoleAdmin}
)

func onDay(hour, minute int) time.Time {
	return time.Date(2030, 1, 15, hour, minute, 0, 0, jakarta)
}

type fixture struct {
	store   *bookingtest.Store
	service booking.Service
	court   *resource.Resource
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	hours, err := booking.NewBusinessHours(jakarta, "10:00", "20:00", 15*time.Minute)
	require.NoError(t, err)

	store := bookingtest.NewStore()
	court := &resource.Resource{
		Name:         "Court A",
		LocationName: "Senayan",
		SportType:    "tennis",
		IsActive:     true,
		SlotMinutes:  60,
		PricePerHour: decimal.NewFromInt(100),
	}
	store.AddResource(court)

	svc := booking.NewService(booking.Deps{
		Repo:       store.Bookings(),
		Resources:  store.Resources(),
		Transactor: store,
		Hours:      hours,
		Clock:      fixedClock{now: now},
		Logger:     logger.Nop(),
	})
	return &fixture{store: store, service: svc, court: court}
}

func (f *fixture) book(t *testing.T, p auth.Principal, start, end time.Time) *booking.Booking {
	t.Helper()
	b, err := f.service.Create(context.Background(), p, booking.CreateRequest{
		ResourceID: f.court.ID,
		StartTime:  start,
		EndTime:    end,
	})
	require.NoError(t, err)
	return b
}

func TestCreateBooking(t *testing.T) {
	f := newFixture(t)

	b, err := f.service.Create(context.Background(), alice, booking.CreateRequest{
		ResourceID: f.court.ID,
		StartTime:  onDay(10, 0),
		EndTime:    onDay(11, 0),
		Notes:      "  bring rackets ",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, b.ID)
	assert.Equal(t, booking.StatusConfirmed, b.Status)
	assert.Equal(t, "100.00", b.Price.StringFixed(2))
	assert.Equal(t, alice.UserID, b.UserID)
	assert.Equal(t, "bring rackets", b.Notes)
	assert.Equal(t, "Senayan - Court A", b.ResourceName)

	stored, ok := f.store.Booking(b.ID)
	require.True(t, ok)
	assert.Equal(t, booking.StatusConfirmed, stored.Status)
}

func TestCreateBookingValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		req     booking.CreateRequest
		wantErr error
	}{
		{
			name:    "end equals start",
			req:     booking.CreateRequest{ResourceID: f.court.ID, StartTime: onDay(10, 0), EndTime: onDay(10, 0)},
			wantErr: booking.ErrInvalidTimeRange,
		},
		{
			name:    "end before start",
			req:     booking.CreateRequest{ResourceID: f.court.ID, StartTime: onDay(11, 0), EndTime: onDay(10, 0)},
			wantErr: booking.ErrInvalidTimeRange,
		},
		{
			name:    "start in the past",
			req:     booking.CreateRequest{ResourceID: f.court.ID, StartTime: now.Add(-time.Hour), EndTime: now.Add(time.Hour)},
			wantErr: booking.ErrStartTimePast,
		},
		{
			name:    "start exactly now",
			req:     booking.CreateRequest{ResourceID: f.court.ID, StartTime: now, EndTime: now.Add(time.Hour)},
			wantErr: booking.ErrStartTimePast,
		},
		{
			name:    "unknown resource without label",
			req:     booking.CreateRequest{ResourceID: "99999999-9999-9999-9999-999999999999", StartTime: onDay(10, 0), EndTime: onDay(11, 0)},
			wantErr: booking.ErrResourceNotFound,
		},
		{
			name:    "nothing to resolve",
			req:     booking.CreateRequest{StartTime: onDay(10, 0), EndTime: onDay(11, 0)},
			wantErr: booking.ErrResourceNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.service.Create(ctx, alice, tt.req)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
	assert.Equal(t, 1, f.store.ResourceCount())
}

func TestCreateBookingConflict(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.book(t, alice, onDay(10, 0), onDay(11, 0))

	_, err := f.service.Create(ctx, bob, booking.CreateRequest{
		ResourceID: f.court.ID,
		StartTime:  onDay(10, 30),
		EndTime:    onDay(11, 30),
	})
	assert.ErrorIs(t, err, booking.ErrTimeConflict)

	// Half-open ranges: touching is not overlapping.
	b := f.book(t, bob, onDay(11, 0), onDay(12, 0))
	assert.Equal(t, booking.StatusConfirmed, b.Status)
}

func TestCreateBookingIgnoresCancelledBookings(t *testing.T) {
	f := newFixture(t)
	f.store.AddBooking(&booking.Booking{
		UserID: bob.UserID, ResourceID: f.court.ID,
		StartTime: onDay(10, 0), EndTime: onDay(11, 0),
		Status: booking.StatusCancelled,
	})

	b := f.book(t, alice, onDay(10, 0), onDay(11, 0))
	assert.Equal(t, booking.StatusConfirmed, b.Status)
}

func TestCreateBookingByLabel(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	b, err := f.service.Create(ctx, alice, booking.CreateRequest{
		ResourceLabel: "court a",
		StartTime:     onDay(10, 0),
		EndTime:       onDay(11, 0),
	})
	require.NoError(t, err)
	assert.Equal(t, f.court.ID, b.ResourceID)
	assert.Equal(t, 1, f.store.ResourceCount())
}

func TestCreateBookingProvisionsResourceFromLabel(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	b, err := f.service.Create(ctx, alice, booking.CreateRequest{
		ResourceLabel: "Rooftop Studio",
		StartTime:     onDay(10, 0),
		EndTime:       onDay(11, 30),
	})
	require.NoError(t, err)
	assert.Equal(t, 2, f.store.ResourceCount())
	assert.Equal(t, "0.00", b.Price.StringFixed(2))

	res, err := f.store.Resources().GetByID(ctx, b.ResourceID)
	require.NoError(t, err)
	assert.Equal(t, "Rooftop Studio", res.Name)
	assert.Equal(t, resource.DefaultSportType, res.SportType)
	assert.Equal(t, resource.DefaultSlotMinutes, res.SlotMinutes)
	assert.True(t, res.IsActive)

	// The same label resolves to the provisioned resource.
	b2, err := f.service.Create(ctx, bob, booking.CreateRequest{
		ResourceLabel: "rooftop studio",
		StartTime:     onDay(12, 0),
		EndTime:       onDay(13, 0),
	})
	require.NoError(t, err)
	assert.Equal(t, b.ResourceID, b2.ResourceID)
	assert.Equal(t, 2, f.store.ResourceCount())
}

func TestCreateBookingSkipsInactiveResource(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	inactive := &resource.Resource{Name: "Old Hall", IsActive: false, SlotMinutes: 60}
	f.store.AddResource(inactive)

	_, err := f.service.Create(ctx, alice, booking.CreateRequest{
		ResourceID: inactive.ID,
		StartTime:  onDay(10, 0),
		EndTime:    onDay(11, 0),
	})
	assert.ErrorIs(t, err, booking.ErrResourceNotFound)

	// Availability still answers for it.
	slots, err := f.service.Availability(ctx, booking.AvailabilityQuery{Resource: inactive.ID, Date: "2030-01-15"})
	require.NoError(t, err)
	assert.Len(t, slots, 40)
}

func TestCreateBookingRollsBackOnFailure(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	err := f.store.InTx(ctx, func(tx booking.Tx) error {
		res, err := resource.Spec{Name: "Temp"}.Build()
		require.NoError(t, err)
		require.NoError(t, tx.Resources.Create(ctx, res))
		return booking.ErrTimeConflict
	})
	assert.ErrorIs(t, err, booking.ErrTimeConflict)
	assert.Equal(t, 1, f.store.ResourceCount())
}

func TestCreateBookingConcurrent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	const workers = 16
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		conflicts int
	)
	for i := range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			// Every request overlaps every other one.
			_, err := f.service.Create(ctx, alice, booking.CreateRequest{
				ResourceID: f.court.ID,
				StartTime:  onDay(14, i%4*5),
				EndTime:    onDay(15, 0),
			})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				succeeded++
			case errors.Is(err, booking.ErrTimeConflict):
				conflicts++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, succeeded)
	assert.Equal(t, workers-1, conflicts)

	busy, err := f.store.Bookings().ListBusy(ctx, f.court.ID, onDay(0, 0), onDay(23, 0))
	require.NoError(t, err)
	assert.Len(t, busy, 1)
}

func TestCancelBooking(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	b := f.book(t, alice, onDay(10, 0), onDay(11, 0))

	got, err := f.service.Cancel(ctx, alice, b.ID)
	require.NoError(t, err)
	assert.Equal(t, booking.StatusCancelled, got.Status)

	// Cancelling again reports the same state.
	got, err = f.service.Cancel(ctx, alice, b.ID)
	require.NoError(t, err)
	assert.Equal(t, booking.StatusCancelled, got.Status)

	// The slot is free again.
	f.book(t, bob, onDay(10, 0), onDay(11, 0))
}

func TestCancelBookingPermissions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	b := f.book(t, alice, onDay(10, 0), onDay(11, 0))

	_, err := f.service.Cancel(ctx, bob, b.ID)
	assert.ErrorIs(t, err, booking.ErrPermissionDenied)
	stored, _ := f.store.Booking(b.ID)
	assert.Equal(t, booking.StatusConfirmed, stored.Status)

	got, err := f.service.Cancel(ctx, admin, b.ID)
	require.NoError(t, err)
	assert.Equal(t, booking.StatusCancelled, got.Status)
}

func TestCancelBookingNotFound(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.service.Cancel(ctx, alice, "99999999-9999-9999-9999-999999999999")
	assert.ErrorIs(t, err, booking.ErrNotFound)

	_, err = f.service.Cancel(ctx, alice, "not-a-uuid")
	assert.ErrorIs(t, err, booking.ErrNotFound)
}

func TestCancelPastBookingIsNoop(t *testing.T) {
	f := newFixture(t)
	past := &booking.Booking{
		UserID: alice.UserID, ResourceID: f.court.ID,
		StartTime: now.Add(-2 * time.Hour), EndTime: now.Add(-time.Hour),
		Status: booking.StatusConfirmed,
	}
	f.store.AddBooking(past)

	got, err := f.service.Cancel(context.Background(), alice, past.ID)
	require.NoError(t, err)
	assert.Equal(t, booking.StatusConfirmed, got.Status)
}

func TestAvailability(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.book(t, alice, onDay(12, 0), onDay(13, 0))

	slots, err := f.service.Availability(ctx, booking.AvailabilityQuery{Resource: f.court.ID, Date: "2030-01-15"})
	require.NoError(t, err)
	require.Len(t, slots, 36)
	assert.Equal(t, onDay(10, 0), slots[0].StartTime)
	for _, s := range slots {
		assert.False(t, s.Overlaps(booking.TimeSlot{StartTime: onDay(12, 0), EndTime: onDay(13, 0)}))
	}

	// By label, on a day without bookings.
	slots, err = f.service.Availability(ctx, booking.AvailabilityQuery{Resource: "SENAYAN", Date: "2030-01-16"})
	require.NoError(t, err)
	assert.Len(t, slots, 40)

	// The optional label is tried after the resource reference.
	slots, err = f.service.Availability(ctx, booking.AvailabilityQuery{Resource: "unknown", Label: "Court A", Date: "2030-01-16"})
	require.NoError(t, err)
	assert.Len(t, slots, 40)
}

func TestAvailabilityErrors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		query   booking.AvailabilityQuery
		wantErr error
	}{
		{"missing resource", booking.AvailabilityQuery{Date: "2030-01-15"}, booking.ErrMissingParameter},
		{"missing date", booking.AvailabilityQuery{Resource: f.court.ID}, booking.ErrMissingParameter},
		{"bad date", booking.AvailabilityQuery{Resource: f.court.ID, Date: "2030-13-45"}, booking.ErrInvalidDate},
		{"unknown resource", booking.AvailabilityQuery{Resource: "nowhere", Date: "2030-01-15"}, booking.ErrResourceNotFound},
		{"unknown id", booking.AvailabilityQuery{Resource: "99999999-9999-9999-9999-999999999999", Date: "2030-01-15"}, booking.ErrResourceNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.service.Availability(ctx, tt.query)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestListMine(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	early := f.book(t, alice, onDay(10, 0), onDay(11, 0))
	late := f.book(t, alice, onDay(15, 0), onDay(16, 0))
	f.book(t, bob, onDay(12, 0), onDay(13, 0))
	_, err := f.service.Cancel(ctx, alice, early.ID)
	require.NoError(t, err)

	items, total, err := f.service.ListMine(ctx, alice, booking.Filter{})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	require.Len(t, items, 2)
	assert.Equal(t, late.ID, items[0].ID)
	assert.True(t, items[0].CanCancel)
	assert.Equal(t, early.ID, items[1].ID)
	assert.False(t, items[1].CanCancel)

	// A regular user cannot widen the filter to someone else.
	items, total, err = f.service.ListMine(ctx, alice, booking.Filter{UserID: bob.UserID})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	for _, it := range items {
		assert.Equal(t, alice.UserID, it.UserID)
	}

	_, total, err = f.service.ListMine(ctx, admin, booking.Filter{})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
}

// deactivatingTx deactivates every resource the moment its row lock is
// taken, as if an admin had done so just before.
type deactivatingTx struct{ store *bookingtest.Store }

func (d deactivatingTx) InTx(ctx context.Context, fn func(tx booking.Tx) error) error {
	return d.store.InTx(ctx, func(tx booking.Tx) error {
		tx.Resources = deactivateOnLock{tx.Resources}
		return fn(tx)
	})
}

type deactivateOnLock struct{ resource.Repository }

func (r deactivateOnLock) GetByIDForUpdate(ctx context.Context, id string) (*resource.Resource, error) {
	res, err := r.Repository.GetByIDForUpdate(ctx, id)
	if err != nil {
		return nil, err
	}
	res.IsActive = false
	return res, nil
}

func TestCreateBookingRechecksActiveUnderLock(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	hours, err := booking.NewBusinessHours(jakarta, "10:00", "20:00", 15*time.Minute)
	require.NoError(t, err)
	svc := booking.NewService(booking.Deps{
		Repo:       f.store.Bookings(),
		Resources:  f.store.Resources(),
		Transactor: deactivatingTx{f.store},
		Hours:      hours,
		Clock:      fixedClock{now: now},
		Logger:     logger.Nop(),
	})

	for _, req := range []booking.CreateRequest{
		{ResourceID: f.court.ID, StartTime: onDay(10, 0), EndTime: onDay(11, 0)},
		{ResourceLabel: "Court A", StartTime: onDay(10, 0), EndTime: onDay(11, 0)},
	} {
		_, err := svc.Create(ctx, alice, req)
		assert.ErrorIs(t, err, booking.ErrResourceNotFound)
	}

	_, total, err := f.service.ListMine(ctx, admin, booking.Filter{})
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Equal(t, 1, f.store.ResourceCount())
}

func TestCreateBookingLongLabelProvisionsOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	label := strings.Repeat("Hall ", 30)

	first, err := f.service.Create(ctx, alice, booking.CreateRequest{
		ResourceLabel: label,
		StartTime:     onDay(10, 0),
		EndTime:       onDay(11, 0),
	})
	require.NoError(t, err)

	second, err := f.service.Create(ctx, bob, booking.CreateRequest{
		ResourceLabel: label,
		StartTime:     onDay(11, 0),
		EndTime:       onDay(12, 0),
	})
	require.NoError(t, err)

	assert.Equal(t, first.ResourceID, second.ResourceID)
	assert.Equal(t, 2, f.store.ResourceCount())
}

// failingBookings fails every read of busy ranges.
type failingBookings struct{ booking.Repository }

func (failingBookings) ListBusy(context.Context, string, time.Time, time.Time) ([]booking.TimeSlot, error) {
	return nil, errors.New("connection reset")
}

func TestAvailabilityStorageFailure(t *testing.T) {
	f := newFixture(t)

	hours, err := booking.NewBusinessHours(jakarta, "10:00", "20:00", 15*time.Minute)
	require.NoError(t, err)
	svc := booking.NewService(booking.Deps{
		Repo:       failingBookings{f.store.Bookings()},
		Resources:  f.store.Resources(),
		Transactor: f.store,
		Hours:      hours,
		Clock:      fixedClock{now: now},
		Logger:     logger.Nop(),
	})

	_, err = svc.Availability(context.Background(), booking.AvailabilityQuery{Resource: f.court.ID, Date: "2030-01-15"})
	require.ErrorIs(t, err, booking.ErrAvailability)
	appErr, ok := apperror.As(err)
	require.True(t, ok)
	assert.Equal(t, "availability failed", appErr.Message)
}
