package booking

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var jakarta = mustLoad("Asia/Jakarta")

func mustLoad(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		panic(err)
	}
	return loc
}

func at(hour, minute int) time.Time {
	return time.Date(2030, 1, 15, hour, minute, 0, 0, jakarta)
}

func slot(h1, m1, h2, m2 int) TimeSlot {
	return TimeSlot{StartTime: at(h1, m1), EndTime: at(h2, m2)}
}

func TestFreeWindows(t *testing.T) {
	window := slot(10, 0, 20, 0)

	tests := []struct {
		name string
		busy []TimeSlot
		want []TimeSlot
	}{
		{
			name: "no bookings",
			want: []TimeSlot{window},
		},
		{
			name: "single booking in the middle",
			busy: []TimeSlot{slot(12, 0, 13, 0)},
			want: []TimeSlot{slot(10, 0, 12, 0), slot(13, 0, 20, 0)},
		},
		{
			name: "booking at open",
			busy: []TimeSlot{slot(10, 0, 11, 0)},
			want: []TimeSlot{slot(11, 0, 20, 0)},
		},
		{
			name: "booking straddling close is clipped",
			busy: []TimeSlot{slot(19, 0, 21, 0)},
			want: []TimeSlot{slot(10, 0, 19, 0)},
		},
		{
			name: "booking starting before open is clipped",
			busy: []TimeSlot{slot(8, 0, 10, 30)},
			want: []TimeSlot{slot(10, 30, 20, 0)},
		},
		{
			name: "unsorted and overlapping bookings",
			busy: []TimeSlot{slot(15, 0, 16, 0), slot(11, 0, 12, 30), slot(12, 0, 13, 0)},
			want: []TimeSlot{slot(10, 0, 11, 0), slot(13, 0, 15, 0), slot(16, 0, 20, 0)},
		},
		{
			name: "back to back bookings leave no gap",
			busy: []TimeSlot{slot(11, 0, 12, 0), slot(12, 0, 13, 0)},
			want: []TimeSlot{slot(10, 0, 11, 0), slot(13, 0, 20, 0)},
		},
		{
			name: "fully booked",
			busy: []TimeSlot{slot(9, 0, 21, 0)},
			want: []TimeSlot{},
		},
		{
			name: "booking outside the window is ignored",
			busy: []TimeSlot{slot(6, 0, 9, 0), slot(20, 0, 22, 0)},
			want: []TimeSlot{window},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FreeWindows(window, tt.busy)
			assert.ElementsMatch(t, tt.want, got)
			for i := 1; i < len(got); i++ {
				assert.True(t, got[i-1].EndTime.Before(got[i].StartTime) || got[i-1].EndTime.Equal(got[i].StartTime))
			}
		})
	}
}

func TestCalculateAvailabilityEmptyDay(t *testing.T) {
	slots := CalculateAvailability(slot(10, 0, 20, 0), nil, 15*time.Minute)

	require.Len(t, slots, 40)
	assert.Equal(t, at(10, 0), slots[0].StartTime)
	assert.Equal(t, at(10, 15), slots[0].EndTime)
	assert.Equal(t, at(19, 45), slots[39].StartTime)
	assert.Equal(t, at(20, 0), slots[39].EndTime)
}

func TestCalculateAvailabilityWithBooking(t *testing.T) {
	busy := []TimeSlot{slot(12, 0, 13, 0)}
	slots := CalculateAvailability(slot(10, 0, 20, 0), busy, 15*time.Minute)

	require.Len(t, slots, 36)
	for _, s := range slots {
		assert.False(t, s.Overlaps(busy[0]), "slot %v overlaps booking", s)
	}
	assert.Contains(t, slots, slot(11, 45, 12, 0))
	assert.Contains(t, slots, slot(13, 0, 13, 15))
}

func TestSplitSlotsDropsShortRemainder(t *testing.T) {
	slots := SplitSlots([]TimeSlot{slot(10, 0, 10, 40)}, 15*time.Minute)
	assert.Equal(t, []TimeSlot{slot(10, 0, 10, 15), slot(10, 15, 10, 30)}, slots)

	assert.Nil(t, SplitSlots([]TimeSlot{slot(10, 0, 11, 0)}, 0))
}

// Free windows together with the clipped busy windows cover the whole day
// exactly once.
func TestFreeWindowsComplement(t *testing.T) {
	window := slot(10, 0, 20, 0)
	busy := []TimeSlot{slot(9, 30, 10, 45), slot(13, 10, 14, 0), slot(13, 30, 15, 5), slot(19, 50, 20, 30)}

	free := FreeWindows(window, busy)

	for minute := at(10, 0); minute.Before(at(20, 0)); minute = minute.Add(time.Minute) {
		point := TimeSlot{StartTime: minute, EndTime: minute.Add(time.Minute)}
		inFree := 0
		for _, f := range free {
			if f.Overlaps(point) {
				inFree++
			}
		}
		inBusy := false
		for _, b := range busy {
			if b.Overlaps(point) {
				inBusy = true
			}
		}
		if inBusy {
			assert.Zero(t, inFree, "minute %s is busy", minute.Format(time.Kitchen))
		} else {
			assert.Equal(t, 1, inFree, "minute %s is free", minute.Format(time.Kitchen))
		}
	}
}

func TestBusinessHours(t *testing.T) {
	h, err := NewBusinessHours(jakarta, "10:00", "20:00:00", 15*time.Minute)
	require.NoError(t, err)

	day, err := h.ParseDate("2030-01-15")
	require.NoError(t, err)
	assert.Equal(t, slot(10, 0, 20, 0), h.Window(day))

	_, err = h.ParseDate("15/01/2030")
	assert.Error(t, err)

	_, err = NewBusinessHours(jakarta, "20:00", "10:00", 15*time.Minute)
	assert.Error(t, err)
	_, err = NewBusinessHours(jakarta, "10:00", "20:00", 0)
	assert.Error(t, err)
	_, err = NewBusinessHours(jakarta, "ten", "20:00", time.Minute)
	assert.Error(t, err)
}

func TestCalculatePrice(t *testing.T) {
	tests := []struct {
		name  string
		price string
		start time.Time
		end   time.Time
		want  string
	}{
		{"one hour", "100", at(10, 0), at(11, 0), "100.00"},
		{"ninety minutes", "100", at(10, 0), at(11, 30), "150.00"},
		{"rounded", "10", at(10, 0), at(10, 20), "3.33"},
		{"free", "0", at(10, 0), at(12, 0), "0.00"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CalculatePrice(decimalFrom(t, tt.price), tt.start, tt.end)
			assert.Equal(t, tt.want, got.StringFixed(2))
		})
	}
}

func TestBookingCancellable(t *testing.T) {
	now := at(12, 0)
	future := &Booking{StartTime: at(13, 0), EndTime: at(14, 0), Status: StatusConfirmed}
	assert.True(t, future.Cancellable(now))

	started := &Booking{StartTime: at(12, 0), EndTime: at(13, 0), Status: StatusConfirmed}
	assert.False(t, started.Cancellable(now))

	cancelled := &Booking{StartTime: at(13, 0), EndTime: at(14, 0), Status: StatusCancelled}
	assert.False(t, cancelled.Cancellable(now))

	pending := &Booking{StartTime: at(13, 0), EndTime: at(14, 0), Status: StatusPending}
	assert.True(t, pending.Cancellable(now))
}

func decimalFrom(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	require.NoError(t, err)
	return d
}
