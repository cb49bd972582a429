package booking

import (
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/getfittoday/getfit-backend/internal/pkg/apperror"
)

var (
	ErrNotFound         = apperror.New(http.StatusNotFound, "booking not found")
	ErrMissingParameter = apperror.New(http.StatusBadRequest, "missing resource/date")
	ErrInvalidDate      = apperror.New(http.StatusBadRequest, "bad date")
	ErrInvalidTimeRange = apperror.New(http.StatusBadRequest, "end_time must be after start_time")
	ErrStartTimePast    = apperror.New(http.StatusBadRequest, "start time has already passed, pick another time")
	ErrResourceNotFound = apperror.New(http.StatusBadRequest, "resource not found")
	ErrTimeConflict     = apperror.New(http.StatusConflict, "time conflict")
	ErrPermissionDenied = apperror.New(http.StatusForbidden, "permission denied")
	ErrPersistence      = apperror.New(http.StatusInternalServerError, "booking failed")
	ErrAvailability     = apperror.New(http.StatusInternalServerError, "availability failed")
	ErrCancelFailed     = apperror.New(http.StatusInternalServerError, "cancel failed")
	ErrListFailed       = apperror.New(http.StatusInternalServerError, "failed to list bookings")
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
	StatusExpired   Status = "expired"
)

// Holds reports whether a booking in this status occupies its time range.
func (s Status) Holds() bool {
	return s == StatusPending || s == StatusConfirmed
}

// holdingStatuses lists the statuses that take part in conflict detection.
var holdingStatuses = []string{string(StatusPending), string(StatusConfirmed)}

type Booking struct {
	ID           string
	UserID       string
	ResourceID   string
	ResourceName string
	StartTime    time.Time
	EndTime      time.Time
	Status       Status
	Price        decimal.Decimal
	Notes        string
	CreatedAt    time.Time
}

// Cancellable reports whether the booking may still move to cancelled at now.
func (b *Booking) Cancellable(now time.Time) bool {
	return b.StartTime.After(now) && b.Status.Holds()
}

// Slot returns the booked time range.
func (b *Booking) Slot() TimeSlot {
	return TimeSlot{StartTime: b.StartTime, EndTime: b.EndTime}
}

type Filter struct {
	UserID     string // empty means every user
	ResourceID string
	Status     Status
	Page       int
	PageSize   int
}

// Clock supplies the current time.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// CalculatePrice charges pricePerHour pro rata for the length of [start, end),
// rounded to two decimal places.
func CalculatePrice(pricePerHour decimal.Decimal, start, end time.Time) decimal.Decimal {
	seconds := decimal.NewFromInt(int64(end.Sub(start) / time.Second))
	return pricePerHour.Mul(seconds).Div(decimal.NewFromInt(3600)).Round(2)
}
