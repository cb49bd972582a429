package http

import (
	"strings"
	"time"

	"github.com/getfittoday/getfit-backend/internal/booking"
	"github.com/getfittoday/getfit-backend/internal/pkg/request"
	resHttp "github.com/getfittoday/getfit-backend/internal/resource/http"
)

// AvailabilityRequest defines query parameters for GET /booking/availability.
type AvailabilityRequest struct {
	Resource string `form:"resource"`
	Label    string `form:"label"`
	Date     string `form:"date"`
}

type SlotResponse struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

func NewSlotResponses(slots []booking.TimeSlot) []SlotResponse {
	out := make([]SlotResponse, len(slots))
	for i, s := range slots {
		out[i] = SlotResponse{Start: s.StartTime, End: s.EndTime}
	}
	return out
}

// CreateBookingRequest is the body of POST /booking/book.
// Times are kept as strings so a malformed value maps to "bad datetime".
type CreateBookingRequest struct {
	ResourceID    string `json:"resource_id"`
	ResourceLabel string `json:"resource_label" binding:"max=120"`
	StartTime     string `json:"start_time"`
	EndTime       string `json:"end_time"`
	Notes         string `json:"notes" binding:"max=2000"`
}

type CreateBookingResponse struct {
	ID string `json:"id"`
}

type CancelBookingResponse struct {
	Status string `json:"status"`
}

// ListBookingsRequest defines query parameters for GET /booking/mine.
type ListBookingsRequest struct {
	request.ListParams
	Status string `form:"status" binding:"omitempty,oneof=pending confirmed cancelled expired"`
}

type BookingResponse struct {
	ID        string              `json:"id"`
	Resource  resHttp.ResourceTag `json:"resource"`
	PlaceName string              `json:"place_name"`
	UserID    string              `json:"user_id"`
	Start     time.Time           `json:"start"`
	End       time.Time           `json:"end"`
	Status    string              `json:"status"`
	Price     string              `json:"price"`
	Notes     string              `json:"notes"`
	CanCancel bool                `json:"can_cancel"`
	CreatedAt time.Time           `json:"created_at"`
}

func NewBookingResponse(l booking.Listing, loc *time.Location) BookingResponse {
	return BookingResponse{
		ID:        l.ID,
		Resource:  resHttp.ResourceTag{ID: l.ResourceID, Name: l.ResourceName},
		PlaceName: l.ResourceName,
		UserID:    l.UserID,
		Start:     l.StartTime.In(loc),
		End:       l.EndTime.In(loc),
		Status:    string(l.Status),
		Price:     l.Price.StringFixed(2),
		Notes:     l.Notes,
		CanCancel: l.CanCancel,
		CreatedAt: l.CreatedAt,
	}
}

var naiveLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

// parseTimestamp accepts RFC 3339 timestamps. Values without a zone offset are read as UTC.
func parseTimestamp(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, true
	}
	for _, layout := range naiveLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
