package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/getfittoday/getfit-backend/internal/auth"
	"github.com/getfittoday/getfit-backend/internal/booking"
	"github.com/getfittoday/getfit-backend/internal/pkg/request"
	"github.com/getfittoday/getfit-backend/internal/pkg/response"
)

type Handler struct {
	service  booking.Service
	location *time.Location
}

// NewHandler creates the booking handler. Times in list responses are rendered in loc.
func NewHandler(service booking.Service, loc *time.Location) *Handler {
	if loc == nil {
		loc = time.UTC
	}
	return &Handler{service: service, location: loc}
}

// Availability returns the free slots of a resource on a calendar date.
func (h *Handler) Availability(c *gin.Context) {
	var req AvailabilityRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.Detail(c, booking.ErrMissingParameter, "")
		return
	}

	slots, err := h.service.Availability(c.Request.Context(), booking.AvailabilityQuery{
		Resource: req.Resource,
		Label:    req.Label,
		Date:     req.Date,
	})
	if err != nil {
		response.Detail(c, err, "availability failed")
		return
	}

	c.JSON(http.StatusOK, NewSlotResponses(slots))
}

// Create books a resource for the authenticated user.
func (h *Handler) Create(c *gin.Context) {
	p, ok := auth.GetPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.DetailResponse{Detail: "unauthorized"})
		return
	}

	var body CreateBookingRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, response.DetailResponse{Detail: "invalid request body"})
		return
	}

	start, okStart := parseTimestamp(body.StartTime)
	end, okEnd := parseTimestamp(body.EndTime)
	if !okStart || !okEnd {
		c.JSON(http.StatusBadRequest, response.DetailResponse{Detail: "bad datetime"})
		return
	}

	b, err := h.service.Create(c.Request.Context(), p, booking.CreateRequest{
		ResourceID:    body.ResourceID,
		ResourceLabel: body.ResourceLabel,
		StartTime:     start,
		EndTime:       end,
		Notes:         body.Notes,
	})
	if err != nil {
		response.Detail(c, err, "booking failed")
		return
	}

	c.JSON(http.StatusCreated, CreateBookingResponse{ID: b.ID})
}

// Cancel cancels a booking if it is still upcoming and active.
// The current status is returned either way.
func (h *Handler) Cancel(c *gin.Context) {
	p, ok := auth.GetPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.DetailResponse{Detail: "unauthorized"})
		return
	}

	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, response.DetailResponse{Detail: "invalid booking id"})
		return
	}

	b, err := h.service.Cancel(c.Request.Context(), p, uri.ID)
	if err != nil {
		response.Detail(c, err, "cancel failed")
		return
	}

	c.JSON(http.StatusOK, CancelBookingResponse{Status: string(b.Status)})
}

// Mine lists the caller's bookings, or every booking for admins.
func (h *Handler) Mine(c *gin.Context) {
	p, ok := auth.GetPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.DetailResponse{Detail: "unauthorized"})
		return
	}

	var req ListBookingsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.DetailResponse{Detail: "invalid query parameters"})
		return
	}
	req.Normalize()

	items, total, err := h.service.ListMine(c.Request.Context(), p, booking.Filter{
		Status:   booking.Status(req.Status),
		Page:     req.Page,
		PageSize: req.PageSize,
	})
	if err != nil {
		response.Detail(c, err, "failed to list bookings")
		return
	}

	out := make([]BookingResponse, len(items))
	for i, l := range items {
		out[i] = NewBookingResponse(l, h.location)
	}

	c.JSON(http.StatusOK, response.NewPageResponse(out, req.Page, req.PageSize, total))
}
