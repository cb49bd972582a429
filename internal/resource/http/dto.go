package http

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/getfittoday/getfit-backend/internal/pkg/request"
	"github.com/getfittoday/getfit-backend/internal/resource"
)

// ListResourcesRequest defines query parameters for listing resources.
type ListResourcesRequest struct {
	request.ListParams
	SportType string `form:"sport_type"`
	Keyword   string `form:"q"`
}

type ResourceResponse struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	LocationName string    `json:"location_name"`
	DisplayName  string    `json:"display_name"`
	SportType    string    `json:"sport_type"`
	IsActive     bool      `json:"is_active"`
	SlotMinutes  int       `json:"slot_minutes"`
	PricePerHour string    `json:"price_per_hour"`
	CreatedAt    time.Time `json:"created_at"`
}

// ResourceTag is a brief representation of a resource embedded in other responses.
type ResourceTag struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func NewResponse(r *resource.Resource) ResourceResponse {
	return ResourceResponse{
		ID:           r.ID,
		Name:         r.Name,
		LocationName: r.LocationName,
		DisplayName:  r.DisplayName(),
		SportType:    r.SportType,
		IsActive:     r.IsActive,
		SlotMinutes:  r.SlotMinutes,
		PricePerHour: r.PricePerHour.StringFixed(2),
		CreatedAt:    r.CreatedAt,
	}
}

type CreateRequest struct {
	Name         string           `json:"name" binding:"required,max=120"`
	LocationName string           `json:"location_name" binding:"max=120"`
	SportType    string           `json:"sport_type" binding:"max=50"`
	SlotMinutes  *int             `json:"slot_minutes" binding:"omitempty,min=1"`
	PricePerHour *decimal.Decimal `json:"price_per_hour"`
	IsActive     *bool            `json:"is_active"`
}

func (r *CreateRequest) ToSpec() resource.Spec {
	return resource.Spec{
		Name:         r.Name,
		LocationName: r.LocationName,
		SportType:    r.SportType,
		SlotMinutes:  r.SlotMinutes,
		PricePerHour: r.PricePerHour,
		IsActive:     r.IsActive,
	}
}

// UpdateRequest edits a resource in place. Omitted fields are left unchanged.
type UpdateRequest struct {
	Name         *string          `json:"name" binding:"omitempty,max=120"`
	LocationName *string          `json:"location_name" binding:"omitempty,max=120"`
	SportType    *string          `json:"sport_type" binding:"omitempty,max=50"`
	SlotMinutes  *int             `json:"slot_minutes" binding:"omitempty,min=1"`
	PricePerHour *decimal.Decimal `json:"price_per_hour"`
	IsActive     *bool            `json:"is_active"`
}

func (r *UpdateRequest) ToPatch() resource.Patch {
	return resource.Patch{
		Name:         r.Name,
		LocationName: r.LocationName,
		SportType:    r.SportType,
		SlotMinutes:  r.SlotMinutes,
		PricePerHour: r.PricePerHour,
		IsActive:     r.IsActive,
	}
}
