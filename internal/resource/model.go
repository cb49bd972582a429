package resource

import (
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"github.com/getfittoday/getfit-backend/internal/pkg/apperror"
)

var (
	ErrNotFound          = apperror.New(http.StatusNotFound, "resource not found")
	ErrEmptyName         = apperror.New(http.StatusBadRequest, "name cannot be empty")
	ErrInvalidSlot       = apperror.New(http.StatusBadRequest, "slot_minutes must be greater than zero")
	ErrNegativePrice     = apperror.New(http.StatusBadRequest, "price_per_hour cannot be negative")
	ErrInvalidIdentifier = apperror.New(http.StatusBadRequest, "invalid resource id")
)

const (
	DefaultSportType   = "other"
	DefaultSlotMinutes = 60

	maxNameLength      = 120
	maxSportTypeLength = 50
)

// Resource represents a bookable unit (e.g., a gym room, a court, a spot).
type Resource struct {
	ID           string
	Name         string
	LocationName string
	SportType    string
	IsActive     bool
	SlotMinutes  int
	PricePerHour decimal.Decimal
	CreatedAt    time.Time
}

// DisplayName is the label shown to users: "<location> - <name>" when a location is set.
func (r *Resource) DisplayName() string {
	if r.LocationName == "" || r.LocationName == r.Name {
		return r.Name
	}
	return r.LocationName + " - " + r.Name
}

// Spec carries the fields used to create a resource.
// Nil fields take their documented defaults: sport type "other",
// 60-minute slots, a price of 0 and an active record.
type Spec struct {
	Name         string
	LocationName string
	SportType    string
	SlotMinutes  *int
	PricePerHour *decimal.Decimal
	IsActive     *bool
}

// Build validates s and returns the resource it describes.
func (s Spec) Build() (*Resource, error) {
	name := NormalizeName(s.Name)
	if name == "" {
		return nil, ErrEmptyName
	}

	res := &Resource{
		Name:         name,
		LocationName: NormalizeName(s.LocationName),
		SportType:    truncate(strings.TrimSpace(s.SportType), maxSportTypeLength),
		IsActive:     true,
		SlotMinutes:  DefaultSlotMinutes,
		PricePerHour: decimal.Zero,
	}
	if res.SportType == "" {
		res.SportType = DefaultSportType
	}
	if s.SlotMinutes != nil {
		if *s.SlotMinutes <= 0 {
			return nil, ErrInvalidSlot
		}
		res.SlotMinutes = *s.SlotMinutes
	}
	if s.PricePerHour != nil {
		if s.PricePerHour.IsNegative() {
			return nil, ErrNegativePrice
		}
		res.PricePerHour = s.PricePerHour.Round(2)
	}
	if s.IsActive != nil {
		res.IsActive = *s.IsActive
	}
	return res, nil
}

// Patch carries admin edits to an existing resource. Nil fields are left unchanged.
type Patch struct {
	Name         *string
	LocationName *string
	SportType    *string
	SlotMinutes  *int
	PricePerHour *decimal.Decimal
	IsActive     *bool
}

// Apply validates p and writes it onto res. res is untouched on error.
func (p Patch) Apply(res *Resource) error {
	next := *res
	if p.Name != nil {
		next.Name = NormalizeName(*p.Name)
		if next.Name == "" {
			return ErrEmptyName
		}
	}
	if p.LocationName != nil {
		next.LocationName = NormalizeName(*p.LocationName)
	}
	if p.SportType != nil {
		next.SportType = truncate(strings.TrimSpace(*p.SportType), maxSportTypeLength)
		if next.SportType == "" {
			next.SportType = DefaultSportType
		}
	}
	if p.SlotMinutes != nil {
		if *p.SlotMinutes <= 0 {
			return ErrInvalidSlot
		}
		next.SlotMinutes = *p.SlotMinutes
	}
	if p.PricePerHour != nil {
		if p.PricePerHour.IsNegative() {
			return ErrNegativePrice
		}
		next.PricePerHour = p.PricePerHour.Round(2)
	}
	if p.IsActive != nil {
		next.IsActive = *p.IsActive
	}
	*res = next
	return nil
}

// Filter defines parameters for listing resources.
type Filter struct {
	SportType  string
	Keyword    string // matched against name and location name
	ActiveOnly bool
	Page       int
	PageSize   int
}

// NormalizeName trims s and cuts it to the stored name length.
func NormalizeName(s string) string {
	return strings.TrimSpace(truncate(strings.TrimSpace(s), maxNameLength))
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
