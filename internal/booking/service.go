package booking

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/getfittoday/getfit-backend/internal/auth"
	"github.com/getfittoday/getfit-backend/internal/pkg/apperror"
	"github.com/getfittoday/getfit-backend/internal/resource"
)

// AvailabilityQuery selects the resource and day to compute slots for.
// Resource is an id or a label; Label is an optional second label to try.
type AvailabilityQuery struct {
	Resource string
	Label    string
	Date     string // YYYY-MM-DD
}

type CreateRequest struct {
	ResourceID    string
	ResourceLabel string
	StartTime     time.Time
	EndTime       time.Time
	Notes         string
}

// Listing is a booking as shown in a user's booking list.
type Listing struct {
	*Booking
	CanCancel bool
}

type Service interface {
	Availability(ctx context.Context, q AvailabilityQuery) ([]TimeSlot, error)
	Create(ctx context.Context, p auth.Principal, req CreateRequest) (*Booking, error)
	Cancel(ctx context.Context, p auth.Principal, id string) (*Booking, error)
	ListMine(ctx context.Context, p auth.Principal, filter Filter) ([]Listing, int, error)
}

// Deps wires a Service. Clock and Logger are optional.
type Deps struct {
	Repo       Repository
	Resources  resource.Repository
	Transactor Transactor
	Hours      BusinessHours
	Clock      Clock
	Logger     *slog.Logger
}

type service struct {
	repo      Repository
	resources resource.Repository
	tx        Transactor
	hours     BusinessHours
	clock     Clock
	log       *slog.Logger
}

func NewService(d Deps) Service {
	s := &service{
		repo:      d.Repo,
		resources: d.Resources,
		tx:        d.Transactor,
		hours:     d.Hours,
		clock:     d.Clock,
		log:       d.Logger,
	}
	if s.clock == nil {
		s.clock = systemClock{}
	}
	if s.log == nil {
		s.log = slog.Default()
	}
	return s
}

func (s *service) Availability(ctx context.Context, q AvailabilityQuery) ([]TimeSlot, error) {
	ref := strings.TrimSpace(q.Resource)
	if ref == "" || strings.TrimSpace(q.Date) == "" {
		return nil, ErrMissingParameter
	}

	day, err := s.hours.ParseDate(strings.TrimSpace(q.Date))
	if err != nil {
		return nil, ErrInvalidDate
	}

	res, err := lookupResource(ctx, s.resources, ref, q.Label, false)
	if err != nil {
		return nil, s.classify(ctx, ErrAvailability, "availability", err)
	}

	window := s.hours.Window(day)
	busy, err := s.repo.ListBusy(ctx, res.ID, window.StartTime, window.EndTime)
	if err != nil {
		return nil, s.classify(ctx, ErrAvailability, "availability", err)
	}
	for i := range busy {
		busy[i].StartTime = busy[i].StartTime.In(s.hours.Location)
		busy[i].EndTime = busy[i].EndTime.In(s.hours.Location)
	}

	return CalculateAvailability(window, busy, s.hours.SlotStep), nil
}

func (s *service) Create(ctx context.Context, p auth.Principal, req CreateRequest) (*Booking, error) {
	// 1. Validate Time Range
	if !req.EndTime.After(req.StartTime) {
		return nil, ErrInvalidTimeRange
	}
	// 2. Start must be strictly in the future
	if !req.StartTime.After(s.clock.Now()) {
		return nil, ErrStartTimePast
	}

	var created *Booking
	err := s.tx.InTx(ctx, func(tx Tx) error {
		// 3. Resolve or provision the resource, holding its row lock
		res, err := s.resolveForBooking(ctx, tx.Resources, req.ResourceID, req.ResourceLabel)
		if err != nil {
			return err
		}

		// 4. Re-check for overlaps under the lock
		hasOverlap, err := tx.Bookings.HasOverlapForUpdate(ctx, res.ID, req.StartTime, req.EndTime)
		if err != nil {
			return err
		}
		if hasOverlap {
			return ErrTimeConflict
		}

		// 5. Price and 6. insert
		b := &Booking{
			UserID:       p.UserID,
			ResourceID:   res.ID,
			ResourceName: res.DisplayName(),
			StartTime:    req.StartTime,
			EndTime:      req.EndTime,
			Status:       StatusConfirmed,
			Price:        CalculatePrice(res.PricePerHour, req.StartTime, req.EndTime),
			Notes:        strings.TrimSpace(req.Notes),
		}
		if err := tx.Bookings.Create(ctx, b); err != nil {
			return err
		}
		created = b
		return nil
	})
	if err != nil {
		return nil, s.classify(ctx, ErrPersistence, "create booking", err)
	}

	s.log.InfoContext(ctx, "booking created",
		"booking_id", created.ID, "resource_id", created.ResourceID, "user_id", created.UserID,
		"start", created.StartTime, "end", created.EndTime)
	return created, nil
}

// resolveForBooking finds the resource named by ref or label and locks its row.
// When nothing matches and a label was given, a minimal resource is created
// inside the same transaction.
func (s *service) resolveForBooking(ctx context.Context, repo resource.Repository, ref, label string) (*resource.Resource, error) {
	label = resource.NormalizeName(label)
	res, err := lookupResource(ctx, repo, ref, label, true)
	if err == nil {
		return lockActive(ctx, repo, res.ID)
	}
	if !errors.Is(err, ErrResourceNotFound) {
		return nil, err
	}

	if label == "" {
		return nil, ErrResourceNotFound
	}

	// Another request may be provisioning the same label right now.
	if err := repo.LockLabel(ctx, label); err != nil {
		return nil, err
	}
	res, err = repo.FindByLabel(ctx, label)
	switch {
	case err == nil:
		return lockActive(ctx, repo, res.ID)
	case !errors.Is(err, resource.ErrNotFound):
		return nil, err
	}

	res, err = resource.Spec{Name: label, LocationName: label}.Build()
	if err != nil {
		return nil, ErrResourceNotFound
	}
	if err := repo.Create(ctx, res); err != nil {
		return nil, err
	}
	s.log.InfoContext(ctx, "resource provisioned from label", "resource_id", res.ID, "label", res.Name)
	return res, nil
}

// lockActive re-reads the resource under a row lock. A resource deactivated
// since it was looked up is reported as not found.
func lockActive(ctx context.Context, repo resource.Repository, id string) (*resource.Resource, error) {
	res, err := repo.GetByIDForUpdate(ctx, id)
	if err != nil {
		return nil, err
	}
	if !res.IsActive {
		return nil, ErrResourceNotFound
	}
	return res, nil
}

// lookupResource resolves ref as an id first, then ref and label as
// case-insensitive names. With activeOnly an inactive id match is skipped.
// Names are compared in the form resources are stored with.
func lookupResource(ctx context.Context, repo resource.Repository, ref, label string, activeOnly bool) (*resource.Resource, error) {
	ref = strings.TrimSpace(ref)
	label = resource.NormalizeName(label)

	if _, err := uuid.Parse(ref); err == nil {
		res, err := repo.GetByID(ctx, ref)
		switch {
		case err == nil:
			if res.IsActive || !activeOnly {
				return res, nil
			}
		case !errors.Is(err, resource.ErrNotFound):
			return nil, err
		}
	}

	for _, key := range []string{resource.NormalizeName(ref), label} {
		if key == "" {
			continue
		}
		res, err := repo.FindByLabel(ctx, key)
		if err == nil {
			return res, nil
		}
		if !errors.Is(err, resource.ErrNotFound) {
			return nil, err
		}
	}
	return nil, ErrResourceNotFound
}

func (s *service) Cancel(ctx context.Context, p auth.Principal, id string) (*Booking, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrNotFound
	}

	var result *Booking
	err := s.tx.InTx(ctx, func(tx Tx) error {
		b, err := tx.Bookings.GetByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if !p.CanActFor(b.UserID) {
			return ErrPermissionDenied
		}

		// Past or already terminal bookings are reported unchanged.
		if b.Cancellable(s.clock.Now()) {
			if err := tx.Bookings.UpdateStatus(ctx, b.ID, StatusCancelled); err != nil {
				return err
			}
			b.Status = StatusCancelled
			s.log.InfoContext(ctx, "booking cancelled", "booking_id", b.ID, "by", p.UserID)
		}
		result = b
		return nil
	})
	if err != nil {
		return nil, s.classify(ctx, ErrCancelFailed, "cancel booking", err)
	}
	return result, nil
}

func (s *service) ListMine(ctx context.Context, p auth.Principal, filter Filter) ([]Listing, int, error) {
	// Admins see every booking; everyone else only their own.
	if !p.IsAdmin() {
		filter.UserID = p.UserID
	}

	bookings, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, 0, s.classify(ctx, ErrListFailed, "list bookings", err)
	}

	now := s.clock.Now()
	items := make([]Listing, len(bookings))
	for i, b := range bookings {
		items[i] = Listing{Booking: b, CanCancel: b.Cancellable(now)}
	}
	return items, total, nil
}

// classify passes domain errors through and wraps anything else in fail,
// logging the cause.
func (s *service) classify(ctx context.Context, fail *apperror.AppError, op string, err error) error {
	if errors.Is(err, resource.ErrNotFound) {
		return ErrResourceNotFound
	}
	if _, ok := apperror.As(err); ok {
		return err
	}
	s.log.ErrorContext(ctx, "booking persistence failure", "op", op, "error", err)
	return fmt.Errorf("%w: %w", fail, err)
}
