package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/getfittoday/getfit-backend/internal/db"
)

type Repository interface {
	Create(ctx context.Context, booking *Booking) error
	GetByID(ctx context.Context, id string) (*Booking, error)
	List(ctx context.Context, filter Filter) ([]*Booking, int, error)

	// GetByIDForUpdate is GetByID with the booking row locked until the
	// surrounding transaction ends.
	GetByIDForUpdate(ctx context.Context, id string) (*Booking, error)

	// UpdateStatus writes only the status column.
	UpdateStatus(ctx context.Context, id string, status Status) error

	// ListBusy returns the pending/confirmed ranges of a resource that
	// intersect [from, to), ordered by start time.
	ListBusy(ctx context.Context, resourceID string, from, to time.Time) ([]TimeSlot, error)

	// HasOverlapForUpdate reports whether a pending/confirmed booking of the
	// resource intersects [start, end). Matching rows stay locked until the
	// surrounding transaction ends.
	HasOverlapForUpdate(ctx context.Context, resourceID string, start, end time.Time) (bool, error)
}

var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

// resourceDisplayName mirrors resource.Resource.DisplayName.
const resourceDisplayName = "CASE WHEN r.location_name = '' OR r.location_name = r.name " +
	"THEN r.name ELSE r.location_name || ' - ' || r.name END"

var bookingColumns = []string{
	"b.id", "b.user_id", "b.resource_id", resourceDisplayName,
	"b.start_time", "b.end_time", "b.status", "b.price", "b.notes", "b.created_at",
}

type pgxRepository struct {
	q db.Querier
}

// NewPgxRepository returns a Repository backed by q, which may be a pool or a transaction.
func NewPgxRepository(q db.Querier) Repository {
	return &pgxRepository{q: q}
}

func (r *pgxRepository) Create(ctx context.Context, b *Booking) error {
	query, args, err := psql.Insert("public.bookings").
		Columns("resource_id", "user_id", "start_time", "end_time", "status", "price", "notes").
		Values(b.ResourceID, b.UserID, b.StartTime, b.EndTime, string(b.Status), b.Price, b.Notes).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build create booking query failed: %w", err)
	}

	if err := r.q.QueryRow(ctx, query, args...).Scan(&b.ID, &b.CreatedAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.ExclusionViolation {
			return ErrTimeConflict
		}
		return fmt.Errorf("create booking failed: %w", err)
	}
	return nil
}

func (r *pgxRepository) GetByID(ctx context.Context, id string) (*Booking, error) {
	return r.getOne(ctx, r.selectBookings().Where(squirrel.Eq{"b.id": id}))
}

func (r *pgxRepository) GetByIDForUpdate(ctx context.Context, id string) (*Booking, error) {
	return r.getOne(ctx, r.selectBookings().Where(squirrel.Eq{"b.id": id}).Suffix("FOR UPDATE OF b"))
}

func (r *pgxRepository) selectBookings(extra ...string) squirrel.SelectBuilder {
	cols := append(append([]string{}, bookingColumns...), extra...)
	return psql.Select(cols...).
		From("public.bookings b").
		Join("public.resources r ON b.resource_id = r.id")
}

func (r *pgxRepository) getOne(ctx context.Context, b squirrel.SelectBuilder) (*Booking, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get booking query failed: %w", err)
	}

	var bk Booking
	if err := r.q.QueryRow(ctx, query, args...).Scan(
		&bk.ID, &bk.UserID, &bk.ResourceID, &bk.ResourceName,
		&bk.StartTime, &bk.EndTime, &bk.Status, &bk.Price, &bk.Notes, &bk.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get booking failed: %w", err)
	}
	return &bk, nil
}

func (r *pgxRepository) List(ctx context.Context, filter Filter) ([]*Booking, int, error) {
	query := r.selectBookings("count(*) OVER() AS total_count")

	if filter.UserID != "" {
		query = query.Where(squirrel.Eq{"b.user_id": filter.UserID})
	}
	if filter.ResourceID != "" {
		query = query.Where(squirrel.Eq{"b.resource_id": filter.ResourceID})
	}
	if filter.Status != "" {
		query = query.Where(squirrel.Eq{"b.status": string(filter.Status)})
	}

	// Pending first, then the most recent start.
	query = query.OrderBy("CASE WHEN b.status = 'pending' THEN 0 ELSE 1 END", "b.start_time DESC")

	// Pagination
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 {
		filter.PageSize = 20
	}
	offset := (filter.Page - 1) * filter.PageSize

	sql, args, err := query.Limit(uint64(filter.PageSize)).Offset(uint64(offset)).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build list bookings query failed: %w", err)
	}

	rows, err := r.q.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list bookings failed: %w", err)
	}
	defer rows.Close()

	var bookings []*Booking
	var total int

	for rows.Next() {
		var b Booking
		if err := rows.Scan(
			&b.ID, &b.UserID, &b.ResourceID, &b.ResourceName,
			&b.StartTime, &b.EndTime, &b.Status, &b.Price, &b.Notes, &b.CreatedAt, &total,
		); err != nil {
			return nil, 0, fmt.Errorf("scan booking failed: %w", err)
		}
		bookings = append(bookings, &b)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate bookings failed: %w", err)
	}

	return bookings, total, nil
}

func (r *pgxRepository) UpdateStatus(ctx context.Context, id string, status Status) error {
	query, args, err := psql.Update("public.bookings").
		Set("status", string(status)).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update booking status query failed: %w", err)
	}

	ct, err := r.q.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update booking status failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *pgxRepository) ListBusy(ctx context.Context, resourceID string, from, to time.Time) ([]TimeSlot, error) {
	query, args, err := psql.Select("start_time", "end_time").
		From("public.bookings").
		Where(squirrel.Eq{"resource_id": resourceID}).
		Where(squirrel.Eq{"status": holdingStatuses}).
		Where(squirrel.Lt{"start_time": to}).
		Where(squirrel.Gt{"end_time": from}).
		OrderBy("start_time ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list busy query failed: %w", err)
	}

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list busy failed: %w", err)
	}
	defer rows.Close()

	var busy []TimeSlot
	for rows.Next() {
		var s TimeSlot
		if err := rows.Scan(&s.StartTime, &s.EndTime); err != nil {
			return nil, fmt.Errorf("scan busy range failed: %w", err)
		}
		busy = append(busy, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate busy ranges failed: %w", err)
	}
	return busy, nil
}

func (r *pgxRepository) HasOverlapForUpdate(ctx context.Context, resourceID string, start, end time.Time) (bool, error) {
	// Overlap: (NewStart < ExistingEnd) AND (NewEnd > ExistingStart).
	// EXISTS cannot take row locks, so select the ids themselves.
	query, args, err := psql.Select("id").
		From("public.bookings").
		Where(squirrel.Eq{"resource_id": resourceID}).
		Where(squirrel.Eq{"status": holdingStatuses}).
		Where(squirrel.Lt{"start_time": end}).
		Where(squirrel.Gt{"end_time": start}).
		Suffix("FOR UPDATE").
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build check overlap query failed: %w", err)
	}

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("check overlap failed: %w", err)
	}
	defer rows.Close()

	found := rows.Next()
	// Drain so every matching row is locked before returning.
	for rows.Next() {
	}
	if err := rows.Err(); err != nil {
		return false, fmt.Errorf("check overlap failed: %w", err)
	}
	return found, nil
}
