package resource

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/getfittoday/getfit-backend/internal/db"
)

type Repository interface {
	Create(ctx context.Context, res *Resource) error
	Update(ctx context.Context, res *Resource) error
	GetByID(ctx context.Context, id string) (*Resource, error)
	List(ctx context.Context, filter Filter) ([]*Resource, int, error)

	// FindByLabel returns the oldest active resource whose name or location
	// name equals label, ignoring case.
	FindByLabel(ctx context.Context, label string) (*Resource, error)

	// GetByIDForUpdate is GetByID with a row lock held until the surrounding
	// transaction ends. Outside a transaction the lock is released immediately.
	GetByIDForUpdate(ctx context.Context, id string) (*Resource, error)

	// LockLabel serializes provisioning of resources with the same label
	// for the rest of the surrounding transaction.
	LockLabel(ctx context.Context, label string) error
}

var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

var resourceColumns = []string{
	"id", "name", "location_name", "sport_type", "is_active",
	"slot_minutes", "price_per_hour", "created_at",
}

type pgxRepository struct {
	q db.Querier
}

// NewPgxRepository returns a Repository backed by q, which may be a pool or a transaction.
func NewPgxRepository(q db.Querier) Repository {
	return &pgxRepository{q: q}
}

func (r *pgxRepository) Create(ctx context.Context, res *Resource) error {
	query, args, err := psql.Insert("public.resources").
		Columns("name", "location_name", "sport_type", "is_active", "slot_minutes", "price_per_hour").
		Values(res.Name, res.LocationName, res.SportType, res.IsActive, res.SlotMinutes, res.PricePerHour).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build create resource query failed: %w", err)
	}

	if err := r.q.QueryRow(ctx, query, args...).Scan(&res.ID, &res.CreatedAt); err != nil {
		return fmt.Errorf("create resource failed: %w", err)
	}
	return nil
}

func (r *pgxRepository) Update(ctx context.Context, res *Resource) error {
	query, args, err := psql.Update("public.resources").
		SetMap(map[string]any{
			"name":           res.Name,
			"location_name":  res.LocationName,
			"sport_type":     res.SportType,
			"is_active":      res.IsActive,
			"slot_minutes":   res.SlotMinutes,
			"price_per_hour": res.PricePerHour,
		}).
		Where(squirrel.Eq{"id": res.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update resource query failed: %w", err)
	}

	tag, err := r.q.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update resource failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *pgxRepository) GetByID(ctx context.Context, id string) (*Resource, error) {
	return r.getOne(ctx, psql.Select(resourceColumns...).
		From("public.resources").
		Where(squirrel.Eq{"id": id}))
}

func (r *pgxRepository) GetByIDForUpdate(ctx context.Context, id string) (*Resource, error) {
	return r.getOne(ctx, psql.Select(resourceColumns...).
		From("public.resources").
		Where(squirrel.Eq{"id": id}).
		Suffix("FOR UPDATE"))
}

func (r *pgxRepository) FindByLabel(ctx context.Context, label string) (*Resource, error) {
	key := strings.ToLower(strings.TrimSpace(label))
	return r.getOne(ctx, psql.Select(resourceColumns...).
		From("public.resources").
		Where(squirrel.Eq{"is_active": true}).
		Where(squirrel.Or{
			squirrel.Expr("lower(name) = ?", key),
			squirrel.Expr("lower(location_name) = ?", key),
		}).
		OrderBy("created_at ASC").
		Limit(1))
}

func (r *pgxRepository) LockLabel(ctx context.Context, label string) error {
	key := strings.ToLower(strings.TrimSpace(label))
	if _, err := r.q.Exec(ctx, "SELECT pg_advisory_xact_lock(hashtext($1))", "resource:"+key); err != nil {
		return fmt.Errorf("lock resource label failed: %w", err)
	}
	return nil
}

func (r *pgxRepository) getOne(ctx context.Context, b squirrel.SelectBuilder) (*Resource, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get resource query failed: %w", err)
	}

	var res Resource
	if err := r.q.QueryRow(ctx, query, args...).Scan(
		&res.ID, &res.Name, &res.LocationName, &res.SportType, &res.IsActive,
		&res.SlotMinutes, &res.PricePerHour, &res.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get resource failed: %w", err)
	}
	return &res, nil
}

func (r *pgxRepository) List(ctx context.Context, filter Filter) ([]*Resource, int, error) {
	query := psql.Select(append(resourceColumns, "count(*) OVER() AS total_count")...).
		From("public.resources")

	if filter.SportType != "" {
		query = query.Where(squirrel.Eq{"sport_type": filter.SportType})
	}
	if filter.Keyword != "" {
		pattern := "%" + filter.Keyword + "%"
		query = query.Where(squirrel.Or{
			squirrel.ILike{"name": pattern},
			squirrel.ILike{"location_name": pattern},
		})
	}
	if filter.ActiveOnly {
		query = query.Where(squirrel.Eq{"is_active": true})
	}

	// Pagination
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 {
		filter.PageSize = 20
	}
	offset := (filter.Page - 1) * filter.PageSize

	sql, args, err := query.
		OrderBy("name ASC", "created_at ASC").
		Limit(uint64(filter.PageSize)).
		Offset(uint64(offset)).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build list resources query failed: %w", err)
	}

	rows, err := r.q.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list resources failed: %w", err)
	}
	defer rows.Close()

	var result []*Resource
	var total int

	for rows.Next() {
		var res Resource
		if err := rows.Scan(
			&res.ID, &res.Name, &res.LocationName, &res.SportType, &res.IsActive,
			&res.SlotMinutes, &res.PricePerHour, &res.CreatedAt, &total,
		); err != nil {
			return nil, 0, fmt.Errorf("scan resource failed: %w", err)
		}
		result = append(result, &res)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate resources failed: %w", err)
	}

	return result, total, nil
}
