package user

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/getfittoday/getfit-backend/internal/db"
)

// Repository defines methods for accessing user data from storage.
type Repository interface {
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByID(ctx context.Context, id string) (*User, error)
	Create(ctx context.Context, u *User) error
	UpdateLastLogin(ctx context.Context, id string, t time.Time) error
	List(ctx context.Context, filter UserFilter) ([]*User, int, error)
	Update(ctx context.Context, u *User) error
}

// sortColumns maps accepted sort keys to columns.
var sortColumns = map[string]string{
	"email":        "email",
	"display_name": "display_name",
	"created_at":   "created_at",
}

const userColumns = `id, email, password_hash, display_name, role, is_active, created_at, last_login_at`

type pgxUserRepository struct {
	q db.Querier
}

// NewPgxRepository creates a new Repository backed by a pool or a transaction.
func NewPgxRepository(q db.Querier) Repository {
	return &pgxUserRepository{q: q}
}

func scanUser(row pgx.Row, extra ...any) (*User, error) {
	var u User
	dest := append([]any{
		&u.ID,
		&u.Email,
		&u.PasswordHash,
		&u.DisplayName,
		&u.Role,
		&u.IsActive,
		&u.CreatedAt,
		&u.LastLoginAt,
	}, extra...)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *pgxUserRepository) getOne(ctx context.Context, where string, arg any) (*User, error) {
	query := `SELECT ` + userColumns + ` FROM public.users WHERE ` + where + ` = $1`

	u, err := scanUser(r.q.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get user by %s failed: %w", where, err)
	}
	return u, nil
}

func (r *pgxUserRepository) GetByEmail(ctx context.Context, email string) (*User, error) {
	return r.getOne(ctx, "email", email)
}

func (r *pgxUserRepository) GetByID(ctx context.Context, id string) (*User, error) {
	return r.getOne(ctx, "id", id)
}

func (r *pgxUserRepository) Create(ctx context.Context, u *User) error {
	const query = `
		INSERT INTO public.users (email, password_hash, display_name, role, is_active)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`

	if err := r.q.QueryRow(
		ctx,
		query,
		u.Email,
		u.PasswordHash,
		u.DisplayName,
		string(u.Role),
		u.IsActive,
	).Scan(&u.ID, &u.CreatedAt); err != nil {
		var e *pgconn.PgError
		if errors.As(err, &e) && e.Code == pgerrcode.UniqueViolation {
			return ErrEmailAlreadyUsed
		}
		return fmt.Errorf("create user failed: %w", err)
	}

	return nil
}

func (r *pgxUserRepository) UpdateLastLogin(ctx context.Context, id string, t time.Time) error {
	const query = `
		UPDATE public.users
		SET last_login_at = $1
		WHERE id = $2
	`

	ct, err := r.q.Exec(ctx, query, t, id)
	if err != nil {
		return fmt.Errorf("update last login failed: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

func (r *pgxUserRepository) List(ctx context.Context, filter UserFilter) ([]*User, int, error) {
	var args []any
	queryBuilder := bytes.NewBufferString(`
		SELECT ` + userColumns + `, count(*) OVER() AS total_count
		FROM public.users
		WHERE 1=1
	`)

	// Dynamic filtering
	if filter.Email != "" {
		args = append(args, "%"+filter.Email+"%")
		queryBuilder.WriteString(" AND email ILIKE $" + strconv.Itoa(len(args)))
	}
	if filter.DisplayName != "" {
		args = append(args, "%"+filter.DisplayName+"%")
		queryBuilder.WriteString(" AND display_name ILIKE $" + strconv.Itoa(len(args)))
	}
	if filter.Role != "" {
		args = append(args, string(filter.Role))
		queryBuilder.WriteString(" AND role = $" + strconv.Itoa(len(args)))
	}
	if filter.IsActive != nil {
		args = append(args, *filter.IsActive)
		queryBuilder.WriteString(" AND is_active = $" + strconv.Itoa(len(args)))
	}

	// Sorting: only whitelisted columns reach the query text.
	orderBy, ok := sortColumns[filter.SortBy]
	if !ok {
		orderBy = "created_at"
	}
	orderDir := "DESC"
	if filter.SortOrder == "ASC" {
		orderDir = "ASC"
	}
	queryBuilder.WriteString(" ORDER BY " + orderBy + " " + orderDir)

	// Pagination
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 {
		filter.PageSize = 20
	}
	offset := (filter.Page - 1) * filter.PageSize

	args = append(args, filter.PageSize, offset)
	queryBuilder.WriteString(" LIMIT $" + strconv.Itoa(len(args)-1) + " OFFSET $" + strconv.Itoa(len(args)))

	rows, err := r.q.Query(ctx, queryBuilder.String(), args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list users failed: %w", err)
	}
	defer rows.Close()

	var users []*User
	var total int

	for rows.Next() {
		u, err := scanUser(rows, &total)
		if err != nil {
			return nil, 0, fmt.Errorf("scan user failed: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate users failed: %w", err)
	}

	return users, total, nil
}

func (r *pgxUserRepository) Update(ctx context.Context, u *User) error {
	const query = `
		UPDATE public.users
		SET display_name = $1, role = $2, is_active = $3
		WHERE id = $4
	`

	ct, err := r.q.Exec(ctx, query, u.DisplayName, string(u.Role), u.IsActive, u.ID)
	if err != nil {
		return fmt.Errorf("update user failed: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}
