package booking

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/getfittoday/getfit-backend/internal/db"
	"github.com/getfittoday/getfit-backend/internal/resource"
)

// Tx exposes the repositories bound to one database transaction.
type Tx struct {
	Bookings  Repository
	Resources resource.Repository
}

// Transactor runs a unit of work atomically. If fn returns an error nothing
// it wrote is kept.
type Transactor interface {
	InTx(ctx context.Context, fn func(tx Tx) error) error
}

type pgxTransactor struct {
	pool *pgxpool.Pool
}

func NewPgxTransactor(pool *pgxpool.Pool) Transactor {
	return &pgxTransactor{pool: pool}
}

func (t *pgxTransactor) InTx(ctx context.Context, fn func(tx Tx) error) error {
	return db.RunInTx(ctx, t.pool, func(tx pgx.Tx) error {
		return fn(Tx{
			Bookings:  NewPgxRepository(tx),
			Resources: resource.NewPgxRepository(tx),
		})
	})
}
