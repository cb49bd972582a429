package db

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Querier is the subset of pgx shared by *pgxpool.Pool and pgx.Tx.
// Repositories are built on it so the same code runs inside or outside a transaction.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// TxStarter is implemented by *pgxpool.Pool and *pgx.Conn.
type TxStarter interface {
	BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error)
}

// RunInTx runs fn inside a read-committed transaction.
// The transaction is committed when fn returns nil and rolled back otherwise.
func RunInTx(ctx context.Context, starter TxStarter, fn func(tx pgx.Tx) error) error {
	return pgx.BeginTxFunc(ctx, starter, pgx.TxOptions{IsoLevel: pgx.ReadCommitted}, fn)
}
