package db

import (
	"context"
	_ "embed"
	"fmt"
)

//go:embed schema.sql
var schema string

// Migrate applies the embedded schema. Every statement is idempotent.
func Migrate(ctx context.Context, q Querier) error {
	// No arguments, so pgx sends the whole script over the simple protocol.
	if _, err := q.Exec(ctx, schema); err != nil {
		return fmt.Errorf("apply schema failed: %w", err)
	}
	return nil
}
