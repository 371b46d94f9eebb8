package db

import (
	"context"
	"database/sql"
)

// DBTX is what the plan, snapshot, chat message and file repositories run
// their statements against. A plan's rows are only ever written together, so
// the service hands repositories the *sql.Tx of the current unit of work;
// reads outside a transaction may pass the *sql.DB itself.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

var (
	_ DBTX = (*sql.DB)(nil)
	_ DBTX = (*sql.Tx)(nil)
)
