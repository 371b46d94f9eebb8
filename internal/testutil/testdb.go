package testutil

import (
	"database/sql"
	"testing"

	"github.com/alexanderramin/roadmap/internal/db"
	"github.com/stretchr/testify/require"
)

// NewTestDB opens a private in-memory plans database with the schema
// migrated. It is closed when the test ends.
func NewTestDB(t *testing.T) *sql.DB {
	t.Helper()
	database, err := db.OpenDB(":memory:")
	require.NoError(t, err, "opening plans database")
	t.Cleanup(func() { _ = database.Close() })
	return database
}

func NewTestUoW(database *sql.DB) db.UnitOfWork {
	return db.NewSQLiteUnitOfWork(database)
}
