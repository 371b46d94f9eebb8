package db

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := OpenDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestMigrate_Idempotent(t *testing.T) {
	db := openTestDB(t)

	require.NoError(t, Migrate(db))
	require.NoError(t, Migrate(db))
}

func TestMigrate_CreatesAllTables(t *testing.T) {
	db := openTestDB(t)

	expected := []string{"plans", "roadmap_snapshots", "chat_messages", "uploaded_files"}
	for _, table := range expected {
		var name string
		err := db.QueryRow(`SELECT name FROM sqlite_master WHERE type='table' AND name=?`, table).Scan(&name)
		require.NoError(t, err, "table %s should exist", table)
		assert.Equal(t, table, name)
	}
}

func TestMigrate_CreatesIndexes(t *testing.T) {
	db := openTestDB(t)

	for _, idx := range []string{"idx_chat_messages_plan", "idx_uploaded_files_plan"} {
		var name string
		err := db.QueryRow(`SELECT name FROM sqlite_master WHERE type='index' AND name=?`, idx).Scan(&name)
		require.NoError(t, err, "index %s should exist", idx)
	}
}

func TestMigrate_SnapshotsCascadeWithPlan(t *testing.T) {
	db := openTestDB(t)

	_, err := db.Exec(`INSERT INTO plans (id, name, created_at, updated_at) VALUES ('p1', 'launch', 'now', 'now')`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO roadmap_snapshots (plan_id, seq, roadmap) VALUES ('p1', 0, '[]')`)
	require.NoError(t, err)

	_, err = db.Exec(`DELETE FROM plans WHERE id = 'p1'`)
	require.NoError(t, err)

	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM roadmap_snapshots`).Scan(&n))
	assert.Equal(t, 0, n)
}

func TestMigrate_RejectsUnknownRole(t *testing.T) {
	db := openTestDB(t)

	_, err := db.Exec(`INSERT INTO plans (id, name, created_at, updated_at) VALUES ('p1', 'launch', 'now', 'now')`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO chat_messages (id, plan_id, seq, role, content, created_at)
		VALUES ('m1', 'p1', 0, 'robot', 'hi', 'now')`)
	assert.Error(t, err)
}
