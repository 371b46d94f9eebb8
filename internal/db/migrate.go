package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// Migrate runs all schema migrations.
func Migrate(db *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			// Tolerate "duplicate column name" errors from ALTER TABLE
			// since the migration system re-runs all statements.
			if strings.Contains(err.Error(), "duplicate column name") {
				continue
			}
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	if err := migrateClampHistoryCursors(db); err != nil {
		return fmt.Errorf("clamping history cursors: %w", err)
	}
	return nil
}

// migrateClampHistoryCursors pulls a plan's cursor back onto its last stored
// snapshot. Databases written before snapshots were saved in the same
// transaction as the cursor can hold a cursor past the end.
func migrateClampHistoryCursors(db *sql.DB) error {
	ctx := context.Background()
	_, err := db.ExecContext(ctx, `
		UPDATE plans SET history_cursor = (
			SELECT COALESCE(MAX(seq), 0) FROM roadmap_snapshots s WHERE s.plan_id = plans.id
		)
		WHERE history_cursor > (
			SELECT COALESCE(MAX(seq), 0) FROM roadmap_snapshots s WHERE s.plan_id = plans.id
		)`)
	if err != nil {
		return fmt.Errorf("updating plans: %w", err)
	}
	return nil
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS plans (
		id             TEXT PRIMARY KEY,
		name           TEXT NOT NULL UNIQUE,
		settings       TEXT NOT NULL DEFAULT '{}',
		prompt         TEXT NOT NULL DEFAULT '',
		history_cursor INTEGER NOT NULL DEFAULT 0 CHECK(history_cursor >= 0),
		created_at     TEXT NOT NULL,
		updated_at     TEXT NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS roadmap_snapshots (
		plan_id TEXT NOT NULL REFERENCES plans(id) ON DELETE CASCADE,
		seq     INTEGER NOT NULL CHECK(seq >= 0),
		roadmap TEXT NOT NULL,
		PRIMARY KEY (plan_id, seq)
	)`,

	`CREATE TABLE IF NOT EXISTS chat_messages (
		id         TEXT PRIMARY KEY,
		plan_id    TEXT NOT NULL REFERENCES plans(id) ON DELETE CASCADE,
		seq        INTEGER NOT NULL,
		role       TEXT NOT NULL CHECK(role IN ('system','user','assistant')),
		content    TEXT NOT NULL,
		downloads  TEXT NOT NULL DEFAULT '[]',
		created_at TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_chat_messages_plan ON chat_messages(plan_id, seq)`,

	`ALTER TABLE chat_messages ADD COLUMN imported_events INTEGER NOT NULL DEFAULT 0`,

	`CREATE TABLE IF NOT EXISTS uploaded_files (
		id              TEXT PRIMARY KEY,
		plan_id         TEXT NOT NULL REFERENCES plans(id) ON DELETE CASCADE,
		seq             INTEGER NOT NULL,
		name            TEXT NOT NULL,
		kind            TEXT NOT NULL CHECK(kind IN ('text','calendar','json')),
		content         TEXT NOT NULL,
		size            INTEGER NOT NULL DEFAULT 0,
		imported_events INTEGER NOT NULL DEFAULT 0
	)`,

	`CREATE INDEX IF NOT EXISTS idx_uploaded_files_plan ON uploaded_files(plan_id, seq)`,
}
