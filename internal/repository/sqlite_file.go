package repository

import (
	"context"
	"fmt"

	"github.com/alexanderramin/roadmap/internal/db"
	"github.com/alexanderramin/roadmap/internal/planner"
)

// SQLiteUploadedFileRepo implements UploadedFileRepo using a SQLite database.
type SQLiteUploadedFileRepo struct {
	db db.DBTX
}

// NewSQLiteUploadedFileRepo creates a new SQLiteUploadedFileRepo.
func NewSQLiteUploadedFileRepo(conn db.DBTX) *SQLiteUploadedFileRepo {
	return &SQLiteUploadedFileRepo{db: conn}
}

// ReplaceAll stores files as the plan's uploads, in order.
func (r *SQLiteUploadedFileRepo) ReplaceAll(ctx context.Context, planID string, files []planner.File) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM uploaded_files WHERE plan_id = ?`, planID); err != nil {
		return fmt.Errorf("clearing uploaded files: %w", err)
	}
	query := `INSERT INTO uploaded_files (id, plan_id, seq, name, kind, content, size, imported_events)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	for seq, f := range files {
		_, err := r.db.ExecContext(ctx, query,
			f.ID, planID, seq, f.Name, string(f.Kind), f.Content, f.Size, f.ImportedEvents)
		if err != nil {
			return fmt.Errorf("inserting uploaded file %q: %w", f.Name, err)
		}
	}
	return nil
}

func (r *SQLiteUploadedFileRepo) ListByPlan(ctx context.Context, planID string) ([]planner.File, error) {
	query := `SELECT id, name, kind, content, size, imported_events
		FROM uploaded_files WHERE plan_id = ? ORDER BY seq`
	rows, err := r.db.QueryContext(ctx, query, planID)
	if err != nil {
		return nil, fmt.Errorf("listing uploaded files: %w", err)
	}
	defer rows.Close()

	var out []planner.File
	for rows.Next() {
		var (
			f    planner.File
			kind string
		)
		if err := rows.Scan(&f.ID, &f.Name, &kind, &f.Content, &f.Size, &f.ImportedEvents); err != nil {
			return nil, fmt.Errorf("scanning uploaded file row: %w", err)
		}
		f.Kind = planner.FileKind(kind)
		out = append(out, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating uploaded files: %w", err)
	}
	return out, nil
}
