package repository

import (
	"context"
	"fmt"

	"github.com/alexanderramin/roadmap/internal/db"
	"github.com/alexanderramin/roadmap/internal/domain"
)

// SQLiteSnapshotRepo implements SnapshotRepo using a SQLite database.
type SQLiteSnapshotRepo struct {
	db db.DBTX
}

// NewSQLiteSnapshotRepo creates a new SQLiteSnapshotRepo.
func NewSQLiteSnapshotRepo(conn db.DBTX) *SQLiteSnapshotRepo {
	return &SQLiteSnapshotRepo{db: conn}
}

// ReplaceAll stores snapshots as the plan's whole history. Run it inside a
// transaction so a failure leaves the old history in place.
func (r *SQLiteSnapshotRepo) ReplaceAll(ctx context.Context, planID string, snapshots []domain.Roadmap) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM roadmap_snapshots WHERE plan_id = ?`, planID); err != nil {
		return fmt.Errorf("clearing snapshots: %w", err)
	}
	for seq, snap := range snapshots {
		if snap == nil {
			snap = domain.Roadmap{}
		}
		data, err := marshalColumn(snap, "roadmap snapshot")
		if err != nil {
			return err
		}
		_, err = r.db.ExecContext(ctx,
			`INSERT INTO roadmap_snapshots (plan_id, seq, roadmap) VALUES (?, ?, ?)`,
			planID, seq, data)
		if err != nil {
			return fmt.Errorf("inserting snapshot %d: %w", seq, err)
		}
	}
	return nil
}

// ListByPlan returns the history oldest first.
func (r *SQLiteSnapshotRepo) ListByPlan(ctx context.Context, planID string) ([]domain.Roadmap, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT roadmap FROM roadmap_snapshots WHERE plan_id = ? ORDER BY seq`, planID)
	if err != nil {
		return nil, fmt.Errorf("listing snapshots: %w", err)
	}
	defer rows.Close()

	var out []domain.Roadmap
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("scanning snapshot row: %w", err)
		}
		var r domain.Roadmap
		if err := unmarshalColumn(data, &r, "roadmap snapshot"); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating snapshots: %w", err)
	}
	return out, nil
}
