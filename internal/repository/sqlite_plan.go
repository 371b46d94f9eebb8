package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/alexanderramin/roadmap/internal/db"
)

// SQLitePlanRepo implements PlanRepo using a SQLite database.
type SQLitePlanRepo struct {
	db db.DBTX
}

// NewSQLitePlanRepo creates a new SQLitePlanRepo.
func NewSQLitePlanRepo(conn db.DBTX) *SQLitePlanRepo {
	return &SQLitePlanRepo{db: conn}
}

const planColumns = `id, name, settings, prompt, history_cursor, created_at, updated_at`

func (r *SQLitePlanRepo) Create(ctx context.Context, p *Plan) error {
	settings, err := marshalColumn(p.Settings, "plan settings")
	if err != nil {
		return err
	}
	query := `INSERT INTO plans (` + planColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?)`
	_, err = r.db.ExecContext(ctx, query,
		p.ID,
		p.Name,
		settings,
		p.Prompt,
		p.Cursor,
		formatTime(p.CreatedAt),
		formatTime(p.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("inserting plan: %w", err)
	}
	return nil
}

func (r *SQLitePlanRepo) GetByID(ctx context.Context, id string) (*Plan, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+planColumns+` FROM plans WHERE id = ?`, id)
	return r.scanPlan(row)
}

func (r *SQLitePlanRepo) GetByName(ctx context.Context, name string) (*Plan, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+planColumns+` FROM plans WHERE name = ?`, name)
	return r.scanPlan(row)
}

func (r *SQLitePlanRepo) List(ctx context.Context) ([]*Plan, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+planColumns+` FROM plans ORDER BY updated_at DESC, name`)
	if err != nil {
		return nil, fmt.Errorf("listing plans: %w", err)
	}
	defer rows.Close()

	var plans []*Plan
	for rows.Next() {
		p, err := r.scanPlan(rows)
		if err != nil {
			return nil, err
		}
		plans = append(plans, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating plans: %w", err)
	}
	return plans, nil
}

func (r *SQLitePlanRepo) Update(ctx context.Context, p *Plan) error {
	settings, err := marshalColumn(p.Settings, "plan settings")
	if err != nil {
		return err
	}
	query := `UPDATE plans SET name = ?, settings = ?, prompt = ?, history_cursor = ?, updated_at = ?
		WHERE id = ?`
	res, err := r.db.ExecContext(ctx, query,
		p.Name,
		settings,
		p.Prompt,
		p.Cursor,
		formatTime(p.UpdatedAt),
		p.ID,
	)
	if err != nil {
		return fmt.Errorf("updating plan: %w", err)
	}
	return requireAffected(res, "plan")
}

func (r *SQLitePlanRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM plans WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting plan: %w", err)
	}
	return requireAffected(res, "plan")
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *SQLitePlanRepo) scanPlan(row rowScanner) (*Plan, error) {
	var (
		p                    Plan
		settings             string
		createdAt, updatedAt string
	)
	err := row.Scan(&p.ID, &p.Name, &settings, &p.Prompt, &p.Cursor, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("plan: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("scanning plan: %w", err)
	}
	if err := unmarshalColumn(settings, &p.Settings, "plan settings"); err != nil {
		return nil, err
	}
	if p.CreatedAt, err = parseTime(createdAt, "plan created_at"); err != nil {
		return nil, err
	}
	if p.UpdatedAt, err = parseTime(updatedAt, "plan updated_at"); err != nil {
		return nil, err
	}
	return &p, nil
}

func requireAffected(res sql.Result, what string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking affected rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", what, ErrNotFound)
	}
	return nil
}
