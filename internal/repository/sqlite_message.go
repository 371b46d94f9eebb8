package repository

import (
	"context"
	"fmt"

	"github.com/alexanderramin/roadmap/internal/db"
	"github.com/alexanderramin/roadmap/internal/llm"
	"github.com/alexanderramin/roadmap/internal/planner"
)

// SQLiteChatMessageRepo implements ChatMessageRepo using a SQLite database.
type SQLiteChatMessageRepo struct {
	db db.DBTX
}

// NewSQLiteChatMessageRepo creates a new SQLiteChatMessageRepo.
func NewSQLiteChatMessageRepo(conn db.DBTX) *SQLiteChatMessageRepo {
	return &SQLiteChatMessageRepo{db: conn}
}

func (r *SQLiteChatMessageRepo) Append(ctx context.Context, planID string, seq int, m planner.Message) error {
	downloads := m.Downloads
	if downloads == nil {
		downloads = []planner.Download{}
	}
	encoded, err := marshalColumn(downloads, "message downloads")
	if err != nil {
		return err
	}
	query := `INSERT INTO chat_messages (id, plan_id, seq, role, content, downloads, imported_events, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	_, err = r.db.ExecContext(ctx, query,
		m.ID,
		planID,
		seq,
		string(m.Role),
		m.Content,
		encoded,
		m.ImportedEvents,
		formatTime(m.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("inserting chat message: %w", err)
	}
	return nil
}

func (r *SQLiteChatMessageRepo) ListByPlan(ctx context.Context, planID string) ([]planner.Message, error) {
	query := `SELECT id, role, content, downloads, imported_events, created_at
		FROM chat_messages WHERE plan_id = ? ORDER BY seq`
	rows, err := r.db.QueryContext(ctx, query, planID)
	if err != nil {
		return nil, fmt.Errorf("listing chat messages: %w", err)
	}
	defer rows.Close()

	var out []planner.Message
	for rows.Next() {
		var m planner.Message
		var role, downloads, created string
		if err := rows.Scan(&m.ID, &role, &m.Content, &downloads, &m.ImportedEvents, &created); err != nil {
			return nil, fmt.Errorf("scanning chat message row: %w", err)
		}
		m.Role = llm.Role(role)
		if err := unmarshalColumn(downloads, &m.Downloads, "message downloads"); err != nil {
			return nil, err
		}
		if len(m.Downloads) == 0 {
			m.Downloads = nil
		}
		if m.CreatedAt, err = parseTime(created, "message created_at"); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating chat messages: %w", err)
	}
	return out, nil
}

func (r *SQLiteChatMessageRepo) CountByPlan(ctx context.Context, planID string) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM chat_messages WHERE plan_id = ?`, planID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting chat messages: %w", err)
	}
	return n, nil
}
