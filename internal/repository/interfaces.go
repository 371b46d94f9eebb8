package repository

import (
	"context"
	"time"

	"github.com/alexanderramin/roadmap/internal/domain"
	"github.com/alexanderramin/roadmap/internal/planner"
)

// Plan is the stored header of a planning session. Its roadmap history,
// chat log and uploads live in their own tables.
type Plan struct {
	ID        string
	Name      string
	Settings  planner.Settings
	Prompt    string
	Cursor    int
	CreatedAt time.Time
	UpdatedAt time.Time
}

type PlanRepo interface {
	Create(ctx context.Context, p *Plan) error
	GetByID(ctx context.Context, id string) (*Plan, error)
	GetByName(ctx context.Context, name string) (*Plan, error)
	List(ctx context.Context) ([]*Plan, error)
	Update(ctx context.Context, p *Plan) error
	Delete(ctx context.Context, id string) error
}

// SnapshotRepo stores a plan's undo history, one roadmap per position.
type SnapshotRepo interface {
	ReplaceAll(ctx context.Context, planID string, snapshots []domain.Roadmap) error
	ListByPlan(ctx context.Context, planID string) ([]domain.Roadmap, error)
}

// ChatMessageRepo stores the chat log. Messages are only ever appended.
type ChatMessageRepo interface {
	Append(ctx context.Context, planID string, seq int, m planner.Message) error
	ListByPlan(ctx context.Context, planID string) ([]planner.Message, error)
	CountByPlan(ctx context.Context, planID string) (int, error)
}

type UploadedFileRepo interface {
	ReplaceAll(ctx context.Context, planID string, files []planner.File) error
	ListByPlan(ctx context.Context, planID string) ([]planner.File, error)
}
