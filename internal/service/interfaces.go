package service

import (
	"context"

	"github.com/alexanderramin/roadmap/internal/domain"
	"github.com/alexanderramin/roadmap/internal/export"
	"github.com/alexanderramin/roadmap/internal/planner"
	"github.com/alexanderramin/roadmap/internal/repository"
	"github.com/alexanderramin/roadmap/internal/timeline"
)

// PlanService runs every planner operation against a stored plan. Each
// mutating call loads the plan, applies the change and saves the whole
// session in one transaction. Plans are addressed by name.
type PlanService interface {
	CreatePlan(ctx context.Context, name string, settings planner.Settings) (*repository.Plan, error)
	ListPlans(ctx context.Context) ([]*repository.Plan, error)
	DeletePlan(ctx context.Context, name string) error
	View(ctx context.Context, name string) (*PlanView, error)

	UpdateSettings(ctx context.Context, name string, settings planner.Settings) (*PlanView, error)
	ApplyForm(ctx context.Context, name string, form planner.Form) (*planner.Message, error)

	UpdateRoadmap(ctx context.Context, name string, data []byte) (*UpdateResult, error)
	Undo(ctx context.Context, name string) (*PlanView, error)
	Redo(ctx context.Context, name string) (*PlanView, error)

	Chat(ctx context.Context, name, text string) (*ChatResult, error)
	ProcessReply(ctx context.Context, name, content string) (*ChatResult, error)
	ImportFile(ctx context.Context, name, fileName string, content []byte) (*FileResult, error)
	RemoveFile(ctx context.Context, name, fileID string) error

	Today(ctx context.Context, name string) ([]domain.DailyInstance, error)
	ExportICS(ctx context.Context, name string, mode export.Mode) (string, error)
	ExportJSON(ctx context.Context, name string) ([]byte, error)
	CalendarLinks(ctx context.Context, name string) ([]CalendarLink, error)

	AddTask(ctx context.Context, name string, patch TaskPatch) (domain.Task, error)
	EditTask(ctx context.Context, name, id string, patch TaskPatch) (domain.Task, error)
	ToggleTask(ctx context.Context, name, id string) (domain.Task, error)
	DeleteTask(ctx context.Context, name, id string) error

	ShiftTasks(ctx context.Context, name string, shift TimelineShift) (domain.Roadmap, error)
	ScaleTasks(ctx context.Context, name string, scale TimelineScale) (domain.Roadmap, error)
}

// PlanView is a read of a plan: its header, current roadmap and session.
type PlanView struct {
	Plan     *repository.Plan
	Roadmap  domain.Roadmap
	Progress domain.Progress
	CanUndo  bool
	CanRedo  bool
	Messages []planner.Message
	Files    []planner.File
}

// UpdateResult reports a roadmap replacement. Warnings name entries that
// were kept unchanged because they could not be read.
type UpdateResult struct {
	Changed  bool
	Roadmap  domain.Roadmap
	Warnings []error
}

// ChatResult is the assistant message a chat turn produced and the roadmap
// after any import it carried.
type ChatResult struct {
	Message  planner.Message
	Roadmap  domain.Roadmap
	Warnings []error
}

// FileResult is an upload as kept for the next request.
type FileResult struct {
	File     planner.File
	Roadmap  domain.Roadmap
	Warnings []error
}

// CalendarLink is a Google Calendar template link for one task.
type CalendarLink struct {
	TaskID string
	Title  string
	URL    string
}

// TaskPatch holds task fields to set. Nil fields keep their value, or the
// new-task default when adding.
type TaskPatch struct {
	Date           *string
	DurationDays   *int
	DailyStartTime *string
	DailyHours     *float64
	Task           *string
	Motivation     *string
}

// TimelineShift moves or resizes tasks by whole days, as a drag on the
// timeline would. Resizing applies to the first id only.
type TimelineShift struct {
	IDs             []string
	Kind            timeline.DragKind
	Days            int
	RespectWorkDays bool
}

// TimelineScale stretches tasks by Percent around the earliest start.
type TimelineScale struct {
	IDs             []string
	Percent         float64
	RespectWorkDays bool
}
