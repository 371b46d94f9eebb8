package testutil

import (
	"time"

	"github.com/alexanderramin/roadmap/internal/domain"
	"github.com/alexanderramin/roadmap/internal/planner"
	"github.com/alexanderramin/roadmap/internal/repository"
	"github.com/google/uuid"
)

// Task options
type TaskOption func(*domain.Task)

func WithDate(date string) TaskOption {
	return func(t *domain.Task) { t.Date = date }
}

func WithDuration(days int) TaskOption {
	return func(t *domain.Task) { t.DurationDays = days }
}

func WithHours(start string, hours float64) TaskOption {
	return func(t *domain.Task) {
		t.DailyStartTime = start
		t.DailyHours = hours
	}
}

func WithID(id string) TaskOption {
	return func(t *domain.Task) { t.ID = id }
}

func Completed() TaskOption {
	return func(t *domain.Task) { t.Completed = true }
}

// NewTestTask returns a one-day task on 2024-01-01 at 10:00 for one hour.
func NewTestTask(title string, opts ...TaskOption) domain.Task {
	t := domain.Task{
		ID:             uuid.NewString(),
		Date:           "2024-01-01",
		DurationDays:   1,
		DailyStartTime: domain.DefaultStartTime,
		DailyHours:     domain.DefaultDailyHours,
		Task:           title,
		Motivation:     "Keep going",
	}
	for _, opt := range opts {
		opt(&t)
	}
	return t
}

// NewTestPlan returns a plan header with default settings.
func NewTestPlan(name string) *repository.Plan {
	now := time.Now().UTC()
	return &repository.Plan{
		ID:        uuid.NewString(),
		Name:      name,
		Settings:  planner.DefaultSettings(),
		CreatedAt: now,
		UpdatedAt: now,
	}
}
