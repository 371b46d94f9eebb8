package domain

import (
	"fmt"
	"time"

	"github.com/alexanderramin/roadmap/internal/calendar"
)

// Defaults applied when a task is created without explicit values.
const (
	DefaultStartTime    = "10:00"
	DefaultDailyHours   = 1.0
	DefaultDurationDays = 1
)

// Task is the canonical unit of planned work: a block of DurationDays
// calendar days starting at Date, worked DailyHours per day from DailyStartTime.
type Task struct {
	ID             string  `json:"id"`
	Date           string  `json:"date"`
	DurationDays   int     `json:"durationDays"`
	DailyStartTime string  `json:"dailyStartTime"`
	DailyHours     float64 `json:"dailyHours"`
	Task           string  `json:"task"`
	Motivation     string  `json:"motivation"`
	Completed      bool    `json:"completed"`
}

// Start parses the task's start date.
func (t Task) Start() (time.Time, error) {
	return calendar.ParseDate(t.Date)
}

// End returns the inclusive last day of the task's block.
func (t Task) End() (time.Time, error) {
	start, err := t.Start()
	if err != nil {
		return time.Time{}, err
	}
	return calendar.AddDays(start, t.Span()-1), nil
}

// Span is DurationDays floored at 1.
func (t Task) Span() int {
	if t.DurationDays < 1 {
		return 1
	}
	return t.DurationDays
}

// TotalHours is the planned effort over the whole block.
func (t Task) TotalHours() float64 {
	return t.DailyHours * float64(t.Span())
}

// EndTime is the daily end time derived from DailyStartTime and DailyHours.
func (t Task) EndTime() string {
	return calendar.CalculateEndTime(t.DailyStartTime, t.DailyHours)
}

// Normalized fills missing numeric and time fields with their defaults.
func (t Task) Normalized() Task {
	if t.DurationDays < 1 {
		t.DurationDays = DefaultDurationDays
	}
	if t.DailyHours <= 0 {
		t.DailyHours = DefaultDailyHours
	}
	if t.DailyStartTime == "" {
		t.DailyStartTime = DefaultStartTime
	}
	return t
}

// Validate checks the task invariants.
func (t Task) Validate() error {
	if t.ID == "" {
		return fmt.Errorf("task id is required")
	}
	if _, err := t.Start(); err != nil {
		return fmt.Errorf("task %s: %w", t.ID, err)
	}
	if t.DurationDays < 1 {
		return fmt.Errorf("task %s: durationDays must be at least 1, got %d", t.ID, t.DurationDays)
	}
	if t.DailyHours <= 0 {
		return fmt.Errorf("task %s: dailyHours must be positive, got %g", t.ID, t.DailyHours)
	}
	if t.DailyStartTime != "" {
		if _, _, err := calendar.ParseClock(t.DailyStartTime); err != nil {
			return fmt.Errorf("task %s: %w", t.ID, err)
		}
	}
	return nil
}
