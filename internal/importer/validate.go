package importer

import (
	"fmt"

	"github.com/alexanderramin/roadmap/internal/calendar"
)

// Source tells which fields an incoming item must carry.
type Source int

const (
	// SourcePlan items come from the AI and are placed by day_offset. A
	// literal date is accepted as well.
	SourcePlan Source = iota
	// SourceFile items come from an uploaded roadmap and need a literal date.
	SourceFile
)

// ValidatePlanItem reports why item cannot become a task, or nil.
func ValidatePlanItem(item PlanItem, src Source) error {
	if item.Task == "" {
		return fmt.Errorf("task is required")
	}

	_, hasOffset := item.Offset()
	switch {
	case item.Date != "":
		if _, err := calendar.ParseDate(item.Date); err != nil {
			return fmt.Errorf("task %q: %w", item.Task, err)
		}
	case src == SourceFile:
		return fmt.Errorf("task %q: date is required", item.Task)
	case !hasOffset:
		return fmt.Errorf("task %q: day_offset or date is required", item.Task)
	}

	if item.DailyStartTime != "" {
		if _, _, err := calendar.ParseClock(item.DailyStartTime); err != nil {
			return fmt.Errorf("task %q: %w", item.Task, err)
		}
	}
	if item.DailyHours != nil && *item.DailyHours < 0 {
		return fmt.Errorf("task %q: dailyHours must not be negative", item.Task)
	}
	if item.DurationDays != nil && *item.DurationDays < 0 {
		return fmt.Errorf("task %q: durationDays must not be negative", item.Task)
	}
	return nil
}

// ValidatePlanItems splits items into the usable ones and one error per
// rejected item, numbered by position.
func ValidatePlanItems(items []PlanItem, src Source) ([]PlanItem, []error) {
	valid := make([]PlanItem, 0, len(items))
	var errs []error
	for i, item := range items {
		if err := ValidatePlanItem(item, src); err != nil {
			errs = append(errs, fmt.Errorf("item %d: %w", i+1, err))
			continue
		}
		valid = append(valid, item)
	}
	return valid, errs
}
