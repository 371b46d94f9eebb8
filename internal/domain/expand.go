package domain

import (
	"fmt"
	"iter"
	"slices"

	"github.com/alexanderramin/roadmap/internal/calendar"
)

// DailyInstance is a one-day view of a task. Instances are derived on demand
// and never stored; edits made through an instance apply to OriginalID.
type DailyInstance struct {
	Task
	OriginalID string `json:"originalId"`
	IsExpanded bool   `json:"isExpanded"`
}

// DailyInstanceID is the id of day i (zero-based) of the task with the given id.
func DailyInstanceID(originalID string, day int) string {
	return fmt.Sprintf("%s-day-%d", originalID, day)
}

// DailyView yields the daily instances of tasks in input order. Callers sort
// the tasks first when they need date order. The sequence can be ranged over
// any number of times and yields identical values each time.
//
// A single-day task yields itself. A task spanning N > 1 days yields N
// instances with consecutive dates. A multi-day task whose date cannot be
// parsed yields itself unexpanded.
func DailyView(tasks []Task) iter.Seq[DailyInstance] {
	return func(yield func(DailyInstance) bool) {
		for _, t := range tasks {
			span := t.Span()
			start, err := t.Start()
			if span == 1 || err != nil {
				if !yield(DailyInstance{Task: t, OriginalID: t.ID}) {
					return
				}
				continue
			}
			for i := 0; i < span; i++ {
				inst := t
				inst.ID = DailyInstanceID(t.ID, i)
				inst.Date = calendar.FormatDate(calendar.AddDays(start, i))
				inst.Task = fmt.Sprintf("%s (Day %d/%d)", t.Task, i+1, span)
				inst.DurationDays = 1
				if !yield(DailyInstance{Task: inst, OriginalID: t.ID, IsExpanded: true}) {
					return
				}
			}
		}
	}
}

// ExpandToDailyView collects DailyView into a slice.
func ExpandToDailyView(tasks []Task) []DailyInstance {
	out := slices.Collect(DailyView(tasks))
	if out == nil {
		return []DailyInstance{}
	}
	return out
}

// Collapsed wraps tasks as unexpanded instances so block view and daily view
// can share one row type.
func Collapsed(tasks []Task) []DailyInstance {
	out := make([]DailyInstance, len(tasks))
	for i, t := range tasks {
		out[i] = DailyInstance{Task: t, OriginalID: t.ID}
	}
	return out
}

// TodayInstances returns the daily instances dated today.
func TodayInstances(r Roadmap, today string) []DailyInstance {
	var out []DailyInstance
	for inst := range DailyView(r) {
		if inst.Date == today {
			out = append(out, inst)
		}
	}
	return out
}
