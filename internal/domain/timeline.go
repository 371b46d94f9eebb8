package domain

import (
	"fmt"

	"github.com/alexanderramin/roadmap/internal/calendar"
)

// Palette is cycled by row index to color timeline bars.
var Palette = []string{"#3ecf8e", "#ffc107", "#ff7043", "#42a5f5"}

// TimelineTask is a task re-expressed with inclusive Start/End dates, a
// 1-based display row and a color for the visual editor.
type TimelineTask struct {
	Task
	Start string `json:"start"`
	End   string `json:"end"`
	Track int    `json:"track"`
	Color string `json:"color"`
}

// Dated reports whether the task has a usable Start.
func (tt TimelineTask) Dated() bool { return tt.Start != "" }

// ToTimeline converts the roadmap for the visual editor. Dated tasks get
// Start, End and a Track numbering their rows in roadmap order. A task
// without a usable date is carried with empty Start, End and Track so it
// survives the round trip unchanged. Missing or repeated ids become
// "task-{index}".
func ToTimeline(r Roadmap) []TimelineTask {
	out := make([]TimelineTask, 0, len(r))
	seen := make(map[string]bool, len(r))
	row := 0
	for i, t := range r {
		if t.ID == "" || seen[t.ID] {
			t.ID = freeID(seen, i)
		}
		seen[t.ID] = true

		start, err := t.Start()
		if err != nil {
			out = append(out, TimelineTask{Task: t})
			continue
		}
		out = append(out, TimelineTask{
			Task:  t,
			Start: calendar.FormatDate(start),
			End:   calendar.FormatDate(calendar.AddDays(start, t.Span()-1)),
			Track: row + 1,
			Color: Palette[row%len(Palette)],
		})
		row++
	}
	return out
}

func freeID(seen map[string]bool, i int) string {
	for ; ; i++ {
		if id := fmt.Sprintf("task-%d", i); !seen[id] {
			return id
		}
	}
}

// Canonical converts back to a Task: Date becomes Start and DurationDays is
// End - Start + 1, at least 1. Track and Color are dropped.
func (tt TimelineTask) Canonical() (Task, error) {
	start, err := calendar.ParseDate(tt.Start)
	if err != nil {
		return Task{}, fmt.Errorf("timeline task %s start: %w", tt.ID, err)
	}
	end, err := calendar.ParseDate(tt.End)
	if err != nil {
		return Task{}, fmt.Errorf("timeline task %s end: %w", tt.ID, err)
	}
	t := tt.Task
	t.Date = calendar.FormatDate(start)
	t.DurationDays = max(1, calendar.DaysBetween(start, end)+1)
	return t, nil
}
