package importer

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/alexanderramin/roadmap/internal/domain"
)

// PlanItem is one entry of an AI-generated plan or an uploaded JSON roadmap.
// An AI plan carries DayOffset, a 1-based working-day position that still
// has to be rescaled and mapped onto the calendar. An uploaded roadmap
// carries a literal Date instead.
type PlanItem struct {
	ID             string   `json:"id,omitempty"`
	Task           string   `json:"task"`
	DayOffset      *float64 `json:"day_offset,omitempty"`
	Date           string   `json:"date,omitempty"`
	DurationDays   *int     `json:"durationDays,omitempty"`
	DailyHours     *float64 `json:"dailyHours,omitempty"`
	DailyStartTime string   `json:"dailyStartTime,omitempty"`
	Motivation     string   `json:"motivation,omitempty"`
	Completed      bool     `json:"completed,omitempty"`
}

// Offset returns DayOffset rounded to a whole day, and whether it is set.
func (p PlanItem) Offset() (int, bool) {
	if p.DayOffset == nil {
		return 0, false
	}
	return int(math.Round(*p.DayOffset)), true
}

// Defaults are the fallbacks for optional item fields.
type Defaults struct {
	StartTime  string
	DailyHours float64
	Motivation string
}

// PlanDefaults apply to AI plan items.
func PlanDefaults(motivation string) Defaults {
	return Defaults{StartTime: "10:00", DailyHours: 1, Motivation: motivation}
}

// FileDefaults apply to uploaded JSON roadmaps and ICS calendars.
func FileDefaults(motivation string) Defaults {
	return Defaults{StartTime: "09:00", DailyHours: 2, Motivation: motivation}
}

// toTask builds a task from the item, falling back to d for missing fields.
func (p PlanItem) toTask(id, date string, d Defaults) domain.Task {
	return domain.Task{
		ID:             domain.CoalesceStr(p.ID, id),
		Date:           date,
		DurationDays:   max(1, domain.IntFromPtrWithDefault(1, p.DurationDays)),
		DailyStartTime: domain.CoalesceStr(p.DailyStartTime, d.StartTime, domain.DefaultStartTime),
		DailyHours:     domain.Float64FromPtrWithDefault(d.DailyHours, p.DailyHours),
		Task:           p.Task,
		Motivation:     domain.CoalesceStr(p.Motivation, d.Motivation),
		Completed:      p.Completed,
	}
}

// DecodePlanItems parses one JSON fragment. A single object is treated as a
// one-element array.
func DecodePlanItems(fragment string) ([]PlanItem, error) {
	cleaned := strings.TrimSpace(cleanJSON(fragment))

	if strings.HasPrefix(cleaned, "{") {
		var single PlanItem
		if err := json.Unmarshal([]byte(cleaned), &single); err != nil {
			return nil, fmt.Errorf("parsing task: %w", err)
		}
		return []PlanItem{single}, nil
	}
	var items []PlanItem
	if err := json.Unmarshal([]byte(cleaned), &items); err != nil {
		return nil, fmt.Errorf("parsing task list: %w", err)
	}
	return items, nil
}
