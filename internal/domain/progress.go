package domain

// Progress summarizes completion over a whole roadmap. Hours are weighted by
// each task's span, so a three-day task counts three times its daily hours.
type Progress struct {
	CompletedTasks int
	TotalTasks     int
	CompletedHours float64
	TotalHours     float64
}

// ComputeProgress always counts every task, whatever a view is filtering.
func ComputeProgress(r Roadmap) Progress {
	var p Progress
	for _, t := range r {
		hours := t.DailyHours * float64(t.Span())
		p.TotalTasks++
		p.TotalHours += hours
		if t.Completed {
			p.CompletedTasks++
			p.CompletedHours += hours
		}
	}
	return p
}

// TaskRatio is CompletedTasks/TotalTasks, or 0 for an empty roadmap.
func (p Progress) TaskRatio() float64 {
	if p.TotalTasks == 0 {
		return 0
	}
	return float64(p.CompletedTasks) / float64(p.TotalTasks)
}

// HourRatio is CompletedHours/TotalHours, or 0 when no hours are planned.
func (p Progress) HourRatio() float64 {
	if p.TotalHours == 0 {
		return 0
	}
	return p.CompletedHours / p.TotalHours
}
