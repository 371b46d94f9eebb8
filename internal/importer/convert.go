package importer

import (
	"fmt"
	"time"

	"github.com/alexanderramin/roadmap/internal/calendar"
	"github.com/alexanderramin/roadmap/internal/domain"
	"github.com/google/uuid"
)

// DefaultSummaryPrefix is stripped from imported ICS summaries when
// Options.SummaryPrefix is empty. It matches the default export label.
const DefaultSummaryPrefix = "AI Coach"

// Options carries the calendar and defaults an import is resolved against.
// Nothing is read from the environment, so callers pass Today explicitly.
type Options struct {
	StartDate      time.Time
	WorkDays       calendar.WorkDays
	TargetWorkDays int
	Today          time.Time
	Defaults       Defaults
	SummaryPrefix  string
	NewID          func() string
}

func (o Options) newID() string {
	if o.NewID != nil {
		return o.NewID()
	}
	return uuid.NewString()
}

func (o Options) summaryPrefix() string {
	return domain.CoalesceStr(o.SummaryPrefix, DefaultSummaryPrefix)
}

// PlanToTasks turns an AI plan into tasks. Items placed by day_offset are
// rescaled onto TargetWorkDays working days and mapped onto the calendar from
// StartDate. Items with a literal date keep it. Every task gets a fresh id.
// Rejected items are reported, the rest still convert.
func PlanToTasks(items []PlanItem, opts Options) (domain.Roadmap, []error) {
	valid, errs := ValidatePlanItems(items, SourcePlan)
	valid = RescaleTaskOffsets(valid, opts.TargetWorkDays)

	out := make(domain.Roadmap, 0, len(valid))
	for _, item := range valid {
		date := item.Date
		if offset, ok := item.Offset(); ok && date == "" {
			date = calendar.FormatDate(calendar.DateFromOffset(opts.StartDate, offset, opts.WorkDays, opts.Today))
		} else {
			date = normalizeDate(date)
		}
		item.ID = ""
		out = append(out, item.toTask(opts.newID(), date, opts.Defaults))
	}
	return out, errs
}

// ParsePlan extracts every JSON fragment from text and converts it with
// PlanToTasks. A fragment that fails to parse is reported and skipped.
func ParsePlan(text string, opts Options) (domain.Roadmap, []error) {
	fragments := ExtractJSONContent(text)
	if len(fragments) == 0 {
		return nil, []error{ErrNoContent}
	}

	var (
		out  domain.Roadmap
		errs []error
	)
	for i, frag := range fragments {
		items, err := DecodePlanItems(frag)
		if err != nil {
			errs = append(errs, fmt.Errorf("fragment %d: %w", i+1, err))
			continue
		}
		tasks, itemErrs := PlanToTasks(items, opts)
		for _, e := range itemErrs {
			errs = append(errs, fmt.Errorf("fragment %d: %w", i+1, e))
		}
		out = append(out, tasks...)
	}
	return out, errs
}

// ParseJSONRoadmap reads an uploaded roadmap file: a JSON array of tasks with
// literal dates. Ids in the file are kept unless missing or repeated.
func ParseJSONRoadmap(data string, opts Options) (domain.Roadmap, []error) {
	items, err := DecodePlanItems(data)
	if err != nil {
		return nil, []error{err}
	}
	valid, errs := ValidatePlanItems(items, SourceFile)

	seen := make(map[string]bool, len(valid))
	out := make(domain.Roadmap, 0, len(valid))
	for _, item := range valid {
		if item.ID == "" || seen[item.ID] {
			item.ID = opts.newID()
		}
		seen[item.ID] = true
		out = append(out, item.toTask(item.ID, normalizeDate(item.Date), opts.Defaults))
	}
	return out, errs
}

// normalizeDate trims a validated date or timestamp down to YYYY-MM-DD.
func normalizeDate(s string) string {
	t, err := calendar.ParseDate(s)
	if err != nil {
		return s
	}
	return calendar.FormatDate(t)
}
