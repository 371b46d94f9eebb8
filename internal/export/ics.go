package export

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/alexanderramin/roadmap/internal/calendar"
	"github.com/alexanderramin/roadmap/internal/domain"
	"github.com/alexanderramin/roadmap/internal/importer"
	ics "github.com/arran4/golang-ical"
)

const (
	productID = "-//AI Coach//Roadmap//EN"
	uidDomain = "@aicoach.com"
)

// Mode selects how tasks become calendar events.
type Mode int

const (
	// Block writes one all-day event per task spanning its days.
	Block Mode = iota
	// Daily writes one timed event per day of every task.
	Daily
)

func (m Mode) String() string {
	if m == Daily {
		return "daily"
	}
	return "block"
}

// ParseMode accepts "daily" and "block".
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "block":
		return Block, nil
	case "daily":
		return Daily, nil
	}
	return Block, fmt.Errorf("unknown export mode %q (use daily or block)", s)
}

// ICS renders the roadmap as an iCalendar file, tasks in date order. Daily
// mode expands tasks exactly like the list view does. Clock times are written
// as given with a Z suffix so a re-import reads the same time back.
func ICS(r domain.Roadmap, mode Mode, labels Labels, now time.Time) string {
	cal := ics.NewCalendar()
	cal.SetProductId(productID)
	cal.SetCalscale("GREGORIAN")
	cal.SetMethod(ics.MethodPublish)

	sorted := r.Sorted()
	if mode == Daily {
		for inst := range domain.DailyView(sorted) {
			dailyEvent(cal, inst.Task, labels, now)
		}
	} else {
		for _, t := range sorted {
			blockEvent(cal, t, labels, now)
		}
	}
	return cal.Serialize(ics.WithNewLineWindows)
}

func dailyEvent(cal *ics.Calendar, t domain.Task, labels Labels, now time.Time) {
	start, err := timedStart(t)
	if err != nil {
		return
	}
	hours := domain.CoalesceFloat(t.DailyHours, domain.DefaultDailyHours)
	startTime := domain.CoalesceStr(t.DailyStartTime, domain.DefaultStartTime)

	ev := newEvent(cal, t, now)
	ev.SetStartAt(start)
	ev.SetEndAt(start.Add(time.Duration(hours * float64(time.Hour))))
	ev.SetSummary(Summary(t, labels))
	ev.SetDescription(fmt.Sprintf("%s: %s\n\n%s: %s\n%s: %s %s\n\n%s: %s",
		labels.Task, completedText(t, labels),
		labels.StartTime, startTime,
		labels.Duration, formatHours(hours), labels.Hours,
		labels.Motivation, t.Motivation))
	finishEvent(ev, t, labels)
}

func blockEvent(cal *ics.Calendar, t domain.Task, labels Labels, now time.Time) {
	start, err := t.Start()
	if err != nil {
		return
	}
	span := t.Span()

	ev := newEvent(cal, t, now)
	ev.SetAllDayStartAt(start)
	ev.SetAllDayEndAt(calendar.AddDays(start, span))
	ev.SetSummary(Summary(t, labels))
	ev.SetDescription(fmt.Sprintf("%s: %s\n\n%s: %d %s\n%s: %s %s\n\n%s: %s",
		labels.Task, completedText(t, labels),
		labels.DurationDays, span, labels.Days,
		labels.TotalDuration, strconv.FormatFloat(t.TotalHours(), 'f', 1, 64), labels.Hours,
		labels.Motivation, t.Motivation))
	finishEvent(ev, t, labels)
}

func newEvent(cal *ics.Calendar, t domain.Task, now time.Time) *ics.VEvent {
	ev := cal.AddEvent(t.ID + uidDomain)
	ev.SetDtStampTime(now)
	return ev
}

// finishEvent adds the properties every event carries after its times,
// summary and description.
func finishEvent(ev *ics.VEvent, t domain.Task, labels Labels) {
	for _, c := range strings.Split(labels.Categories, ",") {
		if c = strings.TrimSpace(c); c != "" {
			ev.AddCategory(c)
		}
	}
	ev.SetStatus(ics.ObjectStatusConfirmed)
	ev.SetTimeTransparency(ics.TransparencyOpaque)
	if t.DailyStartTime != "" {
		ev.SetProperty(ics.ComponentProperty(importer.PropDailyStart), t.DailyStartTime)
	}
	if t.DailyHours > 0 {
		ev.SetProperty(ics.ComponentProperty(importer.PropDailyHours), formatHours(t.DailyHours))
	}
}

// Summary is the event title: the prefix, the completed marker when done,
// then the task.
func Summary(t domain.Task, labels Labels) string {
	var b strings.Builder
	if labels.CalendarEventPrefix != "" {
		b.WriteString(labels.CalendarEventPrefix)
		b.WriteString(": ")
	}
	if t.Completed {
		b.WriteString(importer.CompletedMarker)
		b.WriteByte(' ')
	}
	b.WriteString(t.Task)
	return b.String()
}

func completedText(t domain.Task, labels Labels) string {
	if t.Completed {
		return labels.Completed + " " + t.Task
	}
	return t.Task
}

// timedStart is the task's date at its daily start time, in UTC.
func timedStart(t domain.Task) (time.Time, error) {
	day, err := t.Start()
	if err != nil {
		return time.Time{}, err
	}
	h, m, err := calendar.ParseClock(domain.CoalesceStr(t.DailyStartTime, domain.DefaultStartTime))
	if err != nil {
		h, m, _ = calendar.ParseClock(domain.DefaultStartTime)
	}
	return time.Date(day.Year(), day.Month(), day.Day(), h, m, 0, 0, time.UTC), nil
}

func formatHours(h float64) string {
	return strconv.FormatFloat(h, 'f', -1, 64)
}
