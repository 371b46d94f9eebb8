package importer

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/alexanderramin/roadmap/internal/calendar"
	"github.com/alexanderramin/roadmap/internal/domain"
	ics "github.com/arran4/golang-ical"
)

// CompletedMarker prefixes the summary of a completed task in exported ICS.
const CompletedMarker = "✅"

// Extension properties written by the exporter so a re-import is lossless.
const (
	PropDailyStart = "X-ROADMAP-DAILY-START"
	PropDailyHours = "X-ROADMAP-DAILY-HOURS"
)

var (
	icsDuration = regexp.MustCompile(`^([+-])?P(?:(\d+)W)?(?:(\d+)D)?(?:T(?:(\d+)H)?(?:(\d+)M)?(?:(\d+)S)?)?$`)
	icsStamp    = regexp.MustCompile(`^(\d{8})(?:T(\d{2})(\d{2})(\d{2})?)?(Z)?$`)
	icsName     = regexp.MustCompile(`^[A-Za-z0-9-]+(;.*)?$`)
)

// event holds the interpreted properties of one VEVENT.
type event struct {
	uid         string
	summary     string
	description string
	status      string
	start       icsTime
	end         icsTime
	duration    time.Duration
	hasDuration bool
	dailyStart  string
	dailyHours  float64
}

type icsTime struct {
	date   string
	clock  string
	allDay bool
}

func (t icsTime) set() bool { return t.date != "" }

// ParseICS reads VEVENT blocks into tasks. SUMMARY gives the task with the
// summary prefix and completed marker stripped, DTSTART the date and start
// time, DESCRIPTION the motivation, and DURATION or DTEND the hours (timed
// events) or the span (all-day events). Events without a task or a date are
// reported and skipped.
func ParseICS(text string, opts Options) (domain.Roadmap, []error) {
	cal, err := ReadCalendar(text)
	if err != nil {
		return nil, []error{err}
	}
	events := cal.Events()
	if len(events) == 0 {
		return nil, []error{ErrNoContent}
	}

	var (
		out  domain.Roadmap
		errs []error
	)
	seen := make(map[string]bool)
	for i, ev := range events {
		e, err := readEvent(ev)
		if err != nil {
			errs = append(errs, fmt.Errorf("event %d: %w", i+1, err))
		}
		task, err := e.toTask(opts)
		if err != nil {
			errs = append(errs, fmt.Errorf("event %d: %w", i+1, err))
			continue
		}
		if task.ID == "" || seen[task.ID] {
			task.ID = opts.newID()
		}
		seen[task.ID] = true
		out = append(out, task)
	}
	return out, errs
}

// ReadCalendar parses iCalendar text leniently. Bare VEVENT blocks are
// wrapped in a VCALENDAR and text outside components is ignored. Lines the
// parser would reject are dropped first, and components left open are closed.
func ReadCalendar(text string) (*ics.Calendar, error) {
	var lines, open []string
	for _, line := range unfoldICS(text) {
		line = strings.TrimSpace(line)
		name, value, ok := strings.Cut(line, ":")
		if !ok || !icsName.MatchString(name) {
			continue
		}
		if i := strings.IndexByte(name, ';'); i >= 0 {
			name = strings.ToUpper(name[:i]) + name[i:]
		} else {
			name = strings.ToUpper(name)
		}
		switch name {
		case "BEGIN":
			value = strings.ToUpper(strings.TrimSpace(value))
			if value == "VCALENDAR" {
				continue
			}
			if value == "VEVENT" {
				for len(open) > 0 {
					lines = append(lines, "END:"+open[len(open)-1])
					open = open[:len(open)-1]
				}
			}
			open = append(open, value)
		case "END":
			value = strings.ToUpper(strings.TrimSpace(value))
			if value == "VCALENDAR" {
				continue
			}
			if len(open) == 0 || open[len(open)-1] != value {
				continue
			}
			open = open[:len(open)-1]
		default:
			if len(open) == 0 {
				continue
			}
		}
		lines = append(lines, name+":"+value)
	}
	for len(open) > 0 {
		lines = append(lines, "END:"+open[len(open)-1])
		open = open[:len(open)-1]
	}

	body := "BEGIN:VCALENDAR\r\n" + strings.Join(lines, "\r\n")
	if len(lines) > 0 {
		body += "\r\n"
	}
	body += "END:VCALENDAR\r\n"
	cal, err := ics.ParseCalendarWithOptions(strings.NewReader(body),
		ics.WithUnknownPropertyHandler(ics.AcceptUnknownPropertyHandler))
	if err != nil {
		return nil, fmt.Errorf("parsing calendar: %w", err)
	}
	return cal, nil
}

// unfoldICS splits on CRLF or LF and joins continuation lines, which start
// with a space or tab.
func unfoldICS(text string) []string {
	raw := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	out := make([]string, 0, len(raw))
	for _, line := range raw {
		if len(out) > 0 && (strings.HasPrefix(line, " ") || strings.HasPrefix(line, "\t")) {
			out[len(out)-1] += line[1:]
			continue
		}
		out = append(out, line)
	}
	return out
}

// readEvent pulls the properties a task is built from. TEXT values arrive
// unescaped; times are read from the raw value so they stay as written.
func readEvent(ev *ics.VEvent) (*event, error) {
	e := &event{
		uid:         propValue(ev, ics.ComponentPropertyUniqueId),
		summary:     propValue(ev, ics.ComponentPropertySummary),
		description: propValue(ev, ics.ComponentPropertyDescription),
		status:      strings.ToUpper(propValue(ev, ics.ComponentPropertyStatus)),
	}

	var errs []error
	if p := ev.GetProperty(ics.ComponentPropertyDtStart); p != nil {
		t, err := parseICSTime(strings.TrimSpace(p.Value), p.ICalParameters)
		e.start = t
		errs = append(errs, err)
	}
	if p := ev.GetProperty(ics.ComponentPropertyDtEnd); p != nil {
		t, err := parseICSTime(strings.TrimSpace(p.Value), p.ICalParameters)
		e.end = t
		errs = append(errs, err)
	}
	if v := propValue(ev, ics.ComponentPropertyDuration); v != "" {
		d, err := parseICSDuration(v)
		e.duration, e.hasDuration = d, err == nil
		errs = append(errs, err)
	}
	if v := propValue(ev, ics.ComponentProperty(PropDailyStart)); v != "" {
		if _, _, err := calendar.ParseClock(v); err == nil {
			e.dailyStart = v
		}
	}
	if v := propValue(ev, ics.ComponentProperty(PropDailyHours)); v != "" {
		if h, err := strconv.ParseFloat(v, 64); err == nil && h > 0 {
			e.dailyHours = h
		}
	}
	return e, errors.Join(errs...)
}

func propValue(ev *ics.VEvent, prop ics.ComponentProperty) string {
	if p := ev.GetProperty(prop); p != nil {
		return strings.TrimSpace(p.Value)
	}
	return ""
}

func (e *event) toTask(opts Options) (domain.Task, error) {
	summary := strings.TrimSpace(e.summary)
	if rest, ok := strings.CutPrefix(summary, opts.summaryPrefix()+":"); ok {
		summary = strings.TrimSpace(rest)
	}
	completed := e.status == "COMPLETED"
	if rest, ok := strings.CutPrefix(summary, CompletedMarker); ok {
		summary = strings.TrimSpace(rest)
		completed = true
	}
	if summary == "" {
		return domain.Task{}, fmt.Errorf("event has no summary")
	}
	if !e.start.set() {
		return domain.Task{}, fmt.Errorf("event %q has no DTSTART", summary)
	}

	task := domain.Task{
		ID:             strings.TrimSpace(strings.SplitN(e.uid, "@", 2)[0]),
		Date:           e.start.date,
		DurationDays:   1,
		DailyStartTime: domain.CoalesceStr(e.dailyStart, e.start.clock, opts.Defaults.StartTime, domain.DefaultStartTime),
		DailyHours:     e.dailyHours,
		Task:           summary,
		Motivation:     domain.CoalesceStr(motivationFrom(e.description), opts.Defaults.Motivation),
		Completed:      completed,
	}

	if e.start.allDay {
		task.DurationDays = e.spanDays()
	} else if task.DailyHours == 0 {
		task.DailyHours = e.timedHours()
	}
	if task.DailyHours <= 0 {
		task.DailyHours = domain.CoalesceFloat(opts.Defaults.DailyHours, domain.DefaultDailyHours)
	}
	return task, nil
}

// spanDays is the number of days an all-day event covers. DTEND is exclusive.
func (e *event) spanDays() int {
	if e.hasDuration {
		return max(1, int(math.Round(e.duration.Hours()/24)))
	}
	if !e.end.set() {
		return 1
	}
	start, err1 := calendar.ParseDate(e.start.date)
	end, err2 := calendar.ParseDate(e.end.date)
	if err1 != nil || err2 != nil {
		return 1
	}
	return max(1, calendar.DaysBetween(start, end))
}

// timedHours derives daily hours from DURATION, or from DTEND on the same
// day, rounded to whole hours and at least 1. It returns 0 when neither is
// present.
func (e *event) timedHours() float64 {
	var minutes float64
	switch {
	case e.hasDuration:
		minutes = e.duration.Minutes()
	case e.end.set() && e.end.date == e.start.date && e.end.clock != "":
		sh, sm, err1 := calendar.ParseClock(e.start.clock)
		eh, em, err2 := calendar.ParseClock(e.end.clock)
		if err1 != nil || err2 != nil {
			return 0
		}
		minutes = float64((eh*60 + em) - (sh*60 + sm))
	default:
		return 0
	}
	return max(1, math.Round(minutes/60))
}

func motivationFrom(description string) string {
	_, rest, ok := strings.Cut(description, "Motivation:")
	if !ok {
		return ""
	}
	line, _, _ := strings.Cut(rest, "\n")
	return strings.TrimSpace(line)
}

// parseICSTime accepts YYYYMMDD and YYYYMMDDTHHMM[SS][Z]. Times are taken as
// written; a Z suffix or TZID parameter does not shift them.
func parseICSTime(value string, params map[string][]string) (icsTime, error) {
	m := icsStamp.FindStringSubmatch(value)
	if m == nil {
		return icsTime{}, fmt.Errorf("invalid date-time %q", value)
	}
	d, err := time.Parse("20060102", m[1])
	if err != nil {
		return icsTime{}, fmt.Errorf("invalid date-time %q: %w", value, err)
	}
	t := icsTime{date: calendar.FormatDate(d)}
	if m[2] == "" {
		t.allDay = true
		return t, nil
	}
	for k, vs := range params {
		if strings.EqualFold(k, string(ics.ParameterValue)) && len(vs) == 1 && strings.EqualFold(vs[0], string(ics.ValueDataTypeDate)) {
			t.allDay = true
		}
	}
	t.clock = m[2] + ":" + m[3]
	return t, nil
}

func parseICSDuration(value string) (time.Duration, error) {
	m := icsDuration.FindStringSubmatch(value)
	if m == nil || value == "P" || value == "PT" {
		return 0, fmt.Errorf("invalid duration %q", value)
	}
	part := func(i int) time.Duration {
		if m[i] == "" {
			return 0
		}
		n, _ := strconv.Atoi(m[i])
		return time.Duration(n)
	}
	d := part(2)*7*24*time.Hour + part(3)*24*time.Hour +
		part(4)*time.Hour + part(5)*time.Minute + part(6)*time.Second
	if m[1] == "-" {
		d = -d
	}
	return d, nil
}
