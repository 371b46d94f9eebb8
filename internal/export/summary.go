package export

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/roadmap/internal/importer"
	ics "github.com/arran4/golang-ical"
)

// SummarizeICS lists the events of a calendar for display in the chat, one
// "- summary (DD.MM.YYYY HH:MM)" line each. Text without events is returned
// unchanged.
func SummarizeICS(text string, labels Labels) string {
	type entry struct{ summary, start string }
	var events []entry

	cal, err := importer.ReadCalendar(text)
	if err != nil {
		return text
	}
	for _, ev := range cal.Events() {
		p := ev.GetProperty(ics.ComponentPropertySummary)
		if p == nil || strings.TrimSpace(p.Value) == "" {
			continue
		}
		e := entry{summary: strings.TrimSpace(p.Value)}
		if start := ev.GetProperty(ics.ComponentPropertyDtStart); start != nil {
			e.start = strings.TrimSpace(start.Value)
		}
		events = append(events, e)
	}
	if len(events) == 0 {
		return text
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s %d %s:\n", labels.CalendarWith, len(events), labels.Appointments)
	for _, e := range events {
		fmt.Fprintf(&b, "\n- %s (%s)", e.summary, displayICSDate(e.start, labels))
	}
	return b.String()
}

// displayICSDate turns 20240115T083000Z into 15.01.2024 08:30 and 20240115
// into 15.01.2024.
func displayICSDate(v string, labels Labels) string {
	if len(v) < 8 {
		return labels.UnknownDate
	}
	date := v[6:8] + "." + v[4:6] + "." + v[0:4]
	if len(v) >= 13 && v[8] == 'T' {
		return date + " " + v[9:11] + ":" + v[11:13]
	}
	return date
}
