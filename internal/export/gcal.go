package export

import (
	"fmt"
	"net/url"
	"time"

	"github.com/alexanderramin/roadmap/internal/domain"
	"github.com/alexanderramin/roadmap/internal/importer"
)

const (
	googleCalendarURL = "https://calendar.google.com/calendar/render"
	gcalStampLayout   = "20060102T150405Z"
)

// GoogleCalendarLink returns a prefilled "add event" link for the task's
// first day, timed from DailyStartTime for DailyHours.
func GoogleCalendarLink(t domain.Task, labels Labels) (string, error) {
	start, err := timedStart(t)
	if err != nil {
		return "", fmt.Errorf("calendar link for %s: %w", t.ID, err)
	}
	hours := domain.CoalesceFloat(t.DailyHours, domain.DefaultDailyHours)
	end := start.Add(time.Duration(hours * float64(time.Hour)))

	text := labels.CalendarEventPrefix + ": " + t.Task
	location := labels.CalendarLocation
	details := fmt.Sprintf("%s: %s\n\n%s: %s\n%s: %s %s\n\n%s: %s",
		labels.Task, t.Task,
		labels.StartTime, domain.CoalesceStr(t.DailyStartTime, domain.DefaultStartTime),
		labels.Duration, formatHours(hours), labels.Hours,
		labels.Motivation, t.Motivation)
	if t.Completed {
		text = importer.CompletedMarker + " " + text
		details = labels.Completed + " " + details
		location = labels.Completed + " " + location
	}

	q := url.Values{}
	q.Set("action", "TEMPLATE")
	q.Set("text", text)
	q.Set("dates", start.Format(gcalStampLayout)+"/"+end.Format(gcalStampLayout))
	q.Set("details", details)
	q.Set("location", location)
	return googleCalendarURL + "?" + q.Encode(), nil
}
