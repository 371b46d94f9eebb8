// Package calendar implements the working-day arithmetic shared by the
// importer, the list editor and the timeline.
//
// Every date handled here is normalized to 12:00 UTC before days are added or
// subtracted, so that daylight-saving transitions and UTC offsets can never
// move a value onto the neighbouring calendar day.
package calendar

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// DateLayout is the ISO calendar date format used on every surface.
const DateLayout = "2006-01-02"

// MaxOffsetIterations bounds every day-walking loop so that an empty working
// day set can never spin forever.
const MaxOffsetIterations = 3650

// Noon returns the calendar date of t at 12:00 UTC.
func Noon(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 12, 0, 0, 0, time.UTC)
}

// ParseDate parses a YYYY-MM-DD date. A longer timestamp such as
// "2024-01-01T00:00:00Z" is accepted and truncated to its date part.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if len(s) > len(DateLayout) && s[len(DateLayout)] == 'T' {
		s = s[:len(DateLayout)]
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (expected YYYY-MM-DD)", s)
	}
	return Noon(t), nil
}

// MustParseDate is ParseDate for literals known to be valid. It panics otherwise.
func MustParseDate(s string) time.Time {
	t, err := ParseDate(s)
	if err != nil {
		panic(err)
	}
	return t
}

// FormatDate renders t as YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return Noon(t).Format(DateLayout)
}

// AddDays shifts t by n calendar days.
func AddDays(t time.Time, n int) time.Time {
	return Noon(t).AddDate(0, 0, n)
}

// DaysBetween returns the number of calendar days from a to b, rounded to the
// nearest whole day. It is negative when b is before a.
func DaysBetween(a, b time.Time) int {
	return int(math.Round(Noon(b).Sub(Noon(a)).Hours() / 24))
}

// AddWorkingDays steps from date one calendar day at a time and counts a step
// only when the day it lands on is a working day, until |n| steps have been
// counted. The sign of n gives the direction. n == 0 returns date unchanged.
func AddWorkingDays(date time.Time, n int, wd WorkDays) time.Time {
	current := Noon(date)
	if n == 0 || wd.Empty() {
		return current
	}
	step := 1
	if n < 0 {
		step = -1
		n = -n
	}
	counted := 0
	for i := 0; counted < n && i < MaxOffsetIterations; i++ {
		current = current.AddDate(0, 0, step)
		if wd.Contains(current.Weekday()) {
			counted++
		}
	}
	return current
}

// WorkingDaysDuration counts the working days in [start, end]. The result is
// never below 1, and a reversed range yields 1.
func WorkingDaysDuration(start, end time.Time, wd WorkDays) int {
	current := Noon(start)
	last := Noon(end)
	if current.After(last) {
		return 1
	}
	count := 0
	for !current.After(last) {
		if wd.Contains(current.Weekday()) {
			count++
		}
		current = current.AddDate(0, 0, 1)
	}
	if count < 1 {
		return 1
	}
	return count
}

// DateFromOffset maps a 1-based working-day offset onto a calendar date:
// offset 1 is the first working day on or after start. A zero start or an
// empty working day set falls back to today.
func DateFromOffset(start time.Time, offset int, wd WorkDays, today time.Time) time.Time {
	if start.IsZero() || wd.Empty() {
		return Noon(today)
	}
	current := Noon(start)
	counted := 0
	for i := 0; counted < offset && i < MaxOffsetIterations; i++ {
		if wd.Contains(current.Weekday()) {
			counted++
		}
		if counted < offset {
			current = current.AddDate(0, 0, 1)
		}
	}
	return current
}

// CalculateEndTime adds hours to an HH:MM start time and renders the result
// as HH:MM. Hours past midnight are not wrapped. An empty start yields "N/A".
func CalculateEndTime(startTime string, hours float64) string {
	h, m, err := ParseClock(startTime)
	if err != nil {
		return "N/A"
	}
	total := h*60 + m + int(math.Round(hours*60))
	return fmt.Sprintf("%02d:%02d", total/60, total%60)
}

// ParseClock splits an HH:MM time of day.
func ParseClock(s string) (hour, minute int, err error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, 0, fmt.Errorf("empty time of day")
	}
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid time of day %q (expected HH:MM)", s)
	}
	return t.Hour(), t.Minute(), nil
}
