package calendar

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// WorkDays is a set of weekdays, one bit per time.Weekday.
type WorkDays uint8

// Weekdays is the default Monday to Friday working week.
var Weekdays = NewWorkDays(time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday)

var dayNames = map[string]time.Weekday{
	"sunday": time.Sunday, "sun": time.Sunday, "so": time.Sunday, "sonntag": time.Sunday,
	"monday": time.Monday, "mon": time.Monday, "mo": time.Monday, "montag": time.Monday,
	"tuesday": time.Tuesday, "tue": time.Tuesday, "di": time.Tuesday, "dienstag": time.Tuesday,
	"wednesday": time.Wednesday, "wed": time.Wednesday, "mi": time.Wednesday, "mittwoch": time.Wednesday,
	"thursday": time.Thursday, "thu": time.Thursday, "do": time.Thursday, "donnerstag": time.Thursday,
	"friday": time.Friday, "fri": time.Friday, "fr": time.Friday, "freitag": time.Friday,
	"saturday": time.Saturday, "sat": time.Saturday, "sa": time.Saturday, "samstag": time.Saturday,
}

// NewWorkDays builds a set from the given weekdays.
func NewWorkDays(days ...time.Weekday) WorkDays {
	var wd WorkDays
	for _, d := range days {
		wd |= 1 << uint(d)
	}
	return wd
}

// ParseWorkDays accepts English or German day names and their short forms,
// case-insensitively. Duplicates are ignored.
func ParseWorkDays(names []string) (WorkDays, error) {
	var wd WorkDays
	for _, n := range names {
		key := strings.ToLower(strings.TrimSpace(n))
		if key == "" {
			continue
		}
		d, ok := dayNames[key]
		if !ok {
			return 0, fmt.Errorf("unknown work day %q", n)
		}
		wd |= 1 << uint(d)
	}
	return wd, nil
}

// Contains reports whether d is a working day.
func (wd WorkDays) Contains(d time.Weekday) bool {
	return wd&(1<<uint(d)) != 0
}

// Empty reports whether no day is selected.
func (wd WorkDays) Empty() bool { return wd == 0 }

// Len returns the number of working days per week.
func (wd WorkDays) Len() int {
	n := 0
	for d := time.Sunday; d <= time.Saturday; d++ {
		if wd.Contains(d) {
			n++
		}
	}
	return n
}

// Days lists the working days starting from Monday.
func (wd WorkDays) Days() []time.Weekday {
	var days []time.Weekday
	for i := 1; i <= 7; i++ {
		d := time.Weekday(i % 7)
		if wd.Contains(d) {
			days = append(days, d)
		}
	}
	return days
}

// Names lists the lowercase English names of the working days, Monday first.
func (wd WorkDays) Names() []string {
	days := wd.Days()
	names := make([]string, len(days))
	for i, d := range days {
		names[i] = strings.ToLower(d.String())
	}
	return names
}

func (wd WorkDays) String() string {
	return strings.Join(wd.Names(), ",")
}

func (wd WorkDays) MarshalJSON() ([]byte, error) {
	names := wd.Names()
	if names == nil {
		names = []string{}
	}
	return json.Marshal(names)
}

func (wd *WorkDays) UnmarshalJSON(data []byte) error {
	var names []string
	if err := json.Unmarshal(data, &names); err != nil {
		return fmt.Errorf("work days must be a list of day names: %w", err)
	}
	parsed, err := ParseWorkDays(names)
	if err != nil {
		return err
	}
	*wd = parsed
	return nil
}
