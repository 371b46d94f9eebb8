package formatter

import (
	"errors"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/alexanderramin/roadmap/internal/calendar"
	"github.com/alexanderramin/roadmap/internal/domain"
	"github.com/alexanderramin/roadmap/internal/export"
	"github.com/alexanderramin/roadmap/internal/llm"
	"github.com/alexanderramin/roadmap/internal/planner"
	"github.com/alexanderramin/roadmap/internal/repository"
	"github.com/stretchr/testify/assert"
)

var ansiPattern = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

func stripANSI(s string) string {
	return ansiPattern.ReplaceAllString(s, "")
}

var today = time.Date(2024, 1, 2, 12, 0, 0, 0, time.UTC)

func sampleRoadmap() domain.Roadmap {
	return domain.Roadmap{
		{ID: "b", Date: "2024-01-04", DurationDays: 1, DailyStartTime: "09:00", DailyHours: 2, Task: "Write draft"},
		{ID: "a", Date: "2024-01-01", DurationDays: 3, DailyStartTime: "10:00", DailyHours: 1.5, Task: "Research", Completed: true},
	}
}

func TestRelativeDay(t *testing.T) {
	tests := []struct {
		date string
		want string
	}{
		{"2024-01-02", "Today"},
		{"2024-01-03", "Tomorrow"},
		{"2024-01-01", "Yesterday"},
		{"2024-01-05", "In 3d"},
		{"2024-01-23", "In 3w"},
		{"2024-04-01", "In 3mo"},
		{"2023-12-30", "3d ago"},
		{"2023-12-12", "3w ago"},
		{"2023-10-01", "3mo ago"},
		{"not-a-date", "not-a-date"},
	}
	for _, tt := range tests {
		t.Run(tt.date, func(t *testing.T) {
			assert.Equal(t, tt.want, RelativeDay(tt.date, today))
		})
	}
}

func TestFormatHoursAndTruncate(t *testing.T) {
	assert.Equal(t, "1", FormatHours(1))
	assert.Equal(t, "1.5", FormatHours(1.5))
	assert.Equal(t, "0.25", FormatHours(0.25))

	assert.Equal(t, "short", Truncate("short", 10))
	assert.Equal(t, "abcd…", Truncate("abcdefgh", 5))
	assert.Equal(t, "…", Truncate("abc", 1))
}

func TestFormatRoadmap_BlockView(t *testing.T) {
	out := stripANSI(FormatRoadmap(sampleRoadmap(), export.DefaultLabels("en"), false, today))
	lines := strings.Split(strings.TrimSpace(out), "\n")

	assert.Len(t, lines, 4, "header, rule and two rows")
	assert.Contains(t, lines[0], "TASK")
	assert.Contains(t, lines[2], "Research", "rows are in date order")
	assert.Contains(t, lines[2], "10:00-11:30")
	assert.Contains(t, lines[2], "✔")
	assert.Contains(t, lines[3], "Write draft")
	assert.Contains(t, lines[3], "In 2d")
}

func TestFormatRoadmap_DailyViewAndGerman(t *testing.T) {
	out := stripANSI(FormatRoadmap(sampleRoadmap(), export.DefaultLabels("de"), true, today))

	assert.Contains(t, out, "AUFGABE")
	assert.Contains(t, out, "Research (Day 2/3)")
	assert.Equal(t, 4, strings.Count(out, "○")+strings.Count(out, "✔"))
}

func TestFormatRoadmap_Empty(t *testing.T) {
	assert.Contains(t, FormatRoadmap(nil, export.DefaultLabels("en"), false, today), "empty")
}

func TestFormatToday(t *testing.T) {
	labels := export.DefaultLabels("en")
	r := sampleRoadmap()
	r[0].Motivation = "Keep going"
	r[0].Date = "2024-01-02"

	out := stripANSI(FormatToday(domain.TodayInstances(r, calendar.FormatDate(today)), labels, today))
	assert.Contains(t, out, "TODAY, TUE JAN 2")
	assert.Contains(t, out, "Research (Day 2/3)")
	assert.Contains(t, out, "Write draft")
	assert.Contains(t, out, "Motivation: Keep going")

	empty := stripANSI(FormatToday(nil, labels, today))
	assert.Contains(t, empty, "Nothing scheduled")
}

func TestFormatPlanList_MarksCurrent(t *testing.T) {
	plans := []*repository.Plan{
		{Name: "launch", Settings: planner.DefaultSettings()},
		{Name: "thesis", Settings: planner.Settings{StartDate: "2024-02-01", PeriodWeeks: 8, Language: "de"}},
	}
	out := stripANSI(FormatPlanList(plans, "thesis"))

	assert.Contains(t, out, "PLANS")
	for _, line := range strings.Split(out, "\n") {
		if strings.Contains(line, "thesis") {
			assert.Contains(t, line, "●")
			assert.Contains(t, line, "2024-02-01")
		}
		if strings.Contains(line, "launch") {
			assert.NotContains(t, line, "●")
			assert.Contains(t, line, "today")
		}
	}
}

func TestFormatMessage(t *testing.T) {
	m := planner.Message{
		Role:      llm.RoleAssistant,
		Content:   "Here is your plan.\n",
		Downloads: []planner.Download{{Name: "roadmap-1.json", ContentType: "application/json"}},
		CreatedAt: today.Add(-5 * time.Minute),
	}
	out := stripANSI(FormatMessage(m, today))

	assert.True(t, strings.HasPrefix(out, "assistant 5m ago"))
	assert.Contains(t, out, "Here is your plan.\n")
	assert.Contains(t, out, "roadmap-1.json application/json")
}

func TestFormatSettingsAndWarnings(t *testing.T) {
	out := stripANSI(FormatSettings(planner.DefaultSettings()))
	assert.Contains(t, out, "start date")
	assert.Contains(t, out, "today")
	assert.Contains(t, out, "monday")

	assert.Empty(t, FormatWarnings(nil))
	assert.Contains(t, stripANSI(FormatWarnings([]error{errors.New("item 2: missing task")})), "! item 2: missing task")
}
