package formatter

import (
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/roadmap/internal/domain"
	"github.com/alexanderramin/roadmap/internal/export"
	"github.com/alexanderramin/roadmap/internal/planner"
	"github.com/alexanderramin/roadmap/internal/repository"
)

const titleWidth = 48

// FormatPlanList renders the stored plans inside a bordered box. The plan
// named current is marked.
func FormatPlanList(plans []*repository.Plan, current string) string {
	headers := []string{"", "NAME", "START", "WEEKS", "LANG", "UPDATED"}
	rows := make([][]string, 0, len(plans))
	for _, p := range plans {
		marker := " "
		if p.Name == current {
			marker = StyleGreen.Render("●")
		}
		start := p.Settings.StartDate
		if start == "" {
			start = Dim("today")
		}
		rows = append(rows, []string{
			marker,
			Bold(p.Name),
			start,
			fmt.Sprintf("%d", p.Settings.PeriodWeeks),
			p.Settings.Language,
			Dim(p.UpdatedAt.Format("2006-01-02 15:04")),
		})
	}
	return RenderBox("Plans", RenderTable(headers, rows))
}

// FormatRoadmap renders the roadmap as a table, one row per task or, in daily
// view, one row per day.
func FormatRoadmap(r domain.Roadmap, labels export.Labels, daily bool, today time.Time) string {
	if len(r) == 0 {
		return Dim("The roadmap is empty.")
	}

	var instances []domain.DailyInstance
	if daily {
		instances = domain.ExpandToDailyView(r.Sorted())
	} else {
		instances = domain.Collapsed(r.Sorted())
	}

	headers := []string{"", "ID", "DATE", "WHEN", strings.ToUpper(labels.Days), strings.ToUpper(labels.StartTime), strings.ToUpper(labels.Hours), strings.ToUpper(labels.Task)}
	rows := make([][]string, 0, len(instances))
	for _, inst := range instances {
		title := Truncate(inst.Task.Task, titleWidth)
		if inst.Completed {
			title = Dim(title)
		}
		rows = append(rows, []string{
			CheckMark(inst.Completed),
			TruncID(inst.ID),
			inst.Date,
			Dim(RelativeDay(inst.Date, today)),
			fmt.Sprintf("%d", inst.Span()),
			fmt.Sprintf("%s-%s", inst.DailyStartTime, inst.EndTime()),
			FormatHours(inst.DailyHours),
			title,
		})
	}
	return RenderTable(headers, rows)
}

// FormatTask renders one task with its motivation.
func FormatTask(t domain.Task, labels export.Labels) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s  %s\n", CheckMark(t.Completed), Bold(t.Task), Dim(t.ID))
	fmt.Fprintf(&b, "  %s, %d %s, %s-%s (%s %s)\n",
		HumanDate(t.Date), t.Span(), labels.Days, t.DailyStartTime, t.EndTime(), FormatHours(t.DailyHours), labels.Hours)
	if t.Motivation != "" {
		fmt.Fprintf(&b, "  %s\n", StylePurple.Render(labels.Motivation+": "+t.Motivation))
	}
	return b.String()
}

// FormatToday lists the day's instances or a hint when nothing is due.
func FormatToday(instances []domain.DailyInstance, labels export.Labels, today time.Time) string {
	var b strings.Builder
	b.WriteString(Header("Today, " + today.Format("Mon Jan 2")))
	b.WriteString("\n")
	if len(instances) == 0 {
		b.WriteString(Dim("Nothing scheduled for today."))
		b.WriteString("\n")
		return b.String()
	}
	for _, inst := range instances {
		b.WriteString(FormatTask(inst.Task, labels))
	}
	return b.String()
}

// FormatMessages renders the chat log, oldest first.
func FormatMessages(messages []planner.Message, now time.Time) string {
	var b strings.Builder
	for i, m := range messages {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(FormatMessage(m, now))
	}
	return b.String()
}

// FormatMessage renders one chat message with its downloads.
func FormatMessage(m planner.Message, now time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s\n", RoleStyle(m.Role).Bold(true).Render(string(m.Role)), Dim(HumanTimestamp(m.CreatedAt, now)))
	b.WriteString(strings.TrimRight(m.Content, "\n"))
	b.WriteString("\n")
	for _, d := range m.Downloads {
		fmt.Fprintf(&b, "  %s %s %s\n", StyleBlue.Render("↓"), d.Name, Dim(d.ContentType))
	}
	return b.String()
}

// FormatSettings renders a plan's settings as aligned key/value lines.
func FormatSettings(s planner.Settings) string {
	start := s.StartDate
	if start == "" {
		start = "today"
	}
	rows := [][]string{
		{"start date", start},
		{"work days", strings.Join(s.WorkDays.Names(), ", ")},
		{"period weeks", fmt.Sprintf("%d", s.PeriodWeeks)},
		{"language", s.Language},
		{"import mode", string(s.ImportMode)},
	}
	var b strings.Builder
	for _, r := range rows {
		fmt.Fprintf(&b, "%-14s %s\n", Dim(r[0]), r[1])
	}
	return b.String()
}

// FormatWarnings lists import warnings, or nothing when there are none.
func FormatWarnings(errs []error) string {
	if len(errs) == 0 {
		return ""
	}
	var b strings.Builder
	for _, err := range errs {
		fmt.Fprintf(&b, "%s %s\n", StyleYellow.Render("!"), err)
	}
	return b.String()
}
