package cli

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/alexanderramin/roadmap/internal/calendar"
	"github.com/alexanderramin/roadmap/internal/cli/formatter"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
)

func roadmapHuhTheme() *huh.Theme {
	t := huh.ThemeBase()

	// Focused state: orange accent
	t.Focused.Title = lipgloss.NewStyle().Foreground(formatter.ColorHeader).Bold(true)
	t.Focused.SelectSelector = lipgloss.NewStyle().Foreground(formatter.ColorHeader)
	t.Focused.SelectedOption = lipgloss.NewStyle().Foreground(formatter.ColorGreen)
	t.Focused.UnselectedOption = lipgloss.NewStyle().Foreground(formatter.ColorFg)
	t.Focused.FocusedButton = lipgloss.NewStyle().Foreground(formatter.ColorFg).Background(formatter.ColorHeader).Padding(0, 1)
	t.Focused.BlurredButton = lipgloss.NewStyle().Foreground(formatter.ColorDim).Padding(0, 1)
	t.Focused.TextInput.Cursor = lipgloss.NewStyle().Foreground(formatter.ColorHeader)
	t.Focused.TextInput.Prompt = lipgloss.NewStyle().Foreground(formatter.ColorHeader)
	t.Focused.TextInput.Text = lipgloss.NewStyle().Foreground(formatter.ColorFg)
	t.Focused.TextInput.Placeholder = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Focused.Description = lipgloss.NewStyle().Foreground(formatter.ColorDim)

	// Blurred state: dimmed
	t.Blurred.Title = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.SelectSelector = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.SelectedOption = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.UnselectedOption = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.TextInput.Prompt = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.TextInput.Text = lipgloss.NewStyle().Foreground(formatter.ColorDim)

	return t
}

func newForm(groups ...*huh.Group) *huh.Form {
	return huh.NewForm(groups...).WithTheme(roadmapHuhTheme()).WithShowHelp(false)
}

// taskFields are the editable task fields as form strings.
type taskFields struct {
	Task         string
	Date         string
	DurationDays string
	StartTime    string
	DailyHours   string
	Motivation   string
}

func taskForm(title string, f *taskFields) *huh.Form {
	return newForm(
		huh.NewGroup(
			huh.NewInput().Title("Task").Value(&f.Task).Validate(required("task")),
			dateInput("Date (YYYY-MM-DD)", &f.Date),
			huh.NewInput().Title("Duration (days)").Placeholder("1").Value(&f.DurationDays).Validate(validatePositiveInt),
			huh.NewInput().Title("Daily start time (HH:MM)").Placeholder("10:00").Value(&f.StartTime).Validate(validateOptionalClock),
			huh.NewInput().Title("Hours per day").Placeholder("1").Value(&f.DailyHours).Validate(validatePositiveFloat),
			huh.NewText().Title("Motivation").Value(&f.Motivation),
		).Title(title),
	)
}

// planFormFields mirror planner.Form as form strings.
type planFormFields struct {
	Problem     string
	Solution    string
	Result      string
	PeriodWeeks string
	StartDate   string
	StartTime   string
	DailyHours  string
	WorkDays    []string
	Industry    string
}

func planForm(f *planFormFields) *huh.Form {
	dayOptions := make([]huh.Option[string], 0, 7)
	for _, name := range calendar.NewWorkDays(0, 1, 2, 3, 4, 5, 6).Names() {
		dayOptions = append(dayOptions, huh.NewOption(name, name))
	}
	return newForm(
		huh.NewGroup(
			huh.NewText().Title("What problem do you want to solve?").Value(&f.Problem).Validate(required("problem")),
			huh.NewText().Title("What solution do you have in mind?").Value(&f.Solution),
			huh.NewText().Title("What result do you expect?").Value(&f.Result),
			huh.NewInput().Title("Industry").Value(&f.Industry),
		),
		huh.NewGroup(
			huh.NewInput().Title("Period (weeks)").Placeholder("4").Value(&f.PeriodWeeks).Validate(validatePositiveInt),
			dateInput("Start date (YYYY-MM-DD, blank for today)", &f.StartDate),
			huh.NewInput().Title("Daily start time (HH:MM)").Placeholder("10:00").Value(&f.StartTime).Validate(validateOptionalClock),
			huh.NewInput().Title("Hours per day").Placeholder("1").Value(&f.DailyHours).Validate(validatePositiveFloat),
			huh.NewMultiSelect[string]().Title("Work days").Options(dayOptions...).Value(&f.WorkDays),
		),
	)
}

func confirmForm(title string, result *bool) *huh.Form {
	return newForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(title).
				Affirmative("Yes").
				Negative("No").
				Value(result),
		),
	)
}

func dateInput(title string, value *string) *huh.Input {
	return huh.NewInput().
		Title(title).
		Placeholder("2024-06-30").
		Value(value).
		Validate(validateOptionalDate)
}

func required(name string) func(string) error {
	return func(s string) error {
		if s == "" {
			return fmt.Errorf("%s is required", name)
		}
		return nil
	}
}

// validatePositiveInt accepts empty or a positive integer.
func validatePositiveInt(s string) error {
	if s == "" {
		return nil
	}
	v, err := strconv.Atoi(s)
	if err != nil || v <= 0 {
		return errors.New("enter a positive number")
	}
	return nil
}

// validatePositiveFloat accepts empty or a number above zero.
func validatePositiveFloat(s string) error {
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v <= 0 {
		return errors.New("enter a number above zero")
	}
	return nil
}

// validateOptionalDate accepts empty or a YYYY-MM-DD date string.
func validateOptionalDate(s string) error {
	if s == "" {
		return nil
	}
	if _, err := calendar.ParseDate(s); err != nil {
		return errors.New("use YYYY-MM-DD format")
	}
	return nil
}

func validateOptionalClock(s string) error {
	if s == "" {
		return nil
	}
	if _, _, err := calendar.ParseClock(s); err != nil {
		return errors.New("use HH:MM format")
	}
	return nil
}
