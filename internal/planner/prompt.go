package planner

import (
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/roadmap/internal/calendar"
)

// DefaultRolePrompt opens the system prompt when no role prompt is configured.
const DefaultRolePrompt = "You are a helpful project manager."

// PromptTemplate holds the localized fragments the planning form is rendered
// with. Each field is the label placed in front of the matching answer.
type PromptTemplate struct {
	RolePrompt     string            `yaml:"rolePrompt" json:"rolePrompt"`
	Problem        string            `yaml:"problem" json:"problem"`
	Solution       string            `yaml:"solution" json:"solution"`
	Result         string            `yaml:"result" json:"result"`
	Period         string            `yaml:"period" json:"period"`
	DailyStartTime string            `yaml:"dailyStartTime" json:"dailyStartTime"`
	DailyHours     string            `yaml:"dailyHours" json:"dailyHours"`
	WorkDays       string            `yaml:"workDays" json:"workDays"`
	Industry       string            `yaml:"industry" json:"industry"`
	DayNames       map[string]string `yaml:"dayNames" json:"dayNames"`
	Generated      string            `yaml:"generated" json:"generated"`
}

// DefaultPromptTemplate returns the built-in template for "en" or "de".
// Unknown languages get English.
func DefaultPromptTemplate(language string) PromptTemplate {
	if language == "de" {
		return PromptTemplate{
			RolePrompt:     "Du bist ein hilfreicher Projektmanager.",
			Problem:        "\nProblem: ",
			Solution:       "\nLösung: ",
			Result:         "\nGewünschtes Ergebnis: ",
			Period:         "\nZeitraum in Wochen: ",
			DailyStartTime: "\nTägliche Startzeit: ",
			DailyHours:     "\nStunden pro Tag: ",
			WorkDays:       "\nArbeitstage: ",
			Industry:       "\nBranche: ",
			DayNames: map[string]string{
				"monday": "Montag", "tuesday": "Dienstag", "wednesday": "Mittwoch",
				"thursday": "Donnerstag", "friday": "Freitag", "saturday": "Samstag", "sunday": "Sonntag",
			},
			Generated: `✅ System-Prompt wurde generiert. Du kannst jetzt im Chat unten den Plan erstellen lassen (z.B. mit "Erstelle den Plan").`,
		}
	}
	return PromptTemplate{
		RolePrompt:     DefaultRolePrompt,
		Problem:        "\nProblem: ",
		Solution:       "\nSolution: ",
		Result:         "\nDesired result: ",
		Period:         "\nPeriod in weeks: ",
		DailyStartTime: "\nDaily start time: ",
		DailyHours:     "\nHours per day: ",
		WorkDays:       "\nWork days: ",
		Industry:       "\nIndustry: ",
		DayNames: map[string]string{
			"monday": "Monday", "tuesday": "Tuesday", "wednesday": "Wednesday",
			"thursday": "Thursday", "friday": "Friday", "saturday": "Saturday", "sunday": "Sunday",
		},
		Generated: "✅ System prompt has been generated. You can now create the plan in the chat below (e.g. with “Create the plan”).",
	}
}

// WithDefaults fills empty fields from the built-in template for language.
func (p PromptTemplate) WithDefaults(language string) PromptTemplate {
	d := DefaultPromptTemplate(language)
	fill := func(dst *string, src string) {
		if *dst == "" {
			*dst = src
		}
	}
	fill(&p.RolePrompt, d.RolePrompt)
	fill(&p.Problem, d.Problem)
	fill(&p.Solution, d.Solution)
	fill(&p.Result, d.Result)
	fill(&p.Period, d.Period)
	fill(&p.DailyStartTime, d.DailyStartTime)
	fill(&p.DailyHours, d.DailyHours)
	fill(&p.WorkDays, d.WorkDays)
	fill(&p.Industry, d.Industry)
	fill(&p.Generated, d.Generated)
	if p.DayNames == nil {
		p.DayNames = d.DayNames
	}
	return p
}

// Form is the planning questionnaire a user fills in before asking for a plan.
type Form struct {
	Problem        string
	Solution       string
	Result         string
	PeriodWeeks    int
	StartDate      string
	DailyStartTime string
	DailyHours     float64
	WorkDays       calendar.WorkDays
	Industry       string
}

// Validate checks the fields the session settings are derived from.
func (f Form) Validate() error {
	if f.PeriodWeeks < 1 {
		return fmt.Errorf("period must be at least one week")
	}
	if f.WorkDays.Empty() {
		return fmt.Errorf("at least one work day is required")
	}
	if f.StartDate != "" {
		if _, err := calendar.ParseDate(f.StartDate); err != nil {
			return fmt.Errorf("start date: %w", err)
		}
	}
	if f.DailyStartTime != "" {
		if _, _, err := calendar.ParseClock(f.DailyStartTime); err != nil {
			return fmt.Errorf("daily start time: %w", err)
		}
	}
	if f.DailyHours < 0 {
		return fmt.Errorf("daily hours must not be negative")
	}
	return nil
}

// BuildPrompt renders the system prompt: the role prompt, the user's answers
// and the output instructions for language.
func BuildPrompt(f Form, tmpl PromptTemplate, language string) string {
	tmpl = tmpl.WithDefaults(language)

	days := make([]string, 0, f.WorkDays.Len())
	for _, name := range f.WorkDays.Names() {
		days = append(days, tmpl.DayNames[name])
	}

	var b strings.Builder
	b.WriteString(tmpl.Problem + f.Problem)
	b.WriteString(tmpl.Solution + f.Solution)
	b.WriteString(tmpl.Result + f.Result)
	b.WriteString(tmpl.Period + fmt.Sprint(f.PeriodWeeks))
	b.WriteString(tmpl.DailyStartTime + f.DailyStartTime)
	b.WriteString(tmpl.DailyHours + formatHours(f.DailyHours))
	b.WriteString(tmpl.WorkDays + strings.Join(days, ", "))
	b.WriteString(tmpl.Industry + f.Industry)

	return tmpl.RolePrompt + "\n\n" + b.String() + "\n\n" + OutputInstructions(language)
}

// OutputInstructions tells the model to answer with nothing but a JSON plan.
func OutputInstructions(language string) string {
	if language == "de" {
		return outputInstructionsDE
	}
	return outputInstructionsEN
}

func formatHours(h float64) string {
	return fmt.Sprintf("%g", h)
}

// startDate parses the form's start date, or today when it is empty.
func (f Form) startDate(today time.Time) string {
	if f.StartDate == "" {
		return calendar.FormatDate(today)
	}
	return calendar.FormatDate(calendar.MustParseDate(f.StartDate))
}

const outputInstructionsEN = `VERY IMPORTANT: Your entire response MUST be ONLY a single, valid JSON array of task objects.
Do NOT add any text, explanations, comments, or markdown like ` + "```json" + ` before or after the JSON array.
The JSON must be perfectly formatted with double quotes for all keys and string values.

Each object in the array represents a single task and must have these exact keys:
- "task": (string) A description of the task.
- "day_offset": (number) The project day this task falls on (e.g., 1, 2, 3...). Day 1 is the first available work day.
- "dailyHours": (number) The hours required for this task.
- "dailyStartTime": (string) The start time of the task (e.g., "10:00").
- "motivation": (string) A short, motivating sentence for completing the task.

Example of a perfect, complete response:
[
  { "day_offset": 1, "task": "Initial research on competitors", "dailyHours": 4, "dailyStartTime": "10:00", "motivation": "A journey of a thousand miles begins with a single step!" },
  { "day_offset": 2, "task": "Outline value proposition based on research", "dailyHours": 3, "dailyStartTime": "10:00", "motivation": "Clarity is power. Let's define our core message." }
]`

const outputInstructionsDE = `SEHR WICHTIG: Deine gesamte Antwort MUSS NUR ein einzelnes, gültiges JSON-Array mit task-Objekten sein.
Füge KEINEN Text, keine Erklärungen, Kommentare oder Markdown wie ` + "```json" + ` vor oder nach dem JSON-Array hinzu.
Das JSON muss perfekt formatiert sein, mit doppelten Anführungszeichen für alle Schlüssel und String-Werte.

Jedes Objekt im Array repräsentiert eine einzelne Aufgabe und muss genau diese Schlüssel enthalten:
- "task": (string) Eine Beschreibung der Aufgabe.
- "day_offset": (number) Der Projekttag, an dem diese Aufgabe stattfindet (z. B. 1, 2, 3…). Tag 1 ist der erste verfügbare Arbeitstag.
- "dailyHours": (number) Die für diese Aufgabe benötigten Stunden.
- "dailyStartTime": (string) Die Startzeit der Aufgabe (z. B. "10:00").
- "motivation": (string) Ein kurzer, motivierender Satz zur Erledigung der Aufgabe.

Beispiel für eine perfekte, vollständige Antwort:
[
  { "day_offset": 1, "task": "Erste Recherche zu Mitbewerbern", "dailyHours": 4, "dailyStartTime": "10:00", "motivation": "Auch die längste Reise beginnt mit dem ersten Schritt!" },
  { "day_offset": 2, "task": "Wertversprechen basierend auf der Recherche skizzieren", "dailyHours": 3, "dailyStartTime": "10:00", "motivation": "Klarheit ist Macht. Definieren wir unsere Kernbotschaft." }
]`
