// Package export renders a roadmap for calendars: ICS files, JSON downloads
// and Google Calendar links. All user-visible text comes from Labels.
package export

// Labels holds the words used in exported calendars.
type Labels struct {
	CalendarEventPrefix string `yaml:"calendarEventPrefix" json:"calendarEventPrefix"`
	Task                string `yaml:"taskLabel" json:"taskLabel"`
	StartTime           string `yaml:"startTimeLabel" json:"startTimeLabel"`
	Duration            string `yaml:"durationLabel" json:"durationLabel"`
	DurationDays        string `yaml:"taskDurationDaysLabel" json:"taskDurationDaysLabel"`
	TotalDuration       string `yaml:"taskDurationLabel" json:"taskDurationLabel"`
	Hours               string `yaml:"hoursLabel" json:"hoursLabel"`
	Days                string `yaml:"daysLabel" json:"daysLabel"`
	Motivation          string `yaml:"motivationLabel" json:"motivationLabel"`
	Completed           string `yaml:"completedLabel" json:"completedLabel"`
	CalendarLocation    string `yaml:"calendarLocation" json:"calendarLocation"`
	Categories          string `yaml:"categories" json:"categories"`
	ICSFileName         string `yaml:"icsFileName" json:"icsFileName"`
	CalendarWith        string `yaml:"icsCalendarWith" json:"icsCalendarWith"`
	Appointments        string `yaml:"appointments" json:"appointments"`
	UnknownDate         string `yaml:"unknownDate" json:"unknownDate"`
}

// DefaultLabels returns the built-in labels for language, "en" or "de".
// Unknown languages get English.
func DefaultLabels(language string) Labels {
	l := Labels{
		CalendarEventPrefix: "AI Coach",
		Task:                "Task",
		StartTime:           "START TIME",
		Duration:            "DURATION",
		DurationDays:        "DURATION",
		TotalDuration:       "TOTAL DURATION",
		Hours:               "hours",
		Days:                "day(s)",
		Motivation:          "Motivation",
		Completed:           "[Completed]",
		CalendarLocation:    "Personal Development",
		Categories:          "AI Coach,Personal Development",
		ICSFileName:         "ai-coach-roadmap.ics",
		CalendarWith:        "ICS calendar with",
		Appointments:        "appointments",
		UnknownDate:         "Unknown",
	}
	if language == "de" {
		l.Task = "Aufgabe"
		l.StartTime = "STARTZEIT"
		l.Duration = "DAUER"
		l.DurationDays = "DAUER"
		l.TotalDuration = "GESAMTDAUER"
		l.Hours = "Stunden"
		l.Days = "Tag(e)"
		l.Completed = "[Erledigt]"
		l.CalendarLocation = "Persönliche Entwicklung"
		l.Categories = "AI Coach,Persönliche Entwicklung"
		l.ICSFileName = "ki-coach-projektplan.ics"
		l.CalendarWith = "ICS-Kalender mit"
		l.Appointments = "Terminen"
		l.UnknownDate = "Unbekannt"
	}
	return l
}

// WithDefaults fills empty fields from DefaultLabels(language).
func (l Labels) WithDefaults(language string) Labels {
	d := DefaultLabels(language)
	fill := func(dst *string, src string) {
		if *dst == "" {
			*dst = src
		}
	}
	fill(&l.CalendarEventPrefix, d.CalendarEventPrefix)
	fill(&l.Task, d.Task)
	fill(&l.StartTime, d.StartTime)
	fill(&l.Duration, d.Duration)
	fill(&l.DurationDays, d.DurationDays)
	fill(&l.TotalDuration, d.TotalDuration)
	fill(&l.Hours, d.Hours)
	fill(&l.Days, d.Days)
	fill(&l.Motivation, d.Motivation)
	fill(&l.Completed, d.Completed)
	fill(&l.CalendarLocation, d.CalendarLocation)
	fill(&l.Categories, d.Categories)
	fill(&l.ICSFileName, d.ICSFileName)
	fill(&l.CalendarWith, d.CalendarWith)
	fill(&l.Appointments, d.Appointments)
	fill(&l.UnknownDate, d.UnknownDate)
	return l
}
