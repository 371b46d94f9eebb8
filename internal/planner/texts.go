package planner

// Texts are the chat notices a session writes, localized by language.
// "{count}" in AutoImportSuccess is replaced with the number of tasks.
type Texts struct {
	DefaultMotivation string `yaml:"defaultMotivation" json:"defaultMotivation"`
	AutoImportSuccess string `yaml:"autoImportSuccess" json:"autoImportSuccess"`
	ImportNotice      string `yaml:"importNotice" json:"importNotice"`
	ParseError        string `yaml:"parseError" json:"parseError"`
	RequestError      string `yaml:"requestError" json:"requestError"`
	FileHeader        string `yaml:"fileHeader" json:"fileHeader"`
	NoAnswer          string `yaml:"noAnswer" json:"noAnswer"`
}

// DefaultTexts returns the built-in texts for "en" or "de".
func DefaultTexts(language string) Texts {
	if language == "de" {
		return Texts{
			DefaultMotivation: "Erreiche dein Ziel!",
			AutoImportSuccess: "Automatisch {count} Termine importiert!",
			ImportNotice:      "✅ Plan erfolgreich importiert! Sieh dir die aktualisierte Roadmap und Zeitleiste unten an.",
			ParseError:        "Fehler: Die Antwort der KI hatte nicht das erwartete Format und konnte nicht importiert werden. Bitte versuche es erneut. Details: ",
			RequestError:      "Fehler bei der Verarbeitung Ihrer Anfrage. Details: ",
			FileHeader:        "Datei",
			NoAnswer:          "Fehler: Keine Antwort erhalten.",
		}
	}
	return Texts{
		DefaultMotivation: "Reach your goal!",
		AutoImportSuccess: "Automatically imported {count} appointments!",
		ImportNotice:      "✅ Plan successfully imported! See the updated roadmap and timeline below.",
		ParseError:        "Error: The AI's response was not in the expected format and could not be imported. Please try again. Details: ",
		RequestError:      "Error processing your request. Details: ",
		FileHeader:        "File",
		NoAnswer:          "Error: No answer received.",
	}
}

// WithDefaults fills empty fields from DefaultTexts(language).
func (t Texts) WithDefaults(language string) Texts {
	d := DefaultTexts(language)
	fill := func(dst *string, src string) {
		if *dst == "" {
			*dst = src
		}
	}
	fill(&t.DefaultMotivation, d.DefaultMotivation)
	fill(&t.AutoImportSuccess, d.AutoImportSuccess)
	fill(&t.ImportNotice, d.ImportNotice)
	fill(&t.ParseError, d.ParseError)
	fill(&t.RequestError, d.RequestError)
	fill(&t.FileHeader, d.FileHeader)
	fill(&t.NoAnswer, d.NoAnswer)
	return t
}
