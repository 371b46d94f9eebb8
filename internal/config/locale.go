// Package config loads the process settings (flags and ROADMAP_* env) and
// the optional labels file that localizes exports, prompts and chat notices.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/alexanderramin/roadmap/internal/export"
	"github.com/alexanderramin/roadmap/internal/planner"
	"gopkg.in/yaml.v3"
)

// Languages with built-in defaults.
var Languages = []string{"en", "de"}

// Locale models labels.yaml. Every field is an override: anything left out
// falls back to the built-in text for the plan's language.
type Locale struct {
	// Language is given to new plans.
	Language string                 `yaml:"language"`
	Labels   export.Labels          `yaml:"labels"`
	Prompt   planner.PromptTemplate `yaml:"prompt"`
	Texts    planner.Texts          `yaml:"texts"`
}

// DefaultLocale returns an English locale with no overrides.
func DefaultLocale() *Locale {
	return &Locale{Language: "en"}
}

// Validate checks the language is one with built-in defaults.
func (l *Locale) Validate() error {
	for _, lang := range Languages {
		if l.Language == lang {
			return nil
		}
	}
	return fmt.Errorf("language %q is not supported (expected en or de)", l.Language)
}

// FromYAML parses a labels file. Unknown keys are rejected so a misspelt
// label does not silently fall back to the default.
func FromYAML(data []byte) (*Locale, error) {
	l := DefaultLocale()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(l); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("invalid labels yaml: %w", err)
	}
	if l.Language == "" {
		l.Language = "en"
	}
	if err := l.Validate(); err != nil {
		return nil, err
	}
	return l, nil
}

// LoadLocale reads the labels file at path. An empty path gives the defaults.
func LoadLocale(path string) (*Locale, error) {
	if path == "" {
		return DefaultLocale(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("labels file %s not found", path)
		}
		return nil, err
	}
	l, err := FromYAML(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return l, nil
}

// Resolved fills every blank with the built-in text for language, giving a
// complete file a user can start editing from.
func (l *Locale) Resolved(language string) *Locale {
	return &Locale{
		Language: language,
		Labels:   l.Labels.WithDefaults(language),
		Prompt:   l.Prompt.WithDefaults(language),
		Texts:    l.Texts.WithDefaults(language),
	}
}

// YAML renders the locale as a labels file.
func (l *Locale) YAML() ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(l); err != nil {
		return nil, fmt.Errorf("encoding labels yaml: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
