package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromYAML_PartialOverrides(t *testing.T) {
	data := []byte(`
language: de
labels:
  calendarEventPrefix: Coach
texts:
  noAnswer: "Keine Antwort."
prompt:
  rolePrompt: Du bist ein strenger Mentor.
`)
	l, err := FromYAML(data)
	require.NoError(t, err)

	assert.Equal(t, "de", l.Language)
	assert.Equal(t, "Coach", l.Labels.CalendarEventPrefix)
	assert.Empty(t, l.Labels.Task, "unset labels stay blank until resolved")
	assert.Equal(t, "Keine Antwort.", l.Texts.NoAnswer)

	r := l.Resolved(l.Language)
	assert.Equal(t, "Coach", r.Labels.CalendarEventPrefix)
	assert.Equal(t, "Aufgabe", r.Labels.Task)
	assert.Equal(t, "Du bist ein strenger Mentor.", r.Prompt.RolePrompt)
	assert.Equal(t, "Datei", r.Texts.FileHeader)
}

func TestFromYAML_Errors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"unknown key", "labels:\n  tsak: Task\n"},
		{"unsupported language", "language: fr\n"},
		{"not yaml", "language: [\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromYAML([]byte(tt.data))
			assert.Error(t, err)
		})
	}
}

func TestFromYAML_EmptyIsDefault(t *testing.T) {
	l, err := FromYAML(nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultLocale(), l)
}

func TestLoadLocale(t *testing.T) {
	l, err := LoadLocale("")
	require.NoError(t, err)
	assert.Equal(t, "en", l.Language)

	_, err = LoadLocale(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "not found")

	path := filepath.Join(t.TempDir(), "labels.yaml")
	require.NoError(t, os.WriteFile(path, []byte("labels:\n  hoursLabel: hrs\n"), 0o644))
	l, err = LoadLocale(path)
	require.NoError(t, err)
	assert.Equal(t, "hrs", l.Labels.Hours)
}

func TestLocaleYAML_RoundTripsResolvedFile(t *testing.T) {
	resolved := DefaultLocale().Resolved("de")
	data, err := resolved.YAML()
	require.NoError(t, err)
	assert.Contains(t, string(data), "taskLabel: Aufgabe")

	back, err := FromYAML(data)
	require.NoError(t, err)
	assert.Equal(t, resolved, back)
}

func TestSettings_EnvAndFlags(t *testing.T) {
	t.Setenv("ROADMAP_DB", "/tmp/env.db")
	t.Setenv("ROADMAP_PLAN", "launch")

	v := NewViper()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	AddFlags(v, fs)
	AddServeFlags(v, fs)
	require.NoError(t, fs.Parse([]string{"--db", "/tmp/flag.db", "--addr", ":9000"}))

	s := FromViper(v)
	assert.Equal(t, "/tmp/flag.db", s.DBPath)
	assert.Equal(t, "launch", s.Plan)
	assert.Equal(t, ":9000", s.Addr)
	assert.Empty(t, s.LabelsPath)
}

func TestSettings_Defaults(t *testing.T) {
	v := NewViper()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	AddFlags(v, fs)
	require.NoError(t, fs.Parse(nil))

	s := FromViper(v)
	assert.Equal(t, DefaultDBPath(), s.DBPath)
	assert.Equal(t, DefaultAddr, s.Addr)
}
