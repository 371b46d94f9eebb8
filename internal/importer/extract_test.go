package importer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractJSONContent_FencedBlocks(t *testing.T) {
	text := "Plan:\n```json\n[{\"task\": \"A\"}]\n```\nMore:\n```json\n{\"task\": \"B\"}\n```"

	got := ExtractJSONContent(text)

	assert.Equal(t, []string{`[{"task": "A"}]`, `{"task": "B"}`}, got)
}

func TestExtractJSONContent_FallbackDoesNotDoubleCount(t *testing.T) {
	text := "```json\n[{\"task\": \"A\"}]\n```\nAlso try [{\"task\": \"B\"}] tomorrow."

	got := ExtractJSONContent(text)

	require.Len(t, got, 2)
	assert.Equal(t, `[{"task": "A"}]`, got[0])
	assert.Equal(t, `[{"task": "B"}]`, got[1])
}

func TestExtractJSONContent_BareJSONWithoutFences(t *testing.T) {
	text := `Sure! [{"task": "Read [chapter 1]", "day_offset": 1}] Good luck {not json}.`

	got := ExtractJSONContent(text)

	require.Len(t, got, 1)
	assert.Equal(t, `[{"task": "Read [chapter 1]", "day_offset": 1}]`, got[0])
}

func TestExtractJSONContent_NothingToFind(t *testing.T) {
	assert.Empty(t, ExtractJSONContent("no structured data (really)"))
}

func TestExtractICSContent(t *testing.T) {
	text := "Calendar:\n```ics\nBEGIN:VCALENDAR\nEND:VCALENDAR\n```\n"
	assert.Equal(t, []string{"BEGIN:VCALENDAR\nEND:VCALENDAR"}, ExtractICSContent(text))

	raw := "BEGIN:VCALENDAR\r\nEND:VCALENDAR\r\n"
	assert.Equal(t, []string{"BEGIN:VCALENDAR\r\nEND:VCALENDAR"}, ExtractICSContent(raw))

	assert.Empty(t, ExtractICSContent("nothing here"))
}

func TestCleanJSON(t *testing.T) {
	in := `{"a": .5, "b": -.25, /* note */ "c": "keep // this and .5"} // trailing`
	assert.Equal(t, `{"a": 0.5, "b": -0.25,  "c": "keep // this and .5"} `, cleanJSON(in))
}
