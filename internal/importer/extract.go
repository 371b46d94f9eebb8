package importer

import (
	"encoding/json"
	"errors"
	"regexp"
	"strings"
)

// ErrNoContent is returned when a response or file holds nothing importable.
var ErrNoContent = errors.New("no importable content")

var (
	jsonFence = regexp.MustCompile("```json\\s*\\n([\\s\\S]*?)\\n```")
	icsFence  = regexp.MustCompile("```ics\\s*\\n([\\s\\S]*?)\\n```")
)

// ExtractJSONContent returns the JSON fragments embedded in text. Fenced
// ```json blocks come first, in order. Bare arrays and objects outside the
// fences are picked up afterwards when they parse as valid JSON and are not
// already part of a fenced fragment.
func ExtractJSONContent(text string) []string {
	var fragments []string
	for _, m := range jsonFence.FindAllStringSubmatch(text, -1) {
		if frag := strings.TrimSpace(m[1]); frag != "" {
			fragments = append(fragments, frag)
		}
	}
	fenced := len(fragments)

	for i := 0; i < len(text); {
		c := text[i]
		if c != '[' && c != '{' {
			i++
			continue
		}
		end := balancedEnd(text, i)
		if end < 0 {
			i++
			continue
		}
		candidate := text[i : end+1]
		if !json.Valid([]byte(cleanJSON(candidate))) {
			i++
			continue
		}
		if !containedIn(candidate, fragments[:fenced]) {
			fragments = append(fragments, candidate)
		}
		i = end + 1
	}
	return fragments
}

// ExtractICSContent returns the fenced ```ics blocks in text. A text that is
// itself a calendar is returned whole.
func ExtractICSContent(text string) []string {
	var out []string
	for _, m := range icsFence.FindAllStringSubmatch(text, -1) {
		if frag := strings.TrimSpace(m[1]); frag != "" {
			out = append(out, frag)
		}
	}
	if len(out) == 0 && strings.Contains(text, "BEGIN:VCALENDAR") {
		out = append(out, strings.TrimSpace(text))
	}
	return out
}

func containedIn(candidate string, fragments []string) bool {
	for _, f := range fragments {
		if strings.Contains(f, candidate) {
			return true
		}
	}
	return false
}

// balancedEnd returns the index of the bracket closing the one at start, or
// -1. Brackets inside string literals are ignored.
func balancedEnd(s string, start int) int {
	var stack []byte
	inString := false
	escaped := false

	for i := start; i < len(s); i++ {
		c := s[i]

		if escaped {
			escaped = false
			continue
		}
		if c == '\\' && inString {
			escaped = true
			continue
		}
		if c == '"' {
			inString = !inString
			continue
		}
		if inString {
			continue
		}

		switch c {
		case '[', '{':
			stack = append(stack, c)
		case ']', '}':
			if len(stack) == 0 {
				return -1
			}
			open := stack[len(stack)-1]
			if (c == ']') != (open == '[') {
				return -1
			}
			stack = stack[:len(stack)-1]
			if len(stack) == 0 {
				return i
			}
		}
	}
	return -1
}

// cleanJSON repairs the two slips models most often make in JSON output.
func cleanJSON(s string) string {
	return normalizeLeadingDecimalNumbers(stripJSONComments(s))
}

// stripJSONComments removes // and /* */ comments outside string values.
func stripJSONComments(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	inString := false
	escaped := false

	for i := 0; i < len(s); i++ {
		c := s[i]

		if escaped {
			b.WriteByte(c)
			escaped = false
			continue
		}
		if c == '\\' && inString {
			b.WriteByte(c)
			escaped = true
			continue
		}
		if c == '"' {
			b.WriteByte(c)
			inString = !inString
			continue
		}
		if inString {
			b.WriteByte(c)
			continue
		}

		if c == '/' && i+1 < len(s) && s[i+1] == '/' {
			for i+1 < len(s) && s[i+1] != '\n' {
				i++
			}
			continue
		}
		if c == '/' && i+1 < len(s) && s[i+1] == '*' {
			i += 2
			for i+1 < len(s) {
				if s[i] == '*' && s[i+1] == '/' {
					i++
					break
				}
				i++
			}
			continue
		}

		b.WriteByte(c)
	}
	return b.String()
}

// normalizeLeadingDecimalNumbers rewrites ".5" and "-.5" as "0.5" and "-0.5"
// outside string values.
func normalizeLeadingDecimalNumbers(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 8)

	inString := false
	escaped := false

	for i := 0; i < len(s); i++ {
		c := s[i]

		if escaped {
			b.WriteByte(c)
			escaped = false
			continue
		}
		if c == '\\' && inString {
			b.WriteByte(c)
			escaped = true
			continue
		}
		if c == '"' {
			b.WriteByte(c)
			inString = !inString
			continue
		}
		if inString {
			b.WriteByte(c)
			continue
		}

		if c == '.' && i+1 < len(s) && isDigit(s[i+1]) && isNumericBoundary(prevNonSpace(s, i-1)) {
			b.WriteByte('0')
		}
		b.WriteByte(c)
	}
	return b.String()
}

func prevNonSpace(s string, i int) byte {
	for ; i >= 0; i-- {
		if s[i] != ' ' && s[i] != '\n' && s[i] != '\r' && s[i] != '\t' {
			return s[i]
		}
	}
	return 0
}

func isNumericBoundary(c byte) bool {
	switch c {
	case 0, ':', ',', '[', '{', '-':
		return true
	default:
		return false
	}
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
