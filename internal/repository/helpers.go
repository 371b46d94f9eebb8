package repository

import (
	"encoding/json"
	"fmt"
	"time"
)

// parseTime parses a stored RFC 3339 timestamp.
func parseTime(s, field string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing %s: %w", field, err)
	}
	return t, nil
}

// timeLayout has fixed width so stored timestamps sort as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

// marshalColumn encodes v for a JSON TEXT column.
func marshalColumn(v any, field string) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("encoding %s: %w", field, err)
	}
	return string(data), nil
}

func unmarshalColumn(s string, v any, field string) error {
	if err := json.Unmarshal([]byte(s), v); err != nil {
		return fmt.Errorf("decoding %s: %w", field, err)
	}
	return nil
}
