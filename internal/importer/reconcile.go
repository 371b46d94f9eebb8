package importer

import (
	"encoding/json"
	"fmt"

	"github.com/alexanderramin/roadmap/internal/domain"
)

// Reconcile decodes a full proposed roadmap from either editing surface. A
// payload whose first entry has a "start" key is timeline shaped and is
// converted with ReconcileTimeline. Anything else is read as canonical tasks.
// The result is sorted by date.
func Reconcile(data []byte) (domain.Roadmap, []error) {
	var rows []map[string]json.RawMessage
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, []error{fmt.Errorf("decoding roadmap update: %w", err)}
	}
	if len(rows) == 0 {
		return domain.Roadmap{}, nil
	}

	if _, ok := rows[0]["start"]; ok {
		var tt []domain.TimelineTask
		if err := json.Unmarshal(data, &tt); err != nil {
			return nil, []error{fmt.Errorf("decoding timeline update: %w", err)}
		}
		return ReconcileTimeline(tt)
	}

	var r domain.Roadmap
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, []error{fmt.Errorf("decoding roadmap update: %w", err)}
	}
	return r.Sorted(), nil
}

// ReconcileTimeline converts timeline tasks back to canonical tasks sorted by
// date. An entry missing start or end, or carrying an unparseable one, is kept
// with its canonical fields untouched and reported.
func ReconcileTimeline(tasks []domain.TimelineTask) (domain.Roadmap, []error) {
	out := make(domain.Roadmap, 0, len(tasks))
	var errs []error
	for _, tt := range tasks {
		if tt.Start == "" || tt.End == "" {
			errs = append(errs, fmt.Errorf("timeline task %s is missing start or end, kept unchanged", tt.ID))
			out = append(out, tt.Task)
			continue
		}
		task, err := tt.Canonical()
		if err != nil {
			errs = append(errs, fmt.Errorf("%w, kept unchanged", err))
			out = append(out, tt.Task)
			continue
		}
		out = append(out, task)
	}
	return out.Sorted(), errs
}
