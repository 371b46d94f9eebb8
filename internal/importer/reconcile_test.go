package importer

import (
	"testing"

	"github.com/alexanderramin/roadmap/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReconcile_TimelineShape(t *testing.T) {
	data := []byte(`[
		{"id": "b", "task": "Later", "start": "2024-01-10", "end": "2024-01-10", "track": 2, "color": "#ffc107", "dailyHours": 1},
		{"id": "a", "task": "First", "start": "2024-01-01", "end": "2024-01-03", "track": 1, "dailyHours": 2}
	]`)

	got, errs := Reconcile(data)

	require.Empty(t, errs)
	require.Len(t, got, 2)
	assert.Equal(t, domain.Task{ID: "a", Task: "First", Date: "2024-01-01", DurationDays: 3, DailyHours: 2}, got[0])
	assert.Equal(t, "2024-01-10", got[1].Date)
	assert.Equal(t, 1, got[1].DurationDays)
}

func TestReconcile_MalformedTimelineEntryPassesThrough(t *testing.T) {
	data := []byte(`[
		{"id": "a", "start": "2024-01-05", "end": "2024-01-06"},
		{"id": "b", "date": "2024-01-01", "durationDays": 4, "start": "2024-01-01"}
	]`)

	got, errs := Reconcile(data)

	require.Len(t, got, 2)
	assert.Equal(t, "b", got[0].ID)
	assert.Equal(t, 4, got[0].DurationDays)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Error(), "timeline task b")
}

func TestReconcile_CanonicalShapeIsSorted(t *testing.T) {
	data := []byte(`[
		{"id": "late", "date": "2024-02-01", "durationDays": 1},
		{"id": "early", "date": "2024-01-01", "durationDays": 2}
	]`)

	got, errs := Reconcile(data)

	require.Empty(t, errs)
	require.Len(t, got, 2)
	assert.Equal(t, "early", got[0].ID)
}

func TestReconcile_EmptyAndInvalid(t *testing.T) {
	got, errs := Reconcile([]byte(`[]`))
	assert.Empty(t, errs)
	assert.NotNil(t, got)
	assert.Empty(t, got)

	_, errs = Reconcile([]byte(`{"id": "x"}`))
	require.Len(t, errs, 1)
}

func TestReconcileTimeline_RoundTrip(t *testing.T) {
	r := domain.Roadmap{
		{ID: "a", Date: "2024-01-01", DurationDays: 3, DailyHours: 2, DailyStartTime: "10:00", Task: "A"},
		{ID: "b", Date: "2024-01-02", DurationDays: 1, DailyHours: 1, DailyStartTime: "09:00", Task: "B"},
	}

	got, errs := ReconcileTimeline(domain.ToTimeline(r))

	require.Empty(t, errs)
	assert.True(t, r.Equal(got))
}
