package domain

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoadmap_SortedIsStable(t *testing.T) {
	r := Roadmap{
		{ID: "c", Date: "2024-01-03"},
		{ID: "a1", Date: "2024-01-01"},
		{ID: "b", Date: "2024-01-02"},
		{ID: "a2", Date: "2024-01-01"},
	}

	got := r.Sorted()

	ids := make([]string, len(got))
	for i, task := range got {
		ids[i] = task.ID
	}
	assert.Equal(t, []string{"a1", "a2", "b", "c"}, ids)
	assert.Equal(t, "c", r[0].ID, "input untouched")
}

func TestRoadmap_EqualIsValueBased(t *testing.T) {
	a := Roadmap{{ID: "a", Date: "2024-01-01", DailyHours: 1}}
	b := Roadmap{{ID: "a", Date: "2024-01-01", DailyHours: 1}}

	assert.True(t, a.Equal(b))
	assert.True(t, Roadmap(nil).Equal(Roadmap{}))

	b[0].Completed = true
	assert.False(t, a.Equal(b))
}

func TestRoadmap_ReplaceAndWithout(t *testing.T) {
	r := Roadmap{{ID: "a", Task: "one"}, {ID: "b", Task: "two"}}

	replaced := r.Replace(Task{ID: "b", Task: "TWO"})
	assert.Equal(t, "TWO", replaced[1].Task)
	assert.Equal(t, "two", r[1].Task)

	removed := r.Without("a")
	require.Len(t, removed, 1)
	assert.Equal(t, "b", removed[0].ID)
	assert.Len(t, r, 2)
}

func TestRoadmap_Validate(t *testing.T) {
	ok := Roadmap{{ID: "a", Date: "2024-01-01", DurationDays: 1, DailyHours: 1, DailyStartTime: "09:00"}}
	assert.NoError(t, ok.Validate())

	bad := Roadmap{
		{ID: "a", Date: "2024-01-01", DurationDays: 0, DailyHours: 1},
		{ID: "a", Date: "2024-01-01", DurationDays: 1, DailyHours: 0},
	}
	err := bad.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "durationDays")
	assert.Contains(t, err.Error(), "dailyHours")
	assert.Contains(t, err.Error(), "duplicate task id a")
}

func TestTimelineRoundTrip(t *testing.T) {
	r := Roadmap{
		{ID: "a", Date: "2024-01-01", DurationDays: 3, DailyHours: 2},
		{ID: "undated", Date: ""},
		{ID: "", Date: "2024-01-05", DurationDays: 1, DailyHours: 1},
		{ID: "a", Date: "2024-01-07", DurationDays: 1, DailyHours: 1},
	}

	tl := ToTimeline(r)

	require.Len(t, tl, 4)
	assert.Equal(t, "2024-01-01", tl[0].Start)
	assert.Equal(t, "2024-01-03", tl[0].End)
	assert.Equal(t, 1, tl[0].Track)
	assert.Equal(t, Palette[0], tl[0].Color)

	assert.False(t, tl[1].Dated())
	assert.Zero(t, tl[1].Track)
	assert.Equal(t, r[1], tl[1].Task)

	assert.Equal(t, "task-2", tl[2].ID)
	assert.Equal(t, 2, tl[2].Track)
	assert.Equal(t, "task-3", tl[3].ID, "a repeated id is replaced")
	assert.Equal(t, 3, tl[3].Track)

	back, err := tl[0].Canonical()
	require.NoError(t, err)
	assert.Equal(t, r[0], back)
}

func TestRoadmapNormalized(t *testing.T) {
	n := 0
	newID := func() string { n++; return fmt.Sprintf("new-%d", n) }
	r := Roadmap{
		{ID: "a", Date: "2024-01-01"},
		{ID: "a", Date: "2024-01-02", DurationDays: 2, DailyHours: 3, DailyStartTime: "08:00"},
		{Date: "2024-01-03"},
	}

	got := r.Normalized(newID)

	require.NoError(t, got.Validate())
	assert.Equal(t, Task{ID: "a", Date: "2024-01-01", DurationDays: 1, DailyHours: 1, DailyStartTime: "10:00"}, got[0])
	assert.Equal(t, "new-1", got[1].ID)
	assert.Equal(t, 2, got[1].DurationDays)
	assert.Equal(t, "08:00", got[1].DailyStartTime)
	assert.Equal(t, "new-2", got[2].ID)
	assert.Equal(t, "a", r[1].ID, "input is not modified")
}

func TestTimelineTask_CanonicalFloorsDuration(t *testing.T) {
	tt := TimelineTask{Task: Task{ID: "a"}, Start: "2024-01-05", End: "2024-01-01"}
	got, err := tt.Canonical()
	require.NoError(t, err)
	assert.Equal(t, 1, got.DurationDays)
	assert.Equal(t, "2024-01-05", got.Date)
}

func TestComputeProgress(t *testing.T) {
	r := Roadmap{
		{ID: "a", DurationDays: 3, DailyHours: 2, Completed: true},
		{ID: "b", DurationDays: 1, DailyHours: 4},
	}

	p := ComputeProgress(r)

	assert.Equal(t, 1, p.CompletedTasks)
	assert.Equal(t, 2, p.TotalTasks)
	assert.InDelta(t, 6.0, p.CompletedHours, 1e-9)
	assert.InDelta(t, 10.0, p.TotalHours, 1e-9)
	assert.InDelta(t, 0.5, p.TaskRatio(), 1e-9)
	assert.InDelta(t, 0.6, p.HourRatio(), 1e-9)

	empty := ComputeProgress(nil)
	assert.Zero(t, empty.TaskRatio())
	assert.Zero(t, empty.HourRatio())
}
