package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/alexanderramin/roadmap/internal/config"
	"github.com/alexanderramin/roadmap/internal/domain"
	"github.com/alexanderramin/roadmap/internal/llm"
	"github.com/alexanderramin/roadmap/internal/planner"
	"github.com/alexanderramin/roadmap/internal/service"
	"github.com/alexanderramin/roadmap/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2024, 1, 2, 8, 0, 0, 0, time.UTC)

var ansiPattern = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

type stubChatter struct {
	reply string
}

func (s stubChatter) Chat(context.Context, llm.ChatRequest) (*llm.ChatResponse, error) {
	return &llm.ChatResponse{Text: s.reply}, nil
}

func testApp(t *testing.T, chat planner.Chatter) *App {
	t.Helper()
	database := testutil.NewTestDB(t)
	plans := service.NewPlanService(testutil.NewTestUoW(database), chat, service.Options{
		Now: func() time.Time { return testNow },
	})
	return &App{
		Plans:  plans,
		Locale: config.DefaultLocale(),
		Now:    func() time.Time { return testNow },
	}
}

// executeCmd runs the root command with args and returns its output with
// styling stripped.
func executeCmd(t *testing.T, app *App, stdin string, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd(app)
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)
	err := root.Execute()
	return ansiPattern.ReplaceAllString(out.String(), ""), err
}

func mustExecute(t *testing.T, app *App, args ...string) string {
	t.Helper()
	out, err := executeCmd(t, app, "", args...)
	require.NoError(t, err, out)
	return out
}

const testRoadmap = `[
  {"id":"a","date":"2024-01-01","durationDays":2,"dailyStartTime":"10:00","dailyHours":1,"task":"Research","motivation":"Go"},
  {"id":"b","date":"2024-01-04","durationDays":2,"dailyStartTime":"09:00","dailyHours":2,"task":"Write","motivation":"Go on"}
]`

// seedPlan creates plan "launch" starting 2024-01-01 with the test roadmap.
func seedPlan(t *testing.T, app *App) {
	t.Helper()
	mustExecute(t, app, "plan", "new", "launch", "--start", "2024-01-01", "--weeks", "1")
	_, err := executeCmd(t, app, testRoadmap, "update", "-")
	require.NoError(t, err)
}

func roadmapOf(t *testing.T, app *App) domain.Roadmap {
	t.Helper()
	view, err := app.Plans.View(context.Background(), "launch")
	require.NoError(t, err)
	return view.Roadmap
}

func TestPlanNewListDelete(t *testing.T) {
	app := testApp(t, nil)

	out := mustExecute(t, app, "plan", "new", "launch", "--start", "2024-01-01", "--workdays", "mon,wed", "--language", "de")
	assert.Contains(t, out, "Created plan launch")

	_, err := executeCmd(t, app, "", "plan", "new", "launch")
	assert.ErrorIs(t, err, service.ErrPlanExists)

	out = mustExecute(t, app, "plan", "list")
	assert.Contains(t, out, "launch")
	assert.Contains(t, out, "2024-01-01")

	out = mustExecute(t, app, "settings")
	assert.Contains(t, out, "monday")
	assert.Contains(t, out, "wednesday")
	assert.NotContains(t, out, "tuesday")

	_, err = executeCmd(t, app, "", "plan", "delete", "launch")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--yes")

	out = mustExecute(t, app, "plan", "delete", "launch", "--yes")
	assert.Contains(t, out, "Deleted plan launch")
	assert.Contains(t, mustExecute(t, app, "plan", "list"), "No plans found.")
}

func TestPlanNew_RejectsBadSettings(t *testing.T) {
	app := testApp(t, nil)

	_, err := executeCmd(t, app, "", "plan", "new", "launch", "--workdays", "funday")
	assert.Error(t, err)
	_, err = executeCmd(t, app, "", "plan", "new", "launch", "--import-mode", "sometimes")
	assert.Error(t, err)
}

func TestResolvePlan(t *testing.T) {
	app := testApp(t, nil)

	_, err := executeCmd(t, app, "", "show")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no plans yet")

	mustExecute(t, app, "plan", "new", "launch")
	assert.Contains(t, mustExecute(t, app, "show"), "LAUNCH")

	mustExecute(t, app, "plan", "new", "thesis")
	_, err = executeCmd(t, app, "", "show")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "2 plans stored")

	assert.Contains(t, mustExecute(t, app, "show", "--plan", "thesis"), "THESIS")
	assert.Contains(t, mustExecute(t, app, "show", "-p", "launch"), "LAUNCH")
}

func TestUpdateShowTodayUndoRedo(t *testing.T) {
	app := testApp(t, nil)
	mustExecute(t, app, "plan", "new", "launch", "--start", "2024-01-01")

	out, err := executeCmd(t, app, testRoadmap, "update", "-")
	require.NoError(t, err)
	assert.Contains(t, out, "Roadmap updated: 2 task(s)")

	out, err = executeCmd(t, app, testRoadmap, "update", "-")
	require.NoError(t, err)
	assert.Contains(t, out, "Roadmap unchanged.")

	out = mustExecute(t, app, "show")
	assert.Contains(t, out, "Research")
	assert.Contains(t, out, "Write")
	assert.Contains(t, out, "0/2 tasks")

	out = mustExecute(t, app, "show", "--daily")
	assert.Contains(t, out, "Write (Day 2/2)")

	out = mustExecute(t, app, "today")
	assert.Contains(t, out, "Research (Day 2/2)")
	assert.NotContains(t, out, "Write")

	out = mustExecute(t, app, "undo")
	assert.Contains(t, out, "empty")
	assert.Empty(t, roadmapOf(t, app))

	assert.Contains(t, mustExecute(t, app, "undo"), "Nothing to undo.")

	mustExecute(t, app, "redo")
	assert.Len(t, roadmapOf(t, app), 2)
	assert.Contains(t, mustExecute(t, app, "redo"), "Nothing to redo.")
}

func TestUpdate_MalformedKeepsRoadmap(t *testing.T) {
	app := testApp(t, nil)
	seedPlan(t, app)

	out, err := executeCmd(t, app, `{"nope":`, "update", "-")
	require.NoError(t, err)
	assert.Contains(t, out, "! ")
	assert.Contains(t, out, "Roadmap unchanged.")
	assert.Len(t, roadmapOf(t, app), 2)
}

func TestTaskAddEditDoneDelete(t *testing.T) {
	app := testApp(t, nil)
	seedPlan(t, app)

	out := mustExecute(t, app, "task", "add", "--task", "Print flyers", "--date", "2024-01-03", "--days", "2", "--motivation", "Be seen")
	assert.Contains(t, out, "Print flyers")
	assert.Contains(t, out, "Be seen")

	r := roadmapOf(t, app)
	require.Len(t, r, 3)
	var id string
	for _, task := range r {
		if task.Task == "Print flyers" {
			id = task.ID
			assert.Equal(t, "2024-01-03", task.Date)
			assert.Equal(t, 2, task.DurationDays)
			assert.Equal(t, domain.DefaultStartTime, task.DailyStartTime)
		}
	}
	require.NotEmpty(t, id)

	mustExecute(t, app, "task", "edit", id, "--hours", "2.5")
	edited, ok := roadmapOf(t, app).Find(id)
	require.True(t, ok)
	assert.Equal(t, 2.5, edited.DailyHours)
	assert.Equal(t, "Print flyers", edited.Task)

	assert.Contains(t, mustExecute(t, app, "task", "done", id), "marked done")
	assert.Contains(t, mustExecute(t, app, "task", "done", id), "marked open")

	_, err := executeCmd(t, app, "", "task", "delete", id)
	assert.Error(t, err)
	mustExecute(t, app, "task", "delete", id, "-y")
	assert.Len(t, roadmapOf(t, app), 2)

	_, err = executeCmd(t, app, "", "task", "done", "missing")
	assert.Error(t, err)
}

func TestFileAddListRemove(t *testing.T) {
	app := testApp(t, nil)
	mustExecute(t, app, "plan", "new", "launch", "--start", "2024-01-01")

	path := filepath.Join(t.TempDir(), "plan.json")
	require.NoError(t, os.WriteFile(path, []byte(testRoadmap), 0o644))

	out := mustExecute(t, app, "file", "add", path)
	assert.Contains(t, out, "Attached plan.json (json")
	assert.Contains(t, out, "Imported 2 task(s)")
	assert.Len(t, roadmapOf(t, app), 2)

	view, err := app.Plans.View(context.Background(), "launch")
	require.NoError(t, err)
	require.Len(t, view.Files, 1)

	out = mustExecute(t, app, "file", "list")
	assert.Contains(t, out, "plan.json")

	mustExecute(t, app, "file", "rm", view.Files[0].ID)
	assert.Contains(t, mustExecute(t, app, "file", "list"), "No files attached.")
	assert.Len(t, roadmapOf(t, app), 2, "imported tasks stay")
}

func TestExport(t *testing.T) {
	app := testApp(t, nil)
	seedPlan(t, app)

	out := mustExecute(t, app, "export", "ics", "--mode", "daily", "-o", "-")
	assert.Contains(t, out, "BEGIN:VCALENDAR")
	assert.Equal(t, 4, strings.Count(out, "BEGIN:VEVENT"))

	path := filepath.Join(t.TempDir(), "plan.ics")
	out = mustExecute(t, app, "export", "ics", "-o", path)
	assert.Contains(t, out, "Wrote "+path)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(string(data), "BEGIN:VEVENT"))

	_, err = executeCmd(t, app, "", "export", "ics", "--mode", "weekly")
	assert.Error(t, err)

	out = mustExecute(t, app, "export", "json")
	var tasks []domain.Task
	require.NoError(t, json.Unmarshal([]byte(out), &tasks))
	assert.Len(t, tasks, 2)

	out = mustExecute(t, app, "export", "gcal")
	assert.Equal(t, 2, strings.Count(out, "https://calendar.google.com/"))
}

func TestTimelineShiftAndScale(t *testing.T) {
	app := testApp(t, nil)
	seedPlan(t, app)

	mustExecute(t, app, "timeline", "shift", "a", "--kind", "resize-end", "--days", "1")
	a, _ := roadmapOf(t, app).Find("a")
	assert.Equal(t, 3, a.DurationDays)

	mustExecute(t, app, "timeline", "shift", "a", "b", "--days", "-1")
	r := roadmapOf(t, app)
	a, _ = r.Find("a")
	b, _ := r.Find("b")
	assert.Equal(t, "2023-12-31", a.Date)
	assert.Equal(t, "2024-01-03", b.Date)

	mustExecute(t, app, "timeline", "scale", "a", "b", "--percent", "200")
	r = roadmapOf(t, app)
	a, _ = r.Find("a")
	b, _ = r.Find("b")
	assert.Equal(t, "2023-12-31", a.Date, "anchor stays")
	assert.Equal(t, 6, a.DurationDays)
	assert.Equal(t, "2024-01-06", b.Date)

	_, err := executeCmd(t, app, "", "timeline", "shift", "a", "--kind", "sideways")
	assert.Error(t, err)

	_, err = executeCmd(t, app, "", "timeline")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "terminal")
}

func TestChat_WithoutClient(t *testing.T) {
	app := testApp(t, nil)
	mustExecute(t, app, "plan", "new", "launch")

	_, err := executeCmd(t, app, "", "chat", "hello")
	assert.ErrorIs(t, err, service.ErrNoChat)
}

func TestChat_ImportsReply(t *testing.T) {
	reply := "Here you go.\n```json\n[{\"day_offset\":1,\"task\":\"Kickoff\"}]\n```"
	app := testApp(t, stubChatter{reply: reply})
	mustExecute(t, app, "plan", "new", "launch", "--start", "2024-01-01")

	out := mustExecute(t, app, "chat", "make", "a", "plan")
	assert.Contains(t, out, "Imported 1 task(s)")

	r := roadmapOf(t, app)
	require.Len(t, r, 1)
	assert.Equal(t, "Kickoff", r[0].Task)

	out = mustExecute(t, app, "show", "--chat")
	assert.Contains(t, out, "make a plan")
	assert.Contains(t, out, "Here you go.")
}

func TestReply_FromStdin(t *testing.T) {
	app := testApp(t, nil)
	mustExecute(t, app, "plan", "new", "launch", "--start", "2024-01-01")

	reply := "```json\n[{\"day_offset\":0,\"task\":\"Plan\"},{\"day_offset\":2,\"task\":\"Build\"}]\n```"
	out, err := executeCmd(t, app, reply, "reply", "-")
	require.NoError(t, err)
	assert.Contains(t, out, "Imported 2 task(s)")
	assert.Len(t, roadmapOf(t, app), 2)
}

func TestForm_FromFlags(t *testing.T) {
	app := testApp(t, nil)
	mustExecute(t, app, "plan", "new", "launch")

	_, err := executeCmd(t, app, "", "form")
	assert.Error(t, err, "problem is required")

	mustExecute(t, app, "form",
		"--problem", "Too few customers",
		"--weeks", "6",
		"--start", "2024-02-05",
		"--workdays", "mon,tue,wed",
	)

	view, err := app.Plans.View(context.Background(), "launch")
	require.NoError(t, err)
	assert.Equal(t, 6, view.Plan.Settings.PeriodWeeks)
	assert.Equal(t, "2024-02-05", view.Plan.Settings.StartDate)
	assert.Equal(t, 3, view.Plan.Settings.WorkDays.Len())
	assert.Contains(t, view.Plan.Prompt, "Too few customers")
}

func TestLabels_RunsOffline(t *testing.T) {
	app := &App{Locale: config.DefaultLocale()}

	out := mustExecute(t, app, "labels", "--language", "de")
	assert.Contains(t, out, "taskLabel: Aufgabe")

	out = mustExecute(t, app, "labels")
	assert.Contains(t, out, "taskLabel: Task")
}

func TestSetup_ConnectsOnDemand(t *testing.T) {
	database := testutil.NewTestDB(t)
	var connected int
	app := &App{
		Locale: config.DefaultLocale(),
		Connect: func(ctx context.Context, s config.Settings, l *config.Locale) (service.PlanService, io.Closer, error) {
			connected++
			assert.Equal(t, "launch", s.Plan)
			return service.NewPlanService(testutil.NewTestUoW(database), nil, service.Options{}), nopCloser{}, nil
		},
	}

	mustExecute(t, app, "labels")
	assert.Zero(t, connected)

	mustExecute(t, app, "--plan", "launch", "plan", "list")
	assert.Equal(t, 1, connected)
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
