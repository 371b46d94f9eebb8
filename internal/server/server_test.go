package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alexanderramin/roadmap/internal/llm"
	"github.com/alexanderramin/roadmap/internal/service"
	"github.com/alexanderramin/roadmap/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubChatter struct {
	reply string
	err   error
}

func (s stubChatter) Chat(context.Context, llm.ChatRequest) (*llm.ChatResponse, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &llm.ChatResponse{Text: s.reply}, nil
}

func newTestServer(t *testing.T, chat stubChatter) *httptest.Server {
	t.Helper()
	database := testutil.NewTestDB(t)
	plans := service.NewPlanService(testutil.NewTestUoW(database), chat, service.Options{
		Now: func() time.Time { return time.Date(2024, 1, 2, 8, 0, 0, 0, time.UTC) },
	})
	handler, err := New(Config{Plans: plans})
	require.NoError(t, err)
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

func doRequest(t *testing.T, srv *httptest.Server, method, path string, body []byte) (*http.Response, []byte) {
	t.Helper()
	req, err := http.NewRequest(method, srv.URL+"/v1"+path, bytes.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, data
}

func doJSON(t *testing.T, srv *httptest.Server, method, path string, body any) (*http.Response, []byte) {
	t.Helper()
	var raw []byte
	if body != nil {
		var err error
		raw, err = json.Marshal(body)
		require.NoError(t, err)
	}
	return doRequest(t, srv, method, path, raw)
}

func decode[T any](t *testing.T, data []byte) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(data, &v), string(data))
	return v
}

func createTestPlan(t *testing.T, srv *httptest.Server) {
	t.Helper()
	resp, body := doJSON(t, srv, http.MethodPost, "/plans", CreatePlanRequest{
		Name: "launch",
		Settings: &SettingsBody{
			StartDate:   "2024-01-01",
			WorkDays:    []string{"monday", "tuesday", "wednesday", "thursday", "friday"},
			PeriodWeeks: 1,
		},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
}

const roadmapBody = `[
  {"id":"a","date":"2024-01-01","durationDays":2,"dailyStartTime":"10:00","dailyHours":1,"task":"Research","motivation":"Go"},
  {"id":"b","date":"2024-01-04","durationDays":2,"dailyStartTime":"09:00","dailyHours":2,"task":"Write","motivation":"Go on"}
]`

const timelineBody = `[
  {"id":"b","start":"2024-01-04","end":"2024-01-06","dailyStartTime":"09:00","dailyHours":2,"task":"Write","motivation":"Go on","track":1,"color":"#3ecf8e"}
]`

func TestHealth(t *testing.T) {
	srv := newTestServer(t, stubChatter{})
	resp, body := doRequest(t, srv, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"status":"ok"}`, string(body))
}

func TestPlans_CreateListDelete(t *testing.T) {
	srv := newTestServer(t, stubChatter{})
	createTestPlan(t, srv)

	resp, body := doJSON(t, srv, http.MethodPost, "/plans", CreatePlanRequest{Name: "launch"})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	env := decode[map[string]map[string]any](t, body)
	assert.Equal(t, "conflict", env["error"]["code"])

	resp, body = doRequest(t, srv, http.MethodGet, "/plans", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	list := decode[[]PlanResponse](t, body)
	require.Len(t, list, 1)
	assert.Equal(t, "launch", list[0].Name)
	assert.Equal(t, 1, list[0].Settings.PeriodWeeks)

	resp, _ = doRequest(t, srv, http.MethodDelete, "/plans/launch", nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, body = doRequest(t, srv, http.MethodGet, "/plans/launch", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	env = decode[map[string]map[string]any](t, body)
	assert.Equal(t, "not_found", env["error"]["code"])
}

func TestRoadmap_ReplaceUndoRedo(t *testing.T) {
	srv := newTestServer(t, stubChatter{})
	createTestPlan(t, srv)

	resp, body := doRequest(t, srv, http.MethodPut, "/plans/launch/roadmap", []byte(roadmapBody))
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	upd := decode[UpdateRoadmapResponse](t, body)
	assert.True(t, upd.Changed)
	require.Len(t, upd.Roadmap, 2)
	assert.Empty(t, upd.Warnings)

	resp, body = doRequest(t, srv, http.MethodPost, "/plans/launch/undo", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	rm := decode[RoadmapResponse](t, body)
	assert.Empty(t, rm.Roadmap)
	assert.True(t, rm.CanRedo)

	resp, body = doRequest(t, srv, http.MethodPost, "/plans/launch/redo", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	rm = decode[RoadmapResponse](t, body)
	assert.Len(t, rm.Roadmap, 2)
	assert.Equal(t, 2, rm.Progress.TotalTasks)

	resp, body = doRequest(t, srv, http.MethodGet, "/plans/launch/today", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	today := decode[[]map[string]any](t, body)
	require.Len(t, today, 1)
	assert.Equal(t, "a-day-1", today[0]["id"])
}

func TestRoadmap_TimelineShapedUpdate(t *testing.T) {
	srv := newTestServer(t, stubChatter{})
	createTestPlan(t, srv)

	resp, body := doRequest(t, srv, http.MethodPut, "/plans/launch/roadmap", []byte(timelineBody))
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	upd := decode[UpdateRoadmapResponse](t, body)
	require.Len(t, upd.Roadmap, 1)
	assert.Equal(t, "2024-01-04", upd.Roadmap[0].Date)
	assert.Equal(t, 3, upd.Roadmap[0].DurationDays)

	resp, body = doRequest(t, srv, http.MethodPut, "/plans/launch/roadmap", []byte(timelineBody))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.False(t, decode[UpdateRoadmapResponse](t, body).Changed)

	// A malformed update is reported and leaves the roadmap alone.
	resp, body = doRequest(t, srv, http.MethodPut, "/plans/launch/roadmap", []byte(`{"nope":`))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	upd = decode[UpdateRoadmapResponse](t, body)
	assert.False(t, upd.Changed)
	assert.NotEmpty(t, upd.Warnings)
	assert.Len(t, upd.Roadmap, 1)
}

func TestRoadmap_UndatedTaskIsUnprocessable(t *testing.T) {
	srv := newTestServer(t, stubChatter{})
	createTestPlan(t, srv)
	resp, body := doRequest(t, srv, http.MethodPut, "/plans/launch/roadmap", []byte(roadmapBody))
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

	resp, body = doRequest(t, srv, http.MethodPut, "/plans/launch/roadmap",
		[]byte(`[{"id":"a","task":"A","date":"2024-01-01"},{"id":"c","task":"C","date":"soon"}]`))
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	env := decode[map[string]map[string]any](t, body)
	assert.Equal(t, "invalid_roadmap", env["error"]["code"])

	resp, body = doRequest(t, srv, http.MethodGet, "/plans/launch/roadmap", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, decode[RoadmapResponse](t, body).Roadmap, 2)
}

func TestTasks_AddToggleDelete(t *testing.T) {
	srv := newTestServer(t, stubChatter{})
	createTestPlan(t, srv)

	title := "Print flyers"
	resp, body := doJSON(t, srv, http.MethodPost, "/plans/launch/tasks", TaskRequest{Task: &title})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	task := decode[map[string]any](t, body)
	assert.Equal(t, "2024-01-02", task["date"])
	id := task["id"].(string)

	resp, body = doRequest(t, srv, http.MethodPost, "/plans/launch/tasks/"+id+"/toggle", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, decode[map[string]any](t, body)["completed"])

	resp, _ = doRequest(t, srv, http.MethodDelete, "/plans/launch/tasks/"+id, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, _ = doRequest(t, srv, http.MethodDelete, "/plans/launch/tasks/"+id, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestTimeline_ShiftAndBadKind(t *testing.T) {
	srv := newTestServer(t, stubChatter{})
	createTestPlan(t, srv)
	resp, _ := doRequest(t, srv, http.MethodPut, "/plans/launch/roadmap", []byte(roadmapBody))
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body := doJSON(t, srv, http.MethodPost, "/plans/launch/timeline/shift", ShiftRequest{IDs: []string{"a"}, Kind: "resize-end", Days: 1})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	tasks := decode[[]map[string]any](t, body)
	require.Len(t, tasks, 2)
	assert.Equal(t, "a", tasks[0]["id"])
	assert.EqualValues(t, 3, tasks[0]["durationDays"])

	resp, _ = doJSON(t, srv, http.MethodPost, "/plans/launch/timeline/shift", map[string]any{"ids": []string{"a"}, "kind": "sideways", "days": 1})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = doJSON(t, srv, http.MethodPost, "/plans/launch/timeline/scale", ScaleRequest{IDs: []string{}, Percent: 50})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestChat_ImportsReply(t *testing.T) {
	reply := "```json\n[{\"day_offset\":1,\"task\":\"Kickoff\"}]\n```"
	srv := newTestServer(t, stubChatter{reply: reply})
	createTestPlan(t, srv)

	resp, body := doJSON(t, srv, http.MethodPost, "/plans/launch/chat", ChatRequest{Message: "Create the plan"})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	res := decode[ChatResponse](t, body)
	assert.Equal(t, 1, res.Message.ImportedEvents)
	require.Len(t, res.Roadmap, 1)
	assert.Equal(t, "Kickoff", res.Roadmap[0].Task)
}

func TestChat_Unavailable(t *testing.T) {
	srv := newTestServer(t, stubChatter{err: llm.ErrUnavailable})
	createTestPlan(t, srv)

	resp, body := doJSON(t, srv, http.MethodPost, "/plans/launch/chat", ChatRequest{Message: "hello"})
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	env := decode[map[string]map[string]any](t, body)
	assert.Equal(t, "ai_unavailable", env["error"]["code"])

	// The failure is still logged in the chat.
	resp, body = doRequest(t, srv, http.MethodGet, "/plans/launch", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	view := decode[PlanViewResponse](t, body)
	assert.Len(t, view.Messages, 2)
}

func TestUploadFileAndExport(t *testing.T) {
	srv := newTestServer(t, stubChatter{})
	createTestPlan(t, srv)

	resp, body := doRequest(t, srv, http.MethodPost, "/plans/launch/files?name=plan.json", []byte(roadmapBody))
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	up := decode[FileUploadResponse](t, body)
	assert.Equal(t, "json", up.File.Kind)
	assert.Equal(t, 2, up.File.ImportedEvents)

	resp, body = doRequest(t, srv, http.MethodGet, "/plans/launch/export.ics?mode=daily", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, strings.HasPrefix(resp.Header.Get("Content-Type"), "text/calendar"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "launch.ics")
	assert.Equal(t, 4, strings.Count(string(body), "BEGIN:VEVENT"))

	resp, _ = doRequest(t, srv, http.MethodGet, "/plans/launch/export.ics?mode=weekly", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, body = doRequest(t, srv, http.MethodGet, "/plans/launch/calendar-links", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	links := decode[[]CalendarLinkResponse](t, body)
	assert.Len(t, links, 2)
}
