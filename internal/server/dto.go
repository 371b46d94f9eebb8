package server

import (
	"time"

	"github.com/alexanderramin/roadmap/internal/calendar"
	"github.com/alexanderramin/roadmap/internal/domain"
	"github.com/alexanderramin/roadmap/internal/planner"
	"github.com/alexanderramin/roadmap/internal/repository"
	"github.com/alexanderramin/roadmap/internal/service"
)

// Request payloads

type SettingsBody struct {
	StartDate   string   `json:"startDate,omitempty" example:"2024-01-01"`
	WorkDays    []string `json:"workDays"`
	PeriodWeeks int      `json:"periodWeeks" minimum:"1"`
	Language    string   `json:"language,omitempty" enum:"en,de"`
	ImportMode  string   `json:"importMode,omitempty" enum:"replace,merge"`
}

type CreatePlanRequest struct {
	Name     string        `json:"name"`
	Settings *SettingsBody `json:"settings,omitempty"`
}

type ChatRequest struct {
	Message string `json:"message"`
}

type ReplyRequest struct {
	Content string `json:"content"`
}

type FormRequest struct {
	Problem        string   `json:"problem"`
	Solution       string   `json:"solution,omitempty"`
	Result         string   `json:"result,omitempty"`
	PeriodWeeks    int      `json:"periodWeeks" minimum:"1"`
	StartDate      string   `json:"startDate,omitempty"`
	DailyStartTime string   `json:"dailyStartTime,omitempty"`
	DailyHours     float64  `json:"dailyHours,omitempty"`
	WorkDays       []string `json:"workDays"`
	Industry       string   `json:"industry,omitempty"`
}

type TaskRequest struct {
	Date           *string  `json:"date,omitempty"`
	DurationDays   *int     `json:"durationDays,omitempty"`
	DailyStartTime *string  `json:"dailyStartTime,omitempty"`
	DailyHours     *float64 `json:"dailyHours,omitempty"`
	Task           *string  `json:"task,omitempty"`
	Motivation     *string  `json:"motivation,omitempty"`
}

type ShiftRequest struct {
	IDs             []string `json:"ids"`
	Kind            string   `json:"kind,omitempty" enum:"move,resize-start,resize-end"`
	Days            int      `json:"days"`
	RespectWorkDays bool     `json:"respectWorkDays,omitempty"`
}

type ScaleRequest struct {
	IDs             []string `json:"ids"`
	Percent         float64  `json:"percent" minimum:"0"`
	RespectWorkDays bool     `json:"respectWorkDays,omitempty"`
}

// Response payloads

type PlanResponse struct {
	ID        string       `json:"id"`
	Name      string       `json:"name"`
	Settings  SettingsBody `json:"settings"`
	Prompt    string       `json:"prompt,omitempty"`
	CreatedAt time.Time    `json:"createdAt"`
	UpdatedAt time.Time    `json:"updatedAt"`
}

type ProgressResponse struct {
	CompletedTasks int     `json:"completedTasks"`
	TotalTasks     int     `json:"totalTasks"`
	CompletedHours float64 `json:"completedHours"`
	TotalHours     float64 `json:"totalHours"`
}

type RoadmapResponse struct {
	Roadmap  []domain.Task    `json:"roadmap"`
	Progress ProgressResponse `json:"progress"`
	CanUndo  bool             `json:"canUndo"`
	CanRedo  bool             `json:"canRedo"`
}

type PlanViewResponse struct {
	Plan     PlanResponse      `json:"plan"`
	Roadmap  RoadmapResponse   `json:"roadmap"`
	Messages []planner.Message `json:"messages"`
	Files    []FileResponse    `json:"files"`
}

type UpdateRoadmapResponse struct {
	Changed  bool          `json:"changed"`
	Roadmap  []domain.Task `json:"roadmap"`
	Warnings []string      `json:"warnings"`
}

type ChatResponse struct {
	Message  planner.Message `json:"message"`
	Roadmap  []domain.Task   `json:"roadmap"`
	Warnings []string        `json:"warnings"`
}

type FileResponse struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Kind           string `json:"kind"`
	Size           int    `json:"size"`
	ImportedEvents int    `json:"importedEvents"`
}

type FileUploadResponse struct {
	File     FileResponse  `json:"file"`
	Roadmap  []domain.Task `json:"roadmap"`
	Warnings []string      `json:"warnings"`
}

type CalendarLinkResponse struct {
	TaskID string `json:"taskId"`
	Title  string `json:"title"`
	URL    string `json:"url"`
}

// Mapping helpers

func (b SettingsBody) toSettings() (planner.Settings, error) {
	s := planner.DefaultSettings()
	s.StartDate = b.StartDate
	if b.PeriodWeeks != 0 {
		s.PeriodWeeks = b.PeriodWeeks
	}
	if b.Language != "" {
		s.Language = b.Language
	}
	if len(b.WorkDays) > 0 {
		wd, err := calendar.ParseWorkDays(b.WorkDays)
		if err != nil {
			return planner.Settings{}, err
		}
		s.WorkDays = wd
	}
	mode, err := planner.ParseImportMode(b.ImportMode)
	if err != nil {
		return planner.Settings{}, err
	}
	s.ImportMode = mode
	return s, nil
}

func toSettingsBody(s planner.Settings) SettingsBody {
	return SettingsBody{
		StartDate:   s.StartDate,
		WorkDays:    s.WorkDays.Names(),
		PeriodWeeks: s.PeriodWeeks,
		Language:    s.Language,
		ImportMode:  string(s.ImportMode),
	}
}

func (r FormRequest) toForm() (planner.Form, error) {
	wd, err := calendar.ParseWorkDays(r.WorkDays)
	if err != nil {
		return planner.Form{}, err
	}
	return planner.Form{
		Problem:        r.Problem,
		Solution:       r.Solution,
		Result:         r.Result,
		PeriodWeeks:    r.PeriodWeeks,
		StartDate:      r.StartDate,
		DailyStartTime: r.DailyStartTime,
		DailyHours:     r.DailyHours,
		WorkDays:       wd,
		Industry:       r.Industry,
	}, nil
}

func (r TaskRequest) toPatch() service.TaskPatch {
	return service.TaskPatch{
		Date:           r.Date,
		DurationDays:   r.DurationDays,
		DailyStartTime: r.DailyStartTime,
		DailyHours:     r.DailyHours,
		Task:           r.Task,
		Motivation:     r.Motivation,
	}
}

func toPlanResponse(p *repository.Plan) PlanResponse {
	return PlanResponse{
		ID:        p.ID,
		Name:      p.Name,
		Settings:  toSettingsBody(p.Settings),
		Prompt:    p.Prompt,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

func toProgress(p domain.Progress) ProgressResponse {
	return ProgressResponse{
		CompletedTasks: p.CompletedTasks,
		TotalTasks:     p.TotalTasks,
		CompletedHours: p.CompletedHours,
		TotalHours:     p.TotalHours,
	}
}

func toRoadmapResponse(v *service.PlanView) RoadmapResponse {
	return RoadmapResponse{
		Roadmap:  tasksOrEmpty(v.Roadmap),
		Progress: toProgress(v.Progress),
		CanUndo:  v.CanUndo,
		CanRedo:  v.CanRedo,
	}
}

func toPlanViewResponse(v *service.PlanView) PlanViewResponse {
	files := make([]FileResponse, len(v.Files))
	for i, f := range v.Files {
		files[i] = toFileResponse(f)
	}
	messages := v.Messages
	if messages == nil {
		messages = []planner.Message{}
	}
	return PlanViewResponse{
		Plan:     toPlanResponse(v.Plan),
		Roadmap:  toRoadmapResponse(v),
		Messages: messages,
		Files:    files,
	}
}

func toFileResponse(f planner.File) FileResponse {
	return FileResponse{
		ID:             f.ID,
		Name:           f.Name,
		Kind:           string(f.Kind),
		Size:           f.Size,
		ImportedEvents: f.ImportedEvents,
	}
}

func tasksOrEmpty(r domain.Roadmap) []domain.Task {
	if r == nil {
		return []domain.Task{}
	}
	return r
}

func errorStrings(errs []error) []string {
	out := make([]string, len(errs))
	for i, err := range errs {
		out[i] = err.Error()
	}
	return out
}
