package server

import (
	"context"
	"fmt"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/alexanderramin/roadmap/internal/domain"
	"github.com/alexanderramin/roadmap/internal/export"
	"github.com/alexanderramin/roadmap/internal/planner"
	"github.com/alexanderramin/roadmap/internal/service"
	"github.com/alexanderramin/roadmap/internal/timeline"
)

// PlanPath addresses a plan by name.
type PlanPath struct {
	Plan string `path:"plan" doc:"Plan name"`
}

type emptyOutput struct{}

type roadmapOutput struct {
	Body RoadmapResponse `json:"body"`
}

var commonErrors = []int{
	http.StatusBadRequest,
	http.StatusNotFound,
	http.StatusInternalServerError,
}

func registerHealth(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "health",
		Method:      http.MethodGet,
		Path:        "/health",
		Summary:     "Health check",
	}, func(ctx context.Context, _ *struct{}) (*struct {
		Body map[string]string `json:"body"`
	}, error) {
		return &struct {
			Body map[string]string `json:"body"`
		}{Body: map[string]string{"status": "ok"}}, nil
	})
}

func registerPlans(api huma.API, plans service.PlanService) {
	huma.Register(api, huma.Operation{
		OperationID: "list-plans",
		Method:      http.MethodGet,
		Path:        "/plans",
		Summary:     "List plans",
		Errors:      []int{http.StatusInternalServerError},
	}, func(ctx context.Context, _ *struct{}) (*struct {
		Body []PlanResponse `json:"body"`
	}, error) {
		list, err := plans.ListPlans(ctx)
		if err != nil {
			return nil, handleError(err)
		}
		out := make([]PlanResponse, len(list))
		for i, p := range list {
			out[i] = toPlanResponse(p)
		}
		return &struct {
			Body []PlanResponse `json:"body"`
		}{Body: out}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "create-plan",
		Method:        http.MethodPost,
		Path:          "/plans",
		Summary:       "Create plan",
		DefaultStatus: http.StatusCreated,
		Errors:        []int{http.StatusBadRequest, http.StatusConflict, http.StatusInternalServerError},
	}, func(ctx context.Context, input *struct {
		Body CreatePlanRequest `json:"body"`
	}) (*struct {
		Body PlanResponse `json:"body"`
	}, error) {
		settings := planner.DefaultSettings()
		if input.Body.Settings != nil {
			var err error
			if settings, err = input.Body.Settings.toSettings(); err != nil {
				return nil, badRequest(err)
			}
		}
		plan, err := plans.CreatePlan(ctx, input.Body.Name, settings)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body PlanResponse `json:"body"`
		}{Body: toPlanResponse(plan)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-plan",
		Method:      http.MethodGet,
		Path:        "/plans/{plan}",
		Summary:     "Get plan with roadmap, chat and uploads",
		Errors:      commonErrors,
	}, func(ctx context.Context, input *PlanPath) (*struct {
		Body PlanViewResponse `json:"body"`
	}, error) {
		view, err := plans.View(ctx, input.Plan)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body PlanViewResponse `json:"body"`
		}{Body: toPlanViewResponse(view)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "delete-plan",
		Method:        http.MethodDelete,
		Path:          "/plans/{plan}",
		Summary:       "Delete plan",
		DefaultStatus: http.StatusNoContent,
		Errors:        commonErrors,
	}, func(ctx context.Context, input *PlanPath) (*emptyOutput, error) {
		if err := plans.DeletePlan(ctx, input.Plan); err != nil {
			return nil, handleError(err)
		}
		return &emptyOutput{}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "update-settings",
		Method:      http.MethodPut,
		Path:        "/plans/{plan}/settings",
		Summary:     "Replace plan settings",
		Errors:      commonErrors,
	}, func(ctx context.Context, input *struct {
		PlanPath
		Body SettingsBody `json:"body"`
	}) (*struct {
		Body PlanResponse `json:"body"`
	}, error) {
		settings, err := input.Body.toSettings()
		if err != nil {
			return nil, badRequest(err)
		}
		view, err := plans.UpdateSettings(ctx, input.Plan, settings)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body PlanResponse `json:"body"`
		}{Body: toPlanResponse(view.Plan)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "apply-form",
		Method:      http.MethodPost,
		Path:        "/plans/{plan}/form",
		Summary:     "Generate the system prompt from the planning form",
		Errors:      commonErrors,
	}, func(ctx context.Context, input *struct {
		PlanPath
		Body FormRequest `json:"body"`
	}) (*struct {
		Body planner.Message `json:"body"`
	}, error) {
		form, err := input.Body.toForm()
		if err != nil {
			return nil, badRequest(err)
		}
		msg, err := plans.ApplyForm(ctx, input.Plan, form)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body planner.Message `json:"body"`
		}{Body: *msg}, nil
	})
}

func registerRoadmap(api huma.API, plans service.PlanService) {
	huma.Register(api, huma.Operation{
		OperationID: "get-roadmap",
		Method:      http.MethodGet,
		Path:        "/plans/{plan}/roadmap",
		Summary:     "Get the current roadmap and progress",
		Errors:      commonErrors,
	}, func(ctx context.Context, input *PlanPath) (*roadmapOutput, error) {
		view, err := plans.View(ctx, input.Plan)
		if err != nil {
			return nil, handleError(err)
		}
		return &roadmapOutput{Body: toRoadmapResponse(view)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "replace-roadmap",
		Method:      http.MethodPut,
		Path:        "/plans/{plan}/roadmap",
		Summary:     "Replace the roadmap",
		Description: "Accepts a whole roadmap in canonical ({date, durationDays}) or timeline ({start, end}) shape. Entries that cannot be read are kept unchanged and reported as warnings. A roadmap with undated tasks is rejected.",
		Errors:      append([]int{http.StatusUnprocessableEntity}, commonErrors...),
	}, func(ctx context.Context, input *struct {
		PlanPath
		RawBody []byte
	}) (*struct {
		Body UpdateRoadmapResponse `json:"body"`
	}, error) {
		res, err := plans.UpdateRoadmap(ctx, input.Plan, input.RawBody)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body UpdateRoadmapResponse `json:"body"`
		}{Body: UpdateRoadmapResponse{
			Changed:  res.Changed,
			Roadmap:  tasksOrEmpty(res.Roadmap),
			Warnings: errorStrings(res.Warnings),
		}}, nil
	})

	for _, step := range []struct {
		id, path, summary string
		run               func(context.Context, string) (*service.PlanView, error)
	}{
		{"undo", "/plans/{plan}/undo", "Undo the last roadmap change", plans.Undo},
		{"redo", "/plans/{plan}/redo", "Redo the last undone change", plans.Redo},
	} {
		huma.Register(api, huma.Operation{
			OperationID: step.id,
			Method:      http.MethodPost,
			Path:        step.path,
			Summary:     step.summary,
			Errors:      commonErrors,
		}, func(ctx context.Context, input *PlanPath) (*roadmapOutput, error) {
			view, err := step.run(ctx, input.Plan)
			if err != nil {
				return nil, handleError(err)
			}
			return &roadmapOutput{Body: toRoadmapResponse(view)}, nil
		})
	}

	huma.Register(api, huma.Operation{
		OperationID: "today",
		Method:      http.MethodGet,
		Path:        "/plans/{plan}/today",
		Summary:     "Daily instances scheduled today",
		Errors:      commonErrors,
	}, func(ctx context.Context, input *PlanPath) (*struct {
		Body []domain.DailyInstance `json:"body"`
	}, error) {
		today, err := plans.Today(ctx, input.Plan)
		if err != nil {
			return nil, handleError(err)
		}
		if today == nil {
			today = []domain.DailyInstance{}
		}
		return &struct {
			Body []domain.DailyInstance `json:"body"`
		}{Body: today}, nil
	})
}

func registerChat(api huma.API, plans service.PlanService) {
	huma.Register(api, huma.Operation{
		OperationID: "chat",
		Method:      http.MethodPost,
		Path:        "/plans/{plan}/chat",
		Summary:     "Send a message to the AI planner",
		Description: "Uploaded files are attached as context. A plan in the reply is imported into the roadmap.",
		Errors:      append(commonErrors, http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout),
	}, func(ctx context.Context, input *struct {
		PlanPath
		Body ChatRequest `json:"body"`
	}) (*struct {
		Body ChatResponse `json:"body"`
	}, error) {
		res, err := plans.Chat(ctx, input.Plan, input.Body.Message)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body ChatResponse `json:"body"`
		}{Body: toChatResponse(res)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "process-reply",
		Method:      http.MethodPost,
		Path:        "/plans/{plan}/replies",
		Summary:     "Import an assistant reply obtained elsewhere",
		Errors:      commonErrors,
	}, func(ctx context.Context, input *struct {
		PlanPath
		Body ReplyRequest `json:"body"`
	}) (*struct {
		Body ChatResponse `json:"body"`
	}, error) {
		res, err := plans.ProcessReply(ctx, input.Plan, input.Body.Content)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body ChatResponse `json:"body"`
		}{Body: toChatResponse(res)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "upload-file",
		Method:        http.MethodPost,
		Path:          "/plans/{plan}/files",
		Summary:       "Upload a file",
		Description:   ".ics and .json files are imported into the roadmap; every file is kept as context for the next chat message.",
		DefaultStatus: http.StatusCreated,
		Errors:        commonErrors,
	}, func(ctx context.Context, input *struct {
		PlanPath
		Name    string `query:"name" required:"true" doc:"File name; the extension decides how it is read"`
		RawBody []byte
	}) (*struct {
		Body FileUploadResponse `json:"body"`
	}, error) {
		res, err := plans.ImportFile(ctx, input.Plan, input.Name, input.RawBody)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body FileUploadResponse `json:"body"`
		}{Body: FileUploadResponse{
			File:     toFileResponse(res.File),
			Roadmap:  tasksOrEmpty(res.Roadmap),
			Warnings: errorStrings(res.Warnings),
		}}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "remove-file",
		Method:        http.MethodDelete,
		Path:          "/plans/{plan}/files/{id}",
		Summary:       "Remove an uploaded file",
		DefaultStatus: http.StatusNoContent,
		Errors:        commonErrors,
	}, func(ctx context.Context, input *struct {
		PlanPath
		ID string `path:"id"`
	}) (*emptyOutput, error) {
		if err := plans.RemoveFile(ctx, input.Plan, input.ID); err != nil {
			return nil, handleError(err)
		}
		return &emptyOutput{}, nil
	})
}

func toChatResponse(res *service.ChatResult) ChatResponse {
	return ChatResponse{
		Message:  res.Message,
		Roadmap:  tasksOrEmpty(res.Roadmap),
		Warnings: errorStrings(res.Warnings),
	}
}

func registerTasks(api huma.API, plans service.PlanService) {
	type taskOutput struct {
		Body domain.Task `json:"body"`
	}

	huma.Register(api, huma.Operation{
		OperationID:   "add-task",
		Method:        http.MethodPost,
		Path:          "/plans/{plan}/tasks",
		Summary:       "Add a task",
		DefaultStatus: http.StatusCreated,
		Errors:        commonErrors,
	}, func(ctx context.Context, input *struct {
		PlanPath
		Body TaskRequest `json:"body"`
	}) (*taskOutput, error) {
		t, err := plans.AddTask(ctx, input.Plan, input.Body.toPatch())
		if err != nil {
			return nil, handleError(err)
		}
		return &taskOutput{Body: t}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "edit-task",
		Method:      http.MethodPatch,
		Path:        "/plans/{plan}/tasks/{id}",
		Summary:     "Change task fields",
		Errors:      commonErrors,
	}, func(ctx context.Context, input *struct {
		PlanPath
		ID   string      `path:"id"`
		Body TaskRequest `json:"body"`
	}) (*taskOutput, error) {
		t, err := plans.EditTask(ctx, input.Plan, input.ID, input.Body.toPatch())
		if err != nil {
			return nil, handleError(err)
		}
		return &taskOutput{Body: t}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "toggle-task",
		Method:      http.MethodPost,
		Path:        "/plans/{plan}/tasks/{id}/toggle",
		Summary:     "Flip a task's completed flag",
		Errors:      commonErrors,
	}, func(ctx context.Context, input *struct {
		PlanPath
		ID string `path:"id"`
	}) (*taskOutput, error) {
		t, err := plans.ToggleTask(ctx, input.Plan, input.ID)
		if err != nil {
			return nil, handleError(err)
		}
		return &taskOutput{Body: t}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "delete-task",
		Method:        http.MethodDelete,
		Path:          "/plans/{plan}/tasks/{id}",
		Summary:       "Delete a task",
		DefaultStatus: http.StatusNoContent,
		Errors:        commonErrors,
	}, func(ctx context.Context, input *struct {
		PlanPath
		ID string `path:"id"`
	}) (*emptyOutput, error) {
		if err := plans.DeleteTask(ctx, input.Plan, input.ID); err != nil {
			return nil, handleError(err)
		}
		return &emptyOutput{}, nil
	})
}

func registerTimeline(api huma.API, plans service.PlanService) {
	huma.Register(api, huma.Operation{
		OperationID: "shift-tasks",
		Method:      http.MethodPost,
		Path:        "/plans/{plan}/timeline/shift",
		Summary:     "Move or resize tasks by whole days",
		Errors:      commonErrors,
	}, func(ctx context.Context, input *struct {
		PlanPath
		Body ShiftRequest `json:"body"`
	}) (*struct {
		Body []domain.Task `json:"body"`
	}, error) {
		kind, err := timeline.ParseDragKind(input.Body.Kind)
		if err != nil {
			return nil, badRequest(err)
		}
		r, err := plans.ShiftTasks(ctx, input.Plan, service.TimelineShift{
			IDs:             input.Body.IDs,
			Kind:            kind,
			Days:            input.Body.Days,
			RespectWorkDays: input.Body.RespectWorkDays,
		})
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body []domain.Task `json:"body"`
		}{Body: tasksOrEmpty(r)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "scale-tasks",
		Method:      http.MethodPost,
		Path:        "/plans/{plan}/timeline/scale",
		Summary:     "Stretch or shrink tasks around the earliest start",
		Errors:      commonErrors,
	}, func(ctx context.Context, input *struct {
		PlanPath
		Body ScaleRequest `json:"body"`
	}) (*struct {
		Body []domain.Task `json:"body"`
	}, error) {
		r, err := plans.ScaleTasks(ctx, input.Plan, service.TimelineScale{
			IDs:             input.Body.IDs,
			Percent:         input.Body.Percent,
			RespectWorkDays: input.Body.RespectWorkDays,
		})
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body []domain.Task `json:"body"`
		}{Body: tasksOrEmpty(r)}, nil
	})
}

type fileOutput struct {
	ContentType        string `header:"Content-Type"`
	ContentDisposition string `header:"Content-Disposition"`
	Body               []byte
}

func registerExports(api huma.API, plans service.PlanService) {
	huma.Register(api, huma.Operation{
		OperationID: "export-ics",
		Method:      http.MethodGet,
		Path:        "/plans/{plan}/export.ics",
		Summary:     "Download the roadmap as an iCalendar file",
		Errors:      commonErrors,
	}, func(ctx context.Context, input *struct {
		PlanPath
		Mode string `query:"mode" enum:"block,daily" default:"block"`
	}) (*fileOutput, error) {
		mode, err := export.ParseMode(input.Mode)
		if err != nil {
			return nil, badRequest(err)
		}
		ics, err := plans.ExportICS(ctx, input.Plan, mode)
		if err != nil {
			return nil, handleError(err)
		}
		return &fileOutput{
			ContentType:        "text/calendar; charset=utf-8",
			ContentDisposition: fmt.Sprintf(`attachment; filename="%s.ics"`, input.Plan),
			Body:               []byte(ics),
		}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "export-json",
		Method:      http.MethodGet,
		Path:        "/plans/{plan}/export.json",
		Summary:     "Download the roadmap as JSON",
		Errors:      commonErrors,
	}, func(ctx context.Context, input *PlanPath) (*fileOutput, error) {
		data, err := plans.ExportJSON(ctx, input.Plan)
		if err != nil {
			return nil, handleError(err)
		}
		return &fileOutput{
			ContentType:        "application/json",
			ContentDisposition: fmt.Sprintf(`attachment; filename="%s.json"`, input.Plan),
			Body:               data,
		}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "calendar-links",
		Method:      http.MethodGet,
		Path:        "/plans/{plan}/calendar-links",
		Summary:     "Google Calendar links, one per task",
		Errors:      commonErrors,
	}, func(ctx context.Context, input *PlanPath) (*struct {
		Body []CalendarLinkResponse `json:"body"`
	}, error) {
		links, err := plans.CalendarLinks(ctx, input.Plan)
		if err != nil {
			return nil, handleError(err)
		}
		out := make([]CalendarLinkResponse, len(links))
		for i, l := range links {
			out[i] = CalendarLinkResponse{TaskID: l.TaskID, Title: l.Title, URL: l.URL}
		}
		return &struct {
			Body []CalendarLinkResponse `json:"body"`
		}{Body: out}, nil
	})
}
