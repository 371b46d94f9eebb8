package service

import (
	"context"

	"github.com/alexanderramin/roadmap/internal/domain"
	"github.com/alexanderramin/roadmap/internal/editor"
	"github.com/alexanderramin/roadmap/internal/planner"
	"github.com/alexanderramin/roadmap/internal/timeline"
)

// sessionStore lets the editor commit through a session, which sorts.
type sessionStore struct{ *planner.Session }

func (s sessionStore) Current() domain.Roadmap { return s.Roadmap() }

func (s *planService) newEditor(lp *loadedPlan) *editor.Editor {
	return editor.New(sessionStore{lp.session},
		editor.WithClock(s.opts.Now),
		editor.WithIDs(s.opts.NewID),
	)
}

func (p TaskPatch) apply(t domain.Task) domain.Task {
	if p.Date != nil {
		t.Date = *p.Date
	}
	if p.DurationDays != nil {
		t.DurationDays = *p.DurationDays
	}
	if p.DailyStartTime != nil {
		t.DailyStartTime = *p.DailyStartTime
	}
	if p.DailyHours != nil {
		t.DailyHours = *p.DailyHours
	}
	if p.Task != nil {
		t.Task = *p.Task
	}
	if p.Motivation != nil {
		t.Motivation = *p.Motivation
	}
	return t
}

// AddTask saves a new task. Unset fields get the draft defaults: today,
// one day, 10:00 for one hour.
func (s *planService) AddTask(ctx context.Context, name string, patch TaskPatch) (task domain.Task, err error) {
	done := track(ctx, s.observer, "add-task", name, nil)
	defer func() { done(err) }()

	err = s.mutate(ctx, name, func(lp *loadedPlan) error {
		ed := s.newEditor(lp)
		if err := ed.BeginCreate(); err != nil {
			return err
		}
		draft, _ := ed.Buffer()
		if err := ed.SetBuffer(patch.apply(draft)); err != nil {
			return err
		}
		var err error
		task, err = ed.Save()
		return err
	})
	return task, err
}

// EditTask changes the fields set in patch. A daily instance id edits the
// task it belongs to.
func (s *planService) EditTask(ctx context.Context, name, id string, patch TaskPatch) (task domain.Task, err error) {
	done := track(ctx, s.observer, "edit-task", name, map[string]any{"task": id})
	defer func() { done(err) }()

	err = s.mutate(ctx, name, func(lp *loadedPlan) error {
		ed := s.newEditor(lp)
		if err := ed.BeginEdit(id); err != nil {
			return err
		}
		current, _ := ed.Buffer()
		if err := ed.SetBuffer(patch.apply(current)); err != nil {
			return err
		}
		var err error
		task, err = ed.Save()
		return err
	})
	return task, err
}

func (s *planService) ToggleTask(ctx context.Context, name, id string) (task domain.Task, err error) {
	done := track(ctx, s.observer, "toggle-task", name, map[string]any{"task": id})
	defer func() { done(err) }()

	err = s.mutate(ctx, name, func(lp *loadedPlan) error {
		var err error
		task, err = s.newEditor(lp).ToggleComplete(id)
		return err
	})
	return task, err
}

// DeleteTask removes a saved task. Callers confirm with the user first.
func (s *planService) DeleteTask(ctx context.Context, name, id string) (err error) {
	done := track(ctx, s.observer, "delete-task", name, map[string]any{"task": id})
	defer func() { done(err) }()

	return s.mutate(ctx, name, func(lp *loadedPlan) error {
		ed := s.newEditor(lp)
		if err := ed.RequestDelete(id); err != nil {
			return err
		}
		return ed.ConfirmDelete()
	})
}

func (s *planService) newController(lp *loadedPlan, respectWorkDays bool) *timeline.Controller {
	return timeline.NewController(lp.session.Roadmap(), func(r domain.Roadmap) {
		lp.session.Commit(r)
	}, timeline.Options{
		WorkDays:        lp.session.Settings().WorkDays,
		RespectWorkDays: respectWorkDays,
		ShowCompleted:   true,
		Today:           s.opts.Now(),
		Logger:          s.opts.Logger,
	})
}

func (s *planService) ShiftTasks(ctx context.Context, name string, shift TimelineShift) (r domain.Roadmap, err error) {
	fields := map[string]any{"kind": shift.Kind.String(), "days": shift.Days, "tasks": len(shift.IDs)}
	done := track(ctx, s.observer, "shift-tasks", name, fields)
	defer func() { done(err) }()

	err = s.mutate(ctx, name, func(lp *loadedPlan) error {
		c := s.newController(lp, shift.RespectWorkDays)
		c.Select(shift.IDs...)
		if err := c.Nudge(shift.Kind, shift.Days); err != nil {
			return err
		}
		r = lp.session.Roadmap()
		return nil
	})
	return r, err
}

func (s *planService) ScaleTasks(ctx context.Context, name string, scale TimelineScale) (r domain.Roadmap, err error) {
	fields := map[string]any{"percent": scale.Percent, "tasks": len(scale.IDs)}
	done := track(ctx, s.observer, "scale-tasks", name, fields)
	defer func() { done(err) }()

	err = s.mutate(ctx, name, func(lp *loadedPlan) error {
		c := s.newController(lp, scale.RespectWorkDays)
		c.Select(scale.IDs...)
		if err := c.ApplyScale(scale.Percent); err != nil {
			return err
		}
		r = lp.session.Roadmap()
		return nil
	})
	return r, err
}
