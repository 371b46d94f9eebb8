package service

import (
	"context"

	"github.com/alexanderramin/roadmap/internal/domain"
	"github.com/alexanderramin/roadmap/internal/export"
)

func (s *planService) labels(lp *loadedPlan) export.Labels {
	return s.opts.Labels.WithDefaults(lp.plan.Settings.Language)
}

// Today returns the daily instances dated today.
func (s *planService) Today(ctx context.Context, name string) ([]domain.DailyInstance, error) {
	var out []domain.DailyInstance
	err := s.read(ctx, name, func(lp *loadedPlan) error {
		out = lp.session.Today()
		return nil
	})
	return out, err
}

func (s *planService) ExportICS(ctx context.Context, name string, mode export.Mode) (ics string, err error) {
	done := track(ctx, s.observer, "export-ics", name, map[string]any{"mode": mode.String()})
	defer func() { done(err) }()

	err = s.read(ctx, name, func(lp *loadedPlan) error {
		ics = export.ICS(lp.session.Roadmap(), mode, s.labels(lp), s.opts.Now())
		return nil
	})
	return ics, err
}

func (s *planService) ExportJSON(ctx context.Context, name string) (data []byte, err error) {
	err = s.read(ctx, name, func(lp *loadedPlan) error {
		var err error
		data, err = export.JSON(lp.session.Roadmap())
		return err
	})
	return data, err
}

// CalendarLinks builds one Google Calendar link per task. Tasks whose date
// or time cannot be read are left out.
func (s *planService) CalendarLinks(ctx context.Context, name string) ([]CalendarLink, error) {
	var links []CalendarLink
	err := s.read(ctx, name, func(lp *loadedPlan) error {
		labels := s.labels(lp)
		for _, t := range lp.session.Roadmap() {
			u, err := export.GoogleCalendarLink(t, labels)
			if err != nil {
				s.opts.Logger.Warn("calendar link skipped", "task", t.ID, "error", err)
				continue
			}
			links = append(links, CalendarLink{TaskID: t.ID, Title: t.Task, URL: u})
		}
		return nil
	})
	return links, err
}
