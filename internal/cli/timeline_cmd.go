package cli

import (
	"errors"
	"fmt"

	"github.com/alexanderramin/roadmap/internal/cli/formatter"
	"github.com/alexanderramin/roadmap/internal/domain"
	"github.com/alexanderramin/roadmap/internal/service"
	"github.com/alexanderramin/roadmap/internal/timeline"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

func newTimelineCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "timeline",
		Short: "Edit the roadmap on an interactive timeline",
		Long: "Opens a full-screen timeline. Drag bars with the mouse to move them, drag their\n" +
			"edges to resize, or use the keys listed at the bottom.",
		RunE: planRunE(app, func(cmd *cobra.Command, args []string, plan string) error {
			if !app.interactive() {
				return errors.New("timeline needs a terminal: use 'timeline shift' or 'timeline scale'")
			}
			p := tea.NewProgram(newTimelineModel(app, plan),
				tea.WithAltScreen(),
				tea.WithMouseCellMotion(),
				tea.WithContext(cmd.Context()),
			)
			_, err := p.Run()
			return err
		}),
	}
	cmd.AddCommand(newTimelineShiftCmd(app), newTimelineScaleCmd(app))
	return cmd
}

func newTimelineShiftCmd(app *App) *cobra.Command {
	var (
		days    int
		kind    string
		respect bool
	)

	cmd := &cobra.Command{
		Use:   "shift ID...",
		Short: "Move tasks, or resize the first one, by whole days",
		Args:  cobra.MinimumNArgs(1),
		RunE: planRunE(app, func(cmd *cobra.Command, args []string, plan string) error {
			k, err := timeline.ParseDragKind(kind)
			if err != nil {
				return err
			}
			r, err := app.Plans.ShiftTasks(cmd.Context(), plan, service.TimelineShift{
				IDs: args, Kind: k, Days: days, RespectWorkDays: respect,
			})
			if err != nil {
				return err
			}
			return app.printTasks(cmd, plan, r, args)
		}),
	}
	cmd.Flags().IntVar(&days, "days", 1, "Days to shift, negative for earlier")
	cmd.Flags().StringVar(&kind, "kind", timeline.Move.String(), "move, resize-start or resize-end")
	cmd.Flags().BoolVar(&respect, "respect-workdays", false, "Count only working days")
	return cmd
}

func newTimelineScaleCmd(app *App) *cobra.Command {
	var (
		percent float64
		respect bool
	)

	cmd := &cobra.Command{
		Use:   "scale ID...",
		Short: "Stretch or compress tasks around the earliest start",
		Args:  cobra.MinimumNArgs(1),
		RunE: planRunE(app, func(cmd *cobra.Command, args []string, plan string) error {
			r, err := app.Plans.ScaleTasks(cmd.Context(), plan, service.TimelineScale{
				IDs: args, Percent: percent, RespectWorkDays: respect,
			})
			if err != nil {
				return err
			}
			return app.printTasks(cmd, plan, r, args)
		}),
	}
	cmd.Flags().Float64Var(&percent, "percent", 100, "Scale in percent, e.g. 200 doubles")
	cmd.Flags().BoolVar(&respect, "respect-workdays", false, "Count only working days")
	return cmd
}

// printTasks shows the given tasks as they are in r.
func (a *App) printTasks(cmd *cobra.Command, plan string, r domain.Roadmap, ids []string) error {
	view, err := a.Plans.View(cmd.Context(), plan)
	if err != nil {
		return err
	}
	labels := a.labels(view.Plan.Settings.Language)
	for _, id := range ids {
		if t, ok := r.Find(id); ok {
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatTask(t, labels))
		}
	}
	return nil
}
