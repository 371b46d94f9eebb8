package cli

import (
	"fmt"
	"strconv"

	"github.com/alexanderramin/roadmap/internal/cli/formatter"
	"github.com/alexanderramin/roadmap/internal/domain"
	"github.com/alexanderramin/roadmap/internal/editor"
	"github.com/alexanderramin/roadmap/internal/service"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

func newTaskCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "task",
		Short: "Add, edit, complete and delete roadmap tasks",
	}
	cmd.AddCommand(
		newTaskAddCmd(app),
		newTaskEditCmd(app),
		newTaskDoneCmd(app),
		newTaskDeleteCmd(app),
	)
	return cmd
}

// taskFlags are task fields given on the command line. Only changed flags
// end up in the patch.
type taskFlags struct {
	taskFields
	days  int
	hours float64
}

func (f *taskFlags) register(fs *pflag.FlagSet) {
	fs.StringVar(&f.Task, "task", "", "Task description")
	fs.StringVar(&f.Date, "date", "", "Start date (YYYY-MM-DD)")
	fs.IntVar(&f.days, "days", 1, "Duration in days")
	fs.StringVar(&f.StartTime, "start-time", "", "Daily start time (HH:MM)")
	fs.Float64Var(&f.hours, "hours", 1, "Hours per day")
	fs.StringVar(&f.Motivation, "motivation", "", "Motivation shown with the task")
}

func (f *taskFlags) changed(fs *pflag.FlagSet) bool {
	for _, name := range []string{"task", "date", "days", "start-time", "hours", "motivation"} {
		if fs.Changed(name) {
			return true
		}
	}
	return false
}

func (f *taskFlags) patch(fs *pflag.FlagSet) service.TaskPatch {
	var p service.TaskPatch
	if fs.Changed("task") {
		p.Task = &f.Task
	}
	if fs.Changed("date") {
		p.Date = &f.Date
	}
	if fs.Changed("days") {
		p.DurationDays = &f.days
	}
	if fs.Changed("start-time") {
		p.DailyStartTime = &f.StartTime
	}
	if fs.Changed("hours") {
		p.DailyHours = &f.hours
	}
	if fs.Changed("motivation") {
		p.Motivation = &f.Motivation
	}
	return p
}

// fieldsOf fills form strings from a task.
func fieldsOf(t domain.Task) taskFields {
	return taskFields{
		Task:         t.Task,
		Date:         t.Date,
		DurationDays: strconv.Itoa(t.DurationDays),
		StartTime:    t.DailyStartTime,
		DailyHours:   formatter.FormatHours(t.DailyHours),
		Motivation:   t.Motivation,
	}
}

// patchFromForm sets every field the form returned. Blank numbers keep
// their value.
func patchFromForm(f *taskFields) (service.TaskPatch, error) {
	p := service.TaskPatch{
		Task:           &f.Task,
		Date:           &f.Date,
		DailyStartTime: &f.StartTime,
		Motivation:     &f.Motivation,
	}
	if f.DurationDays != "" {
		days, err := strconv.Atoi(f.DurationDays)
		if err != nil {
			return p, fmt.Errorf("duration: %w", err)
		}
		p.DurationDays = &days
	}
	if f.DailyHours != "" {
		hours, err := strconv.ParseFloat(f.DailyHours, 64)
		if err != nil {
			return p, fmt.Errorf("hours: %w", err)
		}
		p.DailyHours = &hours
	}
	return p, nil
}

func newTaskAddCmd(app *App) *cobra.Command {
	var flags taskFlags

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a task",
		Long:  "Without --task on a terminal, asks for the fields in a form.",
		RunE: planRunE(app, func(cmd *cobra.Command, args []string, plan string) error {
			patch := flags.patch(cmd.Flags())
			if app.interactive() && !cmd.Flags().Changed("task") {
				fields := taskFields{Date: flags.Date, DurationDays: "1", DailyHours: "1"}
				if err := taskForm("New task", &fields).Run(); err != nil {
					return err
				}
				p, err := patchFromForm(&fields)
				if err != nil {
					return err
				}
				patch = p
			}
			t, err := app.Plans.AddTask(cmd.Context(), plan, patch)
			if err != nil {
				return err
			}
			return app.printTask(cmd, plan, t)
		}),
	}
	flags.register(cmd.Flags())
	return cmd
}

func newTaskEditCmd(app *App) *cobra.Command {
	var flags taskFlags

	cmd := &cobra.Command{
		Use:   "edit ID",
		Short: "Change a task; without flags on a terminal, edit it in a form",
		Args:  cobra.ExactArgs(1),
		RunE: planRunE(app, func(cmd *cobra.Command, args []string, plan string) error {
			ctx := cmd.Context()
			patch := flags.patch(cmd.Flags())
			if app.interactive() && !flags.changed(cmd.Flags()) {
				view, err := app.Plans.View(ctx, plan)
				if err != nil {
					return err
				}
				current, ok := view.Roadmap.Find(args[0])
				if !ok {
					return fmt.Errorf("task %s: %w", args[0], editor.ErrTaskNotFound)
				}
				fields := fieldsOf(current)
				if err := taskForm("Edit task", &fields).Run(); err != nil {
					return err
				}
				if patch, err = patchFromForm(&fields); err != nil {
					return err
				}
			}
			t, err := app.Plans.EditTask(ctx, plan, args[0], patch)
			if err != nil {
				return err
			}
			return app.printTask(cmd, plan, t)
		}),
	}
	flags.register(cmd.Flags())
	return cmd
}

func newTaskDoneCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "done ID",
		Short: "Toggle a task between done and open",
		Args:  cobra.ExactArgs(1),
		RunE: planRunE(app, func(cmd *cobra.Command, args []string, plan string) error {
			t, err := app.Plans.ToggleTask(cmd.Context(), plan, args[0])
			if err != nil {
				return err
			}
			state := "open"
			if t.Completed {
				state = "done"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s marked %s\n", formatter.CheckMark(t.Completed), t.Task, state)
			return nil
		}),
	}
}

func newTaskDeleteCmd(app *App) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a task",
		Args:  cobra.ExactArgs(1),
		RunE: planRunE(app, func(cmd *cobra.Command, args []string, plan string) error {
			ok, err := app.confirm(yes, fmt.Sprintf("Delete task %s?", args[0]))
			if err != nil || !ok {
				return err
			}
			if err := app.Plans.DeleteTask(cmd.Context(), plan, args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted task %s\n", args[0])
			return nil
		}),
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip confirmation")
	return cmd
}

func (a *App) printTask(cmd *cobra.Command, plan string, t domain.Task) error {
	view, err := a.Plans.View(cmd.Context(), plan)
	if err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), formatter.FormatTask(t, a.labels(view.Plan.Settings.Language)))
	return nil
}
