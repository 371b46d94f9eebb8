package cli

import (
	"errors"
	"fmt"

	"github.com/alexanderramin/roadmap/internal/calendar"
	"github.com/alexanderramin/roadmap/internal/cli/formatter"
	"github.com/alexanderramin/roadmap/internal/planner"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

func newPlanCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Manage plans",
	}
	cmd.AddCommand(
		newPlanNewCmd(app),
		newPlanListCmd(app),
		newPlanDeleteCmd(app),
	)
	return cmd
}

// settingsFlags are the plan settings accepted on the command line. Unset
// flags keep the base value.
type settingsFlags struct {
	start      string
	workDays   []string
	weeks      int
	language   string
	importMode string
}

func (f *settingsFlags) register(fs *pflag.FlagSet) {
	fs.StringVar(&f.start, "start", "", "Start date (YYYY-MM-DD, blank for today)")
	fs.StringSliceVar(&f.workDays, "workdays", nil, "Working days, e.g. mon,tue,wed")
	fs.IntVar(&f.weeks, "weeks", 0, "Planning period in weeks")
	fs.StringVar(&f.language, "language", "", "Plan language (en or de)")
	fs.StringVar(&f.importMode, "import-mode", "", "How imported plans apply: replace or merge")
}

func (f *settingsFlags) changed(fs *pflag.FlagSet) bool {
	for _, name := range []string{"start", "workdays", "weeks", "language", "import-mode"} {
		if fs.Changed(name) {
			return true
		}
	}
	return false
}

func (f *settingsFlags) apply(fs *pflag.FlagSet, base planner.Settings) (planner.Settings, error) {
	s := base
	if fs.Changed("start") {
		s.StartDate = f.start
	}
	if fs.Changed("workdays") {
		wd, err := calendar.ParseWorkDays(f.workDays)
		if err != nil {
			return s, err
		}
		s.WorkDays = wd
	}
	if fs.Changed("weeks") {
		s.PeriodWeeks = f.weeks
	}
	if fs.Changed("language") {
		s.Language = f.language
	}
	if fs.Changed("import-mode") {
		mode, err := planner.ParseImportMode(f.importMode)
		if err != nil {
			return s, err
		}
		s.ImportMode = mode
	}
	return s, s.Validate()
}

func newPlanNewCmd(app *App) *cobra.Command {
	var flags settingsFlags

	cmd := &cobra.Command{
		Use:   "new NAME",
		Short: "Create a plan",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			base := planner.DefaultSettings()
			base.Language = app.Locale.Language
			settings, err := flags.apply(cmd.Flags(), base)
			if err != nil {
				return err
			}
			p, err := app.Plans.CreatePlan(cmd.Context(), args[0], settings)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created plan %s %s\n", formatter.Bold(p.Name), formatter.TruncID(p.ID))
			return nil
		},
	}
	flags.register(cmd.Flags())
	return cmd
}

func newPlanListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List plans",
		RunE: func(cmd *cobra.Command, args []string) error {
			plans, err := app.Plans.ListPlans(cmd.Context())
			if err != nil {
				return err
			}
			if len(plans) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No plans found.")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatPlanList(plans, app.Settings.Plan))
			return nil
		},
	}
}

func newPlanDeleteCmd(app *App) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete NAME",
		Short: "Delete a plan with its history, chat and files",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ok, err := app.confirm(yes, fmt.Sprintf("Delete plan %q and all its history?", args[0]))
			if err != nil || !ok {
				return err
			}
			if err := app.Plans.DeletePlan(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted plan %s\n", args[0])
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip confirmation")
	return cmd
}

func newSettingsCmd(app *App) *cobra.Command {
	var flags settingsFlags

	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show or change the plan settings",
		Long: "Without flags, prints the current settings. Changing the start date or work days\n" +
			"moves where newly imported tasks land; tasks already on the roadmap keep their dates.",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			name, err := app.resolvePlan(ctx)
			if err != nil {
				return err
			}
			view, err := app.Plans.View(ctx, name)
			if err != nil {
				return err
			}
			if flags.changed(cmd.Flags()) {
				settings, err := flags.apply(cmd.Flags(), view.Plan.Settings)
				if err != nil {
					return err
				}
				if view, err = app.Plans.UpdateSettings(ctx, name, settings); err != nil {
					return err
				}
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatSettings(view.Plan.Settings))
			return nil
		},
	}
	flags.register(cmd.Flags())
	return cmd
}

// confirm asks before a destructive action. Without a terminal the action
// needs --yes.
func (a *App) confirm(yes bool, question string) (bool, error) {
	if yes {
		return true, nil
	}
	if !a.interactive() {
		return false, errors.New("not a terminal: pass --yes to confirm")
	}
	var ok bool
	if err := confirmForm(question, &ok).Run(); err != nil {
		return false, err
	}
	return ok, nil
}
