// Package cli is the roadmap command line: cobra commands over the plan
// service, lipgloss output, huh forms and a bubbletea timeline.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/alexanderramin/roadmap/internal/config"
	"github.com/alexanderramin/roadmap/internal/export"
	"github.com/alexanderramin/roadmap/internal/service"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// offline marks commands that run without opening the plan store.
const offline = "offline"

// ConnectFunc opens the plan store for the resolved settings. The returned
// closer is called when the command finishes.
type ConnectFunc func(ctx context.Context, s config.Settings, l *config.Locale) (service.PlanService, io.Closer, error)

// App holds what CLI commands share. Plans is set either up front (tests)
// or by Connect once flags and environment are resolved.
type App struct {
	Plans         service.PlanService
	Connect       ConnectFunc
	Locale        *config.Locale
	Settings      config.Settings
	IsInteractive func() bool
	Now           func() time.Time

	closer io.Closer
}

func (a *App) interactive() bool {
	return a.IsInteractive != nil && a.IsInteractive()
}

func (a *App) now() time.Time {
	if a.Now == nil {
		return time.Now()
	}
	return a.Now()
}

// labels are the export labels for a plan language with the locale file's
// overrides applied.
func (a *App) labels(language string) export.Labels {
	if a.Locale == nil {
		return export.DefaultLabels(language)
	}
	return a.Locale.Labels.WithDefaults(language)
}

// NewRootCmd creates the top-level "roadmap" command. Settings come from
// flags first, then ROADMAP_* environment variables, then defaults.
func NewRootCmd(app *App) *cobra.Command {
	v := config.NewViper()

	root := &cobra.Command{
		Use:           "roadmap",
		Short:         "AI-assisted roadmap planner with undo, calendar export and a timeline",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return app.setup(cmd, v)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return app.Close()
		},
	}
	config.AddFlags(v, root.PersistentFlags())

	root.AddCommand(
		newPlanCmd(app),
		newShowCmd(app),
		newTodayCmd(app),
		newUndoCmd(app),
		newRedoCmd(app),
		newUpdateCmd(app),
		newFileCmd(app),
		newChatCmd(app),
		newReplyCmd(app),
		newFormCmd(app),
		newTaskCmd(app),
		newTimelineCmd(app),
		newExportCmd(app),
		newSettingsCmd(app),
		newLabelsCmd(app),
		newServeCmd(app, v),
	)
	return root
}

func (a *App) setup(cmd *cobra.Command, v *viper.Viper) error {
	a.Settings = config.FromViper(v)
	if a.Locale == nil {
		l, err := config.LoadLocale(a.Settings.LabelsPath)
		if err != nil {
			return err
		}
		a.Locale = l
	}
	if a.Plans != nil || cmd.Annotations[offline] != "" {
		return nil
	}
	if a.Connect == nil {
		return errors.New("no plan store configured")
	}
	plans, closer, err := a.Connect(cmd.Context(), a.Settings, a.Locale)
	if err != nil {
		return err
	}
	a.Plans, a.closer = plans, closer
	return nil
}

// Close releases the plan store opened by Connect. It is safe to call twice.
func (a *App) Close() error {
	if a.closer == nil {
		return nil
	}
	err := a.closer.Close()
	a.closer = nil
	return err
}

// resolvePlan picks the plan a command works on: the --plan flag or
// ROADMAP_PLAN, else the only stored plan.
func (a *App) resolvePlan(ctx context.Context) (string, error) {
	if a.Settings.Plan != "" {
		return a.Settings.Plan, nil
	}
	plans, err := a.Plans.ListPlans(ctx)
	if err != nil {
		return "", err
	}
	switch len(plans) {
	case 0:
		return "", errors.New("no plans yet: create one with 'roadmap plan new NAME'")
	case 1:
		return plans[0].Name, nil
	default:
		return "", fmt.Errorf("%d plans stored: choose one with --plan or ROADMAP_PLAN", len(plans))
	}
}
