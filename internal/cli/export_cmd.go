package cli

import (
	"fmt"
	"os"

	"github.com/alexanderramin/roadmap/internal/cli/formatter"
	"github.com/alexanderramin/roadmap/internal/export"
	"github.com/spf13/cobra"
)

func newExportCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the roadmap as a calendar, JSON or Google Calendar links",
	}
	cmd.AddCommand(
		newExportICSCmd(app),
		newExportJSONCmd(app),
		newExportGCalCmd(app),
	)
	return cmd
}

func newExportICSCmd(app *App) *cobra.Command {
	var (
		mode   string
		output string
	)

	cmd := &cobra.Command{
		Use:   "ics",
		Short: "Write an iCalendar file",
		Long: "In block mode each task is one event over its whole span; in daily mode each\n" +
			"day of a task is its own timed event. The file name defaults to the label\n" +
			"icsFileName. Use -o - to print to stdout.",
		RunE: planRunE(app, func(cmd *cobra.Command, args []string, plan string) error {
			m, err := export.ParseMode(mode)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			text, err := app.Plans.ExportICS(ctx, plan, m)
			if err != nil {
				return err
			}
			if output == "" {
				view, err := app.Plans.View(ctx, plan)
				if err != nil {
					return err
				}
				output = app.labels(view.Plan.Settings.Language).ICSFileName
			}
			return writeOutput(cmd, output, []byte(text))
		}),
	}
	cmd.Flags().StringVar(&mode, "mode", export.Block.String(), "Event layout: block or daily")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file, - for stdout")
	return cmd
}

func newExportJSONCmd(app *App) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "json",
		Short: "Write the roadmap as JSON, readable by 'roadmap update' and 'roadmap file add'",
		RunE: planRunE(app, func(cmd *cobra.Command, args []string, plan string) error {
			data, err := app.Plans.ExportJSON(cmd.Context(), plan)
			if err != nil {
				return err
			}
			return writeOutput(cmd, output, data)
		}),
	}
	cmd.Flags().StringVarP(&output, "output", "o", "-", "Output file, - for stdout")
	return cmd
}

func newExportGCalCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "gcal",
		Short: "List Google Calendar links, one per task",
		RunE: planRunE(app, func(cmd *cobra.Command, args []string, plan string) error {
			links, err := app.Plans.CalendarLinks(cmd.Context(), plan)
			if err != nil {
				return err
			}
			if len(links) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No tasks with a valid date.")
				return nil
			}
			for _, l := range links {
				fmt.Fprintf(cmd.OutOrStdout(), "%s  %s\n  %s\n", formatter.Dim(formatter.TruncID(l.TaskID)), l.Title, l.URL)
			}
			return nil
		}),
	}
}

func writeOutput(cmd *cobra.Command, path string, data []byte) error {
	if path == "-" {
		_, err := cmd.OutOrStdout().Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s (%d bytes)\n", path, len(data))
	return nil
}
