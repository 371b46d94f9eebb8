package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/alexanderramin/roadmap/internal/cli/formatter"
	"github.com/alexanderramin/roadmap/internal/service"
	"github.com/spf13/cobra"
)

// planRunE resolves the plan before running fn.
func planRunE(app *App, fn func(cmd *cobra.Command, args []string, plan string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		plan, err := app.resolvePlan(cmd.Context())
		if err != nil {
			return err
		}
		return fn(cmd, args, plan)
	}
}

func newShowCmd(app *App) *cobra.Command {
	var daily, chat bool

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show the roadmap and progress",
		RunE: planRunE(app, func(cmd *cobra.Command, args []string, plan string) error {
			view, err := app.Plans.View(cmd.Context(), plan)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, formatter.Header(view.Plan.Name))
			fmt.Fprintln(out, formatter.FormatRoadmap(view.Roadmap, app.labels(view.Plan.Settings.Language), daily, app.now()))
			fmt.Fprintln(out, formatter.FormatProgress(view.Progress))
			if len(view.Files) > 0 {
				fmt.Fprintf(out, "\n%s\n", formatter.Dim(fmt.Sprintf("%d file(s) attached to the next message", len(view.Files))))
			}
			if chat && len(view.Messages) > 0 {
				fmt.Fprintf(out, "\n%s\n%s", formatter.Header("Chat"), formatter.FormatMessages(view.Messages, app.now()))
			}
			return nil
		}),
	}
	cmd.Flags().BoolVar(&daily, "daily", false, "One row per day instead of one per task")
	cmd.Flags().BoolVar(&chat, "chat", false, "Include the chat log")
	return cmd
}

func newTodayCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "today",
		Short: "Show what is scheduled today",
		RunE: planRunE(app, func(cmd *cobra.Command, args []string, plan string) error {
			ctx := cmd.Context()
			view, err := app.Plans.View(ctx, plan)
			if err != nil {
				return err
			}
			today, err := app.Plans.Today(ctx, plan)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatToday(today, app.labels(view.Plan.Settings.Language), app.now()))
			return nil
		}),
	}
}

func newUndoCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "undo",
		Short: "Step back to the previous roadmap",
		RunE: planRunE(app, func(cmd *cobra.Command, args []string, plan string) error {
			return app.step(cmd, plan, app.Plans.Undo, func(v *service.PlanView) bool { return v.CanUndo }, "Nothing to undo.")
		}),
	}
}

func newRedoCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "redo",
		Short: "Step forward to the next roadmap",
		RunE: planRunE(app, func(cmd *cobra.Command, args []string, plan string) error {
			return app.step(cmd, plan, app.Plans.Redo, func(v *service.PlanView) bool { return v.CanRedo }, "Nothing to redo.")
		}),
	}
}

// step moves through history with move when can allows it.
func (a *App) step(cmd *cobra.Command, plan string, move func(context.Context, string) (*service.PlanView, error), can func(*service.PlanView) bool, atEnd string) error {
	view, err := a.Plans.View(cmd.Context(), plan)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if !can(view) {
		fmt.Fprintln(out, formatter.Dim(atEnd))
		return nil
	}
	if view, err = move(cmd.Context(), plan); err != nil {
		return err
	}
	fmt.Fprintln(out, formatter.FormatRoadmap(view.Roadmap, a.labels(view.Plan.Settings.Language), false, a.now()))
	return nil
}

func newUpdateCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "update FILE",
		Short: "Replace the roadmap with a JSON list of tasks (use - for stdin)",
		Long: "Accepts canonical tasks (date, durationDays) or timeline tasks (start, end).\n" +
			"Entries that cannot be read are kept unchanged and reported.",
		Args: cobra.ExactArgs(1),
		RunE: planRunE(app, func(cmd *cobra.Command, args []string, plan string) error {
			data, err := readInput(cmd, args[0])
			if err != nil {
				return err
			}
			res, err := app.Plans.UpdateRoadmap(cmd.Context(), plan, data)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprint(out, formatter.FormatWarnings(res.Warnings))
			if !res.Changed {
				fmt.Fprintln(out, formatter.Dim("Roadmap unchanged."))
				return nil
			}
			fmt.Fprintf(out, "Roadmap updated: %d task(s)\n", len(res.Roadmap))
			return nil
		}),
	}
}

func newFileCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "file",
		Short: "Manage files attached to the next AI message",
	}

	add := &cobra.Command{
		Use:   "add PATH",
		Short: "Upload a file; .ics and .json files are imported into the roadmap",
		Args:  cobra.ExactArgs(1),
		RunE: planRunE(app, func(cmd *cobra.Command, args []string, plan string) error {
			data, err := readInput(cmd, args[0])
			if err != nil {
				return err
			}
			res, err := app.Plans.ImportFile(cmd.Context(), plan, filepath.Base(args[0]), data)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprint(out, formatter.FormatWarnings(res.Warnings))
			fmt.Fprintf(out, "Attached %s (%s, %d bytes) %s\n", res.File.Name, res.File.Kind, res.File.Size, formatter.TruncID(res.File.ID))
			if res.File.ImportedEvents > 0 {
				fmt.Fprintf(out, "Imported %d task(s)\n", res.File.ImportedEvents)
			}
			return nil
		}),
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List attached files",
		RunE: planRunE(app, func(cmd *cobra.Command, args []string, plan string) error {
			view, err := app.Plans.View(cmd.Context(), plan)
			if err != nil {
				return err
			}
			if len(view.Files) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No files attached.")
				return nil
			}
			rows := make([][]string, 0, len(view.Files))
			for _, f := range view.Files {
				rows = append(rows, []string{f.ID, f.Name, string(f.Kind), fmt.Sprintf("%d", f.Size), fmt.Sprintf("%d", f.ImportedEvents)})
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.RenderTable([]string{"ID", "NAME", "KIND", "BYTES", "IMPORTED"}, rows))
			return nil
		}),
	}

	remove := &cobra.Command{
		Use:   "rm ID",
		Short: "Detach a file; tasks it imported stay on the roadmap",
		Args:  cobra.ExactArgs(1),
		RunE: planRunE(app, func(cmd *cobra.Command, args []string, plan string) error {
			if err := app.Plans.RemoveFile(cmd.Context(), plan, args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed file %s\n", args[0])
			return nil
		}),
	}

	cmd.AddCommand(add, list, remove)
	return cmd
}

// readInput reads a file, or the command's input for "-".
func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return data, nil
}
