package cli

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/alexanderramin/roadmap/internal/calendar"
	"github.com/alexanderramin/roadmap/internal/cli/formatter"
	"github.com/alexanderramin/roadmap/internal/planner"
	"github.com/alexanderramin/roadmap/internal/service"
	"github.com/spf13/cobra"
)

func newChatCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "chat MESSAGE...",
		Short: "Ask the AI; a plan in its reply replaces or extends the roadmap",
		Long: "Sends the message with the chat history and any attached files.\n" +
			"Requires ROADMAP_LLM_ENABLED=true and a reachable model server.",
		Args: cobra.MinimumNArgs(1),
		RunE: planRunE(app, func(cmd *cobra.Command, args []string, plan string) error {
			stop := func() {}
			if app.interactive() {
				stop = formatter.StartSpinner(os.Stderr, "Waiting for the AI...")
			}
			res, err := app.Plans.Chat(cmd.Context(), plan, strings.Join(args, " "))
			stop()
			if errors.Is(err, service.ErrNoChat) {
				return fmt.Errorf("%w: set ROADMAP_LLM_ENABLED=true, or paste a reply with 'roadmap reply'", err)
			}
			if res != nil {
				app.printChatResult(cmd, res)
			}
			return err
		}),
	}
}

func newReplyCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "reply FILE",
		Short: "Import an AI reply obtained elsewhere (use - for stdin)",
		Args:  cobra.ExactArgs(1),
		RunE: planRunE(app, func(cmd *cobra.Command, args []string, plan string) error {
			data, err := readInput(cmd, args[0])
			if err != nil {
				return err
			}
			res, err := app.Plans.ProcessReply(cmd.Context(), plan, string(data))
			if err != nil {
				return err
			}
			app.printChatResult(cmd, res)
			return nil
		}),
	}
}

func (a *App) printChatResult(cmd *cobra.Command, res *service.ChatResult) {
	out := cmd.OutOrStdout()
	fmt.Fprint(out, formatter.FormatWarnings(res.Warnings))
	fmt.Fprint(out, formatter.FormatMessage(res.Message, a.now()))
	if res.Message.ImportedEvents > 0 {
		fmt.Fprintf(out, "\nImported %d task(s); the roadmap has %d.\n", res.Message.ImportedEvents, len(res.Roadmap))
	}
}

func newFormCmd(app *App) *cobra.Command {
	var flags planFormFields

	cmd := &cobra.Command{
		Use:   "form",
		Short: "Fill in the planning form to build the AI prompt",
		Long: "Asks for the problem, solution, result and schedule, updates the plan settings\n" +
			"and stores the filled prompt for the next chat. Runs as a form on a terminal;\n" +
			"otherwise pass the answers as flags.",
		RunE: planRunE(app, func(cmd *cobra.Command, args []string, plan string) error {
			fields := flags
			if app.interactive() && !cmd.Flags().Changed("problem") {
				if len(fields.WorkDays) == 0 {
					fields.WorkDays = calendar.Weekdays.Names()
				}
				if err := planForm(&fields).Run(); err != nil {
					return err
				}
			}
			form, err := fields.form()
			if err != nil {
				return err
			}
			msg, err := app.Plans.ApplyForm(cmd.Context(), plan, form)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatMessage(*msg, app.now()))
			return nil
		}),
	}
	fs := cmd.Flags()
	fs.StringVar(&flags.Problem, "problem", "", "The problem to solve")
	fs.StringVar(&flags.Solution, "solution", "", "The solution in mind")
	fs.StringVar(&flags.Result, "result", "", "The expected result")
	fs.StringVar(&flags.Industry, "industry", "", "Industry")
	fs.StringVar(&flags.PeriodWeeks, "weeks", "4", "Planning period in weeks")
	fs.StringVar(&flags.StartDate, "start", "", "Start date (YYYY-MM-DD, blank for today)")
	fs.StringVar(&flags.StartTime, "start-time", "", "Daily start time (HH:MM)")
	fs.StringVar(&flags.DailyHours, "hours", "1", "Hours per day")
	fs.StringSliceVar(&flags.WorkDays, "workdays", nil, "Working days, e.g. mon,tue,wed")
	return cmd
}

// form converts the string answers. Empty numbers take the form defaults.
func (f planFormFields) form() (planner.Form, error) {
	form := planner.Form{
		Problem:        f.Problem,
		Solution:       f.Solution,
		Result:         f.Result,
		PeriodWeeks:    4,
		StartDate:      f.StartDate,
		DailyStartTime: f.StartTime,
		DailyHours:     1,
		WorkDays:       calendar.Weekdays,
		Industry:       f.Industry,
	}
	if f.Problem == "" {
		return form, errors.New("problem is required")
	}
	if f.PeriodWeeks != "" {
		n, err := strconv.Atoi(f.PeriodWeeks)
		if err != nil {
			return form, fmt.Errorf("weeks: %w", err)
		}
		form.PeriodWeeks = n
	}
	if f.DailyHours != "" {
		h, err := strconv.ParseFloat(f.DailyHours, 64)
		if err != nil {
			return form, fmt.Errorf("hours: %w", err)
		}
		form.DailyHours = h
	}
	if len(f.WorkDays) > 0 {
		wd, err := calendar.ParseWorkDays(f.WorkDays)
		if err != nil {
			return form, err
		}
		form.WorkDays = wd
	}
	return form, form.Validate()
}
