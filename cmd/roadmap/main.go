package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/alexanderramin/roadmap/internal/cli"
	"github.com/alexanderramin/roadmap/internal/config"
	"github.com/alexanderramin/roadmap/internal/db"
	"github.com/alexanderramin/roadmap/internal/llm"
	"github.com/alexanderramin/roadmap/internal/planner"
	"github.com/alexanderramin/roadmap/internal/service"
	"github.com/mattn/go-isatty"
)

func main() {
	app := &cli.App{
		Connect: connect,
		IsInteractive: func() bool {
			return isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
		},
	}
	err := cli.NewRootCmd(app).Execute()
	if cerr := app.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// connect opens the database and wires the plan service. The AI client is
// only attached when ROADMAP_LLM_ENABLED is set.
func connect(_ context.Context, s config.Settings, l *config.Locale) (service.PlanService, io.Closer, error) {
	database, err := db.OpenDB(s.DBPath)
	if err != nil {
		return nil, nil, fmt.Errorf("opening database: %w", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	var chat planner.Chatter
	llmCfg := llm.LoadConfig()
	if llmCfg.Enabled {
		var observer llm.Observer = llm.NoopObserver{}
		if llmCfg.LogCalls {
			observer = llm.NewLogObserver(os.Stderr)
		}
		chat = llm.NewClient(llmCfg, observer)
	}

	var observers []service.UseCaseObserver
	if os.Getenv("ROADMAP_LOG_USE_CASES") != "" {
		observers = append(observers, service.NewLogUseCaseObserver(os.Stderr))
	}

	plans := service.NewPlanService(db.NewSQLiteUnitOfWork(database), chat, service.Options{
		Texts:    l.Texts,
		Template: l.Prompt,
		Labels:   l.Labels,
		Logger:   logger,
	}, observers...)
	return plans, database, nil
}
