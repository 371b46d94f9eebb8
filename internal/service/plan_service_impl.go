package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/alexanderramin/roadmap/internal/db"
	"github.com/alexanderramin/roadmap/internal/export"
	"github.com/alexanderramin/roadmap/internal/planner"
	"github.com/alexanderramin/roadmap/internal/repository"
	"github.com/google/uuid"
)

var (
	ErrPlanExists = errors.New("a plan with this name already exists")
	ErrEmptyName  = errors.New("plan name is required")
	ErrNoChat     = errors.New("no AI client configured")
)

// Options carry the localization and clocks every restored session gets.
// Empty texts and templates fall back to the plan language's defaults.
type Options struct {
	Texts    planner.Texts
	Template planner.PromptTemplate
	Labels   export.Labels
	Logger   *slog.Logger
	Now      func() time.Time
	NewID    func() string
}

type planService struct {
	uow      db.UnitOfWork
	chat     planner.Chatter
	opts     Options
	observer UseCaseObserver
}

// NewPlanService creates a PlanService. A nil chat makes Chat fail with
// ErrNoChat; every other operation works offline.
func NewPlanService(uow db.UnitOfWork, chat planner.Chatter, opts Options, observers ...UseCaseObserver) PlanService {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.NewID == nil {
		opts.NewID = uuid.NewString
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &planService{
		uow:      uow,
		chat:     chat,
		opts:     opts,
		observer: useCaseObserverOrNoop(observers),
	}
}

// loadedPlan is a plan header with its session rebuilt from storage.
// storedMessages is how many chat messages were already persisted.
type loadedPlan struct {
	plan           *repository.Plan
	session        *planner.Session
	storedMessages int
}

func (s *planService) sessionOptions(settings planner.Settings) []planner.Option {
	return []planner.Option{
		planner.WithSummaryPrefix(s.opts.Labels.WithDefaults(settings.Language).CalendarEventPrefix),
		planner.WithClock(s.opts.Now),
		planner.WithIDs(s.opts.NewID),
		planner.WithLogger(s.opts.Logger),
		planner.WithTexts(s.opts.Texts),
		planner.WithPromptTemplate(s.opts.Template),
	}
}

func (s *planService) load(ctx context.Context, tx db.DBTX, name string) (*loadedPlan, error) {
	plan, err := repository.NewSQLitePlanRepo(tx).GetByName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("loading plan %q: %w", name, err)
	}
	snapshots, err := repository.NewSQLiteSnapshotRepo(tx).ListByPlan(ctx, plan.ID)
	if err != nil {
		return nil, err
	}
	messages, err := repository.NewSQLiteChatMessageRepo(tx).ListByPlan(ctx, plan.ID)
	if err != nil {
		return nil, err
	}
	files, err := repository.NewSQLiteUploadedFileRepo(tx).ListByPlan(ctx, plan.ID)
	if err != nil {
		return nil, err
	}

	session, err := planner.Restore(planner.State{
		Settings:  plan.Settings,
		Prompt:    plan.Prompt,
		Snapshots: snapshots,
		Cursor:    plan.Cursor,
		Messages:  messages,
		Files:     files,
	}, s.sessionOptions(plan.Settings)...)
	if err != nil {
		return nil, fmt.Errorf("restoring plan %q: %w", name, err)
	}
	return &loadedPlan{plan: plan, session: session, storedMessages: len(messages)}, nil
}

// save writes the session back: header, whole history, new chat messages
// and the current uploads.
func (s *planService) save(ctx context.Context, tx db.DBTX, lp *loadedPlan) error {
	st := lp.session.State()

	lp.plan.Settings = st.Settings
	lp.plan.Prompt = st.Prompt
	lp.plan.Cursor = st.Cursor
	lp.plan.UpdatedAt = s.opts.Now().UTC()
	if err := repository.NewSQLitePlanRepo(tx).Update(ctx, lp.plan); err != nil {
		return err
	}
	if err := repository.NewSQLiteSnapshotRepo(tx).ReplaceAll(ctx, lp.plan.ID, st.Snapshots); err != nil {
		return err
	}
	msgRepo := repository.NewSQLiteChatMessageRepo(tx)
	for seq := lp.storedMessages; seq < len(st.Messages); seq++ {
		if err := msgRepo.Append(ctx, lp.plan.ID, seq, st.Messages[seq]); err != nil {
			return err
		}
	}
	if err := repository.NewSQLiteUploadedFileRepo(tx).ReplaceAll(ctx, lp.plan.ID, st.Files); err != nil {
		return err
	}
	lp.storedMessages = len(st.Messages)
	return nil
}

// mutate runs fn on the named plan's session and saves the result in the
// same transaction. Nothing is saved when fn fails.
func (s *planService) mutate(ctx context.Context, name string, fn func(lp *loadedPlan) error) error {
	return s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		lp, err := s.load(ctx, tx, name)
		if err != nil {
			return err
		}
		if err := fn(lp); err != nil {
			return err
		}
		return s.save(ctx, tx, lp)
	})
}

// read runs fn on the named plan's session without saving.
func (s *planService) read(ctx context.Context, name string, fn func(lp *loadedPlan) error) error {
	return s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		lp, err := s.load(ctx, tx, name)
		if err != nil {
			return err
		}
		return fn(lp)
	})
}

func (s *planService) CreatePlan(ctx context.Context, name string, settings planner.Settings) (plan *repository.Plan, err error) {
	done := track(ctx, s.observer, "create-plan", name, nil)
	defer func() { done(err) }()

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEmptyName
	}
	if err = settings.Validate(); err != nil {
		return nil, fmt.Errorf("invalid settings: %w", err)
	}

	now := s.opts.Now().UTC()
	plan = &repository.Plan{
		ID:        s.opts.NewID(),
		Name:      name,
		Settings:  settings,
		CreatedAt: now,
		UpdatedAt: now,
	}
	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		plans := repository.NewSQLitePlanRepo(tx)
		if _, err := plans.GetByName(ctx, name); err == nil {
			return fmt.Errorf("%w: %s", ErrPlanExists, name)
		} else if !errors.Is(err, repository.ErrNotFound) {
			return err
		}
		if err := plans.Create(ctx, plan); err != nil {
			return err
		}
		session := planner.New(settings, s.sessionOptions(settings)...)
		return s.save(ctx, tx, &loadedPlan{plan: plan, session: session})
	})
	if err != nil {
		return nil, err
	}
	return plan, nil
}

func (s *planService) ListPlans(ctx context.Context) ([]*repository.Plan, error) {
	var plans []*repository.Plan
	err := s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		var err error
		plans, err = repository.NewSQLitePlanRepo(tx).List(ctx)
		return err
	})
	return plans, err
}

func (s *planService) DeletePlan(ctx context.Context, name string) (err error) {
	done := track(ctx, s.observer, "delete-plan", name, nil)
	defer func() { done(err) }()

	return s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		plans := repository.NewSQLitePlanRepo(tx)
		plan, err := plans.GetByName(ctx, name)
		if err != nil {
			return fmt.Errorf("loading plan %q: %w", name, err)
		}
		return plans.Delete(ctx, plan.ID)
	})
}

func (s *planService) View(ctx context.Context, name string) (*PlanView, error) {
	var view *PlanView
	err := s.read(ctx, name, func(lp *loadedPlan) error {
		view = newPlanView(lp)
		return nil
	})
	return view, err
}

func newPlanView(lp *loadedPlan) *PlanView {
	return &PlanView{
		Plan:     lp.plan,
		Roadmap:  lp.session.Roadmap(),
		Progress: lp.session.Progress(),
		CanUndo:  lp.session.CanUndo(),
		CanRedo:  lp.session.CanRedo(),
		Messages: lp.session.Messages(),
		Files:    lp.session.Files(),
	}
}

func (s *planService) UpdateSettings(ctx context.Context, name string, settings planner.Settings) (view *PlanView, err error) {
	done := track(ctx, s.observer, "update-settings", name, nil)
	defer func() { done(err) }()

	err = s.mutate(ctx, name, func(lp *loadedPlan) error {
		if err := lp.session.UpdateSettings(settings); err != nil {
			return fmt.Errorf("invalid settings: %w", err)
		}
		view = newPlanView(lp)
		return nil
	})
	return view, err
}

func (s *planService) ApplyForm(ctx context.Context, name string, form planner.Form) (msg *planner.Message, err error) {
	done := track(ctx, s.observer, "apply-form", name, nil)
	defer func() { done(err) }()

	err = s.mutate(ctx, name, func(lp *loadedPlan) error {
		m, err := lp.session.ApplyForm(form)
		if err != nil {
			return fmt.Errorf("invalid form: %w", err)
		}
		msg = &m
		return nil
	})
	return msg, err
}

func (s *planService) UpdateRoadmap(ctx context.Context, name string, data []byte) (res *UpdateResult, err error) {
	fields := map[string]any{}
	done := track(ctx, s.observer, "update-roadmap", name, fields)
	defer func() { done(err) }()

	err = s.mutate(ctx, name, func(lp *loadedPlan) error {
		changed, warnings, err := lp.session.HandleRoadmapUpdate(data)
		if err != nil {
			return err
		}
		res = &UpdateResult{Changed: changed, Roadmap: lp.session.Roadmap(), Warnings: warnings}
		fields["changed"] = changed
		fields["warnings"] = len(warnings)
		return nil
	})
	return res, err
}

func (s *planService) Undo(ctx context.Context, name string) (view *PlanView, err error) {
	done := track(ctx, s.observer, "undo", name, nil)
	defer func() { done(err) }()
	return s.step(ctx, name, (*planner.Session).Undo)
}

func (s *planService) Redo(ctx context.Context, name string) (view *PlanView, err error) {
	done := track(ctx, s.observer, "redo", name, nil)
	defer func() { done(err) }()
	return s.step(ctx, name, (*planner.Session).Redo)
}

// step moves the history cursor. At either end it is a no-op, not an error.
func (s *planService) step(ctx context.Context, name string, move func(*planner.Session) bool) (*PlanView, error) {
	var view *PlanView
	err := s.mutate(ctx, name, func(lp *loadedPlan) error {
		move(lp.session)
		view = newPlanView(lp)
		return nil
	})
	return view, err
}
