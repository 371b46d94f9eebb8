// Package editor is the list editor over a roadmap: one draft or one edit at
// a time, completion toggles, confirmed deletes and a daily or block view.
// Every change goes through the store as a whole new roadmap.
package editor

import (
	"fmt"
	"time"

	"github.com/alexanderramin/roadmap/internal/calendar"
	"github.com/alexanderramin/roadmap/internal/domain"
	"github.com/alexanderramin/roadmap/internal/export"
	"github.com/google/uuid"
)

// DraftID marks the unsaved task in Rows.
const DraftID = "draft"

// Store is the single writer the editor commits through.
type Store interface {
	Current() domain.Roadmap
	Commit(domain.Roadmap) bool
}

// Row is one line of the list. While a task is being edited its row shows
// the edit buffer.
type Row struct {
	domain.DailyInstance
	Draft   bool
	Editing bool
}

// Editor holds the transient editing state. It never keeps its own copy of
// the roadmap.
type Editor struct {
	store Store
	now   func() time.Time
	newID func() string

	draft         *domain.Task
	editingID     string
	buffer        domain.Task
	pendingDelete string
	daily         bool
}

// Option configures an Editor.
type Option func(*Editor)

// WithClock sets the clock used for the draft's default date.
func WithClock(now func() time.Time) Option {
	return func(e *Editor) { e.now = now }
}

// WithIDs sets the id generator used when a draft is saved.
func WithIDs(newID func() string) Option {
	return func(e *Editor) { e.newID = newID }
}

func New(store Store, opts ...Option) *Editor {
	e := &Editor{store: store, now: time.Now, newID: uuid.NewString}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// SetDailyView switches between one row per day and one row per task.
func (e *Editor) SetDailyView(daily bool) { e.daily = daily }

func (e *Editor) DailyView() bool { return e.daily }

// Rows returns the current roadmap in date order, expanded per day in daily
// view, with the draft first when there is one.
func (e *Editor) Rows() []Row {
	sorted := e.store.Current().Sorted()

	var instances []domain.DailyInstance
	if e.daily {
		instances = domain.ExpandToDailyView(sorted)
	} else {
		instances = domain.Collapsed(sorted)
	}

	rows := make([]Row, 0, len(instances)+1)
	if e.draft != nil {
		rows = append(rows, Row{
			DailyInstance: domain.DailyInstance{Task: *e.draft, OriginalID: DraftID},
			Draft:         true,
			Editing:       true,
		})
	}
	for _, inst := range instances {
		row := Row{DailyInstance: inst}
		if e.editingID != "" && inst.OriginalID == e.editingID {
			row.Editing = true
			if !inst.IsExpanded {
				row.Task = e.buffer
			}
		}
		rows = append(rows, row)
	}
	return rows
}

// Editing reports whether a draft or an edit is open.
func (e *Editor) Editing() bool { return e.draft != nil || e.editingID != "" }

// BeginCreate opens a draft dated today with default times.
func (e *Editor) BeginCreate() error {
	if e.Editing() {
		return ErrEditInProgress
	}
	e.draft = &domain.Task{
		ID:             DraftID,
		Date:           calendar.FormatDate(e.now()),
		DurationDays:   domain.DefaultDurationDays,
		DailyStartTime: domain.DefaultStartTime,
		DailyHours:     domain.DefaultDailyHours,
	}
	return nil
}

// BeginEdit loads a task into the edit buffer. A daily instance id edits the
// whole task it belongs to.
func (e *Editor) BeginEdit(id string) error {
	if e.Editing() {
		return ErrEditInProgress
	}
	task, err := e.resolve(id)
	if err != nil {
		return err
	}
	e.editingID = task.ID
	e.buffer = task
	return nil
}

// Buffer returns the task being created or edited.
func (e *Editor) Buffer() (domain.Task, bool) {
	switch {
	case e.draft != nil:
		return *e.draft, true
	case e.editingID != "":
		return e.buffer, true
	}
	return domain.Task{}, false
}

// SetBuffer replaces the fields being edited. The id cannot change.
func (e *Editor) SetBuffer(t domain.Task) error {
	switch {
	case e.draft != nil:
		t.ID = DraftID
		*e.draft = t
	case e.editingID != "":
		t.ID = e.editingID
		e.buffer = t
	default:
		return ErrNoSession
	}
	return nil
}

// Save commits the draft or the edit and closes it. An invalid buffer is
// rejected and stays open.
func (e *Editor) Save() (domain.Task, error) {
	current := e.store.Current()

	switch {
	case e.draft != nil:
		t := e.draft.Normalized()
		t.ID = e.newID()
		if err := t.Validate(); err != nil {
			return domain.Task{}, fmt.Errorf("saving new task: %w", err)
		}
		e.store.Commit(append(current.Clone(), t).Sorted())
		e.draft = nil
		return t, nil

	case e.editingID != "":
		t := e.buffer.Normalized()
		if err := t.Validate(); err != nil {
			return domain.Task{}, fmt.Errorf("saving task: %w", err)
		}
		id := e.editingID
		e.editingID = ""
		e.buffer = domain.Task{}
		if current.IndexOf(id) < 0 {
			return domain.Task{}, fmt.Errorf("saving task %s: %w", id, ErrTaskNotFound)
		}
		e.store.Commit(current.Replace(t).Sorted())
		return t, nil
	}
	return domain.Task{}, ErrNoSession
}

// Cancel drops the draft or the edit buffer.
func (e *Editor) Cancel() {
	e.draft = nil
	e.editingID = ""
	e.buffer = domain.Task{}
}

// ToggleComplete flips the completed flag of a task, or of the task a daily
// instance belongs to.
func (e *Editor) ToggleComplete(id string) (domain.Task, error) {
	if id == DraftID {
		return domain.Task{}, ErrDraftNotToggleable
	}
	task, err := e.resolve(id)
	if err != nil {
		return domain.Task{}, err
	}
	task.Completed = !task.Completed
	e.store.Commit(e.store.Current().Replace(task))
	return task, nil
}

// RequestDelete asks for confirmation to delete a saved task. Drafts and
// daily instances cannot be deleted.
func (e *Editor) RequestDelete(id string) error {
	if id == DraftID {
		return ErrNotDeletable
	}
	if _, ok := e.store.Current().Find(id); !ok {
		if _, isInstance := e.instance(id); isInstance {
			return ErrNotDeletable
		}
		return fmt.Errorf("deleting %s: %w", id, ErrTaskNotFound)
	}
	e.pendingDelete = id
	return nil
}

// PendingDelete returns the id awaiting confirmation.
func (e *Editor) PendingDelete() (string, bool) {
	return e.pendingDelete, e.pendingDelete != ""
}

// ConfirmDelete removes the task awaiting confirmation.
func (e *Editor) ConfirmDelete() error {
	id := e.pendingDelete
	if id == "" {
		return ErrNoPendingDelete
	}
	e.pendingDelete = ""
	current := e.store.Current()
	if current.IndexOf(id) < 0 {
		return fmt.Errorf("deleting %s: %w", id, ErrTaskNotFound)
	}
	if e.editingID == id {
		e.Cancel()
	}
	e.store.Commit(current.Without(id))
	return nil
}

// CancelDelete dismisses the confirmation.
func (e *Editor) CancelDelete() { e.pendingDelete = "" }

// ExportICS renders the current roadmap in the mode matching the view.
func (e *Editor) ExportICS(labels export.Labels) string {
	mode := export.Block
	if e.daily {
		mode = export.Daily
	}
	return export.ICS(e.store.Current(), mode, labels, e.now())
}

// Progress counts every task, whatever the view shows.
func (e *Editor) Progress() domain.Progress {
	return domain.ComputeProgress(e.store.Current())
}

// resolve finds a saved task by its own id or by a daily instance id.
func (e *Editor) resolve(id string) (domain.Task, error) {
	current := e.store.Current()
	if t, ok := current.Find(id); ok {
		return t, nil
	}
	if inst, ok := e.instance(id); ok {
		if t, ok := current.Find(inst.OriginalID); ok {
			return t, nil
		}
	}
	return domain.Task{}, fmt.Errorf("%s: %w", id, ErrTaskNotFound)
}

func (e *Editor) instance(id string) (domain.DailyInstance, bool) {
	for inst := range domain.DailyView(e.store.Current()) {
		if inst.ID == id {
			return inst, true
		}
	}
	return domain.DailyInstance{}, false
}
