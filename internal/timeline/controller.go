package timeline

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"slices"
	"time"

	"github.com/alexanderramin/roadmap/internal/calendar"
	"github.com/alexanderramin/roadmap/internal/domain"
	"github.com/alexanderramin/roadmap/internal/importer"
)

var (
	ErrNoSelection   = errors.New("no tasks selected")
	ErrNegativeScale = errors.New("scale percentage must not be negative")
)

// DragKind is what a drag changes.
type DragKind int

const (
	Move DragKind = iota
	ResizeStart
	ResizeEnd
)

func (k DragKind) String() string {
	switch k {
	case ResizeStart:
		return "resize-start"
	case ResizeEnd:
		return "resize-end"
	}
	return "move"
}

// ParseDragKind accepts the String forms; empty means Move.
func ParseDragKind(s string) (DragKind, error) {
	switch s {
	case "", "move":
		return Move, nil
	case "resize-start":
		return ResizeStart, nil
	case "resize-end":
		return ResizeEnd, nil
	}
	return Move, fmt.Errorf("unknown drag kind %q (use move, resize-start or resize-end)", s)
}

// Pointer is a pointer event in drawing coordinates.
type Pointer struct {
	X, Y  float64
	Shift bool
}

// Bar is a visible task as it should be drawn right now, tentative drag
// changes included.
type Bar struct {
	domain.TimelineTask
	Row      int
	Rect     Rect
	Selected bool
}

type dragState struct {
	kind     DragKind
	originX  float64
	original []domain.TimelineTask
	singleID string
}

type selectionBox struct {
	startX, startY, curX, curY float64
}

// Options configure a Controller.
type Options struct {
	WorkDays        calendar.WorkDays
	RespectWorkDays bool
	ShowCompleted   bool
	Width           float64
	Today           time.Time
	Logger          *slog.Logger
}

// Controller runs the pointer gestures of the timeline. It holds the roadmap
// it was last given but never changes it: finished gestures hand a whole new
// roadmap to onUpdate, and the caller passes the committed result back
// through SetRoadmap.
type Controller struct {
	tasks    []domain.TimelineTask
	onUpdate func(domain.Roadmap)
	opts     Options
	log      *slog.Logger

	selected  []string
	drag      *dragState
	box       *selectionBox
	tentative map[string]domain.TimelineTask
}

func NewController(r domain.Roadmap, onUpdate func(domain.Roadmap), opts Options) *Controller {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	c := &Controller{onUpdate: onUpdate, opts: opts, log: log}
	c.SetRoadmap(r)
	return c
}

// SetRoadmap replaces the displayed roadmap. Selected ids that no longer
// exist are dropped. A gesture in progress is abandoned.
func (c *Controller) SetRoadmap(r domain.Roadmap) {
	c.tasks = domain.ToTimeline(r)
	c.drag = nil
	c.box = nil
	c.tentative = nil
	c.selected = slices.DeleteFunc(c.selected, func(id string) bool { return !c.has(id) })
}

// Tasks returns every timeline task, hidden ones included.
func (c *Controller) Tasks() []domain.TimelineTask { return slices.Clone(c.tasks) }

func (c *Controller) SetWidth(width float64) { c.opts.Width = width }

func (c *Controller) SetRespectWorkDays(on bool) { c.opts.RespectWorkDays = on }

func (c *Controller) RespectWorkDays() bool { return c.opts.RespectWorkDays }

// SetShowCompleted shows or hides completed tasks. Hidden tasks leave the
// selection and give up their rows.
func (c *Controller) SetShowCompleted(on bool) {
	c.opts.ShowCompleted = on
	c.selected = slices.DeleteFunc(c.selected, func(id string) bool { return !c.visible(id) })
}

func (c *Controller) ShowCompleted() bool { return c.opts.ShowCompleted }

// Geometry is computed from every committed task, hidden or not.
func (c *Controller) Geometry() Geometry {
	return NewGeometry(c.tasks, c.opts.Width, c.opts.Today)
}

// Ticks are the header day columns.
func (c *Controller) Ticks() []Tick { return c.Geometry().Ticks(c.opts.WorkDays) }

// Selected returns the selected ids in selection order.
func (c *Controller) Selected() []string { return slices.Clone(c.selected) }

// Select replaces the selection with the visible tasks among ids.
func (c *Controller) Select(ids ...string) {
	c.selected = c.selected[:0]
	for _, id := range ids {
		if c.visible(id) && !slices.Contains(c.selected, id) {
			c.selected = append(c.selected, id)
		}
	}
}

// Dragging reports whether a drag is in progress.
func (c *Controller) Dragging() bool { return c.drag != nil }

// SelectionBox returns the rubber band while one is being drawn.
func (c *Controller) SelectionBox() (Rect, bool) {
	if c.box == nil {
		return Rect{}, false
	}
	return RectFromPoints(c.box.startX, c.box.startY, c.box.curX, c.box.curY), true
}

// VisibleTasks returns the dated committed tasks that are shown, in row
// order, with Track numbering the rows.
func (c *Controller) VisibleTasks() []domain.TimelineTask {
	out := make([]domain.TimelineTask, 0, len(c.tasks))
	for _, t := range c.tasks {
		if !t.Dated() || (t.Completed && !c.opts.ShowCompleted) {
			continue
		}
		t.Track = len(out) + 1
		out = append(out, t)
	}
	return out
}

// Bars returns what to draw: every visible task on its row, with tentative
// drag changes applied.
func (c *Controller) Bars() []Bar {
	g := c.Geometry()
	visible := c.VisibleTasks()
	out := make([]Bar, 0, len(visible))
	for row, t := range visible {
		if upd, ok := c.tentative[t.ID]; ok {
			upd.Track = t.Track
			t = upd
		}
		rect, ok := g.TaskRect(t, row)
		if !ok {
			continue
		}
		out = append(out, Bar{TimelineTask: t, Row: row, Rect: rect, Selected: slices.Contains(c.selected, t.ID)})
	}
	return out
}

// HitTest finds the bar under the pointer and which part of it was hit. The
// resize handles straddle the bar edges and win over the body.
func (c *Controller) HitTest(x, y float64) (string, DragKind, bool) {
	g := c.Geometry()
	visible := c.VisibleTasks()
	for row := len(visible) - 1; row >= 0; row-- {
		r, ok := g.TaskRect(visible[row], row)
		if !ok || y < r.Y || y > r.Y+r.H {
			continue
		}
		half := ResizeHandleWidth / 2.0
		switch {
		case x >= r.X+r.W-half && x <= r.X+r.W+half:
			return visible[row].ID, ResizeEnd, true
		case x >= r.X-half && x <= r.X+half:
			return visible[row].ID, ResizeStart, true
		case r.Contains(x, y):
			return visible[row].ID, Move, true
		}
	}
	return "", Move, false
}

// PointerDown starts a drag on a bar, or a rubber band on the background
// below the controls.
func (c *Controller) PointerDown(p Pointer) {
	if id, kind, ok := c.HitTest(p.X, p.Y); ok {
		c.BeginDrag(id, kind, p)
		return
	}
	if p.Y < ControlsHeight+PaddingTop {
		return
	}
	c.selected = c.selected[:0]
	c.box = &selectionBox{startX: p.X, startY: p.Y, curX: p.X, curY: p.Y}
}

// BeginDrag grabs task id. An unselected task becomes the selection, or
// joins it when Shift is held. Every selected task is snapshotted so moves
// are always computed from where the gesture began.
func (c *Controller) BeginDrag(id string, kind DragKind, p Pointer) {
	if !slices.Contains(c.selected, id) {
		if p.Shift {
			c.selected = append(c.selected, id)
		} else {
			c.selected = []string{id}
		}
	}
	original := make([]domain.TimelineTask, 0, len(c.selected))
	for _, t := range c.tasks {
		if slices.Contains(c.selected, t.ID) {
			original = append(original, t)
		}
	}
	c.box = nil
	c.drag = &dragState{kind: kind, originX: p.X, original: original, singleID: id}
	c.tentative = nil
}

// PointerMove grows the rubber band or recomputes the tentative drag.
func (c *Controller) PointerMove(p Pointer) {
	if c.box != nil && c.drag == nil {
		c.box.curX, c.box.curY = p.X, p.Y
		return
	}
	if c.drag == nil {
		return
	}
	g := c.Geometry()
	if g.PixelsPerDay == 0 {
		return
	}
	c.tentative = c.shifted(c.drag, g.DayDelta(p.X-c.drag.originX))
}

// PointerUp finishes the gesture. A rubber band selects every visible bar it
// overlaps. A drag that moved anything is committed.
func (c *Controller) PointerUp(Pointer) {
	if c.box != nil {
		box := RectFromPoints(c.box.startX, c.box.startY, c.box.curX, c.box.curY)
		g := c.Geometry()
		c.selected = c.selected[:0]
		for row, t := range c.VisibleTasks() {
			if r, ok := g.TaskRect(t, row); ok && box.Overlaps(r) {
				c.selected = append(c.selected, t.ID)
			}
		}
		c.box = nil
	}
	if c.drag != nil {
		updates := c.tentative
		c.drag = nil
		c.tentative = nil
		if len(updates) > 0 {
			c.commit(updates)
		}
	}
}

// Cancel drops the gesture in progress without committing.
func (c *Controller) Cancel() {
	c.drag = nil
	c.box = nil
	c.tentative = nil
}

// Nudge shifts the selection by whole days as one finished gesture, the
// keyboard counterpart of a drag. Resizing applies to the first selected
// task only.
func (c *Controller) Nudge(kind DragKind, days int) error {
	if len(c.selected) == 0 {
		return ErrNoSelection
	}
	c.BeginDrag(c.selected[0], kind, Pointer{})
	updates := c.shifted(c.drag, days)
	c.drag = nil
	if len(updates) > 0 && days != 0 {
		c.commit(updates)
	}
	return nil
}

// shifted applies delta days to the drag's snapshot. In working-day mode a
// move keeps each task's working-day length and a resize steps over
// non-working days. Start never passes end.
func (c *Controller) shifted(d *dragState, delta int) map[string]domain.TimelineTask {
	wd := c.opts.WorkDays
	respect := c.opts.RespectWorkDays
	step := func(t time.Time, n int) time.Time {
		if respect {
			return calendar.AddWorkingDays(t, n, wd)
		}
		return calendar.AddDays(t, n)
	}

	out := make(map[string]domain.TimelineTask, len(d.original))
	for _, t := range d.original {
		start, end, ok := bounds(t)
		if !ok {
			continue
		}
		newStart, newEnd := start, end
		switch {
		case d.kind == Move && respect:
			newStart = step(start, delta)
			newEnd = step(newStart, calendar.WorkingDaysDuration(start, end, wd)-1)
		case d.kind == Move:
			newStart = step(start, delta)
			newEnd = step(end, delta)
		case t.ID != d.singleID:
			continue
		case d.kind == ResizeStart:
			newStart = step(start, delta)
			if newStart.After(newEnd) {
				newStart = newEnd
			}
		case d.kind == ResizeEnd:
			newEnd = step(end, delta)
			if newEnd.Before(newStart) {
				newEnd = newStart
			}
		}
		t.Start = calendar.FormatDate(newStart)
		t.End = calendar.FormatDate(newEnd)
		out[t.ID] = t
	}
	return out
}

// ApplyScale stretches or shrinks the selected tasks by percent around the
// earliest selected start. Offsets from that anchor and durations are both
// scaled and rounded, durations to at least one day. The selection is
// cleared afterwards.
func (c *Controller) ApplyScale(percent float64) error {
	if len(c.selected) == 0 {
		return ErrNoSelection
	}
	factor := percent / 100
	if factor < 0 {
		return ErrNegativeScale
	}

	var (
		selected []domain.TimelineTask
		anchor   time.Time
		found    bool
	)
	for _, t := range c.tasks {
		if !slices.Contains(c.selected, t.ID) {
			continue
		}
		start, _, ok := bounds(t)
		if !ok {
			continue
		}
		selected = append(selected, t)
		if !found || start.Before(anchor) {
			anchor = start
			found = true
		}
	}
	if !found {
		return ErrNoSelection
	}

	wd := c.opts.WorkDays
	updates := make(map[string]domain.TimelineTask, len(selected))
	for _, t := range selected {
		start, end, _ := bounds(t)
		var newStart, newEnd time.Time
		if c.opts.RespectWorkDays {
			offset := calendar.WorkingDaysDuration(anchor, start, wd) - 1
			length := calendar.WorkingDaysDuration(start, end, wd)
			newStart = calendar.AddWorkingDays(anchor, roundScaled(offset, factor), wd)
			newEnd = calendar.AddWorkingDays(newStart, max(1, roundScaled(length, factor))-1, wd)
		} else {
			offset := calendar.DaysBetween(anchor, start)
			length := calendar.DaysBetween(start, end) + 1
			newStart = calendar.AddDays(anchor, roundScaled(offset, factor))
			newEnd = calendar.AddDays(newStart, max(1, roundScaled(length, factor))-1)
		}
		t.Start = calendar.FormatDate(newStart)
		t.End = calendar.FormatDate(newEnd)
		updates[t.ID] = t
	}

	c.commit(updates)
	c.selected = c.selected[:0]
	return nil
}

func roundScaled(n int, factor float64) int {
	return int(math.Round(float64(n) * factor))
}

// commit hands the whole roadmap, with updates applied, to onUpdate. Undated
// tasks are handed back as they came in.
func (c *Controller) commit(updates map[string]domain.TimelineTask) {
	dated := make([]domain.TimelineTask, 0, len(c.tasks))
	var undated domain.Roadmap
	for _, t := range c.tasks {
		if !t.Dated() {
			undated = append(undated, t.Task)
			continue
		}
		if upd, ok := updates[t.ID]; ok {
			t = upd
		}
		dated = append(dated, t)
	}
	r, errs := importer.ReconcileTimeline(dated)
	for _, err := range errs {
		c.log.Warn("timeline update", "error", err)
	}
	if c.onUpdate != nil {
		c.onUpdate(append(r, undated...).Sorted())
	}
}

func (c *Controller) has(id string) bool {
	return slices.ContainsFunc(c.tasks, func(t domain.TimelineTask) bool { return t.ID == id })
}

func (c *Controller) visible(id string) bool {
	return slices.ContainsFunc(c.tasks, func(t domain.TimelineTask) bool {
		return t.ID == id && t.Dated() && (c.opts.ShowCompleted || !t.Completed)
	})
}
