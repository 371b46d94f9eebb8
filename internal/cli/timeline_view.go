package cli

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/alexanderramin/roadmap/internal/calendar"
	"github.com/alexanderramin/roadmap/internal/cli/formatter"
	"github.com/alexanderramin/roadmap/internal/domain"
	"github.com/alexanderramin/roadmap/internal/export"
	"github.com/alexanderramin/roadmap/internal/service"
	"github.com/alexanderramin/roadmap/internal/timeline"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Terminal layout: the label column width in cells and the line of the
// first task row.
const (
	labelCols = 18
	rowTop    = 4
)

// planLoadedMsg carries the plan read when the timeline opens.
type planLoadedMsg struct {
	view *service.PlanView
	err  error
}

// roadmapSavedMsg reports a finished edit and the stored roadmap.
type roadmapSavedMsg struct {
	roadmap domain.Roadmap
	status  string
	err     error
}

type timelineKeys struct {
	Up, Down, Select, Clear     key.Binding
	Left, Right                 key.Binding
	ShrinkEnd, GrowEnd          key.Binding
	EarlierStart, LaterStart    key.Binding
	ScaleUp, ScaleDown          key.Binding
	Toggle, WorkDays, Completed key.Binding
	Undo, Redo, Quit            key.Binding
}

func defaultTimelineKeys() timelineKeys {
	return timelineKeys{
		Up:           key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:         key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Select:       key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "select")),
		Clear:        key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "clear")),
		Left:         key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "earlier")),
		Right:        key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "later")),
		ShrinkEnd:    key.NewBinding(key.WithKeys("H"), key.WithHelp("H", "end -1")),
		GrowEnd:      key.NewBinding(key.WithKeys("L"), key.WithHelp("L", "end +1")),
		EarlierStart: key.NewBinding(key.WithKeys("["), key.WithHelp("[", "start -1")),
		LaterStart:   key.NewBinding(key.WithKeys("]"), key.WithHelp("]", "start +1")),
		ScaleUp:      key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+", "stretch")),
		ScaleDown:    key.NewBinding(key.WithKeys("-"), key.WithHelp("-", "shrink")),
		Toggle:       key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "done")),
		WorkDays:     key.NewBinding(key.WithKeys("w"), key.WithHelp("w", "workdays")),
		Completed:    key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "completed")),
		Undo:         key.NewBinding(key.WithKeys("u"), key.WithHelp("u", "undo")),
		Redo:         key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "redo")),
		Quit:         key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k timelineKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.Select, k.Left, k.Right, k.GrowEnd, k.EarlierStart, k.ScaleUp, k.Toggle, k.WorkDays, k.Completed, k.Undo, k.Redo, k.Quit}
}

// timelineModel draws the roadmap one cell per day. Keys edit through the
// plan service; mouse drags run through the timeline controller and are
// saved as a whole roadmap when released.
type timelineModel struct {
	plans  service.PlanService
	plan   string
	labels func(language string) export.Labels
	keys   timelineKeys

	ctl      *timeline.Controller
	today    time.Time
	language string
	cursor   int
	width    int
	loading  bool
	status   string
	err      error

	// committed is set by the controller when a drag finishes.
	committed domain.Roadmap
}

func newTimelineModel(app *App, plan string) *timelineModel {
	return &timelineModel{
		plans:   app.Plans,
		plan:    plan,
		labels:  app.labels,
		keys:    defaultTimelineKeys(),
		loading: true,
		today:   app.now(),
		ctl:     timeline.NewController(nil, nil, timeline.Options{Today: app.now()}),
	}
}

func (m *timelineModel) Init() tea.Cmd {
	plans, plan := m.plans, m.plan
	return func() tea.Msg {
		view, err := plans.View(context.Background(), plan)
		return planLoadedMsg{view: view, err: err}
	}
}

func (m *timelineModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case planLoadedMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		settings := msg.view.Plan.Settings
		m.language = settings.Language
		m.ctl = timeline.NewController(msg.view.Roadmap, m.onCommit, timeline.Options{
			WorkDays: settings.WorkDays,
			Width:    timeline.LabelWidth + timeline.DefaultPixelsPerDay*timeline.MinDays,
			Today:    m.today,
		})
		return m, nil

	case roadmapSavedMsg:
		if msg.err != nil {
			m.status = formatter.StyleRed.Render(msg.err.Error())
			return m, nil
		}
		m.ctl.SetRoadmap(msg.roadmap)
		m.clampCursor()
		m.status = msg.status
		return m, nil

	case tea.MouseMsg:
		m.handleMouse(msg)
		return m, m.saveCommitted()

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *timelineModel) onCommit(r domain.Roadmap) { m.committed = r }

func (m *timelineModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	k := m.keys
	switch {
	case key.Matches(msg, k.Quit):
		return m, tea.Quit
	case m.loading || m.err != nil:
		return m, nil
	case key.Matches(msg, k.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, k.Down):
		if m.cursor < len(m.ctl.VisibleTasks())-1 {
			m.cursor++
		}
	case key.Matches(msg, k.Select):
		if id, ok := m.cursorID(); ok {
			sel := m.ctl.Selected()
			if i := slices.Index(sel, id); i >= 0 {
				sel = slices.Delete(sel, i, i+1)
			} else {
				sel = append(sel, id)
			}
			m.ctl.Select(sel...)
		}
	case key.Matches(msg, k.Clear):
		m.ctl.Cancel()
		m.ctl.Select()
	case key.Matches(msg, k.Left):
		return m, m.shift(timeline.Move, -1, m.targets())
	case key.Matches(msg, k.Right):
		return m, m.shift(timeline.Move, 1, m.targets())
	case key.Matches(msg, k.ShrinkEnd):
		return m, m.shift(timeline.ResizeEnd, -1, m.cursorOnly())
	case key.Matches(msg, k.GrowEnd):
		return m, m.shift(timeline.ResizeEnd, 1, m.cursorOnly())
	case key.Matches(msg, k.EarlierStart):
		return m, m.shift(timeline.ResizeStart, -1, m.cursorOnly())
	case key.Matches(msg, k.LaterStart):
		return m, m.shift(timeline.ResizeStart, 1, m.cursorOnly())
	case key.Matches(msg, k.ScaleUp):
		return m, m.scale(110)
	case key.Matches(msg, k.ScaleDown):
		return m, m.scale(90)
	case key.Matches(msg, k.Toggle):
		return m, m.toggle()
	case key.Matches(msg, k.WorkDays):
		m.ctl.SetRespectWorkDays(!m.ctl.RespectWorkDays())
	case key.Matches(msg, k.Completed):
		m.ctl.SetShowCompleted(!m.ctl.ShowCompleted())
		m.clampCursor()
	case key.Matches(msg, k.Undo):
		return m, m.history(m.plans.Undo, "undone")
	case key.Matches(msg, k.Redo):
		return m, m.history(m.plans.Redo, "redone")
	}
	return m, nil
}

// handleMouse maps terminal cells onto the controller's drawing: the middle
// of the day column and of the bar on the row.
func (m *timelineModel) handleMouse(msg tea.MouseMsg) {
	if m.loading || m.err != nil {
		return
	}
	p := m.pointerAt(msg.X, msg.Y, msg.Shift)
	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button == tea.MouseButtonLeft {
			m.ctl.PointerDown(p)
		}
	case tea.MouseActionMotion:
		m.ctl.PointerMove(p)
	case tea.MouseActionRelease:
		m.ctl.PointerUp(p)
	}
}

func (m *timelineModel) pointerAt(col, line int, shift bool) timeline.Pointer {
	g := m.ctl.Geometry()
	x := timeline.LabelWidth + (float64(col-labelCols)+0.5)*g.PixelsPerDay
	y := 0.0
	if row := line - rowTop; row >= 0 {
		y = timeline.RowY(row) + timeline.BarHeight/2
	}
	return timeline.Pointer{X: x, Y: y, Shift: shift}
}

// saveCommitted stores a roadmap a finished drag produced.
func (m *timelineModel) saveCommitted() tea.Cmd {
	if m.committed == nil {
		return nil
	}
	r := m.committed
	m.committed = nil
	plans, plan := m.plans, m.plan
	return func() tea.Msg {
		data, err := export.JSON(r)
		if err != nil {
			return roadmapSavedMsg{err: err}
		}
		res, err := plans.UpdateRoadmap(context.Background(), plan, data)
		if err != nil {
			return roadmapSavedMsg{err: err}
		}
		return roadmapSavedMsg{roadmap: res.Roadmap, status: "moved"}
	}
}

func (m *timelineModel) cursorID() (string, bool) {
	visible := m.ctl.VisibleTasks()
	if m.cursor < 0 || m.cursor >= len(visible) {
		return "", false
	}
	return visible[m.cursor].ID, true
}

// targets are the selected tasks, or the task under the cursor.
func (m *timelineModel) targets() []string {
	if sel := m.ctl.Selected(); len(sel) > 0 {
		return sel
	}
	return m.cursorOnly()
}

func (m *timelineModel) cursorOnly() []string {
	if id, ok := m.cursorID(); ok {
		return []string{id}
	}
	return nil
}

func (m *timelineModel) clampCursor() {
	m.cursor = min(m.cursor, max(0, len(m.ctl.VisibleTasks())-1))
}

func (m *timelineModel) shift(kind timeline.DragKind, days int, ids []string) tea.Cmd {
	if len(ids) == 0 {
		return nil
	}
	plans, plan := m.plans, m.plan
	shift := service.TimelineShift{IDs: ids, Kind: kind, Days: days, RespectWorkDays: m.ctl.RespectWorkDays()}
	return func() tea.Msg {
		r, err := plans.ShiftTasks(context.Background(), plan, shift)
		return roadmapSavedMsg{roadmap: r, status: fmt.Sprintf("%s %+d", kind, days), err: err}
	}
}

func (m *timelineModel) scale(percent float64) tea.Cmd {
	ids := m.targets()
	if len(ids) == 0 {
		return nil
	}
	plans, plan := m.plans, m.plan
	scale := service.TimelineScale{IDs: ids, Percent: percent, RespectWorkDays: m.ctl.RespectWorkDays()}
	return func() tea.Msg {
		r, err := plans.ScaleTasks(context.Background(), plan, scale)
		return roadmapSavedMsg{roadmap: r, status: fmt.Sprintf("scaled %.0f%%", percent), err: err}
	}
}

func (m *timelineModel) toggle() tea.Cmd {
	id, ok := m.cursorID()
	if !ok {
		return nil
	}
	plans, plan := m.plans, m.plan
	return func() tea.Msg {
		ctx := context.Background()
		if _, err := plans.ToggleTask(ctx, plan, id); err != nil {
			return roadmapSavedMsg{err: err}
		}
		view, err := plans.View(ctx, plan)
		if err != nil {
			return roadmapSavedMsg{err: err}
		}
		return roadmapSavedMsg{roadmap: view.Roadmap, status: "toggled"}
	}
}

func (m *timelineModel) history(move func(context.Context, string) (*service.PlanView, error), status string) tea.Cmd {
	plan := m.plan
	return func() tea.Msg {
		view, err := move(context.Background(), plan)
		if err != nil {
			return roadmapSavedMsg{err: err}
		}
		return roadmapSavedMsg{roadmap: view.Roadmap, status: status}
	}
}

func (m *timelineModel) View() string {
	if m.loading {
		return "\n  " + formatter.Dim("Loading roadmap...")
	}
	if m.err != nil {
		return "\n  " + formatter.StyleRed.Render("Error: "+m.err.Error())
	}

	g := m.ctl.Geometry()
	days := g.TotalDays
	if m.width > labelCols {
		days = min(days, m.width-labelCols)
	}
	ticks := m.ctl.Ticks()[:days]

	var b strings.Builder
	b.WriteString(formatter.StyleHeader.Render(m.plan) + "  " + m.statusLine() + "\n")
	b.WriteString(formatter.Dim(m.labels(m.language).Task) + "\n")

	var initials, numbers strings.Builder
	for _, t := range ticks {
		style := formatter.StyleFg
		if t.NonWorking {
			style = formatter.StyleDim
		}
		initials.WriteString(style.Render(t.Initial))
		numbers.WriteString(style.Render(fmt.Sprintf("%d", t.Day%10)))
	}
	pad := strings.Repeat(" ", labelCols)
	b.WriteString(pad + initials.String() + "\n")
	b.WriteString(pad + numbers.String() + "\n")

	bars := m.ctl.Bars()
	if len(bars) == 0 {
		b.WriteString(formatter.Dim("  No tasks to show.") + "\n")
	}
	for _, bar := range bars {
		b.WriteString(m.renderRow(g, ticks, bar) + "\n")
	}

	help := make([]string, 0, len(m.keys.ShortHelp()))
	for _, kb := range m.keys.ShortHelp() {
		help = append(help, kb.Help().Key+" "+kb.Help().Desc)
	}
	b.WriteString("\n" + formatter.Dim(strings.Join(help, " · ")) + "\n")
	return b.String()
}

func (m *timelineModel) statusLine() string {
	parts := []string{fmt.Sprintf("%d selected", len(m.ctl.Selected()))}
	if m.ctl.RespectWorkDays() {
		parts = append(parts, "workdays")
	}
	if m.ctl.ShowCompleted() {
		parts = append(parts, "completed shown")
	}
	if m.status != "" {
		parts = append(parts, m.status)
	}
	return formatter.Dim(strings.Join(parts, " · "))
}

func (m *timelineModel) renderRow(g timeline.Geometry, ticks []timeline.Tick, bar timeline.Bar) string {
	cursor := "  "
	if bar.Row == m.cursor {
		cursor = formatter.StyleGreen.Render("▸ ")
	}
	label := formatter.Truncate(bar.Task.Task, labelCols-3)
	label += strings.Repeat(" ", labelCols-2-lipgloss.Width(label))

	first, last := -1, -1
	if start, err := calendar.ParseDate(bar.Start); err == nil {
		first = calendar.DaysBetween(g.Start, start)
	}
	if end, err := calendar.ParseDate(bar.End); err == nil {
		last = calendar.DaysBetween(g.Start, end)
	}

	fill := "█"
	switch {
	case bar.Selected:
		fill = "▓"
	case bar.Completed:
		fill = "░"
	}
	style := formatter.TrackStyle(bar.Row)

	var cells strings.Builder
	for i, t := range ticks {
		switch {
		case i >= first && i <= last:
			cells.WriteString(style.Render(fill))
		case t.NonWorking:
			cells.WriteString(formatter.Dim("·"))
		default:
			cells.WriteString(" ")
		}
	}
	return cursor + label + cells.String()
}
