// Package timeline is the visual roadmap editor without a rendering surface:
// date and pixel mapping, bar geometry, and a pointer-gesture controller for
// dragging, resizing, rubber-band selection and group rescaling.
package timeline

import (
	"math"
	"time"

	"github.com/alexanderramin/roadmap/internal/calendar"
	"github.com/alexanderramin/roadmap/internal/domain"
)

// Layout constants in pixels, except MinDays and PadDays.
const (
	TrackHeight         = 40
	BarHeight           = 20
	LabelWidth          = 100
	ResizeHandleWidth   = 8
	HeaderHeight        = 50
	PaddingTop          = 10
	ControlsHeight      = 40
	barOffset           = 10
	DefaultPixelsPerDay = 20
	MinDays             = 31
	PadDays             = 2
)

// Rect is an axis-aligned rectangle.
type Rect struct {
	X, Y, W, H float64
}

// Overlaps reports a strict overlap. Rectangles that only touch do not overlap.
func (r Rect) Overlaps(o Rect) bool {
	return r.X < o.X+o.W && o.X < r.X+r.W && r.Y < o.Y+o.H && o.Y < r.Y+r.H
}

// Contains reports whether the point lies inside r, edges included.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x <= r.X+r.W && y >= r.Y && y <= r.Y+r.H
}

// RectFromPoints spans two corners given in any order.
func RectFromPoints(x1, y1, x2, y2 float64) Rect {
	return Rect{X: math.Min(x1, x2), Y: math.Min(y1, y2), W: math.Abs(x2 - x1), H: math.Abs(y2 - y1)}
}

// Geometry maps dates onto the horizontal axis. Start is the first visible
// day and TotalDays the visible span.
type Geometry struct {
	Start        time.Time
	TotalDays    int
	PixelsPerDay float64
}

// NewGeometry fits the window to tasks: PadDays before the earliest start to
// PadDays after the latest end, but never shorter than MinDays. The chart
// area is width minus the label column. Without dated tasks or without a
// width the window starts today at DefaultPixelsPerDay.
func NewGeometry(tasks []domain.TimelineTask, width float64, today time.Time) Geometry {
	var lo, hi time.Time
	found := false
	for _, t := range tasks {
		start, end, ok := bounds(t)
		if !ok {
			continue
		}
		if !found || start.Before(lo) {
			lo = start
		}
		if !found || end.After(hi) {
			hi = end
		}
		found = true
	}
	if !found || width <= 0 {
		return Geometry{Start: calendar.Noon(today), TotalDays: MinDays, PixelsPerDay: DefaultPixelsPerDay}
	}

	start := calendar.AddDays(lo, -PadDays)
	end := calendar.AddDays(hi, PadDays)
	if minEnd := calendar.AddDays(start, MinDays); minEnd.After(end) {
		end = minEnd
	}
	total := max(1, calendar.DaysBetween(start, end))

	ppd := 0.0
	if avail := width - LabelWidth; avail > 0 {
		ppd = avail / float64(total)
	}
	return Geometry{Start: start, TotalDays: total, PixelsPerDay: ppd}
}

// DateToX is the offset of the day's left edge from the start of the chart
// area.
func (g Geometry) DateToX(d time.Time) float64 {
	return float64(calendar.DaysBetween(g.Start, d)) * g.PixelsPerDay
}

// XToDate is the day under an absolute x, label column included.
func (g Geometry) XToDate(x float64) time.Time {
	if g.PixelsPerDay <= 0 {
		return g.Start
	}
	return calendar.AddDays(g.Start, int(math.Floor((x-LabelWidth)/g.PixelsPerDay)))
}

// DayDelta converts a horizontal pointer movement into whole days.
func (g Geometry) DayDelta(dx float64) int {
	if g.PixelsPerDay <= 0 {
		return 0
	}
	return int(math.Round(dx / g.PixelsPerDay))
}

// TaskRect is the bar of t drawn on the given row. Bars are at least half a
// day wide.
func (g Geometry) TaskRect(t domain.TimelineTask, row int) (Rect, bool) {
	start, end, ok := bounds(t)
	if !ok {
		return Rect{}, false
	}
	x := g.DateToX(start)
	w := math.Max(g.PixelsPerDay/2, g.DateToX(end)-x+g.PixelsPerDay)
	return Rect{X: x + LabelWidth, Y: RowY(row), W: w, H: BarHeight}, true
}

// RowY is the top of the bar on the given row.
func RowY(row int) float64 {
	return float64(row*TrackHeight + barOffset + HeaderHeight + PaddingTop + ControlsHeight)
}

// Height is the drawing height for the given number of rows.
func Height(rows int) float64 {
	return float64(TrackHeight*rows + HeaderHeight + PaddingTop + ControlsHeight)
}

// Tick is one day column of the header.
type Tick struct {
	Date       time.Time
	X          float64
	Initial    string
	Day        int
	NonWorking bool
}

var weekdayInitials = [7]string{"S", "M", "T", "W", "T", "F", "S"}

// Ticks lists one tick per visible day, flagging days outside wd.
func (g Geometry) Ticks(wd calendar.WorkDays) []Tick {
	out := make([]Tick, 0, g.TotalDays)
	for i := range g.TotalDays {
		d := calendar.AddDays(g.Start, i)
		out = append(out, Tick{
			Date:       d,
			X:          g.DateToX(d) + LabelWidth,
			Initial:    weekdayInitials[d.Weekday()],
			Day:        d.Day(),
			NonWorking: !wd.Contains(d.Weekday()),
		})
	}
	return out
}

func bounds(t domain.TimelineTask) (start, end time.Time, ok bool) {
	if t.Start == "" || t.End == "" {
		return time.Time{}, time.Time{}, false
	}
	start, err := calendar.ParseDate(t.Start)
	if err != nil {
		return time.Time{}, time.Time{}, false
	}
	end, err = calendar.ParseDate(t.End)
	if err != nil {
		return time.Time{}, time.Time{}, false
	}
	return start, end, true
}
