package formatter

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/roadmap/internal/domain"
)

const (
	filledBlock = "█"
	emptyBlock  = "░"

	progressBarWidth = 20
)

// RenderProgress renders a progress bar like [████░░░░] 45%.
// The bar is colored based on percentage: green >66%, yellow 33-66%, red <33%.
func RenderProgress(pct float64, width int) string {
	return fmt.Sprintf("[%s] %3.0f%%", RenderCompactBar(pct, width, false), clampRatio(pct)*100)
}

// RenderCompactBar renders just the blocks, without brackets or percentage.
// A dimmed bar is drawn in the muted color whatever its fill.
func RenderCompactBar(pct float64, width int, dim bool) string {
	pct = clampRatio(pct)
	if width < 2 {
		width = 2
	}

	filled := min(int(pct*float64(width)), width)
	bar := strings.Repeat(filledBlock, filled) + strings.Repeat(emptyBlock, width-filled)

	style := StyleGreen
	switch {
	case dim:
		style = StyleDim
	case pct < 0.33:
		style = StyleRed
	case pct < 0.66:
		style = StyleYellow
	}
	return style.Render(bar)
}

// FormatProgress renders task and hour completion on two lines.
func FormatProgress(p domain.Progress) string {
	return fmt.Sprintf("%s  %s\n%s  %s",
		RenderProgress(p.TaskRatio(), progressBarWidth),
		Dim(fmt.Sprintf("%d/%d tasks", p.CompletedTasks, p.TotalTasks)),
		RenderProgress(p.HourRatio(), progressBarWidth),
		Dim(fmt.Sprintf("%s/%s hours", FormatHours(p.CompletedHours), FormatHours(p.TotalHours))),
	)
}

func clampRatio(pct float64) float64 {
	return max(0, min(pct, 1))
}
