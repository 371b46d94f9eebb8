package formatter

import (
	"testing"

	"github.com/alexanderramin/roadmap/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestRenderCompactBar(t *testing.T) {
	tests := []struct {
		name  string
		pct   float64
		width int
		dim   bool
	}{
		{"0% normal", 0.0, 10, false},
		{"50% normal", 0.5, 10, false},
		{"100% normal", 1.0, 10, false},
		{"50% dimmed", 0.5, 10, true},
		{"over 100% clamps", 1.5, 10, false},
		{"negative clamps", -0.5, 10, false},
		{"tiny width clamps to 2", 0.5, 1, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RenderCompactBar(tt.pct, tt.width, tt.dim)
			assert.NotEmpty(t, got)
			assert.NotContains(t, got, "[")
			assert.NotContains(t, got, "%")
		})
	}
}

func TestRenderCompactBarBlocks(t *testing.T) {
	bar0 := RenderCompactBar(0.0, 4, true)
	assert.Contains(t, bar0, emptyBlock)
	assert.NotContains(t, bar0, filledBlock)

	bar100 := RenderCompactBar(1.0, 4, true)
	assert.Contains(t, bar100, filledBlock)
	assert.NotContains(t, bar100, emptyBlock)
}

func TestRenderProgress_Percentage(t *testing.T) {
	assert.Contains(t, RenderProgress(0.5, 10), " 50%")
	assert.Contains(t, RenderProgress(2, 10), "100%")
}

func TestFormatProgress(t *testing.T) {
	got := FormatProgress(domain.Progress{CompletedTasks: 1, TotalTasks: 4, CompletedHours: 1.5, TotalHours: 6})
	assert.Contains(t, got, "1/4 tasks")
	assert.Contains(t, got, "1.5/6 hours")
	assert.Contains(t, got, " 25%")
}
