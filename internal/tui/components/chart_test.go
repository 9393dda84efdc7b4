package components

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
)

func TestSparklineScalesToPeak(t *testing.T) {
	out := Sparkline([]int64{0, 50, 100}, "#ffffff")
	assert.Contains(t, out, "▁▅█")
	assert.Empty(t, Sparkline(nil, "#ffffff"))
}

func TestBarChartShape(t *testing.T) {
	values := []int64{10, 40, 25, 0, 80}
	labels := []string{"Mon", "Tue", "Wed", "Thu", "Fri"}
	out := BarChart(values, labels, "#ffffff", 60, 8)
	lines := strings.Split(out, "\n")

	// rows, the x axis, then the label line
	assert.GreaterOrEqual(t, len(lines), 8)
	assert.Contains(t, lines[len(lines)-2], "└")
	assert.Contains(t, lines[len(lines)-1], "Mon")
	for _, line := range lines {
		assert.LessOrEqual(t, lipgloss.Width(line), 60)
	}
}

func TestBarChartSamplesWhenCrowded(t *testing.T) {
	values := make([]int64, 200)
	for i := range values {
		values[i] = int64(i)
	}
	out := BarChart(values, nil, "#ffffff", 40, 6)
	for _, line := range strings.Split(out, "\n") {
		assert.LessOrEqual(t, lipgloss.Width(line), 40)
	}
}

func TestBarChartFallsBackWhenTiny(t *testing.T) {
	out := BarChart([]int64{1, 2}, nil, "#ffffff", 10, 2)
	assert.NotContains(t, out, "\n")
}

func TestAxisLabel(t *testing.T) {
	assert.Equal(t, "0", AxisLabel(0))
	assert.Equal(t, "20", AxisLabel(20))
	assert.Equal(t, "1.5k", AxisLabel(1500))
	assert.Equal(t, "20M", AxisLabel(20e6))
	assert.Equal(t, "3B", AxisLabel(3e9))
}

func TestTabAtMatchesRenderedWidths(t *testing.T) {
	for _, width := range []int{80, 200} {
		compact := compactTabs(width)
		pos := 1
		for i := range 7 {
			w := TabWidth(i, compact)
			if got := TabAt(pos+w/2, width); got != i {
				t.Fatalf("width=%d x=%d -> tab %d, want %d", width, pos+w/2, got, i)
			}
			pos += w
		}
		assert.Equal(t, -1, TabAt(0, width))
		assert.Equal(t, -1, TabAt(pos, width))
		assert.Equal(t, width, lipgloss.Width(RenderTabBar(0, width)))
	}
	assert.True(t, compactTabs(80))
	assert.False(t, compactTabs(200))
}

func TestStatusBarDropsOverflowingStatus(t *testing.T) {
	bar := RenderStatusBar(30, "[q]uit", "Loaded 12 sessions in 0.4s", false)
	assert.NotContains(t, bar, "Loaded")
	bar = RenderStatusBar(80, "[q]uit", "ok", false)
	assert.Equal(t, 80, lipgloss.Width(bar))
}
