package components

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/GauravRatnawat/claudetop/internal/tui/theme"
)

var (
	sparkRunes = []rune("▁▂▃▄▅▆▇█")
	// barRunes index eighths of a cell; 0 is empty.
	barRunes = []rune(" ▁▂▃▄▅▆▇█")
)

// Sparkline renders one block per value, scaled to the largest.
func Sparkline(values []int64, color lipgloss.Color) string {
	if len(values) == 0 {
		return ""
	}
	peak := max(values[0], 1)
	for _, v := range values[1:] {
		peak = max(peak, v)
	}

	var b strings.Builder
	b.Grow(len(values) * 3)
	top := len(sparkRunes) - 1
	for _, v := range values {
		i := int(math.Round(float64(max(v, 0)) / float64(peak) * float64(top)))
		b.WriteRune(sparkRunes[min(i, top)])
	}
	return lipgloss.NewStyle().Foreground(color).Background(theme.Active.Surface).Render(b.String())
}

// BarChart draws a vertical bar chart with a labelled y axis. Labels, when
// given, must match values one to one; they are thinned to fit. Charts too
// small to draw fall back to a sparkline.
func BarChart(values []int64, labels []string, color lipgloss.Color, width, height int) string {
	if len(values) == 0 {
		return ""
	}
	if width < 15 || height < 3 {
		return Sparkline(values, color)
	}
	t := theme.Active

	peak := int64(1)
	for _, v := range values {
		peak = max(peak, v)
	}
	step := tickStep(float64(peak))
	for math.Ceil(float64(peak)/step) > float64(max(height/2, 2)) {
		step *= 2
	}
	ticks := max(int(math.Ceil(float64(peak)/step)), 1)
	ceiling := step * float64(ticks)
	rowsPerTick := max(height/ticks, 2)
	rows := rowsPerTick * ticks

	axisW := max(len(AxisLabel(ceiling))+1, 4)
	plotW := max(width-axisW-1, 5)

	n := len(values)
	barW := plotW
	if n > 1 {
		barW = (plotW - (n - 1)) / n
	}
	if barW < 1 {
		// Too many points: sample evenly so each bar is one cell.
		keep := max((plotW+1)/2, 2)
		values, labels = sample(values, labels, keep)
		n = keep
		barW = 1
	}
	barW = min(barW, 6)
	gap := 1
	if n == 1 {
		gap = 0
	}
	axisLen := n*barW + (n-1)*gap

	axis := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	bar := lipgloss.NewStyle().Foreground(color).Background(t.Surface)
	space := lipgloss.NewStyle().Background(t.Surface)

	var b strings.Builder
	for row := rows; row >= 1; row-- {
		hi := ceiling * float64(row) / float64(rows)
		lo := ceiling * float64(row-1) / float64(rows)

		label := ""
		if row%rowsPerTick == 0 {
			label = AxisLabel(step * float64(row/rowsPerTick))
		}
		b.WriteString(axis.Render(fmt.Sprintf("%*s│", axisW, label)))

		for i, v := range values {
			if i > 0 {
				b.WriteString(space.Render(strings.Repeat(" ", gap)))
			}
			fv := float64(v)
			switch {
			case fv >= hi:
				b.WriteString(bar.Render(strings.Repeat("█", barW)))
			case fv > lo:
				eighths := min(max(int((fv-lo)/(hi-lo)*8), 1), 8)
				b.WriteString(bar.Render(strings.Repeat(string(barRunes[eighths]), barW)))
			default:
				b.WriteString(space.Render(strings.Repeat(" ", barW)))
			}
		}
		b.WriteByte('\n')
	}
	b.WriteString(axis.Render(fmt.Sprintf("%*s└%s", axisW, "0", strings.Repeat("─", axisLen))))

	if len(labels) == n {
		b.WriteByte('\n')
		b.WriteString(space.Render(strings.Repeat(" ", axisW+1)))
		b.WriteString(axis.Render(xLabels(labels, barW+gap, axisLen)))
	}
	return b.String()
}

func sample(values []int64, labels []string, keep int) ([]int64, []string) {
	n := len(values)
	outV := make([]int64, keep)
	var outL []string
	if len(labels) == n {
		outL = make([]string, keep)
	}
	for i := range keep {
		src := i * (n - 1) / (keep - 1)
		outV[i] = values[src]
		if outL != nil {
			outL[i] = labels[src]
		}
	}
	return outV, outL
}

// xLabels places labels under their bars, skipping any that would overlap
// the previous one.
func xLabels(labels []string, stride, axisLen int) string {
	line := []byte(strings.Repeat(" ", axisLen))
	next := 0
	for i, lbl := range labels {
		pos := i * stride
		if pos < next || pos+len(lbl) > axisLen {
			continue
		}
		copy(line[pos:], lbl)
		next = pos + len(lbl) + 1
	}
	return strings.TrimRight(string(line), " ")
}

// tickStep picks a 1/2/5 step giving about five ticks up to peak.
func tickStep(peak float64) float64 {
	if peak <= 0 {
		return 1
	}
	rough := peak / 5
	base := math.Pow(10, math.Floor(math.Log10(rough)))
	switch f := rough / base; {
	case f < 1.5:
		return max(base, 1)
	case f < 3.5:
		return max(2*base, 1)
	default:
		return max(5*base, 1)
	}
}

// AxisLabel formats an axis value compactly: 1.5k, 20M, 3B.
func AxisLabel(v float64) string {
	unit := ""
	for _, u := range []struct {
		div    float64
		suffix string
	}{{1e9, "B"}, {1e6, "M"}, {1e3, "k"}} {
		if v >= u.div {
			v /= u.div
			unit = u.suffix
			break
		}
	}
	if v == math.Trunc(v) {
		return fmt.Sprintf("%.0f%s", v, unit)
	}
	return fmt.Sprintf("%.1f%s", v, unit)
}
