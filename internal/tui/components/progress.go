package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"

	"github.com/GauravRatnawat/claudetop/internal/tui/theme"
)

func clampPct(pct float64) float64 {
	return min(max(pct, 0), 1)
}

// ProgressBar renders the loading bar with a trailing percentage.
func ProgressBar(pct float64, width int) string {
	t := theme.Active
	pct = clampPct(pct)
	filled := int(pct * float64(width))

	bar := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface)
	empty := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	label := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true)

	return bar.Render(strings.Repeat("█", filled)) +
		empty.Render(strings.Repeat("░", width-filled)) +
		label.Render(fmt.Sprintf(" %3.0f%%", pct*100))
}

// ColorForShare grades a share of the total: the larger the slice, the
// warmer the color.
func ColorForShare(pct float64) lipgloss.Color {
	t := theme.Active
	switch {
	case pct >= 0.75:
		return t.Danger
	case pct >= 0.5:
		return t.Warning
	case pct >= 0.25:
		return t.Cache
	default:
		return t.Cost
	}
}

// ShareBar is a solid bar for a fraction of a whole, such as a model's
// share of tokens. color overrides the graded color when non-empty.
func ShareBar(pct float64, width int, color lipgloss.Color) string {
	pct = clampPct(pct)
	if color == "" {
		color = ColorForShare(pct)
	}
	bar := progress.New(
		progress.WithSolidFill(string(color)),
		progress.WithWidth(max(width, 1)),
		progress.WithoutPercentage(),
	)
	bar.EmptyColor = string(theme.Active.Border)
	return bar.ViewAs(pct)
}
