package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/GauravRatnawat/claudetop/internal/tui/theme"
)

// RenderStatusBar renders the bottom bar: key hints on the left, status on
// the right. A right side that would collide with the hints is dropped.
func RenderStatusBar(width int, hints, status string, isError bool) string {
	t := theme.Active

	hintStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	statusStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	if isError {
		statusStyle = statusStyle.Foreground(t.Danger).Bold(true)
	}

	left := " " + hints
	right := ""
	if status != "" {
		right = status + " "
	}
	gap := width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		right = ""
		gap = max(0, width-lipgloss.Width(left))
	}

	return hintStyle.Render(left) +
		hintStyle.Render(strings.Repeat(" ", gap)) +
		statusStyle.Render(right)
}
