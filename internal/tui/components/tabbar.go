package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/GauravRatnawat/claudetop/internal/nav"
	"github.com/GauravRatnawat/claudetop/internal/tui/theme"
)

// shortNames are used when the full labels do not fit on one row.
var shortNames = [nav.ViewCount]string{
	"Dash", "Daily", "Sessions", "Projects", "Prompts", "Insights", "Analytics",
}

// tabPad is the horizontal padding on each side of a tab label.
const tabPad = 1

func tabLabel(i int, compact bool) string {
	name := nav.View(i).String()
	if compact {
		name = shortNames[i]
	}
	return fmt.Sprintf("%d %s", i+1, name)
}

// TabWidth is the rendered width of tab i including padding.
func TabWidth(i int, compact bool) int {
	return lipgloss.Width(tabLabel(i, compact)) + 2*tabPad
}

// compactTabs reports whether the full labels overflow width.
func compactTabs(width int) bool {
	total := 1 // leading margin
	for i := range nav.ViewCount {
		total += TabWidth(i, false)
	}
	return total > width
}

// RenderTabBar renders the view tabs on one row with active highlighted.
func RenderTabBar(active nav.View, width int) string {
	t := theme.Active
	compact := compactTabs(width)

	activeStyle := lipgloss.NewStyle().
		Foreground(t.AccentBright).
		Background(t.Highlight).
		Bold(true).
		Padding(0, tabPad)
	inactiveStyle := lipgloss.NewStyle().
		Foreground(t.TextMuted).
		Background(t.Surface).
		Padding(0, tabPad)
	barStyle := lipgloss.NewStyle().Background(t.Surface)

	var b strings.Builder
	b.WriteString(barStyle.Render(" "))
	for i := range nav.ViewCount {
		label := tabLabel(i, compact)
		if nav.View(i) == active {
			b.WriteString(activeStyle.Render(label))
		} else {
			b.WriteString(inactiveStyle.Render(label))
		}
	}
	return barStyle.Width(width).Render(b.String())
}

// TabAt returns the view under column x of a tab bar rendered at width,
// or -1 when x is not on a tab.
func TabAt(x, width int) int {
	compact := compactTabs(width)
	pos := 1
	for i := range nav.ViewCount {
		w := TabWidth(i, compact)
		if x >= pos && x < pos+w {
			return i
		}
		pos += w
	}
	return -1
}
