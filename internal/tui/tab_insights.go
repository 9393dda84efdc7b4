package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/GauravRatnawat/claudetop/internal/model"
	"github.com/GauravRatnawat/claudetop/internal/nav"
	"github.com/GauravRatnawat/claudetop/internal/tui/components"
	"github.com/GauravRatnawat/claudetop/internal/tui/theme"
)

func (a App) renderInsights(cw, h int) string {
	insights := a.data.Insights
	if len(insights) == 0 {
		return emptyCard("Insights", "Not enough data yet to generate insights.", cw)
	}
	inner := components.CardInnerWidth(cw)
	sel := a.state.Selection[nav.Insights]

	var lines []string
	selStart, selEnd := 0, 0
	for i, in := range insights {
		if i == sel {
			selStart = len(lines)
		}
		lines = append(lines, insightBlock(in, i == sel, inner)...)
		if i == sel {
			selEnd = len(lines)
		}
		if i < len(insights)-1 {
			lines = append(lines, "")
		}
	}

	// Scroll so the whole selected block stays visible.
	size := max(h-2, 1)
	start := 0
	if len(lines) > size {
		start = min(max(selEnd-size, 0), selStart)
		start = min(start, len(lines)-size)
	}
	end := min(start+size, len(lines))

	warnings := 0
	for _, in := range insights {
		if in.Type == model.InsightWarning {
			warnings++
		}
	}
	title := fmt.Sprintf("Insights  %d", len(insights))
	if warnings > 0 {
		title += fmt.Sprintf("  %d to act on", warnings)
	}
	return components.ContentCard(title, strings.Join(lines[start:end], "\n"), cw)
}

// insightBlock renders one insight: marker and title, the wrapped
// description, then the suggested action.
func insightBlock(in model.Insight, selected bool, w int) []string {
	t := theme.Active
	titleStyle := styled(t.TextPrimary).Bold(true)
	if selected {
		titleStyle = lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Highlight).Bold(true)
	}
	head := insightMarker(in.Type) + styled(t.TextPrimary).Render(" ") + titleStyle.Render(in.Title)

	wrap := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface).
		Width(max(w-2, 10)).PaddingLeft(2)
	out := []string{head}
	out = append(out, strings.Split(wrap.Render(in.Description), "\n")...)
	if in.Action != nil {
		action := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).
			Width(max(w-2, 10)).PaddingLeft(2).Render("→ " + *in.Action)
		out = append(out, strings.Split(action, "\n")...)
	}
	return strings.Split(clipLines(out, w), "\n")
}
