package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/GauravRatnawat/claudetop/internal/cli"
	"github.com/GauravRatnawat/claudetop/internal/model"
	"github.com/GauravRatnawat/claudetop/internal/nav"
	"github.com/GauravRatnawat/claudetop/internal/tui/components"
	"github.com/GauravRatnawat/claudetop/internal/tui/theme"
)

// promptDetailH is the height of the detail card under the list, borders
// included.
const promptDetailH = 8

var promptColumns = []column{
	{title: "#", width: 3, right: true},
	{title: "PROMPT", width: 20},
	{title: "PROJECT", width: 14},
	{title: "DATE", width: 6},
	{title: "TURNS", width: 5, right: true},
	{title: "TOKENS", width: 8, right: true},
	{title: "COST", width: 9, right: true},
}

func (a App) renderPrompts(cw, h int) string {
	list := nav.PromptList(a.data, a.state)
	title := fmt.Sprintf("Most expensive prompts  %d of %d", len(list), len(a.data.TopPrompts))
	if len(list) == 0 {
		msg := "No prompts match."
		if len(a.data.TopPrompts) == 0 {
			msg = "No prompts found."
		}
		return emptyCard(title, msg, cw)
	}

	sel := min(a.state.Selection[nav.Prompts], len(list)-1)
	detail := ""
	listH := h - 3
	if h >= 20 {
		detail = promptDetail(list[sel], cw)
		listH -= lipgloss.Height(detail)
	}

	cols := flexColumns(promptColumns, components.CardInnerWidth(cw), 1)
	start, end := scrollWindow(sel, len(list), max(listH, 1))
	rows := make([]string, 0, end-start)
	for i := start; i < end; i++ {
		p := list[i]
		rows = append(rows, listRow(formatRow([]string{
			strconv.Itoa(i + 1),
			oneLine(p.Prompt),
			model.ProjectShort(p.Project),
			cli.FormatDate(p.Date),
			strconv.Itoa(p.Continuations + 1),
			cli.FormatTokens(p.TotalTokens),
			cli.FormatCost(p.Cost),
		}, cols), i == sel))
	}
	card := components.ContentCard(title, headerRow(cols)+"\n"+strings.Join(rows, "\n"), cw)
	if detail == "" {
		return card
	}
	return lipgloss.JoinVertical(lipgloss.Left, card, detail)
}

// promptDetail shows the full prompt text and what it cost.
func promptDetail(p *model.PromptRecord, cw int) string {
	t := theme.Active
	muted := styled(t.TextMuted)
	w := components.CardInnerWidth(cw)

	meta := muted.Render("model ") + styled(t.ModelColor(p.Model)).Render(cli.ModelShort(p.Model)) +
		muted.Render("  in ") + styled(t.Tokens).Render(cli.FormatTokens(p.InputTokens)) +
		muted.Render("  out ") + styled(t.Tokens).Render(cli.FormatTokens(p.OutputTokens)) +
		muted.Render("  continuations ") + styled(t.Accent).Render(strconv.Itoa(p.Continuations)) +
		muted.Render("  session ") + styled(t.TextDim).Render(shortID(p.SessionID))

	text := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface).Width(w).
		Render(oneLine(p.Prompt))
	lines := strings.Split(text, "\n")
	lines = lines[:min(len(lines), promptDetailH-4)]

	body := []string{meta}
	body = append(body, lines...)
	if tools := topTools(p.ToolCounts, len(p.ToolCounts)); tools != "" {
		body = append(body, muted.Render("tools ")+styled(t.Cache).Render(tools))
	}
	return components.FocusCard("Prompt", clipLines(body, w), cw)
}
