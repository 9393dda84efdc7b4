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

const projectDrawerPrompts = 5

var projectColumns = []column{
	{title: "PROJECT", width: 20},
	{title: "SHARE", width: 12},
	{title: "TOKENS", width: 8, right: true},
	{title: "COST", width: 9, right: true},
	{title: "SESS", width: 5, right: true},
	{title: "QUERIES", width: 7, right: true},
	{title: "LAST", width: 6},
}

func (a App) renderProjects(cw, h int) string {
	t := theme.Active
	projects := a.data.ProjectBreakdown
	if len(projects) == 0 {
		return emptyCard("Projects", "No projects found.", cw)
	}

	inner := components.CardInnerWidth(cw)
	cols := flexColumns(projectColumns, inner, 0)
	sel := a.state.Selection[nav.Projects]
	total := max(a.data.Totals.TotalTokens, 1)

	var lines []string
	selLine := 0
	for i := range projects {
		p := &projects[i]
		if i == sel {
			selLine = len(lines)
		}
		expanded := a.state.ExpandedProject == p.Project
		marker := "▸ "
		if expanded {
			marker = "▾ "
		}
		share := float64(p.TotalTokens) / float64(total)
		name := formatRow([]string{marker + model.ProjectShort(p.Project)}, cols[:1])
		rest := formatRow([]string{
			cli.FormatTokens(p.TotalTokens),
			cli.FormatCost(p.TotalCost),
			strconv.Itoa(p.SessionCount),
			strconv.Itoa(p.QueryCount),
			cli.FormatDate(p.LastSeen),
		}, cols[2:])
		// The share bar keeps its own colors inside a highlighted row.
		bar := components.ShareBar(share, cols[1].width, components.ColorForShare(share))
		lines = append(lines, listRow(name+" ", i == sel)+bar+listRow(" "+rest, i == sel))
		if expanded {
			lines = append(lines, projectDrawer(p, total, inner)...)
		}
	}

	start, end := scrollWindow(selLine, len(lines), max(h-3, 1))
	body := headerRow(cols) + "\n" + strings.Join(lines[start:end], "\n")
	title := fmt.Sprintf("Projects  %d", len(projects))
	if top := a.data.Totals.MostExpensiveProject; top != nil {
		title += "  most expensive " + styled(t.Cost).Render(model.ProjectShort(*top))
	}
	return components.ContentCard(title, body, cw)
}

// projectDrawer is the detail under an expanded project row.
func projectDrawer(p *model.ProjectBucket, total int64, w int) []string {
	t := theme.Active
	muted := styled(t.TextMuted)
	indent := styled(t.TextDim).Render("   │ ")

	out := []string{
		indent + muted.Render("path ") + styled(t.TextPrimary).Render(p.Project),
		indent + muted.Render("first ") + styled(t.Accent).Render(cli.FormatDateFull(p.FirstSeen)) +
			muted.Render("  last ") + styled(t.Accent).Render(cli.FormatDateFull(p.LastSeen)) +
			muted.Render("  avg/session ") + styled(t.Tokens).Render(cli.FormatTokens(p.AvgSessionTokens)) +
			muted.Render("  share ") + styled(t.Tokens).Render(fmt.Sprintf("%.1f%%", float64(p.TotalTokens)/float64(total)*100)),
	}
	projTotal := max(p.TotalTokens, 1)
	for _, m := range p.ModelBreakdown {
		share := float64(m.TotalTokens) / float64(projTotal)
		out = append(out, indent+
			styled(t.ModelColor(m.Model)).Render(fmt.Sprintf("%-14s", cli.Truncate(cli.ModelShort(m.Model), 14)))+
			components.ShareBar(share, 20, t.ModelColor(m.Model))+
			muted.Render(fmt.Sprintf(" %3.0f%%  ", share*100))+
			styled(t.Tokens).Render(cli.FormatTokens(m.TotalTokens))+
			muted.Render(fmt.Sprintf("  %d queries", m.QueryCount)))
	}
	if len(p.TopPrompts) > 0 {
		out = append(out, indent+muted.Render("top prompts"))
	}
	for _, pr := range p.TopPrompts[:min(len(p.TopPrompts), projectDrawerPrompts)] {
		out = append(out, indent+
			styled(t.Tokens).Render(fmt.Sprintf("%7s ", cli.FormatTokens(pr.TotalTokens)))+
			styled(t.Cost).Render(fmt.Sprintf("%8s  ", cli.FormatCost(pr.Cost)))+
			styled(t.TextPrimary).Render(oneLine(pr.Prompt)))
	}
	for i, l := range out {
		if lipgloss.Width(l) > w {
			out[i] = lipgloss.NewStyle().MaxWidth(w).Render(l)
		}
	}
	return out
}
