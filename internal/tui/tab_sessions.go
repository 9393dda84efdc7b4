package tui

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/GauravRatnawat/claudetop/internal/cli"
	"github.com/GauravRatnawat/claudetop/internal/model"
	"github.com/GauravRatnawat/claudetop/internal/nav"
	"github.com/GauravRatnawat/claudetop/internal/tui/components"
	"github.com/GauravRatnawat/claudetop/internal/tui/theme"
)

var sessionColumns = []column{
	{title: "DATE", width: 6},
	{title: "PROJECT", width: 16},
	{title: "WHAT YOU ASKED", width: 20},
	{title: "MODEL", width: 12},
	{title: "MSG", width: 4, right: true},
	{title: "TOKENS", width: 8, right: true},
	{title: "COST", width: 9, right: true},
	{title: "EFF%", width: 5, right: true},
}

var turnColumns = []column{
	{title: "#", width: 4, right: true},
	{title: "PROMPT", width: 20},
	{title: "MODEL", width: 12},
	{title: "IN", width: 8, right: true},
	{title: "OUT", width: 7, right: true},
	{title: "TOTAL", width: 8, right: true},
	{title: "COST", width: 9, right: true},
}

const (
	drilldownTools     = 6
	turnToolsInline    = 3
	continuationPrompt = "(tool continuation)"
)

func (a App) renderSessions(cw, h int) string {
	list := nav.SessionList(a.data, a.state)
	total := len(a.data.Sessions)

	title := fmt.Sprintf("Sessions  %d of %d  sort %s", len(list), total, a.state.Sort)
	if a.state.ModelFilter != "" {
		title += "  model " + a.state.ModelFilter
	}
	if len(list) == 0 {
		msg := "No sessions match."
		if total == 0 {
			msg = "No sessions found."
		}
		return emptyCard(title, msg, cw)
	}

	cols := flexColumns(sessionColumns, components.CardInnerWidth(cw), 2)
	sel := a.state.Selection[nav.Sessions]
	start, end := scrollWindow(sel, len(list), max(h-3, 1))

	rows := make([]string, 0, end-start)
	for i := start; i < end; i++ {
		s := list[i]
		rows = append(rows, listRow(formatRow([]string{
			cli.FormatDate(s.Date),
			model.ProjectShort(s.Project),
			oneLine(s.FirstPrompt),
			cli.ModelShort(s.Model),
			strconv.Itoa(s.QueryCount),
			cli.FormatTokens(s.TotalTokens),
			cli.FormatCost(s.TotalCost),
			strconv.FormatFloat(s.EfficiencyScore, 'f', 0, 64),
		}, cols), i == sel))
	}
	body := headerRow(cols) + "\n" + strings.Join(rows, "\n")
	return components.ContentCard(title, body, cw)
}

func (a App) renderDrilldown(cw, h int) string {
	s := nav.DrilldownSession(a.data, a.state)
	if s == nil {
		return emptyCard("Session", "Session no longer available. Press [esc].", cw)
	}
	inner := components.CardInnerWidth(cw)
	head := sessionHeader(s, inner)

	cols := flexColumns(turnColumns, inner, 1)
	cursor := a.state.Drilldown.Cursor
	listH := max(h-len(head)-4, 1)
	start, end := scrollWindow(cursor, len(s.Queries), listH)

	rows := make([]string, 0, end-start)
	for i := start; i < end; i++ {
		rows = append(rows, listRow(formatRow(turnCells(i, s.Queries[i]), cols), i == cursor))
	}

	body := strings.Join(head, "\n") + "\n" + headerRow(cols) + "\n" + strings.Join(rows, "\n")
	title := "Session " + shortID(s.ID)
	if len(s.Queries) > 0 {
		title += fmt.Sprintf("  turn %d/%d", cursor+1, len(s.Queries))
	}
	return components.FocusCard(title, body, cw)
}

func turnCells(i int, q model.Query) []string {
	prompt := continuationPrompt
	if q.Prompt != nil {
		prompt = oneLine(*q.Prompt)
	}
	if len(q.Tools) > 0 {
		tools := q.Tools[:min(len(q.Tools), turnToolsInline)]
		prompt += " [" + strings.Join(tools, ", ") + "]"
	}
	return []string{
		strconv.Itoa(i + 1),
		prompt,
		cli.ModelShort(q.Model),
		cli.FormatTokens(q.InputTokens),
		cli.FormatTokens(q.OutputTokens),
		cli.FormatTokens(q.TotalTokens),
		cli.FormatCost(q.Cost),
	}
}

// sessionHeader is the summary block above the turn list.
func sessionHeader(s *model.Session, w int) []string {
	t := theme.Active
	muted := styled(t.TextMuted)
	value := styled(t.Accent)

	started := "-"
	if s.FirstTimestamp != nil {
		started = s.FirstTimestamp.Local().Format("Jan 2 15:04")
	}
	lines := []string{
		styled(t.TextPrimary).Bold(true).Render(cli.Truncate(oneLine(s.FirstPrompt), w)),
		muted.Render("project ") + value.Render(model.ProjectShort(s.Project)) +
			muted.Render("  started ") + value.Render(started) +
			muted.Render("  duration ") + value.Render(cli.FormatDuration(s.DurationMinutes)),
		muted.Render("model ") + styled(t.ModelColor(s.Model)).Render(cli.ModelShort(s.Model)) +
			muted.Render("  queries ") + value.Render(strconv.Itoa(s.QueryCount)) +
			muted.Render("  total ") + styled(t.Tokens).Render(cli.FormatTokens(s.TotalTokens)) +
			muted.Render("  cost ") + styled(t.Cost).Render(cli.FormatCost(s.TotalCost)) +
			muted.Render("  efficiency ") + value.Render(strconv.FormatFloat(s.EfficiencyScore, 'f', 0, 64)+"%"),
	}
	if s.CacheReadTokens > 0 || s.CacheCreationTokens > 0 {
		lines = append(lines, muted.Render("cache  raw ")+styled(t.Tokens).Render(cli.FormatTokens(s.RawInputTokens))+
			muted.Render("  created ")+styled(t.Cache).Render(cli.FormatTokens(s.CacheCreationTokens))+
			muted.Render("  read ")+styled(t.Cache).Render(cli.FormatTokens(s.CacheReadTokens)))
	}
	if tools := topTools(s.Tools, drilldownTools); tools != "" {
		lines = append(lines, muted.Render("tools  ")+styled(t.Cache).Render(tools))
	}
	for i, l := range lines {
		if lipgloss.Width(l) > w {
			lines[i] = lipgloss.NewStyle().MaxWidth(w).Render(l)
		}
	}
	return lines
}

// topTools formats the n most used tools as "Read×12 Edit×4".
func topTools(counts map[string]int, n int) string {
	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if counts[names[i]] != counts[names[j]] {
			return counts[names[i]] > counts[names[j]]
		}
		return names[i] < names[j]
	})
	parts := make([]string, 0, n)
	for _, name := range names[:min(len(names), n)] {
		parts = append(parts, fmt.Sprintf("%s×%d", name, counts[name]))
	}
	return strings.Join(parts, "  ")
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// oneLine flattens whitespace so a prompt fits a table cell.
func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
