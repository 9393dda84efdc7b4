package tui

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/GauravRatnawat/claudetop/internal/cli"
	"github.com/GauravRatnawat/claudetop/internal/model"
	"github.com/GauravRatnawat/claudetop/internal/nav"
	"github.com/GauravRatnawat/claudetop/internal/tui/components"
	"github.com/GauravRatnawat/claudetop/internal/tui/theme"
)

const (
	analyticsTools    = 12
	analyticsWeeks    = 8
	analyticsExamples = 3
)

// renderAnalytics shows the selected section in full and every other one
// as a one-line summary.
func (a App) renderAnalytics(cw, h int) string {
	t := theme.Active
	sel := a.state.Selection[nav.Analytics]
	inner := components.CardInnerWidth(cw)

	var summary []string
	for i, name := range nav.AnalyticsSections {
		marker := "  "
		style := styled(t.TextMuted)
		if i == sel {
			marker = "▸ "
			style = styled(t.AccentBright).Bold(true)
		}
		summary = append(summary, style.Render(fmt.Sprintf("%s%-20s", marker, name))+
			styled(t.TextDim).Render(a.sectionSummary(i)))
	}
	index := components.ContentCard("Analytics", clipLines(summary, inner), cw)

	bodyH := max(h-lipgloss.Height(index)-2, 3)
	var body []string
	switch sel {
	case 0:
		body = a.toolsSection(inner)
	case 1:
		body = a.histogramSection(inner)
	case 2:
		body = a.trendSection(inner)
	case 3:
		body = a.claudeMdSection(inner)
	case 4:
		body = a.vagueSection()
	}
	body = body[:min(len(body), bodyH)]
	name := ""
	if sel >= 0 && sel < len(nav.AnalyticsSections) {
		name = nav.AnalyticsSections[sel]
	}
	focus := components.FocusCard(name, clipLines(body, inner), cw)
	return lipgloss.JoinVertical(lipgloss.Left, index, focus)
}

func (a App) sectionSummary(i int) string {
	d := a.data
	switch i {
	case 0:
		if len(d.ToolAnalytics) == 0 {
			return "no tool calls"
		}
		calls := 0
		for _, ts := range d.ToolAnalytics {
			calls += ts.TotalCalls
		}
		return fmt.Sprintf("%d tools, %s calls, top %s", len(d.ToolAnalytics),
			cli.FormatNumber(int64(calls)), d.ToolAnalytics[0].Tool)
	case 1:
		best := -1
		for j, b := range d.SessionHistogram {
			if b.Count > 0 && (best < 0 || b.Count > d.SessionHistogram[best].Count) {
				best = j
			}
		}
		if best < 0 {
			return "no sessions"
		}
		return fmt.Sprintf("most sessions run %s turns", d.SessionHistogram[best].Label)
	case 2:
		if len(d.ModelTrend) == 0 {
			return "no weekly data"
		}
		return fmt.Sprintf("%d weeks, latest %s", len(d.ModelTrend), d.ModelTrend[len(d.ModelTrend)-1].Week)
	case 3:
		if len(d.ClaudeMdFiles) == 0 {
			return "no CLAUDE.md files"
		}
		var tokens int64
		for _, f := range d.ClaudeMdFiles {
			tokens += f.EstimatedTokens
		}
		return fmt.Sprintf("%d files, ~%s tokens per turn", len(d.ClaudeMdFiles), cli.FormatTokens(tokens))
	case 4:
		if len(d.VaguePromptClusters) == 0 {
			return "none found"
		}
		n := 0
		var cost float64
		for _, c := range d.VaguePromptClusters {
			n += c.Count
			cost += c.TotalCost
		}
		return fmt.Sprintf("%d prompts costing %s", n, cli.FormatCost(cost))
	}
	return ""
}

func (a App) toolsSection(w int) []string {
	t := theme.Active
	tools := a.data.ToolAnalytics
	if len(tools) == 0 {
		return []string{styled(t.TextMuted).Render("No tool calls recorded.")}
	}
	peak := max(tools[0].TotalCalls, 1)
	barW := max(w-46, 6)
	cols := []column{
		{title: "TOOL", width: 16},
		{title: "CALLS", width: 7, right: true},
		{title: "SESS", width: 5, right: true},
		{title: "TOKENS", width: 8, right: true},
	}
	out := []string{headerRow(cols)}
	for _, ts := range tools[:min(len(tools), analyticsTools)] {
		row := formatRow([]string{
			ts.Tool,
			cli.FormatNumber(int64(ts.TotalCalls)),
			strconv.Itoa(ts.Sessions),
			cli.FormatTokens(ts.Tokens),
		}, cols)
		out = append(out, styled(t.TextPrimary).Render(row+"  ")+
			components.ShareBar(float64(ts.TotalCalls)/float64(peak), barW, t.Cache))
	}
	if extra := len(tools) - analyticsTools; extra > 0 {
		out = append(out, styled(t.TextDim).Render(fmt.Sprintf("… %d more", extra)))
	}
	return out
}

func (a App) histogramSection(w int) []string {
	t := theme.Active
	buckets := a.data.SessionHistogram
	if len(buckets) == 0 {
		return []string{styled(t.TextMuted).Render("No sessions.")}
	}
	peak := 1
	for _, b := range buckets {
		peak = max(peak, b.Count)
	}
	barW := max(w-39, 6)
	out := make([]string, 0, len(buckets))
	for _, b := range buckets {
		out = append(out,
			styled(t.Accent).Render(fmt.Sprintf("%-11s", b.Label+" turns"))+" "+
				components.ShareBar(float64(b.Count)/float64(peak), barW, t.Tokens)+" "+
				styled(t.TextPrimary).Render(fmt.Sprintf("%5d", b.Count))+
				styled(t.TextMuted).Render(" sessions ")+
				styled(t.Tokens).Render(fmt.Sprintf("%7s", cli.FormatTokens(b.TotalTokens))))
	}
	return out
}

// trendSection lists recent weeks with each model's share of the week.
func (a App) trendSection(w int) []string {
	t := theme.Active
	weeks := a.data.ModelTrend
	if len(weeks) == 0 {
		return []string{styled(t.TextMuted).Render("No weekly data.")}
	}
	weeks = weeks[max(len(weeks)-analyticsWeeks, 0):]
	barW := max(w-22, 10)

	var out []string
	for _, wk := range weeks {
		models := make([]string, 0, len(wk.Models))
		var total int64
		for m, n := range wk.Models {
			models = append(models, m)
			total += n
		}
		sort.Slice(models, func(i, j int) bool {
			if wk.Models[models[i]] != wk.Models[models[j]] {
				return wk.Models[models[i]] > wk.Models[models[j]]
			}
			return models[i] < models[j]
		})

		var bar strings.Builder
		used := 0
		for i, m := range models {
			cells := int(float64(wk.Models[m]) / float64(max(total, 1)) * float64(barW))
			if i == len(models)-1 {
				cells = barW - used
			}
			used += cells
			bar.WriteString(lipgloss.NewStyle().Foreground(t.ModelColor(m)).Background(t.Surface).
				Render(strings.Repeat("█", max(cells, 0))))
		}
		out = append(out, styled(t.TextMuted).Render(cli.FormatDate(wk.Week)+" ")+bar.String()+
			styled(t.Tokens).Render(fmt.Sprintf(" %7s", cli.FormatTokens(total))))
	}

	legend := map[string]bool{}
	var keys []string
	for _, wk := range weeks {
		for m := range wk.Models {
			short := cli.ModelShort(m)
			if !legend[short] {
				legend[short] = true
				keys = append(keys, m)
			}
		}
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, m := range keys {
		parts[i] = lipgloss.NewStyle().Foreground(t.ModelColor(m)).Background(t.Surface).Render("█ " + cli.ModelShort(m))
	}
	return append(out, "", strings.Join(parts, styled(t.TextDim).Render("  ")))
}

func (a App) claudeMdSection(w int) []string {
	t := theme.Active
	files := a.data.ClaudeMdFiles
	if len(files) == 0 {
		return []string{styled(t.TextMuted).Render("No CLAUDE.md files found in your projects.")}
	}
	cols := flexColumns([]column{
		{title: "PROJECT", width: 20},
		{title: "SIZE", width: 8, right: true},
		{title: "~TOKENS", width: 8, right: true},
		{title: "PATH", width: 20},
	}, w, 3)
	out := []string{headerRow(cols)}
	for _, f := range files {
		out = append(out, styled(t.TextPrimary).Render(formatRow([]string{
			model.ProjectShort(f.Project),
			humanize.Bytes(uint64(max(f.Bytes, 0))),
			cli.FormatTokens(f.EstimatedTokens),
			f.Path,
		}, cols)))
	}
	return append(out, "", styled(t.TextDim).Render("Loaded into every turn of every session in that project."))
}

func (a App) vagueSection() []string {
	t := theme.Active
	clusters := a.data.VaguePromptClusters
	if len(clusters) == 0 {
		return []string{styled(t.TextMuted).Render("No vague prompts. Nice.")}
	}
	out := []string{}
	for _, c := range clusters {
		out = append(out, styled(t.Warning).Bold(true).Render(fmt.Sprintf("%-14q", c.Key))+
			styled(t.TextPrimary).Render(fmt.Sprintf("%4d× ", c.Count))+
			styled(t.Tokens).Render(fmt.Sprintf("%7s ", cli.FormatTokens(c.TotalTokens)))+
			styled(t.Cost).Render(fmt.Sprintf("%8s", cli.FormatCost(c.TotalCost))))
		ex := c.Examples[:min(len(c.Examples), analyticsExamples)]
		if len(ex) > 0 {
			quoted := make([]string, len(ex))
			for i, e := range ex {
				quoted[i] = strconv.Quote(cli.Truncate(oneLine(e), 30))
			}
			out = append(out, styled(t.TextDim).Render("    e.g. "+strings.Join(quoted, ", ")))
		}
	}
	return out
}
