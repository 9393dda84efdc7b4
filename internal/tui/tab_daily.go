package tui

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/GauravRatnawat/claudetop/internal/cli"
	"github.com/GauravRatnawat/claudetop/internal/model"
	"github.com/GauravRatnawat/claudetop/internal/nav"
	"github.com/GauravRatnawat/claudetop/internal/tui/components"
	"github.com/GauravRatnawat/claudetop/internal/tui/theme"
)

const (
	dailyChartDays   = 30
	dailyChartHeight = 5
	// Below this content height the chart is dropped in favor of rows.
	dailyChartMinH = 28
)

var dailyColumns = []column{
	{title: "DATE", width: 13},
	{title: "TOKENS", width: 8, right: true},
	{title: "COST", width: 9, right: true},
	{title: "SESS", width: 5, right: true},
	{title: "QUERIES", width: 7, right: true},
	{title: "VS DAY", width: 7, right: true},
	{title: "VS WEEK", width: 7, right: true},
	{title: "TOP MODEL", width: 12},
}

func (a App) renderDaily(cw, h int) string {
	t := theme.Active
	days := nav.DailyList(a.data)
	if len(days) == 0 {
		return emptyCard("Daily", "No dated activity.", cw)
	}

	var chart string
	if h >= dailyChartMinH {
		n := min(len(days), dailyChartDays)
		values := make([]int64, n)
		labels := make([]string, n)
		for i := range n {
			d := days[n-1-i] // oldest first
			values[i] = d.TotalTokens
			labels[i] = cli.FormatDate(d.Date)
		}
		chart = components.ContentCard(fmt.Sprintf("Tokens, last %d active days", n),
			components.BarChart(values, labels, t.Tokens, components.CardInnerWidth(cw), dailyChartHeight), cw)
	}

	inner := components.CardInnerWidth(cw)
	cols := flexColumns(dailyColumns, inner, len(dailyColumns)-1)
	sel := a.state.Selection[nav.Daily]

	var lines []string
	selLine := 0
	for i, d := range days {
		if i == sel {
			selLine = len(lines)
		}
		top := "-"
		if len(d.ModelBreakdown) > 0 {
			top = cli.ModelShort(d.ModelBreakdown[0].Model)
		}
		marker := "▸ "
		if a.state.DailyExpanded[d.Date] {
			marker = "▾ "
		}
		row := formatRow([]string{
			marker + cli.FormatDate(d.Date) + " " + weekdayShort(d.Date),
			cli.FormatTokens(d.TotalTokens),
			cli.FormatCost(d.TotalCost),
			strconv.Itoa(d.Sessions),
			strconv.Itoa(d.Queries),
			orDash(cli.FormatDelta(d.PrevDayDelta)),
			orDash(cli.FormatDelta(d.PrevWeekDelta)),
			top,
		}, cols)
		lines = append(lines, listRow(row, i == sel))
		if a.state.DailyExpanded[d.Date] {
			lines = append(lines, dailyDrawer(d, inner)...)
		}
	}

	listH := h - 3 // card border and header row
	if chart != "" {
		listH -= lipgloss.Height(chart)
	}
	start, end := scrollWindow(selLine, len(lines), max(listH, 1))
	body := headerRow(cols) + "\n" + strings.Join(lines[start:end], "\n")
	title := fmt.Sprintf("Daily usage  %d days", len(days))
	list := components.ContentCard(title, body, cw)

	if chart == "" {
		return list
	}
	return lipgloss.JoinVertical(lipgloss.Left, chart, list)
}

// dailyDrawer is the expanded detail under a day row.
func dailyDrawer(d *model.DailyBucket, w int) []string {
	t := theme.Active
	muted := styled(t.TextMuted)
	indent := styled(t.TextDim).Render("   │ ")

	info := muted.Render("busiest ")
	if d.BusiestHour != nil {
		info += styled(t.Accent).Render(cli.FormatHour(*d.BusiestHour))
	} else {
		info += muted.Render("-")
	}
	if d.TopProject != nil {
		info += muted.Render("  top project ") + styled(t.Accent).Render(model.ProjectShort(*d.TopProject))
	}
	info += muted.Render("  avg/query ") + styled(t.Tokens).Render(cli.FormatTokens(d.AvgTokensPerQuery))

	split := muted.Render("raw ") + styled(t.Tokens).Render(cli.FormatTokens(d.RawInputTokens)) +
		muted.Render("  cache w ") + styled(t.Cache).Render(cli.FormatTokens(d.CacheCreationTokens)) +
		muted.Render("  cache r ") + styled(t.Cache).Render(cli.FormatTokens(d.CacheReadTokens)) +
		muted.Render("  out ") + styled(t.Tokens).Render(cli.FormatTokens(d.OutputTokens))

	out := []string{indent + info, indent + split}
	for _, share := range d.ModelBreakdown {
		out = append(out, indent+
			styled(t.ModelColor(share.Model)).Render(fmt.Sprintf("%-14s", cli.Truncate(cli.ModelShort(share.Model), 14)))+
			components.ShareBar(float64(share.Pct)/100, 20, t.ModelColor(share.Model))+
			muted.Render(fmt.Sprintf(" %3d%%  ", share.Pct))+
			styled(t.Tokens).Render(cli.FormatTokens(share.Tokens)))
	}
	for i, l := range out {
		if lipgloss.Width(l) > w {
			out[i] = lipgloss.NewStyle().MaxWidth(w).Render(l)
		}
	}
	return out
}

func weekdayShort(date string) string {
	day, err := parseDate(date)
	if err != nil {
		return ""
	}
	return day.Weekday().String()[:3]
}

func parseDate(date string) (time.Time, error) {
	return time.Parse(model.DateLayout, date)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
