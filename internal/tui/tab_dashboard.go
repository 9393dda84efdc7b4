package tui

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/GauravRatnawat/claudetop/internal/cli"
	"github.com/GauravRatnawat/claudetop/internal/model"
	"github.com/GauravRatnawat/claudetop/internal/tui/components"
	"github.com/GauravRatnawat/claudetop/internal/tui/theme"
)

const (
	dashboardDays     = 14
	dashboardModels   = 4
	dashboardInsights = 3
)

func (a App) location() *time.Location {
	if a.opts.Build.Location != nil {
		return a.opts.Build.Location
	}
	return time.Local
}

func (a App) renderDashboard(cw, h int) string {
	t := theme.Active
	d := a.data
	tot := d.Totals

	if tot.TotalSessions == 0 {
		return emptyCard("Overview", "No sessions found. Use Claude Code and press [r] to reload.", cw)
	}

	rangeSub := ""
	if tot.DateRange != nil {
		rangeSub = cli.FormatDate(tot.DateRange.From) + " → " + cli.FormatDate(tot.DateRange.To)
	}
	days := max(len(d.DailyUsage), 1)
	metrics := components.MetricRow([]components.Metric{
		{Label: "Total Tokens", Value: cli.FormatTokens(tot.TotalTokens), Sub: rangeSub},
		{Label: "Total Cost", Value: cli.FormatCost(tot.TotalCost), Sub: "avg " + cli.FormatCost(tot.TotalCost/float64(days)) + "/day"},
		{Label: "Sessions", Value: cli.FormatNumber(int64(tot.TotalSessions)), Sub: "avg " + cli.FormatTokens(tot.AvgTokensPerSession) + "/session"},
		{Label: "Daily Avg", Value: cli.FormatTokens(tot.DailyAvg), Sub: fmt.Sprintf("streak %dd", tot.Streak)},
	}, cw)

	halves := components.LayoutRow(cw, 2)
	middle := components.CardRow([]string{
		components.ContentCard("Today", a.todayBody(components.CardInnerWidth(halves[0])), halves[0]),
		components.ContentCard("Models", a.modelsBody(components.CardInnerWidth(halves[1])), halves[1]),
	})

	chartH := max(h-lipgloss.Height(metrics)-lipgloss.Height(middle)-5, 3)
	values, labels := a.recentDays(dashboardDays)
	chart := components.BarChart(values, labels, t.Tokens, components.CardInnerWidth(halves[0]), chartH)
	bottom := components.CardRow([]string{
		components.ContentCard(fmt.Sprintf("Last %d days", dashboardDays), chart, halves[0]),
		components.ContentCard("Top insights", a.topInsightsBody(components.CardInnerWidth(halves[1])), halves[1]),
	})

	return lipgloss.JoinVertical(lipgloss.Left, metrics, middle, bottom)
}

func (a App) todayBody(w int) string {
	t := theme.Active
	muted := styled(t.TextMuted)
	today := a.data.TodayData
	if today == nil {
		return muted.Render("No activity today yet.")
	}

	top := "-"
	if len(today.ModelBreakdown) > 0 {
		top = cli.ModelShort(today.ModelBreakdown[0].Model)
	}
	lines := []string{
		muted.Render("Tokens   ") + styled(t.Tokens).Render(cli.FormatTokens(today.TotalTokens)) +
			muted.Render("   Cost ") + styled(t.Cost).Render(cli.FormatCost(today.TotalCost)),
		muted.Render("Sessions ") + styled(t.TextPrimary).Render(strconv.Itoa(today.Sessions)) +
			muted.Render("   Queries ") + styled(t.TextPrimary).Render(strconv.Itoa(today.Queries)),
		muted.Render("Model    ") + styled(t.ModelColor(top)).Render(top),
	}
	if today.PrevDayDelta != nil {
		lines = append(lines, muted.Render("vs yesterday ")+deltaStyle(today.PrevDayDelta).Render(cli.FormatDelta(today.PrevDayDelta)))
	}

	// Pace projects the hours elapsed so far over a full day.
	hour := a.data.GeneratedAt.In(a.location()).Hour() + 1
	if hour >= 2 && today.TotalTokens > 0 {
		projected := int64(math.Floor(float64(today.TotalTokens)/float64(hour)*24 + 0.5))
		cost := today.TotalCost / float64(hour) * 24
		lines = append(lines, muted.Render("Pace     ")+
			styled(t.Tokens).Render(cli.FormatTokens(projected)+"/day")+
			muted.Render("  ~")+styled(t.Cost).Render(cli.FormatCost(cost)+"/day"))
	}
	return clipLines(lines, w)
}

func (a App) modelsBody(w int) string {
	t := theme.Active
	models := a.data.ModelBreakdown
	if len(models) == 0 {
		return styled(t.TextMuted).Render("No model usage.")
	}
	total := max(a.data.Totals.TotalTokens, 1)
	barW := max(w-36, 6)

	var lines []string
	for _, m := range models[:min(len(models), dashboardModels)] {
		share := float64(m.TotalTokens) / float64(total)
		name := fmt.Sprintf("%-12s", cli.Truncate(cli.ModelShort(m.Model), 12))
		lines = append(lines,
			styled(t.ModelColor(m.Model)).Render(name)+" "+
				components.ShareBar(share, barW, t.ModelColor(m.Model))+" "+
				styled(t.Tokens).Render(fmt.Sprintf("%7s", cli.FormatTokens(m.TotalTokens)))+" "+
				styled(t.TextMuted).Render(fmt.Sprintf("%3.0f%%", share*100))+" "+
				styled(t.Cost).Render(fmt.Sprintf("%8s", cli.FormatCost(m.TotalCost))))
	}

	tot := a.data.Totals
	lines = append(lines, "",
		styled(t.TextMuted).Render("raw ")+styled(t.Tokens).Render(cli.FormatTokens(tot.TotalRawInput))+
			styled(t.TextMuted).Render("  cache w ")+styled(t.Cache).Render(cli.FormatTokens(tot.TotalCacheCreate))+
			styled(t.TextMuted).Render("  cache r ")+styled(t.Cache).Render(cli.FormatTokens(tot.TotalCacheRead))+
			styled(t.TextMuted).Render("  out ")+styled(t.Tokens).Render(cli.FormatTokens(tot.TotalOutputTokens)))
	return clipLines(lines, w)
}

func (a App) topInsightsBody(w int) string {
	t := theme.Active
	insights := a.data.Insights
	var lines []string
	if len(insights) == 0 {
		lines = append(lines, styled(t.TextMuted).Render("Not enough data yet to generate insights."))
	}
	for _, in := range insights[:min(len(insights), dashboardInsights)] {
		lines = append(lines, insightMarker(in.Type)+" "+styled(t.TextPrimary).Bold(true).Render(cli.Truncate(in.Title, w-2)))
	}
	if extra := len(insights) - dashboardInsights; extra > 0 {
		lines = append(lines, styled(t.TextDim).Render(fmt.Sprintf("… and %d more, press [6]", extra)))
	}
	if peak := a.data.Totals.PeakDay; peak != nil {
		lines = append(lines, "",
			styled(t.TextMuted).Render("Peak day ")+
				styled(t.Accent).Render(cli.FormatDateFull(peak.Date))+
				styled(t.TextMuted).Render("  ")+
				styled(t.Tokens).Render(cli.FormatTokens(peak.TotalTokens)))
	}
	return clipLines(lines, w)
}

// recentDays returns token totals for the n days ending today (UTC dates,
// matching the daily rollup), oldest first, with day-of-month labels.
func (a App) recentDays(n int) ([]int64, []string) {
	byDate := make(map[string]int64, len(a.data.DailyUsage))
	for _, d := range a.data.DailyUsage {
		byDate[d.Date] = d.TotalTokens
	}
	now := a.data.GeneratedAt.UTC()
	values := make([]int64, n)
	labels := make([]string, n)
	for i := range n {
		day := now.AddDate(0, 0, i-(n-1))
		values[i] = byDate[day.Format(model.DateLayout)]
		labels[i] = strconv.Itoa(day.Day())
	}
	return values, labels
}

func insightMarker(kind string) string {
	t := theme.Active
	switch kind {
	case model.InsightWarning:
		return styled(t.Warning).Render("▲")
	case model.InsightInfo:
		return styled(t.Tokens).Render("●")
	}
	return styled(t.TextDim).Render("•")
}

func deltaStyle(pct *int) lipgloss.Style {
	t := theme.Active
	switch {
	case pct == nil:
		return styled(t.TextDim)
	case *pct > 0:
		return styled(t.Warning)
	case *pct < 0:
		return styled(t.Cost)
	}
	return styled(t.TextMuted)
}

// clipLines joins lines, cutting any wider than w.
func clipLines(lines []string, w int) string {
	clip := lipgloss.NewStyle().MaxWidth(w)
	for i, l := range lines {
		if lipgloss.Width(l) > w {
			lines[i] = clip.Render(l)
		}
	}
	return strings.Join(lines, "\n")
}
