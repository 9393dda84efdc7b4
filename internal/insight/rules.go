package insight

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/samber/lo"

	"github.com/GauravRatnawat/claudetop/internal/cli"
	"github.com/GauravRatnawat/claudetop/internal/config"
	"github.com/GauravRatnawat/claudetop/internal/model"
)

// Thresholds.
const (
	vagueMaxRunes   = 30
	vagueMinTokens  = 100_000
	vagueMaxExample = 4

	growthMinTurns = 50
	growthWindow   = 5
	growthMinRatio = 2

	marathonTurns    = 200
	marathonMinCount = 3

	inputHeavyMaxOutputPct = 2

	dayPatternMinSessions = 10
	dayPatternMinDays     = 3

	mismatchMaxTurns  = 10
	mismatchMaxTokens = 200_000
	mismatchMinCount  = 3

	toolHeavyMinSessions = 5
	toolHeavyRatio       = 3
	toolHeavyMinCount    = 3

	dominanceMinSessions = 5
	dominanceMinPct      = 60

	efficiencyMinSessions = 10
	efficiencyShortMin    = 3
	efficiencyShortMax    = 15
	efficiencyLongMin     = 80
	efficiencyMinRatio    = 2

	heavyContextMinSessions = 5
	heavyContextTokens      = 50_000
	heavyContextMinCount    = 5

	velocityMinPct   = 20
	velocityAlarmPct = 50

	budgetMinHour = 6
	budgetFactor  = 1.5

	whatIfTurn       = 50
	whatIfMinCount   = 3
	whatIfMinSavings = 500_000
	whatIfModel      = "claude-sonnet-4"
)

func roundInt(x float64) int64 {
	return int64(model.RoundHalfUp(x))
}

func sumTokens(qs []model.Query) int64 {
	return lo.SumBy(qs, func(q model.Query) int64 { return q.TotalTokens })
}

func sessionTokens(ss []model.Session) int64 {
	return lo.SumBy(ss, func(s model.Session) int64 { return s.TotalTokens })
}

func quoteAll(ss []string) string {
	quoted := lo.Map(ss, func(s string, _ int) string { return `"` + s + `"` })
	return strings.Join(quoted, ", ")
}

func vaguePrompts(in Input) (model.Insight, bool) {
	hits := lo.Filter(in.Prompts, func(p model.PromptRecord, _ int) bool {
		return utf8.RuneCountInString(strings.TrimSpace(p.Prompt)) < vagueMaxRunes &&
			p.TotalTokens > vagueMinTokens
	})
	if len(hits) == 0 {
		return model.Insight{}, false
	}

	wasted := lo.SumBy(hits, func(p model.PromptRecord) int64 { return p.TotalTokens })
	examples := lo.Uniq(lo.Map(hits, func(p model.PromptRecord, _ int) string {
		return strings.TrimSpace(p.Prompt)
	}))
	if len(examples) > vagueMaxExample {
		examples = examples[:vagueMaxExample]
	}

	return model.Insight{
		ID:    "vague-prompts",
		Type:  model.InsightWarning,
		Title: "Short, vague messages are costing you the most",
		Description: fmt.Sprintf(
			"%d times you sent a short message like %s, and each time Claude used over 100K tokens. Total: %s tokens wasted.",
			len(hits), quoteAll(examples), cli.FormatTokens(wasted)),
		Action: action(`Instead of "Yes", say "Yes, update the login page and run the tests." Clear target = fewer tokens.`),
	}, true
}

func contextGrowth(in Input) (model.Insight, bool) {
	var ratios []float64
	for _, s := range in.Sessions {
		if len(s.Queries) <= growthMinTurns {
			continue
		}
		first := float64(sumTokens(s.Queries[:growthWindow])) / growthWindow
		last := float64(sumTokens(s.Queries[len(s.Queries)-growthWindow:])) / growthWindow
		if r := last / math.Max(first, 1); r > growthMinRatio {
			ratios = append(ratios, r)
		}
	}
	if len(ratios) == 0 {
		return model.Insight{}, false
	}

	avg := lo.Sum(ratios) / float64(len(ratios))
	return model.Insight{
		ID:    "context-growth",
		Type:  model.InsightWarning,
		Title: "The longer you chat, the more each message costs",
		Description: fmt.Sprintf("In %d conversations, messages near the end cost %.1fx more than at the start.",
			len(ratios), avg),
		Action: action("Start fresh when moving to a new task. Paste a short summary as context instead of continuing a long chat."),
	}, true
}

func marathonSessions(in Input) (model.Insight, bool) {
	long := lo.Filter(in.Sessions, func(s model.Session, _ int) bool {
		return s.QueryCount > marathonTurns
	})
	if len(long) < marathonMinCount {
		return model.Insight{}, false
	}

	tokens := sessionTokens(long)
	pct := roundInt(float64(tokens) / float64(max(in.Totals.TotalTokens, 1)) * 100)
	return model.Insight{
		ID:    "marathon-sessions",
		Type:  model.InsightInfo,
		Title: fmt.Sprintf("Just %d long conversations used %d%% of all tokens", len(long), pct),
		Description: fmt.Sprintf("%d conversations with 200+ messages consumed %s tokens, %d%% of everything.",
			len(long), cli.FormatTokens(tokens), pct),
		Action: action("Keep one conversation per task. Start a new one when the topic shifts."),
	}, true
}

func inputHeavy(in Input) (model.Insight, bool) {
	t := in.Totals
	if t.TotalTokens <= 0 {
		return model.Insight{}, false
	}
	outPct := float64(t.TotalOutputTokens) / float64(t.TotalTokens) * 100
	if outPct >= inputHeavyMaxOutputPct {
		return model.Insight{}, false
	}
	return model.Insight{
		ID:    "input-heavy",
		Type:  model.InsightInfo,
		Title: fmt.Sprintf("Only %.1f%% of tokens are Claude actually writing", outPct),
		Description: fmt.Sprintf("%s total tokens, but only %s are responses. The rest is context re-reads.",
			cli.FormatTokens(t.TotalTokens), cli.FormatTokens(t.TotalOutputTokens)),
		Action: action("Shorter conversations have more impact than asking for shorter answers."),
	}, true
}

func dayPattern(in Input) (model.Insight, bool) {
	if len(in.Sessions) < dayPatternMinSessions {
		return model.Insight{}, false
	}

	type dayStat struct {
		day      int
		tokens   int64
		sessions int
	}
	byDay := make(map[int]*dayStat)
	for _, s := range in.Sessions {
		if s.FirstTimestamp == nil {
			continue
		}
		d := int(s.FirstTimestamp.In(in.Location).Weekday())
		st, ok := byDay[d]
		if !ok {
			st = &dayStat{day: d}
			byDay[d] = st
		}
		st.tokens += s.TotalTokens
		st.sessions++
	}
	if len(byDay) < dayPatternMinDays {
		return model.Insight{}, false
	}

	days := lo.Values(byDay)
	avg := func(d *dayStat) float64 { return float64(d.tokens) / float64(d.sessions) }
	sort.Slice(days, func(i, j int) bool {
		if avg(days[i]) != avg(days[j]) {
			return avg(days[i]) > avg(days[j])
		}
		return days[i].day < days[j].day
	})
	top, bottom := days[0], days[len(days)-1]
	topName := weekdayName(top.day)
	bottomName := weekdayName(bottom.day)

	return model.Insight{
		ID:    "day-pattern",
		Type:  model.InsightNeutral,
		Title: fmt.Sprintf("You use Claude the most on %ss", topName),
		Description: fmt.Sprintf("%s averages %s tokens/session vs %s on %ss.",
			topName, cli.FormatTokens(roundInt(avg(top))), cli.FormatTokens(roundInt(avg(bottom))), bottomName),
	}, true
}

func weekdayName(d int) string {
	return [...]string{"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"}[d]
}

func modelMismatch(in Input) (model.Insight, bool) {
	simple := lo.Filter(in.Sessions, func(s model.Session, _ int) bool {
		return strings.Contains(s.Model, "opus") &&
			s.QueryCount < mismatchMaxTurns && s.TotalTokens < mismatchMaxTokens
	})
	if len(simple) < mismatchMinCount {
		return model.Insight{}, false
	}

	cost := lo.SumBy(simple, func(s model.Session) float64 { return s.TotalCost })
	return model.Insight{
		ID:    "model-mismatch",
		Type:  model.InsightWarning,
		Title: fmt.Sprintf("%d simple conversations used Opus unnecessarily", len(simple)),
		Description: fmt.Sprintf("%s tokens (~%s) spent on Opus for short (<10 message) conversations.",
			cli.FormatTokens(sessionTokens(simple)), cli.FormatCost(cost)),
		Action: action("Use /model to switch to Sonnet for simple tasks. Save Opus for complex multi-file work."),
	}, true
}

func toolHeavy(in Input) (model.Insight, bool) {
	if len(in.Sessions) < toolHeavyMinSessions {
		return model.Insight{}, false
	}
	heavy := lo.Filter(in.Sessions, func(s model.Session, _ int) bool {
		u := s.UserInitiated
		return u > 0 && s.QueryCount-u > u*toolHeavyRatio
	})
	if len(heavy) < toolHeavyMinCount {
		return model.Insight{}, false
	}

	ratio := lo.SumBy(heavy, func(s model.Session) float64 {
		return float64(s.QueryCount-s.UserInitiated) / float64(max(s.UserInitiated, 1))
	}) / float64(len(heavy))
	r := roundInt(ratio)

	return model.Insight{
		ID:    "tool-heavy",
		Type:  model.InsightInfo,
		Title: fmt.Sprintf("%d conversations had %dx more tool calls than messages", len(heavy), r),
		Description: fmt.Sprintf("Claude made ~%d tool calls per message. Used %s tokens total.",
			r, cli.FormatTokens(sessionTokens(heavy))),
		Action: action(`Point Claude to specific files. "Fix auth.js line 42" triggers fewer tool calls than "fix the login bug".`),
	}, true
}

func projectDominance(in Input) (model.Insight, bool) {
	if len(in.Sessions) < dominanceMinSessions {
		return model.Insight{}, false
	}

	byProject := make(map[string]int64)
	for _, s := range in.Sessions {
		byProject[s.Project] += s.TotalTokens
	}
	if len(byProject) < 2 {
		return model.Insight{}, false
	}
	projects := lo.Keys(byProject)
	sort.Slice(projects, func(i, j int) bool {
		if byProject[projects[i]] != byProject[projects[j]] {
			return byProject[projects[i]] > byProject[projects[j]]
		}
		return projects[i] < projects[j]
	})

	first, second := projects[0], projects[1]
	pct := roundInt(float64(byProject[first]) / float64(max(in.Totals.TotalTokens, 1)) * 100)
	if pct < dominanceMinPct {
		return model.Insight{}, false
	}
	return model.Insight{
		ID:    "project-dominance",
		Type:  model.InsightInfo,
		Title: fmt.Sprintf("%d%% of tokens went to one project", pct),
		Description: fmt.Sprintf(`"%s" used %s tokens (%d%%). Next: %s tokens.`,
			model.ProjectShort(first), cli.FormatTokens(byProject[first]), pct, cli.FormatTokens(byProject[second])),
		Action: action("Consider breaking long conversations in this project into smaller focused sessions."),
	}, true
}

func perTurnAverage(ss []model.Session) int64 {
	sum := lo.SumBy(ss, func(s model.Session) float64 {
		return float64(s.TotalTokens) / float64(s.QueryCount)
	})
	return roundInt(sum / float64(len(ss)))
}

func conversationEfficiency(in Input) (model.Insight, bool) {
	if len(in.Sessions) < efficiencyMinSessions {
		return model.Insight{}, false
	}
	short := lo.Filter(in.Sessions, func(s model.Session, _ int) bool {
		return s.QueryCount >= efficiencyShortMin && s.QueryCount <= efficiencyShortMax
	})
	long := lo.Filter(in.Sessions, func(s model.Session, _ int) bool {
		return s.QueryCount > efficiencyLongMin
	})
	if len(short) < 3 || len(long) < 2 {
		return model.Insight{}, false
	}

	shortAvg, longAvg := perTurnAverage(short), perTurnAverage(long)
	// The ratio is compared after rounding to one decimal.
	ratio := model.RoundHalfUp(float64(longAvg)/float64(max(shortAvg, 1))*10) / 10
	if ratio < efficiencyMinRatio {
		return model.Insight{}, false
	}
	return model.Insight{
		ID:    "conversation-efficiency",
		Type:  model.InsightWarning,
		Title: fmt.Sprintf("Each message costs %.1fx more in long conversations", ratio),
		Description: fmt.Sprintf("Short sessions: ~%s tokens/message. Long sessions: ~%s tokens/message.",
			cli.FormatTokens(shortAvg), cli.FormatTokens(longAvg)),
		Action: action("Starting fresh more often is the single biggest lever for reducing token usage."),
	}, true
}

func heavyContext(in Input) (model.Insight, bool) {
	if len(in.Sessions) < heavyContextMinSessions {
		return model.Insight{}, false
	}
	heavy := lo.Filter(in.Sessions, func(s model.Session, _ int) bool {
		return len(s.Queries) > 0 && s.Queries[0].InputTokens > heavyContextTokens
	})
	if len(heavy) < heavyContextMinCount {
		return model.Insight{}, false
	}

	start := lo.SumBy(heavy, func(s model.Session) int64 { return s.Queries[0].InputTokens })
	avg := roundInt(float64(start) / float64(len(heavy)))
	return model.Insight{
		ID:    "heavy-context",
		Type:  model.InsightInfo,
		Title: fmt.Sprintf("%d conversations started with %s+ tokens of context", len(heavy), cli.FormatTokens(avg)),
		Description: fmt.Sprintf("CLAUDE.md and system context averaged %s tokens before you typed anything.",
			cli.FormatTokens(avg)),
		Action: action("Keep CLAUDE.md concise. Smaller starting context compounds into savings across every message."),
	}, true
}

// velocity compares the seven days ending today with the seven before.
func velocity(in Input) (model.Insight, bool) {
	today := in.Now.UTC()
	todayKey := today.Format(model.DateLayout)
	weekAgo := today.AddDate(0, 0, -7).Format(model.DateLayout)
	twoWeeksAgo := today.AddDate(0, 0, -14).Format(model.DateLayout)

	var thisWeek, lastWeek int64
	for _, d := range in.Daily {
		switch {
		case d.Date > weekAgo && d.Date <= todayKey:
			thisWeek += d.TotalTokens
		case d.Date > twoWeeksAgo && d.Date <= weekAgo:
			lastWeek += d.TotalTokens
		}
	}
	if thisWeek <= 0 || lastWeek <= 0 {
		return model.Insight{}, false
	}

	pct := roundInt(float64(thisWeek-lastWeek) / float64(lastWeek) * 100)
	if pct > -velocityMinPct && pct < velocityMinPct {
		return model.Insight{}, false
	}

	ins := model.Insight{
		ID:    "velocity",
		Type:  model.InsightNeutral,
		Title: fmt.Sprintf("Token usage is down %d%% this week", -pct),
		Description: fmt.Sprintf("This week: %s tokens. Last week: %s tokens.",
			cli.FormatTokens(thisWeek), cli.FormatTokens(lastWeek)),
	}
	if pct > 0 {
		ins.Type = model.InsightWarning
		ins.Title = fmt.Sprintf("Token usage is up %d%% this week", pct)
	}
	if pct > velocityAlarmPct {
		ins.Action = action("Usage is growing fast. Watch for marathon sessions or heavy context.")
	}
	return ins, true
}

// budgetAlert projects today's usage linearly over 24 hours.
func budgetAlert(in Input) (model.Insight, bool) {
	avg := in.Totals.DailyAvg
	if avg <= 0 {
		return model.Insight{}, false
	}
	todayKey := in.Now.UTC().Format(model.DateLayout)
	today, ok := lo.Find(in.Daily, func(d model.DailyBucket) bool { return d.Date == todayKey })
	if !ok {
		return model.Insight{}, false
	}

	hour := int64(in.Now.In(in.Location).Hour() + 1)
	projected := roundInt(float64(today.TotalTokens) / float64(hour) * 24)
	if float64(projected) <= float64(avg)*budgetFactor || hour < budgetMinHour {
		return model.Insight{}, false
	}

	over := roundInt(float64(projected-avg) / float64(avg) * 100)
	return model.Insight{
		ID:    "budget-alert",
		Type:  model.InsightWarning,
		Title: fmt.Sprintf("Today is on pace to use %d%% more tokens than your daily average", over),
		Description: fmt.Sprintf("Used %s in %dh. Projected: %s vs avg %s/day.",
			cli.FormatTokens(today.TotalTokens), hour, cli.FormatTokens(projected), cli.FormatTokens(avg)),
		Action: action("Consider wrapping up long conversations or starting fresh context windows."),
	}, true
}

// whatIfSavings estimates what long sessions would have cost had every turn
// past whatIfTurn stayed at the early per-turn rate.
func whatIfSavings(in Input) (model.Insight, bool) {
	long := lo.Filter(in.Sessions, func(s model.Session, _ int) bool {
		return s.QueryCount > whatIfTurn && len(s.Queries) > whatIfTurn
	})
	if len(long) < whatIfMinCount {
		return model.Insight{}, false
	}

	var saved float64
	for _, s := range long {
		early := float64(sumTokens(s.Queries[:whatIfTurn])) / whatIfTurn
		late := float64(sumTokens(s.Queries[whatIfTurn:]))
		saved += math.Max(0, late-early*float64(len(s.Queries)-whatIfTurn))
	}
	if saved <= whatIfMinSavings {
		return model.Insight{}, false
	}

	// Savings are mostly context re-reads: price as 95% cache read, 5% output.
	cost := config.CalculateCostFloat(whatIfModel, 0, 0, saved*0.95, saved*0.05)
	tokens := cli.FormatTokens(roundInt(saved))
	return model.Insight{
		ID:    "whatif-savings",
		Type:  model.InsightInfo,
		Title: fmt.Sprintf("Starting fresh after message 50 could save ~%s tokens", tokens),
		Description: fmt.Sprintf("Across %d long conversations, context bloat after message 50 cost an estimated %s extra tokens (~%s).",
			len(long), tokens, cli.FormatCost(cost)),
		Action: action("When a conversation passes 50 messages, start a new one and paste a 3-sentence summary of where you left off."),
	}, true
}
