// Package pipeline loads session logs and folds them into the aggregate.
package pipeline

import (
	"fmt"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/samber/lo"

	"github.com/GauravRatnawat/claudetop/internal/insight"
	"github.com/GauravRatnawat/claudetop/internal/model"
)

// SortKey orders the session list.
type SortKey string

// Session sort keys.
const (
	SortTotal   SortKey = "total"
	SortDate    SortKey = "date"
	SortQueries SortKey = "queries"
	SortModel   SortKey = "model"
	SortCost    SortKey = "cost"
)

// ParseSortKey accepts a sort key name. "tokens" is an alias of "total" and
// the empty string means total.
func ParseSortKey(s string) (SortKey, error) {
	switch k := SortKey(strings.ToLower(strings.TrimSpace(s))); k {
	case "", "tokens":
		return SortTotal, nil
	case SortTotal, SortDate, SortQueries, SortModel, SortCost:
		return k, nil
	}
	return "", fmt.Errorf("unknown sort key %q (want tokens|date|queries|model|cost)", s)
}

// SortSessions sorts in place. Ties break on project, then session id.
func SortSessions(sessions []model.Session, key SortKey) {
	sort.SliceStable(sessions, func(i, j int) bool {
		return SessionLess(key, &sessions[i], &sessions[j])
	})
}

// SessionLess reports whether a sorts before b under key.
func SessionLess(key SortKey, a, b *model.Session) bool {
	switch key {
	case SortDate:
		at, bt := timeOrZero(a.FirstTimestamp), timeOrZero(b.FirstTimestamp)
		if !at.Equal(bt) {
			return at.After(bt)
		}
	case SortQueries:
		if a.QueryCount != b.QueryCount {
			return a.QueryCount > b.QueryCount
		}
	case SortModel:
		if a.Model != b.Model {
			return a.Model < b.Model
		}
	case SortCost:
		if a.TotalCost != b.TotalCost {
			return a.TotalCost > b.TotalCost
		}
	default:
		if a.TotalTokens != b.TotalTokens {
			return a.TotalTokens > b.TotalTokens
		}
	}
	if a.Project != b.Project {
		return a.Project < b.Project
	}
	return a.ID < b.ID
}

func timeOrZero(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return *t
}

// Options controls a Build.
type Options struct {
	Now      time.Time      // reference instant for today, streak and windows
	Location *time.Location // zone for hour-of-day and weekday
	Days     int            // 0 = all time
	Project  string         // substring filter
	Model    string         // substring filter on the dominant model
	Sort     SortKey
	// SkipInsights leaves Insights empty.
	SkipInsights bool
}

func (o Options) normalized() Options {
	if o.Now.IsZero() {
		o.Now = time.Now()
	}
	if o.Location == nil {
		o.Location = time.Local
	}
	if o.Sort == "" {
		o.Sort = SortTotal
	}
	return o
}

// Build folds sessions into an Aggregate. It performs no I/O and does not
// modify its inputs. Filters run first so every rollup sees the same subset.
func Build(sessions []model.Session, claudeMd []model.ClaudeMdFile, opts Options) *model.Aggregate {
	opts = opts.normalized()

	filtered := FilterByDays(sessions, opts.Days, opts.Now)
	filtered = FilterByProject(filtered, opts.Project)
	filtered = FilterByModel(filtered, opts.Model)

	// Every fold walks this canonical order.
	canon := slices.Clone(filtered)
	SortSessions(canon, SortTotal)

	agg := model.EmptyAggregate()
	agg.GeneratedAt = opts.Now
	if len(claudeMd) > 0 {
		agg.ClaudeMdFiles = slices.Clone(claudeMd)
	}

	var (
		allPrompts = []model.PromptRecord{}
		byProject  = make(map[string][]model.PromptRecord)
	)
	for i := range canon {
		recs := foldPrompts(&canon[i])
		allPrompts = append(allPrompts, recs...)
		byProject[canon[i].Project] = append(byProject[canon[i].Project], recs...)
	}

	agg.DailyUsage = buildDaily(canon, opts.Location)
	var unattributed int64
	agg.ModelBreakdown, unattributed = buildModels(canon)
	agg.ProjectBreakdown = buildProjects(canon, byProject)
	agg.TopPrompts = rankPrompts(allPrompts, topPromptsGlobal)
	agg.ToolAnalytics = buildTools(canon)
	agg.SessionHistogram = buildHistogram(canon)
	agg.ModelTrend = buildTrend(agg.DailyUsage)
	agg.VaguePromptClusters = buildVagueClusters(allPrompts)
	agg.Totals = buildTotals(canon, agg, opts.Now)
	agg.Totals.UnattributedTokens = unattributed

	today := opts.Now.UTC().Format(model.DateLayout)
	for i := range agg.DailyUsage {
		if agg.DailyUsage[i].Date == today {
			d := agg.DailyUsage[i]
			agg.TodayData = &d
			break
		}
	}

	out := append(make([]model.Session, 0, len(canon)), canon...)
	SortSessions(out, opts.Sort)
	agg.Sessions = out

	if !opts.SkipInsights {
		agg.Insights = insight.Generate(insight.Input{
			Sessions: canon,
			Prompts:  allPrompts,
			Totals:   agg.Totals,
			Daily:    agg.DailyUsage,
			Now:      opts.Now,
			Location: opts.Location,
		})
	}
	return agg
}

type dayAccumulator struct {
	bucket   model.DailyBucket
	models   map[string]int64
	hours    [24]int
	projects map[string]int64
}

func buildDaily(sessions []model.Session, loc *time.Location) []model.DailyBucket {
	days := make(map[string]*dayAccumulator)
	for i := range sessions {
		s := &sessions[i]
		if s.Date == model.DateUnknown {
			continue
		}
		d, ok := days[s.Date]
		if !ok {
			d = &dayAccumulator{
				bucket:   model.DailyBucket{Date: s.Date},
				models:   make(map[string]int64),
				projects: make(map[string]int64),
			}
			days[s.Date] = d
		}
		b := &d.bucket
		b.InputTokens += s.InputTokens
		b.OutputTokens += s.OutputTokens
		b.TotalTokens += s.TotalTokens
		b.RawInputTokens += s.RawInputTokens
		b.CacheCreationTokens += s.CacheCreationTokens
		b.CacheReadTokens += s.CacheReadTokens
		b.TotalCost += s.TotalCost
		b.Sessions++
		b.Queries += s.QueryCount
		d.projects[s.Project] += s.TotalTokens

		for _, q := range s.Queries {
			if q.IsAttributable() {
				d.models[q.Model] += q.TotalTokens
			}
			if !q.AssistantTimestamp.IsZero() {
				d.hours[q.AssistantTimestamp.In(loc).Hour()]++
			}
		}
	}

	dates := lo.Keys(days)
	sort.Strings(dates)

	out := make([]model.DailyBucket, 0, len(dates))
	index := make(map[string]int, len(dates))
	for _, date := range dates {
		d := days[date]
		b := d.bucket
		if b.Queries > 0 {
			b.AvgTokensPerQuery = roundDiv(b.TotalTokens, int64(b.Queries))
		}
		b.BusiestHour = busiestHour(d.hours)
		b.TopProject = topKey(d.projects)
		b.ModelBreakdown = modelShares(d.models)
		index[date] = len(out)
		out = append(out, b)
	}

	for i := range out {
		if i > 0 {
			out[i].PrevDayDelta = percentDelta(out[i].TotalTokens, out[i-1].TotalTokens)
		}
		if t, err := time.Parse(model.DateLayout, out[i].Date); err == nil {
			weekAgo := t.AddDate(0, 0, -7).Format(model.DateLayout)
			if j, ok := index[weekAgo]; ok {
				out[i].PrevWeekDelta = percentDelta(out[i].TotalTokens, out[j].TotalTokens)
			}
		}
	}
	return out
}

func busiestHour(hours [24]int) *int {
	best, count := -1, 0
	for h, n := range hours {
		if n > count {
			best, count = h, n
		}
	}
	if best < 0 {
		return nil
	}
	return &best
}

// topKey returns the key with the largest value, smallest key on ties.
func topKey(m map[string]int64) *string {
	if len(m) == 0 {
		return nil
	}
	keys := lo.Keys(m)
	sort.Strings(keys)
	best := keys[0]
	for _, k := range keys[1:] {
		if m[k] > m[best] {
			best = k
		}
	}
	return &best
}

func modelShares(models map[string]int64) []model.ModelShare {
	var sum int64
	for _, v := range models {
		sum += v
	}
	shares := make([]model.ModelShare, 0, len(models))
	for m, tokens := range models {
		shares = append(shares, model.ModelShare{
			Model:  m,
			Tokens: tokens,
			Pct:    int(model.RoundHalfUp(float64(tokens) / float64(max(sum, 1)) * 100)),
		})
	}
	sort.Slice(shares, func(i, j int) bool {
		if shares[i].Tokens != shares[j].Tokens {
			return shares[i].Tokens > shares[j].Tokens
		}
		return shares[i].Model < shares[j].Model
	})
	return shares
}

func percentDelta(cur, prev int64) *int {
	d := int(model.RoundHalfUp(float64(cur-prev) / float64(max(prev, 1)) * 100))
	return &d
}

func roundDiv(n, d int64) int64 {
	if d == 0 {
		return 0
	}
	return int64(model.RoundHalfUp(float64(n) / float64(d)))
}

// buildModels rolls up attributable turns per model and returns the tokens
// of turns that had no model id.
func buildModels(sessions []model.Session) ([]model.ModelBucket, int64) {
	byModel := make(map[string]*model.ModelBucket)
	var unattributed int64
	for i := range sessions {
		for _, q := range sessions[i].Queries {
			if !q.IsAttributable() {
				unattributed += q.TotalTokens
				continue
			}
			mb, ok := byModel[q.Model]
			if !ok {
				mb = &model.ModelBucket{Model: q.Model}
				byModel[q.Model] = mb
			}
			mb.InputTokens += q.InputTokens
			mb.OutputTokens += q.OutputTokens
			mb.TotalTokens += q.TotalTokens
			mb.TotalCost += q.Cost
			mb.QueryCount++
		}
	}

	out := make([]model.ModelBucket, 0, len(byModel))
	for _, mb := range byModel {
		out = append(out, *mb)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].TotalTokens != out[j].TotalTokens {
			return out[i].TotalTokens > out[j].TotalTokens
		}
		return out[i].Model < out[j].Model
	})
	return out, unattributed
}

func buildProjects(sessions []model.Session, prompts map[string][]model.PromptRecord) []model.ProjectBucket {
	type projectAcc struct {
		bucket model.ProjectBucket
		models map[string]*model.ProjectModel
	}
	byProject := make(map[string]*projectAcc)

	for i := range sessions {
		s := &sessions[i]
		p, ok := byProject[s.Project]
		if !ok {
			p = &projectAcc{
				bucket: model.ProjectBucket{Project: s.Project},
				models: make(map[string]*model.ProjectModel),
			}
			byProject[s.Project] = p
		}
		b := &p.bucket
		b.InputTokens += s.InputTokens
		b.OutputTokens += s.OutputTokens
		b.TotalTokens += s.TotalTokens
		b.TotalCost += s.TotalCost
		b.SessionCount++
		b.QueryCount += s.QueryCount
		if s.Date != model.DateUnknown {
			if b.FirstSeen == "" || s.Date < b.FirstSeen {
				b.FirstSeen = s.Date
			}
			if s.Date > b.LastSeen {
				b.LastSeen = s.Date
			}
		}

		for _, q := range s.Queries {
			if !q.IsAttributable() {
				continue
			}
			m, ok := p.models[q.Model]
			if !ok {
				m = &model.ProjectModel{Model: q.Model}
				p.models[q.Model] = m
			}
			m.InputTokens += q.InputTokens
			m.OutputTokens += q.OutputTokens
			m.TotalTokens += q.TotalTokens
			m.QueryCount++
		}
	}

	out := make([]model.ProjectBucket, 0, len(byProject))
	for name, p := range byProject {
		b := p.bucket
		b.AvgSessionTokens = roundDiv(b.TotalTokens, int64(b.SessionCount))

		b.ModelBreakdown = make([]model.ProjectModel, 0, len(p.models))
		for _, m := range p.models {
			b.ModelBreakdown = append(b.ModelBreakdown, *m)
		}
		sort.Slice(b.ModelBreakdown, func(i, j int) bool {
			x, y := b.ModelBreakdown[i], b.ModelBreakdown[j]
			if x.TotalTokens != y.TotalTokens {
				return x.TotalTokens > y.TotalTokens
			}
			return x.Model < y.Model
		})

		b.TopPrompts = rankPrompts(prompts[name], topPromptsProject)
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].TotalTokens != out[j].TotalTokens {
			return out[i].TotalTokens > out[j].TotalTokens
		}
		return out[i].Project < out[j].Project
	})
	return out
}

func buildTools(sessions []model.Session) []model.ToolStat {
	byTool := make(map[string]*model.ToolStat)
	for i := range sessions {
		s := &sessions[i]
		for tool, calls := range s.Tools {
			ts, ok := byTool[tool]
			if !ok {
				ts = &model.ToolStat{Tool: tool}
				byTool[tool] = ts
			}
			ts.TotalCalls += calls
			ts.Sessions++
			ts.Tokens += s.TotalTokens
		}
	}

	out := make([]model.ToolStat, 0, len(byTool))
	for _, ts := range byTool {
		out = append(out, *ts)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].TotalCalls != out[j].TotalCalls {
			return out[i].TotalCalls > out[j].TotalCalls
		}
		return out[i].Tool < out[j].Tool
	})
	return out
}

// histogramBounds are the session-length buckets by turn count. Max 0 is
// unbounded.
var histogramBounds = []model.HistogramBucket{
	{Label: "1-5", Min: 1, Max: 5},
	{Label: "6-20", Min: 6, Max: 20},
	{Label: "21-50", Min: 21, Max: 50},
	{Label: "51-200", Min: 51, Max: 200},
	{Label: "200+", Min: 201},
}

func buildHistogram(sessions []model.Session) []model.HistogramBucket {
	out := slices.Clone(histogramBounds)
	for i := range sessions {
		n := sessions[i].QueryCount
		for j := range out {
			if n >= out[j].Min && (out[j].Max == 0 || n <= out[j].Max) {
				out[j].Count++
				out[j].TotalTokens += sessions[i].TotalTokens
				break
			}
		}
	}
	return out
}

// weekStart returns the Monday of the week containing date.
func weekStart(date string) (string, bool) {
	t, err := time.Parse(model.DateLayout, date)
	if err != nil {
		return "", false
	}
	offset := (int(t.Weekday()) + 6) % 7
	return t.AddDate(0, 0, -offset).Format(model.DateLayout), true
}

func buildTrend(daily []model.DailyBucket) []model.WeekTrend {
	byWeek := make(map[string]map[string]int64)
	for _, d := range daily {
		week, ok := weekStart(d.Date)
		if !ok {
			continue
		}
		models, ok := byWeek[week]
		if !ok {
			models = make(map[string]int64)
			byWeek[week] = models
		}
		for _, share := range d.ModelBreakdown {
			models[share.Model] += share.Tokens
		}
	}

	weeks := lo.Keys(byWeek)
	sort.Strings(weeks)
	out := make([]model.WeekTrend, 0, len(weeks))
	for _, w := range weeks {
		out = append(out, model.WeekTrend{Week: w, Models: byWeek[w]})
	}
	return out
}

// streak counts consecutive active days ending today (UTC).
func streak(daily []model.DailyBucket, now time.Time) int {
	active := make(map[string]bool, len(daily))
	for _, d := range daily {
		active[d.Date] = true
	}
	n := 0
	day := now.UTC()
	for active[day.Format(model.DateLayout)] {
		n++
		day = day.AddDate(0, 0, -1)
	}
	return n
}

func buildTotals(sessions []model.Session, agg *model.Aggregate, now time.Time) model.Totals {
	var t model.Totals
	for i := range sessions {
		s := &sessions[i]
		t.TotalSessions++
		t.TotalQueries += s.QueryCount
		t.TotalTokens += s.TotalTokens
		t.TotalInputTokens += s.InputTokens
		t.TotalOutputTokens += s.OutputTokens
		t.TotalRawInput += s.RawInputTokens
		t.TotalCacheCreate += s.CacheCreationTokens
		t.TotalCacheRead += s.CacheReadTokens
		t.TotalCost += s.TotalCost
	}
	t.CostBreakdown, _ = CostBreakdown(sessions)

	t.AvgTokensPerQuery = roundDiv(t.TotalTokens, int64(t.TotalQueries))
	t.AvgTokensPerSession = roundDiv(t.TotalTokens, int64(t.TotalSessions))

	daily := agg.DailyUsage
	if len(daily) > 0 {
		t.DailyAvg = roundDiv(t.TotalTokens, int64(len(daily)))
		t.DateRange = &model.DateRange{From: daily[0].Date, To: daily[len(daily)-1].Date}
		peak := daily[0]
		for _, d := range daily[1:] {
			if d.TotalTokens > peak.TotalTokens {
				peak = d
			}
		}
		t.PeakDay = &model.PeakDay{Date: peak.Date, TotalTokens: peak.TotalTokens}
	}
	if len(agg.ModelBreakdown) > 0 {
		m := agg.ModelBreakdown[0].Model
		t.MostUsedModel = &m
	}
	if len(agg.ProjectBreakdown) > 0 {
		p := agg.ProjectBreakdown[0].Project
		t.MostExpensiveProject = &p
	}
	t.Streak = streak(daily, now)
	return t
}
