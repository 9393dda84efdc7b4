package pipeline

import (
	"encoding/json"
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GauravRatnawat/claudetop/internal/config"
	"github.com/GauravRatnawat/claudetop/internal/model"
)

var now = time.Date(2025, 6, 10, 15, 0, 0, 0, time.UTC)

type turn struct {
	prompt  string // empty means tool continuation
	modelID string
	input   int64
	output  int64
	tools   []string
}

func mkSession(id, project string, start time.Time, turns ...turn) model.Session {
	qs := make([]model.Query, 0, len(turns))
	for i, tr := range turns {
		var prompt *string
		if tr.prompt != "" {
			p := tr.prompt
			prompt = &p
		}
		qs = append(qs, model.NewQuery(prompt, nil, start.Add(time.Duration(i)*time.Minute), tr.modelID,
			tr.input, 0, 0, tr.output, config.CalculateCost(tr.modelID, tr.input, 0, 0, tr.output), tr.tools))
	}
	last := start
	if len(qs) > 0 {
		last = qs[len(qs)-1].AssistantTimestamp
	}
	return model.NewSession(model.SessionMeta{
		ID: id, Project: project, FirstTimestamp: start, LastTimestamp: last,
	}, qs)
}

func day(offset int) time.Time {
	return now.AddDate(0, 0, offset).Add(-time.Hour)
}

func corpus() []model.Session {
	return []model.Session{
		mkSession("a", "-Users-me-alpha", day(0),
			turn{prompt: "fix it", modelID: "claude-haiku-3-5", input: 5, output: 2, tools: []string{"Read"}},
			turn{modelID: "claude-haiku-3-5", input: 100, output: 50},
			turn{prompt: "thanks", modelID: "claude-haiku-3-5", input: 3, output: 1},
		),
		mkSession("b", "-Users-me-alpha", day(-1),
			turn{prompt: "write the parser", modelID: "claude-opus-4-6", input: 1000, output: 400, tools: []string{"Edit", "Read"}},
			turn{modelID: model.ModelUnknown, input: 50, output: 0},
		),
		mkSession("c", "-Users-me-beta", day(-3),
			turn{prompt: "continue", modelID: "claude-sonnet-4-5", input: 300, output: 100},
		),
	}
}

func TestBuild_SumInvariant(t *testing.T) {
	agg := Build(corpus(), nil, Options{Now: now, Location: time.UTC})

	var models int64
	for _, m := range agg.ModelBreakdown {
		models += m.TotalTokens
	}
	assert.Equal(t, agg.Totals.TotalTokens, models+agg.Totals.UnattributedTokens)
	assert.Equal(t, int64(50), agg.Totals.UnattributedTokens)

	var daily, projects, sessions int64
	for _, d := range agg.DailyUsage {
		daily += d.TotalTokens
	}
	for _, p := range agg.ProjectBreakdown {
		projects += p.TotalTokens
	}
	for _, s := range agg.Sessions {
		sessions += s.TotalTokens
	}
	assert.Equal(t, agg.Totals.TotalTokens, daily)
	assert.Equal(t, agg.Totals.TotalTokens, projects)
	assert.Equal(t, agg.Totals.TotalTokens, sessions)
	assert.Equal(t, int64(2011), agg.Totals.TotalTokens)

	cb := agg.Totals.CostBreakdown
	assert.InDelta(t, agg.Totals.TotalCost, cb.Input+cb.CacheWrite+cb.CacheRead+cb.Output, 1e-9)
}

func TestBuild_Idempotent(t *testing.T) {
	opts := Options{Now: now, Location: time.UTC}
	first := Build(corpus(), nil, opts)
	second := Build(corpus(), nil, opts)

	assert.True(t, reflect.DeepEqual(first, second))

	a, err := json.Marshal(first)
	require.NoError(t, err)
	b, err := json.Marshal(second)
	require.NoError(t, err)
	assert.Equal(t, string(a), string(b))
}

func TestBuild_JSONIgnoresBuildClock(t *testing.T) {
	first := Build(corpus(), nil, Options{Now: now, Location: time.UTC})
	second := Build(corpus(), nil, Options{Now: now.Add(1500 * time.Millisecond), Location: time.UTC})
	require.NotEqual(t, first.GeneratedAt, second.GeneratedAt)

	a, err := json.Marshal(first)
	require.NoError(t, err)
	b, err := json.Marshal(second)
	require.NoError(t, err)
	assert.Equal(t, string(a), string(b))
	assert.NotContains(t, string(a), "generatedAt")
}

func TestBuild_DoesNotMutateInput(t *testing.T) {
	in := corpus()
	before := make([]string, len(in))
	for i, s := range in {
		before[i] = s.ID
	}
	_ = Build(in, nil, Options{Now: now, Sort: SortDate})
	for i, s := range in {
		assert.Equal(t, before[i], s.ID)
	}
}

func TestBuild_Streak(t *testing.T) {
	agg := Build(corpus(), nil, Options{Now: now, Location: time.UTC})
	assert.Equal(t, 2, agg.Totals.Streak, "today and yesterday, then a gap")

	agg = Build(corpus()[2:], nil, Options{Now: now, Location: time.UTC})
	assert.Equal(t, 0, agg.Totals.Streak)
}

func TestBuild_DayOverDay(t *testing.T) {
	sessions := []model.Session{
		mkSession("d1", "p", day(-1), turn{prompt: "x", modelID: "claude-sonnet-4", input: 1000}),
		mkSession("d2", "p", day(0), turn{prompt: "y", modelID: "claude-sonnet-4", input: 1500}),
	}
	agg := Build(sessions, nil, Options{Now: now, Location: time.UTC})
	require.Len(t, agg.DailyUsage, 2)
	assert.Nil(t, agg.DailyUsage[0].PrevDayDelta)
	require.NotNil(t, agg.DailyUsage[1].PrevDayDelta)
	assert.Equal(t, 50, *agg.DailyUsage[1].PrevDayDelta)

	require.NotNil(t, agg.TodayData)
	assert.Equal(t, "2025-06-10", agg.TodayData.Date)
	require.NotNil(t, agg.TodayData.BusiestHour)
	assert.Equal(t, 14, *agg.TodayData.BusiestHour)
}

func TestBuild_PromptFold(t *testing.T) {
	agg := Build(corpus()[:1], nil, Options{Now: now, Location: time.UTC})
	require.Len(t, agg.TopPrompts, 2)

	top := agg.TopPrompts[0]
	assert.Equal(t, "fix it", top.Prompt)
	assert.Equal(t, int64(157), top.TotalTokens)
	assert.Equal(t, 1, top.Continuations)
	assert.Equal(t, "claude-haiku-3-5", top.Model)
	assert.Equal(t, map[string]int{"Read": 1}, top.ToolCounts)

	assert.Equal(t, "thanks", agg.TopPrompts[1].Prompt)
	assert.Equal(t, int64(4), agg.TopPrompts[1].TotalTokens)
}

func TestBuild_Rollups(t *testing.T) {
	agg := Build(corpus(), nil, Options{Now: now, Location: time.UTC})

	require.Len(t, agg.ProjectBreakdown, 2)
	alpha := agg.ProjectBreakdown[0]
	assert.Equal(t, "-Users-me-alpha", alpha.Project)
	assert.Equal(t, 2, alpha.SessionCount)
	assert.Equal(t, "2025-06-09", alpha.FirstSeen)
	assert.Equal(t, "2025-06-10", alpha.LastSeen)

	require.NotEmpty(t, agg.ToolAnalytics)
	assert.Equal(t, "Read", agg.ToolAnalytics[0].Tool)
	assert.Equal(t, 2, agg.ToolAnalytics[0].TotalCalls)
	assert.Equal(t, 2, agg.ToolAnalytics[0].Sessions)

	require.Len(t, agg.SessionHistogram, 5)
	assert.Equal(t, 3, agg.SessionHistogram[0].Count)

	require.NotEmpty(t, agg.VaguePromptClusters)
	keys := make([]string, 0, len(agg.VaguePromptClusters))
	for _, c := range agg.VaguePromptClusters {
		keys = append(keys, c.Key)
	}
	assert.ElementsMatch(t, []string{"fix it", "continue"}, keys)

	require.NotNil(t, agg.Totals.MostUsedModel)
	assert.Equal(t, "claude-opus-4-6", *agg.Totals.MostUsedModel)
	require.NotNil(t, agg.Totals.DateRange)
	assert.Equal(t, "2025-06-07", agg.Totals.DateRange.From)
}

func TestBuild_TrendWeeksStartMonday(t *testing.T) {
	agg := Build(corpus(), nil, Options{Now: now, Location: time.UTC})
	require.Len(t, agg.ModelTrend, 2)
	// 2025-06-07 is a Saturday, 2025-06-09 a Monday.
	assert.Equal(t, "2025-06-02", agg.ModelTrend[0].Week)
	assert.Equal(t, "2025-06-09", agg.ModelTrend[1].Week)
}

func TestBuild_EmptyCorpus(t *testing.T) {
	agg := Build(nil, nil, Options{Now: now})
	assert.Empty(t, agg.Sessions)
	assert.NotNil(t, agg.Sessions)
	assert.NotNil(t, agg.Insights)
	assert.Nil(t, agg.TodayData)
	assert.Equal(t, int64(0), agg.Totals.TotalTokens)
	assert.Nil(t, agg.Totals.DateRange)
	assert.Len(t, agg.SessionHistogram, 5)
}

func TestBuild_Filters(t *testing.T) {
	agg := Build(corpus(), nil, Options{Now: now, Days: 2})
	assert.Len(t, agg.Sessions, 2)

	agg = Build(corpus(), nil, Options{Now: now, Project: "BETA"})
	require.Len(t, agg.Sessions, 1)
	assert.Equal(t, "c", agg.Sessions[0].ID)

	agg = Build(corpus(), nil, Options{Now: now, Model: "opus"})
	require.Len(t, agg.Sessions, 1)
	assert.Equal(t, "b", agg.Sessions[0].ID)

	agg = Build(corpus(), nil, Options{Now: now, SkipInsights: true})
	assert.Empty(t, agg.Insights)
}

func TestFilterByDays_DropsUndated(t *testing.T) {
	undated := model.NewSession(model.SessionMeta{ID: "u", Project: "p"}, nil)
	kept := FilterByDays([]model.Session{undated, corpus()[0]}, 7, now)
	require.Len(t, kept, 1)
	assert.Equal(t, "a", kept[0].ID)

	assert.Len(t, FilterByDays([]model.Session{undated}, 0, now), 1)
}

func TestSortSessions(t *testing.T) {
	sessions := corpus()

	SortSessions(sessions, SortDate)
	assert.Equal(t, []string{"a", "b", "c"}, ids(sessions))

	SortSessions(sessions, SortTotal)
	assert.Equal(t, []string{"b", "c", "a"}, ids(sessions))

	SortSessions(sessions, SortModel)
	assert.Equal(t, "a", sessions[0].ID, "claude-haiku sorts first")

	tied := []model.Session{
		mkSession("z", "p2", day(0), turn{prompt: "x", modelID: "m", input: 10}),
		mkSession("y", "p1", day(0), turn{prompt: "x", modelID: "m", input: 10}),
		mkSession("x", "p1", day(0), turn{prompt: "x", modelID: "m", input: 10}),
	}
	SortSessions(tied, SortQueries)
	assert.Equal(t, []string{"x", "y", "z"}, ids(tied))
}

func ids(sessions []model.Session) []string {
	out := make([]string, len(sessions))
	for i, s := range sessions {
		out[i] = s.ID
	}
	return out
}

func TestParseSortKey(t *testing.T) {
	for in, want := range map[string]SortKey{
		"":        SortTotal,
		"tokens":  SortTotal,
		"TOTAL":   SortTotal,
		"date":    SortDate,
		"queries": SortQueries,
		"model":   SortModel,
		"cost":    SortCost,
	} {
		got, err := ParseSortKey(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseSortKey("size")
	assert.EqualError(t, err, `unknown sort key "size" (want tokens|date|queries|model|cost)`)
}

func TestCostBreakdown_PerModel(t *testing.T) {
	_, rows := CostBreakdown(corpus())
	require.NotEmpty(t, rows)
	assert.Equal(t, "claude-opus-4-6", rows[0].Model)
	for i := 1; i < len(rows); i++ {
		assert.GreaterOrEqual(t, rows[i-1].Total, rows[i].Total)
	}
}
