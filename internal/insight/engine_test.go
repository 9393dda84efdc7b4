package insight

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GauravRatnawat/claudetop/internal/model"
)

var baseTime = time.Date(2025, 3, 15, 11, 30, 0, 0, time.UTC)

func strPtr(s string) *string { return &s }

// session builds a session with one prompted turn followed by tool
// continuations, each turn using the given input/output tokens.
func session(id, project, modelID string, start time.Time, inputs []int64, output int64) model.Session {
	qs := make([]model.Query, 0, len(inputs))
	for i, in := range inputs {
		var prompt *string
		if i == 0 {
			prompt = strPtr("prompt " + id)
		}
		qs = append(qs, model.NewQuery(prompt, nil, start.Add(time.Duration(i)*time.Minute), modelID,
			in, 0, 0, output, 0.01, nil))
	}
	last := start
	if len(qs) > 0 {
		last = qs[len(qs)-1].AssistantTimestamp
	}
	return model.NewSession(model.SessionMeta{
		ID: id, Project: project, FirstTimestamp: start, LastTimestamp: last,
	}, qs)
}

func flat(n int, v int64) []int64 {
	out := make([]int64, n)
	for i := range out {
		out[i] = v
	}
	return out
}

func findInsight(ins []model.Insight, id string) (model.Insight, bool) {
	for _, i := range ins {
		if i.ID == id {
			return i, true
		}
	}
	return model.Insight{}, false
}

func TestGenerate_EmptyInput(t *testing.T) {
	got := Generate(Input{})
	require.NotNil(t, got)
	assert.Empty(t, got)
}

func TestVaguePrompts(t *testing.T) {
	prompts := []model.PromptRecord{
		{Prompt: "yes", TotalTokens: 150_000},
		{Prompt: " yes ", TotalTokens: 120_000},
		{Prompt: "ok", TotalTokens: 50_000},
		{Prompt: "please refactor the whole authentication module", TotalTokens: 900_000},
	}
	ins, ok := vaguePrompts(Input{Prompts: prompts})
	require.True(t, ok)
	assert.Equal(t, model.InsightWarning, ins.Type)
	assert.Contains(t, ins.Description, `2 times you sent a short message like "yes"`)
	assert.Contains(t, ins.Description, "270K tokens wasted")
	require.NotNil(t, ins.Action)

	_, ok = vaguePrompts(Input{Prompts: prompts[2:]})
	assert.False(t, ok)
}

func TestMarathonSessions(t *testing.T) {
	var sessions []model.Session
	for i := range 3 {
		sessions = append(sessions, session(fmt.Sprint(i), "p", "claude-sonnet-4", baseTime, flat(201, 10), 0))
	}
	total := int64(3 * 201 * 10 * 2)
	ins, ok := marathonSessions(Input{Sessions: sessions, Totals: model.Totals{TotalTokens: total}})
	require.True(t, ok)
	assert.Equal(t, "Just 3 long conversations used 50% of all tokens", ins.Title)

	_, ok = marathonSessions(Input{Sessions: sessions[:2], Totals: model.Totals{TotalTokens: total}})
	assert.False(t, ok)
}

func TestInputHeavy(t *testing.T) {
	ins, ok := inputHeavy(Input{Totals: model.Totals{TotalTokens: 1000, TotalOutputTokens: 15}})
	require.True(t, ok)
	assert.Equal(t, "Only 1.5% of tokens are Claude actually writing", ins.Title)

	_, ok = inputHeavy(Input{Totals: model.Totals{TotalTokens: 1000, TotalOutputTokens: 20}})
	assert.False(t, ok)
	_, ok = inputHeavy(Input{})
	assert.False(t, ok)
}

func TestModelMismatch(t *testing.T) {
	var sessions []model.Session
	for i := range 3 {
		sessions = append(sessions, session(fmt.Sprint(i), "p", "claude-opus-4-6", baseTime, flat(2, 100), 10))
	}
	ins, ok := modelMismatch(Input{Sessions: sessions})
	require.True(t, ok)
	assert.Equal(t, "3 simple conversations used Opus unnecessarily", ins.Title)
	assert.Contains(t, ins.Description, "660 tokens (~$0.060)")

	sessions[0] = session("x", "p", "claude-sonnet-4", baseTime, flat(2, 100), 10)
	_, ok = modelMismatch(Input{Sessions: sessions})
	assert.False(t, ok)
}

func TestProjectDominance(t *testing.T) {
	var sessions []model.Session
	for i := range 4 {
		sessions = append(sessions, session(fmt.Sprint(i), "-home-u-big", "m", baseTime, flat(1, 1000), 0))
	}
	sessions = append(sessions, session("s", "-home-u-small", "m", baseTime, flat(1, 500), 0))
	ins, ok := projectDominance(Input{Sessions: sessions, Totals: model.Totals{TotalTokens: 4500}})
	require.True(t, ok)
	assert.Equal(t, "89% of tokens went to one project", ins.Title)
	assert.Contains(t, ins.Description, `"big" used 4.0K tokens (89%). Next: 500 tokens.`)
}

func TestVelocity(t *testing.T) {
	up, ok := velocity(Input{Now: baseTime, Daily: []model.DailyBucket{
		{Date: "2025-03-05", TotalTokens: 1000},
		{Date: "2025-03-14", TotalTokens: 2000},
	}})
	require.True(t, ok)
	assert.Equal(t, model.InsightWarning, up.Type)
	assert.Equal(t, "Token usage is up 100% this week", up.Title)
	assert.NotNil(t, up.Action)

	down, ok := velocity(Input{Now: baseTime, Daily: []model.DailyBucket{
		{Date: "2025-03-08", TotalTokens: 1000}, // exactly seven days back: last week
		{Date: "2025-03-15", TotalTokens: 700},
	}})
	require.True(t, ok)
	assert.Equal(t, model.InsightNeutral, down.Type)
	assert.Equal(t, "Token usage is down 30% this week", down.Title)
	assert.Nil(t, down.Action)

	_, ok = velocity(Input{Now: baseTime, Daily: []model.DailyBucket{
		{Date: "2025-03-05", TotalTokens: 1000},
		{Date: "2025-03-14", TotalTokens: 1100},
	}})
	assert.False(t, ok, "10% change stays quiet")
}

func TestBudgetAlert(t *testing.T) {
	in := Input{
		Now:      baseTime,
		Location: time.UTC,
		Totals:   model.Totals{DailyAvg: 1000},
		Daily:    []model.DailyBucket{{Date: "2025-03-15", TotalTokens: 1000}},
	}
	ins, ok := budgetAlert(in)
	require.True(t, ok)
	assert.Equal(t, "Today is on pace to use 100% more tokens than your daily average", ins.Title)
	assert.Contains(t, ins.Description, "in 12h")

	in.Now = time.Date(2025, 3, 15, 3, 0, 0, 0, time.UTC)
	_, ok = budgetAlert(in)
	assert.False(t, ok, "too early in the day")
}

func TestWhatIfSavings(t *testing.T) {
	inputs := append(flat(50, 100), flat(10, 100_000)...)
	var sessions []model.Session
	for i := range 3 {
		sessions = append(sessions, session(fmt.Sprint(i), "p", "claude-sonnet-4", baseTime, inputs, 0))
	}
	ins, ok := whatIfSavings(Input{Sessions: sessions})
	require.True(t, ok)
	assert.Equal(t, "Starting fresh after message 50 could save ~3.0M tokens", ins.Title)
	assert.Contains(t, ins.Description, "Across 3 long conversations")

	_, ok = whatIfSavings(Input{Sessions: sessions[:2]})
	assert.False(t, ok)
}

func TestDayPattern(t *testing.T) {
	var sessions []model.Session
	// Mon 2025-03-10 heavy, Tue and Wed light.
	for i := range 4 {
		sessions = append(sessions, session(fmt.Sprint("mon", i), "p", "m", time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC), flat(1, 5000), 0))
		sessions = append(sessions, session(fmt.Sprint("tue", i), "p", "m", time.Date(2025, 3, 11, 12, 0, 0, 0, time.UTC), flat(1, 1000), 0))
	}
	sessions = append(sessions,
		session("wed0", "p", "m", time.Date(2025, 3, 12, 12, 0, 0, 0, time.UTC), flat(1, 100), 0),
		session("wed1", "p", "m", time.Date(2025, 3, 12, 12, 0, 0, 0, time.UTC), flat(1, 100), 0),
	)
	ins, ok := dayPattern(Input{Sessions: sessions, Location: time.UTC})
	require.True(t, ok)
	assert.Equal(t, "You use Claude the most on Mondays", ins.Title)
	assert.Equal(t, "Monday averages 5.0K tokens/session vs 100 on Wednesdays.", ins.Description)
	assert.Nil(t, ins.Action)
}

func TestGenerate_Order(t *testing.T) {
	got := Generate(Input{
		Now:      baseTime,
		Location: time.UTC,
		Prompts:  []model.PromptRecord{{Prompt: "go", TotalTokens: 200_000}},
		Totals:   model.Totals{TotalTokens: 1000, TotalOutputTokens: 1},
		Daily: []model.DailyBucket{
			{Date: "2025-03-05", TotalTokens: 1000},
			{Date: "2025-03-14", TotalTokens: 2000},
		},
	})
	ids := make([]string, len(got))
	for i, in := range got {
		ids[i] = in.ID
	}
	assert.Equal(t, []string{"vague-prompts", "input-heavy", "velocity"}, ids)

	_, ok := findInsight(got, "budget-alert")
	assert.False(t, ok)
}

func TestContextGrowth(t *testing.T) {
	growing := func(tail int64) []int64 {
		in := flat(51, 100)
		for i := len(in) - 5; i < len(in); i++ {
			in[i] = tail
		}
		return in
	}

	ins, ok := contextGrowth(Input{Sessions: []model.Session{
		session("a", "p", "m", baseTime, growing(201), 0),
	}})
	require.True(t, ok)
	assert.Equal(t, model.InsightWarning, ins.Type)
	assert.Equal(t, "In 1 conversations, messages near the end cost 2.0x more than at the start.", ins.Description)

	_, ok = contextGrowth(Input{Sessions: []model.Session{
		session("a", "p", "m", baseTime, growing(200), 0),
	}})
	assert.False(t, ok, "a ratio of exactly 2 does not fire")

	_, ok = contextGrowth(Input{Sessions: []model.Session{
		session("a", "p", "m", baseTime, growing(1000)[1:], 0),
	}})
	assert.False(t, ok, "50 turns is not long enough")
}

func TestToolHeavy(t *testing.T) {
	build := func(heavy, heavyTurns, light int) []model.Session {
		var ss []model.Session
		for i := range heavy {
			ss = append(ss, session(fmt.Sprint("h", i), "p", "m", baseTime, flat(heavyTurns, 10), 0))
		}
		for i := range light {
			ss = append(ss, session(fmt.Sprint("l", i), "p", "m", baseTime, flat(1, 10), 0))
		}
		return ss
	}

	ins, ok := toolHeavy(Input{Sessions: build(3, 5, 2)})
	require.True(t, ok)
	assert.Equal(t, model.InsightInfo, ins.Type)
	assert.Equal(t, "3 conversations had 4x more tool calls than messages", ins.Title)
	assert.Equal(t, "Claude made ~4 tool calls per message. Used 150 tokens total.", ins.Description)

	_, ok = toolHeavy(Input{Sessions: build(3, 5, 1)})
	assert.False(t, ok, "fewer than 5 sessions overall")
	_, ok = toolHeavy(Input{Sessions: build(3, 4, 2)})
	assert.False(t, ok, "3 tool turns per prompt is not more than 3x")
	_, ok = toolHeavy(Input{Sessions: build(2, 5, 3)})
	assert.False(t, ok, "only 2 heavy sessions")
}

func TestConversationEfficiency(t *testing.T) {
	// Short turns cost 1024 tokens, so the long/short ratio is exact in
	// binary and the rounding edge is tested, not float noise.
	build := func(longPerTurn int64, long int) []model.Session {
		var ss []model.Session
		for i := range 3 {
			ss = append(ss, session(fmt.Sprint("s", i), "p", "m", baseTime, flat(3, 1024), 0))
		}
		for i := range long {
			ss = append(ss, session(fmt.Sprint("l", i), "p", "m", baseTime, flat(81, longPerTurn), 0))
		}
		for i := len(ss); i < 10; i++ {
			ss = append(ss, session(fmt.Sprint("f", i), "p", "m", baseTime, flat(1, 10), 0))
		}
		return ss
	}

	// 1997/1024 = 1.950..., rounds to 2.0.
	ins, ok := conversationEfficiency(Input{Sessions: build(1997, 2)})
	require.True(t, ok)
	assert.Equal(t, model.InsightWarning, ins.Type)
	assert.Equal(t, "Each message costs 2.0x more in long conversations", ins.Title)
	assert.Equal(t, "Short sessions: ~1.0K tokens/message. Long sessions: ~2.0K tokens/message.", ins.Description)

	// 1996/1024 = 1.949..., rounds to 1.9.
	_, ok = conversationEfficiency(Input{Sessions: build(1996, 2)})
	assert.False(t, ok)

	_, ok = conversationEfficiency(Input{Sessions: build(4000, 1)})
	assert.False(t, ok, "needs two long sessions")
	_, ok = conversationEfficiency(Input{Sessions: build(4000, 2)[:9]})
	assert.False(t, ok, "needs ten sessions")
}

func TestHeavyContext(t *testing.T) {
	build := func(firstInputs ...int64) []model.Session {
		var ss []model.Session
		for i, in := range firstInputs {
			ss = append(ss, session(fmt.Sprint(i), "p", "m", baseTime, []int64{in, 10}, 0))
		}
		return ss
	}

	ins, ok := heavyContext(Input{Sessions: build(50_001, 50_001, 50_001, 50_001, 50_001)})
	require.True(t, ok)
	assert.Equal(t, model.InsightInfo, ins.Type)
	assert.Equal(t, "5 conversations started with 50K+ tokens of context", ins.Title)

	_, ok = heavyContext(Input{Sessions: build(50_001, 50_001, 50_001, 50_001, 50_000)})
	assert.False(t, ok, "50,000 exactly is not heavy")
	_, ok = heavyContext(Input{Sessions: build(90_000, 90_000, 90_000, 90_000)})
	assert.False(t, ok, "fewer than 5 sessions")
}
