package nav

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GauravRatnawat/claudetop/internal/model"
	"github.com/GauravRatnawat/claudetop/internal/pipeline"
)

func mkSession(id, project, modelID string, day int, tokens ...int64) model.Session {
	start := time.Date(2025, 6, day, 9, 0, 0, 0, time.UTC)
	qs := make([]model.Query, 0, len(tokens))
	for i, tk := range tokens {
		p := "prompt for " + id
		qs = append(qs, model.NewQuery(&p, nil, start.Add(time.Duration(i)*time.Minute), modelID, tk, 0, 0, 0, 0, nil))
	}
	return model.NewSession(model.SessionMeta{
		ID: id, Project: project, FirstTimestamp: start, LastTimestamp: start.Add(time.Duration(len(qs)) * time.Minute),
	}, qs)
}

func fixture() *model.Aggregate {
	sessions := []model.Session{
		mkSession("s1", "-Users-me-alpha", "claude-opus-4-6", 1, 100, 200, 300),
		mkSession("s2", "-Users-me-beta", "claude-haiku-3-5", 2, 50),
		mkSession("s3", "-Users-me-alpha", "claude-sonnet-4-5", 3, 500, 10),
	}
	return pipeline.Build(sessions, nil, pipeline.Options{
		Now:      time.Date(2025, 6, 3, 12, 0, 0, 0, time.UTC),
		Location: time.UTC,
	})
}

func apply(s State, data *model.Aggregate, evs ...Event) State {
	for _, ev := range evs {
		s = Apply(s, ev, data)
	}
	return s
}

func TestBackUnwindsOneLayerAtATime(t *testing.T) {
	data := fixture()
	s := apply(New(Settings{}), data,
		Switch(Sessions),
		Key(BeginSearch), Search("alpha"),
		Key(Enter),
		Key(ToggleHelp),
	)
	require.True(t, s.ShowHelp)
	require.NotNil(t, s.Drilldown)
	require.Equal(t, "alpha", s.SessionSearch)

	s = Apply(s, Key(Back), data)
	assert.False(t, s.ShowHelp)
	assert.NotNil(t, s.Drilldown, "only help closes")
	assert.Equal(t, "alpha", s.SessionSearch)

	s = Apply(s, Key(Back), data)
	assert.Nil(t, s.Drilldown)
	assert.Equal(t, "alpha", s.SessionSearch, "search survives the second back")

	s = Apply(s, Key(Back), data)
	assert.Equal(t, "", s.SessionSearch)
}

func TestBackOrderBelowSearch(t *testing.T) {
	data := fixture()
	s := New(Settings{})
	s.PromptSearch = "x"
	s.ModelFilter = "opus"

	s = Apply(s, Key(Back), data)
	assert.Equal(t, "", s.PromptSearch)
	assert.Equal(t, "opus", s.ModelFilter)

	s = Apply(s, Key(Back), data)
	assert.Equal(t, "", s.ModelFilter)

	same := Apply(s, Key(Back), data)
	assert.Equal(t, s, same, "nothing left to unwind")
}

func TestMovementClamps(t *testing.T) {
	data := fixture()
	s := New(Settings{View: Sessions})

	s = Apply(s, Key(MoveUp), data)
	assert.Equal(t, 0, s.Selected())

	s = apply(s, data, Key(MoveDown), Key(MoveDown), Key(MoveDown), Key(MoveDown))
	assert.Equal(t, 2, s.Selected())

	s = Apply(s, Key(Top), data)
	assert.Equal(t, 0, s.Selected())
	s = Apply(s, Key(Bottom), data)
	assert.Equal(t, 2, s.Selected())

	dash := Apply(New(Settings{}), Key(MoveDown), data)
	assert.Equal(t, 0, dash.Selected(), "dashboard has no list")

	an := apply(New(Settings{View: Analytics}), data, Key(Bottom))
	assert.Equal(t, len(AnalyticsSections)-1, an.Selected())
}

func TestDrilldownCursor(t *testing.T) {
	data := fixture()
	s := apply(New(Settings{}), data, Switch(Sessions), Key(Enter))
	require.NotNil(t, s.Drilldown)

	ses := DrilldownSession(data, s)
	require.NotNil(t, ses)
	assert.Equal(t, "s1", ses.ID, "largest session first")

	s = apply(s, data, Key(MoveDown), Key(MoveDown), Key(MoveDown), Key(MoveDown))
	assert.Equal(t, 2, s.Drilldown.Cursor)
	assert.Equal(t, 0, s.Selected(), "list selection does not move in drilldown")

	s = Apply(s, Key(Top), data)
	assert.Equal(t, 0, s.Drilldown.Cursor)

	again := Apply(s, Key(Enter), data)
	assert.Equal(t, s.Drilldown, again.Drilldown)
}

func TestSortCycleAndReset(t *testing.T) {
	data := fixture()
	s := apply(New(Settings{View: Sessions}), data, Key(MoveDown))
	require.Equal(t, 1, s.Selected())

	var seen []pipeline.SortKey
	for range 4 {
		s = Apply(s, Key(CycleSort), data)
		seen = append(seen, s.Sort)
		assert.Equal(t, 0, s.Selected())
	}
	assert.Equal(t, []pipeline.SortKey{"date", "queries", "model", "total"}, seen)

	other := Apply(New(Settings{View: Daily}), Key(CycleSort), data)
	assert.Equal(t, pipeline.SortTotal, other.Sort, "cycling only applies to sessions")

	s = Apply(s, SortBy(pipeline.SortCost), data)
	assert.Equal(t, pipeline.SortCost, s.Sort)
	s = Apply(s, Key(CycleSort), data)
	assert.Equal(t, pipeline.SortTotal, s.Sort)
}

func TestModelFilterToggle(t *testing.T) {
	data := fixture()
	s := New(Settings{View: Sessions})

	s = Apply(s, FilterModel("opus"), data)
	assert.Equal(t, "opus", s.ModelFilter)
	list := SessionList(data, s)
	require.Len(t, list, 1)
	assert.Equal(t, "s1", list[0].ID)

	s = Apply(s, FilterModel("haiku"), data)
	assert.Equal(t, "haiku", s.ModelFilter)

	s = Apply(s, FilterModel("haiku"), data)
	assert.Equal(t, "", s.ModelFilter)
	assert.Len(t, SessionList(data, s), 3)
}

func TestDailyLeftRight(t *testing.T) {
	data := fixture()
	s := New(Settings{View: Daily})

	s = Apply(s, Key(MoveRight), data)
	assert.Equal(t, 0, s.Selected(), "right is newer and clamps at 0")

	s = apply(s, data, Key(MoveLeft), Key(MoveLeft), Key(MoveLeft))
	assert.Equal(t, 2, s.Selected())
	days := DailyList(data)
	assert.Equal(t, "2025-06-01", days[s.Selected()].Date)

	s = Apply(s, Key(Enter), data)
	assert.True(t, s.DailyExpanded["2025-06-01"])

	other := Apply(New(Settings{View: Sessions}), Key(MoveLeft), data)
	assert.Equal(t, 0, other.Selected())
}

func TestDailyExpandedIsCopyOnWrite(t *testing.T) {
	data := fixture()
	before := New(Settings{View: Daily})
	after := Apply(before, Key(Enter), data)
	assert.Len(t, after.DailyExpanded, 1)
	assert.Empty(t, before.DailyExpanded)

	collapsed := Apply(after, Key(Enter), data)
	assert.Empty(t, collapsed.DailyExpanded)
	assert.Len(t, after.DailyExpanded, 1)
}

func TestSwitchViewResets(t *testing.T) {
	data := fixture()
	s := apply(New(Settings{}), data, Switch(Sessions), Key(MoveDown), Key(Enter), Key(ToggleHelp))
	require.NotNil(t, s.Drilldown)

	s = Apply(s, Switch(Projects), data)
	assert.Equal(t, Projects, s.View)
	assert.Nil(t, s.Drilldown)
	assert.False(t, s.ShowHelp)

	s = Apply(s, Switch(Sessions), data)
	assert.Equal(t, 0, s.Selected())

	s = Apply(s, Key(NextView), data)
	assert.Equal(t, Projects, s.View)

	s = apply(s, data, Switch(Analytics), Key(NextView))
	assert.Equal(t, Dashboard, s.View)

	s = apply(s, data, Key(ToggleHelp), Key(NextView))
	assert.Equal(t, Dashboard, s.View, "tab is ignored while help is open")
}

func TestProjectDrawer(t *testing.T) {
	data := fixture()
	s := apply(New(Settings{View: Projects}), data, Key(Enter))
	assert.Equal(t, data.ProjectBreakdown[0].Project, s.ExpandedProject)

	s = Apply(s, Key(Enter), data)
	assert.Equal(t, "", s.ExpandedProject)
}

func TestSearch(t *testing.T) {
	data := fixture()
	s := apply(New(Settings{View: Prompts}), data, Key(BeginSearch))
	assert.Equal(t, SearchPrompts, s.Searching)

	s = Apply(s, Search("  beta  "), data)
	assert.Equal(t, SearchNone, s.Searching)
	assert.Equal(t, "beta", s.PromptSearch)
	list := PromptList(data, s)
	require.Len(t, list, 1)
	assert.Equal(t, "s2", list[0].SessionID)

	s = apply(s, data, Key(BeginSearch), Key(CancelSearch))
	assert.Equal(t, SearchNone, s.Searching)
	assert.Equal(t, "beta", s.PromptSearch)

	ignored := Apply(New(Settings{View: Daily}), Key(BeginSearch), data)
	assert.Equal(t, SearchNone, ignored.Searching)
}

func TestRefreshAndDataLoaded(t *testing.T) {
	data := fixture()
	defaults := Settings{View: Sessions, Sort: pipeline.SortDate}
	s := apply(New(defaults), data, Key(MoveDown), Key(MoveDown), FilterModel("opus"), Switch(Projects))

	soft := Apply(s, Event{Kind: Refresh, Soft: true}, data)
	assert.True(t, soft.Loading)
	assert.Equal(t, Projects, soft.View)

	hard := Apply(s, Key(Refresh), data)
	assert.True(t, hard.Loading)
	assert.Equal(t, Sessions, hard.View)
	assert.Equal(t, pipeline.SortDate, hard.Sort)
	assert.Equal(t, "", hard.ModelFilter)

	// Fewer sessions after the reload: selection and drilldown settle.
	s = apply(New(Settings{View: Sessions}), data, Key(Bottom), Key(Enter))
	require.NotNil(t, s.Drilldown)
	smaller := pipeline.Build(data.Sessions[:1], nil, pipeline.Options{Now: data.GeneratedAt})
	if smaller.Sessions[0].Key() == s.Drilldown.SessionKey {
		t.Fatal("fixture should drop the drilled session")
	}
	s = Apply(s, Key(DataLoaded), smaller)
	assert.False(t, s.Loading)
	assert.Equal(t, 0, s.Selected())
	assert.Nil(t, s.Drilldown)
}

func TestApplyDoesNotMutateAggregate(t *testing.T) {
	data := fixture()
	before := len(data.Sessions)
	first := data.Sessions[0].ID
	_ = apply(New(Settings{}), data, Switch(Sessions), Key(CycleSort), Key(CycleSort), FilterModel("opus"), Key(Enter))
	assert.Len(t, data.Sessions, before)
	assert.Equal(t, first, data.Sessions[0].ID)
}

func TestViewString(t *testing.T) {
	assert.Equal(t, "Dashboard", Dashboard.String())
	assert.Equal(t, "Analytics", Analytics.String())
	assert.Equal(t, "View(?)", View(9).String())
}
