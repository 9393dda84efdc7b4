// Package nav is the interactive navigation state machine. Transitions are
// pure: Apply takes a State and an Event and returns the next State without
// I/O and without touching the aggregate it reads list lengths from.
package nav

import (
	"maps"

	"github.com/GauravRatnawat/claudetop/internal/pipeline"
)

// View is one of the top-level screens.
type View int

// Views, in tab order.
const (
	Dashboard View = iota
	Daily
	Sessions
	Projects
	Prompts
	Insights
	Analytics
)

// ViewCount is the number of views.
const ViewCount = 7

var viewLabels = [ViewCount]string{
	"Dashboard", "Daily", "Sessions", "Projects", "Prompts", "Insights", "Analytics",
}

func (v View) String() string {
	if v < 0 || int(v) >= ViewCount {
		return "View(?)"
	}
	return viewLabels[v]
}

// SearchTarget is the list an open search box filters.
type SearchTarget int

// Search targets.
const (
	SearchNone SearchTarget = iota
	SearchSessions
	SearchPrompts
)

// Drilldown is the per-turn overlay for one session.
type Drilldown struct {
	SessionKey string
	Cursor     int
}

// Settings is the startup configuration a hard refresh returns to.
type Settings struct {
	View        View
	Sort        pipeline.SortKey
	ModelFilter string
}

// SortCycle is the order the sort key rotates through.
var SortCycle = []pipeline.SortKey{
	pipeline.SortTotal,
	pipeline.SortDate,
	pipeline.SortQueries,
	pipeline.SortModel,
}

// State is everything the UI needs to know about where the user is.
// It holds indices and filters only, never aggregate records.
type State struct {
	View      View
	Selection [ViewCount]int

	SessionSearch string
	PromptSearch  string
	ModelFilter   string
	Sort          pipeline.SortKey

	ExpandedProject string
	// DailyExpanded is copy-on-write; never mutate it in place.
	DailyExpanded map[string]bool

	Drilldown *Drilldown
	ShowHelp  bool
	Searching SearchTarget
	Loading   bool

	Defaults Settings
}

// New returns the startup state for the given settings.
func New(defaults Settings) State {
	if defaults.Sort == "" {
		defaults.Sort = pipeline.SortTotal
	}
	return State{
		View:          defaults.View,
		Sort:          defaults.Sort,
		ModelFilter:   defaults.ModelFilter,
		DailyExpanded: map[string]bool{},
		Defaults:      defaults,
	}
}

// Selected is the selection index of the active view.
func (s State) Selected() int {
	return s.Selection[s.View]
}

// InDrilldown reports whether the session overlay is open.
func (s State) InDrilldown() bool {
	return s.Drilldown != nil
}

func (s *State) toggleDaily(date string) {
	next := maps.Clone(s.DailyExpanded)
	if next == nil {
		next = map[string]bool{}
	}
	if next[date] {
		delete(next, date)
	} else {
		next[date] = true
	}
	s.DailyExpanded = next
}

func (s *State) setDrilldownCursor(cursor int) {
	if s.Drilldown == nil {
		return
	}
	s.Drilldown = &Drilldown{SessionKey: s.Drilldown.SessionKey, Cursor: cursor}
}

func clamp(v, low, high int) int {
	if high < low {
		return low
	}
	return min(max(v, low), high)
}
