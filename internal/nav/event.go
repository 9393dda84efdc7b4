package nav

import (
	"strings"

	"github.com/samber/lo"

	"github.com/GauravRatnawat/claudetop/internal/model"
	"github.com/GauravRatnawat/claudetop/internal/pipeline"
)

// Kind enumerates the events the state machine understands.
type Kind int

// Event kinds.
const (
	MoveUp Kind = iota
	MoveDown
	MoveLeft
	MoveRight
	Top
	Bottom
	Enter
	Back
	SwitchView
	NextView
	CycleSort
	SetSort
	ToggleModelFilter
	BeginSearch
	SetSearch
	CancelSearch
	ToggleHelp
	Refresh
	DataLoaded
)

// Event is one discrete input. Only the payload field matching Kind is read.
type Event struct {
	Kind  Kind
	View  View             // SwitchView
	Sort  pipeline.SortKey // SetSort
	Model string           // ToggleModelFilter
	Query string           // SetSearch
	// Soft keeps the current navigation on Refresh. File-watch reloads use
	// it; an explicit refresh does not.
	Soft bool
}

// Key is an event with no payload.
func Key(k Kind) Event { return Event{Kind: k} }

// Switch selects view v.
func Switch(v View) Event { return Event{Kind: SwitchView, View: v} }

// Search submits q to the open search box.
func Search(q string) Event { return Event{Kind: SetSearch, Query: q} }

// FilterModel toggles the sessions model filter to m.
func FilterModel(m string) Event { return Event{Kind: ToggleModelFilter, Model: m} }

// SortBy sets the sort key directly.
func SortBy(k pipeline.SortKey) Event { return Event{Kind: SetSort, Sort: k} }

// Apply returns the state after ev. data is the aggregate currently on
// screen; it may be nil while loading and is only read.
func Apply(s State, ev Event, data *model.Aggregate) State {
	switch ev.Kind {
	case MoveUp, MoveDown:
		return move(s, ev.Kind, data)
	case MoveLeft, MoveRight:
		return moveDaily(s, ev.Kind, data)
	case Top:
		s.Selection[s.View] = 0
		s.setDrilldownCursor(0)
	case Bottom:
		s.Selection[s.View] = max(0, ListLen(s.View, data, s)-1)
		if ses := DrilldownSession(data, s); ses != nil {
			s.setDrilldownCursor(max(0, len(ses.Queries)-1))
		}
	case Enter:
		return enter(s, data)
	case Back:
		return back(s)
	case SwitchView:
		if ev.View < 0 || int(ev.View) >= ViewCount {
			return s
		}
		s.View = ev.View
		s.Selection[s.View] = 0
		s.Drilldown = nil
		s.ShowHelp = false
	case NextView:
		if s.ShowHelp {
			return s
		}
		s.View = (s.View + 1) % ViewCount
		s.Selection[s.View] = 0
		s.Drilldown = nil
	case CycleSort:
		if s.View != Sessions {
			return s
		}
		i := lo.IndexOf(SortCycle, s.Sort)
		s.Sort = SortCycle[(i+1)%len(SortCycle)]
		s.Selection[Sessions] = 0
	case SetSort:
		if ev.Sort == "" {
			return s
		}
		s.Sort = ev.Sort
		s.Selection[Sessions] = 0
	case ToggleModelFilter:
		if s.View != Sessions || ev.Model == "" {
			return s
		}
		if s.ModelFilter == ev.Model {
			s.ModelFilter = ""
		} else {
			s.ModelFilter = ev.Model
		}
		s.Selection[Sessions] = 0
	case BeginSearch:
		switch s.View {
		case Sessions:
			s.Searching = SearchSessions
		case Prompts:
			s.Searching = SearchPrompts
		}
	case SetSearch:
		return submitSearch(s, ev.Query)
	case CancelSearch:
		s.Searching = SearchNone
	case ToggleHelp:
		s.ShowHelp = !s.ShowHelp
	case Refresh:
		if ev.Soft {
			s.Loading = true
			return s
		}
		next := New(s.Defaults)
		next.Loading = true
		return next
	case DataLoaded:
		return settle(s, data)
	}
	return s
}

func move(s State, k Kind, data *model.Aggregate) State {
	delta := 1
	if k == MoveUp {
		delta = -1
	}
	if s.Drilldown != nil {
		ses := DrilldownSession(data, s)
		if ses == nil {
			return s
		}
		s.setDrilldownCursor(clamp(s.Drilldown.Cursor+delta, 0, len(ses.Queries)-1))
		return s
	}
	n := ListLen(s.View, data, s)
	s.Selection[s.View] = clamp(s.Selection[s.View]+delta, 0, n-1)
	return s
}

// moveDaily steps over the newest-first day list: left is older.
func moveDaily(s State, k Kind, data *model.Aggregate) State {
	if s.View != Daily || s.Drilldown != nil {
		return s
	}
	delta := 1
	if k == MoveRight {
		delta = -1
	}
	n := ListLen(Daily, data, s)
	s.Selection[Daily] = clamp(s.Selection[Daily]+delta, 0, n-1)
	return s
}

func enter(s State, data *model.Aggregate) State {
	if data == nil {
		return s
	}
	i := s.Selection[s.View]
	switch s.View {
	case Sessions:
		if s.Drilldown != nil {
			return s
		}
		if ses := SelectedSession(data, s); ses != nil {
			s.Drilldown = &Drilldown{SessionKey: ses.Key()}
		}
	case Projects:
		if i < 0 || i >= len(data.ProjectBreakdown) {
			return s
		}
		p := data.ProjectBreakdown[i].Project
		if s.ExpandedProject == p {
			s.ExpandedProject = ""
		} else {
			s.ExpandedProject = p
		}
	case Daily:
		days := DailyList(data)
		if i < 0 || i >= len(days) {
			return s
		}
		s.toggleDaily(days[i].Date)
	}
	return s
}

// back unwinds exactly one layer.
func back(s State) State {
	switch {
	case s.ShowHelp:
		s.ShowHelp = false
	case s.Drilldown != nil:
		s.Drilldown = nil
	case s.ExpandedProject != "":
		s.ExpandedProject = ""
	case len(s.DailyExpanded) > 0:
		s.DailyExpanded = map[string]bool{}
	case s.SessionSearch != "":
		s.SessionSearch = ""
		s.Selection[Sessions] = 0
	case s.PromptSearch != "":
		s.PromptSearch = ""
		s.Selection[Prompts] = 0
	case s.ModelFilter != "":
		s.ModelFilter = ""
		s.Selection[Sessions] = 0
	}
	return s
}

func submitSearch(s State, q string) State {
	q = strings.TrimSpace(q)
	target := s.Searching
	if target == SearchNone {
		switch s.View {
		case Sessions:
			target = SearchSessions
		case Prompts:
			target = SearchPrompts
		}
	}
	switch target {
	case SearchSessions:
		s.SessionSearch = q
		s.Selection[Sessions] = 0
	case SearchPrompts:
		s.PromptSearch = q
		s.Selection[Prompts] = 0
	}
	s.Searching = SearchNone
	return s
}

// settle clears Loading and pulls every index back inside the new data.
func settle(s State, data *model.Aggregate) State {
	s.Loading = false
	for v := range ViewCount {
		n := ListLen(View(v), data, s)
		s.Selection[v] = clamp(s.Selection[v], 0, n-1)
	}
	if s.Drilldown != nil {
		ses := DrilldownSession(data, s)
		if ses == nil {
			s.Drilldown = nil
		} else {
			s.setDrilldownCursor(clamp(s.Drilldown.Cursor, 0, len(ses.Queries)-1))
		}
	}
	return s
}
