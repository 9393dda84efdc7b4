package nav

import (
	"sort"
	"strings"

	"github.com/GauravRatnawat/claudetop/internal/model"
	"github.com/GauravRatnawat/claudetop/internal/pipeline"
)

// AnalyticsSections are the panels of the analytics view, in order.
var AnalyticsSections = []string{
	"Tool usage",
	"Session length",
	"Weekly model trend",
	"CLAUDE.md footprint",
	"Vague prompts",
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

// SessionList is the sessions view list: model filter, then search, then
// sort. It points into data and copies nothing.
func SessionList(data *model.Aggregate, s State) []*model.Session {
	if data == nil {
		return nil
	}
	q := strings.TrimSpace(s.SessionSearch)
	out := make([]*model.Session, 0, len(data.Sessions))
	for i := range data.Sessions {
		ses := &data.Sessions[i]
		if s.ModelFilter != "" && !containsFold(ses.Model, s.ModelFilter) {
			continue
		}
		if q != "" &&
			!containsFold(ses.FirstPrompt, q) &&
			!containsFold(ses.Project, q) &&
			!containsFold(ses.Model, q) &&
			!containsFold(model.ProjectShort(ses.Project), q) {
			continue
		}
		out = append(out, ses)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return pipeline.SessionLess(s.Sort, out[i], out[j])
	})
	return out
}

// PromptList is the prompts view list filtered by the prompt search.
func PromptList(data *model.Aggregate, s State) []*model.PromptRecord {
	if data == nil {
		return nil
	}
	q := strings.TrimSpace(s.PromptSearch)
	out := make([]*model.PromptRecord, 0, len(data.TopPrompts))
	for i := range data.TopPrompts {
		p := &data.TopPrompts[i]
		if q != "" &&
			!containsFold(p.Prompt, q) &&
			!containsFold(p.Project, q) &&
			!containsFold(model.ProjectShort(p.Project), q) {
			continue
		}
		out = append(out, p)
	}
	return out
}

// DailyList is the daily rollup newest first.
func DailyList(data *model.Aggregate) []*model.DailyBucket {
	if data == nil {
		return nil
	}
	n := len(data.DailyUsage)
	out := make([]*model.DailyBucket, n)
	for i := range data.DailyUsage {
		out[n-1-i] = &data.DailyUsage[i]
	}
	return out
}

// ListLen is the length movement clamps to in view v.
func ListLen(v View, data *model.Aggregate, s State) int {
	if data == nil {
		return 0
	}
	switch v {
	case Daily:
		return len(data.DailyUsage)
	case Sessions:
		return len(SessionList(data, s))
	case Projects:
		return len(data.ProjectBreakdown)
	case Prompts:
		return len(PromptList(data, s))
	case Insights:
		return len(data.Insights)
	case Analytics:
		return len(AnalyticsSections)
	}
	return 0
}

// SelectedSession is the highlighted row of the sessions view, or nil.
func SelectedSession(data *model.Aggregate, s State) *model.Session {
	list := SessionList(data, s)
	i := s.Selection[Sessions]
	if i < 0 || i >= len(list) {
		return nil
	}
	return list[i]
}

// DrilldownSession is the session the overlay shows, or nil.
func DrilldownSession(data *model.Aggregate, s State) *model.Session {
	if s.Drilldown == nil {
		return nil
	}
	return data.FindSession(s.Drilldown.SessionKey)
}
