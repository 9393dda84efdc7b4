// Package insight derives heuristic findings from an aggregated corpus.
package insight

import (
	"time"

	"github.com/GauravRatnawat/claudetop/internal/model"
)

// Input is everything the rules look at. Sessions must carry their queries.
type Input struct {
	Sessions []model.Session
	Prompts  []model.PromptRecord
	Totals   model.Totals
	Daily    []model.DailyBucket
	Now      time.Time
	Location *time.Location
}

// Rule inspects the input and reports at most one insight.
type Rule func(Input) (model.Insight, bool)

// Battery is the fixed, ordered rule set. Output order follows it.
var Battery = []Rule{
	vaguePrompts,
	contextGrowth,
	marathonSessions,
	inputHeavy,
	dayPattern,
	modelMismatch,
	toolHeavy,
	projectDominance,
	conversationEfficiency,
	heavyContext,
	velocity,
	budgetAlert,
	whatIfSavings,
}

// Generate runs every rule in Battery order. It never returns nil.
func Generate(in Input) []model.Insight {
	if in.Location == nil {
		in.Location = time.Local
	}
	if in.Now.IsZero() {
		in.Now = time.Now()
	}

	out := []model.Insight{}
	for _, rule := range Battery {
		if ins, ok := rule(in); ok {
			out = append(out, ins)
		}
	}
	return out
}

func action(s string) *string { return &s }
