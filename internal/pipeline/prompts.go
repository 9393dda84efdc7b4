package pipeline

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/GauravRatnawat/claudetop/internal/model"
)

const (
	maxPromptRunes    = 300
	topPromptsGlobal  = 50
	topPromptsProject = 10
)

// promptAccumulator folds consecutive turns that answer the same prompt.
// Turns without a prompt (tool continuations) fold into the open record.
type promptAccumulator struct {
	prompt        *string
	input, output int64
	cost          float64
	continuations int
	modelCounts   map[string]int
	modelOrder    []string
	tools         map[string]int
}

func newPromptAccumulator() promptAccumulator {
	return promptAccumulator{
		modelCounts: make(map[string]int),
		tools:       make(map[string]int),
	}
}

// startsRecord reports whether q opens a new record.
func (a *promptAccumulator) startsRecord(q model.Query) bool {
	return q.Prompt != nil && (a.prompt == nil || *q.Prompt != *a.prompt)
}

func (a *promptAccumulator) add(q model.Query) {
	if q.Prompt == nil {
		a.continuations++
	}
	a.input += q.InputTokens
	a.output += q.OutputTokens
	a.cost += q.Cost
	if q.Model != "" && q.Model != model.ModelSynthetic {
		if _, seen := a.modelCounts[q.Model]; !seen {
			a.modelOrder = append(a.modelOrder, q.Model)
		}
		a.modelCounts[q.Model]++
	}
	for _, t := range q.Tools {
		a.tools[t]++
	}
}

// flush emits the open record. Records without a prompt or without tokens
// are dropped.
func (a *promptAccumulator) flush(s *model.Session) (model.PromptRecord, bool) {
	if a.prompt == nil || a.input+a.output == 0 {
		return model.PromptRecord{}, false
	}

	top, best := s.Model, 0
	for _, m := range a.modelOrder {
		if a.modelCounts[m] > best {
			top, best = m, a.modelCounts[m]
		}
	}

	tools := make(map[string]int, len(a.tools))
	for k, v := range a.tools {
		tools[k] = v
	}

	return model.PromptRecord{
		Prompt:        model.Truncate(*a.prompt, maxPromptRunes),
		InputTokens:   a.input,
		OutputTokens:  a.output,
		TotalTokens:   a.input + a.output,
		Cost:          a.cost,
		Continuations: a.continuations,
		Model:         top,
		ToolCounts:    tools,
		Date:          s.Date,
		SessionID:     s.ID,
		Project:       s.Project,
	}, true
}

// foldPrompts splits a session's turns into prompt records, in turn order.
// Turns before the first prompt belong to no record.
func foldPrompts(s *model.Session) []model.PromptRecord {
	var records []model.PromptRecord
	acc := newPromptAccumulator()
	for _, q := range s.Queries {
		if acc.startsRecord(q) {
			if rec, ok := acc.flush(s); ok {
				records = append(records, rec)
			}
			acc = newPromptAccumulator()
			acc.prompt = q.Prompt
		}
		acc.add(q)
	}
	if rec, ok := acc.flush(s); ok {
		records = append(records, rec)
	}
	return records
}

// rankPrompts sorts records by tokens descending and keeps the first n.
// Ties keep their input order, which follows the canonical session order.
func rankPrompts(records []model.PromptRecord, n int) []model.PromptRecord {
	ranked := make([]model.PromptRecord, len(records))
	copy(ranked, records)
	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if a.TotalTokens != b.TotalTokens {
			return a.TotalTokens > b.TotalTokens
		}
		if a.Project != b.Project {
			return a.Project < b.Project
		}
		if a.SessionID != b.SessionID {
			return a.SessionID < b.SessionID
		}
		return a.Prompt < b.Prompt
	})
	if len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}

type vagueCluster struct {
	key      string
	patterns []string
}

var vagueClusters = []vagueCluster{
	{"continue", []string{"continue", "go on", "keep going", "go ahead"}},
	{"yes/ok", []string{"yes", "ok", "okay", "sure", "yep", "yup", "do it", "sounds good", "looks good", "lgtm"}},
	{"more", []string{"more", "expand", "elaborate", "tell me more", "go deeper"}},
	{"fix it", []string{"fix it", "fix this", "fix the", "fix that", "fix", "update it", "update this"}},
	{"try again", []string{"try again", "retry", "redo", "do again", "one more time"}},
}

const (
	maxVagueRunes    = 50
	maxVagueExamples = 3
)

func matchesVague(prompt string, patterns []string) bool {
	t := strings.ToLower(strings.TrimSpace(prompt))
	if utf8.RuneCountInString(t) >= maxVagueRunes {
		return false
	}
	for _, p := range patterns {
		if t == p || strings.HasPrefix(t, p+" ") || strings.HasSuffix(t, " "+p) {
			return true
		}
	}
	return false
}

// buildVagueClusters groups low-information prompts. Empty clusters are
// omitted.
func buildVagueClusters(records []model.PromptRecord) []model.VagueCluster {
	out := []model.VagueCluster{}
	for _, c := range vagueClusters {
		vc := model.VagueCluster{Key: c.key, Examples: []string{}}
		for _, r := range records {
			if !matchesVague(r.Prompt, c.patterns) {
				continue
			}
			vc.Count++
			vc.TotalTokens += r.TotalTokens
			vc.TotalCost += r.Cost
			if len(vc.Examples) < maxVagueExamples {
				vc.Examples = append(vc.Examples, strings.TrimSpace(r.Prompt))
			}
		}
		if vc.Count > 0 {
			out = append(out, vc)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].TotalTokens > out[j].TotalTokens
	})
	return out
}
