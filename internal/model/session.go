// Package model defines domain types for claudetop sessions and rollups.
package model

import (
	"math"
	"time"
)

// Sentinel model identifiers excluded from model-keyed rollups.
const (
	ModelSynthetic = "<synthetic>"
	ModelUnknown   = "unknown"
)

// DateUnknown is the Session.Date of a log with no parseable timestamp.
const DateUnknown = "unknown"

// Query is one assistant response plus the user prompt that preceded it.
type Query struct {
	Prompt             *string    `json:"userPrompt"`
	UserTimestamp      *time.Time `json:"userTimestamp"`
	AssistantTimestamp time.Time  `json:"assistantTimestamp"`
	Model              string     `json:"model"`

	RawInputTokens      int64 `json:"rawInputTokens"`
	CacheCreationTokens int64 `json:"cacheCreationTokens"`
	CacheReadTokens     int64 `json:"cacheReadTokens"`
	InputTokens         int64 `json:"inputTokens"`
	OutputTokens        int64 `json:"outputTokens"`
	TotalTokens         int64 `json:"totalTokens"`

	Cost  float64  `json:"cost"`
	Tools []string `json:"tools"`
}

// NewQuery fills the derived token totals. cost is computed by the caller
// so this package stays free of pricing policy.
func NewQuery(prompt *string, userTS *time.Time, assistantTS time.Time, model string,
	rawInput, cacheCreate, cacheRead, output int64, cost float64, tools []string,
) Query {
	if tools == nil {
		tools = []string{}
	}
	input := rawInput + cacheCreate + cacheRead
	return Query{
		Prompt:              prompt,
		UserTimestamp:       userTS,
		AssistantTimestamp:  assistantTS,
		Model:               model,
		RawInputTokens:      rawInput,
		CacheCreationTokens: cacheCreate,
		CacheReadTokens:     cacheRead,
		InputTokens:         input,
		OutputTokens:        output,
		TotalTokens:         input + output,
		Cost:                cost,
		Tools:               tools,
	}
}

// HasPrompt reports whether the turn was started by a user prompt.
func (q Query) HasPrompt() bool {
	return q.Prompt != nil
}

// IsAttributable reports whether the turn counts toward model rollups.
func (q Query) IsAttributable() bool {
	return q.Model != "" && q.Model != ModelSynthetic && q.Model != ModelUnknown
}

// Session is one conversation log file.
type Session struct {
	ID              string     `json:"sessionId"`
	Project         string     `json:"project"`
	Date            string     `json:"date"`
	FirstTimestamp  *time.Time `json:"timestamp"`
	LastTimestamp   *time.Time `json:"lastTimestamp"`
	DurationMinutes *int       `json:"durationMinutes"`
	FirstPrompt     string     `json:"firstPrompt"`
	Model           string     `json:"model"`
	AllModels       []string   `json:"allModels"`

	QueryCount    int     `json:"queryCount"`
	UserInitiated int     `json:"userInitiated"`
	ToolCallCount int     `json:"toolCallCount"`
	Queries       []Query `json:"queries,omitempty"`

	InputTokens         int64   `json:"inputTokens"`
	OutputTokens        int64   `json:"outputTokens"`
	TotalTokens         int64   `json:"totalTokens"`
	RawInputTokens      int64   `json:"rawInputTokens"`
	CacheCreationTokens int64   `json:"cacheCreationTokens"`
	CacheReadTokens     int64   `json:"cacheReadTokens"`
	TotalCost           float64 `json:"totalCost"`

	EfficiencyScore   float64        `json:"efficiencyScore"`
	AvgTokensPerQuery int64          `json:"avgTokensPerQuery"`
	Tools             map[string]int `json:"tools"`
}

// SessionMeta is everything about a session that does not come from its turns.
type SessionMeta struct {
	ID             string
	Project        string
	Label          string // friendly first-prompt label from history, may be empty
	FirstTimestamp time.Time
	LastTimestamp  time.Time
}

const (
	maxFirstPromptRunes = 200
	noPromptLabel       = "(no prompt)"
)

// NewSession folds queries into a Session. All session-level sums are
// computed here and nowhere else.
func NewSession(meta SessionMeta, queries []Query) Session {
	s := Session{
		ID:        meta.ID,
		Project:   meta.Project,
		Date:      DateUnknown,
		Queries:   queries,
		Tools:     make(map[string]int),
		AllModels: []string{},
	}

	if !meta.FirstTimestamp.IsZero() {
		first := meta.FirstTimestamp
		last := meta.LastTimestamp
		s.FirstTimestamp = &first
		s.LastTimestamp = &last
		s.Date = first.UTC().Format(DateLayout)
		if !last.Equal(first) {
			mins := int(RoundHalfUp(last.Sub(first).Minutes()))
			s.DurationMinutes = &mins
		}
	}

	modelCounts := make(map[string]int)
	for _, q := range queries {
		s.InputTokens += q.InputTokens
		s.OutputTokens += q.OutputTokens
		s.RawInputTokens += q.RawInputTokens
		s.CacheCreationTokens += q.CacheCreationTokens
		s.CacheReadTokens += q.CacheReadTokens
		s.TotalCost += q.Cost

		if _, seen := modelCounts[q.Model]; !seen {
			s.AllModels = append(s.AllModels, q.Model)
		}
		modelCounts[q.Model]++

		if q.HasPrompt() {
			s.UserInitiated++
		}
		for _, tool := range q.Tools {
			s.Tools[tool]++
		}
	}
	s.TotalTokens = s.InputTokens + s.OutputTokens
	s.QueryCount = len(queries)
	s.ToolCallCount = s.QueryCount - s.UserInitiated

	// Dominant model; ties go to the first model encountered.
	s.Model = ModelUnknown
	best := 0
	for _, m := range s.AllModels {
		if modelCounts[m] > best {
			best = modelCounts[m]
			s.Model = m
		}
	}

	first := meta.Label
	if first == "" {
		for _, q := range queries {
			if q.HasPrompt() {
				first = *q.Prompt
				break
			}
		}
	}
	if first == "" {
		first = noPromptLabel
	}
	s.FirstPrompt = Truncate(first, maxFirstPromptRunes)

	if s.TotalTokens > 0 {
		s.EfficiencyScore = RoundHalfUp(float64(s.OutputTokens)/float64(s.TotalTokens)*1000) / 10
	}
	if s.QueryCount > 0 {
		s.AvgTokensPerQuery = int64(RoundHalfUp(float64(s.TotalTokens) / float64(s.QueryCount)))
	}
	return s
}

// Key identifies a session uniquely across projects.
func (s Session) Key() string {
	return s.Project + "/" + s.ID
}

// WithProject returns a copy of s attributed to another project.
func (s Session) WithProject(project string) Session {
	s.Project = project
	return s
}

// DateLayout is the ISO calendar-day format used for every date key.
const DateLayout = "2006-01-02"

// RoundHalfUp rounds to the nearest integer with halves going toward +Inf.
func RoundHalfUp(x float64) float64 {
	return math.Floor(x + 0.5)
}

// Truncate cuts s to at most n runes.
func Truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
