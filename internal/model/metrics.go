package model

import "time"

// ModelShare is one model's slice of a day's tokens.
type ModelShare struct {
	Model  string `json:"model"`
	Tokens int64  `json:"tokens"`
	Pct    int    `json:"pct"`
}

// DailyBucket holds metrics for one calendar day.
type DailyBucket struct {
	Date                string  `json:"date"`
	InputTokens         int64   `json:"inputTokens"`
	OutputTokens        int64   `json:"outputTokens"`
	TotalTokens         int64   `json:"totalTokens"`
	RawInputTokens      int64   `json:"rawInputTokens"`
	CacheCreationTokens int64   `json:"cacheCreationTokens"`
	CacheReadTokens     int64   `json:"cacheReadTokens"`
	TotalCost           float64 `json:"totalCost"`
	Sessions            int     `json:"sessions"`
	Queries             int     `json:"queries"`
	AvgTokensPerQuery   int64   `json:"avgTokensPerQuery"`

	BusiestHour    *int         `json:"busiestHour"`
	TopProject     *string      `json:"topProject"`
	ModelBreakdown []ModelShare `json:"modelBreakdown"`

	PrevDayDelta  *int `json:"prevDayDelta"`
	PrevWeekDelta *int `json:"prevWeekDelta"`
}

// ModelBucket holds aggregated metrics for a single model.
type ModelBucket struct {
	Model        string  `json:"model"`
	InputTokens  int64   `json:"inputTokens"`
	OutputTokens int64   `json:"outputTokens"`
	TotalTokens  int64   `json:"totalTokens"`
	QueryCount   int     `json:"queryCount"`
	TotalCost    float64 `json:"totalCost"`
}

// ProjectModel is a model's usage within one project.
type ProjectModel struct {
	Model        string `json:"model"`
	InputTokens  int64  `json:"inputTokens"`
	OutputTokens int64  `json:"outputTokens"`
	TotalTokens  int64  `json:"totalTokens"`
	QueryCount   int    `json:"queryCount"`
}

// ProjectBucket holds aggregated metrics for a single project.
type ProjectBucket struct {
	Project          string         `json:"project"`
	InputTokens      int64          `json:"inputTokens"`
	OutputTokens     int64          `json:"outputTokens"`
	TotalTokens      int64          `json:"totalTokens"`
	TotalCost        float64        `json:"totalCost"`
	SessionCount     int            `json:"sessionCount"`
	QueryCount       int            `json:"queryCount"`
	AvgSessionTokens int64          `json:"avgSessionCost"`
	FirstSeen        string         `json:"firstSeen"`
	LastSeen         string         `json:"lastSeen"`
	ModelBreakdown   []ProjectModel `json:"modelBreakdown"`
	TopPrompts       []PromptRecord `json:"topPrompts"`
}

// PromptRecord is one distinct user prompt with every continuation turn
// that followed it folded in.
type PromptRecord struct {
	Prompt        string         `json:"prompt"`
	InputTokens   int64          `json:"inputTokens"`
	OutputTokens  int64          `json:"outputTokens"`
	TotalTokens   int64          `json:"totalTokens"`
	Cost          float64        `json:"cost"`
	Continuations int            `json:"continuations"`
	Model         string         `json:"model"`
	ToolCounts    map[string]int `json:"toolCounts"`
	Date          string         `json:"date"`
	SessionID     string         `json:"sessionId"`
	Project       string         `json:"project"`
}

// ToolStat is the global usage of one tool.
type ToolStat struct {
	Tool       string `json:"tool"`
	TotalCalls int    `json:"totalCalls"`
	Sessions   int    `json:"sessions"`
	Tokens     int64  `json:"tokens"`
}

// HistogramBucket counts sessions by turn count. Max of 0 means unbounded.
type HistogramBucket struct {
	Label       string `json:"label"`
	Min         int    `json:"min"`
	Max         int    `json:"max"`
	Count       int    `json:"count"`
	TotalTokens int64  `json:"totalTokens"`
}

// WeekTrend is per-model token usage for one Monday-anchored week.
type WeekTrend struct {
	Week   string           `json:"week"`
	Models map[string]int64 `json:"models"`
}

// ClaudeMdFile is a project documentation file and its context footprint.
type ClaudeMdFile struct {
	Project         string `json:"project"`
	Bytes           int64  `json:"bytes"`
	EstimatedTokens int64  `json:"estimatedTokens"`
	Path            string `json:"path"`
}

// VagueCluster groups low-information prompts such as "continue" or "yes".
type VagueCluster struct {
	Key         string   `json:"key"`
	Count       int      `json:"count"`
	TotalTokens int64    `json:"totalTokens"`
	TotalCost   float64  `json:"totalCost"`
	Examples    []string `json:"examples"`
}

// DateRange spans the first and last active day.
type DateRange struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// PeakDay is the single day with the most tokens.
type PeakDay struct {
	Date        string `json:"date"`
	TotalTokens int64  `json:"totalTokens"`
}

// CostBreakdown splits total cost by token category.
type CostBreakdown struct {
	Input      float64 `json:"input"`
	CacheWrite float64 `json:"cacheWrite"`
	CacheRead  float64 `json:"cacheRead"`
	Output     float64 `json:"output"`
}

// Totals holds grand totals across every session in the aggregate.
type Totals struct {
	TotalSessions     int   `json:"totalSessions"`
	TotalQueries      int   `json:"totalQueries"`
	TotalTokens       int64 `json:"totalTokens"`
	TotalInputTokens  int64 `json:"totalInputTokens"`
	TotalOutputTokens int64 `json:"totalOutputTokens"`
	TotalRawInput     int64 `json:"totalRawInput"`
	TotalCacheCreate  int64 `json:"totalCacheCreate"`
	TotalCacheRead    int64 `json:"totalCacheRead"`
	// UnattributedTokens come from turns without a model id; they are in
	// TotalTokens but in no ModelBucket.
	UnattributedTokens int64         `json:"unattributedTokens"`
	TotalCost          float64       `json:"totalCost"`
	CostBreakdown      CostBreakdown `json:"costBreakdown"`

	AvgTokensPerQuery   int64 `json:"avgTokensPerQuery"`
	AvgTokensPerSession int64 `json:"avgTokensPerSession"`
	DailyAvg            int64 `json:"dailyAvg"`

	DateRange            *DateRange `json:"dateRange"`
	PeakDay              *PeakDay   `json:"peakDay"`
	MostUsedModel        *string    `json:"mostUsedModel"`
	MostExpensiveProject *string    `json:"mostExpensiveProject"`
	Streak               int        `json:"streak"`
}

// Insight types.
const (
	InsightWarning = "warning"
	InsightInfo    = "info"
	InsightNeutral = "neutral"
)

// Insight is one heuristic finding about the user's usage.
type Insight struct {
	ID          string  `json:"id"`
	Type        string  `json:"type"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Action      *string `json:"action"`
}

// Aggregate is the full result of one pipeline run.
type Aggregate struct {
	Sessions            []Session         `json:"sessions"`
	DailyUsage          []DailyBucket     `json:"dailyUsage"`
	ModelBreakdown      []ModelBucket     `json:"modelBreakdown"`
	ProjectBreakdown    []ProjectBucket   `json:"projectBreakdown"`
	TopPrompts          []PromptRecord    `json:"topPrompts"`
	Totals              Totals            `json:"totals"`
	TodayData           *DailyBucket      `json:"todayData"`
	Insights            []Insight         `json:"insights"`
	ToolAnalytics       []ToolStat        `json:"toolAnalytics"`
	SessionHistogram    []HistogramBucket `json:"sessionHistogram"`
	ModelTrend          []WeekTrend       `json:"modelTrend"`
	ClaudeMdFiles       []ClaudeMdFile    `json:"claudeMdFiles"`
	VaguePromptClusters []VagueCluster    `json:"vaguePromptClusters"`
	// GeneratedAt is the build clock. It stays out of the JSON so two dumps
	// of an unchanged tree are byte-identical.
	GeneratedAt         time.Time         `json:"-"`
}

// EmptyAggregate returns a well-formed aggregate with every list empty.
func EmptyAggregate() *Aggregate {
	return &Aggregate{
		Sessions:            []Session{},
		DailyUsage:          []DailyBucket{},
		ModelBreakdown:      []ModelBucket{},
		ProjectBreakdown:    []ProjectBucket{},
		TopPrompts:          []PromptRecord{},
		Insights:            []Insight{},
		ToolAnalytics:       []ToolStat{},
		SessionHistogram:    []HistogramBucket{},
		ModelTrend:          []WeekTrend{},
		ClaudeMdFiles:       []ClaudeMdFile{},
		VaguePromptClusters: []VagueCluster{},
	}
}

// FindSession returns the session with the given Key, or nil.
func (a *Aggregate) FindSession(key string) *Session {
	if a == nil {
		return nil
	}
	for i := range a.Sessions {
		if a.Sessions[i].Key() == key {
			return &a.Sessions[i]
		}
	}
	return nil
}
