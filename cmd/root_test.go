package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GauravRatnawat/claudetop/internal/model"
)

func TestParseDays(t *testing.T) {
	cases := []struct {
		in   string
		want int
	}{
		{"30", 30},
		{"7d", 7},
		{"2w", 14},
		{"3m", 90},
		{" 1D ", 1},
		{"0", 0},
	}
	for _, tc := range cases {
		got, err := parseDays(tc.in)
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.want, got, tc.in)
	}

	for _, bad := range []string{"", "abc", "-3", "7y", "d"} {
		_, err := parseDays(bad)
		assert.Error(t, err, bad)
	}
}

func TestResolveDataDir(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(home, ".claude"), resolveDataDir("", ""))
	assert.Equal(t, "/srv/claude", resolveDataDir("", "/srv/claude"))
	assert.Equal(t, "/tmp/flag", resolveDataDir("/tmp/flag", "/srv/claude"), "flag beats config")
	assert.Equal(t, filepath.Join(home, "logs"), resolveDataDir("~/logs", ""))
	assert.Equal(t, home, resolveDataDir("~", ""))
}

func TestSummaryLineEmpty(t *testing.T) {
	line := summaryLine(&model.Aggregate{}, "Last 30d", "/data")
	assert.Equal(t, "Last 30d: No data found in /data\n", line)
}

func TestSummaryLine(t *testing.T) {
	agg := &model.Aggregate{
		DailyUsage: make([]model.DailyBucket, 3),
		Totals: model.Totals{
			TotalSessions: 4,
			TotalQueries:  21,
			TotalTokens:   1_500_000,
			TotalCost:     12.5,
			DailyAvg:      500_000,
			Streak:        2,
		},
	}
	line := summaryLine(agg, "All time", "/data")
	assert.Equal(t,
		"All time: 1.5M tokens · $12.50 · 4 sessions · 21 queries · 3 active days · avg 500K/day · streak: 2d\n",
		line)
}

func TestTodayReportNoActivity(t *testing.T) {
	now := time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC)
	assert.Equal(t, "Today (Jun 10): No activity yet.\n", todayReport(nil, now))
}

func TestTodayReport(t *testing.T) {
	up, down := 25, -40
	today := &model.DailyBucket{
		Date:           "2025-06-10",
		TotalTokens:    1_200,
		TotalCost:      1.2,
		Sessions:       2,
		Queries:        9,
		PrevDayDelta:   &up,
		PrevWeekDelta:  &down,
		ModelBreakdown: []model.ModelShare{{Model: "claude-sonnet-4-20250514"}},
	}
	// 11:30 is the twelfth started hour.
	now := time.Date(2025, 6, 10, 11, 30, 0, 0, time.UTC)

	out := todayReport(today, now)
	lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	require.Len(t, lines, 4)
	assert.True(t, strings.HasPrefix(lines[0], "Today (Jun 10): 1.2K tokens · $1.20 · 2 sessions · 9 queries · Top model: "))
	assert.Equal(t, "vs yesterday: +25%", lines[1])
	assert.Equal(t, "vs last week: -40%", lines[2])
	assert.Equal(t, "Burn rate: ~2.4K tokens/day pace · ~$2.40/day pace", lines[3])
}

func TestTodayReportSkipsBurnRateInFirstHour(t *testing.T) {
	today := &model.DailyBucket{Date: "2025-06-10", TotalTokens: 500, Sessions: 1, Queries: 1}
	out := todayReport(today, time.Date(2025, 6, 10, 0, 20, 0, 0, time.UTC))
	assert.NotContains(t, out, "Burn rate")
	assert.NotContains(t, out, "vs yesterday")
}

func TestWriteJSONStripsQueries(t *testing.T) {
	prompt := "fix the flaky test"
	ts := time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC)
	q := model.NewQuery(&prompt, &ts, ts.Add(time.Minute), "claude-sonnet-4-20250514",
		100, 0, 0, 50, 0.01, []string{"Read"})
	s := model.NewSession(model.SessionMeta{
		ID: "abc", Project: "demo", FirstTimestamp: ts, LastTimestamp: ts.Add(time.Minute),
	}, []model.Query{q})
	agg := &model.Aggregate{Sessions: []model.Session{s}}

	var buf bytes.Buffer
	require.NoError(t, writeJSON(&buf, agg))

	var decoded struct {
		Sessions []map[string]any `json:"sessions"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	require.Len(t, decoded.Sessions, 1)
	assert.NotContains(t, decoded.Sessions[0], "queries")
	assert.EqualValues(t, 1, decoded.Sessions[0]["queryCount"])
	assert.Contains(t, buf.String(), "\n  \"sessions\"", "two-space indent")

	assert.Len(t, agg.Sessions[0].Queries, 1, "caller's aggregate untouched")
}

func TestRenderHourly(t *testing.T) {
	var hours [24]int
	hours[9] = 4
	hours[14] = 2

	var buf bytes.Buffer
	renderHourly(&buf, hours)
	out := buf.String()

	assert.Contains(t, out, "09:00 │      4 │ "+strings.Repeat("█", hourlyBarWidth))
	assert.Contains(t, out, "14:00 │      2 │ "+strings.Repeat("█", hourlyBarWidth/2)+"\n")
	assert.Contains(t, out, "Peak: 9:00 AM (4 queries)")
}

func TestFormatDays(t *testing.T) {
	assert.Equal(t, "all time", formatDays(0))
	assert.Equal(t, "30 days", formatDays(30))
}
