// Package cli provides formatting and rendering utilities for terminal output.
package cli

import (
	"fmt"
	"math"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/dustin/go-humanize"
)

// FormatTokens formats a token count with human-readable suffixes.
// e.g., 999 -> "999", 1234 -> "1.2K", 12345 -> "12K", 1234567 -> "1.2M"
func FormatTokens(n int64) string {
	abs := n
	if abs < 0 {
		abs = -abs
	}

	switch {
	case abs >= 1_000_000:
		return fmt.Sprintf("%.1fM", float64(n)/1_000_000)
	case abs >= 10_000:
		return fmt.Sprintf("%.0fK", float64(n)/1_000)
	case abs >= 1_000:
		return fmt.Sprintf("%.1fK", float64(n)/1_000)
	default:
		return humanize.Comma(n)
	}
}

// FormatCost formats a USD cost value. Sub-dollar amounts keep three
// decimals so small sessions stay distinguishable.
func FormatCost(cost float64) string {
	switch {
	case cost == 0:
		return "$0.00"
	case cost < 0.01:
		return "<$0.01"
	case cost < 1:
		return fmt.Sprintf("$%.3f", cost)
	case cost < 100:
		return fmt.Sprintf("$%.2f", cost)
	}
	return "$" + FormatNumber(int64(math.Round(cost)))
}

// FormatNumber adds comma separators to an integer.
// e.g., 1234567 -> "1,234,567"
func FormatNumber(n int64) string {
	return humanize.Comma(n)
}

// FormatDuration formats a minute count. nil means the session had a
// single timestamp.
// e.g., nil -> "-", 0 -> "<1m", 45 -> "45m", 125 -> "2h 5m", 120 -> "2h"
func FormatDuration(minutes *int) string {
	if minutes == nil {
		return "-"
	}
	m := *minutes
	switch {
	case m < 1:
		return "<1m"
	case m < 60:
		return fmt.Sprintf("%dm", m)
	case m%60 == 0:
		return fmt.Sprintf("%dh", m/60)
	}
	return fmt.Sprintf("%dh %dm", m/60, m%60)
}

// FormatPercent formats a 0-1 float as a percentage string.
func FormatPercent(f float64) string {
	return fmt.Sprintf("%.1f%%", f*100)
}

// FormatDelta formats a whole-percent change with an explicit sign.
// nil renders as empty so missing comparisons take no space.
func FormatDelta(pct *int) string {
	if pct == nil {
		return ""
	}
	if *pct > 0 {
		return fmt.Sprintf("+%d%%", *pct)
	}
	return fmt.Sprintf("%d%%", *pct)
}

// FormatDate renders an ISO day as "Jan 2". Unparseable input is returned
// unchanged.
func FormatDate(date string) string {
	t, err := time.Parse("2006-01-02", date)
	if err != nil {
		return date
	}
	return t.Format("Jan 2")
}

// FormatDateFull renders an ISO day as "Jan 2, 2006".
func FormatDateFull(date string) string {
	t, err := time.Parse("2006-01-02", date)
	if err != nil {
		return date
	}
	return t.Format("Jan 2, 2006")
}

// FormatHour renders an hour of day as "3:00 PM".
func FormatHour(hour int) string {
	return time.Date(2000, 1, 1, hour, 0, 0, 0, time.UTC).Format("3:04 PM")
}

// FormatDayOfWeek returns a 3-letter day abbreviation from a weekday number.
func FormatDayOfWeek(weekday int) string {
	days := []string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}
	if weekday >= 0 && weekday < 7 {
		return days[weekday]
	}
	return "???"
}

var (
	familyFirstRe  = regexp.MustCompile(`^claude-(opus|sonnet|haiku)-(\d+)-(\d+)`)
	versionFirstRe = regexp.MustCompile(`^claude-(\d+)-(\d+)-(opus|sonnet|haiku)`)
	majorOnlyRe    = regexp.MustCompile(`^claude-(\d+)-(opus|sonnet|haiku)`)
	familyRe       = regexp.MustCompile(`opus|sonnet|haiku`)
)

// ModelShort turns a model id into a display name.
// e.g., "claude-opus-4-6" -> "Opus 4.6", "claude-3-5-sonnet-20241022" -> "Sonnet 3.5"
func ModelShort(id string) string {
	if id == "" {
		return "-"
	}
	if m := familyFirstRe.FindStringSubmatch(id); m != nil {
		return titleCase(m[1]) + " " + m[2] + "." + m[3]
	}
	if m := versionFirstRe.FindStringSubmatch(id); m != nil {
		return titleCase(m[3]) + " " + m[1] + "." + m[2]
	}
	if m := majorOnlyRe.FindStringSubmatch(id); m != nil {
		return titleCase(m[2]) + " " + m[1]
	}
	if f := familyRe.FindString(id); f != "" {
		return titleCase(f)
	}
	if utf8.RuneCountInString(id) > 20 {
		return Truncate(id, 19)
	}
	return id
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// Truncate shortens s to n runes, ending in an ellipsis when cut.
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-1]) + "…"
}
