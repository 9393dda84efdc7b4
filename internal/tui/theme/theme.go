// Package theme defines the color palettes of the claudetop dashboard.
package theme

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Theme maps color roles to terminal colors.
type Theme struct {
	Name string

	Background   lipgloss.Color
	Surface      lipgloss.Color // cards and bars
	Highlight    lipgloss.Color // selected row
	Border       lipgloss.Color
	BorderAccent lipgloss.Color // focused card, overlays

	TextDim     lipgloss.Color
	TextMuted   lipgloss.Color
	TextPrimary lipgloss.Color

	Accent       lipgloss.Color
	AccentBright lipgloss.Color

	// Semantic colors. Tokens are blue, cost is green, warnings are orange.
	Tokens  lipgloss.Color
	Cost    lipgloss.Color
	Warning lipgloss.Color
	Danger  lipgloss.Color
	Cache   lipgloss.Color

	// Model family colors.
	Opus   lipgloss.Color
	Sonnet lipgloss.Color
	Haiku  lipgloss.Color
}

// FlexokiDark is the default palette.
var FlexokiDark = Theme{
	Name:         "flexoki-dark",
	Background:   "#100F0F",
	Surface:      "#1C1B1A",
	Highlight:    "#343331",
	Border:       "#403E3C",
	BorderAccent: "#3AA99F",
	TextDim:      "#575653",
	TextMuted:    "#878580",
	TextPrimary:  "#FFFCF0",
	Accent:       "#3AA99F",
	AccentBright: "#5BC8BE",
	Tokens:       "#4385BE",
	Cost:         "#879A39",
	Warning:      "#DA702C",
	Danger:       "#D14D41",
	Cache:        "#D0A215",
	Opus:         "#CE5D97",
	Sonnet:       "#4385BE",
	Haiku:        "#879A39",
}

// CatppuccinMocha is a soft pastel palette.
var CatppuccinMocha = Theme{
	Name:         "catppuccin-mocha",
	Background:   "#1E1E2E",
	Surface:      "#313244",
	Highlight:    "#585B70",
	Border:       "#585B70",
	BorderAccent: "#89B4FA",
	TextDim:      "#6C7086",
	TextMuted:    "#A6ADC8",
	TextPrimary:  "#CDD6F4",
	Accent:       "#89B4FA",
	AccentBright: "#B4D0FB",
	Tokens:       "#89B4FA",
	Cost:         "#A6E3A1",
	Warning:      "#FAB387",
	Danger:       "#F38BA8",
	Cache:        "#F9E2AF",
	Opus:         "#F5C2E7",
	Sonnet:       "#89B4FA",
	Haiku:        "#A6E3A1",
}

// Terminal sticks to the 16 ANSI colors.
var Terminal = Theme{
	Name:         "terminal",
	Background:   "0",
	Surface:      "0",
	Highlight:    "8",
	Border:       "8",
	BorderAccent: "6",
	TextDim:      "8",
	TextMuted:    "7",
	TextPrimary:  "15",
	Accent:       "6",
	AccentBright: "14",
	Tokens:       "4",
	Cost:         "2",
	Warning:      "3",
	Danger:       "1",
	Cache:        "3",
	Opus:         "5",
	Sonnet:       "4",
	Haiku:        "2",
}

// All lists the available palettes; the first is the default.
var All = []Theme{FlexokiDark, CatppuccinMocha, Terminal}

// Active is the palette every renderer reads.
var Active = FlexokiDark

// Names returns the palette names in display order.
func Names() []string {
	names := make([]string, len(All))
	for i, t := range All {
		names[i] = t.Name
	}
	return names
}

// ByName returns the named palette and whether it exists. Unknown names
// yield the default.
func ByName(name string) (Theme, bool) {
	for _, t := range All {
		if t.Name == name {
			return t, true
		}
	}
	return All[0], false
}

// SetActive switches the active palette. It reports false, and leaves the
// default in place, for an unknown name.
func SetActive(name string) bool {
	t, ok := ByName(name)
	Active = t
	return ok
}

// ModelColor picks the family color for a model id.
func (t Theme) ModelColor(modelID string) lipgloss.Color {
	switch {
	case containsFold(modelID, "opus"):
		return t.Opus
	case containsFold(modelID, "haiku"):
		return t.Haiku
	case containsFold(modelID, "sonnet"):
		return t.Sonnet
	}
	return t.TextMuted
}

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), sub)
}
