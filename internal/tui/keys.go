package tui

import (
	"github.com/GauravRatnawat/claudetop/internal/nav"
	"github.com/GauravRatnawat/claudetop/internal/pipeline"
)

// keymap binds keys to navigation events. Quit, refresh and search are
// handled by the App because they have side effects.
var keymap = map[string]nav.Event{
	"1":     nav.Switch(nav.Dashboard),
	"2":     nav.Switch(nav.Daily),
	"3":     nav.Switch(nav.Sessions),
	"4":     nav.Switch(nav.Projects),
	"5":     nav.Switch(nav.Prompts),
	"6":     nav.Switch(nav.Insights),
	"7":     nav.Switch(nav.Analytics),
	"d":     nav.Switch(nav.Daily),
	"tab":   nav.Key(nav.NextView),
	"j":     nav.Key(nav.MoveDown),
	"down":  nav.Key(nav.MoveDown),
	"k":     nav.Key(nav.MoveUp),
	"up":    nav.Key(nav.MoveUp),
	"left":  nav.Key(nav.MoveLeft),
	"right": nav.Key(nav.MoveRight),
	"g":     nav.Key(nav.Top),
	"home":  nav.Key(nav.Top),
	"G":     nav.Key(nav.Bottom),
	"end":   nav.Key(nav.Bottom),
	"enter": nav.Key(nav.Enter),
	"esc":   nav.Key(nav.Back),
	"b":     nav.Key(nav.Back),
	"s":     nav.Key(nav.CycleSort),
	"t":     nav.SortBy(pipeline.SortTotal),
	"o":     nav.FilterModel("opus"),
	"h":     nav.FilterModel("haiku"),
	"?":     nav.Key(nav.ToggleHelp),
}

func keyEvent(key string) (nav.Event, bool) {
	ev, ok := keymap[key]
	return ev, ok
}

// binding is one row of the help overlay.
type binding struct {
	keys string
	desc string
}

var (
	navBindings = []binding{
		{"1-7", "Switch view"},
		{"d", "Jump to Daily"},
		{"tab", "Next view"},
		{"j k ↑ ↓", "Move"},
		{"← →", "Older / newer day"},
		{"g G", "Top / bottom"},
	}
	actionBindings = []binding{
		{"enter", "Expand / drill down"},
		{"esc b", "Back one layer"},
		{"/", "Search sessions or prompts"},
		{"s", "Cycle session sort"},
		{"t", "Sort by tokens"},
		{"o h", "Toggle Opus / Haiku filter"},
		{"r", "Reload from disk"},
		{"?", "Toggle help"},
		{"q", "Quit"},
	}
)
