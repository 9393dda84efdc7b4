// Package tui is the interactive Bubble Tea dashboard for claudetop.
package tui

import (
	"context"
	"log/slog"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/GauravRatnawat/claudetop/internal/model"
	"github.com/GauravRatnawat/claudetop/internal/nav"
	"github.com/GauravRatnawat/claudetop/internal/pipeline"
	"github.com/GauravRatnawat/claudetop/internal/tui/components"
	"github.com/GauravRatnawat/claudetop/internal/tui/theme"
)

// LoadFunc loads the corpus. pipeline.Load satisfies it.
type LoadFunc func(ctx context.Context, dataDir string, opts pipeline.LoadOptions) (*pipeline.LoadResult, error)

// Options configures the dashboard.
type Options struct {
	DataDir string
	// Build carries the command-line filters. Now is filled per load when
	// zero.
	Build    pipeline.Options
	Defaults nav.Settings
	// Changes delivers file-watch signals; nil disables watch mode.
	Changes <-chan struct{}
	Logger  *slog.Logger
	// Load defaults to pipeline.Load.
	Load LoadFunc
}

// progressMsg reports file parsing progress of one load generation.
type progressMsg struct {
	gen     int
	current int
	total   int
}

// loadedMsg is the result of one load generation. Exactly one of data and
// err is set.
type loadedMsg struct {
	gen     int
	data    *model.Aggregate
	result  *pipeline.LoadResult
	elapsed time.Duration
	err     error
}

// watchMsg is a settled burst of file changes.
type watchMsg struct{}

// App is the root Bubble Tea model.
type App struct {
	opts Options

	state    nav.State
	data     *model.Aggregate // last good aggregate; kept across failed reloads
	result   *pipeline.LoadResult
	loadTime time.Duration
	loadErr  error

	// Refresh bookkeeping. Only results of the current generation apply.
	gen         int
	cancel      context.CancelFunc
	sub         chan tea.Msg
	initLoad    tea.Cmd
	progress    int
	progressMax int

	spinner spinner.Model
	search  textinput.Model

	width  int
	height int
}

const (
	minWidth        = 80
	minHeight       = 24
	maxContentWidth = 180
)

// NewApp builds the dashboard and schedules the first load.
func NewApp(opts Options) App {
	if opts.Load == nil {
		opts.Load = pipeline.Load
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Active.Accent).Background(theme.Active.Surface)

	a := App{
		opts:    opts,
		state:   nav.New(opts.Defaults),
		spinner: sp,
		search:  newSearchInput(),
	}
	a.state.Loading = true
	a.initLoad = a.reload()
	return a
}

func newSearchInput() textinput.Model {
	ti := textinput.New()
	ti.Prompt = "/ "
	ti.Placeholder = "search"
	ti.CharLimit = 200
	ti.Width = 40
	return ti
}

// Init implements tea.Model.
func (a App) Init() tea.Cmd {
	return tea.Batch(
		tea.EnableMouseCellMotion,
		a.initLoad,
		a.spinner.Tick,
		watchCmd(a.opts.Changes),
	)
}

// reload cancels any load in flight and starts a new generation.
func (a *App) reload() tea.Cmd {
	if a.cancel != nil {
		a.cancel()
	}
	a.gen++
	ctx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel
	a.sub = make(chan tea.Msg, 1)
	a.progress, a.progressMax = 0, 0
	return loadCmd(ctx, a.gen, a.opts, a.sub)
}

// refresh moves the state machine into loading and starts a reload. A soft
// refresh keeps the user's place.
func (a *App) refresh(soft bool) tea.Cmd {
	a.state = nav.Apply(a.state, nav.Event{Kind: nav.Refresh, Soft: soft}, a.data)
	return tea.Batch(a.reload(), a.spinner.Tick)
}

func (a *App) finishLoad(msg loadedMsg) {
	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
	}
	a.loadTime = msg.elapsed
	if msg.err != nil {
		a.loadErr = msg.err
		a.opts.Logger.Debug("load failed", "gen", msg.gen, "err", msg.err)
	} else {
		a.loadErr = nil
		a.data = msg.data
		a.result = msg.result
	}
	a.state = nav.Apply(a.state, nav.Key(nav.DataLoaded), a.data)
}

// Update implements tea.Model.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		return a, nil

	case spinner.TickMsg:
		if !a.state.Loading {
			return a, nil
		}
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd

	case progressMsg:
		if msg.gen != a.gen {
			return a, nil
		}
		a.progress, a.progressMax = msg.current, msg.total
		return a, waitForLoadMsg(a.sub)

	case loadedMsg:
		if msg.gen != a.gen {
			a.opts.Logger.Debug("dropping stale load", "gen", msg.gen, "current", a.gen)
			return a, nil
		}
		a.finishLoad(msg)
		return a, nil

	case watchMsg:
		cmd := a.refresh(true)
		return a, tea.Batch(cmd, watchCmd(a.opts.Changes))

	case tea.MouseMsg:
		return a.updateMouse(msg)

	case tea.KeyMsg:
		return a.updateKey(msg)
	}
	return a, nil
}

func (a App) updateMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if a.data == nil || a.state.Searching != nav.SearchNone {
		return a, nil
	}
	switch msg.Button {
	case tea.MouseButtonWheelUp:
		a.state = nav.Apply(a.state, nav.Key(nav.MoveUp), a.data)
	case tea.MouseButtonWheelDown:
		a.state = nav.Apply(a.state, nav.Key(nav.MoveDown), a.data)
	case tea.MouseButtonLeft:
		if msg.Action != tea.MouseActionPress || msg.Y != 0 {
			break
		}
		if v := components.TabAt(msg.X, a.width); v >= 0 {
			a.state = nav.Apply(a.state, nav.Switch(nav.View(v)), a.data)
		}
	}
	return a, nil
}

func (a App) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	if key == "ctrl+c" {
		return a.quit()
	}
	if a.state.Searching != nav.SearchNone {
		return a.updateSearch(msg)
	}

	switch key {
	case "q":
		return a.quit()
	case "r":
		return a, a.refresh(false)
	case "/":
		next := nav.Apply(a.state, nav.Key(nav.BeginSearch), a.data)
		if next.Searching == nav.SearchNone {
			return a, nil
		}
		a.state = next
		a.search.SetValue(a.activeQuery())
		a.search.CursorEnd()
		return a, a.search.Focus()
	}

	if a.data == nil {
		return a, nil
	}
	if ev, ok := keyEvent(key); ok {
		a.state = nav.Apply(a.state, ev, a.data)
	}
	return a, nil
}

func (a App) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		a.state = nav.Apply(a.state, nav.Search(a.search.Value()), a.data)
		a.search.Blur()
		return a, nil
	case "esc":
		a.state = nav.Apply(a.state, nav.Key(nav.CancelSearch), a.data)
		a.search.Blur()
		return a, nil
	}
	var cmd tea.Cmd
	a.search, cmd = a.search.Update(msg)
	return a, cmd
}

func (a App) activeQuery() string {
	if a.state.Searching == nav.SearchPrompts {
		return a.state.PromptSearch
	}
	return a.state.SessionSearch
}

func (a App) quit() (tea.Model, tea.Cmd) {
	if a.cancel != nil {
		a.cancel()
	}
	return a, tea.Quit
}
