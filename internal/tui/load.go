package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/GauravRatnawat/claudetop/internal/pipeline"
)

// loadCmd runs one load generation in the background. Progress and the
// final result stream through sub, which is closed when the load is done.
func loadCmd(ctx context.Context, gen int, opts Options, sub chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		go runLoad(ctx, gen, opts, sub)
		return <-sub
	}
}

func runLoad(ctx context.Context, gen int, opts Options, sub chan tea.Msg) {
	defer close(sub)
	start := time.Now()

	// Non-blocking so workers never stall on a slow UI; a dropped update
	// is superseded by the next.
	progress := func(current, total int) {
		select {
		case sub <- progressMsg{gen: gen, current: current, total: total}:
		default:
		}
	}

	res, err := opts.Load(ctx, opts.DataDir, pipeline.LoadOptions{
		Progress: progress,
		Logger:   opts.Logger,
	})
	msg := loadedMsg{gen: gen, result: res, err: err}
	if err == nil {
		msg.data = pipeline.Build(res.Sessions, res.ClaudeMdFiles, opts.Build)
	}
	msg.elapsed = time.Since(start)

	select {
	case sub <- msg:
	case <-ctx.Done():
	}
}

// waitForLoadMsg blocks until the loader sends again. A closed channel
// yields nil, which Bubble Tea ignores.
func waitForLoadMsg(sub chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		msg, ok := <-sub
		if !ok {
			return nil
		}
		return msg
	}
}

// watchCmd turns the next file-watch signal into a watchMsg.
func watchCmd(changes <-chan struct{}) tea.Cmd {
	if changes == nil {
		return nil
	}
	return func() tea.Msg {
		if _, ok := <-changes; !ok {
			return nil
		}
		return watchMsg{}
	}
}
