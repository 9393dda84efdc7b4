package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"

	"github.com/GauravRatnawat/claudetop/internal/nav"
	"github.com/GauravRatnawat/claudetop/internal/tui"
	"github.com/GauravRatnawat/claudetop/internal/watch"
)

var flagWatch bool

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch interactive TUI dashboard",
	RunE:  runTUI,
}

func init() {
	for _, c := range []*cobra.Command{rootCmd, tuiCmd} {
		c.Flags().BoolVarP(&flagWatch, "watch", "w", false, "Reload when session logs change")
	}
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, _ []string) error {
	// Background fills need color codes even when the terminal under-reports.
	if !flagNoColor && os.Getenv("NO_COLOR") == "" {
		lipgloss.SetColorProfile(termenv.TrueColor)
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	opts := tui.Options{
		DataDir: dataDir,
		Build:   buildOpts,
		Defaults: nav.Settings{
			View: nav.Dashboard,
			Sort: buildOpts.Sort,
		},
		Logger: logger,
	}

	if flagWatch || cfg.TUI.Watch {
		debounce := time.Duration(cfg.TUI.DebounceMs) * time.Millisecond
		w, err := watch.New(filepath.Join(dataDir, "projects"), debounce, logger)
		if err != nil {
			// The dashboard still works without live reload.
			logger.Warn("watch disabled", "err", err)
		} else {
			opts.Changes = w.Changes()
			go func() {
				if err := w.Run(ctx); err != nil {
					logger.Debug("watcher stopped", "err", err)
				}
			}()
		}
	}

	p := tea.NewProgram(tui.NewApp(opts), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
