// Package cmd implements the claudetop CLI commands.
package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"

	"github.com/GauravRatnawat/claudetop/internal/cli"
	"github.com/GauravRatnawat/claudetop/internal/config"
	"github.com/GauravRatnawat/claudetop/internal/model"
	"github.com/GauravRatnawat/claudetop/internal/pipeline"
	"github.com/GauravRatnawat/claudetop/internal/tui/theme"
)

var (
	flagDays       string
	flagSince      string
	flagProject    string
	flagModel      string
	flagSort       string
	flagDataDir    string
	flagQuiet      bool
	flagNoInsights bool
	flagNoColor    bool
	flagDebug      bool
)

// Resolved by prepare before any command runs.
var (
	cfg       config.Config
	logger    *slog.Logger
	dataDir   string
	buildOpts pipeline.Options
)

var rootCmd = &cobra.Command{
	Use:   "claudetop",
	Short: "Token and cost dashboard for Claude Code",
	Long: "Analyze your Claude Code usage from the local session logs:\n" +
		"tokens, costs, sessions, projects, prompts and insights.",
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: prepare,
	RunE:              runTUI,
}

// Execute is the main entry point called from main.go.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&flagDays, "days", "n", "", "Time window: N, Nd, Nw or Nm (default from config, 0 = all time)")
	pf.StringVar(&flagSince, "since", "", "Alias for --days")
	pf.StringVarP(&flagProject, "project", "p", "", "Filter to project (substring match)")
	pf.StringVarP(&flagModel, "model", "m", "", "Filter to model (substring match)")
	pf.StringVar(&flagSort, "sort", "", "Session sort: tokens|date|queries|model|cost")
	pf.StringVarP(&flagDataDir, "data-dir", "d", "", "Claude data directory (default ~/.claude)")
	pf.BoolVarP(&flagQuiet, "quiet", "q", false, "Suppress progress output")
	pf.BoolVar(&flagNoInsights, "no-insights", false, "Skip insight generation")
	pf.BoolVar(&flagNoColor, "no-color", false, "Disable color output")
	pf.BoolVar(&flagDebug, "debug", false, "Log diagnostics to stderr")
}

// prepare resolves flags over config over defaults. Flags win.
func prepare(cmd *cobra.Command, _ []string) error {
	logger = newLogger(flagDebug || os.Getenv("CLAUDETOP_DEBUG") == "1")

	var err error
	cfg, err = config.Load()
	if err != nil {
		return err
	}
	config.Active = config.NewPricingTable(cfg.Pricing.Overrides)
	if !theme.SetActive(cfg.Appearance.Theme) {
		logger.Debug("unknown theme, using default", "theme", cfg.Appearance.Theme)
	}
	if flagNoColor {
		lipgloss.SetColorProfile(termenv.Ascii)
	}

	days := cfg.General.DefaultDays
	flags := cmd.Flags()
	for _, name := range []string{"days", "since"} {
		if !flags.Changed(name) {
			continue
		}
		raw, _ := flags.GetString(name)
		if days, err = parseDays(raw); err != nil {
			return fmt.Errorf("--%s: %w", name, err)
		}
	}

	sortName := cfg.General.DefaultSort
	if flags.Changed("sort") {
		sortName = flagSort
	}
	sortKey, err := pipeline.ParseSortKey(sortName)
	if err != nil {
		return err
	}

	dataDir = resolveDataDir(flagDataDir, cfg.General.DataDir)
	buildOpts = pipeline.Options{
		Location:     time.Local,
		Days:         days,
		Project:      flagProject,
		Model:        flagModel,
		Sort:         sortKey,
		SkipInsights: flagNoInsights || !cfg.General.Insights,
	}
	logger.Debug("resolved options",
		"data_dir", dataDir, "days", days, "project", flagProject,
		"model", flagModel, "sort", sortKey, "insights", !buildOpts.SkipInsights)
	return nil
}

func newLogger(debug bool) *slog.Logger {
	if !debug {
		return slog.New(slog.DiscardHandler)
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

// parseDays accepts N, Nd, Nw (weeks) and Nm (30-day months). 0 means all
// time.
func parseDays(raw string) (int, error) {
	s := strings.ToLower(strings.TrimSpace(raw))
	mult := 1
	switch {
	case strings.HasSuffix(s, "d"):
		s = strings.TrimSuffix(s, "d")
	case strings.HasSuffix(s, "w"):
		s, mult = strings.TrimSuffix(s, "w"), 7
	case strings.HasSuffix(s, "m"):
		s, mult = strings.TrimSuffix(s, "m"), 30
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid time window %q (want N, Nd, Nw or Nm)", raw)
	}
	return n * mult, nil
}

// resolveDataDir picks the flag, then the config value, then ~/.claude,
// expanding a leading ~.
func resolveDataDir(flag, configured string) string {
	dir := flag
	if dir == "" {
		dir = configured
	}
	home, _ := os.UserHomeDir()
	switch {
	case dir == "":
		return filepath.Join(home, ".claude")
	case dir == "~":
		return home
	case strings.HasPrefix(dir, "~/"):
		return filepath.Join(home, dir[2:])
	}
	return dir
}

// showProgress reports whether progress lines go to stderr.
func showProgress() bool {
	return !flagQuiet && isatty.IsTerminal(os.Stderr.Fd())
}

// loadData is the shared data loading path used by all commands.
func loadData(ctx context.Context) (*pipeline.LoadResult, error) {
	verbose := showProgress()
	if verbose {
		fmt.Fprintf(os.Stderr, "  Scanning sessions...\n")
	}

	progressFn := func(current, total int) {
		if verbose && (current%100 == 0 || current == total) {
			fmt.Fprintf(os.Stderr, "\r  Parsing [%d/%d]", current, total)
		}
	}

	result, err := pipeline.Load(ctx, dataDir, pipeline.LoadOptions{
		Progress: progressFn,
		Logger:   logger,
	})
	if err != nil {
		if verbose {
			fmt.Fprintln(os.Stderr)
		}
		return nil, err
	}

	if verbose && result.TotalFiles > 0 {
		fmt.Fprintf(os.Stderr, "\r  Parsed %s sessions across %d projects    \n",
			cli.FormatNumber(int64(result.ParsedFiles)),
			result.ProjectCount,
		)
	}
	if result.FileErrors > 0 || result.ParseErrors > 0 {
		logger.Debug("load finished with errors",
			"file_errors", result.FileErrors, "parse_errors", result.ParseErrors,
			"duplicates", result.Duplicates)
	}
	return result, nil
}

// loadAggregate loads the corpus and builds the filtered aggregate.
func loadAggregate(ctx context.Context) (*model.Aggregate, *pipeline.LoadResult, error) {
	result, err := loadData(ctx)
	if err != nil {
		return nil, nil, err
	}
	opts := buildOpts
	opts.Now = time.Now()
	return pipeline.Build(result.Sessions, result.ClaudeMdFiles, opts), result, nil
}

// windowLabel names the active time window for titles.
func windowLabel() string {
	if buildOpts.Days > 0 {
		return fmt.Sprintf("Last %dd", buildOpts.Days)
	}
	return "All time"
}

// reportFileErrors notes unreadable files on stderr.
func reportFileErrors(result *pipeline.LoadResult) {
	if result.FileErrors > 0 {
		fmt.Fprintf(os.Stderr, "\n  %d files could not be read\n", result.FileErrors)
	}
}
