package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/GauravRatnawat/claudetop/internal/cli"
	"github.com/GauravRatnawat/claudetop/internal/config"
	"github.com/GauravRatnawat/claudetop/internal/pipeline"
	"github.com/GauravRatnawat/claudetop/internal/source"
	"github.com/GauravRatnawat/claudetop/internal/tui/theme"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Interactive configuration wizard",
	Args:  cobra.NoArgs,
	RunE:  runSetup,
}

func init() {
	rootCmd.AddCommand(setupCmd)
}

var daysOptions = []huh.Option[int]{
	huh.NewOption("7 days", 7),
	huh.NewOption("30 days", 30),
	huh.NewOption("90 days", 90),
	huh.NewOption("All time", 0),
}

var sortOptions = []huh.Option[string]{
	huh.NewOption("Total tokens", string(pipeline.SortTotal)),
	huh.NewOption("Cost", string(pipeline.SortCost)),
	huh.NewOption("Most recent", string(pipeline.SortDate)),
	huh.NewOption("Query count", string(pipeline.SortQueries)),
	huh.NewOption("Model", string(pipeline.SortModel)),
}

func runSetup(cmd *cobra.Command, _ []string) error {
	out := cmd.OutOrStdout()
	next := cfg

	fmt.Fprintln(out)
	fmt.Fprintln(out, "  Welcome to claudetop!")
	if n := countSessions(dataDir); n > 0 {
		fmt.Fprintf(out, "  Found %s session logs in %s\n", cli.FormatNumber(int64(n)), dataDir)
	}
	fmt.Fprintln(out)

	dir := next.General.DataDir
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Claude data directory").
				Description("Leave blank for ~/.claude").
				Value(&dir).
				Validate(validateDataDir),
			huh.NewSelect[int]().
				Title("Default time range").
				Options(daysOptions...).
				Value(&next.General.DefaultDays),
			huh.NewSelect[string]().
				Title("Default session sort").
				Options(sortOptions...).
				Value(&next.General.DefaultSort),
		),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Color theme").
				Options(huh.NewOptions(theme.Names()...)...).
				Value(&next.Appearance.Theme),
			huh.NewConfirm().
				Title("Reload the dashboard when logs change?").
				Value(&next.TUI.Watch),
			huh.NewConfirm().
				Title("Generate insights?").
				Value(&next.General.Insights),
		),
	)
	if err := form.Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			fmt.Fprintln(out, "  Setup cancelled, nothing saved.")
			return nil
		}
		return fmt.Errorf("running setup form: %w", err)
	}
	next.General.DataDir = dir

	if err := config.Save(next); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}

	fmt.Fprintln(out)
	fmt.Fprintf(out, "  Saved to %s\n", config.Path())
	fmt.Fprintln(out, "  Run `claudetop setup` anytime to reconfigure.")
	fmt.Fprintln(out)
	return nil
}

func validateDataDir(s string) error {
	if s == "" {
		return nil
	}
	info, err := os.Stat(resolveDataDir(s, ""))
	if err != nil {
		return fmt.Errorf("cannot read %s", s)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", s)
	}
	return nil
}

// countSessions is a quick file count for the welcome line. Errors count
// as zero.
func countSessions(dir string) int {
	projectsDir := filepath.Join(dir, "projects")
	projects, err := source.ListProjects(projectsDir)
	if err != nil {
		return 0
	}
	n := 0
	for _, p := range projects {
		files, err := source.ListSessionFiles(projectsDir, p)
		if err != nil {
			continue
		}
		n += len(files)
	}
	return n
}

// formatDays renders a days setting for humans.
func formatDays(days int) string {
	if days == 0 {
		return "all time"
	}
	return strconv.Itoa(days) + " days"
}
