package cmd

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/GauravRatnawat/claudetop/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show current configuration",
	Args:  cobra.NoArgs,
	RunE:  runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)
}

func runConfig(cmd *cobra.Command, _ []string) error {
	out := cmd.OutOrStdout()

	fmt.Fprintf(out, "  Config file: %s\n", config.Path())
	if config.Exists() {
		fmt.Fprintln(out, "  Status: loaded")
	} else {
		fmt.Fprintln(out, "  Status: using defaults (no config file)")
	}
	fmt.Fprintln(out)

	fmt.Fprintln(out, "  [General]")
	fmt.Fprintf(out, "    Data directory:  %s\n", dataDir)
	fmt.Fprintf(out, "    Default range:   %s\n", formatDays(cfg.General.DefaultDays))
	fmt.Fprintf(out, "    Default sort:    %s\n", cfg.General.DefaultSort)
	fmt.Fprintf(out, "    Insights:        %v\n", cfg.General.Insights)
	fmt.Fprintln(out)

	fmt.Fprintln(out, "  [TUI]")
	fmt.Fprintf(out, "    Watch:           %v\n", cfg.TUI.Watch)
	fmt.Fprintf(out, "    Debounce:        %dms\n", cfg.TUI.DebounceMs)
	fmt.Fprintln(out)

	fmt.Fprintln(out, "  [Appearance]")
	fmt.Fprintf(out, "    Theme: %s\n", cfg.Appearance.Theme)
	fmt.Fprintln(out)

	fmt.Fprintln(out, "  [Pricing]")
	if len(cfg.Pricing.Overrides) == 0 {
		fmt.Fprintln(out, "    Overrides: none (built-in rates)")
	}
	names := make([]string, 0, len(cfg.Pricing.Overrides))
	for name := range cfg.Pricing.Overrides {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		p := config.Active.Lookup(name)
		fmt.Fprintf(out, "    %-16s in $%.2f  cache w $%.2f  cache r $%.2f  out $%.2f per MTok\n",
			name, p.Input, p.CacheWrite, p.CacheRead, p.Output)
	}
	fmt.Fprintln(out)

	fmt.Fprintln(out, "  Run `claudetop setup` to reconfigure.")
	return nil
}
