package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/GauravRatnawat/claudetop/internal/cli"
)

var insightsCmd = &cobra.Command{
	Use:   "insights",
	Short: "Heuristic findings about your usage",
	Args:  cobra.NoArgs,
	RunE:  runInsights,
}

func init() {
	rootCmd.AddCommand(insightsCmd)
}

func runInsights(cmd *cobra.Command, _ []string) error {
	if flagNoInsights {
		return fmt.Errorf("insights are disabled by --no-insights")
	}
	// The command exists to show them, so the config switch does not apply.
	buildOpts.SkipInsights = false

	agg, result, err := loadAggregate(cmd.Context())
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	fmt.Fprintln(out)
	fmt.Fprintln(out, cli.RenderTitle("INSIGHTS  "+windowLabel()))
	fmt.Fprintln(out)

	if len(agg.Insights) == 0 {
		fmt.Fprintln(out, "  Not enough data yet to generate insights.")
		return nil
	}
	for _, in := range agg.Insights {
		fmt.Fprintln(out, cli.RenderInsight(in))
	}
	reportFileErrors(result)
	return nil
}
