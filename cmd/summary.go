package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/GauravRatnawat/claudetop/internal/cli"
	"github.com/GauravRatnawat/claudetop/internal/model"
)

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "One-line usage summary",
	Args:  cobra.NoArgs,
	RunE:  runSummary,
}

func init() {
	rootCmd.AddCommand(summaryCmd)
}

func runSummary(cmd *cobra.Command, _ []string) error {
	agg, result, err := loadAggregate(cmd.Context())
	if err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), summaryLine(agg, windowLabel(), dataDir))
	reportFileErrors(result)
	return nil
}

func summaryLine(agg *model.Aggregate, label, dir string) string {
	t := agg.Totals
	if t.TotalSessions == 0 {
		return fmt.Sprintf("%s: No data found in %s\n", label, dir)
	}
	return fmt.Sprintf("%s: %s tokens · %s · %d sessions · %d queries · %d active days · avg %s/day · streak: %dd\n",
		label,
		cli.FormatTokens(t.TotalTokens),
		cli.FormatCost(t.TotalCost),
		t.TotalSessions,
		t.TotalQueries,
		len(agg.DailyUsage),
		cli.FormatTokens(t.DailyAvg),
		t.Streak,
	)
}
