package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/GauravRatnawat/claudetop/internal/cli"
)

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "Model usage breakdown",
	Args:  cobra.NoArgs,
	RunE:  runModels,
}

func init() {
	rootCmd.AddCommand(modelsCmd)
}

func runModels(cmd *cobra.Command, _ []string) error {
	agg, result, err := loadAggregate(cmd.Context())
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	models := agg.ModelBreakdown
	if len(models) == 0 {
		fmt.Fprintln(out, "\n  No model data in the selected time range.")
		return nil
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, cli.RenderTitle("MODEL USAGE  "+windowLabel()))
	fmt.Fprintln(out)

	total := max(agg.Totals.TotalTokens, 1)
	rows := make([][]string, 0, len(models)+1)
	for _, m := range models {
		rows = append(rows, []string{
			cli.ModelShort(m.Model),
			cli.FormatNumber(int64(m.QueryCount)),
			cli.FormatTokens(m.InputTokens),
			cli.FormatTokens(m.OutputTokens),
			cli.FormatTokens(m.TotalTokens),
			cli.FormatCost(m.TotalCost),
			cli.FormatPercent(float64(m.TotalTokens) / float64(total)),
		})
	}
	if n := agg.Totals.UnattributedTokens; n > 0 {
		rows = append(rows, []string{"(unknown)", "", "", "", cli.FormatTokens(n), "",
			cli.FormatPercent(float64(n) / float64(total))})
	}

	fmt.Fprint(out, cli.RenderTable(cli.Table{
		Headers: []string{"Model", "Queries", "Input", "Output", "Total", "Cost", "Share"},
		Rows:    rows,
	}))
	reportFileErrors(result)
	return nil
}
