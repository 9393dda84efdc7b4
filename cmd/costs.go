package cmd

import (
	"fmt"
	"io"
	"sort"

	"github.com/spf13/cobra"

	"github.com/GauravRatnawat/claudetop/internal/cli"
	"github.com/GauravRatnawat/claudetop/internal/config"
	"github.com/GauravRatnawat/claudetop/internal/model"
	"github.com/GauravRatnawat/claudetop/internal/pipeline"
)

var costsCmd = &cobra.Command{
	Use:   "costs",
	Short: "Cost breakdown by token type and model",
	Args:  cobra.NoArgs,
	RunE:  runCosts,
}

func init() {
	rootCmd.AddCommand(costsCmd)
}

func runCosts(cmd *cobra.Command, _ []string) error {
	agg, result, err := loadAggregate(cmd.Context())
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if agg.Totals.TotalSessions == 0 {
		fmt.Fprintln(out, "\n  No sessions in the selected time range.")
		return nil
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, cli.RenderTitle("COST BREAKDOWN  "+windowLabel()))
	fmt.Fprintln(out)

	byType, byModel := pipeline.CostBreakdown(agg.Sessions)
	renderCosts(out, byType, byModel, cacheSavings(agg.Sessions))
	reportFileErrors(result)
	return nil
}

func renderCosts(out io.Writer, byType model.CostBreakdown, byModel []pipeline.ModelCost, savings float64) {
	total := byType.Input + byType.CacheWrite + byType.CacheRead + byType.Output

	type tokenCost struct {
		name string
		cost float64
	}
	costs := []tokenCost{
		{"Input", byType.Input},
		{"Cache Write", byType.CacheWrite},
		{"Cache Read", byType.CacheRead},
		{"Output", byType.Output},
	}
	sort.SliceStable(costs, func(i, j int) bool { return costs[i].cost > costs[j].cost })

	typeRows := make([][]string, 0, len(costs)+2)
	for _, tc := range costs {
		pct := ""
		if total > 0 {
			pct = cli.FormatPercent(tc.cost / total)
		}
		typeRows = append(typeRows, []string{tc.name, cli.FormatCost(tc.cost), pct})
	}
	typeRows = append(typeRows, cli.SeparatorRow, []string{"TOTAL", cli.FormatCost(total), ""})

	fmt.Fprint(out, cli.RenderTable(cli.Table{
		Title:   "By Token Type",
		Headers: []string{"Type", "Cost", "Share"},
		Rows:    typeRows,
	}))

	modelRows := make([][]string, 0, len(byModel)+2)
	for _, mc := range byModel {
		name := cli.ModelShort(mc.Model)
		if mc.Model == "" {
			name = "(unknown)"
		}
		modelRows = append(modelRows, []string{
			name,
			cli.FormatCost(mc.Input),
			cli.FormatCost(mc.CacheWrite),
			cli.FormatCost(mc.CacheRead),
			cli.FormatCost(mc.Output),
			cli.FormatCost(mc.Total),
		})
	}
	modelRows = append(modelRows, cli.SeparatorRow, []string{
		"TOTAL",
		cli.FormatCost(byType.Input),
		cli.FormatCost(byType.CacheWrite),
		cli.FormatCost(byType.CacheRead),
		cli.FormatCost(byType.Output),
		cli.FormatCost(total),
	})

	fmt.Fprint(out, cli.RenderTable(cli.Table{
		Title:   "By Model",
		Headers: []string{"Model", "Input", "Cache W", "Cache R", "Output", "Total"},
		Rows:    modelRows,
	}))

	fmt.Fprintf(out, "  Cache Savings: %s saved this period\n\n", cli.FormatCost(savings))
}

// cacheSavings is what the cache-read tokens would have cost as fresh input.
func cacheSavings(sessions []model.Session) float64 {
	var saved float64
	for _, s := range sessions {
		for _, q := range s.Queries {
			p := config.LookupPricing(q.Model)
			saved += float64(q.CacheReadTokens) * (p.Input - p.CacheRead) / 1_000_000
		}
	}
	return saved
}
