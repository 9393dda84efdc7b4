package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/GauravRatnawat/claudetop/internal/cli"
	"github.com/GauravRatnawat/claudetop/internal/model"
)

var projectsCmd = &cobra.Command{
	Use:   "projects",
	Short: "Project usage ranking",
	Args:  cobra.NoArgs,
	RunE:  runProjects,
}

func init() {
	rootCmd.AddCommand(projectsCmd)
}

func runProjects(cmd *cobra.Command, _ []string) error {
	agg, result, err := loadAggregate(cmd.Context())
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	projects := agg.ProjectBreakdown
	if len(projects) == 0 {
		fmt.Fprintln(out, "\n  No project data in the selected time range.")
		return nil
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, cli.RenderTitle("PROJECTS  "+windowLabel()))
	fmt.Fprintln(out)

	total := max(agg.Totals.TotalTokens, 1)
	rows := make([][]string, 0, len(projects))
	for _, p := range projects {
		top := "-"
		if len(p.ModelBreakdown) > 0 {
			top = cli.ModelShort(p.ModelBreakdown[0].Model)
		}
		rows = append(rows, []string{
			cli.Truncate(model.ProjectShort(p.Project), 24),
			cli.FormatNumber(int64(p.SessionCount)),
			cli.FormatNumber(int64(p.QueryCount)),
			cli.FormatTokens(p.TotalTokens),
			cli.FormatCost(p.TotalCost),
			cli.FormatPercent(float64(p.TotalTokens) / float64(total)),
			top,
			cli.FormatDate(p.LastSeen),
		})
	}

	fmt.Fprint(out, cli.RenderTable(cli.Table{
		Headers:   []string{"Project", "Sessions", "Queries", "Tokens", "Cost", "Share", "Top Model", "Last Seen"},
		Rows:      rows,
		LeftAlign: []int{6, 7},
	}))
	reportFileErrors(result)
	return nil
}
