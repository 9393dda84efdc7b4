package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/GauravRatnawat/claudetop/internal/cli"
	"github.com/GauravRatnawat/claudetop/internal/model"
)

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "Session list with details",
	Args:  cobra.NoArgs,
	RunE:  runSessions,
}

var sessionsLimit int

func init() {
	sessionsCmd.Flags().IntVarP(&sessionsLimit, "limit", "l", 20, "Number of sessions to show (0 = all)")
	rootCmd.AddCommand(sessionsCmd)
}

func runSessions(cmd *cobra.Command, _ []string) error {
	agg, result, err := loadAggregate(cmd.Context())
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	sessions := agg.Sessions
	if len(sessions) == 0 {
		fmt.Fprintln(out, "\n  No sessions in the selected time range.")
		return nil
	}
	if sessionsLimit > 0 && len(sessions) > sessionsLimit {
		sessions = sessions[:sessionsLimit]
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, cli.RenderTitle(fmt.Sprintf("SESSIONS  %s  by %s (showing %d of %d)",
		windowLabel(), buildOpts.Sort, len(sessions), len(agg.Sessions))))
	fmt.Fprintln(out)

	rows := make([][]string, 0, len(sessions))
	for _, s := range sessions {
		start := s.Date
		if s.FirstTimestamp != nil {
			start = s.FirstTimestamp.Local().Format("Jan 02 15:04")
		}
		rows = append(rows, []string{
			start,
			cli.Truncate(model.ProjectShort(s.Project), 16),
			cli.Truncate(flatten(s.FirstPrompt), 40),
			cli.ModelShort(s.Model),
			strconv.Itoa(s.QueryCount),
			cli.FormatDuration(s.DurationMinutes),
			cli.FormatTokens(s.TotalTokens),
			cli.FormatCost(s.TotalCost),
			fmt.Sprintf("%.0f%%", s.EfficiencyScore),
		})
	}

	fmt.Fprint(out, cli.RenderTable(cli.Table{
		Headers:   []string{"Start", "Project", "First Prompt", "Model", "Queries", "Duration", "Tokens", "Cost", "Eff"},
		Rows:      rows,
		LeftAlign: []int{1, 2, 3},
	}))
	reportFileErrors(result)
	return nil
}

// flatten collapses whitespace so multi-line prompts fit one table row.
func flatten(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
