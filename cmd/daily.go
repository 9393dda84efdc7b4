package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/GauravRatnawat/claudetop/internal/cli"
	"github.com/GauravRatnawat/claudetop/internal/model"
)

var dailyCmd = &cobra.Command{
	Use:   "daily",
	Short: "Daily usage table",
	Args:  cobra.NoArgs,
	RunE:  runDaily,
}

func init() {
	rootCmd.AddCommand(dailyCmd)
}

func runDaily(cmd *cobra.Command, _ []string) error {
	agg, result, err := loadAggregate(cmd.Context())
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if len(agg.DailyUsage) == 0 {
		fmt.Fprintln(out, "\n  No data for the selected period.")
		return nil
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, cli.RenderTitle("DAILY USAGE  "+windowLabel()))
	fmt.Fprintln(out)

	rows := make([][]string, 0, len(agg.DailyUsage)+2)
	for _, d := range agg.DailyUsage {
		day := ""
		if t, err := parseDay(d.Date); err == nil {
			day = cli.FormatDayOfWeek(int(t.Weekday()))
		}
		top := "-"
		if len(d.ModelBreakdown) > 0 {
			top = cli.ModelShort(d.ModelBreakdown[0].Model)
		}
		rows = append(rows, []string{
			d.Date,
			day,
			cli.FormatNumber(int64(d.Sessions)),
			cli.FormatNumber(int64(d.Queries)),
			cli.FormatTokens(d.TotalTokens),
			cli.FormatCost(d.TotalCost),
			dash(cli.FormatDelta(d.PrevDayDelta)),
			top,
		})
	}
	t := agg.Totals
	rows = append(rows, cli.SeparatorRow, []string{
		"TOTAL", "",
		cli.FormatNumber(int64(t.TotalSessions)),
		cli.FormatNumber(int64(t.TotalQueries)),
		cli.FormatTokens(t.TotalTokens),
		cli.FormatCost(t.TotalCost),
		"", "",
	})

	fmt.Fprint(out, cli.RenderTable(cli.Table{
		Headers:   []string{"Date", "Day", "Sessions", "Queries", "Tokens", "Cost", "vs Day", "Top Model"},
		Rows:      rows,
		LeftAlign: []int{1, 7},
	}))
	reportFileErrors(result)
	return nil
}

func parseDay(date string) (time.Time, error) {
	return time.Parse(model.DateLayout, date)
}

// dash stands in for an empty cell.
func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
