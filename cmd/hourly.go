package cmd

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/GauravRatnawat/claudetop/internal/cli"
	"github.com/GauravRatnawat/claudetop/internal/pipeline"
)

var hourlyCmd = &cobra.Command{
	Use:   "hourly",
	Short: "Activity by hour of day",
	Args:  cobra.NoArgs,
	RunE:  runHourly,
}

func init() {
	rootCmd.AddCommand(hourlyCmd)
}

func runHourly(cmd *cobra.Command, _ []string) error {
	agg, result, err := loadAggregate(cmd.Context())
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if agg.Totals.TotalQueries == 0 {
		fmt.Fprintln(out, "\n  No sessions in the selected time range.")
		return nil
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, cli.RenderTitle("ACTIVITY BY HOUR  "+windowLabel()+" (local time)"))
	fmt.Fprintln(out)
	renderHourly(out, pipeline.HourlyActivity(agg.Sessions, time.Local))
	reportFileErrors(result)
	return nil
}

const hourlyBarWidth = 40

func renderHourly(out io.Writer, hours [24]int) {
	peak := 0
	for h, n := range hours {
		if n > hours[peak] {
			peak = h
		}
	}
	top := max(hours[peak], 1)

	for h, n := range hours {
		bar := strings.Repeat("█", n*hourlyBarWidth/top)
		fmt.Fprintf(out, "  %02d:00 │ %6s │ %s\n", h, cli.FormatNumber(int64(n)), bar)
	}
	fmt.Fprintf(out, "\n  Peak: %s (%s queries)\n\n",
		cli.FormatHour(peak), cli.FormatNumber(int64(hours[peak])))
}
