package cmd

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/GauravRatnawat/claudetop/internal/cli"
	"github.com/GauravRatnawat/claudetop/internal/model"
)

var todayCmd = &cobra.Command{
	Use:   "today",
	Short: "Today's usage with deltas and burn rate",
	Args:  cobra.NoArgs,
	RunE:  runToday,
}

func init() {
	rootCmd.AddCommand(todayCmd)
}

func runToday(cmd *cobra.Command, _ []string) error {
	agg, result, err := loadAggregate(cmd.Context())
	if err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), todayReport(agg.TodayData, agg.GeneratedAt.In(time.Local)))
	reportFileErrors(result)
	return nil
}

// todayReport renders today's bucket. Burn rate projects the hours elapsed
// so far over a full day and needs at least two started hours.
func todayReport(today *model.DailyBucket, now time.Time) string {
	if today == nil || today.TotalTokens == 0 {
		return fmt.Sprintf("Today (%s): No activity yet.\n",
			cli.FormatDate(now.UTC().Format(model.DateLayout)))
	}

	top := "-"
	if len(today.ModelBreakdown) > 0 {
		top = cli.ModelShort(today.ModelBreakdown[0].Model)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Today (%s): %s tokens · %s · %d sessions · %d queries · Top model: %s\n",
		cli.FormatDate(today.Date),
		cli.FormatTokens(today.TotalTokens),
		cli.FormatCost(today.TotalCost),
		today.Sessions,
		today.Queries,
		top,
	)
	if today.PrevDayDelta != nil {
		fmt.Fprintf(&b, "vs yesterday: %s\n", cli.FormatDelta(today.PrevDayDelta))
	}
	if today.PrevWeekDelta != nil {
		fmt.Fprintf(&b, "vs last week: %s\n", cli.FormatDelta(today.PrevWeekDelta))
	}

	hour := now.Hour() + 1
	if hour >= 2 {
		projected := int64(math.Floor(float64(today.TotalTokens)/float64(hour)*24 + 0.5))
		cost := today.TotalCost / float64(hour) * 24
		fmt.Fprintf(&b, "Burn rate: ~%s tokens/day pace · ~%s/day pace\n",
			cli.FormatTokens(projected), cli.FormatCost(cost))
	}
	return b.String()
}
