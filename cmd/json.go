package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/GauravRatnawat/claudetop/internal/model"
)

var jsonCmd = &cobra.Command{
	Use:   "json",
	Short: "Dump the aggregate as JSON",
	Long:  "Dump the aggregate as JSON. Sessions carry queryCount instead of their per-turn list.",
	Args:  cobra.NoArgs,
	RunE:  runJSON,
}

func init() {
	rootCmd.AddCommand(jsonCmd)
}

func runJSON(cmd *cobra.Command, _ []string) error {
	agg, _, err := loadAggregate(cmd.Context())
	if err != nil {
		return err
	}
	return writeJSON(cmd.OutOrStdout(), agg)
}

// writeJSON encodes agg with the per-turn query lists stripped. agg is not
// modified.
func writeJSON(w io.Writer, agg *model.Aggregate) error {
	out := *agg
	out.Sessions = make([]model.Session, len(agg.Sessions))
	for i, s := range agg.Sessions {
		s.QueryCount = len(s.Queries)
		s.Queries = nil
		out.Sessions[i] = s
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encoding aggregate: %w", err)
	}
	return nil
}
