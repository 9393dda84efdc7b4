package pipeline

import (
	"sort"

	"github.com/GauravRatnawat/claudetop/internal/config"
	"github.com/GauravRatnawat/claudetop/internal/model"
)

// ModelCost holds the cost components for one model.
type ModelCost struct {
	Model      string
	Input      float64
	CacheWrite float64
	CacheRead  float64
	Output     float64
	Total      float64
}

// CostBreakdown splits the cost of every query by token category.
// Unknown models are priced at the default tier, so the parts add up to the
// sessions' TotalCost.
func CostBreakdown(sessions []model.Session) (model.CostBreakdown, []ModelCost) {
	var totals model.CostBreakdown
	byModel := make(map[string]*ModelCost)

	for _, s := range sessions {
		for _, q := range s.Queries {
			p := config.LookupPricing(q.Model)
			input := float64(q.RawInputTokens) * p.Input / 1_000_000
			cacheWrite := float64(q.CacheCreationTokens) * p.CacheWrite / 1_000_000
			cacheRead := float64(q.CacheReadTokens) * p.CacheRead / 1_000_000
			output := float64(q.OutputTokens) * p.Output / 1_000_000

			totals.Input += input
			totals.CacheWrite += cacheWrite
			totals.CacheRead += cacheRead
			totals.Output += output

			row, ok := byModel[q.Model]
			if !ok {
				row = &ModelCost{Model: q.Model}
				byModel[q.Model] = row
			}
			row.Input += input
			row.CacheWrite += cacheWrite
			row.CacheRead += cacheRead
			row.Output += output
		}
	}

	rows := make([]ModelCost, 0, len(byModel))
	for _, row := range byModel {
		row.Total = row.Input + row.CacheWrite + row.CacheRead + row.Output
		rows = append(rows, *row)
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Total != rows[j].Total {
			return rows[i].Total > rows[j].Total
		}
		return rows[i].Model < rows[j].Model
	})

	return totals, rows
}
