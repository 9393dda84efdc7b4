package source

import (
	"errors"
	"iter"
	"time"

	"github.com/GauravRatnawat/claudetop/internal/config"
	"github.com/GauravRatnawat/claudetop/internal/model"
)

// Reconstruction is the ordered turn list of one log plus its time span.
type Reconstruction struct {
	Queries     []model.Query
	First       time.Time
	Last        time.Time
	ParseErrors int
}

// pendingPrompt is the most recent user message not yet answered.
type pendingPrompt struct {
	text *string
	ts   *time.Time
}

// Reconstruct folds a log's entries into queries. Each assistant response
// with usage becomes one Query attributed to the pending user message, which
// it then consumes. Synthetic responses consume the pending message and emit
// nothing.
//
// Malformed lines are counted and skipped. A FileError aborts the fold.
func Reconstruct(entries iter.Seq2[LogEntry, error]) (Reconstruction, error) {
	var (
		rec     Reconstruction
		pending *pendingPrompt
	)

	for entry, err := range entries {
		if err != nil {
			var fe *FileError
			if errors.As(err, &fe) {
				return Reconstruction{}, err
			}
			rec.ParseErrors++
			continue
		}

		if ts := entry.Time(); !ts.IsZero() {
			if rec.First.IsZero() || ts.Before(rec.First) {
				rec.First = ts
			}
			if rec.Last.IsZero() || ts.After(rec.Last) {
				rec.Last = ts
			}
		}

		switch e := entry.(type) {
		case UserEntry:
			if e.Role != "user" || e.IsMeta || e.IsCommandEcho {
				continue
			}
			p := &pendingPrompt{}
			if e.HasText {
				text := e.Text
				p.text = &text
			}
			if !e.Timestamp.IsZero() {
				ts := e.Timestamp
				p.ts = &ts
			}
			pending = p

		case AssistantEntry:
			if e.Usage == nil {
				continue
			}
			modelID := e.Model
			if modelID == "" {
				modelID = model.ModelUnknown
			}
			if modelID == model.ModelSynthetic {
				pending = nil
				continue
			}

			var prompt *string
			var userTS *time.Time
			if pending != nil {
				prompt, userTS = pending.text, pending.ts
				pending = nil
			}
			u := e.Usage
			cost := config.CalculateCost(modelID, u.RawInput, u.CacheCreate, u.CacheRead, u.Output)
			rec.Queries = append(rec.Queries, model.NewQuery(
				prompt, userTS, e.Timestamp, modelID,
				u.RawInput, u.CacheCreate, u.CacheRead, u.Output,
				cost, e.Tools,
			))
		}
	}
	return rec, nil
}
