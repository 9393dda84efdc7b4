package source

import (
	"github.com/GauravRatnawat/claudetop/internal/model"
)

// ParseResult holds the output of parsing a single JSONL file. Session is nil
// when the file produced no queries.
type ParseResult struct {
	Session     *model.Session
	ParseErrors int
	Err         error
}

// ParseFile reads a session log and builds its Session. labels supplies the
// history-derived first-prompt label; it may be nil.
func ParseFile(df DiscoveredFile, labels HistoryLabels) ParseResult {
	rec, err := Reconstruct(OpenLog(df.Path).Entries())
	if err != nil {
		return ParseResult{Err: err}
	}
	return ParseResult{
		Session:     SessionFrom(df, labels, rec),
		ParseErrors: rec.ParseErrors,
	}
}

// SessionFrom attributes a reconstruction to the session named by df.
// It returns nil when there are no queries.
func SessionFrom(df DiscoveredFile, labels HistoryLabels, rec Reconstruction) *model.Session {
	if len(rec.Queries) == 0 {
		return nil
	}
	s := model.NewSession(model.SessionMeta{
		ID:             df.SessionID,
		Project:        df.ProjectDir,
		Label:          labels[df.SessionID],
		FirstTimestamp: rec.First,
		LastTimestamp:  rec.Last,
	}, rec.Queries)
	return &s
}
