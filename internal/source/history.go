package source

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
)

// HistoryLabels maps a session id to the first prompt the user typed in it,
// as recorded in history.jsonl.
type HistoryLabels map[string]string

// Short slash commands like "/clear" say nothing about a session.
const maxSkippedCommandLen = 30

type historyLine struct {
	SessionID string `json:"sessionId"`
	Display   string `json:"display"`
}

// LoadHistory reads history.jsonl. The first usable entry per session wins.
// A missing file yields an empty map; malformed lines are skipped.
func LoadHistory(path string) (HistoryLabels, error) {
	labels := make(HistoryLabels)

	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return labels, nil
		}
		return labels, fmt.Errorf("opening history: %w", err)
	}
	defer func() { _ = f.Close() }()

	err = forEachLine(f, func(_ int, line []byte, err error) bool {
		var h historyLine
		if err != nil || json.Unmarshal(line, &h) != nil {
			return true
		}
		if h.SessionID == "" || h.Display == "" {
			return true
		}
		if _, seen := labels[h.SessionID]; seen {
			return true
		}
		display := strings.TrimSpace(h.Display)
		if display == "" {
			return true
		}
		if strings.HasPrefix(display, "/") && len(display) < maxSkippedCommandLen {
			return true
		}
		labels[h.SessionID] = display
		return true
	})
	if err != nil {
		return labels, fmt.Errorf("reading history: %w", err)
	}
	return labels, nil
}
