package pipeline

import (
	"strings"
	"time"

	"github.com/samber/lo"

	"github.com/GauravRatnawat/claudetop/internal/model"
)

// FilterByDays keeps sessions dated within the last days calendar days
// (UTC) of now. days <= 0 keeps everything. Undated sessions are dropped
// when a window is active.
func FilterByDays(sessions []model.Session, days int, now time.Time) []model.Session {
	if days <= 0 {
		return sessions
	}
	cutoff := now.UTC().AddDate(0, 0, -days).Format(model.DateLayout)
	return lo.Filter(sessions, func(s model.Session, _ int) bool {
		return s.Date != model.DateUnknown && s.Date >= cutoff
	})
}

// FilterByProject returns sessions whose raw or short project name contains
// the substring, ignoring case.
func FilterByProject(sessions []model.Session, project string) []model.Session {
	if project == "" {
		return sessions
	}
	return lo.Filter(sessions, func(s model.Session, _ int) bool {
		return containsIgnoreCase(s.Project, project) ||
			containsIgnoreCase(model.ProjectShort(s.Project), project)
	})
}

// FilterByModel returns sessions whose dominant model contains the substring.
func FilterByModel(sessions []model.Session, modelFilter string) []model.Session {
	if modelFilter == "" {
		return sessions
	}
	return lo.Filter(sessions, func(s model.Session, _ int) bool {
		return containsIgnoreCase(s.Model, modelFilter)
	})
}

func containsIgnoreCase(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
