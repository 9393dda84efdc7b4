package pipeline

import (
	"time"

	"github.com/GauravRatnawat/claudetop/internal/model"
)

// HourlyActivity counts queries by the local hour of their response.
// Queries without a response timestamp are not counted.
func HourlyActivity(sessions []model.Session, loc *time.Location) [24]int {
	if loc == nil {
		loc = time.Local
	}
	var hours [24]int
	for _, s := range sessions {
		for _, q := range s.Queries {
			if q.AssistantTimestamp.IsZero() {
				continue
			}
			hours[q.AssistantTimestamp.In(loc).Hour()]++
		}
	}
	return hours
}
