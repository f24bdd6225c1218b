package slot

import (
	"time"

	"github.com/daily-darshan/core/internal/models"
)

// VisibleVideos returns the subset of a temple's videos map that is inside
// its publication window at the given instant. Records outside the window
// may still exist in storage until a cleanup pass removes them; they are
// simply never serialized to readers.
func (c *Calendar) VisibleVideos(videos map[string]models.DailySlots, now time.Time) map[string]models.DailySlots {
	out := make(map[string]models.DailySlots)
	for _, key := range c.VisibleDates(now) {
		if day, ok := videos[key]; ok {
			out[key] = day
		}
	}
	return out
}

// StaleDates returns the date keys strictly older than the retention cutoff,
// i.e. the keys a maintenance pass may delete. Keys that do not parse as
// date keys are left alone.
func (c *Calendar) StaleDates(videos map[string]models.DailySlots, now time.Time) []string {
	cutoff := c.RetentionCutoff(now)
	var stale []string
	for key := range videos {
		if _, err := ParseDateKey(key); err != nil {
			continue
		}
		if key < cutoff {
			stale = append(stale, key)
		}
	}
	return stale
}
