package slot

import (
	"fmt"
	"regexp"
	"time"
)

// DateKeyLayout is the canonical form of a videos map key.
const DateKeyLayout = "2006-01-02"

// visibilityCutoffHour is the business-time hour at which the previous day's
// content stops being served: a day's uploads are visible from D 00:00
// through D+1 06:00, a 30-hour publication window.
const visibilityCutoffHour = 6

var dateKeyPattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// Calendar resolves wall-clock instants to civil date keys in the single
// fixed business timezone. Every date computation in the slot model goes
// through one Calendar so that server and clients can never disagree about
// which day it is near midnight.
type Calendar struct {
	loc *time.Location
}

// NewCalendar creates a Calendar pinned to the given business timezone.
func NewCalendar(loc *time.Location) *Calendar {
	if loc == nil {
		loc = time.UTC
	}
	return &Calendar{loc: loc}
}

// Location returns the business timezone.
func (c *Calendar) Location() *time.Location { return c.loc }

// DateKey normalizes an instant to its YYYY-MM-DD civil date key.
func (c *Calendar) DateKey(t time.Time) string {
	return t.In(c.loc).Format(DateKeyLayout)
}

// ParseDateKey validates a client-supplied date key.
func ParseDateKey(raw string) (string, error) {
	if !dateKeyPattern.MatchString(raw) {
		return "", fmt.Errorf("invalid date key %q, want YYYY-MM-DD", raw)
	}
	if _, err := time.Parse(DateKeyLayout, raw); err != nil {
		return "", fmt.Errorf("invalid date key %q: %w", raw, err)
	}
	return raw, nil
}

// VisibleDates returns the date keys whose slot records are currently inside
// their publication window, oldest first. Before the 06:00 cutoff both
// yesterday and today are live; afterwards only today.
func (c *Calendar) VisibleDates(now time.Time) []string {
	local := now.In(c.loc)
	today := local.Format(DateKeyLayout)
	if local.Hour() < visibilityCutoffHour {
		yesterday := local.AddDate(0, 0, -1).Format(DateKeyLayout)
		return []string{yesterday, today}
	}
	return []string{today}
}

// RetentionCutoff returns the oldest date key that may still become visible.
// A cleanup pass may physically delete any key strictly older than this;
// keys at or after the cutoff must be kept.
func (c *Calendar) RetentionCutoff(now time.Time) string {
	return now.In(c.loc).AddDate(0, 0, -1).Format(DateKeyLayout)
}
