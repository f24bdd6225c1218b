package slot

import (
	"fmt"
	"time"

	"github.com/daily-darshan/core/internal/models"
)

// Session splits the publishing day into the two upload rounds the admin
// dashboard tracks.
type Session string

const (
	SessionMorning Session = "morning"
	SessionEvening Session = "evening"
)

// sessionSwitchHour: temples are chased for morning content until noon
// business time, then for evening content.
const sessionSwitchHour = 12

// ParseSession validates a raw session value.
func ParseSession(raw string) (Session, error) {
	switch Session(raw) {
	case SessionMorning, SessionEvening:
		return Session(raw), nil
	}
	return "", fmt.Errorf("unknown session %q", raw)
}

// RequiredTypes returns the slot types a session asks for, before the
// per-temple active-type filter is applied.
func (s Session) RequiredTypes() []models.ContentType {
	if s == SessionMorning {
		return []models.ContentType{models.MorningDarshan, models.MorningAarti}
	}
	return []models.ContentType{models.EveningDarshan, models.EveningAarti}
}

// CurrentSession derives the session from an instant.
func (c *Calendar) CurrentSession(now time.Time) Session {
	if now.In(c.loc).Hour() < sessionSwitchHour {
		return SessionMorning
	}
	return SessionEvening
}

// TaskStatus classifies a temple's upload progress for one (date, session).
type TaskStatus string

const (
	// StatusPending means at least one required active slot is still missing.
	StatusPending TaskStatus = "PENDING"
	// StatusCompleted means every required active slot is filled.
	StatusCompleted TaskStatus = "COMPLETED"
	// StatusNotApplicable means the session requires nothing from this
	// temple: no required type is in its activeContentTypes.
	StatusNotApplicable TaskStatus = "NOT_APPLICABLE"
)

// SlotState is the per-(temple, date, contentType) state machine: MISSING
// until the first upload assignment, FILLED afterwards. Re-uploads overwrite
// the URL but the state stays FILLED.
type SlotState string

const (
	SlotMissing SlotState = "MISSING"
	SlotFilled  SlotState = "FILLED"
)

// StateOf reports the state of a single slot on a given day.
func StateOf(day models.DailySlots, ct models.ContentType) SlotState {
	if day.Get(ct) != "" {
		return SlotFilled
	}
	return SlotMissing
}

// Status computes a temple's task status for one date key and session.
// Only activeContentTypes participate: a slot type the temple does not
// publish is excluded from both sides of the completion check, and a temple
// with no relevant active types is never PENDING.
func Status(t *models.TempleModel, dateKey string, session Session) TaskStatus {
	active := t.ActiveSet()
	var relevant []models.ContentType
	for _, ct := range session.RequiredTypes() {
		if _, ok := active[ct]; ok {
			relevant = append(relevant, ct)
		}
	}
	if len(relevant) == 0 {
		return StatusNotApplicable
	}

	day := t.Videos[dateKey]
	for _, ct := range relevant {
		if StateOf(day, ct) == SlotMissing {
			return StatusPending
		}
	}
	return StatusCompleted
}
