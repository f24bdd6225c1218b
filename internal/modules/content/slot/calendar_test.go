package slot

import (
	"reflect"
	"testing"
	"time"

	"github.com/daily-darshan/core/internal/models"
)

func ist(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("Asia/Kolkata")
	if err != nil {
		t.Fatalf("load Asia/Kolkata: %v", err)
	}
	return loc
}

func TestDateKey(t *testing.T) {
	loc := ist(t)
	cal := NewCalendar(loc)

	// 2024-05-16 23:30 UTC is already 2024-05-17 05:00 in IST. The date key
	// must follow the business calendar, not the instant's own zone.
	instant := time.Date(2024, 5, 16, 23, 30, 0, 0, time.UTC)
	if got := cal.DateKey(instant); got != "2024-05-17" {
		t.Errorf("DateKey = %q, want 2024-05-17", got)
	}
}

func TestVisibleDates(t *testing.T) {
	loc := ist(t)
	cal := NewCalendar(loc)

	tests := []struct {
		name string
		now  time.Time
		want []string
	}{
		{
			name: "before cutoff both days visible",
			now:  time.Date(2024, 5, 17, 5, 30, 0, 0, loc),
			want: []string{"2024-05-16", "2024-05-17"},
		},
		{
			name: "at cutoff only today",
			now:  time.Date(2024, 5, 17, 6, 0, 0, 0, loc),
			want: []string{"2024-05-17"},
		},
		{
			name: "after cutoff only today",
			now:  time.Date(2024, 5, 17, 7, 0, 0, 0, loc),
			want: []string{"2024-05-17"},
		},
		{
			name: "midnight keeps yesterday alive",
			now:  time.Date(2024, 5, 18, 0, 0, 0, 0, loc),
			want: []string{"2024-05-17", "2024-05-18"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := cal.VisibleDates(tt.now); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("VisibleDates(%v) = %v, want %v", tt.now, got, tt.want)
			}
		})
	}
}

func TestVisibleVideos(t *testing.T) {
	loc := ist(t)
	cal := NewCalendar(loc)
	videos := map[string]models.DailySlots{
		"2024-05-15": {MorningDarshan: "https://cdn/old.jpg"},
		"2024-05-16": {MorningDarshan: "https://cdn/a.jpg"},
		"2024-05-17": {EveningAarti: "https://cdn/b.mp4"},
	}

	early := time.Date(2024, 5, 17, 5, 30, 0, 0, loc)
	got := cal.VisibleVideos(videos, early)
	if len(got) != 2 {
		t.Fatalf("at 05:30 got %d visible dates, want 2: %v", len(got), got)
	}
	if _, ok := got["2024-05-16"]; !ok {
		t.Error("2024-05-16 should still be visible before 06:00")
	}
	if _, ok := got["2024-05-15"]; ok {
		t.Error("2024-05-15 must never be visible")
	}

	late := time.Date(2024, 5, 17, 7, 0, 0, 0, loc)
	got = cal.VisibleVideos(videos, late)
	if len(got) != 1 {
		t.Fatalf("at 07:00 got %d visible dates, want 1: %v", len(got), got)
	}
	if _, ok := got["2024-05-17"]; !ok {
		t.Error("today must be visible after 06:00")
	}
}

func TestRetentionCutoffAndStaleDates(t *testing.T) {
	loc := ist(t)
	cal := NewCalendar(loc)
	now := time.Date(2024, 5, 17, 3, 0, 0, 0, loc)

	if got := cal.RetentionCutoff(now); got != "2024-05-16" {
		t.Fatalf("RetentionCutoff = %q, want 2024-05-16", got)
	}

	videos := map[string]models.DailySlots{
		"2024-05-10": {MorningAarti: "u"},
		"2024-05-16": {MorningAarti: "u"},
		"2024-05-17": {MorningAarti: "u"},
		"garbage":    {MorningAarti: "u"},
	}
	stale := cal.StaleDates(videos, now)
	if len(stale) != 1 || stale[0] != "2024-05-10" {
		t.Errorf("StaleDates = %v, want [2024-05-10]", stale)
	}
}

func TestParseDateKey(t *testing.T) {
	if _, err := ParseDateKey("2024-05-17"); err != nil {
		t.Errorf("valid key rejected: %v", err)
	}
	for _, bad := range []string{"17-05-2024", "2024/05/17", "2024-13-01", "", "2024-05-17T00:00"} {
		if _, err := ParseDateKey(bad); err == nil {
			t.Errorf("ParseDateKey(%q) accepted, want error", bad)
		}
	}
}

func TestParseContentType(t *testing.T) {
	for _, raw := range []string{"morningDarshan", "eveningDarshan", "morningAarti", "eveningAarti"} {
		if _, err := models.ParseContentType(raw); err != nil {
			t.Errorf("ParseContentType(%q) = %v, want ok", raw, err)
		}
	}
	for _, bad := range []string{"MorningDarshan", "nightAarti", "", "videos"} {
		if _, err := models.ParseContentType(bad); err == nil {
			t.Errorf("ParseContentType(%q) accepted, want error", bad)
		}
	}
}
