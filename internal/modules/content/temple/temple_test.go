package temple

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/daily-darshan/core/internal/database"
	"github.com/daily-darshan/core/internal/middleware"
	"github.com/daily-darshan/core/internal/models"
	"github.com/daily-darshan/core/internal/modules/content/slot"
	"github.com/gin-gonic/gin"
)

func ist(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("Asia/Kolkata")
	if err != nil {
		t.Fatalf("load IST: %v", err)
	}
	return loc
}

func newTestService(t *testing.T) *Service {
	t.Helper()
	repo, err := NewFileRepository(t.TempDir())
	if err != nil {
		t.Fatalf("file repository: %v", err)
	}
	loc := ist(t)
	svc := NewService(repo, slot.NewCalendar(loc))
	svc.now = func() time.Time {
		return time.Date(2024, 5, 17, 10, 0, 0, 0, loc)
	}
	return svc
}

func mustCreate(t *testing.T, svc *Service, dto *CreateTempleDTO) *models.TempleModel {
	t.Helper()
	created, err := svc.Create(context.Background(), dto)
	if err != nil {
		t.Fatalf("create temple: %v", err)
	}
	return created
}

func TestAssignSlotPreservesSiblings(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	created := mustCreate(t, svc, &CreateTempleDTO{
		Name: "Shree Dwarkadhish", Location: "Dwarka",
		ActiveContentTypes: []string{"morningAarti", "eveningAarti"},
	})

	if _, err := svc.AssignSlot(ctx, created.ID, &AssignSlotDTO{
		Date: "2024-05-17", ContentType: "morningAarti", URL: "https://cdn/m1.mp4",
	}); err != nil {
		t.Fatalf("assign morningAarti: %v", err)
	}
	if _, err := svc.AssignSlot(ctx, created.ID, &AssignSlotDTO{
		Date: "2024-05-17", ContentType: "eveningAarti", URL: "https://cdn/e1.mp4",
	}); err != nil {
		t.Fatalf("assign eveningAarti: %v", err)
	}

	got, err := svc.Get(ctx, created.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	day := got.Videos["2024-05-17"]
	if day.MorningAarti != "https://cdn/m1.mp4" {
		t.Errorf("morningAarti clobbered, got %q", day.MorningAarti)
	}
	if day.EveningAarti != "https://cdn/e1.mp4" {
		t.Errorf("eveningAarti = %q", day.EveningAarti)
	}
}

func TestAssignSlotLastWriteWins(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	created := mustCreate(t, svc, &CreateTempleDTO{Name: "Somnath", Location: "Somnath"})

	for _, url := range []string{"https://cdn/a.jpg", "https://cdn/b.jpg"} {
		if _, err := svc.AssignSlot(ctx, created.ID, &AssignSlotDTO{
			Date: "2024-05-17", ContentType: "morningDarshan", URL: url,
		}); err != nil {
			t.Fatalf("assign: %v", err)
		}
	}

	got, _ := svc.Get(ctx, created.ID)
	day := got.Videos["2024-05-17"]
	if day.MorningDarshan != "https://cdn/b.jpg" {
		t.Errorf("want second URL, got %q", day.MorningDarshan)
	}
	if day.EveningDarshan != "" || day.MorningAarti != "" || day.EveningAarti != "" {
		t.Errorf("siblings touched: %+v", day)
	}
}

func TestAssignSlotDefaultsToToday(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	created := mustCreate(t, svc, &CreateTempleDTO{Name: "Ambaji", Location: "Ambaji"})

	dateKey, err := svc.AssignSlot(ctx, created.ID, &AssignSlotDTO{
		ContentType: "eveningDarshan", URL: "https://cdn/e.jpg",
	})
	if err != nil {
		t.Fatalf("assign: %v", err)
	}
	if dateKey != "2024-05-17" {
		t.Errorf("default date = %q, want today", dateKey)
	}
}

func TestAssignSlotRejectsBadInput(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	created := mustCreate(t, svc, &CreateTempleDTO{Name: "Kashi", Location: "Varanasi"})

	cases := []struct {
		name string
		dto  AssignSlotDTO
	}{
		{"unknown content type", AssignSlotDTO{ContentType: "nightDarshan", URL: "https://x"}},
		{"bad date", AssignSlotDTO{Date: "17-05-2024", ContentType: "morningAarti", URL: "https://x"}},
		{"impossible date", AssignSlotDTO{Date: "2024-13-40", ContentType: "morningAarti", URL: "https://x"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.AssignSlot(ctx, created.ID, &tc.dto); err == nil {
				t.Error("want validation error")
			}
		})
	}

	if _, err := svc.AssignSlot(ctx, "missing-id", &AssignSlotDTO{
		ContentType: "morningAarti", URL: "https://x",
	}); !errors.Is(err, database.ErrNotFound) {
		t.Errorf("unknown temple err = %v, want ErrNotFound", err)
	}
}

func TestRoundTrip(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	created := mustCreate(t, svc, &CreateTempleDTO{
		Name: "Jagannath", Location: "Puri",
		ActiveContentTypes: []string{"morningDarshan", "eveningDarshan", "morningAarti", "eveningAarti"},
	})

	assignments := []AssignSlotDTO{
		{Date: "2024-05-16", ContentType: "morningDarshan", URL: "https://cdn/16-md.jpg"},
		{Date: "2024-05-16", ContentType: "morningAarti", URL: "https://cdn/16-ma.mp4"},
		{Date: "2024-05-17", ContentType: "eveningDarshan", URL: "https://cdn/17-ed.jpg"},
		{Date: "2024-05-17", ContentType: "eveningAarti", URL: "https://cdn/17-ea.mp4"},
	}
	for _, a := range assignments {
		if _, err := svc.AssignSlot(ctx, created.ID, &a); err != nil {
			t.Fatalf("assign %s/%s: %v", a.Date, a.ContentType, err)
		}
	}

	got, err := svc.Get(ctx, created.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(got.Videos) != 2 {
		t.Fatalf("date keys = %d, want 2: %v", len(got.Videos), got.Videos)
	}
	d16 := got.Videos["2024-05-16"]
	if d16.MorningDarshan != "https://cdn/16-md.jpg" || d16.MorningAarti != "https://cdn/16-ma.mp4" {
		t.Errorf("2024-05-16 = %+v", d16)
	}
	if d16.EveningDarshan != "" || d16.EveningAarti != "" {
		t.Errorf("2024-05-16 has extra slots: %+v", d16)
	}
	d17 := got.Videos["2024-05-17"]
	if d17.EveningDarshan != "https://cdn/17-ed.jpg" || d17.EveningAarti != "https://cdn/17-ea.mp4" {
		t.Errorf("2024-05-17 = %+v", d17)
	}
}

func TestClearSlotDropsEmptyDay(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	created := mustCreate(t, svc, &CreateTempleDTO{Name: "Mahakal", Location: "Ujjain"})

	if _, err := svc.AssignSlot(ctx, created.ID, &AssignSlotDTO{
		Date: "2024-05-17", ContentType: "morningAarti", URL: "https://cdn/a.mp4",
	}); err != nil {
		t.Fatalf("assign: %v", err)
	}
	if err := svc.ClearSlot(ctx, created.ID, &ClearSlotDTO{
		Date: "2024-05-17", ContentType: "morningAarti",
	}); err != nil {
		t.Fatalf("clear: %v", err)
	}

	got, _ := svc.Get(ctx, created.ID)
	if _, ok := got.Videos["2024-05-17"]; ok {
		t.Errorf("empty day record kept: %v", got.Videos)
	}
}

func TestTasksActiveTypeFilter(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	photosOnly := mustCreate(t, svc, &CreateTempleDTO{
		Name: "Photos Only", Location: "A",
		ActiveContentTypes: []string{"morningDarshan", "eveningDarshan"},
	})
	inactive := mustCreate(t, svc, &CreateTempleDTO{Name: "No Active", Location: "B"})
	full := mustCreate(t, svc, &CreateTempleDTO{
		Name: "Full", Location: "C",
		ActiveContentTypes: []string{"morningDarshan", "morningAarti"},
	})

	// photosOnly's morning requirement is morningDarshan alone; the missing
	// morningAarti must not count as pending.
	if _, err := svc.AssignSlot(ctx, photosOnly.ID, &AssignSlotDTO{
		Date: "2024-05-17", ContentType: "morningDarshan", URL: "https://cdn/p.jpg",
	}); err != nil {
		t.Fatalf("assign: %v", err)
	}

	report, err := svc.Tasks(ctx, slot.SessionMorning)
	if err != nil {
		t.Fatalf("tasks: %v", err)
	}
	if report.Date != "2024-05-17" {
		t.Errorf("report date = %q", report.Date)
	}

	statusOf := func(id string) (slot.TaskStatus, []models.ContentType) {
		for _, it := range report.Pending {
			if it.ID == id {
				return it.Status, it.Missing
			}
		}
		for _, it := range report.Completed {
			if it.ID == id {
				return it.Status, it.Missing
			}
		}
		for _, it := range report.NotApplicable {
			if it.ID == id {
				return it.Status, it.Missing
			}
		}
		t.Fatalf("temple %s not in report", id)
		return "", nil
	}

	if st, _ := statusOf(photosOnly.ID); st != slot.StatusCompleted {
		t.Errorf("photos-only temple = %s, want COMPLETED", st)
	}
	if st, _ := statusOf(inactive.ID); st != slot.StatusNotApplicable {
		t.Errorf("no-active temple = %s, want NOT_APPLICABLE", st)
	}
	st, missing := statusOf(full.ID)
	if st != slot.StatusPending {
		t.Errorf("full temple = %s, want PENDING", st)
	}
	if len(missing) != 2 {
		t.Errorf("missing = %v, want both morning types", missing)
	}
}

func TestCleanupExpired(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	created := mustCreate(t, svc, &CreateTempleDTO{Name: "Old Content", Location: "D"})

	for _, a := range []AssignSlotDTO{
		{Date: "2024-05-10", ContentType: "morningDarshan", URL: "https://cdn/old.jpg"},
		{Date: "2024-05-16", ContentType: "morningDarshan", URL: "https://cdn/y.jpg"},
		{Date: "2024-05-17", ContentType: "morningDarshan", URL: "https://cdn/t.jpg"},
	} {
		if _, err := svc.AssignSlot(ctx, created.ID, &a); err != nil {
			t.Fatalf("assign: %v", err)
		}
	}

	removed, err := svc.CleanupExpired(ctx)
	if err != nil {
		t.Fatalf("cleanup: %v", err)
	}
	if removed != 1 {
		t.Errorf("removed = %d, want 1", removed)
	}

	got, _ := svc.Get(ctx, created.ID)
	if _, ok := got.Videos["2024-05-10"]; ok {
		t.Error("stale date survived cleanup")
	}
	for _, key := range []string{"2024-05-16", "2024-05-17"} {
		if _, ok := got.Videos[key]; !ok {
			t.Errorf("still-visible date %s was purged", key)
		}
	}

	// Idempotent: a second pass finds nothing.
	if removed, _ := svc.CleanupExpired(ctx); removed != 0 {
		t.Errorf("second pass removed %d", removed)
	}
}

func TestCreateRejectsUnknownActiveType(t *testing.T) {
	svc := newTestService(t)
	if _, err := svc.Create(context.Background(), &CreateTempleDTO{
		Name: "Bad", Location: "X", ActiveContentTypes: []string{"middayDarshan"},
	}); err == nil {
		t.Error("want validation error for unknown active type")
	}
}

func newTestRouter(t *testing.T, svc *Service) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	// Stand-ins for the real JWT middleware: X-Test-Admin marks the request
	// as an authenticated admin.
	optional := func(c *gin.Context) {
		if c.GetHeader("X-Test-Admin") != "" {
			c.Set(middleware.ContextKeyAdminEmail, "admin@test")
		}
		c.Next()
	}
	requireAuth := func(c *gin.Context) {
		if !middleware.IsAuthenticated(c) {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}
		c.Next()
	}
	api := r.Group("/api", optional)
	NewHandler(svc).RegisterRoutes(api, requireAuth)
	return r
}

func TestHandlerReaderGetsFilteredVideos(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	created := mustCreate(t, svc, &CreateTempleDTO{Name: "Filtered", Location: "E"})
	for _, a := range []AssignSlotDTO{
		{Date: "2024-05-10", ContentType: "morningDarshan", URL: "https://cdn/old.jpg"},
		{Date: "2024-05-16", ContentType: "morningDarshan", URL: "https://cdn/y.jpg"},
		{Date: "2024-05-17", ContentType: "morningDarshan", URL: "https://cdn/t.jpg"},
	} {
		if _, err := svc.AssignSlot(ctx, created.ID, &a); err != nil {
			t.Fatalf("assign: %v", err)
		}
	}
	r := newTestRouter(t, svc)

	// now is fixed at 10:00, past the 06:00 cutoff: readers see today only.
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/temples/"+created.ID, nil)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var reader templeResponse
	if err := json.Unmarshal(w.Body.Bytes(), &reader); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(reader.Videos) != 1 {
		t.Errorf("reader sees %d dates, want 1: %v", len(reader.Videos), reader.Videos)
	}
	if _, ok := reader.Videos["2024-05-17"]; !ok {
		t.Errorf("reader missing today: %v", reader.Videos)
	}

	// Admin view is unfiltered.
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/api/temples/"+created.ID, nil)
	req.Header.Set("X-Test-Admin", "1")
	r.ServeHTTP(w, req)
	var admin templeResponse
	if err := json.Unmarshal(w.Body.Bytes(), &admin); err != nil {
		t.Fatalf("decode admin: %v", err)
	}
	if len(admin.Videos) != 3 {
		t.Errorf("admin sees %d dates, want 3", len(admin.Videos))
	}
}

func TestHandlerValidationAndAuth(t *testing.T) {
	svc := newTestService(t)
	r := newTestRouter(t, svc)

	// Missing required fields.
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/temples",
		bytes.NewBufferString(`{"name":"No Location"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Test-Admin", "1")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("missing location status = %d, want 400", w.Code)
	}

	// Unauthenticated create is rejected.
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/api/temples",
		bytes.NewBufferString(`{"name":"T","location":"L"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("anon create status = %d, want 401", w.Code)
	}

	// Slot write to unknown temple.
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPut, "/api/temples/nope/slots",
		bytes.NewBufferString(`{"contentType":"morningAarti","url":"https://x"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Test-Admin", "1")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Errorf("unknown temple status = %d, want 404", w.Code)
	}
}
