package temple

import (
	"context"
	"errors"
	"time"

	"github.com/daily-darshan/core/internal/database"
	"github.com/daily-darshan/core/internal/middleware"
	"github.com/daily-darshan/core/internal/models"
	"github.com/daily-darshan/core/internal/modules/content/slot"
	"github.com/daily-darshan/core/internal/pkg/response"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type CreateTempleDTO struct {
	Name               string   `json:"name"               binding:"required"`
	NameHindi          string   `json:"nameHindi"`
	Description        string   `json:"description"`
	DescriptionHindi   string   `json:"descriptionHindi"`
	Location           string   `json:"location"           binding:"required"`
	LocationHindi      string   `json:"locationHindi"`
	Image              string   `json:"image"`
	ActiveContentTypes []string `json:"activeContentTypes"`
}

type UpdateTempleDTO struct {
	Name               *string   `json:"name"`
	NameHindi          *string   `json:"nameHindi"`
	Description        *string   `json:"description"`
	DescriptionHindi   *string   `json:"descriptionHindi"`
	Location           *string   `json:"location"`
	LocationHindi      *string   `json:"locationHindi"`
	Image              *string   `json:"image"`
	ActiveContentTypes *[]string `json:"activeContentTypes"`
}

type AssignSlotDTO struct {
	Date        string `json:"date"`
	ContentType string `json:"contentType" binding:"required"`
	URL         string `json:"url"         binding:"required"`
}

type ClearSlotDTO struct {
	Date        string `json:"date"        binding:"required"`
	ContentType string `json:"contentType" binding:"required"`
}

// TaskItem is one row of the per-session upload checklist.
type TaskItem struct {
	ID      string               `json:"id"`
	Name    string               `json:"name"`
	Status  slot.TaskStatus      `json:"status"`
	Missing []models.ContentType `json:"missing,omitempty"`
}

// TaskReport groups today's temples by status for one session.
type TaskReport struct {
	Date          string       `json:"date"`
	Session       slot.Session `json:"session"`
	Pending       []TaskItem   `json:"pending"`
	Completed     []TaskItem   `json:"completed"`
	NotApplicable []TaskItem   `json:"notApplicable"`
}

type Service struct {
	repo Repository
	cal  *slot.Calendar
	now  func() time.Time
}

func NewService(repo Repository, cal *slot.Calendar) *Service {
	return &Service{repo: repo, cal: cal, now: time.Now}
}

func parseActiveTypes(raw []string) ([]models.ContentType, error) {
	out := make([]models.ContentType, 0, len(raw))
	seen := make(map[models.ContentType]struct{}, len(raw))
	for _, s := range raw {
		ct, err := models.ParseContentType(s)
		if err != nil {
			return nil, err
		}
		if _, dup := seen[ct]; dup {
			continue
		}
		seen[ct] = struct{}{}
		out = append(out, ct)
	}
	return out, nil
}

func (s *Service) List(ctx context.Context) ([]models.TempleModel, error) {
	return s.repo.List(ctx)
}

func (s *Service) Get(ctx context.Context, id string) (*models.TempleModel, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, dto *CreateTempleDTO) (*models.TempleModel, error) {
	active, err := parseActiveTypes(dto.ActiveContentTypes)
	if err != nil {
		return nil, err
	}
	now := s.now()
	t := &models.TempleModel{
		ID:                 uuid.NewString(),
		Name:               dto.Name,
		NameHindi:          dto.NameHindi,
		Description:        dto.Description,
		DescriptionHindi:   dto.DescriptionHindi,
		Location:           dto.Location,
		LocationHindi:      dto.LocationHindi,
		Image:              dto.Image,
		ActiveContentTypes: active,
		Videos:             map[string]models.DailySlots{},
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if err := s.repo.Create(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *Service) Update(ctx context.Context, id string, dto *UpdateTempleDTO) (*models.TempleModel, error) {
	upd := TempleUpdate{
		Name:             dto.Name,
		NameHindi:        dto.NameHindi,
		Description:      dto.Description,
		DescriptionHindi: dto.DescriptionHindi,
		Location:         dto.Location,
		LocationHindi:    dto.LocationHindi,
		Image:            dto.Image,
	}
	if dto.ActiveContentTypes != nil {
		active, err := parseActiveTypes(*dto.ActiveContentTypes)
		if err != nil {
			return nil, err
		}
		upd.ActiveContentTypes = &active
	}
	return s.repo.Update(ctx, id, upd)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

// AssignSlot validates the slot address and writes the URL at the leaf.
// An empty date targets today in the business calendar.
func (s *Service) AssignSlot(ctx context.Context, id string, dto *AssignSlotDTO) (string, error) {
	ct, err := models.ParseContentType(dto.ContentType)
	if err != nil {
		return "", err
	}
	dateKey := dto.Date
	if dateKey == "" {
		dateKey = s.cal.DateKey(s.now())
	} else if dateKey, err = slot.ParseDateKey(dateKey); err != nil {
		return "", err
	}
	return dateKey, s.repo.AssignSlot(ctx, id, dateKey, ct, dto.URL)
}

func (s *Service) ClearSlot(ctx context.Context, id string, dto *ClearSlotDTO) error {
	ct, err := models.ParseContentType(dto.ContentType)
	if err != nil {
		return err
	}
	dateKey, err := slot.ParseDateKey(dto.Date)
	if err != nil {
		return err
	}
	return s.repo.ClearSlot(ctx, id, dateKey, ct)
}

// Tasks builds the upload checklist for today and the given session.
func (s *Service) Tasks(ctx context.Context, session slot.Session) (*TaskReport, error) {
	temples, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	now := s.now()
	dateKey := s.cal.DateKey(now)
	report := &TaskReport{
		Date:          dateKey,
		Session:       session,
		Pending:       []TaskItem{},
		Completed:     []TaskItem{},
		NotApplicable: []TaskItem{},
	}
	for i := range temples {
		t := &temples[i]
		status := slot.Status(t, dateKey, session)
		item := TaskItem{ID: t.ID, Name: t.Name, Status: status}
		if status == slot.StatusPending {
			active := t.ActiveSet()
			day := t.Videos[dateKey]
			for _, ct := range session.RequiredTypes() {
				if _, ok := active[ct]; !ok {
					continue
				}
				if slot.StateOf(day, ct) == slot.SlotMissing {
					item.Missing = append(item.Missing, ct)
				}
			}
		}
		switch status {
		case slot.StatusPending:
			report.Pending = append(report.Pending, item)
		case slot.StatusCompleted:
			report.Completed = append(report.Completed, item)
		default:
			report.NotApplicable = append(report.NotApplicable, item)
		}
	}
	return report, nil
}

// CleanupExpired purges date keys older than the retention cutoff. Safe to
// interrupt: a partial pass only ever leaves extra keys behind.
func (s *Service) CleanupExpired(ctx context.Context) (int, error) {
	return s.repo.PurgeDatesBefore(ctx, s.cal.RetentionCutoff(s.now()))
}

func (s *Service) Count(ctx context.Context) (int64, error) {
	return s.repo.Count(ctx)
}

// StoreKind exposes the backing store name for health reporting.
func (s *Service) StoreKind() string { return s.repo.Kind() }

type templeResponse struct {
	ID                 string                       `json:"id"`
	Name               string                       `json:"name"`
	NameHindi          string                       `json:"nameHindi,omitempty"`
	Description        string                       `json:"description,omitempty"`
	DescriptionHindi   string                       `json:"descriptionHindi,omitempty"`
	Location           string                       `json:"location"`
	LocationHindi      string                       `json:"locationHindi,omitempty"`
	Image              string                       `json:"image,omitempty"`
	ActiveContentTypes []models.ContentType         `json:"activeContentTypes"`
	Videos             map[string]models.DailySlots `json:"videos"`
	Created            time.Time                    `json:"createdAt"`
	Modified           time.Time                    `json:"updatedAt"`
}

// toResponse serializes a temple. Admins see the full videos history for
// editing; readers only get the dates inside the publication window.
func (s *Service) toResponse(t *models.TempleModel, isAdmin bool) templeResponse {
	videos := t.Videos
	if !isAdmin {
		videos = s.cal.VisibleVideos(t.Videos, s.now())
	}
	if videos == nil {
		videos = map[string]models.DailySlots{}
	}
	active := t.ActiveContentTypes
	if active == nil {
		active = []models.ContentType{}
	}
	return templeResponse{
		ID: t.ID, Name: t.Name, NameHindi: t.NameHindi,
		Description: t.Description, DescriptionHindi: t.DescriptionHindi,
		Location: t.Location, LocationHindi: t.LocationHindi,
		Image: t.Image, ActiveContentTypes: active, Videos: videos,
		Created: t.CreatedAt, Modified: t.UpdatedAt,
	}
}

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler { return &Handler{svc: svc} }

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	g := rg.Group("/temples")

	g.GET("", h.list)
	g.GET("/:id", h.get)

	a := g.Group("", authMW)
	a.GET("/tasks", h.tasks)
	a.POST("", h.create)
	a.PUT("/:id", h.update)
	a.DELETE("/:id", h.delete)
	a.PUT("/:id/slots", h.assignSlot)
	a.DELETE("/:id/slots", h.clearSlot)
}

// GET /temples — filtered for readers, full history for admins
func (h *Handler) list(c *gin.Context) {
	items, err := h.svc.List(c.Request.Context())
	if err != nil {
		response.InternalError(c, err)
		return
	}
	isAdmin := middleware.IsAuthenticated(c)
	out := make([]templeResponse, len(items))
	for i := range items {
		out[i] = h.svc.toResponse(&items[i], isAdmin)
	}
	response.OK(c, out)
}

// GET /temples/:id
func (h *Handler) get(c *gin.Context) {
	t, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if errors.Is(err, database.ErrNotFound) {
		response.NotFoundMsg(c, "temple not found")
		return
	}
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.OK(c, h.svc.toResponse(t, middleware.IsAuthenticated(c)))
}

// POST /temples
func (h *Handler) create(c *gin.Context) {
	var dto CreateTempleDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	t, err := h.svc.Create(c.Request.Context(), &dto)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	response.Created(c, h.svc.toResponse(t, true))
}

// PUT /temples/:id
func (h *Handler) update(c *gin.Context) {
	var dto UpdateTempleDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	t, err := h.svc.Update(c.Request.Context(), c.Param("id"), &dto)
	if errors.Is(err, database.ErrNotFound) {
		response.NotFoundMsg(c, "temple not found")
		return
	}
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	response.OK(c, h.svc.toResponse(t, true))
}

// DELETE /temples/:id
func (h *Handler) delete(c *gin.Context) {
	err := h.svc.Delete(c.Request.Context(), c.Param("id"))
	if errors.Is(err, database.ErrNotFound) {
		response.NotFoundMsg(c, "temple not found")
		return
	}
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.NoContent(c)
}

// PUT /temples/:id/slots
func (h *Handler) assignSlot(c *gin.Context) {
	var dto AssignSlotDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	dateKey, err := h.svc.AssignSlot(c.Request.Context(), c.Param("id"), &dto)
	if errors.Is(err, database.ErrNotFound) {
		response.NotFoundMsg(c, "temple not found")
		return
	}
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	response.OK(c, gin.H{
		"id":          c.Param("id"),
		"date":        dateKey,
		"contentType": dto.ContentType,
		"url":         dto.URL,
	})
}

// DELETE /temples/:id/slots
func (h *Handler) clearSlot(c *gin.Context) {
	var dto ClearSlotDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	err := h.svc.ClearSlot(c.Request.Context(), c.Param("id"), &dto)
	if errors.Is(err, database.ErrNotFound) {
		response.NotFoundMsg(c, "temple not found")
		return
	}
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	response.NoContent(c)
}

// GET /temples/tasks?session=morning|evening
func (h *Handler) tasks(c *gin.Context) {
	var session slot.Session
	if raw := c.Query("session"); raw != "" {
		var err error
		if session, err = slot.ParseSession(raw); err != nil {
			response.BadRequest(c, err.Error())
			return
		}
	} else {
		session = h.svc.cal.CurrentSession(h.svc.now())
	}
	report, err := h.svc.Tasks(c.Request.Context(), session)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.OK(c, report)
}
