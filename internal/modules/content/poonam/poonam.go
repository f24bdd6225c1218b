package poonam

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/daily-darshan/core/internal/database"
	"github.com/daily-darshan/core/internal/models"
	"github.com/daily-darshan/core/internal/pkg/response"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type CreatePoonamDTO struct {
	StartDateTime    time.Time `json:"startDateTime"    binding:"required"`
	EndDateTime      time.Time `json:"endDateTime"      binding:"required"`
	Description      string    `json:"description"`
	DescriptionHindi string    `json:"descriptionHindi"`
}

type UpdatePoonamDTO struct {
	StartDateTime    *time.Time `json:"startDateTime"`
	EndDateTime      *time.Time `json:"endDateTime"`
	Description      *string    `json:"description"`
	DescriptionHindi *string    `json:"descriptionHindi"`
}

// Repository is the store contract for full-moon entries.
type Repository interface {
	List(ctx context.Context) ([]models.PoonamModel, error)
	Create(ctx context.Context, p *models.PoonamModel) error
	Update(ctx context.Context, id string, dto *UpdatePoonamDTO) (*models.PoonamModel, error)
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int64, error)
}

const collection = "poonams"

type mongoRepository struct {
	col *mongo.Collection
}

func NewMongoRepository(db *mongo.Database) Repository {
	return &mongoRepository{col: db.Collection(collection)}
}

func (r *mongoRepository) List(ctx context.Context) ([]models.PoonamModel, error) {
	cur, err := r.col.Find(ctx, bson.M{},
		options.Find().SetSort(bson.D{{Key: "startDateTime", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var items []models.PoonamModel
	if err := cur.All(ctx, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *mongoRepository) Create(ctx context.Context, p *models.PoonamModel) error {
	_, err := r.col.InsertOne(ctx, p)
	return err
}

func (r *mongoRepository) Update(ctx context.Context, id string, dto *UpdatePoonamDTO) (*models.PoonamModel, error) {
	set := bson.M{"updatedAt": time.Now()}
	if dto.StartDateTime != nil {
		set["startDateTime"] = *dto.StartDateTime
	}
	if dto.EndDateTime != nil {
		set["endDateTime"] = *dto.EndDateTime
	}
	if dto.Description != nil {
		set["description"] = *dto.Description
	}
	if dto.DescriptionHindi != nil {
		set["descriptionHindi"] = *dto.DescriptionHindi
	}
	var p models.PoonamModel
	err := r.col.FindOneAndUpdate(ctx, bson.M{"id": id}, bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, database.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *mongoRepository) Delete(ctx context.Context, id string) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return database.ErrNotFound
	}
	return nil
}

func (r *mongoRepository) Count(ctx context.Context) (int64, error) {
	return r.col.CountDocuments(ctx, bson.M{})
}

type fileRepository struct {
	col *database.FileCollection[models.PoonamModel]
}

func NewFileRepository(dataDir string) (Repository, error) {
	col, err := database.NewFileCollection[models.PoonamModel](dataDir, collection)
	if err != nil {
		return nil, err
	}
	return &fileRepository{col: col}, nil
}

func (r *fileRepository) List(_ context.Context) ([]models.PoonamModel, error) {
	items, err := r.col.All()
	if err != nil {
		return nil, err
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].StartDateTime.After(items[j].StartDateTime)
	})
	return items, nil
}

func (r *fileRepository) Create(_ context.Context, p *models.PoonamModel) error {
	return r.col.Mutate(func(items []models.PoonamModel) ([]models.PoonamModel, error) {
		return append(items, *p), nil
	})
}

func (r *fileRepository) Update(_ context.Context, id string, dto *UpdatePoonamDTO) (*models.PoonamModel, error) {
	var updated *models.PoonamModel
	err := r.col.Mutate(func(items []models.PoonamModel) ([]models.PoonamModel, error) {
		for i := range items {
			if items[i].ID != id {
				continue
			}
			p := &items[i]
			if dto.StartDateTime != nil {
				p.StartDateTime = *dto.StartDateTime
			}
			if dto.EndDateTime != nil {
				p.EndDateTime = *dto.EndDateTime
			}
			if dto.Description != nil {
				p.Description = *dto.Description
			}
			if dto.DescriptionHindi != nil {
				p.DescriptionHindi = *dto.DescriptionHindi
			}
			p.UpdatedAt = time.Now()
			copied := *p
			updated = &copied
			return items, nil
		}
		return nil, database.ErrNotFound
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (r *fileRepository) Delete(_ context.Context, id string) error {
	return r.col.Mutate(func(items []models.PoonamModel) ([]models.PoonamModel, error) {
		for i := range items {
			if items[i].ID == id {
				return append(items[:i], items[i+1:]...), nil
			}
		}
		return nil, database.ErrNotFound
	})
}

func (r *fileRepository) Count(_ context.Context) (int64, error) {
	items, err := r.col.All()
	if err != nil {
		return 0, err
	}
	return int64(len(items)), nil
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service { return &Service{repo: repo} }

func (s *Service) List(ctx context.Context) ([]models.PoonamModel, error) {
	return s.repo.List(ctx)
}

func (s *Service) Create(ctx context.Context, dto *CreatePoonamDTO) (*models.PoonamModel, error) {
	if !dto.EndDateTime.After(dto.StartDateTime) {
		return nil, errors.New("endDateTime must be after startDateTime")
	}
	now := time.Now()
	p := &models.PoonamModel{
		ID:               uuid.NewString(),
		StartDateTime:    dto.StartDateTime,
		EndDateTime:      dto.EndDateTime,
		Description:      dto.Description,
		DescriptionHindi: dto.DescriptionHindi,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) Update(ctx context.Context, id string, dto *UpdatePoonamDTO) (*models.PoonamModel, error) {
	return s.repo.Update(ctx, id, dto)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

func (s *Service) Count(ctx context.Context) (int64, error) {
	return s.repo.Count(ctx)
}

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler { return &Handler{svc: svc} }

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	g := rg.Group("/poonam")

	g.GET("", h.list)

	a := g.Group("", authMW)
	a.POST("", h.create)
	a.PUT("/:id", h.update)
	a.DELETE("/:id", h.delete)
}

// GET /poonam — public, newest first
func (h *Handler) list(c *gin.Context) {
	items, err := h.svc.List(c.Request.Context())
	if err != nil {
		response.InternalError(c, err)
		return
	}
	if items == nil {
		items = []models.PoonamModel{}
	}
	response.OK(c, items)
}

// POST /poonam
func (h *Handler) create(c *gin.Context) {
	var dto CreatePoonamDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	p, err := h.svc.Create(c.Request.Context(), &dto)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	response.Created(c, p)
}

// PUT /poonam/:id
func (h *Handler) update(c *gin.Context) {
	var dto UpdatePoonamDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	p, err := h.svc.Update(c.Request.Context(), c.Param("id"), &dto)
	if errors.Is(err, database.ErrNotFound) {
		response.NotFoundMsg(c, "poonam entry not found")
		return
	}
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.OK(c, p)
}

// DELETE /poonam/:id
func (h *Handler) delete(c *gin.Context) {
	err := h.svc.Delete(c.Request.Context(), c.Param("id"))
	if errors.Is(err, database.ErrNotFound) {
		response.NotFoundMsg(c, "poonam entry not found")
		return
	}
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.NoContent(c)
}
