package grahan

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

type CreateGrahanDTO struct {
	StartDateTime       time.Time `json:"startDateTime"       binding:"required"`
	EndDateTime         time.Time `json:"endDateTime"         binding:"required"`
	AffectedPlaces      string    `json:"affectedPlaces"`
	AffectedPlacesHindi string    `json:"affectedPlacesHindi"`
	Description         string    `json:"description"`
	DescriptionHindi    string    `json:"descriptionHindi"`
}

type UpdateGrahanDTO struct {
	StartDateTime       *time.Time `json:"startDateTime"`
	EndDateTime         *time.Time `json:"endDateTime"`
	AffectedPlaces      *string    `json:"affectedPlaces"`
	AffectedPlacesHindi *string    `json:"affectedPlacesHindi"`
	Description         *string    `json:"description"`
	DescriptionHindi    *string    `json:"descriptionHindi"`
}

// Repository is the store contract for eclipse entries.
type Repository interface {
	List(ctx context.Context) ([]models.GrahanModel, error)
	Create(ctx context.Context, g *models.GrahanModel) error
	Update(ctx context.Context, id string, dto *UpdateGrahanDTO) (*models.GrahanModel, error)
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int64, error)
}

const collection = "grahans"

type mongoRepository struct {
	col *mongo.Collection
}

func NewMongoRepository(db *mongo.Database) Repository {
	return &mongoRepository{col: db.Collection(collection)}
}

func (r *mongoRepository) List(ctx context.Context) ([]models.GrahanModel, error) {
	cur, err := r.col.Find(ctx, bson.M{},
		options.Find().SetSort(bson.D{{Key: "startDateTime", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var items []models.GrahanModel
	if err := cur.All(ctx, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *mongoRepository) Create(ctx context.Context, g *models.GrahanModel) error {
	_, err := r.col.InsertOne(ctx, g)
	return err
}

func (r *mongoRepository) Update(ctx context.Context, id string, dto *UpdateGrahanDTO) (*models.GrahanModel, error) {
	set := bson.M{"updatedAt": time.Now()}
	if dto.StartDateTime != nil {
		set["startDateTime"] = *dto.StartDateTime
	}
	if dto.EndDateTime != nil {
		set["endDateTime"] = *dto.EndDateTime
	}
	if dto.AffectedPlaces != nil {
		set["affectedPlaces"] = *dto.AffectedPlaces
	}
	if dto.AffectedPlacesHindi != nil {
		set["affectedPlacesHindi"] = *dto.AffectedPlacesHindi
	}
	if dto.Description != nil {
		set["description"] = *dto.Description
	}
	if dto.DescriptionHindi != nil {
		set["descriptionHindi"] = *dto.DescriptionHindi
	}
	var g models.GrahanModel
	err := r.col.FindOneAndUpdate(ctx, bson.M{"id": id}, bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&g)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, database.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &g, nil
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
	col *database.FileCollection[models.GrahanModel]
}

func NewFileRepository(dataDir string) (Repository, error) {
	col, err := database.NewFileCollection[models.GrahanModel](dataDir, collection)
	if err != nil {
		return nil, err
	}
	return &fileRepository{col: col}, nil
}

func (r *fileRepository) List(_ context.Context) ([]models.GrahanModel, error) {
	items, err := r.col.All()
	if err != nil {
		return nil, err
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].StartDateTime.After(items[j].StartDateTime)
	})
	return items, nil
}

func (r *fileRepository) Create(_ context.Context, g *models.GrahanModel) error {
	return r.col.Mutate(func(items []models.GrahanModel) ([]models.GrahanModel, error) {
		return append(items, *g), nil
	})
}

func (r *fileRepository) Update(_ context.Context, id string, dto *UpdateGrahanDTO) (*models.GrahanModel, error) {
	var updated *models.GrahanModel
	err := r.col.Mutate(func(items []models.GrahanModel) ([]models.GrahanModel, error) {
		for i := range items {
			if items[i].ID != id {
				continue
			}
			g := &items[i]
			if dto.StartDateTime != nil {
				g.StartDateTime = *dto.StartDateTime
			}
			if dto.EndDateTime != nil {
				g.EndDateTime = *dto.EndDateTime
			}
			if dto.AffectedPlaces != nil {
				g.AffectedPlaces = *dto.AffectedPlaces
			}
			if dto.AffectedPlacesHindi != nil {
				g.AffectedPlacesHindi = *dto.AffectedPlacesHindi
			}
			if dto.Description != nil {
				g.Description = *dto.Description
			}
			if dto.DescriptionHindi != nil {
				g.DescriptionHindi = *dto.DescriptionHindi
			}
			g.UpdatedAt = time.Now()
			copied := *g
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
	return r.col.Mutate(func(items []models.GrahanModel) ([]models.GrahanModel, error) {
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

func (s *Service) List(ctx context.Context) ([]models.GrahanModel, error) {
	return s.repo.List(ctx)
}

func (s *Service) Create(ctx context.Context, dto *CreateGrahanDTO) (*models.GrahanModel, error) {
	if !dto.EndDateTime.After(dto.StartDateTime) {
		return nil, errors.New("endDateTime must be after startDateTime")
	}
	now := time.Now()
	g := &models.GrahanModel{
		ID:                  uuid.NewString(),
		StartDateTime:       dto.StartDateTime,
		EndDateTime:         dto.EndDateTime,
		AffectedPlaces:      dto.AffectedPlaces,
		AffectedPlacesHindi: dto.AffectedPlacesHindi,
		Description:         dto.Description,
		DescriptionHindi:    dto.DescriptionHindi,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	if err := s.repo.Create(ctx, g); err != nil {
		return nil, err
	}
	return g, nil
}

func (s *Service) Update(ctx context.Context, id string, dto *UpdateGrahanDTO) (*models.GrahanModel, error) {
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
	g := rg.Group("/grahan")

	g.GET("", h.list)

	a := g.Group("", authMW)
	a.POST("", h.create)
	a.PUT("/:id", h.update)
	a.DELETE("/:id", h.delete)
}

// GET /grahan — public, newest first
func (h *Handler) list(c *gin.Context) {
	items, err := h.svc.List(c.Request.Context())
	if err != nil {
		response.InternalError(c, err)
		return
	}
	if items == nil {
		items = []models.GrahanModel{}
	}
	response.OK(c, items)
}

// POST /grahan
func (h *Handler) create(c *gin.Context) {
	var dto CreateGrahanDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	g, err := h.svc.Create(c.Request.Context(), &dto)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	response.Created(c, g)
}

// PUT /grahan/:id
func (h *Handler) update(c *gin.Context) {
	var dto UpdateGrahanDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	g, err := h.svc.Update(c.Request.Context(), c.Param("id"), &dto)
	if errors.Is(err, database.ErrNotFound) {
		response.NotFoundMsg(c, "grahan entry not found")
		return
	}
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.OK(c, g)
}

// DELETE /grahan/:id
func (h *Handler) delete(c *gin.Context) {
	err := h.svc.Delete(c.Request.Context(), c.Param("id"))
	if errors.Is(err, database.ErrNotFound) {
		response.NotFoundMsg(c, "grahan entry not found")
		return
	}
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.NoContent(c)
}
