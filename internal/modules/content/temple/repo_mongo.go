package temple

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/daily-darshan/core/internal/database"
	"github.com/daily-darshan/core/internal/models"
	"github.com/daily-darshan/core/internal/modules/content/slot"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const templeCollection = "temples"

type mongoRepository struct {
	col *mongo.Collection
}

// NewMongoRepository builds the Mongo-backed temple repository.
func NewMongoRepository(db *mongo.Database) Repository {
	return &mongoRepository{col: db.Collection(templeCollection)}
}

func (r *mongoRepository) Kind() string { return "mongo" }

func (r *mongoRepository) List(ctx context.Context) ([]models.TempleModel, error) {
	cur, err := r.col.Find(ctx, bson.M{},
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var items []models.TempleModel
	if err := cur.All(ctx, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *mongoRepository) Get(ctx context.Context, id string) (*models.TempleModel, error) {
	var t models.TempleModel
	err := r.col.FindOne(ctx, bson.M{"id": id}).Decode(&t)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, database.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *mongoRepository) Create(ctx context.Context, t *models.TempleModel) error {
	_, err := r.col.InsertOne(ctx, t)
	return err
}

func (r *mongoRepository) Update(ctx context.Context, id string, upd TempleUpdate) (*models.TempleModel, error) {
	set := bson.M{"updatedAt": time.Now()}
	if upd.Name != nil {
		set["name"] = *upd.Name
	}
	if upd.NameHindi != nil {
		set["nameHindi"] = *upd.NameHindi
	}
	if upd.Description != nil {
		set["description"] = *upd.Description
	}
	if upd.DescriptionHindi != nil {
		set["descriptionHindi"] = *upd.DescriptionHindi
	}
	if upd.Location != nil {
		set["location"] = *upd.Location
	}
	if upd.LocationHindi != nil {
		set["locationHindi"] = *upd.LocationHindi
	}
	if upd.Image != nil {
		set["image"] = *upd.Image
	}
	if upd.ActiveContentTypes != nil {
		set["activeContentTypes"] = *upd.ActiveContentTypes
	}

	var t models.TempleModel
	err := r.col.FindOneAndUpdate(ctx, bson.M{"id": id}, bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&t)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, database.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
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

// AssignSlot is a single targeted field-path update so that two uploads
// racing for different slots of the same temple cannot clobber each other.
func (r *mongoRepository) AssignSlot(ctx context.Context, id, dateKey string, ct models.ContentType, url string) error {
	path := fmt.Sprintf("videos.%s.%s", dateKey, ct)
	res, err := r.col.UpdateOne(ctx, bson.M{"id": id}, bson.M{
		"$set": bson.M{path: url, "updatedAt": time.Now()},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return database.ErrNotFound
	}
	return nil
}

func (r *mongoRepository) ClearSlot(ctx context.Context, id, dateKey string, ct models.ContentType) error {
	path := fmt.Sprintf("videos.%s.%s", dateKey, ct)
	res, err := r.col.UpdateOne(ctx, bson.M{"id": id}, bson.M{
		"$unset": bson.M{path: ""},
		"$set":   bson.M{"updatedAt": time.Now()},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return database.ErrNotFound
	}
	return nil
}

func (r *mongoRepository) PurgeDatesBefore(ctx context.Context, cutoff string) (int, error) {
	cur, err := r.col.Find(ctx, bson.M{},
		options.Find().SetProjection(bson.M{"id": 1, "videos": 1}))
	if err != nil {
		return 0, err
	}
	defer cur.Close(ctx)

	removed := 0
	for cur.Next(ctx) {
		var t models.TempleModel
		if err := cur.Decode(&t); err != nil {
			return removed, err
		}
		unset := bson.M{}
		for key := range t.Videos {
			if _, err := slot.ParseDateKey(key); err != nil {
				continue
			}
			if key < cutoff {
				unset["videos."+key] = ""
			}
		}
		if len(unset) == 0 {
			continue
		}
		if _, err := r.col.UpdateOne(ctx, bson.M{"id": t.ID}, bson.M{"$unset": unset}); err != nil {
			return removed, err
		}
		removed += len(unset)
	}
	return removed, cur.Err()
}

func (r *mongoRepository) Count(ctx context.Context) (int64, error) {
	return r.col.CountDocuments(ctx, bson.M{})
}
