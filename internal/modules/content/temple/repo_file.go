package temple

import (
	"context"
	"sort"
	"time"

	"github.com/daily-darshan/core/internal/database"
	"github.com/daily-darshan/core/internal/models"
	"github.com/daily-darshan/core/internal/modules/content/slot"
)

type fileRepository struct {
	col *database.FileCollection[models.TempleModel]
}

// NewFileRepository builds the JSON-file-backed temple repository used when
// the document store is unreachable at startup.
func NewFileRepository(dataDir string) (Repository, error) {
	col, err := database.NewFileCollection[models.TempleModel](dataDir, "temples")
	if err != nil {
		return nil, err
	}
	return &fileRepository{col: col}, nil
}

func (r *fileRepository) Kind() string { return "file" }

func (r *fileRepository) List(_ context.Context) ([]models.TempleModel, error) {
	items, err := r.col.All()
	if err != nil {
		return nil, err
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
	return items, nil
}

func (r *fileRepository) Get(_ context.Context, id string) (*models.TempleModel, error) {
	items, err := r.col.All()
	if err != nil {
		return nil, err
	}
	for i := range items {
		if items[i].ID == id {
			return &items[i], nil
		}
	}
	return nil, database.ErrNotFound
}

func (r *fileRepository) Create(_ context.Context, t *models.TempleModel) error {
	return r.col.Mutate(func(items []models.TempleModel) ([]models.TempleModel, error) {
		return append(items, *t), nil
	})
}

func (r *fileRepository) Update(_ context.Context, id string, upd TempleUpdate) (*models.TempleModel, error) {
	var updated *models.TempleModel
	err := r.col.Mutate(func(items []models.TempleModel) ([]models.TempleModel, error) {
		for i := range items {
			if items[i].ID != id {
				continue
			}
			t := &items[i]
			if upd.Name != nil {
				t.Name = *upd.Name
			}
			if upd.NameHindi != nil {
				t.NameHindi = *upd.NameHindi
			}
			if upd.Description != nil {
				t.Description = *upd.Description
			}
			if upd.DescriptionHindi != nil {
				t.DescriptionHindi = *upd.DescriptionHindi
			}
			if upd.Location != nil {
				t.Location = *upd.Location
			}
			if upd.LocationHindi != nil {
				t.LocationHindi = *upd.LocationHindi
			}
			if upd.Image != nil {
				t.Image = *upd.Image
			}
			if upd.ActiveContentTypes != nil {
				t.ActiveContentTypes = *upd.ActiveContentTypes
			}
			t.UpdatedAt = time.Now()
			copied := *t
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
	return r.col.Mutate(func(items []models.TempleModel) ([]models.TempleModel, error) {
		for i := range items {
			if items[i].ID == id {
				return append(items[:i], items[i+1:]...), nil
			}
		}
		return nil, database.ErrNotFound
	})
}

// AssignSlot merges at the leaf under the collection's write lock; the
// read-modify-write touches only the one slot field.
func (r *fileRepository) AssignSlot(_ context.Context, id, dateKey string, ct models.ContentType, url string) error {
	return r.col.Mutate(func(items []models.TempleModel) ([]models.TempleModel, error) {
		for i := range items {
			if items[i].ID != id {
				continue
			}
			if items[i].Videos == nil {
				items[i].Videos = make(map[string]models.DailySlots)
			}
			day := items[i].Videos[dateKey]
			day.Set(ct, url)
			items[i].Videos[dateKey] = day
			items[i].UpdatedAt = time.Now()
			return items, nil
		}
		return nil, database.ErrNotFound
	})
}

func (r *fileRepository) ClearSlot(_ context.Context, id, dateKey string, ct models.ContentType) error {
	return r.col.Mutate(func(items []models.TempleModel) ([]models.TempleModel, error) {
		for i := range items {
			if items[i].ID != id {
				continue
			}
			day, ok := items[i].Videos[dateKey]
			if ok {
				day.Clear(ct)
				if day.IsEmpty() {
					delete(items[i].Videos, dateKey)
				} else {
					items[i].Videos[dateKey] = day
				}
			}
			items[i].UpdatedAt = time.Now()
			return items, nil
		}
		return nil, database.ErrNotFound
	})
}

func (r *fileRepository) PurgeDatesBefore(_ context.Context, cutoff string) (int, error) {
	removed := 0
	err := r.col.Mutate(func(items []models.TempleModel) ([]models.TempleModel, error) {
		for i := range items {
			for key := range items[i].Videos {
				if _, err := slot.ParseDateKey(key); err != nil {
					continue
				}
				if key < cutoff {
					delete(items[i].Videos, key)
					removed++
				}
			}
		}
		return items, nil
	})
	if err != nil {
		return 0, err
	}
	return removed, nil
}

func (r *fileRepository) Count(_ context.Context) (int64, error) {
	items, err := r.col.All()
	if err != nil {
		return 0, err
	}
	return int64(len(items)), nil
}
