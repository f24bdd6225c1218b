package temple

import (
	"context"

	"github.com/daily-darshan/core/internal/models"
)

// TempleUpdate carries the fields an admin edit may change. Videos is
// deliberately absent: slot state is only ever written through AssignSlot /
// ClearSlot, never from a client-submitted snapshot of the whole map.
type TempleUpdate struct {
	Name               *string
	NameHindi          *string
	Description        *string
	DescriptionHindi   *string
	Location           *string
	LocationHindi      *string
	Image              *string
	ActiveContentTypes *[]models.ContentType
}

// Repository is the document-store contract for temples. Two implementations
// exist: Mongo for normal operation and a JSON-file collection used as the
// offline fallback.
type Repository interface {
	List(ctx context.Context) ([]models.TempleModel, error)
	Get(ctx context.Context, id string) (*models.TempleModel, error)
	Create(ctx context.Context, t *models.TempleModel) error
	Update(ctx context.Context, id string, upd TempleUpdate) (*models.TempleModel, error)
	Delete(ctx context.Context, id string) error

	// AssignSlot writes videos[dateKey][ct] = url as a single leaf-level
	// update, preserving every sibling slot and every other date key.
	AssignSlot(ctx context.Context, id, dateKey string, ct models.ContentType, url string) error
	// ClearSlot removes videos[dateKey][ct], dropping the day record when it
	// becomes empty.
	ClearSlot(ctx context.Context, id, dateKey string, ct models.ContentType) error
	// PurgeDatesBefore deletes every date key strictly older than cutoff on
	// every temple and returns how many keys were removed.
	PurgeDatesBefore(ctx context.Context, cutoff string) (int, error)

	Count(ctx context.Context) (int64, error)
	// Kind names the backing store for health reporting ("mongo" or "file").
	Kind() string
}
