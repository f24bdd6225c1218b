package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/daily-darshan/core/internal/config"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrNotFound is returned by repositories when an identity does not resolve.
var ErrNotFound = errors.New("record not found")

// ErrUnavailable is returned when the document store cannot be reached.
var ErrUnavailable = errors.New("document store unavailable")

const connectTimeout = 5 * time.Second

// Connect opens a MongoDB connection and verifies it with a ping. The
// returned handle is owned by the caller; there is no package-level
// singleton.
func Connect(ctx context.Context, cfg *config.AppConfig) (*mongo.Database, error) {
	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.Mongo.URL))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return client.Database(cfg.Mongo.Database), nil
}

// Disconnect tears down the client behind a database handle.
func Disconnect(ctx context.Context, db *mongo.Database) error {
	if db == nil {
		return nil
	}
	return db.Client().Disconnect(ctx)
}
