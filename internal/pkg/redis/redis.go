package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Client wraps go-redis for the application. Redis is optional here: when no
// URL is configured the caller simply skips the middleware that needs it.
type Client struct {
	rdb *redis.Client
}

// Connect creates a Redis client and verifies connectivity.
func Connect(url string) (*Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}

	rdb := redis.NewClient(opts)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return &Client{rdb: rdb}, nil
}

// Raw returns the underlying redis.Client for middleware usage.
func (c *Client) Raw() *redis.Client { return c.rdb }

// Healthy reports whether the connection still answers pings.
func (c *Client) Healthy(ctx context.Context) bool {
	return c.rdb.Ping(ctx).Err() == nil
}

// Close tears down the connection pool.
func (c *Client) Close() error { return c.rdb.Close() }
