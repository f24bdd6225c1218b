package database

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// FileCollection is a JSON-file-backed document collection used as the
// offline fallback when Mongo is unreachable. All access is serialized by an
// in-process lock, which is what makes leaf-level slot merges safe here.
type FileCollection[T any] struct {
	mu   sync.RWMutex
	path string
}

// NewFileCollection creates (or reopens) the collection file dir/name.json.
func NewFileCollection[T any](dir, name string) (*FileCollection[T], error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return &FileCollection[T]{path: filepath.Join(dir, name+".json")}, nil
}

// All returns every document in the collection. A missing file reads as
// an empty collection.
func (c *FileCollection[T]) All() ([]T, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.read()
}

// Mutate applies fn to the full document slice under the write lock and
// persists the result. fn returning an error aborts without writing, so a
// failed mutation never leaves a half-written collection.
func (c *FileCollection[T]) Mutate(fn func(items []T) ([]T, error)) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	items, err := c.read()
	if err != nil {
		return err
	}
	items, err = fn(items)
	if err != nil {
		return err
	}
	return c.write(items)
}

func (c *FileCollection[T]) read() ([]T, error) {
	data, err := os.ReadFile(c.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", c.path, err)
	}
	var items []T
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("parse %s: %w", c.path, err)
	}
	return items, nil
}

// write persists via a temp file and rename so a crash mid-write cannot
// corrupt the collection.
func (c *FileCollection[T]) write(items []T) error {
	if items == nil {
		items = []T{}
	}
	data, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return err
	}
	tmp := c.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, c.path)
}
