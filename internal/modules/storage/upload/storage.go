package upload

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/daily-darshan/core/internal/config"
	"github.com/google/uuid"
)

// Storage persists an uploaded blob and returns the URL clients fetch it
// from.
type Storage interface {
	Save(ctx context.Context, filename string, r io.Reader, size int64, contentType string) (string, error)
	Kind() string
}

// NewStorage builds the backend selected by config.
func NewStorage(cfg *config.StorageConfig) (Storage, error) {
	switch cfg.Driver {
	case "", "local":
		return NewLocalStorage(cfg.StaticDir, cfg.PublicBase), nil
	case "s3":
		return NewS3Storage(cfg.S3)
	}
	return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
}

var unsafeNameChars = regexp.MustCompile(`[^a-zA-Z0-9.-]`)

func safeName(name string) string {
	return unsafeNameChars.ReplaceAllString(filepath.Base(name), "_")
}

// buildFileName produces a unique disk name while keeping the original
// extension so content sniffing and static serving behave.
func buildFileName(original string) string {
	ext := strings.ToLower(filepath.Ext(safeName(original)))
	return fmt.Sprintf("file-%d-%s%s", time.Now().UnixMilli(), uuid.NewString(), ext)
}

// LocalStorage writes files under the static dir served by the /uploads
// route.
type LocalStorage struct {
	dir        string
	publicBase string
}

func NewLocalStorage(dir, publicBase string) *LocalStorage {
	return &LocalStorage{dir: dir, publicBase: strings.TrimRight(publicBase, "/")}
}

func (s *LocalStorage) Kind() string { return "local" }

func (s *LocalStorage) Save(_ context.Context, filename string, r io.Reader, _ int64, _ string) (string, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", err
	}
	name := safeName(filename)
	path := filepath.Join(s.dir, name)
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(path)
		return "", err
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return "", err
	}
	if s.publicBase != "" {
		return s.publicBase + "/uploads/" + name, nil
	}
	return "/uploads/" + name, nil
}
