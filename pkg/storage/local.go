// Package storage persists uploaded attachments on local disk and
// serves them back through a stable public URL.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/registropol/registropol-backend/pkg/config"
	"github.com/registropol/registropol-backend/pkg/logger"
)

// LocalStore writes objects under a root directory. Object names are
// random, so a stored URL never collides or leaks the original filename.
type LocalStore struct {
	dir     string
	baseURL string
}

// Pinger exposes the health-check surface.
type Pinger interface {
	Ping(ctx context.Context) error
}

// NewLocalStore prepares the upload directory and verifies it is writable.
func NewLocalStore(ctx context.Context, cfg config.StorageConfig, logg *logger.Logger) (*LocalStore, error) {
	if cfg.UploadDir == "" {
		return nil, errors.New("upload directory is required")
	}
	if err := os.MkdirAll(cfg.UploadDir, 0o755); err != nil {
		return nil, fmt.Errorf("preparing upload directory: %w", err)
	}

	store := &LocalStore{
		dir:     cfg.UploadDir,
		baseURL: strings.TrimRight(cfg.PublicBaseURL, "/"),
	}
	if err := store.Ping(ctx); err != nil {
		return nil, fmt.Errorf("storage health check failed: %w", err)
	}
	if logg != nil {
		logg.Info(ctx, "local storage initialized")
	}
	return store, nil
}

// Save streams the object to disk and returns its public URL. The
// original filename only contributes its extension.
func (s *LocalStore) Save(ctx context.Context, prefix, filename string, body io.Reader) (string, error) {
	if s == nil {
		return "", errors.New("storage not initialized")
	}
	if body == nil {
		return "", errors.New("empty upload body")
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	object := uuid.NewString()
	if ext := sanitizeExt(filename); ext != "" {
		object += ext
	}
	if prefix = sanitizeSegment(prefix); prefix != "" {
		object = path.Join(prefix, object)
		if err := os.MkdirAll(filepath.Join(s.dir, prefix), 0o755); err != nil {
			return "", fmt.Errorf("preparing object prefix: %w", err)
		}
	}

	target := filepath.Join(s.dir, filepath.FromSlash(object))
	file, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("creating object file: %w", err)
	}

	if _, err := io.Copy(file, body); err != nil {
		_ = file.Close()
		_ = os.Remove(target)
		return "", fmt.Errorf("writing object: %w", err)
	}
	if err := file.Close(); err != nil {
		_ = os.Remove(target)
		return "", fmt.Errorf("closing object file: %w", err)
	}

	return s.baseURL + "/" + object, nil
}

// Dir returns the root directory used for serving static files.
func (s *LocalStore) Dir() string {
	if s == nil {
		return ""
	}
	return s.dir
}

// Ping verifies the upload directory is writable.
func (s *LocalStore) Ping(ctx context.Context) error {
	if s == nil || s.dir == "" {
		return errors.New("storage not initialized")
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	probe, err := os.CreateTemp(s.dir, ".probe-*")
	if err != nil {
		return fmt.Errorf("upload directory not writable: %w", err)
	}
	name := probe.Name()
	_ = probe.Close()
	return os.Remove(name)
}

func sanitizeExt(filename string) string {
	ext := strings.ToLower(filepath.Ext(filepath.Base(filename)))
	if ext == "." || strings.ContainsAny(ext, "/\\") {
		return ""
	}
	return ext
}

func sanitizeSegment(segment string) string {
	segment = strings.Trim(strings.TrimSpace(segment), "/")
	if segment == "" || strings.Contains(segment, "..") {
		return ""
	}
	return segment
}
