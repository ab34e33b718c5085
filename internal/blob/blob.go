// package blob stores uploaded files (profile images and archived imports) on disk or in S3
package blob

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/desertthunder/founders/internal/shared"
)

const (
	DriverFS = "fs"
	DriverS3 = "s3"
)

// Info describes a stored object.
type Info struct {
	Key         string `json:"key"`
	Size        int64  `json:"size"`
	ContentType string `json:"content_type,omitempty"`
	URL         string `json:"url"`
}

// Store is a flat key/value object store.
type Store interface {
	Put(ctx context.Context, key string, r io.Reader, contentType string) (Info, error)
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	// URL returns the address clients use to fetch key.
	URL(key string) string
	Driver() string
}

// Open builds the store selected by cfg.Driver, defaulting to the filesystem.
func Open(ctx context.Context, cfg shared.StorageConfig) (Store, error) {
	switch strings.ToLower(cfg.Driver) {
	case "", DriverFS:
		return NewFSStore(cfg.Dir, cfg.PublicURL)
	case DriverS3:
		return NewS3Store(ctx, S3Config{
			Bucket:    cfg.Bucket,
			Region:    cfg.Region,
			Endpoint:  cfg.Endpoint,
			AccessKey: cfg.AccessKey,
			SecretKey: cfg.SecretKey,
			PathStyle: cfg.PathStyle,
			PublicURL: cfg.PublicURL,
		})
	default:
		return nil, fmt.Errorf("%w: unknown storage driver %q", shared.ErrInvalidConfig, cfg.Driver)
	}
}

// ImageKey returns a fresh key under images/ keeping the extension ext (with or without the dot).
func ImageKey(ext string) string {
	ext = strings.TrimPrefix(strings.ToLower(ext), ".")
	if ext == "" {
		return path.Join("images", shared.GenerateID())
	}
	return path.Join("images", shared.GenerateID()+"."+ext)
}

// ArchiveKey returns a dated key under imports/ for an uploaded sheet called name.
func ArchiveKey(name string, at time.Time) string {
	base := path.Base(strings.ReplaceAll(strings.TrimSpace(name), "\\", "/"))
	if base == "." || base == "/" || base == "" {
		base = "upload.csv"
	}
	return path.Join("imports", at.UTC().Format("2006/01/02"), shared.GenerateID()+"-"+base)
}

// sanitizeKey rejects empty, absolute and escaping keys.
func sanitizeKey(key string) (string, error) {
	if strings.TrimSpace(key) == "" {
		return "", fmt.Errorf("%w: empty blob key", shared.ErrInvalidArgument)
	}
	if strings.HasPrefix(key, "/") || strings.Contains(key, "..") {
		return "", fmt.Errorf("%w: invalid blob key %q", shared.ErrInvalidArgument, key)
	}
	return path.Clean(key), nil
}

func joinURL(base, key string) string {
	return strings.TrimRight(base, "/") + "/" + key
}
