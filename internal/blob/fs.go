package blob

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/desertthunder/founders/internal/shared"
)

// FSStore keeps objects as files under a root directory.
type FSStore struct {
	root      string
	publicURL string
}

// NewFSStore creates root if needed. URLs are built from publicURL, "/uploads" by default.
func NewFSStore(root, publicURL string) (*FSStore, error) {
	if root == "" {
		root = "./uploads"
	}
	if publicURL == "" {
		publicURL = "/uploads"
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("%w: failed to create storage dir: %v", shared.ErrStorageFailure, err)
	}
	return &FSStore{root: root, publicURL: publicURL}, nil
}

func (s *FSStore) Driver() string { return DriverFS }

// Root is the directory objects are written to.
func (s *FSStore) Root() string { return s.root }

// PublicURL is the URL prefix objects are served under.
func (s *FSStore) PublicURL() string { return s.publicURL }

func (s *FSStore) pathFor(key string) (string, error) {
	k, err := sanitizeKey(key)
	if err != nil {
		return "", err
	}
	return filepath.Join(s.root, filepath.FromSlash(k)), nil
}

// Put writes r to key through a temp file. Existing keys are rejected.
func (s *FSStore) Put(ctx context.Context, key string, r io.Reader, contentType string) (Info, error) {
	if err := ctx.Err(); err != nil {
		return Info{}, err
	}

	dst, err := s.pathFor(key)
	if err != nil {
		return Info{}, err
	}
	if _, err := os.Stat(dst); err == nil {
		return Info{}, fmt.Errorf("%w: blob %s", shared.ErrDuplicate, key)
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return Info{}, fmt.Errorf("%w: %v", shared.ErrStorageFailure, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(dst), ".tmp-*")
	if err != nil {
		return Info{}, fmt.Errorf("%w: %v", shared.ErrStorageFailure, err)
	}
	defer os.Remove(tmp.Name())

	size, err := io.Copy(tmp, r)
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return Info{}, fmt.Errorf("%w: failed to write blob: %v", shared.ErrStorageFailure, err)
	}
	if err := os.Rename(tmp.Name(), dst); err != nil {
		return Info{}, fmt.Errorf("%w: %v", shared.ErrStorageFailure, err)
	}

	return Info{Key: key, Size: size, ContentType: contentType, URL: s.URL(key)}, nil
}

func (s *FSStore) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	p, err := s.pathFor(key)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(p)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: blob %s", shared.ErrNotFound, key)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrStorageFailure, err)
	}
	return f, nil
}

func (s *FSStore) URL(key string) string { return joinURL(s.publicURL, key) }
