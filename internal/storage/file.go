package storage

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/afero"
)

// FileStore is a filesystem-backed object store: the container is a
// directory root, object keys are slash-separated paths beneath it. It
// implements both Source and Destination.
type FileStore struct {
	fs   afero.Fs
	root string
}

// NewFileStore creates a store over the OS filesystem rooted at dir.
func NewFileStore(root string) *FileStore {
	return &FileStore{fs: afero.NewOsFs(), root: root}
}

// NewFileStoreFs creates a store over an explicit filesystem, used by tests
// with an in-memory fs.
func NewFileStoreFs(fs afero.Fs, root string) *FileStore {
	return &FileStore{fs: fs, root: root}
}

// Container returns the store's root, the unit the rate limiter keys on.
func (s *FileStore) Container() string {
	return s.root
}

// List returns the keys of all objects under the prefix, sorted.
func (s *FileStore) List(ctx context.Context, prefix string) ([]string, error) {
	var keys []string

	err := afero.Walk(s.fs, s.root, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(s.root, p)
		if err != nil {
			return err
		}
		key := filepath.ToSlash(rel)
		if prefix == "" || strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", s.root, err)
	}

	sort.Strings(keys)
	return keys, nil
}

// Download returns the object's bytes.
func (s *FileStore) Download(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := afero.ReadFile(s.fs, s.objectPath(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("download %s: %w", key, ErrNotFound)
		}
		return nil, fmt.Errorf("download %s: %w", key, err)
	}
	return data, nil
}

// Upload writes the object's bytes, creating parent directories as needed.
// Re-uploading the same key overwrites, which makes retries safe.
func (s *FileStore) Upload(ctx context.Context, key string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	p := s.objectPath(key)
	if err := s.fs.MkdirAll(filepath.Dir(p), 0755); err != nil {
		return fmt.Errorf("upload %s: %w", key, err)
	}
	if err := afero.WriteFile(s.fs, p, data, 0644); err != nil {
		return fmt.Errorf("upload %s: %w", key, err)
	}
	return nil
}

func (s *FileStore) objectPath(key string) string {
	return filepath.Join(s.root, filepath.FromSlash(path.Clean("/"+key)))
}
