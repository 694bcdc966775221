package cache

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// DiskCache persists downloaded objects across runs. The payload is stored
// verbatim so cached label documents stay inspectable; expiry lives in a
// sidecar meta file.
type DiskCache struct {
	dir string
	ttl time.Duration
}

// NewDiskCache creates a disk cache rooted at dir
func NewDiskCache(dir string, ttl time.Duration) *DiskCache {
	return &DiskCache{
		dir: dir,
		ttl: ttl,
	}
}

type diskMeta struct {
	ExpiresAt time.Time `json:"expires_at"`
}

// Get retrieves a value from the disk cache
func (c *DiskCache) Get(key string) ([]byte, bool) {
	meta, err := os.ReadFile(c.metaPath(key))
	if err != nil {
		return nil, false
	}

	var m diskMeta
	if err := json.Unmarshal(meta, &m); err != nil {
		return nil, false
	}
	if time.Now().After(m.ExpiresAt) {
		_ = c.Delete(key)
		return nil, false
	}

	data, err := os.ReadFile(c.dataPath(key))
	if err != nil {
		return nil, false
	}
	return data, true
}

// Set stores a value in the disk cache
func (c *DiskCache) Set(key string, value []byte, ttl time.Duration) error {
	if ttl == 0 {
		ttl = c.ttl
	}

	if err := os.MkdirAll(c.dir, 0755); err != nil {
		return fmt.Errorf("create cache dir: %w", err)
	}

	meta, err := json.Marshal(diskMeta{ExpiresAt: time.Now().Add(ttl)})
	if err != nil {
		return fmt.Errorf("marshal meta: %w", err)
	}

	if err := os.WriteFile(c.dataPath(key), value, 0644); err != nil {
		return fmt.Errorf("write cache file: %w", err)
	}
	if err := os.WriteFile(c.metaPath(key), meta, 0644); err != nil {
		return fmt.Errorf("write cache meta: %w", err)
	}
	return nil
}

// Delete removes a value from the disk cache
func (c *DiskCache) Delete(key string) error {
	_ = os.Remove(c.metaPath(key))
	return os.Remove(c.dataPath(key))
}

// Clear removes all cached files
func (c *DiskCache) Clear() error {
	return os.RemoveAll(c.dir)
}

func (c *DiskCache) dataPath(key string) string {
	return filepath.Join(c.dir, key+".cache")
}

func (c *DiskCache) metaPath(key string) string {
	return filepath.Join(c.dir, key+".meta")
}
