package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Cache defines the interface for caching downloaded objects
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// Key generates a cache key for an object in a container
func Key(container, object string) string {
	hash := sha256.Sum256([]byte(container + "\x00" + object))
	return "relabel:v1:" + hex.EncodeToString(hash[:])
}
