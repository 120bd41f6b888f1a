// Package cache stores classifier results so identical evidence is not
// re-classified.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"
)

// Cache defines the interface for caching
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// ClassificationKey derives a key from the provider, model and both texts
// the classifier sees. Whitespace at either end of the texts is ignored.
func ClassificationKey(provider, modelName, evidenceText, parentText string) string {
	h := sha256.New()
	for _, part := range []string{provider, modelName, strings.TrimSpace(evidenceText), strings.TrimSpace(parentText)} {
		h.Write([]byte(part))
		h.Write([]byte{0})
	}
	return "consensus:classify:v1:" + hex.EncodeToString(h.Sum(nil))
}

// New builds the cache described by the settings: nil when disabled,
// memory-only when dir is empty, memory over disk otherwise.
func New(enabled bool, dir string, memoryTTL, diskTTL time.Duration) Cache {
	if !enabled {
		return nil
	}
	if dir == "" {
		return NewMemoryCache(memoryTTL, 10*time.Minute)
	}
	return NewLayeredCache(memoryTTL, dir, diskTTL)
}
