package geoclip

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/geolens/geolens/internal/domain"
)

// Cache stores embeddings and retrieval results keyed by image content
// hash. The mapping is deterministic for identical input, so concurrent
// writers racing on the same key are harmless (last writer wins).
type Cache struct {
	cache *gocache.Cache
}

func NewCache(ttl, cleanupInterval time.Duration) *Cache {
	return &Cache{
		cache: gocache.New(ttl, cleanupInterval),
	}
}

func contentKey(prefix string, image []byte) string {
	hash := sha256.Sum256(image)
	return prefix + ":" + hex.EncodeToString(hash[:])
}

func (c *Cache) GetEmbedding(image []byte) ([]float32, bool) {
	if val, found := c.cache.Get(contentKey("embed", image)); found {
		return val.([]float32), true
	}
	return nil, false
}

func (c *Cache) SetEmbedding(image []byte, embedding []float32) {
	c.cache.SetDefault(contentKey("embed", image), embedding)
}

func (c *Cache) GetGuesses(image []byte, topK int) ([]domain.GeoGuess, bool) {
	key := contentKey(fmt.Sprintf("predict:%d", topK), image)
	if val, found := c.cache.Get(key); found {
		return val.([]domain.GeoGuess), true
	}
	return nil, false
}

func (c *Cache) SetGuesses(image []byte, topK int, guesses []domain.GeoGuess) {
	c.cache.SetDefault(contentKey(fmt.Sprintf("predict:%d", topK), image), guesses)
}
