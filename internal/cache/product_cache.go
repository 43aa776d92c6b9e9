package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/vitrineshop/catalog_api/internal/models"
)

// productTTL bounds staleness of cached product reads. Mutations
// invalidate eagerly; the TTL only covers writers outside this process.
const productTTL = 5 * time.Minute

// ProductCache caches products by id in Redis.
type ProductCache struct {
	redis *RedisClient
}

// NewProductCache creates a new ProductCache.
func NewProductCache(redis *RedisClient) *ProductCache {
	return &ProductCache{redis: redis}
}

func (c *ProductCache) key(id int) string {
	return fmt.Sprintf("product:id:%d", id)
}

// Get returns the cached product, or (nil, nil) on a miss.
func (c *ProductCache) Get(ctx context.Context, id int) (*models.Product, error) {
	raw, err := c.redis.Get(ctx, c.key(id))
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var p models.Product
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cached product: %w", err)
	}
	return &p, nil
}

// Set stores the product under its id key.
func (c *ProductCache) Set(ctx context.Context, p *models.Product) error {
	raw, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to marshal product: %w", err)
	}
	return c.redis.Set(ctx, c.key(p.ID), string(raw), productTTL)
}

// Invalidate drops the cached entries for the given ids.
func (c *ProductCache) Invalidate(ctx context.Context, ids ...int) error {
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = c.key(id)
	}
	return c.redis.Delete(ctx, keys...)
}
