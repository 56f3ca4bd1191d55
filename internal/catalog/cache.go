package catalog

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"receipt-backend/internal/shared/telemetry"
)

const (
	cacheKey = "catalog:cigarettes"
	cacheTTL = 5 * time.Minute
)

// CachedRepo is a read-through Redis cache in front of another Repo. Cache
// failures fall back to the inner repo silently.
type CachedRepo struct {
	inner  Repo
	client *redis.Client
}

// NewCachedRepo wraps inner with a Redis cache.
func NewCachedRepo(inner Repo, client *redis.Client) *CachedRepo {
	return &CachedRepo{inner: inner, client: client}
}

func (r *CachedRepo) ListBrands(ctx context.Context) ([]Brand, error) {
	if cached, err := r.client.Get(ctx, cacheKey).Result(); err == nil {
		var brands []Brand
		if err := json.Unmarshal([]byte(cached), &brands); err == nil {
			return brands, nil
		}
	} else if err != redis.Nil {
		telemetry.Error("catalog.cache.get failed", map[string]any{"err": err.Error()})
	}

	brands, err := r.inner.ListBrands(ctx)
	if err != nil {
		return nil, err
	}

	if encoded, err := json.Marshal(brands); err == nil {
		if err := r.client.Set(ctx, cacheKey, encoded, cacheTTL).Err(); err != nil {
			telemetry.Error("catalog.cache.set failed", map[string]any{"err": err.Error()})
		}
	}
	return brands, nil
}
