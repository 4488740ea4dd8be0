package repository

import (
	"context"
	"sort"

	"github.com/redis/go-redis/v9"
)

const cacheScanCount = 100

// cacheRepository implements the CacheRepository interface
type cacheRepository struct {
	client *redis.Client
}

// NewCacheRepository creates a cache repository over the shared redis client
func NewCacheRepository(client *redis.Client) CacheRepository {
	return &cacheRepository{client: client}
}

// FindKeys scans keys matching pattern and returns them sorted with their TTL.
func (r *cacheRepository) FindKeys(ctx context.Context, pattern string, limit int) ([]CacheEntry, error) {
	if pattern == "" {
		pattern = "*"
	}
	var keys []string
	iter := r.client.Scan(ctx, 0, pattern, cacheScanCount).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
		if limit > 0 && len(keys) >= limit {
			break
		}
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}
	sort.Strings(keys)

	entries := make([]CacheEntry, 0, len(keys))
	for _, key := range keys {
		ttl, err := r.client.TTL(ctx, key).Result()
		if err != nil {
			return nil, err
		}
		entries = append(entries, CacheEntry{Key: key, TTL: ttl})
	}
	return entries, nil
}

// DeleteKeys deletes the keys and returns how many existed
func (r *cacheRepository) DeleteKeys(ctx context.Context, keys ...string) (int64, error) {
	if len(keys) == 0 {
		return 0, nil
	}
	return r.client.Del(ctx, keys...).Result()
}
