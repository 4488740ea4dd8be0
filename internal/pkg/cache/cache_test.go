package cache

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/hiddentreasuresnetwork/platform/internal/pkg/env"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const isolatedCacheTestRedisDB = 13

func testRedis(t *testing.T) *Redis {
	t.Helper()

	host := env.GetEnv("CACHE_HOST", "localhost")
	port := env.GetEnv("CACHE_PORT", "6379")
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", host, port),
		Password: env.GetEnv("CACHE_PASSWORD", ""),
		DB:       isolatedCacheTestRedisDB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		t.Skipf("Skipping Redis-dependent test: no reachable Redis endpoint (%v)", err)
	}
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisFromClient(client)
}

func TestRedisRoundTrip(t *testing.T) {
	r := testRedis(t)
	ctx := context.Background()
	key := "cache-test:" + t.Name()

	_, err := r.Get(ctx, key)
	assert.ErrorIs(t, err, ErrMiss)

	require.NoError(t, r.Set(ctx, key, "value", time.Minute))
	got, err := r.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, "value", got)

	require.NoError(t, r.Delete(ctx, key))
	_, err = r.Get(ctx, key)
	assert.ErrorIs(t, err, ErrMiss)
}

func TestNoopAlwaysMisses(t *testing.T) {
	var s Store = Noop{}
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "k", "v", time.Minute))
	_, err := s.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrMiss)
	assert.NoError(t, s.Delete(ctx))
}

func TestConfigAddr(t *testing.T) {
	assert.Equal(t, "cache:6380", Config{Host: "cache", Port: "6380"}.Addr())
}
