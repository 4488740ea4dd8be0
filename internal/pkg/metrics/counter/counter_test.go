package counter

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hiddentreasuresnetwork/platform/internal/pkg/env"
)

const isolatedCounterTestRedisDB = 12

func testClient(t *testing.T) *redis.Client {
	t.Helper()
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", env.GetEnv("CACHE_HOST", "localhost"), env.GetEnv("CACHE_PORT", "6379")),
		Password: env.GetEnv("CACHE_PASSWORD", ""),
		DB:       isolatedCounterTestRedisDB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		t.Skipf("Skipping Redis-dependent test: no reachable Redis endpoint (%v)", err)
	}
	require.NoError(t, client.FlushDB(context.Background()).Err())
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestBuildBatch(t *testing.T) {
	batch := buildBatch(
		map[string]string{"uid-b": "2", "uid-a": "1", "bad": "x"},
		map[string]string{"uid-a": "1760400000", "uid-c": "1760400100"},
	)
	require.Len(t, batch, 3)
	assert.Equal(t, "uid-a", batch[0].uid)
	assert.EqualValues(t, 1, batch[0].sessions)
	assert.Equal(t, time.Unix(1760400000, 0).UTC(), batch[0].lastActive)
	assert.Equal(t, "uid-b", batch[1].uid)
	assert.True(t, batch[1].lastActive.IsZero())
	assert.Equal(t, "uid-c", batch[2].uid)
	assert.Zero(t, batch[2].sessions)

	assert.Empty(t, buildBatch(nil, nil))
}

func TestUpdateStatement(t *testing.T) {
	at := time.Date(2026, 10, 14, 9, 0, 0, 0, time.UTC)
	query, args := updateStatement([]userActivity{
		{uid: "uid-a", sessions: 2, lastActive: at},
		{uid: "uid-b", sessions: 1},
	})
	assert.Equal(t, "UPDATE users SET session_count = session_count + CASE uid WHEN ? THEN ? WHEN ? THEN ? ELSE 0 END"+
		", last_active_at = CASE uid WHEN ? THEN ? ELSE last_active_at END WHERE uid IN (?,?)", query)
	assert.Equal(t, []interface{}{"uid-a", int64(2), "uid-b", int64(1), "uid-a", at, "uid-a", "uid-b"}, args)

	query, _ = updateStatement([]userActivity{{uid: "uid-b", sessions: 1}})
	assert.NotContains(t, query, "last_active_at")
}

func TestRecordActivityOpensOneSessionPerWindow(t *testing.T) {
	client := testClient(t)
	ctx := context.Background()
	c := New(client, nil)
	c.now = func() time.Time { return time.Unix(1760400000, 0) }

	require.NoError(t, c.RecordActivity(ctx, "uid-a"))
	require.NoError(t, c.RecordActivity(ctx, "uid-a"))
	require.NoError(t, c.RecordActivity(ctx, " "))

	sessions, err := client.HGet(ctx, sessionsKey, "uid-a").Result()
	require.NoError(t, err)
	assert.Equal(t, "1", sessions)
	last, err := client.HGet(ctx, lastActiveKey, "uid-a").Result()
	require.NoError(t, err)
	assert.Equal(t, "1760400000", last)

	drained, err := c.drain(ctx, sessionsKey)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"uid-a": "1"}, drained)
	exists, err := client.Exists(ctx, sessionsKey).Result()
	require.NoError(t, err)
	assert.Zero(t, exists)

	drained, err = c.drain(ctx, sessionsKey)
	require.NoError(t, err)
	assert.Empty(t, drained)
}
