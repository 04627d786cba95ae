package services

import (
	"context"
	"testing"
	"time"

	"stormbringer/internal/campaign/models"
	"stormbringer/pkg/database"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// redisForTest connects to REDIS_URL (default localhost) and skips when no
// server answers
func redisForTest(t *testing.T) *database.Redis {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping Redis integration test in short mode")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	redis, err := database.NewRedis(ctx)
	if err != nil {
		t.Skipf("Skipping Redis integration test, no server reachable: %v", err)
	}
	t.Cleanup(func() { _ = redis.Close() })
	return redis
}

func TestRedisSessionCache(t *testing.T) {
	redis := redisForTest(t)
	ctx := context.Background()

	provider := NewRedisCacheProvider(redis, time.Minute)
	cache := provider.ForSession("test-" + uuid.NewString())
	t.Cleanup(func() { _ = cache.Clear(context.Background()) })

	list, err := cache.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list, "a missing key reads as an empty list")

	first := &models.Campaign{ID: "c1", Name: "First", DMID: "dm", Players: []string{"dm"}, Status: models.StatusActive}
	second := &models.Campaign{ID: "c2", Name: "Second", DMID: "dm", Players: []string{"dm"}, Status: models.StatusActive}
	require.NoError(t, cache.UpsertFront(ctx, first))
	require.NoError(t, cache.UpsertFront(ctx, second))

	first.Name = "First renamed"
	require.NoError(t, cache.UpsertFront(ctx, first))

	list, err = cache.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "c1", list[0].ID, "an upsert moves the entry to the front")
	assert.Equal(t, "First renamed", list[0].Name)
	assert.Equal(t, "c2", list[1].ID)

	got, ok, err := cache.Get(ctx, "c2")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Second", got.Name)

	rc, isRedis := cache.(*RedisSessionCache)
	require.True(t, isRedis)
	ttl, err := redis.Client.TTL(ctx, rc.key).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))
	assert.LessOrEqual(t, ttl, time.Minute)

	require.NoError(t, cache.Remove(ctx, "c1"))
	_, ok, err = cache.Get(ctx, "c1")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, cache.Clear(ctx))
	list, err = cache.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}
