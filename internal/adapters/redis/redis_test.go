package redis

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/amyangfei/redlock-go/v3/redlock"
	redis "github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/selivandex/news-impact/pkg/models"
)

// testRedis returns address of a disposable Redis, tests skip when TEST_REDIS_ADDR is unset
func testRedis(t *testing.T) string {
	t.Helper()
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set")
	}
	return addr
}

func TestDigestCache_RoundTrip(t *testing.T) {
	addr := testRedis(t)
	ctx := context.Background()

	client := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() {
		client.Del(ctx, latestDigestKey)
		client.Close()
	})
	client.Del(ctx, latestDigestKey)

	cache := NewDigestCache(client, time.Minute)

	got, err := cache.Latest(ctx)
	require.NoError(t, err)
	assert.Nil(t, got)

	digest := &models.Digest{
		RunID:     "run-1",
		ItemCount: 2,
		Records: []models.ReportRecord{{
			Cluster: models.Cluster{ID: "c1", Members: []models.NewsItem{{ID: "a"}}},
			Summary: "Refinery outage",
			Verdict: models.ImpactVerdict{Direction: models.DirectionBullish},
		}},
	}
	require.NoError(t, cache.SaveDigest(ctx, digest))

	got, err = cache.Latest(ctx)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "run-1", got.RunID)
	require.Len(t, got.Records, 1)
	assert.Equal(t, "c1", got.Records[0].Cluster.ID)
	assert.Empty(t, got.Records[0].Cluster.Members)
	assert.Equal(t, models.DirectionBullish, got.Records[0].Verdict.Direction)

	ttl, err := client.TTL(ctx, latestDigestKey).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))
}

func TestRunLock_ExcludesSecondHolder(t *testing.T) {
	addr := testRedis(t)
	ctx := context.Background()

	manager, err := redlock.NewRedLock(ctx, []string{"tcp://" + addr})
	require.NoError(t, err)

	first := NewRunLock(manager, "test-digest", 5*time.Second)
	second := NewRunLock(manager, "test-digest", 5*time.Second)

	ok, err := first.TryAcquire(ctx)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = second.TryAcquire(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, first.Release(ctx))

	ok, err = second.TryAcquire(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	require.NoError(t, second.Release(ctx))
}
