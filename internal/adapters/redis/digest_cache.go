package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	redis "github.com/go-redis/redis/v8"

	"github.com/selivandex/news-impact/pkg/models"
)

const latestDigestKey = "news-impact:digest:latest"

// DigestCache keeps the latest digest for readers that do not query PostgreSQL
type DigestCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewDigestCache creates digest cache over a redis client
func NewDigestCache(client *redis.Client, ttl time.Duration) *DigestCache {
	return &DigestCache{client: client, ttl: ttl}
}

// SaveDigest implements workers.DigestStore.
// Cluster members are not part of the cached form, only ids and scores.
func (c *DigestCache) SaveDigest(ctx context.Context, digest *models.Digest) error {
	data, err := json.Marshal(digest)
	if err != nil {
		return fmt.Errorf("failed to encode digest: %w", err)
	}

	if err := c.client.Set(ctx, latestDigestKey, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache digest: %w", err)
	}
	return nil
}

// Latest returns cached digest, nil when nothing is cached
func (c *DigestCache) Latest(ctx context.Context) (*models.Digest, error) {
	data, err := c.client.Get(ctx, latestDigestKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read cached digest: %w", err)
	}

	var digest models.Digest
	if err := json.Unmarshal(data, &digest); err != nil {
		return nil, fmt.Errorf("failed to decode cached digest: %w", err)
	}
	return &digest, nil
}
