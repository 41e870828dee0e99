package redis

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/amyangfei/redlock-go/v3/redlock"
	redis "github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"github.com/selivandex/news-impact/internal/adapters/config"
	"github.com/selivandex/news-impact/pkg/logger"
)

// Client owns the redlock manager and the cache connection to the same Redis.
// One instance is used, so redlock runs with a quorum of one.
type Client struct {
	locks     *redlock.RedLock
	cache     *redis.Client
	lockTTL   time.Duration
	digestTTL time.Duration
}

// New connects both clients and pings Redis. ctx bounds the lifetime of the lock cache cleanup.
func New(ctx context.Context, cfg *config.RedisConfig) (*Client, error) {
	addr := net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	cache := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     4,
	})

	if err := cache.Ping(pingCtx).Err(); err != nil {
		_ = cache.Close()
		return nil, fmt.Errorf("failed to ping redis at %s: %w", addr, err)
	}

	locks, err := redlock.NewRedLock(ctx, []string{"tcp://" + addr})
	if err != nil {
		_ = cache.Close()
		return nil, fmt.Errorf("failed to create redlock manager: %w", err)
	}

	logger.Info("redis client initialized",
		zap.String("address", addr),
		zap.Int("db", cfg.DB),
		zap.Duration("lock_ttl", cfg.LockTTL),
	)

	return &Client{
		locks:     locks,
		cache:     cache,
		lockTTL:   cfg.LockTTL,
		digestTTL: cfg.DigestTTL,
	}, nil
}

// RunLock returns lock for the named worker
func (c *Client) RunLock(name string) *RunLock {
	return NewRunLock(c.locks, name, c.lockTTL)
}

// DigestCache returns cache of the latest digest
func (c *Client) DigestCache() *DigestCache {
	return NewDigestCache(c.cache, c.digestTTL)
}

// Health implements health.Checker
func (c *Client) Health() error {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := c.cache.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis health check failed: %w", err)
	}
	return nil
}

// Close closes the cache connection
func (c *Client) Close() error {
	logger.Info("closing redis client")
	if err := c.cache.Close(); err != nil {
		return fmt.Errorf("failed to close redis: %w", err)
	}
	return nil
}
