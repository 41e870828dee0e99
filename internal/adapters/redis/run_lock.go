package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/amyangfei/redlock-go/v3/redlock"
	"go.uber.org/zap"

	"github.com/selivandex/news-impact/pkg/logger"
)

// RunLock makes sure only one replica runs a worker cycle at a time
type RunLock struct {
	lockManager *redlock.RedLock
	lockName    string
	ttl         time.Duration
}

// NewRunLock creates redlock based run lock. ttl should exceed the longest expected run.
func NewRunLock(lockManager *redlock.RedLock, name string, ttl time.Duration) *RunLock {
	return &RunLock{
		lockManager: lockManager,
		lockName:    fmt.Sprintf("news-impact:lock:%s", name),
		ttl:         ttl,
	}
}

// TryAcquire returns false when another replica holds the lock
func (l *RunLock) TryAcquire(ctx context.Context) (bool, error) {
	expiry, err := l.lockManager.Lock(ctx, l.lockName, l.ttl)
	if err != nil {
		logger.Debug("run lock held by another replica",
			zap.String("lock_name", l.lockName),
		)
		return false, nil
	}

	if expiry <= 0 {
		return false, fmt.Errorf("failed to acquire lock: invalid expiry %v", expiry)
	}

	logger.Debug("run lock acquired",
		zap.String("lock_name", l.lockName),
		zap.Duration("expiry", expiry),
	)

	return true, nil
}

// Release releases the lock. An already expired lock is not an error.
func (l *RunLock) Release(ctx context.Context) error {
	if err := l.lockManager.UnLock(ctx, l.lockName); err != nil {
		return fmt.Errorf("failed to release lock %s: %w", l.lockName, err)
	}

	logger.Debug("run lock released", zap.String("lock_name", l.lockName))
	return nil
}
