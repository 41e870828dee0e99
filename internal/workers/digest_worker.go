package workers

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/selivandex/news-impact/internal/adapters/news"
	"github.com/selivandex/news-impact/pkg/logger"
	"github.com/selivandex/news-impact/pkg/models"
)

// topClustersLogged limits how many themes are logged per run
const topClustersLogged = 3

// Analyzer turns a news batch into a digest
type Analyzer interface {
	Run(ctx context.Context, items []models.NewsItem) (*models.Digest, error)
}

// DigestStore persists digests
type DigestStore interface {
	SaveDigest(ctx context.Context, digest *models.Digest) error
}

// DigestStores saves the digest into every store in order, stopping at the first failure
type DigestStores []DigestStore

// SaveDigest implements DigestStore
func (s DigestStores) SaveDigest(ctx context.Context, digest *models.Digest) error {
	for _, store := range s {
		if err := store.SaveDigest(ctx, digest); err != nil {
			return err
		}
	}
	return nil
}

// RunLock guards a run across replicas
type RunLock interface {
	TryAcquire(ctx context.Context) (bool, error)
	Release(ctx context.Context) error
}

// DigestOption configures DigestWorker
type DigestOption func(*DigestWorker)

// WithRunLock skips a cycle when another replica holds the lock
func WithRunLock(lock RunLock) DigestOption {
	return func(w *DigestWorker) {
		w.lock = lock
	}
}

// DigestWorker periodically clusters recent news and stores the scored themes
type DigestWorker struct {
	source   news.Source
	analyzer Analyzer
	store    DigestStore // nil disables persistence
	lock     RunLock     // nil runs unconditionally
	lookback time.Duration // 0 loads the whole batch
	limit    int
	now      func() time.Time

	mu   sync.RWMutex
	last *models.Digest
}

// NewDigestWorker creates new digest worker
func NewDigestWorker(
	source news.Source,
	analyzer Analyzer,
	store DigestStore,
	lookback time.Duration,
	limit int,
	opts ...DigestOption,
) *DigestWorker {
	w := &DigestWorker{
		source:   source,
		analyzer: analyzer,
		store:    store,
		lookback: lookback,
		limit:    limit,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Name implements worker.Worker
func (w *DigestWorker) Name() string {
	return "digest"
}

// Run implements worker.Worker: one load, analyze and store cycle
func (w *DigestWorker) Run(ctx context.Context) error {
	if w.lock != nil {
		acquired, err := w.lock.TryAcquire(ctx)
		if err != nil {
			return fmt.Errorf("failed to acquire run lock: %w", err)
		}
		if !acquired {
			logger.Debug("digest run skipped, lock held elsewhere")
			return nil
		}
		defer func() {
			if err := w.lock.Release(context.Background()); err != nil {
				logger.Warn("failed to release run lock", zap.Error(err))
			}
		}()
	}

	startTime := time.Now()
	var since time.Time
	if w.lookback > 0 {
		since = w.now().Add(-w.lookback)
	}

	items, err := w.source.LoadBatch(ctx, since, w.limit)
	if err != nil {
		return fmt.Errorf("failed to load news batch: %w", err)
	}

	digest, err := w.analyzer.Run(ctx, items)
	if err != nil {
		return fmt.Errorf("failed to analyze news batch: %w", err)
	}

	if w.store != nil {
		if err := w.store.SaveDigest(ctx, digest); err != nil {
			return fmt.Errorf("failed to save digest: %w", err)
		}
	}

	w.mu.Lock()
	w.last = digest
	w.mu.Unlock()

	logger.Info("digest completed",
		zap.String("run_id", digest.RunID),
		zap.Int("items", digest.ItemCount),
		zap.Int("clusters", len(digest.Records)),
		zap.String("mood", string(digest.Mood.Overall())),
		zap.String("bullish_share", digest.Mood.BullishShare.StringFixed(2)),
		zap.String("bearish_share", digest.Mood.BearishShare.StringFixed(2)),
		zap.Duration("took", time.Since(startTime)),
	)

	for i, rec := range digest.Records {
		if i == topClustersLogged {
			break
		}
		logger.Info("top theme",
			zap.Int("rank", i+1),
			zap.String("summary", rec.Summary),
			zap.Int("size", rec.Cluster.Size()),
			zap.String("direction", string(rec.Verdict.Direction)),
			zap.String("intensity", string(rec.Verdict.Intensity)),
			zap.String("mechanism", string(rec.Verdict.Mechanism)),
			zap.Float64("confidence", rec.Verdict.Confidence),
		)
	}

	return nil
}

// Last returns digest of the latest successful run, nil before the first one
func (w *DigestWorker) Last() *models.Digest {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.last
}
