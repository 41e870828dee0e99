package metrics

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/selivandex/news-impact/pkg/logger"
)

var (
	// ErrBufferFull is returned by Add when MaxBufferSize rows are pending
	ErrBufferFull = errors.New("metrics buffer is full")
	// ErrBufferClosed is returned by Add after Close
	ErrBufferClosed = errors.New("metrics buffer is closed")
)

const flushTimeout = 5 * time.Second

// BufferConfig configures metrics buffer
type BufferConfig struct {
	Writer        Writer
	BatchSize     int           // rows per table that trigger an early flush
	FlushInterval time.Duration // periodic flush
	MaxBufferSize int           // pending rows before Add fails, 0 = unlimited
}

// BufferedMetrics batches rows per table and writes them from one background goroutine.
// Rows of a failed write are queued again while there is room.
type BufferedMetrics struct {
	writer    Writer
	batchSize int
	maxSize   int
	interval  time.Duration

	mu      sync.Mutex
	pending map[string][]Metric
	size    int
	closed  bool

	flushCh chan struct{}
	stopCh  chan struct{}
	wg      sync.WaitGroup
}

// NewBufferedMetrics creates buffer and starts its flush loop
func NewBufferedMetrics(cfg BufferConfig) *BufferedMetrics {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 100
	}
	if cfg.FlushInterval <= 0 {
		cfg.FlushInterval = 10 * time.Second
	}

	bm := &BufferedMetrics{
		writer:    cfg.Writer,
		batchSize: cfg.BatchSize,
		maxSize:   cfg.MaxBufferSize,
		interval:  cfg.FlushInterval,
		pending:   make(map[string][]Metric),
		flushCh:   make(chan struct{}, 1),
		stopCh:    make(chan struct{}),
	}

	bm.wg.Add(1)
	go bm.loop()

	logger.Info("metrics buffer initialized",
		zap.Int("batch_size", cfg.BatchSize),
		zap.Duration("flush_interval", cfg.FlushInterval),
		zap.Int("max_size", cfg.MaxBufferSize),
	)

	return bm
}

// Add queues a row, safe for concurrent use
func (bm *BufferedMetrics) Add(metric Metric) error {
	if metric == nil {
		return fmt.Errorf("metric is nil")
	}

	table := metric.TableName()
	if table == "" {
		return fmt.Errorf("metric table name is empty")
	}

	bm.mu.Lock()
	defer bm.mu.Unlock()

	if bm.closed {
		return ErrBufferClosed
	}
	if bm.maxSize > 0 && bm.size >= bm.maxSize {
		return ErrBufferFull
	}

	bm.pending[table] = append(bm.pending[table], metric)
	bm.size++

	if len(bm.pending[table]) >= bm.batchSize {
		// non-blocking, one queued request is enough
		select {
		case bm.flushCh <- struct{}{}:
		default:
		}
	}

	return nil
}

// Flush writes all pending rows now
func (bm *BufferedMetrics) Flush(ctx context.Context) error {
	bm.mu.Lock()
	batches := bm.pending
	bm.pending = make(map[string][]Metric, len(batches))
	bm.size = 0
	bm.mu.Unlock()

	var failed int
	for table, rows := range batches {
		if len(rows) == 0 {
			continue
		}

		if err := bm.writer.Write(ctx, table, rows); err != nil {
			failed++
			dropped := bm.requeue(table, rows)
			logger.Error("failed to flush metrics",
				zap.String("table", table),
				zap.Int("rows", len(rows)),
				zap.Int("dropped", dropped),
				zap.Error(err),
			)
			continue
		}

		logger.Debug("metrics flushed",
			zap.String("table", table),
			zap.Int("rows", len(rows)),
		)
	}

	if failed > 0 {
		return fmt.Errorf("flush failed for %d tables", failed)
	}
	return nil
}

// requeue puts rows back in front of newer ones and returns how many did not fit
func (bm *BufferedMetrics) requeue(table string, rows []Metric) int {
	bm.mu.Lock()
	defer bm.mu.Unlock()

	if bm.closed {
		return len(rows)
	}

	keep := len(rows)
	if bm.maxSize > 0 {
		keep = min(keep, max(bm.maxSize-bm.size, 0))
	}

	bm.pending[table] = append(rows[:keep:keep], bm.pending[table]...)
	bm.size += keep
	return len(rows) - keep
}

// Size returns pending rows across tables
func (bm *BufferedMetrics) Size() int {
	bm.mu.Lock()
	defer bm.mu.Unlock()
	return bm.size
}

// Close rejects further adds, stops the flush loop, writes what is left and closes the writer.
// Rows failing the final write are dropped.
func (bm *BufferedMetrics) Close(ctx context.Context) error {
	bm.mu.Lock()
	if bm.closed {
		bm.mu.Unlock()
		return nil
	}
	bm.closed = true
	bm.mu.Unlock()

	logger.Info("closing metrics buffer")

	close(bm.stopCh)
	bm.wg.Wait()

	flushErr := bm.Flush(ctx)

	if err := bm.writer.Close(); err != nil {
		return fmt.Errorf("failed to close metrics writer: %w", err)
	}
	if flushErr != nil {
		return fmt.Errorf("final flush failed: %w", flushErr)
	}

	logger.Info("metrics buffer closed")
	return nil
}

func (bm *BufferedMetrics) loop() {
	defer bm.wg.Done()

	ticker := time.NewTicker(bm.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
		case <-bm.flushCh:
		case <-bm.stopCh:
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), flushTimeout)
		if err := bm.Flush(ctx); err != nil {
			logger.Warn("background flush failed", zap.Error(err))
		}
		cancel()
	}
}
