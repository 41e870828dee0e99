package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/selivandex/news-impact/pkg/logger"
)

// ErrStopTimeout is returned when a worker does not finish its iteration in time
var ErrStopTimeout = errors.New("worker stop timeout")

// Worker is one unit of background work, run on an interval
type Worker interface {
	Name() string
	// Run executes one iteration
	Run(ctx context.Context) error
}

// Status describes the latest iterations of a periodic worker
type Status struct {
	LastStarted  time.Time     `json:"last_started"`
	LastFinished time.Time     `json:"last_finished"`
	LastDuration time.Duration `json:"last_duration"`
	LastError    string        `json:"last_error,omitempty"`
	Name         string        `json:"name"`
	Runs         int           `json:"runs"`
	Failures     int           `json:"failures"`
}

// Healthy returns true when at least one run finished and the latest one succeeded
func (s Status) Healthy() bool {
	return s.Runs > 0 && s.LastError == ""
}

// PeriodicWorker runs a Worker right away and then on every tick until its context ends
type PeriodicWorker struct {
	worker   Worker
	interval time.Duration
	done     chan struct{}

	mu     sync.RWMutex
	status Status
}

// NewPeriodicWorker creates new periodic worker
func NewPeriodicWorker(worker Worker, interval time.Duration) *PeriodicWorker {
	return &PeriodicWorker{
		worker:   worker,
		interval: interval,
		done:     make(chan struct{}),
		status:   Status{Name: worker.Name()},
	}
}

// Start launches the loop, call it once
func (pw *PeriodicWorker) Start(ctx context.Context) {
	go pw.loop(ctx)
}

// Stop waits for the loop to exit after its context was canceled
func (pw *PeriodicWorker) Stop(timeout time.Duration) error {
	select {
	case <-pw.done:
		logger.Info("worker stopped", zap.String("worker", pw.status.Name))
		return nil
	case <-time.After(timeout):
		logger.Warn("worker stop timeout", zap.String("worker", pw.status.Name))
		return fmt.Errorf("%s: %w", pw.status.Name, ErrStopTimeout)
	}
}

// Status returns snapshot of run statistics
func (pw *PeriodicWorker) Status() Status {
	pw.mu.RLock()
	defer pw.mu.RUnlock()
	return pw.status
}

// RunOnce executes a single iteration and records its outcome
func (pw *PeriodicWorker) RunOnce(ctx context.Context) error {
	started := time.Now()

	pw.mu.Lock()
	pw.status.LastStarted = started
	pw.mu.Unlock()

	err := pw.worker.Run(ctx)
	finished := time.Now()

	pw.mu.Lock()
	pw.status.LastFinished = finished
	pw.status.LastDuration = finished.Sub(started)
	pw.status.Runs++
	pw.status.LastError = ""
	if err != nil {
		pw.status.Failures++
		pw.status.LastError = err.Error()
	}
	pw.mu.Unlock()

	if err != nil {
		logger.Error("worker execution failed",
			zap.String("worker", pw.status.Name),
			zap.Duration("took", finished.Sub(started)),
			zap.Error(err),
		)
	}

	return err
}

func (pw *PeriodicWorker) loop(ctx context.Context) {
	defer close(pw.done)

	logger.Info("worker started",
		zap.String("worker", pw.status.Name),
		zap.Duration("interval", pw.interval),
	)

	ticker := time.NewTicker(pw.interval)
	defer ticker.Stop()

	// failures are recorded in Status, the loop keeps going
	for {
		_ = pw.RunOnce(ctx)

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// WorkerGroup starts and stops periodic workers together
type WorkerGroup struct {
	ctx     context.Context
	cancel  context.CancelFunc
	mu      sync.Mutex
	workers []*PeriodicWorker
}

// NewWorkerGroup creates group whose workers stop when ctx ends or Stop is called
func NewWorkerGroup(ctx context.Context) *WorkerGroup {
	ctx, cancel := context.WithCancel(ctx)
	return &WorkerGroup{ctx: ctx, cancel: cancel}
}

// Add registers worker, it starts with the group
func (wg *WorkerGroup) Add(worker Worker, interval time.Duration) *PeriodicWorker {
	wg.mu.Lock()
	defer wg.mu.Unlock()

	pw := NewPeriodicWorker(worker, interval)
	wg.workers = append(wg.workers, pw)
	return pw
}

// Start starts all workers
func (wg *WorkerGroup) Start() {
	wg.mu.Lock()
	defer wg.mu.Unlock()

	for _, pw := range wg.workers {
		pw.Start(wg.ctx)
	}

	logger.Info("worker group started", zap.Int("workers", len(wg.workers)))
}

// Statuses returns run statistics of every worker in the group
func (wg *WorkerGroup) Statuses() []Status {
	wg.mu.Lock()
	defer wg.mu.Unlock()

	out := make([]Status, len(wg.workers))
	for i, pw := range wg.workers {
		out[i] = pw.Status()
	}
	return out
}

// Stop cancels the group and waits up to timeout per worker. Workers that did not
// finish are reported in the returned error.
func (wg *WorkerGroup) Stop(timeout time.Duration) error {
	wg.cancel()

	wg.mu.Lock()
	defer wg.mu.Unlock()

	var errs []error
	for _, pw := range wg.workers {
		if err := pw.Stop(timeout); err != nil {
			errs = append(errs, err)
		}
	}

	logger.Info("worker group stopped", zap.Int("timed_out", len(errs)))
	return errors.Join(errs...)
}
