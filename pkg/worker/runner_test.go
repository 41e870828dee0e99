package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingWorker struct {
	runs atomic.Int32
	err  error
}

func (w *countingWorker) Name() string { return "counting" }

func (w *countingWorker) Run(ctx context.Context) error {
	w.runs.Add(1)
	return w.err
}

func TestPeriodicWorker_RunOnceRecordsStatus(t *testing.T) {
	w := &countingWorker{}
	pw := NewPeriodicWorker(w, time.Hour)

	assert.False(t, pw.Status().Healthy())

	require.NoError(t, pw.RunOnce(context.Background()))
	status := pw.Status()
	assert.Equal(t, "counting", status.Name)
	assert.Equal(t, 1, status.Runs)
	assert.True(t, status.Healthy())
	assert.False(t, status.LastFinished.Before(status.LastStarted))
	assert.Equal(t, status.LastFinished.Sub(status.LastStarted), status.LastDuration)

	w.err = errors.New("source unavailable")
	require.Error(t, pw.RunOnce(context.Background()))
	status = pw.Status()
	assert.Equal(t, 2, status.Runs)
	assert.Equal(t, 1, status.Failures)
	assert.Equal(t, "source unavailable", status.LastError)
	assert.False(t, status.Healthy())
}

func TestWorkerGroup_RunsImmediatelyAndStops(t *testing.T) {
	w := &countingWorker{}
	group := NewWorkerGroup(context.Background())
	group.Add(w, time.Hour)
	group.Start()

	require.Eventually(t, func() bool {
		return w.runs.Load() >= 1
	}, time.Second, 5*time.Millisecond)

	require.NoError(t, group.Stop(time.Second))

	statuses := group.Statuses()
	require.Len(t, statuses, 1)
	assert.Equal(t, 1, statuses[0].Runs)
}

func TestPeriodicWorker_Ticks(t *testing.T) {
	w := &countingWorker{}
	ctx, cancel := context.WithCancel(context.Background())
	pw := NewPeriodicWorker(w, 10*time.Millisecond)
	pw.Start(ctx)

	require.Eventually(t, func() bool {
		return w.runs.Load() >= 3
	}, 2*time.Second, 5*time.Millisecond)

	cancel()
	require.NoError(t, pw.Stop(time.Second))
}

type blockingWorker struct {
	release chan struct{}
}

func (w *blockingWorker) Name() string { return "blocking" }

func (w *blockingWorker) Run(ctx context.Context) error {
	<-w.release
	return nil
}

func TestWorkerGroup_StopReportsTimeout(t *testing.T) {
	w := &blockingWorker{release: make(chan struct{})}
	defer close(w.release)

	group := NewWorkerGroup(context.Background())
	group.Add(w, time.Hour)
	group.Start()

	err := group.Stop(20 * time.Millisecond)
	require.ErrorIs(t, err, ErrStopTimeout)
	assert.Contains(t, err.Error(), "blocking")
}
