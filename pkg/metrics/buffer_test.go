package metrics

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/selivandex/news-impact/pkg/models"
)

type recordingWriter struct {
	mu       sync.Mutex
	written  map[string]int
	failures int
	closed   bool
}

func (w *recordingWriter) Write(ctx context.Context, tableName string, metrics []Metric) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.failures > 0 {
		w.failures--
		return errors.New("clickhouse unavailable")
	}
	if w.written == nil {
		w.written = map[string]int{}
	}
	w.written[tableName] += len(metrics)
	return nil
}

func (w *recordingWriter) Close() error {
	w.closed = true
	return nil
}

func (w *recordingWriter) count(table string) int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.written[table]
}

func newTestBuffer(writer Writer, maxSize int) *BufferedMetrics {
	return NewBufferedMetrics(BufferConfig{
		Writer:        writer,
		BatchSize:     1000,
		FlushInterval: time.Hour,
		MaxBufferSize: maxSize,
	})
}

func TestBufferedMetrics_FlushAndClose(t *testing.T) {
	writer := &recordingWriter{}
	bm := newTestBuffer(writer, 0)

	require.NoError(t, bm.Add(&ThemeMetric{RunID: "r", Rank: 1}))
	require.NoError(t, bm.Add(&ThemeMetric{RunID: "r", Rank: 2}))
	require.NoError(t, bm.Add(&RunMetric{RunID: "r"}))
	assert.Equal(t, 3, bm.Size())

	require.NoError(t, bm.Flush(context.Background()))
	assert.Zero(t, bm.Size())
	assert.Equal(t, 2, writer.count("theme_metrics"))
	assert.Equal(t, 1, writer.count("digest_run_metrics"))

	require.NoError(t, bm.Add(&RunMetric{RunID: "s"}))
	require.NoError(t, bm.Close(context.Background()))
	assert.Equal(t, 2, writer.count("digest_run_metrics"))
	assert.True(t, writer.closed)

	assert.ErrorIs(t, bm.Add(&RunMetric{}), ErrBufferClosed)
	require.NoError(t, bm.Close(context.Background()))
}

func TestBufferedMetrics_MaxSize(t *testing.T) {
	bm := newTestBuffer(&recordingWriter{}, 2)
	defer bm.Close(context.Background())

	require.NoError(t, bm.Add(&RunMetric{}))
	require.NoError(t, bm.Add(&RunMetric{}))
	assert.ErrorIs(t, bm.Add(&RunMetric{}), ErrBufferFull)

	require.NoError(t, bm.Flush(context.Background()))
	require.NoError(t, bm.Add(&RunMetric{}))
}

func TestBufferedMetrics_RequeuesFailedWrite(t *testing.T) {
	writer := &recordingWriter{failures: 1}
	bm := newTestBuffer(writer, 3)
	defer bm.Close(context.Background())

	require.NoError(t, bm.Add(&ThemeMetric{Rank: 1}))
	require.NoError(t, bm.Add(&ThemeMetric{Rank: 2}))

	require.Error(t, bm.Flush(context.Background()))
	assert.Equal(t, 2, bm.Size())
	assert.Zero(t, writer.count("theme_metrics"))

	require.NoError(t, bm.Add(&ThemeMetric{Rank: 3}))
	assert.ErrorIs(t, bm.Add(&ThemeMetric{Rank: 4}), ErrBufferFull)

	require.NoError(t, bm.Flush(context.Background()))
	assert.Equal(t, 3, writer.count("theme_metrics"))
}

func TestBufferedMetrics_FlushesOnBatchSize(t *testing.T) {
	writer := &recordingWriter{}
	bm := NewBufferedMetrics(BufferConfig{Writer: writer, BatchSize: 2, FlushInterval: time.Hour})
	defer bm.Close(context.Background())

	require.NoError(t, bm.Add(&RunMetric{}))
	require.NoError(t, bm.Add(&RunMetric{}))

	assert.Eventually(t, func() bool {
		return writer.count("digest_run_metrics") == 2
	}, time.Second, 10*time.Millisecond)
}

func TestBufferedMetrics_RejectsNil(t *testing.T) {
	bm := newTestBuffer(&recordingWriter{}, 0)
	defer bm.Close(context.Background())

	require.Error(t, bm.Add(nil))
}

func TestFromDigest(t *testing.T) {
	at := time.Date(2025, 5, 2, 8, 0, 0, 0, time.UTC)
	digest := &models.Digest{
		GeneratedAt: at,
		RunID:       "run-1",
		ItemCount:   3,
		Records: []models.ReportRecord{
			{
				Cluster: models.Cluster{ID: "c1", Members: make([]models.NewsItem, 2)},
				Verdict: models.ImpactVerdict{
					Direction:  models.DirectionBearish,
					Intensity:  models.IntensityStrong,
					Mechanism:  models.MechanismDemand,
					FusedScore: -0.6,
					Magnitude:  0.6,
					Confidence: 0.5,
				},
			},
			{Cluster: models.Cluster{ID: "c2", Members: make([]models.NewsItem, 1)}},
		},
		Mood: models.HeadlineMood{
			BearishShare: decimal.NewFromInt(50),
			BullishShare: decimal.Zero,
			BearishCount: 1,
			NeutralCount: 1,
		},
	}

	out := FromDigest(digest)
	require.Len(t, out, 3)

	run, ok := out[0].(*RunMetric)
	require.True(t, ok)
	assert.Equal(t, []interface{}{at, "run-1", int64(3), int64(2), "bearish", 0.0, 50.0}, run.Values())

	theme, ok := out[1].(*ThemeMetric)
	require.True(t, ok)
	assert.Equal(t, []interface{}{
		at, "run-1", int64(1), "c1", int64(2), "bearish", "strong", "demand", -0.6, 0.6, 0.5,
	}, theme.Values())
	assert.Equal(t, 2, out[2].(*ThemeMetric).Rank)
}
