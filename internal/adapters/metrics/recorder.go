package metrics

import (
	"context"
	"fmt"

	"github.com/selivandex/news-impact/pkg/metrics"
	"github.com/selivandex/news-impact/pkg/models"
)

// Queue accepts rows for a later write, metrics.BufferedMetrics implements it
type Queue interface {
	Add(metric metrics.Metric) error
}

// DigestRecorder queues digest runs as analytics rows
type DigestRecorder struct {
	buffer Queue
}

// NewDigestRecorder creates recorder over a metrics queue
func NewDigestRecorder(buffer Queue) *DigestRecorder {
	return &DigestRecorder{buffer: buffer}
}

// SaveDigest implements workers.DigestStore.
// Rows are written by the buffer on its own schedule.
func (r *DigestRecorder) SaveDigest(ctx context.Context, digest *models.Digest) error {
	for _, m := range metrics.FromDigest(digest) {
		if err := r.buffer.Add(m); err != nil {
			return fmt.Errorf("failed to queue %s row: %w", m.TableName(), err)
		}
	}
	return nil
}
