package metrics

import (
	"context"
	"time"

	"github.com/selivandex/news-impact/pkg/models"
)

// Metric is one analytics row
type Metric interface {
	TableName() string
	// Values are in table column order
	Values() []interface{}
}

// Writer stores rows of one table per call
type Writer interface {
	Write(ctx context.Context, tableName string, metrics []Metric) error
	Close() error
}

// ThemeMetric is one scored cluster of a digest run
type ThemeMetric struct {
	Timestamp  time.Time
	RunID      string
	ClusterID  string
	Direction  string
	Intensity  string
	Mechanism  string
	Rank       int
	Size       int
	FusedScore float64
	Magnitude  float64
	Confidence float64
}

func (m *ThemeMetric) TableName() string {
	return "theme_metrics"
}

func (m *ThemeMetric) Values() []interface{} {
	return []interface{}{
		m.Timestamp,
		m.RunID,
		int64(m.Rank),
		m.ClusterID,
		int64(m.Size),
		m.Direction,
		m.Intensity,
		m.Mechanism,
		m.FusedScore,
		m.Magnitude,
		m.Confidence,
	}
}

// RunMetric summarizes a digest run
type RunMetric struct {
	Timestamp    time.Time
	RunID        string
	Mood         string
	Items        int
	Clusters     int
	BullishShare float64
	BearishShare float64
}

func (m *RunMetric) TableName() string {
	return "digest_run_metrics"
}

func (m *RunMetric) Values() []interface{} {
	return []interface{}{
		m.Timestamp,
		m.RunID,
		int64(m.Items),
		int64(m.Clusters),
		m.Mood,
		m.BullishShare,
		m.BearishShare,
	}
}

// FromDigest flattens digest into one run metric followed by a theme metric per record
func FromDigest(digest *models.Digest) []Metric {
	out := make([]Metric, 0, len(digest.Records)+1)
	out = append(out, &RunMetric{
		Timestamp:    digest.GeneratedAt,
		RunID:        digest.RunID,
		Items:        digest.ItemCount,
		Clusters:     len(digest.Records),
		Mood:         string(digest.Mood.Overall()),
		BullishShare: digest.Mood.BullishShare.InexactFloat64(),
		BearishShare: digest.Mood.BearishShare.InexactFloat64(),
	})

	for i, rec := range digest.Records {
		out = append(out, &ThemeMetric{
			Timestamp:  digest.GeneratedAt,
			RunID:      digest.RunID,
			Rank:       i + 1,
			ClusterID:  rec.Cluster.ID,
			Size:       rec.Cluster.Size(),
			Direction:  string(rec.Verdict.Direction),
			Intensity:  string(rec.Verdict.Intensity),
			Mechanism:  string(rec.Verdict.Mechanism),
			FusedScore: rec.Verdict.FusedScore,
			Magnitude:  rec.Verdict.Magnitude,
			Confidence: rec.Verdict.Confidence,
		})
	}
	return out
}
