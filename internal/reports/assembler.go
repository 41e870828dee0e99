package reports

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/selivandex/news-impact/pkg/models"
)

// SummaryUnavailable is used when no summary text exists for a cluster
const SummaryUnavailable = "summary unavailable"

// ErrLengthMismatch is returned when clusters, bundles and verdicts are not aligned
var ErrLengthMismatch = errors.New("clusters, bundles and verdicts differ in length")

// SummaryProvider supplies human readable text for a cluster
type SummaryProvider interface {
	Summary(cluster models.Cluster) (string, bool)
}

// Assembler joins clusters with their signals and verdicts into ordered records
type Assembler struct {
	summaries SummaryProvider
}

// NewAssembler creates report assembler. nil provider yields placeholder summaries.
func NewAssembler(summaries SummaryProvider) *Assembler {
	return &Assembler{summaries: summaries}
}

// Assemble builds report records ordered by magnitude, size, age and creation order.
// bundles[i] and verdicts[i] must belong to clusters[i].
func (a *Assembler) Assemble(clusters []models.Cluster, bundles []models.SignalBundle, verdicts []models.ImpactVerdict) ([]models.ReportRecord, error) {
	if len(clusters) != len(bundles) || len(clusters) != len(verdicts) {
		return nil, fmt.Errorf("%w: %d clusters, %d bundles, %d verdicts",
			ErrLengthMismatch, len(clusters), len(bundles), len(verdicts))
	}

	records := make([]models.ReportRecord, len(clusters))
	for i := range clusters {
		records[i] = models.ReportRecord{
			Cluster: clusters[i],
			Summary: a.summaryOf(clusters[i]),
			Signals: bundles[i],
			Verdict: verdicts[i],
		}
	}

	sort.SliceStable(records, func(i, j int) bool {
		return less(&records[i], &records[j])
	})

	return records, nil
}

func (a *Assembler) summaryOf(cluster models.Cluster) string {
	if a.summaries == nil {
		return SummaryUnavailable
	}
	text, ok := a.summaries.Summary(cluster)
	text = strings.TrimSpace(text)
	if !ok || text == "" {
		return SummaryUnavailable
	}
	return text
}

func less(a, b *models.ReportRecord) bool {
	if a.Verdict.Magnitude != b.Verdict.Magnitude {
		return a.Verdict.Magnitude > b.Verdict.Magnitude
	}
	if a.Cluster.Size() != b.Cluster.Size() {
		return a.Cluster.Size() > b.Cluster.Size()
	}
	ea, eb := a.Cluster.EarliestPublished(), b.Cluster.EarliestPublished()
	if !ea.Equal(eb) {
		return ea.Before(eb)
	}
	return a.Cluster.Ordinal < b.Cluster.Ordinal
}
