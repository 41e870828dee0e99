package reports

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/selivandex/news-impact/pkg/models"
)

var base = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

func cluster(id string, ordinal int, offsets ...time.Duration) models.Cluster {
	c := models.Cluster{ID: id, Ordinal: ordinal}
	for i, off := range offsets {
		c.Members = append(c.Members, models.NewsItem{
			ID:          id + "-" + string(rune('a'+i)),
			Title:       "Title of " + id,
			PublishedAt: base.Add(off),
		})
	}
	return c
}

func verdict(magnitude float64) models.ImpactVerdict {
	return models.ImpactVerdict{Magnitude: magnitude, Direction: models.DirectionNeutral}
}

func ids(records []models.ReportRecord) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.Cluster.ID
	}
	return out
}

func TestAssembler_Ordering(t *testing.T) {
	clusters := []models.Cluster{
		cluster("weak", 0, 0),
		cluster("strong", 1, time.Hour),
		cluster("big", 2, 2*time.Hour, 3*time.Hour),
		cluster("early", 3, -time.Hour),
		cluster("late", 4, 5*time.Hour),
		cluster("later-ordinal", 5, 5*time.Hour),
	}
	bundles := make([]models.SignalBundle, len(clusters))
	verdicts := []models.ImpactVerdict{
		verdict(0.1),
		verdict(0.8),
		verdict(0.3),
		verdict(0.3),
		verdict(0.3),
		verdict(0.3),
	}

	records, err := NewAssembler(nil).Assemble(clusters, bundles, verdicts)
	require.NoError(t, err)

	// magnitude desc, then size desc, then earliest timestamp, then ordinal
	assert.Equal(t, []string{"strong", "big", "early", "late", "later-ordinal", "weak"}, ids(records))
}

func TestAssembler_KeepsAlignment(t *testing.T) {
	clusters := []models.Cluster{cluster("x", 0, 0), cluster("y", 1, 0)}
	bundles := []models.SignalBundle{{MemberCount: 1, KeywordHits: 7}, {MemberCount: 1, KeywordHits: 3}}
	verdicts := []models.ImpactVerdict{verdict(0.2), verdict(0.9)}

	records, err := NewAssembler(nil).Assemble(clusters, bundles, verdicts)
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, "y", records[0].Cluster.ID)
	assert.Equal(t, 3, records[0].Signals.KeywordHits)
	assert.Equal(t, "x", records[1].Cluster.ID)
	assert.Equal(t, 7, records[1].Signals.KeywordHits)
}

func TestAssembler_LengthMismatch(t *testing.T) {
	_, err := NewAssembler(nil).Assemble(
		[]models.Cluster{cluster("x", 0, 0)},
		nil,
		[]models.ImpactVerdict{verdict(0)},
	)
	require.ErrorIs(t, err, ErrLengthMismatch)
}

func TestAssembler_Empty(t *testing.T) {
	records, err := NewAssembler(nil).Assemble(nil, nil, nil)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestAssembler_Summaries(t *testing.T) {
	clusters := []models.Cluster{cluster("x", 0, 0), cluster("y", 1, 0), cluster("z", 2, 0)}
	bundles := make([]models.SignalBundle, 3)
	verdicts := []models.ImpactVerdict{verdict(0.3), verdict(0.2), verdict(0.1)}

	provider := StaticSummaries{"x": "OPEC+ extends cuts", "y": "   "}

	records, err := NewAssembler(provider).Assemble(clusters, bundles, verdicts)
	require.NoError(t, err)

	assert.Equal(t, "OPEC+ extends cuts", records[0].Summary)
	assert.Equal(t, SummaryUnavailable, records[1].Summary)
	assert.Equal(t, SummaryUnavailable, records[2].Summary)

	records, err = NewAssembler(nil).Assemble(clusters, bundles, verdicts)
	require.NoError(t, err)
	for _, r := range records {
		assert.Equal(t, SummaryUnavailable, r.Summary)
	}
}

func TestLeadTitleSummaries(t *testing.T) {
	c := models.Cluster{Members: []models.NewsItem{
		{ID: "1", Title: "  "},
		{ID: "2", Title: "Brent  climbs\nafter outage"},
	}}

	text, ok := LeadTitleSummaries{}.Summary(c)
	require.True(t, ok)
	assert.Equal(t, "Brent climbs after outage", text)

	long := strings.Repeat("é", MaxLeadTitleRunes+30)
	text, ok = LeadTitleSummaries{}.Summary(models.Cluster{Members: []models.NewsItem{{ID: "1", Title: long}}})
	require.True(t, ok)
	assert.Equal(t, MaxLeadTitleRunes+1, len([]rune(text)))
	assert.True(t, strings.HasSuffix(text, "…"))

	_, ok = LeadTitleSummaries{}.Summary(models.Cluster{})
	assert.False(t, ok)
}

func TestChainSummaries(t *testing.T) {
	c := cluster("x", 0, 0)
	chain := ChainSummaries{StaticSummaries{"other": "nope"}, nil, LeadTitleSummaries{}}

	text, ok := chain.Summary(c)
	require.True(t, ok)
	assert.Equal(t, "Title of x", text)
}
