package reports

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/selivandex/news-impact/pkg/models"
	"github.com/selivandex/news-impact/test/testdb"
)

func sampleDigest() *models.Digest {
	published := time.Date(2025, 5, 5, 6, 0, 0, 0, time.UTC)
	records := []models.ReportRecord{
		{
			Cluster: models.Cluster{
				ID: uuid.NewString(),
				Members: []models.NewsItem{
					{ID: "n1", Title: "Sanctions widen", PublishedAt: published},
					{ID: "n2", Title: "More sanctions", PublishedAt: published.Add(time.Hour)},
				},
			},
			Summary: "Sanctions widen",
			Signals: models.SignalBundle{KeywordPolarity: 0.66, KeywordHits: 2, MemberCount: 2},
			Verdict: models.ImpactVerdict{
				Direction:  models.DirectionBullish,
				Intensity:  models.IntensityStrong,
				Mechanism:  models.MechanismGeopolitical,
				FusedScore: 0.66,
				Magnitude:  0.66,
				Confidence: 0.3,
			},
		},
		{
			Cluster: models.Cluster{
				ID:      uuid.NewString(),
				Ordinal: 1,
				Members: []models.NewsItem{{ID: "n3", Title: "Quiet", PublishedAt: published}},
			},
			Summary: "summary unavailable",
			Verdict: models.ImpactVerdict{
				Direction: models.DirectionNeutral,
				Intensity: models.IntensityWeak,
				Mechanism: models.MechanismNone,
			},
		},
	}

	return &models.Digest{
		GeneratedAt: published.Add(2 * time.Hour),
		RunID:       uuid.NewString(),
		Records:     records,
		Themes:      map[models.Mechanism]int{models.MechanismGeopolitical: 2},
		Mood:        models.GetHeadlineMood(records),
		ItemCount:   3,
	}
}

func TestRepository_SaveDigest(t *testing.T) {
	tdb := testdb.Setup(t)
	repo := NewRepository(tdb.DB.DB())
	ctx := context.Background()

	digest := sampleDigest()
	require.NoError(t, repo.SaveDigest(ctx, digest))

	assert.Equal(t, 2, tdb.Count(t, "theme_reports"))

	latest, err := repo.GetLatestRunID(ctx)
	require.NoError(t, err)
	assert.Equal(t, digest.RunID, latest)

	run, err := repo.GetRun(ctx, digest.RunID)
	require.NoError(t, err)
	assert.Equal(t, 3, run.ItemCount)
	assert.Equal(t, 2, run.ClusterCount)
	assert.True(t, digest.Mood.BullishShare.Equal(run.BullishShare))

	var themes map[string]int
	require.NoError(t, json.Unmarshal(run.Themes, &themes))
	assert.Equal(t, 2, themes["geopolitical"])

	stored, err := repo.GetReports(ctx, digest.RunID)
	require.NoError(t, err)
	require.Len(t, stored, 2)
	assert.Equal(t, 1, stored[0].Rank)
	assert.Equal(t, []string{"n1", "n2"}, []string(stored[0].MemberIDs))
	assert.Equal(t, "bullish", stored[0].Direction)
	assert.Equal(t, "none", stored[1].Mechanism)

	// same run twice violates the run_id key and leaves no partial rows
	require.Error(t, repo.SaveDigest(ctx, digest))
	assert.Equal(t, 2, tdb.Count(t, "theme_reports"))
}

func TestRepository_EmptyDatabase(t *testing.T) {
	tdb := testdb.Setup(t)
	repo := NewRepository(tdb.DB.DB())

	latest, err := repo.GetLatestRunID(context.Background())
	require.NoError(t, err)
	assert.Empty(t, latest)
}
