package main

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/selivandex/news-impact/pkg/models"
)

func TestWriteDigest(t *testing.T) {
	published := time.Date(2025, 8, 1, 9, 0, 0, 0, time.UTC)
	records := []models.ReportRecord{{
		Cluster: models.Cluster{
			ID: "c1",
			Members: []models.NewsItem{
				{ID: "a", Title: "Pipeline outage", Source: "wire", PublishedAt: published, Embedding: []float32{1, 2}},
			},
		},
		Summary: "Pipeline outage",
		Verdict: models.ImpactVerdict{Direction: models.DirectionBullish, Mechanism: models.MechanismSupply},
	}}
	digest := &models.Digest{
		GeneratedAt: published,
		RunID:       "run",
		Records:     records,
		Themes:      map[models.Mechanism]int{models.MechanismSupply: 1},
		Mood:        models.GetHeadlineMood(records),
		ItemCount:   1,
	}

	var buf bytes.Buffer
	require.NoError(t, writeDigest(&buf, digest))

	var out struct {
		Mood struct {
			Overall      string `json:"overall"`
			BullishShare string `json:"bullish_share"`
		} `json:"mood"`
		Clusters []struct {
			Rank    int                      `json:"rank"`
			Members []map[string]interface{} `json:"members"`
			Verdict map[string]interface{}   `json:"verdict"`
		} `json:"clusters"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))

	assert.Equal(t, "bullish", out.Mood.Overall)
	assert.Equal(t, "100", out.Mood.BullishShare)
	require.Len(t, out.Clusters, 1)
	assert.Equal(t, 1, out.Clusters[0].Rank)
	require.Len(t, out.Clusters[0].Members, 1)
	assert.Equal(t, "a", out.Clusters[0].Members[0]["id"])
	assert.NotContains(t, out.Clusters[0].Members[0], "embedding")
	assert.Equal(t, "supply", out.Clusters[0].Verdict["mechanism"])
}
