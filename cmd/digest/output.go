package main

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/shopspring/decimal"

	"github.com/selivandex/news-impact/pkg/models"
)

type digestOutput struct {
	GeneratedAt time.Time                `json:"generated_at"`
	RunID       string                   `json:"run_id"`
	Mood        moodOutput               `json:"mood"`
	Themes      map[models.Mechanism]int `json:"themes"`
	Clusters    []recordOutput           `json:"clusters"`
	ItemCount   int                      `json:"item_count"`
}

type moodOutput struct {
	Overall      models.Direction `json:"overall"`
	BullishShare decimal.Decimal  `json:"bullish_share"`
	BearishShare decimal.Decimal  `json:"bearish_share"`
	BullishCount int              `json:"bullish_count"`
	BearishCount int              `json:"bearish_count"`
	NeutralCount int              `json:"neutral_count"`
}

type recordOutput struct {
	ClusterID string                `json:"cluster_id"`
	Summary   string                `json:"summary"`
	Members   []models.ReportMember `json:"members"`
	Signals   models.SignalBundle   `json:"signals"`
	Verdict   models.ImpactVerdict  `json:"verdict"`
	Rank      int                   `json:"rank"`
}

// writeDigest renders digest as indented JSON with member lists expanded
func writeDigest(w io.Writer, digest *models.Digest) error {
	out := digestOutput{
		GeneratedAt: digest.GeneratedAt,
		RunID:       digest.RunID,
		Mood: moodOutput{
			Overall:      digest.Mood.Overall(),
			BullishShare: digest.Mood.BullishShare,
			BearishShare: digest.Mood.BearishShare,
			BullishCount: digest.Mood.BullishCount,
			BearishCount: digest.Mood.BearishCount,
			NeutralCount: digest.Mood.NeutralCount,
		},
		Themes:    digest.Themes,
		Clusters:  make([]recordOutput, len(digest.Records)),
		ItemCount: digest.ItemCount,
	}

	for i := range digest.Records {
		rec := &digest.Records[i]
		out.Clusters[i] = recordOutput{
			Rank:      i + 1,
			ClusterID: rec.Cluster.ID,
			Summary:   rec.Summary,
			Members:   rec.Members(),
			Signals:   rec.Signals,
			Verdict:   rec.Verdict,
		}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("failed to write digest: %w", err)
	}
	return nil
}
