package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Digest is the output of one clustering and scoring pass
type Digest struct {
	GeneratedAt time.Time         `json:"generated_at"`
	RunID       string            `json:"run_id"`
	Records     []ReportRecord    `json:"records"`
	Themes      map[Mechanism]int `json:"themes"` // items mentioning each mechanism
	Mood        HeadlineMood      `json:"mood"`
	ItemCount   int               `json:"item_count"`
}

// HeadlineMood represents the direction split over all clusters of a digest
type HeadlineMood struct {
	BullishShare decimal.Decimal `json:"bullish_share"` // 0-100, two decimals
	BearishShare decimal.Decimal `json:"bearish_share"` // 0-100, two decimals
	BullishCount int             `json:"bullish_count"`
	BearishCount int             `json:"bearish_count"`
	NeutralCount int             `json:"neutral_count"`
}

// GetHeadlineMood counts verdict directions and computes rounded shares
func GetHeadlineMood(records []ReportRecord) HeadlineMood {
	var mood HeadlineMood
	for _, r := range records {
		switch r.Verdict.Direction {
		case DirectionBullish:
			mood.BullishCount++
		case DirectionBearish:
			mood.BearishCount++
		default:
			mood.NeutralCount++
		}
	}

	total := mood.BullishCount + mood.BearishCount + mood.NeutralCount
	if total == 0 {
		mood.BullishShare = decimal.Zero
		mood.BearishShare = decimal.Zero
		return mood
	}

	mood.BullishShare = share(mood.BullishCount, total)
	mood.BearishShare = share(mood.BearishCount, total)
	return mood
}

// Overall returns dominant direction of the digest
func (m HeadlineMood) Overall() Direction {
	switch {
	case m.BullishCount > m.BearishCount:
		return DirectionBullish
	case m.BearishCount > m.BullishCount:
		return DirectionBearish
	default:
		return DirectionNeutral
	}
}

func share(count, total int) decimal.Decimal {
	return decimal.NewFromInt(int64(count)).
		Mul(decimal.NewFromInt(100)).
		DivRound(decimal.NewFromInt(int64(total)), 2)
}
