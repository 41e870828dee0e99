package models

import "time"

// Mechanism is a causal category explaining why a theme may move price
type Mechanism string

const (
	MechanismGeopolitical Mechanism = "geopolitical"
	MechanismSupply       Mechanism = "supply"
	MechanismDemand       Mechanism = "demand"
	MechanismMonetary     Mechanism = "monetary"

	// MechanismMixed is reported when several categories share the top vote
	MechanismMixed Mechanism = "mixed"
	// MechanismNone is reported when no lexicon keyword matched
	MechanismNone Mechanism = "none"
)

// Mechanisms lists the categories a lexicon may declare, in report order
var Mechanisms = []Mechanism{
	MechanismGeopolitical,
	MechanismSupply,
	MechanismDemand,
	MechanismMonetary,
}

// IsKnown returns true for the four lexicon categories
func (m Mechanism) IsKnown() bool {
	for _, known := range Mechanisms {
		if m == known {
			return true
		}
	}
	return false
}

// Direction is the expected price move of a theme
type Direction string

const (
	DirectionBullish Direction = "bullish"
	DirectionBearish Direction = "bearish"
	DirectionNeutral Direction = "neutral"
)

// Intensity labels how far the fused score is from zero
type Intensity string

const (
	IntensityStrong   Intensity = "strong"
	IntensityModerate Intensity = "moderate"
	IntensityWeak     Intensity = "weak"
)

// SignalBundle aggregates lexical and sentiment signals of one cluster
type SignalBundle struct {
	MechanismVotes    map[Mechanism]int `json:"mechanism_votes"`
	TopMechanism      Mechanism         `json:"top_mechanism"`
	KeywordPolarity   float64           `json:"keyword_polarity"`   // -1..1
	SentimentPolarity float64           `json:"sentiment_polarity"` // -1..1, mean of available scores
	KeywordHits       int               `json:"keyword_hits"` // matches with non-zero weight
	SentimentSamples  int               `json:"sentiment_samples"`
	MemberCount       int               `json:"member_count"`
}

// HasKeywordSignal returns true when at least one polarity-bearing keyword matched
func (s *SignalBundle) HasKeywordSignal() bool {
	return s.KeywordHits > 0
}

// HasSentimentSignal returns true when at least one member carried a sentiment score
func (s *SignalBundle) HasSentimentSignal() bool {
	return s.SentimentSamples > 0
}

// ImpactVerdict is the calibrated price-impact estimate of a cluster
type ImpactVerdict struct {
	Direction  Direction `json:"direction"`
	Intensity  Intensity `json:"intensity"`
	Mechanism  Mechanism `json:"mechanism"`
	FusedScore float64   `json:"fused_score"`
	Magnitude  float64   `json:"magnitude"`  // 0..1
	Confidence float64   `json:"confidence"` // 0..0.95
}

// ReportRecord joins cluster membership with its signals and verdict
type ReportRecord struct {
	Cluster Cluster       `json:"cluster"`
	Summary string        `json:"summary"`
	Signals SignalBundle  `json:"signals"`
	Verdict ImpactVerdict `json:"verdict"`
}

// ReportMember is a JSON friendly view of one cluster member
type ReportMember struct {
	PublishedAt time.Time `json:"published_at"`
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Source      string    `json:"source"`
	URL         string    `json:"url,omitempty"`
}

// Members returns JSON friendly member view
func (r *ReportRecord) Members() []ReportMember {
	out := make([]ReportMember, len(r.Cluster.Members))
	for i, m := range r.Cluster.Members {
		out[i] = ReportMember{
			PublishedAt: m.PublishedAt,
			ID:          m.ID,
			Title:       m.Title,
			Source:      m.Source,
			URL:         m.URL,
		}
	}
	return out
}
