package sentiment

import (
	"errors"
	"fmt"
	"math"

	"github.com/selivandex/news-impact/pkg/models"
)

// ErrInvalidConfig is returned when scorer parameters are out of range
var ErrInvalidConfig = errors.New("invalid impact scorer config")

// MaxConfidenceCap is the highest confidence a verdict can carry
const MaxConfidenceCap = 0.95

const (
	agreementFull     = 1.0
	agreementOneSided = 0.6
	agreementNeutral  = 0.4 // evidence present, no signal leans either way
)

// ScorerConfig holds fusion and calibration parameters
type ScorerConfig struct {
	KeywordWeight   float64 // share of lexical polarity in the fused score
	SentimentWeight float64 // share of sentiment polarity in the fused score
	Deadband        float64 // |fused| <= Deadband reads as neutral
	StrongThreshold float64 // magnitude at which intensity becomes strong
	MaxConfidence   float64
	SizeScale       float64 // cluster size that yields half of the size factor
	DisagreementCap float64 // confidence ceiling when signals point opposite ways
}

// DefaultScorerConfig returns equal-weight fusion with conservative calibration
func DefaultScorerConfig() ScorerConfig {
	return ScorerConfig{
		KeywordWeight:   0.5,
		SentimentWeight: 0.5,
		Deadband:        0.05,
		StrongThreshold: 0.5,
		MaxConfidence:   MaxConfidenceCap,
		SizeScale:       2,
		DisagreementCap: 0.35,
	}
}

// Validate checks scorer parameters
func (c ScorerConfig) Validate() error {
	for name, w := range map[string]float64{"keyword": c.KeywordWeight, "sentiment": c.SentimentWeight} {
		if math.IsNaN(w) || w < 0 || w > 1 {
			return fmt.Errorf("%w: %s weight must be within [0, 1], got %v", ErrInvalidConfig, name, w)
		}
	}
	if sum := c.KeywordWeight + c.SentimentWeight; sum < 0.5 || sum > 1.5 {
		return fmt.Errorf("%w: weights must sum to a value within [0.5, 1.5], got %v", ErrInvalidConfig, sum)
	}
	if math.IsNaN(c.Deadband) || c.Deadband < 0 || c.Deadband >= 1 {
		return fmt.Errorf("%w: deadband must be within [0, 1), got %v", ErrInvalidConfig, c.Deadband)
	}
	if math.IsNaN(c.StrongThreshold) || c.StrongThreshold <= c.Deadband || c.StrongThreshold > 1 {
		return fmt.Errorf("%w: strong threshold must be within (deadband, 1], got %v", ErrInvalidConfig, c.StrongThreshold)
	}
	if math.IsNaN(c.MaxConfidence) || c.MaxConfidence <= 0 || c.MaxConfidence > MaxConfidenceCap {
		return fmt.Errorf("%w: max confidence must be within (0, %v], got %v", ErrInvalidConfig, MaxConfidenceCap, c.MaxConfidence)
	}
	if math.IsNaN(c.SizeScale) || c.SizeScale <= 0 {
		return fmt.Errorf("%w: size scale must be positive, got %v", ErrInvalidConfig, c.SizeScale)
	}
	if math.IsNaN(c.DisagreementCap) || c.DisagreementCap < 0 || c.DisagreementCap > c.MaxConfidence {
		return fmt.Errorf("%w: disagreement cap must be within [0, max confidence], got %v", ErrInvalidConfig, c.DisagreementCap)
	}
	return nil
}

// ImpactScorer turns cluster signals into a price-impact verdict
type ImpactScorer struct {
	cfg ScorerConfig
}

// NewImpactScorer creates new impact scorer
func NewImpactScorer(cfg ScorerConfig) (*ImpactScorer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &ImpactScorer{cfg: cfg}, nil
}

// Score calculates direction, magnitude, mechanism and confidence for a bundle
func (is *ImpactScorer) Score(bundle models.SignalBundle) models.ImpactVerdict {
	mechanism := bundle.TopMechanism
	if mechanism == "" {
		mechanism = models.MechanismNone
	}

	verdict := models.ImpactVerdict{
		Direction: models.DirectionNeutral,
		Intensity: models.IntensityWeak,
		Mechanism: mechanism,
	}

	fused, ok := is.fuse(bundle)
	if !ok {
		// nothing to go on: neutral with minimum confidence
		return verdict
	}

	verdict.FusedScore = fused
	verdict.Magnitude = clamp(math.Abs(fused), 0, 1)

	switch {
	case fused > is.cfg.Deadband:
		verdict.Direction = models.DirectionBullish
	case fused < -is.cfg.Deadband:
		verdict.Direction = models.DirectionBearish
	}

	switch {
	case verdict.Magnitude >= is.cfg.StrongThreshold:
		verdict.Intensity = models.IntensityStrong
	case verdict.Magnitude > is.cfg.Deadband:
		verdict.Intensity = models.IntensityModerate
	}

	verdict.Confidence = is.confidence(bundle)

	return verdict
}

// fuse returns weighted mean of the signals that are present.
// A signal without evidence is dropped from the weighting, never counted as zero.
func (is *ImpactScorer) fuse(bundle models.SignalBundle) (float64, bool) {
	var sum, weights float64

	if bundle.HasKeywordSignal() {
		sum += is.cfg.KeywordWeight * bundle.KeywordPolarity
		weights += is.cfg.KeywordWeight
	}
	if bundle.HasSentimentSignal() {
		sum += is.cfg.SentimentWeight * bundle.SentimentPolarity
		weights += is.cfg.SentimentWeight
	}

	if weights == 0 {
		return 0, false
	}

	return clamp(sum/weights, -1, 1), true
}

// confidence grows with cluster size and with agreement between the two signals
func (is *ImpactScorer) confidence(bundle models.SignalBundle) float64 {
	n := float64(bundle.MemberCount)
	if n <= 0 {
		return 0
	}
	size := n / (n + is.cfg.SizeScale)

	keywordSign := signOf(bundle.KeywordPolarity, bundle.HasKeywordSignal())
	sentimentSign := signOf(bundle.SentimentPolarity, bundle.HasSentimentSignal())

	var conf float64
	switch {
	case keywordSign != 0 && sentimentSign != 0 && keywordSign == sentimentSign:
		conf = size * agreementFull
	case keywordSign != 0 && sentimentSign != 0:
		conf = math.Min(size*agreementFull, is.cfg.DisagreementCap)
	case keywordSign != 0 || sentimentSign != 0:
		conf = size * agreementOneSided
	case bundle.HasKeywordSignal() || bundle.HasSentimentSignal():
		conf = size * agreementNeutral
	default:
		conf = 0
	}

	return clamp(conf, 0, is.cfg.MaxConfidence)
}

func signOf(v float64, present bool) int {
	switch {
	case !present:
		return 0
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}
