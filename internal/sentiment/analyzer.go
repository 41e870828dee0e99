package sentiment

import (
	"strings"
)

// Provider supplies a sentiment score for texts that arrive without one.
// ok is false when the provider has no opinion, which is different from a neutral 0.
type Provider interface {
	Score(text string) (score float64, ok bool)
}

// NoProvider never scores anything, so only precomputed scores are used
type NoProvider struct{}

// Score implements Provider
func (NoProvider) Score(string) (float64, bool) {
	return 0, false
}

// ProviderFunc adapts a function to Provider
type ProviderFunc func(text string) (float64, bool)

// Score implements Provider
func (f ProviderFunc) Score(text string) (float64, bool) {
	return f(text)
}

// Analyzer performs simple keyword-based sentiment analysis
type Analyzer struct {
	positiveWords map[string]float64
	negativeWords map[string]float64
}

// NewAnalyzer creates new sentiment analyzer
func NewAnalyzer() *Analyzer {
	return &Analyzer{
		positiveWords: buildPositiveWords(),
		negativeWords: buildNegativeWords(),
	}
}

// Score implements Provider. Texts without any tone word are left unscored.
func (a *Analyzer) Score(text string) (float64, bool) {
	words := strings.Fields(strings.ToLower(text))
	if len(words) == 0 {
		return 0, false
	}

	var score float64
	matchCount := 0

	for _, word := range words {
		word = strings.Trim(word, ".,!?;:\"'()")

		if weight, ok := a.positiveWords[word]; ok {
			score += weight
			matchCount++
		}

		if weight, ok := a.negativeWords[word]; ok {
			score -= weight
			matchCount++
		}
	}

	if matchCount == 0 {
		return 0, false
	}

	return clamp(score/float64(matchCount), -1, 1), true
}

// AnalyzeSentiment returns score in -1.0..1.0, 0 when nothing matched
func (a *Analyzer) AnalyzeSentiment(text string) float64 {
	score, _ := a.Score(text)
	return score
}

// buildPositiveWords returns tone words that read as good news for prices
func buildPositiveWords() map[string]float64 {
	return map[string]float64{
		"surge":      0.8,
		"surges":     0.8,
		"rally":      0.9,
		"rallies":    0.9,
		"jump":       0.7,
		"jumps":      0.7,
		"soar":       0.8,
		"soars":      0.8,
		"spike":      0.7,
		"spikes":     0.7,
		"gain":       0.6,
		"gains":      0.6,
		"rise":       0.5,
		"rises":      0.5,
		"climb":      0.5,
		"climbs":     0.5,
		"strong":     0.5,
		"robust":     0.5,
		"upbeat":     0.6,
		"optimism":   0.6,
		"optimistic": 0.6,
		"recovery":   0.5,
		"rebound":    0.6,
		"record":     0.4,
		"bullish":    1.0,
		"tighten":    0.5,
		"tightens":   0.5,
		"upward":     0.5,
	}
}

// buildNegativeWords returns tone words that read as bad news for prices
func buildNegativeWords() map[string]float64 {
	return map[string]float64{
		"plunge":      0.9,
		"plunges":     0.9,
		"drop":        0.6,
		"drops":       0.6,
		"decline":     0.6,
		"declines":    0.6,
		"fall":        0.6,
		"falls":       0.6,
		"slump":       0.8,
		"slumps":      0.8,
		"tumble":      0.8,
		"tumbles":     0.8,
		"crash":       1.0,
		"weak":        0.5,
		"weakens":     0.5,
		"fear":        0.6,
		"fears":       0.6,
		"panic":       0.8,
		"pessimism":   0.6,
		"pessimistic": 0.6,
		"bearish":     1.0,
		"loss":        0.6,
		"losses":      0.6,
		"downturn":    0.7,
		"selloff":     0.7,
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
