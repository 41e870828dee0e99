package sentiment

import (
	"math"

	"github.com/selivandex/news-impact/internal/lexicon"
	"github.com/selivandex/news-impact/pkg/models"
)

// Extractor derives keyword and sentiment signals for a cluster
type Extractor struct {
	lexicon  *lexicon.Lexicon
	provider Provider
}

// NewExtractor creates new signal extractor. A nil provider means precomputed scores only.
func NewExtractor(lex *lexicon.Lexicon, provider Provider) *Extractor {
	if provider == nil {
		provider = NoProvider{}
	}
	return &Extractor{
		lexicon:  lex,
		provider: provider,
	}
}

// Extract builds signal bundle of a cluster
func (e *Extractor) Extract(cluster models.Cluster) models.SignalBundle {
	bundle := models.SignalBundle{
		MechanismVotes: make(map[models.Mechanism]int),
		MemberCount:    cluster.Size(),
	}
	if bundle.MemberCount == 0 {
		bundle.TopMechanism = models.MechanismNone
		return bundle
	}

	var keywordSum, sentimentSum float64

	for i := range cluster.Members {
		item := &cluster.Members[i]
		text := item.Text()

		for _, m := range e.lexicon.Matches(text) {
			bundle.MechanismVotes[m.Mechanism]++
			if m.Weight == 0 {
				continue
			}
			keywordSum += m.Weight
			bundle.KeywordHits++
		}

		if score, ok := e.sentimentOf(item, text); ok {
			sentimentSum += score
			bundle.SentimentSamples++
		}
	}

	// per-member average squashed into (-1, 1) so one long article cannot dominate
	bundle.KeywordPolarity = math.Tanh(keywordSum / float64(bundle.MemberCount))

	if bundle.SentimentSamples > 0 {
		bundle.SentimentPolarity = sentimentSum / float64(bundle.SentimentSamples)
	}

	bundle.TopMechanism = topMechanism(bundle.MechanismVotes)

	return bundle
}

// sentimentOf prefers the precomputed score and falls back to the provider
func (e *Extractor) sentimentOf(item *models.NewsItem, text string) (float64, bool) {
	if item.Sentiment != nil {
		score := *item.Sentiment
		if math.IsNaN(score) {
			return 0, false
		}
		return clamp(score, -1, 1), true
	}

	score, ok := e.provider.Score(text)
	if !ok || math.IsNaN(score) {
		return 0, false
	}
	return clamp(score, -1, 1), true
}

// topMechanism returns the most voted mechanism, mixed on ties and none without votes
func topMechanism(votes map[models.Mechanism]int) models.Mechanism {
	top := models.MechanismNone
	best := 0
	tied := false

	for _, m := range models.Mechanisms {
		count := votes[m]
		switch {
		case count == 0:
			continue
		case count > best:
			top = m
			best = count
			tied = false
		case count == best:
			tied = true
		}
	}

	if tied {
		return models.MechanismMixed
	}
	return top
}
