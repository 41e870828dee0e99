package reports

import (
	"strings"

	"github.com/selivandex/news-impact/pkg/models"
)

// MaxLeadTitleRunes limits the fallback summary length
const MaxLeadTitleRunes = 220

// StaticSummaries maps cluster ID to precomputed summary text
type StaticSummaries map[string]string

// Summary implements SummaryProvider
func (s StaticSummaries) Summary(cluster models.Cluster) (string, bool) {
	text, ok := s[cluster.ID]
	return text, ok
}

// LeadTitleSummaries uses the seed title as summary when no summariser is available
type LeadTitleSummaries struct{}

// Summary implements SummaryProvider
func (LeadTitleSummaries) Summary(cluster models.Cluster) (string, bool) {
	for _, title := range cluster.Titles() {
		title = strings.Join(strings.Fields(title), " ")
		if title == "" {
			continue
		}
		runes := []rune(title)
		if len(runes) > MaxLeadTitleRunes {
			return strings.TrimSpace(string(runes[:MaxLeadTitleRunes])) + "…", true
		}
		return title, true
	}
	return "", false
}

// ChainSummaries returns the first non-empty summary of the providers
type ChainSummaries []SummaryProvider

// Summary implements SummaryProvider
func (c ChainSummaries) Summary(cluster models.Cluster) (string, bool) {
	for _, p := range c {
		if p == nil {
			continue
		}
		if text, ok := p.Summary(cluster); ok && strings.TrimSpace(text) != "" {
			return text, true
		}
	}
	return "", false
}
