package models

import (
	"strings"
	"time"
)

// NewsItem represents single news item handed to the analysis core.
// Items are treated as immutable once a batch has been built.
type NewsItem struct {
	PublishedAt time.Time `json:"published_at" db:"published_at"`
	Sentiment   *float64  `json:"sentiment,omitempty" db:"sentiment"` // nil when no score was computed
	Content     string    `json:"content" db:"content"`
	Title       string    `json:"title" db:"title"`
	Source      string    `json:"source" db:"source"`
	URL         string    `json:"url" db:"url"`
	ID          string    `json:"id" db:"id"`
	Embedding   []float32 `json:"embedding" db:"embedding"`
}

// Text returns title and body joined for lexical analysis
func (n *NewsItem) Text() string {
	if n.Content == "" {
		return n.Title
	}
	return strings.TrimSpace(n.Title + " " + n.Content)
}

// HasSentiment reports whether a precomputed sentiment score is attached
func (n *NewsItem) HasSentiment() bool {
	return n.Sentiment != nil
}

// SentimentScore builds optional sentiment value for NewsItem literals
func SentimentScore(v float64) *float64 {
	return &v
}
