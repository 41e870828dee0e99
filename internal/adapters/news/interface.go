package news

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/selivandex/news-impact/pkg/models"
)

// ErrNoEmbedding is returned when an item arrives without a vector
var ErrNoEmbedding = errors.New("news item has no embedding")

// Source supplies batches of embedded news items for analysis
type Source interface {
	// LoadBatch returns up to limit of the most recent items published after since.
	// Zero since means no lower bound, limit <= 0 means no limit.
	LoadBatch(ctx context.Context, since time.Time, limit int) ([]models.NewsItem, error)
}

// window applies since/limit to an in-memory batch, newest first
func window(items []models.NewsItem, since time.Time, limit int) []models.NewsItem {
	out := make([]models.NewsItem, 0, len(items))
	for _, item := range items {
		if !since.IsZero() && !item.PublishedAt.After(since) {
			continue
		}
		out = append(out, item)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].PublishedAt.After(out[j].PublishedAt)
	})

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}
