package news

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/selivandex/news-impact/pkg/models"
	"github.com/selivandex/news-impact/test/testdb"
)

var now = time.Date(2025, 4, 10, 12, 0, 0, 0, time.UTC)

func sampleItems() []models.NewsItem {
	return []models.NewsItem{
		{ID: "old", Title: "Old", PublishedAt: now.Add(-48 * time.Hour), Embedding: []float32{1, 0}},
		{ID: "a", Title: "A", PublishedAt: now.Add(-3 * time.Hour), Embedding: []float32{1, 0}, Sentiment: models.SentimentScore(0.3)},
		{ID: "b", Title: "B", PublishedAt: now.Add(-2 * time.Hour), Embedding: []float32{0, 1}},
		{ID: "c", Title: "C", PublishedAt: now.Add(-1 * time.Hour), Embedding: []float32{0.5, 0.5}, Sentiment: models.SentimentScore(0)},
	}
}

func writeBatch(t *testing.T, items []models.NewsItem) string {
	t.Helper()
	data, err := json.Marshal(items)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "batch.json")
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}

func itemIDs(items []models.NewsItem) []string {
	out := make([]string, len(items))
	for i, item := range items {
		out[i] = item.ID
	}
	return out
}

func TestFileSource_LoadBatch(t *testing.T) {
	src := NewFileSource(writeBatch(t, sampleItems()))

	all, err := src.LoadBatch(context.Background(), time.Time{}, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"c", "b", "a", "old"}, itemIDs(all))

	recent, err := src.LoadBatch(context.Background(), now.Add(-24*time.Hour), 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"c", "b"}, itemIDs(recent))

	// missing and zero scores survive the round trip
	assert.NotNil(t, recent[0].Sentiment)
	assert.Nil(t, recent[1].Sentiment)
}

func TestFileSource_Errors(t *testing.T) {
	_, err := NewFileSource(filepath.Join(t.TempDir(), "missing.json")).LoadBatch(context.Background(), time.Time{}, 0)
	require.Error(t, err)

	items := sampleItems()
	items[1].Embedding = nil
	_, err = NewFileSource(writeBatch(t, items)).LoadBatch(context.Background(), time.Time{}, 0)
	require.ErrorIs(t, err, ErrNoEmbedding)

	_, err = DecodeBatch(strings.NewReader(`{"id": "not an array"}`))
	require.Error(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = NewFileSource(writeBatch(t, sampleItems())).LoadBatch(ctx, time.Time{}, 0)
	require.ErrorIs(t, err, context.Canceled)
}

func TestRepository_SaveAndLoad(t *testing.T) {
	tdb := testdb.Setup(t)
	repo := NewRepository(tdb.DB.DB())
	ctx := context.Background()

	saved, err := repo.SaveNewsItems(ctx, sampleItems())
	require.NoError(t, err)
	assert.Equal(t, 4, saved)

	items, err := repo.LoadBatch(ctx, now.Add(-24*time.Hour), 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"c", "b", "a"}, itemIDs(items))

	require.NotNil(t, items[0].Sentiment)
	assert.Equal(t, 0.0, *items[0].Sentiment)
	assert.Nil(t, items[1].Sentiment)
	assert.Equal(t, []float32{0, 1}, items[1].Embedding)

	limited, err := repo.LoadBatch(ctx, time.Time{}, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"c"}, itemIDs(limited))
}
