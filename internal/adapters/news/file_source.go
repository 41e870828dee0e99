package news

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/selivandex/news-impact/pkg/logger"
	"github.com/selivandex/news-impact/pkg/models"
)

// FileSource reads a JSON array of news items from disk
type FileSource struct {
	path string
}

// NewFileSource creates file backed news source
func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

// LoadBatch implements Source. The file is re-read on every call.
func (s *FileSource) LoadBatch(ctx context.Context, since time.Time, limit int) ([]models.NewsItem, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open news file: %w", err)
	}
	defer f.Close()

	items, err := DecodeBatch(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", s.path, err)
	}

	batch := window(items, since, limit)

	logger.Debug("news batch loaded from file",
		zap.String("path", s.path),
		zap.Int("total", len(items)),
		zap.Int("selected", len(batch)),
	)

	return batch, nil
}

// DecodeBatch parses a JSON array of news items and checks every item has an embedding
func DecodeBatch(r io.Reader) ([]models.NewsItem, error) {
	var items []models.NewsItem
	if err := json.NewDecoder(r).Decode(&items); err != nil {
		return nil, fmt.Errorf("failed to decode news batch: %w", err)
	}

	for i := range items {
		if len(items[i].Embedding) == 0 {
			return nil, fmt.Errorf("%w: item %q at index %d", ErrNoEmbedding, items[i].ID, i)
		}
	}

	return items, nil
}
