package news

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/selivandex/news-impact/pkg/logger"
	"github.com/selivandex/news-impact/pkg/models"
)

// Repository handles database operations for news
type Repository struct {
	db *sqlx.DB
}

// NewRepository creates new news repository
func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

// SaveNewsItems saves embedded news items (upsert by id)
func (r *Repository) SaveNewsItems(ctx context.Context, items []models.NewsItem) (int, error) {
	if len(items) == 0 {
		return 0, nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO news_items (
			id, source, title, content, url, published_at, sentiment, embedding, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO UPDATE SET
			title = EXCLUDED.title,
			content = EXCLUDED.content,
			sentiment = COALESCE(EXCLUDED.sentiment, news_items.sentiment),
			embedding = EXCLUDED.embedding
	`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	saved := 0
	for _, item := range items {
		if len(item.Embedding) == 0 {
			logger.Warn("skipping news item without embedding", zap.String("id", item.ID))
			continue
		}

		if _, err := stmt.ExecContext(ctx,
			item.ID,
			item.Source,
			item.Title,
			item.Content,
			item.URL,
			item.PublishedAt,
			item.Sentiment,
			pq.Array(item.Embedding),
			time.Now(),
		); err != nil {
			return 0, fmt.Errorf("failed to save news item %s: %w", item.ID, err)
		}
		saved++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit: %w", err)
	}

	return saved, nil
}

// LoadBatch implements Source
func (r *Repository) LoadBatch(ctx context.Context, since time.Time, limit int) ([]models.NewsItem, error) {
	query := `
		SELECT id, source, title, content, url, published_at, sentiment, embedding
		FROM news_items
		WHERE published_at > $1 AND cardinality(embedding) > 0
		ORDER BY published_at DESC, id
	`
	args := []interface{}{since}
	if limit > 0 {
		query += " LIMIT $2"
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query news: %w", err)
	}
	defer rows.Close()

	items := make([]models.NewsItem, 0)
	for rows.Next() {
		var (
			item      models.NewsItem
			sentiment sql.NullFloat64
			embedding pq.Float64Array
		)

		if err := rows.Scan(
			&item.ID,
			&item.Source,
			&item.Title,
			&item.Content,
			&item.URL,
			&item.PublishedAt,
			&sentiment,
			&embedding,
		); err != nil {
			return nil, fmt.Errorf("failed to scan news item: %w", err)
		}

		// NULL stays nil so the scorer can tell missing from neutral
		if sentiment.Valid {
			item.Sentiment = models.SentimentScore(sentiment.Float64)
		}

		item.Embedding = make([]float32, len(embedding))
		for i, v := range embedding {
			item.Embedding[i] = float32(v)
		}

		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate news: %w", err)
	}

	logger.Debug("news batch loaded from database",
		zap.Time("since", since),
		zap.Int("items", len(items)),
	)

	return items, nil
}
