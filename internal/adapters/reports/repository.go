package reports

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/selivandex/news-impact/pkg/logger"
	"github.com/selivandex/news-impact/pkg/models"
)

// StoredReport is one persisted theme_reports row
type StoredReport struct {
	GeneratedAt       time.Time      `db:"generated_at"`
	EarliestPublished time.Time      `db:"earliest_published"`
	RunID             string         `db:"run_id"`
	ClusterID         string         `db:"cluster_id"`
	Summary           string         `db:"summary"`
	Direction         string         `db:"direction"`
	Intensity         string         `db:"intensity"`
	Mechanism         string         `db:"mechanism"`
	MemberIDs         pq.StringArray `db:"member_ids"`
	FusedScore        float64        `db:"fused_score"`
	Magnitude         float64        `db:"magnitude"`
	Confidence        float64        `db:"confidence"`
	KeywordPolarity   float64        `db:"keyword_polarity"`
	SentimentPolarity float64        `db:"sentiment_polarity"`
	Rank              int            `db:"rank"`
	MemberCount       int            `db:"member_count"`
	KeywordHits       int            `db:"keyword_hits"`
	SentimentSamples  int            `db:"sentiment_samples"`
}

// StoredRun is one persisted digest_runs row
type StoredRun struct {
	GeneratedAt  time.Time       `db:"generated_at"`
	RunID        string          `db:"run_id"`
	Themes       []byte          `db:"themes"`
	BullishShare decimal.Decimal `db:"bullish_share"`
	BearishShare decimal.Decimal `db:"bearish_share"`
	ItemCount    int             `db:"item_count"`
	ClusterCount int             `db:"cluster_count"`
}

// Repository persists digests
type Repository struct {
	db *sqlx.DB
}

// NewRepository creates new report repository
func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

// SaveDigest stores run header and one row per record in a single transaction
func (r *Repository) SaveDigest(ctx context.Context, digest *models.Digest) error {
	themes, err := json.Marshal(digest.Themes)
	if err != nil {
		return fmt.Errorf("failed to encode themes: %w", err)
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO digest_runs (
			run_id, generated_at, item_count, cluster_count, bullish_share, bearish_share, themes
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
	`,
		digest.RunID,
		digest.GeneratedAt,
		digest.ItemCount,
		len(digest.Records),
		digest.Mood.BullishShare,
		digest.Mood.BearishShare,
		themes,
	); err != nil {
		return fmt.Errorf("failed to save digest run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO theme_reports (
			run_id, generated_at, rank, cluster_id, member_ids, member_count, summary,
			direction, intensity, mechanism, fused_score, magnitude, confidence,
			keyword_polarity, sentiment_polarity, keyword_hits, sentiment_samples, earliest_published
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for rank, rec := range digest.Records {
		if _, err := stmt.ExecContext(ctx,
			digest.RunID,
			digest.GeneratedAt,
			rank+1,
			rec.Cluster.ID,
			pq.Array(rec.Cluster.MemberIDs()),
			rec.Cluster.Size(),
			rec.Summary,
			string(rec.Verdict.Direction),
			string(rec.Verdict.Intensity),
			string(rec.Verdict.Mechanism),
			rec.Verdict.FusedScore,
			rec.Verdict.Magnitude,
			rec.Verdict.Confidence,
			rec.Signals.KeywordPolarity,
			rec.Signals.SentimentPolarity,
			rec.Signals.KeywordHits,
			rec.Signals.SentimentSamples,
			rec.Cluster.EarliestPublished(),
		); err != nil {
			return fmt.Errorf("failed to save theme report %s: %w", rec.Cluster.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}

	logger.Debug("digest saved",
		zap.String("run_id", digest.RunID),
		zap.Int("records", len(digest.Records)),
	)

	return nil
}

// GetRun returns stored run header
func (r *Repository) GetRun(ctx context.Context, runID string) (*StoredRun, error) {
	var run StoredRun
	err := r.db.GetContext(ctx, &run, `
		SELECT run_id, generated_at, item_count, cluster_count, bullish_share, bearish_share, themes
		FROM digest_runs
		WHERE run_id = $1
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to get digest run: %w", err)
	}
	return &run, nil
}

// GetReports returns stored records of a run in rank order
func (r *Repository) GetReports(ctx context.Context, runID string) ([]StoredReport, error) {
	reports := make([]StoredReport, 0)
	err := r.db.SelectContext(ctx, &reports, `
		SELECT run_id, generated_at, rank, cluster_id, member_ids, member_count, summary,
			direction, intensity, mechanism, fused_score, magnitude, confidence,
			keyword_polarity, sentiment_polarity, keyword_hits, sentiment_samples, earliest_published
		FROM theme_reports
		WHERE run_id = $1
		ORDER BY rank
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to get theme reports: %w", err)
	}
	return reports, nil
}

// GetLatestRunID returns the most recent run id, empty when nothing was stored
func (r *Repository) GetLatestRunID(ctx context.Context) (string, error) {
	var ids []string
	if err := r.db.SelectContext(ctx, &ids, `
		SELECT run_id FROM digest_runs ORDER BY generated_at DESC LIMIT 1
	`); err != nil {
		return "", fmt.Errorf("failed to get latest run: %w", err)
	}
	if len(ids) == 0 {
		return "", nil
	}
	return ids[0], nil
}
