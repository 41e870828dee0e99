package analysis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/selivandex/news-impact/internal/clustering"
	"github.com/selivandex/news-impact/internal/lexicon"
	"github.com/selivandex/news-impact/internal/reports"
	"github.com/selivandex/news-impact/internal/sentiment"
	"github.com/selivandex/news-impact/pkg/logger"
	"github.com/selivandex/news-impact/pkg/models"
)

// ErrMissingComponent is returned when the engine is built without a required stage
var ErrMissingComponent = errors.New("analysis engine component missing")

// Components wires the pipeline stages together
type Components struct {
	Clusterer *clustering.Clusterer
	Lexicon   *lexicon.Lexicon
	Scorer    *sentiment.ImpactScorer
	Provider  sentiment.Provider      // optional, fills missing sentiment scores
	Summaries reports.SummaryProvider // optional
	Workers   int                     // parallel scoring when > 1
}

// Engine runs clustering, signal extraction, scoring and assembly over one batch
type Engine struct {
	clusterer *clustering.Clusterer
	lexicon   *lexicon.Lexicon
	extractor *sentiment.Extractor
	scorer    *sentiment.ImpactScorer
	assembler *reports.Assembler
	workers   int
	now       func() time.Time
}

// Option configures Engine
type Option func(*Engine)

// WithClock overrides the digest timestamp source
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// NewEngine creates analysis engine
func NewEngine(c Components, opts ...Option) (*Engine, error) {
	switch {
	case c.Clusterer == nil:
		return nil, fmt.Errorf("%w: clusterer", ErrMissingComponent)
	case c.Lexicon == nil:
		return nil, fmt.Errorf("%w: lexicon", ErrMissingComponent)
	case c.Scorer == nil:
		return nil, fmt.Errorf("%w: scorer", ErrMissingComponent)
	}

	workers := c.Workers
	if workers < 1 {
		workers = 1
	}

	e := &Engine{
		clusterer: c.Clusterer,
		lexicon:   c.Lexicon,
		extractor: sentiment.NewExtractor(c.Lexicon, c.Provider),
		scorer:    c.Scorer,
		assembler: reports.NewAssembler(c.Summaries),
		workers:   workers,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Analyze partitions the batch and returns ordered report records
func (e *Engine) Analyze(ctx context.Context, items []models.NewsItem) ([]models.ReportRecord, error) {
	start := time.Now()

	clusters, err := e.clusterer.Cluster(items)
	if err != nil {
		return nil, fmt.Errorf("failed to cluster batch: %w", err)
	}

	bundles, verdicts, err := e.score(ctx, clusters)
	if err != nil {
		return nil, err
	}

	records, err := e.assembler.Assemble(clusters, bundles, verdicts)
	if err != nil {
		return nil, fmt.Errorf("failed to assemble report: %w", err)
	}

	logger.Debug("batch analyzed",
		zap.Int("items", len(items)),
		zap.Int("clusters", len(clusters)),
		zap.Int("workers", e.workers),
		zap.Duration("took", time.Since(start)),
	)

	return records, nil
}

// Run analyzes the batch and wraps the records into a digest
func (e *Engine) Run(ctx context.Context, items []models.NewsItem) (*models.Digest, error) {
	records, err := e.Analyze(ctx, items)
	if err != nil {
		return nil, err
	}

	return &models.Digest{
		GeneratedAt: e.now().UTC(),
		RunID:       uuid.NewString(),
		Records:     records,
		Themes:      e.lexicon.Tally(items),
		Mood:        models.GetHeadlineMood(records),
		ItemCount:   len(items),
	}, nil
}

// score extracts and scores every cluster. Results land in per-index slots,
// so the output does not depend on scheduling.
func (e *Engine) score(ctx context.Context, clusters []models.Cluster) ([]models.SignalBundle, []models.ImpactVerdict, error) {
	bundles := make([]models.SignalBundle, len(clusters))
	verdicts := make([]models.ImpactVerdict, len(clusters))

	scoreOne := func(i int) {
		bundles[i] = e.extractor.Extract(clusters[i])
		verdicts[i] = e.scorer.Score(bundles[i])
	}

	if e.workers == 1 || len(clusters) < 2 {
		for i := range clusters {
			if err := ctx.Err(); err != nil {
				return nil, nil, err
			}
			scoreOne(i)
		}
		return bundles, verdicts, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)

	for i := range clusters {
		i := i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			scoreOne(i)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	return bundles, verdicts, nil
}
