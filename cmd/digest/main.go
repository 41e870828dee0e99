package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/selivandex/news-impact/internal/adapters/config"
	"github.com/selivandex/news-impact/internal/adapters/database"
	metricsRepo "github.com/selivandex/news-impact/internal/adapters/metrics"
	"github.com/selivandex/news-impact/internal/adapters/news"
	"github.com/selivandex/news-impact/internal/adapters/redis"
	reportsRepo "github.com/selivandex/news-impact/internal/adapters/reports"
	"github.com/selivandex/news-impact/internal/analysis"
	"github.com/selivandex/news-impact/internal/clustering"
	"github.com/selivandex/news-impact/internal/health"
	"github.com/selivandex/news-impact/internal/lexicon"
	"github.com/selivandex/news-impact/internal/reports"
	"github.com/selivandex/news-impact/internal/sentiment"
	"github.com/selivandex/news-impact/internal/workers"
	"github.com/selivandex/news-impact/pkg/logger"
	"github.com/selivandex/news-impact/pkg/metrics"
	"github.com/selivandex/news-impact/pkg/worker"
)

type flags struct {
	input   string
	lexicon string
	migrate string
	once    bool
}

func main() {
	var f flags
	flag.StringVar(&f.input, "input", "", "JSON file with news items (implies file source)")
	flag.StringVar(&f.lexicon, "lexicon", "", "YAML lexicon path (overrides LEXICON_PATH)")
	flag.StringVar(&f.migrate, "migrate", "", "run schema command and exit: up, down or version")
	flag.BoolVar(&f.once, "once", false, "analyze one batch, print digest JSON to stdout and exit")
	flag.Parse()

	// Setup signal handling
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		fmt.Fprintln(os.Stderr, "\nReceived interrupt signal, shutting down...")
		cancel()
	}()

	if err := run(ctx, f); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, f flags) error {
	cfg, err := initConfig(f)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if f.migrate != "" {
		return runMigrate(cfg, f.migrate)
	}

	engine, err := initEngine(cfg)
	if err != nil {
		return err
	}

	var db *database.DB
	if cfg.Source.Kind == config.SourcePostgres || (!f.once && cfg.Worker.StoreReports) {
		db, err = initDatabase(cfg)
		if err != nil {
			return err
		}
		defer db.Close()
	}

	source, err := initSource(cfg, db)
	if err != nil {
		return err
	}

	if f.once {
		return runOnce(ctx, cfg, source, engine)
	}

	var stores workers.DigestStores
	if cfg.Worker.StoreReports {
		stores = append(stores, reportsRepo.NewRepository(db.DB()))
	}

	var opts []workers.DigestOption
	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisClient, err = redis.New(ctx, &cfg.Redis)
		if err != nil {
			return fmt.Errorf("failed to connect to redis: %w", err)
		}
		defer redisClient.Close()

		opts = append(opts, workers.WithRunLock(redisClient.RunLock("digest")))
		stores = append(stores, redisClient.DigestCache())
	}

	var chDB *database.DB
	var metricsBuffer *metrics.BufferedMetrics
	if cfg.ClickHouse.Enabled {
		chDB, metricsBuffer, err = initClickHouse(ctx, cfg)
		if err != nil {
			return err
		}
		defer chDB.Close()

		stores = append(stores, metricsRepo.NewDigestRecorder(metricsBuffer))
	}

	var store workers.DigestStore
	if len(stores) > 0 {
		store = stores
	}

	digestWorker := workers.NewDigestWorker(source, engine, store, sourceLookback(cfg), cfg.Source.Limit, opts...)

	group := worker.NewWorkerGroup(ctx)
	group.Add(digestWorker, cfg.Worker.Interval)

	checks := map[string]health.Checker{}
	if db != nil {
		checks["database"] = db
	}
	if redisClient != nil {
		checks["redis"] = redisClient
	}
	if chDB != nil {
		checks["clickhouse"] = chDB
	}

	healthServer := startHealthServer(cfg, checks, group)

	group.Start()

	logger.Info("news impact digest running",
		zap.String("source", cfg.Source.Kind),
		zap.Duration("interval", cfg.Worker.Interval),
		zap.Bool("store_reports", cfg.Worker.StoreReports),
		zap.Bool("redis", cfg.Redis.Enabled),
		zap.Bool("clickhouse", cfg.ClickHouse.Enabled),
	)

	// Wait for shutdown signal
	<-ctx.Done()

	return performGracefulShutdown(cfg, healthServer, group, metricsBuffer)
}

// initConfig loads configuration, applies flag overrides and initializes logger
func initConfig(f flags) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if f.input != "" {
		cfg.Source.Kind = config.SourceFile
		cfg.Source.InputPath = f.input
	}
	if f.lexicon != "" {
		cfg.Lexicon.Path = f.lexicon
	}

	if err := logger.Init(logger.Options{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		File:   cfg.Logging.File,
	}); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	return cfg, nil
}

// initEngine builds clustering and scoring pipeline from configuration
func initEngine(cfg *config.Config) (*analysis.Engine, error) {
	lex, err := lexicon.Load(cfg.Lexicon.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to load lexicon: %w", err)
	}

	clusterer, err := clustering.New(cfg.Analysis.Threshold, cfg.ClustererOptions()...)
	if err != nil {
		return nil, fmt.Errorf("failed to create clusterer: %w", err)
	}

	scorer, err := sentiment.NewImpactScorer(cfg.ScorerConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to create impact scorer: %w", err)
	}

	var provider sentiment.Provider
	if cfg.Analysis.FallbackSentiment {
		provider = sentiment.NewAnalyzer()
	}

	var summaries reports.SummaryProvider
	if cfg.Analysis.LeadTitleSummaries {
		summaries = reports.LeadTitleSummaries{}
	}

	logger.Info("analysis engine configured",
		zap.Float64("threshold", cfg.Analysis.Threshold),
		zap.String("strategy", cfg.Analysis.Strategy),
		zap.Int("lexicon_entries", lex.Len()),
		zap.Int("workers", cfg.Analysis.Workers),
		zap.Bool("fallback_sentiment", cfg.Analysis.FallbackSentiment),
	)

	return analysis.NewEngine(analysis.Components{
		Clusterer: clusterer,
		Lexicon:   lex,
		Scorer:    scorer,
		Provider:  provider,
		Summaries: summaries,
		Workers:   cfg.Analysis.Workers,
	})
}

// initDatabase connects to PostgreSQL and applies migrations
func initDatabase(cfg *config.Config) (*database.DB, error) {
	db, err := database.New(&cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := database.RunMigrations(db.Conn(), cfg.Database.MigrationsPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return db, nil
}

// initClickHouse connects analytics storage and starts the metrics buffer
func initClickHouse(ctx context.Context, cfg *config.Config) (*database.DB, *metrics.BufferedMetrics, error) {
	chDB, err := database.NewClickHouse(&cfg.ClickHouse)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to clickhouse: %w", err)
	}

	repo := metricsRepo.NewClickHouseRepository(chDB.DB())
	if err := repo.EnsureSchema(ctx); err != nil {
		chDB.Close()
		return nil, nil, err
	}

	buffer := metrics.NewBufferedMetrics(metrics.BufferConfig{
		Writer:        metricsRepo.NewWriter(repo),
		BatchSize:     cfg.ClickHouse.BatchSize,
		FlushInterval: cfg.ClickHouse.FlushInterval,
		MaxBufferSize: cfg.ClickHouse.BatchSize * 100,
	})

	return chDB, buffer, nil
}

// initSource picks the configured news source
func initSource(cfg *config.Config, db *database.DB) (news.Source, error) {
	switch cfg.Source.Kind {
	case config.SourcePostgres:
		return news.NewRepository(db.DB()), nil
	default:
		if cfg.Source.InputPath == "" {
			return nil, fmt.Errorf("file source needs -input or SOURCE_INPUT_PATH")
		}
		return news.NewFileSource(cfg.Source.InputPath), nil
	}
}

// sourceLookback returns 0 for a file batch, which is analyzed whole.
// The lookback window only applies to live sources.
func sourceLookback(cfg *config.Config) time.Duration {
	if cfg.Source.Kind == config.SourcePostgres {
		return cfg.Source.Lookback
	}
	return 0
}

// runOnce analyzes a single batch and writes digest JSON to stdout
func runOnce(ctx context.Context, cfg *config.Config, source news.Source, engine *analysis.Engine) error {
	var since time.Time
	if lookback := sourceLookback(cfg); lookback > 0 {
		since = time.Now().Add(-lookback)
	}

	items, err := source.LoadBatch(ctx, since, cfg.Source.Limit)
	if err != nil {
		return fmt.Errorf("failed to load news batch: %w", err)
	}

	digest, err := engine.Run(ctx, items)
	if err != nil {
		return fmt.Errorf("failed to analyze news batch: %w", err)
	}

	return writeDigest(os.Stdout, digest)
}

// runMigrate executes schema command without starting the worker
func runMigrate(cfg *config.Config, command string) error {
	db, err := database.New(&cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	switch command {
	case "up":
		return database.RunMigrations(db.Conn(), cfg.Database.MigrationsPath)
	case "down":
		return database.RollbackMigration(db.Conn(), cfg.Database.MigrationsPath)
	case "version":
		version, dirty, err := database.GetMigrationVersion(db.Conn(), cfg.Database.MigrationsPath)
		if err != nil {
			return err
		}
		fmt.Printf("version=%d dirty=%t\n", version, dirty)
		return nil
	default:
		return fmt.Errorf("unknown migrate command %q", command)
	}
}

// startHealthServer exposes probes when a port is configured
func startHealthServer(cfg *config.Config, checks map[string]health.Checker, group *worker.WorkerGroup) *health.Server {
	if cfg.Worker.HealthPort == "" {
		return nil
	}

	healthServer := health.NewServer(cfg.Worker.HealthPort, checks, group)

	go func() {
		if err := healthServer.Start(); err != nil && err != http.ErrServerClosed {
			logger.Error("health server error", zap.Error(err))
		}
	}()

	healthServer.SetReady(true)

	return healthServer
}

// performGracefulShutdown stops workers and probes
func performGracefulShutdown(cfg *config.Config, healthServer *health.Server, group *worker.WorkerGroup, metricsBuffer *metrics.BufferedMetrics) error {
	logger.Info("shutdown signal received, starting graceful shutdown")

	if healthServer != nil {
		healthServer.SetReady(false)
	}

	if err := group.Stop(cfg.Worker.StopTimeout); err != nil {
		logger.Warn("workers did not stop in time", zap.Error(err))
	}

	if metricsBuffer != nil {
		flushCtx, cancel := context.WithTimeout(context.Background(), cfg.Worker.StopTimeout)
		if err := metricsBuffer.Close(flushCtx); err != nil {
			logger.Error("metrics buffer close error", zap.Error(err))
		}
		cancel()
	}

	if healthServer != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Worker.StopTimeout)
		defer cancel()

		if err := healthServer.Stop(shutdownCtx); err != nil {
			logger.Error("health server stop error", zap.Error(err))
		}
	}

	logger.Info("graceful shutdown completed")
	return nil
}
