package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"

	"github.com/selivandex/news-impact/internal/clustering"
	"github.com/selivandex/news-impact/internal/sentiment"
	"github.com/selivandex/news-impact/pkg/logger"
)

// Source kinds
const (
	SourceFile     = "file"
	SourcePostgres = "postgres"
)

// Config represents application configuration
type Config struct {
	Analysis   AnalysisConfig   `envconfig:"ANALYSIS"`
	Lexicon    LexiconConfig    `envconfig:"LEXICON"`
	Source     SourceConfig     `envconfig:"SOURCE"`
	Database   DatabaseConfig   `envconfig:"DATABASE"`
	Redis      RedisConfig      `envconfig:"REDIS"`
	ClickHouse ClickHouseConfig `envconfig:"CLICKHOUSE"`
	Worker     WorkerConfig     `envconfig:"WORKER"`
	Logging    LoggingConfig    `envconfig:"LOGGING"`
}

// AnalysisConfig represents clustering and scoring parameters
type AnalysisConfig struct {
	Threshold       float64 `envconfig:"ANALYSIS_THRESHOLD" default:"0.65"`
	Strategy        string  `envconfig:"ANALYSIS_STRATEGY" default:"centroid"` // centroid or linkage
	KeywordWeight   float64 `envconfig:"ANALYSIS_KEYWORD_WEIGHT" default:"0.5"`
	SentimentWeight float64 `envconfig:"ANALYSIS_SENTIMENT_WEIGHT" default:"0.5"`
	Deadband        float64 `envconfig:"ANALYSIS_DEADBAND" default:"0.05"`
	StrongThreshold float64 `envconfig:"ANALYSIS_STRONG_THRESHOLD" default:"0.5"`
	MaxConfidence   float64 `envconfig:"ANALYSIS_MAX_CONFIDENCE" default:"0.95"`
	SizeScale       float64 `envconfig:"ANALYSIS_SIZE_SCALE" default:"2"`
	DisagreementCap float64 `envconfig:"ANALYSIS_DISAGREEMENT_CAP" default:"0.35"`
	Workers         int     `envconfig:"ANALYSIS_WORKERS" default:"1"`

	// FallbackSentiment scores items without a precomputed score using the built-in word list
	FallbackSentiment bool `envconfig:"ANALYSIS_FALLBACK_SENTIMENT" default:"false"`
	// LeadTitleSummaries uses the seed title when no summary was supplied
	LeadTitleSummaries bool `envconfig:"ANALYSIS_LEAD_TITLE_SUMMARIES" default:"true"`
}

// LexiconConfig represents keyword lexicon location
type LexiconConfig struct {
	Path string `envconfig:"LEXICON_PATH" required:"false"` // empty uses built-in lexicon
}

// SourceConfig represents where news batches come from
type SourceConfig struct {
	Kind      string        `envconfig:"SOURCE_KIND" default:"file"`
	InputPath string        `envconfig:"SOURCE_INPUT_PATH" required:"false"`
	Lookback  time.Duration `envconfig:"SOURCE_LOOKBACK" default:"24h"`
	Limit     int           `envconfig:"SOURCE_LIMIT" default:"500"`
}

// DatabaseConfig represents database connection parameters
type DatabaseConfig struct {
	Host           string `envconfig:"DB_HOST" default:"localhost"`
	Port           int    `envconfig:"DB_PORT" default:"5432"`
	Name           string `envconfig:"DB_NAME" default:"news_impact"`
	User           string `envconfig:"DB_USER" default:"postgres"`
	Password       string `envconfig:"DB_PASSWORD" required:"false"`
	SSLMode        string `envconfig:"DB_SSLMODE" default:"disable"`
	MigrationsPath string `envconfig:"DB_MIGRATIONS_PATH" default:"migrations"`
}

// RedisConfig represents Redis used for the run lock and the latest digest cache
type RedisConfig struct {
	Enabled   bool          `envconfig:"REDIS_ENABLED" default:"false"`
	Host      string        `envconfig:"REDIS_HOST" default:"localhost"`
	Port      int           `envconfig:"REDIS_PORT" default:"6379"`
	Password  string        `envconfig:"REDIS_PASSWORD" required:"false"`
	DB        int           `envconfig:"REDIS_DB" default:"0"`
	LockTTL   time.Duration `envconfig:"REDIS_LOCK_TTL" default:"5m"`
	DigestTTL time.Duration `envconfig:"REDIS_DIGEST_TTL" default:"24h"`
}

// ClickHouseConfig represents analytics storage for per-theme metrics
type ClickHouseConfig struct {
	Enabled       bool          `envconfig:"CLICKHOUSE_ENABLED" default:"false"`
	Host          string        `envconfig:"CLICKHOUSE_HOST" default:"localhost"`
	Port          int           `envconfig:"CLICKHOUSE_PORT" default:"9000"`
	Database      string        `envconfig:"CLICKHOUSE_DATABASE" default:"news_impact"`
	User          string        `envconfig:"CLICKHOUSE_USER" default:"default"`
	Password      string        `envconfig:"CLICKHOUSE_PASSWORD" required:"false"`
	BatchSize     int           `envconfig:"CLICKHOUSE_BATCH_SIZE" default:"100"`
	FlushInterval time.Duration `envconfig:"CLICKHOUSE_FLUSH_INTERVAL" default:"10s"`
}

// WorkerConfig represents periodic digest worker parameters
type WorkerConfig struct {
	Interval     time.Duration `envconfig:"WORKER_INTERVAL" default:"15m"`
	StopTimeout  time.Duration `envconfig:"WORKER_STOP_TIMEOUT" default:"10s"`
	StoreReports bool          `envconfig:"WORKER_STORE_REPORTS" default:"true"`
	HealthPort   string        `envconfig:"HEALTH_PORT" default:"8081"` // empty disables probes
}

// LoggingConfig represents logging configuration
type LoggingConfig struct {
	Level  string `envconfig:"LOG_LEVEL" default:"info"`
	Format string `envconfig:"LOG_FORMAT" default:"console"` // console or json
	File   string `envconfig:"LOG_FILE" required:"false"`
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	var cfg Config

	// Process environment variables
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// Validate checks if configuration is valid
func (c *Config) Validate() error {
	if c.Analysis.Threshold < -1 || c.Analysis.Threshold > 1 {
		return fmt.Errorf("analysis threshold must be between -1 and 1, got %v", c.Analysis.Threshold)
	}

	switch clustering.Strategy(c.Analysis.Strategy) {
	case clustering.StrategyCentroid, clustering.StrategyLinkage:
	default:
		return fmt.Errorf("unknown clustering strategy %q", c.Analysis.Strategy)
	}

	if c.Analysis.Workers < 1 {
		return fmt.Errorf("analysis workers must be at least 1")
	}

	if err := c.ScorerConfig().Validate(); err != nil {
		return err
	}

	switch c.Source.Kind {
	case SourceFile, SourcePostgres:
	default:
		return fmt.Errorf("unknown source kind %q", c.Source.Kind)
	}

	if c.Source.Limit < 1 {
		return fmt.Errorf("source limit must be positive")
	}
	if c.Source.Lookback <= 0 {
		return fmt.Errorf("source lookback must be positive")
	}

	if c.Worker.Interval <= 0 {
		return fmt.Errorf("worker interval must be positive")
	}

	if c.Redis.Enabled && (c.Redis.LockTTL <= 0 || c.Redis.DigestTTL <= 0) {
		return fmt.Errorf("redis lock and digest ttl must be positive")
	}

	if _, err := logger.ParseLevel(c.Logging.Level); err != nil {
		return err
	}

	switch c.Logging.Format {
	case logger.FormatConsole, logger.FormatJSON:
	default:
		return fmt.Errorf("unknown log format %q", c.Logging.Format)
	}

	if c.ClickHouse.Enabled && (c.ClickHouse.BatchSize < 1 || c.ClickHouse.FlushInterval <= 0) {
		return fmt.Errorf("clickhouse batch size and flush interval must be positive")
	}

	return nil
}

// ScorerConfig converts analysis settings to impact scorer parameters
func (c *Config) ScorerConfig() sentiment.ScorerConfig {
	return sentiment.ScorerConfig{
		KeywordWeight:   c.Analysis.KeywordWeight,
		SentimentWeight: c.Analysis.SentimentWeight,
		Deadband:        c.Analysis.Deadband,
		StrongThreshold: c.Analysis.StrongThreshold,
		MaxConfidence:   c.Analysis.MaxConfidence,
		SizeScale:       c.Analysis.SizeScale,
		DisagreementCap: c.Analysis.DisagreementCap,
	}
}

// ClustererOptions converts analysis settings to clusterer options
func (c *Config) ClustererOptions() []clustering.Option {
	return []clustering.Option{
		clustering.WithStrategy(clustering.Strategy(c.Analysis.Strategy)),
	}
}

// UsesDatabase returns true when news or reports go through PostgreSQL
func (c *Config) UsesDatabase() bool {
	return c.Source.Kind == SourcePostgres || c.Worker.StoreReports
}

// GetDSN returns PostgreSQL connection string
func (c *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

// GetDSN returns ClickHouse connection string
func (c *ClickHouseConfig) GetDSN() string {
	return fmt.Sprintf(
		"clickhouse://%s:%s@%s:%d/%s",
		c.User, c.Password, c.Host, c.Port, c.Database,
	)
}
