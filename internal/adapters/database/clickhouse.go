package database

import (
	"time"

	_ "github.com/ClickHouse/clickhouse-go/v2"
	"go.uber.org/zap"

	"github.com/selivandex/news-impact/internal/adapters/config"
	"github.com/selivandex/news-impact/pkg/logger"
)

// pool for batched metric inserts
var clickHousePool = poolSettings{maxOpen: 5, maxIdle: 2, maxLifetime: time.Hour}

// NewClickHouse connects to ClickHouse through the clickhouse-go database/sql driver
func NewClickHouse(cfg *config.ClickHouseConfig) (*DB, error) {
	db, err := open("clickhouse", cfg.GetDSN(), clickHousePool)
	if err != nil {
		return nil, err
	}

	logger.Info("clickhouse connection established",
		zap.String("host", cfg.Host),
		zap.String("database", cfg.Database),
	)

	return db, nil
}
