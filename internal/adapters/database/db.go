package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/selivandex/news-impact/internal/adapters/config"
	"github.com/selivandex/news-impact/pkg/logger"
)

// DB wraps a sqlx pool. Postgres backs news and reports, ClickHouse backs metrics.
type DB struct {
	conn   *sqlx.DB
	driver string
}

type poolSettings struct {
	maxOpen     int
	maxIdle     int
	maxLifetime time.Duration
}

var postgresPool = poolSettings{maxOpen: 25, maxIdle: 5, maxLifetime: 5 * time.Minute}

// New connects to PostgreSQL
func New(cfg *config.DatabaseConfig) (*DB, error) {
	db, err := open("postgres", cfg.GetDSN(), postgresPool)
	if err != nil {
		return nil, err
	}

	logger.Info("database connection established",
		zap.String("host", cfg.Host),
		zap.Int("port", cfg.Port),
		zap.String("database", cfg.Name),
	)

	return db, nil
}

// Wrap wraps an existing connection, used by tests and callers that own the pool
func Wrap(conn *sqlx.DB) *DB {
	return &DB{conn: conn, driver: conn.DriverName()}
}

func open(driver, dsn string, pool poolSettings) (*DB, error) {
	conn, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", driver, err)
	}

	conn.SetMaxOpenConns(pool.maxOpen)
	conn.SetMaxIdleConns(pool.maxIdle)
	conn.SetConnMaxLifetime(pool.maxLifetime)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping %s: %w", driver, err)
	}

	return &DB{conn: conn, driver: driver}, nil
}

// Close closes the pool
func (db *DB) Close() error {
	if db.conn == nil {
		return nil
	}
	logger.Info("closing database connection", zap.String("driver", db.driver))
	return db.conn.Close()
}

// Conn returns underlying *sql.DB, golang-migrate works on it
func (db *DB) Conn() *sql.DB {
	return db.conn.DB
}

// DB returns sqlx.DB for repositories
func (db *DB) DB() *sqlx.DB {
	return db.conn
}

// Health implements health.Checker
func (db *DB) Health() error {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := db.conn.PingContext(ctx); err != nil {
		return fmt.Errorf("%s health check failed: %w", db.driver, err)
	}
	return nil
}
