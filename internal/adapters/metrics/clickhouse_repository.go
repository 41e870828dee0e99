package metrics

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/selivandex/news-impact/pkg/logger"
)

// ClickHouseRepository implements Repository for ClickHouse
type ClickHouseRepository struct {
	db *sqlx.DB
}

// NewClickHouseRepository creates new ClickHouse repository
func NewClickHouseRepository(db *sqlx.DB) *ClickHouseRepository {
	return &ClickHouseRepository{db: db}
}

// EnsureSchema creates metrics tables when missing
func (r *ClickHouseRepository) EnsureSchema(ctx context.Context) error {
	for _, table := range tables {
		if _, err := r.db.ExecContext(ctx, table.createStatement()); err != nil {
			return fmt.Errorf("failed to create %s: %w", table.name, err)
		}
	}
	return nil
}

// InsertBatch sends rows as one batch: clickhouse-go collects prepared inserts until commit
func (r *ClickHouseRepository) InsertBatch(ctx context.Context, table Table, rows [][]interface{}) error {
	if len(rows) == 0 {
		return nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PreparexContext(ctx, table.insertStatement())
	if err != nil {
		return fmt.Errorf("failed to prepare %s insert: %w", table.name, err)
	}
	defer stmt.Close()

	for _, row := range rows {
		if _, err := stmt.ExecContext(ctx, row...); err != nil {
			return fmt.Errorf("failed to append %s row: %w", table.name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to send %s batch: %w", table.name, err)
	}

	logger.Debug("clickhouse batch sent",
		zap.String("table", table.name),
		zap.Int("rows", len(rows)),
	)

	return nil
}

// Close is a no-op, the connection is owned by the caller
func (r *ClickHouseRepository) Close() error {
	return nil
}
