package metrics

import (
	"context"
	"fmt"

	"github.com/selivandex/news-impact/pkg/metrics"
)

// Repository stores rows already checked against the table schema
type Repository interface {
	InsertBatch(ctx context.Context, table Table, rows [][]interface{}) error
	Close() error
}

// Writer implements metrics.Writer. Unknown tables and rows of the wrong width are rejected
// before anything reaches the repository.
type Writer struct {
	repo Repository
}

// NewWriter creates new metrics writer with repository
func NewWriter(repo Repository) *Writer {
	return &Writer{repo: repo}
}

// Write implements metrics.Writer
func (w *Writer) Write(ctx context.Context, tableName string, batch []metrics.Metric) error {
	if len(batch) == 0 {
		return nil
	}

	table, ok := tables[tableName]
	if !ok {
		return fmt.Errorf("unknown metrics table %q", tableName)
	}

	rows := make([][]interface{}, len(batch))
	for i, m := range batch {
		row := m.Values()
		if len(row) != len(table.columns) {
			return fmt.Errorf("%s row %d has %d values, want %d", tableName, i, len(row), len(table.columns))
		}
		rows[i] = row
	}

	return w.repo.InsertBatch(ctx, table, rows)
}

// Close closes the repository
func (w *Writer) Close() error {
	if w.repo == nil {
		return nil
	}
	return w.repo.Close()
}
