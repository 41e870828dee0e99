package metrics

import (
	"fmt"
	"strings"
)

type column struct {
	name string
	kind string
}

// Table describes a ClickHouse metrics table
type Table struct {
	name    string
	columns []column
	orderBy string
}

// tables mirror Values() order of pkg/metrics rows
var tables = map[string]Table{
	"theme_metrics": {
		name: "theme_metrics",
		columns: []column{
			{"timestamp", "DateTime64(3)"},
			{"run_id", "String"},
			{"rank", "Int64"},
			{"cluster_id", "String"},
			{"size", "Int64"},
			{"direction", "LowCardinality(String)"},
			{"intensity", "LowCardinality(String)"},
			{"mechanism", "LowCardinality(String)"},
			{"fused_score", "Float64"},
			{"magnitude", "Float64"},
			{"confidence", "Float64"},
		},
		orderBy: "timestamp, run_id, rank",
	},
	"digest_run_metrics": {
		name: "digest_run_metrics",
		columns: []column{
			{"timestamp", "DateTime64(3)"},
			{"run_id", "String"},
			{"items", "Int64"},
			{"clusters", "Int64"},
			{"mood", "LowCardinality(String)"},
			{"bullish_share", "Float64"},
			{"bearish_share", "Float64"},
		},
		orderBy: "timestamp, run_id",
	},
}

// Name returns table name
func (t Table) Name() string {
	return t.name
}

func (t Table) createStatement() string {
	defs := make([]string, len(t.columns))
	for i, c := range t.columns {
		defs[i] = c.name + " " + c.kind
	}
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s) ENGINE = MergeTree ORDER BY (%s)",
		t.name, strings.Join(defs, ", "), t.orderBy)
}

func (t Table) insertStatement() string {
	names := make([]string, len(t.columns))
	for i, c := range t.columns {
		names[i] = c.name
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(t.columns)), ", ")
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", t.name, strings.Join(names, ", "), placeholders)
}
