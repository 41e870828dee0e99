package testdb

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/selivandex/news-impact/internal/adapters/database"
)

// tables are truncated around every test, children first
var tables = []string{"theme_reports", "digest_runs", "news_items"}

// TestDB wraps migrated test database and cleans it after the test
type TestDB struct {
	DB *database.DB
}

// Setup connects to TEST_DATABASE_URL, applies migrations and empties all tables.
// The test is skipped when the variable is not set.
func Setup(t *testing.T) *TestDB {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL is not set")
	}

	conn, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		t.Fatalf("failed to connect to test database: %v", err)
	}

	db := database.Wrap(conn)
	if err := database.RunMigrations(db.Conn(), MigrationsPath(t)); err != nil {
		_ = db.Close()
		t.Fatalf("failed to migrate test database: %v", err)
	}

	testDB := &TestDB{DB: db}
	testDB.truncate(t)

	// Register cleanup
	t.Cleanup(func() {
		testDB.Teardown(t)
	})

	return testDB
}

// Teardown removes test data and closes connection
func (tdb *TestDB) Teardown(t *testing.T) {
	t.Helper()

	tdb.truncate(t)

	if err := tdb.DB.Close(); err != nil {
		t.Logf("warning: failed to close database: %v", err)
	}
}

// Exec executes SQL against test database
func (tdb *TestDB) Exec(t *testing.T, query string, args ...interface{}) {
	t.Helper()

	if _, err := tdb.DB.DB().Exec(query, args...); err != nil {
		t.Fatalf("failed to execute query: %v\nQuery: %s", err, query)
	}
}

// Count returns number of rows in table
func (tdb *TestDB) Count(t *testing.T, table string) int {
	t.Helper()

	var count int
	if err := tdb.DB.DB().Get(&count, "SELECT COUNT(*) FROM "+table); err != nil {
		t.Fatalf("failed to count %s: %v", table, err)
	}
	return count
}

func (tdb *TestDB) truncate(t *testing.T) {
	t.Helper()

	for _, table := range tables {
		if _, err := tdb.DB.DB().Exec("TRUNCATE " + table); err != nil {
			t.Logf("warning: failed to truncate %s: %v", table, err)
		}
	}
}

// MigrationsPath locates migrations directory next to go.mod
func MigrationsPath(t *testing.T) string {
	t.Helper()

	dir, err := os.Getwd()
	if err != nil {
		t.Fatalf("failed to get working directory: %v", err)
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return filepath.Join(dir, "migrations")
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			t.Fatalf("go.mod not found above %s", dir)
		}
		dir = parent
	}
}
