// Package databasetest provides a migrated SQLite database for tests.
package databasetest

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/fkhayef/splitsmart/internal/database"
)

// Open returns a freshly migrated SQLite database in a temp dir, closed when the test ends.
func Open(t testing.TB) *sql.DB {
	t.Helper()

	db, err := database.NewSQLiteConnection(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}
