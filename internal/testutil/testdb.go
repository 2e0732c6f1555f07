package testutil

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lipohub/tg-planner-bot/internal/db"
)

// NewTestDB opens a migrated in-memory database closed at test cleanup.
func NewTestDB(t *testing.T) *sql.DB {
	t.Helper()
	return openTestDB(t, db.MemoryPath)
}

// NewFileTestDB opens a migrated database file under t.TempDir, for tests
// that need WAL mode or more than one connection.
func NewFileTestDB(t *testing.T) *sql.DB {
	t.Helper()
	return openTestDB(t, filepath.Join(t.TempDir(), "planbot.db"))
}

func openTestDB(t *testing.T, path string) *sql.DB {
	t.Helper()
	database, err := db.OpenDB(path)
	require.NoError(t, err, "opening test database")
	t.Cleanup(func() { _ = database.Close() })
	return database
}

// NewTestUoW wraps database in the production unit of work.
func NewTestUoW(database *sql.DB) db.UnitOfWork {
	return db.NewSQLiteUnitOfWork(database)
}
